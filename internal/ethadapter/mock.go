package ethadapter

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/cartesi/tx-manager/internal/chain"
)

// MockChain is a hand-written fake of Chain, following the
// XxxFunc-per-method field convention used throughout this codebase's
// tests. Any field left nil falls back to a zero-value response, except
// EstimateGas, which returns 21000 (the gas of a plain transfer).
type MockChain struct {
	PendingNonceFunc          func(ctx context.Context, sender common.Address) (uint64, error)
	BlockNumberFunc           func(ctx context.Context) (uint64, error)
	BaseFeeFunc               func(ctx context.Context, block uint64) (*big.Int, error)
	LegacyGasPriceFunc        func(ctx context.Context) (*big.Int, error)
	GetReceiptFunc            func(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	TransactionInMempoolFunc  func(ctx context.Context, txHash common.Hash) (bool, error)
	EstimateGasFunc           func(ctx context.Context, req chain.Request, fees chain.Quote) (uint64, error)
	SendFunc                  func(ctx context.Context, req chain.Request, nonce uint64, fees chain.Quote, gasLimit uint64, desc chain.Descriptor) (common.Hash, error)
}

func (m *MockChain) PendingNonce(ctx context.Context, sender common.Address) (uint64, error) {
	if m.PendingNonceFunc != nil {
		return m.PendingNonceFunc(ctx, sender)
	}
	return 0, nil
}

func (m *MockChain) BlockNumber(ctx context.Context) (uint64, error) {
	if m.BlockNumberFunc != nil {
		return m.BlockNumberFunc(ctx)
	}
	return 0, nil
}

func (m *MockChain) BaseFee(ctx context.Context, block uint64) (*big.Int, error) {
	if m.BaseFeeFunc != nil {
		return m.BaseFeeFunc(ctx, block)
	}
	return big.NewInt(0), nil
}

func (m *MockChain) LegacyGasPrice(ctx context.Context) (*big.Int, error) {
	if m.LegacyGasPriceFunc != nil {
		return m.LegacyGasPriceFunc(ctx)
	}
	return big.NewInt(0), nil
}

func (m *MockChain) GetReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	if m.GetReceiptFunc != nil {
		return m.GetReceiptFunc(ctx, txHash)
	}
	return nil, nil
}

func (m *MockChain) TransactionInMempool(ctx context.Context, txHash common.Hash) (bool, error) {
	if m.TransactionInMempoolFunc != nil {
		return m.TransactionInMempoolFunc(ctx, txHash)
	}
	return false, nil
}

func (m *MockChain) EstimateGas(ctx context.Context, req chain.Request, fees chain.Quote) (uint64, error) {
	if m.EstimateGasFunc != nil {
		return m.EstimateGasFunc(ctx, req, fees)
	}
	return 21000, nil
}

func (m *MockChain) Send(ctx context.Context, req chain.Request, nonce uint64, fees chain.Quote, gasLimit uint64, desc chain.Descriptor) (common.Hash, error) {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, req, nonce, fees, gasLimit, desc)
	}
	return common.Hash{}, nil
}
