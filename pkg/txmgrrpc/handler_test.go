package txmgrrpc

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartesi/tx-manager/internal/chain"
	"github.com/cartesi/tx-manager/internal/classifier"
	"github.com/cartesi/tx-manager/internal/ethadapter"
	"github.com/cartesi/tx-manager/internal/manager"
	"github.com/cartesi/tx-manager/internal/oracle"
	"github.com/cartesi/tx-manager/internal/store/filestore"
)

func TestHandler_Status_NoRecord(t *testing.T) {
	st := filestore.New(t.TempDir())
	h := NewHandler(&ethadapter.MockChain{}, &oracle.MockOracle{}, st, classifier.Default{}, chain.Descriptor{IsLegacy: true}, manager.Config{})

	status, err := h.Status(context.Background(), common.HexToAddress("0x1"))
	require.NoError(t, err)
	assert.False(t, status.InFlight)
}

func TestHandler_Submit_HappyPath(t *testing.T) {
	sender := common.HexToAddress("0x2")
	var hash common.Hash

	adapter := &ethadapter.MockChain{
		PendingNonceFunc: func(ctx context.Context, s common.Address) (uint64, error) { return 1, nil },
		EstimateGasFunc: func(ctx context.Context, req chain.Request, fees chain.Quote) (uint64, error) {
			return 21000, nil
		},
		SendFunc: func(ctx context.Context, req chain.Request, nonce uint64, fees chain.Quote, gasLimit uint64, desc chain.Descriptor) (common.Hash, error) {
			hash = common.HexToHash("0xabc")
			return hash, nil
		},
		GetReceiptFunc: func(ctx context.Context, h common.Hash) (*types.Receipt, error) {
			if h == hash {
				return &types.Receipt{TxHash: h, BlockNumber: big.NewInt(1), Status: types.ReceiptStatusSuccessful}, nil
			}
			return nil, nil
		},
		// One block on top of the mined block 1: one confirmation.
		BlockNumberFunc: func(ctx context.Context) (uint64, error) { return 2, nil },
	}

	st := filestore.New(t.TempDir())
	h := NewHandler(adapter, &oracle.MockOracle{}, st, classifier.Default{}, chain.Descriptor{IsLegacy: true}, manager.Config{PollInterval: time.Millisecond, BlockTime: time.Millisecond, TransactionMiningTimeout: time.Hour})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	result, err := h.Submit(ctx, SubmitRequest{From: sender, Confirmations: 1, Priority: "normal"})
	require.NoError(t, err)
	assert.Equal(t, hash, result.TxHash)
}

func TestHandler_Clear(t *testing.T) {
	sender := common.HexToAddress("0x3")
	st := filestore.New(t.TempDir())
	require.NoError(t, st.Save(context.Background(), sender, &chain.Record{Nonce: 1, Attempts: []chain.Attempt{{TxHash: common.HexToHash("0x1")}}}))

	h := NewHandler(&ethadapter.MockChain{}, &oracle.MockOracle{}, st, classifier.Default{}, chain.Descriptor{}, manager.Config{})
	require.NoError(t, h.Clear(context.Background(), sender))

	status, err := h.Status(context.Background(), sender)
	require.NoError(t, err)
	assert.False(t, status.InFlight)
}
