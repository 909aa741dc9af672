// Package ethadapter is the thin read/write facade over the signing RPC
// provider that the submission state machine consumes. It never sees a
// private key: signing happens inside the RPC middleware behind the
// configured endpoint, which wraps go-ethereum's ethclient without ever
// touching key material itself.
package ethadapter

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/cartesi/tx-manager/internal/chain"
)

// Chain is the set of operations the submission state machine consumes
// from the signing RPC provider.
type Chain interface {
	PendingNonce(ctx context.Context, sender common.Address) (uint64, error)
	BlockNumber(ctx context.Context) (uint64, error)
	BaseFee(ctx context.Context, block uint64) (*big.Int, error)
	// LegacyGasPrice is the node's own suggested gas price, used by the
	// default oracle on legacy chains and as the fallback when a custom
	// oracle fails.
	LegacyGasPrice(ctx context.Context) (*big.Int, error)
	GetReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	TransactionInMempool(ctx context.Context, txHash common.Hash) (bool, error)
	EstimateGas(ctx context.Context, req chain.Request, fees chain.Quote) (uint64, error)
	// Send signs (via the RPC middleware) and broadcasts the request under
	// nonce with fees, returning the resulting transaction hash.
	Send(ctx context.Context, req chain.Request, nonce uint64, fees chain.Quote, gasLimit uint64, desc chain.Descriptor) (common.Hash, error)
}

// Client wraps a single *ethclient.Client and its underlying *rpc.Client
// for the raw call ethclient doesn't expose (capturing the broadcast hash
// the signing middleware actually reports).
// There is exactly one signing endpoint to talk to, so there is no
// failover/shuffle logic to speak of.
type Client struct {
	rpc *rpc.Client
	eth *ethclient.Client
}

// Dial connects to the signing RPC middleware at endpoint.
func Dial(endpoint string) (*Client, error) {
	rc, err := rpc.Dial(endpoint)
	if err != nil {
		return nil, fmt.Errorf("ethadapter: dial %s: %w", endpoint, err)
	}
	return &Client{rpc: rc, eth: ethclient.NewClient(rc)}, nil
}

func (c *Client) PendingNonce(ctx context.Context, sender common.Address) (uint64, error) {
	return c.eth.PendingNonceAt(ctx, sender)
}

func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	return c.eth.BlockNumber(ctx)
}

func (c *Client) BaseFee(ctx context.Context, block uint64) (*big.Int, error) {
	header, err := c.eth.HeaderByNumber(ctx, new(big.Int).SetUint64(block))
	if err != nil {
		return nil, err
	}
	if header.BaseFee == nil {
		return nil, fmt.Errorf("ethadapter: block %d has no base fee (not an EIP-1559 chain)", block)
	}
	return header.BaseFee, nil
}

func (c *Client) LegacyGasPrice(ctx context.Context) (*big.Int, error) {
	return c.eth.SuggestGasPrice(ctx)
}

func (c *Client) GetReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	receipt, err := c.eth.TransactionReceipt(ctx, txHash)
	if err == ethereum.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

// TransactionInMempool reports whether the node still knows about txHash
// as pending, i.e. it is neither mined nor evicted.
func (c *Client) TransactionInMempool(ctx context.Context, txHash common.Hash) (bool, error) {
	_, isPending, err := c.eth.TransactionByHash(ctx, txHash)
	if err == ethereum.NotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return isPending, nil
}

func (c *Client) EstimateGas(ctx context.Context, req chain.Request, fees chain.Quote) (uint64, error) {
	msg := ethereum.CallMsg{
		From:  req.From,
		To:    req.To,
		Value: req.Value,
		Data:  req.CallData,
	}
	if fees.GasPrice != nil {
		msg.GasPrice = fees.GasPrice
	} else {
		msg.GasFeeCap = fees.MaxFee
		msg.GasTipCap = fees.MaxPriorityFee
	}
	return c.eth.EstimateGas(ctx, msg)
}

// Send broadcasts the unsigned transaction built from req through
// eth_sendRawTransaction and returns the hash the middleware's JSON-RPC
// response reports, not tx.Hash() on the unsigned struct: the middleware
// signs server-side, so the broadcast transaction's real RLP encoding
// (and therefore its real hash) only exists once it comes back from the
// node. Using ethclient.SendTransaction here would discard that result
// and leave the manager polling receipts under a hash that was never
// actually mined.
func (c *Client) Send(ctx context.Context, req chain.Request, nonce uint64, fees chain.Quote, gasLimit uint64, desc chain.Descriptor) (common.Hash, error) {
	tx := buildTransaction(req, nonce, fees, gasLimit, desc)
	data, err := tx.MarshalBinary()
	if err != nil {
		return common.Hash{}, fmt.Errorf("ethadapter: encode transaction: %w", err)
	}

	var hash common.Hash
	if err := c.rpc.CallContext(ctx, &hash, "eth_sendRawTransaction", hexutil.Encode(data)); err != nil {
		return common.Hash{}, err
	}
	return hash, nil
}

// buildTransaction assembles the unsigned transaction the signing RPC
// middleware will sign on the way out, choosing the legacy or EIP-1559
// envelope based on desc.IsLegacy.
func buildTransaction(req chain.Request, nonce uint64, fees chain.Quote, gasLimit uint64, desc chain.Descriptor) *types.Transaction {
	if desc.IsLegacy {
		return types.NewTx(&types.LegacyTx{
			Nonce:    nonce,
			GasPrice: fees.GasPrice,
			Gas:      gasLimit,
			To:       req.To,
			Value:    req.Value,
			Data:     req.CallData,
		})
	}
	return types.NewTx(&types.DynamicFeeTx{
		ChainID:   new(big.Int).SetUint64(desc.ChainID),
		Nonce:     nonce,
		GasTipCap: fees.MaxPriorityFee,
		GasFeeCap: fees.MaxFee,
		Gas:       gasLimit,
		To:        req.To,
		Value:     req.Value,
		Data:      req.CallData,
	})
}
