// Package txmgrrpc exposes the submission state machine over JSON-RPC
// using go-ethereum's rpc.Server: a namespace struct whose exported
// methods become RPC calls, registered against an *rpc.Server by the
// caller.
package txmgrrpc

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/cartesi/tx-manager/internal/chain"
	"github.com/cartesi/tx-manager/internal/classifier"
	"github.com/cartesi/tx-manager/internal/ethadapter"
	"github.com/cartesi/tx-manager/internal/manager"
	"github.com/cartesi/tx-manager/internal/oracle"
	"github.com/cartesi/tx-manager/internal/store"
)

// SubmitRequest is the txmgr_submit parameter shape.
type SubmitRequest struct {
	From          common.Address  `json:"from"`
	To            *common.Address `json:"to"`
	Value         *big.Int        `json:"value"`
	CallData      hexutil.Bytes   `json:"callData"`
	Confirmations uint64          `json:"confirmations"`
	Priority      string          `json:"priority"`
}

// SubmitResult is the txmgr_submit return shape.
type SubmitResult struct {
	TxHash      common.Hash `json:"txHash"`
	BlockNumber uint64      `json:"blockNumber"`
	Status      uint64      `json:"status"`
}

// StatusResult is the txmgr_status return shape.
type StatusResult struct {
	InFlight bool   `json:"inFlight"`
	Nonce    uint64 `json:"nonce,omitempty"`
	Attempts int    `json:"attempts,omitempty"`
}

// Handler is the "txmgr" JSON-RPC namespace: its exported methods are
// registered with go-ethereum's rpc.Server and become txmgr_<method>
// calls.
type Handler struct {
	chainAdapter ethadapter.Chain
	oracle       oracle.Oracle
	store        store.Store
	classifier   classifier.Classifier
	desc         chain.Descriptor
	config       manager.Config
}

// NewHandler constructs the txmgr RPC namespace over the given
// collaborators.
func NewHandler(chainAdapter ethadapter.Chain, orc oracle.Oracle, st store.Store, cls classifier.Classifier, desc chain.Descriptor, cfg manager.Config) *Handler {
	return &Handler{chainAdapter: chainAdapter, oracle: orc, store: st, classifier: cls, desc: desc, config: cfg}
}

func priorityFromString(s string) (chain.Priority, error) {
	switch s {
	case "", "normal":
		return chain.Normal, nil
	case "lowest":
		return chain.Lowest, nil
	case "low":
		return chain.Low, nil
	case "high":
		return chain.High, nil
	case "highest":
		return chain.Highest, nil
	default:
		return chain.Normal, fmt.Errorf("txmgrrpc: unknown priority %q", s)
	}
}

// Submit recovers any in-flight submission for req.From, then drives
// req to confirmation, blocking for the duration of the call. If recovery
// confirms a previously persisted submission, Submit returns that
// receipt's result and does not submit req.
func (h *Handler) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	priority, err := priorityFromString(req.Priority)
	if err != nil {
		return nil, err
	}

	m, recovered, err := manager.New(ctx, h.config, h.chainAdapter, h.oracle, h.store, h.classifier, h.desc, req.From)
	if err != nil {
		return nil, err
	}
	if recovered != nil {
		return resultFromReceipt(recovered), nil
	}

	value := req.Value
	if value == nil {
		value = chain.ZeroValue()
	}

	receipt, err := m.Submit(ctx, chain.Request{
		From:     req.From,
		To:       req.To,
		Value:    value,
		CallData: req.CallData,
	}, req.Confirmations, priority)
	if err != nil {
		return nil, err
	}
	return resultFromReceipt(receipt), nil
}

// Status reports whether sender currently has an in-flight submission
// record, without driving recovery.
func (h *Handler) Status(ctx context.Context, sender common.Address) (*StatusResult, error) {
	record, err := h.store.Load(ctx, sender)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return &StatusResult{InFlight: false}, nil
	}
	return &StatusResult{InFlight: true, Nonce: record.Nonce, Attempts: len(record.Attempts)}, nil
}

// Clear discards any persisted record for sender without driving it to
// completion. Callers take on the responsibility for any abandoned
// in-flight transaction this may leave on chain.
func (h *Handler) Clear(ctx context.Context, sender common.Address) error {
	return h.store.Clear(ctx, sender)
}

func resultFromReceipt(receipt *types.Receipt) *SubmitResult {
	return &SubmitResult{
		TxHash:      receipt.TxHash,
		BlockNumber: receipt.BlockNumber.Uint64(),
		Status:      receipt.Status,
	}
}
