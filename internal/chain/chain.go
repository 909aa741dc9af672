// Package chain holds the data model shared by every component of the
// submission state machine: the transaction request a caller hands in, the
// chain descriptor, the fee quote produced by the gas oracle, and the
// persisted submission record.
package chain

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Priority is an ordered request for how aggressively the fee policy should
// price a transaction. The fee policy is monotonic in Priority.
type Priority int

const (
	Lowest Priority = iota
	Low
	Normal
	High
	Highest
)

func (p Priority) String() string {
	switch p {
	case Lowest:
		return "lowest"
	case Low:
		return "low"
	case Normal:
		return "normal"
	case High:
		return "high"
	case Highest:
		return "highest"
	default:
		return "unknown"
	}
}

// Request is the caller-supplied transaction. It is immutable for the
// lifetime of one submission.
type Request struct {
	From common.Address
	// To is nil for contract creation.
	To       *common.Address
	Value    *big.Int
	CallData []byte
}

// ZeroValue returns a fresh zero-value *big.Int, for callers building
// zero-value probe/cancellation transactions.
func ZeroValue() *big.Int {
	return big.NewInt(0)
}

// Descriptor identifies the chain a request targets.
type Descriptor struct {
	ChainID uint64
	// IsLegacy means the chain only supports a single gas price, not the
	// EIP-1559 base-fee/priority-tip split.
	IsLegacy bool
}

// Quote is a fee suggestion from the gas oracle, or the fees attached to a
// submitted attempt. Only the fields relevant to the chain's fee model are
// populated: GasPrice for legacy chains, MaxFee/MaxPriorityFee for EIP-1559.
type Quote struct {
	GasPrice       *big.Int
	MaxFee         *big.Int
	MaxPriorityFee *big.Int
}

// Attempt is one signed variant of the transaction under the record's fixed
// nonce.
type Attempt struct {
	TxHash common.Hash
	Fees   Quote
}

// Record is the persisted state of one in-flight submission. At most one
// exists per sender at any time; it is created on first broadcast, mutated
// only by appending attempts, and destroyed on success or explicit clear.
type Record struct {
	Request       Request
	Confirmations uint64
	Priority      Priority
	Nonce         uint64
	// GasLimit is estimated once, at the first attempt, and reused by every
	// resubmission under the same nonce — a fee bump changes the price per
	// unit of gas, not the gas the call itself needs.
	GasLimit uint64
	// FirstAttemptAt is when the first attempt was broadcast, the baseline
	// for the mining timeout.
	FirstAttemptAt time.Time
	Attempts       []Attempt
}

// Latest returns the most recently appended attempt. Panics if Attempts is
// empty — callers must not hold a Record with no attempts past construction.
func (r *Record) Latest() Attempt {
	return r.Attempts[len(r.Attempts)-1]
}
