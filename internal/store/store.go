// Package store persists the crash-recovery record for a sender's
// in-flight submission. Implementations must make Save atomic: a crash
// mid-write must never leave a record that is neither the old nor the new
// state.
package store

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/cartesi/tx-manager/internal/chain"
)

// Store loads, saves, and clears the persisted Record for a sender. Load
// returns (nil, nil) when no record exists: a zero value means nothing was
// saved yet, not an error.
type Store interface {
	Load(ctx context.Context, sender common.Address) (*chain.Record, error)
	Save(ctx context.Context, sender common.Address, record *chain.Record) error
	Clear(ctx context.Context, sender common.Address) error
}
