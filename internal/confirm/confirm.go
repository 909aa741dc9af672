// Package confirm waits for a broadcast attempt to reach the required
// number of confirmations, polling a single transaction hash until it is
// confirmed or reorged out.
package confirm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/golang/groupcache/lru"
	"github.com/sisu-network/lib/log"

	"github.com/cartesi/tx-manager/internal/ethadapter"
)

// ErrReorged is returned when a transaction that was previously observed
// mined disappears from the chain, i.e. the block that contained it was
// reorged out and the transaction was not re-included elsewhere.
var ErrReorged = errors.New("confirm: transaction reorged out")

// seenCacheSize bounds the dedup cache used to avoid repeat log lines for
// a hash that's still pending across many polls.
const seenCacheSize = 1_000

// DefaultPollInterval is how often Await checks chain state absent an
// override.
const DefaultPollInterval = 4 * time.Second

// Result describes a transaction that reached its confirmation target.
type Result struct {
	Receipt       *types.Receipt
	MinedBlock    uint64
	Confirmations uint64
}

// Waiter polls a chain adapter until a transaction hash is mined and has
// accumulated the required number of confirmations.
type Waiter struct {
	chainAdapter ethadapter.Chain
	pollInterval time.Duration

	loggedMined *lru.Cache
}

// NewWaiter constructs a Waiter over chainAdapter. pollInterval of zero
// selects DefaultPollInterval.
func NewWaiter(chainAdapter ethadapter.Chain, pollInterval time.Duration) *Waiter {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &Waiter{
		chainAdapter: chainAdapter,
		pollInterval: pollInterval,
		loggedMined:  lru.New(seenCacheSize),
	}
}

// Await blocks until txHash has confirmations >= required, ctx is
// cancelled, or a reorg is detected. A once-mined transaction that later
// disappears from the chain (GetReceipt returns nil again) is reported as
// ErrReorged rather than silently resuming the poll loop — the caller is
// responsible for deciding how to react.
func (w *Waiter) Await(ctx context.Context, txHash common.Hash, required uint64) (*Result, error) {
	var minedBlock uint64
	var seenMined bool

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := w.chainAdapter.GetReceipt(ctx, txHash)
		if err != nil {
			log.Errorf("confirm: get receipt for %s: %v", txHash.Hex(), err)
		} else if receipt == nil {
			if seenMined {
				return nil, ErrReorged
			}
		} else {
			if !seenMined {
				minedBlock = receipt.BlockNumber.Uint64()
				seenMined = true
				if _, ok := w.loggedMined.Get(txHash); !ok {
					w.loggedMined.Add(txHash, true)
					log.Infof("confirm: %s mined at block %d, waiting for %d confirmations", txHash.Hex(), minedBlock, required)
				}
			}

			head, err := w.chainAdapter.BlockNumber(ctx)
			if err != nil {
				log.Errorf("confirm: block number: %v", err)
			} else if head >= minedBlock {
				confirmations := head - minedBlock
				if confirmations >= required {
					return &Result{Receipt: receipt, MinedBlock: minedBlock, Confirmations: confirmations}, nil
				}
			}
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("confirm: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}
