// Package oracle supplies fee quotes for a requested priority. The
// submission state machine treats the oracle as an external collaborator
// and never interprets its internals — only the Quote it returns.
package oracle

import (
	"context"

	"github.com/cartesi/tx-manager/internal/chain"
)

// Oracle supplies a fee quote for the given priority and chain.
type Oracle interface {
	Quote(ctx context.Context, priority chain.Priority, desc chain.Descriptor) (chain.Quote, error)
}
