package oracle

import (
	"context"

	"github.com/cartesi/tx-manager/internal/chain"
)

// MockOracle is a hand-written fake of Oracle, following the same
// XxxFunc-field convention as ethadapter.MockChain.
type MockOracle struct {
	QuoteFunc func(ctx context.Context, priority chain.Priority, desc chain.Descriptor) (chain.Quote, error)
}

func (m *MockOracle) Quote(ctx context.Context, priority chain.Priority, desc chain.Descriptor) (chain.Quote, error) {
	if m.QuoteFunc != nil {
		return m.QuoteFunc(ctx, priority, desc)
	}
	return chain.Quote{GasPrice: chain.ZeroValue()}, nil
}
