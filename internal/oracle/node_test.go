package oracle

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartesi/tx-manager/internal/chain"
	"github.com/cartesi/tx-manager/internal/ethadapter"
)

func TestNode_Quote_Legacy(t *testing.T) {
	adapter := &ethadapter.MockChain{
		LegacyGasPriceFunc: func(ctx context.Context) (*big.Int, error) {
			return big.NewInt(100), nil
		},
	}
	node := NewNode(adapter)

	quote, err := node.Quote(context.Background(), chain.Normal, chain.Descriptor{IsLegacy: true})

	require.NoError(t, err)
	assert.Equal(t, big.NewInt(115), quote.GasPrice) // 100 * 1.15
}

func TestNode_Quote_LegacyFallsBackOnError(t *testing.T) {
	adapter := &ethadapter.MockChain{
		LegacyGasPriceFunc: func(ctx context.Context) (*big.Int, error) {
			return nil, assertErr
		},
	}
	node := NewNode(adapter)

	quote, err := node.Quote(context.Background(), chain.Normal, chain.Descriptor{IsLegacy: true})

	require.NoError(t, err)
	assert.Equal(t, scale(big.NewInt(defaultGasPrice), chain.Normal), quote.GasPrice)
}

func TestNode_Quote_DynamicUsesDefaultsWithoutObservations(t *testing.T) {
	node := NewNode(&ethadapter.MockChain{})

	quote, err := node.Quote(context.Background(), chain.Normal, chain.Descriptor{IsLegacy: false})

	require.NoError(t, err)
	assert.NotNil(t, quote.MaxFee)
	assert.NotNil(t, quote.MaxPriorityFee)
}

func TestNode_Observe_TracksRollingAverage(t *testing.T) {
	node := NewNode(&ethadapter.MockChain{})
	node.Observe(big.NewInt(10), big.NewInt(1))
	node.Observe(big.NewInt(20), big.NewInt(2))

	quote, err := node.Quote(context.Background(), chain.Normal, chain.Descriptor{IsLegacy: false})
	require.NoError(t, err)
	// Average base fee 15, average tip 3/2 = 1; tip scaled by 115% = 1;
	// max fee (15 + 1) scaled by 115% = 18.
	assert.Equal(t, big.NewInt(1), quote.MaxPriorityFee)
	assert.Equal(t, big.NewInt(18), quote.MaxFee)
}

var assertErr = &testError{"boom"}

type testError struct{ msg string }

func (e *testError) Error() string { return e.msg }
