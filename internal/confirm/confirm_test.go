package confirm

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartesi/tx-manager/internal/ethadapter"
)

func TestAwait_ReturnsOnceConfirmationsReached(t *testing.T) {
	hash := common.HexToHash("0x1")
	receipt := &types.Receipt{BlockNumber: big.NewInt(100), Status: types.ReceiptStatusSuccessful}

	head := uint64(100)
	adapter := &ethadapter.MockChain{
		GetReceiptFunc: func(ctx context.Context, h common.Hash) (*types.Receipt, error) {
			return receipt, nil
		},
		BlockNumberFunc: func(ctx context.Context) (uint64, error) {
			current := head
			head++
			return current, nil
		},
	}

	w := NewWaiter(adapter, time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	result, err := w.Await(ctx, hash, 3)

	require.NoError(t, err)
	assert.Equal(t, uint64(100), result.MinedBlock)
	assert.GreaterOrEqual(t, result.Confirmations, uint64(3))
}

func TestAwait_DetectsReorg(t *testing.T) {
	hash := common.HexToHash("0x1")
	receipt := &types.Receipt{BlockNumber: big.NewInt(100)}

	calls := 0
	adapter := &ethadapter.MockChain{
		GetReceiptFunc: func(ctx context.Context, h common.Hash) (*types.Receipt, error) {
			calls++
			if calls == 1 {
				return receipt, nil
			}
			return nil, nil
		},
		BlockNumberFunc: func(ctx context.Context) (uint64, error) {
			return 100, nil
		},
	}

	w := NewWaiter(adapter, time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := w.Await(ctx, hash, 5)

	assert.ErrorIs(t, err, ErrReorged)
}

func TestAwait_RespectsContextCancellation(t *testing.T) {
	hash := common.HexToHash("0x1")
	adapter := &ethadapter.MockChain{
		GetReceiptFunc: func(ctx context.Context, h common.Hash) (*types.Receipt, error) {
			return nil, nil
		},
	}

	w := NewWaiter(adapter, time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := w.Await(ctx, hash, 1)

	assert.Error(t, err)
}
