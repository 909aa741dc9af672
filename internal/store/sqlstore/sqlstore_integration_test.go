//go:build integration

package sqlstore

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/cartesi/tx-manager/internal/chain"
)

// Requires a reachable MySQL instance.
func TestStore_SaveLoadClear_Integration(t *testing.T) {
	s, err := Connect("root", "password", "127.0.0.1", 3306, "txmgr_test")
	require.NoError(t, err)
	defer s.Close()

	sender := common.HexToAddress("0xabc")
	ctx := context.Background()

	require.NoError(t, s.Clear(ctx, sender))

	record := &chain.Record{Nonce: 3}
	require.NoError(t, s.Save(ctx, sender, record))

	loaded, err := s.Load(ctx, sender)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Equal(t, uint64(3), loaded.Nonce)

	require.NoError(t, s.Clear(ctx, sender))
	loaded, err = s.Load(ctx, sender)
	require.NoError(t, err)
	require.Nil(t, loaded)
}
