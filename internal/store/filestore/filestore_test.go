package filestore

import (
	"context"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartesi/tx-manager/internal/chain"
)

func TestStore_SaveLoadRoundtrip(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	sender := common.HexToAddress("0x1")

	record := &chain.Record{
		Request: chain.Request{From: sender, Value: big.NewInt(100)},
		Nonce:   7,
	}

	require.NoError(t, s.Save(context.Background(), sender, record))

	loaded, err := s.Load(context.Background(), sender)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, uint64(7), loaded.Nonce)
	assert.Equal(t, big.NewInt(100).String(), loaded.Request.Value.String())
}

func TestStore_LoadMissingReturnsNilNil(t *testing.T) {
	s := New(t.TempDir())
	loaded, err := s.Load(context.Background(), common.HexToAddress("0x2"))
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestStore_SaveLeavesNoTempFilesBehind(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	sender := common.HexToAddress("0x3")

	require.NoError(t, s.Save(context.Background(), sender, &chain.Record{Nonce: 1}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, sender.Hex()+".json", entries[0].Name())
}

func TestStore_Clear(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	sender := common.HexToAddress("0x4")

	require.NoError(t, s.Save(context.Background(), sender, &chain.Record{Nonce: 1}))
	require.NoError(t, s.Clear(context.Background(), sender))

	_, err := os.Stat(filepath.Join(dir, sender.Hex()+".json"))
	assert.True(t, os.IsNotExist(err))

	// Clearing an already-cleared store is not an error.
	require.NoError(t, s.Clear(context.Background(), sender))
}
