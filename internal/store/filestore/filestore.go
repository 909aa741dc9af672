// Package filestore is a one-file-per-sender persistence backend for
// internal/store.Store. Save writes to a temp file in the same directory
// and renames it over the target, which is atomic on POSIX filesystems —
// writing directly to the target path would leave a truncated, corrupt
// file on disk if the process crashed mid-write.
package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/common"

	"github.com/cartesi/tx-manager/internal/chain"
)

// Store persists one JSON file per sender under a directory.
type Store struct {
	dir string
}

// New constructs a Store rooted at dir. The directory must already exist.
func New(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) path(sender common.Address) string {
	return filepath.Join(s.dir, sender.Hex()+".json")
}

// Load implements store.Store.
func (s *Store) Load(ctx context.Context, sender common.Address) (*chain.Record, error) {
	data, err := os.ReadFile(s.path(sender))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("filestore: read %s: %w", s.path(sender), err)
	}

	var record chain.Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("filestore: parse %s: %w", s.path(sender), err)
	}
	return &record, nil
}

// Save implements store.Store, atomically: it writes to a sibling temp
// file and renames it over the target so a crash mid-write never
// corrupts the previously saved record.
func (s *Store) Save(ctx context.Context, sender common.Address, record *chain.Record) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("filestore: marshal record: %w", err)
	}

	target := s.path(sender)
	tmp, err := os.CreateTemp(s.dir, sender.Hex()+".*.tmp")
	if err != nil {
		return fmt.Errorf("filestore: create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("filestore: write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("filestore: sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("filestore: close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("filestore: rename temp file over %s: %w", target, err)
	}
	return nil
}

// Clear implements store.Store.
func (s *Store) Clear(ctx context.Context, sender common.Address) error {
	err := os.Remove(s.path(sender))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("filestore: remove %s: %w", s.path(sender), err)
	}
	return nil
}
