// Package sqlstore is a MySQL-backed persistence backend for
// internal/store.Store. It owns exactly one table and creates it itself
// with CREATE TABLE IF NOT EXISTS — a single-table schema has nothing for
// a migration runner to version.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ethereum/go-ethereum/common"
	"github.com/sisu-network/lib/log"

	"github.com/cartesi/tx-manager/internal/chain"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS tx_records (
	sender     VARCHAR(42) NOT NULL PRIMARY KEY,
	data       MEDIUMTEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
)`

// Store persists one row per sender in a tx_records table.
type Store struct {
	db *sql.DB
}

// Connect opens a MySQL connection at host:port/schema, creating the
// schema if needed, and ensures the tx_records table exists.
func Connect(username, password, host string, port int, schema string) (*Store, error) {
	url := fmt.Sprintf("%s:%s@tcp(%s:%d)/", username, password, host, port)
	db, err := sql.Open("mysql", url)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open: %w", err)
	}
	if _, err := db.Exec("CREATE DATABASE IF NOT EXISTS " + schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlstore: create database: %w", err)
	}
	db.Close()

	db, err = sql.Open("mysql", fmt.Sprintf("%s:%s@tcp(%s:%d)/%s", username, password, host, port, schema))
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open schema: %w", err)
	}

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	log.Infof("sqlstore: connected to %s:%d/%s", host, port, schema)
	return s, nil
}

// New wraps an already-open *sql.DB, ensuring the tx_records table exists.
// Useful for tests against an in-process/sqlmock DB.
func New(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureSchema() error {
	if _, err := s.db.Exec(createTableSQL); err != nil {
		return fmt.Errorf("sqlstore: create table: %w", err)
	}
	return nil
}

// Load implements store.Store.
func (s *Store) Load(ctx context.Context, sender common.Address) (*chain.Record, error) {
	row := s.db.QueryRowContext(ctx, "SELECT data FROM tx_records WHERE sender = ?", sender.Hex())

	var data string
	switch err := row.Scan(&data); err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		// fall through
	default:
		return nil, fmt.Errorf("sqlstore: query: %w", err)
	}

	var record chain.Record
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return nil, fmt.Errorf("sqlstore: parse record: %w", err)
	}
	return &record, nil
}

// Save implements store.Store. It replaces any existing row for sender
// inside a single transaction, so a failed write never leaves a
// half-updated record.
func (s *Store) Save(ctx context.Context, sender common.Address, record *chain.Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("sqlstore: marshal record: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlstore: begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO tx_records (sender, data) VALUES (?, ?) ON DUPLICATE KEY UPDATE data = VALUES(data)",
		sender.Hex(), string(data))
	if err != nil {
		return fmt.Errorf("sqlstore: upsert: %w", err)
	}

	return tx.Commit()
}

// Clear implements store.Store.
func (s *Store) Clear(ctx context.Context, sender common.Address) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM tx_records WHERE sender = ?", sender.Hex())
	if err != nil {
		return fmt.Errorf("sqlstore: delete: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}
