package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const (
	slotsKey        = "slots"
	transactionsKey = "transactions"
)

// Store is a SQLite-backed key-value snapshot store. State is saved
// all-or-nothing inside one transaction; I/O errors are reported upward,
// never retried here.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the store at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("store path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS facility_state (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		updated_at INTEGER NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveState writes the slot registry and visit ledger snapshots in one
// transaction.
func (s *Store) SaveState(ctx context.Context, state State) error {
	slots, err := json.Marshal(state.Slots)
	if err != nil {
		return fmt.Errorf("marshal slots: %w", err)
	}
	transactions, err := json.Marshal(state.Transactions)
	if err != nil {
		return fmt.Errorf("marshal transactions: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Unix()
	upsert := `INSERT INTO facility_state (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

	if _, err := tx.ExecContext(ctx, upsert, slotsKey, slots, now); err != nil {
		return fmt.Errorf("save slots: %w", err)
	}
	if _, err := tx.ExecContext(ctx, upsert, transactionsKey, transactions, now); err != nil {
		return fmt.Errorf("save transactions: %w", err)
	}
	return tx.Commit()
}

// LoadState reads the last saved snapshot. A missing key yields an empty
// collection, so a fresh database loads as an empty facility.
func (s *Store) LoadState(ctx context.Context) (State, error) {
	var state State

	slots, err := s.loadValue(ctx, slotsKey)
	if err != nil {
		return State{}, err
	}
	if slots != nil {
		if err := json.Unmarshal(slots, &state.Slots); err != nil {
			return State{}, fmt.Errorf("unmarshal slots: %w", err)
		}
	}

	transactions, err := s.loadValue(ctx, transactionsKey)
	if err != nil {
		return State{}, err
	}
	if transactions != nil {
		if err := json.Unmarshal(transactions, &state.Transactions); err != nil {
			return State{}, fmt.Errorf("unmarshal transactions: %w", err)
		}
	}

	return state, nil
}

func (s *Store) loadValue(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM facility_state WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	return value, nil
}
