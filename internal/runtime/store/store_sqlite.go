package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"allowlist/internal/runtime"
	"allowlist/pkg/domain"
	"allowlist/pkg/platform/sentinel"
)

// SQLiteStore persists records and the invocation journal in a local sqlite
// database. Signer and Writable are per-invocation facts and are not stored.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) the database at path.
func NewSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err = db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return nil, err
	} else if _, err = db.Exec("PRAGMA synchronous=NORMAL;"); err != nil {
		return nil, err
	} else if _, err = db.Exec("PRAGMA busy_timeout=5000;"); err != nil {
		return nil, err
	} else if _, err = db.Exec(`CREATE TABLE IF NOT EXISTS records(
		key TEXT PRIMARY KEY,
		balance BIGINT NOT NULL DEFAULT 0,
		data BLOB NOT NULL,
		updated_at TEXT NOT NULL DEFAULT current_timestamp
	)`); err != nil {
		return nil, err
	} else if _, err = db.Exec(`CREATE TABLE IF NOT EXISTS invocations(
		id TEXT PRIMARY KEY,
		record TEXT NOT NULL,
		instruction TEXT NOT NULL,
		ok BOOL NOT NULL,
		error TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	)`); err != nil {
		return nil, err
	} else if _, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_invocations_record ON invocations(record, created_at)`); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key domain.ID) (*runtime.Account, error) {
	account := &runtime.Account{Key: key}
	row := s.db.QueryRowContext(ctx,
		`SELECT balance, data FROM records WHERE key = ?`, key.String())
	if err := row.Scan(&account.Balance, &account.Data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("record %s not found: %w", key, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("loading record %s: %w", key, err)
	}
	return account, nil
}

func (s *SQLiteStore) Put(ctx context.Context, account *runtime.Account) error {
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO records(key, balance, data, updated_at)
		VALUES(?1, ?2, ?3, current_timestamp)
		ON CONFLICT(key) DO UPDATE SET balance = ?2, data = ?3, updated_at = current_timestamp`,
		account.Key.String(),
		account.Balance,
		account.Data,
	); err != nil {
		return fmt.Errorf("storing record %s: %w", account.Key, err)
	}
	return nil
}

// PutAll upserts every record inside one transaction so a failure rolls the
// whole batch back.
func (s *SQLiteStore) PutAll(ctx context.Context, accounts []*runtime.Account) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting record batch: %w", err)
	}
	for _, account := range accounts {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO records(key, balance, data, updated_at)
			VALUES(?1, ?2, ?3, current_timestamp)
			ON CONFLICT(key) DO UPDATE SET balance = ?2, data = ?3, updated_at = current_timestamp`,
			account.Key.String(),
			account.Balance,
			account.Data,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("storing record %s: %w", account.Key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing record batch: %w", err)
	}
	return nil
}

func (s *SQLiteStore) AppendInvocation(ctx context.Context, inv Invocation) error {
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO invocations(id, record, instruction, ok, error, created_at)
		VALUES(?, ?, ?, ?, ?, ?)`,
		inv.ID,
		inv.Record,
		inv.Instruction,
		inv.OK,
		inv.Error,
		inv.At.UTC().Format("2006-01-02 15:04:05.000"),
	); err != nil {
		return fmt.Errorf("journaling invocation %s: %w", inv.ID, err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
