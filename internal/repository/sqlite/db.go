// Package sqlite is an embedded implementation of the session and ledger
// store. It backs local runs (STORE_DRIVER=sqlite) and the service tests.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Radennn1/tutoring-backend/internal/repository"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS students (
    id                  TEXT PRIMARY KEY,
    subscription_active INTEGER NOT NULL DEFAULT 0,
    created_at          INTEGER NOT NULL,
    updated_at          INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS sessions (
    id               TEXT PRIMARY KEY,
    tutor_id         TEXT NOT NULL,
    status           TEXT NOT NULL DEFAULT 'scheduled'
                     CHECK (status IN ('scheduled', 'ongoing', 'completed')),
    scheduled_start  INTEGER NOT NULL,
    ready_students   TEXT NOT NULL DEFAULT '[]'
                     CHECK (json_array_length(ready_students) <= 6),
    session_start    INTEGER,
    session_end      INTEGER,
    session_duration INTEGER CHECK (session_duration >= 0),
    created_at       INTEGER NOT NULL,
    updated_at       INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sessions_tutor_scheduled ON sessions (tutor_id, scheduled_start);

CREATE TABLE IF NOT EXISTS wallets (
    tutor_id   TEXT PRIMARY KEY,
    balance    INTEGER NOT NULL CHECK (balance >= 0),
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS payouts (
    session_id TEXT PRIMARY KEY REFERENCES sessions (id),
    tutor_id   TEXT NOT NULL,
    amount     INTEGER NOT NULL CHECK (amount > 0),
    status     TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'settled')),
    attempts   INTEGER NOT NULL DEFAULT 0,
    last_error TEXT,
    created_at INTEGER NOT NULL,
    settled_at INTEGER
);

CREATE TABLE IF NOT EXISTS transactions (
    id         TEXT PRIMARY KEY,
    tutor_id   TEXT NOT NULL,
    session_id TEXT NOT NULL UNIQUE REFERENCES sessions (id),
    amount     INTEGER NOT NULL,
    status     TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_tutor ON transactions (tutor_id, created_at);

CREATE TABLE IF NOT EXISTS payment_logs (
    id             TEXT PRIMARY KEY,
    transaction_id TEXT NOT NULL REFERENCES transactions (id),
    amount         INTEGER NOT NULL,
    paid_at        INTEGER NOT NULL
);
`

// Open opens (creating if needed) the database at path and applies the
// schema. A single connection is kept so writers are serialized.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}

	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}
	return db, nil
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func fromNullMillis(ms sql.NullInt64) *time.Time {
	if !ms.Valid {
		return nil
	}
	t := fromMillis(ms.Int64)
	return &t
}

func normalizeNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	return err
}

func preconditionNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrPreconditionFailed
	}
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}
