package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when the addressed record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrPreconditionFailed is returned when a conditional update matched no
	// row because the record changed since it was read.
	ErrPreconditionFailed = errors.New("precondition failed")
)

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx, so repositories run the
// same way inside and outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type CreateSessionInput struct {
	ID             string
	TutorID        string
	ScheduledStart time.Time
	CreatedAt      time.Time
}

type PayoutInput struct {
	TutorID string
	Amount  int64
}

type CompleteSessionInput struct {
	SessionID       string
	EndedAt         time.Time
	DurationMinutes int
	// Payout, when set, is enqueued in the same transaction as the
	// completion.
	Payout *PayoutInput
}

type SettlePayoutInput struct {
	SessionID     string
	TransactionID string
	PaymentLogID  string
	PaidAt        time.Time
}

type UpsertStudentInput struct {
	ID                 string
	SubscriptionActive bool
	UpdatedAt          time.Time
}

func normalizeNoRows(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func preconditionNoRows(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrPreconditionFailed
	}
	return err
}
