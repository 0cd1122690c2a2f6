package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Radennn1/tutoring-backend/internal/models"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrDuplicateTransaction is returned when a transaction for the session
// already exists.
var ErrDuplicateTransaction = errors.New("duplicate transaction")

type LedgerRepository struct {
	db DBTX
}

func NewLedgerRepository(db DBTX) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// SettlePayout claims the pending payout of a session and applies it to the
// ledger: wallet credit, transaction record and payment log commit together
// or not at all. A payout that is missing or already settled yields
// ErrPreconditionFailed.
func (r *LedgerRepository) SettlePayout(ctx context.Context, input SettlePayoutInput) (*models.Transaction, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var tutorID string
	var amount int64
	err = tx.QueryRow(ctx, `
		UPDATE payouts
		SET status = 'settled', settled_at = $2, attempts = attempts + 1, last_error = NULL
		WHERE session_id = $1 AND status = 'pending'
		RETURNING tutor_id, amount
	`, input.SessionID, input.PaidAt).Scan(&tutorID, &amount)
	if err != nil {
		return nil, preconditionNoRows(err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO wallets (tutor_id, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (tutor_id) DO UPDATE
		SET balance = wallets.balance + EXCLUDED.balance, updated_at = EXCLUDED.updated_at
	`, tutorID, amount, input.PaidAt); err != nil {
		return nil, fmt.Errorf("credit wallet: %w", err)
	}

	var transaction models.Transaction
	err = tx.QueryRow(ctx, `
		INSERT INTO transactions (id, tutor_id, session_id, amount, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, tutor_id, session_id, amount, status, created_at
	`, input.TransactionID, tutorID, input.SessionID, amount, models.TransactionSuccess, input.PaidAt).Scan(
		&transaction.ID,
		&transaction.TutorID,
		&transaction.SessionID,
		&transaction.Amount,
		&transaction.Status,
		&transaction.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateTransaction
		}
		return nil, fmt.Errorf("insert transaction: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO payment_logs (id, transaction_id, amount, paid_at)
		VALUES ($1, $2, $3, $4)
	`, input.PaymentLogID, transaction.ID, amount, input.PaidAt); err != nil {
		return nil, fmt.Errorf("insert payment log: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &transaction, nil
}

// RecordPayoutFailure notes a failed settlement attempt on a still pending
// payout.
func (r *LedgerRepository) RecordPayoutFailure(ctx context.Context, sessionID string, reason string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE payouts
		SET attempts = attempts + 1, last_error = $2
		WHERE session_id = $1 AND status = 'pending'
	`, sessionID, reason)
	return err
}

func (r *LedgerRepository) GetPayout(ctx context.Context, sessionID string) (*models.Payout, error) {
	var payout models.Payout
	err := r.db.QueryRow(ctx, `
		SELECT session_id, tutor_id, amount, status, attempts, last_error, created_at, settled_at
		FROM payouts
		WHERE session_id = $1
	`, sessionID).Scan(
		&payout.SessionID,
		&payout.TutorID,
		&payout.Amount,
		&payout.Status,
		&payout.Attempts,
		&payout.LastError,
		&payout.CreatedAt,
		&payout.SettledAt,
	)
	if err != nil {
		return nil, normalizeNoRows(err)
	}
	return &payout, nil
}

func (r *LedgerRepository) ListPendingPayouts(ctx context.Context, limit int) ([]models.Payout, error) {
	rows, err := r.db.Query(ctx, `
		SELECT session_id, tutor_id, amount, status, attempts, last_error, created_at, settled_at
		FROM payouts
		WHERE status = 'pending'
		ORDER BY created_at ASC, session_id ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payouts := make([]models.Payout, 0)
	for rows.Next() {
		var payout models.Payout
		if err := rows.Scan(
			&payout.SessionID,
			&payout.TutorID,
			&payout.Amount,
			&payout.Status,
			&payout.Attempts,
			&payout.LastError,
			&payout.CreatedAt,
			&payout.SettledAt,
		); err != nil {
			return nil, err
		}
		payouts = append(payouts, payout)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return payouts, nil
}

func (r *LedgerRepository) GetWallet(ctx context.Context, tutorID string) (*models.Wallet, error) {
	var wallet models.Wallet
	err := r.db.QueryRow(ctx, `
		SELECT tutor_id, balance, created_at, updated_at
		FROM wallets
		WHERE tutor_id = $1
	`, tutorID).Scan(&wallet.TutorID, &wallet.Balance, &wallet.CreatedAt, &wallet.UpdatedAt)
	if err != nil {
		return nil, normalizeNoRows(err)
	}
	return &wallet, nil
}

func (r *LedgerRepository) ListTransactions(ctx context.Context, tutorID string) ([]models.Transaction, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, tutor_id, session_id, amount, status, created_at
		FROM transactions
		WHERE tutor_id = $1
		ORDER BY created_at DESC, id DESC
	`, tutorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := make([]models.Transaction, 0)
	for rows.Next() {
		var transaction models.Transaction
		if err := rows.Scan(
			&transaction.ID,
			&transaction.TutorID,
			&transaction.SessionID,
			&transaction.Amount,
			&transaction.Status,
			&transaction.CreatedAt,
		); err != nil {
			return nil, err
		}
		transactions = append(transactions, transaction)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return transactions, nil
}
