package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Radennn1/tutoring-backend/internal/models"
	"github.com/Radennn1/tutoring-backend/internal/repository"
	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const payoutColumns = `session_id, tutor_id, amount, status, attempts, last_error, created_at, settled_at`

type LedgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) SettlePayout(ctx context.Context, input repository.SettlePayoutInput) (*models.Transaction, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	paidAt := toMillis(input.PaidAt)

	var tutorID string
	var amount int64
	err = tx.QueryRowContext(ctx, `
		UPDATE payouts
		SET status = 'settled', settled_at = ?2, attempts = attempts + 1, last_error = NULL
		WHERE session_id = ?1 AND status = 'pending'
		RETURNING tutor_id, amount
	`, input.SessionID, paidAt).Scan(&tutorID, &amount)
	if err != nil {
		return nil, preconditionNoRows(err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO wallets (tutor_id, balance, created_at, updated_at)
		VALUES (?1, ?2, ?3, ?3)
		ON CONFLICT (tutor_id) DO UPDATE
		SET balance = wallets.balance + excluded.balance, updated_at = excluded.updated_at
	`, tutorID, amount, paidAt); err != nil {
		return nil, fmt.Errorf("credit wallet: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO transactions (id, tutor_id, session_id, amount, status, created_at)
		VALUES (?1, ?2, ?3, ?4, ?5, ?6)
	`, input.TransactionID, tutorID, input.SessionID, amount, models.TransactionSuccess, paidAt); err != nil {
		var sqliteErr *moderncsqlite.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
			return nil, repository.ErrDuplicateTransaction
		}
		return nil, fmt.Errorf("insert transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO payment_logs (id, transaction_id, amount, paid_at)
		VALUES (?1, ?2, ?3, ?4)
	`, input.PaymentLogID, input.TransactionID, amount, paidAt); err != nil {
		return nil, fmt.Errorf("insert payment log: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &models.Transaction{
		ID:        input.TransactionID,
		TutorID:   tutorID,
		SessionID: input.SessionID,
		Amount:    amount,
		Status:    models.TransactionSuccess,
		CreatedAt: fromMillis(paidAt),
	}, nil
}

func (r *LedgerRepository) RecordPayoutFailure(ctx context.Context, sessionID string, reason string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE payouts
		SET attempts = attempts + 1, last_error = ?2
		WHERE session_id = ?1 AND status = 'pending'
	`, sessionID, reason)
	return err
}

func (r *LedgerRepository) GetPayout(ctx context.Context, sessionID string) (*models.Payout, error) {
	payout, err := scanPayout(r.db.QueryRowContext(ctx, `SELECT `+payoutColumns+` FROM payouts WHERE session_id = ?1`, sessionID))
	if err != nil {
		return nil, normalizeNoRows(err)
	}
	return payout, nil
}

func (r *LedgerRepository) ListPendingPayouts(ctx context.Context, limit int) ([]models.Payout, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+payoutColumns+`
		FROM payouts
		WHERE status = 'pending'
		ORDER BY created_at ASC, session_id ASC
		LIMIT ?1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payouts := make([]models.Payout, 0)
	for rows.Next() {
		payout, err := scanPayout(rows)
		if err != nil {
			return nil, err
		}
		payouts = append(payouts, *payout)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return payouts, nil
}

func (r *LedgerRepository) GetWallet(ctx context.Context, tutorID string) (*models.Wallet, error) {
	var (
		wallet    models.Wallet
		createdAt int64
		updatedAt int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT tutor_id, balance, created_at, updated_at
		FROM wallets
		WHERE tutor_id = ?1
	`, tutorID).Scan(&wallet.TutorID, &wallet.Balance, &createdAt, &updatedAt)
	if err != nil {
		return nil, normalizeNoRows(err)
	}
	wallet.CreatedAt = fromMillis(createdAt)
	wallet.UpdatedAt = fromMillis(updatedAt)
	return &wallet, nil
}

func (r *LedgerRepository) ListTransactions(ctx context.Context, tutorID string) ([]models.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, tutor_id, session_id, amount, status, created_at
		FROM transactions
		WHERE tutor_id = ?1
		ORDER BY created_at DESC, id DESC
	`, tutorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := make([]models.Transaction, 0)
	for rows.Next() {
		var transaction models.Transaction
		var createdAt int64
		if err := rows.Scan(
			&transaction.ID,
			&transaction.TutorID,
			&transaction.SessionID,
			&transaction.Amount,
			&transaction.Status,
			&createdAt,
		); err != nil {
			return nil, err
		}
		transaction.CreatedAt = fromMillis(createdAt)
		transactions = append(transactions, transaction)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return transactions, nil
}

func scanPayout(row rowScanner) (*models.Payout, error) {
	var (
		payout    models.Payout
		status    string
		lastError sql.NullString
		createdAt int64
		settledAt sql.NullInt64
	)
	if err := row.Scan(
		&payout.SessionID,
		&payout.TutorID,
		&payout.Amount,
		&status,
		&payout.Attempts,
		&lastError,
		&createdAt,
		&settledAt,
	); err != nil {
		return nil, err
	}
	payout.Status = models.PayoutStatus(status)
	if lastError.Valid {
		payout.LastError = &lastError.String
	}
	payout.CreatedAt = fromMillis(createdAt)
	payout.SettledAt = fromNullMillis(settledAt)
	return &payout, nil
}
