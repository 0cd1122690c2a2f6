package services

import (
	"context"
	"errors"
	"log"

	"github.com/Radennn1/tutoring-backend/internal/clock"
	"github.com/Radennn1/tutoring-backend/internal/models"
	"github.com/Radennn1/tutoring-backend/internal/repository"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const pendingPayoutBatch = 100

type ledgerStore interface {
	SettlePayout(ctx context.Context, input repository.SettlePayoutInput) (*models.Transaction, error)
	RecordPayoutFailure(ctx context.Context, sessionID string, reason string) error
	ListPendingPayouts(ctx context.Context, limit int) ([]models.Payout, error)
	GetWallet(ctx context.Context, tutorID string) (*models.Wallet, error)
	ListTransactions(ctx context.Context, tutorID string) ([]models.Transaction, error)
}

// SettlementService pays tutors for completed sessions. Each payout is
// applied to the ledger in a single store transaction keyed by session, so
// a session is paid at most once however often Settle runs.
type SettlementService struct {
	ledger ledgerStore
	clock  clock.Clock
}

func NewSettlementService(ledger ledgerStore, clk clock.Clock) *SettlementService {
	if clk == nil {
		clk = clock.System{}
	}
	return &SettlementService{ledger: ledger, clock: clk}
}

func (s *SettlementService) Settle(ctx context.Context, sessionID string) (transaction *models.Transaction, err error) {
	ctx, span := tracer.Start(ctx, "SettlementService.Settle", trace.WithAttributes(
		attribute.String("session.id", sessionID),
	))
	defer func() { finishSpan(span, err) }()

	now, err := s.clock.Now(ctx)
	if err != nil {
		return nil, err
	}

	transaction, err = s.ledger.SettlePayout(ctx, repository.SettlePayoutInput{
		SessionID:     sessionID,
		TransactionID: uuid.NewString(),
		PaymentLogID:  uuid.NewString(),
		PaidAt:        now,
	})
	if err != nil {
		if errors.Is(err, repository.ErrPreconditionFailed) || errors.Is(err, repository.ErrDuplicateTransaction) {
			return nil, ErrPayoutNotPending
		}
		if recordErr := s.ledger.RecordPayoutFailure(ctx, sessionID, err.Error()); recordErr != nil {
			log.Printf("record payout failure for session %s: %v", sessionID, recordErr)
		}
		return nil, err
	}
	span.SetAttributes(attribute.Int64("payment.amount", transaction.Amount))
	return transaction, nil
}

// SettlePending settles up to one batch of payouts still pending and
// returns how many were settled.
func (s *SettlementService) SettlePending(ctx context.Context) (int, error) {
	payouts, err := s.ledger.ListPendingPayouts(ctx, pendingPayoutBatch)
	if err != nil {
		return 0, err
	}

	settled := 0
	for _, payout := range payouts {
		if ctx.Err() != nil {
			return settled, ctx.Err()
		}
		if _, err := s.Settle(ctx, payout.SessionID); err != nil {
			if !errors.Is(err, ErrPayoutNotPending) {
				log.Printf("settle pending payout for session %s: %v", payout.SessionID, err)
			}
			continue
		}
		settled++
	}
	return settled, nil
}

// Wallet returns the tutor's balance and payment history. A tutor who was
// never paid has a zero balance.
func (s *SettlementService) Wallet(ctx context.Context, tutorID string) (*models.WalletDetail, error) {
	detail := &models.WalletDetail{Wallet: models.Wallet{TutorID: tutorID}}

	wallet, err := s.ledger.GetWallet(ctx, tutorID)
	switch {
	case err == nil:
		detail.Wallet = *wallet
	case errors.Is(err, repository.ErrNotFound):
	default:
		return nil, err
	}

	transactions, err := s.ledger.ListTransactions(ctx, tutorID)
	if err != nil {
		return nil, err
	}
	detail.Transactions = transactions
	return detail, nil
}
