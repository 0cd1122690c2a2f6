package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Radennn1/tutoring-backend/internal/models"
)

func endQualifyingSession(t *testing.T, env *testEnv, tutorID string) *EndSessionResult {
	t.Helper()
	ctx := context.Background()

	session := env.createSession(t, tutorID)
	env.readyStudents(t, session.ID, "student-a")
	env.clock.Set(scheduledAt)
	if _, err := env.sessions.StartSession(ctx, tutorID, session.ID); err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	env.clock.Advance(time.Hour)
	result, err := env.sessions.EndSession(ctx, tutorID, session.ID)
	if err != nil {
		t.Fatalf("EndSession: %v", err)
	}
	return result
}

func TestSettleIsIdempotentPerSession(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	result := endQualifyingSession(t, env, "tutor-1")
	if !result.Paid {
		t.Fatalf("expected session to be paid, got %+v", result)
	}

	for i := 0; i < 3; i++ {
		if _, err := env.settlement.Settle(ctx, result.Session.ID); !errors.Is(err, ErrPayoutNotPending) {
			t.Fatalf("expected ErrPayoutNotPending on repeat settle, got %v", err)
		}
	}
	if got := env.balance(t, "tutor-1"); got != DefaultPaymentAmount {
		t.Fatalf("expected balance %d after repeats, got %d", DefaultPaymentAmount, got)
	}

	payout, err := env.ledger.GetPayout(ctx, result.Session.ID)
	if err != nil {
		t.Fatalf("GetPayout: %v", err)
	}
	if payout.Status != models.PayoutSettled || payout.SettledAt == nil {
		t.Fatalf("expected settled payout, got %+v", payout)
	}
}

func TestSettleUnknownSessionIsNotPending(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.settlement.Settle(context.Background(), "missing"); !errors.Is(err, ErrPayoutNotPending) {
		t.Fatalf("expected ErrPayoutNotPending, got %v", err)
	}
}

func TestFailedSettlementStaysPendingUntilReconciled(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.ledger.failures = 1

	result := endQualifyingSession(t, env, "tutor-1")
	if result.Paid || !result.PaymentPending {
		t.Fatalf("expected pending payment after ledger failure, got %+v", result)
	}
	if result.Session.Status != models.SessionCompleted {
		t.Fatalf("session must complete even when payment is pending, got %q", result.Session.Status)
	}
	if got := env.balance(t, "tutor-1"); got != 0 {
		t.Fatalf("expected no credit yet, got %d", got)
	}

	payout, err := env.ledger.GetPayout(ctx, result.Session.ID)
	if err != nil {
		t.Fatalf("GetPayout: %v", err)
	}
	if payout.Status != models.PayoutPending || payout.Attempts != 1 || payout.LastError == nil {
		t.Fatalf("expected recorded failed attempt, got %+v", payout)
	}

	settled, err := env.settlement.SettlePending(ctx)
	if err != nil {
		t.Fatalf("SettlePending: %v", err)
	}
	if settled != 1 {
		t.Fatalf("expected 1 settled payout, got %d", settled)
	}
	if got := env.balance(t, "tutor-1"); got != DefaultPaymentAmount {
		t.Fatalf("expected balance %d, got %d", DefaultPaymentAmount, got)
	}

	settled, err = env.settlement.SettlePending(ctx)
	if err != nil {
		t.Fatalf("SettlePending second run: %v", err)
	}
	if settled != 0 {
		t.Fatalf("expected nothing left to settle, got %d", settled)
	}
}

func TestWalletForUnpaidTutorIsEmpty(t *testing.T) {
	env := newTestEnv(t)
	detail, err := env.settlement.Wallet(context.Background(), "tutor-9")
	if err != nil {
		t.Fatalf("Wallet: %v", err)
	}
	if detail.Wallet.TutorID != "tutor-9" || detail.Wallet.Balance != 0 || len(detail.Transactions) != 0 {
		t.Fatalf("expected empty wallet, got %+v", detail)
	}
}
