package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/Radennn1/tutoring-backend/internal/clock"
	"github.com/Radennn1/tutoring-backend/internal/models"
	"github.com/Radennn1/tutoring-backend/internal/repository"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	// MaxReadyStudents is the session capacity.
	MaxReadyStudents = 6
	// EarlyStartWindow is how long before its schedule a session may start.
	EarlyStartWindow = 15 * time.Minute

	DefaultRequiredDurationMinutes = 45
	DefaultPaymentAmount           = 50000

	maxReadyAttempts = 3
)

type sessionStore interface {
	Create(ctx context.Context, input repository.CreateSessionInput) (*models.Session, error)
	GetByID(ctx context.Context, sessionID string) (*models.Session, error)
	ListByTutor(ctx context.Context, tutorID string, status string) ([]models.Session, error)
	AddReadyStudent(ctx context.Context, sessionID string, studentID string, capacity int) (int, error)
	MarkStarted(ctx context.Context, sessionID string, startedAt time.Time) (*models.Session, error)
	MarkCompleted(ctx context.Context, input repository.CompleteSessionInput) (*models.Session, error)
}

type studentReader interface {
	GetByID(ctx context.Context, studentID string) (*models.Student, error)
}

type payoutSettler interface {
	Settle(ctx context.Context, sessionID string) (*models.Transaction, error)
}

// PaymentRules configures when and how much a tutor is paid for a session.
type PaymentRules struct {
	RequiredDurationMinutes int
	Amount                  int64
}

func DefaultPaymentRules() PaymentRules {
	return PaymentRules{
		RequiredDurationMinutes: DefaultRequiredDurationMinutes,
		Amount:                  DefaultPaymentAmount,
	}
}

type SessionService struct {
	sessions   sessionStore
	students   studentReader
	settlement payoutSettler
	clock      clock.Clock
	events     EventPublisher
	rules      PaymentRules
}

func NewSessionService(
	sessions sessionStore,
	students studentReader,
	settlement payoutSettler,
	clk clock.Clock,
	events EventPublisher,
	rules PaymentRules,
) *SessionService {
	if clk == nil {
		clk = clock.System{}
	}
	return &SessionService{
		sessions:   sessions,
		students:   students,
		settlement: settlement,
		clock:      clk,
		events:     events,
		rules:      rules,
	}
}

type EndSessionResult struct {
	Session                 *models.Session
	DurationMinutes         int
	RequiredDurationMinutes int
	Paid                    bool
	Amount                  int64
	// PaymentPending is set when the session earned a payment that could
	// not be settled right away; the reconciler settles it later.
	PaymentPending bool
}

func (s *SessionService) CreateSession(
	ctx context.Context,
	tutorID string,
	scheduledStart time.Time,
) (session *models.Session, err error) {
	ctx, span := tracer.Start(ctx, "SessionService.CreateSession")
	defer func() { finishSpan(span, err) }()

	if scheduledStart.IsZero() {
		return nil, ErrInvalidScheduledStart
	}
	now, err := s.clock.Now(ctx)
	if err != nil {
		return nil, err
	}

	session, err = s.sessions.Create(ctx, repository.CreateSessionInput{
		ID:             uuid.NewString(),
		TutorID:        tutorID,
		ScheduledStart: scheduledStart.UTC(),
		CreatedAt:      now,
	})
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("session.id", session.ID))
	return session, nil
}

func (s *SessionService) GetSession(
	ctx context.Context,
	actorID string,
	sessionID string,
) (*models.Session, error) {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.TutorID != actorID && !session.HasReadyStudent(actorID) {
		return nil, ErrSessionHidden
	}
	return session, nil
}

func (s *SessionService) ListTutorSessions(
	ctx context.Context,
	tutorID string,
	status string,
) ([]models.Session, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	switch models.SessionStatus(status) {
	case "", models.SessionScheduled, models.SessionOngoing, models.SessionCompleted:
	default:
		return nil, ErrInvalidStatusFilter
	}
	return s.sessions.ListByTutor(ctx, tutorID, status)
}

// MarkReady registers studentID on a scheduled session and returns the new
// number of ready students.
func (s *SessionService) MarkReady(
	ctx context.Context,
	studentID string,
	sessionID string,
) (count int, err error) {
	ctx, span := tracer.Start(ctx, "SessionService.MarkReady", trace.WithAttributes(
		attribute.String("session.id", sessionID),
	))
	defer func() { finishSpan(span, err) }()

	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return 0, ErrSessionIDRequired
	}

	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrSubscriptionRequired
		}
		return 0, err
	}
	if !student.SubscriptionActive {
		return 0, ErrSubscriptionRequired
	}

	for attempt := 0; attempt < maxReadyAttempts; attempt++ {
		session, err := s.loadSession(ctx, sessionID)
		if err != nil {
			return 0, err
		}
		if err := checkReady(session, studentID); err != nil {
			return 0, err
		}

		count, err = s.sessions.AddReadyStudent(ctx, sessionID, studentID, MaxReadyStudents)
		if err == nil {
			s.publish(SessionEvent{
				Type:       EventStudentReady,
				SessionID:  sessionID,
				ActorID:    studentID,
				Status:     string(models.SessionScheduled),
				ReadyCount: count,
			})
			return count, nil
		}
		if !errors.Is(err, repository.ErrPreconditionFailed) {
			return 0, err
		}
	}
	return 0, ErrSessionNotOpen
}

// StartSession moves a scheduled session to ongoing. Only the owning tutor
// may start it, and not earlier than EarlyStartWindow before its schedule.
func (s *SessionService) StartSession(
	ctx context.Context,
	tutorID string,
	sessionID string,
) (started *models.Session, err error) {
	ctx, span := tracer.Start(ctx, "SessionService.StartSession", trace.WithAttributes(
		attribute.String("session.id", sessionID),
	))
	defer func() { finishSpan(span, err) }()

	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.TutorID != tutorID {
		return nil, ErrNotSessionOwner
	}
	if session.Status != models.SessionScheduled {
		return nil, ErrSessionNotStartable
	}
	if len(session.ReadyStudents) == 0 {
		return nil, ErrNoStudentsReady
	}
	if session.ScheduledStart.IsZero() {
		return nil, ErrInvalidScheduledStart
	}

	now, err := s.clock.Now(ctx)
	if err != nil {
		return nil, err
	}
	if now.Before(clock.EarliestStart(session.ScheduledStart, EarlyStartWindow)) {
		return nil, ErrTooEarly
	}

	started, err = s.sessions.MarkStarted(ctx, session.ID, now)
	if err != nil {
		if errors.Is(err, repository.ErrPreconditionFailed) {
			return nil, ErrSessionNotStartable
		}
		return nil, err
	}

	s.publish(SessionEvent{
		Type:       EventSessionStarted,
		SessionID:  started.ID,
		ActorID:    tutorID,
		Status:     string(started.Status),
		ReadyCount: len(started.ReadyStudents),
	})
	return started, nil
}

// EndSession completes an ongoing session. The session is completed
// regardless of its length; a payout is owed only when it ran at least
// the required duration.
func (s *SessionService) EndSession(
	ctx context.Context,
	tutorID string,
	sessionID string,
) (result *EndSessionResult, err error) {
	ctx, span := tracer.Start(ctx, "SessionService.EndSession", trace.WithAttributes(
		attribute.String("session.id", sessionID),
	))
	defer func() { finishSpan(span, err) }()

	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.TutorID != tutorID {
		return nil, ErrNotSessionOwner
	}
	if session.Status != models.SessionOngoing {
		return nil, ErrSessionNotOngoing
	}
	if session.SessionStart == nil {
		return nil, ErrSessionNotStarted
	}

	now, err := s.clock.Now(ctx)
	if err != nil {
		return nil, err
	}
	duration := clock.ElapsedMinutes(*session.SessionStart, now)
	qualifies := duration >= s.rules.RequiredDurationMinutes

	input := repository.CompleteSessionInput{
		SessionID:       session.ID,
		EndedAt:         now,
		DurationMinutes: duration,
	}
	if qualifies {
		input.Payout = &repository.PayoutInput{TutorID: session.TutorID, Amount: s.rules.Amount}
	}

	completed, err := s.sessions.MarkCompleted(ctx, input)
	if err != nil {
		if errors.Is(err, repository.ErrPreconditionFailed) {
			return nil, ErrSessionNotOngoing
		}
		return nil, err
	}

	result = &EndSessionResult{
		Session:                 completed,
		DurationMinutes:         duration,
		RequiredDurationMinutes: s.rules.RequiredDurationMinutes,
	}
	if qualifies {
		transaction, err := s.settlement.Settle(ctx, session.ID)
		switch {
		case err == nil:
			result.Paid = true
			result.Amount = transaction.Amount
		case errors.Is(err, ErrPayoutNotPending):
			// Settled concurrently by the reconciler.
			result.Paid = true
			result.Amount = s.rules.Amount
		default:
			log.Printf("settle session %s: %v", session.ID, err)
			result.PaymentPending = true
			result.Amount = s.rules.Amount
		}
	}
	span.SetAttributes(
		attribute.Int("session.duration_minutes", duration),
		attribute.Bool("session.paid", result.Paid),
	)

	paid := result.Paid
	s.publish(SessionEvent{
		Type:            EventSessionEnded,
		SessionID:       completed.ID,
		ActorID:         tutorID,
		Status:          string(completed.Status),
		ReadyCount:      len(completed.ReadyStudents),
		DurationMinutes: &duration,
		Paid:            &paid,
	})
	return result, nil
}

func (s *SessionService) loadSession(ctx context.Context, sessionID string) (*models.Session, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, ErrSessionIDRequired
	}
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

func (s *SessionService) publish(event SessionEvent) {
	if s.events == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	s.events.Publish(event)
}

// checkReady applies the registration rules in order: phase, capacity,
// duplicate.
func checkReady(session *models.Session, studentID string) error {
	if session.Status != models.SessionScheduled {
		return ErrSessionNotOpen
	}
	if len(session.ReadyStudents) >= MaxReadyStudents {
		return ErrSessionFull
	}
	if session.HasReadyStudent(studentID) {
		return ErrAlreadyReady
	}
	return nil
}
