package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Radennn1/tutoring-backend/internal/models"
	"github.com/jackc/pgx/v5"
)

const sessionColumns = `id, tutor_id, status, scheduled_start, ready_students, session_start, session_end, session_duration, created_at, updated_at`

type SessionRepository struct {
	db DBTX
}

func NewSessionRepository(db DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, input CreateSessionInput) (*models.Session, error) {
	query := `
		INSERT INTO sessions (id, tutor_id, status, scheduled_start, ready_students, created_at, updated_at)
		VALUES ($1, $2, 'scheduled', $3, '{}', $4, $4)
		RETURNING ` + sessionColumns

	return scanSession(r.db.QueryRow(ctx, query, input.ID, input.TutorID, input.ScheduledStart, input.CreatedAt))
}

func (r *SessionRepository) GetByID(ctx context.Context, sessionID string) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`
	session, err := scanSession(r.db.QueryRow(ctx, query, sessionID))
	if err != nil {
		return nil, normalizeNoRows(err)
	}
	return session, nil
}

func (r *SessionRepository) ListByTutor(
	ctx context.Context,
	tutorID string,
	status string,
) ([]models.Session, error) {
	args := []any{tutorID}
	whereParts := []string{"tutor_id = $1"}
	if status = strings.TrimSpace(status); status != "" {
		args = append(args, status)
		whereParts = append(whereParts, fmt.Sprintf("status = $%d", len(args)))
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM sessions
		WHERE %s
		ORDER BY scheduled_start ASC, id ASC
	`, sessionColumns, strings.Join(whereParts, " AND "))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]models.Session, 0)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// AddReadyStudent appends studentID to the ready set in one statement,
// guarded on the session still being scheduled, below capacity and not
// already containing the student. It returns the new set size, or
// ErrPreconditionFailed when any guard rejected the append.
func (r *SessionRepository) AddReadyStudent(
	ctx context.Context,
	sessionID string,
	studentID string,
	capacity int,
) (int, error) {
	query := `
		UPDATE sessions
		SET ready_students = array_append(ready_students, $2), updated_at = NOW()
		WHERE id = $1
		  AND status = 'scheduled'
		  AND cardinality(ready_students) < $3
		  AND NOT ($2 = ANY(ready_students))
		RETURNING cardinality(ready_students)
	`
	var count int
	if err := r.db.QueryRow(ctx, query, sessionID, studentID, capacity).Scan(&count); err != nil {
		return 0, preconditionNoRows(err)
	}
	return count, nil
}

func (r *SessionRepository) MarkStarted(
	ctx context.Context,
	sessionID string,
	startedAt time.Time,
) (*models.Session, error) {
	query := `
		UPDATE sessions
		SET status = 'ongoing', session_start = $2, updated_at = $2
		WHERE id = $1 AND status = 'scheduled' AND cardinality(ready_students) > 0
		RETURNING ` + sessionColumns

	session, err := scanSession(r.db.QueryRow(ctx, query, sessionID, startedAt))
	if err != nil {
		return nil, preconditionNoRows(err)
	}
	return session, nil
}

// MarkCompleted moves an ongoing session to completed and, when the input
// carries a payout, records it as pending in the same transaction.
func (r *SessionRepository) MarkCompleted(
	ctx context.Context,
	input CompleteSessionInput,
) (*models.Session, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	query := `
		UPDATE sessions
		SET status = 'completed', session_end = $2, session_duration = $3, updated_at = $2
		WHERE id = $1 AND status = 'ongoing' AND session_start IS NOT NULL
		RETURNING ` + sessionColumns

	session, err := scanSession(tx.QueryRow(ctx, query, input.SessionID, input.EndedAt, input.DurationMinutes))
	if err != nil {
		return nil, preconditionNoRows(err)
	}

	if input.Payout != nil {
		if _, err := tx.Exec(ctx, `
			INSERT INTO payouts (session_id, tutor_id, amount, status, attempts, created_at)
			VALUES ($1, $2, $3, 'pending', 0, $4)
			ON CONFLICT (session_id) DO NOTHING
		`, input.SessionID, input.Payout.TutorID, input.Payout.Amount, input.EndedAt); err != nil {
			return nil, fmt.Errorf("enqueue payout: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return session, nil
}

func scanSession(row pgx.Row) (*models.Session, error) {
	var session models.Session
	err := row.Scan(
		&session.ID,
		&session.TutorID,
		&session.Status,
		&session.ScheduledStart,
		&session.ReadyStudents,
		&session.SessionStart,
		&session.SessionEnd,
		&session.SessionDuration,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if session.ReadyStudents == nil {
		session.ReadyStudents = []string{}
	}
	return &session, nil
}
