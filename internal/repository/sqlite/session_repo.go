package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Radennn1/tutoring-backend/internal/models"
	"github.com/Radennn1/tutoring-backend/internal/repository"
)

const sessionColumns = `id, tutor_id, status, scheduled_start, ready_students, session_start, session_end, session_duration, created_at, updated_at`

type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, input repository.CreateSessionInput) (*models.Session, error) {
	query := `
		INSERT INTO sessions (id, tutor_id, status, scheduled_start, ready_students, created_at, updated_at)
		VALUES (?1, ?2, 'scheduled', ?3, '[]', ?4, ?4)
		RETURNING ` + sessionColumns

	return scanSession(r.db.QueryRowContext(
		ctx,
		query,
		input.ID,
		input.TutorID,
		toMillis(input.ScheduledStart),
		toMillis(input.CreatedAt),
	))
}

func (r *SessionRepository) GetByID(ctx context.Context, sessionID string) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = ?1`
	session, err := scanSession(r.db.QueryRowContext(ctx, query, sessionID))
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
	whereParts := []string{"tutor_id = ?1"}
	if status = strings.TrimSpace(status); status != "" {
		args = append(args, status)
		whereParts = append(whereParts, fmt.Sprintf("status = ?%d", len(args)))
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM sessions
		WHERE %s
		ORDER BY scheduled_start ASC, id ASC
	`, sessionColumns, strings.Join(whereParts, " AND "))

	rows, err := r.db.QueryContext(ctx, query, args...)
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

func (r *SessionRepository) AddReadyStudent(
	ctx context.Context,
	sessionID string,
	studentID string,
	capacity int,
) (int, error) {
	query := `
		UPDATE sessions
		SET ready_students = json_insert(ready_students, '$[#]', ?2), updated_at = ?3
		WHERE id = ?1
		  AND status = 'scheduled'
		  AND json_array_length(ready_students) < ?4
		  AND NOT EXISTS (
			SELECT 1 FROM json_each(sessions.ready_students) WHERE json_each.value = ?2
		  )
		RETURNING json_array_length(ready_students)
	`
	var count int
	err := r.db.QueryRowContext(ctx, query, sessionID, studentID, toMillis(time.Now()), capacity).Scan(&count)
	if err != nil {
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
		SET status = 'ongoing', session_start = ?2, updated_at = ?2
		WHERE id = ?1 AND status = 'scheduled' AND json_array_length(ready_students) > 0
		RETURNING ` + sessionColumns

	session, err := scanSession(r.db.QueryRowContext(ctx, query, sessionID, toMillis(startedAt)))
	if err != nil {
		return nil, preconditionNoRows(err)
	}
	return session, nil
}

func (r *SessionRepository) MarkCompleted(
	ctx context.Context,
	input repository.CompleteSessionInput,
) (*models.Session, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		UPDATE sessions
		SET status = 'completed', session_end = ?2, session_duration = ?3, updated_at = ?2
		WHERE id = ?1 AND status = 'ongoing' AND session_start IS NOT NULL
		RETURNING ` + sessionColumns

	endedAt := toMillis(input.EndedAt)
	session, err := scanSession(tx.QueryRowContext(ctx, query, input.SessionID, endedAt, input.DurationMinutes))
	if err != nil {
		return nil, preconditionNoRows(err)
	}

	if input.Payout != nil {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO payouts (session_id, tutor_id, amount, status, attempts, created_at)
			VALUES (?1, ?2, ?3, 'pending', 0, ?4)
			ON CONFLICT (session_id) DO NOTHING
		`, input.SessionID, input.Payout.TutorID, input.Payout.Amount, endedAt); err != nil {
			return nil, fmt.Errorf("enqueue payout: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return session, nil
}

func scanSession(row rowScanner) (*models.Session, error) {
	var (
		session        models.Session
		status         string
		scheduledStart int64
		readyStudents  string
		sessionStart   sql.NullInt64
		sessionEnd     sql.NullInt64
		duration       sql.NullInt64
		createdAt      int64
		updatedAt      int64
	)
	if err := row.Scan(
		&session.ID,
		&session.TutorID,
		&status,
		&scheduledStart,
		&readyStudents,
		&sessionStart,
		&sessionEnd,
		&duration,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	session.Status = models.SessionStatus(status)
	session.ScheduledStart = fromMillis(scheduledStart)
	session.SessionStart = fromNullMillis(sessionStart)
	session.SessionEnd = fromNullMillis(sessionEnd)
	session.CreatedAt = fromMillis(createdAt)
	session.UpdatedAt = fromMillis(updatedAt)
	if duration.Valid {
		minutes := int(duration.Int64)
		session.SessionDuration = &minutes
	}

	session.ReadyStudents = []string{}
	if err := json.Unmarshal([]byte(readyStudents), &session.ReadyStudents); err != nil {
		return nil, fmt.Errorf("decode ready students: %w", err)
	}
	return &session, nil
}
