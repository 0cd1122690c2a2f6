package sqlite

import (
	"context"
	"database/sql"

	"github.com/Radennn1/tutoring-backend/internal/models"
	"github.com/Radennn1/tutoring-backend/internal/repository"
)

type StudentRepository struct {
	db *sql.DB
}

func NewStudentRepository(db *sql.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

func (r *StudentRepository) GetByID(ctx context.Context, studentID string) (*models.Student, error) {
	query := `
		SELECT id, subscription_active, created_at, updated_at
		FROM students
		WHERE id = ?1
	`
	student, err := scanStudent(r.db.QueryRowContext(ctx, query, studentID))
	if err != nil {
		return nil, normalizeNoRows(err)
	}
	return student, nil
}

func (r *StudentRepository) Upsert(ctx context.Context, input repository.UpsertStudentInput) (*models.Student, error) {
	query := `
		INSERT INTO students (id, subscription_active, created_at, updated_at)
		VALUES (?1, ?2, ?3, ?3)
		ON CONFLICT (id) DO UPDATE
		SET subscription_active = excluded.subscription_active, updated_at = excluded.updated_at
		RETURNING id, subscription_active, created_at, updated_at
	`
	return scanStudent(r.db.QueryRowContext(ctx, query, input.ID, input.SubscriptionActive, toMillis(input.UpdatedAt)))
}

func scanStudent(row rowScanner) (*models.Student, error) {
	var (
		student   models.Student
		createdAt int64
		updatedAt int64
	)
	if err := row.Scan(&student.ID, &student.SubscriptionActive, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	student.CreatedAt = fromMillis(createdAt)
	student.UpdatedAt = fromMillis(updatedAt)
	return &student, nil
}
