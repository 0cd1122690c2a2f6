package repository

import (
	"context"

	"github.com/Radennn1/tutoring-backend/internal/models"
)

type StudentRepository struct {
	db DBTX
}

func NewStudentRepository(db DBTX) *StudentRepository {
	return &StudentRepository{db: db}
}

func (r *StudentRepository) GetByID(ctx context.Context, studentID string) (*models.Student, error) {
	query := `
		SELECT id, subscription_active, created_at, updated_at
		FROM students
		WHERE id = $1
	`
	var student models.Student
	err := r.db.QueryRow(ctx, query, studentID).Scan(
		&student.ID,
		&student.SubscriptionActive,
		&student.CreatedAt,
		&student.UpdatedAt,
	)
	if err != nil {
		return nil, normalizeNoRows(err)
	}
	return &student, nil
}

func (r *StudentRepository) Upsert(ctx context.Context, input UpsertStudentInput) (*models.Student, error) {
	query := `
		INSERT INTO students (id, subscription_active, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (id) DO UPDATE
		SET subscription_active = EXCLUDED.subscription_active, updated_at = EXCLUDED.updated_at
		RETURNING id, subscription_active, created_at, updated_at
	`
	var student models.Student
	err := r.db.QueryRow(ctx, query, input.ID, input.SubscriptionActive, input.UpdatedAt).Scan(
		&student.ID,
		&student.SubscriptionActive,
		&student.CreatedAt,
		&student.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &student, nil
}
