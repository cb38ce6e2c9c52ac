package repository

import (
	"context"
	"errors"
	"fmt"

	"course-payments/internal/domains/course/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Course, error)
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	query := `
		SELECT id, title, price, currency, is_free, is_active, lms_course_id, created_at, updated_at
		FROM courses
		WHERE id = $1
	`

	var c model.Course
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.Title,
		&c.Price,
		&c.Currency,
		&c.IsFree,
		&c.IsActive,
		&c.LMSCourseID,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrCourseNotFound
		}
		return nil, fmt.Errorf("query course: %w", err)
	}

	return &c, nil
}
