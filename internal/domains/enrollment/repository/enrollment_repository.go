package repository

import (
	"context"
	"errors"
	"fmt"

	"course-payments/internal/domains/enrollment/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Enrollment, error)
	GetByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*model.Enrollment, error)
	UpsertPending(ctx context.Context, userID, courseID uuid.UUID) (*model.Enrollment, error)
	// MarkCompleted returns false when the enrollment was already completed.
	MarkCompleted(ctx context.Context, id, paymentID uuid.UUID) (bool, error)
	// MarkFailed never downgrades a completed enrollment.
	MarkFailed(ctx context.Context, id uuid.UUID) (bool, error)
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

const enrollmentColumns = `
	id, user_id, course_id, status, payment_status, payment_id, enrolled_at, created_at, updated_at
`

func scanEnrollment(row pgx.Row) (*model.Enrollment, error) {
	var e model.Enrollment
	err := row.Scan(
		&e.ID,
		&e.UserID,
		&e.CourseID,
		&e.Status,
		&e.PaymentStatus,
		&e.PaymentID,
		&e.EnrolledAt,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrEnrollmentNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE id = $1`

	e, err := scanEnrollment(r.pool.QueryRow(ctx, query, id))
	if err != nil && !errors.Is(err, model.ErrEnrollmentNotFound) {
		return nil, fmt.Errorf("query enrollment: %w", err)
	}
	return e, err
}

func (r *postgresRepository) GetByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*model.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE user_id = $1 AND course_id = $2`

	e, err := scanEnrollment(r.pool.QueryRow(ctx, query, userID, courseID))
	if err != nil && !errors.Is(err, model.ErrEnrollmentNotFound) {
		return nil, fmt.Errorf("query enrollment by user and course: %w", err)
	}
	return e, err
}

// UpsertPending creates the enrollment or returns the existing row for (user, course).
// A previously failed payment status is reset to pending.
func (r *postgresRepository) UpsertPending(ctx context.Context, userID, courseID uuid.UUID) (*model.Enrollment, error) {
	query := `
		INSERT INTO enrollments (user_id, course_id, status, payment_status)
		VALUES ($1, $2, 'pending', 'pending')
		ON CONFLICT (user_id, course_id) DO UPDATE
		SET payment_status = CASE
				WHEN enrollments.payment_status = 'failed' THEN 'pending'
				ELSE enrollments.payment_status
			END,
			updated_at = NOW()
		RETURNING ` + enrollmentColumns

	e, err := scanEnrollment(r.pool.QueryRow(ctx, query, userID, courseID))
	if err != nil {
		return nil, fmt.Errorf("upsert pending enrollment: %w", err)
	}
	return e, nil
}

func (r *postgresRepository) MarkCompleted(ctx context.Context, id, paymentID uuid.UUID) (bool, error) {
	query := `
		UPDATE enrollments
		SET status = 'active',
			payment_status = 'completed',
			payment_id = $2,
			enrolled_at = NOW(),
			updated_at = NOW()
		WHERE id = $1 AND payment_status <> 'completed'
	`

	tag, err := r.pool.Exec(ctx, query, id, paymentID)
	if err != nil {
		return false, fmt.Errorf("complete enrollment: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *postgresRepository) MarkFailed(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE enrollments
		SET payment_status = 'failed', updated_at = NOW()
		WHERE id = $1 AND payment_status = 'pending'
	`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("mark enrollment failed: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
