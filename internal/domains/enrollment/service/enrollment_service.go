package service

import (
	"context"
	"errors"
	"fmt"

	"course-payments/internal/domains/enrollment/model"
	"course-payments/internal/domains/enrollment/repository"
	"course-payments/pkg/logger"

	"github.com/google/uuid"
)

// EnrollmentService is what the payment pipeline needs from enrollments.
type EnrollmentService interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Enrollment, error)
	FindByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*model.Enrollment, error)
	CreatePending(ctx context.Context, userID, courseID uuid.UUID) (*model.Enrollment, error)
	CompleteEnrollment(ctx context.Context, enrollmentID, paymentID uuid.UUID) error
	MarkFailed(ctx context.Context, enrollmentID uuid.UUID) error
}

type enrollmentService struct {
	repo repository.Repository
}

func NewEnrollmentService(repo repository.Repository) EnrollmentService {
	return &enrollmentService{repo: repo}
}

func (s *enrollmentService) GetByID(ctx context.Context, id uuid.UUID) (*model.Enrollment, error) {
	return s.repo.GetByID(ctx, id)
}

// FindByUserAndCourse returns (nil, nil) when the user has no enrollment for the course.
func (s *enrollmentService) FindByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*model.Enrollment, error) {
	e, err := s.repo.GetByUserAndCourse(ctx, userID, courseID)
	if errors.Is(err, model.ErrEnrollmentNotFound) {
		return nil, nil
	}
	return e, err
}

func (s *enrollmentService) CreatePending(ctx context.Context, userID, courseID uuid.UUID) (*model.Enrollment, error) {
	e, err := s.repo.UpsertPending(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}

	logger.Info("pending enrollment ready", map[string]interface{}{
		"enrollment_id": e.ID.String(),
		"user_id":       userID.String(),
		"course_id":     courseID.String(),
	})
	return e, nil
}

// CompleteEnrollment is idempotent: completing an already completed enrollment is a no-op.
func (s *enrollmentService) CompleteEnrollment(ctx context.Context, enrollmentID, paymentID uuid.UUID) error {
	updated, err := s.repo.MarkCompleted(ctx, enrollmentID, paymentID)
	if err != nil {
		return fmt.Errorf("complete enrollment %s: %w", enrollmentID, err)
	}

	if !updated {
		logger.Info("enrollment already completed", map[string]interface{}{
			"enrollment_id": enrollmentID.String(),
			"payment_id":    paymentID.String(),
		})
		return nil
	}

	logger.Info("enrollment completed", map[string]interface{}{
		"enrollment_id": enrollmentID.String(),
		"payment_id":    paymentID.String(),
	})
	return nil
}

func (s *enrollmentService) MarkFailed(ctx context.Context, enrollmentID uuid.UUID) error {
	updated, err := s.repo.MarkFailed(ctx, enrollmentID)
	if err != nil {
		return fmt.Errorf("mark enrollment %s failed: %w", enrollmentID, err)
	}

	if !updated {
		logger.Debug("enrollment payment status not pending, left unchanged", map[string]interface{}{
			"enrollment_id": enrollmentID.String(),
		})
	}
	return nil
}
