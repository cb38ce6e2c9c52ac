package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	courseModel "course-payments/internal/domains/course/model"
	enrollmentModel "course-payments/internal/domains/enrollment/model"
	"course-payments/internal/domains/payment/model"
	userModel "course-payments/internal/domains/user/model"
)

// =====================================================
// CONTEXT RESOLVER
// =====================================================

// ResolveContext loads and validates the user, course and enrollment of a payment.
//
// Order of checks:
// 1. user id present
// 2. enrollment (when given): exists, owned by the user, not already paid
// 3. course id known (given or derived from the enrollment)
// 4. course exists and is active
// 5. user exists and is active
//
// Without an enrollment id, an existing enrollment for (user, course) is reused.
func (s *paymentService) ResolveContext(ctx context.Context, in model.ResolveContextInput) (*model.PaymentContext, error) {
	if in.UserID == uuid.Nil {
		return nil, model.NewValidationError("user id is required")
	}

	pc := &model.PaymentContext{EnrollmentID: in.EnrollmentID}
	courseID := in.CourseID

	if in.EnrollmentID != nil {
		enrollment, err := s.enrollments.GetByID(ctx, *in.EnrollmentID)
		if err != nil {
			if errors.Is(err, enrollmentModel.ErrEnrollmentNotFound) {
				return nil, model.NewNotFoundError("enrollment", in.EnrollmentID.String())
			}
			return nil, fmt.Errorf("failed to load enrollment: %w", err)
		}

		if enrollment.UserID != in.UserID {
			return nil, model.NewValidationError("enrollment does not belong to user")
		}
		if enrollment.IsPaid() {
			return nil, model.NewConflictError("enrollment is already paid")
		}
		if courseID == nil {
			courseID = &enrollment.CourseID
		}
		pc.Enrollment = enrollment
	}

	if courseID == nil {
		return nil, model.NewValidationError("course id is required")
	}
	pc.CourseID = *courseID

	course, err := s.courses.GetByID(ctx, *courseID)
	if err != nil {
		if errors.Is(err, courseModel.ErrCourseNotFound) {
			return nil, model.NewNotFoundError("course", courseID.String())
		}
		return nil, fmt.Errorf("failed to load course: %w", err)
	}
	if !course.IsActive {
		return nil, model.NewValidationError("course is not active")
	}
	pc.Course = course

	user, err := s.users.FindByID(ctx, in.UserID)
	if err != nil {
		if errors.Is(err, userModel.ErrUserNotFound) {
			return nil, model.NewNotFoundError("user", in.UserID.String())
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !user.IsActive {
		return nil, model.NewValidationError("user account is not active")
	}
	pc.User = user

	if pc.Enrollment == nil {
		existing, err := s.enrollments.FindByUserAndCourse(ctx, in.UserID, *courseID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up enrollment: %w", err)
		}
		if existing != nil {
			if existing.IsPaid() {
				return nil, model.NewConflictError("already enrolled in this course")
			}
			pc.Enrollment = existing
			pc.EnrollmentID = &existing.ID
		}
	}

	return pc, nil
}
