package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"course-payments/internal/domains/payment/model"
	"course-payments/pkg/logger"
)

// =====================================================
// RETRY
// =====================================================

// RetryPayment starts a fresh payment for the course of a failed one.
// The failed payment itself is never modified.
func (s *paymentService) RetryPayment(ctx context.Context, paymentID, userID uuid.UUID) (*model.InitializePaymentResponse, error) {
	payment, err := s.getByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if !payment.BelongsTo(userID) {
		return nil, model.NewValidationError("payment does not belong to user")
	}
	if payment.Status != model.PaymentStatusFailed {
		return nil, model.NewValidationError(
			fmt.Sprintf("only failed payments can be retried, current status: %s", payment.Status))
	}

	pc, err := s.ResolveContext(ctx, model.ResolveContextInput{
		UserID:       userID,
		EnrollmentID: payment.EnrollmentID,
		CourseID:     payment.CourseID(),
	})
	if err != nil {
		return nil, err
	}
	pc.RetryOf = &payment.ID

	res, err := s.InitializePayment(ctx, pc)
	if err != nil {
		return nil, err
	}

	logger.Info("payment retried", map[string]interface{}{
		"retry_of":      payment.Reference,
		"new_reference": res.Reference,
		"user_id":       userID.String(),
	})
	return res, nil
}

// =====================================================
// CANCEL (operator)
// =====================================================

func (s *paymentService) CancelPayment(ctx context.Context, paymentID, operatorID uuid.UUID, reason string) (*model.Payment, error) {
	payment, err := s.getByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if !payment.IsPending() {
		return nil, model.NewValidationError(
			fmt.Sprintf("only pending payments can be cancelled, current status: %s", payment.Status))
	}

	won, err := s.paymentRepo.MarkCancelled(ctx, paymentID, map[string]interface{}{
		model.MetaCancelledBy:  operatorID.String(),
		model.MetaCancelReason: reason,
		model.MetaCancelledAt:  s.utcNow().Format(time.RFC3339),
	})
	if err != nil {
		logger.ErrorWithFields("failed to cancel payment", err, map[string]interface{}{
			"reference": payment.Reference,
		})
		return nil, err
	}
	if !won {
		return nil, model.NewValidationError("payment is no longer pending")
	}

	s.statusCache.Invalidate(ctx, payment.Reference)

	logger.Info("payment cancelled", map[string]interface{}{
		"reference":   payment.Reference,
		"operator_id": operatorID.String(),
		"reason":      reason,
	})

	return s.getByID(ctx, paymentID)
}

func (s *paymentService) getByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrPaymentNotFound) {
			return nil, model.NewNotFoundError("payment", id.String())
		}
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	return payment, nil
}
