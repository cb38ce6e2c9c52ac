package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"course-payments/internal/domains/payment/model"
	"course-payments/internal/shared"
	"course-payments/pkg/logger"
)

// =====================================================
// LISTING
// =====================================================

func (s *paymentService) ListUserPayments(
	ctx context.Context,
	userID uuid.UUID,
	req model.ListPaymentsRequest,
) (*model.ListPaymentsResponse, error) {
	req.UserID = ""
	return s.listPayments(ctx, &userID, req)
}

func (s *paymentService) AdminListPayments(ctx context.Context, req model.ListPaymentsRequest) (*model.ListPaymentsResponse, error) {
	var userID *uuid.UUID
	if req.UserID != "" {
		id, err := uuid.Parse(req.UserID)
		if err != nil {
			return nil, model.NewValidationError("user_id must be a valid UUID")
		}
		userID = &id
	}
	return s.listPayments(ctx, userID, req)
}

func (s *paymentService) listPayments(
	ctx context.Context,
	userID *uuid.UUID,
	req model.ListPaymentsRequest,
) (*model.ListPaymentsResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, model.NewValidationError(err.Error())
	}
	req.Normalize()

	payments, total, err := s.paymentRepo.List(ctx, model.PaymentFilter{
		UserID: userID,
		Status: req.Status,
		Limit:  req.Limit,
		Offset: req.Offset(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	return &model.ListPaymentsResponse{
		Payments:   payments,
		Pagination: model.NewPaginationMeta(req.Page, req.Limit, total),
	}, nil
}

// GetPaymentByID hides payments of other users behind NOT_FOUND.
func (s *paymentService) GetPaymentByID(ctx context.Context, userID, paymentID uuid.UUID) (*model.Payment, error) {
	payment, err := s.getByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if !payment.BelongsTo(userID) {
		return nil, model.NewNotFoundError("payment", paymentID.String())
	}
	return payment, nil
}

// =====================================================
// BACKGROUND JOBS
// =====================================================

func (s *paymentService) CompleteFreeEnrollment(ctx context.Context, payload model.CompleteEnrollmentPayload) error {
	if payload.EnrollmentID == uuid.Nil || payload.PaymentID == uuid.Nil {
		return model.NewValidationError("enrollment_id and payment_id are required")
	}

	if err := s.enrollments.CompleteEnrollment(ctx, payload.EnrollmentID, payload.PaymentID); err != nil {
		logger.ErrorWithFields("failed to complete free enrollment", err, map[string]interface{}{
			"reference": payload.Reference,
		})
		return err
	}
	return nil
}

// ReconcileStalePayments queues a verification for every payment still pending after
// the backup delay. Returns how many were queued.
func (s *paymentService) ReconcileStalePayments(ctx context.Context, limit int) (int, error) {
	if limit <= 0 {
		limit = model.MaxPageSize
	}

	now := s.utcNow()
	olderThan := now.Add(-s.cfg.BackupVerifyDelay)
	stale, err := s.paymentRepo.ListStalePending(ctx, olderThan, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to list stale payments: %w", err)
	}

	queued := 0
	for _, p := range stale {
		payload := model.VerifyPaymentPayload{Reference: p.Reference, Trigger: model.TriggerSweep}
		if err := s.scheduler.EnqueueIn(ctx, shared.TypePaymentVerify, payload, 0, sweepTaskID(p.Reference, now)); err != nil {
			logger.Warn("failed to queue stale payment verification", map[string]interface{}{
				"reference": p.Reference,
				"error":     err.Error(),
			})
			continue
		}
		queued++
	}

	if len(stale) > 0 {
		logger.Info("stale pending payments queued for verification", map[string]interface{}{
			"found":  len(stale),
			"queued": queued,
		})
	}
	return queued, nil
}

// sweepTaskID never reuses the backup task's id. asynq keeps the id of an archived
// task, so a shared id would stop the sweep from re-queuing a payment whose backup
// verify exhausted its retries.
func sweepTaskID(reference string, now time.Time) string {
	window := now.Unix() / int64(model.SweepInterval/time.Second)
	return fmt.Sprintf("%s:sweep:%d", verifyTaskID(reference), window)
}
