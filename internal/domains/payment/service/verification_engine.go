package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"course-payments/internal/domains/payment/gateway"
	"course-payments/internal/domains/payment/model"
	"course-payments/pkg/logger"
)

// =====================================================
// VERIFICATION ENGINE
// =====================================================

// VerifyPayment reconciles reference with the gateway.
//
// The webhook consumer, the backup task, the stale sweep and the user poll all land here.
// Exactly one of them commits the pending transition (conditional UPDATE); only that
// caller runs the side effects. Everyone else gets the committed state back.
func (s *paymentService) VerifyPayment(ctx context.Context, reference string) (*model.VerifyPaymentResponse, error) {
	if reference == "" {
		return nil, model.NewValidationError("reference is required")
	}

	payment, err := s.getByReference(ctx, reference)
	if err != nil {
		return nil, err
	}

	// Terminal payments are never re-verified.
	if payment.IsTerminal() {
		return model.NewVerifyResponse(payment, true), nil
	}

	result, err := s.gateway.VerifyTransaction(ctx, reference)
	if err != nil {
		logger.ErrorWithFields("gateway verify failed", err, map[string]interface{}{
			"reference": reference,
		})
		return nil, model.NewGatewayError("verify transaction", err)
	}

	switch {
	case result.IsSuccess():
		if reason := settlementMismatch(payment, result); reason != "" {
			logger.ErrorWithFields("gateway settlement does not match payment", errors.New(reason), map[string]interface{}{
				"reference": reference,
			})
			return s.commitFailure(ctx, payment, result.GatewayResponse, reason)
		}
		return s.commitSuccess(ctx, payment, result)
	case result.IsFailed():
		return s.commitFailure(ctx, payment, result.GatewayResponse, result.Status)
	default:
		logger.Debug("payment still pending at gateway", map[string]interface{}{
			"reference":      reference,
			"gateway_status": result.Status,
		})
		return model.NewVerifyResponse(payment, false), nil
	}
}

// VerifyUserPayment verifies on behalf of the payment's owner.
func (s *paymentService) VerifyUserPayment(ctx context.Context, userID uuid.UUID, reference string) (*model.VerifyPaymentResponse, error) {
	if reference == "" {
		return nil, model.NewValidationError("reference is required")
	}

	payment, err := s.getByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if !payment.BelongsTo(userID) {
		return nil, model.NewNotFoundError("payment", reference)
	}

	return s.VerifyPayment(ctx, reference)
}

// settlementMismatch compares what the gateway charged with what was asked for.
func settlementMismatch(payment *model.Payment, result *gateway.VerifyTransactionResponse) string {
	if !result.Amount.Equal(payment.Amount) {
		return fmt.Sprintf("amount mismatch: expected %s, charged %s",
			payment.Amount.StringFixed(2), result.Amount.StringFixed(2))
	}
	if !strings.EqualFold(result.Currency, payment.Currency) {
		return fmt.Sprintf("currency mismatch: expected %s, charged %s", payment.Currency, result.Currency)
	}
	return ""
}

func (s *paymentService) commitSuccess(
	ctx context.Context,
	payment *model.Payment,
	result *gateway.VerifyTransactionResponse,
) (*model.VerifyPaymentResponse, error) {
	paidAt := s.utcNow()
	if result.PaidAt != nil {
		paidAt = result.PaidAt.UTC()
	}
	method := result.Channel
	if method == "" {
		method = "gateway"
	}

	won, err := s.paymentRepo.MarkSuccess(ctx, payment.Reference, method, paidAt, map[string]interface{}{
		model.MetaGatewayResponse: result.GatewayResponse,
		model.MetaVerifiedAt:      s.utcNow().Format(time.RFC3339),
	})
	if err != nil {
		logger.ErrorWithFields("failed to mark payment success", err, map[string]interface{}{
			"reference": payment.Reference,
		})
		return nil, err
	}

	committed, err := s.getByReference(ctx, payment.Reference)
	if err != nil {
		return nil, err
	}

	if !won {
		logger.Info("payment already reconciled by another trigger", map[string]interface{}{
			"reference": payment.Reference,
			"status":    committed.Status,
		})
		return model.NewVerifyResponse(committed, true), nil
	}

	logger.Info("payment verified", map[string]interface{}{
		"reference":  committed.Reference,
		"payment_id": committed.ID.String(),
		"amount":     committed.Amount.String(),
		"method":     method,
	})

	s.runSuccessSideEffects(ctx, committed)
	s.statusCache.Invalidate(ctx, committed.Reference)

	return model.NewVerifyResponse(committed, false), nil
}

// runSuccessSideEffects is best-effort; each failure is logged with the reference.
func (s *paymentService) runSuccessSideEffects(ctx context.Context, p *model.Payment) {
	fields := map[string]interface{}{"reference": p.Reference}

	if p.EnrollmentID != nil {
		if err := s.enrollments.CompleteEnrollment(ctx, *p.EnrollmentID, p.ID); err != nil {
			logger.ErrorWithFields("failed to complete enrollment", err, fields)
		}
	}

	paidAt := s.utcNow()
	if p.PaidAt != nil {
		paidAt = *p.PaidAt
	}

	if s.notifier == nil {
		return
	}

	user, err := s.users.FindByID(ctx, p.UserID)
	if err != nil {
		logger.ErrorWithFields("failed to load user for receipt", err, fields)
	} else {
		method := ""
		if p.PaymentMethod != nil {
			method = *p.PaymentMethod
		}
		receipt := model.ReceiptData{
			Email:       user.Email,
			FullName:    user.FullName,
			Reference:   p.Reference,
			CourseTitle: p.CourseTitle(),
			Amount:      p.Amount,
			Currency:    p.Currency,
			Method:      method,
			PaidAt:      paidAt,
		}
		if err := s.notifier.SendReceipt(ctx, receipt); err != nil {
			logger.ErrorWithFields("failed to send receipt", err, fields)
		}
	}

	event := model.PaymentSuccessEvent{
		PaymentID:    p.ID,
		Reference:    p.Reference,
		UserID:       p.UserID,
		EnrollmentID: p.EnrollmentID,
		CourseID:     p.CourseID(),
		Amount:       p.Amount,
		Currency:     p.Currency,
		PaidAt:       paidAt,
	}
	if err := s.notifier.NotifySuccess(ctx, event); err != nil {
		logger.ErrorWithFields("failed to publish payment success", err, fields)
	}
}

func (s *paymentService) commitFailure(
	ctx context.Context,
	payment *model.Payment,
	gatewayResponse, reason string,
) (*model.VerifyPaymentResponse, error) {
	won, err := s.paymentRepo.MarkFailed(ctx, payment.Reference, map[string]interface{}{
		model.MetaGatewayResponse: gatewayResponse,
		model.MetaFailureReason:   reason,
	})
	if err != nil {
		logger.ErrorWithFields("failed to mark payment failed", err, map[string]interface{}{
			"reference": payment.Reference,
		})
		return nil, err
	}

	committed, err := s.getByReference(ctx, payment.Reference)
	if err != nil {
		return nil, err
	}

	if !won {
		return model.NewVerifyResponse(committed, true), nil
	}

	logger.Warn("payment failed", map[string]interface{}{
		"reference": committed.Reference,
		"reason":    reason,
	})

	if committed.EnrollmentID != nil {
		if err := s.enrollments.MarkFailed(ctx, *committed.EnrollmentID); err != nil {
			logger.ErrorWithFields("failed to mark enrollment failed", err, map[string]interface{}{
				"reference": committed.Reference,
			})
		}
	}
	s.statusCache.Invalidate(ctx, committed.Reference)

	return model.NewVerifyResponse(committed, false), nil
}

// MarkPaymentFailed records a gateway-reported failure without asking the gateway again.
// A payment that is already terminal is left alone.
func (s *paymentService) MarkPaymentFailed(ctx context.Context, reference, reason string) error {
	payment, err := s.getByReference(ctx, reference)
	if err != nil {
		return err
	}
	if payment.IsTerminal() {
		logger.Info("failure event for terminal payment ignored", map[string]interface{}{
			"reference": reference,
			"status":    payment.Status,
		})
		return nil
	}

	_, err = s.commitFailure(ctx, payment, reason, reason)
	return err
}

func (s *paymentService) getByReference(ctx context.Context, reference string) (*model.Payment, error) {
	payment, err := s.paymentRepo.GetByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, model.ErrPaymentNotFound) {
			return nil, model.NewNotFoundError("payment", reference)
		}
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	return payment, nil
}
