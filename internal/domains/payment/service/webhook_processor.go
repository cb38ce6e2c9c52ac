package service

import (
	"context"
	"encoding/json"
	"fmt"

	"course-payments/internal/domains/payment/model"
	"course-payments/internal/shared"
	"course-payments/pkg/logger"
)

// =====================================================
// WEBHOOK INTAKE
// =====================================================

// ProcessWebhook authenticates the raw body and hands the event to the worker.
// An invalid signature is reported as Valid=false, not as an error.
func (s *paymentService) ProcessWebhook(ctx context.Context, rawBody []byte, signature string) (*model.WebhookResult, error) {
	if signature == "" || !s.gateway.ValidateSignature(rawBody, signature) {
		return &model.WebhookResult{Valid: false}, nil
	}

	var event model.WebhookEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		return nil, model.NewValidationError("malformed webhook payload")
	}
	if event.Event == "" {
		return nil, model.NewValidationError("webhook event is required")
	}

	payload := model.WebhookTaskPayload{Event: event.Event, Data: event.Data}
	if err := s.scheduler.Enqueue(ctx, shared.TypePaymentWebhook, payload); err != nil {
		logger.ErrorWithFields("failed to queue webhook", err, map[string]interface{}{
			"event": event.Event,
		})
		return nil, fmt.Errorf("failed to queue webhook: %w", err)
	}

	logger.Info("webhook queued", map[string]interface{}{"event": event.Event})
	return &model.WebhookResult{Valid: true, Queued: true}, nil
}

// =====================================================
// WEBHOOK CONSUMER
// =====================================================

func (s *paymentService) HandleWebhookEvent(ctx context.Context, event string, data json.RawMessage) error {
	if event != model.EventChargeSuccess && event != model.EventChargeFailed {
		logger.Info("ignoring webhook event", map[string]interface{}{"event": event})
		return nil
	}

	var charge model.ChargeEventData
	if err := json.Unmarshal(data, &charge); err != nil || charge.Reference == "" {
		logger.Warn("dropping webhook without reference", map[string]interface{}{"event": event})
		return nil
	}

	switch event {
	case model.EventChargeSuccess:
		res, err := s.VerifyPayment(ctx, charge.Reference)
		if err != nil {
			return err
		}
		logger.Info("webhook reconciled", map[string]interface{}{
			"reference":         charge.Reference,
			"status":            res.Status,
			"already_processed": res.AlreadyProcessed,
		})
		return nil

	default:
		reason := charge.GatewayResponse
		if reason == "" {
			reason = charge.Status
		}
		return s.MarkPaymentFailed(ctx, charge.Reference, reason)
	}
}
