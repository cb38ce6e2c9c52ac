package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"

	"course-payments/internal/domains/payment/model"
	"course-payments/internal/shared/utils"
	"course-payments/pkg/logger"
)

// WebhookEventProcessor is the part of the payment service the webhook job needs.
type WebhookEventProcessor interface {
	HandleWebhookEvent(ctx context.Context, event string, data json.RawMessage) error
}

type WebhookHandler struct {
	processor WebhookEventProcessor
}

func NewWebhookHandler(processor WebhookEventProcessor) *WebhookHandler {
	return &WebhookHandler{processor: processor}
}

func (h *WebhookHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload model.WebhookTaskPayload
	if err := utils.UnmarshalTask(t, &payload); err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	err := h.processor.HandleWebhookEvent(ctx, payload.Event, payload.Data)
	return classify(err, map[string]interface{}{"event": payload.Event})
}

// classify turns permanent domain errors into SkipRetry so asynq archives the task.
func classify(err error, fields map[string]interface{}) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, model.ErrNotFound) || errors.Is(err, model.ErrValidation) {
		logger.Warn("payment task dropped", mergeFields(fields, "error", err.Error()))
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}
	logger.ErrorWithFields("payment task failed, will retry", err, fields)
	return err
}

func mergeFields(fields map[string]interface{}, key string, value interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out[key] = value
	return out
}
