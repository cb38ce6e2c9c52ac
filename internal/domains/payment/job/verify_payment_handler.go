package job

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"course-payments/internal/domains/payment/model"
	"course-payments/internal/shared/utils"
	"course-payments/pkg/logger"
)

type PaymentVerifier interface {
	VerifyPayment(ctx context.Context, reference string) (*model.VerifyPaymentResponse, error)
}

// VerifyPaymentHandler runs the backup and sweep verifications.
type VerifyPaymentHandler struct {
	verifier PaymentVerifier
}

func NewVerifyPaymentHandler(verifier PaymentVerifier) *VerifyPaymentHandler {
	return &VerifyPaymentHandler{verifier: verifier}
}

func (h *VerifyPaymentHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload model.VerifyPaymentPayload
	if err := utils.UnmarshalTask(t, &payload); err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	fields := map[string]interface{}{
		"reference": payload.Reference,
		"trigger":   payload.Trigger,
	}

	res, err := h.verifier.VerifyPayment(ctx, payload.Reference)
	if err != nil {
		return classify(err, fields)
	}

	logger.Info("verification task done", mergeFields(fields, "status", res.Status))
	return nil
}
