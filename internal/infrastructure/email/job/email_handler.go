package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"course-payments/internal/infrastructure/email"
)

// ============================================
// Receipt Email Handler
// ============================================

type ReceiptEmailHandler struct {
	emailService email.EmailService
}

func NewReceiptEmailHandler(emailService email.EmailService) *ReceiptEmailHandler {
	return &ReceiptEmailHandler{
		emailService: emailService,
	}
}

func (h *ReceiptEmailHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload email.ReceiptEmailData
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal ReceiptEmail payload")
		return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	log.Info().
		Str("email", payload.Email).
		Str("reference", payload.Reference).
		Msg("Processing receipt email")

	if err := h.emailService.SendReceiptEmail(ctx, payload); err != nil {
		log.Error().Err(err).Str("reference", payload.Reference).Msg("Failed to send receipt email")
		return fmt.Errorf("send receipt email: %w", err)
	}

	log.Info().
		Str("email", payload.Email).
		Str("reference", payload.Reference).
		Msg("Receipt email sent successfully")

	return nil
}
