package job

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"course-payments/internal/domains/payment/model"
	"course-payments/internal/shared/utils"
)

type FreeEnrollmentCompleter interface {
	CompleteFreeEnrollment(ctx context.Context, payload model.CompleteEnrollmentPayload) error
}

type CompleteEnrollmentHandler struct {
	completer FreeEnrollmentCompleter
}

func NewCompleteEnrollmentHandler(completer FreeEnrollmentCompleter) *CompleteEnrollmentHandler {
	return &CompleteEnrollmentHandler{completer: completer}
}

func (h *CompleteEnrollmentHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload model.CompleteEnrollmentPayload
	if err := utils.UnmarshalTask(t, &payload); err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	err := h.completer.CompleteFreeEnrollment(ctx, payload)
	return classify(err, map[string]interface{}{
		"reference":     payload.Reference,
		"enrollment_id": payload.EnrollmentID.String(),
	})
}
