package job

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"course-payments/internal/domains/payment/model"
	"course-payments/internal/shared/utils"
	"course-payments/pkg/logger"
)

type StalePaymentReconciler interface {
	ReconcileStalePayments(ctx context.Context, limit int) (int, error)
}

// ReconcileStaleHandler is run by the periodic scheduler.
type ReconcileStaleHandler struct {
	reconciler   StalePaymentReconciler
	defaultLimit int
}

func NewReconcileStaleHandler(reconciler StalePaymentReconciler, defaultLimit int) *ReconcileStaleHandler {
	return &ReconcileStaleHandler{reconciler: reconciler, defaultLimit: defaultLimit}
}

func (h *ReconcileStaleHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload model.ReconcileStalePayload
	if len(t.Payload()) > 0 {
		if err := utils.UnmarshalTask(t, &payload); err != nil {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
	}

	limit := payload.Limit
	if limit <= 0 {
		limit = h.defaultLimit
	}

	queued, err := h.reconciler.ReconcileStalePayments(ctx, limit)
	if err != nil {
		logger.Error("stale payment sweep failed", err)
		return err
	}

	logger.Debug("stale payment sweep finished", map[string]interface{}{"queued": queued})
	return nil
}
