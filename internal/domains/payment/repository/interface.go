package repository

import (
	"context"
	"time"

	"course-payments/internal/domains/payment/model"

	"github.com/google/uuid"
)

// PaymentRepository persists payments. Every status change is a single conditional
// UPDATE guarded by status = 'pending'; the bool result reports whether this call
// performed the transition.
type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	GetByReference(ctx context.Context, reference string) (*model.Payment, error)

	MarkSuccess(ctx context.Context, reference, method string, paidAt time.Time, details map[string]interface{}) (bool, error)
	MarkFailed(ctx context.Context, reference string, details map[string]interface{}) (bool, error)
	MarkCancelled(ctx context.Context, id uuid.UUID, audit map[string]interface{}) (bool, error)

	List(ctx context.Context, filter model.PaymentFilter) ([]model.Payment, int, error)
	// ListStalePending returns pending payments created before olderThan, oldest first.
	ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]model.Payment, error)
	AggregateByStatus(ctx context.Context, start, end time.Time) ([]model.RevenueStatusBreakdown, error)
}
