package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"course-payments/internal/domains/payment/model"
	"course-payments/pkg/cache"
	"course-payments/pkg/logger"
)

// =====================================================
// STATUS CACHE
// =====================================================

// StatusCache keeps short-lived status views keyed by reference.
// Every operation is best-effort: errors are logged and behave like a miss.
type StatusCache struct {
	cache       cache.Cache
	pendingTTL  time.Duration
	terminalTTL time.Duration
}

func NewStatusCache(c cache.Cache, pendingTTL, terminalTTL time.Duration) *StatusCache {
	return &StatusCache{cache: c, pendingTTL: pendingTTL, terminalTTL: terminalTTL}
}

func statusKey(reference string) string {
	return model.CacheKeyStatusPrefix + reference
}

func (c *StatusCache) Get(ctx context.Context, reference string) (*model.PaymentStatusView, bool) {
	if c == nil || c.cache == nil {
		return nil, false
	}

	var view model.PaymentStatusView
	found, err := c.cache.Get(ctx, statusKey(reference), &view)
	if err != nil {
		logger.Warn("status cache read failed", map[string]interface{}{
			"reference": reference,
			"error":     err.Error(),
		})
		return nil, false
	}
	if !found {
		return nil, false
	}
	return &view, true
}

// Set uses the short TTL while the payment is pending.
func (c *StatusCache) Set(ctx context.Context, view *model.PaymentStatusView) {
	if c == nil || c.cache == nil || view == nil {
		return
	}

	ttl := c.pendingTTL
	if model.IsTerminalStatus(view.Status) {
		ttl = c.terminalTTL
	}

	if err := c.cache.Set(ctx, statusKey(view.Reference), view, ttl); err != nil {
		logger.Warn("status cache write failed", map[string]interface{}{
			"reference": view.Reference,
			"error":     err.Error(),
		})
	}
}

func (c *StatusCache) Invalidate(ctx context.Context, reference string) {
	if c == nil || c.cache == nil {
		return
	}
	if err := c.cache.Delete(ctx, statusKey(reference)); err != nil {
		logger.Warn("status cache invalidation failed", map[string]interface{}{
			"reference": reference,
			"error":     err.Error(),
		})
	}
}

// GetPaymentStatus reads through the status cache. Payments of other users are
// reported as NOT_FOUND.
func (s *paymentService) GetPaymentStatus(ctx context.Context, userID uuid.UUID, reference string) (*model.PaymentStatusView, error) {
	if reference == "" {
		return nil, model.NewValidationError("reference is required")
	}

	view, ok := s.statusCache.Get(ctx, reference)
	if !ok {
		payment, err := s.getByReference(ctx, reference)
		if err != nil {
			return nil, err
		}
		view = model.NewStatusView(payment)
		s.statusCache.Set(ctx, view)
	}

	if view.UserID != userID {
		return nil, model.NewNotFoundError("payment", reference)
	}
	return view, nil
}
