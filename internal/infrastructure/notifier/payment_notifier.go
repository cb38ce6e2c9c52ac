package notifier

import (
	"context"
	"fmt"

	"course-payments/internal/domains/payment/model"
	"course-payments/internal/infrastructure/email"
	"course-payments/internal/shared"
	"course-payments/pkg/logger"
)

type TaskEnqueuer interface {
	Enqueue(ctx context.Context, taskType string, payload interface{}) error
}

type EventPublisher interface {
	Publish(ctx context.Context, key string, event interface{}) error
}

// PaymentNotifier queues receipt emails and publishes success events.
// publisher may be nil, success events are then only logged.
type PaymentNotifier struct {
	tasks     TaskEnqueuer
	publisher EventPublisher
}

func NewPaymentNotifier(tasks TaskEnqueuer, publisher EventPublisher) *PaymentNotifier {
	return &PaymentNotifier{tasks: tasks, publisher: publisher}
}

func (n *PaymentNotifier) SendReceipt(ctx context.Context, data model.ReceiptData) error {
	payload := email.ReceiptEmailData{
		Email:       data.Email,
		FullName:    data.FullName,
		Reference:   data.Reference,
		CourseTitle: data.CourseTitle,
		Amount:      data.Amount.StringFixed(2),
		Currency:    data.Currency,
		Method:      data.Method,
		PaidAt:      data.PaidAt,
	}
	if err := n.tasks.Enqueue(ctx, shared.TypeSendReceiptEmail, payload); err != nil {
		return fmt.Errorf("queue receipt email: %w", err)
	}
	return nil
}

func (n *PaymentNotifier) NotifySuccess(ctx context.Context, event model.PaymentSuccessEvent) error {
	if n.publisher == nil {
		logger.Info("payment success", map[string]interface{}{
			"reference":  event.Reference,
			"payment_id": event.PaymentID.String(),
			"user_id":    event.UserID.String(),
		})
		return nil
	}
	return n.publisher.Publish(ctx, event.Reference, event)
}
