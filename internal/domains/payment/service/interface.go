package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	courseModel "course-payments/internal/domains/course/model"
	enrollmentModel "course-payments/internal/domains/enrollment/model"
	"course-payments/internal/domains/payment/model"
	userModel "course-payments/internal/domains/user/model"
)

// =====================================================
// PAYMENT SERVICE INTERFACE
// =====================================================
type PaymentService interface {
	// ============================================
	// INITIALIZATION
	// ============================================

	// ResolveContext validates and loads the {user, course, enrollment} a payment is for.
	ResolveContext(ctx context.Context, in model.ResolveContextInput) (*model.PaymentContext, error)

	// Initialize resolves the context for userID and starts a payment.
	Initialize(ctx context.Context, userID uuid.UUID, req model.InitializePaymentRequest) (*model.InitializePaymentResponse, error)

	// InitializePayment starts a payment for an already resolved context.
	InitializePayment(ctx context.Context, pc *model.PaymentContext) (*model.InitializePaymentResponse, error)

	// ============================================
	// RECONCILIATION
	// ============================================

	// ProcessWebhook authenticates a raw gateway webhook and queues it.
	ProcessWebhook(ctx context.Context, rawBody []byte, signature string) (*model.WebhookResult, error)

	// HandleWebhookEvent is the queued half of ProcessWebhook.
	HandleWebhookEvent(ctx context.Context, event string, data json.RawMessage) error

	// VerifyPayment reconciles reference against the gateway. Safe to call from any trigger.
	VerifyPayment(ctx context.Context, reference string) (*model.VerifyPaymentResponse, error)

	// VerifyUserPayment is VerifyPayment for the payment's owner; other users get NOT_FOUND.
	VerifyUserPayment(ctx context.Context, userID uuid.UUID, reference string) (*model.VerifyPaymentResponse, error)

	MarkPaymentFailed(ctx context.Context, reference, reason string) error

	// GetPaymentStatus returns the cached status view of one of userID's payments.
	GetPaymentStatus(ctx context.Context, userID uuid.UUID, reference string) (*model.PaymentStatusView, error)

	// ============================================
	// USER ENDPOINTS
	// ============================================
	ListUserPayments(ctx context.Context, userID uuid.UUID, req model.ListPaymentsRequest) (*model.ListPaymentsResponse, error)
	GetPaymentByID(ctx context.Context, userID, paymentID uuid.UUID) (*model.Payment, error)
	RetryPayment(ctx context.Context, paymentID, userID uuid.UUID) (*model.InitializePaymentResponse, error)

	// ============================================
	// ADMIN ENDPOINTS
	// ============================================
	AdminListPayments(ctx context.Context, req model.ListPaymentsRequest) (*model.ListPaymentsResponse, error)
	CancelPayment(ctx context.Context, paymentID, operatorID uuid.UUID, reason string) (*model.Payment, error)
	GetRevenueStats(ctx context.Context, period string) (*model.RevenueStats, error)
	ExportRevenueStats(ctx context.Context, period string) (*excelize.File, error)

	// ============================================
	// BACKGROUND JOBS
	// ============================================

	// CompleteFreeEnrollment finishes the enrollment of a free payment.
	CompleteFreeEnrollment(ctx context.Context, payload model.CompleteEnrollmentPayload) error

	// ReconcileStalePayments queues verification for payments stuck in pending.
	ReconcileStalePayments(ctx context.Context, limit int) (int, error)
}

// =====================================================
// COLLABORATORS
// =====================================================

type EnrollmentCollaborator interface {
	GetByID(ctx context.Context, id uuid.UUID) (*enrollmentModel.Enrollment, error)
	FindByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*enrollmentModel.Enrollment, error)
	CreatePending(ctx context.Context, userID, courseID uuid.UUID) (*enrollmentModel.Enrollment, error)
	CompleteEnrollment(ctx context.Context, enrollmentID, paymentID uuid.UUID) error
	MarkFailed(ctx context.Context, enrollmentID uuid.UUID) error
}

type CourseLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*courseModel.Course, error)
}

type UserLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*userModel.User, error)
}

// TaskScheduler enqueues background tasks. A non-empty taskID deduplicates:
// enqueuing an id that is already queued succeeds without creating a second task.
type TaskScheduler interface {
	Enqueue(ctx context.Context, taskType string, payload interface{}) error
	EnqueueIn(ctx context.Context, taskType string, payload interface{}, delay time.Duration, taskID string) error
}

type Notifier interface {
	SendReceipt(ctx context.Context, data model.ReceiptData) error
	NotifySuccess(ctx context.Context, event model.PaymentSuccessEvent) error
}

// LMSChecker asks the learning platform whether a user is already enrolled.
type LMSChecker interface {
	IsEnrolled(ctx context.Context, email, lmsCourseID string) (bool, error)
}
