package model

import (
	"encoding/json"
	"time"

	courseModel "course-payments/internal/domains/course/model"
	enrollmentModel "course-payments/internal/domains/enrollment/model"
	userModel "course-payments/internal/domains/user/model"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =====================================================
// CONTEXT RESOLUTION
// =====================================================

type ResolveContextInput struct {
	UserID       uuid.UUID
	EnrollmentID *uuid.UUID
	CourseID     *uuid.UUID
}

// PaymentContext is the validated {user, course, enrollment} a payment is made for.
type PaymentContext struct {
	User         *userModel.User
	Course       *courseModel.Course
	Enrollment   *enrollmentModel.Enrollment
	CourseID     uuid.UUID
	EnrollmentID *uuid.UUID

	// RetryOf is set when the context is rebuilt from a failed payment.
	RetryOf *uuid.UUID
}

// =====================================================
// INITIALIZE
// =====================================================

type InitializePaymentRequest struct {
	EnrollmentID *uuid.UUID `json:"enrollment_id"`
	CourseID     *uuid.UUID `json:"course_id"`
}

func (r InitializePaymentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CourseID,
			validation.Required.When(r.EnrollmentID == nil).Error("course_id or enrollment_id is required"),
		),
	)
}

type InitializePaymentResponse struct {
	PaymentID        uuid.UUID  `json:"payment_id"`
	Reference        string     `json:"reference"`
	AuthorizationURL *string    `json:"authorization_url"`
	AccessCode       *string    `json:"access_code"`
	EnrollmentID     *uuid.UUID `json:"enrollment_id"`
	IsFree           bool       `json:"is_free"`
}

// =====================================================
// VERIFY
// =====================================================

type VerifyPaymentResponse struct {
	Success          bool            `json:"success"`
	Status           string          `json:"status"`
	Reference        string          `json:"reference"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	PaymentID        uuid.UUID       `json:"payment_id"`
	EnrollmentID     *uuid.UUID      `json:"enrollment_id,omitempty"`
	AlreadyProcessed bool            `json:"already_processed"`
}

func NewVerifyResponse(p *Payment, alreadyProcessed bool) *VerifyPaymentResponse {
	return &VerifyPaymentResponse{
		Success:          p.IsSuccessful(),
		Status:           p.Status,
		Reference:        p.Reference,
		Amount:           p.Amount,
		Currency:         p.Currency,
		PaymentID:        p.ID,
		EnrollmentID:     p.EnrollmentID,
		AlreadyProcessed: alreadyProcessed,
	}
}

// =====================================================
// WEBHOOK
// =====================================================

// WebhookResult is the typed outcome of webhook intake. Valid=false is not an error.
type WebhookResult struct {
	Valid  bool `json:"valid"`
	Queued bool `json:"queued"`
}

type WebhookEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// ChargeEventData is the subset of charge.* data the consumer needs.
type ChargeEventData struct {
	Reference       string `json:"reference"`
	Status          string `json:"status"`
	GatewayResponse string `json:"gateway_response"`
	Channel         string `json:"channel"`
}

// =====================================================
// STATUS VIEW (cached)
// =====================================================

type PaymentStatusView struct {
	PaymentID    uuid.UUID       `json:"payment_id"`
	UserID       uuid.UUID       `json:"user_id"`
	Reference    string          `json:"reference"`
	Status       string          `json:"status"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	PaidAt       *time.Time      `json:"paid_at,omitempty"`
	EnrollmentID *uuid.UUID      `json:"enrollment_id,omitempty"`
	CourseID     *uuid.UUID      `json:"course_id,omitempty"`
	CourseTitle  string          `json:"course_title,omitempty"`
}

func NewStatusView(p *Payment) *PaymentStatusView {
	return &PaymentStatusView{
		PaymentID:    p.ID,
		UserID:       p.UserID,
		Reference:    p.Reference,
		Status:       p.Status,
		Amount:       p.Amount,
		Currency:     p.Currency,
		PaidAt:       p.PaidAt,
		EnrollmentID: p.EnrollmentID,
		CourseID:     p.CourseID(),
		CourseTitle:  p.CourseTitle(),
	}
}

// =====================================================
// LISTING
// =====================================================

type ListPaymentsRequest struct {
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
	Status string `form:"status"`
	UserID string `form:"user_id"`
}

func (r ListPaymentsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Page, validation.Min(0)),
		validation.Field(&r.Limit, validation.Min(0), validation.Max(MaxPageSize)),
		validation.Field(&r.Status, validation.In(ValidPaymentStatuses...)),
		validation.Field(&r.UserID, is.UUID),
	)
}

// Normalize applies paging defaults.
func (r *ListPaymentsRequest) Normalize() {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.Limit < 1 {
		r.Limit = DefaultPageSize
	}
}

func (r ListPaymentsRequest) Offset() int {
	return (r.Page - 1) * r.Limit
}

// PaymentFilter is what repositories filter on.
type PaymentFilter struct {
	UserID *uuid.UUID
	Status string
	Limit  int
	Offset int
}

type PaginationMeta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func NewPaginationMeta(page, limit, total int) PaginationMeta {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return PaginationMeta{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
}

type ListPaymentsResponse struct {
	Payments   []Payment      `json:"payments"`
	Pagination PaginationMeta `json:"pagination"`
}

// =====================================================
// CANCEL
// =====================================================

type CancelPaymentRequest struct {
	Reason string `json:"reason"`
}

func (r CancelPaymentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Reason, validation.Required, validation.Length(3, 500)),
	)
}

// =====================================================
// REVENUE
// =====================================================

type RevenueStatusBreakdown struct {
	Status      string          `json:"status"`
	Count       int64           `json:"count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type RevenueStats struct {
	Period       string                   `json:"period"`
	StartDate    time.Time                `json:"start_date"`
	EndDate      time.Time                `json:"end_date"`
	ByStatus     []RevenueStatusBreakdown `json:"by_status"`
	TotalCount   int64                    `json:"total_count"`
	TotalRevenue decimal.Decimal          `json:"total_revenue"`
}

// =====================================================
// NOTIFICATIONS
// =====================================================

type ReceiptData struct {
	Email       string          `json:"email"`
	FullName    string          `json:"full_name"`
	Reference   string          `json:"reference"`
	CourseTitle string          `json:"course_title"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Method      string          `json:"method"`
	PaidAt      time.Time       `json:"paid_at"`
}

// PaymentSuccessEvent is published once per payment that reaches success.
type PaymentSuccessEvent struct {
	PaymentID    uuid.UUID       `json:"payment_id"`
	Reference    string          `json:"reference"`
	UserID       uuid.UUID       `json:"user_id"`
	EnrollmentID *uuid.UUID      `json:"enrollment_id,omitempty"`
	CourseID     *uuid.UUID      `json:"course_id,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	PaidAt       time.Time       `json:"paid_at"`
}
