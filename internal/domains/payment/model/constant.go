package model

import "time"

// =====================================================
// PAYMENT STATUS
// =====================================================
const (
	PaymentStatusPending   = "pending"
	PaymentStatusSuccess   = "success"
	PaymentStatusFailed    = "failed"
	PaymentStatusCancelled = "cancelled"
)

var ValidPaymentStatuses = []interface{}{
	PaymentStatusPending,
	PaymentStatusSuccess,
	PaymentStatusFailed,
	PaymentStatusCancelled,
}

// IsTerminalStatus reports whether no further transition is allowed from status.
func IsTerminalStatus(status string) bool {
	switch status {
	case PaymentStatusSuccess, PaymentStatusFailed, PaymentStatusCancelled:
		return true
	}
	return false
}

// =====================================================
// REFERENCES & DEFAULTS
// =====================================================
const (
	ReferencePrefixPaid = "ref_"
	ReferencePrefixFree = "free_"
	referenceRandBytes  = 12

	PaymentMethodFree = "free"
	DefaultCurrency   = "GHS"
)

// =====================================================
// WEBHOOK EVENTS
// =====================================================
const (
	EventChargeSuccess = "charge.success"
	EventChargeFailed  = "charge.failed"
)

// =====================================================
// REVENUE PERIODS
// =====================================================
const (
	PeriodDay   = "day"
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodYear  = "year"
)

// =====================================================
// METADATA KEYS
// =====================================================
const (
	MetaCourseID        = "course_id"
	MetaCourseTitle     = "course_title"
	MetaIsFree          = "is_free"
	MetaRetryOf         = "retry_of"
	MetaCancelledBy     = "cancelled_by"
	MetaCancelReason    = "cancel_reason"
	MetaCancelledAt     = "cancelled_at"
	MetaGatewayResponse = "gateway_response"
	MetaFailureReason   = "failure_reason"
	MetaVerifiedAt      = "verified_at"
)

// =====================================================
// CACHE
// =====================================================
const (
	CacheKeyStatusPrefix = "payment:status:"
	CacheKeyStatsPrefix  = "payment:stats:"

	DefaultPendingStatusTTL  = 60 * time.Second
	DefaultTerminalStatusTTL = time.Hour
	DefaultStatsTTL          = 10 * time.Minute
	DefaultBackupVerifyDelay = 5 * time.Minute

	// SweepInterval matches the reconcile cron; sweep task ids are unique per interval.
	SweepInterval = 10 * time.Minute
)

// =====================================================
// ERROR CODES
// =====================================================
const (
	ErrCodeNotFound   = "NOT_FOUND"
	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeConflict   = "CONFLICT"
	ErrCodeGateway    = "GATEWAY_ERROR"
)

// =====================================================
// PAGINATION
// =====================================================
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)
