package shared

// Task types handled by cmd/worker.
const (
	TypePaymentWebhook        = "payment:webhook"
	TypePaymentVerify         = "payment:verify"
	TypePaymentCompleteEnroll = "payment:complete_enrollment"
	TypePaymentReconcileStale = "payment:reconcile_stale"

	TypeSendReceiptEmail = "email:send_receipt"
)

// Queue names and their weights in the worker.
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

var QueuePriorities = map[string]int{
	QueueCritical: 6,
	QueueDefault:  3,
	QueueLow:      1,
}

// Context keys set by the auth middleware.
const (
	ContextKeyUserID = "userID"
	ContextKeyRole   = "role"
	ContextKeyEmail  = "email"
)

const RoleAdmin = "admin"
