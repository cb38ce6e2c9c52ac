package model

import (
	"encoding/json"

	"github.com/google/uuid"
)

// WebhookTaskPayload carries a verified webhook to the worker.
type WebhookTaskPayload struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// VerifyPaymentPayload triggers the verification engine for one reference.
type VerifyPaymentPayload struct {
	Reference string `json:"reference"`
	Trigger   string `json:"trigger"` // backup, sweep
}

const (
	TriggerBackup = "backup"
	TriggerSweep  = "sweep"
)

// CompleteEnrollmentPayload is enqueued by the free-course path.
type CompleteEnrollmentPayload struct {
	PaymentID    uuid.UUID `json:"payment_id"`
	EnrollmentID uuid.UUID `json:"enrollment_id"`
	Reference    string    `json:"reference"`
}

type ReconcileStalePayload struct {
	Limit int `json:"limit"`
}
