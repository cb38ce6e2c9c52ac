package gateway

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// =====================================================
// GATEWAY INTERFACE
// =====================================================

// GatewayClient is the hosted-checkout provider used by the payment service.
type GatewayClient interface {
	// CreateTransaction registers a checkout for reference and returns where to send the customer.
	CreateTransaction(ctx context.Context, req CreateTransactionRequest) (*CreateTransactionResponse, error)

	// VerifyTransaction asks the provider for the authoritative outcome of reference.
	VerifyTransaction(ctx context.Context, reference string) (*VerifyTransactionResponse, error)

	// ValidateSignature checks a webhook signature against the raw, unparsed body.
	ValidateSignature(payload []byte, signature string) bool
}

// =====================================================
// REQUEST/RESPONSE TYPES
// =====================================================

type CreateTransactionRequest struct {
	Email       string
	Amount      decimal.Decimal // major units, e.g. 500.00 GHS
	Currency    string
	Reference   string
	CallbackURL string
	Metadata    map[string]interface{}
}

type CreateTransactionResponse struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
}

// Transaction statuses reported by the provider.
const (
	TransactionStatusSuccess   = "success"
	TransactionStatusFailed    = "failed"
	TransactionStatusAbandoned = "abandoned"
	TransactionStatusReversed  = "reversed"
	TransactionStatusOngoing   = "ongoing"
	TransactionStatusPending   = "pending"
)

type VerifyTransactionResponse struct {
	Reference       string
	Status          string
	Amount          decimal.Decimal
	Currency        string
	Channel         string
	GatewayResponse string
	PaidAt          *time.Time
}

func (r *VerifyTransactionResponse) IsSuccess() bool {
	return r.Status == TransactionStatusSuccess
}

// IsFailed is true only for definitive failures; ongoing/pending are not failures.
func (r *VerifyTransactionResponse) IsFailed() bool {
	switch r.Status {
	case TransactionStatusFailed, TransactionStatusAbandoned, TransactionStatusReversed:
		return true
	}
	return false
}
