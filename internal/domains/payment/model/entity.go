package model

import (
	"fmt"
	"time"

	"course-payments/internal/shared/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =====================================================
// PAYMENT ENTITY
// =====================================================

// Payment is one payment attempt for a course enrollment. Rows are never deleted.
type Payment struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Reference    string     `json:"reference" db:"reference"`
	UserID       uuid.UUID  `json:"user_id" db:"user_id"`
	EnrollmentID *uuid.UUID `json:"enrollment_id,omitempty" db:"enrollment_id"`

	Amount   decimal.Decimal `json:"amount" db:"amount"`
	Currency string          `json:"currency" db:"currency"`

	// Gateway checkout, nil for free payments
	AccessCode       *string `json:"access_code,omitempty" db:"access_code"`
	AuthorizationURL *string `json:"authorization_url,omitempty" db:"authorization_url"`

	Status        string                 `json:"status" db:"status"`
	PaymentMethod *string                `json:"payment_method,omitempty" db:"payment_method"`
	Metadata      map[string]interface{} `json:"metadata" db:"metadata"`
	PaidAt        *time.Time             `json:"paid_at,omitempty" db:"paid_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func (p *Payment) IsTerminal() bool {
	return IsTerminalStatus(p.Status)
}

func (p *Payment) IsSuccessful() bool {
	return p.Status == PaymentStatusSuccess
}

func (p *Payment) IsPending() bool {
	return p.Status == PaymentStatusPending
}

func (p *Payment) BelongsTo(userID uuid.UUID) bool {
	return p.UserID == userID
}

// CourseID reads the course id recorded in metadata at initialization.
func (p *Payment) CourseID() *uuid.UUID {
	raw, ok := p.Metadata[MetaCourseID].(string)
	if !ok {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}

func (p *Payment) CourseTitle() string {
	title, _ := p.Metadata[MetaCourseTitle].(string)
	return title
}

// =====================================================
// REFERENCES
// =====================================================

// NewReference returns prefix + 24 random hex characters.
func NewReference(prefix string) (string, error) {
	suffix, err := utils.RandomHex(referenceRandBytes)
	if err != nil {
		return "", fmt.Errorf("generate payment reference: %w", err)
	}
	return prefix + suffix, nil
}
