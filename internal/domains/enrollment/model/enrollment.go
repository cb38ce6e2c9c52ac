package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending = "pending"
	StatusActive  = "active"

	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

var ErrEnrollmentNotFound = errors.New("enrollment not found")

type Enrollment struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	UserID        uuid.UUID  `json:"user_id" db:"user_id"`
	CourseID      uuid.UUID  `json:"course_id" db:"course_id"`
	Status        string     `json:"status" db:"status"`
	PaymentStatus string     `json:"payment_status" db:"payment_status"`
	PaymentID     *uuid.UUID `json:"payment_id,omitempty" db:"payment_id"`
	EnrolledAt    *time.Time `json:"enrolled_at,omitempty" db:"enrolled_at"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

func (e *Enrollment) IsPaid() bool {
	return e.PaymentStatus == PaymentStatusCompleted
}
