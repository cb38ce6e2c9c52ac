package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrCourseNotFound = errors.New("course not found")

type Course struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Title       string          `json:"title" db:"title"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Currency    string          `json:"currency" db:"currency"`
	IsFree      bool            `json:"is_free" db:"is_free"`
	IsActive    bool            `json:"is_active" db:"is_active"`
	LMSCourseID *string         `json:"lms_course_id,omitempty" db:"lms_course_id"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// RequiresPayment is false for courses flagged free or priced at zero.
func (c *Course) RequiresPayment() bool {
	return !c.IsFree && c.Price.IsPositive()
}
