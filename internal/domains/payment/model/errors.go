package model

import (
	"errors"
	"fmt"
)

// =====================================================
// PREDEFINED ERRORS
// =====================================================

var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation failed")
	ErrConflict           = errors.New("conflict")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	// Repository level
	ErrPaymentNotFound = errors.New("payment not found")
)

// =====================================================
// CUSTOM PAYMENT ERROR
// =====================================================

// PaymentError carries a code and a user-facing message. Err is one of the
// sentinels above so callers can use errors.Is(err, model.ErrNotFound).
type PaymentError struct {
	Code    string
	Message string
	Err     error
}

func (e *PaymentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *PaymentError) Unwrap() error {
	return e.Err
}

func NewPaymentError(code, message string, err error) *PaymentError {
	return &PaymentError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// =====================================================
// ERROR CONSTRUCTORS
// =====================================================

func NewNotFoundError(resource, id string) *PaymentError {
	return NewPaymentError(
		ErrCodeNotFound,
		fmt.Sprintf("%s not found: %s", resource, id),
		ErrNotFound,
	)
}

func NewValidationError(message string) *PaymentError {
	return NewPaymentError(ErrCodeValidation, message, ErrValidation)
}

func NewConflictError(message string) *PaymentError {
	return NewPaymentError(ErrCodeConflict, message, ErrConflict)
}

// NewGatewayError hides the gateway's own message from callers; cause is kept for logs.
func NewGatewayError(operation string, cause error) *PaymentError {
	return NewPaymentError(
		ErrCodeGateway,
		"Payment provider is unavailable, please try again",
		fmt.Errorf("%w: %s: %v", ErrGatewayUnavailable, operation, cause),
	)
}

// AsPaymentError unwraps err into a *PaymentError if it is one.
func AsPaymentError(err error) (*PaymentError, bool) {
	var pe *PaymentError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
