package services

import "errors"

// Sentinel errors returned by the service layer. Handlers translate these
// into HTTP responses; everything else maps to an internal server error.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("invalid credentials")
	ErrForbidden    = errors.New("access denied")
	ErrConflict     = errors.New("resource conflict")
	ErrValidation   = errors.New("validation failed")
	ErrGateway      = errors.New("payment gateway error")
	ErrSignature    = errors.New("invalid webhook signature")

	// ErrPaymentNotCompleted is returned when a confirmation is attempted
	// before the gateway reports the intent as succeeded.
	ErrPaymentNotCompleted = errors.New("payment has not completed")
)
