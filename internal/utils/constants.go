package utils

import "time"

// Application Constants
const (
	AppName    = "CarRental"
	AppVersion = "1.0.0"

	// Default values
	DefaultLanguage = "en"
	DefaultCurrency = "usd"
	DefaultTimeZone = "UTC"

	// Pagination
	DefaultPageSize = 20
	MaxPageSize     = 100
	MinPageSize     = 1

	// Authentication
	JWTAccessTokenTTL = 24 * time.Hour
	PasswordMinLength = 8
	PasswordMaxLength = 128

	// Listings
	MaxCarYearAhead = 1
	MinCarYear      = 1990
	MaxSeating      = 12

	// Bookings
	MaxBookingDays          = 90
	DashboardRecentBookings = 5

	// Booking creation lock
	BookingLockTTL        = 10 * time.Second
	BookingLockRetries    = 20
	BookingLockRetryDelay = 50 * time.Millisecond

	// File Upload
	MaxImageSize = 5 * 1024 * 1024 // 5MB
)

// HTTP Status Messages
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error Messages
const (
	ErrInvalidCredentials = "invalid credentials"
	ErrUserExists         = "user already exists"
	ErrInvalidToken       = "invalid token"
	ErrInternalServer     = "internal server error"
	ErrUnauthorized       = "unauthorized"
	ErrForbidden          = "forbidden"
	ErrValidationFailed   = "validation failed"
	ErrCarNotFound        = "car not found"
	ErrBookingNotFound    = "booking not found"
	ErrDatesUnavailable   = "car is already booked for these dates"
	ErrPaymentFailed      = "payment failed"
)
