package utils

// Response statuses
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error codes
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeBadRequest   = "BAD_REQUEST"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeRateLimited  = "RATE_LIMITED"
	CodeInternal     = "INTERNAL_ERROR"
	CodePayment      = "PAYMENT_FAILED"
)

// Error messages
const (
	ErrValidationFailed = "Validation failed"
	ErrInternalServer   = "Server Error"
	ErrUnauthorized     = "Authentication required"
	ErrForbidden        = "Access denied"
	ErrTooManyRequests  = "Too many requests, slow down"
)

// Context keys set by the auth middleware
const (
	ContextUserID    = "user_id"
	ContextUserRole  = "user_role"
	ContextRequestID = "request_id"
)

const (
	AppName             = "RideDeck"
	DefaultCountryCode  = "+91"
	RideOTPLength       = 4
	HeaderRequestID     = "X-Request-ID"
	HeaderAuthorization = "Authorization"
)
