package services

import "errors"

// Domain errors returned by the services. Handlers map them onto HTTP
// statuses with errors.Is.
var (
	ErrUserExists         = errors.New("User already exists")
	ErrUserNotFound       = errors.New("User not found")
	ErrInvalidCredentials = errors.New("Invalid credentials")
	ErrNotDriver          = errors.New("User is not a driver")
	ErrInvalidPlan        = errors.New("Invalid subscription plan")
	ErrPaymentFailed      = errors.New("Payment failed")

	ErrRideNotFound        = errors.New("Ride not found")
	ErrActiveRideExists    = errors.New("You already have an active ride.")
	ErrRideAlreadyAccepted = errors.New("Ride already accepted")
	ErrInvalidOTP          = errors.New("Invalid OTP")
	ErrInvalidTransition   = errors.New("Invalid status transition")
	ErrInvalidStatus       = errors.New("Invalid status")
	ErrInvalidToken        = errors.New("Invalid or expired token")
)
