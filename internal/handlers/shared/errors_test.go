package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"ridedeck/internal/services"
	"ridedeck/internal/validators"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestHandleServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"user not found", services.ErrUserNotFound, http.StatusNotFound, "User not found"},
		{"ride not found", fmt.Errorf("lookup: %w", services.ErrRideNotFound), http.StatusNotFound, "Ride not found"},
		{"user exists", services.ErrUserExists, http.StatusConflict, "User already exists"},
		{"active ride", services.ErrActiveRideExists, http.StatusBadRequest, "You already have an active ride."},
		{"already accepted", services.ErrRideAlreadyAccepted, http.StatusBadRequest, "Ride already accepted"},
		{"invalid otp", services.ErrInvalidOTP, http.StatusBadRequest, "Invalid OTP"},
		{"transition", fmt.Errorf("%w: ride cannot be completed now", services.ErrInvalidTransition), http.StatusBadRequest, "Invalid status transition: ride cannot be completed now"},
		{"credentials", services.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
		{"not driver", services.ErrNotDriver, http.StatusForbidden, "User is not a driver"},
		{"payment", fmt.Errorf("%w: card declined", services.ErrPaymentFailed), http.StatusPaymentRequired, "Payment failed: card declined"},
		{"validation", validators.NewValidationError("password", "too short"), http.StatusBadRequest, "Validation failed"},
		{"unexpected", errors.New("mongo: connection refused"), http.StatusInternalServerError, "Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			handleServiceError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), `"message":"`+tt.message+`"`)
		})
	}
}
