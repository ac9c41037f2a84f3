package validators

import (
	"strings"

	"ridedeck/internal/models"
)

type RegisterRequest struct {
	Name          string `json:"name" validate:"required,min=2,max=100"`
	Phone         string `json:"phone" validate:"required,phone_number"`
	Email         string `json:"email" validate:"omitempty,email"`
	Password      string `json:"password" validate:"omitempty,min=6,max=72"`
	Role          string `json:"role" validate:"omitempty,user_role"`
	VehicleType   string `json:"vehicleType" validate:"omitempty,vehicle_type"`
	VehicleNumber string `json:"vehicleNumber" validate:"omitempty,max=20"`
	LicenseNumber string `json:"licenseNumber" validate:"omitempty,max=30"`
}

// Normalize trims input and applies the rider default role.
func (r *RegisterRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.VehicleNumber = strings.ToUpper(strings.TrimSpace(r.VehicleNumber))
	if r.Role == "" {
		r.Role = string(models.UserRoleRider)
	}
}

type LoginRequest struct {
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password"`
}

type UpdateProfileRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=2,max=100"`
	Email *string `json:"email" validate:"omitempty,max=254"`
	Phone *string `json:"phone" validate:"omitempty,phone_number"`
}

// ValidateEmail allows an empty email, which clears it.
func (r *UpdateProfileRequest) ValidateEmail() bool {
	if r.Email == nil || *r.Email == "" {
		return true
	}
	return validate.Var(*r.Email, "email") == nil
}

type SubscriptionRequest struct {
	UserID string `json:"userId" validate:"required,object_id"`
	Plan   string `json:"plan" validate:"required,plan"`
}

type DriverStatusRequest struct {
	UserID   string `json:"userId" validate:"required,object_id"`
	IsOnline *bool  `json:"isOnline" validate:"required"`
}
