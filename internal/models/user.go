package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRole string
type SubscriptionStatus string

const (
	UserRoleRider  UserRole = "rider"
	UserRoleDriver UserRole = "driver"
	UserRoleAdmin  UserRole = "admin"

	SubscriptionStatusActive  SubscriptionStatus = "active"
	SubscriptionStatusExpired SubscriptionStatus = "expired"
	SubscriptionStatusNone    SubscriptionStatus = "none"
)

func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleRider, UserRoleDriver, UserRoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID                 primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name               string             `json:"name" bson:"name" validate:"required"`
	Phone              string             `json:"phone" bson:"phone" validate:"required"`
	Email              string             `json:"email,omitempty" bson:"email,omitempty"`
	Password           string             `json:"-" bson:"password,omitempty"`
	Role               UserRole           `json:"role" bson:"role"`
	IsVerified         bool               `json:"isVerified" bson:"is_verified"`
	VehicleType        VehicleType        `json:"vehicleType,omitempty" bson:"vehicle_type,omitempty"`
	VehicleNumber      string             `json:"vehicleNumber,omitempty" bson:"vehicle_number,omitempty"`
	LicenseNumber      string             `json:"licenseNumber,omitempty" bson:"license_number,omitempty"`
	SubscriptionStatus SubscriptionStatus `json:"subscriptionStatus" bson:"subscription_status"`
	SubscriptionPlan   SubscriptionPlan   `json:"subscriptionPlan,omitempty" bson:"subscription_plan,omitempty"`
	SubscriptionExpiry *time.Time         `json:"subscriptionExpiry,omitempty" bson:"subscription_expiry,omitempty"`
	IsOnline           bool               `json:"isOnline" bson:"is_online"`
	CurrentLocation    *Coordinates       `json:"currentLocation,omitempty" bson:"current_location,omitempty"`
	CreatedAt          time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt          time.Time          `json:"updatedAt" bson:"updated_at"`
}

func (u *User) IsDriver() bool {
	return u.Role == UserRoleDriver
}

func (u *User) HasPassword() bool {
	return u.Password != ""
}

// EffectiveSubscriptionStatus reports an active subscription whose expiry
// has passed as expired.
func (u *User) EffectiveSubscriptionStatus(now time.Time) SubscriptionStatus {
	if u.SubscriptionStatus == SubscriptionStatusActive && u.SubscriptionExpiry != nil && !now.Before(*u.SubscriptionExpiry) {
		return SubscriptionStatusExpired
	}
	if u.SubscriptionStatus == "" {
		return SubscriptionStatusNone
	}
	return u.SubscriptionStatus
}

// UserSummary is the subset of a user embedded in ride responses.
type UserSummary struct {
	ID            primitive.ObjectID `json:"id"`
	Name          string             `json:"name"`
	Phone         string             `json:"phone"`
	VehicleNumber string             `json:"vehicleNumber,omitempty"`
	VehicleType   VehicleType        `json:"vehicleType,omitempty"`
}

func (u *User) Summary() *UserSummary {
	s := &UserSummary{
		ID:    u.ID,
		Name:  u.Name,
		Phone: u.Phone,
	}
	if u.IsDriver() {
		s.VehicleNumber = u.VehicleNumber
		s.VehicleType = u.VehicleType
	}
	return s
}
