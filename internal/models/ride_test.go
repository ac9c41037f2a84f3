package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestRideStatusTransitions(t *testing.T) {
	assert.True(t, RideStatusSearching.CanTransitionTo(RideStatusAccepted))
	assert.True(t, RideStatusAccepted.CanTransitionTo(RideStatusStarted))
	assert.True(t, RideStatusStarted.CanTransitionTo(RideStatusCompleted))

	for _, s := range ActiveRideStatuses {
		assert.True(t, s.CanTransitionTo(RideStatusCancelled), "cancel from %s", s)
	}

	assert.False(t, RideStatusSearching.CanTransitionTo(RideStatusStarted))
	assert.False(t, RideStatusAccepted.CanTransitionTo(RideStatusCompleted))
	assert.False(t, RideStatusCompleted.CanTransitionTo(RideStatusCancelled))
	assert.False(t, RideStatusCancelled.CanTransitionTo(RideStatusSearching))
}

func TestRideStatusTerminal(t *testing.T) {
	assert.True(t, RideStatusCompleted.IsTerminal())
	assert.True(t, RideStatusCancelled.IsTerminal())
	assert.True(t, RideStatusStarted.IsActive())
	assert.False(t, RideStatus("bogus").IsActive())
}

func TestPriorStatuses(t *testing.T) {
	assert.ElementsMatch(t, []RideStatus{RideStatusSearching}, PriorStatuses(RideStatusAccepted))
	assert.ElementsMatch(t, []RideStatus{RideStatusStarted}, PriorStatuses(RideStatusCompleted))
	assert.ElementsMatch(t, ActiveRideStatuses, PriorStatuses(RideStatusCancelled))
	assert.Empty(t, PriorStatuses(RideStatusSearching))
}

func TestWithoutOTPLeavesOriginal(t *testing.T) {
	ride := &Ride{OTP: "1234"}
	clean := ride.WithoutOTP()
	assert.Empty(t, clean.OTP)
	assert.Equal(t, "1234", ride.OTP)
}

func TestInvolvesUser(t *testing.T) {
	rider, driver := primitive.NewObjectID(), primitive.NewObjectID()
	ride := &Ride{RiderID: rider}
	assert.True(t, ride.InvolvesUser(rider))
	assert.False(t, ride.InvolvesUser(driver))

	ride.DriverID = &driver
	assert.True(t, ride.InvolvesUser(driver))
}

func TestSubscriptionPlans(t *testing.T) {
	now := time.Date(2026, 1, 30, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, now.AddDate(0, 0, 1), SubscriptionPlanDaily.ExpiryFrom(now))
	assert.Equal(t, now.AddDate(0, 0, 7), SubscriptionPlanWeekly.ExpiryFrom(now))
	assert.Equal(t, now.AddDate(0, 0, 30), SubscriptionPlanMonthly.ExpiryFrom(now))
	assert.Equal(t, 299.0, SubscriptionPlanWeekly.Price())
	assert.False(t, SubscriptionPlan("yearly").IsValid())
}

func TestEffectiveSubscriptionStatus(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	u := &User{}
	assert.Equal(t, SubscriptionStatusNone, u.EffectiveSubscriptionStatus(now))

	u.SubscriptionStatus = SubscriptionStatusActive
	u.SubscriptionExpiry = &future
	assert.Equal(t, SubscriptionStatusActive, u.EffectiveSubscriptionStatus(now))

	u.SubscriptionExpiry = &past
	assert.Equal(t, SubscriptionStatusExpired, u.EffectiveSubscriptionStatus(now))
}
