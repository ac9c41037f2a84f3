package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ridedeck/internal/config"
	"ridedeck/internal/models"
	"ridedeck/internal/repositories/interfaces"
	"ridedeck/pkg/logger"
	"ridedeck/pkg/payment"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DriverService interface {
	ActivateSubscription(ctx context.Context, driverID primitive.ObjectID, plan models.SubscriptionPlan) (*SubscriptionResult, error)
	SetOnlineStatus(ctx context.Context, driverID primitive.ObjectID, online bool) (*DriverStatusResult, error)
}

type SubscriptionResult struct {
	Success            bool                      `json:"success"`
	SubscriptionStatus models.SubscriptionStatus `json:"subscriptionStatus"`
	Plan               models.SubscriptionPlan   `json:"plan"`
	Expiry             *time.Time                `json:"expiry"`
	Amount             float64                   `json:"amount"`
	PaymentReference   string                    `json:"paymentReference"`
	PaymentStatus      string                    `json:"paymentStatus"`
}

type DriverStatusResult struct {
	Success         bool                `json:"success"`
	IsOnline        bool                `json:"isOnline"`
	CurrentLocation *models.Coordinates `json:"currentLocation,omitempty"`
}

type driverService struct {
	userRepo       interfaces.UserRepository
	paymentService PaymentService
	cache          CacheService
	rideConfig     *config.RideConfig
	logger         *logger.Logger
	now            func() time.Time
}

func NewDriverService(
	userRepo interfaces.UserRepository,
	paymentService PaymentService,
	cache CacheService,
	rideConfig *config.RideConfig,
	logger *logger.Logger,
) DriverService {
	return &driverService{
		userRepo:       userRepo,
		paymentService: paymentService,
		cache:          cache,
		rideConfig:     rideConfig,
		logger:         logger,
		now:            time.Now,
	}
}

func (s *driverService) ActivateSubscription(ctx context.Context, driverID primitive.ObjectID, plan models.SubscriptionPlan) (*SubscriptionResult, error) {
	if !plan.IsValid() {
		return nil, ErrInvalidPlan
	}

	driver, err := s.getDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}

	charge, err := s.paymentService.ChargeSubscription(ctx, driver, plan)
	if err != nil {
		return nil, err
	}
	if charge.Status == payment.StatusFailed {
		return nil, ErrPaymentFailed
	}

	expiry := plan.ExpiryFrom(s.now())
	updated, err := s.userRepo.ActivateSubscription(ctx, driverID, plan, expiry)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to activate subscription: %w", err)
	}

	s.logger.LogUserAction(driverID, "subscription_activated", map[string]interface{}{
		"plan":           plan,
		"expiry":         expiry,
		"transaction_id": charge.TransactionID,
	})

	return &SubscriptionResult{
		Success:            true,
		SubscriptionStatus: updated.EffectiveSubscriptionStatus(s.now()),
		Plan:               plan,
		Expiry:             updated.SubscriptionExpiry,
		Amount:             plan.Price(),
		PaymentReference:   charge.TransactionID,
		PaymentStatus:      charge.Status,
	}, nil
}

func (s *driverService) SetOnlineStatus(ctx context.Context, driverID primitive.ObjectID, online bool) (*DriverStatusResult, error) {
	if _, err := s.getDriver(ctx, driverID); err != nil {
		return nil, err
	}

	// Drivers are not tracked; going online places them at a fixed point.
	var location *models.Coordinates
	if online {
		location = &models.Coordinates{Lat: s.rideConfig.DriverLat, Lng: s.rideConfig.DriverLng}
	}

	updated, err := s.userRepo.SetOnlineStatus(ctx, driverID, online, location)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update driver status: %w", err)
	}

	if online {
		err = s.cache.SetDriverLocation(ctx, driverID, location)
	} else {
		err = s.cache.RemoveDriverLocation(ctx, driverID)
	}
	if err != nil {
		s.logger.WithUserID(driverID).WithError(err).Warn("Failed to update driver presence")
	}

	s.logger.LogUserAction(driverID, "driver_status", map[string]interface{}{"is_online": online})

	return &DriverStatusResult{
		Success:         true,
		IsOnline:        updated.IsOnline,
		CurrentLocation: updated.CurrentLocation,
	}, nil
}

func (s *driverService) getDriver(ctx context.Context, driverID primitive.ObjectID) (*models.User, error) {
	driver, err := s.userRepo.GetByID(ctx, driverID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !driver.IsDriver() {
		return nil, ErrNotDriver
	}
	return driver, nil
}
