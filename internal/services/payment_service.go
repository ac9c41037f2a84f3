package services

import (
	"context"
	"fmt"
	"time"

	"ridedeck/internal/models"
	"ridedeck/pkg/logger"
	"ridedeck/pkg/metrics"
	"ridedeck/pkg/payment"
)

const (
	paymentPurposeRide         = "ride"
	paymentPurposeSubscription = "subscription"
)

// PaymentService charges riders for completed trips and drivers for
// subscription plans through the configured gateway.
type PaymentService interface {
	ChargeRide(ctx context.Context, ride *models.Ride) (*payment.PaymentResponse, error)
	ChargeSubscription(ctx context.Context, driver *models.User, plan models.SubscriptionPlan) (*payment.PaymentResponse, error)
}

type paymentService struct {
	provider payment.PaymentProvider
	currency string
	metrics  *metrics.Metrics
	logger   *logger.Logger
}

func NewPaymentService(provider payment.PaymentProvider, currency string, metrics *metrics.Metrics, logger *logger.Logger) PaymentService {
	return &paymentService{
		provider: provider,
		currency: currency,
		metrics:  metrics,
		logger:   logger,
	}
}

func (s *paymentService) ChargeRide(ctx context.Context, ride *models.Ride) (*payment.PaymentResponse, error) {
	return s.charge(ctx, paymentPurposeRide, &payment.PaymentRequest{
		Reference:   "ride_" + ride.ID.Hex(),
		Amount:      ride.Fare,
		Currency:    s.currency,
		Description: fmt.Sprintf("Ride %s (%s)", ride.ID.Hex(), ride.VehicleType),
		CustomerID:  ride.RiderID.Hex(),
		Metadata: map[string]string{
			"ride_id":  ride.ID.Hex(),
			"rider_id": ride.RiderID.Hex(),
		},
	})
}

func (s *paymentService) ChargeSubscription(ctx context.Context, driver *models.User, plan models.SubscriptionPlan) (*payment.PaymentResponse, error) {
	return s.charge(ctx, paymentPurposeSubscription, &payment.PaymentRequest{
		Reference:   fmt.Sprintf("sub_%s_%s_%d", driver.ID.Hex(), plan, time.Now().Unix()),
		Amount:      plan.Price(),
		Currency:    s.currency,
		Description: fmt.Sprintf("%s driver subscription", plan),
		CustomerID:  driver.ID.Hex(),
		Metadata: map[string]string{
			"driver_id": driver.ID.Hex(),
			"plan":      string(plan),
		},
	})
}

func (s *paymentService) charge(ctx context.Context, purpose string, request *payment.PaymentRequest) (*payment.PaymentResponse, error) {
	response, err := s.provider.ProcessPayment(ctx, request)
	if err != nil {
		s.metrics.RecordPayment(s.provider.Name(), purpose, payment.StatusFailed)
		s.logger.WithError(err).WithField("reference", request.Reference).Error("Payment failed")
		return nil, fmt.Errorf("%w: %v", ErrPaymentFailed, err)
	}

	s.metrics.RecordPayment(s.provider.Name(), purpose, response.Status)
	s.logger.LogPaymentEvent(request.Reference, purpose+"_"+response.Status, request.Amount, request.Currency)

	return response, nil
}

// paymentStatusFor maps a gateway outcome onto the status stored on a ride.
func paymentStatusFor(response *payment.PaymentResponse) models.PaymentStatus {
	switch response.Status {
	case payment.StatusSucceeded:
		return models.PaymentStatusPaid
	case payment.StatusPending:
		return models.PaymentStatusPending
	}
	return models.PaymentStatusFailed
}
