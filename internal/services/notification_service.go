package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ridedeck/internal/models"
	"ridedeck/internal/utils"
	"ridedeck/pkg/logger"
	"ridedeck/pkg/metrics"
	"ridedeck/pkg/sms"
)

const smsTimeout = 10 * time.Second

// NotificationService texts riders about their trips. Delivery happens in
// the background and failures are only logged.
type NotificationService interface {
	NotifyRideBooked(ctx context.Context, rider *models.User, ride *models.Ride)
	NotifyRideAccepted(ctx context.Context, rider, driver *models.User, ride *models.Ride)
	// Wait blocks until queued messages have been handed to the provider.
	Wait()
}

type notificationService struct {
	provider    sms.SMSProvider
	senderID    string
	countryCode string
	metrics     *metrics.Metrics
	logger      *logger.Logger
	wg          sync.WaitGroup
}

func NewNotificationService(provider sms.SMSProvider, senderID string, metrics *metrics.Metrics, logger *logger.Logger) NotificationService {
	return &notificationService{
		provider:    provider,
		senderID:    senderID,
		countryCode: utils.DefaultCountryCode,
		metrics:     metrics,
		logger:      logger,
	}
}

func (s *notificationService) NotifyRideBooked(ctx context.Context, rider *models.User, ride *models.Ride) {
	message := fmt.Sprintf("%s: your ride from %s is booked. Share OTP %s with your driver at pickup.",
		utils.AppName, ride.Pickup.Address, ride.OTP)
	s.send(ctx, rider, sms.TypeOTP, message)
}

func (s *notificationService) NotifyRideAccepted(ctx context.Context, rider, driver *models.User, ride *models.Ride) {
	vehicle := string(driver.VehicleType)
	if driver.VehicleNumber != "" {
		vehicle = fmt.Sprintf("%s %s", driver.VehicleType, driver.VehicleNumber)
	}
	message := fmt.Sprintf("%s: %s (%s) accepted your ride. Driver phone: %s.",
		utils.AppName, driver.Name, vehicle, driver.Phone)
	s.send(ctx, rider, sms.TypeTransactional, message)
}

func (s *notificationService) Wait() {
	s.wg.Wait()
}

func (s *notificationService) send(ctx context.Context, user *models.User, messageType, message string) {
	if user == nil || user.Phone == "" {
		return
	}

	request := &sms.SMSRequest{
		To:      utils.ToE164(user.Phone, s.countryCode),
		From:    s.senderID,
		Message: message,
		Type:    messageType,
	}
	log := s.logger.WithContext(ctx).WithUserID(user.ID)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		// The request context ends with the response; the SMS must not.
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), smsTimeout)
		defer cancel()

		response, err := s.provider.SendSMS(sendCtx, request)
		if err != nil {
			s.metrics.RecordSMS(s.provider.Name(), "failed")
			log.WithError(err).WithField("to", utils.MaskPhone(request.To)).Warn("Failed to send SMS")
			return
		}

		s.metrics.RecordSMS(s.provider.Name(), "sent")
		log.WithFields(map[string]interface{}{
			"message_id": response.MessageID,
			"type":       messageType,
		}).Debug("SMS sent")
	}()
}
