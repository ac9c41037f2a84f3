package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ridedeck/internal/config"
	"ridedeck/internal/events"
	"ridedeck/internal/models"
	"ridedeck/internal/repositories/interfaces"
	"ridedeck/internal/utils"
	"ridedeck/internal/validators"
	"ridedeck/pkg/logger"
	"ridedeck/pkg/maps"
	"ridedeck/pkg/metrics"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const geocodeTimeout = 3 * time.Second

type RideService interface {
	BookRide(ctx context.Context, request *validators.BookRideRequest) (*models.Ride, error)
	GetAvailableRides(ctx context.Context) ([]*models.RideDetails, error)
	// GetActiveRide returns the user's non-terminal ride, first as rider and
	// then as driver, or nil when there is none.
	GetActiveRide(ctx context.Context, userID primitive.ObjectID) (*models.RideDetails, error)
	AcceptRide(ctx context.Context, request *validators.AcceptRideRequest) (*models.Ride, error)
	UpdateStatus(ctx context.Context, request *validators.UpdateRideStatusRequest) (*models.Ride, error)
	GetHistory(ctx context.Context, userID primitive.ObjectID) ([]*models.RideDetails, error)
	IsParticipant(ctx context.Context, userID, rideID primitive.ObjectID) bool
}

type RideServiceDeps struct {
	RideRepo      interfaces.RideRepository
	UserRepo      interfaces.UserRepository
	Payments      PaymentService
	Notifications NotificationService
	Events        events.Publisher
	// Geocoder is optional; without it places keep only their address.
	Geocoder         maps.Geocoder
	RideConfig       *config.RideConfig
	ChargeOnComplete bool
	Metrics          *metrics.Metrics
	Logger           *logger.Logger
}

type rideService struct {
	RideServiceDeps
	now func() time.Time
}

func NewRideService(deps RideServiceDeps) RideService {
	return &rideService{
		RideServiceDeps: deps,
		now:             time.Now,
	}
}

func (s *rideService) BookRide(ctx context.Context, request *validators.BookRideRequest) (*models.Ride, error) {
	riderID, err := validators.ParseObjectID(request.RiderID)
	if err != nil {
		return nil, validators.NewValidationError("riderId", err.Error())
	}

	rider, err := s.UserRepo.GetByID(ctx, riderID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get rider: %w", err)
	}

	if _, err := s.RideRepo.FindActiveByRider(ctx, riderID); err == nil {
		s.Metrics.RecordBookingRejected("active_ride")
		return nil, ErrActiveRideExists
	} else if !errors.Is(err, interfaces.ErrNotFound) {
		return nil, fmt.Errorf("failed to check active ride: %w", err)
	}

	vehicleType := models.VehicleType(request.VehicleType)
	now := s.now()
	ride := &models.Ride{
		RiderID:       riderID,
		Pickup:        s.resolvePlace(ctx, request.Pickup),
		Dropoff:       s.resolvePlace(ctx, request.Dropoff),
		VehicleType:   vehicleType,
		Fare:          s.fareFor(vehicleType, request.Fare),
		Status:        models.RideStatusSearching,
		Active:        true,
		OTP:           utils.GenerateRideOTP(s.RideConfig.OTPLength),
		PaymentStatus: models.PaymentStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.RideRepo.Create(ctx, ride); err != nil {
		// A concurrent booking won the race on the active-ride index.
		if errors.Is(err, interfaces.ErrDuplicateKey) {
			s.Metrics.RecordBookingRejected("concurrent_booking")
			return nil, ErrActiveRideExists
		}
		return nil, fmt.Errorf("failed to create ride: %w", err)
	}

	s.Logger.WithContext(ctx).LogRideEvent(ride.ID, string(models.RideEventRequested), map[string]interface{}{
		"rider_id":     riderID.Hex(),
		"vehicle_type": ride.VehicleType,
		"fare":         ride.Fare,
	})
	s.Metrics.RecordRideTransition(string(ride.Status))
	s.publish(ctx, models.NewRideEvent(models.RideEventRequested, ride))
	s.Notifications.NotifyRideBooked(ctx, rider, ride)

	return ride, nil
}

// fareFor uses the supplied fare, then the vehicle tariff, then the flat
// default.
func (s *rideService) fareFor(vehicleType models.VehicleType, requested *float64) float64 {
	if requested != nil && *requested > 0 {
		return *requested
	}
	if tariff, ok := s.RideConfig.VehicleTariffs[string(vehicleType)]; ok && tariff > 0 {
		return tariff
	}
	return s.RideConfig.DefaultFare
}

func (s *rideService) resolvePlace(ctx context.Context, input validators.PlaceInput) models.Place {
	place := models.Place{Address: input.Address}
	if input.Lat != nil && input.Lng != nil {
		place.SetCoordinates(*input.Lat, *input.Lng)
		return place
	}
	if s.Geocoder == nil || !s.RideConfig.GeocodeOnBook {
		return place
	}

	geoCtx, cancel := context.WithTimeout(ctx, geocodeTimeout)
	defer cancel()

	result, err := s.Geocoder.Geocode(geoCtx, input.Address)
	if err != nil {
		s.Logger.WithContext(ctx).WithError(err).WithField("address", input.Address).Warn("Geocoding failed, keeping address only")
		return place
	}
	place.SetCoordinates(result.Coordinates.Latitude, result.Coordinates.Longitude)
	return place
}

func (s *rideService) GetAvailableRides(ctx context.Context) ([]*models.RideDetails, error) {
	rides, err := s.RideRepo.ListByStatus(ctx, models.RideStatusSearching)
	if err != nil {
		return nil, fmt.Errorf("failed to list available rides: %w", err)
	}

	details, err := s.withParticipants(ctx, rides)
	if err != nil {
		return nil, err
	}
	for _, d := range details {
		d.Ride = d.Ride.WithoutOTP()
	}
	return details, nil
}

func (s *rideService) GetActiveRide(ctx context.Context, userID primitive.ObjectID) (*models.RideDetails, error) {
	asDriver := false
	ride, err := s.RideRepo.FindActiveByRider(ctx, userID)
	if errors.Is(err, interfaces.ErrNotFound) {
		asDriver = true
		ride, err = s.RideRepo.FindActiveByDriver(ctx, userID)
	}
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active ride: %w", err)
	}

	details, err := s.withParticipants(ctx, []*models.Ride{ride})
	if err != nil {
		return nil, err
	}
	if asDriver {
		details[0].Ride = ride.WithoutOTP()
	}
	return details[0], nil
}

func (s *rideService) AcceptRide(ctx context.Context, request *validators.AcceptRideRequest) (*models.Ride, error) {
	rideID, err := validators.ParseObjectID(request.RideID)
	if err != nil {
		return nil, validators.NewValidationError("rideId", err.Error())
	}
	driverID, err := validators.ParseObjectID(request.DriverID)
	if err != nil {
		return nil, validators.NewValidationError("driverId", err.Error())
	}

	driver, err := s.UserRepo.GetByID(ctx, driverID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get driver: %w", err)
	}
	if !driver.IsDriver() {
		return nil, ErrNotDriver
	}

	ride, err := s.RideRepo.Transition(ctx, rideID, &models.RideTransition{
		From:     models.PriorStatuses(models.RideStatusAccepted),
		To:       models.RideStatusAccepted,
		DriverID: &driverID,
		At:       s.now(),
	})
	if err != nil {
		switch {
		case errors.Is(err, interfaces.ErrNotFound):
			return nil, ErrRideNotFound
		case errors.Is(err, interfaces.ErrConflict):
			return nil, ErrRideAlreadyAccepted
		}
		return nil, fmt.Errorf("failed to accept ride: %w", err)
	}

	s.recordTransition(ctx, ride, nil, map[string]interface{}{"driver_id": driverID.Hex()})

	rider, err := s.UserRepo.GetByID(ctx, ride.RiderID)
	if err != nil {
		s.Logger.WithRideID(ride.ID).WithError(err).Warn("Rider lookup failed, skipping acceptance SMS")
	} else {
		s.Notifications.NotifyRideAccepted(ctx, rider, driver, ride)
	}

	return ride.WithoutOTP(), nil
}

func (s *rideService) UpdateStatus(ctx context.Context, request *validators.UpdateRideStatusRequest) (*models.Ride, error) {
	rideID, err := validators.ParseObjectID(request.RideID)
	if err != nil {
		return nil, validators.NewValidationError("rideId", err.Error())
	}

	var ride *models.Ride
	switch models.RideStatus(request.Status) {
	case models.RideStatusStarted:
		ride, err = s.startRide(ctx, rideID, request.OTP)
	case models.RideStatusCompleted:
		ride, err = s.completeRide(ctx, rideID)
	case models.RideStatusCancelled:
		ride, err = s.cancelRide(ctx, rideID)
	default:
		return nil, ErrInvalidStatus
	}
	if err != nil {
		return nil, err
	}

	return ride.WithoutOTP(), nil
}

// startRide checks the OTP before the status so that a wrong code is
// reported as such.
func (s *rideService) startRide(ctx context.Context, rideID primitive.ObjectID, otp string) (*models.Ride, error) {
	current, err := s.getRide(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if otp == "" || current.OTP != otp {
		return nil, ErrInvalidOTP
	}

	ride, err := s.transition(ctx, rideID, &models.RideTransition{
		From:       models.PriorStatuses(models.RideStatusStarted),
		To:         models.RideStatusStarted,
		RequireOTP: otp,
		At:         s.now(),
	})
	if err != nil {
		return nil, err
	}

	s.recordTransition(ctx, ride, nil, nil)
	return ride, nil
}

func (s *rideService) completeRide(ctx context.Context, rideID primitive.ObjectID) (*models.Ride, error) {
	ride, err := s.transition(ctx, rideID, &models.RideTransition{
		From: models.PriorStatuses(models.RideStatusCompleted),
		To:   models.RideStatusCompleted,
		At:   s.now(),
	})
	if err != nil {
		return nil, err
	}

	if s.ChargeOnComplete {
		ride = s.chargeRide(ctx, ride)
	}

	s.recordTransition(ctx, ride, nil, map[string]interface{}{
		"fare":           ride.Fare,
		"payment_status": ride.PaymentStatus,
	})
	return ride, nil
}

// chargeRide settles the fare. The ride stays completed whatever the outcome.
func (s *rideService) chargeRide(ctx context.Context, ride *models.Ride) *models.Ride {
	status := models.PaymentStatusFailed
	reference := ""

	charge, err := s.Payments.ChargeRide(ctx, ride)
	if err == nil {
		status = paymentStatusFor(charge)
		reference = charge.TransactionID
	}

	updated, err := s.RideRepo.SetPayment(ctx, ride.ID, status, reference)
	if err != nil {
		s.Logger.WithRideID(ride.ID).WithError(err).Error("Failed to record ride payment")
		ride.PaymentStatus = status
		ride.PaymentReference = reference
		return ride
	}
	return updated
}

func (s *rideService) cancelRide(ctx context.Context, rideID primitive.ObjectID) (*models.Ride, error) {
	current, err := s.getRide(ctx, rideID)
	if err != nil {
		return nil, err
	}

	ride, err := s.transition(ctx, rideID, &models.RideTransition{
		From:        models.PriorStatuses(models.RideStatusCancelled),
		To:          models.RideStatusCancelled,
		ClearDriver: true,
		At:          s.now(),
	})
	if err != nil {
		return nil, err
	}

	// Clean up any other ride the rider still holds open.
	cleaned, err := s.RideRepo.CancelActiveByRider(ctx, ride.RiderID, ride.ID)
	if err != nil {
		s.Logger.WithRideID(ride.ID).WithError(err).Error("Failed to cancel other active rides")
	} else if cleaned > 0 {
		s.Metrics.RecordCascadeCancelled(cleaned)
	}

	s.recordTransition(ctx, ride, current.DriverID, map[string]interface{}{
		"rider_id":       ride.RiderID.Hex(),
		"cascade_count":  cleaned,
		"previous_state": current.Status,
	})
	return ride, nil
}

func (s *rideService) GetHistory(ctx context.Context, userID primitive.ObjectID) ([]*models.RideDetails, error) {
	rides, err := s.RideRepo.ListHistory(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get ride history: %w", err)
	}

	details, err := s.withParticipants(ctx, rides)
	if err != nil {
		return nil, err
	}
	for _, d := range details {
		d.Ride = d.Ride.WithoutOTP()
	}
	return details, nil
}

func (s *rideService) IsParticipant(ctx context.Context, userID, rideID primitive.ObjectID) bool {
	ride, err := s.RideRepo.GetByID(ctx, rideID)
	if err != nil {
		return false
	}
	return ride.InvolvesUser(userID)
}

func (s *rideService) getRide(ctx context.Context, rideID primitive.ObjectID) (*models.Ride, error) {
	ride, err := s.RideRepo.GetByID(ctx, rideID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrRideNotFound
		}
		return nil, fmt.Errorf("failed to get ride: %w", err)
	}
	return ride, nil
}

func (s *rideService) transition(ctx context.Context, rideID primitive.ObjectID, t *models.RideTransition) (*models.Ride, error) {
	ride, err := s.RideRepo.Transition(ctx, rideID, t)
	if err != nil {
		switch {
		case errors.Is(err, interfaces.ErrNotFound):
			return nil, ErrRideNotFound
		case errors.Is(err, interfaces.ErrConflict):
			return nil, fmt.Errorf("%w: ride cannot be %s now", ErrInvalidTransition, t.To)
		}
		return nil, fmt.Errorf("failed to update ride: %w", err)
	}
	return ride, nil
}

func (s *rideService) recordTransition(ctx context.Context, ride *models.Ride, previousDriver *primitive.ObjectID, details map[string]interface{}) {
	eventType := models.RideEventForStatus(ride.Status)

	s.Logger.WithContext(ctx).LogRideEvent(ride.ID, string(eventType), details)
	s.Metrics.RecordRideTransition(string(ride.Status))

	event := models.NewRideEvent(eventType, ride)
	if previousDriver != nil && ride.DriverID == nil {
		event.PreviousDriverID = previousDriver
	}
	s.publish(ctx, event)
}

func (s *rideService) publish(ctx context.Context, event *models.RideEvent) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(ctx, event); err != nil {
		s.Logger.WithRideID(event.Ride.ID).WithError(err).Warn("Failed to publish ride event")
	}
}

// withParticipants resolves rider and driver summaries with one lookup.
func (s *rideService) withParticipants(ctx context.Context, rides []*models.Ride) ([]*models.RideDetails, error) {
	ids := make([]primitive.ObjectID, 0, len(rides)*2)
	for _, ride := range rides {
		ids = append(ids, ride.RiderID)
		if ride.DriverID != nil {
			ids = append(ids, *ride.DriverID)
		}
	}

	users, err := s.UserRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load ride participants: %w", err)
	}

	details := make([]*models.RideDetails, 0, len(rides))
	for _, ride := range rides {
		d := &models.RideDetails{Ride: ride}
		if rider, ok := users[ride.RiderID]; ok {
			d.Rider = rider.Summary()
		}
		if ride.DriverID != nil {
			if driver, ok := users[*ride.DriverID]; ok {
				d.Driver = driver.Summary()
			}
		}
		details = append(details, d)
	}
	return details, nil
}
