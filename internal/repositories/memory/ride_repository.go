package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"ridedeck/internal/models"
	"ridedeck/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type rideRepository struct {
	mu    sync.RWMutex
	rides map[primitive.ObjectID]*models.Ride
	// activeByRider mirrors the partial unique index on rider_id.
	activeByRider map[primitive.ObjectID]primitive.ObjectID
}

func NewRideRepository() interfaces.RideRepository {
	return &rideRepository{
		rides:         make(map[primitive.ObjectID]*models.Ride),
		activeByRider: make(map[primitive.ObjectID]primitive.ObjectID),
	}
}

func (r *rideRepository) Create(ctx context.Context, ride *models.Ride) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ride.Status == "" {
		ride.Status = models.RideStatusSearching
	}
	ride.Active = ride.Status.IsActive()

	if _, taken := r.activeByRider[ride.RiderID]; taken && ride.Active {
		return fmt.Errorf("create ride: %w: rider already has an active ride", interfaces.ErrDuplicateKey)
	}

	now := time.Now()
	ride.ID = primitive.NewObjectID()
	ride.CreatedAt = now
	ride.UpdatedAt = now

	stored := *ride
	r.rides[ride.ID] = &stored
	if ride.Active {
		r.activeByRider[ride.RiderID] = ride.ID
	}
	return nil
}

func (r *rideRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Ride, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ride, ok := r.rides[id]
	if !ok {
		return nil, fmt.Errorf("get ride: %w", interfaces.ErrNotFound)
	}
	return cloneRide(ride), nil
}

func (r *rideRepository) FindActiveByRider(ctx context.Context, riderID primitive.ObjectID) (*models.Ride, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.activeByRider[riderID]
	if !ok {
		return nil, fmt.Errorf("find active ride: %w", interfaces.ErrNotFound)
	}
	return cloneRide(r.rides[id]), nil
}

func (r *rideRepository) FindActiveByDriver(ctx context.Context, driverID primitive.ObjectID) (*models.Ride, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *models.Ride
	for _, ride := range r.rides {
		if ride.DriverID == nil || *ride.DriverID != driverID {
			continue
		}
		if ride.Status != models.RideStatusAccepted && ride.Status != models.RideStatusStarted {
			continue
		}
		if latest == nil || ride.UpdatedAt.After(latest.UpdatedAt) {
			latest = ride
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("find driver ride: %w", interfaces.ErrNotFound)
	}
	return cloneRide(latest), nil
}

func (r *rideRepository) ListByStatus(ctx context.Context, status models.RideStatus) ([]*models.Ride, error) {
	rides := r.filter(func(ride *models.Ride) bool { return ride.Status == status })
	sort.SliceStable(rides, func(i, j int) bool {
		return rides[i].CreatedAt.Before(rides[j].CreatedAt)
	})
	return rides, nil
}

func (r *rideRepository) ListHistory(ctx context.Context, userID primitive.ObjectID) ([]*models.Ride, error) {
	rides := r.filter(func(ride *models.Ride) bool {
		return ride.Status.IsTerminal() && ride.InvolvesUser(userID)
	})
	sort.SliceStable(rides, func(i, j int) bool {
		if rides[i].CreatedAt.Equal(rides[j].CreatedAt) {
			return rides[i].ID.Hex() > rides[j].ID.Hex()
		}
		return rides[i].CreatedAt.After(rides[j].CreatedAt)
	})
	return rides, nil
}

func (r *rideRepository) Transition(ctx context.Context, id primitive.ObjectID, t *models.RideTransition) (*models.Ride, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ride, ok := r.rides[id]
	if !ok {
		return nil, fmt.Errorf("transition ride: %w", interfaces.ErrNotFound)
	}
	if !statusIn(ride.Status, t.From) || (t.RequireOTP != "" && ride.OTP != t.RequireOTP) {
		return nil, fmt.Errorf("transition ride to %s: %w", t.To, interfaces.ErrConflict)
	}

	at := t.At
	if at.IsZero() {
		at = time.Now()
	}
	ride.Status = t.To
	ride.Active = t.To.IsActive()
	ride.UpdatedAt = at
	switch t.To {
	case models.RideStatusAccepted:
		ride.AcceptedAt = &at
	case models.RideStatusStarted:
		ride.StartedAt = &at
	case models.RideStatusCompleted:
		ride.CompletedAt = &at
	case models.RideStatusCancelled:
		ride.CancelledAt = &at
	}
	if t.DriverID != nil {
		driverID := *t.DriverID
		ride.DriverID = &driverID
	} else if t.ClearDriver {
		ride.DriverID = nil
	}
	if !ride.Active && r.activeByRider[ride.RiderID] == ride.ID {
		delete(r.activeByRider, ride.RiderID)
	}

	return cloneRide(ride), nil
}

func (r *rideRepository) CancelActiveByRider(ctx context.Context, riderID, exceptID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	var count int64
	for _, ride := range r.rides {
		if ride.RiderID != riderID || ride.ID == exceptID || !ride.Active {
			continue
		}
		ride.Status = models.RideStatusCancelled
		ride.Active = false
		ride.DriverID = nil
		ride.CancelledAt = &now
		ride.UpdatedAt = now
		if r.activeByRider[riderID] == ride.ID {
			delete(r.activeByRider, riderID)
		}
		count++
	}
	return count, nil
}

func (r *rideRepository) SetPayment(ctx context.Context, id primitive.ObjectID, status models.PaymentStatus, reference string) (*models.Ride, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ride, ok := r.rides[id]
	if !ok {
		return nil, fmt.Errorf("record ride payment: %w", interfaces.ErrNotFound)
	}
	ride.PaymentStatus = status
	if reference != "" {
		ride.PaymentReference = reference
	}
	ride.UpdatedAt = time.Now()
	return cloneRide(ride), nil
}

func (r *rideRepository) filter(keep func(*models.Ride) bool) []*models.Ride {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rides := make([]*models.Ride, 0)
	for _, ride := range r.rides {
		if keep(ride) {
			rides = append(rides, cloneRide(ride))
		}
	}
	return rides
}

func statusIn(status models.RideStatus, set []models.RideStatus) bool {
	for _, s := range set {
		if s == status {
			return true
		}
	}
	return false
}

// cloneRide copies the ride. Pointer fields are replaced, never written
// through, so sharing them is safe.
func cloneRide(ride *models.Ride) *models.Ride {
	clone := *ride
	return &clone
}
