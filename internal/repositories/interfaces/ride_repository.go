package interfaces

import (
	"context"

	"ridedeck/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RideRepository interface {
	// Create inserts a new ride. A second non-terminal ride for the same
	// rider fails with ErrDuplicateKey.
	Create(ctx context.Context, ride *models.Ride) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Ride, error)

	FindActiveByRider(ctx context.Context, riderID primitive.ObjectID) (*models.Ride, error)
	FindActiveByDriver(ctx context.Context, driverID primitive.ObjectID) (*models.Ride, error)
	ListByStatus(ctx context.Context, status models.RideStatus) ([]*models.Ride, error)
	// ListHistory returns terminal rides where the user is rider or driver,
	// newest first.
	ListHistory(ctx context.Context, userID primitive.ObjectID) ([]*models.Ride, error)

	// Transition applies the change only if the ride still matches the
	// transition's preconditions. ErrNotFound when the ride does not exist,
	// ErrConflict when it exists but the preconditions failed.
	Transition(ctx context.Context, id primitive.ObjectID, t *models.RideTransition) (*models.Ride, error)
	// CancelActiveByRider cancels every non-terminal ride of the rider except
	// the given one and returns how many were changed.
	CancelActiveByRider(ctx context.Context, riderID, exceptID primitive.ObjectID) (int64, error)
	SetPayment(ctx context.Context, id primitive.ObjectID, status models.PaymentStatus, reference string) (*models.Ride, error)
}
