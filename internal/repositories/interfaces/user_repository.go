package interfaces

import (
	"context"
	"time"

	"ridedeck/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProfileUpdate struct {
	Name  *string
	Phone *string
	// Email set to an empty string removes the email.
	Email *string
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.User, error)

	UpdateProfile(ctx context.Context, id primitive.ObjectID, update *ProfileUpdate) (*models.User, error)
	ActivateSubscription(ctx context.Context, id primitive.ObjectID, plan models.SubscriptionPlan, expiry time.Time) (*models.User, error)
	SetOnlineStatus(ctx context.Context, id primitive.ObjectID, online bool, location *models.Coordinates) (*models.User, error)
}
