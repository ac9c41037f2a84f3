package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ridedeck/internal/models"
	"ridedeck/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type userRepository struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]*models.User
}

func NewUserRepository() interfaces.UserRepository {
	return &userRepository{users: make(map[primitive.ObjectID]*models.User)}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkUnique(primitive.NilObjectID, user.Phone, user.Email); err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	now := time.Now()
	user.ID = primitive.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = models.UserRoleRider
	}
	if user.SubscriptionStatus == "" {
		user.SubscriptionStatus = models.SubscriptionStatusNone
	}

	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("get user: %w", interfaces.ErrNotFound)
	}
	clone := *user
	return &clone, nil
}

func (r *userRepository) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Phone == phone {
			clone := *user
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("get user by phone: %w", interfaces.ErrNotFound)
}

func (r *userRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make(map[primitive.ObjectID]*models.User, len(ids))
	for _, id := range ids {
		if user, ok := r.users[id]; ok {
			clone := *user
			users[id] = &clone
		}
	}
	return users, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, id primitive.ObjectID, update *interfaces.ProfileUpdate) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("update user profile: %w", interfaces.ErrNotFound)
	}

	phone, email := user.Phone, user.Email
	if update.Phone != nil {
		phone = *update.Phone
	}
	if update.Email != nil {
		email = *update.Email
	}
	if err := r.checkUnique(id, phone, email); err != nil {
		return nil, fmt.Errorf("update user profile: %w", err)
	}

	if update.Name != nil {
		user.Name = *update.Name
	}
	user.Phone = phone
	user.Email = email
	user.UpdatedAt = time.Now()

	clone := *user
	return &clone, nil
}

func (r *userRepository) ActivateSubscription(ctx context.Context, id primitive.ObjectID, plan models.SubscriptionPlan, expiry time.Time) (*models.User, error) {
	return r.mutate(id, "activate subscription", func(user *models.User) {
		user.SubscriptionStatus = models.SubscriptionStatusActive
		user.SubscriptionPlan = plan
		user.SubscriptionExpiry = &expiry
	})
}

func (r *userRepository) SetOnlineStatus(ctx context.Context, id primitive.ObjectID, online bool, location *models.Coordinates) (*models.User, error) {
	return r.mutate(id, "update online status", func(user *models.User) {
		user.IsOnline = online
		if location != nil {
			loc := *location
			user.CurrentLocation = &loc
		}
	})
}

func (r *userRepository) mutate(id primitive.ObjectID, op string, apply func(*models.User)) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, interfaces.ErrNotFound)
	}
	apply(user)
	user.UpdatedAt = time.Now()

	clone := *user
	return &clone, nil
}

// checkUnique mirrors the unique phone and sparse unique email indexes.
func (r *userRepository) checkUnique(self primitive.ObjectID, phone, email string) error {
	for id, other := range r.users {
		if id == self {
			continue
		}
		if other.Phone == phone {
			return fmt.Errorf("%w: phone", interfaces.ErrDuplicateKey)
		}
		if email != "" && other.Email == email {
			return fmt.Errorf("%w: email", interfaces.ErrDuplicateKey)
		}
	}
	return nil
}
