package mongodb

import (
	"context"
	"fmt"
	"time"

	"ridedeck/internal/models"
	"ridedeck/internal/repositories/interfaces"
	"ridedeck/pkg/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const cacheTTL = 15 * time.Minute

type userRepository struct {
	collection *mongo.Collection
	cache      interfaces.CacheService
}

// NewUserRepository builds the users store. cache may be nil.
func NewUserRepository(db *mongo.Database, cache interfaces.CacheService) interfaces.UserRepository {
	return &userRepository{
		collection: db.Collection(database.CollectionUsers),
		cache:      cache,
	}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
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

	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		user.ID = primitive.NilObjectID
		return translateError("create user", err)
	}

	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	if user := r.getUserFromCache(ctx, id.Hex()); user != nil {
		return user, nil
	}

	var user models.User
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return nil, translateError("get user", err)
	}

	r.cacheUser(ctx, &user)
	return &user, nil
}

// GetByPhone always reads the store: the cached copy has no password hash.
func (r *userRepository) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	var user models.User
	if err := r.collection.FindOne(ctx, bson.M{"phone": phone}).Decode(&user); err != nil {
		return nil, translateError("get user by phone", err)
	}
	return &user, nil
}

func (r *userRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.User, error) {
	users := make(map[primitive.ObjectID]*models.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, translateError("list users", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var user models.User
		if err := cursor.Decode(&user); err != nil {
			return nil, fmt.Errorf("failed to decode user: %w", err)
		}
		users[user.ID] = &user
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return users, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, id primitive.ObjectID, update *interfaces.ProfileUpdate) (*models.User, error) {
	set := bson.M{"updated_at": time.Now()}
	unset := bson.M{}

	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Phone != nil {
		set["phone"] = *update.Phone
	}
	if update.Email != nil {
		if *update.Email == "" {
			unset["email"] = ""
		} else {
			set["email"] = *update.Email
		}
	}

	changes := bson.M{"$set": set}
	if len(unset) > 0 {
		changes["$unset"] = unset
	}

	return r.findAndUpdate(ctx, id, changes, "update user profile")
}

func (r *userRepository) ActivateSubscription(ctx context.Context, id primitive.ObjectID, plan models.SubscriptionPlan, expiry time.Time) (*models.User, error) {
	return r.findAndUpdate(ctx, id, bson.M{"$set": bson.M{
		"subscription_status": models.SubscriptionStatusActive,
		"subscription_plan":   plan,
		"subscription_expiry": expiry,
		"updated_at":          time.Now(),
	}}, "activate subscription")
}

func (r *userRepository) SetOnlineStatus(ctx context.Context, id primitive.ObjectID, online bool, location *models.Coordinates) (*models.User, error) {
	set := bson.M{
		"is_online":  online,
		"updated_at": time.Now(),
	}
	if location != nil {
		set["current_location"] = location
	}

	return r.findAndUpdate(ctx, id, bson.M{"$set": set}, "update online status")
}

func (r *userRepository) findAndUpdate(ctx context.Context, id primitive.ObjectID, changes bson.M, op string) (*models.User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user models.User
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, changes, opts).Decode(&user)
	r.invalidateUserCache(ctx, id.Hex())
	if err != nil {
		return nil, translateError(op, err)
	}

	return &user, nil
}

// Helper methods
func (r *userRepository) cacheUser(ctx context.Context, user *models.User) {
	if r.cache != nil {
		r.cache.Set(ctx, fmt.Sprintf("user:%s", user.ID.Hex()), user, cacheTTL)
	}
}

func (r *userRepository) getUserFromCache(ctx context.Context, userID string) *models.User {
	if r.cache == nil {
		return nil
	}

	var user models.User
	if err := r.cache.Get(ctx, fmt.Sprintf("user:%s", userID), &user); err != nil {
		return nil
	}
	return &user
}

func (r *userRepository) invalidateUserCache(ctx context.Context, userID string) {
	if r.cache != nil {
		r.cache.Delete(ctx, fmt.Sprintf("user:%s", userID))
	}
}
