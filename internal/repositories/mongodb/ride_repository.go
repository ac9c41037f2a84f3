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

type rideRepository struct {
	collection *mongo.Collection
	cache      interfaces.CacheService
}

// NewRideRepository builds the rides store. cache may be nil.
func NewRideRepository(db *mongo.Database, cache interfaces.CacheService) interfaces.RideRepository {
	return &rideRepository{
		collection: db.Collection(database.CollectionRides),
		cache:      cache,
	}
}

func (r *rideRepository) Create(ctx context.Context, ride *models.Ride) error {
	now := time.Now()
	ride.ID = primitive.NewObjectID()
	ride.CreatedAt = now
	ride.UpdatedAt = now
	if ride.Status == "" {
		ride.Status = models.RideStatusSearching
	}
	ride.Active = ride.Status.IsActive()

	if _, err := r.collection.InsertOne(ctx, ride); err != nil {
		ride.ID = primitive.NilObjectID
		return translateError("create ride", err)
	}

	r.cacheRide(ctx, ride)
	return nil
}

func (r *rideRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Ride, error) {
	if ride := r.getRideFromCache(ctx, id.Hex()); ride != nil {
		return ride, nil
	}

	var ride models.Ride
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&ride); err != nil {
		return nil, translateError("get ride", err)
	}

	r.cacheRide(ctx, &ride)
	return &ride, nil
}

func (r *rideRepository) FindActiveByRider(ctx context.Context, riderID primitive.ObjectID) (*models.Ride, error) {
	var ride models.Ride
	err := r.collection.FindOne(ctx, bson.M{"rider_id": riderID, "active": true}).Decode(&ride)
	if err != nil {
		return nil, translateError("find active ride", err)
	}
	return &ride, nil
}

func (r *rideRepository) FindActiveByDriver(ctx context.Context, driverID primitive.ObjectID) (*models.Ride, error) {
	filter := bson.M{
		"driver_id": driverID,
		"status":    bson.M{"$in": []models.RideStatus{models.RideStatusAccepted, models.RideStatusStarted}},
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "updated_at", Value: -1}})

	var ride models.Ride
	if err := r.collection.FindOne(ctx, filter, opts).Decode(&ride); err != nil {
		return nil, translateError("find driver ride", err)
	}
	return &ride, nil
}

func (r *rideRepository) ListByStatus(ctx context.Context, status models.RideStatus) ([]*models.Ride, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	return r.find(ctx, bson.M{"status": status}, opts)
}

func (r *rideRepository) ListHistory(ctx context.Context, userID primitive.ObjectID) ([]*models.Ride, error) {
	filter := bson.M{
		"$or": []bson.M{
			{"rider_id": userID},
			{"driver_id": userID},
		},
		"status": bson.M{"$in": models.HistoryRideStatuses},
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	return r.find(ctx, filter, opts)
}

func (r *rideRepository) Transition(ctx context.Context, id primitive.ObjectID, t *models.RideTransition) (*models.Ride, error) {
	if len(t.From) == 0 {
		return nil, fmt.Errorf("transition to %s has no prior status: %w", t.To, interfaces.ErrConflict)
	}

	filter := bson.M{
		"_id":    id,
		"status": bson.M{"$in": t.From},
	}
	if t.RequireOTP != "" {
		filter["otp"] = t.RequireOTP
	}

	at := t.At
	if at.IsZero() {
		at = time.Now()
	}
	set := bson.M{
		"status":     t.To,
		"active":     t.To.IsActive(),
		"updated_at": at,
	}
	if field := transitionTimestampField(t.To); field != "" {
		set[field] = at
	}
	if t.DriverID != nil {
		set["driver_id"] = *t.DriverID
	} else if t.ClearDriver {
		set["driver_id"] = nil
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var ride models.Ride
	err := r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&ride)
	r.invalidateRideCache(ctx, id.Hex())
	if err == nil {
		return &ride, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, translateError("transition ride", err)
	}

	// Nothing matched: tell a missing ride apart from a lost race.
	count, countErr := r.collection.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if countErr != nil {
		return nil, translateError("transition ride", countErr)
	}
	if count == 0 {
		return nil, fmt.Errorf("transition ride: %w", interfaces.ErrNotFound)
	}
	return nil, fmt.Errorf("transition ride to %s: %w", t.To, interfaces.ErrConflict)
}

func (r *rideRepository) CancelActiveByRider(ctx context.Context, riderID, exceptID primitive.ObjectID) (int64, error) {
	filter := bson.M{
		"rider_id": riderID,
		"_id":      bson.M{"$ne": exceptID},
		"active":   true,
	}

	ids, err := r.findIDs(ctx, filter)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	now := time.Now()
	result, err := r.collection.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}, "active": true},
		bson.M{"$set": bson.M{
			"status":       models.RideStatusCancelled,
			"active":       false,
			"driver_id":    nil,
			"cancelled_at": now,
			"updated_at":   now,
		}},
	)
	for _, id := range ids {
		r.invalidateRideCache(ctx, id.Hex())
	}
	if err != nil {
		return 0, translateError("cancel active rides", err)
	}

	return result.ModifiedCount, nil
}

func (r *rideRepository) SetPayment(ctx context.Context, id primitive.ObjectID, status models.PaymentStatus, reference string) (*models.Ride, error) {
	set := bson.M{
		"payment_status": status,
		"updated_at":     time.Now(),
	}
	if reference != "" {
		set["payment_reference"] = reference
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var ride models.Ride
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&ride)
	r.invalidateRideCache(ctx, id.Hex())
	if err != nil {
		return nil, translateError("record ride payment", err)
	}
	return &ride, nil
}

func (r *rideRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*models.Ride, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, translateError("list rides", err)
	}
	defer cursor.Close(ctx)

	rides := make([]*models.Ride, 0)
	for cursor.Next(ctx) {
		var ride models.Ride
		if err := cursor.Decode(&ride); err != nil {
			return nil, fmt.Errorf("failed to decode ride: %w", err)
		}
		rides = append(rides, &ride)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return rides, nil
}

func (r *rideRepository) findIDs(ctx context.Context, filter bson.M) ([]primitive.ObjectID, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, translateError("list ride ids", err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode ride ids: %w", err)
	}

	ids := make([]primitive.ObjectID, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids, nil
}

func transitionTimestampField(status models.RideStatus) string {
	switch status {
	case models.RideStatusAccepted:
		return "accepted_at"
	case models.RideStatusStarted:
		return "started_at"
	case models.RideStatusCompleted:
		return "completed_at"
	case models.RideStatusCancelled:
		return "cancelled_at"
	}
	return ""
}

// Helper methods. Only non-terminal rides are cached.
func (r *rideRepository) cacheRide(ctx context.Context, ride *models.Ride) {
	if r.cache != nil && ride.Status.IsActive() {
		r.cache.Set(ctx, fmt.Sprintf("ride:%s", ride.ID.Hex()), ride, cacheTTL)
	}
}

func (r *rideRepository) getRideFromCache(ctx context.Context, rideID string) *models.Ride {
	if r.cache == nil {
		return nil
	}

	var ride models.Ride
	if err := r.cache.Get(ctx, fmt.Sprintf("ride:%s", rideID), &ride); err != nil {
		return nil
	}
	ride.Active = ride.Status.IsActive()
	return &ride
}

func (r *rideRepository) invalidateRideCache(ctx context.Context, rideID string) {
	if r.cache != nil {
		r.cache.Delete(ctx, fmt.Sprintf("ride:%s", rideID))
	}
}
