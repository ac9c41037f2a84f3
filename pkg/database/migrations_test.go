package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"ridedeck/pkg/logger"
)

func TestMigrationsCreateActiveRideIndex(t *testing.T) {
	db := NewTestMongoDB(t, "ride_deck_migrations_test")
	ctx := context.Background()

	version, err := NewMigrator(db.Database, logger.Discard()).CurrentVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, version)

	rides := db.Collection(CollectionRides)
	riderID := primitive.NewObjectID()

	_, err = rides.InsertOne(ctx, bson.M{"rider_id": riderID, "active": true})
	require.NoError(t, err)
	_, err = rides.InsertOne(ctx, bson.M{"rider_id": riderID, "active": true})
	assert.True(t, mongo.IsDuplicateKeyError(err))

	// Terminal rides are outside the partial index.
	_, err = rides.InsertOne(ctx, bson.M{"rider_id": riderID, "active": false})
	assert.NoError(t, err)
	_, err = rides.InsertOne(ctx, bson.M{"rider_id": riderID, "active": false})
	assert.NoError(t, err)
}

func TestUsersEmailIndexIsSparse(t *testing.T) {
	db := NewTestMongoDB(t, "ride_deck_users_index_test")
	ctx := context.Background()
	users := db.Collection(CollectionUsers)

	_, err := users.InsertOne(ctx, bson.M{"phone": "9000000001"})
	require.NoError(t, err)
	_, err = users.InsertOne(ctx, bson.M{"phone": "9000000002"})
	require.NoError(t, err)

	_, err = users.InsertOne(ctx, bson.M{"phone": "9000000001"})
	assert.True(t, mongo.IsDuplicateKeyError(err))
}

func TestMigratorUpIsIdempotent(t *testing.T) {
	db := NewTestMongoDB(t, "ride_deck_migrator_idem_test")
	ctx := context.Background()

	require.NoError(t, NewMigrator(db.Database, logger.Discard()).Up(ctx))
}
