package mongodb

import (
	"testing"

	"ridedeck/internal/repositories/interfaces"
	"ridedeck/internal/repositories/repotest"
	"ridedeck/pkg/database"
)

func TestUserRepository(t *testing.T) {
	repotest.RunUserRepositoryTests(t, func(t *testing.T) interfaces.UserRepository {
		db := database.NewTestMongoDB(t, "ride_deck_users_test")
		return NewUserRepository(db.Database, nil)
	})
}

func TestRideRepository(t *testing.T) {
	repotest.RunRideRepositoryTests(t, func(t *testing.T) interfaces.RideRepository {
		db := database.NewTestMongoDB(t, "ride_deck_rides_test")
		return NewRideRepository(db.Database, nil)
	})
}
