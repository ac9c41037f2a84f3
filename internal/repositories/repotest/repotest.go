// Package repotest holds behaviour tests shared by every repository
// implementation.
package repotest

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ridedeck/internal/models"
	"ridedeck/internal/repositories/interfaces"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRepoFactory func(t *testing.T) interfaces.UserRepository
type RideRepoFactory func(t *testing.T) interfaces.RideRepository

func RunUserRepositoryTests(t *testing.T, newRepo UserRepoFactory) {
	t.Run("CreateAndLookup", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		user := &models.User{Name: "Asha", Phone: "9000000001"}
		require.NoError(t, repo.Create(ctx, user))
		require.False(t, user.ID.IsZero())
		assert.Equal(t, models.UserRoleRider, user.Role)
		assert.Equal(t, models.SubscriptionStatusNone, user.SubscriptionStatus)

		byID, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "Asha", byID.Name)

		byPhone, err := repo.GetByPhone(ctx, "9000000001")
		require.NoError(t, err)
		assert.Equal(t, user.ID, byPhone.ID)

		_, err = repo.GetByPhone(ctx, "9999999999")
		assert.ErrorIs(t, err, interfaces.ErrNotFound)
		_, err = repo.GetByID(ctx, primitive.NewObjectID())
		assert.ErrorIs(t, err, interfaces.ErrNotFound)
	})

	t.Run("PasswordHashIsStored", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		user := &models.User{Name: "Ravi", Phone: "9000000011", Password: "hash"}
		require.NoError(t, repo.Create(ctx, user))

		got, err := repo.GetByPhone(ctx, "9000000011")
		require.NoError(t, err)
		assert.Equal(t, "hash", got.Password)
	})

	t.Run("UniquePhoneAndEmail", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		require.NoError(t, repo.Create(ctx, &models.User{Name: "A", Phone: "9000000002", Email: "a@example.com"}))
		require.NoError(t, repo.Create(ctx, &models.User{Name: "B", Phone: "9000000003"}))
		require.NoError(t, repo.Create(ctx, &models.User{Name: "C", Phone: "9000000004"}))

		err := repo.Create(ctx, &models.User{Name: "D", Phone: "9000000002"})
		assert.ErrorIs(t, err, interfaces.ErrDuplicateKey)

		err = repo.Create(ctx, &models.User{Name: "E", Phone: "9000000005", Email: "a@example.com"})
		assert.ErrorIs(t, err, interfaces.ErrDuplicateKey)
	})

	t.Run("UpdateProfile", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		a := &models.User{Name: "A", Phone: "9000000006", Email: "a@example.com"}
		b := &models.User{Name: "B", Phone: "9000000007"}
		require.NoError(t, repo.Create(ctx, a))
		require.NoError(t, repo.Create(ctx, b))

		name := "Asha K"
		updated, err := repo.UpdateProfile(ctx, a.ID, &interfaces.ProfileUpdate{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "Asha K", updated.Name)
		assert.Equal(t, "a@example.com", updated.Email)

		empty := ""
		updated, err = repo.UpdateProfile(ctx, a.ID, &interfaces.ProfileUpdate{Email: &empty})
		require.NoError(t, err)
		assert.Empty(t, updated.Email)

		taken := "9000000007"
		_, err = repo.UpdateProfile(ctx, a.ID, &interfaces.ProfileUpdate{Phone: &taken})
		assert.ErrorIs(t, err, interfaces.ErrDuplicateKey)

		_, err = repo.UpdateProfile(ctx, primitive.NewObjectID(), &interfaces.ProfileUpdate{Name: &name})
		assert.ErrorIs(t, err, interfaces.ErrNotFound)
	})

	t.Run("DriverState", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		driver := &models.User{Name: "D", Phone: "9000000008", Role: models.UserRoleDriver, VehicleType: models.VehicleTypeAuto}
		require.NoError(t, repo.Create(ctx, driver))

		expiry := time.Now().Add(7 * 24 * time.Hour).Truncate(time.Millisecond)
		updated, err := repo.ActivateSubscription(ctx, driver.ID, models.SubscriptionPlanWeekly, expiry)
		require.NoError(t, err)
		assert.Equal(t, models.SubscriptionStatusActive, updated.SubscriptionStatus)
		assert.Equal(t, models.SubscriptionPlanWeekly, updated.SubscriptionPlan)
		require.NotNil(t, updated.SubscriptionExpiry)
		assert.WithinDuration(t, expiry, *updated.SubscriptionExpiry, time.Millisecond)

		updated, err = repo.SetOnlineStatus(ctx, driver.ID, true, &models.Coordinates{Lat: 28.9931, Lng: 77.0151})
		require.NoError(t, err)
		assert.True(t, updated.IsOnline)
		require.NotNil(t, updated.CurrentLocation)
		assert.Equal(t, 28.9931, updated.CurrentLocation.Lat)

		updated, err = repo.SetOnlineStatus(ctx, driver.ID, false, nil)
		require.NoError(t, err)
		assert.False(t, updated.IsOnline)
		assert.NotNil(t, updated.CurrentLocation)

		_, err = repo.SetOnlineStatus(ctx, primitive.NewObjectID(), true, nil)
		assert.ErrorIs(t, err, interfaces.ErrNotFound)
	})

	t.Run("GetByIDs", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		a := &models.User{Name: "A", Phone: "9000000009"}
		b := &models.User{Name: "B", Phone: "9000000010"}
		require.NoError(t, repo.Create(ctx, a))
		require.NoError(t, repo.Create(ctx, b))

		users, err := repo.GetByIDs(ctx, []primitive.ObjectID{a.ID, b.ID, primitive.NewObjectID()})
		require.NoError(t, err)
		assert.Len(t, users, 2)
		assert.Equal(t, "B", users[b.ID].Name)

		users, err = repo.GetByIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, users)
	})
}

func newRide(riderID primitive.ObjectID) *models.Ride {
	return &models.Ride{
		RiderID:     riderID,
		Pickup:      models.Place{Address: "Sector 14"},
		Dropoff:     models.Place{Address: "Murthal"},
		VehicleType: models.VehicleTypeBike,
		Fare:        40,
		OTP:         "4321",
	}
}

func accept(driverID primitive.ObjectID) *models.RideTransition {
	return &models.RideTransition{
		From:     []models.RideStatus{models.RideStatusSearching},
		To:       models.RideStatusAccepted,
		DriverID: &driverID,
	}
}

func RunRideRepositoryTests(t *testing.T, newRepo RideRepoFactory) {
	t.Run("CreateAndGet", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		ride := newRide(primitive.NewObjectID())
		require.NoError(t, repo.Create(ctx, ride))
		assert.Equal(t, models.RideStatusSearching, ride.Status)
		assert.True(t, ride.Active)

		got, err := repo.GetByID(ctx, ride.ID)
		require.NoError(t, err)
		assert.Equal(t, "4321", got.OTP)
		assert.Equal(t, "Murthal", got.Dropoff.Address)
		assert.Nil(t, got.DriverID)

		_, err = repo.GetByID(ctx, primitive.NewObjectID())
		assert.ErrorIs(t, err, interfaces.ErrNotFound)
	})

	t.Run("OneActiveRidePerRider", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		riderID := primitive.NewObjectID()

		first := newRide(riderID)
		require.NoError(t, repo.Create(ctx, first))

		err := repo.Create(ctx, newRide(riderID))
		assert.ErrorIs(t, err, interfaces.ErrDuplicateKey)

		// Another rider is unaffected.
		require.NoError(t, repo.Create(ctx, newRide(primitive.NewObjectID())))

		_, err = repo.Transition(ctx, first.ID, &models.RideTransition{
			From: models.ActiveRideStatuses, To: models.RideStatusCancelled, ClearDriver: true,
		})
		require.NoError(t, err)

		// Once the first ride is terminal the rider may book again.
		require.NoError(t, repo.Create(ctx, newRide(riderID)))
	})

	t.Run("ConcurrentBookingsYieldOneRide", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		riderID := primitive.NewObjectID()

		var wg sync.WaitGroup
		var created int32
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if repo.Create(ctx, newRide(riderID)) == nil {
					atomic.AddInt32(&created, 1)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), created)
	})

	t.Run("TransitionCompareAndSwap", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		ride := newRide(primitive.NewObjectID())
		require.NoError(t, repo.Create(ctx, ride))

		driverID := primitive.NewObjectID()
		accepted, err := repo.Transition(ctx, ride.ID, accept(driverID))
		require.NoError(t, err)
		assert.Equal(t, models.RideStatusAccepted, accepted.Status)
		require.NotNil(t, accepted.DriverID)
		assert.Equal(t, driverID, *accepted.DriverID)
		assert.NotNil(t, accepted.AcceptedAt)

		_, err = repo.Transition(ctx, ride.ID, accept(primitive.NewObjectID()))
		assert.ErrorIs(t, err, interfaces.ErrConflict)

		_, err = repo.Transition(ctx, primitive.NewObjectID(), accept(driverID))
		assert.ErrorIs(t, err, interfaces.ErrNotFound)

		start := &models.RideTransition{
			From: []models.RideStatus{models.RideStatusAccepted}, To: models.RideStatusStarted, RequireOTP: "0000",
		}
		_, err = repo.Transition(ctx, ride.ID, start)
		assert.ErrorIs(t, err, interfaces.ErrConflict)

		current, err := repo.GetByID(ctx, ride.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RideStatusAccepted, current.Status)

		start.RequireOTP = "4321"
		started, err := repo.Transition(ctx, ride.ID, start)
		require.NoError(t, err)
		assert.Equal(t, models.RideStatusStarted, started.Status)

		completed, err := repo.Transition(ctx, ride.ID, &models.RideTransition{
			From: []models.RideStatus{models.RideStatusStarted}, To: models.RideStatusCompleted,
		})
		require.NoError(t, err)
		assert.Equal(t, models.RideStatusCompleted, completed.Status)
		assert.NotNil(t, completed.CompletedAt)

		_, err = repo.FindActiveByRider(ctx, ride.RiderID)
		assert.ErrorIs(t, err, interfaces.ErrNotFound)
	})

	t.Run("ConcurrentAcceptsHaveOneWinner", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		ride := newRide(primitive.NewObjectID())
		require.NoError(t, repo.Create(ctx, ride))

		var wg sync.WaitGroup
		var winners, conflicts int32
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.Transition(ctx, ride.ID, accept(primitive.NewObjectID()))
				switch {
				case err == nil:
					atomic.AddInt32(&winners, 1)
				case assert.ErrorIs(t, err, interfaces.ErrConflict):
					atomic.AddInt32(&conflicts, 1)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), winners)
		assert.Equal(t, int32(7), conflicts)
	})

	t.Run("ActiveLookups", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		riderID, driverID := primitive.NewObjectID(), primitive.NewObjectID()

		ride := newRide(riderID)
		require.NoError(t, repo.Create(ctx, ride))

		got, err := repo.FindActiveByRider(ctx, riderID)
		require.NoError(t, err)
		assert.Equal(t, ride.ID, got.ID)

		_, err = repo.FindActiveByDriver(ctx, driverID)
		assert.ErrorIs(t, err, interfaces.ErrNotFound)

		_, err = repo.Transition(ctx, ride.ID, accept(driverID))
		require.NoError(t, err)

		got, err = repo.FindActiveByDriver(ctx, driverID)
		require.NoError(t, err)
		assert.Equal(t, ride.ID, got.ID)
	})

	t.Run("ListByStatus", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		first := newRide(primitive.NewObjectID())
		require.NoError(t, repo.Create(ctx, first))
		time.Sleep(2 * time.Millisecond)
		second := newRide(primitive.NewObjectID())
		require.NoError(t, repo.Create(ctx, second))
		third := newRide(primitive.NewObjectID())
		require.NoError(t, repo.Create(ctx, third))
		_, err := repo.Transition(ctx, third.ID, accept(primitive.NewObjectID()))
		require.NoError(t, err)

		searching, err := repo.ListByStatus(ctx, models.RideStatusSearching)
		require.NoError(t, err)
		require.Len(t, searching, 2)
		assert.Equal(t, first.ID, searching[0].ID)
		assert.Equal(t, second.ID, searching[1].ID)
	})

	t.Run("CancelActiveByRiderCascade", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		riderID := primitive.NewObjectID()

		ride := newRide(riderID)
		require.NoError(t, repo.Create(ctx, ride))

		count, err := repo.CancelActiveByRider(ctx, riderID, ride.ID)
		require.NoError(t, err)
		assert.Zero(t, count)

		count, err = repo.CancelActiveByRider(ctx, riderID, primitive.NewObjectID())
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		got, err := repo.GetByID(ctx, ride.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RideStatusCancelled, got.Status)
		assert.Nil(t, got.DriverID)

		_, err = repo.FindActiveByRider(ctx, riderID)
		assert.ErrorIs(t, err, interfaces.ErrNotFound)
	})

	t.Run("HistoryNewestFirst", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		userID, driverID := primitive.NewObjectID(), primitive.NewObjectID()

		finish := func(ride *models.Ride, driver primitive.ObjectID) {
			_, err := repo.Transition(ctx, ride.ID, accept(driver))
			require.NoError(t, err)
			_, err = repo.Transition(ctx, ride.ID, &models.RideTransition{
				From: []models.RideStatus{models.RideStatusAccepted}, To: models.RideStatusStarted, RequireOTP: ride.OTP,
			})
			require.NoError(t, err)
			_, err = repo.Transition(ctx, ride.ID, &models.RideTransition{
				From: []models.RideStatus{models.RideStatusStarted}, To: models.RideStatusCompleted,
			})
			require.NoError(t, err)
		}

		asRider := newRide(userID)
		require.NoError(t, repo.Create(ctx, asRider))
		finish(asRider, driverID)
		time.Sleep(2 * time.Millisecond)

		// userID drives someone else.
		asDriver := newRide(primitive.NewObjectID())
		require.NoError(t, repo.Create(ctx, asDriver))
		finish(asDriver, userID)
		time.Sleep(2 * time.Millisecond)

		cancelled := newRide(userID)
		require.NoError(t, repo.Create(ctx, cancelled))
		_, err := repo.Transition(ctx, cancelled.ID, &models.RideTransition{
			From: models.ActiveRideStatuses, To: models.RideStatusCancelled, ClearDriver: true,
		})
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)

		// Still active, never part of history.
		require.NoError(t, repo.Create(ctx, newRide(userID)))

		history, err := repo.ListHistory(ctx, userID)
		require.NoError(t, err)
		require.Len(t, history, 3)
		assert.Equal(t, cancelled.ID, history[0].ID)
		assert.Equal(t, asDriver.ID, history[1].ID)
		assert.Equal(t, asRider.ID, history[2].ID)

		driverHistory, err := repo.ListHistory(ctx, driverID)
		require.NoError(t, err)
		require.Len(t, driverHistory, 1)
		assert.Equal(t, asRider.ID, driverHistory[0].ID)
	})

	t.Run("SetPayment", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		ride := newRide(primitive.NewObjectID())
		require.NoError(t, repo.Create(ctx, ride))

		got, err := repo.SetPayment(ctx, ride.ID, models.PaymentStatusPaid, "pay_123")
		require.NoError(t, err)
		assert.Equal(t, models.PaymentStatusPaid, got.PaymentStatus)
		assert.Equal(t, "pay_123", got.PaymentReference)

		_, err = repo.SetPayment(ctx, primitive.NewObjectID(), models.PaymentStatusPaid, "")
		assert.ErrorIs(t, err, interfaces.ErrNotFound)
	})
}
