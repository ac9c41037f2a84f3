package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ridedeck/internal/config"
	"ridedeck/internal/events"
	handlers "ridedeck/internal/handlers/shared"
	"ridedeck/internal/repositories/memory"
	"ridedeck/internal/services"
	"ridedeck/pkg/logger"
	"ridedeck/pkg/metrics"
	"ridedeck/pkg/payment"
	"ridedeck/pkg/sms"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
	Meta *struct {
		Count int `json:"count"`
	} `json:"meta"`
}

type testAPI struct {
	t      *testing.T
	router *gin.Engine
}

func newTestAPI(t *testing.T, requireAuth bool) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.Discard()
	m := metrics.NewMetrics("test")
	cfg := &config.Config{
		App: &config.AppConfig{Version: "test"},
		Security: &config.SecurityConfig{
			JWTSecret:          "routes-test-secret",
			JWTAccessTokenTTL:  time.Hour,
			RequireAuth:        requireAuth,
			PasswordMinLength:  6,
			RateLimitPerMinute: 100,
			CORSAllowedOrigins: []string{"*"},
		},
		Ride: &config.RideConfig{
			DefaultFare:    50,
			VehicleTariffs: map[string]float64{"bike": 40, "auto": 70, "cab": 120},
			OTPLength:      4,
			DriverLat:      28.9931,
			DriverLng:      77.0151,
		},
	}

	userRepo := memory.NewUserRepository()
	rideRepo := memory.NewRideRepository()
	cache := services.NewNoopCacheService()
	payments := services.NewPaymentService(payment.NewMockProvider(), "INR", m, log)
	notifications := services.NewNotificationService(sms.NewLogProvider(log), "RIDEDK", m, log)
	t.Cleanup(notifications.Wait)

	authService := services.NewAuthService(userRepo, cfg.Security, log)
	rideService := services.NewRideService(services.RideServiceDeps{
		RideRepo:         rideRepo,
		UserRepo:         userRepo,
		Payments:         payments,
		Notifications:    notifications,
		Events:           events.NewLocalBroker(),
		RideConfig:       cfg.Ride,
		ChargeOnComplete: true,
		Metrics:          m,
		Logger:           log,
	})

	router := NewRouter(&Dependencies{
		Config:        cfg,
		Logger:        log,
		Metrics:       m,
		AuthService:   authService,
		CacheService:  cache,
		AuthHandler:   handlers.NewAuthHandler(authService),
		UserHandler:   handlers.NewUserHandler(services.NewUserService(userRepo, log)),
		DriverHandler: handlers.NewDriverHandler(services.NewDriverService(userRepo, payments, cache, cfg.Ride, log)),
		RideHandler:   handlers.NewRideHandler(rideService),
	})

	return &testAPI{t: t, router: router}
}

func (a *testAPI) do(method, path, token string, body interface{}) (int, envelope) {
	a.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

type account struct {
	ID    string `json:"id"`
	Role  string `json:"role"`
	Token string `json:"token"`
}

func (a *testAPI) register(body map[string]interface{}) account {
	a.t.Helper()
	code, env := a.do(http.MethodPost, "/api/auth/register", "", body)
	require.Equal(a.t, http.StatusCreated, code, env.Message)

	var acc account
	require.NoError(a.t, json.Unmarshal(env.Data, &acc))
	require.NotEmpty(a.t, acc.Token)
	return acc
}

func (a *testAPI) rider(phone string) account {
	return a.register(map[string]interface{}{"name": "Asha", "phone": phone})
}

func (a *testAPI) driver(phone string) account {
	return a.register(map[string]interface{}{
		"name":          "Ravi",
		"phone":         phone,
		"role":          "driver",
		"vehicleType":   "bike",
		"vehicleNumber": "dl01ab1234",
	})
}

type rideBody struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	OTP           string `json:"otp"`
	DriverID      string `json:"driverId"`
	Fare          float64 `json:"fare"`
	PaymentStatus string `json:"paymentStatus"`
}

func decodeRide(t *testing.T, env envelope) rideBody {
	t.Helper()
	var ride rideBody
	require.NoError(t, json.Unmarshal(env.Data, &ride))
	return ride
}

func TestHealthAndMetrics(t *testing.T) {
	api := newTestAPI(t, true)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w = httptest.NewRecorder()
	api.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "test_http_requests_total")
}

func TestUnknownRoute(t *testing.T) {
	api := newTestAPI(t, true)

	code, env := api.do(http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "error", env.Status)
}

func TestAuthRoutes(t *testing.T) {
	api := newTestAPI(t, true)

	rider := api.rider("9876500001")
	assert.Equal(t, "rider", rider.Role)

	code, env := api.do(http.MethodPost, "/api/auth/register", "", map[string]interface{}{"name": "Other", "phone": "9876500001"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "User already exists", env.Error.Message)

	code, env = api.do(http.MethodPost, "/api/auth/register", "", map[string]interface{}{"name": "X", "phone": "abc"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Error.Details, "phone")
	assert.Contains(t, env.Error.Details, "name")

	code, env = api.do(http.MethodPost, "/api/auth/login", "", map[string]interface{}{"phone": "9876500001"})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Login successful", env.Message)

	code, env = api.do(http.MethodPost, "/api/auth/login", "", map[string]interface{}{"phone": "9000000000"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "User not found", env.Error.Message)

	api.register(map[string]interface{}{"name": "Secure", "phone": "9876500002", "password": "hunter22"})
	code, _ = api.do(http.MethodPost, "/api/auth/login", "", map[string]interface{}{"phone": "9876500002", "password": "wrong-one"})
	assert.Equal(t, http.StatusUnauthorized, code)
	code, _ = api.do(http.MethodPost, "/api/auth/login", "", map[string]interface{}{"phone": "9876500002", "password": "hunter22"})
	assert.Equal(t, http.StatusOK, code)
}

func TestUserRoutes(t *testing.T) {
	api := newTestAPI(t, true)

	rider := api.rider("9876500010")
	other := api.rider("9876500011")

	code, _ := api.do(http.MethodPut, "/api/users/update/"+rider.ID, "", map[string]interface{}{"name": "Asha K"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = api.do(http.MethodPut, "/api/users/update/"+rider.ID, other.Token, map[string]interface{}{"name": "Asha K"})
	assert.Equal(t, http.StatusForbidden, code)

	code, env := api.do(http.MethodPut, "/api/users/update/"+rider.ID, rider.Token, map[string]interface{}{"name": "Asha K", "email": "asha@example.com"})
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), "asha@example.com")

	code, _ = api.do(http.MethodPut, "/api/users/update/"+rider.ID, rider.Token, map[string]interface{}{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = api.do(http.MethodPut, "/api/users/update/"+rider.ID, rider.Token, map[string]interface{}{"phone": "9876500011"})
	assert.Equal(t, http.StatusConflict, code)

	code, env = api.do(http.MethodPut, "/api/users/update/"+rider.ID, rider.Token, map[string]interface{}{"email": ""})
	require.Equal(t, http.StatusOK, code)
	assert.NotContains(t, string(env.Data), "asha@example.com")

	code, _ = api.do(http.MethodGet, "/api/users/not-an-id", rider.Token, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestDriverRoutes(t *testing.T) {
	api := newTestAPI(t, true)

	driver := api.driver("9876500020")
	rider := api.rider("9876500021")

	code, _ := api.do(http.MethodPost, "/api/driver/status", rider.Token, map[string]interface{}{"userId": rider.ID, "isOnline": true})
	assert.Equal(t, http.StatusForbidden, code)

	code, env := api.do(http.MethodPost, "/api/driver/status", driver.Token, map[string]interface{}{"userId": driver.ID, "isOnline": true})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Driver is now online", env.Message)
	assert.Contains(t, string(env.Data), "28.9931")

	code, _ = api.do(http.MethodPost, "/api/driver/status", driver.Token, map[string]interface{}{"userId": driver.ID})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = api.do(http.MethodPost, "/api/driver/subscription", driver.Token, map[string]interface{}{"userId": driver.ID, "plan": "yearly"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = api.do(http.MethodPost, "/api/driver/subscription", driver.Token, map[string]interface{}{"userId": driver.ID, "plan": "weekly"})
	require.Equal(t, http.StatusOK, code)
	var result struct {
		SubscriptionStatus string `json:"subscriptionStatus"`
		Plan               string `json:"plan"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, "active", result.SubscriptionStatus)
	assert.Equal(t, "weekly", result.Plan)
}

func TestRideLifecycle(t *testing.T) {
	api := newTestAPI(t, true)

	rider := api.rider("9876500030")
	driver := api.driver("9876500031")
	rival := api.driver("9876500032")

	code, env := api.do(http.MethodPost, "/api/rides/book", rider.Token, map[string]interface{}{
		"riderId":     rider.ID,
		"pickup":      "Connaught Place",
		"dropoff":     map[string]interface{}{"address": "India Gate", "lat": 28.6129, "lng": 77.2295},
		"vehicleType": "bike",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	booked := decodeRide(t, env)
	assert.Equal(t, "searching", booked.Status)
	assert.Len(t, booked.OTP, 4)

	code, env = api.do(http.MethodPost, "/api/rides/book", rider.Token, map[string]interface{}{
		"riderId": rider.ID, "pickup": "A", "dropoff": "B", "vehicleType": "bike",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "You already have an active ride.", env.Error.Message)

	code, _ = api.do(http.MethodGet, "/api/rides/available", rider.Token, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, env = api.do(http.MethodGet, "/api/rides/available", driver.Token, nil)
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, env.Meta)
	assert.Equal(t, 1, env.Meta.Count)
	var feed []rideBody
	require.NoError(t, json.Unmarshal(env.Data, &feed))
	require.Len(t, feed, 1)
	assert.Equal(t, booked.ID, feed[0].ID)
	assert.Empty(t, feed[0].OTP)
	assert.Contains(t, string(env.Data), "Asha")

	code, _ = api.do(http.MethodPost, "/api/rides/accept", driver.Token, map[string]interface{}{"rideId": booked.ID, "driverId": rival.ID})
	assert.Equal(t, http.StatusForbidden, code)

	code, env = api.do(http.MethodPost, "/api/rides/accept", driver.Token, map[string]interface{}{"rideId": booked.ID, "driverId": driver.ID})
	require.Equal(t, http.StatusOK, code)
	accepted := decodeRide(t, env)
	assert.Equal(t, "accepted", accepted.Status)
	assert.Equal(t, driver.ID, accepted.DriverID)
	assert.Empty(t, accepted.OTP)

	code, env = api.do(http.MethodPost, "/api/rides/accept", rival.Token, map[string]interface{}{"rideId": booked.ID, "driverId": rival.ID})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Ride already accepted", env.Error.Message)

	code, env = api.do(http.MethodGet, "/api/rides/my-ride/"+rider.ID, rider.Token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, booked.OTP, decodeRide(t, env).OTP)
	assert.Contains(t, string(env.Data), "DL01AB1234")

	code, env = api.do(http.MethodGet, "/api/rides/my-ride/"+driver.ID, driver.Token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, decodeRide(t, env).OTP)

	code, _ = api.do(http.MethodPost, "/api/rides/update-status", rival.Token, map[string]interface{}{"rideId": booked.ID, "status": "cancelled"})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = api.do(http.MethodPost, "/api/rides/update-status", driver.Token, map[string]interface{}{"rideId": booked.ID, "status": "completed"})
	assert.Equal(t, http.StatusBadRequest, code)

	wrongOTP := "0000"
	if booked.OTP == wrongOTP {
		wrongOTP = "1111"
	}
	code, env = api.do(http.MethodPost, "/api/rides/update-status", driver.Token, map[string]interface{}{"rideId": booked.ID, "status": "started", "otp": wrongOTP})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid OTP", env.Error.Message)

	code, env = api.do(http.MethodPost, "/api/rides/update-status", driver.Token, map[string]interface{}{"rideId": booked.ID, "status": "started", "otp": booked.OTP})
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.Equal(t, "started", decodeRide(t, env).Status)

	code, env = api.do(http.MethodPost, "/api/rides/update-status", driver.Token, map[string]interface{}{"rideId": booked.ID, "status": "completed"})
	require.Equal(t, http.StatusOK, code)
	completed := decodeRide(t, env)
	assert.Equal(t, "completed", completed.Status)
	assert.Equal(t, "paid", completed.PaymentStatus)

	code, env = api.do(http.MethodGet, "/api/rides/my-ride/"+rider.ID, rider.Token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "null", string(env.Data))

	code, env = api.do(http.MethodGet, "/api/rides/history/"+driver.ID, driver.Token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, env.Meta.Count)

	code, _ = api.do(http.MethodGet, "/api/rides/history/"+driver.ID, rider.Token, nil)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestRideCancelAndValidation(t *testing.T) {
	api := newTestAPI(t, true)

	rider := api.rider("9876500040")

	code, env := api.do(http.MethodPost, "/api/rides/book", rider.Token, map[string]interface{}{
		"riderId": rider.ID, "pickup": "A", "dropoff": "B", "vehicleType": "boat",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Error.Details, "vehicleType")

	code, env = api.do(http.MethodPost, "/api/rides/book", rider.Token, map[string]interface{}{
		"riderId": rider.ID, "pickup": "A", "dropoff": "B", "vehicleType": "cab",
	})
	require.Equal(t, http.StatusCreated, code)
	ride := decodeRide(t, env)
	assert.Equal(t, float64(120), ride.Fare)

	code, env = api.do(http.MethodPost, "/api/rides/update-status", rider.Token, map[string]interface{}{"rideId": ride.ID, "status": "searching"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Error.Details, "status")

	code, env = api.do(http.MethodPost, "/api/rides/update-status", rider.Token, map[string]interface{}{"rideId": ride.ID, "status": "cancelled"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "cancelled", decodeRide(t, env).Status)

	code, _ = api.do(http.MethodPost, "/api/rides/update-status", rider.Token, map[string]interface{}{"rideId": ride.ID, "status": "cancelled"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = api.do(http.MethodGet, "/api/rides/history/"+rider.ID, rider.Token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, env.Meta.Count)
}

func TestAnonymousAccessWhenAuthOptional(t *testing.T) {
	api := newTestAPI(t, false)

	rider := api.rider("9876500050")
	driver := api.driver("9876500051")

	code, env := api.do(http.MethodPost, "/api/rides/book", "", map[string]interface{}{
		"riderId": rider.ID, "pickup": "A", "dropoff": "B", "vehicleType": "auto",
	})
	require.Equal(t, http.StatusCreated, code)
	ride := decodeRide(t, env)
	assert.Equal(t, float64(70), ride.Fare)

	code, _ = api.do(http.MethodPost, "/api/rides/accept", "", map[string]interface{}{"rideId": ride.ID, "driverId": driver.ID})
	assert.Equal(t, http.StatusOK, code)

	code, env = api.do(http.MethodPost, "/api/rides/accept", "", map[string]interface{}{"rideId": "64b000000000000000000000", "driverId": driver.ID})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Ride not found", env.Error.Message)
}
