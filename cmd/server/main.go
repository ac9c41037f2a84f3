package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ridedeck/internal/config"
	"ridedeck/internal/events"
	handlers "ridedeck/internal/handlers/shared"
	"ridedeck/internal/repositories/interfaces"
	"ridedeck/internal/repositories/memory"
	"ridedeck/internal/repositories/mongodb"
	"ridedeck/internal/services"
	"ridedeck/pkg/cache"
	"ridedeck/pkg/database"
	"ridedeck/pkg/logger"
	"ridedeck/pkg/metrics"
	"ridedeck/pkg/websocket"
	"ridedeck/routes"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const metricsNamespace = "ridedeck"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:   logger.LogLevel(cfg.App.LogLevel),
		Format:  cfg.App.LogFormat,
		AppName: cfg.App.Name,
		Version: cfg.App.Version,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Redis is optional: without it there is no read-through cache, rate
	// limiting or presence, and events stay in-process.
	var redisCache *cache.RedisCache
	if cfg.Redis.Enabled {
		redisCache, err = cache.NewRedisCache(ctx, &cache.RedisConfig{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to connect to Redis")
		}
		defer redisCache.Close()
		appLogger.WithField("addr", cfg.Redis.Addr()).Info("Connected to Redis")
	}

	userRepo, rideRepo, closeStore := openStore(ctx, cfg, redisCache, appLogger)
	defer closeStore()

	appMetrics := metrics.NewMetrics(metricsNamespace)

	cacheService := services.NewNoopCacheService()
	var broker events.Broker = events.NewLocalBroker()
	if redisCache != nil {
		cacheService = services.NewCacheService(redisCache, appLogger, metricsNamespace)
		broker = events.NewRedisBroker(redisCache, cfg.Events.RedisChannel, appLogger)
	}
	if cfg.Events.KafkaEnabled {
		broker = events.NewKafkaMirror(broker, cfg.Events.KafkaBrokers, cfg.Events.KafkaTopic, appLogger)
		appLogger.WithField("topic", cfg.Events.KafkaTopic).Info("Mirroring ride events to Kafka")
	}
	defer broker.Close()

	providers, err := newProviders(ctx, cfg, appLogger)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize providers")
	}

	// Initialize services
	paymentService := services.NewPaymentService(providers.payments, cfg.Payment.Currency, appMetrics, appLogger)
	notificationService := services.NewNotificationService(providers.sms, cfg.SMS.SenderID, appMetrics, appLogger)
	authService := services.NewAuthService(userRepo, cfg.Security, appLogger)
	userService := services.NewUserService(userRepo, appLogger)
	driverService := services.NewDriverService(userRepo, paymentService, cacheService, cfg.Ride, appLogger)
	rideService := services.NewRideService(services.RideServiceDeps{
		RideRepo:         rideRepo,
		UserRepo:         userRepo,
		Payments:         paymentService,
		Notifications:    notificationService,
		Events:           broker,
		Geocoder:         providers.geocoder,
		RideConfig:       cfg.Ride,
		ChargeOnComplete: cfg.Payment.ChargeOnComplete,
		Metrics:          appMetrics,
		Logger:           appLogger,
	})

	var wsHandler *websocket.Handler
	if cfg.WebSocket.Enabled {
		hub := websocket.NewHub(appLogger)
		go hub.Run(ctx)
		broker.Subscribe(events.HubDispatcher(hub))
		appMetrics.ObserveWebSocketClients(metricsNamespace, hub.ClientCount)

		wsHandler = websocket.NewHandler(hub, &websocket.Config{
			ReadBufferSize:    cfg.WebSocket.ReadBufferSize,
			WriteBufferSize:   cfg.WebSocket.WriteBufferSize,
			HandshakeTimeout:  cfg.WebSocket.HandshakeTimeout,
			PingInterval:      cfg.WebSocket.PingInterval,
			PongTimeout:       cfg.WebSocket.PongTimeout,
			MaxMessageSize:    cfg.WebSocket.MaxMessageSize,
			EnableCompression: cfg.WebSocket.EnableCompression,
			AllowedOrigins:    cfg.WebSocket.AllowedOrigins,
		}, func(userID, rideID primitive.ObjectID) bool {
			return rideService.IsParticipant(context.Background(), userID, rideID)
		}, appLogger)
	}

	go func() {
		if err := broker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			appLogger.WithError(err).Error("Event broker stopped")
		}
	}()

	router := routes.NewRouter(&routes.Dependencies{
		Config:           cfg,
		Logger:           appLogger,
		Metrics:          appMetrics,
		AuthService:      authService,
		CacheService:     cacheService,
		AuthHandler:      handlers.NewAuthHandler(authService),
		UserHandler:      handlers.NewUserHandler(userService),
		DriverHandler:    handlers.NewDriverHandler(driverService),
		RideHandler:      handlers.NewRideHandler(rideService),
		WebSocketHandler: wsHandler,
	})

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.WithField("addr", server.Addr).Infof("Starting %s %s", cfg.App.Name, cfg.App.Version)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.WithError(err).Fatal("Server failed")
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("Graceful shutdown failed")
	}
	notificationService.Wait()
}

// openStore connects the configured storage driver. The returned func
// releases it.
func openStore(ctx context.Context, cfg *config.Config, redisCache *cache.RedisCache, log *logger.Logger) (interfaces.UserRepository, interfaces.RideRepository, func()) {
	if cfg.Database.Driver == config.DatabaseDriverMemory {
		log.Warn("Using in-memory storage; data is lost on restart")
		return memory.NewUserRepository(), memory.NewRideRepository(), func() {}
	}

	db, err := database.NewMongoDB(ctx, &database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	log.WithField("database", cfg.Database.Database).Info("Connected to MongoDB")

	if cfg.Database.RunMigrations {
		if err := database.NewMigrator(db.Database, log).Up(ctx); err != nil {
			log.WithError(err).Fatal("Failed to run migrations")
		}
	}

	// A nil *RedisCache must not become a non-nil interface.
	var repoCache interfaces.CacheService
	if redisCache != nil {
		repoCache = redisCache
	}

	closeFn := func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Close(closeCtx); err != nil {
			log.WithError(err).Error("Failed to close MongoDB connection")
		}
	}

	return mongodb.NewUserRepository(db.Database, repoCache), mongodb.NewRideRepository(db.Database, repoCache), closeFn
}
