package routes

import (
	"net/http"
	"time"

	"ridedeck/internal/config"
	handlers "ridedeck/internal/handlers/shared"
	"ridedeck/internal/middleware"
	"ridedeck/internal/services"
	"ridedeck/internal/utils"
	"ridedeck/pkg/logger"
	"ridedeck/pkg/metrics"
	"ridedeck/pkg/websocket"

	"github.com/gin-gonic/gin"
)

const rateLimitWindow = time.Minute

// Dependencies carries everything the HTTP surface needs.
type Dependencies struct {
	Config        *config.Config
	Logger        *logger.Logger
	Metrics       *metrics.Metrics
	AuthService   services.AuthService
	CacheService  services.CacheService
	AuthHandler   *handlers.AuthHandler
	UserHandler   *handlers.UserHandler
	DriverHandler *handlers.DriverHandler
	RideHandler   *handlers.RideHandler
	// WebSocketHandler is nil when push is disabled.
	WebSocketHandler *websocket.Handler
}

// NewRouter builds the gin engine with global middleware and every route.
func NewRouter(deps *Dependencies) *gin.Engine {
	router := gin.New()
	if len(deps.Config.Security.TrustedProxies) > 0 {
		_ = router.SetTrustedProxies(deps.Config.Security.TrustedProxies)
	}

	// Global middleware
	router.Use(middleware.RecoveryMiddleware(deps.Logger))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware(deps.Logger))
	router.Use(middleware.MetricsMiddleware(deps.Metrics))
	router.Use(middleware.CORSMiddleware(deps.Config.Security.CORSAllowedOrigins))

	router.NoRoute(func(c *gin.Context) {
		utils.NotFoundResponse(c, "Route not found")
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": deps.Config.App.Version,
		})
	})
	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	api := router.Group("/api")
	{
		SetupAuthRoutes(api, deps)
		SetupUserRoutes(api, deps)
		SetupDriverRoutes(api, deps)
		SetupRideRoutes(api, deps)
		if deps.WebSocketHandler != nil {
			SetupWebSocketRoutes(api, deps)
		}
	}

	return router
}

func authRequired(deps *Dependencies) gin.HandlerFunc {
	return middleware.AuthRequired(deps.AuthService, deps.Config.Security.RequireAuth, deps.Logger)
}

func rateLimited(deps *Dependencies) gin.HandlerFunc {
	return middleware.RateLimit(deps.CacheService, deps.Config.Security.RateLimitPerMinute, rateLimitWindow, deps.Metrics, deps.Logger)
}

// SetupAuthRoutes sets up the public account routes
func SetupAuthRoutes(r *gin.RouterGroup, deps *Dependencies) {
	auth := r.Group("/auth")
	auth.Use(rateLimited(deps))
	{
		auth.POST("/register", deps.AuthHandler.Register)
		auth.POST("/login", deps.AuthHandler.Login)
	}
}

func SetupUserRoutes(r *gin.RouterGroup, deps *Dependencies) {
	users := r.Group("/users")
	users.Use(authRequired(deps))
	{
		users.GET("/:id", middleware.SelfRequired("id"), deps.UserHandler.GetUser)
		users.PUT("/update/:id", middleware.SelfRequired("id"), deps.UserHandler.UpdateProfile)
	}
}

func SetupDriverRoutes(r *gin.RouterGroup, deps *Dependencies) {
	driver := r.Group("/driver")
	driver.Use(authRequired(deps), middleware.DriverRequired(deps.Config.Security.RequireAuth))
	{
		driver.POST("/subscription", deps.DriverHandler.ActivateSubscription)
		driver.POST("/status", deps.DriverHandler.SetStatus)
	}
}

// SetupRideRoutes sets up the ride lifecycle routes
func SetupRideRoutes(r *gin.RouterGroup, deps *Dependencies) {
	driverOnly := middleware.DriverRequired(deps.Config.Security.RequireAuth)

	rides := r.Group("/rides")
	rides.Use(authRequired(deps))
	{
		rides.POST("/book", rateLimited(deps), deps.RideHandler.BookRide)
		rides.GET("/available", driverOnly, deps.RideHandler.GetAvailableRides)
		rides.GET("/my-ride/:userId", middleware.SelfRequired("userId"), deps.RideHandler.GetActiveRide)
		rides.POST("/accept", driverOnly, deps.RideHandler.AcceptRide)
		rides.POST("/update-status", deps.RideHandler.UpdateStatus)
		rides.GET("/history/:userId", middleware.SelfRequired("userId"), deps.RideHandler.GetHistory)
	}
}

func SetupWebSocketRoutes(r *gin.RouterGroup, deps *Dependencies) {
	r.GET("/ws", authRequired(deps), deps.WebSocketHandler.HandleWebSocket)
}
