package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/smartvisit/visitor-backend/internal/config"
	"github.com/smartvisit/visitor-backend/internal/database"
	"github.com/smartvisit/visitor-backend/internal/handlers"
	"github.com/smartvisit/visitor-backend/internal/middleware"
	"github.com/smartvisit/visitor-backend/internal/models"
	"github.com/smartvisit/visitor-backend/internal/services"
	"github.com/smartvisit/visitor-backend/pkg/facegate"
	"github.com/smartvisit/visitor-backend/pkg/jwt"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting SmartVisit Visitor Management Backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	// Initialize face service gateway
	var gateway facegate.Gateway
	if cfg.FaceGate.Mode == "http" {
		logger.Infof("Face service gateway enabled at %s", cfg.FaceGate.BaseURL)
		gateway = facegate.NewHTTPGateway(facegate.Config{
			BaseURL: cfg.FaceGate.BaseURL,
			Timeout: cfg.FaceGate.Timeout,
		})
	} else {
		logger.Info("Face service gateway disabled (enrollments will be logged only)")
		gateway = facegate.NewDisabledGateway(logger)
	}

	// Initialize repositories
	visitorRepository := database.NewVisitorRepository(db)
	notificationRepository := database.NewNotificationRepository(db)
	userRepository := database.NewUserRepository(db)

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	auditService := services.NewAuditService(db)
	notificationService := services.NewNotificationService(notificationRepository)
	visitorService := services.NewVisitorService(visitorRepository, notificationService, gateway, logger)
	authService := services.NewAuthService(userRepository, cfg.Security.BcryptCost)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, auditService, jwtService)
	visitorHandler := handlers.NewVisitorHandler(visitorService, auditService, gateway)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	// Initialize Gin router
	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	// CORS configuration
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", healthCheckHandler(db))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)

			protected := auth.Group("")
			protected.Use(middleware.AuthMiddleware(jwtService))
			{
				protected.GET("/employees", authHandler.GetEmployees)
				protected.POST("/register",
					middleware.RequireRole(models.RoleAdmin),
					authHandler.Register)
			}
		}

		// Visitor workflow routes (all protected)
		visitors := v1.Group("/visitors")
		visitors.Use(middleware.AuthMiddleware(jwtService))
		{
			visitors.POST("/register",
				middleware.RequireRole(models.RoleAdmin, models.RoleSecurity),
				visitorHandler.Register)
			visitors.GET("", visitorHandler.GetAll)
			visitors.GET("/stats", visitorHandler.GetDashboardStats)
			visitors.GET("/host/:email", visitorHandler.GetByHost)
			visitors.GET("/alerts",
				middleware.RequireRole(models.RoleAdmin, models.RoleSecurity),
				visitorHandler.GetAlerts)
			visitors.GET("/alerts/geofence",
				middleware.RequireRole(models.RoleAdmin, models.RoleSecurity),
				visitorHandler.GetGeofenceAlerts)
			visitors.GET("/:id", visitorHandler.GetByID)
			visitors.PATCH("/:id/status", visitorHandler.UpdateStatus)
			visitors.PATCH("/:id/checkin",
				middleware.RequireRole(models.RoleSecurity),
				visitorHandler.CheckIn)
			visitors.PATCH("/:id/checkout",
				middleware.RequireRole(models.RoleSecurity),
				visitorHandler.CheckOut)
		}

		// Notification inbox routes (all protected)
		notifications := v1.Group("/notifications")
		notifications.Use(middleware.AuthMiddleware(jwtService))
		{
			notifications.GET("", notificationHandler.GetForUser)
			notifications.GET("/unread-count", notificationHandler.GetUnreadCount)
			notifications.PATCH("/mark-all-read", notificationHandler.MarkAllAsRead)
			notifications.PATCH("/:id/read", notificationHandler.MarkAsRead)
			notifications.DELETE("/:id", notificationHandler.Delete)
			notifications.POST("",
				middleware.RequireRole(models.RoleAdmin),
				notificationHandler.Create)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": latency.Milliseconds(),
			"user_agent": c.Request.UserAgent(),
		}

		entry := logger.WithFields(fields)

		if len(c.Errors) > 0 {
			for i, err := range c.Errors {
				entry = entry.WithField(fmt.Sprintf("error_%d", i), err.Error())
			}
			entry.Error("Request failed with errors")
		} else {
			status := c.Writer.Status()
			if status >= 500 {
				entry.Error("Request completed with server error")
			} else if status >= 400 {
				entry.Warn("Request completed with client error")
			} else {
				entry.Info("Request completed successfully")
			}
		}
	}
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
