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
	"github.com/hrdocs/personnel-backend/internal/config"
	"github.com/hrdocs/personnel-backend/internal/database"
	"github.com/hrdocs/personnel-backend/internal/handlers"
	"github.com/hrdocs/personnel-backend/internal/middleware"
	"github.com/hrdocs/personnel-backend/internal/models"
	"github.com/hrdocs/personnel-backend/internal/services"
	"github.com/hrdocs/personnel-backend/pkg/jwt"
	"github.com/sirupsen/logrus"
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

	logger.Info("Starting personnel document backend")
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

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(db.DB.DB, logger); err != nil {
			logger.Fatalf("Failed to run migrations: %v", err)
		}
	}

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	repos := database.NewRepositories(db)
	tx := database.NewTransactor(db)

	renderer, err := services.NewDocumentRenderer(cfg.Storage)
	if err != nil {
		logger.Fatalf("Failed to load document templates: %v", err)
	}
	settings := services.NewDBSettings(repos.Settings, repos.Employees)
	credentialService := services.NewCredentialService(repos.Users, cfg.Storage, cfg.Security)
	auditService := services.NewAuditService(repos.AuditLogs, cfg.Security.EnableAuditLog, logger)
	authService := services.NewAuthService(repos.Users, repos.RefreshTokens, jwtService, logger)
	rateLimitService := services.NewRateLimitService(repos.AuditLogs, cfg.RateLimit)
	directoryService := services.NewDirectoryService(tx, repos, logger)
	documentService := services.NewDocumentService(tx, repos, renderer, credentialService, settings, cfg.Policy, logger)
	internshipService := services.NewInternshipService(tx, repos.Internships, cfg.Policy, logger)
	userService := services.NewUserService(tx, repos, credentialService, logger)
	dashboardService := services.NewDashboardService(repos.Dashboard)
	exportService := services.NewExportService(repos)

	// Initialize and start cron service
	var cronService *services.CronService
	if cfg.Cron.Enabled {
		cronService = services.NewCronService(cfg.Cron, internshipService, auditService, logger)
		if err := cronService.Start(); err != nil {
			logger.Fatalf("Failed to start cron service: %v", err)
		}
		logger.Info("✓ Cron service started - internship sweep enabled")
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, rateLimitService, auditService, logger)
	directoryHandler := handlers.NewDirectoryHandler(directoryService, auditService, logger)
	documentHandler := handlers.NewDocumentHandler(documentService, auditService, logger)
	internshipHandler := handlers.NewInternshipHandler(internshipService, auditService, logger)
	adminHandler := handlers.NewAdminHandler(dashboardService, exportService, userService, auditService, logger)
	selfServiceHandler := handlers.NewSelfServiceHandler(directoryService, documentService, internshipService, logger)

	// Initialize Gin router
	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	if cfg.Security.EnableRequestLog {
		router.Use(requestLogger(logger))
	}

	// CORS configuration
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", healthCheckHandler(db))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Authentication routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)

			protected := auth.Group("")
			protected.Use(middleware.AuthMiddleware(jwtService))
			{
				protected.GET("/me", authHandler.Me)
				protected.POST("/logout", authHandler.Logout)
			}
		}

		// HR and admin routes
		staff := v1.Group("")
		staff.Use(middleware.AuthMiddleware(jwtService), middleware.RequireRole(models.RoleHR, models.RoleAdmin))
		{
			staff.GET("/departments", directoryHandler.ListDepartments)
			staff.POST("/departments", directoryHandler.CreateDepartment)
			staff.PUT("/departments/:id", directoryHandler.RenameDepartment)
			staff.DELETE("/departments/:id", directoryHandler.DeleteDepartment)
			staff.GET("/departments/:id/positions", directoryHandler.ListDepartmentPositions)
			staff.POST("/departments/:id/positions/:positionId", directoryHandler.LinkPosition)
			staff.DELETE("/departments/:id/positions/:positionId", directoryHandler.UnlinkPosition)

			staff.GET("/positions", directoryHandler.ListPositions)
			staff.POST("/positions", directoryHandler.CreatePosition)
			staff.PUT("/positions/:id", directoryHandler.RenamePosition)
			staff.DELETE("/positions/:id", directoryHandler.DeletePosition)

			staff.GET("/employees", directoryHandler.ListEmployees)
			staff.GET("/employees/:id", directoryHandler.GetEmployee)
			staff.PUT("/employees/:id", directoryHandler.UpdateEmployee)
			staff.DELETE("/employees/:id", directoryHandler.DeleteEmployee)

			documents := staff.Group("/documents")
			{
				documents.GET("", documentHandler.List)
				documents.GET("/next-number", documentHandler.NextNumber)
				documents.POST("/hire", documentHandler.CreateHire)
				documents.POST("/dismissal", documentHandler.CreateDismissal)
				documents.POST("/vacation", documentHandler.CreateVacation)
				documents.POST("/training", documentHandler.CreateTraining)
				documents.POST("/internship-referral", documentHandler.CreateInternshipReferral)
				documents.GET("/:id", documentHandler.Get)
				documents.GET("/:id/preview", documentHandler.Preview)
				documents.GET("/:id/download", documentHandler.Download)
				documents.POST("/:id/send", documentHandler.Send)
				documents.POST("/:id/archive", documentHandler.Archive)
				documents.POST("/:id/sign", documentHandler.Sign)
			}
			staff.GET("/vacations/work-year", documentHandler.WorkYear)

			internships := staff.Group("/internships")
			{
				internships.GET("", internshipHandler.List)
				internships.GET("/counters", internshipHandler.Counters)
				internships.POST("/sweep", internshipHandler.Sweep)
				internships.GET("/:id", internshipHandler.Get)
				internships.POST("/:id/extend", internshipHandler.Extend)
				internships.POST("/:id/complete", internshipHandler.Complete)
				internships.POST("/:id/fail", internshipHandler.Fail)
			}

			staff.GET("/dashboard", adminHandler.Dashboard)
			staff.GET("/exports/employees.xlsx", adminHandler.ExportEmployees)
			staff.GET("/exports/documents.xlsx", adminHandler.ExportDocuments)
		}

		// Admin-only routes
		admin := v1.Group("")
		admin.Use(middleware.AuthMiddleware(jwtService), middleware.RequireRole(models.RoleAdmin))
		{
			admin.GET("/users", adminHandler.ListUsers)
			admin.POST("/users", adminHandler.CreateUser)
			admin.PUT("/users/:id/active", adminHandler.SetActive)
			admin.POST("/users/:id/reset-password", adminHandler.ResetPassword)
			admin.GET("/settings", adminHandler.ListSettings)
			admin.PUT("/settings/:key", adminHandler.UpdateSetting)
			admin.GET("/audit-logs", adminHandler.AuditLogs)
		}

		// Employee self-service routes
		me := v1.Group("/me")
		me.Use(middleware.AuthMiddleware(jwtService), middleware.RequireEmployeeLink())
		{
			me.GET("/profile", selfServiceHandler.Profile)
			me.GET("/documents", selfServiceHandler.Documents)
			me.GET("/documents/:id", documentHandler.Get)
			me.GET("/documents/:id/download", documentHandler.Download)
			me.POST("/documents/:id/sign", documentHandler.Sign)
			me.GET("/internship", selfServiceHandler.Internship)
			me.GET("/notes", selfServiceHandler.Notes)
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

	if cronService != nil {
		logger.Info("Stopping cron service...")
		cronService.Stop()
	}

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

		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": time.Since(start).Milliseconds(),
			"user_agent": c.Request.UserAgent(),
			"has_auth":   c.GetHeader("Authorization") != "",
		}
		if requestID, exists := c.Get("request_id"); exists {
			fields["request_id"] = requestID
		}
		if userID, exists := c.Get("user_id"); exists {
			fields["user_id"] = userID
		}
		if role, exists := c.Get("role"); exists {
			fields["role"] = role
		}

		entry := logger.WithFields(fields)

		if len(c.Errors) > 0 {
			for i, err := range c.Errors {
				entry = entry.WithField(fmt.Sprintf("error_%d", i), err.Error())
			}
			entry.Error("Request failed with errors")
			return
		}

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

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
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
