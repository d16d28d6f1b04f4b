package main

import (
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"

	"github.com/wizardlabs/leadforms/internal/config"
	"github.com/wizardlabs/leadforms/internal/database"
	"github.com/wizardlabs/leadforms/internal/handlers"
	"github.com/wizardlabs/leadforms/internal/logger"
	"github.com/wizardlabs/leadforms/internal/mailer"
	"github.com/wizardlabs/leadforms/internal/middleware"
	"github.com/wizardlabs/leadforms/internal/models"
	"github.com/wizardlabs/leadforms/internal/services"
	"github.com/wizardlabs/leadforms/internal/storage"
	"github.com/wizardlabs/leadforms/internal/types"
	"github.com/wizardlabs/leadforms/internal/utils"

	_ "github.com/wizardlabs/leadforms/docs" // Swagger docs
)

// @title LeadForms API
// @version 1.0.0
// @description Multi-tenant lead capture and follow-up tracking service
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/wizardlabs/leadforms

// @host localhost:3000
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name token

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Init(cfg.LogLevel, cfg.Environment); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		logger.L().Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		logger.L().Fatal("failed to run migrations", zap.Error(err))
	}

	// Upload storage and mail
	store, err := storage.NewDisk(cfg.UploadDir, cfg.UploadBaseURL)
	if err != nil {
		logger.L().Fatal("failed to initialize upload storage", zap.Error(err))
	}
	sender := mailer.NewSMTP(cfg)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    services.MaxFileSize + 1024*1024,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.RequestLogger())
	app.Use(compress.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("leadforms")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Uploaded assets
	app.Static(cfg.UploadBaseURL, cfg.UploadDir)

	// Rate limiter for the public and credential endpoints
	throttle := limiter.New(limiter.Config{
		Max:        cfg.RateLimitMax,
		Expiration: time.Duration(cfg.RateLimitWindow) * time.Second,
		LimitReached: func(c *fiber.Ctx) error {
			return utils.RateLimitResponse(c)
		},
	})

	// Create handlers
	authHandler := &handlers.AuthHandler{DB: db, Cfg: cfg, Mailer: sender}
	accountHandler := &handlers.AccountHandler{DB: db, Mailer: sender}
	formHandler := &handlers.FormHandler{DB: db}
	responseHandler := &handlers.ResponseHandler{DB: db, Storage: store, Mailer: sender}
	followUpHandler := &handlers.FollowUpHandler{DB: db}

	authAny := middleware.RequireRole(cfg.JWTSecret, models.RoleSuperAdmin, models.RoleAdmin)
	authSuper := middleware.RequireRole(cfg.JWTSecret, models.RoleSuperAdmin)

	api := app.Group("/api/v1")

	// Health
	api.Get("/health", func(c *fiber.Ctx) error {
		result := services.HealthCheck(cfg, db)
		status := fiber.StatusOK
		if result.Status != "healthy" {
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(result)
	})

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.Post("/login", throttle, authHandler.Login)
	authGroup.Post("/logout", authHandler.Logout)
	authGroup.Get("/me", authAny, authHandler.Me)
	authGroup.Patch("/update-password", authAny, authHandler.UpdatePassword)
	authGroup.Post("/forgot-password", throttle, authHandler.ForgotPassword)
	authGroup.Post("/reset-password", throttle, authHandler.ResetPassword)
	authGroup.Post("/admin", authSuper, authHandler.CreateAdmin)

	// Account routes
	authGroup.Get("/accounts", authSuper, accountHandler.List)
	authGroup.Post("/accounts/create", authSuper, accountHandler.Create)
	authGroup.Get("/accounts/:accountId", authAny, accountHandler.Get)
	authGroup.Delete("/accounts/:accountId", authSuper, accountHandler.Delete)

	// Form builder routes
	formGroup := api.Group("/form")
	formGroup.Get("/", authAny, formHandler.List)
	formGroup.Post("/", authAny, formHandler.Create)
	formGroup.Get("/:formId", authAny, formHandler.Get)
	formGroup.Patch("/:formId", authAny, formHandler.Update)
	formGroup.Delete("/:formId", authAny, formHandler.Delete)

	// Response routes; submission is public and rate-limited
	formGroup.Post("/:formId/response", throttle, responseHandler.Submit)
	formGroup.Get("/:formId/response", authAny, responseHandler.List)
	formGroup.Get("/:formId/response/:responseId", authAny, responseHandler.Get)

	// Follow-up tracker routes
	api.Post("/followup", authAny, followUpHandler.Create)
	api.Get("/followup", authAny, followUpHandler.List)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":    fiber.StatusNotFound,
			"message":   "[404] Resource Not Found",
			"ok":        false,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"url":       c.OriginalURL(),
		})
	})

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		logger.L().Info("gracefully shutting down")
		_ = app.Shutdown()
	}()

	logger.L().Info("starting server", zap.String("port", cfg.Port))
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.L().Fatal("failed to start server", zap.Error(err))
	}

	logger.L().Info("server stopped")
}

// customErrorHandler handles errors globally
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()
	errorType := "unknown"

	if errors.Is(err, types.ErrNotFound) {
		code = fiber.StatusNotFound
		errorType = "not-found"
	}

	var appErr *types.AppError
	if errors.As(err, &appErr) {
		code = appErr.Code
		message = appErr.Message
		errorType = appErr.Type
	} else if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"status":    code,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      errorType,
	})
}
