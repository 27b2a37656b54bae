package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gorm.io/gorm"

	"storerate/internal/config"
	"storerate/internal/database"
	"storerate/internal/handlers"
	"storerate/internal/metrics"
	"storerate/internal/middleware"
	"storerate/internal/repositories"
	"storerate/internal/services"
	"storerate/pkg/rabbitmq"
)

const healthTimeout = 2 * time.Second

func main() {
	// --- Configuration ---
	cfg, err := config.Load(viper.New())
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	configureLogging(cfg)

	app, cleanup, err := NewApp(cfg)
	if err != nil {
		log.Fatalf("Failed to create app: %v", err)
	}
	defer cleanup()

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", cfg.AppPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}

// configureLogging applies LOG_LEVEL and LOG_FORMAT to the standard logrus logger.
func configureLogging(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("level", cfg.LogLevel).Warn("unknown log level, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if strings.EqualFold(cfg.LogFormat, "json") {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

// NewApp wires the database, repositories, services and handlers into a
// Fiber app. The returned cleanup releases the database pool, the RabbitMQ
// connection and background goroutines.
func NewApp(cfg *config.Config) (*fiber.App, func(), error) {
	// --- Database ---
	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	if cfg.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			_ = database.Close(db)
			return nil, nil, err
		}
	}

	// --- Initialize RabbitMQ Client ---
	// An empty RABBITMQ_URL disables rating events.
	var (
		mqClient  *rabbitmq.Client
		publisher services.Publisher
	)
	if cfg.RabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			_ = database.Close(db)
			return nil, nil, err
		}
		publisher = mqClient
		if err := mqClient.ConsumeRatingEvents(rabbitmq.HandleRatingMessage); err != nil {
			log.WithError(err).Error("failed to start rating event consumer")
		}
	} else {
		log.Info("RABBITMQ_URL is empty, rating events are disabled")
	}

	// --- Initialize Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	storeRepo := repositories.NewGORMStoreRepository(db)
	ratingRepo := repositories.NewGORMRatingRepository(db)
	dashRepo := repositories.NewGORMDashboardRepository(db)

	// --- Initialize Services ---
	validate := services.NewValidator()
	authService := services.NewAuthService(userRepo, validate, cfg.JWTSecret, cfg.JWTTTL)
	userService := services.NewUserService(userRepo, validate)
	storeService := services.NewStoreService(storeRepo, userRepo, validate)
	ratingService := services.NewRatingService(ratingRepo, storeRepo, userRepo, validate, publisher)
	dashboardService := services.NewDashboardService(dashRepo, storeRepo, userRepo)
	adminService := services.NewAdminService(database.NewSchema(db), userRepo, storeRepo, cfg.InitDBToken)

	if cfg.SeedDemo {
		summary, err := adminService.SeedDemo(context.Background())
		if err != nil {
			log.WithError(err).Error("failed to seed demo data")
		} else {
			log.WithFields(log.Fields{"users": summary.Users, "stores": summary.Stores}).Info("demo data seeded")
		}
	}
	if cfg.InitDBToken == "" {
		log.Warn("INIT_DB_TOKEN is empty, POST /api/init-db is unprotected")
	}

	loginLimiter := middleware.NewRateLimiter(cfg.LoginRatePerSecond, cfg.LoginRateBurst)
	stopCleanup := make(chan struct{})
	loginLimiter.StartCleanup(time.Minute, stopCleanup)

	// --- Initialize Fiber App ---
	app := fiber.New(fiber.Config{AppName: "StoreRate"})

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(metrics.Middleware())

	app.Get("/health", healthHandler(db, mqClient != nil))
	app.Get("/metrics", metrics.Handler())

	// --- API Routes ---
	api := app.Group("/api")
	handlers.NewAuthHandler(authService, loginLimiter.Handler()).RegisterRoutes(api)
	handlers.NewUserHandler(userService, authService).RegisterRoutes(api)
	handlers.NewStoreHandler(storeService, authService).RegisterRoutes(api)
	handlers.NewRatingHandler(ratingService, authService).RegisterRoutes(api)
	handlers.NewDashboardHandler(dashboardService, authService).RegisterRoutes(api)
	handlers.NewAdminHandler(adminService).RegisterRoutes(api)

	cleanup := func() {
		close(stopCleanup)
		if mqClient != nil {
			if err := mqClient.Close(); err != nil {
				log.WithError(err).Error("error closing RabbitMQ client")
			}
		}
		if err := database.Close(db); err != nil {
			log.WithError(err).Error("error closing database")
		}
	}
	return app, cleanup, nil
}

func healthHandler(db *gorm.DB, eventsEnabled bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
		defer cancel()

		events := "disabled"
		if eventsEnabled {
			events = "enabled"
		}

		if err := database.Ping(ctx, db); err != nil {
			log.WithError(err).Warn("health check failed")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status":   "unhealthy",
				"database": "unreachable",
				"time":     time.Now().Format(time.RFC3339),
			})
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":   "healthy",
			"database": "connected",
			"events":   events,
			"time":     time.Now().Format(time.RFC3339),
		})
	}
}
