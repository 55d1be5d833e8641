package main

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"workbridge/internal/config"
	"workbridge/internal/database"
	"workbridge/internal/engine"
	"workbridge/internal/handlers"
	"workbridge/internal/routes"
	"workbridge/internal/services"
	"workbridge/internal/store"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config:", err)
	}

	zl, err := zap.NewProduction()
	if err != nil {
		log.Fatal("failed to init logger:", err)
	}
	defer zl.Sync()

	// Connect to database
	if err := database.Connect(cfg.DB); err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	// Run migrations
	if err := database.Migrate(); err != nil {
		zl.Fatal("failed to migrate database", zap.Error(err))
	}
	zl.Info("database connected and migrated")

	st := store.NewGormStore(database.DB)

	// Optional services degrade gracefully when not configured.
	var notifier engine.Notifier
	if cfg.AMQP.URL != "" {
		pub, err := services.NewEventPublisher(cfg.AMQP.URL)
		if err != nil {
			zl.Warn("event publisher disabled", zap.Error(err))
		} else {
			defer pub.Close()
			notifier = pub
		}
	}

	var deduper engine.Deduper
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		deduper = services.NewDeduper(rdb, 24*time.Hour)
	}

	var uploads *services.UploadService
	if cfg.Cloudinary.CloudName != "" {
		uploads, err = services.NewUploadService(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret)
		if err != nil {
			zl.Fatal("failed to init upload service", zap.Error(err))
		}
	}

	gateway := services.NewPaystackGateway(cfg.Gateway.SecretKey, cfg.Gateway.BaseURL)

	eng := engine.New(st, gateway, notifier, deduper, zl, engine.Options{
		MinOrderMinor:      cfg.Gateway.MinOrderMinor,
		ReopenAfterDispute: cfg.Engine.ReopenAfterDispute,
	})

	h := handlers.New(eng, st, uploads, gateway, zl)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:   "WorkBridge API v1.0",
		BodyLimit: 10 * 1024 * 1024,
	})

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	// Setup application routes
	routes.SetupRoutes(app)
	routes.SetupProjectRoutes(app, h, cfg.JWT.Secret)
	routes.SetupBidRoutes(app, h, cfg.JWT.Secret)
	routes.SetupContractRoutes(app, h, cfg.JWT.Secret)
	routes.SetupPaymentRoutes(app, h, cfg.JWT.Secret)
	routes.SetupTicketRoutes(app, h, cfg.JWT.Secret)
	routes.SetupAdminRoutes(app, h, cfg.JWT.Secret)

	zl.Info("server starting", zap.String("port", cfg.Server.Port))
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}
