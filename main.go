package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"userachievements/config"
	"userachievements/database"
	"userachievements/handlers"
	"userachievements/locale"
	"userachievements/logger"
	"userachievements/middleware"
	"userachievements/repository"
	"userachievements/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: invalid configuration: %v", err)
	}

	zlog, err := logger.New(cfg.Logging)
	if err != nil {
		log.Fatalf("FATAL: cannot build logger: %v", err)
	}

	code := 0
	if err := run(cfg, zlog); err != nil {
		zlog.Error("server stopped with error", zap.Error(err))
		code = 1
	}
	_ = zlog.Sync()
	os.Exit(code)
}

func run(cfg *config.Config, zlog *zap.Logger) error {
	db, err := database.Open(cfg.Database, zlog)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			zlog.Warn("closing database", zap.Error(err))
		}
	}()

	if err := database.RunMigrations(db, zlog); err != nil {
		return err
	}

	translator, err := locale.New(cfg.Translator, zlog)
	if err != nil {
		return err
	}

	repo := repository.New(db, cfg.Database.QueryTimeout)
	h := handlers.New(
		services.NewAchievementService(repo, translator, cfg.Translator.SourceLanguage, time.Now, zlog),
		services.NewAnalyticsService(repo, cfg.Location, time.Now, zlog),
		repo,
		zlog,
	)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(zlog, cfg.IsProduction()),
		BodyLimit:    cfg.Server.BodyLimit,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	// Global middleware
	app.Use(middleware.Recover(zlog))
	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger(zlog))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.CORSOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, X-Request-ID",
	}))

	h.Register(app)

	errCh := make(chan error, 1)
	go func() {
		zlog.Info("http server starting",
			zap.String("port", cfg.Server.Port),
			zap.String("environment", cfg.Server.Environment),
			zap.String("db_driver", cfg.Database.Driver),
			zap.String("translator", cfg.Translator.Backend),
			zap.String("timezone", cfg.Location.String()))
		errCh <- app.Listen(":" + cfg.Server.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		zlog.Info("shutting down", zap.String("signal", sig.String()))
	}

	return app.ShutdownWithTimeout(cfg.Server.ShutdownTimeout)
}
