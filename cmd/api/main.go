package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"workorder/configs"
	v1 "workorder/internal/api/v1"
	"workorder/internal/config"
	"workorder/internal/middleware"
	"workorder/internal/repository"
	"workorder/pkg/database"
	"workorder/pkg/logger"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		logger.ErrorLogger.Error("Application stopped with error", zap.Error(err))
		logger.SyncLoggers()
		log.Fatal(err)
	}
}

func run() error {
	// Load config
	cfg, err := configs.LoadConfig()
	if err != nil {
		return err
	}

	// Inisialisasi logger
	if err := logger.InitLoggers(cfg.LogDir); err != nil {
		return err
	}
	defer logger.SyncLoggers()
	logger.SystemLogger.Info("Starting application", zap.String("time", time.Now().Format(time.RFC3339)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Inisialisasi database
	db, err := database.ConnectDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	logger.SystemLogger.Info("Database connected", zap.String("driver", cfg.DBDriver))

	dialect, err := repository.DialectFor(cfg.DBDriver)
	if err != nil {
		return err
	}
	// Buat tabel jika belum ada
	if err := repository.CreateTableIfNotExists(ctx, db, dialect); err != nil {
		return err
	}

	var redisClient *redis.Client
	if cfg.RedisEnabled() {
		redisClient, err = database.ConnectRedis(ctx, cfg)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		logger.SystemLogger.Info("Redis connected")
	} else {
		logger.SystemLogger.Info("REDIS_HOST not set, caching disabled")
	}

	deps, err := config.NewDependencies(cfg, db, redisClient)
	if err != nil {
		return err
	}
	go deps.Hub.Run(ctx)
	go deps.Sweeper.Run(ctx)

	app := fiber.New()

	// Middleware
	app.Use(middleware.ErrorHandler())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSAllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimitMax,
		Expiration: cfg.RateLimitWindow,
	}))

	v1.RegisterRoutes(app, deps)

	go func() {
		<-ctx.Done()
		logger.SystemLogger.Info("Shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.ErrorLogger.Error("Shutdown failed", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%d", cfg.AppPort)
	logger.SystemLogger.Info("Application ready", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}
