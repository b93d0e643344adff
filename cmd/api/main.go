package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"daylog/internal/api"
	"daylog/internal/auth"
	"daylog/internal/config"
	"daylog/internal/database"
	"daylog/internal/logger"
	"daylog/internal/storage"
)

func main() {
	cfg := config.MustLoad()
	appLogger := logger.Init(cfg.Log)

	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}
	appLogger.Info("database ready", slog.String("driver", cfg.Database.Driver))

	store, err := storage.New(cfg.Storage)
	if err != nil {
		log.Fatalf("init storage: %v", err)
	}
	appLogger.Info("storage ready", slog.String("backend", cfg.Storage.Backend))

	redisAddr := cfg.Redis.RedisAddr()
	redisClient := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer func() {
		if err := redisClient.Close(); err != nil {
			appLogger.Error("close redis client failed", slog.Any("error", err))
		}
	}()
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("ping redis: %v", err)
	}

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr})
	defer func() {
		if err := asynqClient.Close(); err != nil {
			appLogger.Error("close asynq client failed", slog.Any("error", err))
		}
	}()

	authService, err := auth.NewAuthService(cfg.Auth.Secret, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)
	if err != nil {
		log.Fatalf("init auth service: %v", err)
	}

	router := api.NewRouter(cfg, appLogger)
	api.RegisterRoutes(
		router,
		db,
		asynqClient,
		authService,
		redisClient,
		appLogger,
		store,
		cfg.API.AllowedOrigins,
		cfg.Clamd.Addr,
	)

	address := fmt.Sprintf(":%d", cfg.API.Port)
	appLogger.Info("api listening", slog.String("address", address))
	if err := router.Run(address); err != nil {
		log.Fatalf("start api server: %v", err)
	}
}
