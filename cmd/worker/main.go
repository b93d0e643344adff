package main

import (
	"context"
	"log"
	"log/slog"

	"github.com/go-co-op/gocron/v2"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"daylog/internal/config"
	"daylog/internal/database"
	"daylog/internal/daylog"
	"daylog/internal/logger"
	"daylog/internal/metrics"
	"daylog/internal/report"
	"daylog/internal/storage"
	"daylog/internal/tasks"
	"daylog/internal/worker"
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
	appLogger.Info("database ready for worker", slog.String("driver", cfg.Database.Driver))

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

	builder := report.NewBuilder(db, daylog.NewService(db), appLogger)
	exportHandler := worker.NewExportTaskHandler(db, builder, store, redisClient, appLogger)

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("init scheduler: %v", err)
	}
	retention := worker.NewRetentionJob(db, store, cfg.Export.RetentionDays, appLogger)
	if err := retention.Schedule(scheduler); err != nil {
		log.Fatalf("schedule retention job: %v", err)
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Shutdown(); err != nil {
			appLogger.Error("shutdown scheduler failed", slog.Any("error", err))
		}
	}()

	server := asynq.NewServer(asynq.RedisClientOpt{Addr: redisAddr}, asynq.Config{
		Concurrency: cfg.Export.Concurrency,
	})

	mux := asynq.NewServeMux()
	mux.Use(metrics.AsynqMetricsMiddleware())
	mux.Handle(tasks.TypeReportExport, exportHandler)

	appLogger.Info("worker started",
		slog.String("redis_addr", redisAddr),
		slog.Int("concurrency", cfg.Export.Concurrency),
	)
	if err := server.Run(mux); err != nil {
		appLogger.Error("worker server stopped", slog.Any("error", err))
	}
}
