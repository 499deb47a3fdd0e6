package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/listing-studio/engine/pkg/config"
	"github.com/listing-studio/engine/pkg/database"
	"github.com/listing-studio/engine/pkg/logger"

	"github.com/listing-studio/engine/internal/llm"
	"github.com/listing-studio/engine/internal/queue/cancelbus"
	"github.com/listing-studio/engine/internal/queue/tasks"
	"github.com/listing-studio/engine/internal/repository"
	"github.com/listing-studio/engine/internal/services"
	"github.com/listing-studio/engine/internal/storage"
)

func main() {
	cfg := config.MustLoad()
	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer rdb.Close()

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatal("redis connection failed", zap.Error(err))
	}

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		},
		asynq.Config{
			Concurrency: cfg.AsynqConcurrency,
		},
	)

	mux := asynq.NewServeMux()
	// Initialize DB and repositories for task handlers
	ctx := context.Background()
	db, err := database.OpenPostgres(ctx, cfg.DatabaseURL, cfg.AppEnv)
	if err != nil {
		logger.L().Fatal("failed to open database", zap.Error(err))
	}

	store, err := storage.NewS3Store(cfg.S3)
	if err != nil {
		logger.L().Fatal("failed to init object store", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	landingRepo := repository.NewLandingRepository(db)

	// the worker only runs jobs, it never enqueues
	landings := services.NewLandingService(
		services.NewLedgerService(userRepo),
		llm.NewOpenAIClient(cfg.LLM),
		store, landingRepo, projectRepo,
		nil, cancelbus.NewRedisSignal(rdb),
		services.LandingConfig{
			LandingModel:     cfg.LLM.LandingModel,
			StreamModel:      cfg.LLM.StreamModel,
			LandingMaxTokens: cfg.LLM.LandingMaxToken,
			StreamMaxTokens:  cfg.LLM.StreamMaxToken,
			PublicBaseURL:    cfg.PublicBaseURL,
			CancelPoll:       cfg.LandingCancelPoll,
		},
	)

	tasks.NewLandingTaskHandler(landings).Register(mux)

	errCh := make(chan error, 1)
	go func() {
		logger.L().Info("asynq worker starting", zap.Int("concurrency", cfg.AsynqConcurrency))
		if err := srv.Run(mux); err != nil {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.L().Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		logger.L().Error("worker stopped with error", zap.Error(err))
	}

	// Allow in-flight tasks to finish gracefully
	srv.Shutdown()
}
