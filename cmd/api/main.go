package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/listing-studio/engine/internal/api"
	"github.com/listing-studio/engine/internal/api/handlers"
	"github.com/listing-studio/engine/internal/api/validators"
	"github.com/listing-studio/engine/internal/llm"
	"github.com/listing-studio/engine/internal/queue/cancelbus"
	"github.com/listing-studio/engine/internal/queue/tasks"
	"github.com/listing-studio/engine/internal/repository"
	"github.com/listing-studio/engine/internal/services"
	"github.com/listing-studio/engine/internal/storage"
	"github.com/listing-studio/engine/pkg/config"
	"github.com/listing-studio/engine/pkg/database"
	"github.com/listing-studio/engine/pkg/logger"
)

const imageFetchTimeout = 60 * time.Second

func main() {
	// Load configuration
	cfg := config.MustLoad()

	// Initialize logger
	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	log.Info("Starting listing engine API",
		zap.String("env", cfg.AppEnv),
		zap.String("addr", cfg.HTTPAddr),
	)

	// Connect to database
	ctx := context.Background()
	db, err := database.OpenPostgres(ctx, cfg.DatabaseURL, cfg.AppEnv)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected successfully")

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer rdb.Close()

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer asynqClient.Close()

	store, err := storage.NewS3Store(cfg.S3)
	if err != nil {
		log.Fatal("Failed to init object store", zap.Error(err))
	}
	model := llm.NewOpenAIClient(cfg.LLM)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	imageRepo := repository.NewImageRepository(db)
	landingRepo := repository.NewLandingRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	// Services
	ledger := services.NewLedgerService(userRepo)
	analyzer := services.NewAnalyzerService(ledger, model, store,
		services.NewHTTPFetcher(imageFetchTimeout, cfg.UploadMaxBytes*4),
		projectRepo, imageRepo,
		services.ModelSet{Text: cfg.LLM.TextModel, Image: cfg.LLM.ImageModel})
	landings := services.NewLandingService(ledger, model, store, landingRepo, projectRepo,
		tasks.NewEnqueuer(asynqClient), cancelbus.NewRedisSignal(rdb),
		services.LandingConfig{
			LandingModel:     cfg.LLM.LandingModel,
			StreamModel:      cfg.LLM.StreamModel,
			LandingMaxTokens: cfg.LLM.LandingMaxToken,
			StreamMaxTokens:  cfg.LLM.StreamMaxToken,
			PublicBaseURL:    cfg.PublicBaseURL,
			CancelPoll:       cfg.LandingCancelPoll,
		})

	// Initialize handlers
	defaults := handlers.Defaults{UserID: cfg.DefaultUserID, ProjectID: cfg.DefaultProjectID}
	v := validators.New()
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("Failed to get sql handle", zap.Error(err))
	}

	// Create router with dependencies
	router := api.NewRouter(api.Dependencies{
		AnalyzeHandler:  handlers.NewAnalyzeHandler(analyzer, v, defaults),
		LandingHandler:  handlers.NewLandingHandler(landings, v, defaults),
		OrdersHandler:   handlers.NewOrdersHandler(services.NewOrderService(landingRepo, orderRepo), defaults),
		ProjectsHandler: handlers.NewProjectsHandler(services.NewProjectService(userRepo, projectRepo), v, defaults),
		UsersHandler:    handlers.NewUsersHandler(services.NewUserService(userRepo)),
		UploadHandler:   handlers.NewUploadHandler(services.NewUploadService(store, analyzer), cfg.UploadMaxBytes, defaults),
		HealthHandler: handlers.NewHealthHandler(map[string]handlers.Check{
			"postgres": sqlDB.PingContext,
			"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		}),
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       90 * time.Second,
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	} else {
		log.Info("server exited gracefully")
	}
}
