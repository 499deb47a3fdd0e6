package main

import (
	"context"
	"fmt"
	"os"

	"github.com/listing-studio/engine/pkg/config"
	"github.com/listing-studio/engine/pkg/database"
	"github.com/listing-studio/engine/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	cfg := config.MustLoad()
	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	db, err := database.OpenPostgres(context.Background(), cfg.DatabaseURL, cfg.AppEnv)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := runMigrations(db); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}
	if err := seedDefaults(db, cfg.DefaultUserID, cfg.DefaultProjectID); err != nil {
		log.Fatal("seeding defaults failed", zap.Error(err))
	}

	fmt.Fprintln(os.Stdout, "migrations completed")
}
