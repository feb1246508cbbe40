package main

// Run database migrations:
//   go run ./cmd/migrate [up|down|status|reset|version]

import (
	"context"
	"log"
	"os"

	"go.uber.org/zap"

	"resume-match/internal/shared/config"
	"resume-match/internal/shared/storage/db"
	"resume-match/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	logger, err := telemetry.Init(cfg.LogJSON, cfg.LogDebug)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	ctx := context.Background()
	opts := db.OptionsFromEnv(db.DefaultMigrateOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		logger.Error("failed to connect database", zap.Error(err))
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := db.Migrate(ctx, sqlDB, command); err != nil {
		logger.Error("migration failed", zap.String("command", command), zap.Error(err))
		sqlDB.Close()
		os.Exit(1)
	}
	logger.Info("migration complete", zap.String("command", command))
}
