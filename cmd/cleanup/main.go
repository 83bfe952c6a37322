// Command cleanup runs a single token retention sweep and prints what it
// removed. Intended for cron or manual operation.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/humanoid-ai/humanoid-server/internal/config"
	"github.com/humanoid-ai/humanoid-server/internal/logger"
	"github.com/humanoid-ai/humanoid-server/internal/repository/postgres"
	"github.com/humanoid-ai/humanoid-server/internal/service"
	"github.com/humanoid-ai/humanoid-server/internal/token"
)

func main() {
	days := flag.Int("days", 0, "retention window in days (0 uses RETENTION_DAYS)")
	dryRun := flag.Bool("dry-run", false, "report store totals without deleting")
	flag.Parse()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	retentionDays := cfg.Retention.Days
	if *days > 0 {
		retentionDays = *days
	}

	ctx := context.Background()

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	authTokenRepo := postgres.NewAuthTokenRepository(db)
	tokenManager := token.NewJWT(cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	tokenService := service.NewToken(tokenManager, authTokenRepo, logger)

	if *dryRun {
		stats, err := tokenService.Stats(ctx)
		if err != nil {
			logger.Fatal("failed to get token stats", "error", err)
		}
		fmt.Printf("total=%d active=%d revoked=%d (dry run, nothing deleted)\n",
			stats.Total, stats.Active, stats.Revoked)
		return
	}

	retention := time.Duration(retentionDays) * 24 * time.Hour
	cleanup := service.NewCleanup(tokenService, retention, time.Hour, logger)

	deleted, stats, err := cleanup.RunOnce(ctx)
	if err != nil {
		logger.Fatal("cleanup failed", "error", err)
	}

	fmt.Printf("deleted=%d total=%d active=%d revoked=%d\n",
		deleted, stats.Total, stats.Active, stats.Revoked)
}
