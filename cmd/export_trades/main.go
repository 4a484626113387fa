package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"tradeJournal/config"
	"tradeJournal/internal/adapters/logger"
	"tradeJournal/internal/adapters/sqlite"
	"tradeJournal/internal/app"
	"tradeJournal/internal/ports"
	"tradeJournal/internal/utils"
)

// export_trades writes a dated CSV snapshot of the journal, the input format
// analyze_trades reads.
func main() {
	dir := flag.String("dir", "data", "directory to write the snapshot to")
	flag.Parse()

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger := logger.New(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	ctx := context.Background()
	appLogger.Info(ctx, "Logger initialized", ports.Fields{"level": cfg.LogLevel.String()})

	filename, n, err := run(ctx, cfg, appLogger, *dir, time.Now())
	if err != nil {
		appLogger.Error(ctx, err, "Export failed")
		log.Fatalf("FATAL: %v", err)
	}
	appLogger.Info(ctx, "Saved to", ports.Fields{"filename": filename, "positions": n})
}

// run exports every stored position to dir/journal_<date>.csv and returns the
// file written. The repository is closed before run returns.
func run(ctx context.Context, cfg *config.Config, appLogger ports.Logger, dir string, now time.Time) (string, int, error) {
	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
	if err != nil {
		return "", 0, fmt.Errorf("failed to initialize database repository: %w", err)
	}
	defer repo.Close()

	service, err := app.NewJournalService(cfg, appLogger, repo, repo.Layouts())
	if err != nil {
		return "", 0, fmt.Errorf("failed to initialize journal service: %w", err)
	}

	positions, err := service.ListPositions(ctx, "")
	if err != nil {
		return "", 0, fmt.Errorf("failed to load positions: %w", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", 0, fmt.Errorf("error creating %s: %w", dir, err)
	}
	filename := filepath.Join(dir, fmt.Sprintf("journal_%s.csv", now.Format("20060102")))
	if err := utils.WritePositionsToCSV(positions, filename, utils.CSVOptions{TagSeparator: cfg.TagSeparator}); err != nil {
		return "", 0, fmt.Errorf("error writing %s: %w", filename, err)
	}
	return filename, len(positions), nil
}
