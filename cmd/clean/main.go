package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"car-scraper/config"
	"car-scraper/services"
	"car-scraper/storage"
	"car-scraper/utils"
)

var rootCmd = &cobra.Command{
	Use:   "clean",
	Short: "Merge scraped listing CSVs into one cleaned dataset and print insights.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return run(cmd.Context())
	},
	SilenceUsage: true,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg := config.Load()
	logger := utils.NewLogger(cfg.LogLevel)

	logger.Info("=== Cleaning %s ===", cfg.CleanInputGlob)

	mapping, err := config.LoadFieldMapping(cfg.FieldMappingPath)
	if err != nil {
		return err
	}

	cleaner := services.NewCleaner(logger)
	tables, err := cleaner.Load(cfg.CleanInputGlob)
	if err != nil {
		return err
	}

	listings, report := cleaner.Clean(tables)
	logger.Info("Cleaned dataset: %d listings from %d files", report.Output, report.Files)

	w, err := storage.NewCSVWriter(cfg.CleanOutputPath, mapping)
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.WriteClean(listings); err != nil {
		return fmt.Errorf("write %s: %w", cfg.CleanOutputPath, err)
	}
	logger.Info("Cleaned listings saved to %s", cfg.CleanOutputPath)

	insightInput := listings
	for _, sink := range openSinks(ctx, cfg, logger) {
		if err := sink.WriteClean(listings); err != nil {
			logger.Error("%s write failed: %v", sink.name, err)
		} else {
			logger.Info("Cleaned listings stored in %s", sink.name)
			if stored, err := sink.FetchAll(); err == nil {
				insightInput = stored
			} else {
				logger.Warn("Could not read back from %s for insights: %v", sink.name, err)
			}
		}
		sink.Close()
	}

	insights := services.NewInsightService(logger)
	insights.Print(os.Stdout, insights.Generate(insightInput))
	return nil
}

type namedSink struct {
	storage.CleanListingStore
	name string
}

// openSinks connects the optional database sinks. A sink that cannot be
// opened is logged and skipped; the CSV output is already written.
func openSinks(ctx context.Context, cfg *config.Config, logger *utils.Logger) []namedSink {
	var sinks []namedSink

	if cfg.PostgresEnabled {
		retry := &utils.RetryConfig{MaxAttempts: cfg.MaxRetries, BaseDelay: 2 * time.Second, Logger: logger}
		pg, err := storage.NewPostgresWriter(ctx, cfg.DSN(), retry)
		if err != nil {
			logger.Error("Failed to connect to PostgreSQL: %v", err)
		} else {
			sinks = append(sinks, namedSink{pg, "PostgreSQL"})
		}
	}

	if cfg.SQLitePath != "" {
		sq, err := storage.NewSQLiteWriter(cfg.SQLitePath)
		if err != nil {
			logger.Error("Failed to open SQLite: %v", err)
		} else {
			sinks = append(sinks, namedSink{sq, "SQLite " + cfg.SQLitePath})
		}
	}
	return sinks
}
