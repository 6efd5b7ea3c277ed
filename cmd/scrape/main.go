package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"car-scraper/config"
	"car-scraper/scraper/pazar3"
	"car-scraper/storage"
	"car-scraper/utils"
)

var rootCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape the built-in list of pazar3.mk car ads one by one into a CSV file.",
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

	logger.Info("=== pazar3 sequential scrape starting ===")
	logger.Info("Config | backend: %s | delay: %v-%v | urls: %d",
		cfg.FetchBackend, cfg.MinDelay, cfg.MaxDelay, len(listingURLs))

	mapping, err := config.LoadFieldMapping(cfg.FieldMappingPath)
	if err != nil {
		return err
	}

	s, closeFetcher, err := pazar3.NewFromConfig(cfg, mapping, logger)
	defer closeFetcher()
	if err != nil {
		return err
	}

	res := s.ScrapeSequential(ctx, listingURLs)
	if len(res.Listings) == 0 {
		return errors.New("no listings were scraped")
	}

	w, err := storage.NewCSVWriter(cfg.RawOutputPath, mapping)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.WriteListings(res.Listings); err != nil {
		return fmt.Errorf("write %s: %w", cfg.RawOutputPath, err)
	}
	logger.Info("Saved %d listings to %s (%d failed, %d field errors)",
		len(res.Listings), cfg.RawOutputPath, len(res.Failures), res.FieldErrors)
	return nil
}
