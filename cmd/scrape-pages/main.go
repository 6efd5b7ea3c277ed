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
	Use:   "scrape-pages",
	Short: "Scrape the ads listed in saved search-result pages, page by page, with a worker pool.",
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

	logger.Info("=== pazar3 page scrape starting ===")
	logger.Info("Config | backend: %s | pages: %d-%d | workers: %d | page delay: %v",
		cfg.FetchBackend, cfg.FirstPage, cfg.LastPage, cfg.MaxConcurrency, cfg.PageDelay)

	mapping, err := config.LoadFieldMapping(cfg.FieldMappingPath)
	if err != nil {
		return err
	}

	pages := loadPages(cfg, logger)

	s, closeFetcher, err := pazar3.NewFromConfig(cfg, mapping, logger)
	defer closeFetcher()
	if err != nil {
		return err
	}

	res := s.ScrapePages(ctx, pages)
	if len(res.Listings) == 0 {
		return errors.New("no listings were scraped")
	}

	w, err := storage.NewCSVWriter(cfg.PagesOutputPath, mapping)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.WriteListings(res.Listings); err != nil {
		return fmt.Errorf("write %s: %w", cfg.PagesOutputPath, err)
	}
	logger.Info("Saved %d listings to %s (%d failed, %d field errors)",
		len(res.Listings), cfg.PagesOutputPath, len(res.Failures), res.FieldErrors)
	return nil
}

// loadPages reads one search-results file per page. A page whose file is
// missing or unreadable is logged and scraped as empty.
func loadPages(cfg *config.Config, logger *utils.Logger) [][]string {
	var pages [][]string
	for n := cfg.FirstPage; n <= cfg.LastPage; n++ {
		path := fmt.Sprintf(cfg.SearchResultsPattern, n)
		hrefs, err := storage.ReadURLList(path)
		if err != nil {
			logger.Error("[pages] Page %d: %v", n, err)
			pages = append(pages, nil)
			continue
		}

		urls := make([]string, 0, len(hrefs))
		for _, h := range hrefs {
			urls = append(urls, pazar3.ResolveURL(cfg.BaseURL, h))
		}
		logger.Info("[pages] Page %d: %d urls from %s", n, len(urls), path)
		pages = append(pages, urls)
	}
	return pages
}
