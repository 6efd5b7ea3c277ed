package pazar3

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/url"
	"strings"
	"sync"
	"time"

	"car-scraper/config"
	"car-scraper/models"
	"car-scraper/utils"
)

// FailureReason says which stage a listing was lost in.
type FailureReason string

const (
	ReasonFetch FailureReason = "fetch"
	ReasonParse FailureReason = "parse"
)

// Failure records a listing URL that produced no record.
type Failure struct {
	URL    string
	Reason FailureReason
	Err    error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s %s: %v", f.Reason, f.URL, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// Run is the outcome of a scrape: one Listing per URL that succeeded and one
// Failure per URL that did not.
type Run struct {
	Listings    []*models.Listing
	Failures    []Failure
	FieldErrors int
}

// Options controls pacing.
type Options struct {
	// MinDelay and MaxDelay bound the random pause between sequential fetches.
	MinDelay time.Duration
	MaxDelay time.Duration

	// Workers bounds concurrent fetches within a page in ScrapePages.
	Workers        int
	WorkerInterval time.Duration
	PageDelay      time.Duration
}

// Scraper drives fetch, extract and normalize over a list of listing URLs.
type Scraper struct {
	fetcher    Fetcher
	normalizer *Normalizer
	opts       Options
	logger     *utils.Logger

	// sleep and jitter are swapped out in tests.
	sleep  func(ctx context.Context, d time.Duration) error
	jitter func(n int64) int64
}

func New(fetcher Fetcher, normalizer *Normalizer, opts Options, logger *utils.Logger) *Scraper {
	return &Scraper{
		fetcher:    fetcher,
		normalizer: normalizer,
		opts:       opts,
		logger:     logger,
		sleep:      utils.Sleep,
		jitter:     rand.Int64N,
	}
}

// NewFromConfig wires a Scraper with the fetch backend and pacing from cfg.
// The returned close function releases the fetcher.
func NewFromConfig(cfg *config.Config, mapping config.FieldMapping, logger *utils.Logger) (*Scraper, func(), error) {
	fetcher, closeFetcher, err := NewFetcher(cfg, logger)
	if err != nil {
		return nil, closeFetcher, err
	}
	opts := Options{
		MinDelay:       cfg.MinDelay,
		MaxDelay:       cfg.MaxDelay,
		Workers:        cfg.MaxConcurrency,
		WorkerInterval: cfg.WorkerInterval,
		PageDelay:      cfg.PageDelay,
	}
	return New(fetcher, NewNormalizer(mapping), opts, logger), closeFetcher, nil
}

// ScrapeListing fetches one URL and returns its normalized record. Errors are
// always *Failure.
func (s *Scraper) ScrapeListing(ctx context.Context, url string) (*models.Listing, []models.FieldError, error) {
	doc, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, nil, &Failure{URL: url, Reason: ReasonFetch, Err: err}
	}

	var (
		raw       *models.RawListing
		fieldErrs []models.FieldError
	)
	if perr := safely(func() { raw, fieldErrs = Extract(doc, url) }); perr != nil {
		return nil, nil, &Failure{URL: url, Reason: ReasonParse, Err: perr}
	}

	listing, normErrs := s.normalizer.Normalize(raw)
	return listing, append(fieldErrs, normErrs...), nil
}

// safely turns a panic inside fn into an error so one malformed page cannot
// take the whole run down.
func safely(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	fn()
	return nil
}

// ScrapeSequential fetches urls one at a time with a random pause between
// requests. Output order follows input order.
func (s *Scraper) ScrapeSequential(ctx context.Context, urls []string) *Run {
	run := &Run{}
	s.logger.Info("[scraper] Scraping %d listings sequentially", len(urls))

	for i, u := range urls {
		if ctx.Err() != nil {
			s.logger.Warn("[scraper] Stopping early: %v", ctx.Err())
			break
		}
		s.logger.Info("[scraper] (%d/%d) %s", i+1, len(urls), u)
		s.record(ctx, run, nil, u)

		if i < len(urls)-1 {
			if err := s.sleep(ctx, s.delay()); err != nil {
				break
			}
		}
	}

	s.logger.Info("[scraper] Done: %d listings, %d failures", len(run.Listings), len(run.Failures))
	return run
}

// ScrapePages processes pages strictly in order. Listings within a page are
// fetched concurrently, and every page must finish before the next starts.
// A URL seen on an earlier page is not fetched again.
func (s *Scraper) ScrapePages(ctx context.Context, pages [][]string) *Run {
	run := &Run{}
	var mu sync.Mutex
	visited := utils.NewURLSet()

	for i, urls := range pages {
		if ctx.Err() != nil {
			s.logger.Warn("[scraper] Stopping before page %d: %v", i+1, ctx.Err())
			break
		}
		s.logger.Info("[scraper] Page %d/%d: %d urls", i+1, len(pages), len(urls))

		pool := utils.NewWorkerPool(ctx, s.opts.Workers, s.opts.WorkerInterval)
		for _, u := range urls {
			if !visited.Add(u) {
				s.logger.Debug("[scraper] Skipping duplicate %s", u)
				continue
			}
			u := u
			if !pool.Submit(func(ctx context.Context) { s.record(ctx, run, &mu, u) }) {
				break
			}
		}
		pool.Wait()

		s.logger.Info("[scraper] Page %d done: %d listings so far, %d unique urls seen", i+1, len(run.Listings), visited.Size())
		if i < len(pages)-1 {
			if err := s.sleep(ctx, s.opts.PageDelay); err != nil {
				break
			}
		}
	}

	s.logger.Info("[scraper] Done: %d listings, %d failures", len(run.Listings), len(run.Failures))
	return run
}

// record scrapes u and appends the outcome to run. mu may be nil when the
// caller is single-threaded.
func (s *Scraper) record(ctx context.Context, run *Run, mu *sync.Mutex, u string) {
	listing, fieldErrs, err := s.ScrapeListing(ctx, u)
	for _, fe := range fieldErrs {
		if fe.Reason == models.ReasonMissing {
			s.logger.Warn("[scraper] %s: %v (not an ad page?)", u, fe)
			continue
		}
		s.logger.Debug("[scraper] %s: %v", u, fe)
	}

	if mu != nil {
		mu.Lock()
		defer mu.Unlock()
	}
	run.FieldErrors += len(fieldErrs)
	if err != nil {
		var f *Failure
		if errors.As(err, &f) {
			run.Failures = append(run.Failures, *f)
		}
		s.logger.Warn("[scraper] Skipping %s: %v", u, err)
		return
	}
	run.Listings = append(run.Listings, listing)
}

func (s *Scraper) delay() time.Duration {
	lo, hi := s.opts.MinDelay, s.opts.MaxDelay
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(s.jitter(int64(hi-lo)+1))
}

// ResolveURL makes a search-result href absolute against base.
func ResolveURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || base == "" {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil || ref.IsAbs() {
		return href
	}
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	return b.ResolveReference(ref).String()
}
