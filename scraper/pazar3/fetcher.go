package pazar3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	browser "github.com/EDDYCJY/fake-useragent"
	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/go-resty/resty/v2"

	"car-scraper/config"
	"car-scraper/utils"
)

// ErrStatus is returned when the site answers with a non-2xx status.
var ErrStatus = errors.New("unexpected http status")

// Fetcher retrieves a listing page and parses it into a document.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*goquery.Document, error)
}

// HTTPOptions configures an HTTPFetcher.
type HTTPOptions struct {
	Timeout          time.Duration
	AcceptLanguage   string
	CloudflareBypass bool
	// UserAgent picks the User-Agent for each request. Defaults to a random
	// desktop browser string.
	UserAgent func() string
}

// HTTPFetcher fetches pages with a plain HTTP client. Each request carries a
// fresh random User-Agent.
type HTTPFetcher struct {
	client         *resty.Client
	acceptLanguage string
	userAgent      func() string
}

func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	client := resty.New()
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	if opts.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}
	ua := opts.UserAgent
	if ua == nil {
		ua = browser.Random
	}
	return &HTTPFetcher{
		client:         client,
		acceptLanguage: opts.AcceptLanguage,
		userAgent:      ua,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	req := f.client.R().
		SetContext(ctx).
		SetHeader("User-Agent", f.userAgent()).
		SetHeader("X-Requested-With", "XMLHttpRequest")
	if f.acceptLanguage != "" {
		req.SetHeader("Accept-Language", f.acceptLanguage)
	}

	resp, err := req.Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("fetch %s: %w: %s", url, ErrStatus, resp.Status())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}
	return doc, nil
}

// BrowserFetcher renders pages in headless Chrome. It is slower than
// HTTPFetcher but gets past pages that need JavaScript.
type BrowserFetcher struct {
	browserCtx     context.Context
	cancel         context.CancelFunc
	timeout        time.Duration
	acceptLanguage string
}

// NewBrowserFetcher starts a headless browser. Close must be called to shut
// it down.
func NewBrowserFetcher(chromeBin string, timeout time.Duration, acceptLanguage string, logger *utils.Logger) *BrowserFetcher {
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	logger.Info("[browser] Using browser binary: %q", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(browser.Random()),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	return &BrowserFetcher{
		browserCtx: browserCtx,
		cancel: func() {
			cancelBrowser()
			cancelAlloc()
		},
		timeout:        timeout,
		acceptLanguage: acceptLanguage,
	}
}

func (b *BrowserFetcher) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	tabCtx, cancel := chromedp.NewContext(b.browserCtx)
	defer cancel()
	if b.timeout > 0 {
		var cancelTimeout context.CancelFunc
		tabCtx, cancelTimeout = context.WithTimeout(tabCtx, b.timeout)
		defer cancelTimeout()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	headers := network.Headers{"X-Requested-With": "XMLHttpRequest"}
	if b.acceptLanguage != "" {
		headers["Accept-Language"] = b.acceptLanguage
	}

	var html string
	err := chromedp.Run(tabCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(headers),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", url, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}
	return doc, nil
}

// Close shuts the browser down.
func (b *BrowserFetcher) Close() {
	b.cancel()
}

// NewFetcher builds the fetcher selected by cfg.FetchBackend. The returned
// close function releases its resources and is always safe to call.
func NewFetcher(cfg *config.Config, logger *utils.Logger) (Fetcher, func(), error) {
	switch cfg.FetchBackend {
	case config.BackendHTTP, "":
		f := NewHTTPFetcher(HTTPOptions{
			Timeout:          cfg.RequestTimeout,
			AcceptLanguage:   cfg.AcceptLanguage,
			CloudflareBypass: cfg.CloudflareBypass,
		})
		return f, func() {}, nil
	case config.BackendBrowser:
		f := NewBrowserFetcher(cfg.ChromeBin, cfg.RequestTimeout, cfg.AcceptLanguage, logger)
		return f, f.Close, nil
	default:
		return nil, func() {}, fmt.Errorf("unknown fetch backend %q", cfg.FetchBackend)
	}
}

// findChromeBinary locates a Chrome/Chromium binary on PATH or in the usual
// install locations. An empty result lets chromedp use its own lookup.
func findChromeBinary() string {
	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
