package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"car-scraper/models"
	"car-scraper/scraper/pazar3"
	"car-scraper/storage"
	"car-scraper/utils"
)

// ErrNoInput is returned when no input file could be loaded.
var ErrNoInput = errors.New("no readable input files")

// Report summarises one cleaning run.
type Report struct {
	Files          int
	InputRows      int
	Duplicates     int
	CoercionErrors int
	PriceFallbacks int
	Imputed        map[string]int
	Output         int
}

// Cleaner merges scraped CSV tables into one deduplicated, typed and
// imputed dataset.
type Cleaner struct {
	logger *utils.Logger
	now    func() time.Time
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger, now: time.Now}
}

// Load reads every file matching pattern. Files that fail are logged and
// skipped; ErrNoInput is returned when nothing loads.
func (c *Cleaner) Load(pattern string) ([]*storage.Table, error) {
	results, err := storage.LoadGlob(pattern)
	if err != nil {
		return nil, err
	}

	var tables []*storage.Table
	for _, r := range results {
		if r.Err != nil {
			c.logger.Error("[cleaner] Skipping %s: %v", r.Path, r.Err)
			continue
		}
		c.logger.Info("[cleaner] Loaded %s (%d rows)", r.Path, len(r.Table.Rows))
		tables = append(tables, r.Table)
	}
	if len(tables) == 0 {
		return nil, fmt.Errorf("%w matching %q", ErrNoInput, pattern)
	}
	return tables, nil
}

// Clean runs the pipeline: concatenate, dedupe, coerce, recover prices from
// descriptions, impute, derive metrics and normalise text.
func (c *Cleaner) Clean(tables []*storage.Table) ([]*models.CleanListing, Report) {
	report := Report{Files: len(tables), Imputed: make(map[string]int)}

	headers, rows := concat(tables)
	report.InputRows = len(rows)

	rows = dedupe(rows)
	report.Duplicates = report.InputRows - len(rows)

	listings := make([]*models.CleanListing, 0, len(rows))
	for _, row := range rows {
		l, errs := storage.ListingFromRow(headers, row)
		for _, e := range errs {
			c.logger.Debug("[cleaner] %s: %v", l.URL, e)
		}
		report.CoercionErrors += len(errs)
		listings = append(listings, l)
	}

	for _, l := range listings {
		if c.recoverPrice(l) {
			report.PriceFallbacks++
		}
	}

	for column, n := range impute(listings, c.logger) {
		report.Imputed[column] = n
	}
	// Each side of the mileage pair is imputed from its own column.
	for _, l := range listings {
		l.AlignMileage()
	}

	year := c.now().Year()
	for _, l := range listings {
		derive(l, year)
		normaliseListingText(l)
	}

	report.Output = len(listings)
	c.logger.Info("[cleaner] Cleaned %d → %d listings (%d duplicates, %d conversion errors, %d prices from descriptions)",
		report.InputRows, report.Output, report.Duplicates, report.CoercionErrors, report.PriceFallbacks)
	return listings, report
}

// recoverPrice fills an unknown price from the description text. A price of
// zero is unknown and is cleared when nothing better is found.
func (c *Cleaner) recoverPrice(l *models.CleanListing) bool {
	if l.PriceValue != nil && *l.PriceValue > 0 {
		return false
	}
	l.PriceValue = nil
	if l.Description == nil {
		return false
	}
	v := pazar3.ParsePriceText(*l.Description)
	if v <= 0 {
		return false
	}
	l.PriceValue = &v
	c.logger.Debug("[cleaner] Price %.0f recovered from description of %s", v, l.URL)
	return true
}

// concat stacks the tables. The header is the union of all headers in
// first-seen order.
func concat(tables []*storage.Table) ([]string, []storage.Row) {
	var headers []string
	seen := make(map[string]bool)
	var rows []storage.Row
	for _, t := range tables {
		for _, h := range t.Headers {
			if !seen[h] {
				seen[h] = true
				headers = append(headers, h)
			}
		}
		rows = append(rows, t.Rows...)
	}
	return headers, rows
}

// dedupe keeps the last row for each {url, title, price_value} key, in the
// position of that last occurrence.
func dedupe(rows []storage.Row) []storage.Row {
	last := make(map[string]int, len(rows))
	for i, r := range rows {
		last[dedupeKey(r)] = i
	}
	out := make([]storage.Row, 0, len(last))
	for i, r := range rows {
		if last[dedupeKey(r)] == i {
			out = append(out, r)
		}
	}
	return out
}

func dedupeKey(r storage.Row) string {
	price := strings.TrimSpace(r["price_value"])
	if f, err := strconv.ParseFloat(price, 64); err == nil {
		price = strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strings.TrimSpace(r["url"]) + "\x00" + normaliseText(r["title"]) + "\x00" + price
}

// normaliseListingText collapses whitespace in every text field and
// title-cases the free-text ones.
func normaliseListingText(l *models.CleanListing) {
	title := cases.Title(language.Und)
	for _, p := range []**string{&l.Title, &l.Description, &l.FuelType, &l.Transmission} {
		if *p != nil {
			s := title.String(normaliseText(**p))
			*p = &s
		}
	}
	for _, p := range []**string{&l.Manufacturer, &l.Model, &l.Color, &l.Location, &l.Address, &l.Condition, &l.ListingType, &l.SellerType} {
		if *p != nil {
			s := normaliseText(**p)
			*p = &s
		}
	}
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	s = strings.TrimSpace(s)
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}
