package services

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"

	"car-scraper/models"
	"car-scraper/utils"
)

// topN limits the manufacturer and location breakdowns.
const topN = 10

var categoryOrder = []string{
	models.CategoryBudget,
	models.CategoryMidRange,
	models.CategoryPremium,
	models.CategoryLuxury,
}

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

func (s *InsightService) Generate(listings []*models.CleanListing) *models.InsightReport {
	report := &models.InsightReport{
		ByManufacturer:  make(map[string]int),
		ByLocation:      make(map[string]int),
		ByPriceCategory: make(map[string]int),
	}

	if len(listings) == 0 {
		return report
	}

	report.TotalListings = len(listings)

	var priceTotal, ageTotal float64
	var aged int
	for _, l := range listings {
		if l.Manufacturer != nil && *l.Manufacturer != "" {
			report.ByManufacturer[*l.Manufacturer]++
		}
		if l.Location != nil && *l.Location != "" {
			report.ByLocation[*l.Location]++
		}
		if l.PriceCategory != "" {
			report.ByPriceCategory[l.PriceCategory]++
		}
		if l.CarAge != nil {
			ageTotal += float64(*l.CarAge)
			aged++
		}

		// Price stats only over known prices.
		if l.PriceValue == nil || *l.PriceValue <= 0 {
			continue
		}
		p := *l.PriceValue
		if report.PricedListings == 0 || p < report.MinPrice {
			report.MinPrice = p
		}
		if report.PricedListings == 0 || p > report.MaxPrice {
			report.MaxPrice = p
			report.MostExpensive = l
		}
		priceTotal += p
		report.PricedListings++
	}

	if report.PricedListings > 0 {
		report.AveragePrice = round2(priceTotal / float64(report.PricedListings))
		report.MinPrice = round2(report.MinPrice)
		report.MaxPrice = round2(report.MaxPrice)
	}
	if aged > 0 {
		report.AverageAge = round2(ageTotal / float64(aged))
	}

	s.logger.Debug("[insights] %d listings, %d priced", report.TotalListings, report.PricedListings)
	return report
}

// Print renders the report as a set of tables.
func (s *InsightService) Print(w io.Writer, r *models.InsightReport) {
	overview := newTable(w, "Car Listing Insights")
	overview.AppendRows([]table.Row{
		{"Total listings", r.TotalListings},
		{"Listings with price", r.PricedListings},
	})
	if r.PricedListings > 0 {
		overview.AppendRows([]table.Row{
			{"Average price", fmt.Sprintf("%.2f", r.AveragePrice)},
			{"Minimum price", fmt.Sprintf("%.2f", r.MinPrice)},
			{"Maximum price", fmt.Sprintf("%.2f", r.MaxPrice)},
		})
	} else {
		overview.AppendRow(table.Row{"Prices", "no price data available"})
	}
	if r.AverageAge > 0 {
		overview.AppendRow(table.Row{"Average age (years)", fmt.Sprintf("%.1f", r.AverageAge)})
	}
	overview.Render()

	if r.MostExpensive != nil {
		me := newTable(w, "Most Expensive Listing")
		me.AppendRows([]table.Row{
			{"Title", truncate(deref(r.MostExpensive.Title), 60)},
			{"Price", fmt.Sprintf("%.2f %s", *r.MostExpensive.PriceValue, deref(r.MostExpensive.PriceCurrency))},
			{"Year", derefInt(r.MostExpensive.Year)},
			{"URL", r.MostExpensive.URL},
		})
		me.Render()
	}

	cats := newTable(w, "Price Categories")
	cats.AppendHeader(table.Row{"Category", "Listings"})
	for _, c := range categoryOrder {
		cats.AppendRow(table.Row{c, r.ByPriceCategory[c]})
	}
	cats.Render()

	printCounts(w, "Top Manufacturers", "Manufacturer", r.ByManufacturer)
	printCounts(w, "Listings by Location", "Location", r.ByLocation)
}

func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.SetTitle(title)
	return t
}

func printCounts(w io.Writer, title, label string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	t := newTable(w, title)
	t.AppendHeader(table.Row{label, "Listings"})
	for _, kv := range topCounts(counts, topN) {
		t.AppendRow(table.Row{truncate(kv.key, 40), kv.count})
	}
	t.Render()
}

type keyCount struct {
	key   string
	count int
}

// topCounts sorts by count descending, then key, and keeps the first n.
func topCounts(counts map[string]int, n int) []keyCount {
	out := make([]keyCount, 0, len(counts))
	for k, c := range counts {
		out = append(out, keyCount{k, c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].key < out[j].key
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(n *int) string {
	if n == nil {
		return ""
	}
	return fmt.Sprint(*n)
}
