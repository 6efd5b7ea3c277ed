package services

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"car-scraper/models"
	"car-scraper/utils"
)

func car(url, manufacturer, location string, price float64, age int) *models.CleanListing {
	l := &models.CleanListing{Listing: models.Listing{URL: url, Title: &url}}
	if manufacturer != "" {
		l.Manufacturer = &manufacturer
	}
	if location != "" {
		l.Location = &location
	}
	if price > 0 {
		l.PriceValue = &price
		l.PriceCategory = PriceCategory(price)
	}
	l.CarAge = &age
	return l
}

func sampleListings() []*models.CleanListing {
	return []*models.CleanListing{
		car("https://www.pazar3.mk/ad/1", "Volkswagen", "Скопје", 4500, 10),
		car("https://www.pazar3.mk/ad/2", "Volkswagen", "Битола", 12000, 4),
		car("https://www.pazar3.mk/ad/3", "BMW", "Скопје", 25000, 2),
		car("https://www.pazar3.mk/ad/4", "Opel", "", 0, 16),
	}
}

func TestInsightCounts(t *testing.T) {
	svc := NewInsightService(utils.NewDiscardLogger())
	r := svc.Generate(sampleListings())
	if r.TotalListings != 4 {
		t.Errorf("TotalListings: got %d, want 4", r.TotalListings)
	}
	if r.PricedListings != 3 {
		t.Errorf("PricedListings: got %d, want 3", r.PricedListings)
	}

	wantMan := map[string]int{"Volkswagen": 2, "BMW": 1, "Opel": 1}
	if diff := cmp.Diff(wantMan, r.ByManufacturer); diff != "" {
		t.Errorf("ByManufacturer mismatch (-want +got):\n%s", diff)
	}
	wantCat := map[string]int{models.CategoryBudget: 1, models.CategoryPremium: 1, models.CategoryLuxury: 1}
	if diff := cmp.Diff(wantCat, r.ByPriceCategory); diff != "" {
		t.Errorf("ByPriceCategory mismatch (-want +got):\n%s", diff)
	}
	if r.ByLocation["Скопје"] != 2 {
		t.Errorf("ByLocation[Скопје]: got %d, want 2", r.ByLocation["Скопје"])
	}
}

func TestInsightPrices(t *testing.T) {
	svc := NewInsightService(utils.NewDiscardLogger())
	r := svc.Generate(sampleListings())

	wantAvg := 13833.33
	if r.AveragePrice != wantAvg {
		t.Errorf("AveragePrice: got %.2f, want %.2f", r.AveragePrice, wantAvg)
	}
	if r.MinPrice != 4500 {
		t.Errorf("MinPrice: got %.2f, want 4500", r.MinPrice)
	}
	if r.MaxPrice != 25000 {
		t.Errorf("MaxPrice: got %.2f, want 25000", r.MaxPrice)
	}
	if r.MostExpensive == nil || r.MostExpensive.URL != "https://www.pazar3.mk/ad/3" {
		t.Errorf("MostExpensive: got %+v", r.MostExpensive)
	}
	if r.AverageAge != 8 {
		t.Errorf("AverageAge: got %.2f, want 8", r.AverageAge)
	}
}

func TestInsightEmpty(t *testing.T) {
	svc := NewInsightService(utils.NewDiscardLogger())
	r := svc.Generate(nil)
	if r.TotalListings != 0 || r.AveragePrice != 0 || r.MostExpensive != nil {
		t.Errorf("empty input should give a zero report, got %+v", r)
	}

	var buf bytes.Buffer
	svc.Print(&buf, r)
	if !strings.Contains(buf.String(), "no price data available") {
		t.Errorf("empty report output missing placeholder:\n%s", buf.String())
	}
}

func TestInsightPrint(t *testing.T) {
	svc := NewInsightService(utils.NewDiscardLogger())
	var buf bytes.Buffer
	svc.Print(&buf, svc.Generate(sampleListings()))

	out := buf.String()
	for _, want := range []string{"Car Listing Insights", "13833.33", "Most Expensive Listing", "Luxury", "Volkswagen", "Скопје"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTopCountsOrder(t *testing.T) {
	got := topCounts(map[string]int{"b": 2, "a": 2, "c": 5, "d": 1}, 3)
	want := []keyCount{{"c", 5}, {"a", 2}, {"b", 2}}
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(keyCount{})); diff != "" {
		t.Errorf("topCounts mismatch (-want +got):\n%s", diff)
	}
}
