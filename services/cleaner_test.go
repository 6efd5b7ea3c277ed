package services

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"car-scraper/models"
	"car-scraper/storage"
	"car-scraper/utils"
)

func newTestCleaner() *Cleaner {
	c := NewCleaner(utils.NewDiscardLogger())
	c.now = func() time.Time { return time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC) }
	return c
}

func csvTable(headers []string, rows ...[]string) *storage.Table {
	t := &storage.Table{Headers: headers}
	for _, r := range rows {
		row := storage.Row{}
		for i, h := range headers {
			row[h] = r[i]
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func TestCleanerMedianImputation(t *testing.T) {
	c := newTestCleaner()
	in := csvTable([]string{"url", "mileage_start"},
		[]string{"u1", "10"},
		[]string{"u2", "20"},
		[]string{"u3", ""},
		[]string{"u4", "40"},
	)

	out, report := c.Clean([]*storage.Table{in})
	if len(out) != 4 {
		t.Fatalf("got %d listings, want 4", len(out))
	}

	var got []int
	for _, l := range out {
		got = append(got, *l.MileageStart)
	}
	if diff := cmp.Diff([]int{10, 20, 20, 40}, got); diff != "" {
		t.Errorf("mileage_start mismatch (-want +got):\n%s", diff)
	}
	if report.Imputed["mileage_start"] != 1 {
		t.Errorf("Imputed[mileage_start] = %d, want 1", report.Imputed["mileage_start"])
	}
	// Nothing to take a median from.
	if out[0].PriceValue != nil {
		t.Errorf("price_value should stay empty, got %v", *out[0].PriceValue)
	}
}

func TestCleanerModeAndSentinels(t *testing.T) {
	c := newTestCleaner()
	in := csvTable([]string{"url", "fuel_type", "transmission", "color"},
		[]string{"u1", "Бензин", "Рачен", ""},
		[]string{"u2", "Дизел", "", ""},
		[]string{"u3", "", "Рачен", "Црна"},
		[]string{"u4", "", "Автоматски", ""},
	)

	out, _ := c.Clean([]*storage.Table{in})

	// Бензин and Дизел tie; the smaller string wins.
	if got := *out[2].FuelType; got != "Бензин" {
		t.Errorf("fuel_type = %q, want Бензин", got)
	}
	if got := *out[1].Transmission; got != "Рачен" {
		t.Errorf("transmission = %q, want Рачен", got)
	}
	if got := *out[0].Color; got != "Unknown" {
		t.Errorf("color = %q, want Unknown", got)
	}
	if got := *out[2].Color; got != "Црна" {
		t.Errorf("known color overwritten: %q", got)
	}
	if got := *out[0].Description; got != "No Description" {
		t.Errorf("description = %q, want No Description", got)
	}
}

func TestCleanerDedupeKeepsLast(t *testing.T) {
	rows := csvTable([]string{"url", "title", "price_value", "description"},
		[]string{"a", "Golf", "5000", "first"},
		[]string{"b", "Astra", "3000", "only"},
		[]string{"a", "Golf", "5000.0", "second"},
		[]string{"a", "Golf", "5200", "repriced"},
	).Rows

	once := dedupe(rows)
	if len(once) != 3 {
		t.Fatalf("got %d rows, want 3", len(once))
	}
	var desc []string
	for _, r := range once {
		desc = append(desc, r["description"])
	}
	if diff := cmp.Diff([]string{"only", "second", "repriced"}, desc); diff != "" {
		t.Errorf("kept rows mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff(once, dedupe(once)); diff != "" {
		t.Errorf("dedupe is not idempotent (-first +second):\n%s", diff)
	}
}

func TestCleanerPriceFallback(t *testing.T) {
	c := newTestCleaner()
	in := csvTable([]string{"url", "price_value", "description"},
		[]string{"known", "3000", "Цена 9000 евра"},
		[]string{"missing", "", "Продавам, цена 4500 евра"},
		[]string{"zero", "0", "Цена: 5,500 €"},
		[]string{"nothing", "", "без цена"},
	)

	out, report := c.Clean([]*storage.Table{in})
	got := map[string]float64{}
	for _, l := range out {
		got[l.URL] = *l.PriceValue
	}
	want := map[string]float64{
		"known":   3000,
		"missing": 4500,
		"zero":    5500,
		// Median of 3000, 4500 and 5500.
		"nothing": 4500,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("prices mismatch (-want +got):\n%s", diff)
	}
	if report.PriceFallbacks != 2 {
		t.Errorf("PriceFallbacks = %d, want 2", report.PriceFallbacks)
	}
}

func TestCleanerDerivedColumns(t *testing.T) {
	c := newTestCleaner()
	in := csvTable([]string{"url", "price_value", "year", "mileage_start"},
		[]string{"new", "6000", "2025", "0"},
		[]string{"old", "5000", "2015", "100000"},
	)

	out, _ := c.Clean([]*storage.Table{in})

	n := out[0]
	if *n.CarAge != 0 || *n.PricePerYear != 6000 || *n.MileagePerYear != 0 {
		t.Errorf("same-year car: age=%d ppy=%.2f mpy=%.2f; want 0, 6000, 0", *n.CarAge, *n.PricePerYear, *n.MileagePerYear)
	}
	if n.PriceCategory != models.CategoryMidRange {
		t.Errorf("category = %q, want %q", n.PriceCategory, models.CategoryMidRange)
	}

	o := out[1]
	if *o.CarAge != 10 || *o.PricePerYear != 500 || *o.MileagePerYear != 10000 {
		t.Errorf("old car: age=%d ppy=%.2f mpy=%.2f; want 10, 500, 10000", *o.CarAge, *o.PricePerYear, *o.MileagePerYear)
	}
}

func TestCleanerTextNormalisation(t *testing.T) {
	c := newTestCleaner()
	in := csvTable([]string{"url", "title", "fuel_type", "manufacturer"},
		[]string{"u1", "  volkswagen   golf 7 ", "дизел", " Volkswagen  AG "},
	)

	out, _ := c.Clean([]*storage.Table{in})
	l := out[0]
	if *l.Title != "Volkswagen Golf 7" {
		t.Errorf("title = %q", *l.Title)
	}
	if *l.FuelType != "Дизел" {
		t.Errorf("fuel_type = %q", *l.FuelType)
	}
	if *l.Manufacturer != "Volkswagen AG" {
		t.Errorf("manufacturer = %q", *l.Manufacturer)
	}
}

func TestCleanerConcatUnionHeaders(t *testing.T) {
	c := newTestCleaner()
	a := csvTable([]string{"url", "year"}, []string{"u1", "2010"})
	b := csvTable([]string{"url", "Врати"}, []string{"u2", "5"})

	out, report := c.Clean([]*storage.Table{a, b})
	if report.InputRows != 2 || len(out) != 2 {
		t.Fatalf("InputRows=%d out=%d; want 2, 2", report.InputRows, len(out))
	}
	if v, ok := out[1].ExtraValue("Врати"); !ok || v != "5" {
		t.Errorf("extra column lost: %q, %v", v, ok)
	}
	// Imputed from the only known year.
	if *out[1].Year != 2010 {
		t.Errorf("year = %d, want 2010", *out[1].Year)
	}
}

func TestCleanerLoadNoInput(t *testing.T) {
	c := newTestCleaner()
	_, err := c.Load(filepath.Join(t.TempDir(), "parallel_car_listings*.csv"))
	if !errors.Is(err, ErrNoInput) {
		t.Errorf("err = %v, want ErrNoInput", err)
	}
}

func TestPriceCategory(t *testing.T) {
	tests := []struct {
		price float64
		want  string
	}{
		{0, ""},
		{4999.99, models.CategoryBudget},
		{5000, models.CategoryMidRange},
		{9999, models.CategoryMidRange},
		{10000, models.CategoryPremium},
		{19999, models.CategoryPremium},
		{20000, models.CategoryLuxury},
	}

	for _, tt := range tests {
		if got := PriceCategory(tt.price); got != tt.want {
			t.Errorf("PriceCategory(%.2f) = %q; want %q", tt.price, got, tt.want)
		}
	}
}

func TestCleanerMileagePairStaysOrdered(t *testing.T) {
	c := newTestCleaner()
	in := csvTable([]string{"url", "mileage_start", "mileage_end"},
		[]string{"u1", "150000", "200000"},
		[]string{"u2", "160000", "210000"},
		[]string{"u3", "", "5000"},
		[]string{"u4", "", ""},
		[]string{"u5", "90000", "80000"},
	)

	out, report := c.Clean([]*storage.Table{in})

	got := map[string][2]int{}
	for _, l := range out {
		if *l.MileageStart > *l.MileageEnd {
			t.Errorf("%s: mileage_start %d > mileage_end %d", l.URL, *l.MileageStart, *l.MileageEnd)
		}
		got[l.URL] = [2]int{*l.MileageStart, *l.MileageEnd}
	}
	want := map[string][2]int{
		"u1": {150000, 200000},
		"u2": {160000, 210000},
		"u3": {5000, 5000},
		// Medians of 5000, 80000, 150000, 160000 and 5000, 90000, 200000, 210000.
		"u4": {115000, 145000},
		"u5": {80000, 90000},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mileage mismatch (-want +got):\n%s", diff)
	}
	if report.Imputed["mileage_start"] != 1 || report.Imputed["mileage_end"] != 1 {
		t.Errorf("Imputed = %v, want one value per mileage column", report.Imputed)
	}
}
