package pazar3

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"car-scraper/config"
	"car-scraper/models"
)

func strp(s string) *string { return &s }

func TestNormalizeLocalizedLabelWins(t *testing.T) {
	n := NewNormalizer(config.DefaultFieldMapping())
	raw := &models.RawListing{
		URL: "u",
		Tags: []models.Tag{
			{Label: "Manufacturer", Value: "Audi"},
			{Label: "Производител", Value: "BMW"},
		},
	}

	l, errs := n.Normalize(raw)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if l.Manufacturer == nil || *l.Manufacturer != "BMW" {
		t.Errorf("Manufacturer = %v, want BMW", l.Manufacturer)
	}
	if len(l.Extra) != 0 {
		t.Errorf("mapped labels leaked into Extra: %v", l.Extra)
	}
}

func TestNormalizeConversions(t *testing.T) {
	n := NewNormalizer(config.DefaultFieldMapping())
	raw := &models.RawListing{
		URL:   "u",
		Views: strp("1.234"),
		Tags: []models.Tag{
			{Label: "Година", Value: "2015"},
			{Label: "Километража", Value: "175000 - 150000"},
			{Label: "Мотор", Value: "1,9 TDI"},
			{Label: "Огласено од", Value: "Физичко лице"},
			{Label: "Регистрација", Value: "03/2025"},
			{Label: "Гориво", Value: "Дизел"},
			{Label: "Врати", Value: "5"},
		},
	}

	l, errs := n.Normalize(raw)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if l.Year == nil || *l.Year != 2015 {
		t.Errorf("Year = %v", l.Year)
	}
	if l.MileageStart == nil || l.MileageEnd == nil || *l.MileageStart != 150000 || *l.MileageEnd != 175000 {
		t.Errorf("Mileage = %v..%v, want 150000..175000", l.MileageStart, l.MileageEnd)
	}
	if l.EngineSize == nil || *l.EngineSize != 1.9 {
		t.Errorf("EngineSize = %v", l.EngineSize)
	}
	if l.SellerType == nil || *l.SellerType != "Private" {
		t.Errorf("SellerType = %v", l.SellerType)
	}
	if l.RegistrationDate == nil || *l.RegistrationDate != "2025-03" {
		t.Errorf("RegistrationDate = %v", l.RegistrationDate)
	}
	if l.FuelType == nil || *l.FuelType != "Дизел" {
		t.Errorf("FuelType = %v", l.FuelType)
	}
	if l.Views == nil || *l.Views != 1234 {
		t.Errorf("Views = %v", l.Views)
	}

	want := []models.Tag{{Label: "Врати", Value: "5"}}
	if diff := cmp.Diff(want, l.Extra); diff != "" {
		t.Errorf("Extra mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeConversionFailureIsReported(t *testing.T) {
	n := NewNormalizer(config.DefaultFieldMapping())
	raw := &models.RawListing{
		URL: "u",
		Tags: []models.Tag{
			{Label: "Година", Value: "нова"},
			{Label: "Регистрација", Value: "непознато"},
			{Label: "Модел", Value: "Golf"},
		},
	}

	l, errs := n.Normalize(raw)
	if l.Year != nil {
		t.Errorf("Year = %v, want nil", *l.Year)
	}
	if l.RegistrationDate != nil {
		t.Errorf("RegistrationDate = %v, want nil", *l.RegistrationDate)
	}
	if l.Model == nil || *l.Model != "Golf" {
		t.Errorf("other fields should survive, Model = %v", l.Model)
	}
	if len(errs) != 1 || errs[0].Field != config.FieldYear || errs[0].Reason != models.ReasonConversion {
		t.Errorf("errs = %v, want one year conversion error", errs)
	}
}

func TestNormalizePrice(t *testing.T) {
	n := NewNormalizer(config.DefaultFieldMapping())
	amount := 5500.0

	tests := []struct {
		name         string
		raw          *models.RawListing
		wantValue    *float64
		wantCurrency string
		wantDisplay  string
	}{
		{
			name: "hidden amount wins",
			raw: &models.RawListing{
				PriceText:       strp("Цена: 6,000 €"),
				PriceAmount:     &amount,
				PriceAmountText: strp("5.500"),
				PriceCurrency:   strp("EUR"),
			},
			wantValue:    &amount,
			wantCurrency: "EUR",
			wantDisplay:  "5.500 EUR",
		},
		{
			name:         "visible text fallback",
			raw:          &models.RawListing{PriceText: strp("150.000 МКД")},
			wantValue:    func() *float64 { v := 150000.0; return &v }(),
			wantCurrency: "MKD",
			wantDisplay:  "150.000 МКД",
		},
		{
			name:         "unparseable means unknown",
			raw:          &models.RawListing{PriceText: strp("По договор")},
			wantValue:    nil,
			wantCurrency: "EUR",
			wantDisplay:  "По договор",
		},
	}

	for _, tt := range tests {
		l, _ := n.Normalize(tt.raw)
		if diff := cmp.Diff(tt.wantValue, l.PriceValue); diff != "" {
			t.Errorf("%s: PriceValue mismatch (-want +got):\n%s", tt.name, diff)
		}
		if l.PriceCurrency == nil || *l.PriceCurrency != tt.wantCurrency {
			t.Errorf("%s: PriceCurrency = %v, want %s", tt.name, l.PriceCurrency, tt.wantCurrency)
		}
		if l.PriceDisplay == nil || *l.PriceDisplay != tt.wantDisplay {
			t.Errorf("%s: PriceDisplay = %v, want %s", tt.name, l.PriceDisplay, tt.wantDisplay)
		}
	}
}

func TestNormalizeCustomMapping(t *testing.T) {
	mapping := config.NewFieldMapping(map[string][]string{
		config.FieldManufacturer: {"Марка"},
		"doors":                  {"Врати"},
	})
	n := NewNormalizer(mapping)
	raw := &models.RawListing{Tags: []models.Tag{
		{Label: "Марка", Value: "Škoda"},
		{Label: "Врати", Value: "5"},
		{Label: "Производител", Value: "ignored"},
	}}

	l, _ := n.Normalize(raw)
	if l.Manufacturer == nil || *l.Manufacturer != "Škoda" {
		t.Errorf("Manufacturer = %v, want Škoda", l.Manufacturer)
	}
	if v, ok := l.ExtraValue("doors"); !ok || v != "5" {
		t.Errorf("doors = %q, %v", v, ok)
	}
	if v, ok := l.ExtraValue("Производител"); !ok || v != "ignored" {
		t.Errorf("unmapped label should be kept verbatim, got %q, %v", v, ok)
	}
}
