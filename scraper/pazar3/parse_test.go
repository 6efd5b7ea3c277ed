package pazar3

import "testing"

func TestParsePriceText(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"Цена: 5,500 €", 5500},
		{"3000 EUR", 3000},
		{"5 500 €", 5500},
		{"1.200,50 EUR", 1200.50},
		{"12.500", 12500},
		{"€ 7.900", 7900},
		{"150.000 МКД", 150000},
		{"Продавам Голф, цена 4500 евра по договор", 4500},
		{"По договор", 0},
		{"no price here", 0},
		{"", 0},
	}

	for _, tt := range tests {
		got := ParsePriceText(tt.raw)
		if got != tt.want {
			t.Errorf("ParsePriceText(%q) = %.2f; want %.2f", tt.raw, got, tt.want)
		}
	}
}

func TestParseCurrency(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"5,500 €", "EUR"},
		{"3000 EUR", "EUR"},
		{"150.000 МКД", "MKD"},
		{"300 ден.", "MKD"},
		{"По договор", "EUR"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := ParseCurrency(tt.raw); got != tt.want {
			t.Errorf("ParseCurrency(%q) = %q; want %q", tt.raw, got, tt.want)
		}
	}
}

func TestParseMileageRange(t *testing.T) {
	tests := []struct {
		raw        string
		start, end int
		ok         bool
	}{
		{"100000 - 150000", 100000, 150000, true},
		{"150000 - 100000", 100000, 150000, true},
		{"120.000 km", 120000, 120000, true},
		{"0 - 4.999 км", 0, 4999, true},
		{"непознато", 0, 0, false},
		{"", 0, 0, false},
	}

	for _, tt := range tests {
		start, end, ok := ParseMileageRange(tt.raw)
		if start != tt.start || end != tt.end || ok != tt.ok {
			t.Errorf("ParseMileageRange(%q) = %d, %d, %v; want %d, %d, %v",
				tt.raw, start, end, ok, tt.start, tt.end, tt.ok)
		}
	}
}

func TestParseEngineSize(t *testing.T) {
	tests := []struct {
		raw     string
		want    float64
		wantErr bool
	}{
		{"1,9 TDI", 1.9, false},
		{"2.0", 2.0, false},
		{"1598 cc", 1598, false},
		{"TDI", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseEngineSize(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseEngineSize(%q) error = %v; wantErr %v", tt.raw, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseEngineSize(%q) = %.2f; want %.2f", tt.raw, got, tt.want)
		}
	}
}

func TestParseRegistrationDate(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"03/2025", "2025-03", true},
		{" 3/2025 ", "2025-03", true},
		{"12/2019", "2019-12", true},
		{"13/2025", "", false},
		{"2025", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseRegistrationDate(tt.raw)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseRegistrationDate(%q) = %q, %v; want %q, %v", tt.raw, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseViews(t *testing.T) {
	if got, err := ParseViews("1.234"); err != nil || got != 1234 {
		t.Errorf("ParseViews(1.234) = %d, %v; want 1234", got, err)
	}
	if _, err := ParseViews("—"); err == nil {
		t.Error("ParseViews without digits should fail")
	}
}

func TestSellerType(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Физичко лице", "Private"},
		{"Правно лице", "Business"},
		{"Private person", "Private"},
		{"Auto Salon Skopje", "Business"},
	}

	for _, tt := range tests {
		if got := SellerType(tt.raw); got != tt.want {
			t.Errorf("SellerType(%q) = %q; want %q", tt.raw, got, tt.want)
		}
	}
}
