package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Coordinates is the map pin attached to a listing.
type Coordinates struct {
	Lat float64
	Lon float64
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%g,%g", c.Lat, c.Lon)
}

// ParseCoordinates reads the "lat,lon" form produced by String.
func ParseCoordinates(s string) (*Coordinates, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return nil, fmt.Errorf("coordinates %q: want lat,lon", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return nil, fmt.Errorf("coordinates %q: %w", s, err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return nil, fmt.Errorf("coordinates %q: %w", s, err)
	}
	return &Coordinates{Lat: lat, Lon: lon}, nil
}

// Tag is one label/value pair from the tags area of a listing page.
// Labels are kept exactly as the site renders them (usually Macedonian).
type Tag struct {
	Label string
	Value string
}

// RawListing holds everything pulled off a single listing page before any
// label canonicalisation or type conversion.
type RawListing struct {
	URL string

	Title       *string
	Description *string
	PriceText   *string
	Address     *string
	PublishDate *string
	PublishTime *string
	Views       *string
	Phone       *string

	Images           []string
	Coordinates      *Coordinates
	HasMessageButton bool

	// Hidden price attribute and its currency node, when the page has them.
	PriceAmount     *float64
	PriceAmountText *string
	PriceCurrency   *string

	Tags []Tag
}

// Tag returns the value of the first tag carrying label.
func (r *RawListing) Tag(label string) (string, bool) {
	for _, t := range r.Tags {
		if t.Label == label {
			return t.Value, true
		}
	}
	return "", false
}

// Listing is one car ad with every attribute in canonical form. A nil
// pointer means the attribute was not present on the page; that is normal.
type Listing struct {
	URL string

	Title         *string
	Description   *string
	PriceDisplay  *string
	PriceValue    *float64
	PriceCurrency *string

	MileageStart *int
	MileageEnd   *int
	Year         *int
	EngineSize   *float64

	Manufacturer     *string
	Model            *string
	FuelType         *string
	Transmission     *string
	SellerType       *string
	Color            *string
	Location         *string
	Condition        *string
	ListingType      *string
	RegistrationDate *string

	Address     *string
	Coordinates *Coordinates
	Images      []string
	Views       *int
	PublishDate *string
	PublishTime *string
	Phone       *string

	HasMessageButton bool

	// Extra keeps tag labels that have no canonical field, in page order.
	Extra []Tag
}

// ExtraValue returns the value stored under an extra label.
func (l *Listing) ExtraValue(label string) (string, bool) {
	for _, t := range l.Extra {
		if t.Label == label {
			return t.Value, true
		}
	}
	return "", false
}

// SetExtra replaces or appends an extra label.
func (l *Listing) SetExtra(label, value string) {
	for i, t := range l.Extra {
		if t.Label == label {
			l.Extra[i].Value = value
			return
		}
	}
	l.Extra = append(l.Extra, Tag{Label: label, Value: value})
}

// AlignMileage keeps the mileage pair ordered. A lone known side is copied
// to the other, and a reversed pair is swapped so MileageEnd >= MileageStart.
func (l *Listing) AlignMileage() {
	switch {
	case l.MileageStart == nil && l.MileageEnd == nil:
		return
	case l.MileageStart == nil:
		v := *l.MileageEnd
		l.MileageStart = &v
	case l.MileageEnd == nil:
		v := *l.MileageStart
		l.MileageEnd = &v
	case *l.MileageStart > *l.MileageEnd:
		l.MileageStart, l.MileageEnd = l.MileageEnd, l.MileageStart
	}
}

// Price category buckets.
const (
	CategoryBudget   = "Budget"
	CategoryMidRange = "Mid-range"
	CategoryPremium  = "Premium"
	CategoryLuxury   = "Luxury"
)

// CleanListing is a Listing after imputation with the derived metrics added.
type CleanListing struct {
	Listing

	CarAge         *int
	PricePerYear   *float64
	MileagePerYear *float64
	PriceCategory  string
}

// InsightReport holds the computed analytics over the cleaned dataset.
type InsightReport struct {
	TotalListings   int
	PricedListings  int
	AveragePrice    float64
	MinPrice        float64
	MaxPrice        float64
	AverageAge      float64
	MostExpensive   *CleanListing
	ByManufacturer  map[string]int
	ByLocation      map[string]int
	ByPriceCategory map[string]int
}
