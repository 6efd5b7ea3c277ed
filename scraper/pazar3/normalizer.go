package pazar3

import (
	"fmt"
	"strconv"
	"strings"

	"car-scraper/config"
	"car-scraper/models"
)

// assign stores a canonical tag value on a Listing.
type assign func(l *models.Listing, value string) error

func text(field func(l *models.Listing) **string) assign {
	return func(l *models.Listing, value string) error {
		v := value
		*field(l) = &v
		return nil
	}
}

var assigners = map[string]assign{
	config.FieldCondition:    text(func(l *models.Listing) **string { return &l.Condition }),
	config.FieldTransmission: text(func(l *models.Listing) **string { return &l.Transmission }),
	config.FieldFuelType:     text(func(l *models.Listing) **string { return &l.FuelType }),
	config.FieldLocation:     text(func(l *models.Listing) **string { return &l.Location }),
	config.FieldColor:        text(func(l *models.Listing) **string { return &l.Color }),
	config.FieldManufacturer: text(func(l *models.Listing) **string { return &l.Manufacturer }),
	config.FieldModel:        text(func(l *models.Listing) **string { return &l.Model }),
	config.FieldListingType:  text(func(l *models.Listing) **string { return &l.ListingType }),

	config.FieldYear: func(l *models.Listing, value string) error {
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return err
		}
		l.Year = &n
		return nil
	},
	config.FieldMileage: func(l *models.Listing, value string) error {
		start, end, ok := ParseMileageRange(value)
		if !ok {
			return fmt.Errorf("mileage %q: %w", value, errNoNumber)
		}
		l.MileageStart, l.MileageEnd = &start, &end
		return nil
	},
	config.FieldEngineSize: func(l *models.Listing, value string) error {
		f, err := ParseEngineSize(value)
		if err != nil {
			return err
		}
		l.EngineSize = &f
		return nil
	},
	config.FieldSellerType: func(l *models.Listing, value string) error {
		s := SellerType(value)
		l.SellerType = &s
		return nil
	},
	config.FieldRegistrationDate: func(l *models.Listing, value string) error {
		// An unreadable date is simply absent.
		if d, ok := ParseRegistrationDate(value); ok {
			l.RegistrationDate = &d
		}
		return nil
	},
}

// Normalizer turns a RawListing into a canonical Listing.
type Normalizer struct {
	mapping config.FieldMapping
}

func NewNormalizer(mapping config.FieldMapping) *Normalizer {
	return &Normalizer{mapping: mapping}
}

// Normalize resolves tag labels to canonical fields and converts their values.
// When both the localized and the English label are present the localized one
// wins. Conversion failures leave the field nil and are reported.
func (n *Normalizer) Normalize(raw *models.RawListing) (*models.Listing, []models.FieldError) {
	var errs []models.FieldError
	l := &models.Listing{
		URL:              raw.URL,
		Title:            raw.Title,
		Description:      raw.Description,
		Address:          raw.Address,
		Coordinates:      raw.Coordinates,
		PublishDate:      raw.PublishDate,
		PublishTime:      raw.PublishTime,
		Phone:            raw.Phone,
		HasMessageButton: raw.HasMessageButton,
	}
	if len(raw.Images) > 0 {
		l.Images = append([]string(nil), raw.Images...)
	}

	if raw.Views != nil {
		v, err := ParseViews(*raw.Views)
		if err != nil {
			errs = append(errs, models.FieldError{Field: "views", Reason: models.ReasonConversion, Err: err})
		} else {
			l.Views = &v
		}
	}

	n.normalizePrice(raw, l)

	for _, field := range n.mapping.Fields() {
		value, ok := n.lookup(raw, field)
		if !ok {
			continue
		}
		set, known := assigners[field]
		if !known {
			l.SetExtra(field, value)
			continue
		}
		if err := set(l, value); err != nil {
			errs = append(errs, models.FieldError{Field: field, Reason: models.ReasonConversion, Err: err})
		}
	}

	for _, t := range raw.Tags {
		if _, mapped := n.mapping.Canonical(t.Label); !mapped {
			l.SetExtra(t.Label, t.Value)
		}
	}
	return l, errs
}

// lookup returns the value under the highest-precedence label present.
func (n *Normalizer) lookup(raw *models.RawListing, field string) (string, bool) {
	for _, label := range n.mapping.Sources(field) {
		if v, ok := raw.Tag(label); ok {
			return v, true
		}
	}
	return "", false
}

// normalizePrice prefers the hidden numeric amount and falls back to parsing
// the visible price text. A parsed price of 0 means unknown.
func (n *Normalizer) normalizePrice(raw *models.RawListing, l *models.Listing) {
	if raw.PriceAmount != nil {
		v := *raw.PriceAmount
		if v > 0 {
			l.PriceValue = &v
		}
		var cur string
		if raw.PriceCurrency != nil {
			cur = ParseCurrency(*raw.PriceCurrency)
			l.PriceCurrency = &cur
		}
		if raw.PriceAmountText != nil {
			display := *raw.PriceAmountText
			if raw.PriceCurrency != nil {
				display += " " + *raw.PriceCurrency
			}
			l.PriceDisplay = &display
		} else {
			l.PriceDisplay = raw.PriceText
		}
		return
	}

	if raw.PriceText == nil {
		return
	}
	l.PriceDisplay = raw.PriceText
	if v := ParsePriceText(*raw.PriceText); v > 0 {
		l.PriceValue = &v
	}
	if cur := ParseCurrency(*raw.PriceText); cur != "" {
		l.PriceCurrency = &cur
	}
}
