package storage

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"car-scraper/models"
)

// Kind is the storage type of a column.
type Kind int

const (
	KindText Kind = iota
	KindInt
	KindFloat
	KindBool
)

// Column maps one canonical field to and from its stored form. Values are
// always one of string, int, float64 or bool; nil means absent.
type Column struct {
	Name  string
	Kind  Kind
	value func(l *models.CleanListing) any
	parse func(l *models.CleanListing, s string) error
}

// Value returns the typed value for l, or nil when the field is absent.
func (c Column) Value(l *models.CleanListing) any {
	return c.value(l)
}

// Format renders the value as CSV text. ok is false when the field is absent.
func (c Column) Format(l *models.CleanListing) (string, bool) {
	switch v := c.value(l).(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case int:
		return strconv.Itoa(v), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		return fmt.Sprint(v), true
	}
}

// Parse sets the field on l from its stored text form.
func (c Column) Parse(l *models.CleanListing, s string) error {
	return c.parse(l, s)
}

func textColumn(name string, field func(l *models.CleanListing) **string) Column {
	return Column{
		Name: name,
		Kind: KindText,
		value: func(l *models.CleanListing) any {
			if p := *field(l); p != nil {
				return *p
			}
			return nil
		},
		parse: func(l *models.CleanListing, s string) error {
			*field(l) = &s
			return nil
		},
	}
}

func intColumn(name string, field func(l *models.CleanListing) **int) Column {
	return Column{
		Name: name,
		Kind: KindInt,
		value: func(l *models.CleanListing) any {
			if p := *field(l); p != nil {
				return *p
			}
			return nil
		},
		parse: func(l *models.CleanListing, s string) error {
			n, err := ParseInt(s)
			if err != nil {
				return err
			}
			*field(l) = &n
			return nil
		},
	}
}

func floatColumn(name string, field func(l *models.CleanListing) **float64) Column {
	return Column{
		Name: name,
		Kind: KindFloat,
		value: func(l *models.CleanListing) any {
			if p := *field(l); p != nil {
				return *p
			}
			return nil
		},
		parse: func(l *models.CleanListing, s string) error {
			f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return err
			}
			*field(l) = &f
			return nil
		},
	}
}

// ParseInt accepts plain integers and integral floats such as "2015.0".
// Values that do not fit in an int are rejected.
func ParseInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%q is not a whole number", s)
	}
	if f < math.MinInt || f >= -math.MinInt {
		return 0, fmt.Errorf("%q is out of range", s)
	}
	return int(f), nil
}

// ListingColumns is the canonical column order for scraped listings.
var ListingColumns = []Column{
	{
		Name:  "url",
		Kind:  KindText,
		value: func(l *models.CleanListing) any { return l.URL },
		parse: func(l *models.CleanListing, s string) error {
			l.URL = strings.TrimSpace(s)
			return nil
		},
	},
	textColumn("title", func(l *models.CleanListing) **string { return &l.Title }),
	textColumn("description", func(l *models.CleanListing) **string { return &l.Description }),
	textColumn("price_display", func(l *models.CleanListing) **string { return &l.PriceDisplay }),
	floatColumn("price_value", func(l *models.CleanListing) **float64 { return &l.PriceValue }),
	textColumn("price_currency", func(l *models.CleanListing) **string { return &l.PriceCurrency }),
	intColumn("mileage_start", func(l *models.CleanListing) **int { return &l.MileageStart }),
	intColumn("mileage_end", func(l *models.CleanListing) **int { return &l.MileageEnd }),
	intColumn("year", func(l *models.CleanListing) **int { return &l.Year }),
	textColumn("manufacturer", func(l *models.CleanListing) **string { return &l.Manufacturer }),
	textColumn("model", func(l *models.CleanListing) **string { return &l.Model }),
	textColumn("fuel_type", func(l *models.CleanListing) **string { return &l.FuelType }),
	textColumn("transmission", func(l *models.CleanListing) **string { return &l.Transmission }),
	floatColumn("engine_size", func(l *models.CleanListing) **float64 { return &l.EngineSize }),
	textColumn("seller_type", func(l *models.CleanListing) **string { return &l.SellerType }),
	textColumn("color", func(l *models.CleanListing) **string { return &l.Color }),
	textColumn("condition", func(l *models.CleanListing) **string { return &l.Condition }),
	textColumn("listing_type", func(l *models.CleanListing) **string { return &l.ListingType }),
	textColumn("registration_date", func(l *models.CleanListing) **string { return &l.RegistrationDate }),
	textColumn("location", func(l *models.CleanListing) **string { return &l.Location }),
	textColumn("address", func(l *models.CleanListing) **string { return &l.Address }),
	{
		Name: "coordinates",
		Kind: KindText,
		value: func(l *models.CleanListing) any {
			if l.Coordinates == nil {
				return nil
			}
			return l.Coordinates.String()
		},
		parse: func(l *models.CleanListing, s string) error {
			c, err := models.ParseCoordinates(s)
			if err != nil {
				return err
			}
			l.Coordinates = c
			return nil
		},
	},
	{
		Name: "images",
		Kind: KindText,
		value: func(l *models.CleanListing) any {
			if len(l.Images) == 0 {
				return nil
			}
			b, _ := json.Marshal(l.Images)
			return string(b)
		},
		parse: func(l *models.CleanListing, s string) error {
			var images []string
			if err := json.Unmarshal([]byte(s), &images); err != nil {
				return err
			}
			l.Images = images
			return nil
		},
	},
	intColumn("views", func(l *models.CleanListing) **int { return &l.Views }),
	textColumn("publish_date", func(l *models.CleanListing) **string { return &l.PublishDate }),
	textColumn("publish_time", func(l *models.CleanListing) **string { return &l.PublishTime }),
	textColumn("phone", func(l *models.CleanListing) **string { return &l.Phone }),
	{
		Name:  "has_message_button",
		Kind:  KindBool,
		value: func(l *models.CleanListing) any { return l.HasMessageButton },
		parse: func(l *models.CleanListing, s string) error {
			b, err := strconv.ParseBool(strings.TrimSpace(s))
			if err != nil {
				return err
			}
			l.HasMessageButton = b
			return nil
		},
	},
}

// DerivedColumns follow ListingColumns in the cleaned dataset.
var DerivedColumns = []Column{
	intColumn("car_age", func(l *models.CleanListing) **int { return &l.CarAge }),
	floatColumn("price_per_year", func(l *models.CleanListing) **float64 { return &l.PricePerYear }),
	floatColumn("mileage_per_year", func(l *models.CleanListing) **float64 { return &l.MileagePerYear }),
	{
		Name: "price_category",
		Kind: KindText,
		value: func(l *models.CleanListing) any {
			if l.PriceCategory == "" {
				return nil
			}
			return l.PriceCategory
		},
		parse: func(l *models.CleanListing, s string) error {
			l.PriceCategory = s
			return nil
		},
	},
}

// CleanColumns is the full column order of the cleaned dataset.
var CleanColumns = append(append([]Column(nil), ListingColumns...), DerivedColumns...)

var columnsByName = func() map[string]Column {
	m := make(map[string]Column, len(CleanColumns))
	for _, c := range CleanColumns {
		m[c.Name] = c
	}
	return m
}()

// LookupColumn returns the canonical column called name.
func LookupColumn(name string) (Column, bool) {
	c, ok := columnsByName[name]
	return c, ok
}

// ListingFromRow rebuilds a listing from one CSV row. Known columns are
// converted to their canonical types; a value that does not convert is
// dropped and reported. Unknown columns are kept as extras. The mileage pair
// comes back ordered, as the scraper writes it.
func ListingFromRow(headers []string, row Row) (*models.CleanListing, []models.FieldError) {
	l := &models.CleanListing{}
	var errs []models.FieldError
	for _, h := range headers {
		v := row[h]
		if strings.TrimSpace(v) == "" {
			continue
		}
		col, ok := LookupColumn(h)
		if !ok {
			l.SetExtra(h, v)
			continue
		}
		if err := col.Parse(l, v); err != nil {
			errs = append(errs, models.FieldError{Field: h, Reason: models.ReasonConversion, Err: err})
		}
	}
	l.AlignMileage()
	return l, errs
}
