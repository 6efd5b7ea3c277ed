package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

// Canonical field names that tag labels can map onto.
const (
	FieldCondition        = "condition"
	FieldYear             = "year"
	FieldTransmission     = "transmission"
	FieldMileage          = "mileage"
	FieldFuelType         = "fuel_type"
	FieldRegistrationDate = "registration_date"
	FieldSellerType       = "seller_type"
	FieldLocation         = "location"
	FieldColor            = "color"
	FieldManufacturer     = "manufacturer"
	FieldModel            = "model"
	FieldListingType      = "listing_type"
	FieldEngineSize       = "engine_size"
)

var defaultSources = map[string][]string{
	FieldCondition:        {"Состојба", "Condition"},
	FieldYear:             {"Година", "Year"},
	FieldTransmission:     {"Менувач", "Gear Box"},
	FieldMileage:          {"Километража", "Mileage"},
	FieldFuelType:         {"Гориво", "Fuel"},
	FieldRegistrationDate: {"Регистрација", "Registration"},
	FieldSellerType:       {"Огласено од", "Advertised by"},
	FieldLocation:         {"Локација", "Location"},
	FieldColor:            {"Боја", "Color"},
	FieldManufacturer:     {"Производител", "Manufacturer"},
	FieldModel:            {"Модел", "Model"},
	FieldListingType:      {"Вид на оглас", "Ad type"},
	FieldEngineSize:       {"Мотор", "Engine"},
}

// FieldMapping maps source tag labels onto canonical field names. For each
// canonical field it keeps the labels in precedence order: the localized
// label first, then the English one. A FieldMapping is immutable once built.
type FieldMapping struct {
	sources map[string][]string
	labels  map[string]string
}

// NewFieldMapping builds a mapping from canonical field -> ordered labels.
// A label claimed by two fields belongs to the field that sorts first.
func NewFieldMapping(sources map[string][]string) FieldMapping {
	m := FieldMapping{
		sources: make(map[string][]string, len(sources)),
		labels:  make(map[string]string),
	}
	fields := make([]string, 0, len(sources))
	for f := range sources {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	for _, f := range fields {
		var labels []string
		for _, l := range sources[f] {
			l = strings.TrimSpace(l)
			if l == "" {
				continue
			}
			labels = append(labels, l)
			if _, taken := m.labels[l]; !taken {
				m.labels[l] = f
			}
		}
		m.sources[f] = labels
	}
	return m
}

// DefaultFieldMapping returns the built-in Macedonian/English label table.
func DefaultFieldMapping() FieldMapping {
	return NewFieldMapping(defaultSources)
}

// Sources returns the labels for field in precedence order.
func (m FieldMapping) Sources(field string) []string {
	return append([]string(nil), m.sources[field]...)
}

// Canonical returns the canonical field for a source label.
func (m FieldMapping) Canonical(label string) (string, bool) {
	f, ok := m.labels[strings.TrimSpace(label)]
	return f, ok
}

// Fields lists every canonical field in the mapping, sorted.
func (m FieldMapping) Fields() []string {
	out := make([]string, 0, len(m.sources))
	for f := range m.sources {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

type mappingFile struct {
	Fields map[string][]string `json:"fields"`
}

// LoadFieldMapping returns the default mapping overlaid with the JSON5 file
// at path and then with its "<name>.local.<ext>" sibling. Entries in a file
// replace the default label list for that field. Missing files are not an
// error.
func LoadFieldMapping(path string) (FieldMapping, error) {
	merged := mappingFile{Fields: make(map[string][]string, len(defaultSources))}
	for f, labels := range defaultSources {
		merged.Fields[f] = append([]string(nil), labels...)
	}
	if path == "" {
		return NewFieldMapping(merged.Fields), nil
	}

	for _, p := range []string{path, localVariant(path)} {
		override, err := readMappingFile(p)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return FieldMapping{}, err
		}
		if err := mergo.Merge(&merged, override, mergo.WithOverride); err != nil {
			return FieldMapping{}, fmt.Errorf("config: merge %s: %w", p, err)
		}
	}
	return NewFieldMapping(merged.Fields), nil
}

func readMappingFile(path string) (mappingFile, error) {
	var out mappingFile
	b, err := os.ReadFile(path)
	if err != nil {
		return out, err
	}
	if err := json5.Unmarshal(b, &out); err != nil {
		return out, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return out, nil
}

// localVariant turns "dir/name.ext" into "dir/name.local.ext".
func localVariant(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".local" + ext
}
