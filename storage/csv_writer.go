package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"car-scraper/config"
	"car-scraper/models"
)

// CSVWriter writes listings to a UTF-8 CSV file with a byte-order mark so
// spreadsheet tools pick up the Cyrillic text. It is safe for concurrent use.
type CSVWriter struct {
	mu      sync.Mutex
	file    *os.File
	writer  *csv.Writer
	mapping config.FieldMapping
}

// NewCSVWriter creates (or truncates) the CSV file at the given path.
// Intermediate directories are created automatically. mapping renames extra
// tag labels to canonical names where it knows them.
func NewCSVWriter(path string, mapping config.FieldMapping) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}
	if _, err := f.Write(utf8BOM); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write bom: %w", err)
	}

	return &CSVWriter{file: f, writer: csv.NewWriter(f), mapping: mapping}, nil
}

// WriteListings writes scraped listings, one row each.
func (c *CSVWriter) WriteListings(listings []*models.Listing) error {
	clean := make([]*models.CleanListing, len(listings))
	for i, l := range listings {
		clean[i] = &models.CleanListing{Listing: *l}
	}
	return c.write(ListingColumns, clean)
}

// WriteClean writes the cleaned dataset including the derived columns.
func (c *CSVWriter) WriteClean(listings []*models.CleanListing) error {
	return c.write(CleanColumns, listings)
}

// write emits the header and rows. Canonical columns come first in fixed
// order, restricted to those with at least one value, then extra labels in
// the order they were first seen.
func (c *CSVWriter) write(columns []Column, listings []*models.CleanListing) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var present []Column
	for _, col := range columns {
		for _, l := range listings {
			if _, ok := col.Format(l); ok {
				present = append(present, col)
				break
			}
		}
	}

	taken := make(map[string]bool, len(present))
	header := make([]string, 0, len(present))
	for _, col := range present {
		header = append(header, col.Name)
		taken[col.Name] = true
	}

	extras := make([]map[string]string, len(listings))
	var extraNames []string
	for i, l := range listings {
		extras[i] = make(map[string]string, len(l.Extra))
		for _, t := range l.Extra {
			name := c.extraName(t.Label)
			extras[i][name] = t.Value
			if !taken[name] {
				taken[name] = true
				extraNames = append(extraNames, name)
			}
		}
	}
	header = append(header, extraNames...)

	if err := c.writer.Write(header); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}

	for i, l := range listings {
		row := make([]string, 0, len(header))
		for _, col := range present {
			v, _ := col.Format(l)
			row = append(row, v)
		}
		for _, name := range extraNames {
			row = append(row, extras[i][name])
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// extraName maps a tag label to its canonical name when one is known. A name
// that would shadow a canonical column is prefixed instead.
func (c *CSVWriter) extraName(label string) string {
	name := label
	if f, ok := c.mapping.Canonical(label); ok {
		name = f
	}
	if _, clash := LookupColumn(name); clash {
		name = "tag_" + name
	}
	return name
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}
