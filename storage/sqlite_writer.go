package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"car-scraper/models"
)

// SQLiteWriter stores the cleaned dataset in a single-file SQLite database.
// Every write replaces the table.
type SQLiteWriter struct {
	db *sql.DB
	d  dialect
}

func NewSQLiteWriter(path string) (*SQLiteWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("sqlite: create output dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}
	return &SQLiteWriter{db: db, d: sqliteDialect}, nil
}

func (sw *SQLiteWriter) WriteClean(listings []*models.CleanListing) error {
	table := sw.d.table
	if _, err := sw.db.Exec(fmt.Sprintf(`DROP TABLE IF EXISTS %q`, table)); err != nil {
		return fmt.Errorf("sqlite: drop: %w", err)
	}
	if _, err := sw.db.Exec(fmt.Sprintf(`CREATE TABLE %q (%s)`, table, strings.Join(sw.d.columnDefs(), ","))); err != nil {
		return fmt.Errorf("sqlite: create: %w", err)
	}

	tx, err := sw.db.Begin()
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	defer tx.Rollback()

	// INSERT OR IGNORE keeps the first row for a url, like the Postgres sink.
	stmt, err := tx.Prepare(fmt.Sprintf(`INSERT OR IGNORE INTO %q (%s) VALUES %s`, table, sw.d.columnList(), sw.d.valueTuple(0)))
	if err != nil {
		return fmt.Errorf("sqlite: prepare: %w", err)
	}
	defer stmt.Close()

	for _, l := range listings {
		if _, err := stmt.Exec(rowArgs(l)...); err != nil {
			return fmt.Errorf("sqlite: insert %s: %w", l.URL, err)
		}
	}

	for _, idx := range []string{
		`CREATE INDEX IF NOT EXISTS idx_car_listings_cleaned_price ON car_listings_cleaned(price_value)`,
		`CREATE INDEX IF NOT EXISTS idx_car_listings_cleaned_manufacturer ON car_listings_cleaned(manufacturer)`,
		`CREATE INDEX IF NOT EXISTS idx_car_listings_cleaned_year ON car_listings_cleaned(year)`,
	} {
		if _, err := tx.Exec(idx); err != nil {
			return fmt.Errorf("sqlite: index: %w", err)
		}
	}
	return tx.Commit()
}

// FetchAll reads the table back in insertion order.
func (sw *SQLiteWriter) FetchAll() ([]*models.CleanListing, error) {
	rows, err := sw.db.Query(fmt.Sprintf(`SELECT %s FROM %q ORDER BY rowid`, sw.d.columnList(), sw.d.table))
	if err != nil {
		return nil, fmt.Errorf("sqlite: fetch all: %w", err)
	}
	defer rows.Close()

	listings, err := scanListings(rows)
	if err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}
	return listings, nil
}

func (sw *SQLiteWriter) Close() error {
	return sw.db.Close()
}
