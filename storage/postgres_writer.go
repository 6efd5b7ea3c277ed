package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"

	"car-scraper/models"
	"car-scraper/utils"
)

// PostgresWriter persists the cleaned dataset to PostgreSQL.
type PostgresWriter struct {
	db *sql.DB
	d  dialect
}

// NewPostgresWriter opens a connection to PostgreSQL, waiting for the server
// with retry, runs schema migrations and returns a ready-to-use writer.
func NewPostgresWriter(ctx context.Context, dsn string, retry *utils.RetryConfig) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	if err := retry.Do(ctx, "postgres-ping", func() error { return db.PingContext(ctx) }); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db, d: postgresDialect}
	if err := pw.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	table := pw.d.table
	_, err := pw.db.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id SERIAL PRIMARY KEY,
			%s,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_%[1]s_price        ON %[1]s(price_value);
		CREATE INDEX IF NOT EXISTS idx_%[1]s_manufacturer ON %[1]s(manufacturer);
		CREATE INDEX IF NOT EXISTS idx_%[1]s_year         ON %[1]s(year);
		CREATE INDEX IF NOT EXISTS idx_%[1]s_category     ON %[1]s(price_category);
	`, table, strings.Join(pw.d.columnDefs(), ",\n\t\t\t")))
	return err
}

// Clear deletes all existing rows from the table.
func (pw *PostgresWriter) Clear() error {
	_, err := pw.db.Exec("DELETE FROM " + pw.d.table)
	if err != nil {
		return fmt.Errorf("postgres: clear: %w", err)
	}
	return nil
}

// WriteClean batch-inserts the cleaned listings, clearing old data first.
// A url that is already stored is skipped.
func (pw *PostgresWriter) WriteClean(listings []*models.CleanListing) error {
	if len(listings) == 0 {
		return nil
	}

	if err := pw.Clear(); err != nil {
		return err
	}

	const batchSize = 50
	for i := 0; i < len(listings); i += batchSize {
		end := i + batchSize
		if end > len(listings) {
			end = len(listings)
		}
		if err := pw.insertBatch(listings[i:end]); err != nil {
			return fmt.Errorf("postgres: insert batch: %w", err)
		}
	}
	return nil
}

func (pw *PostgresWriter) insertBatch(batch []*models.CleanListing) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]any, 0, len(batch)*len(CleanColumns))

	for idx, l := range batch {
		valueStrings = append(valueStrings, pw.d.valueTuple(idx))
		valueArgs = append(valueArgs, rowArgs(l)...)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES %s
		ON CONFLICT (url) DO NOTHING
	`, pw.d.table, pw.d.columnList(), strings.Join(valueStrings, ","))

	_, err := pw.db.Exec(query, valueArgs...)
	return err
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// FetchAll retrieves all stored listings in insertion order.
func (pw *PostgresWriter) FetchAll() ([]*models.CleanListing, error) {
	rows, err := pw.db.Query(fmt.Sprintf(`SELECT %s FROM %s ORDER BY id`, pw.d.columnList(), pw.d.table))
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch all: %w", err)
	}
	defer rows.Close()

	listings, err := scanListings(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	return listings, nil
}
