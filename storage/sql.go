package storage

import (
	"database/sql"
	"fmt"
	"strings"

	"car-scraper/models"
)

// dialect holds the bits of SQL that differ between the database sinks.
type dialect struct {
	table       string
	types       map[Kind]string
	placeholder func(n int) string
}

var postgresDialect = dialect{
	table: "car_listings",
	types: map[Kind]string{
		KindText:  "TEXT",
		KindInt:   "INTEGER",
		KindFloat: "DOUBLE PRECISION",
		KindBool:  "BOOLEAN",
	},
	placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
}

var sqliteDialect = dialect{
	table: "car_listings_cleaned",
	types: map[Kind]string{
		KindText:  "TEXT",
		KindInt:   "INTEGER",
		KindFloat: "REAL",
		KindBool:  "INTEGER",
	},
	placeholder: func(int) string { return "?" },
}

// columnDefs returns the column definitions for CleanColumns; url is the
// natural key.
func (d dialect) columnDefs() []string {
	defs := make([]string, 0, len(CleanColumns))
	for _, c := range CleanColumns {
		def := fmt.Sprintf("%q %s", c.Name, d.types[c.Kind])
		if c.Name == "url" {
			def += " UNIQUE NOT NULL"
		}
		defs = append(defs, def)
	}
	return defs
}

func (d dialect) columnList() string {
	names := make([]string, 0, len(CleanColumns))
	for _, c := range CleanColumns {
		names = append(names, fmt.Sprintf("%q", c.Name))
	}
	return strings.Join(names, ",")
}

// valueTuple renders "(p1,p2,...)" for the row at position row in a batch.
func (d dialect) valueTuple(row int) string {
	ph := make([]string, len(CleanColumns))
	for i := range CleanColumns {
		ph[i] = d.placeholder(row*len(CleanColumns) + i + 1)
	}
	return "(" + strings.Join(ph, ",") + ")"
}

func rowArgs(l *models.CleanListing) []any {
	args := make([]any, 0, len(CleanColumns))
	for _, c := range CleanColumns {
		args = append(args, c.Value(l))
	}
	return args
}

// scanListings reads every row back through the same column parsers used for
// CSV input.
func scanListings(rows *sql.Rows) ([]*models.CleanListing, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []*models.CleanListing
	for rows.Next() {
		vals := make([]sql.NullString, len(cols))
		dest := make([]any, len(cols))
		for i := range vals {
			dest[i] = &vals[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		row := make(Row, len(cols))
		for i, c := range cols {
			if vals[i].Valid {
				row[c] = vals[i].String
			}
		}
		l, _ := ListingFromRow(cols, row)
		out = append(out, l)
	}
	return out, rows.Err()
}
