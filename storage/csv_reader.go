package storage

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ErrEmptyCSV is returned for a file without a header row.
var ErrEmptyCSV = errors.New("csv: file has no header")

// Row is one CSV record keyed by column name.
type Row map[string]string

// Table is a loaded CSV file.
type Table struct {
	Path    string
	Headers []string
	Rows    []Row
}

// LoadResult pairs an input path with its table or the error that stopped it.
type LoadResult struct {
	Path  string
	Table *Table
	Err   error
}

// LoadCSV reads a CSV file with a header row. A leading UTF-8 BOM is skipped,
// short rows are padded with empty values and long rows are truncated.
func LoadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(skipBOM(f))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	headers, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("csv: %q: %w", path, ErrEmptyCSV)
	}
	if err != nil {
		return nil, fmt.Errorf("csv: read header %q: %w", path, err)
	}
	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}

	t := &Table{Path: path, Headers: headers}
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: read %q: %w", path, err)
		}
		row := make(Row, len(headers))
		for i, h := range headers {
			if i < len(rec) {
				row[h] = rec[i]
			} else {
				row[h] = ""
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// LoadGlob loads every file matching pattern in lexical order. A file that
// fails to load is reported in its result and does not stop the others.
func LoadGlob(pattern string) ([]LoadResult, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("csv: glob %q: %w", pattern, err)
	}
	sort.Strings(matches)

	results := make([]LoadResult, 0, len(matches))
	for _, p := range matches {
		t, err := LoadCSV(p)
		results = append(results, LoadResult{Path: p, Table: t, Err: err})
	}
	return results, nil
}

// ReadURLList reads a search-results file: a header row followed by one
// listing per row. The URL is the first field that looks like a link, or the
// whole row joined with commas when none does.
func ReadURLList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(skipBOM(f))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var urls []string
	first := true
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: read %q: %w", path, err)
		}
		if first {
			first = false
			continue
		}
		if u := urlFromRecord(rec); u != "" {
			urls = append(urls, u)
		}
	}
	return urls, nil
}

func urlFromRecord(rec []string) string {
	for _, field := range rec {
		field = strings.TrimSpace(field)
		if strings.HasPrefix(field, "http://") || strings.HasPrefix(field, "https://") || strings.HasPrefix(field, "/ad/") {
			return field
		}
	}
	return strings.TrimSpace(strings.Join(rec, ","))
}

func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if b, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(b, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}
