package storage

import "car-scraper/models"

// ListingWriter persists scraped listings before cleaning.
type ListingWriter interface {
	WriteListings(listings []*models.Listing) error
	Close() error
}

// CleanListingWriter is the interface any sink for the cleaned dataset must
// satisfy.
type CleanListingWriter interface {
	WriteClean(listings []*models.CleanListing) error
	Close() error
}

// CleanListingStore is a CleanListingWriter that can read back what it holds.
type CleanListingStore interface {
	CleanListingWriter
	FetchAll() ([]*models.CleanListing, error)
}

var (
	_ ListingWriter      = (*CSVWriter)(nil)
	_ CleanListingWriter = (*CSVWriter)(nil)
	_ CleanListingStore  = (*PostgresWriter)(nil)
	_ CleanListingStore  = (*SQLiteWriter)(nil)
)
