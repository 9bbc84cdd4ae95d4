package storage

import "vehicle-insights/models"

// ListingWriter is the interface any analysed-listing sink must satisfy.
type ListingWriter interface {
	Write(runID string, listings []*models.Listing) error
	Close() error
}

// RawListingWriter is the interface for persisting unprocessed scraped data.
type RawListingWriter interface {
	WriteRaw(listings []*models.RawListing) error
	Close() error
}

var (
	_ ListingWriter    = (*PostgresWriter)(nil)
	_ RawListingWriter = (*CSVWriter)(nil)
)
