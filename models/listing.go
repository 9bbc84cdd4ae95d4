package models

import "database/sql"

// Category labels derived from the brand taxonomy.
const (
	CategoryLuxury   = "Luxury"
	CategoryEmerging = "Emerging"
	CategoryVolume   = "Volume"
)

// Condition labels derived from mileage.
const (
	ConditionNew  = "New"
	ConditionUsed = "Used"
)

// RawListing holds unprocessed scraped data directly from the search API.
// Every field is kept as text; this is what goes to the raw CSV.
type RawListing struct {
	Title           string
	Brand           string
	Model           string
	Version         string
	FabricationYear string
	ModelYear       string
	Mileage         string
	Transmission    string
	Doors           string
	BodyType        string
	Color           string
	Price           string
	City            string
	Seller          string
	Attributes      string
	Description     string
	Link            string
}

// Listing is one row of the working dataset: typed, enriched, and later
// tagged with a cluster assignment.
type Listing struct {
	Brand     string
	Model     string
	Version   string
	BodyType  string
	Price     sql.NullFloat64
	Mileage   sql.NullFloat64
	ModelYear int

	Category  string
	Condition string
	Age       int

	// ClusterID is valid only for rows that took part in clustering.
	ClusterID sql.NullInt64

	Title        string
	Transmission string
	Color        string
	City         string
	Seller       string
	Link         string
}

// Group returns the (category, body-type) aggregation key of the listing.
func (l *Listing) Group() GroupKey {
	return GroupKey{Category: l.Category, BodyType: l.BodyType}
}

// GroupKey is a (category, body-type) pairing.
type GroupKey struct {
	Category string `yaml:"category"`
	BodyType string `yaml:"body_type"`
}

func (g GroupKey) String() string {
	return g.Category + " | " + g.BodyType
}

// Less orders keys by category, then body type.
func (g GroupKey) Less(o GroupKey) bool {
	if g.Category != o.Category {
		return g.Category < o.Category
	}
	return g.BodyType < o.BodyType
}
