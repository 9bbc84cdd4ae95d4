package services

import (
	"database/sql"
	"math"
	"strconv"
	"strings"
	"unicode"

	"vehicle-insights/models"
	"vehicle-insights/utils"
)

// CleanStats counts the values that failed numeric coercion.
type CleanStats struct {
	MissingPrice     int
	MissingMileage   int
	MissingModelYear int
}

// Cleaner transforms RawListings into typed, enriched Listings.
type Cleaner struct {
	logger        *utils.Logger
	classifier    *Classifier
	referenceYear int
}

// NewCleaner creates a Cleaner that derives age against referenceYear.
func NewCleaner(logger *utils.Logger, classifier *Classifier, referenceYear int) *Cleaner {
	return &Cleaner{logger: logger, classifier: classifier, referenceYear: referenceYear}
}

// Clean coerces and enriches every raw record. No record is dropped: values
// that do not parse become missing instead.
func (c *Cleaner) Clean(raw []*models.RawListing) ([]*models.Listing, CleanStats) {
	var st CleanStats
	result := make([]*models.Listing, 0, len(raw))

	for _, r := range raw {
		l := c.Enrich(r)
		if !l.Price.Valid {
			st.MissingPrice++
		}
		if !l.Mileage.Valid {
			st.MissingMileage++
		}
		if _, ok := parseNumber(r.ModelYear); !ok {
			st.MissingModelYear++
		}
		result = append(result, l)
	}

	c.logger.Debug("[cleaner] Coerced %d records (missing price=%d mileage=%d model-year=%d)",
		len(result), st.MissingPrice, st.MissingMileage, st.MissingModelYear)
	return result, st
}

// Enrich builds a single Listing from its raw record.
func (c *Cleaner) Enrich(r *models.RawListing) *models.Listing {
	l := &models.Listing{
		Brand:        strings.TrimSpace(r.Brand),
		Model:        strings.TrimSpace(r.Model),
		Version:      normaliseText(r.Version),
		BodyType:     strings.TrimSpace(r.BodyType),
		Price:        parseNullable(r.Price),
		Mileage:      parseNullable(r.Mileage),
		ModelYear:    parseYear(r.ModelYear),
		Title:        normaliseText(r.Title),
		Transmission: normaliseText(r.Transmission),
		Color:        normaliseText(r.Color),
		City:         normaliseText(r.City),
		Seller:       normaliseText(r.Seller),
		Link:         strings.TrimSpace(r.Link),
	}
	l.Category = c.classifier.Classify(l.Brand)
	l.Condition = Condition(l.Mileage)
	l.Age = Age(c.referenceYear, l.ModelYear)
	return l
}

// Condition is New when the mileage is known and not positive, Used otherwise.
// An unknown mileage is not <= 0, so it counts as Used.
func Condition(mileage sql.NullFloat64) string {
	if mileage.Valid && mileage.Float64 <= 0 {
		return models.ConditionNew
	}
	return models.ConditionUsed
}

// Age is referenceYear - modelYear, without any bound. A defaulted model
// year of 0 therefore yields an age equal to the reference year.
func Age(referenceYear, modelYear int) int {
	return referenceYear - modelYear
}

// parseNumber reads a plain decimal number. Currency symbols, thousands
// separators, NaN and infinities are rejected.
func parseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func parseNullable(raw string) sql.NullFloat64 {
	v, ok := parseNumber(raw)
	return sql.NullFloat64{Float64: v, Valid: ok}
}

// parseYear defaults to 0 when the year is missing or malformed.
func parseYear(raw string) int {
	v, ok := parseNumber(raw)
	if !ok {
		return 0
	}
	return int(v)
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	fields := strings.FieldsFunc(s, unicode.IsSpace)
	return strings.Join(fields, " ")
}
