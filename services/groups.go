package services

import (
	"database/sql"
	"errors"
	"sort"

	"vehicle-insights/models"
	"vehicle-insights/stats"
)

// ErrInsufficientData is returned when a slice of the working set is too
// small for the requested computation.
var ErrInsufficientData = errors.New("insufficient data")

// preferredCategories fixes the column order of category tables.
var preferredCategories = []string{models.CategoryVolume, models.CategoryLuxury, models.CategoryEmerging}

// groupBy partitions listings by (category, body-type). Keys come back in
// lexical order; members keep their working-set order.
func groupBy(listings []*models.Listing) (map[models.GroupKey][]*models.Listing, []models.GroupKey) {
	groups := make(map[models.GroupKey][]*models.Listing)
	for _, l := range listings {
		k := l.Group()
		groups[k] = append(groups[k], l)
	}
	keys := make([]models.GroupKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return groups, keys
}

// inGroup returns the members of one (category, body-type) pair.
func inGroup(listings []*models.Listing, key models.GroupKey) []*models.Listing {
	var out []*models.Listing
	for _, l := range listings {
		if l.Category == key.Category && l.BodyType == key.BodyType {
			out = append(out, l)
		}
	}
	return out
}

// orderCategories returns the present categories as Volume, Luxury,
// Emerging, then anything else lexically.
func orderCategories(present map[string]bool) []string {
	var out []string
	for _, c := range preferredCategories {
		if present[c] {
			out = append(out, c)
		}
	}
	var rest []string
	for c := range present {
		known := false
		for _, p := range preferredCategories {
			if c == p {
				known = true
				break
			}
		}
		if !known {
			rest = append(rest, c)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// topModels ranks models by frequency, most frequent first, ties broken by
// model name, and keeps at most n.
func topModels(listings []*models.Listing, n int) []string {
	counts := make(map[string]int)
	for _, l := range listings {
		counts[l.Model]++
	}
	names := make([]string, 0, len(counts))
	for m := range counts {
		names = append(names, m)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	if len(names) > n {
		names = names[:n]
	}
	return names
}

func ofModel(listings []*models.Listing, model string) []*models.Listing {
	var out []*models.Listing
	for _, l := range listings {
		if l.Model == model {
			out = append(out, l)
		}
	}
	return out
}

// prices returns the known prices; missing values are skipped.
func prices(listings []*models.Listing) []float64 {
	out := make([]float64, 0, len(listings))
	for _, l := range listings {
		if l.Price.Valid {
			out = append(out, l.Price.Float64)
		}
	}
	return out
}

// mileages returns the known mileages; missing values are skipped.
func mileages(listings []*models.Listing) []float64 {
	out := make([]float64, 0, len(listings))
	for _, l := range listings {
		if l.Mileage.Valid {
			out = append(out, l.Mileage.Float64)
		}
	}
	return out
}

func modelYears(listings []*models.Listing) []float64 {
	out := make([]float64, len(listings))
	for i, l := range listings {
		out[i] = float64(l.ModelYear)
	}
	return out
}

func ages(listings []*models.Listing) []float64 {
	out := make([]float64, len(listings))
	for i, l := range listings {
		out[i] = float64(l.Age)
	}
	return out
}

func nullMedian(xs []float64) sql.NullFloat64 {
	v, ok := stats.Median(xs)
	return sql.NullFloat64{Float64: v, Valid: ok}
}

func profileOf(listings []*models.Listing) models.Profile {
	return models.Profile{
		N:               len(listings),
		MedianPrice:     nullMedian(prices(listings)),
		MedianMileage:   nullMedian(mileages(listings)),
		MedianModelYear: nullMedian(modelYears(listings)),
		MedianAge:       nullMedian(ages(listings)),
	}
}
