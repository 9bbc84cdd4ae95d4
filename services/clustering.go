package services

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"vehicle-insights/models"
	"vehicle-insights/stats"
	"vehicle-insights/utils"
)

// ClusterConfig parameterizes the cluster modeler.
type ClusterConfig struct {
	K         int
	Inits     int
	Seed      uint64
	MaxIter   int
	Tolerance float64
}

// ClusterModeler segments the working set by price, mileage and age.
type ClusterModeler struct {
	logger *utils.Logger
	cfg    ClusterConfig
}

func NewClusterModeler(logger *utils.Logger, cfg ClusterConfig) *ClusterModeler {
	return &ClusterModeler{logger: logger, cfg: cfg}
}

// Fit standardizes the features, runs k-means and writes the cluster id of
// every complete row into the working set. Rows with a missing feature keep
// an invalid ClusterID. With fewer complete rows than clusters it returns a
// report with Skipped set and ErrInsufficientData, leaving the set untouched.
func (m *ClusterModeler) Fit(listings []*models.Listing) (models.ClusterReport, error) {
	report := models.ClusterReport{K: m.cfg.K}

	complete, features := clusterFeatures(listings)
	report.Excluded = len(listings) - len(complete)

	if len(complete) < m.cfg.K {
		report.Skipped = fmt.Sprintf("insufficient data: %d usable rows for %d clusters", len(complete), m.cfg.K)
		m.logger.Warn("[clustering] %s", report.Skipped)
		return report, ErrInsufficientData
	}

	res, err := stats.KMeans(stats.Standardize(features), stats.KMeansConfig{
		K:       m.cfg.K,
		Inits:   m.cfg.Inits,
		MaxIter: m.cfg.MaxIter,
		Tol:     m.cfg.Tolerance,
		Seed:    m.cfg.Seed,
	})
	if err != nil {
		if errors.Is(err, stats.ErrTooFewPoints) {
			report.Skipped = "insufficient data"
			return report, ErrInsufficientData
		}
		return report, fmt.Errorf("clustering: %w", err)
	}

	for i, l := range complete {
		l.ClusterID = sql.NullInt64{Int64: int64(res.Labels[i]), Valid: true}
	}

	report.Clustered = len(complete)
	report.Inertia = res.Inertia
	report.Profiles = ClusterProfiles(complete)
	report.CrossTab = CrossTabulate(complete)

	m.logger.Info("[clustering] k=%d on %d rows (%d excluded), inertia %.2f",
		m.cfg.K, report.Clustered, report.Excluded, report.Inertia)
	return report, nil
}

// clusterFeatures returns the listings with price, mileage and age all known,
// and their feature rows.
func clusterFeatures(listings []*models.Listing) ([]*models.Listing, [][]float64) {
	var complete []*models.Listing
	var features [][]float64
	for _, l := range listings {
		if !l.Price.Valid || !l.Mileage.Valid {
			continue
		}
		complete = append(complete, l)
		features = append(features, []float64{l.Price.Float64, l.Mileage.Float64, float64(l.Age)})
	}
	return complete, features
}

// ClusterProfiles summarizes the clustered listings per cluster id, ordered
// by ascending median price.
func ClusterProfiles(listings []*models.Listing) []models.ClusterProfile {
	byCluster := make(map[int][]*models.Listing)
	for _, l := range listings {
		if !l.ClusterID.Valid {
			continue
		}
		id := int(l.ClusterID.Int64)
		byCluster[id] = append(byCluster[id], l)
	}

	profiles := make([]models.ClusterProfile, 0, len(byCluster))
	for id, members := range byCluster {
		p := models.ClusterProfile{ClusterID: id, N: len(members)}
		p.MedianPrice, _ = stats.Median(prices(members))
		p.MedianMileage, _ = stats.Median(mileages(members))
		p.MedianAge, _ = stats.Median(ages(members))
		profiles = append(profiles, p)
	}
	sort.Slice(profiles, func(i, j int) bool {
		if profiles[i].MedianPrice != profiles[j].MedianPrice {
			return profiles[i].MedianPrice < profiles[j].MedianPrice
		}
		return profiles[i].ClusterID < profiles[j].ClusterID
	})
	return profiles
}

// CrossTabulate returns, per cluster id, the percentage of its members in
// each category. Every row sums to 100.
func CrossTabulate(listings []*models.Listing) models.CrossTab {
	counts := make(map[int]map[string]int)
	totals := make(map[int]int)
	present := make(map[string]bool)
	for _, l := range listings {
		if !l.ClusterID.Valid {
			continue
		}
		id := int(l.ClusterID.Int64)
		if counts[id] == nil {
			counts[id] = make(map[string]int)
		}
		counts[id][l.Category]++
		totals[id]++
		present[l.Category] = true
	}

	ct := models.CrossTab{Categories: orderCategories(present)}
	for id := range counts {
		ct.ClusterIDs = append(ct.ClusterIDs, id)
	}
	sort.Ints(ct.ClusterIDs)

	for _, id := range ct.ClusterIDs {
		row := make([]float64, len(ct.Categories))
		for j, c := range ct.Categories {
			row[j] = 100 * float64(counts[id][c]) / float64(totals[id])
		}
		ct.Percent = append(ct.Percent, row)
	}
	return ct
}
