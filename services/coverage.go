package services

import (
	"database/sql"
	"sort"

	"vehicle-insights/models"
	"vehicle-insights/stats"
	"vehicle-insights/utils"
)

// CoverageAnalyzer measures how much of each group's price distribution lies
// within mean +/- k standard deviations.
type CoverageAnalyzer struct {
	logger      *utils.Logger
	multipliers []float64
}

func NewCoverageAnalyzer(logger *utils.Logger, multipliers []float64) *CoverageAnalyzer {
	return &CoverageAnalyzer{logger: logger, multipliers: multipliers}
}

// Analyze returns one report per multiplier, rows ordered by descending
// group size.
func (a *CoverageAnalyzer) Analyze(listings []*models.Listing) []models.CoverageReport {
	groups, keys := groupBy(listings)
	reports := make([]models.CoverageReport, 0, len(a.multipliers))

	for _, k := range a.multipliers {
		rep := models.CoverageReport{K: k}
		for _, key := range keys {
			ps := prices(groups[key])
			if len(ps) == 0 {
				continue
			}
			rep.Rows = append(rep.Rows, Coverage(key, ps, k))
		}
		sort.SliceStable(rep.Rows, func(i, j int) bool { return rep.Rows[i].N > rep.Rows[j].N })
		reports = append(reports, rep)
	}

	a.logger.Debug("[coverage] %d groups, multipliers %v", len(keys), a.multipliers)
	return reports
}

// Coverage computes the share of ps inside [m - k*s, m + k*s]. With fewer
// than two values, or when every value is equal, s is degenerate and the
// share is undefined.
func Coverage(key models.GroupKey, ps []float64, k float64) models.CoverageRow {
	row := models.CoverageRow{Key: key, N: len(ps)}
	row.Mean, _ = stats.Mean(ps)

	s, ok := stats.SampleStd(ps)
	if !ok || !(s > 0) {
		return row
	}
	within := stats.CountWithin(ps, row.Mean-k*s, row.Mean+k*s)
	row.Std = sql.NullFloat64{Float64: s, Valid: true}
	row.Within = sql.NullInt64{Int64: int64(within), Valid: true}
	row.Percent = sql.NullFloat64{Float64: 100 * float64(within) / float64(len(ps)), Valid: true}
	return row
}
