package services

import (
	"database/sql"
	"sort"

	"vehicle-insights/models"
	"vehicle-insights/stats"
	"vehicle-insights/utils"
)

// DescriptiveAggregator computes price statistics per (category, body-type).
type DescriptiveAggregator struct {
	logger *utils.Logger
}

func NewDescriptiveAggregator(logger *utils.Logger) *DescriptiveAggregator {
	return &DescriptiveAggregator{logger: logger}
}

// Aggregate returns the per-group statistics and the four body-type x
// category matrices (count, mean, median, std).
func (a *DescriptiveAggregator) Aggregate(listings []*models.Listing) models.DescriptiveReport {
	groups, keys := groupBy(listings)

	report := models.DescriptiveReport{Groups: make([]models.GroupStats, 0, len(keys))}
	for _, k := range keys {
		ps := prices(groups[k])
		if len(ps) == 0 {
			continue
		}
		gs := models.GroupStats{Key: k, N: len(ps)}
		gs.Mean, _ = stats.Mean(ps)
		gs.Median, _ = stats.Median(ps)
		if s, ok := stats.SampleStd(ps); ok {
			gs.Std = sql.NullFloat64{Float64: s, Valid: true}
		}
		report.Groups = append(report.Groups, gs)
	}

	report.Count = buildMatrix("count", report.Groups, func(g models.GroupStats) float64 { return float64(g.N) })
	report.Mean = buildMatrix("mean", report.Groups, func(g models.GroupStats) float64 { return g.Mean })
	report.Median = buildMatrix("median", report.Groups, func(g models.GroupStats) float64 { return g.Median })
	report.Std = buildMatrix("std", report.Groups, func(g models.GroupStats) float64 {
		if !g.Std.Valid {
			return 0
		}
		return g.Std.Float64
	})

	a.logger.Debug("[descriptive] %d groups across %d body types", len(report.Groups), len(report.Count.Rows))
	return report
}

// buildMatrix lays one statistic out as body-type rows and category columns.
// Cells without members are 0. With a Volume column, rows are ordered by
// descending Volume value.
func buildMatrix(metric string, groups []models.GroupStats, value func(models.GroupStats) float64) models.Matrix {
	present := make(map[string]bool)
	rowSet := make(map[string]bool)
	for _, g := range groups {
		present[g.Key.Category] = true
		rowSet[g.Key.BodyType] = true
	}
	cols := orderCategories(present)
	rows := make([]string, 0, len(rowSet))
	for r := range rowSet {
		rows = append(rows, r)
	}
	sort.Strings(rows)

	colIdx := make(map[string]int, len(cols))
	for i, c := range cols {
		colIdx[c] = i
	}
	cells := make(map[string][]float64, len(rows))
	for _, r := range rows {
		cells[r] = make([]float64, len(cols))
	}
	for _, g := range groups {
		cells[g.Key.BodyType][colIdx[g.Key.Category]] = value(g)
	}

	if vi, ok := colIdx[models.CategoryVolume]; ok {
		sort.SliceStable(rows, func(i, j int) bool {
			return cells[rows[i]][vi] > cells[rows[j]][vi]
		})
	}

	m := models.Matrix{Metric: metric, Rows: rows, Columns: cols, Values: make([][]float64, len(rows))}
	for i, r := range rows {
		m.Values[i] = cells[r]
	}
	return m
}
