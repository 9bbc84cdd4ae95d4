package models

import "database/sql"

// PrepareSummary holds the counts emitted while preparing the working set.
type PrepareSummary struct {
	TotalLoaded int
	Retained    int

	// Model-year range of the retained rows; both zero when nothing is retained.
	MinModelYear int
	MaxModelYear int

	// Missing-value diagnostics over the loaded rows.
	MissingPrice     int
	MissingMileage   int
	MissingModelYear int
}

// Matrix is a body-type x category table of one statistic.
type Matrix struct {
	Metric  string
	Rows    []string
	Columns []string
	Values  [][]float64
}

// Cell returns the value at (row, column) by label, or 0 if absent.
func (m Matrix) Cell(row, column string) float64 {
	ci := -1
	for i, c := range m.Columns {
		if c == column {
			ci = i
			break
		}
	}
	if ci < 0 {
		return 0
	}
	for i, r := range m.Rows {
		if r == row {
			return m.Values[i][ci]
		}
	}
	return 0
}

// GroupStats are the price statistics of one (category, body-type) group.
type GroupStats struct {
	Key    GroupKey
	N      int
	Mean   float64
	Median float64
	// Std is undefined for single-member groups.
	Std sql.NullFloat64
}

// DescriptiveReport is the output of the descriptive aggregator.
type DescriptiveReport struct {
	Groups []GroupStats
	Count  Matrix
	Mean   Matrix
	Median Matrix
	Std    Matrix
}

// CoverageRow reports how much of a group lies within mean +/- k*std.
type CoverageRow struct {
	Key  GroupKey
	N    int
	Mean float64
	Std  sql.NullFloat64
	// Within and Percent are undefined whenever Std is.
	Within  sql.NullInt64
	Percent sql.NullFloat64
}

// CoverageReport holds one row per group for a single multiplier k.
type CoverageReport struct {
	K    float64
	Rows []CoverageRow
}

// Profile is the median profile of a slice of the working set.
type Profile struct {
	N               int
	MedianPrice     sql.NullFloat64
	MedianMileage   sql.NullFloat64
	MedianModelYear sql.NullFloat64
	MedianAge       sql.NullFloat64
}

// FocusGroupProfile is the profile of one focus group.
type FocusGroupProfile struct {
	Key GroupKey
	Profile
}

// ModelProfile is the profile of one model inside a focus group.
type ModelProfile struct {
	Model string
	Profile
}

// FocusGroupModels lists the most frequent models of a focus group.
type FocusGroupModels struct {
	Key    GroupKey
	Models []ModelProfile
}

// FocusReport is the output of the focus-group profiler.
type FocusReport struct {
	Groups []FocusGroupProfile
	Models []FocusGroupModels
}

// SensitivityRow is the usage-sensitivity estimate of one model.
type SensitivityRow struct {
	Model       string
	N           int
	MedianPrice sql.NullFloat64

	// Bucket medians: Low is mileage at or below the model median, High strictly above.
	LowPrice    sql.NullFloat64
	HighPrice   sql.NullFloat64
	LowMileage  sql.NullFloat64
	HighMileage sql.NullFloat64

	// ISU is the price decline per scale units of mileage; 0 for degenerate splits.
	ISU float64
}

// SensitivityGroup holds the estimates for the qualifying models of a focus group.
type SensitivityGroup struct {
	Key  GroupKey
	Rows []SensitivityRow
}

// SensitivityReport is the output of the usage-sensitivity estimator.
type SensitivityReport struct {
	Scale  float64
	Groups []SensitivityGroup
}

// ClusterProfile describes one k-means cluster.
type ClusterProfile struct {
	ClusterID     int
	MedianPrice   float64
	MedianMileage float64
	MedianAge     float64
	N             int
}

// CrossTab holds, per cluster, the percentage of members in each category.
type CrossTab struct {
	ClusterIDs []int
	Categories []string
	Percent    [][]float64
}

// ClusterReport is the output of the cluster modeler.
type ClusterReport struct {
	K         int
	Clustered int
	Excluded  int
	Inertia   float64
	Profiles  []ClusterProfile
	CrossTab  CrossTab

	// Skipped is set when clustering could not run; everything else is zero then.
	Skipped string
}

// Report bundles every analysis of one run.
type Report struct {
	RunID       string
	Summary     PrepareSummary
	Descriptive DescriptiveReport
	Coverage    []CoverageReport
	Focus       FocusReport
	Sensitivity SensitivityReport
	Cluster     ClusterReport
}
