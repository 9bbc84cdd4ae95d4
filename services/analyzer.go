package services

import (
	"errors"

	"github.com/google/uuid"

	"vehicle-insights/config"
	"vehicle-insights/metrics"
	"vehicle-insights/models"
	"vehicle-insights/utils"
)

// Analyzer runs the whole analytical pipeline over one snapshot of raw
// listings. Stages run one after another; only clustering writes to the
// working set.
type Analyzer struct {
	logger  *utils.Logger
	metrics *metrics.Registry

	preparer    *Preparer
	descriptive *DescriptiveAggregator
	coverage    *CoverageAnalyzer
	profiler    *FocusProfiler
	sensitivity *SensitivityEstimator
	clusters    *ClusterModeler
}

// NewAnalyzer wires every component from the analysis parameters. reg may be nil.
func NewAnalyzer(logger *utils.Logger, cfg config.Analysis, reg *metrics.Registry) *Analyzer {
	classifier := NewClassifier(cfg.LuxuryBrands, cfg.EmergingBrands)
	cleaner := NewCleaner(logger, classifier, cfg.ReferenceYear)
	return &Analyzer{
		logger:      logger,
		metrics:     reg,
		preparer:    NewPreparer(logger, cleaner, cfg.PriceFloor),
		descriptive: NewDescriptiveAggregator(logger),
		coverage:    NewCoverageAnalyzer(logger, cfg.CoverageMultipliers),
		profiler:    NewFocusProfiler(logger, cfg.FocusGroups, cfg.TopModels),
		sensitivity: NewSensitivityEstimator(logger, cfg.FocusGroups, cfg.TopModels, cfg.MinSensitivitySample, cfg.SensitivityScale),
		clusters: NewClusterModeler(logger, ClusterConfig{
			K:         cfg.ClusterCount,
			Inits:     cfg.ClusterInits,
			Seed:      cfg.ClusterSeed,
			MaxIter:   cfg.ClusterMaxIter,
			Tolerance: cfg.ClusterTolerance,
		}),
	}
}

// Run prepares the working set and produces every report. The returned
// listings are the working set, with cluster ids assigned. Only unexpected
// failures are returned as errors; an unclusterable set is reported in
// Report.Cluster.Skipped.
func (a *Analyzer) Run(raw []*models.RawListing) (*models.Report, []*models.Listing, error) {
	report := &models.Report{RunID: uuid.NewString()}
	log := a.logger.With("run_id", report.RunID)
	log.Info("[analyzer] Analysing %d raw records", len(raw))

	done := a.metrics.Stage("prepare")
	working, summary := a.preparer.Prepare(raw)
	done()
	report.Summary = summary
	a.metrics.Prepared(summary.TotalLoaded, summary.Retained, summary.MissingPrice, summary.MissingMileage, summary.MissingModelYear)

	done = a.metrics.Stage("descriptive")
	report.Descriptive = a.descriptive.Aggregate(working)
	done()

	done = a.metrics.Stage("coverage")
	report.Coverage = a.coverage.Analyze(working)
	done()

	done = a.metrics.Stage("profiles")
	report.Focus = a.profiler.Profile(working)
	done()

	done = a.metrics.Stage("sensitivity")
	report.Sensitivity = a.sensitivity.Estimate(working)
	done()

	done = a.metrics.Stage("clustering")
	cr, err := a.clusters.Fit(working)
	done()
	report.Cluster = cr
	switch {
	case errors.Is(err, ErrInsufficientData):
		log.Warn("[analyzer] Clustering skipped: %s", cr.Skipped)
	case err != nil:
		return report, working, err
	default:
		a.metrics.Clustered(cr.Clustered, cr.Inertia)
	}

	log.Info("[analyzer] Run complete")
	return report, working, nil
}
