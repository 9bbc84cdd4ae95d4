package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds the pipeline counters of one run. A nil *Registry is valid
// and records nothing.
type Registry struct {
	reg *prometheus.Registry

	PagesFetched    prometheus.Counter
	ListingsScraped prometheus.Counter
	RowsLoaded      prometheus.Gauge
	RowsRetained    prometheus.Gauge
	MissingValues   *prometheus.GaugeVec
	RowsClustered   prometheus.Gauge
	Inertia         prometheus.Gauge
	StageSeconds    *prometheus.HistogramVec
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	pages := prometheus.NewCounter(prometheus.CounterOpts{Name: "vehicle_scrape_pages_total"})
	scraped := prometheus.NewCounter(prometheus.CounterOpts{Name: "vehicle_scrape_listings_total"})
	loaded := prometheus.NewGauge(prometheus.GaugeOpts{Name: "vehicle_rows_loaded"})
	retained := prometheus.NewGauge(prometheus.GaugeOpts{Name: "vehicle_rows_retained"})
	missing := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: "vehicle_missing_values"}, []string{"field"})
	clustered := prometheus.NewGauge(prometheus.GaugeOpts{Name: "vehicle_rows_clustered"})
	inertia := prometheus.NewGauge(prometheus.GaugeOpts{Name: "vehicle_kmeans_inertia"})
	stage := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vehicle_stage_duration_seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})

	r.MustRegister(pages, scraped, loaded, retained, missing, clustered, inertia, stage)
	return &Registry{
		reg:             r,
		PagesFetched:    pages,
		ListingsScraped: scraped,
		RowsLoaded:      loaded,
		RowsRetained:    retained,
		MissingValues:   missing,
		RowsClustered:   clustered,
		Inertia:         inertia,
		StageSeconds:    stage,
	}
}

// Page records one fetched page and the listings it carried.
func (r *Registry) Page(listings int) {
	if r == nil {
		return
	}
	r.PagesFetched.Inc()
	r.ListingsScraped.Add(float64(listings))
}

// Prepared records the preparation counts.
func (r *Registry) Prepared(loaded, retained, missingPrice, missingMileage, missingYear int) {
	if r == nil {
		return
	}
	r.RowsLoaded.Set(float64(loaded))
	r.RowsRetained.Set(float64(retained))
	r.MissingValues.WithLabelValues("price").Set(float64(missingPrice))
	r.MissingValues.WithLabelValues("mileage").Set(float64(missingMileage))
	r.MissingValues.WithLabelValues("model_year").Set(float64(missingYear))
}

// Clustered records the size and inertia of the chosen partition.
func (r *Registry) Clustered(rows int, inertia float64) {
	if r == nil {
		return
	}
	r.RowsClustered.Set(float64(rows))
	r.Inertia.Set(inertia)
}

// Stage starts timing a pipeline stage; call the returned func when done.
func (r *Registry) Stage(name string) func() {
	if r == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		r.StageSeconds.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }

// WriteTextfile writes every metric in the text exposition format, for the
// node exporter textfile collector.
func (r *Registry) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("metrics: write textfile: %w", err)
	}
	return nil
}
