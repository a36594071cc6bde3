package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics of the pipeline
type Metrics struct {
	YearsProcessed  *prometheus.CounterVec
	AnalysisRows    *prometheus.GaugeVec
	YearDuration    prometheus.Histogram
	ArchivesFetched *prometheus.CounterVec
}

// New creates the metrics and registers them on reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		YearsProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fii_pipeline_years_total",
			Help: "Years processed by the pipeline, by outcome",
		}, []string{"status"}),
		AnalysisRows: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fii_pipeline_analysis_rows",
			Help: "Rows of the last exported analysis table",
		}, []string{"analysis", "year"}),
		YearDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "fii_pipeline_year_duration_seconds",
			Help:    "Time spent processing one year",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		ArchivesFetched: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fii_archives_fetched_total",
			Help: "Archive retrievals, by outcome",
		}, []string{"status"}),
	}
}

// ObserveYear records the outcome and duration of one year
func (m *Metrics) ObserveYear(status string, seconds float64) {
	if m == nil {
		return
	}
	m.YearsProcessed.WithLabelValues(status).Inc()
	m.YearDuration.Observe(seconds)
}

// SetAnalysisRows records the row count of an exported analysis
func (m *Metrics) SetAnalysisRows(analysis, year string, rows int) {
	if m == nil {
		return
	}
	m.AnalysisRows.WithLabelValues(analysis, year).Set(float64(rows))
}

// IncrementArchivesFetched counts an archive retrieval
func (m *Metrics) IncrementArchivesFetched(status string) {
	if m == nil {
		return
	}
	m.ArchivesFetched.WithLabelValues(status).Inc()
}
