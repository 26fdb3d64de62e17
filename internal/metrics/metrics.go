// Package metrics counts what the CLI profiled, scored and rendered.
//
// Counters live on a private registry and are written out as a Prometheus
// textfile (node_exporter textfile collector format) when a command finishes.
// They never feed back into results.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/KaramelBytes/edakit/pkg/profile"
	"github.com/KaramelBytes/edakit/pkg/selection"
	"github.com/KaramelBytes/edakit/pkg/stats"
)

const namespace = "edakit"

// Metrics holds the CLI counters.
type Metrics struct {
	ColumnsProfiled *prometheus.CounterVec // by suggested type
	ColumnsScored   *prometheus.CounterVec // by statistical test
	ColumnsExcluded *prometheus.CounterVec // by selector
	FiguresRendered prometheus.Counter
	CommandDuration *prometheus.HistogramVec // by command
	ErrorsTotal     *prometheus.CounterVec   // by command

	gatherer prometheus.Gatherer
}

// New creates metrics on a fresh private registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.NewRegistry())
}

// NewWithRegistry registers the metrics with registerer. If registerer is also a
// Gatherer (as *prometheus.Registry is) it is used by WriteTextfile.
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	m := &Metrics{
		ColumnsProfiled: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "columns_profiled_total",
			Help:      "Columns described, by suggested type",
		}, []string{"type"}),
		ColumnsScored: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "columns_scored_total",
			Help:      "Candidate columns scored, by statistical test",
		}, []string{"test"}),
		ColumnsExcluded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "columns_excluded_total",
			Help:      "Candidate columns not selected, by selector",
		}, []string{"selector"}),
		FiguresRendered: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "figures_rendered_total",
			Help:      "Figures written to disk",
		}),
		CommandDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "Wall time of CLI commands",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"command"}),
		ErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Failed CLI commands",
		}, []string{"command"}),
	}
	if g, ok := registerer.(prometheus.Gatherer); ok {
		m.gatherer = g
	}
	return m
}

// ObserveProfile counts every described column.
func (m *Metrics) ObserveProfile(p *profile.Profile) {
	for _, d := range p.Columns {
		m.ColumnsProfiled.WithLabelValues(string(d.Suggested)).Inc()
	}
}

// ObserveNumeric counts Pearson attempts and exclusions.
func (m *Metrics) ObserveNumeric(res *selection.NumericResult) {
	for _, s := range res.Scores {
		if s.N > 0 {
			m.ColumnsScored.WithLabelValues(string(stats.TestPearson)).Inc()
		}
	}
	m.ColumnsExcluded.WithLabelValues("numeric").Add(float64(len(res.Excluded())))
}

// ObserveCategorical counts scores per test and exclusions.
func (m *Metrics) ObserveCategorical(res *selection.CategoricalResult) {
	for _, s := range res.Scores {
		if s.Test != "" {
			m.ColumnsScored.WithLabelValues(string(s.Test)).Inc()
		}
	}
	m.ColumnsExcluded.WithLabelValues("categorical").Add(float64(len(res.Excluded())))
}

// ObserveCommand records the duration and outcome of a command.
func (m *Metrics) ObserveCommand(name string, start time.Time, err error) {
	m.CommandDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		m.ErrorsTotal.WithLabelValues(name).Inc()
	}
}

// WriteTextfile writes all gathered metrics to path.
func (m *Metrics) WriteTextfile(path string) error {
	if m.gatherer == nil {
		return fmt.Errorf("metrics registry cannot be gathered")
	}
	if err := prometheus.WriteToTextfile(path, m.gatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
