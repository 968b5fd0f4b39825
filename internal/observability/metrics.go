// Package observability provides Prometheus metrics for position monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"liquidityRisk/internal/model"
)

const defaultNamespace = "ilscope"

// Metrics holds the monitor's Prometheus metrics on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	CalculationsTotal prometheus.Counter
	TrackErrors       *prometheus.CounterVec
	TrackedPositions  prometheus.Gauge
	PositionIL        *prometheus.GaugeVec
	PositionRisk      *prometheus.GaugeVec
	TrackDuration     prometheus.Histogram
}

// NewMetrics creates a Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = defaultNamespace
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		CalculationsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calculations_total",
			Help:      "Total number of IL calculations produced",
		}),
		TrackErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "track_errors_total",
			Help:      "Total number of failed position tracks by reason",
		}, []string{"reason"}),
		TrackedPositions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tracked_positions",
			Help:      "Number of positions with a calculation history",
		}),
		PositionIL: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "position_il_percent",
			Help:      "Latest impermanent loss percentage per position",
		}, []string{"position"}),
		PositionRisk: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "position_risk_level",
			Help:      "Latest risk tier per position (0=LOW .. 3=VERY_HIGH)",
		}, []string{"position"}),
		TrackDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "track_duration_seconds",
			Help:      "Duration of a single position track in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// ObserveCalculation records the latest result of a position.
func (m *Metrics) ObserveCalculation(calc model.ILCalculation) {
	if m == nil {
		return
	}
	m.CalculationsTotal.Inc()
	m.PositionIL.WithLabelValues(calc.PositionID).Set(calc.ImpermanentLossPercentage)
	m.PositionRisk.WithLabelValues(calc.PositionID).Set(float64(calc.RiskLevel))
}

// ObserveError counts a failed track.
func (m *Metrics) ObserveError(reason string) {
	if m == nil {
		return
	}
	m.TrackErrors.WithLabelValues(reason).Inc()
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler serving the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
