// Package metrics: prometheus метрики бота. Все методы безопасны на nil.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dex_trader"

type Metrics struct {
	gatherer prometheus.Gatherer

	DiscoveryCycles   *prometheus.CounterVec
	DiscoveryStage    *prometheus.GaugeVec
	DiscoveryDuration prometheus.Histogram

	Admissions     prometheus.Counter
	Exits          *prometheus.CounterVec
	PositionOpen   prometheus.Gauge
	PositionProfit prometheus.Gauge

	SwapAttempts   *prometheus.CounterVec
	SourceRequests *prometheus.CounterVec
}

// New регистрирует метрики в переданном реестре.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		gatherer: reg,

		DiscoveryCycles: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discovery_cycles_total",
			Help:      "Discovery cycles by result",
		}, []string{"result"}),
		DiscoveryStage: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "discovery_stage_candidates",
			Help:      "Candidates surviving each funnel stage in the last cycle",
		}, []string{"stage"}),
		DiscoveryDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "discovery_cycle_seconds",
			Help:      "Discovery cycle duration",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
		}),

		Admissions: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "admissions_total",
			Help:      "Positions opened",
		}),
		Exits: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exits_total",
			Help:      "Exit actions by kind",
		}, []string{"action", "kind"}),
		PositionOpen: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "position_open",
			Help:      "1 if a position is tracked",
		}),
		PositionProfit: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "position_profit_pct",
			Help:      "Profit of the tracked position at the last tick",
		}),

		SwapAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "swap_attempts_total",
			Help:      "Swap attempts by result",
		}, []string{"result"}),
		SourceRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_requests_total",
			Help:      "Requests to external data sources by status",
		}, []string{"source", "status"}),
	}
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) CycleDone(result string, seconds float64) {
	if m == nil {
		return
	}
	m.DiscoveryCycles.WithLabelValues(result).Inc()
	m.DiscoveryDuration.Observe(seconds)
}

func (m *Metrics) Stage(stage string, n int) {
	if m == nil {
		return
	}
	m.DiscoveryStage.WithLabelValues(stage).Set(float64(n))
}

func (m *Metrics) Admitted() {
	if m == nil {
		return
	}
	m.Admissions.Inc()
	m.PositionOpen.Set(1)
}

func (m *Metrics) Exit(action, kind string) {
	if m == nil {
		return
	}
	m.Exits.WithLabelValues(action, kind).Inc()
}

func (m *Metrics) PositionClosed() {
	if m == nil {
		return
	}
	m.PositionOpen.Set(0)
	m.PositionProfit.Set(0)
}

func (m *Metrics) Profit(pct float64) {
	if m == nil {
		return
	}
	m.PositionProfit.Set(pct)
}

func (m *Metrics) SwapAttempt(result string) {
	if m == nil {
		return
	}
	m.SwapAttempts.WithLabelValues(result).Inc()
}

func (m *Metrics) SourceRequest(source, status string) {
	if m == nil {
		return
	}
	m.SourceRequests.WithLabelValues(source, status).Inc()
}
