// Package metrics exposes the bot's prometheus counters and gauges for
// scraping through the API server's /metrics handler.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry bundles every metric the engine updates during a run cycle.
type Registry struct {
	SignalsGenerated  *prometheus.CounterVec
	RiskRejections    *prometheus.CounterVec
	OrdersPlaced      *prometheus.CounterVec
	OpenPositions     *prometheus.GaugeVec
	KillSwitchActive  prometheus.Gauge
	EquityGauge       prometheus.Gauge
	DailyPnL          *prometheus.GaugeVec
	RunCycleDuration  prometheus.Histogram
}

// New registers and returns a Registry against reg. The CLI entrypoint
// passes prometheus.DefaultRegisterer, the registry the API server's
// /metrics handler serves.
func New(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)
	return &Registry{
		SignalsGenerated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scalper",
			Name:      "signals_generated_total",
			Help:      "Signals produced by a strategy, by symbol and strategy name.",
		}, []string{"symbol", "strategy"}),
		RiskRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scalper",
			Name:      "risk_rejections_total",
			Help:      "Signals rejected by the risk gate, by reason.",
		}, []string{"symbol", "reason"}),
		OrdersPlaced: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scalper",
			Name:      "orders_placed_total",
			Help:      "Orders submitted to the broker, by symbol and outcome.",
		}, []string{"symbol", "status"}),
		OpenPositions: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "scalper",
			Name:      "open_positions",
			Help:      "Currently open positions, by symbol.",
		}, []string{"symbol"}),
		KillSwitchActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "scalper",
			Name:      "kill_switch_active",
			Help:      "1 when the global drawdown kill switch has tripped, 0 otherwise.",
		}),
		EquityGauge: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "scalper",
			Name:      "account_equity",
			Help:      "Last observed broker account equity.",
		}),
		DailyPnL: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "scalper",
			Name:      "daily_pnl",
			Help:      "Realized PnL accumulated since process start, by symbol; not reset at day boundaries.",
		}, []string{"symbol"}),
		RunCycleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "scalper",
			Name:      "run_cycle_duration_seconds",
			Help:      "Wall-clock time spent in one RunOnce cycle.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}
