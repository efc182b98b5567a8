package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	FillsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "barsim_fills_total",
			Help: "Total number of fills (entries, exits, partial exits) by kind.",
		},
		[]string{"symbol", "kind"},
	)

	ExitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "barsim_exits_total",
			Help: "Total number of position exits by reason.",
		},
		[]string{"symbol", "reason"},
	)

	PositionsOpen = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "barsim_positions_open",
			Help: "Current number of open positions per group.",
		},
		[]string{"group"},
	)

	EquityGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "barsim_equity",
			Help: "Current portfolio equity.",
		},
	)

	DrawdownGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "barsim_drawdown_ratio",
			Help: "Current drawdown from peak equity, as a ratio.",
		},
	)

	BarsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "barsim_bars_processed_total",
			Help: "Total number of bars processed by the engine, by symbol and timeframe.",
		},
		[]string{"symbol", "timeframe"},
	)

	StrategyErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "barsim_strategy_errors_total",
			Help: "Total number of errors raised from strategy callbacks, by callback name.",
		},
		[]string{"callback"},
	)
)

func init() {
	prometheus.MustRegister(FillsTotal, ExitsTotal, PositionsOpen, EquityGauge, DrawdownGauge, BarsProcessed, StrategyErrors)
}
