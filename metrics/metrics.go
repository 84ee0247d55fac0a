// Package metrics exposes Prometheus instrumentation for the pipeline:
//
//	fvgbot_gaps_detected_total{direction}   – gaps inserted by the detector
//	fvgbot_gaps_deactivated_total           – gaps closed through their far boundary
//	fvgbot_retests_total{direction}         – retest events recorded
//	fvgbot_trades_opened_total{direction}   – trades opened on breakout
//	fvgbot_position_exits_total{status}     – terminal position exits by status
//	fvgbot_open_positions{symbol}           – currently open positions (gauge)
//	fvgbot_cycle_errors_total{stage}        – fail-soft stage errors
//	fvgbot_cycles_total{symbol}             – pipeline cycles run
//
// Registered in init() and served by the API server at /metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	GapsDetected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fvgbot_gaps_detected_total",
			Help: "Fair value gaps inserted",
		},
		[]string{"direction"},
	)

	GapsDeactivated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fvgbot_gaps_deactivated_total",
			Help: "Gaps deactivated by price closing through the far boundary",
		},
	)

	Retests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fvgbot_retests_total",
			Help: "Retest events recorded",
		},
		[]string{"direction"},
	)

	TradesOpened = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fvgbot_trades_opened_total",
			Help: "Trades opened on confirming breakout",
		},
		[]string{"direction"},
	)

	PositionExits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fvgbot_position_exits_total",
			Help: "Terminal position exits by status",
		},
		[]string{"status"},
	)

	OpenPositions = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fvgbot_open_positions",
			Help: "Currently open positions",
		},
		[]string{"symbol"},
	)

	CycleErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fvgbot_cycle_errors_total",
			Help: "Fail-soft pipeline stage errors",
		},
		[]string{"stage"},
	)

	Cycles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fvgbot_cycles_total",
			Help: "Pipeline cycles run",
		},
		[]string{"symbol"},
	)
)

func init() {
	prometheus.MustRegister(
		GapsDetected,
		GapsDeactivated,
		Retests,
		TradesOpened,
		PositionExits,
		OpenPositions,
		CycleErrors,
		Cycles,
	)
}
