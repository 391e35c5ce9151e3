// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReportsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_builds_total",
			Help: "Total number of report builds by outcome",
		},
		[]string{"status"},
	)

	ReportStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "report_stage_duration_seconds",
			Help: "Duration of pipeline stages in seconds",
		},
		[]string{"stage"},
	)

	ChartDegradations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "report_chart_degradations_total",
			Help: "Reports completed without a chart after a chart render failure",
		},
	)

	EmailsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_emails_sent_total",
			Help: "Total number of report delivery attempts by outcome",
		},
		[]string{"status"},
	)

	RequestsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "report_requests_active",
			Help: "Number of report requests currently in flight",
		},
	)
)
