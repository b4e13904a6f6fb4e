package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FilesIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "faultwatch_files_ingested_total",
			Help: "Alarm-log files processed, by result",
		},
		[]string{"result"},
	)

	BatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "faultwatch_batches_total",
			Help: "Pipeline batch runs, by outcome",
		},
		[]string{"outcome"},
	)

	OracleCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "faultwatch_oracle_calls_total",
			Help: "Fault-prediction oracle invocations",
		},
		[]string{"oracle", "status"},
	)

	OracleLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "faultwatch_oracle_latency_seconds",
			Help:    "Oracle call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"oracle"},
	)

	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "faultwatch_predictions_total",
			Help: "Validated prediction records, by risk level",
		},
		[]string{"risk_level"},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "faultwatch_notifications_total",
			Help: "Report notification attempts, by result",
		},
		[]string{"result"},
	)
)
