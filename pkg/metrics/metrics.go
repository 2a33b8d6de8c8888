// Package metrics holds the Prometheus collectors exported at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BuildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "aria_build_info",
			Help: "Build information of the aria engine",
		},
		[]string{"version"},
	)

	QuestionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aria_questions_total",
		Help: "Total number of questions answered, by classified intent",
	}, []string{"intent"})

	PlanStepsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aria_plan_steps_total",
		Help: "Total number of executed plan steps, by outcome",
	}, []string{"outcome"})

	GatherStopsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aria_gather_stops_total",
		Help: "Total number of gathering phases, by stop reason",
	}, []string{"reason"})

	LLMCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aria_llm_calls_total",
		Help: "Total number of language model calls, by model and status",
	}, []string{"model", "status"})

	LLMCircuitState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "aria_llm_circuit_state",
		Help: "State of the language model circuit breaker (0 closed, 1 open, 2 half-open)",
	})

	WarehouseQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "aria_warehouse_query_duration_seconds",
		Help:    "Duration of warehouse queries, including connection setup",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms .. ~20s
	}, []string{"status"})

	SchemaRefreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aria_schema_refresh_total",
		Help: "Total number of schema snapshot loads",
	}, []string{"result"})

	UploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aria_uploads_total",
		Help: "Total number of CSV bulk loads",
	}, []string{"result"})
)
