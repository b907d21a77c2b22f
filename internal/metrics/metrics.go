// Package metrics holds the Prometheus collectors exported at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// InferenceBuckets spans the latency of a single generation call, 100ms to 120s.
var InferenceBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}

var (
	RendersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "promptpad_renders_total",
		Help: "Template evaluations by outcome (ok, template_error, json_error).",
	}, []string{"outcome"})

	InferenceRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "promptpad_inference_requests_total",
		Help: "Calls to the inference backend.",
	}, []string{"provider", "model", "status"})

	InferenceDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "promptpad_inference_duration_seconds",
		Help:    "Time spent waiting for the inference backend.",
		Buckets: InferenceBuckets,
	}, []string{"provider", "model"})

	MessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "promptpad_messages_total",
		Help: "Conversation messages appended, by role and kind (plain, structured, error).",
	}, []string{"role", "kind"})

	ConversationsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "promptpad_conversations_active",
		Help: "Conversations currently held in memory.",
	})

	PromptsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "promptpad_library_prompts_total",
		Help: "Prompts stored in the library.",
	})
)
