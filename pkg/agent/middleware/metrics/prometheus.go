// Package metrics provides Prometheus-based metrics recording for LLM operations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusRecorder implements Recorder using Prometheus metrics, keyed by
// case so a dashboard can break down cost and volume per case.
type PrometheusRecorder struct {
	requestsTotal *prometheus.CounterVec
	tokensTotal   *prometheus.CounterVec
	costsTotal    *prometheus.CounterVec
}

// NewPrometheusRecorder creates a new Prometheus-based metrics recorder.
func NewPrometheusRecorder() *PrometheusRecorder {
	return &PrometheusRecorder{
		requestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "decider_llm_requests_total",
				Help: "Total number of Decider LLM requests by case and status",
			},
			[]string{"case_id", "status"},
		),
		tokensTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "decider_llm_tokens_total",
				Help: "Total number of tokens used in Decider LLM requests",
			},
			[]string{"case_id", "type"},
		),
		costsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "decider_llm_costs_total",
				Help: "Total cost in USD for Decider LLM requests",
			},
			[]string{"case_id"},
		),
	}
}

// ObserveRequest records metrics for one completed LLM request.
func (p *PrometheusRecorder) ObserveRequest(caseID string, promptTokens, completionTokens int, cost float64, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	p.requestsTotal.WithLabelValues(caseID, status).Inc()

	if success {
		p.tokensTotal.WithLabelValues(caseID, "prompt").Add(float64(promptTokens))
		p.tokensTotal.WithLabelValues(caseID, "completion").Add(float64(completionTokens))
		p.costsTotal.WithLabelValues(caseID).Add(cost)
	}
}
