// Package metrics provides metrics recording for LLM client operations.
package metrics

import (
	"orchestrator/pkg/proto"
)

// StateProvider provides access to session state for metrics collection.
type StateProvider interface {
	// GetCurrentState returns the session's current state (ready, deciding, ...).
	GetCurrentState() proto.SessionState
	// GetCaseID returns the case id the current decision belongs to.
	GetCaseID() string
	// GetID returns the session id.
	GetID() string
}

// Recorder defines the interface for recording LLM operation metrics.
type Recorder interface {
	// ObserveRequest records metrics for a completed LLM request.
	// Only caseID, tokens, cost, and success are used by internal recorder.
	ObserveRequest(
		caseID string,
		promptTokens, completionTokens int,
		cost float64,
		success bool,
	)
}

// NoopRecorder implements Recorder with no-op behavior for when metrics are disabled.
type NoopRecorder struct{}

// Nop returns a no-op metrics recorder that discards all metrics.
func Nop() Recorder {
	return &NoopRecorder{}
}

// ObserveRequest does nothing in the no-op recorder.
func (n *NoopRecorder) ObserveRequest(
	_ string,
	_, _ int,
	_ float64,
	_ bool,
) {
	// No-op
}
