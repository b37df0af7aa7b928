// Package metrics provides internal metrics tracking for LLM operations.
package metrics

import (
	"sync"
	"time"
)

// InternalRecorder implements the Recorder interface using in-memory aggregation.
// This is much simpler than Prometheus and doesn't require external services.
type InternalRecorder struct {
	cases map[string]*CaseMetrics // caseID -> aggregated metrics
	mu    sync.RWMutex
}

// CaseMetrics represents aggregated metrics for a case.
//
//nolint:govet
type CaseMetrics struct {
	PromptTokens     int64     `json:"prompt_tokens"`
	CompletionTokens int64     `json:"completion_tokens"`
	TotalTokens      int64     `json:"total_tokens"`
	RequestCount     int64     `json:"request_count"`
	TotalCost        float64   `json:"total_cost_usd"`
	CaseID           string    `json:"case_id"`
	LastUpdated      time.Time `json:"last_updated"`
}

var (
	// Singleton instance and initialization synchronization.
	internalInstance *InternalRecorder //nolint:gochecknoglobals
	internalOnce     sync.Once         //nolint:gochecknoglobals
)

// NewInternalRecorder returns a singleton internal metrics recorder.
func NewInternalRecorder() *InternalRecorder {
	internalOnce.Do(func() {
		internalInstance = &InternalRecorder{
			cases: make(map[string]*CaseMetrics),
		}
	})
	return internalInstance
}

// ObserveRequest records metrics for a completed LLM request.
func (r *InternalRecorder) ObserveRequest(
	caseID string,
	promptTokens, completionTokens int,
	cost float64,
	success bool,
) {
	// Only record successful requests for token/cost tracking
	if !success || caseID == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c, exists := r.cases[caseID]
	if !exists {
		c = &CaseMetrics{
			CaseID: caseID,
		}
		r.cases[caseID] = c
	}

	c.PromptTokens += int64(promptTokens)
	c.CompletionTokens += int64(completionTokens)
	c.TotalTokens = c.PromptTokens + c.CompletionTokens
	c.TotalCost += cost
	c.RequestCount++
	c.LastUpdated = time.Now()
}

// GetCaseMetrics returns the aggregated metrics for a specific case.
func (r *InternalRecorder) GetCaseMetrics(caseID string) *CaseMetrics {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if c, exists := r.cases[caseID]; exists {
		return &CaseMetrics{
			CaseID:           c.CaseID,
			PromptTokens:     c.PromptTokens,
			CompletionTokens: c.CompletionTokens,
			TotalTokens:      c.TotalTokens,
			TotalCost:        c.TotalCost,
			RequestCount:     c.RequestCount,
			LastUpdated:      c.LastUpdated,
		}
	}
	return nil
}

// GetAllCaseMetrics returns metrics for all cases.
func (r *InternalRecorder) GetAllCaseMetrics() map[string]*CaseMetrics {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]*CaseMetrics)
	for caseID, c := range r.cases {
		result[caseID] = &CaseMetrics{
			CaseID:           c.CaseID,
			PromptTokens:     c.PromptTokens,
			CompletionTokens: c.CompletionTokens,
			TotalTokens:      c.TotalTokens,
			TotalCost:        c.TotalCost,
			RequestCount:     c.RequestCount,
			LastUpdated:      c.LastUpdated,
		}
	}
	return result
}

// ClearCaseMetrics removes metrics for a specific case (useful for testing).
func (r *InternalRecorder) ClearCaseMetrics(caseID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cases, caseID)
}

// Reset clears all metrics (useful for testing).
func (r *InternalRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cases = make(map[string]*CaseMetrics)
}
