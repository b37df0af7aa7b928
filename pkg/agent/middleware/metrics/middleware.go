// Package metrics provides metrics middleware for LLM clients.
package metrics

import (
	"context"
	"time"

	"orchestrator/pkg/agent/llm"
	"orchestrator/pkg/config"
	"orchestrator/pkg/logx"
	"orchestrator/pkg/utils"
)

// UsageExtractor extracts token usage from a request/response pair.
type UsageExtractor func(req llm.CompletionRequest, resp llm.CompletionResponse) (promptTokens, completionTokens int)

// DefaultUsageExtractor estimates token counts from message/response text
// using the same approximate counter the rate limiter uses to budget
// requests, so cost tracking and throttling agree on roughly the same numbers.
func DefaultUsageExtractor(req llm.CompletionRequest, resp llm.CompletionResponse) (promptTokens, completionTokens int) {
	var promptText string
	for i := range req.Messages {
		promptText += req.Messages[i].Content + "\n"
	}
	return utils.CountTokensSimple(promptText), utils.CountTokensSimple(resp.Content)
}

// Middleware returns a middleware function that records metrics for each
// Decider LLM call: latency, token usage, and success/failure, tagged by
// the case the request belongs to.
func Middleware(recorder Recorder, usageExtractor UsageExtractor, stateProvider StateProvider, logger *logx.Logger) llm.Middleware {
	if usageExtractor == nil {
		usageExtractor = DefaultUsageExtractor
	}

	return func(next llm.LLMClient) llm.LLMClient {
		return llm.WrapClient(
			func(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
				start := time.Now()
				modelConfig := next.GetDefaultConfig()

				resp, err := next.Complete(ctx, req)
				duration := time.Since(start)

				var promptTokens, completionTokens int
				if err == nil {
					promptTokens, completionTokens = usageExtractor(req, resp)
				}

				caseID := stateProvider.GetCaseID()
				cost := modelConfig.CPM * float64(promptTokens+completionTokens) / 1_000_000
				recorder.ObserveRequest(caseID, promptTokens, completionTokens, cost, err == nil)

				if err == nil {
					logger.Info("LLM call to model '%s' for case %s: latency %.3gs, tokens %d+%d", modelConfig.Name, caseID, duration.Seconds(), promptTokens, completionTokens)
				} else {
					logger.Error("LLM call to model '%s' for case %s failed: latency %.3gs, error %v", modelConfig.Name, caseID, duration.Seconds(), err)
				}

				return resp, err //nolint:wrapcheck // Middleware should pass through errors unchanged
			},
			func(ctx context.Context, req llm.CompletionRequest) (<-chan llm.StreamChunk, error) {
				start := time.Now()
				modelConfig := next.GetDefaultConfig()

				ch, err := next.Stream(ctx, req)
				duration := time.Since(start)

				caseID := stateProvider.GetCaseID()
				recorder.ObserveRequest(caseID, 0, 0, 0, err == nil)

				if err == nil {
					logger.Info("LLM stream to model '%s' for case %s started: setup latency %.3gs", modelConfig.Name, caseID, duration.Seconds())
				} else {
					logger.Error("LLM stream to model '%s' for case %s failed: setup latency %.3gs, error %v", modelConfig.Name, caseID, duration.Seconds(), err)
				}

				return ch, err //nolint:wrapcheck // Middleware should pass through errors unchanged
			},
			func() config.Model {
				return next.GetDefaultConfig()
			},
		)
	}
}
