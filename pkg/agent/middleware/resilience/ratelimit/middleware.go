// Package ratelimit provides rate limiting middleware for LLM clients.
package ratelimit

import (
	"context"

	"orchestrator/pkg/agent/llm"
	"orchestrator/pkg/agent/middleware/metrics"
	"orchestrator/pkg/config"
	"orchestrator/pkg/logx"
)

// Middleware returns a middleware function that wraps an LLM client with rate
// limiting. It estimates token usage and acquires both a token-bucket budget
// and a concurrency slot from the limiter of the model's provider, tagged with
// the calling case's id, before making requests.
func Middleware(limiterMap *ProviderLimiterMap, estimator TokenEstimator, stateProvider metrics.StateProvider) llm.Middleware {
	if estimator == nil {
		estimator = NewDefaultTokenEstimator()
	}

	return func(next llm.LLMClient) llm.LLMClient {
		return llm.WrapClient(
			func(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
				modelConfig := next.GetDefaultConfig()

				limiter, err := limiterMap.GetLimiter(modelConfig.Name)
				if err != nil {
					logx.Warnf("RATELIMIT: no limiter for model %s: %v", modelConfig.Name, err)
					return llm.CompletionResponse{}, err
				}

				promptTokens := estimator.EstimatePrompt(req)
				totalTokens := promptTokens + req.MaxTokens

				release, err := limiter.Acquire(ctx, totalTokens, stateProvider.GetCaseID())
				if err != nil {
					return llm.CompletionResponse{}, err //nolint:wrapcheck // Middleware should pass through errors unchanged
				}
				defer release()

				return next.Complete(ctx, req)
			},
			func(ctx context.Context, req llm.CompletionRequest) (<-chan llm.StreamChunk, error) {
				modelConfig := next.GetDefaultConfig()

				limiter, err := limiterMap.GetLimiter(modelConfig.Name)
				if err != nil {
					logx.Warnf("RATELIMIT: no limiter for model %s: %v", modelConfig.Name, err)
					return nil, err
				}

				promptTokens := estimator.EstimatePrompt(req)
				totalTokens := promptTokens + req.MaxTokens

				release, err := limiter.Acquire(ctx, totalTokens, stateProvider.GetCaseID())
				if err != nil {
					return nil, err //nolint:wrapcheck // Middleware should pass through errors unchanged
				}
				defer release()

				return next.Stream(ctx, req)
			},
			func() config.Model {
				return next.GetDefaultConfig()
			},
		)
	}
}
