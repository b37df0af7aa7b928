package main

import (
	"context"
	"fmt"
	"time"

	"orchestrator/pkg/agent/internal/llmimpl/anthropic"
	"orchestrator/pkg/agent/internal/llmimpl/google"
	"orchestrator/pkg/agent/internal/llmimpl/ollama"
	"orchestrator/pkg/agent/internal/llmimpl/openai"
	"orchestrator/pkg/agent/llm"
	"orchestrator/pkg/agent/llmerrors"
	"orchestrator/pkg/agent/middleware/metrics"
	"orchestrator/pkg/agent/middleware/resilience/circuit"
	"orchestrator/pkg/agent/middleware/resilience/ratelimit"
	"orchestrator/pkg/agent/middleware/resilience/retry"
	"orchestrator/pkg/agent/middleware/resilience/timeout"
	"orchestrator/pkg/config"
	"orchestrator/pkg/decider"
	"orchestrator/pkg/engine"
	"orchestrator/pkg/logx"
)

// rateLimitConfigs mirrors each provider's advertised capacity (spec §5
// resource limits), derated by config.RateLimitBufferFactor inside the
// limiter itself. Burst allowances live in the provider's own API docs, not
// here: ratelimit.Config only tracks the steady-state budget the token
// bucket refills toward.
var rateLimitConfigs = map[string]ratelimit.Config{
	config.ProviderAnthropic:      {TokensPerMinute: 300000, MaxConcurrency: 5},
	config.ProviderOpenAI:         {TokensPerMinute: 100000, MaxConcurrency: 3},
	config.ProviderOpenAIOfficial: {TokensPerMinute: 150000, MaxConcurrency: 5},
	config.ProviderGoogle:         {TokensPerMinute: 200000, MaxConcurrency: 5},
}

// buildLLMClient selects a provider implementation from cfg and wraps it with
// the resilience middleware chain every session's Decider shares: a
// per-request timeout, a circuit breaker that gives a failing provider time
// to recover, and a bounded retry with exponential backoff that absorbs
// transient errors before the Decider ever has to classify and surface one
// to the Engine (resolving the single-attempt-vs-backoff question in favor
// of an in-turn backoff handled below the Decider, not above it).
func buildLLMClient(cfg envConfig) (llm.LLMClient, error) {
	base, err := baseLLMClient(cfg)
	if err != nil {
		return nil, err
	}

	log := logx.NewLogger("decider-llm")
	breaker := circuit.New(circuit.DefaultConfig)
	retryPolicy := retry.NewPolicy(retry.DefaultConfig, retry.ShouldRetry)

	return llm.Chain(base,
		retry.Middleware(retryPolicy, log),
		circuit.Middleware(breaker),
		timeout.Middleware(20*time.Second),
	), nil
}

// buildDeciderFactory wraps the shared resilient client from buildLLMClient
// with a rate limiter and a Prometheus recorder. One recorder and one
// per-provider limiter map are shared by all sessions; each session's
// middleware tags its calls with the session's case id, so cost metrics are
// labelled per case while token budgets are drawn per provider. The returned
// shutdown func stops the limiter's background refill timers; call it when
// the server exits.
func buildDeciderFactory(cfg envConfig) (engine.DeciderFactory, func(), error) {
	resilient, err := buildLLMClient(cfg)
	if err != nil {
		return nil, nil, err
	}

	recorder := metrics.NewPrometheusRecorder()
	log := logx.NewLogger("decider-llm")
	limiterMap := ratelimit.NewProviderLimiterMap(context.Background(), rateLimitConfigs, 2*time.Minute)

	factory := func(sess engine.SessionState) *decider.Decider {
		client := llm.Chain(resilient,
			metrics.Middleware(recorder, nil, sess, log),
			ratelimit.Middleware(limiterMap, nil, sess),
		)
		return decider.New(client)
	}

	return factory, limiterMap.Stop, nil
}

func baseLLMClient(cfg envConfig) (llm.LLMClient, error) {
	switch cfg.LLMProvider {
	case "openai":
		if cfg.LLMEndpoint != "" {
			return openai.NewClientWithEndpoint(cfg.LLMAPIKey, cfg.LLMDeployment, cfg.LLMEndpoint, cfg.LLMAPIVersion), nil
		}
		return openai.NewClientWithModel(cfg.LLMAPIKey, cfg.LLMDeployment), nil

	case "azure":
		if cfg.LLMEndpoint == "" {
			return nil, fmt.Errorf("LLM_PROVIDER=azure requires LLM_ENDPOINT")
		}
		return openai.NewClientWithEndpoint(cfg.LLMAPIKey, cfg.LLMDeployment, cfg.LLMEndpoint, cfg.LLMAPIVersion), nil

	case "anthropic":
		return anthropic.NewClaudeClientWithModel(cfg.LLMAPIKey, cfg.LLMDeployment), nil

	case "google":
		return google.NewGeminiClientWithModel(cfg.LLMAPIKey, cfg.LLMDeployment), nil

	case "ollama":
		return ollama.NewOllamaClientWithModel(cfg.LLMEndpoint, cfg.LLMDeployment), nil

	default:
		return nil, llmerrors.NewError(llmerrors.ErrorTypeBadPrompt, fmt.Sprintf("unknown LLM_PROVIDER %q", cfg.LLMProvider))
	}
}
