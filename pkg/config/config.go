// Package config holds the LLM model registry and resilience-middleware
// constants the Decider and its middleware chain depend on. Unlike the
// teacher's project-wide configuration singleton (per-project JSON, git/build/
// container settings, YAML overlays, encrypted secrets), the Case Agent
// Orchestrator has no multi-project or coding-agent surface to configure:
// what survives here is the piece every provider client and resilience
// middleware actually imports — model capability/cost table, provider
// mapping, and the handful of constants the rate limiter falls back on before
// a deployment overrides them.
package config

import (
	"fmt"
	"os"
)

// Model represents an LLM model with its capabilities and limits.
type Model struct {
	Name           string  `json:"name"`            // e.g. "claude-sonnet-4-20250514"
	MaxTPM         int     `json:"max_tpm"`         // tokens per minute
	MaxConnections int     `json:"max_connections"` // max concurrent connections
	CPM            float64 `json:"cpm"`             // cost per million tokens (USD)
	DailyBudget    float64 `json:"daily_budget"`    // max spend per day (USD)
}

// ModelDefaults defines default parameters for every model the Decider
// knows how to talk to.
//
//nolint:gochecknoglobals // Intentional global for model definitions
var ModelDefaults = map[string]Model{
	ModelClaudeSonnet3: {
		Name:           ModelClaudeSonnet3,
		MaxTPM:         300000,
		MaxConnections: 5,
		CPM:            3.0,
		DailyBudget:    10.0,
	},
	ModelClaudeSonnet4: {
		Name:           ModelClaudeSonnet4,
		MaxTPM:         3000000,
		MaxConnections: 5,
		CPM:            3.0,
		DailyBudget:    10.0,
	},
	ModelOpenAIO3Mini: {
		Name:           ModelOpenAIO3Mini,
		MaxTPM:         100000,
		MaxConnections: 3,
		CPM:            0.6,
		DailyBudget:    5.0,
	},
	ModelOpenAIO3: {
		Name:           ModelOpenAIO3,
		MaxTPM:         100000,
		MaxConnections: 3,
		CPM:            0.6,
		DailyBudget:    5.0,
	},
	ModelGPT5: {
		Name:           ModelGPT5,
		MaxTPM:         150000,
		MaxConnections: 5,
		CPM:            30.0,
		DailyBudget:    100.0,
	},
	ModelGemini: {
		Name:           ModelGemini,
		MaxTPM:         200000,
		MaxConnections: 5,
		CPM:            1.25,
		DailyBudget:    20.0,
	},
}

// ModelProviders maps each known model to its API provider, used by the
// rate limiter to route a request to the right provider's token bucket.
//
//nolint:gochecknoglobals // Intentional global for model-to-provider mapping
var ModelProviders = map[string]string{
	ModelClaudeSonnet3: ProviderAnthropic,
	ModelClaudeSonnet4: ProviderAnthropic,
	ModelOpenAIO3:      ProviderOpenAI,
	ModelOpenAIO3Mini:  ProviderOpenAIOfficial,
	ModelGPT5:          ProviderOpenAIOfficial,
	ModelGemini:        ProviderGoogle,
}

// IsModelSupported checks if we have defaults for this model.
func IsModelSupported(modelName string) bool {
	_, exists := ModelDefaults[modelName]
	return exists
}

// GetModelProvider returns the API provider for a given model.
func GetModelProvider(modelName string) (string, error) {
	provider, exists := ModelProviders[modelName]
	if !exists {
		return "", fmt.Errorf("unknown model: %s", modelName)
	}
	return provider, nil
}

// GetAPIKey returns the API key for a given provider from environment
// variables.
func GetAPIKey(provider string) (string, error) {
	var envVar string
	switch provider {
	case ProviderAnthropic:
		envVar = EnvAnthropicAPIKey
	case ProviderOpenAI, ProviderOpenAIOfficial:
		envVar = EnvOpenAIAPIKey
	case ProviderGoogle:
		envVar = EnvGoogleAPIKey
	default:
		return "", fmt.Errorf("unknown provider: %s", provider)
	}

	key := os.Getenv(envVar)
	if key == "" {
		return "", fmt.Errorf("API key not found: %s environment variable is not set", envVar)
	}
	return key, nil
}

// Resilience and model-registry constants shared by the Decider's provider
// clients and middleware chain.
const (
	// Model name constants.
	ModelClaudeSonnet4      = "claude-sonnet-4-20250514"
	ModelClaudeSonnet3      = "claude-3-7-sonnet-20250219"
	ModelClaudeSonnetLatest = ModelClaudeSonnet4
	ModelOpenAIO3           = "o3"
	ModelOpenAIO3Mini       = "o3-mini"
	ModelOpenAIO3Latest     = ModelOpenAIO3
	ModelGPT5               = "gpt-5"
	ModelGemini             = "gemini-2.0-flash"

	// Provider constants for middleware rate limiting.
	ProviderAnthropic      = "anthropic"
	ProviderOpenAI         = "openai"
	ProviderOpenAIOfficial = "openai_official"
	ProviderGoogle         = "google"

	// API key environment variable names.
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
	EnvOpenAIAPIKey    = "OPENAI_API_KEY"
	EnvGoogleAPIKey    = "GOOGLE_API_KEY"

	// MaxRetryAttempts is an attempt-count constant; retry.DefaultConfig sets
	// its own MaxAttempts (5) and does not read it.
	MaxRetryAttempts = 3

	// RateLimitBufferFactor shrinks each provider's advertised
	// tokens-per-minute capacity to leave headroom for token-count
	// estimation error (pkg/agent/middleware/resilience/ratelimit).
	RateLimitBufferFactor = 0.9

	// MaxConcurrentSessions bounds the rate limiter's worst-case wait
	// calculation: this many case sessions sharing one provider's token
	// bucket before a request's turn comes around is the point past which
	// something is wrong (a stuck limiter or a misconfigured provider)
	// rather than ordinary contention.
	MaxConcurrentSessions = 10
)

// GetMaxConcurrentSessions returns the ceiling used to size the rate
// limiter's worst-case wait timeout (spec §5 resource limits).
func GetMaxConcurrentSessions() int {
	return MaxConcurrentSessions
}
