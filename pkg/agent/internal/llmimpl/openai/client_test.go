package openai

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"orchestrator/pkg/agent/llm"
)

func TestNewClientUsesDefaultModel(t *testing.T) {
	client := NewClient("test-api-key")
	assert.NotNil(t, client)
	var _ llm.LLMClient = client
}

func TestNewClientWithModelReportsThatModelInDefaultConfig(t *testing.T) {
	client := NewClientWithModel("test-api-key", "gpt-4o")
	assert.Equal(t, "gpt-4o", client.GetDefaultConfig().Name)
}

func TestGetDefaultConfigFallsBackToBareEnvelopeForUnknownModel(t *testing.T) {
	client := NewClientWithModel("test-key", "some-future-model")
	cfg := client.GetDefaultConfig()
	assert.Equal(t, "some-future-model", cfg.Name)
}

func TestStreamIsUnsupported(t *testing.T) {
	client := NewClientWithModel("test-key", "gpt-5")
	ch, err := client.Stream(nil, llm.CompletionRequest{}) //nolint:staticcheck // nil ctx acceptable, Stream never blocks on it
	assert.Error(t, err)
	_, ok := <-ch
	assert.False(t, ok, "stream channel should be closed immediately")
}
