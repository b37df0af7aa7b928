package llm

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCompletionRequestAppliesDefaults(t *testing.T) {
	req := NewCompletionRequest([]CompletionMessage{NewUserMessage("hi")})

	assert.Len(t, req.Messages, 1)
	assert.Equal(t, 4096, req.MaxTokens)
	assert.InDelta(t, 0.7, req.Temperature, 0.0001)
}

func TestNewSystemAndUserMessageRoles(t *testing.T) {
	sys := NewSystemMessage("be helpful")
	usr := NewUserMessage("hello")

	assert.Equal(t, RoleSystem, sys.Role)
	assert.Equal(t, RoleUser, usr.Role)
}

func TestLLMConfigValidateRejectsMissingFields(t *testing.T) {
	tests := []struct {
		name string
		cfg  LLMConfig
	}{
		{"empty api key", LLMConfig{ModelName: "m", MaxTokens: 10, Temperature: 0.5}},
		{"empty model name", LLMConfig{APIKey: "k", MaxTokens: 10, Temperature: 0.5}},
		{"non-positive max tokens", LLMConfig{APIKey: "k", ModelName: "m", Temperature: 0.5}},
		{"temperature too high", LLMConfig{APIKey: "k", ModelName: "m", MaxTokens: 10, Temperature: 3}},
		{"temperature negative", LLMConfig{APIKey: "k", ModelName: "m", MaxTokens: 10, Temperature: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.cfg.Validate())
		})
	}
}

func TestLLMConfigValidateAcceptsWellFormedConfig(t *testing.T) {
	cfg := LLMConfig{APIKey: "k", ModelName: "m", MaxTokens: 10, Temperature: 0.5}
	assert.NoError(t, cfg.Validate())
}

func TestStreamToReaderConcatenatesChunksUntilDone(t *testing.T) {
	stream := make(chan StreamChunk, 3)
	stream <- StreamChunk{Content: "hello "}
	stream <- StreamChunk{Content: "world"}
	stream <- StreamChunk{Done: true}
	close(stream)

	data, err := io.ReadAll(StreamToReader(stream))
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))
}

func TestStreamToReaderPropagatesChunkError(t *testing.T) {
	boom := assert.AnError
	stream := make(chan StreamChunk, 1)
	stream <- StreamChunk{Error: boom}
	close(stream)

	_, err := io.ReadAll(StreamToReader(stream))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}
