package anthropic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orchestrator/pkg/agent/llm"
)

func TestSplitSystemPromptExtractsAndConcatenatesSystemMessages(t *testing.T) {
	tests := []struct {
		name         string
		input        []llm.CompletionMessage
		expectSystem string
		expectRest   int
	}{
		{
			name: "single system message extracted",
			input: []llm.CompletionMessage{
				{Role: llm.RoleSystem, Content: "You are helpful"},
				{Role: llm.RoleUser, Content: "Hello"},
			},
			expectSystem: "You are helpful",
			expectRest:   1,
		},
		{
			name: "multiple system messages concatenated in order",
			input: []llm.CompletionMessage{
				{Role: llm.RoleSystem, Content: "You are helpful"},
				{Role: llm.RoleSystem, Content: "And concise"},
				{Role: llm.RoleUser, Content: "Hello"},
			},
			expectSystem: "You are helpful\n\nAnd concise",
			expectRest:   1,
		},
		{
			name: "no system messages",
			input: []llm.CompletionMessage{
				{Role: llm.RoleUser, Content: "Hello"},
				{Role: llm.RoleAssistant, Content: "Hi"},
			},
			expectSystem: "",
			expectRest:   2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			system, rest := splitSystemPrompt(tt.input)
			assert.Equal(t, tt.expectSystem, system)
			assert.Len(t, rest, tt.expectRest)
		})
	}
}

func TestValidatePreSend(t *testing.T) {
	tests := []struct {
		name        string
		messages    []llm.CompletionMessage
		expectErr   bool
		errContains string
	}{
		{
			name: "valid alternating messages",
			messages: []llm.CompletionMessage{
				{Role: llm.RoleUser, Content: "Hello"},
				{Role: llm.RoleAssistant, Content: "Hi"},
				{Role: llm.RoleUser, Content: "Bye"},
			},
		},
		{
			name:      "empty message list",
			messages:  nil,
			expectErr: true,
		},
		{
			name: "system message in array",
			messages: []llm.CompletionMessage{
				{Role: llm.RoleUser, Content: "Hello"},
				{Role: llm.RoleSystem, Content: "You are helpful"},
			},
			expectErr:   true,
			errContains: "system role must not appear",
		},
		{
			name: "consecutive user messages",
			messages: []llm.CompletionMessage{
				{Role: llm.RoleUser, Content: "Hello"},
				{Role: llm.RoleUser, Content: "Anyone?"},
			},
			expectErr:   true,
			errContains: "strictly alternate",
		},
		{
			name: "starts with assistant",
			messages: []llm.CompletionMessage{
				{Role: llm.RoleAssistant, Content: "Hello"},
			},
			expectErr:   true,
			errContains: "first message must be from the user",
		},
		{
			name: "ends with assistant",
			messages: []llm.CompletionMessage{
				{Role: llm.RoleUser, Content: "Hello"},
				{Role: llm.RoleAssistant, Content: "Hi"},
			},
			expectErr:   true,
			errContains: "last message must be from the user",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePreSend(tt.messages)
			if tt.expectErr {
				require.Error(t, err)
				if tt.errContains != "" {
					assert.ErrorContains(t, err, tt.errContains)
				}
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestNewClaudeClientImplementsLLMClient(t *testing.T) {
	client := NewClaudeClient("test-api-key")
	require.NotNil(t, client)
	var _ llm.LLMClient = client
}

func TestNewClaudeClientWithModelReportsThatModelInDefaultConfig(t *testing.T) {
	client := NewClaudeClientWithModel("test-api-key", "claude-3-sonnet-20240229")
	assert.Equal(t, "claude-3-sonnet-20240229", client.GetDefaultConfig().Name)
}

func TestExtractStatusCode(t *testing.T) {
	assert.Equal(t, 429, extractStatusCode("anthropic: error, status 429: rate limited"))
	assert.Equal(t, 0, extractStatusCode("connection reset by peer"))
}
