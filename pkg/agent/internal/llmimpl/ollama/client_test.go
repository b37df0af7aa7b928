package ollama

import (
	"testing"

	"github.com/ollama/ollama/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orchestrator/pkg/agent/llm"
	"orchestrator/pkg/tools"
)

func makeToolCallArgs(m map[string]any) api.ToolCallFunctionArguments {
	args := api.NewToolCallFunctionArguments()
	for k, v := range m {
		args.Set(k, v)
	}
	return args
}

func TestNewOllamaClientWithModel(t *testing.T) {
	tests := []struct {
		name    string
		hostURL string
		model   string
	}{
		{name: "valid host and model", hostURL: "http://localhost:11434", model: "phi4:latest"},
		{name: "custom host", hostURL: "http://192.168.1.100:11434", model: "llama3.1:8b"},
		{name: "host without scheme still sets model", hostURL: "not-a-valid-url", model: "mistral:7b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewOllamaClientWithModel(tt.hostURL, tt.model)
			require.NotNil(t, client)
			assert.Equal(t, tt.model, client.GetDefaultConfig().Name)
		})
	}
}

func TestConvertMessagesToOllama(t *testing.T) {
	tests := []struct {
		name     string
		messages []llm.CompletionMessage
		wantLen  int
		wantErr  bool
	}{
		{name: "empty messages returns error", messages: []llm.CompletionMessage{}, wantErr: true},
		{
			name:     "single user message",
			messages: []llm.CompletionMessage{{Role: llm.RoleUser, Content: "Hello"}},
			wantLen:  1,
		},
		{
			name: "system and user messages",
			messages: []llm.CompletionMessage{
				{Role: llm.RoleSystem, Content: "You are helpful"},
				{Role: llm.RoleUser, Content: "Hello"},
			},
			wantLen: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := convertMessagesToOllama(tt.messages)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, result, tt.wantLen)
		})
	}
}

func TestConvertMessagesToOllamaPreservesRoleMapping(t *testing.T) {
	messages := []llm.CompletionMessage{
		{Role: llm.RoleSystem, Content: "System prompt"},
		{Role: llm.RoleUser, Content: "User message"},
		{Role: llm.RoleAssistant, Content: "Assistant response"},
	}

	result, err := convertMessagesToOllama(messages)
	require.NoError(t, err)
	require.Len(t, result, 3)

	assert.Equal(t, "system", result[0].Role)
	assert.Equal(t, "user", result[1].Role)
	assert.Equal(t, "assistant", result[2].Role)
}

func TestConvertToolsToOllama(t *testing.T) {
	toolDefs := []tools.ToolDefinition{
		{
			Name:        "get_weather",
			Description: "Get weather for a location",
			InputSchema: tools.InputSchema{
				Type: "object",
				Properties: map[string]tools.Property{
					"location": {Type: "string", Description: "City name"},
					"unit":     {Type: "string", Description: "Temperature unit"},
				},
				Required: []string{"location"},
			},
		},
	}

	result := convertToolsToOllama(toolDefs)
	require.Len(t, result, 1)

	tool := result[0]
	assert.Equal(t, "function", tool.Type)
	assert.Equal(t, "get_weather", tool.Function.Name)
	assert.Equal(t, "Get weather for a location", tool.Function.Description)
	assert.Equal(t, "object", tool.Function.Parameters.Type)
	_, hasLocation := tool.Function.Parameters.Properties.Get("location")
	_, hasUnit := tool.Function.Parameters.Properties.Get("unit")
	assert.True(t, hasLocation, "should have location property")
	assert.True(t, hasUnit, "should have unit property")
	assert.Equal(t, []string{"location"}, tool.Function.Parameters.Required)
}

func TestConvertPropertyToOllama(t *testing.T) {
	tests := []struct {
		name     string
		prop     tools.Property
		wantType string
		wantDesc string
	}{
		{name: "simple string property", prop: tools.Property{Type: "string", Description: "A string value"}, wantType: "string", wantDesc: "A string value"},
		{name: "integer property", prop: tools.Property{Type: "integer", Description: "A number"}, wantType: "integer", wantDesc: "A number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := convertPropertyToOllama(tt.prop)
			assert.Equal(t, api.PropertyType{tt.wantType}, result.Type)
			assert.Equal(t, tt.wantDesc, result.Description)
		})
	}
}

func TestConvertToolCallsFromOllama(t *testing.T) {
	tests := []struct {
		name  string
		calls []api.ToolCall
		want  []llm.ToolCall
	}{
		{name: "empty calls", calls: []api.ToolCall{}, want: []llm.ToolCall{}},
		{
			name: "single call with ID",
			calls: []api.ToolCall{
				{ID: "call_abc123", Function: api.ToolCallFunction{Name: "get_weather", Arguments: makeToolCallArgs(map[string]any{"location": "NYC"})}},
			},
			want: []llm.ToolCall{{ID: "call_abc123", Name: "get_weather", Parameters: map[string]any{"location": "NYC"}}},
		},
		{
			name: "call without ID gets generated",
			calls: []api.ToolCall{
				{Function: api.ToolCallFunction{Name: "search", Arguments: makeToolCallArgs(map[string]any{"query": "test"})}},
			},
			want: []llm.ToolCall{{ID: "call_0", Name: "search", Parameters: map[string]any{"query": "test"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := convertToolCallsFromOllama(tt.calls)
			require.Len(t, result, len(tt.want))
			for i, want := range tt.want {
				assert.Equal(t, want.ID, result[i].ID)
				assert.Equal(t, want.Name, result[i].Name)
				assert.Equal(t, want.Parameters, result[i].Parameters)
			}
		})
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name        string
		errMsg      string
		wantContain string
	}{
		{name: "nil error", errMsg: "", wantContain: ""},
		{name: "connection refused", errMsg: "dial tcp: connection refused", wantContain: "not reachable"},
		{name: "model not found", errMsg: "model 'xyz' not found", wantContain: "not found"},
		{name: "context canceled", errMsg: "context canceled", wantContain: "canceled"},
		{name: "timeout", errMsg: "request timeout exceeded", wantContain: "timeout"},
		{name: "unknown error", errMsg: "something unexpected happened", wantContain: "API error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var inputErr error
			if tt.errMsg != "" {
				inputErr = &testError{msg: tt.errMsg}
			}

			result := classifyError(inputErr)
			if tt.wantContain == "" {
				assert.Nil(t, result)
				return
			}
			require.NotNil(t, result)
			assert.Contains(t, result.Error(), tt.wantContain)
		})
	}
}

type testError struct {
	msg string
}

func (e *testError) Error() string {
	return e.msg
}
