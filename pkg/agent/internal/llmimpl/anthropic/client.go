// Package anthropic provides a Claude Messages API client implementing
// llm.LLMClient, for cases where the Decider is configured to use an
// Anthropic-hosted model.
package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"orchestrator/pkg/agent/llm"
	"orchestrator/pkg/agent/llmerrors"
	"orchestrator/pkg/config"
)

// ClaudeClient wraps the Anthropic SDK client to implement llm.LLMClient.
type ClaudeClient struct {
	client anthropic.Client
	model  anthropic.Model
}

// NewClaudeClient creates an Anthropic client for the default model.
func NewClaudeClient(apiKey string) llm.LLMClient {
	return NewClaudeClientWithModel(apiKey, config.ModelClaudeSonnetLatest)
}

// NewClaudeClientWithModel creates an Anthropic client for a specific model.
func NewClaudeClientWithModel(apiKey, model string) llm.LLMClient {
	return &ClaudeClient{
		// Retries are handled by our middleware layer, not the SDK.
		client: anthropic.NewClient(option.WithAPIKey(apiKey), option.WithMaxRetries(0)),
		model:  anthropic.Model(model),
	}
}

// validatePreSend checks the message array against the constraints the
// Messages API enforces: no system role in the array, strict user/assistant
// alternation, first and last message must be from the user.
func validatePreSend(messages []llm.CompletionMessage) error {
	if len(messages) == 0 {
		return fmt.Errorf("anthropic: no messages to send")
	}
	for i := range messages {
		switch messages[i].Role {
		case llm.RoleUser, llm.RoleAssistant:
		case llm.RoleSystem:
			return fmt.Errorf("anthropic: system role must not appear in the message array")
		default:
			return fmt.Errorf("anthropic: unsupported role %q", messages[i].Role)
		}
	}
	if messages[0].Role != llm.RoleUser {
		return fmt.Errorf("anthropic: first message must be from the user")
	}
	if messages[len(messages)-1].Role != llm.RoleUser {
		return fmt.Errorf("anthropic: last message must be from the user")
	}
	for i := 1; i < len(messages); i++ {
		if messages[i].Role == messages[i-1].Role {
			return fmt.Errorf("anthropic: messages must strictly alternate user/assistant")
		}
	}
	return nil
}

// splitSystemPrompt pulls any system-role messages to the top level (where
// the Messages API expects them) and returns the remaining conversation.
// The Decider only ever sends a system message followed by a single user
// message, so no merging of consecutive same-role messages is needed here,
// unlike the multi-turn tool-result conversations this client used to carry.
func splitSystemPrompt(messages []llm.CompletionMessage) (systemPrompt string, rest []llm.CompletionMessage) {
	for i := range messages {
		if messages[i].Role == llm.RoleSystem {
			if systemPrompt != "" {
				systemPrompt += "\n\n"
			}
			systemPrompt += messages[i].Content
			continue
		}
		rest = append(rest, messages[i])
	}
	return systemPrompt, rest
}

// Complete sends the decision request through the Messages API and parses
// exactly the shape the Decider needs: free text plus every tool use block
// in the reply.
func (c *ClaudeClient) Complete(ctx context.Context, in llm.CompletionRequest) (llm.CompletionResponse, error) {
	systemPrompt, rest := splitSystemPrompt(in.Messages)
	if err := validatePreSend(rest); err != nil {
		return llm.CompletionResponse{}, llmerrors.NewError(llmerrors.ErrorTypeBadPrompt, err.Error())
	}

	messages := make([]anthropic.MessageParam, 0, len(rest))
	for i := range rest {
		messages = append(messages, anthropic.MessageParam{
			Role:    anthropic.MessageParamRole(rest[i].Role),
			Content: []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(rest[i].Content)},
		})
	}

	maxTokens := int64(in.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	params := anthropic.MessageNewParams{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: anthropic.Float(float64(in.Temperature)),
	}
	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: systemPrompt, Type: "text"}}
	}

	if len(in.Tools) > 0 {
		toolParams := make([]anthropic.ToolUnionParam, 0, len(in.Tools))
		for i := range in.Tools {
			tool := &in.Tools[i]
			props := make(map[string]any, len(tool.InputSchema.Properties))
			for name, prop := range tool.InputSchema.Properties {
				propMap := map[string]any{"type": prop.Type}
				if prop.Description != "" {
					propMap["description"] = prop.Description
				}
				props[name] = propMap
			}
			schema := anthropic.ToolInputSchemaParam{
				Type:       "object",
				Properties: any(props),
				Required:   tool.InputSchema.Required,
			}
			toolParams = append(toolParams, anthropic.ToolUnionParamOfTool(schema, tool.Name))
		}
		params.Tools = toolParams
		// The Decider always offers exactly the tools valid for its current
		// step; let the model pick among them rather than forcing one.
		params.ToolChoice = anthropic.ToolChoiceUnionParam{OfAuto: &anthropic.ToolChoiceAutoParam{}}
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return llm.CompletionResponse{}, c.classifyError(err)
	}
	if resp == nil || len(resp.Content) == 0 {
		return llm.CompletionResponse{}, llmerrors.NewError(llmerrors.ErrorTypeEmptyResponse, "received empty or nil response from Claude API")
	}

	var (
		responseText string
		toolCalls    []llm.ToolCall
	)
	for i := range resp.Content {
		block := &resp.Content[i]
		switch block.Type {
		case "text":
			responseText += block.AsText().Text
		case "tool_use":
			tu := block.AsToolUse()
			var params map[string]any
			if len(tu.Input) > 0 {
				if err := json.Unmarshal(tu.Input, &params); err != nil {
					return llm.CompletionResponse{}, fmt.Errorf("anthropic: failed to parse tool input: %w", err)
				}
			}
			toolCalls = append(toolCalls, llm.ToolCall{ID: tu.ID, Name: tu.Name, Parameters: params})
		}
	}

	return llm.CompletionResponse{Content: responseText, ToolCalls: toolCalls}, nil
}

// Stream is not exercised by the Decider (one decision per iteration, never
// streamed), but is required by llm.LLMClient.
func (c *ClaudeClient) Stream(_ context.Context, _ llm.CompletionRequest) (<-chan llm.StreamChunk, error) {
	ch := make(chan llm.StreamChunk, 1)
	close(ch)
	return ch, fmt.Errorf("anthropic: streaming is not supported by the Decider")
}

// GetDefaultConfig returns the model's resource/cost envelope.
func (c *ClaudeClient) GetDefaultConfig() config.Model {
	if m, ok := config.ModelDefaults[string(c.model)]; ok {
		return m
	}
	return config.Model{Name: string(c.model)}
}

// classifyError maps Anthropic SDK errors to our structured error types.
func (c *ClaudeClient) classifyError(err error) *llmerrors.Error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return llmerrors.NewErrorWithCause(llmerrors.ErrorTypeTransient, err, "request timeout")
	}
	if errors.Is(err, context.Canceled) {
		return llmerrors.NewErrorWithCause(llmerrors.ErrorTypeTransient, err, "request canceled")
	}

	errStr := err.Error()
	switch extractStatusCode(errStr) {
	case 401, 403:
		return llmerrors.NewErrorWithCause(llmerrors.ErrorTypeAuth, err, "authentication failed - check API key")
	case 429:
		return llmerrors.NewErrorWithCause(llmerrors.ErrorTypeRateLimit, err, "rate limit exceeded")
	case 400:
		return llmerrors.NewErrorWithCause(llmerrors.ErrorTypeBadPrompt, err, "bad request - check prompt format")
	case 500, 502, 503, 504:
		return llmerrors.NewErrorWithCause(llmerrors.ErrorTypeTransient, err, "server error")
	}

	lower := strings.ToLower(errStr)
	switch {
	case strings.Contains(lower, "timeout"), strings.Contains(lower, "connection"), strings.Contains(lower, "eof"), strings.Contains(lower, "reset"):
		return llmerrors.NewErrorWithCause(llmerrors.ErrorTypeTransient, err, "network or connection error")
	case strings.Contains(lower, "rate"), strings.Contains(lower, "quota"):
		return llmerrors.NewErrorWithCause(llmerrors.ErrorTypeRateLimit, err, "rate limiting detected")
	case strings.Contains(lower, "auth"), strings.Contains(lower, "unauthorized"):
		return llmerrors.NewErrorWithCause(llmerrors.ErrorTypeAuth, err, "authentication error")
	case strings.Contains(lower, "invalid"), strings.Contains(lower, "malformed"):
		return llmerrors.NewErrorWithCause(llmerrors.ErrorTypeBadPrompt, err, "prompt or request error")
	default:
		return llmerrors.NewErrorWithCause(llmerrors.ErrorTypeUnknown, err, "unclassified error")
	}
}

// extractStatusCode pulls an HTTP status code out of an SDK error string, if
// one is present, so classifyError can key off it without depending on
// internal SDK error types.
func extractStatusCode(errStr string) int {
	for _, code := range []string{"400", "401", "403", "429", "500", "502", "503", "504"} {
		if strings.Contains(errStr, code) {
			n, _ := strconv.Atoi(code)
			return n
		}
	}
	return 0
}
