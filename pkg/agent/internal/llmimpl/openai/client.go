// Package openai provides an OpenAI Responses API client implementing
// llm.LLMClient, for cases where the Decider is configured to use an
// OpenAI-hosted model.
package openai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"

	"orchestrator/pkg/agent/llm"
	"orchestrator/pkg/config"
)

// Client wraps the official OpenAI Go client to implement llm.LLMClient.
type Client struct {
	client openai.Client
	model  string
}

// NewClient creates an OpenAI client for the default model.
func NewClient(apiKey string) llm.LLMClient {
	return NewClientWithModel(apiKey, config.ModelGPT5)
}

// NewClientWithModel creates an OpenAI client for a specific model.
func NewClientWithModel(apiKey, model string) llm.LLMClient {
	return &Client{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

// NewClientWithEndpoint creates an OpenAI-compatible client pointed at a
// custom base URL, for an Azure OpenAI deployment reached through
// LLM_ENDPOINT/LLM_DEPLOYMENT/LLM_API_VERSION rather than the public
// OpenAI API. deployment is used as the model name on every request.
func NewClientWithEndpoint(apiKey, deployment, baseURL, apiVersion string) llm.LLMClient {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if apiVersion != "" {
		opts = append(opts, option.WithQuery("api-version", apiVersion))
	}
	return &Client{
		client: openai.NewClient(opts...),
		model:  deployment,
	}
}

// Complete sends the decision request through the Responses API and parses
// exactly the shape the Decider needs: free text plus every function call in
// the reply.
func (c *Client) Complete(ctx context.Context, in llm.CompletionRequest) (llm.CompletionResponse, error) {
	var inputText string
	for i := range in.Messages {
		msg := &in.Messages[i]
		switch msg.Role {
		case llm.RoleSystem:
			inputText += fmt.Sprintf("System: %s\n\n", msg.Content)
		case llm.RoleAssistant:
			inputText += fmt.Sprintf("Assistant: %s\n\n", msg.Content)
		default:
			inputText += msg.Content
		}
	}

	maxTokens := in.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	params := responses.ResponseNewParams{
		Model:           c.model,
		MaxOutputTokens: openai.Int(int64(maxTokens)),
		Input:           responses.ResponseNewParamsInputUnion{OfString: openai.String(inputText)},
	}

	if len(in.Tools) > 0 {
		toolParams := make([]responses.ToolUnionParam, len(in.Tools))
		for i := range in.Tools {
			tool := &in.Tools[i]
			properties := make(map[string]interface{}, len(tool.InputSchema.Properties))
			for name, prop := range tool.InputSchema.Properties {
				properties[name] = map[string]interface{}{
					"type":        prop.Type,
					"description": prop.Description,
				}
			}
			toolParams[i] = responses.ToolUnionParam{
				OfFunction: &responses.FunctionToolParam{
					Name:        tool.Name,
					Description: openai.String(tool.Description),
					Parameters: openai.FunctionParameters(map[string]interface{}{
						"type":       "object",
						"properties": properties,
						"required":   tool.InputSchema.Required,
					}),
				},
			}
		}
		params.Tools = toolParams
	}

	resp, err := c.client.Responses.New(ctx, params)
	if err != nil {
		return llm.CompletionResponse{}, fmt.Errorf("openai responses API: %w", err)
	}
	if resp == nil {
		return llm.CompletionResponse{}, fmt.Errorf("openai responses API: empty response")
	}

	var toolCalls []llm.ToolCall
	for i := range resp.Output {
		item := &resp.Output[i]
		if item.Type != "function_call" {
			continue
		}
		fc := item.AsFunctionCall()
		var params map[string]interface{}
		if fc.Arguments != "" {
			if err := json.Unmarshal([]byte(fc.Arguments), &params); err != nil {
				continue
			}
		}
		toolCalls = append(toolCalls, llm.ToolCall{ID: fc.ID, Name: fc.Name, Parameters: params})
	}

	return llm.CompletionResponse{
		Content:   resp.OutputText(),
		ToolCalls: toolCalls,
	}, nil
}

// Stream is not exercised by the Decider (one decision per iteration, never
// streamed), but is required by llm.LLMClient.
func (c *Client) Stream(_ context.Context, _ llm.CompletionRequest) (<-chan llm.StreamChunk, error) {
	ch := make(chan llm.StreamChunk, 1)
	close(ch)
	return ch, fmt.Errorf("openai: streaming is not supported by the Decider")
}

// GetDefaultConfig returns the model's resource/cost envelope.
func (c *Client) GetDefaultConfig() config.Model {
	if m, ok := config.ModelDefaults[c.model]; ok {
		return m
	}
	return config.Model{Name: c.model}
}
