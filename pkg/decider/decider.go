// Package decider implements the LLM Decider: the component that turns a
// filtered widget snapshot and the case's running context into exactly one
// AgentAction, per spec §4.5.
package decider

import (
	"context"

	"orchestrator/pkg/agent/llm"
	"orchestrator/pkg/proto"
	"orchestrator/pkg/tools"
)

// Decider wraps an LLM client and exposes the single decide operation the
// Agent Loop Engine calls once per iteration.
type Decider struct {
	client llm.LLMClient
}

// New returns a Decider backed by the given LLM client. The client is
// expected to already carry whatever resilience middleware (retry, circuit
// breaker, rate limiting, metrics) the caller wants applied.
func New(client llm.LLMClient) *Decider {
	return &Decider{client: client}
}

// Decide builds the system and user prompts from the current snapshot and
// case context, advertises the fixed six-tool schema, and requires the model
// to return exactly one tool call. Malformed or absent tool calls never
// produce an error: they degrade to a safe Wait action so the Engine can
// treat bad model output as an ordinary decision (spec §4.5 step 4).
//
// A non-nil error here means the LLM call itself failed, classified as
// either ErrTransient or ErrPermanentInvalid.
func (d *Decider) Decide(ctx context.Context, snap *proto.WidgetSnapshot, caseCtx *proto.CaseContext) (proto.AgentDecision, error) {
	req := llm.CompletionRequest{
		Messages: []llm.CompletionMessage{
			llm.NewSystemMessage(buildSystemPrompt(caseCtx)),
			llm.NewUserMessage(buildUserMessage(snap, caseCtx)),
		},
		Tools:       tools.Definitions(),
		Temperature: 0.2,
		MaxTokens:   1024,
	}

	resp, err := d.client.Complete(ctx, req)
	if err != nil {
		return proto.AgentDecision{}, classifyLLMError(err)
	}

	action := parseToolCall(resp)
	return proto.AgentDecision{Action: action, Reasoning: resp.Content}, nil
}
