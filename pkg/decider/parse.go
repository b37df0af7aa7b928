package decider

import (
	"fmt"

	"orchestrator/pkg/agent/llm"
	"orchestrator/pkg/proto"
	"orchestrator/pkg/tools"
)

// fallbackWaitMs is the duration the Decider waits when it must fall back to
// a safe Wait action because the model returned something it cannot act on
// (spec §4.5 step 4).
const fallbackWaitMs = 3000

// parseToolCall converts the model's single tool call into an AgentAction.
// It never returns an error: a missing, unknown, or unparsable tool call
// always degrades to a safe Wait so the Engine can treat "bad model output"
// as an ordinary decision rather than a failure (spec §4.5 step 4).
func parseToolCall(resp llm.CompletionResponse) proto.AgentAction {
	if len(resp.ToolCalls) == 0 {
		reason := resp.Content
		if reason == "" {
			reason = "no tool call returned"
		}
		return proto.NewWait(fallbackWaitMs, reason)
	}

	call := resp.ToolCalls[0]
	switch call.Name {
	case tools.TypeMessage:
		text, ok := stringParam(call.Parameters, "text")
		if !ok {
			return fallbackWait(call.Name, "missing or non-string \"text\" argument")
		}
		return proto.NewTypeMessage(text)

	case tools.ClickButton:
		label, ok := stringParam(call.Parameters, "buttonLabel")
		if !ok {
			return fallbackWait(call.Name, "missing or non-string \"buttonLabel\" argument")
		}
		return proto.NewClickButton(label, "")

	case tools.UploadFile:
		desc, ok := stringParam(call.Parameters, "fileDescription")
		if !ok {
			return fallbackWait(call.Name, "missing or non-string \"fileDescription\" argument")
		}
		return proto.NewUploadFile(desc)

	case tools.WaitForResponse:
		reason, ok := stringParam(call.Parameters, "reason")
		if !ok {
			reason = "model requested a wait"
		}
		return proto.NewWait(fallbackWaitMs, reason)

	case tools.RequestHumanReview:
		reason, ok := stringParam(call.Parameters, "reason")
		if !ok {
			return fallbackWait(call.Name, "missing or non-string \"reason\" argument")
		}
		needsInput, _ := boolParam(call.Parameters, "needsInput")
		inputPrompt, _ := stringParam(call.Parameters, "inputPrompt")
		return proto.NewRequestHumanReview(reason, needsInput, inputPrompt)

	case tools.MarkResolved:
		summary, ok := stringParam(call.Parameters, "summary")
		if !ok {
			return fallbackWait(call.Name, "missing or non-string \"summary\" argument")
		}
		return proto.NewMarkResolved(summary)

	default:
		return fallbackWait(call.Name, "unknown tool name")
	}
}

func fallbackWait(toolName, problem string) proto.AgentAction {
	return proto.NewWait(fallbackWaitMs, fmt.Sprintf("could not apply tool %q: %s", toolName, problem))
}

func stringParam(params map[string]any, key string) (string, bool) {
	v, ok := params[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func boolParam(params map[string]any, key string) (bool, bool) {
	v, ok := params[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}
