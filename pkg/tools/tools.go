// Package tools defines the fixed tool schema the LLM Decider advertises to
// the model: one tool per AgentAction variant. The model is required to
// return exactly one tool call per decision (spec §4.5).
package tools

// Property describes one field of a tool's input schema.
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// InputSchema is a minimal JSON-schema object, matching the shape the
// provider SDKs (Anthropic, OpenAI, Gemini) expect for tool parameters.
type InputSchema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required"`
}

// ToolDefinition is a provider-agnostic description of one callable tool.
type ToolDefinition struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema InputSchema `json:"input_schema"`
}

// Tool is implemented by each of the six AgentAction-shaped tools the
// Decider's system advertises.
type Tool interface {
	Name() string
	Definition() ToolDefinition
}

const (
	TypeMessage        = "type_message"
	ClickButton        = "click_button"
	UploadFile         = "upload_file"
	WaitForResponse    = "wait_for_response"
	RequestHumanReview = "request_human_review"
	MarkResolved       = "mark_resolved"
)

// Definitions returns the fixed six-tool schema in the order spec §4.5
// names them.
func Definitions() []ToolDefinition {
	return []ToolDefinition{
		typeMessageTool{}.Definition(),
		clickButtonTool{}.Definition(),
		uploadFileTool{}.Definition(),
		waitForResponseTool{}.Definition(),
		requestHumanReviewTool{}.Definition(),
		markResolvedTool{}.Definition(),
	}
}

type typeMessageTool struct{}

func (typeMessageTool) Name() string { return TypeMessage }
func (typeMessageTool) Definition() ToolDefinition {
	return ToolDefinition{
		Name:        TypeMessage,
		Description: "Send a chat message to the customer, in their first-person voice.",
		InputSchema: InputSchema{
			Type: "object",
			Properties: map[string]Property{
				"text": {Type: "string", Description: "The message text to send."},
			},
			Required: []string{"text"},
		},
	}
}

type clickButtonTool struct{}

func (clickButtonTool) Name() string { return ClickButton }
func (clickButtonTool) Definition() ToolDefinition {
	return ToolDefinition{
		Name:        ClickButton,
		Description: "Click a button visible in the chat widget, identified by its exact label.",
		InputSchema: InputSchema{
			Type: "object",
			Properties: map[string]Property{
				"buttonLabel": {Type: "string", Description: "The exact label of the button to click."},
			},
			Required: []string{"buttonLabel"},
		},
	}
}

type uploadFileTool struct{}

func (uploadFileTool) Name() string { return UploadFile }
func (uploadFileTool) Definition() ToolDefinition {
	return ToolDefinition{
		Name:        UploadFile,
		Description: "Ask the surface to attach a supporting file (e.g. a receipt or photo).",
		InputSchema: InputSchema{
			Type: "object",
			Properties: map[string]Property{
				"fileDescription": {Type: "string", Description: "What the attached file should show or contain."},
			},
			Required: []string{"fileDescription"},
		},
	}
}

type waitForResponseTool struct{}

func (waitForResponseTool) Name() string { return WaitForResponse }
func (waitForResponseTool) Definition() ToolDefinition {
	return ToolDefinition{
		Name:        WaitForResponse,
		Description: "Pause and wait for the support widget to change before acting again.",
		InputSchema: InputSchema{
			Type: "object",
			Properties: map[string]Property{
				"reason": {Type: "string", Description: "Why waiting is the right move right now."},
			},
			Required: []string{"reason"},
		},
	}
}

type requestHumanReviewTool struct{}

func (requestHumanReviewTool) Name() string { return RequestHumanReview }
func (requestHumanReviewTool) Definition() ToolDefinition {
	return ToolDefinition{
		Name:        RequestHumanReview,
		Description: "Hand the case to a human operator because it needs judgment or approval the agent cannot give.",
		InputSchema: InputSchema{
			Type: "object",
			Properties: map[string]Property{
				"reason":      {Type: "string", Description: "Why a human needs to take over."},
				"needsInput":  {Type: "boolean", Description: "Whether the human must supply input before the case can continue."},
				"inputPrompt": {Type: "string", Description: "If needsInput, what to ask the human."},
			},
			Required: []string{"reason"},
		},
	}
}

type markResolvedTool struct{}

func (markResolvedTool) Name() string { return MarkResolved }
func (markResolvedTool) Definition() ToolDefinition {
	return ToolDefinition{
		Name:        MarkResolved,
		Description: "Close the case out: the customer's issue has been fully handled.",
		InputSchema: InputSchema{
			Type: "object",
			Properties: map[string]Property{
				"summary": {Type: "string", Description: "A short summary of how the case was resolved."},
			},
			Required: []string{"summary"},
		},
	}
}
