package proto

import "fmt"

// ActionKind is the tag of the AgentAction closed sum type. The Decider owns the
// only runtime parse into this type; everything downstream exhaustively matches
// on Kind instead of re-parsing free-form data.
type ActionKind string

const (
	ActionTypeMessage        ActionKind = "type_message"
	ActionClickButton        ActionKind = "click_button"
	ActionUploadFile         ActionKind = "upload_file"
	ActionWait               ActionKind = "wait"
	ActionRequestHumanReview ActionKind = "request_human_review"
	ActionMarkResolved       ActionKind = "mark_resolved"
)

// TypeMessageAction sends a chat message in the customer's first-person voice.
type TypeMessageAction struct {
	Text string `json:"text"`
}

// ClickButtonAction clicks a widget button identified by its label.
type ClickButtonAction struct {
	Label    string `json:"label"`
	Selector string `json:"selector,omitempty"`
}

// UploadFileAction asks the surface to attach a file; the core never resolves
// the description to a concrete attachment.
type UploadFileAction struct {
	Description string `json:"description"`
}

// WaitAction is a passive pause, used both as a deliberate decision and as the
// Decider's safe fallback on malformed model output.
type WaitAction struct {
	DurationMs int    `json:"durationMs"`
	Reason     string `json:"reason"`
}

// RequestHumanReviewAction hands control back to a human operator.
type RequestHumanReviewAction struct {
	Reason      string `json:"reason"`
	NeedsInput  bool   `json:"needsInput"`
	InputPrompt string `json:"inputPrompt,omitempty"`
}

// MarkResolvedAction closes the case out as successfully handled.
type MarkResolvedAction struct {
	Summary string `json:"summary"`
}

// AgentAction is exactly one of the six variants above, selected by Kind.
//
//nolint:govet // tagged union, one field populated per Kind; clarity over byte packing
type AgentAction struct {
	Kind ActionKind

	TypeMessage        *TypeMessageAction
	ClickButton        *ClickButtonAction
	UploadFile         *UploadFileAction
	Wait               *WaitAction
	RequestHumanReview *RequestHumanReviewAction
	MarkResolved       *MarkResolvedAction
}

func NewTypeMessage(text string) AgentAction {
	return AgentAction{Kind: ActionTypeMessage, TypeMessage: &TypeMessageAction{Text: text}}
}

func NewClickButton(label, selector string) AgentAction {
	return AgentAction{Kind: ActionClickButton, ClickButton: &ClickButtonAction{Label: label, Selector: selector}}
}

func NewUploadFile(description string) AgentAction {
	return AgentAction{Kind: ActionUploadFile, UploadFile: &UploadFileAction{Description: description}}
}

func NewWait(durationMs int, reason string) AgentAction {
	return AgentAction{Kind: ActionWait, Wait: &WaitAction{DurationMs: durationMs, Reason: reason}}
}

func NewRequestHumanReview(reason string, needsInput bool, inputPrompt string) AgentAction {
	return AgentAction{
		Kind: ActionRequestHumanReview,
		RequestHumanReview: &RequestHumanReviewAction{
			Reason:      reason,
			NeedsInput:  needsInput,
			InputPrompt: inputPrompt,
		},
	}
}

func NewMarkResolved(summary string) AgentAction {
	return AgentAction{Kind: ActionMarkResolved, MarkResolved: &MarkResolvedAction{Summary: summary}}
}

// Validate confirms the action's Kind and its populated payload agree. A Decider
// or test helper constructing an AgentAction by hand should call this before
// handing it to the Engine.
func (a AgentAction) Validate() error {
	switch a.Kind {
	case ActionTypeMessage:
		if a.TypeMessage == nil {
			return fmt.Errorf("action kind %s missing TypeMessage payload", a.Kind)
		}
	case ActionClickButton:
		if a.ClickButton == nil {
			return fmt.Errorf("action kind %s missing ClickButton payload", a.Kind)
		}
	case ActionUploadFile:
		if a.UploadFile == nil {
			return fmt.Errorf("action kind %s missing UploadFile payload", a.Kind)
		}
	case ActionWait:
		if a.Wait == nil {
			return fmt.Errorf("action kind %s missing Wait payload", a.Kind)
		}
	case ActionRequestHumanReview:
		if a.RequestHumanReview == nil {
			return fmt.Errorf("action kind %s missing RequestHumanReview payload", a.Kind)
		}
	case ActionMarkResolved:
		if a.MarkResolved == nil {
			return fmt.Errorf("action kind %s missing MarkResolved payload", a.Kind)
		}
	default:
		return fmt.Errorf("unknown action kind %q", a.Kind)
	}
	return nil
}

// AgentDecision pairs the chosen action with the model's stated reasoning.
type AgentDecision struct {
	Action    AgentAction
	Reasoning string
}
