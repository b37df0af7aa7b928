// Package transport defines the wire protocol and duplex channel contract
// between the core (Case Store / Engine / Decider) and an external chat
// surface, per spec §4.6 and §6.
package transport

import "orchestrator/pkg/proto"

// Outbound message type discriminants (core → surface).
const (
	TypeRequestWidgetState = "request_widget_state"
	TypeExecuteAction      = "execute_action"
	TypeAgentEvent         = "agent_event"
	TypeCaseCompleted      = "case_completed"
	TypeCaseError          = "case_error"
)

// Inbound message type discriminants (surface → core).
const (
	TypeWidgetState = "widget_state"
	TypeActionResult = "action_result"
	TypePauseCase    = "pause_case"
	TypeStopCase     = "stop_case"
	TypeApproveCase  = "approve_case"
)

// EventKind enumerates the lifecycle notifications the Engine emits for UI
// consumption (spec §4.7 step 7, §6).
type EventKind string

const (
	EventAction         EventKind = "action"
	EventAgentMessage   EventKind = "agent_message"
	EventSupportMessage EventKind = "support_message"
	EventWaiting        EventKind = "waiting"
	EventPaused         EventKind = "paused"
	EventCompleted      EventKind = "completed"
	EventError          EventKind = "error"
)

// AgentEvent is a one-way lifecycle notification carried inside an
// agent_event envelope.
type AgentEvent struct {
	Type        EventKind `json:"type"`
	Text        string    `json:"text,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	Summary     string    `json:"summary,omitempty"`
	Message     string    `json:"message,omitempty"`
	NeedsInput  bool      `json:"needsInput,omitempty"`
	InputPrompt string    `json:"inputPrompt,omitempty"`
}

// ActionWireAction is the wire-shaped projection of a proto.AgentAction that
// the surface actually needs to carry out — a strict subset of the core's
// tagged union (spec §6: type_message | click_button | upload_file | wait).
type ActionWireAction struct {
	Type            string `json:"type"`
	Text            string `json:"text,omitempty"`
	ButtonLabel     string `json:"buttonLabel,omitempty"`
	FileDescription string `json:"fileDescription,omitempty"`
	DurationMs      int    `json:"durationMs,omitempty"`
	Reason          string `json:"reason,omitempty"`
}

// ToWireAction projects an AgentAction onto the subset the surface can act
// on. RequestHumanReview and MarkResolved never reach the surface: the
// Engine handles them entirely in-core (spec §4.7 step 7).
func ToWireAction(a proto.AgentAction) ActionWireAction {
	switch a.Kind {
	case proto.ActionTypeMessage:
		return ActionWireAction{Type: "type_message", Text: a.TypeMessage.Text}
	case proto.ActionClickButton:
		return ActionWireAction{Type: "click_button", ButtonLabel: a.ClickButton.Label}
	case proto.ActionUploadFile:
		return ActionWireAction{Type: "upload_file", FileDescription: a.UploadFile.Description}
	case proto.ActionWait:
		return ActionWireAction{Type: "wait", DurationMs: a.Wait.DurationMs, Reason: a.Wait.Reason}
	default:
		return ActionWireAction{Type: string(a.Kind)}
	}
}

// RequestWidgetState asks the surface to push its current snapshot.
type RequestWidgetState struct {
	Type   string `json:"type"`
	CaseID string `json:"caseId"`
}

// ExecuteAction asks the surface to carry out exactly one action and
// eventually reply with an ActionResult correlated by ActionID.
type ExecuteAction struct {
	Type     string           `json:"type"`
	CaseID   string           `json:"caseId"`
	ActionID string           `json:"actionId"`
	Action   ActionWireAction `json:"action"`
}

// AgentEventMessage carries a one-way lifecycle notification.
type AgentEventMessage struct {
	Type   string     `json:"type"`
	CaseID string     `json:"caseId"`
	Event  AgentEvent `json:"event"`
}

// CaseCompleted announces a successful terminal outcome.
type CaseCompleted struct {
	Type    string `json:"type"`
	CaseID  string `json:"caseId"`
	Summary string `json:"summary"`
}

// CaseError announces a failed terminal outcome.
type CaseError struct {
	Type    string `json:"type"`
	CaseID  string `json:"caseId"`
	Message string `json:"message"`
}

// WidgetState carries a solicited or unsolicited snapshot from the surface.
type WidgetState struct {
	Type   string               `json:"type"`
	CaseID string               `json:"caseId"`
	State  *proto.WidgetSnapshot `json:"state"`
}

// ActionResult correlates with a previously dispatched ExecuteAction.
type ActionResult struct {
	Type     string `json:"type"`
	CaseID   string `json:"caseId"`
	ActionID string `json:"actionId"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}

// ControlMessage carries pause_case, stop_case, and approve_case control
// frames, all sharing the same shape.
type ControlMessage struct {
	Type      string `json:"type"`
	CaseID    string `json:"caseId"`
	UserInput string `json:"userInput,omitempty"`
}
