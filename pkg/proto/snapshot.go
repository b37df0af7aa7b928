// Package proto defines the data model shared between the Case Store, the Safety
// Pipeline, the LLM Decider, and the Surface Transport: widget snapshots, case
// context, agent actions, and the case lifecycle records.
package proto

import "time"

// Sender identifies who produced a chat message in a WidgetSnapshot.
//
// Per the core invariant, sender == user denotes messages the agent itself sent on
// the customer's behalf (first-person voice) — it does not mean "message from a
// human operator".
type Sender string

const (
	SenderUser    Sender = "user"
	SenderAgent   Sender = "agent"
	SenderSystem  Sender = "system"
	SenderUnknown Sender = "unknown"
)

// Message is one chat line as observed by the surface.
type Message struct {
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Sender    Sender     `json:"sender"`
	Text      string     `json:"text"`
}

// ButtonKind distinguishes a quick-reply chip from a surface-level action button.
type ButtonKind string

const (
	ButtonKindQuickReply ButtonKind = "quick_reply"
	ButtonKindAction     ButtonKind = "action"
)

// Button is a clickable affordance exposed by the widget.
type Button struct {
	Label    string     `json:"label"`
	Kind     ButtonKind `json:"kind"`
	Selector string     `json:"selector,omitempty"` // opaque to the core
}

// InputField describes the widget's free-text input box, if any.
type InputField struct {
	Found        bool   `json:"found"`
	CurrentValue string `json:"currentValue"`
	Placeholder  string `json:"placeholder"`
}

// WidgetSnapshot is the point-in-time view of the chat widget the surface hands
// to the core. It is the only way the core observes the outside world.
//
//nolint:govet // logical field grouping preferred over memory layout
type WidgetSnapshot struct {
	Provider        string     `json:"provider"`
	CapturedAt      time.Time  `json:"capturedAt"`
	Messages        []Message  `json:"messages"`
	Buttons         []Button   `json:"buttons"`
	InputField      InputField `json:"inputField"`
	TypingIndicator bool       `json:"typingIndicator"`
	URL             string     `json:"url"`
}

// Clone returns a deep copy of the snapshot so filtering never mutates the
// surface's original payload in place.
func (s *WidgetSnapshot) Clone() *WidgetSnapshot {
	if s == nil {
		return nil
	}
	out := *s
	out.Messages = append([]Message(nil), s.Messages...)
	out.Buttons = append([]Button(nil), s.Buttons...)
	return &out
}
