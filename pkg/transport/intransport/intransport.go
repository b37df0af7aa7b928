// Package intransport implements the Surface Transport entirely in-process,
// for tests. There is no wire framing:
// outbound calls append directly to a slice an observer can inspect, and
// inbound frames are injected by calling the exported methods directly.
package intransport

import (
	"context"
	"sync"

	"orchestrator/pkg/proto"
	"orchestrator/pkg/transport"
)

// Outbound records one call the Engine made against the transport, in the
// order it was made.
type Outbound struct {
	Kind     string // "request_snapshot" | "execute_action" | "event" | "completed" | "error"
	CaseID   string
	ActionID string
	Action   proto.AgentAction
	Event    transport.AgentEvent
	Summary  string
	Message  string
}

// Transport is an in-memory transport.SurfaceTransport that records every
// outbound call and lets a test drive inbound frames by
// calling its methods directly.
type Transport struct {
	handler transport.InboundHandler

	mu  sync.Mutex
	log []Outbound
}

// New returns an in-process transport. SetHandler must be called before any
// inbound frame is delivered.
func New() *Transport {
	return &Transport{}
}

// SetHandler wires the Engine (or a test double) as the inbound frame
// recipient.
func (t *Transport) SetHandler(h transport.InboundHandler) {
	t.handler = h
}

// Log returns a snapshot of every outbound call recorded so far, in order.
func (t *Transport) Log() []Outbound {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Outbound(nil), t.log...)
}

func (t *Transport) record(o Outbound) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.log = append(t.log, o)
}

// RequestSnapshot implements transport.SurfaceTransport.
func (t *Transport) RequestSnapshot(_ context.Context, caseID string) error {
	t.record(Outbound{Kind: "request_snapshot", CaseID: caseID})
	return nil
}

// ExecuteAction implements transport.SurfaceTransport.
func (t *Transport) ExecuteAction(_ context.Context, caseID, actionID string, action proto.AgentAction) error {
	t.record(Outbound{Kind: "execute_action", CaseID: caseID, ActionID: actionID, Action: action})
	return nil
}

// EmitEvent implements transport.SurfaceTransport.
func (t *Transport) EmitEvent(_ context.Context, caseID string, event transport.AgentEvent) error {
	t.record(Outbound{Kind: "event", CaseID: caseID, Event: event})
	return nil
}

// CaseCompleted implements transport.SurfaceTransport.
func (t *Transport) CaseCompleted(_ context.Context, caseID, summary string) error {
	t.record(Outbound{Kind: "completed", CaseID: caseID, Summary: summary})
	return nil
}

// CaseError implements transport.SurfaceTransport.
func (t *Transport) CaseError(_ context.Context, caseID, message string) error {
	t.record(Outbound{Kind: "error", CaseID: caseID, Message: message})
	return nil
}

// InjectSnapshot delivers an inbound WidgetSnapshot, as if the surface had
// pushed it solicited or unsolicited.
func (t *Transport) InjectSnapshot(caseID string, snap *proto.WidgetSnapshot) {
	t.handler.IngestSnapshot(caseID, snap)
}

// InjectActionResult delivers an inbound ActionResult.
func (t *Transport) InjectActionResult(caseID, actionID string, success bool, errMsg string) {
	t.handler.IngestActionResult(caseID, actionID, success, errMsg)
}

// InjectPause delivers an inbound pause_case control frame.
func (t *Transport) InjectPause(caseID string) {
	t.handler.PauseCase(caseID)
}

// InjectStop delivers an inbound stop_case control frame.
func (t *Transport) InjectStop(caseID string) {
	t.handler.StopCase(caseID)
}

// InjectApprove delivers an inbound approve_case control frame.
func (t *Transport) InjectApprove(caseID, userInput string) {
	t.handler.ApproveCase(caseID, userInput)
}

var _ transport.SurfaceTransport = (*Transport)(nil)
