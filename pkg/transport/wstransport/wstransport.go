// Package wstransport implements the Surface Transport over a single
// gorilla/websocket connection, multiplexing all cases through caseId fields
// on each frame (spec §4.6, §6).
package wstransport

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"

	"orchestrator/pkg/logx"
	"orchestrator/pkg/proto"
	"orchestrator/pkg/transport"
)

// Transport wraps one websocket connection to the external chat surface. It
// implements transport.SurfaceTransport and, once Serve is running, delivers
// every inbound frame to the configured InboundHandler.
type Transport struct {
	conn    *websocket.Conn
	handler transport.InboundHandler

	writeMu sync.Mutex
}

// New wraps an already-upgraded websocket connection. The caller is
// responsible for running Serve in its own goroutine.
func New(conn *websocket.Conn, handler transport.InboundHandler) *Transport {
	return &Transport{conn: conn, handler: handler}
}

// Serve runs the read loop until the connection closes or ctx is cancelled.
// It blocks; callers invoke it in its own goroutine.
func (t *Transport) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		_, raw, err := t.conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("websocket read: %w", err)
		}
		if err := t.dispatchInbound(raw); err != nil {
			logx.Warnf("TRANSPORT: dropping malformed inbound frame: %v", err)
		}
	}
}

func (t *Transport) dispatchInbound(raw []byte) error {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}

	switch envelope.Type {
	case transport.TypeWidgetState:
		var msg transport.WidgetState
		if err := json.Unmarshal(raw, &msg); err != nil {
			return fmt.Errorf("decode widget_state: %w", err)
		}
		t.handler.IngestSnapshot(msg.CaseID, msg.State)

	case transport.TypeActionResult:
		var msg transport.ActionResult
		if err := json.Unmarshal(raw, &msg); err != nil {
			return fmt.Errorf("decode action_result: %w", err)
		}
		t.handler.IngestActionResult(msg.CaseID, msg.ActionID, msg.Success, msg.Error)

	case transport.TypePauseCase:
		var msg transport.ControlMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return fmt.Errorf("decode pause_case: %w", err)
		}
		t.handler.PauseCase(msg.CaseID)

	case transport.TypeStopCase:
		var msg transport.ControlMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return fmt.Errorf("decode stop_case: %w", err)
		}
		t.handler.StopCase(msg.CaseID)

	case transport.TypeApproveCase:
		var msg transport.ControlMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return fmt.Errorf("decode approve_case: %w", err)
		}
		t.handler.ApproveCase(msg.CaseID, msg.UserInput)

	default:
		return fmt.Errorf("unknown inbound frame type %q", envelope.Type)
	}
	return nil
}

func (t *Transport) writeJSON(v any) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	return t.conn.WriteJSON(v) //nolint:wrapcheck // caller wraps with call-site context
}

// RequestSnapshot implements transport.SurfaceTransport.
func (t *Transport) RequestSnapshot(_ context.Context, caseID string) error {
	if err := t.writeJSON(transport.RequestWidgetState{Type: transport.TypeRequestWidgetState, CaseID: caseID}); err != nil {
		return fmt.Errorf("send request_widget_state: %w", err)
	}
	return nil
}

// ExecuteAction implements transport.SurfaceTransport.
func (t *Transport) ExecuteAction(_ context.Context, caseID, actionID string, action proto.AgentAction) error {
	msg := transport.ExecuteAction{
		Type:     transport.TypeExecuteAction,
		CaseID:   caseID,
		ActionID: actionID,
		Action:   transport.ToWireAction(action),
	}
	if err := t.writeJSON(msg); err != nil {
		return fmt.Errorf("send execute_action: %w", err)
	}
	return nil
}

// EmitEvent implements transport.SurfaceTransport.
func (t *Transport) EmitEvent(_ context.Context, caseID string, event transport.AgentEvent) error {
	msg := transport.AgentEventMessage{Type: transport.TypeAgentEvent, CaseID: caseID, Event: event}
	if err := t.writeJSON(msg); err != nil {
		return fmt.Errorf("send agent_event: %w", err)
	}
	return nil
}

// CaseCompleted implements transport.SurfaceTransport.
func (t *Transport) CaseCompleted(_ context.Context, caseID, summary string) error {
	msg := transport.CaseCompleted{Type: transport.TypeCaseCompleted, CaseID: caseID, Summary: summary}
	if err := t.writeJSON(msg); err != nil {
		return fmt.Errorf("send case_completed: %w", err)
	}
	return nil
}

// CaseError implements transport.SurfaceTransport.
func (t *Transport) CaseError(_ context.Context, caseID, message string) error {
	msg := transport.CaseError{Type: transport.TypeCaseError, CaseID: caseID, Message: message}
	if err := t.writeJSON(msg); err != nil {
		return fmt.Errorf("send case_error: %w", err)
	}
	return nil
}

var _ transport.SurfaceTransport = (*Transport)(nil)
