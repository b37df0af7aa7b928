package transport

import (
	"context"

	"orchestrator/pkg/proto"
)

// SurfaceTransport is the duplex channel the Agent Loop Engine depends on to
// talk to an external chat surface (spec §4.6). Each method corresponds to
// one outbound message; implementations are free to batch, queue, or drop a
// connection, but every call must eventually be delivered or return an error.
type SurfaceTransport interface {
	// RequestSnapshot politely pulls a fresh WidgetSnapshot. The surface is
	// expected to reply with a WidgetState inbound message.
	RequestSnapshot(ctx context.Context, caseID string) error

	// ExecuteAction fires an action and awaits nothing synchronously; the
	// surface replies asynchronously with an ActionResult correlated by
	// actionID.
	ExecuteAction(ctx context.Context, caseID, actionID string, action proto.AgentAction) error

	// EmitEvent sends a one-way lifecycle notification for UI consumption.
	EmitEvent(ctx context.Context, caseID string, event AgentEvent) error

	// CaseCompleted announces a successful terminal outcome.
	CaseCompleted(ctx context.Context, caseID, summary string) error

	// CaseError announces a failed terminal outcome.
	CaseError(ctx context.Context, caseID, message string) error
}

// InboundHandler is implemented by the Agent Loop Engine. A transport
// delivers every inbound frame it receives to exactly one InboundHandler,
// routed by caseID forward-routing in the Engine itself (spec §4.7 public
// contract: ingest_snapshot / ingest_action_result / pause_session /
// resume_session / stop_session).
type InboundHandler interface {
	IngestSnapshot(caseID string, snapshot *proto.WidgetSnapshot)
	IngestActionResult(caseID, actionID string, success bool, errMsg string)
	PauseCase(caseID string)
	StopCase(caseID string)
	ApproveCase(caseID, userInput string)
}
