package engine

import (
	"context"
	"fmt"
	"time"

	"orchestrator/pkg/proto"
	"orchestrator/pkg/transport"
)

// dispatch branches on the decided action (spec §4.7 step 7), records it
// into previous_actions, emits the matching lifecycle events, and either
// hands control back to a human, closes the case out, or dispatches to the
// surface and awaits the next snapshot (step 8).
func (e *Engine) dispatch(rs *runningSession, caseID string, iteration int, caseCtx *proto.CaseContext, action proto.AgentAction) (bool, *proto.WidgetSnapshot) {
	actionID := fmt.Sprintf("%s-%d", caseID, iteration)

	switch action.Kind {
	case proto.ActionTypeMessage:
		caseCtx.AppendAction(fmt.Sprintf("Sent message: %q", action.TypeMessage.Text))
		e.emitEvent(rs, transport.AgentEvent{Type: transport.EventAgentMessage, Text: action.TypeMessage.Text})
		e.emitEvent(rs, transport.AgentEvent{Type: transport.EventAction, Text: "Sending message..."})
		e.executeAction(rs, caseID, actionID, action)
		return e.awaitSnapshot(rs, WaitAfterMessage)

	case proto.ActionClickButton:
		caseCtx.AppendAction(fmt.Sprintf("Clicked: %q", action.ClickButton.Label))
		e.emitEvent(rs, transport.AgentEvent{Type: transport.EventAction, Text: fmt.Sprintf("Clicking %q...", action.ClickButton.Label)})
		e.executeAction(rs, caseID, actionID, action)
		return e.awaitSnapshot(rs, WaitAfterClickOrUpload)

	case proto.ActionUploadFile:
		caseCtx.AppendAction(fmt.Sprintf("Uploaded file: %q", action.UploadFile.Description))
		e.emitEvent(rs, transport.AgentEvent{Type: transport.EventAction, Text: "Uploading file..."})
		e.executeAction(rs, caseID, actionID, action)
		return e.awaitSnapshot(rs, WaitAfterClickOrUpload)

	case proto.ActionWait:
		caseCtx.AppendAction("Waited: " + action.Wait.Reason)
		e.emitEvent(rs, transport.AgentEvent{Type: transport.EventWaiting, Reason: action.Wait.Reason})
		e.executeAction(rs, caseID, actionID, action)
		d := time.Duration(action.Wait.DurationMs) * time.Millisecond
		if d > WaitAfterMessage {
			d = WaitAfterMessage
		}
		return e.awaitSnapshot(rs, d+waitActionSlack)

	case proto.ActionRequestHumanReview:
		caseCtx.AppendAction("Requested human review: " + action.RequestHumanReview.Reason)
		e.emitEvent(rs, transport.AgentEvent{
			Type:        transport.EventPaused,
			Reason:      action.RequestHumanReview.Reason,
			NeedsInput:  action.RequestHumanReview.NeedsInput,
			InputPrompt: action.RequestHumanReview.InputPrompt,
		})
		rs.setPaused(true)
		if _, err := e.store.UpdateStatus(caseID, proto.CasePausedForApproval); err != nil {
			e.log.Warn("update_status(paused_for_approval) failed for case %s: %v", caseID, err)
		}
		if _, err := e.store.AppendEvent(caseID, proto.CaseEvent{
			Kind:    proto.EventPolicyGate,
			Message: action.RequestHumanReview.Reason,
		}); err != nil {
			e.log.Warn("append_event(policy_gate) failed for case %s: %v", caseID, err)
		}
		return false, nil

	case proto.ActionMarkResolved:
		caseCtx.AppendAction("Resolved: " + action.MarkResolved.Summary)
		e.emitEvent(rs, transport.AgentEvent{Type: transport.EventCompleted, Summary: action.MarkResolved.Summary})
		if _, err := e.store.Complete(caseID, action.MarkResolved.Summary); err != nil {
			e.log.Warn("case store complete() failed for case %s: %v", caseID, err)
		}
		if err := rs.transport.CaseCompleted(context.Background(), caseID, action.MarkResolved.Summary); err != nil {
			e.log.Warn("case_completed send failed for case %s: %v", caseID, err)
		}
		e.destroySession(caseID, rs, proto.TerminalCompleted)
		return false, nil

	default:
		return false, nil
	}
}

func (e *Engine) executeAction(rs *runningSession, caseID, actionID string, action proto.AgentAction) {
	if err := rs.transport.ExecuteAction(context.Background(), caseID, actionID, action); err != nil {
		e.log.Warn("execute_action %s failed for case %s: %v", actionID, caseID, err)
	}
}

// awaitSnapshot is the one-shot rendezvous of spec §4.7 step 8. The next
// ingest_snapshot resolves it and the loop continues immediately; on
// timeout, the wait is cleared and a fresh RequestSnapshot prods the
// surface, with a later arrival resuming the loop via the unsolicited path.
func (e *Engine) awaitSnapshot(rs *runningSession, timeout time.Duration) (bool, *proto.WidgetSnapshot) {
	sig := proto.NewSnapshotSignal()

	rs.mu.Lock()
	if rs.sess.Stopped {
		rs.mu.Unlock()
		return false, nil
	}
	rs.sess.WaitingForSnapshot = true
	rs.waitingForSnapshot = true
	rs.pendingSignal = sig
	rs.mu.Unlock()

	defer func() {
		rs.mu.Lock()
		rs.sess.WaitingForSnapshot = false
		rs.mu.Unlock()
	}()

	select {
	case snap := <-sig.Wait():
		return true, snap

	case <-time.After(timeout):
		rs.mu.Lock()
		if rs.pendingSignal == sig {
			rs.waitingForSnapshot = false
			rs.pendingSignal = nil
		}
		rs.mu.Unlock()
		if err := rs.transport.RequestSnapshot(context.Background(), rs.sess.CaseID); err != nil {
			e.log.Warn("request_widget_state (retry) failed for case %s: %v", rs.sess.CaseID, err)
		}
		return false, nil

	case <-rs.cancel:
		return false, nil
	}
}
