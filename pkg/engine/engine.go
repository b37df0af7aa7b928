// Package engine implements the Agent Loop Engine: the per-case session that
// schedules iterations, enforces the iteration and rate-limit budgets, waits
// for snapshots, calls the LLM Decider, consults the Action Policy, dispatches
// actions through the Surface Transport, and surfaces lifecycle events
// (spec §4.7).
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"orchestrator/pkg/casestore"
	"orchestrator/pkg/decider"
	"orchestrator/pkg/filter"
	"orchestrator/pkg/logx"
	"orchestrator/pkg/policy"
	"orchestrator/pkg/proto"
	"orchestrator/pkg/transport"
)

// Constants governing the per-iteration protocol (spec §4.7).
const (
	MaxIterations            = 30
	MinActionInterval        = 2000 * time.Millisecond
	WaitAfterMessage         = 45_000 * time.Millisecond
	WaitAfterClickOrUpload   = 5_000 * time.Millisecond
	SnapshotTimeout          = 30_000 * time.Millisecond
	waitActionSlack          = 5 * time.Second
)

// SessionState is the read-only view of a live session that a DeciderFactory
// closure needs to build per-session middleware (rate limiting, metrics):
// just enough to key a provider's token bucket and a Prometheus label set by
// case and session id. runningSession satisfies this structurally.
type SessionState interface {
	GetCurrentState() proto.SessionState
	GetCaseID() string
	GetID() string
}

// DeciderFactory builds the Decider a single session will use for the rest
// of its lifetime. Letting the caller mint one Decider per session (rather
// than sharing one across all cases) is what lets cmd/caseagentd chain
// per-session rate-limit and metrics middleware around a shared base LLM
// client (spec §4.2, §4.7).
type DeciderFactory func(SessionState) *decider.Decider

// Engine owns every live Session and is the sole consumer of the Case Store,
// LLM Decider, and Action Policy on the dispatch path. It takes its
// collaborators as constructor dependencies; there are no globals (spec §9
// "Singleton stores → explicit dependency graph").
type Engine struct {
	store          *casestore.Store
	deciderFactory DeciderFactory
	log            *logx.Logger

	mu       sync.Mutex
	sessions map[string]*runningSession
}

// New constructs an Engine. store and deciderFactory must be non-nil.
func New(store *casestore.Store, deciderFactory DeciderFactory) *Engine {
	return &Engine{
		store:          store,
		deciderFactory: deciderFactory,
		log:            logx.NewLogger("engine"),
		sessions:       make(map[string]*runningSession),
	}
}

// StartSession creates or replaces the session for caseID and kicks off the
// loop by requesting an initial snapshot. Idempotent on the case id: a
// second call stops the first session before installing the new one (spec
// §4.7 public contract, §5 "deterministic replacement").
func (e *Engine) StartSession(caseID string, tr transport.SurfaceTransport, caseCtx *proto.CaseContext) {
	e.StopSession(caseID)

	rs := newRunningSession(caseID, caseCtx, tr)
	rs.decider = e.deciderFactory(rs)
	e.mu.Lock()
	e.sessions[caseID] = rs
	e.mu.Unlock()

	if err := tr.RequestSnapshot(context.Background(), caseID); err != nil {
		e.log.Warn("request_widget_state failed for case %s: %v", caseID, err)
	}
}

// StopSession is idempotent: cancels any pending snapshot wait, marks the
// session stopped, and drops it from the registry. Subsequent ingest calls
// for the id are no-ops (spec §5 Cancellation & timeouts).
func (e *Engine) StopSession(caseID string) {
	e.mu.Lock()
	rs, ok := e.sessions[caseID]
	if ok {
		delete(e.sessions, caseID)
	}
	e.mu.Unlock()
	if !ok {
		return
	}
	rs.stop(proto.TerminalStopped)
}

// PauseSession is non-destructive: any in-flight rendezvous completes
// normally, but the engine observes paused=true before its next iteration
// begins and returns instead (spec §5 Cancellation & timeouts).
func (e *Engine) PauseSession(caseID string) {
	rs := e.lookup(caseID)
	if rs == nil {
		return
	}
	rs.setPaused(true)
}

// ResumeSession clears the paused flag, optionally records human input onto
// the case context, and issues a fresh RequestSnapshot to restart the loop.
func (e *Engine) ResumeSession(caseID, userInput string) {
	rs := e.lookup(caseID)
	if rs == nil {
		return
	}
	rs.setPaused(false)
	if userInput != "" {
		rs.sess.Context.AppendAction("Human input: " + userInput)
	}
	if err := rs.transport.RequestSnapshot(context.Background(), caseID); err != nil {
		e.log.Warn("request_widget_state failed for case %s: %v", caseID, err)
	}
}

// IngestSnapshot implements transport.InboundHandler's forward-routing
// contract. A snapshot delivered while the session is waiting on a
// rendezvous resolves that wait; otherwise, if the session is eligible, it
// drives an immediate iteration (spec §4.7 "Unsolicited snapshots").
func (e *Engine) IngestSnapshot(caseID string, snap *proto.WidgetSnapshot) {
	rs := e.lookup(caseID)
	if rs == nil || rs.isStopped() {
		return
	}

	rs.mu.Lock()
	if rs.waitingForSnapshot && rs.pendingSignal != nil {
		sig := rs.pendingSignal
		rs.waitingForSnapshot = false
		rs.pendingSignal = nil
		rs.mu.Unlock()
		sig.Deliver(snap)
		return
	}
	if rs.sess.Paused || rs.loopActive {
		rs.mu.Unlock()
		return
	}
	rs.loopActive = true
	rs.mu.Unlock()

	go e.runLoop(rs, snap)
}

// IngestActionResult implements transport.InboundHandler's forward-routing
// contract. A failed result is recorded into the case context even if it
// arrives after the engine has moved past the dispatching iteration (spec
// §4.7 public contract, §5 ordering guarantees).
func (e *Engine) IngestActionResult(caseID, _ string, success bool, errMsg string) {
	if success {
		return
	}
	rs := e.lookup(caseID)
	if rs == nil {
		return
	}
	rs.sess.Context.AppendAction(fmt.Sprintf("[FAILED] %s", errMsg))
}

// PauseCase implements transport.InboundHandler.
func (e *Engine) PauseCase(caseID string) { e.PauseSession(caseID) }

// StopCase implements transport.InboundHandler.
func (e *Engine) StopCase(caseID string) { e.StopSession(caseID) }

// ApproveCase implements transport.InboundHandler.
func (e *Engine) ApproveCase(caseID, userInput string) { e.ResumeSession(caseID, userInput) }

func (e *Engine) lookup(caseID string) *runningSession {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sessions[caseID]
}

// runLoop drives iterations for as long as each one ends with a fresh
// snapshot already in hand, folding spec §4.7 step 8's "recursively drives
// the next iteration" into an iterative loop instead of deep recursion.
func (e *Engine) runLoop(rs *runningSession, snap *proto.WidgetSnapshot) {
	defer func() {
		rs.mu.Lock()
		rs.loopActive = false
		rs.mu.Unlock()
	}()

	for {
		cont, next := e.iterate(rs, snap)
		if !cont {
			return
		}
		snap = next
	}
}

// iterate runs exactly one pass of the per-iteration protocol (spec §4.7).
// It returns (true, nextSnapshot) when a rendezvous resolved with a fresh
// snapshot and the loop should continue immediately, or (false, nil) when
// the loop should stop for this goroutine (paused, stopped, blocked by
// policy, a terminal outcome, a transient decider error, or a rendezvous
// timeout).
func (e *Engine) iterate(rs *runningSession, snap *proto.WidgetSnapshot) (bool, *proto.WidgetSnapshot) {
	caseID := rs.sess.CaseID

	rs.mu.Lock()
	if rs.sess.Stopped || rs.sess.Paused {
		rs.mu.Unlock()
		return false, nil
	}

	// 1. Budget guard.
	if rs.sess.Iteration >= MaxIterations {
		rs.mu.Unlock()
		e.terminateError(rs, "Maximum iterations reached without resolution")
		return false, nil
	}

	// 2. Rate limit.
	var sleepFor time.Duration
	if !rs.sess.LastActionAt.IsZero() {
		if elapsed := time.Since(rs.sess.LastActionAt); elapsed < MinActionInterval {
			sleepFor = MinActionInterval - elapsed
		}
	}
	rs.mu.Unlock()

	if sleepFor > 0 {
		select {
		case <-time.After(sleepFor):
		case <-rs.cancel:
			return false, nil
		}
	}

	rs.mu.Lock()
	if rs.sess.Stopped || rs.sess.Paused {
		rs.mu.Unlock()
		return false, nil
	}
	// 3. Increment iteration; stamp last_action_at.
	rs.sess.Iteration++
	rs.sess.LastActionAt = time.Now()
	iteration := rs.sess.Iteration
	caseCtx := rs.sess.Context
	rs.sess.State = proto.SessionDeciding
	rs.mu.Unlock()

	// 4. Filter.
	filtered := filter.Filter(snap)

	// 5. Decide.
	decision, err := rs.decider.Decide(context.Background(), filtered, caseCtx)
	if err != nil {
		if errors.Is(err, decider.ErrPermanentInvalid) {
			e.terminateError(rs, err.Error())
			return false, nil
		}
		e.emitEvent(rs, transport.AgentEvent{Type: transport.EventError, Message: err.Error()})
		if iteration >= MaxIterations {
			e.terminateError(rs, "Maximum iterations reached without resolution")
		}
		return false, nil
	}

	// 6. Policy.
	result := policy.Evaluate(decision.Action)
	switch result.Gate {
	case policy.Blocked, policy.NeedsApproval:
		e.pauseForPolicy(rs, result.Reason)
		return false, nil
	}

	// 7 & 8. Dispatch, then the snapshot rendezvous.
	return e.dispatch(rs, caseID, iteration, caseCtx, decision.Action)
}

func (e *Engine) pauseForPolicy(rs *runningSession, reason string) {
	e.emitEvent(rs, transport.AgentEvent{Type: transport.EventPaused, Reason: reason})
	rs.setPaused(true)
	if _, err := e.store.UpdateStatus(rs.sess.CaseID, proto.CasePausedForApproval); err != nil {
		e.log.Warn("update_status(paused_for_approval) failed for case %s: %v", rs.sess.CaseID, err)
	}
}

func (e *Engine) terminateError(rs *runningSession, message string) {
	caseID := rs.sess.CaseID
	e.emitEvent(rs, transport.AgentEvent{Type: transport.EventError, Message: message})
	if _, err := e.store.Fail(caseID, message); err != nil {
		e.log.Warn("case store fail() failed for case %s: %v", caseID, err)
	}
	if err := rs.transport.CaseError(context.Background(), caseID, message); err != nil {
		e.log.Warn("case_error send failed for case %s: %v", caseID, err)
	}
	e.destroySession(caseID, rs, proto.TerminalError)
}

func (e *Engine) destroySession(caseID string, rs *runningSession, outcome proto.TerminalOutcome) {
	e.mu.Lock()
	delete(e.sessions, caseID)
	e.mu.Unlock()
	rs.stop(outcome)
}

func (e *Engine) emitEvent(rs *runningSession, ev transport.AgentEvent) {
	if err := rs.transport.EmitEvent(context.Background(), rs.sess.CaseID, ev); err != nil {
		e.log.Warn("emit agent_event %s failed for case %s: %v", ev.Type, rs.sess.CaseID, err)
	}
}
