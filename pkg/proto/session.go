package proto

import (
	"time"

	"github.com/google/uuid"
)

// SessionState is the per-session state machine the Agent Loop Engine drives.
type SessionState string

const (
	SessionReady      SessionState = "ready"
	SessionDeciding   SessionState = "deciding"
	SessionDispatched SessionState = "dispatched"
	SessionPaused     SessionState = "paused"
	SessionTerminal   SessionState = "terminal"
)

// TerminalOutcome further distinguishes a SessionTerminal session.
type TerminalOutcome string

const (
	TerminalCompleted TerminalOutcome = "completed"
	TerminalStopped   TerminalOutcome = "stopped"
	TerminalError     TerminalOutcome = "error"
)

// SnapshotSignal is the one-shot rendezvous slot a Session uses to hand the
// next WidgetSnapshot to whichever goroutine is waiting on it after a dispatch.
// Exactly one send and one receive are expected per signal instance.
type SnapshotSignal struct {
	ch chan *WidgetSnapshot
}

// NewSnapshotSignal allocates a fresh, unused rendezvous slot.
func NewSnapshotSignal() *SnapshotSignal {
	return &SnapshotSignal{ch: make(chan *WidgetSnapshot, 1)}
}

// Deliver hands the snapshot to the waiter. The slot holds one snapshot; a
// second call on the same signal blocks until the first has been received.
func (s *SnapshotSignal) Deliver(snap *WidgetSnapshot) {
	s.ch <- snap
}

// Wait blocks until Deliver is called or the channel is returned for polling
// by the caller's own select/timeout logic.
func (s *SnapshotSignal) Wait() <-chan *WidgetSnapshot {
	return s.ch
}

// Session is the live per-case execution context, exclusively owned and
// mutated by the Agent Loop Engine. It holds only a weak (id-only) reference
// to its Case; all case mutations go through the Case Store.
//
//nolint:govet // logical field grouping preferred over memory layout
type Session struct {
	ID      string
	CaseID  string
	Context *CaseContext

	State     SessionState
	Outcome   TerminalOutcome
	Iteration int

	LastActionAt time.Time

	Paused             bool
	Stopped            bool
	WaitingForSnapshot bool

	PendingSnapshotSignal *SnapshotSignal
}

// NewSession constructs a freshly started session at iteration 0.
func NewSession(caseID string, ctx *CaseContext) *Session {
	return &Session{
		ID:      uuid.NewString(),
		CaseID:  caseID,
		Context: ctx,
		State:   SessionReady,
	}
}
