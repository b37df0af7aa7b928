package engine

import (
	"sync"

	"orchestrator/pkg/decider"
	"orchestrator/pkg/proto"
	"orchestrator/pkg/transport"
)

// runningSession is the Engine's private bookkeeping for one live Session,
// layered around the public proto.Session the spec names (spec §3 Session,
// §4.7 Public contract).
//
//nolint:govet // logical field grouping preferred over memory layout
type runningSession struct {
	sess      *proto.Session
	transport transport.SurfaceTransport
	decider   *decider.Decider

	mu sync.Mutex

	// loopActive is true for the whole duration of a running iteration loop,
	// including any in-flight snapshot rendezvous, so an unsolicited snapshot
	// never starts a second overlapping loop for the same session.
	loopActive bool

	waitingForSnapshot bool
	pendingSignal      *proto.SnapshotSignal

	// cancel is closed exactly once by stop to unblock any in-flight
	// rendezvous immediately, rather than waiting out its timeout.
	cancel    chan struct{}
	stopOnce  sync.Once
}

func newRunningSession(caseID string, ctx *proto.CaseContext, tr transport.SurfaceTransport) *runningSession {
	return &runningSession{
		sess:      proto.NewSession(caseID, ctx),
		transport: tr,
		cancel:    make(chan struct{}),
	}
}

func (rs *runningSession) stop(outcome proto.TerminalOutcome) {
	rs.stopOnce.Do(func() { close(rs.cancel) })
	rs.mu.Lock()
	rs.sess.Stopped = true
	rs.sess.State = proto.SessionTerminal
	rs.sess.Outcome = outcome
	rs.mu.Unlock()
}

func (rs *runningSession) isStopped() bool {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.sess.Stopped
}

func (rs *runningSession) isPaused() bool {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.sess.Paused
}

func (rs *runningSession) setPaused(paused bool) {
	rs.mu.Lock()
	rs.sess.Paused = paused
	if paused {
		rs.sess.State = proto.SessionPaused
	} else {
		rs.sess.State = proto.SessionReady
	}
	rs.mu.Unlock()
}

// GetCurrentState, GetCaseID, and GetID satisfy metrics.StateProvider and
// ratelimit's stateProvider dependency structurally, without pkg/engine
// importing either middleware package.
func (rs *runningSession) GetCurrentState() proto.SessionState {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.sess.State
}

func (rs *runningSession) GetCaseID() string {
	return rs.sess.CaseID
}

func (rs *runningSession) GetID() string {
	return rs.sess.ID
}
