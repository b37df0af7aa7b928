// Package casestore implements the Case Store & Event Journal: the
// authoritative in-memory case lifecycle state machine. Every mutation fires
// a best-effort archive callback with a deep-cloned snapshot of the case.
package casestore

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"orchestrator/pkg/logx"
	"orchestrator/pkg/proto"
)

// ArchiveFunc receives a deep-cloned Case after every mutation. Implementations
// must be best-effort: any error is logged by the store and never propagated
// to the caller that triggered the mutation.
type ArchiveFunc func(c *proto.Case) error

// entry pairs a case with the mutex that serializes mutations against it.
// Per spec §4.1: "the store serializes mutations for a single case; concurrent
// mutations of different cases may proceed in parallel."
type entry struct {
	mu   sync.Mutex
	data *proto.Case
}

// Store is the Case Store. It owns every Case exclusively; callers only ever
// see clones.
type Store struct {
	log     *logx.Logger
	archive ArchiveFunc

	mu    sync.RWMutex
	cases map[string]*entry
}

// New constructs a Store. archive may be nil, in which case mutations simply
// skip the archive callback (used by tests that don't care about the
// filesystem side effect).
func New(archive ArchiveFunc) *Store {
	return &Store{
		log:     logx.NewLogger("casestore"),
		archive: archive,
		cases:   make(map[string]*entry),
	}
}

func (s *Store) fireArchive(c *proto.Case) {
	if s.archive == nil {
		return
	}
	snap := c.Clone()
	if err := s.archive(snap); err != nil {
		s.log.Error("archive callback failed for case %s: %v", c.ID, err)
	}
}

// Create assigns an id, classifies category/strategy from the issue text,
// records case_created and intent_inferred events, sets status queued, and
// fires the archive callback.
func (s *Store) Create(input proto.CaseCreateInput) *proto.Case {
	now := time.Now().UTC()
	category, strategy := classify(input.Issue)

	c := &proto.Case{
		ID:              uuid.NewString(),
		CustomerName:    input.CustomerName,
		Issue:           input.Issue,
		OrderID:         input.OrderID,
		AttachmentPaths: append([]string(nil), input.AttachmentPaths...),
		Category:        category,
		Strategy:        strategy,
		Status:          proto.CaseQueued,
		ExecutionMode:   proto.ExecutionModeAutonomous,
		DesiredOutcome:  input.DesiredOutcome,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	c.Events = append(c.Events, proto.CaseEvent{
		At:      now,
		Kind:    proto.EventCaseCreated,
		Message: "case created",
	})
	c.Events = append(c.Events, proto.CaseEvent{
		At:      now,
		Kind:    proto.EventIntentInferred,
		Message: "classified as " + string(category) + "/" + string(strategy),
		Meta: map[string]interface{}{
			"category": string(category),
			"strategy": string(strategy),
		},
	})

	e := &entry{data: c}
	s.mu.Lock()
	s.cases[c.ID] = e
	s.mu.Unlock()

	s.fireArchive(c)
	return c.Clone()
}

func (s *Store) lookup(id string) (*entry, error) {
	s.mu.RLock()
	e, ok := s.cases[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrCaseNotFound
	}
	return e, nil
}

// Get returns a clone of the case, or ErrCaseNotFound.
func (s *Store) Get(id string) (*proto.Case, error) {
	e, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.data.Clone(), nil
}

// List returns clones of every case, sorted by created_at descending.
func (s *Store) List() []*proto.Case {
	s.mu.RLock()
	entries := make([]*entry, 0, len(s.cases))
	for _, e := range s.cases {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	out := make([]*proto.Case, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		out = append(out, e.data.Clone())
		e.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// UpdateStatus validates the transition against the FSM and applies it.
// Terminal-to-anything transitions are rejected with ErrInvalidTransition and
// the case is left unchanged.
func (s *Store) UpdateStatus(id string, newStatus proto.CaseStatus) (*proto.Case, error) {
	e, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if !IsValidTransition(e.data.Status, newStatus) {
		s.log.Error("rejected invalid transition %s -> %s for case %s", e.data.Status, newStatus, id)
		return nil, ErrInvalidTransition
	}
	e.data.Status = newStatus
	e.data.UpdatedAt = time.Now().UTC()

	s.fireArchive(e.data)
	return e.data.Clone(), nil
}

// AppendEvent stamps `at`, appends the event, and fires the archive callback.
// Refused on terminal cases except for the one terminal event (case_completed
// on a completed case, case_failed on a failed case).
func (s *Store) AppendEvent(id string, ev proto.CaseEvent) (*proto.Case, error) {
	e, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.data.Status.IsTerminal() && !isPermittedTerminalEvent(e.data.Status, ev.Kind) {
		return nil, ErrTerminalCase
	}

	ev.At = time.Now().UTC()
	e.data.Events = append(e.data.Events, ev)
	e.data.UpdatedAt = ev.At

	s.fireArchive(e.data)
	return e.data.Clone(), nil
}

func isPermittedTerminalEvent(status proto.CaseStatus, kind proto.CaseEventKind) bool {
	switch status {
	case proto.CaseCompleted:
		return kind == proto.EventCaseCompleted
	case proto.CaseFailed:
		return kind == proto.EventCaseFailed
	default:
		return true
	}
}

// Complete transitions running|paused_for_approval -> completed, records
// case_completed with the summary, and sets resolution_summary. Idempotent:
// a second call on an already-completed case returns the existing case
// without error.
func (s *Store) Complete(id, summary string) (*proto.Case, error) {
	e, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.data.Status == proto.CaseCompleted {
		return e.data.Clone(), nil
	}
	if !IsValidTransition(e.data.Status, proto.CaseCompleted) {
		return nil, ErrInvalidTransition
	}

	now := time.Now().UTC()
	e.data.Status = proto.CaseCompleted
	e.data.ResolutionSummary = summary
	e.data.UpdatedAt = now
	e.data.Events = append(e.data.Events, proto.CaseEvent{
		At:      now,
		Kind:    proto.EventCaseCompleted,
		Message: summary,
	})

	s.fireArchive(e.data)
	return e.data.Clone(), nil
}

// Fail transitions any non-terminal status to failed, records case_failed,
// and sets last_error.
func (s *Store) Fail(id, errMsg string) (*proto.Case, error) {
	e, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.data.Status.IsTerminal() {
		if e.data.Status == proto.CaseFailed {
			return e.data.Clone(), nil
		}
		return nil, ErrInvalidTransition
	}

	now := time.Now().UTC()
	e.data.Status = proto.CaseFailed
	e.data.LastError = errMsg
	e.data.UpdatedAt = now
	e.data.Events = append(e.data.Events, proto.CaseEvent{
		At:      now,
		Kind:    proto.EventCaseFailed,
		Message: errMsg,
	})

	s.fireArchive(e.data)
	return e.data.Clone(), nil
}
