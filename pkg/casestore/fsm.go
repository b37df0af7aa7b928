package casestore

import "orchestrator/pkg/proto"

// Transitions is the canonical Case status transition table — the single
// source of truth for the Case lifecycle FSM described in spec §3. Any
// validation code must match this table exactly.
var Transitions = map[proto.CaseStatus][]proto.CaseStatus{
	proto.CaseQueued:            {proto.CaseRunning},
	proto.CaseRunning:           {proto.CasePausedForApproval, proto.CaseCompleted, proto.CaseFailed},
	proto.CasePausedForApproval: {proto.CaseRunning, proto.CaseCompleted, proto.CaseFailed},
	proto.CaseCompleted:         {},
	proto.CaseFailed:            {},
}

// IsValidTransition reports whether from -> to is legal per Transitions.
// Terminal states (completed, failed) admit no outbound transition.
func IsValidTransition(from, to proto.CaseStatus) bool {
	for _, s := range Transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// AllStatuses returns every status the FSM recognizes, queued first.
func AllStatuses() []proto.CaseStatus {
	return []proto.CaseStatus{
		proto.CaseQueued,
		proto.CaseRunning,
		proto.CasePausedForApproval,
		proto.CaseCompleted,
		proto.CaseFailed,
	}
}
