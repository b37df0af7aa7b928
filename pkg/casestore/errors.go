package casestore

import "errors"

// ErrCaseNotFound is returned by every lookup/mutation keyed by a case id that
// the store does not hold.
var ErrCaseNotFound = errors.New("casestore: case not found")

// ErrInvalidTransition is returned when a status change is illegal for the
// case's current status, per the Case lifecycle FSM. The case is left
// unchanged.
var ErrInvalidTransition = errors.New("casestore: invalid status transition")

// ErrTerminalCase is returned by append_event when the case is already
// terminal and the event being appended is not the single permitted terminal
// event.
var ErrTerminalCase = errors.New("casestore: case is terminal")

// IsNotFound reports whether err is or wraps ErrCaseNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCaseNotFound)
}
