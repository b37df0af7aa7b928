// Package policy implements the Action Policy: a pure, two-tier safety gate
// evaluated on every AgentAction before the Agent Loop Engine is allowed to
// dispatch it.
package policy

import (
	"strings"

	"orchestrator/pkg/proto"
)

// Gate is the outcome of evaluating an action against policy.
type Gate string

const (
	Allowed       Gate = "allowed"
	NeedsApproval Gate = "needs_approval"
	Blocked       Gate = "blocked"
)

// Result pairs the gate with its reason. Reason is empty for Allowed.
type Result struct {
	Gate   Gate
	Reason string
}

var blockedTerms = []string{
	"social security", "credit card number", "full card",
	"bank account", "routing number", "password", "pin number",
}

var commitmentTerms = []string{
	"cancel my account", "delete my account", "accept the offer", "agree to",
	"authorize", "sign up", "subscribe", "payment", "pay now",
}

var riskyLabelFragments = []string{
	"pay", "purchase", "buy", "subscribe", "delete", "confirm order",
}

// caseLevelTerms trigger the separate case-level policy run once at case
// start: high-risk issue language forces paused_for_approval before any
// iteration runs.
var caseLevelTerms = []string{"fraud", "chargeback", "legal", "lawsuit", "police"}

// Evaluate runs the four ordered rules over action and returns the first
// matching gate. Pure function: no I/O, no case or session state.
func Evaluate(action proto.AgentAction) Result {
	switch action.Kind {
	case proto.ActionTypeMessage:
		text := strings.ToLower(action.TypeMessage.Text)
		if term, ok := containsAny(text, blockedTerms); ok {
			return Result{Gate: Blocked, Reason: "message contains blocked term: " + term}
		}
		if term, ok := containsAny(text, commitmentTerms); ok {
			return Result{Gate: NeedsApproval, Reason: "message contains commitment term: " + term}
		}
	case proto.ActionClickButton:
		label := strings.ToLower(action.ClickButton.Label)
		if term, ok := containsAny(label, riskyLabelFragments); ok {
			return Result{Gate: NeedsApproval, Reason: "button label is risky: " + term}
		}
	}
	return Result{Gate: Allowed}
}

func containsAny(text string, terms []string) (string, bool) {
	for _, t := range terms {
		if strings.Contains(text, t) {
			return t, true
		}
	}
	return "", false
}

// EvaluateCase runs the case-level policy once at case start: issue text
// carrying high-risk language forces the case to begin paused_for_approval.
func EvaluateCase(issue string) Result {
	lower := strings.ToLower(issue)
	if term, ok := containsAny(lower, caseLevelTerms); ok {
		return Result{Gate: NeedsApproval, Reason: "issue contains high-risk term: " + term}
	}
	return Result{Gate: Allowed}
}
