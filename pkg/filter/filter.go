// Package filter implements the Sensitive Filter: a deterministic, idempotent
// redaction pass applied to a WidgetSnapshot before it ever reaches the LLM
// Decider.
package filter

import (
	"regexp"

	"orchestrator/pkg/proto"
)

// rule is one ordered redaction step. Rules run in the order declared.
type rule struct {
	name        string
	pattern     *regexp.Regexp
	replacement string
}

var rules = []rule{
	{
		name:        "ssn",
		pattern:     regexp.MustCompile(`\b\d{3}[-.\s]?\d{2}[-.\s]?\d{4}\b`),
		replacement: "[SSN REDACTED]",
	},
	{
		name:        "card",
		pattern:     regexp.MustCompile(`\b\d{4}[-.\s]\d{4}[-.\s]\d{4}[-.\s]\d{4}\b`),
		replacement: "[CARD REDACTED]",
	},
	{
		name:        "cvv",
		pattern:     regexp.MustCompile(`(?i)\bcvv:?\s*\d{3,4}\b`),
		replacement: "[CVV REDACTED]",
	},
	{
		name:        "password",
		pattern:     regexp.MustCompile(`(?i)\b(password|passwd|pwd)\s*[:=]\s*\S+`),
		replacement: "[PASSWORD REDACTED]",
	},
	{
		name:        "phone",
		pattern:     regexp.MustCompile(`(\+1[-.\s]?)?\(?\d{3}\)?[-.\s]\d{3}[-.\s]\d{4}\b`),
		replacement: "[PHONE ***]",
	},
	{
		name:        "email",
		pattern:     regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`),
		replacement: "[EMAIL ***]",
	},
}

// redact applies every rule, in order, to s. Idempotent: redacting an
// already-redacted string returns it unchanged, since the replacement tokens
// never match any rule's pattern.
func redact(s string) string {
	for _, r := range rules {
		s = r.pattern.ReplaceAllString(s, r.replacement)
	}
	return s
}

// Filter returns a new WidgetSnapshot with every message text, the input
// field's current value, and every button label redacted. The input
// snapshot is never mutated.
func Filter(snap *proto.WidgetSnapshot) *proto.WidgetSnapshot {
	if snap == nil {
		return nil
	}
	out := snap.Clone()

	for i := range out.Messages {
		out.Messages[i].Text = redact(out.Messages[i].Text)
	}
	for i := range out.Buttons {
		out.Buttons[i].Label = redact(out.Buttons[i].Label)
	}
	out.InputField.CurrentValue = redact(out.InputField.CurrentValue)

	return out
}
