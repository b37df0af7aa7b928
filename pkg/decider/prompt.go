package decider

import (
	"fmt"
	"strings"

	"orchestrator/pkg/proto"
)

// buildSystemPrompt states the agent's role, its safety rules, and the case
// facts the Decider is allowed to see (spec §4.5 step 1).
func buildSystemPrompt(ctx *proto.CaseContext) string {
	var b strings.Builder

	b.WriteString("You are a customer support agent acting as the customer's advocate. ")
	b.WriteString("Always speak in the customer's first-person voice when sending messages. ")
	b.WriteString("Never reveal that you are an automated agent. ")
	b.WriteString("Never share personal or payment information unless the customer themselves already did. ")
	b.WriteString("When a situation calls for judgment you cannot safely make, defer to a human by using request_human_review.\n\n")

	fmt.Fprintf(&b, "Case facts:\n- Issue: %s\n", ctx.Issue)
	if ctx.DesiredOutcome != "" {
		fmt.Fprintf(&b, "- Desired outcome: %s\n", ctx.DesiredOutcome)
	}
	if ctx.OrderID != "" {
		fmt.Fprintf(&b, "- Order id: %s\n", ctx.OrderID)
	}
	fmt.Fprintf(&b, "- Has attachments available: %t\n", ctx.HasAttachments)

	return b.String()
}

// buildUserMessage renders the current snapshot and the trailing window of
// previous actions into the single user message the Decider sends every
// iteration (spec §4.5 step 2).
func buildUserMessage(snap *proto.WidgetSnapshot, ctx *proto.CaseContext) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Provider: %s\nURL: %s\n\n", snap.Provider, snap.URL)

	b.WriteString("Chat messages:\n")
	if len(snap.Messages) == 0 {
		b.WriteString("(no messages yet)\n")
	} else {
		for _, m := range snap.Messages {
			b.WriteString(messageLabel(m.Sender))
			b.WriteString(": ")
			b.WriteString(m.Text)
			b.WriteString("\n")
		}
	}

	b.WriteString("\nButtons:\n")
	if len(snap.Buttons) == 0 {
		b.WriteString("(none)\n")
	} else {
		for i, btn := range snap.Buttons {
			fmt.Fprintf(&b, "%d. %q (%s)\n", i+1, btn.Label, btn.Kind)
		}
	}

	b.WriteString("\nInput field: ")
	if snap.InputField.Found {
		fmt.Fprintf(&b, "present, current value %q, placeholder %q\n", snap.InputField.CurrentValue, snap.InputField.Placeholder)
	} else {
		b.WriteString("not present\n")
	}

	if snap.TypingIndicator {
		b.WriteString("Support is currently typing.\n")
	}

	recent := ctx.RecentActions()
	if len(recent) > 0 {
		b.WriteString("\nRecent actions taken so far:\n")
		for _, a := range recent {
			b.WriteString("- ")
			b.WriteString(a)
			b.WriteString("\n")
		}
	}

	return b.String()
}

func messageLabel(sender proto.Sender) string {
	switch sender {
	case proto.SenderUser:
		return "You (customer)"
	case proto.SenderAgent:
		return "Support"
	case proto.SenderSystem:
		return "System"
	default:
		return "Unknown"
	}
}
