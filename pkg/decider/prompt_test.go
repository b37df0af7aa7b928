package decider

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"orchestrator/pkg/proto"
)

func sampleCaseContext() *proto.CaseContext {
	ctx := proto.NewCaseContext("case-1", "Jordan", "refund never arrived", "refund to card", "order-99", false)
	ctx.AppendAction("sent opening message")
	return ctx
}

func TestBuildSystemPromptIncludesCaseFacts(t *testing.T) {
	ctx := sampleCaseContext()
	prompt := buildSystemPrompt(ctx)

	assert.Contains(t, prompt, "customer's advocate")
	assert.Contains(t, prompt, "Never reveal that you are an automated agent")
	assert.Contains(t, prompt, "refund never arrived")
	assert.Contains(t, prompt, "refund to card")
	assert.Contains(t, prompt, "order-99")
	assert.Contains(t, prompt, "Has attachments available: false")
}

func TestBuildSystemPromptOmitsBlankOptionalFacts(t *testing.T) {
	ctx := proto.NewCaseContext("case-1", "Jordan", "issue", "", "", false)
	prompt := buildSystemPrompt(ctx)

	assert.NotContains(t, prompt, "Desired outcome")
	assert.NotContains(t, prompt, "Order id")
}

func TestBuildUserMessageRendersEmptySnapshotMarker(t *testing.T) {
	snap := &proto.WidgetSnapshot{Provider: "zendesk", URL: "https://example.com/chat"}
	msg := buildUserMessage(snap, sampleCaseContext())

	assert.Contains(t, msg, "Provider: zendesk")
	assert.Contains(t, msg, "(no messages yet)")
	assert.Contains(t, msg, "(none)")
	assert.Contains(t, msg, "not present")
}

func TestBuildUserMessageRendersMessagesButtonsAndInput(t *testing.T) {
	now := time.Now()
	snap := &proto.WidgetSnapshot{
		Provider: "intercom",
		URL:      "https://example.com/chat",
		Messages: []proto.Message{
			{Timestamp: &now, Sender: proto.SenderUser, Text: "Where is my refund?"},
			{Timestamp: &now, Sender: proto.SenderAgent, Text: "Let me check."},
			{Timestamp: &now, Sender: proto.SenderSystem, Text: "Case opened."},
			{Timestamp: &now, Sender: proto.Sender("other"), Text: "???"},
		},
		Buttons: []proto.Button{
			{Label: "Yes", Kind: proto.ButtonKindQuickReply},
			{Label: "Escalate", Kind: proto.ButtonKindAction},
		},
		InputField:      proto.InputField{Found: true, CurrentValue: "draft", Placeholder: "Type a message"},
		TypingIndicator: true,
	}

	msg := buildUserMessage(snap, sampleCaseContext())

	assert.Contains(t, msg, "You (customer): Where is my refund?")
	assert.Contains(t, msg, "Support: Let me check.")
	assert.Contains(t, msg, "System: Case opened.")
	assert.Contains(t, msg, "Unknown: ???")
	assert.Contains(t, msg, `1. "Yes"`)
	assert.Contains(t, msg, `2. "Escalate"`)
	assert.Contains(t, msg, `present, current value "draft"`)
	assert.Contains(t, msg, "Support is currently typing.")
	assert.Contains(t, msg, "sent opening message")
}
