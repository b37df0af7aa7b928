package proto

// maxPreviousActionsWindow bounds the previous_actions window shown to the Decider
// (spec §4.5: "the rendered previous_actions window is the last 8 entries").
const maxPreviousActionsWindow = 8

// CaseContext is the per-session accumulator the Decider sees on every iteration.
// It is owned and mutated only by the Engine; previousActions is append-only.
type CaseContext struct {
	CaseID         string
	CustomerName   string
	Issue          string
	DesiredOutcome string
	OrderID        string
	HasAttachments bool

	previousActions []string
}

// NewCaseContext builds a context for a freshly started session.
func NewCaseContext(caseID, customerName, issue, desiredOutcome, orderID string, hasAttachments bool) *CaseContext {
	return &CaseContext{
		CaseID:         caseID,
		CustomerName:   customerName,
		Issue:          issue,
		DesiredOutcome: desiredOutcome,
		OrderID:        orderID,
		HasAttachments: hasAttachments,
	}
}

// AppendAction appends a human-readable action record. Only the Engine calls this.
func (c *CaseContext) AppendAction(entry string) {
	c.previousActions = append(c.previousActions, entry)
}

// PreviousActions returns the full append-only history.
func (c *CaseContext) PreviousActions() []string {
	return append([]string(nil), c.previousActions...)
}

// RecentActions returns the trailing window rendered to the Decider, eliding
// older entries to control token cost.
func (c *CaseContext) RecentActions() []string {
	if len(c.previousActions) <= maxPreviousActionsWindow {
		return append([]string(nil), c.previousActions...)
	}
	start := len(c.previousActions) - maxPreviousActionsWindow
	return append([]string(nil), c.previousActions[start:]...)
}
