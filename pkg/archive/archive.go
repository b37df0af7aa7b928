// Package archive implements the Conversation Archive: a pure, best-effort
// sink that mirrors every Case Store mutation to disk as case.json and
// timeline.md. It never reads back from disk and never causes case progress
// to fail.
package archive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"orchestrator/pkg/logx"
	"orchestrator/pkg/proto"
)

// Archive writes a per-case directory under Root. Writes are last-writer-wins
// overwrites, not appends.
type Archive struct {
	root string
	log  *logx.Logger
}

// New constructs an Archive rooted at root. The directory is created on
// demand per case, not eagerly here.
func New(root string) *Archive {
	return &Archive{root: root, log: logx.NewLogger("archive")}
}

// Write is the archive callback handed to casestore.New. It ensures the
// per-case directory exists, then overwrites case.json and timeline.md.
func (a *Archive) Write(c *proto.Case) error {
	dir := filepath.Join(a.root, c.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("archive: create case dir: %w", err)
	}
	if err := a.writeCaseJSON(dir, c); err != nil {
		return err
	}
	if err := a.writeTimeline(dir, c); err != nil {
		return err
	}
	return nil
}

func (a *Archive) writeCaseJSON(dir string, c *proto.Case) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("archive: marshal case: %w", err)
	}
	path := filepath.Join(dir, "case.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("archive: write case.json: %w", err)
	}
	return nil
}

func (a *Archive) writeTimeline(dir string, c *proto.Case) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# Case %s\n\n", c.ID)
	fmt.Fprintf(&b, "- Customer: %s\n", c.CustomerName)
	fmt.Fprintf(&b, "- Status: %s\n", c.Status)
	fmt.Fprintf(&b, "- Category: %s\n", c.Category)
	fmt.Fprintf(&b, "- Strategy: %s\n", c.Strategy)
	if c.OrderID != "" {
		fmt.Fprintf(&b, "- Order: %s\n", c.OrderID)
	}
	fmt.Fprintf(&b, "- Created: %s\n", c.CreatedAt.Format("2006-01-02T15:04:05Z07:00"))
	fmt.Fprintf(&b, "- Updated: %s\n", c.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"))

	b.WriteString("\n## Issue\n\n")
	b.WriteString(c.Issue)
	b.WriteString("\n")

	b.WriteString("\n## Timeline\n\n")
	for _, ev := range c.Events {
		fmt.Fprintf(&b, "- [%s] %s: %s\n", ev.At.Format("15:04:05"), ev.Kind, ev.Message)
		if len(ev.Meta) > 0 {
			metaJSON, err := json.Marshal(ev.Meta)
			if err != nil {
				return fmt.Errorf("archive: marshal event meta: %w", err)
			}
			fmt.Fprintf(&b, "  - %s\n", string(metaJSON))
		}
	}

	path := filepath.Join(dir, "timeline.md")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("archive: write timeline.md: %w", err)
	}
	return nil
}
