package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"orchestrator/pkg/proto"
)

// replayCmd reconstructs an archived case's event journal for offline
// debugging, grounded on the teacher's historical-log replayer but reading
// the Conversation Archive's case.json instead of an events.jsonl stream.
func replayCmd() *cobra.Command {
	var archiveRoot string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "replay <case-id>",
		Short: "Print an archived case's event journal",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			caseID := args[0]
			path := filepath.Join(archiveRoot, caseID, "case.json")

			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read archived case %s: %w", caseID, err)
			}

			var c proto.Case
			if err := json.Unmarshal(data, &c); err != nil {
				return fmt.Errorf("parse archived case %s: %w", caseID, err)
			}

			printReplay(&c, verbose)
			return nil
		},
	}

	cmd.Flags().StringVar(&archiveRoot, "archive-root", envOrDefault("ARCHIVE_ROOT", "./archive"), "Conversation Archive root directory")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Include event metadata")
	return cmd
}

func printReplay(c *proto.Case, verbose bool) {
	fmt.Printf("case %s (%s/%s) — %s\n", c.ID, c.Category, c.Strategy, c.Status)
	fmt.Printf("customer: %s\n", c.CustomerName)
	fmt.Printf("issue: %s\n", c.Issue)
	if c.ResolutionSummary != "" {
		fmt.Printf("resolution: %s\n", c.ResolutionSummary)
	}
	if c.LastError != "" {
		fmt.Printf("last error: %s\n", c.LastError)
	}
	fmt.Println()

	for _, ev := range c.Events {
		fmt.Printf("[%s] %-18s %s\n", ev.At.Format("15:04:05"), ev.Kind, ev.Message)
		if verbose && len(ev.Meta) > 0 {
			metaJSON, err := json.Marshal(ev.Meta)
			if err == nil {
				fmt.Printf("    %s\n", string(metaJSON))
			}
		}
	}
}
