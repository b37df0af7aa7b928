// Package sqlitemirror provides an optional, best-effort SQLite mirror of
// the event journal for local debugging queries, grounded on the teacher's
// modernc.org/sqlite schema-init pattern (pkg/persistence/schema.go). It is
// never the system of record: the Case Store stays in-memory per the spec's
// non-goal on durable cross-restart recovery.
package sqlitemirror

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite" // SQLite driver

	"orchestrator/pkg/logx"
	"orchestrator/pkg/proto"
)

const schema = `
CREATE TABLE IF NOT EXISTS case_events (
	case_id    TEXT NOT NULL,
	seq        INTEGER NOT NULL,
	at         TEXT NOT NULL,
	kind       TEXT NOT NULL,
	message    TEXT NOT NULL,
	meta_json  TEXT,
	PRIMARY KEY (case_id, seq)
);
`

// Mirror writes every archive.Write call's event journal into a local SQLite
// file for ad hoc querying. Open failures are fatal at construction (a
// misconfigured debug path should be caught immediately); per-case write
// failures are logged and swallowed, matching the Archive's own best-effort
// contract.
type Mirror struct {
	db  *sql.DB
	log *logx.Logger
}

// Open creates or attaches to a SQLite database at path and ensures the
// mirror schema exists.
func Open(path string) (*Mirror, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", path))
	if err != nil {
		return nil, fmt.Errorf("sqlitemirror: open: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlitemirror: create schema: %w", err)
	}
	return &Mirror{db: db, log: logx.NewLogger("sqlitemirror")}, nil
}

// Close releases the underlying database handle.
func (m *Mirror) Close() error {
	if err := m.db.Close(); err != nil {
		return fmt.Errorf("sqlitemirror: close: %w", err)
	}
	return nil
}

// Write mirrors c's full event journal, replacing whatever was previously
// stored for this case id, so the table always reflects the latest snapshot
// handed to the Conversation Archive.
func (m *Mirror) Write(c *proto.Case) error {
	tx, err := m.db.Begin()
	if err != nil {
		m.log.Warn("sqlite mirror begin failed for case %s: %v", c.ID, err)
		return nil //nolint:nilerr // best-effort mirror, never blocks case progress
	}

	if _, err := tx.Exec(`DELETE FROM case_events WHERE case_id = ?`, c.ID); err != nil {
		m.log.Warn("sqlite mirror delete failed for case %s: %v", c.ID, err)
		_ = tx.Rollback()
		return nil //nolint:nilerr // best-effort mirror, never blocks case progress
	}

	for i, ev := range c.Events {
		var metaJSON []byte
		if len(ev.Meta) > 0 {
			metaJSON, _ = json.Marshal(ev.Meta)
		}
		if _, err := tx.Exec(
			`INSERT INTO case_events (case_id, seq, at, kind, message, meta_json) VALUES (?, ?, ?, ?, ?, ?)`,
			c.ID, i, ev.At.Format("2006-01-02T15:04:05Z07:00"), string(ev.Kind), ev.Message, string(metaJSON),
		); err != nil {
			m.log.Warn("sqlite mirror insert failed for case %s event %d: %v", c.ID, i, err)
			_ = tx.Rollback()
			return nil //nolint:nilerr // best-effort mirror, never blocks case progress
		}
	}

	if err := tx.Commit(); err != nil {
		m.log.Warn("sqlite mirror commit failed for case %s: %v", c.ID, err)
	}
	return nil
}
