// ABOUTME: Append-only SQLite log of setup actions using modernc.org/sqlite
// ABOUTME: Records which mutating step ran, against what, and when

package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Action is one auditable setup action.
type Action string

const (
	ActionGatewayConfigured Action = "gateway_configured"
	ActionChannelInstalled  Action = "channel_installed"
	ActionChannelConfigured Action = "channel_configured"
	ActionChannelUpdated    Action = "channel_updated"
	ActionChannelDisabled   Action = "channel_disabled"
	ActionChannelDeleted    Action = "channel_deleted"
)

// Entry is a single audit record. Detail holds structured context such as
// the flow mode or the affected account id.
type Entry struct {
	ID        string
	Action    Action
	Target    string
	Timestamp time.Time
	Detail    map[string]any
}

// Log is the append-only setup audit log. Audit writes are best-effort:
// callers log failures but never abort the run over them.
type Log struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open creates or opens the audit database at path. Parent directories are
// created if needed.
func Open(path string) (*Log, error) {
	logger := slog.Default().With("component", "audit")

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating audit directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening audit database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	schema := `
CREATE TABLE IF NOT EXISTS setup_audit (
	id        TEXT PRIMARY KEY,
	action    TEXT NOT NULL,
	target    TEXT NOT NULL,
	timestamp TEXT NOT NULL,
	detail    TEXT
);
CREATE INDEX IF NOT EXISTS idx_setup_audit_timestamp ON setup_audit(timestamp);
`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating audit schema: %w", err)
	}

	return &Log{db: db, logger: logger}, nil
}

// Append writes a new entry. ID and Timestamp are generated when unset.
func (l *Log) Append(ctx context.Context, e *Entry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	var detail []byte
	if e.Detail != nil {
		var err error
		detail, err = json.Marshal(e.Detail)
		if err != nil {
			return fmt.Errorf("marshaling audit detail: %w", err)
		}
	}

	_, err := l.db.ExecContext(ctx,
		`INSERT INTO setup_audit (id, action, target, timestamp, detail) VALUES (?, ?, ?, ?, ?)`,
		e.ID, string(e.Action), e.Target, e.Timestamp.Format(time.RFC3339Nano), string(detail),
	)
	if err != nil {
		return fmt.Errorf("appending audit entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (l *Log) Recent(ctx context.Context, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := l.db.QueryContext(ctx,
		`SELECT id, action, target, timestamp, detail FROM setup_audit ORDER BY timestamp DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying audit log: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var e Entry
		var ts, detail string
		if err := rows.Scan(&e.ID, (*string)(&e.Action), &e.Target, &ts, &detail); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}
		e.Timestamp, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("parsing audit timestamp: %w", err)
		}
		if detail != "" {
			if err := json.Unmarshal([]byte(detail), &e.Detail); err != nil {
				return nil, fmt.Errorf("parsing audit detail: %w", err)
			}
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// Close releases the underlying database.
func (l *Log) Close() error {
	return l.db.Close()
}
