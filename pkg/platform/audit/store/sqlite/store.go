// Package sqlite persists audit events in an embedded SQLite database
// (modernc.org/sqlite, no cgo). It suits single-node deployments that want
// durable audit history without running PostgreSQL.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	audit "inkwell/pkg/platform/audit"
)

const schema = `
CREATE TABLE IF NOT EXISTS audit_events (
    id             TEXT PRIMARY KEY,
    category       TEXT NOT NULL,
    action         TEXT NOT NULL,
    subject_id     TEXT NOT NULL DEFAULT '',
    resource       TEXT NOT NULL DEFAULT '',
    resource_id    TEXT NOT NULL DEFAULT '',
    source_address TEXT NOT NULL DEFAULT '',
    user_agent     TEXT NOT NULL DEFAULT '',
    request_id     TEXT NOT NULL DEFAULT '',
    metadata       TEXT NOT NULL DEFAULT '{}',
    created_at     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_audit_events_subject ON audit_events (subject_id, created_at);
CREATE INDEX IF NOT EXISTS idx_audit_events_resource ON audit_events (resource, resource_id, created_at);
CREATE INDEX IF NOT EXISTS idx_audit_events_category ON audit_events (category, created_at);
`

const selectColumns = `
	SELECT id, category, action, subject_id, resource, resource_id,
	       source_address, user_agent, request_id, metadata, created_at
	FROM audit_events`

// Store implements audit.Store on SQLite. created_at is stored as Unix
// nanoseconds so ordering and range filters are plain integer comparisons.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
// ":memory:" gives a private in-memory database.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite serialises writers; one connection also keeps :memory: databases shared.
	db.SetMaxOpenConns(1)
	store, err := New(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// New wraps an open database and applies the schema.
func New(ctx context.Context, db *sql.DB) (*Store, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("apply sqlite audit schema: %w", err)
	}
	return &Store{db: db}, nil
}

// DB exposes the handle for health checks.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	metadata := "{}"
	if len(event.Metadata) > 0 {
		b, err := json.Marshal(event.Metadata)
		if err != nil {
			return fmt.Errorf("encode audit metadata: %w", err)
		}
		metadata = string(b)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO audit_events (
			id, category, action, subject_id, resource, resource_id,
			source_address, user_agent, request_id, metadata, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID, string(event.Category), event.Action, event.SubjectID,
		event.Resource, event.ResourceID, event.SourceAddress, event.UserAgent,
		event.RequestID, metadata, event.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (s *Store) ListBySubject(ctx context.Context, subjectID string, limit int) ([]audit.Event, error) {
	return s.query(ctx, selectColumns+`
		WHERE subject_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, subjectID, limit)
}

func (s *Store) ListByResource(ctx context.Context, resource, resourceID string, limit int) ([]audit.Event, error) {
	return s.query(ctx, selectColumns+`
		WHERE resource = ? AND resource_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, resource, resourceID, limit)
}

func (s *Store) ListSecuritySince(ctx context.Context, since time.Time, limit int) ([]audit.Event, error) {
	return s.query(ctx, selectColumns+`
		WHERE category = ? AND created_at >= ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, string(audit.CategorySecurity), since.UnixNano(), limit)
}

func (s *Store) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM audit_events WHERE created_at < ?`, cutoff.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("delete audit events: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	events := make([]audit.Event, 0)
	for rows.Next() {
		var (
			event     audit.Event
			category  string
			metadata  string
			createdAt int64
		)
		if err := rows.Scan(&event.ID, &category, &event.Action, &event.SubjectID,
			&event.Resource, &event.ResourceID, &event.SourceAddress, &event.UserAgent,
			&event.RequestID, &metadata, &createdAt); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Category = audit.Category(category)
		event.CreatedAt = time.Unix(0, createdAt).UTC()
		if metadata != "" && metadata != "{}" {
			if err := json.Unmarshal([]byte(metadata), &event.Metadata); err != nil {
				return nil, fmt.Errorf("decode audit metadata: %w", err)
			}
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
