// Package postgres persists audit events in PostgreSQL through the pgx
// database/sql driver.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	audit "inkwell/pkg/platform/audit"
)

const selectColumns = `
	SELECT id, category, action, subject_id, resource, resource_id,
	       source_address, user_agent, request_id, metadata, created_at
	FROM audit_events`

// Store implements audit.Store using PostgreSQL.
type Store struct {
	db *sql.DB
}

// New creates a new PostgreSQL audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Append inserts an audit event. Re-appending an ID is a no-op.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	metadata, err := encodeMetadata(event.Metadata)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO audit_events (
			id, category, action, subject_id, resource, resource_id,
			source_address, user_agent, request_id, metadata, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO NOTHING`,
		event.ID,
		string(event.Category),
		event.Action,
		event.SubjectID,
		event.Resource,
		event.ResourceID,
		event.SourceAddress,
		event.UserAgent,
		event.RequestID,
		metadata,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListBySubject returns the newest events attributed to subjectID.
func (s *Store) ListBySubject(ctx context.Context, subjectID string, limit int) ([]audit.Event, error) {
	return s.query(ctx, selectColumns+`
		WHERE subject_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`, subjectID, limit)
}

// ListByResource returns the newest events touching one resource.
func (s *Store) ListByResource(ctx context.Context, resource, resourceID string, limit int) ([]audit.Event, error) {
	return s.query(ctx, selectColumns+`
		WHERE resource = $1 AND resource_id = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3`, resource, resourceID, limit)
}

// ListSecuritySince returns security events at or after since.
func (s *Store) ListSecuritySince(ctx context.Context, since time.Time, limit int) ([]audit.Event, error) {
	return s.query(ctx, selectColumns+`
		WHERE category = $1 AND created_at >= $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3`, string(audit.CategorySecurity), since, limit)
}

// DeleteBefore removes events older than cutoff.
func (s *Store) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM audit_events WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete audit events: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete audit events rows: %w", err)
	}
	return n, nil
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
			event    audit.Event
			category string
			metadata []byte
		)
		err := rows.Scan(
			&event.ID,
			&category,
			&event.Action,
			&event.SubjectID,
			&event.Resource,
			&event.ResourceID,
			&event.SourceAddress,
			&event.UserAgent,
			&event.RequestID,
			&metadata,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Category = audit.Category(category)
		if event.Metadata, err = decodeMetadata(metadata); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}

func encodeMetadata(m map[string]string) (string, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encode audit metadata: %w", err)
	}
	return string(b), nil
}

func decodeMetadata(b []byte) (map[string]string, error) {
	if len(b) == 0 || string(b) == "{}" {
		return nil, nil
	}
	var m map[string]string
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decode audit metadata: %w", err)
	}
	return m, nil
}
