package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/pkg/requestcontext"
)

type captureRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (c *captureRecorder) Record(_ context.Context, event Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func TestLogger_SecurityEnrichesAndAnonymizes(t *testing.T) {
	var buf bytes.Buffer
	rec := &captureRecorder{}
	logger := NewLogger(slog.New(slog.NewJSONHandler(&buf, nil)), rec)

	ctx := requestcontext.WithRequestID(context.Background(), "req-1")
	ctx = requestcontext.WithClientMetadata(ctx, "203.0.113.77", "curl/8.0")

	logger.Security(ctx, Event{Action: ActionBlockedRequest, Category: CategoryDomain})

	require.Len(t, rec.events, 1)
	got := rec.events[0]
	assert.Equal(t, CategorySecurity, got.Category, "Security forces the category")
	assert.Equal(t, "203.0.113.77", got.SourceAddress)
	assert.Equal(t, "curl/8.0", got.UserAgent)
	assert.Equal(t, "req-1", got.RequestID)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "WARN", line["level"])
	assert.Equal(t, "203.0.113.0", line["source_prefix"])
	assert.NotContains(t, buf.String(), "203.0.113.77")
}

func TestLogger_DomainKeepsExplicitFields(t *testing.T) {
	rec := &captureRecorder{}
	logger := NewLogger(slog.New(slog.DiscardHandler), rec)

	ctx := requestcontext.WithRequestID(context.Background(), "req-ctx")
	logger.Domain(ctx, Event{Action: ActionBookCreated, RequestID: "req-explicit", Resource: "book", ResourceID: "b1"})

	require.Len(t, rec.events, 1)
	assert.Equal(t, CategoryDomain, rec.events[0].Category)
	assert.Equal(t, "req-explicit", rec.events[0].RequestID)
}

func TestLogger_NilRecorderOnlyLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.New(slog.NewJSONHandler(&buf, nil)), nil)

	logger.Domain(context.Background(), Event{Action: ActionLoginSucceeded})

	assert.Contains(t, buf.String(), ActionLoginSucceeded)
}
