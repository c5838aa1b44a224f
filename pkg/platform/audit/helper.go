package audit

import (
	"context"
	"log/slog"

	"inkwell/pkg/platform/privacy"
	"inkwell/pkg/requestcontext"
)

// Logger writes a structured log line for every audit event and forwards
// the event to a Recorder. Source addresses are anonymized in the log line
// only; the recorded event keeps the full address.
type Logger struct {
	textLogger *slog.Logger
	recorder   Recorder
}

// NewLogger creates an audit logger. recorder may be nil for log-only use.
func NewLogger(textLogger *slog.Logger, recorder Recorder) *Logger {
	if textLogger == nil {
		textLogger = slog.Default()
	}
	return &Logger{textLogger: textLogger, recorder: recorder}
}

// Security records a security event, filling request metadata from ctx
// when the caller left it empty.
func (l *Logger) Security(ctx context.Context, event Event) {
	event.Category = CategorySecurity
	l.emit(ctx, slog.LevelWarn, event)
}

// Domain records a domain event, filling request metadata from ctx.
func (l *Logger) Domain(ctx context.Context, event Event) {
	event.Category = CategoryDomain
	l.emit(ctx, slog.LevelInfo, event)
}

func (l *Logger) emit(ctx context.Context, level slog.Level, event Event) {
	Enrich(ctx, &event)

	attrs := []any{
		"log_type", "audit",
		"category", string(event.Category),
		"action", event.Action,
	}
	if event.SubjectID != "" {
		attrs = append(attrs, "subject_id", event.SubjectID)
	}
	if event.SourceAddress != "" {
		attrs = append(attrs, "source_prefix", privacy.AnonymizeIP(event.SourceAddress))
	}
	if event.Resource != "" {
		attrs = append(attrs, "resource", event.Resource, "resource_id", event.ResourceID)
	}
	if event.RequestID != "" {
		attrs = append(attrs, "request_id", event.RequestID)
	}
	l.textLogger.Log(ctx, level, event.Action, attrs...)

	if l.recorder != nil {
		l.recorder.Record(ctx, event)
	}
}

// Enrich fills SourceAddress, UserAgent and RequestID from ctx where empty.
func Enrich(ctx context.Context, event *Event) {
	if event.SourceAddress == "" {
		event.SourceAddress = requestcontext.ClientIP(ctx)
	}
	if event.UserAgent == "" {
		event.UserAgent = requestcontext.UserAgent(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
}
