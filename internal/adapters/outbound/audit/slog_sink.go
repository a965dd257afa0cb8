package audit

import (
	"context"
	"log/slog"

	"github.com/sandboxlabs/warmpool-controller/internal/logic/pool"
)

// SlogSink writes audit events to the structured log. It is the default sink
// when no external audit endpoint is configured.
type SlogSink struct {
	logger *slog.Logger
}

// NewSlogSink creates a new log-backed audit sink.
func NewSlogSink(logger *slog.Logger) *SlogSink {
	return &SlogSink{
		logger: logger.With("component", "audit"),
	}
}

var _ pool.AuditSink = (*SlogSink)(nil)

// Log writes the event. It never fails and never blocks on I/O beyond the
// log handler itself.
func (s *SlogSink) Log(ctx context.Context, event pool.AuditEvent) {
	attrs := []any{
		"event", event.Name,
		"severity", event.Severity,
		"resource", event.Resource,
	}

	for k, v := range event.Metadata {
		attrs = append(attrs, "meta."+k, v)
	}

	switch event.Severity {
	case pool.SeverityError:
		s.logger.ErrorContext(ctx, "audit event", attrs...)
	case pool.SeverityWarning:
		s.logger.WarnContext(ctx, "audit event", attrs...)
	default:
		s.logger.InfoContext(ctx, "audit event", attrs...)
	}
}
