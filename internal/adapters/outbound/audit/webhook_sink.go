package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/sandboxlabs/warmpool-controller/internal/logic/pool"
)

const webhookTimeout = 5 * time.Second

// WebhookSink posts audit events to an external HTTP endpoint. Delivery is
// fire-and-forget: the caller's control flow is never affected by a sink
// failure, and the post happens off the caller's goroutine.
type WebhookSink struct {
	logger *slog.Logger
	client *http.Client
	url    string
}

// NewWebhookSink creates a new webhook audit sink posting to url.
func NewWebhookSink(logger *slog.Logger, url string) *WebhookSink {
	return &WebhookSink{
		logger: logger.With("component", "audit-webhook"),
		client: &http.Client{
			Timeout: webhookTimeout,
		},
		url: url,
	}
}

var _ pool.AuditSink = (*WebhookSink)(nil)

// Log delivers the event asynchronously. Failures are logged, not returned.
func (s *WebhookSink) Log(ctx context.Context, event pool.AuditEvent) {
	// Detach from the caller's cancellation: an allocation finishing must not
	// abort its own audit delivery.
	go s.post(context.WithoutCancel(ctx), event)
}

func (s *WebhookSink) post(ctx context.Context, event pool.AuditEvent) {
	body, err := json.Marshal(event)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to marshal audit event",
			"event", event.Name,
			"reason", err,
		)

		return
	}

	ctx, cancel := context.WithTimeout(ctx, webhookTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to build audit request",
			"event", event.Name,
			"reason", err,
		)

		return
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.WarnContext(ctx, "audit event delivery failed",
			"event", event.Name,
			"reason", err,
		)

		return
	}

	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		s.logger.WarnContext(ctx, "audit endpoint rejected event",
			"event", event.Name,
			"status", resp.StatusCode,
		)
	}
}
