package audit_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sandboxlabs/warmpool-controller/internal/adapters/outbound/audit"
	"github.com/sandboxlabs/warmpool-controller/internal/logic/pool"
)

func TestWebhookSink_Log(t *testing.T) {
	t.Parallel()

	logger := slog.Default()

	t.Run("posts the event as json", func(t *testing.T) {
		t.Parallel()

		var (
			mu       sync.Mutex
			received []byte
			gotType  string
		)

		done := make(chan struct{})

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(r.Body)
			if err == nil {
				mu.Lock()
				received = body
				gotType = r.Header.Get("Content-Type")
				mu.Unlock()
			}

			w.WriteHeader(http.StatusAccepted)
			close(done)
		}))
		defer srv.Close()

		sink := audit.NewWebhookSink(logger, srv.URL)
		sink.Log(t.Context(), pool.AuditEvent{
			Name:     pool.EventAllocation,
			Severity: pool.SeverityInfo,
			Resource: "sandbox-deadbeef",
			Metadata: map[string]string{"ownerId": "tenant-1"},
		})

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("webhook was never called")
		}

		mu.Lock()
		defer mu.Unlock()

		require.Equal(t, "application/json", gotType)

		var event pool.AuditEvent

		require.NoError(t, json.Unmarshal(received, &event))
		require.Equal(t, pool.EventAllocation, event.Name)
		require.Equal(t, "sandbox-deadbeef", event.Resource)
		require.Equal(t, "tenant-1", event.Metadata["ownerId"])
	})

	t.Run("endpoint failure does not affect the caller", func(t *testing.T) {
		t.Parallel()

		done := make(chan struct{})

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			close(done)
		}))
		defer srv.Close()

		sink := audit.NewWebhookSink(logger, srv.URL)
		sink.Log(t.Context(), pool.AuditEvent{Name: pool.EventRelease, Severity: pool.SeverityInfo})

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("webhook was never called")
		}
	})
}
