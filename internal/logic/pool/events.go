package pool

// Audit event names emitted by the pool controller.
const (
	EventPodCreated = "pod-created"
	EventPodFailed  = "pod-failed"
	EventAllocation = "warm-pool-allocation"
	EventRelease    = "warm-pool-release"
	EventDiscovery  = "warm-pool-discovery"
	EventPrewarm    = "warm-pool-prewarm"
	EventScaleDown  = "warm-pool-scale-down"
)

// Audit event severities.
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// AuditEvent is one structured lifecycle event for the audit sink.
type AuditEvent struct {
	Name     string            `json:"name"`
	Severity string            `json:"severity"`
	Resource string            `json:"resource"`
	Metadata map[string]string `json:"metadata,omitempty"`
}
