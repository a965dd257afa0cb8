package config

import "time"

// Env key constants. All controller configuration env vars use WARMPOOL_ prefix;
// duration values support explicit units (e.g. 5m, 40s, 2h).

// Path to kubeconfig file. If unset, KUBECONFIG is used as fallback.
const envKeyKubeConfig = "WARMPOOL_KUBECONFIG"

// Kubernetes API server URL. If unset, KUBERNETES_MASTER is used as fallback.
const envKeyKubeMaster = "WARMPOOL_KUBE_MASTER"

// Log level: debug, info, warn, error.
const envKeyLogLevel = "WARMPOOL_LOG_LEVEL"

// Log format: json or text.
const envKeyLogFormat = "WARMPOOL_LOG_FORMAT"

// Port for health/readiness HTTP server and the pool REST API.
const envKeyHTTPPort = "WARMPOOL_HTTP_PORT"

// Port for Prometheus metrics (GET /metrics).
const envKeyMetricsPort = "WARMPOOL_METRICS_PORT"

// Namespace the pool pods live in.
const envKeyNamespace = "WARMPOOL_NAMESPACE"

// Logical pool identifier stamped on every pool pod.
const envKeyPoolID = "WARMPOOL_POOL_ID"

// Minimum number of warm pods kept ready.
const envKeyMinSize = "WARMPOOL_MIN_SIZE"

// Hard cap on warm plus allocated pods.
const envKeyMaxSize = "WARMPOOL_MAX_SIZE"

// Container image for warm pods.
const envKeyDefaultImage = "WARMPOOL_DEFAULT_IMAGE"

// Memory limit per warm pod in MiB.
const envKeyDefaultMemoryMb = "WARMPOOL_DEFAULT_MEMORY_MB"

// CPU limit per warm pod in cores (fractional allowed, e.g. 0.5).
const envKeyDefaultCPUCores = "WARMPOOL_DEFAULT_CPU_CORES"

// Replenish loop interval. Units: s, m, h (e.g. 30s, 1m).
const (
	envKeyReplenishInterval = "WARMPOOL_REPLENISH_INTERVAL"
	envMinReplenishInterval = time.Second
)

// Enable utilization-driven pool resizing: true or false.
const envKeyEnableAutoScaling = "WARMPOOL_ENABLE_AUTOSCALING"

// Utilization above which the pool grows (0..1, e.g. 0.8).
const envKeyScaleUpThreshold = "WARMPOOL_SCALE_UP_THRESHOLD"

// Utilization below which the pool shrinks (0..1, e.g. 0.3).
const envKeyScaleDownThreshold = "WARMPOOL_SCALE_DOWN_THRESHOLD"

// Sliding window of usage samples fed to the auto-scaler. Units: s, m, h (e.g. 5m).
const (
	envKeyUsageWindow = "WARMPOOL_USAGE_WINDOW"
	envMinUsageWindow = time.Second
)

// How long a created pod may take to reach Running and Ready. Units: s, m (e.g. 120s).
const (
	envKeyStartupTimeout = "WARMPOOL_STARTUP_TIMEOUT"
	envMinStartupTimeout = time.Second
)

// Pinger check interval. Units: s, m, h (e.g. 10s, 1m).
const (
	envKeyPingerInterval = "WARMPOOL_PINGER_INTERVAL"
	envMinPingerInterval = time.Second
)

// Optional webhook URL for audit events. When unset, events go to the log.
const envKeyAuditWebhookURL = "WARMPOOL_AUDIT_WEBHOOK_URL"

// Optional cron expression for scheduled prewarm bursts (e.g. "0 8 * * 1-5").
const envKeyPrewarmSchedule = "WARMPOOL_PREWARM_SCHEDULE"

// IANA timezone for the prewarm schedule (e.g. Europe/Berlin).
const envKeyPrewarmScheduleTZ = "WARMPOOL_PREWARM_SCHEDULE_TZ"

// How many pods each scheduled prewarm burst creates.
const envKeyPrewarmCount = "WARMPOOL_PREWARM_COUNT"

// Path checked for a graceful-termination marker file.
const envKeyTerminationFile = "WARMPOOL_TERMINATION_FILE"

// Standard k8s env keys used as fallback when WARMPOOL_* are unset.
const (
	envKeyKubeConfigFallback = "KUBECONFIG"
	envKeyKubeMasterFallback = "KUBERNETES_MASTER"
)
