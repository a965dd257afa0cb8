package pool

import "time"

// Pool pods are self-describing: every label below is written to the cluster
// so the in-memory view can be rebuilt from a label selector after a restart.
const (
	// LabelSandbox marks a pod as a sandbox pod.
	LabelSandbox = "warmpool.sandboxlabs.io/sandbox"

	// LabelPoolMember marks a pod as managed by a warm pool controller.
	LabelPoolMember = "warmpool.sandboxlabs.io/pool-member"

	// LabelState carries the pod lifecycle state: "warm" or "allocated".
	LabelState = "warmpool.sandboxlabs.io/state"

	// LabelPoolID disambiguates multiple controller instances sharing a namespace.
	LabelPoolID = "warmpool.sandboxlabs.io/pool-id"

	// LabelOwnerID carries the owner identifier. Present only on allocated pods.
	LabelOwnerID = "warmpool.sandboxlabs.io/owner-id"

	// LabelTrue is the value for the boolean labels above.
	LabelTrue = "true"
)

// Label values for LabelState.
const (
	StateLabelWarm      = "warm"
	StateLabelAllocated = "allocated"
)

const (
	podNamePrefix    = "sandbox-"
	podNameSuffixLen = 8

	// readinessPollInterval is the fixed interval between readiness polls.
	readinessPollInterval = 1 * time.Second

	// DefaultStartupTimeout bounds the readiness wait for a new pod.
	DefaultStartupTimeout = 120 * time.Second

	// allocationLatencyWindow is the number of recent allocation latencies
	// kept for the rolling average in Metrics.
	allocationLatencyWindow = 100

	// scaleUpUtilizationGoal is the utilization the scale-up branch sizes
	// the pool toward.
	scaleUpUtilizationGoal = 0.6

	// scaleDownHeadroomFactor keeps headroom above the allocated average
	// when scaling down.
	scaleDownHeadroomFactor = 1.5

	// deleteGracePeriodSeconds is passed to pod deletions. Sandbox pods hold
	// no state worth draining.
	deleteGracePeriodSeconds = int64(0)

	percentScale = 100
)
