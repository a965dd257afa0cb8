package pool

import (
	"time"

	"k8s.io/apimachinery/pkg/api/resource"
)

// PodState is the lifecycle state of a pool pod.
type PodState string

const (
	// PodStateWarm is a pre-created idle pod with no owner.
	PodStateWarm PodState = "warm"

	// PodStateAllocated is a pod assigned to an owner and in active use.
	PodStateAllocated PodState = "allocated"
)

// warmPod is the internal Warm variant. It has no owner field by construction:
// a warm pod with an owner cannot be represented.
type warmPod struct {
	name      string
	uid       string
	image     string
	createdAt time.Time
	warmAt    time.Time
}

// allocatedPod is the internal Allocated variant. Owner and allocation time
// are mandatory: they are only set through allocate.
type allocatedPod struct {
	warmPod
	ownerID     string
	allocatedAt time.Time
}

// allocate is the only Warm -> Allocated transition.
func (p warmPod) allocate(ownerID string, at time.Time) allocatedPod {
	return allocatedPod{
		warmPod:     p,
		ownerID:     ownerID,
		allocatedAt: at,
	}
}

// PodRecord is a read-only snapshot of a pool pod handed to callers. Mutating
// a record has no effect on the pool.
type PodRecord struct {
	Name      string    `json:"name"`
	UID       string    `json:"uid"`
	Image     string    `json:"image"`
	State     PodState  `json:"state"`
	CreatedAt time.Time `json:"createdAt"`
	WarmAt    time.Time `json:"warmAt"`

	// OwnerID and AllocatedAt are set only when State is PodStateAllocated.
	OwnerID     string     `json:"ownerId,omitempty"`
	AllocatedAt *time.Time `json:"allocatedAt,omitempty"`
}

func (p warmPod) record() PodRecord {
	return PodRecord{
		Name:      p.name,
		UID:       p.uid,
		Image:     p.image,
		State:     PodStateWarm,
		CreatedAt: p.createdAt,
		WarmAt:    p.warmAt,
	}
}

func (p allocatedPod) record() PodRecord {
	allocatedAt := p.allocatedAt

	return PodRecord{
		Name:        p.name,
		UID:         p.uid,
		Image:       p.image,
		State:       PodStateAllocated,
		CreatedAt:   p.createdAt,
		WarmAt:      p.warmAt,
		OwnerID:     p.ownerID,
		AllocatedAt: &allocatedAt,
	}
}

// UsageSample is one point of the usage window fed to the auto-scaler.
type UsageSample struct {
	Timestamp      time.Time
	WarmCount      int
	AllocatedCount int
}

// Metrics is a derived snapshot of pool state; nothing in it is stored.
type Metrics struct {
	TotalPods          int     `json:"totalPods"`
	WarmPods           int     `json:"warmPods"`
	AllocatedPods      int     `json:"allocatedPods"`
	UtilizationPercent float64 `json:"utilizationPercent"`

	TotalAllocations int64   `json:"totalAllocations"`
	WarmPoolHits     int64   `json:"warmPoolHits"`
	WarmPoolMisses   int64   `json:"warmPoolMisses"`
	HitRatePercent   float64 `json:"hitRatePercent"`

	// AvgAllocationLatencyMs is the mean over the last allocationLatencyWindow
	// successful allocations.
	AvgAllocationLatencyMs float64 `json:"avgAllocationLatencyMs"`

	TargetSize int    `json:"targetSize"`
	Config     Config `json:"config"`
}

// CreatePodParams carries everything the repository needs to submit a pod.
type CreatePodParams struct {
	Name  string
	Image string

	// MemoryMb and CPUCores are resource limits; the adapter sets requests
	// to half of them.
	MemoryMb int64
	CPUCores float64

	Labels map[string]string
}

// PodPhase mirrors the cluster pod phase in the domain layer.
type PodPhase string

const (
	PodPhasePending   PodPhase = "Pending"
	PodPhaseRunning   PodPhase = "Running"
	PodPhaseSucceeded PodPhase = "Succeeded"
	PodPhaseFailed    PodPhase = "Failed"
	PodPhaseUnknown   PodPhase = "Unknown"
)

// PodStatus is the readiness view of one pod.
type PodStatus struct {
	Phase PodPhase

	// Ready is true when every container reports ready.
	Ready bool

	// ImagePullBackoff is true when any container is waiting on an image
	// pull failure.
	ImagePullBackoff bool
}

// PodInfo is one row of a cluster-side pod listing, used during discovery.
type PodInfo struct {
	Name      string
	UID       string
	Labels    map[string]string
	Image     string
	CreatedAt time.Time
}

// PodUsage is a live resource usage reading for one pod.
type PodUsage struct {
	CPUUsage    *resource.Quantity
	MemoryUsage *resource.Quantity
}
