package httpserver

import (
	"context"
	"time"

	"github.com/sandboxlabs/warmpool-controller/internal/infra/appstate"
	"github.com/sandboxlabs/warmpool-controller/internal/logic/pool"
)

// appstater is an internal interface for application state management
type appstater interface {
	GetState() appstate.State
	IsHealthy() bool
	IsReady() bool
	GetUptime() time.Duration
	GetStartTime() time.Time
}

// poolService is the slice of the warm pool surface the API exposes.
type poolService interface {
	GetWarm(ctx context.Context, ownerID string) (*pool.PodRecord, error)
	Release(ctx context.Context, podName string)
	Prewarm(ctx context.Context, count int) (int, error)
	Metrics() pool.Metrics
	IsPoolMember(name string) bool
	GetPodInfo(name string) *pool.PodRecord
	ListPods() []pool.PodRecord
}

// usageQuerier reads live pod resource usage from the cluster metrics API.
type usageQuerier interface {
	PodUsageQuery(ctx context.Context, name string) (*pool.PodUsage, error)
}
