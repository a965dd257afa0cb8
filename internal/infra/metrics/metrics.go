package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var warmPods = promauto.With(prometheus.DefaultRegisterer).NewGauge(
	prometheus.GaugeOpts{
		Name: "warmpool_warm_pods",
		Help: "Number of warm pods currently tracked by the pool.",
	},
)

var allocatedPods = promauto.With(prometheus.DefaultRegisterer).NewGauge(
	prometheus.GaugeOpts{
		Name: "warmpool_allocated_pods",
		Help: "Number of allocated pods currently tracked by the pool.",
	},
)

var targetSize = promauto.With(prometheus.DefaultRegisterer).NewGauge(
	prometheus.GaugeOpts{
		Name: "warmpool_target_size",
		Help: "Warm pod count the auto-scaler currently considers desirable.",
	},
)

var allocationsTotal = promauto.With(prometheus.DefaultRegisterer).NewCounterVec(
	prometheus.CounterOpts{
		Name: "warmpool_allocations_total",
		Help: "Total allocation requests, partitioned by outcome (hit or miss).",
	},
	[]string{"outcome"},
)

var podsCreatedTotal = promauto.With(prometheus.DefaultRegisterer).NewCounter(
	prometheus.CounterOpts{
		Name: "warmpool_pods_created_total",
		Help: "Total warm pods created by the pool.",
	},
)

var podsDeletedTotal = promauto.With(prometheus.DefaultRegisterer).NewCounter(
	prometheus.CounterOpts{
		Name: "warmpool_pods_deleted_total",
		Help: "Total pool pods deleted (releases, scale-downs and shutdown).",
	},
)

var startupFailuresTotal = promauto.With(prometheus.DefaultRegisterer).NewCounterVec(
	prometheus.CounterOpts{
		Name: "warmpool_pod_startup_failures_total",
		Help: "Total pod startup failures, partitioned by failure kind.",
	},
	[]string{"reason"},
)

var allocationLatency = promauto.With(prometheus.DefaultRegisterer).NewHistogram(
	prometheus.HistogramOpts{
		Name:    "warmpool_allocation_latency_seconds",
		Help:    "Latency of warm pool allocations served from the pool.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	},
)

// SetPoolGauges updates the pool size gauges in one call.
func SetPoolGauges(warm, allocated, target int) {
	warmPods.Set(float64(warm))
	allocatedPods.Set(float64(allocated))
	targetSize.Set(float64(target))
}

// RecordAllocationHit counts an allocation served from the warm pool.
func RecordAllocationHit(latency time.Duration) {
	allocationsTotal.WithLabelValues("hit").Inc()
	allocationLatency.Observe(latency.Seconds())
}

// RecordAllocationMiss counts an allocation that found no warm pod.
func RecordAllocationMiss() {
	allocationsTotal.WithLabelValues("miss").Inc()
}

// RecordPodCreated counts a successfully created warm pod.
func RecordPodCreated() {
	podsCreatedTotal.Inc()
}

// RecordPodDeleted counts a deleted pool pod.
func RecordPodDeleted() {
	podsDeletedTotal.Inc()
}

// RecordStartupFailure counts a pod startup failure by kind.
func RecordStartupFailure(reason string) {
	startupFailuresTotal.WithLabelValues(reason).Inc()
}
