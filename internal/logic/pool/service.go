package pool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sandboxlabs/warmpool-controller/internal/infra/metrics"
	"github.com/sandboxlabs/warmpool-controller/internal/infra/shutdown"
)

// Service is the warm pool controller. It owns the Warm and Allocated maps;
// the cluster is the source of truth for pod existence and the maps are
// rebuilt from cluster labels on Start. Callers only ever see snapshots.
type Service struct {
	logger    *slog.Logger
	repo      Repository
	audit     AuditSink
	cfg       Config
	lifecycle *lifecycleManager
	selector  string

	mu        sync.RWMutex
	warm      map[string]warmPod
	allocated map[string]allocatedPod
	// creating counts in-flight pod creations so concurrent prewarm passes
	// cannot overshoot MaxSize together.
	creating int

	allocLock      *allocationLock
	sampler        *usageSampler
	allocLatencies *latencyWindow

	totalAllocations atomic.Int64
	warmHits         atomic.Int64
	warmMisses       atomic.Int64
	targetSize       atomic.Int64
	replenishing     atomic.Bool

	started    atomic.Bool
	inShutdown atomic.Bool
	ready      chan struct{}
	doneCh     chan struct{}

	replMu               sync.RWMutex
	lastReplenishEndTime time.Time
}

// New creates the warm pool controller. The config is validated here and a
// violation is fatal: no service is created from an invalid config.
func New(
	logger *slog.Logger,
	repo Repository,
	audit AuditSink,
	cfg Config,
) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.StartupTimeout <= 0 {
		cfg.StartupTimeout = DefaultStartupTimeout
	}

	s := &Service{
		logger:    logger,
		repo:      repo,
		audit:     audit,
		cfg:       cfg,
		lifecycle: newLifecycleManager(logger, repo, cfg),
		selector: fmt.Sprintf("%s=%s,%s=%s,%s=%s",
			LabelSandbox, LabelTrue,
			LabelPoolMember, LabelTrue,
			LabelPoolID, cfg.PoolID,
		),
		warm:           make(map[string]warmPod),
		allocated:      make(map[string]allocatedPod),
		allocLock:      newAllocationLock(),
		sampler:        newUsageSampler(cfg.UsageWindow),
		allocLatencies: newLatencyWindow(allocationLatencyWindow),
		ready:          make(chan struct{}),
		doneCh:         make(chan struct{}),
	}
	s.targetSize.Store(int64(cfg.MinSize))

	return s, nil
}

var _ shutdown.Shutdowner = (*Service)(nil)

// Name returns the name of the controller component.
func (s *Service) Name() string {
	return "warmpool-controller"
}

// Start rebuilds the in-memory view from cluster labels, runs one synchronous
// replenish pass and arms the periodic replenish loop. A discovery failure is
// fatal and propagates: starting with an empty view would orphan live pods.
func (s *Service) Start(ctx context.Context) error {
	if s.inShutdown.Load() {
		s.logger.InfoContext(ctx, "warm pool controller is shutting down, skipping start")

		return nil
	}

	if err := s.discover(ctx); err != nil {
		return err
	}

	s.replenish(ctx)

	s.started.Store(true)

	go s.run(ctx)

	return nil
}

// Ready returns a channel that is closed once the replenish loop is running.
func (s *Service) Ready() <-chan struct{} {
	return s.ready
}

// Ping reports the controller healthy while the replenish loop keeps up.
func (s *Service) Ping(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.ready:
		age := s.lastReplenishAge()
		if age > 2*s.cfg.ReplenishInterval {
			return fmt.Errorf("last replenish was too long ago: %s", age.Round(time.Second).String())
		}

		return nil
	default:
		return fmt.Errorf("warm pool controller is not ready")
	}
}

// Shutdown waits for the replenish loop to exit, then deletes every warm pod
// best-effort. Allocated pods are left untouched: they belong to active
// owners and must outlive the controller.
func (s *Service) Shutdown(ctx context.Context) error {
	if !s.inShutdown.CompareAndSwap(false, true) {
		s.logger.ErrorContext(ctx, "warm pool controller is already shutting down, skipping shutdown")

		return nil
	}

	defer func() {
		s.logger.InfoContext(ctx, "warm pool controller shut downed")
	}()

	s.logger.InfoContext(ctx, "shutting down warm pool controller")

	if s.started.Load() {
		select {
		case <-ctx.Done():
			return fmt.Errorf("shutdown context done before replenish loop exited: %w", ctx.Err())
		case <-s.doneCh:
			s.logger.InfoContext(ctx, "replenish loop exited")
		}
	}

	s.mu.Lock()
	pods := make([]warmPod, 0, len(s.warm))
	for _, p := range s.warm {
		pods = append(pods, p)
	}

	s.warm = make(map[string]warmPod)
	s.mu.Unlock()

	for _, p := range pods {
		if err := s.lifecycle.deletePod(ctx, p.name); err != nil {
			s.logger.ErrorContext(ctx, "failed to delete warm pod during shutdown",
				"pod", p.name,
				"reason", err,
			)

			continue
		}

		metrics.RecordPodDeleted()
	}

	return nil
}

// Prewarm creates up to min(count, MaxSize - current total) warm pods
// concurrently and returns the number actually created. Creations are
// independent: one failure never cancels its siblings.
func (s *Service) Prewarm(ctx context.Context, count int) (int, error) {
	if count <= 0 {
		return 0, nil
	}

	s.mu.Lock()
	capacity := s.cfg.MaxSize - len(s.warm) - len(s.allocated) - s.creating
	n := min(count, capacity)
	if n > 0 {
		s.creating += n
	}
	s.mu.Unlock()

	if n <= 0 {
		s.logger.DebugContext(ctx, "prewarm skipped, pool at capacity",
			"requested", count,
		)

		return 0, nil
	}

	var created atomic.Int64

	var wg sync.WaitGroup

	for range n {
		wg.Add(1)

		go func() {
			defer wg.Done()
			defer func() {
				s.mu.Lock()
				s.creating--
				s.mu.Unlock()
			}()

			pod, err := s.lifecycle.createWarmPod(ctx)
			if err != nil {
				s.logger.ErrorContext(ctx, "warm pod creation failed",
					"reason", err,
				)
				metrics.RecordStartupFailure(failureReason(err))
				s.audit.Log(ctx, AuditEvent{
					Name:     EventPodFailed,
					Severity: SeverityError,
					Resource: s.cfg.PoolID,
					Metadata: map[string]string{"reason": err.Error()},
				})

				return
			}

			s.mu.Lock()
			s.warm[pod.name] = pod
			warmCount, allocatedCount := len(s.warm), len(s.allocated)
			s.mu.Unlock()

			created.Add(1)
			metrics.RecordPodCreated()
			s.sampler.Record(warmCount, allocatedCount)
			s.updateGauges()
			s.audit.Log(ctx, AuditEvent{
				Name:     EventPodCreated,
				Severity: SeverityInfo,
				Resource: pod.name,
				Metadata: map[string]string{"image": pod.image},
			})
		}()
	}

	wg.Wait()

	createdCount := int(created.Load())

	s.audit.Log(ctx, AuditEvent{
		Name:     EventPrewarm,
		Severity: SeverityInfo,
		Resource: s.cfg.PoolID,
		Metadata: map[string]string{
			"requested": strconv.Itoa(count),
			"created":   strconv.Itoa(createdCount),
		},
	})

	return createdCount, nil
}

// GetWarm allocates a warm pod to the owner, or returns nil when none is
// available (the caller must cold-start; this is not an error). Concurrent
// calls are strictly serialized end-to-end: the remove-then-patch sequence
// spans an I/O suspension point, so the lock is held across all of it.
func (s *Service) GetWarm(ctx context.Context, ownerID string) (*PodRecord, error) {
	start := time.Now()

	if err := s.allocLock.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.allocLock.Release()

	s.totalAllocations.Add(1)

	s.mu.Lock()

	var pod warmPod

	found := false

	// Any warm pod will do; selection is unordered.
	for _, p := range s.warm {
		pod = p
		found = true

		break
	}

	if !found {
		warmCount, allocatedCount := len(s.warm), len(s.allocated)
		s.mu.Unlock()

		s.warmMisses.Add(1)
		metrics.RecordAllocationMiss()
		s.sampler.Record(warmCount, allocatedCount)

		return nil, nil
	}

	// Remove before patching so no later allocation can pick the same pod.
	delete(s.warm, pod.name)
	s.mu.Unlock()

	err := s.repo.PatchPodLabelsCommand(ctx, pod.name, map[string]string{
		LabelState:   StateLabelAllocated,
		LabelOwnerID: ownerID,
	})
	if err != nil {
		// The pod was never actually allocated: put it back and report a miss.
		s.mu.Lock()
		s.warm[pod.name] = pod
		warmCount, allocatedCount := len(s.warm), len(s.allocated)
		s.mu.Unlock()

		s.warmMisses.Add(1)
		metrics.RecordAllocationMiss()
		s.sampler.Record(warmCount, allocatedCount)
		s.logger.ErrorContext(ctx, "allocation label patch failed, pod returned to warm pool",
			"pod", pod.name,
			"owner", ownerID,
			"reason", err,
		)

		return nil, nil
	}

	alloc := pod.allocate(ownerID, time.Now())

	s.mu.Lock()
	s.allocated[pod.name] = alloc
	warmCount, allocatedCount := len(s.warm), len(s.allocated)
	s.mu.Unlock()

	latency := time.Since(start)
	s.warmHits.Add(1)
	s.allocLatencies.Add(latency)
	metrics.RecordAllocationHit(latency)
	s.sampler.Record(warmCount, allocatedCount)
	s.updateGauges()
	s.audit.Log(ctx, AuditEvent{
		Name:     EventAllocation,
		Severity: SeverityInfo,
		Resource: pod.name,
		Metadata: map[string]string{
			"owner":     ownerID,
			"latencyMs": strconv.FormatInt(latency.Milliseconds(), 10),
		},
	})

	// Refill without blocking the caller.
	if s.cfg.EnableAutoScaling {
		go s.replenish(context.WithoutCancel(ctx))
	}

	record := alloc.record()

	return &record, nil
}

// Release deletes an allocated pod. Unknown names are a no-op, so a double
// release never surfaces as an error. Cluster deletion failures are logged
// and swallowed: cleanup must not block the caller. Released pods are never
// recycled into the warm pool.
func (s *Service) Release(ctx context.Context, podName string) {
	s.mu.Lock()
	alloc, ok := s.allocated[podName]

	if !ok {
		s.mu.Unlock()
		s.logger.DebugContext(ctx, "release of untracked pod ignored", "pod", podName)

		return
	}

	delete(s.allocated, podName)
	warmCount, allocatedCount := len(s.warm), len(s.allocated)
	s.mu.Unlock()

	if err := s.lifecycle.deletePod(ctx, podName); err != nil {
		s.logger.ErrorContext(ctx, "failed to delete released pod",
			"pod", podName,
			"owner", alloc.ownerID,
			"reason", err,
		)
	} else {
		metrics.RecordPodDeleted()
	}

	s.sampler.Record(warmCount, allocatedCount)
	s.updateGauges()
	s.audit.Log(ctx, AuditEvent{
		Name:     EventRelease,
		Severity: SeverityInfo,
		Resource: podName,
		Metadata: map[string]string{"owner": alloc.ownerID},
	})
}

// Metrics returns a derived snapshot of pool state.
func (s *Service) Metrics() Metrics {
	s.mu.RLock()
	warmCount := len(s.warm)
	allocatedCount := len(s.allocated)
	s.mu.RUnlock()

	total := warmCount + allocatedCount
	allocations := s.totalAllocations.Load()
	hits := s.warmHits.Load()

	m := Metrics{
		TotalPods:        total,
		WarmPods:         warmCount,
		AllocatedPods:    allocatedCount,
		TotalAllocations: allocations,
		WarmPoolHits:     hits,
		WarmPoolMisses:   s.warmMisses.Load(),
		TargetSize:       int(s.targetSize.Load()),
		Config:           s.cfg,
	}

	if total > 0 {
		m.UtilizationPercent = float64(allocatedCount) / float64(total) * percentScale
	}

	if allocations > 0 {
		m.HitRatePercent = float64(hits) / float64(allocations) * percentScale
	}

	m.AvgAllocationLatencyMs = float64(s.allocLatencies.Average().Microseconds()) / 1000

	return m
}

// IsPoolMember reports whether the pool currently tracks the pod.
func (s *Service) IsPoolMember(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, warm := s.warm[name]
	_, allocated := s.allocated[name]

	return warm || allocated
}

// GetPodInfo returns a snapshot of the named pod, or nil when untracked.
func (s *Service) GetPodInfo(name string) *PodRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.warm[name]; ok {
		record := p.record()

		return &record
	}

	if p, ok := s.allocated[name]; ok {
		record := p.record()

		return &record
	}

	return nil
}

// ListPods returns snapshots of every tracked pod, warm and allocated.
func (s *Service) ListPods() []PodRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]PodRecord, 0, len(s.warm)+len(s.allocated))

	for _, p := range s.warm {
		records = append(records, p.record())
	}

	for _, p := range s.allocated {
		records = append(records, p.record())
	}

	return records
}

// discover rebuilds the Warm and Allocated maps from cluster labels.
func (s *Service) discover(ctx context.Context) error {
	pods, err := s.repo.ListPodsQuery(ctx, s.selector)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDiscoveryFailed, err)
	}

	warmCount := 0
	allocatedCount := 0

	s.mu.Lock()

	for i := range pods {
		info := pods[i]
		base := warmPod{
			name:      info.Name,
			uid:       info.UID,
			image:     info.Image,
			createdAt: info.CreatedAt,
			// The original warm timestamp is not recorded cluster-side.
			warmAt: info.CreatedAt,
		}

		if info.Labels[LabelState] == StateLabelAllocated {
			s.allocated[info.Name] = base.allocate(info.Labels[LabelOwnerID], time.Now())
			allocatedCount++

			continue
		}

		s.warm[info.Name] = base
		warmCount++
	}

	s.mu.Unlock()

	s.logger.InfoContext(ctx, "warm pool discovery completed",
		"warm", warmCount,
		"allocated", allocatedCount,
	)
	s.sampler.Record(warmCount, allocatedCount)
	s.updateGauges()
	s.audit.Log(ctx, AuditEvent{
		Name:     EventDiscovery,
		Severity: SeverityInfo,
		Resource: s.cfg.PoolID,
		Metadata: map[string]string{
			"warm":      strconv.Itoa(warmCount),
			"allocated": strconv.Itoa(allocatedCount),
		},
	})

	return nil
}

// run is the periodic replenish loop.
func (s *Service) run(ctx context.Context) {
	defer close(s.doneCh)

	logger := s.logger.With("component", "replenish-loop")

	ticker := time.NewTicker(s.cfg.ReplenishInterval)
	defer ticker.Stop()

	close(s.ready)

	for {
		select {
		case <-ticker.C:
			s.replenish(ctx)
		case <-ctx.Done():
			logger.InfoContext(ctx, "terminating replenish loop")

			return
		}
	}
}

// replenish moves the pool toward the target size. Concurrent attempts
// collapse into a single pass: replenish recomputes the target from current
// state every time, so last-writer-wins is sound.
func (s *Service) replenish(ctx context.Context) {
	if !s.replenishing.CompareAndSwap(false, true) {
		return
	}
	defer s.replenishing.Store(false)
	defer s.setLastReplenishEndTime()

	now := time.Now()
	target := calculateTargetSize(s.sampler.Snapshot(now), now, s.cfg)
	s.targetSize.Store(int64(target))

	s.mu.RLock()
	warmCount := len(s.warm)
	s.mu.RUnlock()

	s.updateGauges()

	switch {
	case warmCount < target:
		deficit := target - warmCount

		created, err := s.Prewarm(ctx, deficit)
		if err != nil {
			s.logger.ErrorContext(ctx, "replenish prewarm failed", "reason", err)

			return
		}

		s.logger.DebugContext(ctx, "replenished warm pool",
			"target", target,
			"deficit", deficit,
			"created", created,
		)
	case warmCount > target && s.cfg.EnableAutoScaling:
		s.scaleDown(ctx, warmCount-target)
	}
}

// scaleDown deletes up to excess warm pods one at a time. A failed deletion
// is logged and the pass moves on to the next candidate.
func (s *Service) scaleDown(ctx context.Context, excess int) {
	for range excess {
		s.mu.Lock()

		var pod warmPod

		found := false

		for _, p := range s.warm {
			pod = p
			found = true

			break
		}

		if !found {
			s.mu.Unlock()

			return
		}

		delete(s.warm, pod.name)
		warmCount, allocatedCount := len(s.warm), len(s.allocated)
		s.mu.Unlock()

		if err := s.lifecycle.deletePod(ctx, pod.name); err != nil {
			s.logger.ErrorContext(ctx, "scale-down pod deletion failed",
				"pod", pod.name,
				"reason", err,
			)

			continue
		}

		metrics.RecordPodDeleted()
		s.sampler.Record(warmCount, allocatedCount)
		s.audit.Log(ctx, AuditEvent{
			Name:     EventScaleDown,
			Severity: SeverityInfo,
			Resource: pod.name,
		})
	}

	s.updateGauges()
}

func (s *Service) updateGauges() {
	s.mu.RLock()
	warmCount := len(s.warm)
	allocatedCount := len(s.allocated)
	s.mu.RUnlock()

	metrics.SetPoolGauges(warmCount, allocatedCount, int(s.targetSize.Load()))
}

func (s *Service) lastReplenishAge() time.Duration {
	s.replMu.RLock()
	defer s.replMu.RUnlock()

	return time.Since(s.lastReplenishEndTime)
}

func (s *Service) setLastReplenishEndTime() {
	s.replMu.Lock()
	defer s.replMu.Unlock()

	s.lastReplenishEndTime = time.Now()
}

// failureReason maps a lifecycle error to a stable metrics label.
func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrPodCreationFailed):
		return "creation-failed"
	case errors.Is(err, ErrImagePullBackoff):
		return "image-pull-backoff"
	case errors.Is(err, ErrPodNotRunning):
		return "not-running"
	case errors.Is(err, ErrPodNotFound):
		return "not-found"
	case errors.Is(err, ErrPodStartupTimeout):
		return "startup-timeout"
	default:
		return "other"
	}
}
