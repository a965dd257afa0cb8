package pool

import (
	"sync"
	"time"
)

// usageSampler keeps a rolling in-memory window of pool usage samples.
// A sample is recorded on every state-changing event (allocate, release,
// scale change); the auto-scaler reads the pruned window.
type usageSampler struct {
	mu      sync.Mutex
	window  time.Duration
	samples []UsageSample
}

func newUsageSampler(window time.Duration) *usageSampler {
	return &usageSampler{
		window: window,
	}
}

// Record appends a sample at now and prunes entries older than the window.
func (s *usageSampler) Record(warmCount, allocatedCount int) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.samples = append(s.samples, UsageSample{
		Timestamp:      now,
		WarmCount:      warmCount,
		AllocatedCount: allocatedCount,
	})

	s.samples = pruneSamples(s.samples, now, s.window)
}

// Snapshot returns a copy of the samples still inside the window at now.
func (s *usageSampler) Snapshot(now time.Time) []UsageSample {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.samples = pruneSamples(s.samples, now, s.window)

	out := make([]UsageSample, len(s.samples))
	copy(out, s.samples)

	return out
}

// pruneSamples drops samples older than the window. Samples are appended in
// time order, so the first fresh index splits the slice.
func pruneSamples(samples []UsageSample, now time.Time, window time.Duration) []UsageSample {
	cutoff := now.Add(-window)

	for i := range samples {
		if samples[i].Timestamp.After(cutoff) {
			return samples[i:]
		}
	}

	return samples[:0]
}

// latencyWindow is a fixed-capacity ring of recent allocation latencies.
type latencyWindow struct {
	mu       sync.Mutex
	buf      []time.Duration
	capacity int
	index    int
	count    int
}

func newLatencyWindow(capacity int) *latencyWindow {
	return &latencyWindow{
		buf:      make([]time.Duration, 0, capacity),
		capacity: capacity,
	}
}

// Add records a latency, overwriting the oldest entry when full.
func (w *latencyWindow) Add(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.count < w.capacity {
		w.buf = append(w.buf, d)
		w.count++

		return
	}

	w.buf[w.index] = d
	w.index = (w.index + 1) % w.capacity
}

// Average returns the mean of the recorded latencies, zero when empty.
func (w *latencyWindow) Average() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.count == 0 {
		return 0
	}

	var sum time.Duration
	for _, d := range w.buf {
		sum += d
	}

	return sum / time.Duration(w.count)
}
