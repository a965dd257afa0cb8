package pinger

import (
	"slices"
	"sync"
	"time"
)

const (
	// successLatencyBufferSize is the number of successful ping latencies kept per pinger.
	successLatencyBufferSize = 100

	// errorLatencyBufferSize is the number of failed ping latencies kept per pinger.
	errorLatencyBufferSize = 10

	percentileMax = 100.0
	percentileP90 = 90.0
	percentileP99 = 99.0
)

// LatencyBuffer is a fixed-capacity circular buffer of durations.
type LatencyBuffer struct {
	mu       sync.RWMutex
	buffer   []time.Duration
	capacity int
	index    int
	count    int
}

// NewLatencyBuffer creates a new latency buffer with the specified capacity.
func NewLatencyBuffer(capacity int) *LatencyBuffer {
	return &LatencyBuffer{
		buffer:   make([]time.Duration, 0, capacity),
		capacity: capacity,
	}
}

// Add adds a duration to the buffer, overwriting the oldest entry when full.
func (lb *LatencyBuffer) Add(d time.Duration) {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	if lb.count < lb.capacity {
		lb.buffer = append(lb.buffer, d)
		lb.count++

		return
	}

	lb.buffer[lb.index] = d
	lb.index = (lb.index + 1) % lb.capacity
}

// GetAll returns a copy of all durations in the buffer, oldest first.
func (lb *LatencyBuffer) GetAll() []time.Duration {
	lb.mu.RLock()
	defer lb.mu.RUnlock()

	if lb.count == 0 {
		return nil
	}

	result := make([]time.Duration, lb.count)
	if lb.count < lb.capacity {
		copy(result, lb.buffer)
	} else {
		copy(result, lb.buffer[lb.index:])
		copy(result[lb.capacity-lb.index:], lb.buffer[:lb.index])
	}

	return result
}

// Len returns the number of durations in the buffer.
func (lb *LatencyBuffer) Len() int {
	lb.mu.RLock()
	defer lb.mu.RUnlock()

	return lb.count
}

// Average returns the mean of the buffered durations, zero when empty.
func (lb *LatencyBuffer) Average() time.Duration {
	return CalculateAverage(lb.GetAll())
}

// Stats tracks raw observations for a single pinger.
type Stats struct {
	Name             string
	LastRun          time.Time
	LastError        error
	SuccessLatencies *LatencyBuffer
	ErrorLatencies   *LatencyBuffer
	mu               sync.RWMutex
}

// NewPingerStats creates a new Stats instance for the named pinger.
func NewPingerStats(name string) *Stats {
	return &Stats{
		Name:             name,
		SuccessLatencies: NewLatencyBuffer(successLatencyBufferSize),
		ErrorLatencies:   NewLatencyBuffer(errorLatencyBufferSize),
	}
}

// LatencyMetrics contains calculated latency statistics.
type LatencyMetrics struct {
	Count   int
	Average time.Duration
	P90     time.Duration
	P99     time.Duration
}

// Statistics is a computed snapshot for one pinger.
type Statistics struct {
	Healthy          bool
	LastRun          time.Time
	LastError        error
	SuccessCount     int
	ErrorCount       int
	SuccessLatencies LatencyMetrics
	ErrorLatencies   LatencyMetrics
}

// CalculatePercentile returns the percentile value from a sorted slice of durations.
func CalculatePercentile(sorted []time.Duration, percentile float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}

	if percentile >= percentileMax {
		return sorted[len(sorted)-1]
	}

	index := int(float64(len(sorted)-1) * percentile / percentileMax)
	if percentile >= percentileP99 {
		index = len(sorted) - 1
	}

	if index < 0 {
		index = 0
	}

	return sorted[index]
}

// CalculateAverage returns the mean of the durations, zero when empty.
func CalculateAverage(latencies []time.Duration) time.Duration {
	if len(latencies) == 0 {
		return 0
	}

	var sum time.Duration
	for _, d := range latencies {
		sum += d
	}

	return sum / time.Duration(len(latencies))
}

func calculateLatencyMetrics(latencies []time.Duration) LatencyMetrics {
	if len(latencies) == 0 {
		return LatencyMetrics{}
	}

	sorted := make([]time.Duration, len(latencies))
	copy(sorted, latencies)
	slices.Sort(sorted)

	return LatencyMetrics{
		Count:   len(sorted),
		Average: CalculateAverage(sorted),
		P90:     CalculatePercentile(sorted, percentileP90),
		P99:     CalculatePercentile(sorted, percentileP99),
	}
}

// GetStatistics computes a Statistics snapshot from raw Stats.
func GetStatistics(stats *Stats) *Statistics {
	stats.mu.RLock()
	defer stats.mu.RUnlock()

	successLatencies := stats.SuccessLatencies.GetAll()
	errorLatencies := stats.ErrorLatencies.GetAll()

	return &Statistics{
		Healthy:          stats.LastError == nil,
		LastRun:          stats.LastRun,
		LastError:        stats.LastError,
		SuccessCount:     len(successLatencies),
		ErrorCount:       len(errorLatencies),
		SuccessLatencies: calculateLatencyMetrics(successLatencies),
		ErrorLatencies:   calculateLatencyMetrics(errorLatencies),
	}
}
