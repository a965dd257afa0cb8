package pool

import (
	"math"
	"time"
)

// calculateTargetSize computes the desired warm pool size from the usage
// window. It is a pure function: no clock reads, no side effects.
//
// The thresholds are asymmetric (scale-up strictly above scale-down) so the
// pool does not oscillate around a single utilization point.
func calculateTargetSize(samples []UsageSample, now time.Time, cfg Config) int {
	if !cfg.EnableAutoScaling {
		return cfg.MinSize
	}

	fresh := pruneSamples(samples, now, cfg.UsageWindow)
	if len(fresh) == 0 {
		return cfg.MinSize
	}

	var sumAllocated, sumTotal float64

	for i := range fresh {
		sumAllocated += float64(fresh[i].AllocatedCount)
		sumTotal += float64(fresh[i].AllocatedCount + fresh[i].WarmCount)
	}

	avgAllocated := sumAllocated / float64(len(fresh))
	avgTotal := sumTotal / float64(len(fresh))

	if avgTotal == 0 {
		return cfg.MinSize
	}

	utilization := avgAllocated / avgTotal

	var target int

	switch {
	case utilization > cfg.ScaleUpThreshold:
		// Size the pool so utilization trends toward the goal.
		target = int(math.Ceil(avgAllocated / scaleUpUtilizationGoal))
	case utilization < cfg.ScaleDownThreshold:
		target = max(cfg.MinSize, int(math.Ceil(avgAllocated*scaleDownHeadroomFactor)))
	default:
		// Inside the hysteresis band: hold steady.
		target = int(math.Ceil(avgTotal))
	}

	return clamp(target, cfg.MinSize, cfg.MaxSize)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}

	if v > hi {
		return hi
	}

	return v
}
