package pool

import (
	"fmt"
	"time"
)

// Config holds the warm pool parameters. It is immutable after validation:
// New rejects a Config that violates any invariant instead of clamping it.
type Config struct {
	// PoolID disambiguates controller instances sharing a namespace.
	PoolID string `json:"poolId"`

	// MinSize is the lower bound on the warm pod target. Must be >= 0.
	MinSize int `json:"minSize"`

	// MaxSize is the upper bound on total pool pods. Must be >= 1 and >= MinSize.
	MaxSize int `json:"maxSize"`

	// DefaultImage is the sandbox container image.
	DefaultImage string `json:"defaultImage"`

	// DefaultMemoryMb is the memory limit per sandbox, in MiB.
	DefaultMemoryMb int64 `json:"defaultMemoryMb"`

	// DefaultCPUCores is the CPU limit per sandbox, in cores.
	DefaultCPUCores float64 `json:"defaultCpuCores"`

	// ReplenishInterval is the period of the background replenish loop.
	ReplenishInterval time.Duration `json:"replenishInterval"`

	// EnableAutoScaling turns the usage-window auto-scaler on. When off, the
	// target size is pinned to MinSize and excess pods are never scaled down.
	EnableAutoScaling bool `json:"enableAutoScaling"`

	// ScaleUpThreshold is the utilization above which the pool grows.
	// Must be in (0, 1].
	ScaleUpThreshold float64 `json:"scaleUpThreshold"`

	// ScaleDownThreshold is the utilization below which the pool shrinks.
	// Must be in [0, 1) and strictly below ScaleUpThreshold (hysteresis).
	ScaleDownThreshold float64 `json:"scaleDownThreshold"`

	// UsageWindow bounds the age of usage samples fed to the auto-scaler.
	UsageWindow time.Duration `json:"usageWindow"`

	// StartupTimeout bounds the readiness wait for a new pod.
	StartupTimeout time.Duration `json:"startupTimeout"`
}

// Validate checks the config invariants in order and returns an error naming
// the first violated field. There is no partial acceptance.
func (c Config) Validate() error {
	if c.MinSize < 0 {
		return fmt.Errorf("%w: minSize must be >= 0, got %d", ErrInvalidConfig, c.MinSize)
	}

	if c.MaxSize < 1 {
		return fmt.Errorf("%w: maxSize must be >= 1, got %d", ErrInvalidConfig, c.MaxSize)
	}

	if c.MinSize > c.MaxSize {
		return fmt.Errorf("%w: minSize %d exceeds maxSize %d", ErrInvalidConfig, c.MinSize, c.MaxSize)
	}

	if c.ScaleUpThreshold <= 0 || c.ScaleUpThreshold > 1 {
		return fmt.Errorf("%w: scaleUpThreshold must be in (0,1], got %g", ErrInvalidConfig, c.ScaleUpThreshold)
	}

	if c.ScaleDownThreshold < 0 || c.ScaleDownThreshold >= 1 {
		return fmt.Errorf("%w: scaleDownThreshold must be in [0,1), got %g", ErrInvalidConfig, c.ScaleDownThreshold)
	}

	if c.ScaleDownThreshold >= c.ScaleUpThreshold {
		return fmt.Errorf("%w: scaleDownThreshold %g must be below scaleUpThreshold %g",
			ErrInvalidConfig, c.ScaleDownThreshold, c.ScaleUpThreshold)
	}

	return nil
}
