package pool

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// sampleAt builds a usage sample with the given age relative to now.
func sampleAt(now time.Time, age time.Duration, warm, allocated int) UsageSample {
	return UsageSample{
		Timestamp:      now.Add(-age),
		WarmCount:      warm,
		AllocatedCount: allocated,
	}
}

// scalerConfig is a config with only the auto-scaler knobs set.
func scalerConfig(minSize, maxSize int) Config {
	return Config{
		MinSize:            minSize,
		MaxSize:            maxSize,
		EnableAutoScaling:  true,
		ScaleUpThreshold:   0.8,
		ScaleDownThreshold: 0.3,
		UsageWindow:        5 * time.Minute,
	}
}

type targetSizeCase struct {
	name       string
	samples    func(now time.Time) []UsageSample
	cfg        Config
	wantTarget int
}

func Test_calculateTargetSize(t *testing.T) {
	t.Parallel()

	disabled := scalerConfig(2, 20)
	disabled.EnableAutoScaling = false

	tests := []targetSizeCase{
		{
			name: "auto-scaling disabled pins target to min size",
			samples: func(now time.Time) []UsageSample {
				return []UsageSample{sampleAt(now, time.Second, 1, 9)}
			},
			cfg:        disabled,
			wantTarget: 2,
		},
		{
			name:       "no samples falls back to min size",
			samples:    func(time.Time) []UsageSample { return nil },
			cfg:        scalerConfig(2, 20),
			wantTarget: 2,
		},
		{
			name: "stale samples are pruned",
			samples: func(now time.Time) []UsageSample {
				return []UsageSample{sampleAt(now, time.Hour, 1, 9)}
			},
			cfg:        scalerConfig(2, 20),
			wantTarget: 2,
		},
		{
			name: "all pods idle falls back to min size",
			samples: func(now time.Time) []UsageSample {
				return []UsageSample{sampleAt(now, time.Second, 0, 0)}
			},
			cfg:        scalerConfig(2, 20),
			wantTarget: 2,
		},
		{
			name: "high utilization scales up toward the goal",
			samples: func(now time.Time) []UsageSample {
				// utilization 0.9 > 0.8: target ceil(9 / 0.6) = 15.
				return []UsageSample{sampleAt(now, time.Second, 1, 9)}
			},
			cfg:        scalerConfig(2, 20),
			wantTarget: 15,
		},
		{
			name: "scale-up is clamped to max size",
			samples: func(now time.Time) []UsageSample {
				return []UsageSample{sampleAt(now, time.Second, 1, 9)}
			},
			cfg:        scalerConfig(2, 12),
			wantTarget: 12,
		},
		{
			name: "low utilization scales down with headroom",
			samples: func(now time.Time) []UsageSample {
				// utilization 0.1 < 0.3: target max(2, ceil(1 * 1.5)) = 2.
				return []UsageSample{sampleAt(now, time.Second, 9, 1)}
			},
			cfg:        scalerConfig(2, 20),
			wantTarget: 2,
		},
		{
			name: "scale-down keeps headroom above allocated average",
			samples: func(now time.Time) []UsageSample {
				// utilization 0.2 < 0.3: target max(1, ceil(4 * 1.5)) = 6.
				return []UsageSample{sampleAt(now, time.Second, 16, 4)}
			},
			cfg:        scalerConfig(1, 20),
			wantTarget: 6,
		},
		{
			name: "inside the hysteresis band holds steady",
			samples: func(now time.Time) []UsageSample {
				// utilization 0.5 sits between the thresholds.
				return []UsageSample{sampleAt(now, time.Second, 5, 5)}
			},
			cfg:        scalerConfig(2, 20),
			wantTarget: 10,
		},
		{
			name: "averages over the window",
			samples: func(now time.Time) []UsageSample {
				// avgAllocated 9, avgTotal 10: utilization 0.9 scales up to 15.
				return []UsageSample{
					sampleAt(now, 3*time.Second, 2, 8),
					sampleAt(now, 2*time.Second, 1, 9),
					sampleAt(now, time.Second, 0, 10),
				}
			},
			cfg:        scalerConfig(2, 20),
			wantTarget: 15,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			now := time.Now()

			got := calculateTargetSize(tt.samples(now), now, tt.cfg)
			require.Equal(t, tt.wantTarget, got)
		})
	}
}

func Test_clamp(t *testing.T) {
	t.Parallel()

	require.Equal(t, 2, clamp(1, 2, 10))
	require.Equal(t, 10, clamp(11, 2, 10))
	require.Equal(t, 5, clamp(5, 2, 10))
}
