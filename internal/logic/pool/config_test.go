package pool_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sandboxlabs/warmpool-controller/internal/logic/pool"
)

type validateCase struct {
	name    string
	mutate  func(cfg *pool.Config)
	wantErr bool
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []validateCase{
		{
			name:   "valid config passes",
			mutate: func(*pool.Config) {},
		},
		{
			name:    "negative min size",
			mutate:  func(cfg *pool.Config) { cfg.MinSize = -1 },
			wantErr: true,
		},
		{
			name:    "zero max size",
			mutate:  func(cfg *pool.Config) { cfg.MaxSize = 0 },
			wantErr: true,
		},
		{
			name: "min size above max size",
			mutate: func(cfg *pool.Config) {
				cfg.MinSize = 11
				cfg.MaxSize = 10
			},
			wantErr: true,
		},
		{
			name:    "scale-up threshold above one",
			mutate:  func(cfg *pool.Config) { cfg.ScaleUpThreshold = 1.1 },
			wantErr: true,
		},
		{
			name:    "scale-up threshold zero",
			mutate:  func(cfg *pool.Config) { cfg.ScaleUpThreshold = 0 },
			wantErr: true,
		},
		{
			name:    "scale-down threshold negative",
			mutate:  func(cfg *pool.Config) { cfg.ScaleDownThreshold = -0.1 },
			wantErr: true,
		},
		{
			name: "scale-down threshold at one",
			mutate: func(cfg *pool.Config) {
				cfg.ScaleDownThreshold = 1
			},
			wantErr: true,
		},
		{
			name: "thresholds without hysteresis",
			mutate: func(cfg *pool.Config) {
				cfg.ScaleUpThreshold = 0.5
				cfg.ScaleDownThreshold = 0.5
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := pool.Config{
				PoolID:             "test",
				MinSize:            2,
				MaxSize:            10,
				DefaultImage:       "alpine:3.20",
				DefaultMemoryMb:    512,
				DefaultCPUCores:    0.5,
				ReplenishInterval:  30 * time.Second,
				EnableAutoScaling:  true,
				ScaleUpThreshold:   0.8,
				ScaleDownThreshold: 0.3,
				UsageWindow:        5 * time.Minute,
				StartupTimeout:     120 * time.Second,
			}
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, pool.ErrInvalidConfig)

				return
			}

			require.NoError(t, err)
		})
	}
}
