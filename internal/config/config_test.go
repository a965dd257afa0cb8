package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sandboxlabs/warmpool-controller/internal/config"
)

type loadCase struct {
	name    string
	giveEnv map[string]string
	wantErr bool
	check   func(t *testing.T, cfg *config.Config)
}

func TestLoad(t *testing.T) {
	tests := []loadCase{
		{
			name:    "all defaults",
			giveEnv: nil,
			check: func(t *testing.T, cfg *config.Config) {
				t.Helper()

				require.Equal(t, "info", cfg.LogLevel)
				require.Equal(t, "json", cfg.LogFormat)
				require.Equal(t, "8080", cfg.HTTPPort)
				require.Equal(t, "9090", cfg.MetricsPort)
				require.Equal(t, "default", cfg.Namespace)
				require.Equal(t, "default", cfg.PoolID)
				require.Equal(t, 2, cfg.MinSize)
				require.Equal(t, 10, cfg.MaxSize)
				require.Equal(t, "alpine:3.20", cfg.DefaultImage)
				require.Equal(t, 512, cfg.DefaultMemoryMb)
				require.InEpsilon(t, 0.5, cfg.DefaultCPUCores, 0.001)
				require.Equal(t, 30*time.Second, cfg.ReplenishInterval)
				require.True(t, cfg.EnableAutoScaling)
				require.InEpsilon(t, 0.8, cfg.ScaleUpThreshold, 0.001)
				require.InEpsilon(t, 0.3, cfg.ScaleDownThreshold, 0.001)
				require.Equal(t, 5*time.Minute, cfg.UsageWindow)
				require.Equal(t, 120*time.Second, cfg.StartupTimeout)
				require.Equal(t, 10*time.Second, cfg.PingerInterval)
				require.Empty(t, cfg.AuditWebhookURL)
				require.Empty(t, cfg.PrewarmSchedule)
			},
		},
		{
			name: "pool sizing overrides",
			giveEnv: map[string]string{
				"WARMPOOL_MIN_SIZE":          "5",
				"WARMPOOL_MAX_SIZE":          "50",
				"WARMPOOL_DEFAULT_MEMORY_MB": "2048",
				"WARMPOOL_DEFAULT_CPU_CORES": "2",
			},
			check: func(t *testing.T, cfg *config.Config) {
				t.Helper()

				require.Equal(t, 5, cfg.MinSize)
				require.Equal(t, 50, cfg.MaxSize)
				require.Equal(t, 2048, cfg.DefaultMemoryMb)
				require.InEpsilon(t, 2.0, cfg.DefaultCPUCores, 0.001)
			},
		},
		{
			name: "duration overrides with explicit units",
			giveEnv: map[string]string{
				"WARMPOOL_REPLENISH_INTERVAL": "1m",
				"WARMPOOL_USAGE_WINDOW":       "10m",
				"WARMPOOL_STARTUP_TIMEOUT":    "90s",
			},
			check: func(t *testing.T, cfg *config.Config) {
				t.Helper()

				require.Equal(t, time.Minute, cfg.ReplenishInterval)
				require.Equal(t, 10*time.Minute, cfg.UsageWindow)
				require.Equal(t, 90*time.Second, cfg.StartupTimeout)
			},
		},
		{
			name: "auto-scaling can be disabled",
			giveEnv: map[string]string{
				"WARMPOOL_ENABLE_AUTOSCALING": "false",
			},
			check: func(t *testing.T, cfg *config.Config) {
				t.Helper()

				require.False(t, cfg.EnableAutoScaling)
			},
		},
		{
			name: "kubeconfig falls back to standard env",
			giveEnv: map[string]string{
				"KUBECONFIG": "/home/dev/.kube/config",
			},
			check: func(t *testing.T, cfg *config.Config) {
				t.Helper()

				require.Equal(t, "/home/dev/.kube/config", cfg.KubeConfig)
			},
		},
		{
			name: "prefixed kubeconfig wins over fallback",
			giveEnv: map[string]string{
				"WARMPOOL_KUBECONFIG": "/etc/warmpool/kubeconfig",
				"KUBECONFIG":          "/home/dev/.kube/config",
			},
			check: func(t *testing.T, cfg *config.Config) {
				t.Helper()

				require.Equal(t, "/etc/warmpool/kubeconfig", cfg.KubeConfig)
			},
		},
		{
			name: "invalid WARMPOOL_MIN_SIZE",
			giveEnv: map[string]string{
				"WARMPOOL_MIN_SIZE": "many",
			},
			wantErr: true,
		},
		{
			name: "invalid WARMPOOL_REPLENISH_INTERVAL",
			giveEnv: map[string]string{
				"WARMPOOL_REPLENISH_INTERVAL": "x",
			},
			wantErr: true,
		},
		{
			name: "WARMPOOL_REPLENISH_INTERVAL below minimum",
			giveEnv: map[string]string{
				"WARMPOOL_REPLENISH_INTERVAL": "100ms",
			},
			wantErr: true,
		},
		{
			name: "invalid WARMPOOL_ENABLE_AUTOSCALING",
			giveEnv: map[string]string{
				"WARMPOOL_ENABLE_AUTOSCALING": "maybe",
			},
			wantErr: true,
		},
		{
			name: "invalid WARMPOOL_SCALE_UP_THRESHOLD",
			giveEnv: map[string]string{
				"WARMPOOL_SCALE_UP_THRESHOLD": "high",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.giveEnv {
				t.Setenv(k, v)
			}

			cfg, err := config.Load()
			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)

			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}
