package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sandboxlabs/warmpool-controller/internal/logic/pool"
)

// Config holds all controller settings, loaded from the environment.
type Config struct {
	KubeConfig string
	KubeMaster string
	LogLevel   string
	LogFormat  string

	HTTPPort    string
	MetricsPort string

	Namespace string
	PoolID    string

	MinSize         int
	MaxSize         int
	DefaultImage    string
	DefaultMemoryMb int
	DefaultCPUCores float64

	ReplenishInterval  time.Duration
	EnableAutoScaling  bool
	ScaleUpThreshold   float64
	ScaleDownThreshold float64
	UsageWindow        time.Duration
	StartupTimeout     time.Duration

	PingerInterval time.Duration

	AuditWebhookURL   string
	PrewarmSchedule   string
	PrewarmScheduleTZ string
	PrewarmCount      int

	TerminationFile string
}

// Load reads the configuration from environment variables, applying defaults
// for everything optional.
func Load() (*Config, error) {
	cfg := &Config{
		KubeConfig:        getEnvWithFallback(envKeyKubeConfig, envKeyKubeConfigFallback),
		KubeMaster:        getEnvWithFallback(envKeyKubeMaster, envKeyKubeMasterFallback),
		LogLevel:          getEnvOrDefault(envKeyLogLevel, "info"),
		LogFormat:         getEnvOrDefault(envKeyLogFormat, "json"),
		HTTPPort:          getEnvOrDefault(envKeyHTTPPort, "8080"),
		MetricsPort:       getEnvOrDefault(envKeyMetricsPort, "9090"),
		Namespace:         getEnvOrDefault(envKeyNamespace, "default"),
		PoolID:            getEnvOrDefault(envKeyPoolID, "default"),
		DefaultImage:      getEnvOrDefault(envKeyDefaultImage, "alpine:3.20"),
		AuditWebhookURL:   os.Getenv(envKeyAuditWebhookURL),
		PrewarmSchedule:   os.Getenv(envKeyPrewarmSchedule),
		PrewarmScheduleTZ: os.Getenv(envKeyPrewarmScheduleTZ),
		TerminationFile:   os.Getenv(envKeyTerminationFile),
	}

	var err error

	if cfg.MinSize, err = parseInt(envKeyMinSize, 2); err != nil {
		return nil, err
	}

	if cfg.MaxSize, err = parseInt(envKeyMaxSize, 10); err != nil {
		return nil, err
	}

	if cfg.DefaultMemoryMb, err = parseInt(envKeyDefaultMemoryMb, 512); err != nil {
		return nil, err
	}

	if cfg.DefaultCPUCores, err = parseFloat(envKeyDefaultCPUCores, 0.5); err != nil {
		return nil, err
	}

	if cfg.PrewarmCount, err = parseInt(envKeyPrewarmCount, 0); err != nil {
		return nil, err
	}

	if cfg.EnableAutoScaling, err = parseBool(envKeyEnableAutoScaling, true); err != nil {
		return nil, err
	}

	if cfg.ScaleUpThreshold, err = parseFloat(envKeyScaleUpThreshold, 0.8); err != nil {
		return nil, err
	}

	if cfg.ScaleDownThreshold, err = parseFloat(envKeyScaleDownThreshold, 0.3); err != nil {
		return nil, err
	}

	if cfg.ReplenishInterval, err = parseDuration(envKeyReplenishInterval, 30*time.Second, envMinReplenishInterval); err != nil {
		return nil, err
	}

	if cfg.UsageWindow, err = parseDuration(envKeyUsageWindow, 5*time.Minute, envMinUsageWindow); err != nil {
		return nil, err
	}

	if cfg.StartupTimeout, err = parseDuration(envKeyStartupTimeout, 120*time.Second, envMinStartupTimeout); err != nil {
		return nil, err
	}

	if cfg.PingerInterval, err = parseDuration(envKeyPingerInterval, 10*time.Second, envMinPingerInterval); err != nil {
		return nil, err
	}

	return cfg, nil
}

// PoolConfig maps the controller settings onto the pool domain config.
func (c *Config) PoolConfig() pool.Config {
	return pool.Config{
		PoolID:             c.PoolID,
		MinSize:            c.MinSize,
		MaxSize:            c.MaxSize,
		DefaultImage:       c.DefaultImage,
		DefaultMemoryMb:    int64(c.DefaultMemoryMb),
		DefaultCPUCores:    c.DefaultCPUCores,
		ReplenishInterval:  c.ReplenishInterval,
		EnableAutoScaling:  c.EnableAutoScaling,
		ScaleUpThreshold:   c.ScaleUpThreshold,
		ScaleDownThreshold: c.ScaleDownThreshold,
		UsageWindow:        c.UsageWindow,
		StartupTimeout:     c.StartupTimeout,
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	return value
}

func getEnvWithFallback(key, fallbackKey string) string {
	value := os.Getenv(key)
	if value == "" {
		return os.Getenv(fallbackKey)
	}

	return value
}

func parseInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}

	return value, nil
}

func parseFloat(key string, defaultValue float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}

	return value, nil
}

func parseBool(key string, defaultValue bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}

	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}

	return value, nil
}

func parseDuration(key string, defaultValue, minValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}

	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}

	if value < minValue {
		return 0, fmt.Errorf("parse %s: %v is below minimum %v", key, value, minValue)
	}

	return value, nil
}
