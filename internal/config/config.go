// Package config defines service configuration and its validation.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory snapshot job queue.
	QueueSize int `koanf:"queue_size"`
	// WorkerCount sets the number of snapshot workers.
	WorkerCount int `koanf:"worker_count"`
	// DedupeSize bounds the remembered subject-day job keys.
	DedupeSize int `koanf:"dedupe_size"`
	// NatalCacheSize bounds the natal chart memo.
	NatalCacheSize int `koanf:"natal_cache_size"`

	// ReferenceLatitude and ReferenceLongitude locate the planetary hour when
	// a request gives no coordinates.
	ReferenceLatitude  float64 `koanf:"reference_latitude"`
	ReferenceLongitude float64 `koanf:"reference_longitude"`

	// RateLimitRPS and RateLimitBurst configure the per-client token bucket.
	// A non-positive rate disables limiting.
	RateLimitRPS   float64 `koanf:"rate_limit_rps"`
	RateLimitBurst int     `koanf:"rate_limit_burst"`

	// RefreshSchedule is a standard five-field cron expression (UTC) for the
	// daily snapshot refresh. Empty disables it.
	RefreshSchedule string `koanf:"refresh_schedule"`
	// SnapshotRetentionDays drops older snapshots on each refresh; zero keeps
	// everything.
	SnapshotRetentionDays int `koanf:"snapshot_retention_days"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		LogFormat:             "text",
		Addr:                  ":9080",
		QueueSize:             10_000,
		WorkerCount:           4,
		DedupeSize:            100_000,
		NatalCacheSize:        1024,
		ReferenceLatitude:     51.4779,
		ReferenceLongitude:    -0.0015,
		RateLimitRPS:          20,
		RateLimitBurst:        40,
		RefreshSchedule:       "5 0 * * *",
		SnapshotRetentionDays: 90,
		ShutdownTimeout:       15 * time.Second,
	}
}

// Validate checks every field and wraps failures in ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.QueueSize < 1:
		return fmt.Errorf("%w: queue_size must be positive, got %d", ErrInvalidConfig, c.QueueSize)
	case c.WorkerCount < 1:
		return fmt.Errorf("%w: worker_count must be positive, got %d", ErrInvalidConfig, c.WorkerCount)
	case c.NatalCacheSize < 1:
		return fmt.Errorf("%w: natal_cache_size must be positive, got %d", ErrInvalidConfig, c.NatalCacheSize)
	case c.ReferenceLatitude < -90 || c.ReferenceLatitude > 90:
		return fmt.Errorf("%w: reference_latitude %v outside [-90,90]", ErrInvalidConfig, c.ReferenceLatitude)
	case c.ReferenceLongitude < -180 || c.ReferenceLongitude > 180:
		return fmt.Errorf("%w: reference_longitude %v outside [-180,180]", ErrInvalidConfig, c.ReferenceLongitude)
	case c.RateLimitRPS > 0 && c.RateLimitBurst < 1:
		return fmt.Errorf("%w: rate_limit_burst must be positive when limiting", ErrInvalidConfig)
	case c.SnapshotRetentionDays < 0:
		return fmt.Errorf("%w: snapshot_retention_days must not be negative", ErrInvalidConfig)
	case c.ShutdownTimeout <= 0:
		return fmt.Errorf("%w: shutdown_timeout must be positive", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	if c.RefreshSchedule != "" {
		if _, err := cron.ParseStandard(c.RefreshSchedule); err != nil {
			return fmt.Errorf("%w: refresh_schedule: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}
