package pool

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/utkarsh5026/threadpool/internal/algorithms"
	"gopkg.in/yaml.v3"
)

// Config is the file form of a pool's settings. Durations are Go duration
// strings ("250ms", "2s").
//
//	workers: 8
//	queue_capacity: 1024
//	cpu_affinity: false
//	retry:
//	  max_attempts: 3
//	  initial_delay: 100ms
//	  max_delay: 2s
//	  backoff: jittered
//	  jitter: 0.2
//	rate_limit:
//	  per_second: 50
//	  burst: 10
type Config struct {
	Workers       int             `yaml:"workers" json:"workers"`
	QueueCapacity int             `yaml:"queue_capacity" json:"queue_capacity"`
	CPUAffinity   bool            `yaml:"cpu_affinity" json:"cpu_affinity"`
	Retry         RetryConfig     `yaml:"retry" json:"retry"`
	RateLimit     RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`
}

// RetryConfig mirrors WithRetryPolicy, WithBackoff and WithJitterFactor.
type RetryConfig struct {
	MaxAttempts  int     `yaml:"max_attempts" json:"max_attempts"`
	InitialDelay string  `yaml:"initial_delay" json:"initial_delay"`
	MaxDelay     string  `yaml:"max_delay" json:"max_delay"`
	Backoff      string  `yaml:"backoff" json:"backoff"`
	Jitter       float64 `yaml:"jitter" json:"jitter"`
}

// RateLimitConfig mirrors WithRateLimit.
type RateLimitConfig struct {
	PerSecond float64 `yaml:"per_second" json:"per_second"`
	Burst     int     `yaml:"burst" json:"burst"`
}

// LoadConfig reads a YAML (.yaml, .yml) or JSON (.json) config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseConfig(data, strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."))
}

// ParseConfig decodes data in the given format ("yaml", "yml" or "json").
func ParseConfig(data []byte, format string) (*Config, error) {
	var cfg Config

	switch format {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case "json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %q", format)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges. It does not apply defaults.
func (c *Config) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("%w: workers=%d", ErrInvalidPoolSize, c.Workers)
	}
	if c.QueueCapacity < 0 {
		return fmt.Errorf("queue_capacity must not be negative, got %d", c.QueueCapacity)
	}
	if c.Retry.MaxAttempts < 0 {
		return fmt.Errorf("retry.max_attempts must not be negative, got %d", c.Retry.MaxAttempts)
	}
	if c.Retry.Jitter < 0 || c.Retry.Jitter > 1 {
		return fmt.Errorf("retry.jitter must be within [0, 1], got %v", c.Retry.Jitter)
	}
	if c.RateLimit.PerSecond < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("rate_limit values must not be negative")
	}
	if _, err := algorithms.ParseBackoffType(c.Retry.Backoff); err != nil {
		return fmt.Errorf("retry.backoff: %w", err)
	}
	if _, err := parseDuration("retry.initial_delay", c.Retry.InitialDelay); err != nil {
		return err
	}
	if _, err := parseDuration("retry.max_delay", c.Retry.MaxDelay); err != nil {
		return err
	}
	return nil
}

// Options converts the file settings into pool options.
func (c *Config) Options() ([]Option, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	var opts []Option
	if c.QueueCapacity > 0 {
		opts = append(opts, WithQueueCapacity(c.QueueCapacity))
	}
	if c.CPUAffinity {
		opts = append(opts, WithCPUAffinity())
	}

	backoffType, _ := algorithms.ParseBackoffType(c.Retry.Backoff)
	initial, _ := parseDuration("retry.initial_delay", c.Retry.InitialDelay)
	maxDelay, _ := parseDuration("retry.max_delay", c.Retry.MaxDelay)

	opts = append(opts, WithBackoff(backoffType, initial, maxDelay))
	if c.Retry.Jitter > 0 {
		opts = append(opts, WithJitterFactor(c.Retry.Jitter))
	}
	if c.Retry.MaxAttempts > 1 {
		// A negative delay keeps the backoff's own starting delay.
		retryDelay := initial
		if c.Retry.InitialDelay == "" {
			retryDelay = -1
		}
		opts = append(opts, WithRetryPolicy(c.Retry.MaxAttempts, retryDelay))
	}
	if c.RateLimit.PerSecond > 0 && c.RateLimit.Burst > 0 {
		opts = append(opts, WithRateLimit(c.RateLimit.PerSecond, c.RateLimit.Burst))
	}

	return opts, nil
}

// NewFromConfig builds a pool from file settings; extra options are applied
// after the file's, so they win on conflict.
func NewFromConfig(c *Config, extra ...Option) (*Pool, error) {
	opts, err := c.Options()
	if err != nil {
		return nil, err
	}
	return New(c.Workers, append(opts, extra...)...)
}

func parseDuration(field, s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative, got %s", field, s)
	}
	return d, nil
}
