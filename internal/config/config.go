package config

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/vango-dev/swapgrid/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "swapgrid.json"

	// DefaultCacheTTLMs is the cache TTL for elements without data-cache-ttl.
	DefaultCacheTTLMs = 30000

	// DefaultCacheMaxEntries bounds the response cache.
	DefaultCacheMaxEntries = 200

	// DefaultDebounceMs is the delay for elements without a data-debounce value.
	DefaultDebounceMs = 300

	// DefaultMinItems is the smallest collection that is windowed.
	DefaultMinItems = 60

	// DefaultRowHeight seeds the row height estimate before measurement.
	DefaultRowHeight = 200

	// DefaultOverscan is the number of rows kept above the first visible row.
	DefaultOverscan = 2

	// DefaultMarginPx is added to every measured item height.
	DefaultMarginPx = 8

	// DefaultMinRowHeight is the floor of the row height estimate.
	DefaultMinRowHeight = 40

	// DefaultSmoothing is the weight a new measurement gets in the estimate.
	DefaultSmoothing = 0.4

	// DefaultPrefetchRate is the sustained prefetch rate per second.
	DefaultPrefetchRate = 5

	// DefaultPrefetchBurst is the prefetch burst size.
	DefaultPrefetchBurst = 10

	// DefaultToggleURL is the endpoint toggles are posted to.
	DefaultToggleURL = "/api/toggle"

	// DefaultSummaryTarget is the region toggle responses are swapped into.
	DefaultSummaryTarget = "#list-summary"

	// DefaultAddr is the demo server listen address.
	DefaultAddr = ":8080"
)

var validate = validator.New()

// Config represents the complete swapgrid.json configuration. Element
// attributes override the per-element defaults it carries.
type Config struct {
	// Telemetry configures beacon delivery.
	Telemetry TelemetryConfig `json:"telemetry"`

	// Cache configures the response cache.
	Cache CacheConfig `json:"cache"`

	// Debounce configures the debounce coordinator.
	Debounce DebounceConfig `json:"debounce"`

	// Virtual configures windowed rendering.
	Virtual VirtualConfig `json:"virtual"`

	// Prefetch configures speculative fetches.
	Prefetch PrefetchConfig `json:"prefetch"`

	// Toggle configures optimistic toggles.
	Toggle ToggleConfig `json:"toggle"`

	// Server configures the demo backend.
	Server ServerConfig `json:"server"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// TelemetryConfig contains beacon settings.
type TelemetryConfig struct {
	// Endpoint receives beacons. Empty disables delivery.
	Endpoint string `json:"endpoint,omitempty" validate:"omitempty,url"`

	// MaxInFlight is the number of concurrent deliveries.
	MaxInFlight int `json:"maxInFlight,omitempty" validate:"gte=0,lte=256"`

	// TimeoutMs bounds one delivery.
	TimeoutMs int `json:"timeoutMs,omitempty" validate:"gte=0"`
}

// CacheConfig contains response cache settings.
type CacheConfig struct {
	// DefaultTTLMs applies when an element has no data-cache-ttl.
	DefaultTTLMs int `json:"defaultTtlMs,omitempty" validate:"gte=1"`

	// MaxEntries bounds the cache; the least recently used entry goes first.
	MaxEntries int `json:"maxEntries,omitempty" validate:"gte=1,lte=100000"`
}

// DebounceConfig contains debounce settings.
type DebounceConfig struct {
	// DelayMs applies when data-debounce has no value.
	DelayMs int `json:"delayMs,omitempty" validate:"gte=1"`
}

// VirtualConfig contains windowed rendering settings.
type VirtualConfig struct {
	MinItems     int     `json:"minItems,omitempty" validate:"gte=1"`
	RowHeight    float64 `json:"rowHeight,omitempty" validate:"gt=0"`
	Overscan     int     `json:"overscan,omitempty" validate:"gte=0,lte=50"`
	MarginPx     float64 `json:"marginPx,omitempty" validate:"gte=0"`
	MinRowHeight float64 `json:"minRowHeight,omitempty" validate:"gt=0"`
	Smoothing    float64 `json:"smoothing,omitempty" validate:"gt=0,lte=1"`
}

// PrefetchConfig contains prefetch settings.
type PrefetchConfig struct {
	RatePerSecond float64 `json:"ratePerSecond,omitempty" validate:"gt=0"`
	Burst         int     `json:"burst,omitempty" validate:"gte=1"`
}

// ToggleConfig contains optimistic toggle settings.
type ToggleConfig struct {
	URL           string `json:"url,omitempty" validate:"required"`
	SummaryTarget string `json:"summaryTarget,omitempty" validate:"required,startswith=#"`
	TimeoutMs     int    `json:"timeoutMs,omitempty" validate:"gte=0"`
}

// ServerConfig contains demo backend settings.
type ServerConfig struct {
	Addr string `json:"addr,omitempty" validate:"required"`
}

// New creates a new Config with default values.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads configuration from the specified directory.
// It looks for swapgrid.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.CodeConfigNotFound).
				WithDetail("No swapgrid.json found in " + filepath.Dir(path)).
				WithPath(path)
		}
		return nil, errors.New(errors.CodeInvalidConfig).Wrap(err).WithPath(path)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New(errors.CodeInvalidConfig).
			WithDetail("Failed to parse swapgrid.json: " + err.Error()).
			WithPath(path)
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	// Telemetry
	if c.Telemetry.MaxInFlight == 0 {
		c.Telemetry.MaxInFlight = 8
	}
	if c.Telemetry.TimeoutMs == 0 {
		c.Telemetry.TimeoutMs = 2000
	}

	// Cache
	if c.Cache.DefaultTTLMs == 0 {
		c.Cache.DefaultTTLMs = DefaultCacheTTLMs
	}
	if c.Cache.MaxEntries == 0 {
		c.Cache.MaxEntries = DefaultCacheMaxEntries
	}

	// Debounce
	if c.Debounce.DelayMs == 0 {
		c.Debounce.DelayMs = DefaultDebounceMs
	}

	// Virtual
	if c.Virtual.MinItems == 0 {
		c.Virtual.MinItems = DefaultMinItems
	}
	if c.Virtual.RowHeight == 0 {
		c.Virtual.RowHeight = DefaultRowHeight
	}
	if c.Virtual.Overscan == 0 {
		c.Virtual.Overscan = DefaultOverscan
	}
	if c.Virtual.MarginPx == 0 {
		c.Virtual.MarginPx = DefaultMarginPx
	}
	if c.Virtual.MinRowHeight == 0 {
		c.Virtual.MinRowHeight = DefaultMinRowHeight
	}
	if c.Virtual.Smoothing == 0 {
		c.Virtual.Smoothing = DefaultSmoothing
	}

	// Prefetch
	if c.Prefetch.RatePerSecond == 0 {
		c.Prefetch.RatePerSecond = DefaultPrefetchRate
	}
	if c.Prefetch.Burst == 0 {
		c.Prefetch.Burst = DefaultPrefetchBurst
	}

	// Toggle
	if c.Toggle.URL == "" {
		c.Toggle.URL = DefaultToggleURL
	}
	if c.Toggle.SummaryTarget == "" {
		c.Toggle.SummaryTarget = DefaultSummaryTarget
	}
	if c.Toggle.TimeoutMs == 0 {
		c.Toggle.TimeoutMs = 10000
	}

	// Server
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if stderrors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return errors.New(errors.CodeInvalidConfig).
			WithDetail(fmt.Sprintf("%s fails %q (got %v)", fe.Namespace(), fe.Tag(), fe.Value())).
			WithPath(c.configPath)
	}
	return errors.New(errors.CodeInvalidConfig).Wrap(err).WithPath(c.configPath)
}

// CacheTTL returns the default cache TTL.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.DefaultTTLMs) * time.Millisecond
}

// DebounceDelay returns the default debounce delay.
func (c *Config) DebounceDelay() time.Duration {
	return time.Duration(c.Debounce.DelayMs) * time.Millisecond
}

// TelemetryTimeout returns the beacon delivery timeout.
func (c *Config) TelemetryTimeout() time.Duration {
	return time.Duration(c.Telemetry.TimeoutMs) * time.Millisecond
}

// ToggleTimeout returns the toggle request timeout.
func (c *Config) ToggleTimeout() time.Duration {
	return time.Duration(c.Toggle.TimeoutMs) * time.Millisecond
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}
