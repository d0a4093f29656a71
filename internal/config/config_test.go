package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/swapgrid/internal/errors"
	"github.com/vango-dev/swapgrid/pkg/vdom"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Cache.MaxEntries != DefaultCacheMaxEntries {
		t.Errorf("Cache.MaxEntries = %d, want %d", cfg.Cache.MaxEntries, DefaultCacheMaxEntries)
	}
	if cfg.Virtual.MinItems != DefaultMinItems {
		t.Errorf("Virtual.MinItems = %d, want %d", cfg.Virtual.MinItems, DefaultMinItems)
	}
	if cfg.DebounceDelay() != 300*time.Millisecond {
		t.Errorf("DebounceDelay() = %v", cfg.DebounceDelay())
	}
	if cfg.Toggle.SummaryTarget != DefaultSummaryTarget {
		t.Errorf("Toggle.SummaryTarget = %q", cfg.Toggle.SummaryTarget)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	// Test loading non-existent config
	_, err := Load(tmpDir)
	if err == nil {
		t.Fatal("Expected error for missing config")
	}
	if !strings.Contains(err.Error(), errors.CodeConfigNotFound) {
		t.Errorf("missing config error = %v", err)
	}

	configJSON := `{
  "telemetry": { "endpoint": "http://localhost:9000/beacons" },
  "cache": { "defaultTtlMs": 1000 },
  "virtual": { "minItems": 100, "overscan": 3 }
}
`
	if err := os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte(configJSON), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.CacheTTL() != time.Second {
		t.Errorf("CacheTTL() = %v, want 1s", cfg.CacheTTL())
	}
	if cfg.Virtual.MinItems != 100 || cfg.Virtual.Overscan != 3 {
		t.Errorf("Virtual = %+v", cfg.Virtual)
	}
	if cfg.Virtual.RowHeight != DefaultRowHeight {
		t.Errorf("unset RowHeight = %v, want default", cfg.Virtual.RowHeight)
	}
	if cfg.Telemetry.Endpoint != "http://localhost:9000/beacons" {
		t.Errorf("Telemetry.Endpoint = %q", cfg.Telemetry.Endpoint)
	}
	if cfg.Path() != filepath.Join(tmpDir, ConfigFileName) {
		t.Errorf("Path() = %q", cfg.Path())
	}
	if !Exists(tmpDir) {
		t.Error("Exists() = false")
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"bad json", `{"cache": `},
		{"bad endpoint", `{"telemetry": {"endpoint": "not a url"}}`},
		{"smoothing above one", `{"virtual": {"smoothing": 1.5}}`},
		{"summary without hash", `{"toggle": {"summaryTarget": "summary"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(tt.json), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(dir)
			if err == nil {
				t.Fatal("expected an error")
			}
			if errors.CategoryOf(err) != errors.CategoryConfig {
				t.Errorf("category = %q, want config", errors.CategoryOf(err))
			}
		})
	}
}

func TestParseVirtual(t *testing.T) {
	d := New().Virtual

	if _, ok := ParseVirtual(vdom.Ul(), d); ok {
		t.Error("element without data-virtual opted in")
	}
	if _, ok := ParseVirtual(vdom.Ul(vdom.A(AttrVirtual, "off")), d); ok {
		t.Error("data-virtual=off opted in")
	}

	v, ok := ParseVirtual(vdom.Ul(vdom.A(AttrVirtual, "")), d)
	if !ok {
		t.Fatal("bare data-virtual did not opt in")
	}
	if v.Frame != FrameLocal || v.MinItems != DefaultMinItems || v.RowHeight != DefaultRowHeight || v.Overscan != DefaultOverscan {
		t.Errorf("defaults = %+v", v)
	}

	v, _ = ParseVirtual(vdom.Ul(
		vdom.A(AttrVirtual, "page"),
		vdom.A(AttrVirtualMin, "10"),
		vdom.A(AttrVirtualRowHeight, "180px"),
		vdom.A(AttrVirtualColumns, "4"),
		vdom.A(AttrVirtualOverscan, "1"),
	), d)
	if v.Frame != FramePage || v.MinItems != 10 || v.RowHeight != 180 || v.Columns != 4 || v.Overscan != 1 {
		t.Errorf("overrides = %+v", v)
	}

	v, _ = ParseVirtual(vdom.Ul(vdom.A(AttrVirtual, "local"), vdom.A(AttrVirtualMaxHeight, "600px")), d)
	if v.Overflow != "auto" {
		t.Errorf("Overflow = %q, want auto when a max height is set", v.Overflow)
	}
}

func TestParseCache(t *testing.T) {
	def := 30 * time.Second
	if _, ok := ParseCache(vdom.Button(), def); ok {
		t.Error("element without data-cache opted in")
	}
	c, ok := ParseCache(vdom.Button(vdom.A(AttrCache, "")), def)
	if !ok || c.TTL != def || c.Key != "" {
		t.Errorf("bare data-cache = %+v, %v", c, ok)
	}
	c, _ = ParseCache(vdom.Button(vdom.A(AttrCache, "true"), vdom.A(AttrCacheKey, "page-2"), vdom.A(AttrCacheTTL, "1000")), def)
	if c.Key != "page-2" || c.TTL != time.Second {
		t.Errorf("overrides = %+v", c)
	}
	if _, ok := ParseCache(vdom.Button(vdom.A(AttrCache, "false")), def); ok {
		t.Error("data-cache=false opted in")
	}
}

func TestParseDebounce(t *testing.T) {
	def := 300 * time.Millisecond
	d, ok := ParseDebounce(vdom.Input(vdom.A(AttrDebounce, "")), def)
	if !ok || d.Delay != def || strings.Join(d.On, ",") != "input" || d.FlushOnBlur {
		t.Errorf("defaults = %+v", d)
	}
	d, _ = ParseDebounce(vdom.Input(
		vdom.A(AttrDebounce, "500"),
		vdom.A(AttrDebounceOn, "keyup, paste"),
		vdom.A(AttrDebounceGroup, "search"),
		vdom.A(AttrDebounceFlush, "blur"),
	), def)
	if d.Delay != 500*time.Millisecond || strings.Join(d.On, ",") != "keyup,paste" || d.Group != "search" || !d.FlushOnBlur {
		t.Errorf("overrides = %+v", d)
	}
}

func TestParsePrefetch(t *testing.T) {
	def := 30 * time.Second
	if _, ok := ParsePrefetch(vdom.Anchor(), def); ok {
		t.Error("element without data-prefetch opted in")
	}
	p, ok := ParsePrefetch(vdom.Anchor(vdom.A(AttrPrefetch, "/items?page=3"), vdom.A(AttrPrefetchTTL, "2500")), def)
	if !ok || p.URL != "/items?page=3" || p.TTL != 2500*time.Millisecond {
		t.Errorf("prefetch = %+v", p)
	}
}
