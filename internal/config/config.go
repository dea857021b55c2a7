package config

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata" // site.timezone must resolve in minimal images

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/sitemapper/internal/foundation/errors"
)

// Defaults applied when the configuration file leaves a value unset.
const (
	DefaultContentDir = "content"
	DefaultOutputPath = "output"
	DefaultTimezone   = "UTC"
	DefaultDebounce   = 500 * time.Millisecond
)

// DefaultDirectTemplates are the listing pages every site renders.
var DefaultDirectTemplates = []string{"index", "tags", "categories", "authors", "archives"}

// Config is the sitemapper configuration file.
type Config struct {
	Site    SiteConfig     `yaml:"site"`
	Sitemap map[string]any `yaml:"sitemap,omitempty"`
	Metrics MetricsConfig  `yaml:"metrics,omitempty"`
	Watch   WatchConfig    `yaml:"watch,omitempty"`

	dir      string
	location *time.Location
	debounce time.Duration
	interval time.Duration
}

// SiteConfig describes the generated site the sitemap is built for.
type SiteConfig struct {
	URL             string   `yaml:"url"`              // Public base URL prefixed to every loc
	ContentDir      string   `yaml:"content_dir"`      // Source documents
	OutputPath      string   `yaml:"output_path"`      // Directory the sitemap file is written to
	Timezone        string   `yaml:"timezone"`         // Zone for dates written without an offset
	GitLastmod      bool     `yaml:"git_lastmod"`      // Fall back to the last commit time for undated documents
	DirectTemplates []string `yaml:"direct_templates"` // Listing pages announced as index entries
}

// MetricsConfig controls the Prometheus textfile export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// WatchConfig tunes watch mode.
type WatchConfig struct {
	Debounce string `yaml:"debounce,omitempty"` // Quiet period before a rebuild, e.g. "500ms"
	Interval string `yaml:"interval,omitempty"` // Periodic rebuild interval; empty or "0" disables it
}

// Load reads a configuration file, expanding ${VAR} references after loading
// .env files from the working directory.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, ferrors.ConfigError("configuration file not found").
				WithContext("path", configPath).
				Build()
		}
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read config file").
			WithContext("path", configPath).
			Fatal().
			Build()
	}

	cfg, err := Parse(data)
	if err != nil {
		if ce, ok := ferrors.AsClassified(err); ok {
			return nil, ce.WithContext("path", configPath)
		}
		return nil, err
	}

	dir, err := filepath.Abs(filepath.Dir(configPath))
	if err != nil {
		return nil, fmt.Errorf("resolve config directory: %w", err)
	}
	cfg.dir = dir
	return cfg, nil
}

// Parse decodes configuration YAML, applies defaults and validates the
// result. Relative paths resolve against the working directory.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !stderrors.Is(err, io.EOF) {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to parse config").
			Fatal().
			Build()
	}

	applyDefaults(&cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	cfg.Site.URL = strings.TrimRight(strings.TrimSpace(cfg.Site.URL), "/")
	if cfg.Site.ContentDir == "" {
		cfg.Site.ContentDir = DefaultContentDir
	}
	if cfg.Site.OutputPath == "" {
		cfg.Site.OutputPath = DefaultOutputPath
	}
	if cfg.Site.Timezone == "" {
		cfg.Site.Timezone = DefaultTimezone
	}
	// An explicit empty list disables direct templates.
	if cfg.Site.DirectTemplates == nil {
		cfg.Site.DirectTemplates = append([]string(nil), DefaultDirectTemplates...)
	}
	if cfg.Watch.Debounce == "" {
		cfg.Watch.Debounce = DefaultDebounce.String()
	}
}

func (c *Config) validate() error {
	if c.Site.URL != "" {
		u, err := url.Parse(c.Site.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return ferrors.ConfigError("site.url must be an absolute URL").
				WithContext("value", c.Site.URL).
				WithCause(err).
				Build()
		}
	}

	loc, err := time.LoadLocation(c.Site.Timezone)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryConfig, "unknown site.timezone").
			WithContext("value", c.Site.Timezone).
			Fatal().
			Build()
	}
	c.location = loc

	if c.debounce, err = parseDuration("watch.debounce", c.Watch.Debounce); err != nil {
		return err
	}
	if c.interval, err = parseDuration("watch.interval", c.Watch.Interval); err != nil {
		return err
	}

	for i, name := range c.Site.DirectTemplates {
		if strings.TrimSpace(name) == "" || strings.ContainsAny(name, `/\`) {
			return ferrors.ConfigError("invalid direct template name").
				WithContext("index", i).
				WithContext("value", name).
				Build()
		}
	}
	return nil
}

func parseDuration(field, raw string) (time.Duration, error) {
	if raw == "" || raw == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, ferrors.WrapError(err, ferrors.CategoryConfig, "invalid duration").
			WithContext("field", field).
			WithContext("value", raw).
			Fatal().
			Build()
	}
	if d < 0 {
		return 0, ferrors.ConfigError("duration must not be negative").
			WithContext("field", field).
			WithContext("value", raw).
			Build()
	}
	return d, nil
}

// Location returns the zone used for dates without an offset.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// Debounce returns the watch quiet period.
func (c *Config) Debounce() time.Duration { return c.debounce }

// Interval returns the periodic rebuild interval, zero when disabled.
func (c *Config) Interval() time.Duration { return c.interval }

// Dir returns the directory relative paths are resolved against.
func (c *Config) Dir() string { return c.dir }

// ContentPath returns the absolute or config-relative content directory.
func (c *Config) ContentPath() string { return c.resolve(c.Site.ContentDir) }

// OutputPath returns the directory the sitemap file is written to.
func (c *Config) OutputPath() string { return c.resolve(c.Site.OutputPath) }

// MetricsTextfile returns the metrics export path, empty when disabled.
func (c *Config) MetricsTextfile() string {
	if c.Metrics.Textfile == "" {
		return ""
	}
	return c.resolve(c.Metrics.Textfile)
}

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) || c.dir == "" {
		return filepath.Clean(p)
	}
	return filepath.Join(c.dir, p)
}
