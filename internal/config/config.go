// Package config provides configuration loading and validation for the scraper.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Defaults mirror the constants the scraper was tuned with against the live site.
const (
	DefaultBaseURL    = "https://polyratings.dev"
	DefaultSearchPath = "/search/name"

	DefaultOutputPath = "data/professors.json"

	DefaultUserAgent      = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	DefaultAccept         = "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8"
	DefaultAcceptLanguage = "en-US,en;q=0.5"

	DefaultRequestTimeout = 30 * time.Second
	DefaultRequestDelay   = 1 * time.Second
	DefaultMaxRetries     = 3

	// Scroll tuning. Step and settle trade completeness against run time: a
	// larger step or shorter settle risks cards that are never observed.
	DefaultScrollStep  = 100
	DefaultSettleDelay = 150 * time.Millisecond
	DefaultMaxNoNew    = 100

	DefaultInitialWait  = 5 * time.Second
	DefaultWindowWidth  = 1920
	DefaultWindowHeight = 1080

	MinRating     = 0.0
	MaxRating     = 4.0
	MinNameLength = 2
	MaxNameLength = 100
)

// Config holds every tunable the scraper components need. It is built once in
// the CLI and passed into each component at construction; nothing reads it
// from process-wide state.
type Config struct {
	// Target site
	BaseURL    string `json:"base_url,omitempty"`
	SearchPath string `json:"search_path,omitempty"`

	// Output artifact. MetaPath defaults to OutputPath with a .meta.json suffix.
	OutputPath string `json:"output_path,omitempty"`
	MetaPath   string `json:"meta_path,omitempty"`

	// Request politeness
	UserAgent      string        `json:"user_agent,omitempty"`
	Accept         string        `json:"accept,omitempty"`
	AcceptLanguage string        `json:"accept_language,omitempty"`
	RequestDelay   time.Duration `json:"request_delay,omitempty"`
	RequestTimeout time.Duration `json:"request_timeout,omitempty"`
	MaxRetries     int           `json:"max_retries,omitempty"`

	// Scroll collection tuning
	ScrollStep  int64         `json:"scroll_step,omitempty"`
	SettleDelay time.Duration `json:"settle_delay,omitempty"`
	MaxNoNew    int           `json:"max_no_new,omitempty"`
	InitialWait time.Duration `json:"initial_wait,omitempty"`

	// Browser
	WindowWidth  int64 `json:"window_width,omitempty"`
	WindowHeight int64 `json:"window_height,omitempty"`
	Headless     bool  `json:"headless,omitempty"`

	Verbose bool `json:"verbose,omitempty"`
}

// Default returns a Config populated with the defaults above.
func Default() Config {
	return Config{
		BaseURL:        DefaultBaseURL,
		SearchPath:     DefaultSearchPath,
		OutputPath:     DefaultOutputPath,
		UserAgent:      DefaultUserAgent,
		Accept:         DefaultAccept,
		AcceptLanguage: DefaultAcceptLanguage,
		RequestDelay:   DefaultRequestDelay,
		RequestTimeout: DefaultRequestTimeout,
		MaxRetries:     DefaultMaxRetries,
		ScrollStep:     DefaultScrollStep,
		SettleDelay:    DefaultSettleDelay,
		MaxNoNew:       DefaultMaxNoNew,
		InitialWait:    DefaultInitialWait,
		WindowWidth:    DefaultWindowWidth,
		WindowHeight:   DefaultWindowHeight,
		Headless:       true,
	}
}

// SearchURL returns the full listing URL the collector navigates to.
func (c *Config) SearchURL() string {
	return c.BaseURL + c.SearchPath
}

// ResolvedMetaPath returns the metadata sidecar path, deriving it from
// OutputPath when unset.
func (c *Config) ResolvedMetaPath() string {
	if c.MetaPath != "" {
		return c.MetaPath
	}
	ext := filepath.Ext(c.OutputPath)
	return c.OutputPath[:len(c.OutputPath)-len(ext)] + ".meta.json"
}

// Headers returns the fixed header set every non-browser HTTP request carries.
func (c *Config) Headers() map[string]string {
	return map[string]string{
		"User-Agent":      c.UserAgent,
		"Accept":          c.Accept,
		"Accept-Language": c.AcceptLanguage,
	}
}

// Load reads configuration from a JSON file and merges it over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overlays POLYSCRAPER_* environment variables onto the config.
// The CLI loads a .env file via godotenv before calling this.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("POLYSCRAPER_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("POLYSCRAPER_OUTPUT_PATH"); v != "" {
		c.OutputPath = v
	}
	if v := os.Getenv("POLYSCRAPER_USER_AGENT"); v != "" {
		c.UserAgent = v
	}
	if v := os.Getenv("POLYSCRAPER_REQUEST_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.RequestDelay = d
		}
	}
	if v := os.Getenv("POLYSCRAPER_SETTLE_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.SettleDelay = d
		}
	}
	if v := os.Getenv("POLYSCRAPER_SCROLL_STEP"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.ScrollStep = n
		}
	}
	if v := os.Getenv("POLYSCRAPER_MAX_NO_NEW"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxNoNew = n
		}
	}
	if v := os.Getenv("POLYSCRAPER_VERBOSE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Verbose = b
		}
	}
}

// Validate checks that the configuration has usable values.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config error: 'base_url' must be an absolute URL, got %q", c.BaseURL)
	}
	if c.OutputPath == "" {
		return fmt.Errorf("config error: 'output_path' must not be empty")
	}
	if c.ScrollStep <= 0 {
		return fmt.Errorf("config error: 'scroll_step' must be positive, got %d", c.ScrollStep)
	}
	if c.SettleDelay <= 0 {
		return fmt.Errorf("config error: 'settle_delay' must be positive, got %v", c.SettleDelay)
	}
	if c.MaxNoNew <= 0 {
		return fmt.Errorf("config error: 'max_no_new' must be positive, got %d", c.MaxNoNew)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("config error: 'max_retries' must be non-negative, got %d", c.MaxRetries)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("config error: 'request_timeout' must be positive, got %v", c.RequestTimeout)
	}
	return nil
}
