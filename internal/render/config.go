package render

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Render modes.
const (
	ModePNG = "png"
	ModePDF = "pdf"
)

// Config selects and tunes the external renderer.
type Config struct {
	Binary  string `toml:"binary"`
	Mode    string `toml:"mode"`
	Timeout string `toml:"timeout"`
	DPI     int    `toml:"dpi"`
}

// Env maps config fields to environment variable names.
type Env struct {
	Binary  string
	Mode    string
	Timeout string
	DPI     string
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites fields that are set in overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Binary != "" {
		c.Binary = overlay.Binary
	}
	if overlay.Mode != "" {
		c.Mode = overlay.Mode
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.DPI != 0 {
		c.DPI = overlay.DPI
	}
}

func (c *Config) loadDefaults() {
	if c.Binary == "" {
		c.Binary = "soffice"
	}
	if c.Mode == "" {
		c.Mode = ModePNG
	}
	if c.Timeout == "" {
		c.Timeout = "2m"
	}
	if c.DPI == 0 {
		c.DPI = 150
	}
}

func (c *Config) loadEnv(env *Env) {
	if v := lookup(env.Binary); v != "" {
		c.Binary = v
	}
	if v := lookup(env.Mode); v != "" {
		c.Mode = v
	}
	if v := lookup(env.Timeout); v != "" {
		c.Timeout = v
	}
	if v := lookup(env.DPI); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.DPI = n
		}
	}
}

func (c *Config) validate() error {
	if c.Mode != ModePNG && c.Mode != ModePDF {
		return fmt.Errorf("%w: %s", ErrUnknownMode, c.Mode)
	}
	if d, err := time.ParseDuration(c.Timeout); err != nil || d <= 0 {
		return fmt.Errorf("invalid timeout: %q", c.Timeout)
	}
	if c.DPI < 1 {
		return fmt.Errorf("dpi must be positive")
	}
	return nil
}

func lookup(name string) string {
	if name == "" {
		return ""
	}
	return os.Getenv(name)
}
