package config

import (
	"fmt"
	"os"

	"github.com/JaimeStill/formscout/pkg/formatting"
	"github.com/JaimeStill/formscout/pkg/pagination"
)

const (
	EnvAPIBasePath      = "FORMSCOUT_API_BASE_PATH"
	EnvAPIMaxUploadSize = "FORMSCOUT_API_MAX_UPLOAD_SIZE"
)

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "FORMSCOUT_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "FORMSCOUT_PAGINATION_MAX_PAGE_SIZE",
}

// APIConfig holds API routing, upload, and pagination settings.
type APIConfig struct {
	BasePath      string            `toml:"base_path"`
	MaxUploadSize string            `toml:"max_upload_size"`
	Pagination    pagination.Config `toml:"pagination"`
}

// MaxUploadSizeBytes returns MaxUploadSize in bytes.
func (c *APIConfig) MaxUploadSizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxUploadSize)
	if err != nil {
		return 25 * 1024 * 1024
	}
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested pagination config.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if _, err := formatting.ParseBytes(c.MaxUploadSize); err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxUploadSize != "" {
		c.MaxUploadSize = overlay.MaxUploadSize
	}

	c.Pagination.Merge(&overlay.Pagination)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "25MB"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv(EnvAPIBasePath); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv(EnvAPIMaxUploadSize); v != "" {
		c.MaxUploadSize = v
	}
}
