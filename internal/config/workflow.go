package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/JaimeStill/formscout/internal/render"
)

const (
	EnvWorkflowMaxIterations = "FORMSCOUT_WORKFLOW_MAX_ITERATIONS"
	EnvWorkflowWorkDir       = "FORMSCOUT_WORKFLOW_WORK_DIR"
)

var renderEnv = &render.Env{
	Binary:  "FORMSCOUT_RENDER_BINARY",
	Mode:    "FORMSCOUT_RENDER_MODE",
	Timeout: "FORMSCOUT_RENDER_TIMEOUT",
	DPI:     "FORMSCOUT_RENDER_DPI",
}

// WorkflowConfig holds the detection loop settings.
type WorkflowConfig struct {
	MaxIterations int           `toml:"max_iterations"`
	WorkDir       string        `toml:"work_dir"`
	Render        render.Config `toml:"render"`
}

// Finalize applies defaults, environment variable overrides, and validation
// for the workflow config and its nested render config.
func (c *WorkflowConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if c.MaxIterations < 1 {
		return fmt.Errorf("max_iterations must be at least 1, got %d", c.MaxIterations)
	}
	if err := c.Render.Finalize(renderEnv); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *WorkflowConfig) Merge(overlay *WorkflowConfig) {
	if overlay.MaxIterations != 0 {
		c.MaxIterations = overlay.MaxIterations
	}
	if overlay.WorkDir != "" {
		c.WorkDir = overlay.WorkDir
	}
	c.Render.Merge(&overlay.Render)
}

func (c *WorkflowConfig) loadDefaults() {
	if c.MaxIterations == 0 {
		c.MaxIterations = 5
	}
	if c.WorkDir == "" {
		c.WorkDir = filepath.Join(os.TempDir(), "formscout")
	}
}

func (c *WorkflowConfig) loadEnv() {
	if v := os.Getenv(EnvWorkflowMaxIterations); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxIterations = n
		}
	}
	if v := os.Getenv(EnvWorkflowWorkDir); v != "" {
		c.WorkDir = v
	}
}
