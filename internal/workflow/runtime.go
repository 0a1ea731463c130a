package workflow

import (
	"log/slog"

	"github.com/JaimeStill/formscout/internal/prompts"
	"github.com/JaimeStill/formscout/internal/render"
)

// Runtime bundles the dependencies that workflow nodes require.
// It is constructed by higher-level composition code: the CLI from local
// configuration, the service from Infrastructure and Domain systems.
type Runtime struct {
	Reasoner Reasoner
	Capturer render.Capturer
	Prompts  prompts.Source
	Logger   *slog.Logger
}
