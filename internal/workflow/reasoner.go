package workflow

import (
	"context"
	"fmt"
	"os"

	"github.com/JaimeStill/document-context/pkg/document"
	"github.com/JaimeStill/document-context/pkg/encoding"

	"github.com/JaimeStill/go-agents/pkg/agent"
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/JaimeStill/formscout/internal/prompts"
)

// Request is one call to the reasoning model: a composed prompt and the
// PNG images, by path, that accompany it.
type Request struct {
	Stage  prompts.Stage
	Prompt string
	Images []string
}

// Reasoner returns the model's raw text response to a request.
type Reasoner interface {
	Reason(ctx context.Context, req Request) (string, error)
}

// AgentReasoner sends requests to a go-agents vision model.
type AgentReasoner struct {
	cfg gaconfig.AgentConfig
}

// NewAgentReasoner creates a Reasoner over cfg.
func NewAgentReasoner(cfg gaconfig.AgentConfig) *AgentReasoner {
	return &AgentReasoner{cfg: cfg}
}

// Reason encodes each image as a data URI and issues a vision call. A new
// agent is created per call so concurrent calls share no client state.
func (r *AgentReasoner) Reason(ctx context.Context, req Request) (string, error) {
	a, err := agent.New(&r.cfg)
	if err != nil {
		return "", fmt.Errorf("create agent: %w", err)
	}

	images := make([]string, len(req.Images))
	for i, path := range req.Images {
		uri, err := encodeImage(path)
		if err != nil {
			return "", err
		}
		images[i] = uri
	}

	resp, err := a.Vision(ctx, req.Prompt, images)
	if err != nil {
		return "", fmt.Errorf("vision call: %w", err)
	}

	return resp.Content(), nil
}

// ModelName returns the configured model, for provenance records.
func (r *AgentReasoner) ModelName() string {
	if r.cfg.Model == nil {
		return ""
	}
	return r.cfg.Model.Name
}

// ProviderName returns the configured provider, for provenance records.
func (r *AgentReasoner) ProviderName() string {
	if r.cfg.Provider == nil {
		return ""
	}
	return r.cfg.Provider.Name
}

func encodeImage(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}

	uri, err := encoding.EncodeImageDataURI(data, document.PNG)
	if err != nil {
		return "", fmt.Errorf("encode image: %w", err)
	}

	return uri, nil
}
