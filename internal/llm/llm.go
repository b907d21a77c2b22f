// Package llm sends encoded prompts to an inference backend.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/joestump/promptpad/internal/config"
)

// Sampling parameters sent with every generation request.
const (
	MaxGenLen   = 5000
	TopP        = 0.3
	Temperature = 0.01
)

// NoResponse is returned as the generation when the backend sends none.
const NoResponse = "No response received"

// ErrEmptyPrompt is returned when Generate is called without a prompt.
var ErrEmptyPrompt = errors.New("prompt is empty")

// Generator produces a completion for a fully encoded prompt.
type Generator interface {
	Generate(ctx context.Context, prompt, model string) (string, error)
}

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API returned %d: %s", e.Provider, e.StatusCode, e.Body)
}

// New creates the Generator selected by cfg.LLM.Provider, instrumented with
// request and latency metrics.
func New(cfg *config.Config) (Generator, error) {
	switch cfg.LLM.Provider {
	case "", "invoke":
		g, err := newInvokeGenerator(cfg.LLM.Endpoint, cfg.LLM.APIKey, cfg.LLM.Timeout)
		if err != nil {
			return nil, err
		}
		return instrument("invoke", g), nil
	case "openai-compatible":
		g, err := newOpenAIGenerator(cfg.LLM.Endpoint, cfg.LLM.APIKey, cfg.LLM.Timeout)
		if err != nil {
			return nil, err
		}
		return instrument("openai-compatible", g), nil
	case "simulated":
		return instrument("simulated", simulatedGenerator{}), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %q", cfg.LLM.Provider)
	}
}
