package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxErrorBody = 512

// invokeGenerator posts {prompt, max_gen_len, top_p, temperature} to an
// endpoint whose path names the model and reads back {generation}.
type invokeGenerator struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

func newInvokeGenerator(endpoint, apiKey string, timeout time.Duration) (*invokeGenerator, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("invoke: endpoint is required")
	}
	if !strings.Contains(endpoint, "{model}") {
		return nil, fmt.Errorf("invoke: endpoint %q must contain a {model} placeholder", endpoint)
	}
	return &invokeGenerator{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

type invokeRequest struct {
	Prompt      string  `json:"prompt"`
	MaxGenLen   int     `json:"max_gen_len"`
	TopP        float64 `json:"top_p"`
	Temperature float64 `json:"temperature"`
}

type invokeResponse struct {
	Generation string `json:"generation"`
}

func (g *invokeGenerator) url(model string) string {
	return strings.ReplaceAll(g.endpoint, "{model}", url.PathEscape(model))
}

func (g *invokeGenerator) Generate(ctx context.Context, prompt, model string) (string, error) {
	if prompt == "" {
		return "", ErrEmptyPrompt
	}

	payload, err := json.Marshal(invokeRequest{
		Prompt:      prompt,
		MaxGenLen:   MaxGenLen,
		TopP:        TopP,
		Temperature: Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url(model), bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if g.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("invoke request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &StatusError{Provider: "invoke", StatusCode: resp.StatusCode, Body: truncate(respBody)}
	}

	var apiResp invokeResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if apiResp.Generation == "" {
		return NoResponse, nil
	}
	return apiResp.Generation, nil
}

func truncate(b []byte) string {
	if len(b) > maxErrorBody {
		return string(b[:maxErrorBody]) + "..."
	}
	return string(b)
}
