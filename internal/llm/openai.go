package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// openaiGenerator targets the OpenAI-compatible text completions endpoint
// (vLLM, llama.cpp server, LiteLLM), which accepts a raw prompt string.
type openaiGenerator struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func newOpenAIGenerator(baseURL, apiKey string, timeout time.Duration) (*openaiGenerator, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("openai-compatible: endpoint is required")
	}
	return &openaiGenerator{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}, nil
}

type openaiRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens"`
	TopP        float64 `json:"top_p"`
	Temperature float64 `json:"temperature"`
}

type openaiResponse struct {
	Choices []struct {
		Text string `json:"text"`
	} `json:"choices"`
}

func (o *openaiGenerator) Generate(ctx context.Context, prompt, model string) (string, error) {
	if prompt == "" {
		return "", ErrEmptyPrompt
	}

	payload, err := json.Marshal(openaiRequest{
		Model:       model,
		Prompt:      prompt,
		MaxTokens:   MaxGenLen,
		TopP:        TopP,
		Temperature: Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := o.baseURL + "/v1/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if o.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)
	}

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("openai request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &StatusError{Provider: "openai", StatusCode: resp.StatusCode, Body: truncate(respBody)}
	}

	var apiResp openaiResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(apiResp.Choices) == 0 || apiResp.Choices[0].Text == "" {
		return NoResponse, nil
	}
	return apiResp.Choices[0].Text, nil
}
