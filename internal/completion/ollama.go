// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/advisor-engine/internal/httputil"
	"github.com/pdiddy/advisor-engine/pkg/types"
)

// defaultOllamaEndpoint is the local Ollama generate API.
const defaultOllamaEndpoint = "http://localhost:11434/api/generate"

// Ollama generates text through a local Ollama server. Construct through
// New so config defaults are applied.
type Ollama struct {
	endpoint    string
	model       string
	timeout     time.Duration
	temperature float64
	maxTokens   int
	client      *http.Client
}

func newOllama(cfg types.CompletionConfig) *Ollama {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultOllamaEndpoint
	}
	return &Ollama{
		endpoint:    endpoint,
		model:       cfg.Model,
		timeout:     cfg.Timeout,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		client:      &http.Client{},
	}
}

// ollamaRequest is the request body for the generate API.
type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

// ollamaOptions carries the sampling parameters.
type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

// ollamaResponse is the non-streaming response body.
type ollamaResponse struct {
	Response string `json:"response"`
}

// Generate posts the prompt and returns the generated text (R1.2).
func (o *Ollama) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	reqBody := ollamaRequest{
		Model:  o.model,
		Prompt: prompt,
		Stream: false,
		Options: ollamaOptions{
			Temperature: o.temperature,
			NumPredict:  o.maxTokens,
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httputil.Do(o.client, req)
	if err != nil {
		return "", classify("calling ollama", err)
	}
	defer resp.Body.Close()

	var oResp ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&oResp); err != nil {
		return "", fmt.Errorf("decoding ollama response: %w: %w", ErrUnavailable, err)
	}

	return strings.TrimSpace(oResp.Response), nil
}
