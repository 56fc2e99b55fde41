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

// defaultAnthropicEndpoint is the Claude Messages API.
const defaultAnthropicEndpoint = "https://api.anthropic.com/v1/messages"

// Anthropic generates text through the Claude Messages API. Construct
// through New so config defaults are applied.
type Anthropic struct {
	endpoint    string
	model       string
	apiKey      string
	timeout     time.Duration
	temperature float64
	maxTokens   int
	client      *http.Client
}

func newAnthropic(cfg types.CompletionConfig) *Anthropic {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultAnthropicEndpoint
	}
	return &Anthropic{
		endpoint:    endpoint,
		model:       cfg.Model,
		apiKey:      cfg.APIKey,
		timeout:     cfg.Timeout,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		client:      &http.Client{},
	}
}

// anthropicRequest is the request body for the Messages API.
type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	Messages    []anthropicMessage `json:"messages"`
}

// anthropicMessage is a single message in the conversation.
type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// anthropicResponse is the response body from the Messages API.
type anthropicResponse struct {
	Content []anthropicContent `json:"content"`
}

// anthropicContent is a content block in the response.
type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Generate posts the prompt as a single user message and returns the first
// text block of the reply (R1.3).
func (a *Anthropic) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	reqBody := anthropicRequest{
		Model:       a.model,
		MaxTokens:   a.maxTokens,
		Temperature: a.temperature,
		Messages: []anthropicMessage{
			{Role: "user", Content: prompt},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := httputil.Do(a.client, req)
	if err != nil {
		return "", classify("calling anthropic", err)
	}
	defer resp.Body.Close()

	var aResp anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&aResp); err != nil {
		return "", fmt.Errorf("decoding anthropic response: %w: %w", ErrUnavailable, err)
	}

	for _, block := range aResp.Content {
		if block.Type == "text" {
			return strings.TrimSpace(block.Text), nil
		}
	}

	return "", fmt.Errorf("no text content in anthropic response: %w", ErrUnavailable)
}
