// Package llm calls an OpenAI-compatible chat-completions API and tracks
// token usage for cost accounting.
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

const (
	DefaultBaseURL = "https://api.openai.com/v1/chat/completions"
	DefaultModel   = "gpt-4.1-nano"
)

// Client calls the chat-completions endpoint. One request per call, no
// retries: a failed completion is fatal to the run that needed it.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// CompletionRequest is a single system+user exchange.
type CompletionRequest struct {
	System      string
	User        string
	Temperature float64
}

// CompletionResult carries the generated text and the tokens it cost.
type CompletionResult struct {
	Text  string
	Usage Usage
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// NewClient creates a completion client. Empty baseURL and model fall back
// to the OpenAI defaults.
func NewClient(apiKey, baseURL, model string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// Complete sends one system+user exchange and returns the trimmed response
// text with its token usage.
func (c *Client) Complete(ctx context.Context, req CompletionRequest) (CompletionResult, error) {
	if c.apiKey == "" {
		return CompletionResult{}, fmt.Errorf("OPENAI_API_KEY not set")
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		Temperature: req.Temperature,
	})
	if err != nil {
		return CompletionResult{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return CompletionResult{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return CompletionResult{}, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return CompletionResult{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var envelope apiError
		if json.Unmarshal(respBody, &envelope) == nil && envelope.Error.Message != "" {
			return CompletionResult{}, fmt.Errorf("completion API error (%d): %s", resp.StatusCode, envelope.Error.Message)
		}
		return CompletionResult{}, fmt.Errorf("completion API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return CompletionResult{}, fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return CompletionResult{}, fmt.Errorf("empty response choices")
	}

	return CompletionResult{
		Text: strings.TrimSpace(parsed.Choices[0].Message.Content),
		Usage: Usage{
			PromptTokens:     parsed.Usage.PromptTokens,
			CompletionTokens: parsed.Usage.CompletionTokens,
		},
	}, nil
}
