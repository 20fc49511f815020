// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package openai implements the LLM capability against an
// OpenAI-compatible chat completions API. Any endpoint speaking the same
// wire format works via WithBaseURL.
package openai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/deepresearch/pkg/capability"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o-mini"
	embeddingModel = "text-embedding-3-small"

	providerName = "openai"
)

// Client calls an OpenAI-compatible API.
type Client struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API root, e.g. a proxy or
// a local server exposing the same wire format.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithHTTPClient substitutes the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// New returns a Client authenticated with apiKey.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		client:  &http.Client{Timeout: 120 * time.Second},
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chatRequest struct {
	Model         string               `json:"model"`
	Messages      []capability.Message `json:"messages"`
	Temperature   float64              `json:"temperature,omitempty"`
	MaxTokens     int                  `json:"max_tokens,omitempty"`
	Stream        bool                 `json:"stream,omitempty"`
	StreamOptions *streamOptions       `json:"stream_options,omitempty"`
}

type streamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage chatUsage `json:"usage"`
}

type chatStreamEvent struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
	Usage *chatUsage `json:"usage"`
}

// Complete performs a batch chat completion.
func (c *Client) Complete(ctx context.Context, req capability.CompletionRequest) (capability.Completion, error) {
	model := req.Model
	if model == "" {
		model = defaultModel
	}
	body := chatRequest{
		Model:       model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	resp, err := c.post(ctx, "/chat/completions", body)
	if err != nil {
		return capability.Completion{}, err
	}
	defer resp.Body.Close()
	if err := c.checkStatus(resp); err != nil {
		return capability.Completion{}, err
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return capability.Completion{}, capability.NewProviderError(providerName, fmt.Errorf("decoding response: %w", err))
	}
	if len(cr.Choices) == 0 {
		return capability.Completion{}, capability.NewProviderError(providerName, fmt.Errorf("response contained no choices"))
	}

	return capability.Completion{
		Text: cr.Choices[0].Message.Content,
		Usage: capability.Usage{
			Model:        model,
			InputTokens:  cr.Usage.PromptTokens,
			OutputTokens: cr.Usage.CompletionTokens,
		},
	}, nil
}

// Stream performs a streaming chat completion. The returned channel yields
// content fragments as they arrive and closes after a final Done chunk
// carrying the call's usage. A transport failure mid-stream is reported on
// the final chunk's Err.
func (c *Client) Stream(ctx context.Context, req capability.CompletionRequest) (<-chan capability.StreamChunk, error) {
	model := req.Model
	if model == "" {
		model = defaultModel
	}
	body := chatRequest{
		Model:         model,
		Messages:      req.Messages,
		Temperature:   req.Temperature,
		MaxTokens:     req.MaxTokens,
		Stream:        true,
		StreamOptions: &streamOptions{IncludeUsage: true},
	}

	resp, err := c.post(ctx, "/chat/completions", body)
	if err != nil {
		return nil, err
	}
	if err := c.checkStatus(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}

	out := make(chan capability.StreamChunk)
	go func() {
		defer close(out)
		defer resp.Body.Close()

		usage := capability.Usage{Model: model}
		sawDone := false
		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if !strings.HasPrefix(line, "data:") {
				continue
			}
			payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if payload == "[DONE]" {
				sawDone = true
				break
			}

			var ev chatStreamEvent
			if err := json.Unmarshal([]byte(payload), &ev); err != nil {
				continue
			}
			if ev.Usage != nil {
				usage.InputTokens = ev.Usage.PromptTokens
				usage.OutputTokens = ev.Usage.CompletionTokens
			}
			if len(ev.Choices) == 0 || ev.Choices[0].Delta.Content == "" {
				continue
			}
			select {
			case out <- capability.StreamChunk{Text: ev.Choices[0].Delta.Content}:
			case <-ctx.Done():
				return
			}
		}

		// A dropped connection or a stream ending without the [DONE]
		// sentinel means the response is truncated, not complete.
		var streamErr error
		if err := scanner.Err(); err != nil {
			streamErr = capability.NewProviderError(providerName, fmt.Errorf("reading stream: %w", err))
		} else if !sawDone {
			streamErr = capability.NewProviderError(providerName, fmt.Errorf("stream ended before completion"))
		}
		select {
		case out <- capability.StreamChunk{Done: true, Usage: usage, Err: streamErr}:
		case <-ctx.Done():
		}
	}()
	return out, nil
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// Embed returns one embedding vector per input text.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	resp, err := c.post(ctx, "/embeddings", embeddingRequest{Model: embeddingModel, Input: texts})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := c.checkStatus(resp); err != nil {
		return nil, err
	}

	var er embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return nil, capability.NewProviderError(providerName, fmt.Errorf("decoding embeddings: %w", err))
	}
	vectors := make([][]float64, len(er.Data))
	for i, d := range er.Data {
		vectors[i] = d.Embedding
	}
	return vectors, nil
}

func (c *Client) post(ctx context.Context, path string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, capability.NewProviderError(providerName, err)
	}
	return resp, nil
}

func (c *Client) checkStatus(resp *http.Response) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	err := fmt.Errorf("API returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return capability.NewAuthError(providerName, err)
	case http.StatusTooManyRequests:
		return capability.NewRateLimitError(providerName, err)
	default:
		return capability.NewProviderError(providerName, err)
	}
}
