package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"portfolio-backend/internal/logger"
)

const (
	anthropicVersion        = "2023-06-01"
	defaultAnthropicTimeout = 30 * time.Second
	maxProviderBodyBytes    = 1 << 20
)

type AnthropicConfig struct {
	APIURL     string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// AnthropicClient posts Messages API requests. It makes exactly one attempt
// per call.
type AnthropicClient struct {
	httpClient *http.Client
	apiURL     string
	apiKey     string
}

// ProviderError is a non-2xx answer from the provider. Its text is for logs only.
type ProviderError struct {
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider returned status %d: %s", e.StatusCode, e.Body)
}

func NewAnthropicClient(cfg AnthropicConfig) (*AnthropicClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic api key must be provided")
	}
	if cfg.APIURL == "" {
		return nil, errors.New("anthropic api url must be provided")
	}
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultAnthropicTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	return &AnthropicClient{httpClient: client, apiURL: cfg.APIURL, apiKey: cfg.APIKey}, nil
}

func (c *AnthropicClient) Complete(ctx context.Context, req ProviderRequest) ([]byte, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal provider request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create provider request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProviderBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read provider response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ProviderError{StatusCode: resp.StatusCode, Body: logger.Truncate(string(body), 500)}
	}

	return body, nil
}
