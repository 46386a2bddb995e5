// Package yelp provides the client for the Yelp AI chat API and the
// normalization of its nested responses into flat, sorted business lists.
package yelp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/dishpatch/dishpatch/internal/config"
)

// Searcher submits one synthesized query to the conversational search API.
type Searcher interface {
	Search(ctx context.Context, query string) (map[string]any, error)
}

// APIError is a non-2xx reply from the search API. Status code and body are
// preserved verbatim for the caller; the error is never retried or rewritten.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("yelp AI API returned status %d: %s", e.StatusCode, e.Body)
}

// Client calls the Yelp AI chat endpoint. It carries no business logic beyond
// transport.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	log        *slog.Logger
}

var _ Searcher = (*Client)(nil)

// NewClient creates a Yelp AI client from the provided configuration.
func NewClient(cfg config.YelpConfig, log *slog.Logger) *Client {
	return &Client{
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log.With("component", "yelp_client"),
	}
}

type searchRequest struct {
	Query string `json:"query"`
}

// Search performs a single authenticated POST of {"query": q} and decodes the
// JSON reply into a loosely-typed tree for the normalizer.
func (c *Client) Search(ctx context.Context, query string) (map[string]any, error) {
	c.log.DebugContext(ctx, "Submitting search query", "query_length", len(query))

	body, err := json.Marshal(searchRequest{Query: query})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read search response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.log.WarnContext(ctx, "Search API returned error status", "status", resp.StatusCode)
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var raw map[string]any
	if err := json.Unmarshal(respBody, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	c.log.DebugContext(ctx, "Search query succeeded", "status", resp.StatusCode)
	return raw, nil
}
