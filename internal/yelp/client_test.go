package yelp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestClient(rt roundTripFunc) *Client {
	return &Client{
		endpoint:   "https://yelp.test/ai/chat/v2",
		apiKey:     "test-key",
		httpClient: &http.Client{Transport: rt},
		log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func TestClientSearchSendsRequest(t *testing.T) {
	var captured *http.Request
	var capturedBody []byte

	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		captured = req
		body, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		capturedBody = body
		return jsonResponse(http.StatusOK, `{"chat_id":"abc"}`), nil
	})

	result, err := client.Search(context.Background(), "tacos near campus")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, captured.Method)
	assert.Equal(t, "https://yelp.test/ai/chat/v2", captured.URL.String())
	assert.Equal(t, "Bearer test-key", captured.Header.Get("Authorization"))
	assert.Equal(t, "application/json", captured.Header.Get("Content-Type"))
	assert.Equal(t, "application/json", captured.Header.Get("Accept"))

	var payload map[string]any
	require.NoError(t, json.Unmarshal(capturedBody, &payload))
	assert.Equal(t, map[string]any{"query": "tacos near campus"}, payload)

	assert.Equal(t, "abc", result["chat_id"])
}

func TestClientSearchEmptyQuery(t *testing.T) {
	var capturedBody []byte

	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		body, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		capturedBody = body
		return jsonResponse(http.StatusOK, `{}`), nil
	})

	_, err := client.Search(context.Background(), "")
	require.NoError(t, err)

	assert.JSONEq(t, `{"query":""}`, string(capturedBody))
}

func TestClientSearchUpstreamError(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusBadGateway, `{"error":"model overloaded"}`), nil
	})

	_, err := client.Search(context.Background(), "anything")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, `{"error":"model overloaded"}`, apiErr.Body)
	assert.Contains(t, apiErr.Error(), "502")
}

func TestClientSearchTransportError(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})

	_, err := client.Search(context.Background(), "anything")
	require.Error(t, err)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestClientSearchMalformedBody(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `not json at all`), nil
	})

	_, err := client.Search(context.Background(), "anything")
	require.Error(t, err)
}
