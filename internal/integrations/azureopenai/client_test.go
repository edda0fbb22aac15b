package azureopenai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"cloudnerve-chat/internal/domain"
)

// ---------------------------------------------------------------------------
// CompletionURL helper
// ---------------------------------------------------------------------------

func TestCompletionURL(t *testing.T) {
	const want = "https://res.openai.azure.com/openai/deployments/gpt-4o/chat/completions?api-version=2024-08-01-preview"
	cases := []string{
		"https://res.openai.azure.com",
		"https://res.openai.azure.com/",
		"https://res.openai.azure.com//",
	}
	for _, base := range cases {
		require.Equal(t, want, CompletionURL(base, "gpt-4o", "2024-08-01-preview"), "base=%q", base)
	}
}

// ---------------------------------------------------------------------------
// NewClient
// ---------------------------------------------------------------------------

func TestNewClient_RequiresDeployment(t *testing.T) {
	_, err := NewClient("https://res.openai.azure.com", " ", "2024-08-01-preview", "k")
	require.Error(t, err)
	require.Contains(t, err.Error(), "deployment")
}

func TestNewClient_RequiresAPIVersion(t *testing.T) {
	_, err := NewClient("https://res.openai.azure.com", "gpt-4o", "", "k")
	require.Error(t, err)
	require.Contains(t, err.Error(), "api version")
}

func TestNewClient_Defaults(t *testing.T) {
	c, err := NewClient("https://res.openai.azure.com", "gpt-4o", "2024-08-01-preview", "")
	require.NoError(t, err)
	require.False(t, c.HasAPIKey())
	require.Equal(t, DefaultTimeout, c.httpClient.Timeout)
}

// ---------------------------------------------------------------------------
// Client.Complete
// ---------------------------------------------------------------------------

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c, err := NewClient(
		srv.URL,
		"gpt-mock",
		"2024-08-01-preview",
		"secret-key",
		WithHTTPClient(&http.Client{Timeout: 2 * time.Second}),
	)
	require.NoError(t, err)
	return c
}

func testRequest() domain.CompletionRequest {
	return domain.CompletionRequest{
		Messages: []domain.ChatMessage{
			{Role: domain.RoleSystem, Content: "persona"},
			{Role: domain.RoleUser, Content: "hi"},
		},
		MaxCompletionTokens: 500,
		Temperature:         1.0,
	}
}

func TestClient_Complete_HappyPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/openai/deployments/gpt-mock/chat/completions", r.URL.Path)
		require.Equal(t, "2024-08-01-preview", r.URL.Query().Get("api-version"))
		require.Equal(t, "secret-key", r.Header.Get("api-key"))
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var body map[string]any
		require.NoError(t, json.Unmarshal(raw, &body))
		require.Equal(t, float64(500), body["max_completion_tokens"])
		require.Equal(t, float64(1), body["temperature"])
		require.Equal(t, float64(0), body["frequency_penalty"])
		require.Equal(t, float64(0), body["presence_penalty"])
		require.Len(t, body["messages"], 2)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(200)
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-123",
			"object": "chat.completion",
			"created": 1670000000,
			"choices": [{
				"index": 0,
				"message": { "role": "assistant", "content": " Hello! " }
			}]
		}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	resp, err := c.Complete(context.Background(), testRequest())
	require.NoError(t, err)
	require.Equal(t, " Hello! ", resp)
}

func TestClient_Complete_NonOK(t *testing.T) {
	cases := []int{201, 202, 400, 401, 404, 429, 500, 503}
	for _, status := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"code":"x","message":"nope"}}`))
		}))

		c := newTestClient(t, srv)
		_, err := c.Complete(context.Background(), testRequest())
		srv.Close()

		require.Error(t, err)
		var statusErr *HTTPStatusError
		require.True(t, errors.As(err, &statusErr), "status=%d", status)
		require.Equal(t, status, statusErr.HTTPStatusCode())
		require.Equal(t, `{"error":{"code":"x","message":"nope"}}`, statusErr.ResponseBody())
	}
}

func TestClient_Complete_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		_, _ = w.Write([]byte(`not-a-json`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	_, err := c.Complete(context.Background(), testRequest())
	require.Error(t, err)
	require.Contains(t, err.Error(), "decode response")
}

func TestClient_Complete_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	_, err := c.Complete(context.Background(), testRequest())
	require.Error(t, err)
	require.Contains(t, err.Error(), "no choices")
}

func TestClient_Complete_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(200)
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	c.httpClient = &http.Client{Timeout: 50 * time.Millisecond}
	_, err := c.Complete(context.Background(), testRequest())
	require.Error(t, err)
	var netErr net.Error
	require.True(t, errors.As(err, &netErr))
	require.True(t, netErr.Timeout())
}

func TestClient_Complete_NetworkError(t *testing.T) {
	c, err := NewClient("http://127.0.0.1:1", "gpt-mock", "2024-08-01-preview", "secret-key",
		WithTimeout(100*time.Millisecond))
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), testRequest())
	require.Error(t, err)
	require.Contains(t, err.Error(), "request failed")
}

func TestClient_Complete_MissingKey(t *testing.T) {
	c, err := NewClient("https://res.openai.azure.com", "gpt-4o", "2024-08-01-preview", "")
	require.NoError(t, err)
	_, err = c.Complete(context.Background(), testRequest())
	require.Error(t, err)
	require.Contains(t, err.Error(), "api key")
}

func TestClient_Complete_MissingEndpoint(t *testing.T) {
	c, err := NewClient("", "gpt-4o", "2024-08-01-preview", "k")
	require.NoError(t, err)
	_, err = c.Complete(context.Background(), testRequest())
	require.Error(t, err)
	require.Contains(t, err.Error(), "endpoint")
}
