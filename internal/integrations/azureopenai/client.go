package azureopenai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cloudnerve-chat/internal/domain"
)

// DefaultTimeout bounds a single completion call. There are no retries.
const DefaultTimeout = 30 * time.Second

// completionResponse is the minimal response shape returned by the Chat Completions endpoint.
type completionResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	Choices []struct {
		Index   int                `json:"index"`
		Message domain.ChatMessage `json:"message"`
	} `json:"choices"`
}

// HTTPStatusError captures upstream responses other than 200 OK. Body is the provider's
// response text, passed back to callers as diagnostic detail.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("azureopenai: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

func (e *HTTPStatusError) ResponseBody() string {
	return e.Body
}

// Client posts chat completions to a single Azure OpenAI deployment.
type Client struct {
	endpoint   string
	deployment string
	apiVersion string
	apiKey     string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient = &http.Client{Timeout: d}
	}
}

// NewClient creates a Client for the given resource endpoint and deployment.
// An empty apiKey is accepted; callers check HasAPIKey before dispatching.
func NewClient(endpoint, deployment, apiVersion, apiKey string, opts ...Option) (*Client, error) {
	deployment = strings.TrimSpace(deployment)
	if deployment == "" {
		return nil, errors.New("azureopenai: deployment name must not be empty")
	}
	apiVersion = strings.TrimSpace(apiVersion)
	if apiVersion == "" {
		return nil, errors.New("azureopenai: api version must not be empty")
	}
	c := &Client{
		endpoint:   strings.TrimSpace(endpoint),
		deployment: deployment,
		apiVersion: apiVersion,
		apiKey:     strings.TrimSpace(apiKey),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// HasAPIKey reports whether the client was configured with a key.
func (c *Client) HasAPIKey() bool {
	return c.apiKey != ""
}

func (c *Client) resolvedHTTPClient() *http.Client {
	if c.httpClient != nil {
		return c.httpClient
	}
	return &http.Client{Timeout: DefaultTimeout}
}

// normalizeEndpoint returns endpoint with exactly one trailing slash.
func normalizeEndpoint(endpoint string) string {
	return strings.TrimRight(endpoint, "/") + "/"
}

// CompletionURL builds the deployment's chat completions URL.
func CompletionURL(endpoint, deployment, apiVersion string) string {
	return fmt.Sprintf("%sopenai/deployments/%s/chat/completions?api-version=%s",
		normalizeEndpoint(endpoint),
		url.PathEscape(deployment),
		url.QueryEscape(apiVersion),
	)
}

// Complete sends req and returns the first choice's message content untrimmed.
func (c *Client) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("azureopenai: api key is not configured")
	}
	if c.endpoint == "" {
		return "", errors.New("azureopenai: endpoint is not configured")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("azureopenai: marshal request: %w", err)
	}

	target := CompletionURL(c.endpoint, c.deployment, c.apiVersion)

	httpReq, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if reqErr != nil {
		return "", fmt.Errorf("azureopenai: create request: %w", reqErr)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("api-key", c.apiKey)

	raw, err := c.doJSONRequest(httpReq, target)
	if err != nil {
		return "", fmt.Errorf("azureopenai: request failed: %w", err)
	}

	var payload completionResponse
	if decErr := json.Unmarshal(raw, &payload); decErr != nil {
		return "", fmt.Errorf("azureopenai: decode response: %w", decErr)
	}
	if len(payload.Choices) == 0 {
		return "", errors.New("azureopenai: no choices in response")
	}
	return payload.Choices[0].Message.Content, nil
}

func (c *Client) doJSONRequest(req *http.Request, target string) ([]byte, error) {
	res, doErr := c.resolvedHTTPClient().Do(req)
	if doErr != nil {
		return nil, doErr
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 64<<10))
		return nil, &HTTPStatusError{
			StatusCode: res.StatusCode,
			URL:        target,
			Body:       string(buf),
		}
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return buf, nil
}
