package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"github.com/kantai-tool/fleetdeck/internal/domain/storage"
	"github.com/kantai-tool/fleetdeck/internal/infrastructure/config"
)

const tokenHeader = "x-user-token"

// ErrNotLoggedIn is returned for a per-user call made without a token
var ErrNotLoggedIn = errors.New("not logged in")

// HTTPError is a non-2xx response from the server
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// IsUnauthorized reports whether err is a 401 from the server
func IsUnauthorized(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusUnauthorized
}

// FleetdeckClient talks to the document server. Calls are rate limited and
// never retried: a failure is returned to the caller as is.
type FleetdeckClient struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	baseURL     string
	token       string
}

// NewFleetdeckClient creates a client from configuration. token may be empty
// until Login succeeds.
func NewFleetdeckClient(cfg config.ClientConfig, token string) *FleetdeckClient {
	return NewFleetdeckClientWithHTTP(cfg, token, &http.Client{Timeout: cfg.Timeout})
}

// NewFleetdeckClientWithHTTP creates a client with a custom HTTP client (tests)
func NewFleetdeckClientWithHTTP(cfg config.ClientConfig, token string, httpClient *http.Client) *FleetdeckClient {
	limit, burst := rate.Limit(cfg.RateLimit.Requests), cfg.RateLimit.Burst
	if cfg.RateLimit.Requests <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	return &FleetdeckClient{
		httpClient:  httpClient,
		rateLimiter: rate.NewLimiter(limit, burst),
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		token:       token,
	}
}

// Token returns the token sent on per-user requests
func (c *FleetdeckClient) Token() string {
	return c.token
}

// Login exchanges a username for a token and keeps it for later calls
func (c *FleetdeckClient) Login(ctx context.Context, username string) (string, error) {
	body, err := json.Marshal(map[string]string{"username": username})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	var response struct {
		Token string `json:"token"`
	}
	respBody, err := c.request(ctx, http.MethodPost, "/login", "", body)
	if err != nil {
		return "", err
	}
	if err := json.Unmarshal(respBody, &response); err != nil {
		return "", fmt.Errorf("failed to parse login response: %w", err)
	}
	c.token = response.Token
	return response.Token, nil
}

// Health checks the server is reachable
func (c *FleetdeckClient) Health(ctx context.Context) error {
	_, err := c.request(ctx, http.MethodGet, "/healthz", "", nil)
	return err
}

// Load fetches one of the user's documents
func (c *FleetdeckClient) Load(ctx context.Context, kind storage.Kind) ([]byte, error) {
	if c.token == "" {
		return nil, ErrNotLoggedIn
	}
	data, err := c.request(ctx, http.MethodGet, "/"+kind.String(), c.token, nil)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", kind, err)
	}
	return data, nil
}

// Save replaces one of the user's documents
func (c *FleetdeckClient) Save(ctx context.Context, kind storage.Kind, data []byte) error {
	if c.token == "" {
		return ErrNotLoggedIn
	}
	if _, err := c.request(ctx, http.MethodPost, "/"+kind.String(), c.token, data); err != nil {
		return fmt.Errorf("save %s: %w", kind, err)
	}
	return nil
}

// request performs a single rate-limited call and returns the response body
func (c *FleetdeckClient) request(ctx context.Context, method, path, token string, body []byte) ([]byte, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(tokenHeader, token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
	}
	return respBody, nil
}
