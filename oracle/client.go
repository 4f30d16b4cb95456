package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/paw-chain/distance/x/distance/types"
)

// ChainClient reads the state a run needs from a node.
type ChainClient interface {
	Params(ctx context.Context) (types.Params, error)
	Period(ctx context.Context) (types.QueryPeriodResponse, error)
	Pool(ctx context.Context, role types.PoolRole) (types.QueryPoolResponse, error)
	// Snapshot returns the certification graph at height; zero selects the
	// evaluation height recorded on chain.
	Snapshot(ctx context.Context, height int64) (types.QuerySnapshotResponse, error)
}

// ClientConfig holds HTTP client configuration
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
	// RequestsPerSecond paces calls to the node. Zero disables pacing.
	RequestsPerSecond float64
	Burst             int
}

// DefaultClientConfig returns the default client configuration
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL:           "http://127.0.0.1:1318",
		Timeout:           30 * time.Second,
		RequestsPerSecond: 10,
		Burst:             5,
	}
}

// HTTPClient is a ChainClient over the distance REST routes.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

var _ ChainClient = (*HTTPClient)(nil)

// NewHTTPClient creates a new client
func NewHTTPClient(cfg ClientConfig) (*HTTPClient, error) {
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid node url: %w", err)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &HTTPClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    limiter,
	}, nil
}

func (c *HTTPClient) Params(ctx context.Context) (types.Params, error) {
	var resp types.QueryParamsResponse
	if err := c.get(ctx, "/distance/v1/params", &resp); err != nil {
		return types.Params{}, err
	}
	return resp.Params, nil
}

func (c *HTTPClient) Period(ctx context.Context) (types.QueryPeriodResponse, error) {
	var resp types.QueryPeriodResponse
	err := c.get(ctx, "/distance/v1/period", &resp)
	return resp, err
}

func (c *HTTPClient) Pool(ctx context.Context, role types.PoolRole) (types.QueryPoolResponse, error) {
	var resp types.QueryPoolResponse
	err := c.get(ctx, "/distance/v1/pools/"+role.String(), &resp)
	return resp, err
}

func (c *HTTPClient) Snapshot(ctx context.Context, height int64) (types.QuerySnapshotResponse, error) {
	path := "/distance/v1/snapshot"
	if height > 0 {
		path += "?height=" + strconv.FormatInt(height, 10)
	}
	var resp types.QuerySnapshotResponse
	err := c.get(ctx, path, &resp)
	return resp, err
}

func (c *HTTPClient) get(ctx context.Context, path string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("query %s failed with status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}
