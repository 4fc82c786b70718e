package sparql

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/mardigraph/graphscribe/internal/cache"
	"github.com/mardigraph/graphscribe/internal/logging"
	"github.com/mardigraph/graphscribe/internal/model"
	"github.com/mardigraph/graphscribe/internal/ratelimit"
)

// Binding is one result row: field name to plain value.
type Binding map[string]string

// Value returns the named field of the binding, or "" when unbound.
func (b Binding) Value(field string) string {
	return b[field]
}

// Client executes SELECT queries against one SPARQL endpoint.
type Client struct {
	endpoint  string
	hc        *http.Client
	userAgent string
	maxBytes  int64
	limiter   *ratelimit.Limiter
	cache     cache.Cache
	cacheTTL  time.Duration
	log       *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLimiter throttles the client through a shared per-host limiter.
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithCache caches query responses. Only attach a cache to read-only
// endpoints; the target graph must always be observed fresh.
func WithCache(store cache.Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = store
		c.cacheTTL = ttl
	}
}

// NewClient creates a query client for the given endpoint.
func NewClient(endpoint string, httpCfg model.HTTPConfig, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		hc: &http.Client{
			Timeout: httpCfg.Timeout,
		},
		userAgent: httpCfg.UserAgent,
		maxBytes:  httpCfg.MaxBodyBytes,
		log:       logging.New("sparql"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// sparqlResponse mirrors the standard SPARQL JSON results format.
type sparqlResponse struct {
	Results struct {
		Bindings []map[string]struct {
			Value string `json:"value"`
		} `json:"bindings"`
	} `json:"results"`
}

// Select runs a query and returns the ordered result rows. An empty slice
// means no match.
func (c *Client) Select(ctx context.Context, query string) ([]Binding, error) {
	key := cache.Key(c.endpoint, query)
	if c.cache != nil {
		if raw, found := c.cache.Get(key); found {
			return decodeBindings(raw)
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, c.endpoint); err != nil {
			return nil, err
		}
	}

	u := c.endpoint + "?" + url.Values{
		"format": {"json"},
		"query":  {query},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/sparql-results+json, application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", c.endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("query %s: unexpected status %d", c.endpoint, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	rows, err := decodeBindings(raw)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.Set(key, raw, c.cacheTTL); err != nil {
			c.log.Warn("cache write failed", "error", err)
		}
	}

	c.log.Debug("query executed", "endpoint", c.endpoint, "rows", len(rows))
	return rows, nil
}

func decodeBindings(raw []byte) ([]Binding, error) {
	var parsed sparqlResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	rows := make([]Binding, 0, len(parsed.Results.Bindings))
	for _, row := range parsed.Results.Bindings {
		b := make(Binding, len(row))
		for field, cell := range row {
			b[field] = cell.Value
		}
		rows = append(rows, b)
	}
	return rows, nil
}
