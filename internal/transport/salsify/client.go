package salsify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/bvm-labs/catalogchat/internal/domain"
	"github.com/bvm-labs/catalogchat/internal/domain/product"
	"github.com/bvm-labs/catalogchat/internal/metrics"
)

// Operation labels for metrics.
const (
	opFetchByID     = "fetch_by_id"
	opFetchByFilter = "fetch_by_filter"
)

// Client fetches products from a Salsify-style catalog API. It performs one
// network call per fetch and never retries; retry policy belongs to callers.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	logger     *zap.Logger
}

// Config holds the catalog API settings.
type Config struct {
	Domain  string // e.g. app.salsify.com
	BaseURL string // overrides Domain when set, e.g. for tests
	Token   string
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewClient creates a catalog API client.
func NewClient(cfg *Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://" + cfg.Domain + "/api"
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		token:      cfg.Token,
		logger:     logger,
	}
}

// FetchByID retrieves a single product by identifier, wrapped into a
// one-element result set.
func (c *Client) FetchByID(ctx context.Context, id string) (product.ResultSet, error) {
	u := c.baseURL + "/products/" + url.PathEscape(id)
	body, err := c.get(ctx, opFetchByID, u)
	if err != nil {
		return nil, err
	}
	return parseRecords(body, false)
}

// FetchByFilter retrieves products matching a compiled filter query string.
// encodedFilter must already carry the filter= prefix and percent-encoding.
func (c *Client) FetchByFilter(ctx context.Context, encodedFilter string, pageSize int) (product.ResultSet, error) {
	u := c.baseURL + "/products?" + encodedFilter + "&per_page=" + strconv.Itoa(pageSize)
	body, err := c.get(ctx, opFetchByFilter, u)
	if err != nil {
		return nil, err
	}
	return parseRecords(body, true)
}

// get performs one authorized GET and returns the body of a success response.
func (c *Client) get(ctx context.Context, op, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		metrics.CatalogRequestsTotal.WithLabelValues(op, "error").Inc()
		return nil, fmt.Errorf("catalog request: %w: %w", err, domain.ErrFetchFailed)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.CatalogRequestsTotal.WithLabelValues(op, "error").Inc()
		return nil, fmt.Errorf("read catalog response: %w: %w", err, domain.ErrFetchFailed)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.CatalogRequestsTotal.WithLabelValues(op, "error").Inc()
		c.logger.Warn("catalog fetch failed",
			zap.String("op", op),
			zap.Int("status", resp.StatusCode),
		)
		return nil, domain.NewFetchError(resp.StatusCode, body)
	}

	metrics.CatalogRequestsTotal.WithLabelValues(op, "success").Inc()
	metrics.CatalogRequestDuration.WithLabelValues(op).Observe(duration.Seconds())
	return body, nil
}

// parseRecords decodes a catalog response body. Filter responses must carry a
// data or products array envelope; by-ID responses may also be one bare
// record object.
func parseRecords(body []byte, requireEnvelope bool) (product.ResultSet, error) {
	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, domain.NewDecodeError(body, err)
	}

	for _, key := range []string{"data", "products"} {
		raw, ok := parsed[key]
		if !ok {
			continue
		}
		items, ok := raw.([]any)
		if !ok {
			return nil, domain.NewDecodeError(body, fmt.Errorf("%q is not an array", key))
		}
		rs := make(product.ResultSet, 0, len(items))
		for _, item := range items {
			rec, ok := item.(map[string]any)
			if !ok {
				return nil, domain.NewDecodeError(body, fmt.Errorf("%q holds a non-object element", key))
			}
			rs = append(rs, product.Record(rec))
		}
		return rs, nil
	}

	if requireEnvelope {
		return nil, domain.NewDecodeError(body, fmt.Errorf("missing data or products array"))
	}
	return product.ResultSet{product.Record(parsed)}, nil
}
