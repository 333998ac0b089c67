package supplierhub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"catalog-hub-service/internal/clients"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Options configures the supplier hub client
type Options struct {
	BaseURL          string
	Timeout          time.Duration
	RequestsPerSec   float64 // courtesy pacing between requests
	FetchConcurrency int     // bounded fan-out for per-category product fetches
	Retry            *clients.RetryPolicy
	BreakerThreshold int
	BreakerReset     time.Duration
}

// Client fetches categories and products from the supplier hub API
type Client struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *rate.Limiter
	retry       *clients.RetryPolicy
	breaker     *clients.CircuitBreaker
	concurrency int
	logger      *logrus.Entry
}

// NewClient creates a new supplier hub API client
func NewClient(opts Options, logger *logrus.Logger) *Client {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	rps := opts.RequestsPerSec
	if rps == 0 {
		rps = 10
	}
	concurrency := opts.FetchConcurrency
	if concurrency < 1 {
		concurrency = 1
	}
	retry := opts.Retry
	if retry == nil {
		retry = clients.DefaultRetryPolicy()
	}
	threshold := opts.BreakerThreshold
	if threshold == 0 {
		threshold = 5
	}
	reset := opts.BreakerReset
	if reset == 0 {
		reset = 30 * time.Second
	}

	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     opts.BaseURL,
		rateLimiter: rate.NewLimiter(rate.Limit(rps), 1),
		retry:       retry,
		breaker:     clients.NewCircuitBreaker(threshold, reset),
		concurrency: concurrency,
		logger:      logger.WithField("component", "supplierhub.client"),
	}
}

// FetchCategories fetches the full category listing
func (c *Client) FetchCategories(ctx context.Context) ([]clients.RawCategory, error) {
	body, err := c.doRequest(ctx, "/categories")
	if err != nil {
		return nil, err
	}

	var categories []clients.RawCategory
	if err := json.Unmarshal(body, &categories); err != nil {
		return nil, fmt.Errorf("failed to parse categories response: %w", err)
	}
	return categories, nil
}

// FetchProductsByCategory fetches the products of one category
func (c *Client) FetchProductsByCategory(ctx context.Context, externalCategoryID string) ([]clients.RawProduct, error) {
	path := fmt.Sprintf("/category/%s/product", url.PathEscape(externalCategoryID))
	body, err := c.doRequest(ctx, path)
	if err != nil {
		return nil, err
	}

	var products []clients.RawProduct
	if err := json.Unmarshal(body, &products); err != nil {
		return nil, fmt.Errorf("failed to parse products response: %w", err)
	}
	return products, nil
}

// FetchAllProducts fetches the category listing and then the products of
// every category, concatenated in category order. A failed per-category
// fetch is logged and contributes zero products; only a failure of the
// category listing itself is returned to the caller.
func (c *Client) FetchAllProducts(ctx context.Context) ([]clients.RawProduct, error) {
	categories, err := c.FetchCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch category listing: %w", err)
	}
	if len(categories) == 0 {
		c.logger.Warn("Supplier hub returned no categories")
		return []clients.RawProduct{}, nil
	}

	// Fan out per-category fetches over a bounded pool; results are buffered
	// per category so the concatenation preserves source order.
	results := make([][]clients.RawProduct, len(categories))
	sem := make(chan struct{}, c.concurrency)
	var wg sync.WaitGroup

	for i, category := range categories {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, externalID string) {
			defer wg.Done()
			defer func() { <-sem }()

			products, err := c.FetchProductsByCategory(ctx, externalID)
			if err != nil {
				c.logger.WithError(err).WithField("categoryExternalId", externalID).
					Warn("Failed to fetch products for category, skipping")
				return
			}
			results[idx] = products
		}(i, category.ExternalID)
	}
	wg.Wait()

	all := make([]clients.RawProduct, 0)
	for i, products := range results {
		if len(products) == 0 {
			c.logger.WithField("categoryExternalId", categories[i].ExternalID).
				Debug("No products for category")
			continue
		}
		all = append(all, products...)
	}

	c.logger.WithFields(logrus.Fields{
		"categories": len(categories),
		"products":   len(all),
	}).Info("Fetched products from supplier hub")
	return all, nil
}

// doRequest performs a GET against the supplier hub with rate limiting,
// circuit breaking and retry with backoff. It returns the response body for
// 2xx responses and a typed error otherwise.
func (c *Client) doRequest(ctx context.Context, path string) ([]byte, error) {
	if !c.breaker.Allow() {
		return nil, &clients.SourceUnavailableError{Path: path}
	}

	var lastErr error
	for attempt := 0; attempt <= c.retry.MaxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}

		body, statusCode, retryAfter, err := c.get(ctx, path)
		if err == nil && statusCode >= 200 && statusCode < 300 {
			c.breaker.RecordSuccess()
			return body, nil
		}

		if err != nil {
			lastErr = err
		} else {
			lastErr = &clients.StatusError{StatusCode: statusCode, Path: path}
		}

		if !c.retry.ShouldRetry(statusCode, err) || attempt >= c.retry.MaxRetries {
			break
		}

		select {
		case <-ctx.Done():
			c.breaker.RecordFailure()
			return nil, ctx.Err()
		case <-time.After(c.retry.Backoff(attempt, retryAfter)):
		}
	}

	c.breaker.RecordFailure()
	return nil, lastErr
}

func (c *Client) get(ctx context.Context, path string) ([]byte, int, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, 0, 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, 0, err
	}
	defer resp.Body.Close()

	retryAfter := clients.ParseRetryAfter(resp)
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, retryAfter, err
	}
	return body, resp.StatusCode, retryAfter, nil
}
