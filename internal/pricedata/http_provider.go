package pricedata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"mining-intel/internal/domain"
)

const (
	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 10

	// defaultMaxRetries bounds retries for transient HTTP failures.
	defaultMaxRetries = 3

	// defaultRetryDelay is the initial backoff between retries.
	defaultRetryDelay = 500 * time.Millisecond
)

// APIError represents an error response from the price API.
type APIError struct {
	StatusCode int
	Message    string
	Symbol     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("price API error: %s (status: %d, symbol: %s)", e.Message, e.StatusCode, e.Symbol)
}

// seriesPoint is the wire shape of a single bar.
type seriesPoint struct {
	Timestamp int64   `json:"timestamp"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// HTTPProvider fetches price series from a remote JSON API.
type HTTPProvider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxRetries int
}

// HTTPOption configures the HTTPProvider.
type HTTPOption func(*HTTPProvider)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(p *HTTPProvider) {
		p.httpClient = client
	}
}

// WithRateLimit sets a custom rate limit in requests per second.
func WithRateLimit(requestsPerSecond int) HTTPOption {
	return func(p *HTTPProvider) {
		p.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithMaxRetries sets how many times a transient failure is retried.
func WithMaxRetries(n int) HTTPOption {
	return func(p *HTTPProvider) {
		p.maxRetries = n
	}
}

// NewHTTPProvider creates a provider talking to the given API base URL.
func NewHTTPProvider(baseURL, apiKey string, opts ...HTTPOption) *HTTPProvider {
	p := &HTTPProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		maxRetries: defaultMaxRetries,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

var _ Provider = (*HTTPProvider)(nil)

// GetSeries fetches bars for symbol over [from, to). Transient failures
// (network errors, 5xx, 429) are retried with exponential backoff; 4xx
// responses other than 429 fail immediately.
func (p *HTTPProvider) GetSeries(ctx context.Context, symbol string, from, to time.Time) ([]domain.PricePoint, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("from", from.UTC().Format(time.RFC3339))
	params.Set("to", to.UTC().Format(time.RFC3339))
	if p.apiKey != "" {
		params.Set("api_token", p.apiKey)
	}
	reqURL := fmt.Sprintf("%s/series?%s", p.baseURL, params.Encode())

	var lastErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			delay := defaultRetryDelay * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		points, err := p.fetch(ctx, reqURL, symbol)
		if err == nil {
			return points, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !isRetryable(err) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %s: %v", ErrSeriesUnavailable, symbol, lastErr)
}

func (p *HTTPProvider) fetch(ctx context.Context, reqURL, symbol string) ([]domain.PricePoint, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Symbol:     symbol,
		}
	}

	var raw []seriesPoint
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	points := make([]domain.PricePoint, 0, len(raw))
	for _, pt := range raw {
		points = append(points, domain.PricePoint{
			Timestamp: time.UnixMilli(pt.Timestamp).UTC(),
			Close:     pt.Close,
			Volume:    pt.Volume,
		})
	}
	return points, nil
}

// isRetryable reports whether an error is worth another attempt.
func isRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
	}
	// Network-level failures are retryable.
	return true
}
