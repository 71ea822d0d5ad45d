package sheet

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/incident-map-service/internal/domain"
	"golang.org/x/time/rate"
)

// maxErrorBody caps how much of a failed response ends up in the error.
const maxErrorBody = 512

// DefaultMinFetchInterval spaces upstream requests so retry bursts do not
// hit the sheet export quota.
const DefaultMinFetchInterval = 2 * time.Second

// Client fetches the published CSV export of the report sheet.
// It implements pipeline.Extractor.
type Client struct {
	url        string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithMinFetchInterval overrides DefaultMinFetchInterval. Zero disables
// throttling.
func WithMinFetchInterval(d time.Duration) ClientOption {
	return func(c *Client) {
		if d <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// NewClient creates a feed client for the given export URL.
func NewClient(url string, timeout time.Duration, logger *slog.Logger, opts ...ClientOption) *Client {
	c := &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Every(DefaultMinFetchInterval), 1),
		logger:  logger,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Extract downloads and parses the feed. A missing column is returned as an
// error wrapping ErrMissingColumn.
func (c *Client) Extract(ctx context.Context) ([]domain.RawRecord, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("feed throttle: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/csv")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("feed error: status %d: %s", resp.StatusCode, body)
	}

	records, err := ParseCSV(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	c.logger.Debug("feed fetched", "records", len(records), "duration", time.Since(start))
	return records, nil
}
