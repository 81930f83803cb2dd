// Package baltic fetches published balancing-market series from the Baltic
// Transparency Dashboard export API and reshapes them into time-indexed frames.
package baltic

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/sarunasign/btd/pkg/common"
	"github.com/sarunasign/btd/pkg/log"
)

// DefaultBaseURL is the public export endpoint of the Baltic Transparency Dashboard.
const DefaultBaseURL = "https://api-baltic.transparency-dashboard.eu/api/v1/export"

// dateLayout is the only accepted shape for the constructor date strings.
const dateLayout = "2006-01-02"

// StatusError is returned when the export API answers with a non-200 status.
// The request is not retried.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("export api returned status: %d", e.StatusCode)
}

// Client fetches export series for a fixed date range. The range is validated
// at construction and immutable afterwards, so a Client is safe for concurrent
// use.
type Client struct {
	baseURL   string
	startDate string
	endDate   string
	client    *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the export endpoint, mainly for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// New validates the date range and returns a Client for it. Both dates must be
// strict "YYYY-MM-DD" strings; anything else fails here, before any network
// activity. The range is inclusive of start and runs to midnight of end.
func New(startDate, endDate string, opts ...Option) (*Client, error) {
	if _, err := time.Parse(dateLayout, startDate); err != nil {
		return nil, fmt.Errorf("start date must be in format YYYY-MM-DD: %w", err)
	}
	if _, err := time.Parse(dateLayout, endDate); err != nil {
		return nil, fmt.Errorf("end date must be in format YYYY-MM-DD: %w", err)
	}

	c := &Client{
		baseURL: DefaultBaseURL,
		// the API takes datetimes, the client takes dates
		startDate: startDate + "T00:00",
		endDate:   endDate + "T00:00",
		client:    common.HTTPClient(30 * time.Second),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// fetch issues a single GET for the given upstream series id and returns the
// raw body. Non-200 statuses surface as *StatusError with no retry.
func (c *Client) fetch(ctx context.Context, seriesID string) ([]byte, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}

	params := url.Values{}
	params.Set("id", seriesID)
	params.Set("start_date", c.startDate)
	params.Set("end_date", c.endDate)
	params.Set("output_time_zone", "EET")
	params.Set("output_format", "json")
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	log.Ctx(ctx).DebugContext(ctx, "fetching export", slog.String("id", seriesID), slog.String("url", u.String()))

	resp, err := c.client.Do(req)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to fetch export", slog.String("id", seriesID), slog.Any("error", err))
		return nil, fmt.Errorf("failed to fetch export: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	log.Ctx(ctx).DebugContext(ctx, "fetched export", slog.String("id", seriesID), slog.Int("bytes", len(body)))
	return body, nil
}
