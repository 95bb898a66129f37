package youtube

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"
)

// FetchError reports an unreachable source or a non-success response.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("failed to fetch %s: unexpected status %d", e.URL, e.StatusCode)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Client fetches channel listings and video pages. Requests are paced by a shared
// limiter because the source throttles bursts. No timeout is applied here; callers
// bound requests through ctx.
type Client struct {
	baseURL    string
	channel    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a client for channel (e.g. "@olgaenvivo_") on baseURL. A nil
// limiter disables pacing.
func NewClient(baseURL, channel string, limiter *rate.Limiter) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		channel:    channel,
		httpClient: &http.Client{},
		limiter:    limiter,
	}
}

// ListingURL returns the channel search URL for a day/month pair.
func (c *Client) ListingURL(day, month int) string {
	query := url.QueryEscape(fmt.Sprintf("%d/%d", day, month))
	return fmt.Sprintf("%s/%s/search?query=%s", c.baseURL, c.channel, query)
}

// VideoURL returns the watch page URL for a video hash.
func (c *Client) VideoURL(hash string) string {
	return fmt.Sprintf("%s/watch?v=%s", c.baseURL, url.QueryEscape(hash))
}

// FetchListing returns the raw channel search page for day/month.
func (c *Client) FetchListing(ctx context.Context, day, month int) (string, error) {
	return c.get(ctx, c.ListingURL(day, month))
}

// FetchVideoPage returns the raw watch page for a video.
func (c *Client) FetchVideoPage(ctx context.Context, hash string) (string, error) {
	return c.get(ctx, c.VideoURL(hash))
}

func (c *Client) get(ctx context.Context, target string) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", &FetchError{URL: target, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", &FetchError{URL: target, Err: err}
	}
	req.Header.Set("Accept-Language", "es-AR,es;q=0.9")

	log.Printf("Fetching %s", target)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &FetchError{URL: target, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &FetchError{URL: target, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &FetchError{URL: target, StatusCode: resp.StatusCode, Err: err}
	}
	return string(body), nil
}

// FetchCuts fetches a video's watch page and parses its time-coded description.
// A page without a description is reported as a FetchError.
func (c *Client) FetchCuts(ctx context.Context, hash string) ([]Cut, error) {
	page, err := c.FetchVideoPage(ctx, hash)
	if err != nil {
		return nil, err
	}
	cuts, err := ParseCuts(page)
	if err != nil {
		return nil, &FetchError{URL: c.VideoURL(hash), StatusCode: http.StatusOK, Err: err}
	}
	return cuts, nil
}
