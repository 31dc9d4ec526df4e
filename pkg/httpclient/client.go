package httpclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultUserAgent = "catalog-importer/1.0"

// ErrBodyTooLarge is returned when a response body exceeds the caller's limit.
// The body is dropped as soon as the limit is crossed.
var ErrBodyTooLarge = errors.New("response body too large")

// Response is the part of an HTTP response the importer cares about.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
	FinalURL    string // after redirects
}

// Fetcher performs a single GET. No retries.
// maxBytes <= 0 reads the whole body.
type Fetcher interface {
	Get(ctx context.Context, url string, maxBytes int64) (*Response, error)
}

// Client is the shared outbound HTTP entry point (viewer pages, image hosts).
type Client struct {
	rc *resty.Client
}

func New(timeout time.Duration, userAgent string) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	rc := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("User-Agent", userAgent)

	return &Client{rc: rc}
}

// Get returns the response whatever its status; only transport failures
// and an oversized body are errors.
func (c *Client) Get(ctx context.Context, url string, maxBytes int64) (*Response, error) {
	req := c.rc.R().SetContext(ctx)
	if maxBytes > 0 {
		req.SetResponseBodyLimit(int(maxBytes))
	}

	resp, err := req.Get(url)
	if errors.Is(err, resty.ErrResponseBodyTooLarge) {
		return nil, fmt.Errorf("GET %s: %w (limit %d bytes)", url, ErrBodyTooLarge, maxBytes)
	}
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}

	finalURL := url
	if raw := resp.RawResponse; raw != nil && raw.Request != nil && raw.Request.URL != nil {
		finalURL = raw.Request.URL.String()
	}

	return &Response{
		StatusCode:  resp.StatusCode(),
		ContentType: resp.Header().Get("Content-Type"),
		Body:        resp.Body(),
		FinalURL:    finalURL,
	}, nil
}
