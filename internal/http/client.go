package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultUserAgent is sent with every request unless overridden.
const DefaultUserAgent = "lastfm-wallpaper/1.0"

// ErrTooLarge is returned when a response body exceeds the caller's byte ceiling.
var ErrTooLarge = errors.New("response body exceeds size limit")

// StatusError is returned when the server answers with a non-200 status.
//
// Body holds at most the first 64 KiB of the response so callers can inspect
// API error payloads.
type StatusError struct {
	Code   int
	Status string
	Body   []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Status)
}

// IsNotFound reports whether err is a StatusError with code 404.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}

// Client wraps HTTP operations with application-wide configuration.
//
// Client provides:
//   - Configured User-Agent header
//   - Timeout handling
//   - Size-capped downloads for untrusted image hosts
//
// Example usage:
//
//	client := NewClient(WithTimeout(10 * time.Second))
//
//	// Fetch an API response
//	body, err := client.Get(ctx, "https://ws.audioscrobbler.com/2.0/?method=...")
//
//	// Download at most 20 MiB
//	data, err := client.DownloadBytes(ctx, coverURL, 20<<20)
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the overall per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a new HTTP client.
//
// The client is configured with:
//   - 30 second timeout
//   - DefaultUserAgent header
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CappedWriter wraps a writer and fails once more than Limit bytes are written.
//
// Example:
//
//	var buf bytes.Buffer
//	cw := &CappedWriter{Writer: &buf, Limit: 1 << 20}
//	_, err := io.Copy(cw, resp.Body) // err is ErrTooLarge past 1 MiB
type CappedWriter struct {
	// Writer is the underlying writer to write data to.
	Writer io.Writer

	// Limit is the maximum number of bytes accepted. Zero or negative disables the cap.
	Limit int64

	// Written is the current number of bytes written.
	Written int64
}

// Write implements io.Writer, returning ErrTooLarge once the limit is crossed.
func (cw *CappedWriter) Write(p []byte) (int, error) {
	if cw.Limit > 0 && cw.Written+int64(len(p)) > cw.Limit {
		return 0, ErrTooLarge
	}
	n, err := cw.Writer.Write(p)
	cw.Written += int64(n)
	return n, err
}

func (c *Client) do(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status, Body: body}
	}

	return resp, nil
}

// Get performs a GET request and returns the response body as bytes.
//
// The request includes the configured User-Agent header.
//
// Returns an error if:
//   - The request fails
//   - The response status is not 200 OK (a *StatusError)
//   - Reading the body fails
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.do(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

// DownloadBytes downloads a file into memory, enforcing a byte ceiling while streaming.
//
// If the server announces a Content-Length above maxBytes the body is not
// read at all. Otherwise the body is streamed and the partial data is
// discarded as soon as it crosses the ceiling. Pass maxBytes <= 0 to disable
// the cap.
//
// Example:
//
//	imageData, err := client.DownloadBytes(ctx, artworkURL, 20<<20)
//	if errors.Is(err, ErrTooLarge) {
//	    // try a smaller rendition
//	}
func (c *Client) DownloadBytes(ctx context.Context, url string, maxBytes int64) ([]byte, error) {
	resp, err := c.do(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if maxBytes > 0 && resp.ContentLength > maxBytes {
		return nil, fmt.Errorf("%w: %d bytes announced", ErrTooLarge, resp.ContentLength)
	}

	buf := newBuffer(resp.ContentLength, maxBytes)
	cw := &CappedWriter{Writer: buf, Limit: maxBytes}
	if _, err := io.Copy(cw, resp.Body); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
