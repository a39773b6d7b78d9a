package lastfm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Ziad0dev/lastfm-wallpaper/internal/http"
	"github.com/Ziad0dev/lastfm-wallpaper/internal/lastfm/dto"
	"github.com/Ziad0dev/lastfm-wallpaper/internal/model"
)

// DefaultBaseURL is the Last.fm API root.
const DefaultBaseURL = "https://ws.audioscrobbler.com/2.0/"

// Validation messages returned by Validate.
const (
	MsgUserNotFound    = "Username not found on Last.fm"
	MsgNoScrobbles     = "User has no scrobbles on Last.fm"
	MsgInvalidResponse = "Invalid response from Last.fm"
	MsgTimeout         = "Request timeout - please try again"
)

// Validation is the outcome of a username check.
type Validation struct {
	Valid     bool
	Message   string
	PlayCount int64
}

// Client talks to the Last.fm API.
//
// Example usage:
//
//	client := lastfm.NewClient(http.NewClient(), apiKey)
//
//	v := client.Validate(ctx, "demoUser")
//	if !v.Valid {
//	    return errors.New(v.Message)
//	}
//
//	albums := client.TopAlbums(ctx, "demoUser", lastfm.PeriodOverall, 10)
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	printer    *message.Printer
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API root.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// NewClient creates a new Last.fm client.
func NewClient(httpClient *http.Client, apiKey string, opts ...Option) *Client {
	c := &Client{
		httpClient: httpClient,
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		printer:    message.NewPrinter(language.English),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Validate checks that username exists and has at least one scrobble.
//
// Validate never returns an error; every failure is reported as an invalid
// Validation with a human-readable message:
//   - HTTP 404: "Username not found on Last.fm"
//   - API error payload: "Last.fm error: <message>"
//   - Zero playcount: "User has no scrobbles on Last.fm"
//   - Timeout: "Request timeout - please try again"
//   - Other transport failures: "Network error: <detail>"
//   - Anything else: "Invalid response from Last.fm"
//
// There are no retries.
func (c *Client) Validate(ctx context.Context, username string) Validation {
	body, err := c.call(ctx, "user.getinfo", url.Values{"user": {username}})
	if err != nil {
		return Validation{Message: validationMessage(err)}
	}

	if apiErr := parseAPIError(body); apiErr != nil {
		return Validation{Message: apiErr.Error()}
	}

	var resp dto.UserInfoResponse
	if err := json.Unmarshal(body, &resp); err != nil || resp.User == nil {
		return Validation{Message: MsgInvalidResponse}
	}

	count := int64(resp.User.PlayCount)
	if count <= 0 {
		return Validation{Message: MsgNoScrobbles}
	}

	return Validation{
		Valid:     true,
		Message:   c.printer.Sprintf("Valid user with %d scrobbles", count),
		PlayCount: count,
	}
}

func validationMessage(err error) string {
	if http.IsNotFound(err) {
		return MsgUserNotFound
	}

	var se *http.StatusError
	if errors.As(err, &se) {
		if apiErr := parseAPIError(se.Body); apiErr != nil {
			return apiErr.Error()
		}
	}

	if isTimeout(err) {
		return MsgTimeout
	}
	return fmt.Sprintf("Network error: %v", err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// FetchTopAlbums returns the user's top albums for period, at most limit
// entries, in chart order.
func (c *Client) FetchTopAlbums(ctx context.Context, username string, period Period, limit int) ([]*model.Album, error) {
	body, err := c.call(ctx, "user.gettopalbums", url.Values{
		"user":   {username},
		"period": {string(period)},
		"limit":  {strconv.Itoa(limit)},
	})
	if err != nil {
		var se *http.StatusError
		if errors.As(err, &se) {
			if apiErr := parseAPIError(se.Body); apiErr != nil {
				return nil, apiErr
			}
		}
		return nil, err
	}

	if apiErr := parseAPIError(body); apiErr != nil {
		return nil, apiErr
	}

	var resp dto.TopAlbumsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse top albums: %w", err)
	}
	if resp.TopAlbums == nil {
		return nil, errors.New("response has no topalbums field")
	}

	albums := resp.TopAlbums.ToAlbums()
	if limit > 0 && len(albums) > limit {
		albums = albums[:limit]
	}
	return albums, nil
}

// TopAlbums is FetchTopAlbums with silent degradation: any failure is logged
// and an empty list is returned.
func (c *Client) TopAlbums(ctx context.Context, username string, period Period, limit int) []*model.Album {
	albums, err := c.FetchTopAlbums(ctx, username, period, limit)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"username": username,
			"period":   period,
			"error":    err,
		}).Error("Failed to fetch top albums")
		return nil
	}
	return albums
}

func (c *Client) call(ctx context.Context, method string, params url.Values) ([]byte, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	q := u.Query()
	for k, vs := range params {
		q[k] = vs
	}
	q.Set("method", method)
	q.Set("api_key", c.apiKey)
	q.Set("format", "json")
	u.RawQuery = q.Encode()

	return c.httpClient.Get(ctx, u.String())
}
