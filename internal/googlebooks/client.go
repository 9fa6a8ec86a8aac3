// Package googlebooks provides a client for the Google Books volumes API.
package googlebooks

import (
	"net/http"
	"strings"
	"time"

	"github.com/lepinkainen/booklist/internal/ratelimit"
)

const (
	// DefaultBaseURL is the root of the public Google Books API
	DefaultBaseURL       = "https://www.googleapis.com/books/v1"
	defaultTimeout       = 5 * time.Second
	defaultRatePerSecond = 2
)

// HTTPDoer is an interface for making HTTP requests.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client is a Google Books API client.
type Client struct {
	apiKey      string
	baseURL     string
	httpClient  HTTPDoer
	rateLimiter *ratelimit.Limiter
	useCache    bool
}

// NewClient creates a new Google Books client. Responses are cached unless
// WithCache(false) is given.
func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL:     DefaultBaseURL,
		httpClient:  &http.Client{Timeout: defaultTimeout},
		rateLimiter: ratelimit.New("GoogleBooks", defaultRatePerSecond),
		useCache:    true,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c HTTPDoer) Option {
	return func(client *Client) {
		if c != nil {
			client.httpClient = c
		}
	}
}

// WithBaseURL sets a custom base URL for the API.
func WithBaseURL(base string) Option {
	return func(client *Client) {
		if base != "" {
			client.baseURL = strings.TrimSuffix(base, "/")
		}
	}
}

// WithAPIKey sets the API key sent with every request.
func WithAPIKey(key string) Option {
	return func(client *Client) {
		client.apiKey = strings.TrimSpace(key)
	}
}

// WithTimeout replaces the HTTP client with one using the given timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(client *Client) {
		if timeout > 0 {
			client.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// WithRateLimiter sets a custom rate limiter for the client.
func WithRateLimiter(limiter *ratelimit.Limiter) Option {
	return func(client *Client) {
		if limiter != nil {
			client.rateLimiter = limiter
		}
	}
}

// WithCache toggles the sqlite response cache.
func WithCache(enabled bool) Option {
	return func(client *Client) {
		client.useCache = enabled
	}
}
