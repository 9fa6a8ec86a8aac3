// Package cmdutil wires configuration into the components shared by the
// terminal and web commands.
package cmdutil

import (
	"context"
	"log/slog"

	"github.com/lepinkainen/booklist/internal/catalog"
	"github.com/lepinkainen/booklist/internal/config"
	"github.com/lepinkainen/booklist/internal/googlebooks"
	"github.com/lepinkainen/booklist/internal/ratelimit"
	"github.com/lepinkainen/booklist/internal/session"
)

// NewGoogleBooksClient builds the search backend from the resolved config.
func NewGoogleBooksClient() *googlebooks.Client {
	return googlebooks.NewClient(
		googlebooks.WithBaseURL(config.GoogleBooksBaseURL),
		googlebooks.WithAPIKey(config.GoogleBooksAPIKey),
		googlebooks.WithTimeout(config.FetchTimeout),
		googlebooks.WithRateLimiter(ratelimit.New("GoogleBooks", config.GoogleBooksRate)),
	)
}

// NewCatalog builds the category adapter on top of searcher.
func NewCatalog(searcher catalog.Searcher) *catalog.Adapter {
	return catalog.NewAdapter(searcher,
		catalog.WithCategories(config.Categories),
		catalog.WithLimit(config.ResultLimit),
		catalog.WithTimeout(config.FetchTimeout),
	)
}

// NewSessionStore returns a Redis store when session.redis_url is set and
// an in-memory store otherwise. The returned close func releases the
// Redis connection.
func NewSessionStore(ctx context.Context) (session.Store, func() error, error) {
	if config.SessionRedisURL == "" {
		slog.Debug("Using in-memory session store", "ttl", config.SessionTTL)
		return session.NewMemoryStore(config.SessionTTL), func() error { return nil }, nil
	}

	client, err := session.DialRedis(ctx, config.SessionRedisURL)
	if err != nil {
		return nil, nil, err
	}
	return session.NewRedisStore(client, config.SessionTTL), client.Close, nil
}
