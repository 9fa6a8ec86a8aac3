package googlebooks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/lepinkainen/booklist/internal/book"
	"github.com/lepinkainen/booklist/internal/cache"
	"github.com/lepinkainen/booklist/internal/errors"
)

type imageLinks struct {
	SmallThumbnail string `json:"smallThumbnail"`
	Thumbnail      string `json:"thumbnail"`
}

type volumeInfo struct {
	Title       string     `json:"title"`
	Authors     []string   `json:"authors"`
	Categories  []string   `json:"categories"`
	ImageLinks  imageLinks `json:"imageLinks"`
	PreviewLink string     `json:"previewLink"`
}

type volumesResponse struct {
	TotalItems int `json:"totalItems"`
	Items      []struct {
		ID         string     `json:"id"`
		VolumeInfo volumeInfo `json:"volumeInfo"`
	} `json:"items"`
}

// Search returns the volumes matching term in API order. Non-empty
// responses are cached per lower-cased term.
func (c *Client) Search(ctx context.Context, term string) ([]book.Book, error) {
	if !c.useCache {
		return c.search(ctx, term)
	}

	key := strings.ToLower(strings.TrimSpace(term))
	books, fromCache, err := cache.GetOrFetchWithPolicy(cache.SearchTable, key, func() ([]book.Book, error) {
		return c.search(ctx, term)
	}, func(books []book.Book) bool { return len(books) > 0 })
	if err != nil {
		return nil, err
	}
	if fromCache {
		slog.Debug("Serving search from cache", "term", term, "count", len(books))
	}
	if books == nil {
		books = []book.Book{}
	}
	return books, nil
}

func (c *Client) search(ctx context.Context, term string) ([]book.Book, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, errors.NewTransientFetchError(term, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(term), nil)
	if err != nil {
		return nil, errors.NewTransientFetchError(term, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewTransientFetchError(term, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		slog.Debug("Google Books returned an error", "status", resp.StatusCode, "body", strings.TrimSpace(string(body)))
		return nil, errors.NewRemoteError(resp.StatusCode, term)
	}

	var payload volumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.NewTransientFetchError(term, fmt.Errorf("decode response: %w", err))
	}

	books := make([]book.Book, 0, len(payload.Items))
	for _, item := range payload.Items {
		books = append(books, toBook(item.VolumeInfo))
	}

	slog.Debug("Fetched volumes", "term", term, "total", payload.TotalItems, "returned", len(books))
	return books, nil
}

func (c *Client) endpoint(term string) string {
	params := url.Values{}
	params.Set("q", term)
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}
	return fmt.Sprintf("%s/volumes?%s", c.baseURL, params.Encode())
}

func toBook(info volumeInfo) book.Book {
	thumbnail := info.ImageLinks.Thumbnail
	if thumbnail == "" {
		thumbnail = info.ImageLinks.SmallThumbnail
	}

	return book.Normalize(book.Book{
		Title:        info.Title,
		Authors:      info.Authors,
		Categories:   info.Categories,
		ThumbnailURL: secureURL(thumbnail),
		PreviewURL:   info.PreviewLink,
	})
}

// secureURL upgrades plain http image links, which browsers block as mixed content.
func secureURL(raw string) string {
	if rest, ok := strings.CutPrefix(raw, "http://"); ok {
		return "https://" + rest
	}
	return raw
}
