// Package catalog turns a category selection into a bounded list of books
// from the search API.
package catalog

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/lepinkainen/booklist/internal/book"
	"github.com/lepinkainen/booklist/internal/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// DefaultTerm is searched for unknown category keys.
	DefaultTerm = "fiction"
	// DefaultLimit is the maximum number of records a fetch returns.
	DefaultLimit = 5
	// DefaultTimeout bounds one search round trip.
	DefaultTimeout = 5 * time.Second
)

// Category maps a selection key to a search term.
type Category struct {
	Key  string `mapstructure:"key" json:"key"`
	Term string `mapstructure:"term" json:"term"`
}

// DefaultCategories returns the built-in category mapping.
func DefaultCategories() []Category {
	return []Category{
		{Key: "1", Term: "fiction"},
		{Key: "2", Term: "science"},
		{Key: "3", Term: "Islam"},
		{Key: "4", Term: "education"},
	}
}

// Searcher runs a free-text search against a book source.
type Searcher interface {
	Search(ctx context.Context, term string) ([]book.Book, error)
}

// SearcherFunc adapts a function to the Searcher interface.
type SearcherFunc func(ctx context.Context, term string) ([]book.Book, error)

// Search calls f.
func (f SearcherFunc) Search(ctx context.Context, term string) ([]book.Book, error) {
	return f(ctx, term)
}

// Adapter resolves categories and fetches bounded result lists.
type Adapter struct {
	searcher   Searcher
	categories []Category
	limit      int
	timeout    time.Duration
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithCategories replaces the category mapping.
func WithCategories(categories []Category) Option {
	return func(a *Adapter) {
		if len(categories) > 0 {
			a.categories = append([]Category(nil), categories...)
		}
	}
}

// WithLimit lowers the maximum number of returned records. Values outside
// 1..DefaultLimit are ignored.
func WithLimit(limit int) Option {
	return func(a *Adapter) {
		if limit > 0 && limit <= DefaultLimit {
			a.limit = limit
		}
	}
}

// WithTimeout sets the bound of a single search.
func WithTimeout(timeout time.Duration) Option {
	return func(a *Adapter) {
		if timeout > 0 {
			a.timeout = timeout
		}
	}
}

// NewAdapter creates an Adapter backed by searcher.
func NewAdapter(searcher Searcher, opts ...Option) *Adapter {
	a := &Adapter{
		searcher:   searcher,
		categories: DefaultCategories(),
		limit:      DefaultLimit,
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Categories returns the category mapping in display order.
func (a *Adapter) Categories() []Category {
	return append([]Category(nil), a.categories...)
}

// Resolve returns the search term for key. Unknown keys resolve to DefaultTerm.
func (a *Adapter) Resolve(key string) string {
	key = strings.TrimSpace(key)
	for _, c := range a.categories {
		if c.Key == key {
			return c.Term
		}
	}
	return DefaultTerm
}

// Label returns the display name of the category behind key.
func (a *Adapter) Label(key string) string {
	return Label(a.Resolve(key))
}

// Label title-cases a search term for display.
func Label(term string) string {
	return cases.Title(language.English).String(term)
}

// Fetch searches for the term behind key and returns at most the configured
// number of records in source order. Failures never escape as a partial
// result: the returned slice is empty and the error says why.
func (a *Adapter) Fetch(ctx context.Context, key string) ([]book.Book, error) {
	term := a.Resolve(key)

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	records, err := a.searcher.Search(ctx, term)
	if err != nil {
		err = classify(term, err)
		slog.Warn("Book search failed", "category", key, "term", term, "error", err)
		return []book.Book{}, err
	}

	if len(records) > a.limit {
		records = records[:a.limit]
	}

	out := make([]book.Book, len(records))
	copy(out, records)

	slog.Debug("Book search finished", "category", key, "term", term, "results", len(out))
	return out, nil
}

// classify wraps errors that are not already part of the fetch taxonomy.
// A searcher that fails without a remote status failed in transit.
func classify(term string, err error) error {
	if errors.IsTransientFetchError(err) || errors.IsRemoteError(err) {
		return err
	}
	return errors.NewTransientFetchError(term, err)
}
