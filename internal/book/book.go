// Package book defines the book record shared by the catalog, the
// collection manager and both front ends.
package book

import (
	"strings"

	"golang.org/x/text/cases"
)

// Defaults applied to records with missing fields.
const (
	NoTitle          = "No Title"
	UnknownAuthor    = "Unknown"
	NoCategory       = "No Category"
	PlaceholderImage = "https://via.placeholder.com/128x195?text=No+Cover"
	NoPreview        = "#"
)

// Book is a single book's metadata, either returned by the search API or
// entered by the user.
type Book struct {
	Title        string   `json:"title"`
	Authors      []string `json:"authors"`
	Categories   []string `json:"categories"`
	ThumbnailURL string   `json:"thumbnail_url"`
	PreviewURL   string   `json:"preview_url"`
}

var folder = cases.Fold()

// Key returns the canonical identity of a title: trimmed and case-folded.
func Key(title string) string {
	return folder.String(strings.TrimSpace(title))
}

// Key returns the canonical identity of the book.
func (b Book) Key() string {
	return Key(b.Title)
}

// Same reports whether both records refer to the same book.
func (b Book) Same(other Book) bool {
	return b.Key() == other.Key()
}

// Normalize returns a copy of b with every missing field replaced by its default.
func Normalize(b Book) Book {
	out := Book{
		Title:        strings.TrimSpace(b.Title),
		Authors:      compact(b.Authors),
		Categories:   compact(b.Categories),
		ThumbnailURL: strings.TrimSpace(b.ThumbnailURL),
		PreviewURL:   strings.TrimSpace(b.PreviewURL),
	}

	if out.Title == "" {
		out.Title = NoTitle
	}
	if len(out.Authors) == 0 {
		out.Authors = []string{UnknownAuthor}
	}
	if len(out.Categories) == 0 {
		out.Categories = []string{NoCategory}
	}
	if out.ThumbnailURL == "" {
		out.ThumbnailURL = PlaceholderImage
	}
	if out.PreviewURL == "" {
		out.PreviewURL = NoPreview
	}

	return out
}

// AuthorsLine joins the authors for display.
func (b Book) AuthorsLine() string {
	if len(b.Authors) == 0 {
		return UnknownAuthor
	}
	return strings.Join(b.Authors, ", ")
}

// CategoriesLine joins the categories for display.
func (b Book) CategoriesLine() string {
	if len(b.Categories) == 0 {
		return NoCategory
	}
	return strings.Join(b.Categories, ", ")
}

// HasPreview reports whether the record links to a real preview page.
func (b Book) HasPreview() bool {
	return b.PreviewURL != "" && b.PreviewURL != NoPreview
}

// compact trims entries and drops empty ones, returning nil when nothing is left.
func compact(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
