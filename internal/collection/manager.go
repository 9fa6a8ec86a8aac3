// Package collection keeps the books a user is looking at and curating:
// the current search results, favorites and self-authored books.
//
// A Manager is not safe for concurrent use. Each terminal process or web
// session owns its own instance.
package collection

import (
	"strconv"
	"strings"

	"github.com/lepinkainen/booklist/internal/book"
	"github.com/lepinkainen/booklist/internal/errors"
)

// Kind selects one of the lists held by a Manager.
type Kind int

const (
	// Results are the records returned by the latest search.
	Results Kind = iota
	// Favorites are records the user picked from search results.
	Favorites
	// UserBooks are records the user entered by hand.
	UserBooks
)

func (k Kind) String() string {
	switch k {
	case Results:
		return "search results"
	case Favorites:
		return "favorites"
	case UserBooks:
		return "user books"
	default:
		return "unknown collection"
	}
}

// Manager owns the three book lists of one user.
type Manager struct {
	results   []book.Book
	favorites []book.Book
	userBooks []book.Book
}

// New returns an empty Manager.
func New() *Manager {
	return &Manager{}
}

// SetResults replaces the current search results.
func (m *Manager) SetResults(records []book.Book) {
	m.results = append([]book.Book(nil), records...)
}

// Result returns the search result at the 1-based position n.
func (m *Manager) Result(n int) (book.Book, error) {
	if n < 1 || n > len(m.results) {
		return book.Book{}, errors.NewNotFoundError(Results.String(), "#"+strconv.Itoa(n))
	}
	return m.results[n-1], nil
}

// AddFavorite appends record to the favorites unless a book with the same
// title is already there.
func (m *Manager) AddFavorite(record book.Book) error {
	if indexOf(m.favorites, record.Key()) >= 0 {
		return errors.NewAlreadyExistsError(Favorites.String(), record.Title)
	}
	m.favorites = append(m.favorites, record)
	return nil
}

// RemoveFavorite removes the first favorite whose title matches, ignoring case.
func (m *Manager) RemoveFavorite(title string) (book.Book, error) {
	return remove(&m.favorites, Favorites, title)
}

// CreateCustomBook validates the fields, builds a record and appends it to
// the user books. An empty imageURL gets the placeholder image.
func (m *Manager) CreateCustomBook(title, author, category, imageURL string) (book.Book, error) {
	title = strings.TrimSpace(title)
	author = strings.TrimSpace(author)
	category = strings.TrimSpace(category)

	var missing []string
	if title == "" {
		missing = append(missing, "title")
	}
	if author == "" {
		missing = append(missing, "author")
	}
	if category == "" {
		missing = append(missing, "category")
	}
	if len(missing) > 0 {
		return book.Book{}, errors.NewValidationError(missing...)
	}

	record := book.Normalize(book.Book{
		Title:        title,
		Authors:      []string{author},
		Categories:   []string{category},
		ThumbnailURL: imageURL,
	})
	m.userBooks = append(m.userBooks, record)
	return record, nil
}

// RemoveCustomBook removes the first user book whose title matches, ignoring case.
func (m *Manager) RemoveCustomBook(title string) (book.Book, error) {
	return remove(&m.userBooks, UserBooks, title)
}

// Contains reports whether a book with the given title is in the collection.
func (m *Manager) Contains(kind Kind, title string) bool {
	return indexOf(m.list(kind), book.Key(title)) >= 0
}

// List returns a copy of the selected collection in insertion order.
func (m *Manager) List(kind Kind) []book.Book {
	return append([]book.Book(nil), m.list(kind)...)
}

// Len returns the number of books in the selected collection.
func (m *Manager) Len(kind Kind) int {
	return len(m.list(kind))
}

func (m *Manager) list(kind Kind) []book.Book {
	switch kind {
	case Results:
		return m.results
	case Favorites:
		return m.favorites
	case UserBooks:
		return m.userBooks
	default:
		return nil
	}
}

func indexOf(records []book.Book, key string) int {
	for i, r := range records {
		if r.Key() == key {
			return i
		}
	}
	return -1
}

func remove(records *[]book.Book, kind Kind, title string) (book.Book, error) {
	i := indexOf(*records, book.Key(title))
	if i < 0 {
		return book.Book{}, errors.NewNotFoundError(kind.String(), title)
	}
	removed := (*records)[i]
	*records = append((*records)[:i:i], (*records)[i+1:]...)
	return removed, nil
}
