package collection

import "github.com/lepinkainen/booklist/internal/book"

// Snapshot is the serializable state of a Manager.
type Snapshot struct {
	Results   []book.Book `json:"results,omitempty"`
	Favorites []book.Book `json:"favorites,omitempty"`
	UserBooks []book.Book `json:"user_books,omitempty"`
}

// Snapshot copies the manager state.
func (m *Manager) Snapshot() Snapshot {
	return Snapshot{
		Results:   m.List(Results),
		Favorites: m.List(Favorites),
		UserBooks: m.List(UserBooks),
	}
}

// Restore builds a Manager from a snapshot.
func Restore(s Snapshot) *Manager {
	return &Manager{
		results:   append([]book.Book(nil), s.Results...),
		favorites: append([]book.Book(nil), s.Favorites...),
		userBooks: append([]book.Book(nil), s.UserBooks...),
	}
}
