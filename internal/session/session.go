// Package session keeps per-visitor collections for the web front end.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/lepinkainen/booklist/internal/collection"
)

// ErrNotFound is returned when a session does not exist or has expired.
var ErrNotFound = errors.New("session not found")

// Session is one visitor's state: their collections, the last searched
// category and a one-shot status message.
type Session struct {
	ID       string
	Manager  *collection.Manager
	Category string
	Flash    string
}

// Store persists sessions between requests.
type Store interface {
	Load(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

// New creates an empty session with a random ID.
func New() *Session {
	return &Session{
		ID:      uuid.NewString(),
		Manager: collection.New(),
	}
}

// TakeFlash returns the pending message and clears it.
func (s *Session) TakeFlash() string {
	msg := s.Flash
	s.Flash = ""
	return msg
}

// ValidID reports whether id looks like an ID issued by New.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

type record struct {
	Collections collection.Snapshot `json:"collections"`
	Category    string              `json:"category,omitempty"`
	Flash       string              `json:"flash,omitempty"`
}

func encode(s *Session) ([]byte, error) {
	manager := s.Manager
	if manager == nil {
		manager = collection.New()
	}
	data, err := json.Marshal(record{
		Collections: manager.Snapshot(),
		Category:    s.Category,
		Flash:       s.Flash,
	})
	if err != nil {
		return nil, fmt.Errorf("encode session %s: %w", s.ID, err)
	}
	return data, nil
}

func decode(id string, data []byte) (*Session, error) {
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &Session{
		ID:       id,
		Manager:  collection.Restore(r.Collections),
		Category: r.Category,
		Flash:    r.Flash,
	}, nil
}
