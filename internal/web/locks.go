package web

import (
	"net/http"
	"sync"

	"github.com/lepinkainen/booklist/internal/session"
)

// sessionLocks serializes requests of one session within this process so a
// load, change and save cycle never overwrites a concurrent one.
type sessionLocks struct {
	mu   sync.Mutex
	held map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{held: make(map[string]*sessionLock)}
}

// lock blocks until id is free and returns the matching unlock. An empty id
// belongs to a session that does not exist yet and needs no lock.
func (l *sessionLocks) lock(id string) func() {
	if id == "" {
		return func() {}
	}

	l.mu.Lock()
	entry, ok := l.held[id]
	if !ok {
		entry = &sessionLock{}
		l.held[id] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		defer l.mu.Unlock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.held, id)
		}
	}
}

func (l *sessionLocks) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.held)
}

// sessionCookie returns the session ID presented by the client, or "" when
// there is none.
func sessionCookie(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil || !session.ValidID(c.Value) {
		return ""
	}
	return c.Value
}
