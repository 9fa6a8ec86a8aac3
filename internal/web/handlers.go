package web

import (
	"errors"
	"html"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/lepinkainen/booklist/internal/book"
	"github.com/lepinkainen/booklist/internal/catalog"
	"github.com/lepinkainen/booklist/internal/collection"
	bookerrors "github.com/lepinkainen/booklist/internal/errors"
	"github.com/lepinkainen/booklist/internal/messages"
	"github.com/lepinkainen/booklist/internal/session"
)

type categoryOption struct {
	Key      string
	Label    string
	Selected bool
}

type resultView struct {
	book.Book
	Position  int
	Favorited bool
}

type pageData struct {
	Categories    []categoryOption
	CategoryLabel string
	Results       []resultView
	Favorites     []book.Book
	UserBooks     []book.Book
	Flash         string
}

// loadSession returns the visitor's session, starting a new one (and
// setting the cookie) when the cookie is missing, malformed or expired.
func (s *Server) loadSession(w http.ResponseWriter, r *http.Request) (*session.Session, error) {
	if id := sessionCookie(r); id != "" {
		sess, err := s.store.Load(r.Context(), id)
		if err == nil {
			return sess, nil
		}
		if !errors.Is(err, session.ErrNotFound) {
			return nil, err
		}
	}

	sess := session.New()
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	slog.Debug("Started session", "request_id", GetRequestID(r), "session", sess.ID)
	return sess, nil
}

// mutate runs fn on the visitor's session, stores the message it returns
// as the flash and redirects back to the page.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, fn func(*session.Session) string) {
	defer s.locks.lock(sessionCookie(r))()

	sess, err := s.loadSession(w, r)
	if err != nil {
		s.fail(w, r, "load session", err)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	sess.Flash = fn(sess)

	if err := s.store.Save(r.Context(), sess); err != nil {
		s.fail(w, r, "save session", err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	slog.Error("Request failed", "request_id", GetRequestID(r), "op", op, "error", err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

// field returns a form value with surrounding space and any markup removed.
func (s *Server) field(r *http.Request, name string) string {
	clean := s.policy.Sanitize(strings.TrimSpace(r.PostForm.Get(name)))
	return strings.TrimSpace(html.UnescapeString(clean))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess, flash, err := s.takeFlash(w, r)
	if err != nil {
		s.fail(w, r, "take flash", err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(w, s.pageData(sess, flash)); err != nil {
		slog.Error("Failed to render page", "request_id", GetRequestID(r), "error", err)
	}
}

// takeFlash loads the session and clears its pending message.
func (s *Server) takeFlash(w http.ResponseWriter, r *http.Request) (*session.Session, string, error) {
	defer s.locks.lock(sessionCookie(r))()

	sess, err := s.loadSession(w, r)
	if err != nil {
		return nil, "", err
	}

	flash := sess.TakeFlash()
	if flash != "" {
		if err := s.store.Save(r.Context(), sess); err != nil {
			return nil, "", err
		}
	}
	return sess, flash, nil
}

func (s *Server) pageData(sess *session.Session, flash string) pageData {
	categories := s.catalog.Categories()
	current := sess.Category
	if current == "" && len(categories) > 0 {
		current = categories[0].Key
	}

	var options []categoryOption
	for _, c := range categories {
		options = append(options, categoryOption{
			Key:      c.Key,
			Label:    catalog.Label(c.Term),
			Selected: c.Key == current,
		})
	}

	var results []resultView
	for i, b := range sess.Manager.List(collection.Results) {
		results = append(results, resultView{
			Book:      b,
			Position:  i + 1,
			Favorited: sess.Manager.Contains(collection.Favorites, b.Title),
		})
	}

	return pageData{
		Categories:    options,
		CategoryLabel: s.catalog.Label(current),
		Results:       results,
		Favorites:     sess.Manager.List(collection.Favorites),
		UserBooks:     sess.Manager.List(collection.UserBooks),
		Flash:         flash,
	}
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(sess *session.Session) string {
		key := s.field(r, "category")
		sess.Category = key

		if !s.searches.Allow(clientKey(r)) {
			s.metrics.searched("limited")
			return messages.TooManySearches
		}

		books, err := s.catalog.Fetch(r.Context(), key)
		sess.Manager.SetResults(books)
		if err != nil {
			s.metrics.searched(outcome(err))
			return messages.FetchFailure(err)
		}
		if len(books) == 0 {
			s.metrics.searched("empty")
			return messages.NoBooks
		}
		s.metrics.searched("ok")
		return messages.Found(len(books), s.catalog.Label(key))
	})
}

func (s *Server) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(sess *session.Session) string {
		n, err := strconv.Atoi(s.field(r, "index"))
		if err != nil {
			return messages.InvalidChoice
		}
		chosen, err := sess.Manager.Result(n)
		if err != nil {
			return messages.InvalidChoice
		}
		if err := sess.Manager.AddFavorite(chosen); err != nil {
			return messages.ForCollectionError(err)
		}
		return messages.Favorited(chosen.Title)
	})
}

func (s *Server) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(sess *session.Session) string {
		title := s.field(r, "title")
		if _, err := sess.Manager.RemoveFavorite(title); err != nil {
			return messages.ForCollectionError(err)
		}
		return messages.Removed(title)
	})
}

func (s *Server) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(sess *session.Session) string {
		created, err := sess.Manager.CreateCustomBook(
			s.field(r, "title"),
			s.field(r, "author"),
			s.field(r, "category"),
			imageURL(s.field(r, "image_url")),
		)
		if err != nil {
			return messages.ForCollectionError(err)
		}
		return messages.Created(created.Title)
	})
}

func (s *Server) handleRemoveBook(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(sess *session.Session) string {
		title := s.field(r, "title")
		if _, err := sess.Manager.RemoveCustomBook(title); err != nil {
			return messages.ForCollectionError(err)
		}
		return messages.Removed(title)
	})
}

func outcome(err error) string {
	if bookerrors.IsRemoteError(err) {
		return "remote"
	}
	return "transient"
}

// imageURL keeps only absolute http(s) links.
func imageURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ""
	}
	return u.String()
}
