package session

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/booklist/internal/book"
	"github.com/lepinkainen/booklist/internal/collection"
)

func populated(t *testing.T) *Session {
	t.Helper()

	s := New()
	s.Category = "2"
	s.Flash = "Added 'Dune' to favorites."
	s.Manager.SetResults([]book.Book{book.Normalize(book.Book{Title: "Dune"})})
	require.NoError(t, s.Manager.AddFavorite(book.Normalize(book.Book{Title: "Dune"})))
	_, err := s.Manager.CreateCustomBook("Notes", "Me", "Diary", "")
	require.NoError(t, err)
	return s
}

// exerciseStore runs the behaviour every Store must share.
func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Load(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	s := populated(t)
	require.NoError(t, store.Save(ctx, s))

	loaded, err := store.Load(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, loaded.ID)
	assert.Equal(t, "2", loaded.Category)
	assert.Equal(t, s.Flash, loaded.Flash)
	for _, kind := range []collection.Kind{collection.Results, collection.Favorites, collection.UserBooks} {
		assert.Equal(t, s.Manager.List(kind), loaded.Manager.List(kind), kind.String())
	}

	// mutations after loading do not leak into the store until saved
	_, err = loaded.Manager.RemoveFavorite("Dune")
	require.NoError(t, err)
	again, err := store.Load(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, again.Manager.Contains(collection.Favorites, "dune"))

	require.NoError(t, store.Delete(ctx, s.ID))
	_, err = store.Load(ctx, s.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestNewSessionHasUniqueValidID(t *testing.T) {
	a, b := New(), New()

	assert.NotEqual(t, a.ID, b.ID)
	assert.True(t, ValidID(a.ID))
	assert.False(t, ValidID("not-a-session"))
	assert.Zero(t, a.Manager.Len(collection.Favorites))
}

func TestTakeFlashClears(t *testing.T) {
	s := New()
	s.Flash = "hello"

	assert.Equal(t, "hello", s.TakeFlash())
	assert.Empty(t, s.TakeFlash())
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore(time.Hour))
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	s := New()
	require.NoError(t, store.Save(context.Background(), s))

	now = now.Add(30 * time.Second)
	_, err := store.Load(context.Background(), s.ID)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = store.Load(context.Background(), s.ID)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, store.Len())
}

func TestMemoryStoreSweep(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	old := New()
	require.NoError(t, store.Save(context.Background(), old))
	now = now.Add(45 * time.Second)
	fresh := New()
	require.NoError(t, store.Save(context.Background(), fresh))

	now = now.Add(30 * time.Second)
	assert.Equal(t, 1, store.Sweep())
	assert.Equal(t, 1, store.Len())
}

func TestSaveWithoutManager(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	s := &Session{ID: "bare"}

	require.NoError(t, store.Save(context.Background(), s))
	loaded, err := store.Load(context.Background(), "bare")
	require.NoError(t, err)
	assert.Zero(t, loaded.Manager.Len(collection.Results))
}

func TestSessionKey(t *testing.T) {
	assert.Equal(t, "booklist:session:abc", sessionKey("abc"))
}

func TestRedisStoreUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 200 * time.Millisecond,
	})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisStore(client, time.Minute)
	_, err := store.Load(context.Background(), "abc")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestDialRedisRejectsBadURL(t *testing.T) {
	_, err := DialRedis(context.Background(), "not a url")
	require.Error(t, err)
}

// TestRedisStore runs against a real server when BOOKLIST_TEST_REDIS_URL is set.
func TestRedisStore(t *testing.T) {
	url := os.Getenv("BOOKLIST_TEST_REDIS_URL")
	if url == "" {
		t.Skip("BOOKLIST_TEST_REDIS_URL not set")
	}

	client, err := DialRedis(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	exerciseStore(t, NewRedisStore(client, time.Minute))
}
