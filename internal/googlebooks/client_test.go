package googlebooks

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lepinkainen/booklist/internal/book"
	"github.com/lepinkainen/booklist/internal/cache"
	"github.com/lepinkainen/booklist/internal/errors"
	"github.com/lepinkainen/booklist/internal/ratelimit"
	"github.com/lepinkainen/booklist/internal/testutil"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMemoryCache(t *testing.T) {
	t.Helper()

	viper.Reset()
	viper.Set("cache.dbfile", cache.MemoryDB)
	require.NoError(t, cache.ResetGlobalCache())
	t.Cleanup(func() {
		_ = cache.ResetGlobalCache()
		viper.Reset()
	})
}

func fixture(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "volumes.json"))
	require.NoError(t, err)
	return data
}

func TestClientOptionsApply(t *testing.T) {
	customHTTP := &http.Client{}
	limiter := ratelimit.New("GoogleBooks", 1)

	client := NewClient(
		WithBaseURL("https://example.test/books/v1/"),
		WithHTTPClient(customHTTP),
		WithAPIKey(" secret "),
		WithRateLimiter(limiter),
		WithCache(false),
	)

	require.Equal(t, "https://example.test/books/v1", client.baseURL)
	require.Equal(t, customHTTP, client.httpClient)
	require.Equal(t, "secret", client.apiKey)
	require.Equal(t, limiter, client.rateLimiter)
	require.False(t, client.useCache)
}

func TestClientDefaults(t *testing.T) {
	client := NewClient(WithTimeout(time.Second))

	assert.Equal(t, DefaultBaseURL, client.baseURL)
	assert.True(t, client.useCache)
	httpClient, ok := client.httpClient.(*http.Client)
	require.True(t, ok)
	assert.Equal(t, time.Second, httpClient.Timeout)
}

func TestEndpointEscapesTermAndAddsKey(t *testing.T) {
	client := NewClient(WithBaseURL("https://example.test"))
	assert.Equal(t, "https://example.test/volumes?q=science+fiction", client.endpoint("science fiction"))

	client = NewClient(WithBaseURL("https://example.test"), WithAPIKey("abc"))
	assert.Equal(t, "https://example.test/volumes?key=abc&q=Islam", client.endpoint("Islam"))
}

func TestSearchConvertsVolumes(t *testing.T) {
	body := fixture(t)
	var gotQuery string
	server := testutil.NewIPv4TestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/volumes", r.URL.Path)
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))

	client := NewClient(WithBaseURL(server.URL), WithCache(false))
	books, err := client.Search(context.Background(), "fiction")
	require.NoError(t, err)
	assert.Equal(t, "fiction", gotQuery)

	data, err := json.Marshal(books)
	require.NoError(t, err)
	testutil.NewGoldenHelper(t, filepath.Join("testdata", "golden")).AssertGoldenJSON("volumes_books.json", data)
}

func TestSearchMissingItemsIsEmpty(t *testing.T) {
	server := testutil.NewIPv4TestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"kind":"books#volumes","totalItems":0}`))
	}))

	client := NewClient(WithBaseURL(server.URL), WithCache(false))
	books, err := client.Search(context.Background(), "nothing")
	require.NoError(t, err)
	assert.NotNil(t, books)
	assert.Empty(t, books)
}

func TestSearchNon2xxIsRemoteError(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusForbidden, http.StatusTooManyRequests, http.StatusInternalServerError} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			server := testutil.NewIPv4TestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", status)
			}))

			client := NewClient(WithBaseURL(server.URL), WithCache(false))
			books, err := client.Search(context.Background(), "fiction")
			require.Error(t, err)
			assert.Nil(t, books)

			remoteErr, ok := errors.AsRemoteError(err)
			require.True(t, ok)
			assert.Equal(t, status, remoteErr.StatusCode)
			assert.Equal(t, "fiction", remoteErr.Term)
		})
	}
}

func TestSearchMalformedBodyIsTransient(t *testing.T) {
	server := testutil.NewIPv4TestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items": [`))
	}))

	client := NewClient(WithBaseURL(server.URL), WithCache(false))
	_, err := client.Search(context.Background(), "fiction")
	require.Error(t, err)
	assert.True(t, errors.IsTransientFetchError(err))
}

func TestSearchClosedServerIsTransient(t *testing.T) {
	server := testutil.NewIPv4TestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := server.URL
	server.Close()

	client := NewClient(WithBaseURL(baseURL), WithCache(false))
	_, err := client.Search(context.Background(), "fiction")
	require.Error(t, err)
	assert.True(t, errors.IsTransientFetchError(err))
}

func TestSearchTimeoutIsTransient(t *testing.T) {
	release := make(chan struct{})
	server := testutil.NewIPv4TestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() { close(release) })

	client := NewClient(WithBaseURL(server.URL), WithTimeout(50*time.Millisecond), WithCache(false))
	_, err := client.Search(context.Background(), "fiction")
	require.Error(t, err)
	assert.True(t, errors.IsTransientFetchError(err))
}

func TestSearchServesRepeatFromCache(t *testing.T) {
	setupMemoryCache(t)

	body := fixture(t)
	var calls atomic.Int32
	server := testutil.NewIPv4TestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write(body)
	}))

	client := NewClient(WithBaseURL(server.URL))

	first, err := client.Search(context.Background(), "Fiction")
	require.NoError(t, err)
	second, err := client.Search(context.Background(), "fiction")
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, first, second)
	require.Len(t, second, 3)
	assert.Equal(t, "Dune", second[0].Title)
}

func TestSearchErrorsAreNotCached(t *testing.T) {
	setupMemoryCache(t)

	var calls atomic.Int32
	server := testutil.NewIPv4TestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"items":[{"volumeInfo":{"title":"Recovered"}}]}`))
	}))

	client := NewClient(WithBaseURL(server.URL))

	_, err := client.Search(context.Background(), "science")
	require.True(t, errors.IsRemoteError(err))

	books, err := client.Search(context.Background(), "science")
	require.NoError(t, err)
	assert.Equal(t, []book.Book{book.Normalize(book.Book{Title: "Recovered"})}, books)
	assert.Equal(t, int32(2), calls.Load())
}

func TestSecureURL(t *testing.T) {
	assert.Equal(t, "https://example.test/a.png", secureURL("http://example.test/a.png"))
	assert.Equal(t, "https://example.test/a.png", secureURL("https://example.test/a.png"))
	assert.Equal(t, "", secureURL(""))
}

func TestSearchEmptyResultsAreNotCached(t *testing.T) {
	setupMemoryCache(t)

	var calls atomic.Int32
	server := testutil.NewIPv4TestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"kind":"books#volumes","totalItems":0}`))
	}))

	client := NewClient(WithBaseURL(server.URL))

	for i := 0; i < 2; i++ {
		books, err := client.Search(context.Background(), "education")
		require.NoError(t, err)
		assert.Empty(t, books)
	}
	assert.Equal(t, int32(2), calls.Load())
}
