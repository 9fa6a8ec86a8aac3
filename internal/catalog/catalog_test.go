package catalog

import (
	"context"
	stdErrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/lepinkainen/booklist/internal/book"
	"github.com/lepinkainen/booklist/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numberedBooks(n int) []book.Book {
	books := make([]book.Book, n)
	for i := range books {
		books[i] = book.Normalize(book.Book{Title: fmt.Sprintf("Book %d", i+1)})
	}
	return books
}

type recordingSearcher struct {
	terms   []string
	results []book.Book
	err     error
}

func (r *recordingSearcher) Search(_ context.Context, term string) ([]book.Book, error) {
	r.terms = append(r.terms, term)
	return r.results, r.err
}

func TestResolveKnownKeys(t *testing.T) {
	a := NewAdapter(&recordingSearcher{})

	assert.Equal(t, "fiction", a.Resolve("1"))
	assert.Equal(t, "science", a.Resolve("2"))
	assert.Equal(t, "Islam", a.Resolve("3"))
	assert.Equal(t, "education", a.Resolve(" 4 "))
}

func TestResolveUnknownKeysFallBackToDefault(t *testing.T) {
	a := NewAdapter(&recordingSearcher{})

	for _, key := range []string{"", "0", "5", "science", "fiction", "🙂"} {
		assert.Equal(t, DefaultTerm, a.Resolve(key), "key %q", key)
	}
}

func TestLabel(t *testing.T) {
	a := NewAdapter(&recordingSearcher{})

	assert.Equal(t, "Science", a.Label("2"))
	assert.Equal(t, "Islam", a.Label("3"))
	assert.Equal(t, "Fiction", a.Label("unknown"))
	assert.Equal(t, "Science Fiction", Label("science fiction"))
}

func TestFetchTruncatesToLimitInOrder(t *testing.T) {
	searcher := &recordingSearcher{results: numberedBooks(8)}
	a := NewAdapter(searcher, WithCategories([]Category{{Key: "science", Term: "science"}}))

	got, err := a.Fetch(context.Background(), "science")
	require.NoError(t, err)

	require.Len(t, got, 5)
	for i, b := range got {
		assert.Equal(t, fmt.Sprintf("Book %d", i+1), b.Title)
	}
	assert.Equal(t, []string{"science"}, searcher.terms)
}

func TestFetchNeverExceedsLimit(t *testing.T) {
	for _, n := range []int{0, 1, 4, 5, 6, 40} {
		a := NewAdapter(&recordingSearcher{results: numberedBooks(n)})

		got, err := a.Fetch(context.Background(), "1")
		require.NoError(t, err)
		assert.LessOrEqual(t, len(got), DefaultLimit)
		assert.Len(t, got, min(n, DefaultLimit))
	}
}

func TestFetchCustomLimit(t *testing.T) {
	a := NewAdapter(&recordingSearcher{results: numberedBooks(8)}, WithLimit(3))

	got, err := a.Fetch(context.Background(), "1")
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestFetchUnknownCategorySearchesDefault(t *testing.T) {
	searcher := &recordingSearcher{}
	a := NewAdapter(searcher)

	_, err := a.Fetch(context.Background(), "99")
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultTerm}, searcher.terms)
}

func TestFetchRemoteErrorDegradesToEmpty(t *testing.T) {
	searcher := &recordingSearcher{err: errors.NewRemoteError(503, "fiction")}
	a := NewAdapter(searcher)

	got, err := a.Fetch(context.Background(), "1")
	require.Error(t, err)
	assert.True(t, errors.IsRemoteError(err))
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFetchUnclassifiedErrorBecomesTransient(t *testing.T) {
	searcher := &recordingSearcher{err: stdErrors.New("connection reset by peer")}
	a := NewAdapter(searcher)

	got, err := a.Fetch(context.Background(), "2")
	require.Error(t, err)
	assert.True(t, errors.IsTransientFetchError(err))
	assert.Empty(t, got)

	var fetchErr *errors.TransientFetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "science", fetchErr.Term)
}

func TestFetchTimeout(t *testing.T) {
	slow := SearcherFunc(func(ctx context.Context, _ string) ([]book.Book, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	a := NewAdapter(slow, WithTimeout(20*time.Millisecond))

	start := time.Now()
	got, err := a.Fetch(context.Background(), "1")

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.True(t, errors.IsTransientFetchError(err))
	assert.True(t, stdErrors.Is(err, context.DeadlineExceeded))
	assert.Empty(t, got)
}

func TestFetchReturnsIndependentSlice(t *testing.T) {
	source := numberedBooks(2)
	a := NewAdapter(&recordingSearcher{results: source})

	got, err := a.Fetch(context.Background(), "1")
	require.NoError(t, err)
	got[0].Title = "changed"

	assert.Equal(t, "Book 1", source[0].Title)
}

func TestCategoriesReturnsCopy(t *testing.T) {
	a := NewAdapter(&recordingSearcher{})

	categories := a.Categories()
	categories[0].Term = "poetry"

	assert.Equal(t, "fiction", a.Resolve("1"))
	assert.Len(t, a.Categories(), 4)
}

func TestOptionsIgnoreInvalidValues(t *testing.T) {
	a := NewAdapter(&recordingSearcher{}, WithLimit(0), WithTimeout(-time.Second), WithCategories(nil))

	assert.Equal(t, DefaultLimit, a.limit)
	assert.Equal(t, DefaultTimeout, a.timeout)
	assert.Equal(t, DefaultCategories(), a.categories)

	a = NewAdapter(&recordingSearcher{}, WithLimit(10))
	assert.Equal(t, DefaultLimit, a.limit)
}

func TestFetchNeverExceedsDefaultLimit(t *testing.T) {
	a := NewAdapter(&recordingSearcher{results: numberedBooks(8)}, WithLimit(10))

	books, err := a.Fetch(context.Background(), "1")
	require.NoError(t, err)
	assert.Len(t, books, DefaultLimit)
	assert.Equal(t, "Book 1", books[0].Title)
}
