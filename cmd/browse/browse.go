// Package browse implements the numbered terminal menu.
package browse

import (
	"context"
	stdErrors "errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lepinkainen/booklist/internal/book"
	"github.com/lepinkainen/booklist/internal/catalog"
	"github.com/lepinkainen/booklist/internal/collection"
	"github.com/lepinkainen/booklist/internal/errors"
	"github.com/lepinkainen/booklist/internal/messages"
	"github.com/lepinkainen/booklist/internal/tui"
)

var menu = []string{
	"1. Search Books by Category",
	"2. View Favorites",
	"3. Add Custom Book",
	"4. Remove a Book from Favorites",
	"5. Remove a Custom Book",
	"6. View My Books",
	"7. Exit",
}

// Browser runs the menu loop against one Collection Manager.
type Browser struct {
	catalog     *catalog.Adapter
	manager     *collection.Manager
	prompt      Prompter
	out         io.Writer
	interactive bool
	selectBook  func(string, []book.Book) (tui.SelectionResult, error)

	heading lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
}

// Option configures a Browser.
type Option func(*Browser)

// WithInteractive picks favorites from a TUI list instead of by number.
func WithInteractive(enabled bool) Option {
	return func(b *Browser) {
		b.interactive = enabled
	}
}

// WithManager starts from an existing collection.
func WithManager(m *collection.Manager) Option {
	return func(b *Browser) {
		if m != nil {
			b.manager = m
		}
	}
}

// New creates a Browser writing to out.
func New(adapter *catalog.Adapter, prompt Prompter, out io.Writer, opts ...Option) *Browser {
	renderer := lipgloss.NewRenderer(out)
	b := &Browser{
		catalog:    adapter,
		manager:    collection.New(),
		prompt:     prompt,
		out:        out,
		selectBook: tui.SelectBook,
		heading:    renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		success:    renderer.NewStyle().Foreground(lipgloss.Color("42")),
		warning:    renderer.NewStyle().Foreground(lipgloss.Color("203")),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Manager returns the collection the browser works on.
func (b *Browser) Manager() *collection.Manager {
	return b.manager
}

// Run shows the menu until the user exits or input ends.
func (b *Browser) Run(ctx context.Context) error {
	for {
		b.println("")
		b.println(b.heading.Render(messages.Welcome))
		for _, item := range menu {
			b.println(item)
		}

		choice, err := b.prompt.Prompt("Enter your choice: ")
		if err == nil {
			err = b.dispatch(ctx, strings.TrimSpace(choice))
		}

		switch {
		case err == nil:
			continue
		case stdErrors.Is(err, errExit), stdErrors.Is(err, io.EOF), errors.IsStopProcessingError(err):
			b.println(messages.Goodbye)
			return nil
		default:
			return err
		}
	}
}

var errExit = stdErrors.New("exit")

func (b *Browser) dispatch(ctx context.Context, choice string) error {
	switch choice {
	case "1":
		return b.search(ctx)
	case "2":
		b.println("")
		b.println("Favorite Books:")
		b.display(b.manager.List(collection.Favorites))
	case "3":
		return b.createBook()
	case "4":
		return b.remove("Enter book title to remove from favorites: ", b.manager.RemoveFavorite)
	case "5":
		return b.remove("Enter book title to remove from your collection: ", b.manager.RemoveCustomBook)
	case "6":
		b.println("")
		b.println("My Books:")
		b.display(b.manager.List(collection.UserBooks))
	case "7":
		return errExit
	default:
		b.warn(messages.InvalidMenu)
	}
	return nil
}

func (b *Browser) search(ctx context.Context) error {
	b.println("Select a Category:")
	for _, c := range b.catalog.Categories() {
		b.println(fmt.Sprintf("%s. %s", c.Key, catalog.Label(c.Term)))
	}

	key, err := b.prompt.Prompt("Enter category number: ")
	if err != nil {
		return err
	}

	books, err := b.catalog.Fetch(ctx, key)
	b.manager.SetResults(books)
	if err != nil {
		b.warn(messages.FetchFailure(err))
		return nil
	}

	b.display(books)
	if len(books) == 0 {
		return nil
	}

	if b.interactive {
		return b.pick(key, books)
	}

	answer, err := b.prompt.Prompt("Enter book number to add to favorites (or press Enter to skip): ")
	if err != nil {
		return err
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil
	}

	n, convErr := strconv.Atoi(answer)
	chosen, err := b.manager.Result(n)
	if convErr != nil || err != nil {
		b.warn(messages.InvalidChoice)
		return nil
	}
	b.favorite(chosen)
	return nil
}

func (b *Browser) pick(key string, books []book.Book) error {
	result, err := b.selectBook(b.catalog.Label(key)+" books", books)
	if err != nil {
		return fmt.Errorf("book picker: %w", err)
	}

	switch result.Action {
	case tui.ActionSelected:
		b.favorite(*result.Selection)
	case tui.ActionStopped:
		return errors.NewStopProcessingError("user quit from the book picker")
	}
	return nil
}

func (b *Browser) favorite(chosen book.Book) {
	if err := b.manager.AddFavorite(chosen); err != nil {
		b.warn(messages.ForCollectionError(err))
		return
	}
	b.ok(messages.Favorited(chosen.Title))
}

func (b *Browser) createBook() error {
	var answers [4]string
	labels := [4]string{
		"Enter book title: ",
		"Enter author name: ",
		"Enter category: ",
		"Enter image URL (optional): ",
	}
	for i, label := range labels {
		answer, err := b.prompt.Prompt(label)
		if err != nil {
			return err
		}
		answers[i] = answer
	}

	created, err := b.manager.CreateCustomBook(answers[0], answers[1], answers[2], answers[3])
	if err != nil {
		b.warn(messages.ForCollectionError(err))
		return nil
	}
	b.ok(messages.Created(created.Title))
	return nil
}

func (b *Browser) remove(label string, fn func(string) (book.Book, error)) error {
	title, err := b.prompt.Prompt(label)
	if err != nil {
		return err
	}

	if _, err := fn(title); err != nil {
		b.warn(messages.ForCollectionError(err))
		return nil
	}
	b.ok(messages.Removed(title))
	return nil
}

func (b *Browser) display(books []book.Book) {
	if len(books) == 0 {
		b.println(messages.NoBooks)
		return
	}
	for _, line := range FormatLines(books) {
		b.println(line)
	}
}

// FormatLines renders records as numbered "Title (by A) [Category: C]" lines.
func FormatLines(books []book.Book) []string {
	lines := make([]string, len(books))
	for i, r := range books {
		lines[i] = fmt.Sprintf("%d. %s (by %s) [Category: %s]", i+1, r.Title, r.AuthorsLine(), r.CategoriesLine())
	}
	return lines
}

func (b *Browser) println(s string) {
	_, _ = fmt.Fprintln(b.out, s)
}

func (b *Browser) ok(s string) {
	b.println(b.success.Render(s))
}

func (b *Browser) warn(s string) {
	b.println(b.warning.Render(s))
}
