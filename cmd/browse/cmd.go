package browse

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/lepinkainen/booklist/internal/catalog"
	"github.com/lepinkainen/booklist/internal/cmdutil"
	"github.com/lepinkainen/booklist/internal/config"
	"github.com/lepinkainen/booklist/internal/messages"
)

var (
	newSearcher = func() catalog.Searcher { return cmdutil.NewGoogleBooksClient() }
	newPrompter = NewPrompter

	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
)

// BrowseCmd runs the interactive menu.
type BrowseCmd struct {
	Interactive bool `short:"i" help:"Pick favorites from a list instead of typing a number"`
}

func (c *BrowseCmd) Run() error {
	prompt := newPrompter(stdin, stdout)
	defer func() { _ = prompt.Close() }()

	adapter := cmdutil.NewCatalog(newSearcher())
	browser := New(adapter, prompt, stdout, WithInteractive(c.Interactive || config.Interactive))
	return browser.Run(context.Background())
}

// SearchCmd prints one category's results and exits.
type SearchCmd struct {
	Category string `arg:"" optional:"" help:"Category key (unknown keys search fiction)" default:"1"`
	JSON     bool   `help:"Print results as JSON"`
}

func (c *SearchCmd) Run() error {
	adapter := cmdutil.NewCatalog(newSearcher())

	books, err := adapter.Fetch(context.Background(), c.Category)
	if err != nil {
		_, _ = fmt.Fprintln(stdout, messages.FetchFailure(err))
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(books)
	}

	if len(books) == 0 {
		_, _ = fmt.Fprintln(stdout, messages.NoBooks)
		return nil
	}
	_, _ = fmt.Fprintf(stdout, "%s books:\n", adapter.Label(c.Category))
	for _, line := range FormatLines(books) {
		_, _ = fmt.Fprintln(stdout, line)
	}
	return nil
}
