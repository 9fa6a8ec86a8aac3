// Package serve starts the web front end.
package serve

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/lepinkainen/booklist/internal/catalog"
	"github.com/lepinkainen/booklist/internal/cmdutil"
	"github.com/lepinkainen/booklist/internal/config"
	"github.com/lepinkainen/booklist/internal/web"
)

var (
	newSearcher   = func() catalog.Searcher { return cmdutil.NewGoogleBooksClient() }
	signalContext = func() (context.Context, context.CancelFunc) {
		return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	}
)

// ServeCmd runs the web front end until interrupted.
type ServeCmd struct {
	Addr         string `help:"Listen address (defaults to web.addr)"`
	SecureCookie bool   `help:"Mark the session cookie Secure when served behind TLS"`
}

func (s *ServeCmd) Run() error {
	ctx, stop := signalContext()
	defer stop()

	addr := s.Addr
	if addr == "" {
		addr = config.WebAddr
	}

	store, closeStore, err := cmdutil.NewSessionStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	server := web.NewServer(
		cmdutil.NewCatalog(newSearcher()),
		store,
		web.WithSecureCookie(s.SecureCookie),
	)
	return server.ListenAndServe(ctx, addr)
}
