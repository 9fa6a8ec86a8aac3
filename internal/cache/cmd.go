package cache

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// ErrMemoryCache is returned by cache commands when cache.dbfile is unset.
// The in-memory cache only lives inside a running process, so a separate
// command invocation has nothing to act on.
var ErrMemoryCache = errors.New("cache.dbfile is not set; the in-memory cache cannot be managed from the command line")

// InvalidateCacheCmd represents the cache invalidate subcommand
type InvalidateCacheCmd struct {
	Source  string `arg:"" help:"Cache source to invalidate: googlebooks" required:""`
	Expired bool   `help:"Only drop entries older than cache.ttl"`
}

func (i *InvalidateCacheCmd) Run() error {
	tableName, ok := Sources[i.Source]
	if !ok {
		return fmt.Errorf("invalid cache source '%s'; valid sources are: %s", i.Source, strings.Join(sourceNames(), ", "))
	}

	cacheInstance, err := GetGlobalCache()
	if err != nil {
		return fmt.Errorf("failed to open cache database: %w", err)
	}
	if cacheInstance.Path() == MemoryDB {
		return ErrMemoryCache
	}

	slog.Info("Invalidating cache", "source", i.Source, "database", cacheInstance.Path(), "expired_only", i.Expired)

	var rowsDeleted int64
	if i.Expired {
		rowsDeleted, err = cacheInstance.ClearExpired(tableName, TTLFromConfig())
	} else {
		rowsDeleted, err = cacheInstance.InvalidateSource(tableName)
	}
	if err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}

	slog.Info("Cache invalidated", "source", i.Source, "rows_deleted", rowsDeleted)
	return nil
}

func sourceNames() []string {
	names := make([]string, 0, len(Sources))
	for name := range Sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
