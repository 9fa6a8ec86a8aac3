package config

import (
	"log/slog"
	"time"

	"github.com/lepinkainen/booklist/internal/catalog"
	"github.com/spf13/viper"
)

// Default values for configuration keys
const (
	DefaultCacheDBFile  = ":memory:"
	DefaultCacheTTL     = "10m"
	DefaultFetchTimeout = 5 * time.Second
	DefaultWebAddr      = "127.0.0.1:8501"
	DefaultSessionTTL   = 2 * time.Hour
	DefaultRatePerSec   = 2
)

// Global configuration variables
var (
	// GoogleBooksAPIKey is the optional API key sent with search requests
	GoogleBooksAPIKey string
	// GoogleBooksBaseURL is the API root, overridable for testing against a local server
	GoogleBooksBaseURL string
	// GoogleBooksRate is the number of search requests allowed per second
	GoogleBooksRate int
	// ResultLimit is the maximum number of search results shown
	ResultLimit int
	// FetchTimeout bounds a single search round trip
	FetchTimeout time.Duration
	// Categories is the category key to search term mapping
	Categories []catalog.Category
	// Interactive enables the TUI picker in the terminal front end
	Interactive bool
	// WebAddr is the listen address of the web front end
	WebAddr string
	// SessionTTL is how long an idle web session is kept
	SessionTTL time.Duration
	// SessionRedisURL selects the Redis session store when set
	SessionRedisURL string
)

// SetDefaults registers the default value of every configuration key
func SetDefaults() {
	viper.SetDefault("googlebooks.baseurl", "https://www.googleapis.com/books/v1")
	viper.SetDefault("googlebooks.rate", DefaultRatePerSec)

	viper.SetDefault("catalog.limit", catalog.DefaultLimit)
	viper.SetDefault("catalog.timeout", DefaultFetchTimeout.String())

	viper.SetDefault("cache.dbfile", DefaultCacheDBFile)
	viper.SetDefault("cache.ttl", DefaultCacheTTL)

	viper.SetDefault("tui.interactive", false)

	viper.SetDefault("web.addr", DefaultWebAddr)
	viper.SetDefault("session.ttl", DefaultSessionTTL.String())
	viper.SetDefault("session.redis_url", "")
}

// InitConfig initializes the global configuration
func InitConfig() {
	SetDefaults()

	GoogleBooksAPIKey = viper.GetString("googlebooks.apikey")
	GoogleBooksBaseURL = viper.GetString("googlebooks.baseurl")
	GoogleBooksRate = viper.GetInt("googlebooks.rate")
	if GoogleBooksRate <= 0 {
		GoogleBooksRate = DefaultRatePerSec
	}

	ResultLimit = viper.GetInt("catalog.limit")
	if ResultLimit <= 0 || ResultLimit > catalog.DefaultLimit {
		slog.Warn("Invalid result limit, using default", "limit", ResultLimit, "default", catalog.DefaultLimit)
		ResultLimit = catalog.DefaultLimit
	}

	FetchTimeout = durationOr("catalog.timeout", DefaultFetchTimeout)
	Categories = loadCategories()

	Interactive = viper.GetBool("tui.interactive")

	WebAddr = viper.GetString("web.addr")
	SessionTTL = durationOr("session.ttl", DefaultSessionTTL)
	SessionRedisURL = viper.GetString("session.redis_url")
}

// SetInteractive sets the Interactive flag
func SetInteractive(interactive bool) {
	Interactive = interactive
}

func durationOr(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		slog.Warn("Invalid duration in config, using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}
	return d
}

func loadCategories() []catalog.Category {
	if !viper.IsSet("catalog.categories") {
		return catalog.DefaultCategories()
	}

	var categories []catalog.Category
	if err := viper.UnmarshalKey("catalog.categories", &categories); err != nil {
		slog.Warn("Invalid catalog.categories, using defaults", "error", err)
		return catalog.DefaultCategories()
	}

	valid := categories[:0]
	for _, c := range categories {
		if c.Key == "" || c.Term == "" {
			slog.Warn("Skipping incomplete category", "key", c.Key, "term", c.Term)
			continue
		}
		valid = append(valid, c)
	}
	if len(valid) == 0 {
		return catalog.DefaultCategories()
	}
	return valid
}
