package testutil

import (
	"testing"
	"time"

	"github.com/lepinkainen/booklist/internal/catalog"
	"github.com/lepinkainen/booklist/internal/config"
	"github.com/spf13/viper"
)

// ConfigState holds the state of the config package variables.
type ConfigState struct {
	GoogleBooksAPIKey  string
	GoogleBooksBaseURL string
	GoogleBooksRate    int
	ResultLimit        int
	FetchTimeout       time.Duration
	Categories         []catalog.Category
	Interactive        bool
	WebAddr            string
	SessionTTL         time.Duration
	SessionRedisURL    string
}

// SaveConfigState captures the current state of config package variables.
func SaveConfigState() ConfigState {
	return ConfigState{
		GoogleBooksAPIKey:  config.GoogleBooksAPIKey,
		GoogleBooksBaseURL: config.GoogleBooksBaseURL,
		GoogleBooksRate:    config.GoogleBooksRate,
		ResultLimit:        config.ResultLimit,
		FetchTimeout:       config.FetchTimeout,
		Categories:         config.Categories,
		Interactive:        config.Interactive,
		WebAddr:            config.WebAddr,
		SessionTTL:         config.SessionTTL,
		SessionRedisURL:    config.SessionRedisURL,
	}
}

// RestoreConfigState restores the config package variables to a saved state.
func RestoreConfigState(state ConfigState) {
	config.GoogleBooksAPIKey = state.GoogleBooksAPIKey
	config.GoogleBooksBaseURL = state.GoogleBooksBaseURL
	config.GoogleBooksRate = state.GoogleBooksRate
	config.ResultLimit = state.ResultLimit
	config.FetchTimeout = state.FetchTimeout
	config.Categories = state.Categories
	config.Interactive = state.Interactive
	config.WebAddr = state.WebAddr
	config.SessionTTL = state.SessionTTL
	config.SessionRedisURL = state.SessionRedisURL
}

// ResetConfig saves the current config state, resets viper and loads the
// defaults. Everything is restored when the test completes.
func ResetConfig(t *testing.T) {
	t.Helper()

	state := SaveConfigState()
	viper.Reset()
	config.InitConfig()

	t.Cleanup(func() {
		RestoreConfigState(state)
		viper.Reset()
	})
}

// SetViperValue sets a viper configuration value and schedules cleanup.
func SetViperValue(t *testing.T, key string, value any) {
	t.Helper()

	oldValue := viper.Get(key)
	hadValue := viper.IsSet(key)

	viper.Set(key, value)

	t.Cleanup(func() {
		if hadValue {
			viper.Set(key, oldValue)
		}
		// Note: viper doesn't have an Unset function, so we can't
		// restore the "unset" state.
	})
}

// SetupTestCache points the response cache at a database inside the test
// environment and returns its path. Callers reset the global cache.
func SetupTestCache(t *testing.T, env *TestEnv) string {
	t.Helper()

	dbPath := env.Path("test-cache.db")
	SetViperValue(t, "cache.dbfile", dbPath)
	SetViperValue(t, "cache.ttl", "1h")

	return dbPath
}
