package cmd

import (
	"errors"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/lepinkainen/humanlog"
	"github.com/spf13/viper"

	"github.com/lepinkainen/booklist/cmd/browse"
	"github.com/lepinkainen/booklist/cmd/serve"
	"github.com/lepinkainen/booklist/internal/cache"
	"github.com/lepinkainen/booklist/internal/config"
)

// CLI represents the complete command structure for the booklist application
type CLI struct {
	// Global flags
	LogLevel    string `help:"Log level (debug, info, warn, error)" default:"info" env:"BOOKLIST_LOG_LEVEL"`
	Interactive bool   `help:"Use the interactive picker when choosing favorites in the terminal"`

	// Cache flags
	CacheDBFile string `help:"Path to cache SQLite database file (:memory: keeps it in process)"`
	CacheTTL    string `help:"Cache time-to-live duration (e.g., 10m)"`

	Browse browse.BrowseCmd `cmd:"" default:"1" help:"Browse books from the terminal menu"`
	Search browse.SearchCmd `cmd:"" help:"Print the results for one category and exit"`
	Serve  serve.ServeCmd   `cmd:"" help:"Serve the web front end"`
	Cache  CacheCmd         `cmd:"" help:"Manage the search response cache"`
}

// CacheCmd groups cache maintenance commands
type CacheCmd struct {
	Invalidate cache.InvalidateCacheCmd `cmd:"" help:"Drop cached search responses"`
}

// Execute runs the Kong-based CLI
func Execute() {
	var cli CLI

	ctx := kong.Parse(&cli,
		kong.Name("booklist"),
		kong.Description("Browse books by category, keep favorites and your own list."),
		kong.UsageOnError(),
	)

	initLogging(cli.LogLevel)
	if err := initConfig(); err != nil {
		slog.Error("Fatal error in config file", "error", err)
		os.Exit(1)
	}

	updateGlobalConfig(&cli)

	if err := ctx.Run(); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func initConfig() error {
	// a missing .env is the common case
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	config.SetDefaults()

	viper.SetEnvPrefix("BOOKLIST")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	if err := viper.BindEnv("googlebooks.apikey", "BOOKLIST_GOOGLEBOOKS_APIKEY", "GOOGLE_BOOKS_API_KEY"); err != nil {
		slog.Error("Failed to bind environment variable", "error", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
		slog.Debug("Config file not found, using defaults")
	}

	config.InitConfig()
	return nil
}

func updateGlobalConfig(cli *CLI) {
	if cli.Interactive {
		config.SetInteractive(true)
	}

	if cli.CacheDBFile != "" {
		viper.Set("cache.dbfile", cli.CacheDBFile)
	}
	if cli.CacheTTL != "" {
		viper.Set("cache.ttl", cli.CacheTTL)
	}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func initLogging(level string) {
	// logs go to stderr so they never mix with menu output
	handler := humanlog.NewHandler(os.Stderr, &humanlog.Options{
		Level: parseLevel(level),
	})

	slog.SetDefault(slog.New(handler))
}
