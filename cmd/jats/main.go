// Package main provides the jats CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matsen/jats/internal/config"
	"github.com/matsen/jats/internal/doctree"
	"github.com/matsen/jats/internal/logging"
	"github.com/matsen/jats/internal/storage"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	configPath  string
	logLevel    string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "jats",
	Short: "Export manuscript document trees as JATS XML",
	Long: `jats converts manuscript document trees (JSON) into JATS XML.

Citations are rendered through a built-in CSL processor (vancouver, apa)
from a CSL-JSON bibliography stored as JSONL, with an optional SQLite
cache for lookups.

Commands that report results output JSON by default.
Use --human for human-readable output.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Load .env file if present (for JATS_* overrides)
	_ = godotenv.Load()

	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/jats/config.yml, or $JATS_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.Version = Version
}

// mustLoadConfig loads configuration, exits on error.
func mustLoadConfig() *config.Config {
	cfg, err := config.Load(config.Path(configPath))
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// newLogger builds the stderr logger; --log-level wins over the config.
func newLogger(cfg *config.Config) *zap.Logger {
	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	return logging.New(level)
}

// mustLoadDocument reads a document tree, exits on error.
func mustLoadDocument(path string) *doctree.Node {
	root, err := doctree.Load(path)
	if err != nil {
		exitWithError(ExitDataError, "loading document: %v", err)
	}
	return root
}

// mustLoadLibrary reads the JSONL bibliography, exits on error.
func mustLoadLibrary(path string) *storage.Library {
	lib, err := storage.LoadLibrary(path)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	return lib
}

// mustOpenDatabase opens the SQLite cache, exits on error.
// The caller is responsible for calling Close() on the returned DB.
func mustOpenDatabase(path string) *storage.DB {
	db, err := storage.OpenDB(path)
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	return db
}
