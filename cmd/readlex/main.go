// Package main provides the CLI entrypoint for readlex.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/japaniel/readlex/internal/config"
	"github.com/japaniel/readlex/pkg/analysis"
	"github.com/japaniel/readlex/pkg/db"
	"github.com/japaniel/readlex/pkg/dictionary"
	"github.com/japaniel/readlex/pkg/difficulty"
	"github.com/japaniel/readlex/pkg/tokenize"
	"github.com/japaniel/readlex/pkg/vocabulary"
)

const version = "0.2.0"

func main() {
	// Setup context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// rootOptions carries the resolved settings shared by every command.
type rootOptions struct {
	configPath string
	dbPath     string
	verbose    bool

	settings config.Settings
	logger   *slog.Logger
}

func newRootCmd() *cobra.Command {
	o := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:           "readlex",
		Short:         "Reading analysis and spaced-repetition vocabulary trainer",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return o.load(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&o.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/readlex/config.toml)")
	rootCmd.PersistentFlags().StringVar(&o.dbPath, "db", "", "SQLite database path (default: $XDG_DATA_HOME/readlex/readlex.db)")
	rootCmd.PersistentFlags().BoolVarP(&o.verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newAnalyzeCmd(o))
	rootCmd.AddCommand(newWatchCmd(o))
	rootCmd.AddCommand(newAddCmd(o))
	rootCmd.AddCommand(newWordsCmd(o))
	rootCmd.AddCommand(newShowCmd(o))
	rootCmd.AddCommand(newRemoveCmd(o))
	rootCmd.AddCommand(newResetCmd(o))
	rootCmd.AddCommand(newDueCmd(o))
	rootCmd.AddCommand(newReviewCmd(o))
	rootCmd.AddCommand(newStatsCmd(o))
	rootCmd.AddCommand(newSourcesCmd(o))
	rootCmd.AddCommand(newDemoCmd(o))
	rootCmd.AddCommand(newExportCmd(o))
	rootCmd.AddCommand(newImportCmd(o))
	rootCmd.AddCommand(newConfigCmd(o))
	rootCmd.AddCommand(newDictionaryCmd(o))

	return rootCmd
}

// load resolves settings: built-in defaults, then the config file, then the
// environment, then flags.
func (o *rootOptions) load(cmd *cobra.Command) error {
	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	o.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	path := o.configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	fileCfg, err := config.LoadConfig(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	s := config.Defaults()
	s.ApplyFile(fileCfg)
	s.ApplyEnv(os.Getenv)
	if cmd.Flags().Changed("db") {
		s.DBPath = o.dbPath
	}
	o.settings = s
	return o.settings.Validate()
}

// applyReadingFlags overrides the reading settings with any flags the user set.
func (o *rootOptions) applyReadingFlags(cmd *cobra.Command, wpm int, level, lang string) error {
	if cmd.Flags().Changed("wpm") {
		o.settings.WPM = wpm
	}
	if cmd.Flags().Changed("level") {
		o.settings.Level = level
	}
	if cmd.Flags().Changed("lang") {
		o.settings.Lang = lang
	}
	return o.settings.Validate()
}

func addReadingFlags(cmd *cobra.Command, wpm *int, level, lang *string) {
	cmd.Flags().IntVar(wpm, "wpm", analysis.DefaultWPM, "reading speed in words per minute")
	cmd.Flags().StringVar(level, "level", difficulty.Beginner.String(), "reader level: beginner, intermediate, advanced or expert")
	cmd.Flags().StringVar(lang, "lang", "en", "text language: en or ja")
}

func (o *rootOptions) analyzer() (*analysis.Analyzer, error) {
	level, err := difficulty.ParseLevel(o.settings.Level)
	if err != nil {
		return nil, err
	}
	a := analysis.New(level)
	a.Cache = analysis.NewCache(o.settings.CacheSize)
	a.Logger = o.logger
	if o.settings.Lang == "ja" {
		ja, err := tokenize.NewJapanese()
		if err != nil {
			return nil, fmt.Errorf("failed to create Japanese tokenizer: %w", err)
		}
		// Japanese content words are often one or two characters long.
		a.Tokenizer = ja
		a.Detector.Tokenizer = ja
		a.Detector.MinLength = 0
		a.Extractor.Tokenizer = ja
		a.Extractor.MinLength = -1
	}
	return a, nil
}

// lookup builds the definition source: an offline dictionary file and an LLM
// when configured, with the generic fallback behind them.
func (o *rootOptions) lookup() (dictionary.Lookup, error) {
	var lookups []dictionary.Lookup

	path := o.settings.DictionaryFile
	if path == "" && o.settings.Lang == "ja" {
		if _, err := os.Stat(config.DefaultDictionaryPath()); err == nil {
			path = config.DefaultDictionaryPath()
		}
	}
	if path != "" {
		f, err := dictionary.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load dictionary: %w", err)
		}
		o.logger.Debug("dictionary loaded", "path", path, "entries", f.Len())
		lookups = append(lookups, f)
	}

	if o.settings.APIKey != "" {
		lookups = append(lookups, dictionary.NewLLM(dictionary.LLMConfig{
			APIKey:            o.settings.APIKey,
			BaseURL:           o.settings.BaseURL,
			Model:             o.settings.Model,
			RequestsPerMinute: o.settings.RequestsPerMinute,
			Logger:            o.logger,
		}))
	}

	return dictionary.WithFallback(dictionary.Chain(lookups...), o.logger), nil
}

// app is an opened vocabulary backed by the SQLite store.
type app struct {
	conn  *sql.DB
	store *db.Store
	svc   *vocabulary.Service
}

func (o *rootOptions) open(ctx context.Context) (*app, error) {
	path := o.settings.DBPath
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	conn, err := db.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	lookup, err := o.lookup()
	if err != nil {
		conn.Close()
		return nil, err
	}
	store := db.NewStore(conn, o.logger)
	svc := vocabulary.NewService(store, lookup, vocabulary.Options{
		WeeklyGoal:  o.settings.WeeklyGoal,
		SessionSize: o.settings.SessionSize,
		Logger:      o.logger,
	})
	// A vocabulary that cannot be read is an error, never an empty start.
	if err := svc.Load(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return &app{conn: conn, store: store, svc: svc}, nil
}

func (a *app) close(o *rootOptions) {
	if err := a.conn.Close(); err != nil {
		o.logger.Error("failed to close db", "error", err)
	}
}

func (a *app) resolveWord(arg string) (vocabulary.Word, error) {
	if w, ok := a.svc.Word(arg); ok {
		return w, nil
	}
	if w, ok := a.svc.FindTerm(arg); ok {
		return w, nil
	}
	return vocabulary.Word{}, fmt.Errorf("no word %q in vocabulary", arg)
}
