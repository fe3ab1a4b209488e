package main

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/japaniel/readlex/internal/config"
	"github.com/japaniel/readlex/pkg/db"
	"github.com/japaniel/readlex/pkg/dictionary"
)

func newExportCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file|->",
		Short: "Export the vocabulary and review history as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close(o)

			snap := a.svc.Snapshot()
			if args[0] == "-" {
				return db.ExportJSON(cmd.OutOrStdout(), snap)
			}
			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", args[0], err)
			}
			if err := db.ExportJSON(f, snap); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d words and %d sessions to %s\n", len(snap.Words), len(snap.Sessions), args[0])
			return nil
		},
	}
}

func newImportCmd(o *rootOptions) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "import <file|->",
		Short: "Replace the vocabulary with a JSON export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open %s: %w", args[0], err)
				}
				defer f.Close()
				r = f
			}
			snap, err := db.ImportJSON(r)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := o.open(ctx)
			if err != nil {
				return err
			}
			defer a.close(o)

			if n := len(a.svc.Words()); n > 0 && !force {
				return fmt.Errorf("vocabulary already has %d words; use --force to replace it", n)
			}
			if err := a.store.Save(ctx, snap); err != nil {
				return err
			}
			if err := a.svc.Load(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d words and %d sessions.\n", len(snap.Words), len(snap.Sessions))
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "replace an existing vocabulary")
	return cmd
}

func newConfigCmd(o *rootOptions) *cobra.Command {
	var edit bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create the config file and show the resolved settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := o.configPath
			if path == "" {
				path = config.DefaultConfigPath()
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return fmt.Errorf("failed to create config directory: %w", err)
			}
			if _, err := os.Stat(path); err != nil {
				if !os.IsNotExist(err) {
					return fmt.Errorf("failed to stat config: %w", err)
				}
				if err := os.WriteFile(path, []byte(config.DefaultTemplate()), 0o644); err != nil {
					return fmt.Errorf("failed to write config: %w", err)
				}
			}

			if edit {
				return openEditor(path)
			}

			s := o.settings
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "config:     %s\n", path)
			fmt.Fprintf(out, "database:   %s\n", s.DBPath)
			fmt.Fprintf(out, "reading:    %d wpm, %s, %s\n", s.WPM, s.Level, s.Lang)
			fmt.Fprintf(out, "review:     %d words per session, weekly goal %d\n", s.SessionSize, s.WeeklyGoal)
			fmt.Fprintf(out, "dictionary: %s (%s), api key %s\n", s.BaseURL, s.Model, maskKey(s.APIKey))
			if s.DictionaryFile != "" {
				fmt.Fprintf(out, "            file %s\n", s.DictionaryFile)
			}
			fmt.Fprintf(out, "analysis:   cache %d, debounce %dms\n", s.CacheSize, s.DebounceMS)
			return nil
		},
	}
	cmd.Flags().BoolVar(&edit, "edit", false, "open the config file in $EDITOR")
	return cmd
}

func maskKey(key string) string {
	if key == "" {
		return "not set"
	}
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}

func openEditor(path string) error {
	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newDictionaryCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dictionary",
		Short: "Manage the offline dictionary",
	}
	var path string
	download := &cobra.Command{
		Use:   "download",
		Short: "Download the JMdict English dictionary for Japanese texts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if path == "" {
				path = config.DefaultDictionaryPath()
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return fmt.Errorf("failed to create dictionary directory: %w", err)
			}
			d := &dictionary.Downloader{Logger: o.logger}
			if err := d.EnsureJMdict(cmd.Context(), path); err != nil {
				return err
			}
			info, err := os.Stat(path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Dictionary ready at %s (%s)\n", path, humanize.Bytes(uint64(info.Size())))
			return nil
		},
	}
	download.Flags().StringVar(&path, "path", "", "where to store the dictionary (default: $XDG_DATA_HOME/readlex/jmdict-eng.json)")
	cmd.AddCommand(download)
	return cmd
}
