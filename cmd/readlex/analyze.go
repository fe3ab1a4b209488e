package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/japaniel/readlex/pkg/analysis"
	"github.com/japaniel/readlex/pkg/db"
	"github.com/japaniel/readlex/pkg/ingest"
)

// input is a document to analyse plus where it came from.
type input struct {
	doc        ingest.Document
	sourceType string
	title      string
	author     string
	website    string
	url        string
}

func newAnalyzeCmd(o *rootOptions) *cobra.Command {
	var (
		urls   []string
		wpm    int
		level  string
		lang   string
		add    bool
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "analyze [files...]",
		Short: "Analyse texts for readability, difficulty and topics",
		Long: "Analyse text files, web pages (--url) or standard input. With --add, words above\n" +
			"the reader level are added to the vocabulary with their context sentence.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.applyReadingFlags(cmd, wpm, level, lang); err != nil {
				return err
			}
			ctx := cmd.Context()
			inputs, err := collectInputs(ctx, cmd.InOrStdin(), args, urls)
			if err != nil {
				return err
			}
			return o.runAnalyze(ctx, cmd.OutOrStdout(), inputs, add, asJSON)
		},
	}
	cmd.Flags().StringSliceVar(&urls, "url", nil, "web page to fetch and analyse (repeatable)")
	addReadingFlags(cmd, &wpm, &level, &lang)
	cmd.Flags().BoolVar(&add, "add", false, "add unknown words to the vocabulary")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print reports as JSON")
	return cmd
}

func collectInputs(ctx context.Context, stdin io.Reader, paths, urls []string) ([]input, error) {
	var inputs []input
	for _, path := range paths {
		if path == "-" {
			in, err := readStdin(stdin)
			if err != nil {
				return nil, err
			}
			inputs = append(inputs, in)
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		inputs = append(inputs, input{
			doc:        ingest.Document{ID: abs, Name: path, Text: string(data)},
			sourceType: "file",
			title:      filepath.Base(path),
			url:        "file://" + filepath.ToSlash(abs),
		})
	}

	for _, u := range urls {
		article, err := ingest.Fetch(ctx, u)
		if err != nil {
			return nil, err
		}
		name := article.Title
		if name == "" {
			name = u
		}
		inputs = append(inputs, input{
			doc:        ingest.Document{ID: u, Name: name, Text: article.Text},
			sourceType: "website_article",
			title:      article.Title,
			author:     article.Byline,
			website:    article.SiteName,
			url:        u,
		})
	}

	if len(inputs) == 0 {
		in, err := readStdin(stdin)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

func readStdin(r io.Reader) (input, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return input{}, fmt.Errorf("failed to read stdin: %w", err)
	}
	return input{doc: ingest.Document{Name: "stdin", Text: string(data)}, sourceType: "stdin"}, nil
}

type jsonResult struct {
	Name   string          `json:"name"`
	Report analysis.Report `json:"report"`
	Added  []string        `json:"added,omitempty"`
}

func (o *rootOptions) runAnalyze(ctx context.Context, out io.Writer, inputs []input, add, asJSON bool) error {
	analyzer, err := o.analyzer()
	if err != nil {
		return err
	}

	docs := make([]ingest.Document, len(inputs))
	for i, in := range inputs {
		docs[i] = in.doc
	}

	ig := ingest.NewIngester(analyzer, nil)
	ig.WPM = o.settings.WPM
	ig.Logger = o.logger
	if add {
		a, err := o.open(ctx)
		if err != nil {
			return err
		}
		defer a.close(o)
		for i, in := range inputs {
			if in.sourceType == "stdin" {
				continue
			}
			id, err := db.CreateOrGetSource(a.conn, in.sourceType, in.title, in.author, in.website, in.url, "")
			if err != nil {
				return fmt.Errorf("failed to persist source: %w", err)
			}
			docs[i].SourceID = id
		}
		ig.Vocab = a.svc
		ig.Sightings = ingest.SightingFunc(func(wordID string, sourceID int64, sentence string) error {
			return db.RecordSighting(a.conn, wordID, sourceID, sentence, 1)
		})
	}

	results, ingestErr := ig.Ingest(ctx, docs)

	if asJSON {
		payload := make([]jsonResult, len(results))
		for i, r := range results {
			payload[i] = jsonResult{Name: r.Document.Name, Report: r.Report, Added: terms(r.Added)}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(payload); err != nil {
			return err
		}
		return ingestErr
	}

	for i, r := range results {
		if i > 0 {
			fmt.Fprintln(out)
		}
		printReport(out, r.Document.Name, r.Report)
		if add {
			if len(r.Added) > 0 {
				fmt.Fprintf(out, "%s %s\n", labelStyle.Render("Added:"), strings.Join(terms(r.Added), ", "))
			}
			if len(r.Known) > 0 {
				fmt.Fprintf(out, "%s %s\n", labelStyle.Render("Already learning:"), strings.Join(terms(r.Known), ", "))
			}
		}
	}
	return ingestErr
}

func newWatchCmd(o *rootOptions) *cobra.Command {
	var (
		wpm   int
		level string
		lang  string
	)
	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-analyse a file whenever it changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.applyReadingFlags(cmd, wpm, level, lang); err != nil {
				return err
			}
			analyzer, err := o.analyzer()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			var mu sync.Mutex
			live := analysis.NewLive(analyzer, o.settings.WPM, time.Duration(o.settings.DebounceMS)*time.Millisecond, func(r analysis.Report) {
				mu.Lock()
				defer mu.Unlock()
				fmt.Fprintln(out)
				printReport(out, args[0]+" @ "+time.Now().Format(time.TimeOnly), r)
			})
			defer live.Stop()
			return watchFile(cmd.Context(), args[0], o.logger, live.Update)
		},
	}
	addReadingFlags(cmd, &wpm, &level, &lang)
	return cmd
}

// watchFile calls update with the file's contents now and after every change,
// until ctx is done. The parent directory is watched so that editors which
// save by renaming a new file over the old one are followed.
func watchFile(ctx context.Context, path string, logger *slog.Logger, update func(string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	path = filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	last := string(data)
	update(last)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			data, err := os.ReadFile(path)
			if err != nil {
				// Removed or mid-replace; the next Create brings it back.
				continue
			}
			if text := string(data); text != last {
				last = text
				update(text)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("file watcher error", "path", path, "error", err)
		}
	}
}
