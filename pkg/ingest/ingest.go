package ingest

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/japaniel/readlex/pkg/analysis"
	"github.com/japaniel/readlex/pkg/difficulty"
	"github.com/japaniel/readlex/pkg/readability"
	"github.com/japaniel/readlex/pkg/tokenize"
	"github.com/japaniel/readlex/pkg/vocabulary"
)

// WorkerPoolInterface abstracts the worker pool so tests can inject failing implementations.
type WorkerPoolInterface interface {
	Start(ctx context.Context)
	Submit(Job) error
	// SubmitCtx attempts to enqueue a job but returns promptly if ctx is canceled.
	SubmitCtx(ctx context.Context, job Job) error
	Close()
}

// Document is one text to ingest.
type Document struct {
	// ID keys the analysis cache. Name is used when ID is empty.
	ID       string
	Name     string
	Text     string
	SourceID int64
}

// Result is the outcome of ingesting one document.
type Result struct {
	Document Document
	Report   analysis.Report
	// Added holds the new vocabulary words taken from the document.
	Added []vocabulary.Word
	// Known holds candidate words that were already in the vocabulary.
	Known []vocabulary.Word
}

// Vocabulary is the part of vocabulary.Service the ingester writes to.
type Vocabulary interface {
	AddWord(ctx context.Context, term, sentence string, sourceID int64) (vocabulary.Word, error)
	FindTerm(term string) (vocabulary.Word, bool)
}

// SightingRecorder notes that a vocabulary word occurred in a source.
type SightingRecorder interface {
	RecordSighting(wordID string, sourceID int64, sentence string) error
}

// SightingFunc adapts a function to SightingRecorder.
type SightingFunc func(wordID string, sourceID int64, sentence string) error

func (f SightingFunc) RecordSighting(wordID string, sourceID int64, sentence string) error {
	return f(wordID, sourceID, sentence)
}

// Ingester analyses documents and adds their unknown words to a vocabulary.
type Ingester struct {
	Analyzer *analysis.Analyzer
	// Vocab receives candidate words. nil means analyse only.
	Vocab     Vocabulary
	Sightings SightingRecorder
	WPM       int
	Logger    *slog.Logger
	// OnProgress is called with the number of documents finished and the total.
	OnProgress func(current, total int)

	// Concurrency settings
	Workers int

	// PoolFactory allows tests to inject custom worker pool implementations.
	PoolFactory func(workers, queue int) WorkerPoolInterface
}

// NewIngester creates a new Ingester. A nil analyzer means a beginner-level
// English analyzer.
func NewIngester(a *analysis.Analyzer, vocab Vocabulary) *Ingester {
	if a == nil {
		a = analysis.New(difficulty.Beginner)
	}
	return &Ingester{
		Analyzer: a,
		Vocab:    vocab,
		Workers:  4, // Default worker count
	}
}

func (ig *Ingester) logger() *slog.Logger {
	if ig.Logger != nil {
		return ig.Logger
	}
	return slog.Default()
}

type analyzed struct {
	index  int
	report analysis.Report
}

type consumerDone struct {
	n   int
	err error
}

// Ingest analyses docs concurrently, then adds each document's unknown words to
// the vocabulary one at a time in document order. It returns the results of the
// documents that finished, in order, and the first error that stopped the run.
func (ig *Ingester) Ingest(ctx context.Context, docs []Document) ([]Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}

	workers := ig.Workers
	if workers <= 0 {
		workers = 1
	}
	var wp WorkerPoolInterface
	if ig.PoolFactory != nil {
		wp = ig.PoolFactory(workers, workers*2)
	} else {
		wp = NewWorkerPool(workers, workers*2)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Sized so workers never block on a consumer that stopped early.
	resultCh := make(chan analyzed, len(docs))
	doneCh := make(chan consumerDone, 1)
	results := make([]Result, len(docs))

	wp.Start(ctx)

	go func() {
		buffer := make(map[int]analyzed)
		next := 0
		for res := range resultCh {
			buffer[res.index] = res
			for {
				item, ok := buffer[next]
				if !ok {
					break
				}
				delete(buffer, next)

				r, err := ig.addCandidates(ctx, docs[next], item.report)
				results[next] = r
				if err != nil {
					// Signal producers to stop.
					cancel()
					doneCh <- consumerDone{n: next, err: err}
					return
				}
				next++
				if ig.OnProgress != nil {
					ig.OnProgress(next, len(docs))
				}
			}
		}
		var err error
		if next < len(docs) {
			err = ctx.Err()
		}
		doneCh <- consumerDone{n: next, err: err}
	}()

	var submitErr error
	for i := range docs {
		idx := i
		job := func(ctx context.Context) error {
			resultCh <- analyzed{index: idx, report: ig.analyze(docs[idx])}
			return nil
		}
		// Submit job to the worker pool but remain responsive to context cancellation.
		if err := wp.SubmitCtx(ctx, job); err != nil {
			submitErr = err
			break
		}
	}

	// Wait for workers, then tell the consumer no more results are coming.
	wp.Close()
	close(resultCh)
	done := <-doneCh

	err := done.err
	if err == nil {
		err = submitErr
	}
	if err == nil && done.n < len(docs) {
		err = ctx.Err()
	}
	return results[:done.n], err
}

func (ig *Ingester) analyze(doc Document) analysis.Report {
	key := doc.ID
	if key == "" {
		key = doc.Name
	}
	if key == "" {
		return ig.Analyzer.Analyze(doc.Text, ig.WPM)
	}
	return ig.Analyzer.AnalyzeCached(key, doc.Text, ig.WPM)
}

func (ig *Ingester) addCandidates(ctx context.Context, doc Document, report analysis.Report) (Result, error) {
	res := Result{Document: doc, Report: report}
	if ig.Vocab == nil {
		return res, nil
	}

	for _, term := range report.UnknownWords {
		sentence := contextSentence(doc.Text, term)
		w, err := ig.Vocab.AddWord(ctx, term, sentence, doc.SourceID)
		switch {
		case err == nil:
			res.Added = append(res.Added, w)
		case errors.Is(err, vocabulary.ErrDuplicateWord):
			existing, ok := ig.Vocab.FindTerm(term)
			if !ok {
				continue
			}
			w = existing
			res.Known = append(res.Known, w)
		default:
			return res, err
		}
		ig.recordSighting(w.ID, doc.SourceID, sentence)
	}
	ig.logger().Debug("document ingested",
		"document", doc.Name,
		"added", len(res.Added),
		"known", len(res.Known))
	return res, nil
}

func (ig *Ingester) recordSighting(wordID string, sourceID int64, sentence string) {
	if ig.Sightings == nil || sourceID <= 0 {
		return
	}
	if err := ig.Sightings.RecordSighting(wordID, sourceID, sentence); err != nil {
		ig.logger().Warn("failed to record sighting", "word", wordID, "source", sourceID, "error", err)
	}
}

const maxContextRunes = 300

// contextSentence returns the first sentence of text that mentions term.
func contextSentence(text, term string) string {
	var sentences []string
	if strings.ContainsAny(text, "。！？") {
		sentences = tokenize.SplitJapaneseSentences(text)
	} else {
		sentences = readability.Sentences(text)
	}
	needle := strings.ToLower(term)
	for _, s := range sentences {
		if !strings.Contains(strings.ToLower(s), needle) {
			continue
		}
		s = strings.Join(strings.Fields(s), " ")
		if utf8.RuneCountInString(s) > maxContextRunes {
			s = string([]rune(s)[:maxContextRunes])
		}
		return s
	}
	return ""
}
