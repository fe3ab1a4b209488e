// Package dictionary looks up definitions for vocabulary words.
package dictionary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Definition is everything known about a word's meaning.
type Definition struct {
	Word          string   `json:"word"`
	Definition    string   `json:"definition"`
	PartOfSpeech  string   `json:"partOfSpeech"`
	Pronunciation string   `json:"pronunciation,omitempty"`
	Etymology     string   `json:"etymology,omitempty"`
	Examples      []string `json:"examples,omitempty"`
	Synonyms      []string `json:"synonyms,omitempty"`
	Antonyms      []string `json:"antonyms,omitempty"`
}

// Lookup finds the definition of word as used in sentence, which may be empty.
type Lookup interface {
	LookupDefinition(ctx context.Context, word, sentence string) (Definition, error)
}

// LookupFunc adapts a function to Lookup.
type LookupFunc func(ctx context.Context, word, sentence string) (Definition, error)

func (f LookupFunc) LookupDefinition(ctx context.Context, word, sentence string) (Definition, error) {
	return f(ctx, word, sentence)
}

// ErrNotFound is wrapped by LookupError when a source has no entry for a word.
var ErrNotFound = errors.New("no definition found")

// LookupError reports a failed lookup.
type LookupError struct {
	Word string
	Err  error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("lookup %q: %v", e.Word, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

// Fallback returns the generic definition used when no source can define word.
func Fallback(word, sentence string) Definition {
	def := Definition{
		Word:         word,
		Definition:   fmt.Sprintf("A word meaning related to %q. Look it up to learn its precise meaning.", word),
		PartOfSpeech: "unknown",
	}
	if c := strings.TrimSpace(sentence); c != "" {
		def.Examples = []string{c}
	}
	return def
}

type chain []Lookup

// Chain tries each lookup in order and returns the first success. If all fail,
// the last error is returned.
func Chain(lookups ...Lookup) Lookup {
	return chain(lookups)
}

func (c chain) LookupDefinition(ctx context.Context, word, sentence string) (Definition, error) {
	err := error(&LookupError{Word: word, Err: ErrNotFound})
	for _, l := range c {
		if l == nil {
			continue
		}
		def, lerr := l.LookupDefinition(ctx, word, sentence)
		if lerr == nil {
			return def, nil
		}
		err = lerr
	}
	return Definition{}, err
}

type withFallback struct {
	next   Lookup
	logger *slog.Logger
}

// WithFallback wraps l so that a LookupError is replaced by Fallback. Other
// errors, such as context cancellation, are returned unchanged.
func WithFallback(l Lookup, logger *slog.Logger) Lookup {
	if logger == nil {
		logger = slog.Default()
	}
	return &withFallback{next: l, logger: logger}
}

func (w *withFallback) LookupDefinition(ctx context.Context, word, sentence string) (Definition, error) {
	def, err := w.next.LookupDefinition(ctx, word, sentence)
	if err == nil {
		return def, nil
	}
	var lerr *LookupError
	if errors.As(err, &lerr) {
		w.logger.Warn("definition lookup failed, using fallback", "word", word, "error", err)
		return Fallback(word, sentence), nil
	}
	return Definition{}, err
}
