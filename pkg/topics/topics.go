// Package topics extracts the most characteristic terms of a single document.
package topics

import (
	_ "embed"
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/japaniel/readlex/pkg/tokenize"
)

// Topic is a scored term.
type Topic struct {
	Term      string  `json:"term"`
	Frequency int     `json:"frequency"`
	Score     float64 `json:"score"`
}

const (
	DefaultMinLength = 3
	DefaultLimit     = 5
)

//go:embed stopwords.txt
var stopwordsRaw string

var stopwords = func() map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(stopwordsRaw) {
		set[w] = struct{}{}
	}
	return set
}()

// IsStopWord reports whether w is in the built-in English stop-word list.
func IsStopWord(w string) bool {
	_, ok := stopwords[w]
	return ok
}

// Plain lowercases text, drops punctuation and splits on whitespace.
type Plain struct{}

func (Plain) Words(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			return unicode.ToLower(r)
		case unicode.IsSpace(r):
			return ' '
		default:
			return -1
		}
	}, text)
	return strings.Fields(cleaned)
}

// Extractor scores terms. The zero value uses Plain tokenization, the built-in
// stop words and DefaultMinLength.
type Extractor struct {
	Tokenizer tokenize.Tokenizer
	// Tokens with a rune count at or below MinLength are ignored. Zero means
	// DefaultMinLength; a negative value keeps tokens of every length.
	MinLength int
	Limit     int
	// StopWords replaces the built-in list when non-nil.
	StopWords map[string]struct{}
}

// Extract returns the top 5 topics of text using the default extractor.
func Extract(text string) []Topic {
	return (&Extractor{}).Extract(text)
}

// Extract scores each surviving term by (f/N)*ln(N/f), where N is the number of
// surviving tokens. A term making up the whole document scores 0.
func (e *Extractor) Extract(text string) []Topic {
	tok := e.Tokenizer
	if tok == nil {
		tok = Plain{}
	}
	stop := e.StopWords
	if stop == nil {
		stop = stopwords
	}
	limit := e.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	minLen := e.MinLength
	if minLen == 0 {
		minLen = DefaultMinLength
	}

	counts := make(map[string]int)
	var order []string
	total := 0
	for _, w := range tok.Words(text) {
		if utf8.RuneCountInString(w) <= minLen {
			continue
		}
		if _, ok := stop[w]; ok {
			continue
		}
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
		total++
	}
	if total == 0 {
		return nil
	}

	n := float64(total)
	out := make([]Topic, 0, len(order))
	for _, term := range order {
		f := float64(counts[term])
		out = append(out, Topic{
			Term:      term,
			Frequency: counts[term],
			Score:     (f / n) * math.Log(n/f),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Terms returns just the terms of topics.
func Terms(topics []Topic) []string {
	terms := make([]string, len(topics))
	for i, t := range topics {
		terms[i] = t.Term
	}
	return terms
}
