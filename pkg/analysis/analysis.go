// Package analysis aggregates readability, vocabulary and topic measures of a text
// into a single report with reading recommendations.
package analysis

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/japaniel/readlex/pkg/difficulty"
	"github.com/japaniel/readlex/pkg/readability"
	"github.com/japaniel/readlex/pkg/tokenize"
	"github.com/japaniel/readlex/pkg/topics"
)

// DefaultWPM is the reading speed used when none is given.
const DefaultWPM = 250

// Vocabulary summarises the words of a text.
type Vocabulary struct {
	TotalWords  int `json:"total_words"`
	UniqueWords int `json:"unique_words"`
	// ComplexityPct is the share of unique words outside the common-words set.
	ComplexityPct int `json:"complexity_pct"`
}

// Report is the result of analysing one text.
type Report struct {
	Readability     readability.Scores `json:"readability"`
	Vocabulary      Vocabulary         `json:"vocabulary"`
	UnknownWords    []string           `json:"unknown_words,omitempty"`
	Topics          []topics.Topic     `json:"topics,omitempty"`
	ReadingMinutes  int                `json:"reading_minutes"`
	Difficulty      string             `json:"difficulty,omitempty"`
	Recommendations []string           `json:"recommendations,omitempty"`
}

// Empty reports whether r is the zero report produced for blank input.
func (r Report) Empty() bool {
	return r.Vocabulary.TotalWords == 0
}

// Analyzer runs the analysis pipeline. The zero value is not usable; use New.
type Analyzer struct {
	// Level is the reader level used for unknown-word detection.
	Level     difficulty.Level
	Detector  *difficulty.Detector
	Extractor *topics.Extractor
	Tokenizer tokenize.Tokenizer
	Cache     *Cache
	Logger    *slog.Logger
}

// New returns an analyzer for English text with an unbounded cache.
func New(level difficulty.Level) *Analyzer {
	return &Analyzer{
		Level:     level,
		Detector:  difficulty.NewDetector(),
		Extractor: &topics.Extractor{MinLength: topics.DefaultMinLength},
		Tokenizer: tokenize.English{},
		Cache:     NewCache(0),
	}
}

var defaultAnalyzer = New(difficulty.Beginner)

// Analyze analyses text for a beginner reader at wpm words per minute.
func Analyze(text string, wpm int) Report {
	return defaultAnalyzer.Analyze(text, wpm)
}

func (a *Analyzer) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}

// Analyze builds a report for text. Blank text yields a zero Report.
func (a *Analyzer) Analyze(text string, wpm int) Report {
	if strings.TrimSpace(text) == "" {
		return Report{}
	}
	if wpm <= 0 {
		wpm = DefaultWPM
	}

	scores := readability.Score(text)
	vocab := a.vocabulary(text, scores.Words)
	tops := a.Extractor.Extract(text)

	r := Report{
		Readability:    scores,
		Vocabulary:     vocab,
		UnknownWords:   a.Detector.Detect(text, a.Level),
		Topics:         tops,
		ReadingMinutes: int(math.Ceil(float64(scores.Words) / float64(wpm))),
		Difficulty:     Label(scores.FleschKincaid, scores.SMOG),
	}
	r.Recommendations = recommend(r)
	return r
}

// AnalyzeCached returns the cached report for id, computing and storing it on a miss.
func (a *Analyzer) AnalyzeCached(id, text string, wpm int) Report {
	if a.Cache != nil {
		if r, ok := a.Cache.Get(id); ok {
			a.logger().Debug("analysis cache hit", "id", id)
			return r
		}
	}
	r := a.Analyze(text, wpm)
	if a.Cache != nil {
		a.Cache.Put(id, r)
	}
	return r
}

func (a *Analyzer) vocabulary(text string, total int) Vocabulary {
	tok := a.Tokenizer
	if tok == nil {
		tok = tokenize.English{}
	}
	unique := make(map[string]struct{})
	known := 0
	for _, w := range tok.Words(text) {
		if _, ok := unique[w]; ok {
			continue
		}
		unique[w] = struct{}{}
		if a.isCommon(w) {
			known++
		}
	}
	v := Vocabulary{TotalWords: total, UniqueWords: len(unique)}
	if len(unique) > 0 {
		ratio := float64(known) / float64(len(unique))
		v.ComplexityPct = clampPct(int(math.Round(100 * (1 - ratio))))
	}
	return v
}

// isCommon checks the fixed common-words set: the beginner and intermediate
// lists plus the stop words. It does not depend on the reader's level.
func (a *Analyzer) isCommon(w string) bool {
	return a.Detector.Known(w, difficulty.Intermediate) || topics.IsStopWord(w)
}

func clampPct(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// Label maps readability scores to a difficulty label.
func Label(fleschKincaid, smog int) string {
	combined := float64(fleschKincaid+smog*10) / 2
	switch {
	case combined >= 80:
		return "Beginner"
	case combined >= 60:
		return "Intermediate"
	case combined >= 40:
		return "Advanced"
	default:
		return "Expert"
	}
}

func recommend(r Report) []string {
	var recs []string
	fk := r.Readability.FleschKincaid
	if fk < 30 {
		recs = append(recs, "Dense text: read in chunks of 3-4 words per fixation instead of word by word.")
	}
	if fk >= 70 {
		recs = append(recs, "Easy text: use a pacer and push about 20% above your usual speed.")
	}
	if r.Vocabulary.ComplexityPct > 70 {
		recs = append(recs, "Rich vocabulary: preview the unfamiliar words before you start.")
	}
	if r.ReadingMinutes > 15 {
		recs = append(recs, fmt.Sprintf("Long read (about %d min): split it into sessions of 10-15 minutes.", r.ReadingMinutes))
	}
	if len(r.Topics) > 0 {
		terms := topics.Terms(r.Topics)
		if len(terms) > 3 {
			terms = terms[:3]
		}
		recs = append(recs, "Key topics: "+strings.Join(terms, ", "))
	}
	return recs
}
