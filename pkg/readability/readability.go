// Package readability computes Flesch-Kincaid reading ease and SMOG grade for English text.
package readability

import (
	"math"
	"regexp"
	"strings"
)

// smogMinSentences is the sample size SMOG was calibrated on. Shorter texts use an
// approximation derived from Flesch-Kincaid instead of the real formula.
const smogMinSentences = 30

var (
	reSentenceEnd = regexp.MustCompile(`[.!?]`)
	reNonLetter   = regexp.MustCompile(`[^a-z]`)
	reSilentTail  = regexp.MustCompile(`(?:[^laeiouy]es|ed|[^laeiouy]e)$`)
	reLeadingY    = regexp.MustCompile(`^y`)
	reVowelGroup  = regexp.MustCompile(`[aeiouy]{1,2}`)
)

// Scores holds the raw counts and the derived indices for a text.
type Scores struct {
	FleschKincaid int `json:"flesch_kincaid"`
	SMOG          int `json:"smog"`
	Sentences     int `json:"sentences"`
	Words         int `json:"words"`
	Syllables     int `json:"syllables"`
	Polysyllables int `json:"polysyllables"`
}

// Sentences splits text on sentence terminators and drops empty pieces.
func Sentences(text string) []string {
	parts := reSentenceEnd.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Words splits text on whitespace.
func Words(text string) []string {
	return strings.Fields(text)
}

// CountSyllables estimates the number of syllables in a single word.
func CountSyllables(word string) int {
	w := reNonLetter.ReplaceAllString(strings.ToLower(word), "")
	if len(w) <= 3 {
		return 1
	}
	w = reSilentTail.ReplaceAllString(w, "")
	w = reLeadingY.ReplaceAllString(w, "")
	groups := reVowelGroup.FindAllString(w, -1)
	if len(groups) == 0 {
		return 1
	}
	return len(groups)
}

// Score computes all counts and both indices in one pass over the text.
func Score(text string) Scores {
	sentences := Sentences(text)
	words := Words(text)
	s := Scores{Sentences: len(sentences), Words: len(words)}
	for _, w := range words {
		n := CountSyllables(w)
		s.Syllables += n
		if n >= 3 {
			s.Polysyllables++
		}
	}
	s.FleschKincaid = fleschKincaid(s)
	s.SMOG = smog(s)
	return s
}

// FleschKincaid returns the Flesch reading ease of text, clamped to [0,100].
// Empty text scores 0.
func FleschKincaid(text string) int {
	return Score(text).FleschKincaid
}

// SMOG returns the SMOG grade of text. Texts with fewer than 30 sentences get
// FleschKincaid/10 instead, a rough stand-in rather than a real SMOG grade.
func SMOG(text string) int {
	return Score(text).SMOG
}

func fleschKincaid(s Scores) int {
	if s.Sentences == 0 || s.Words == 0 {
		return 0
	}
	wordsPerSentence := float64(s.Words) / float64(s.Sentences)
	syllablesPerWord := float64(s.Syllables) / float64(s.Words)
	score := 206.835 - 1.015*wordsPerSentence - 84.6*syllablesPerWord
	return int(math.Round(clamp(score, 0, 100)))
}

func smog(s Scores) int {
	if s.Sentences < smogMinSentences {
		return int(math.Round(float64(s.FleschKincaid) / 10))
	}
	grade := 1.0430*math.Sqrt(float64(s.Polysyllables)*30/float64(s.Sentences)) + 3.1291
	return int(math.Round(grade))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
