// Package tokenize splits text into word tokens for vocabulary and topic analysis.
package tokenize

import (
	"regexp"
	"strings"
)

// Tokenizer turns free text into normalized word tokens.
type Tokenizer interface {
	Words(text string) []string
}

var reEnglishWord = regexp.MustCompile(`\b[a-z]+\b`)

// English extracts lowercase alphabetic words.
type English struct{}

// Words returns every lowercase [a-z]+ run bounded by word boundaries, in order.
func (English) Words(text string) []string {
	return reEnglishWord.FindAllString(strings.ToLower(text), -1)
}

var (
	// (?s) allows dot to match newlines
	// (?i) makes it case-insensitive
	reRT = regexp.MustCompile(`(?si)<rt\b[^>]*>.*?</rt>`)
	reRP = regexp.MustCompile(`(?si)<rp\b[^>]*>.*?</rp>`)
)

// SanitizeRuby removes ruby text (<rt>...</rt>) and ruby parentheses (<rp>...</rp>)
// from HTML content. Article extraction keeps furigana otherwise, so "漢字" would
// come out as "漢字かんじ".
func SanitizeRuby(content []byte) []byte {
	cleaned := reRT.ReplaceAll(content, []byte{})
	cleaned = reRP.ReplaceAll(cleaned, []byte{})
	return cleaned
}
