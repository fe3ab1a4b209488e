// Package difficulty flags words in a text that are likely unfamiliar to a reader
// at a given proficiency level.
package difficulty

import (
	"bufio"
	"embed"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/japaniel/readlex/pkg/tokenize"
)

// Level is a reader's proficiency. Levels are ordered and cumulative: a reader at
// a level knows every word of that level and all levels below it.
type Level int

const (
	Beginner Level = iota
	Intermediate
	Advanced
	Expert
)

// Levels lists every level in ascending order.
var Levels = []Level{Beginner, Intermediate, Advanced, Expert}

func (l Level) String() string {
	switch l {
	case Beginner:
		return "beginner"
	case Intermediate:
		return "intermediate"
	case Advanced:
		return "advanced"
	case Expert:
		return "expert"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// ParseLevel converts a level name into a Level.
func ParseLevel(s string) (Level, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, l := range Levels {
		if l.String() == name {
			return l, nil
		}
	}
	return Beginner, fmt.Errorf("unknown level %q (want beginner, intermediate, advanced or expert)", s)
}

const (
	// DefaultMinLength: words must be longer than this to be flagged.
	DefaultMinLength = 3
	// DefaultLimit caps the number of flagged words.
	DefaultLimit = 10
)

//go:embed wordlists/*.txt
var wordlistFS embed.FS

// Detector flags unknown words against level-keyed word lists.
type Detector struct {
	Tokenizer tokenize.Tokenizer
	// MinLength is compared against the rune count of each token.
	MinLength int
	Limit     int

	lists map[Level]map[string]struct{}
}

// NewDetector returns a detector backed by the embedded English word lists.
func NewDetector() *Detector {
	lists := make(map[Level]map[string]struct{}, len(Levels))
	for _, l := range Levels {
		f, err := wordlistFS.Open("wordlists/" + l.String() + ".txt")
		if err != nil {
			panic(fmt.Sprintf("difficulty: embedded word list %s missing: %v", l, err))
		}
		words, err := readWords(f)
		_ = f.Close()
		if err != nil {
			panic(fmt.Sprintf("difficulty: embedded word list %s unreadable: %v", l, err))
		}
		lists[l] = toSet(words)
	}
	return &Detector{
		Tokenizer: tokenize.English{},
		MinLength: DefaultMinLength,
		Limit:     DefaultLimit,
		lists:     lists,
	}
}

var defaultDetector = NewDetector()

// DetectUnknownWords returns up to 10 distinct words from text, in order of first
// occurrence, that are longer than 3 characters and not known at level.
func DetectUnknownWords(text string, level Level) []string {
	return defaultDetector.Detect(text, level)
}

// SetList replaces the word list for a level.
func (d *Detector) SetList(level Level, words []string) {
	if d.lists == nil {
		d.lists = make(map[Level]map[string]struct{})
	}
	d.lists[level] = toSet(words)
}

// LoadList replaces the word list for a level with one word per line from path.
func (d *Detector) LoadList(level Level, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	words, err := readWords(f)
	if err != nil {
		return fmt.Errorf("read word list %s: %w", path, err)
	}
	if len(words) == 0 {
		return fmt.Errorf("word list %s is empty", path)
	}
	d.SetList(level, words)
	return nil
}

// Known reports whether word is known to a reader at level.
func (d *Detector) Known(word string, level Level) bool {
	for _, l := range Levels {
		if l > level {
			break
		}
		if _, ok := d.lists[l][word]; ok {
			return true
		}
	}
	return false
}

// Detect returns the unknown words of text for a reader at level.
func (d *Detector) Detect(text string, level Level) []string {
	tok := d.Tokenizer
	if tok == nil {
		tok = tokenize.English{}
	}
	limit := d.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	seen := make(map[string]struct{})
	var out []string
	for _, w := range tok.Words(text) {
		if utf8.RuneCountInString(w) <= d.MinLength {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		if d.Known(w, level) {
			continue
		}
		out = append(out, w)
		if len(out) == limit {
			break
		}
	}
	return out
}

func readWords(r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	return words, scanner.Err()
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
