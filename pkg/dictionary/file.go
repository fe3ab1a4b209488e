package dictionary

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/japaniel/readlex/pkg/tokenize"
)

// JMdictEntry matches the structure of jmdict-simplified entries.
type JMdictEntry struct {
	ID    string          `json:"id"`
	Kanji []JMdictElement `json:"kanji"`
	Kana  []JMdictElement `json:"kana"`
	Sense []JMdictSense   `json:"sense"`
}

type JMdictElement struct {
	Text   string   `json:"text"`
	Common bool     `json:"common"`
	Tags   []string `json:"tags"`
}

type JMdictSense struct {
	PartOfSpeech []string      `json:"partOfSpeech"`
	Gloss        []JMdictGloss `json:"gloss"`
}

type JMdictGloss struct {
	Text string `json:"text"`
	Lang string `json:"lang"` // defaults to 'eng' if missing
}

// File is an offline dictionary held in memory.
type File struct {
	// Key: lowercased term (word, kanji or kana). Guarded by mu.
	mu    sync.RWMutex
	index map[string][]Definition
}

// NewFile builds a dictionary from plain definitions.
func NewFile(defs []Definition) *File {
	f := &File{index: make(map[string][]Definition)}
	for _, d := range defs {
		f.add(d.Word, d)
	}
	return f
}

// NewJMdict builds a dictionary from jmdict-simplified entries, indexed by every
// kanji and kana form.
func NewJMdict(entries []JMdictEntry) *File {
	f := &File{index: make(map[string][]Definition)}
	sorted := append([]JMdictEntry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	for _, e := range sorted {
		def := jmdictDefinition(e)
		for _, k := range e.Kanji {
			f.add(k.Text, def)
		}
		for _, k := range e.Kana {
			f.add(k.Text, def)
		}
	}
	return f
}

// LoadFile reads a JSON dictionary. Both a plain array of definitions and
// jmdict-simplified (either {"words": [...]} or a bare entry array) are accepted.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := ParseFile(data)
	if err != nil {
		return nil, fmt.Errorf("parse dictionary %s: %w", path, err)
	}
	return f, nil
}

// ParseFile parses the formats accepted by LoadFile.
func ParseFile(data []byte) (*File, error) {
	data = bytes.TrimSpace(data)

	var wrapped struct {
		Words []JMdictEntry `json:"words"`
	}
	if len(data) > 0 && data[0] == '{' {
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, err
		}
		return NewJMdict(wrapped.Words), nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("dictionary is neither an object nor an array: %w", err)
	}
	if len(raw) == 0 {
		return NewFile(nil), nil
	}

	// Entries with a "sense" key are jmdict-simplified.
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw[0], &fields); err != nil {
		return nil, err
	}
	if _, ok := fields["sense"]; ok {
		var entries []JMdictEntry
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, err
		}
		return NewJMdict(entries), nil
	}

	var defs []Definition
	if err := json.Unmarshal(data, &defs); err != nil {
		return nil, err
	}
	return NewFile(defs), nil
}

func (f *File) add(term string, def Definition) {
	key := normalize(term)
	if key == "" {
		return
	}
	f.mu.Lock()
	f.index[key] = append(f.index[key], def)
	f.mu.Unlock()
}

// Len returns the number of indexed terms.
func (f *File) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.index)
}

// LookupDefinition returns the first entry for word. Katakana and hiragana forms
// of a word match each other.
func (f *File) LookupDefinition(ctx context.Context, word, sentence string) (Definition, error) {
	if err := ctx.Err(); err != nil {
		return Definition{}, err
	}
	f.mu.RLock()
	defs := f.index[normalize(word)]
	f.mu.RUnlock()
	if len(defs) == 0 {
		return Definition{}, &LookupError{Word: word, Err: ErrNotFound}
	}
	def := defs[0]
	def.Word = word
	return def, nil
}

func normalize(term string) string {
	return tokenize.ToHiragana(strings.ToLower(strings.TrimSpace(term)))
}

func jmdictDefinition(e JMdictEntry) Definition {
	var senses, poses []string
	seenPOS := make(map[string]bool)
	for _, s := range e.Sense {
		var glosses []string
		for _, g := range s.Gloss {
			if g.Lang != "" && g.Lang != "eng" {
				continue
			}
			glosses = append(glosses, g.Text)
		}
		if len(glosses) > 0 {
			senses = append(senses, strings.Join(glosses, ", "))
		}
		for _, p := range s.PartOfSpeech {
			if !seenPOS[p] {
				seenPOS[p] = true
				poses = append(poses, p)
			}
		}
	}

	def := Definition{
		Definition:   strings.Join(senses, "; "),
		PartOfSpeech: strings.Join(poses, ", "),
	}
	if len(e.Kana) > 0 {
		def.Pronunciation = e.Kana[0].Text
	}
	if len(e.Kanji) > 0 {
		def.Word = e.Kanji[0].Text
	} else if len(e.Kana) > 0 {
		def.Word = e.Kana[0].Text
	}
	return def
}
