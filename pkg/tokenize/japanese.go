package tokenize

import (
	"strings"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
)

// Token represents a single analyzed unit of Japanese text.
type Token struct {
	Surface       string   // The text as it appears (e.g. "行っ")
	BaseForm      string   // The dictionary form (e.g. "行く")
	Reading       string   // The pronunciation (katakana, e.g. "イッ")
	PartsOfSpeech []string // Kagome IPA feature columns
	PrimaryPOS    string
}

// Sentence represents a sentence containing tokens.
type Sentence struct {
	Text   string
	Tokens []Token
}

// Japanese is a morphological tokenizer backed by kagome and the IPA dictionary.
type Japanese struct {
	t *tokenizer.Tokenizer
}

// NewJapanese loads the IPA dictionary and builds a tokenizer.
func NewJapanese() (*Japanese, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, err
	}
	return &Japanese{t: t}, nil
}

// Analyze breaks text into tokens with readings and base forms.
func (j *Japanese) Analyze(text string) []Token {
	var result []Token
	for _, token := range j.t.Tokenize(text) {
		if token.Class == tokenizer.DUMMY {
			continue
		}
		if strings.TrimSpace(token.Surface) == "" {
			continue
		}

		// IPA features: 0 POS, 1-3 sub-POS, 4-5 conjugation, 6 base form, 7 reading.
		features := token.Features()
		base := token.Surface
		if len(features) > 6 && features[6] != "*" {
			base = features[6]
		}
		reading := ""
		if len(features) > 7 && features[7] != "*" {
			reading = features[7]
		}
		primaryPOS := ""
		if len(features) > 0 {
			primaryPOS = features[0]
		}

		result = append(result, Token{
			Surface:       token.Surface,
			BaseForm:      base,
			Reading:       reading,
			PartsOfSpeech: features,
			PrimaryPOS:    primaryPOS,
		})
	}
	return result
}

// Words returns the base forms of content words, skipping particles, auxiliaries,
// symbols, numerals and pure ASCII tokens.
func (j *Japanese) Words(text string) []string {
	var words []string
	for _, t := range j.Analyze(text) {
		if !isContentWord(t) {
			continue
		}
		words = append(words, t.BaseForm)
	}
	return words
}

// AnalyzeDocument splits the text into sentences and tokenizes each sentence.
func (j *Japanese) AnalyzeDocument(text string) []Sentence {
	var result []Sentence
	for _, s := range SplitJapaneseSentences(text) {
		if strings.TrimSpace(s) == "" {
			continue
		}
		result = append(result, Sentence{Text: s, Tokens: j.Analyze(s)})
	}
	return result
}

// SplitJapaneseSentences splits on 。！？ and newlines, keeping the delimiter.
func SplitJapaneseSentences(text string) []string {
	var sentences []string
	var current strings.Builder
	for _, r := range text {
		current.WriteRune(r)
		if r == '。' || r == '！' || r == '？' || r == '\n' {
			sentences = append(sentences, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		sentences = append(sentences, current.String())
	}
	return sentences
}

func isContentWord(t Token) bool {
	switch t.PrimaryPOS {
	case "記号", "補助記号", "助詞", "助動詞":
		return false
	}
	if len(t.PartsOfSpeech) > 1 && t.PartsOfSpeech[1] == "数" {
		return false
	}
	return !isASCII(t.Surface)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

// ToHiragana converts Katakana to Hiragana.
func ToHiragana(s string) string {
	runes := []rune(s)
	for i, r := range runes {
		if r >= 0x30A1 && r <= 0x30F6 {
			runes[i] = r - 0x60
		}
	}
	return string(runes)
}
