package tokenize

import (
	"testing"
)

func TestEnglishWords(t *testing.T) {
	got := English{}.Words("The Cat's 3 hats, don't-stop!")
	want := []string{"the", "cat", "s", "hats", "don", "t", "stop"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSanitizeRuby(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Simple Ruby",
			input:    "<ruby>漢字<rt>かんじ</rt></ruby>",
			expected: "<ruby>漢字</ruby>",
		},
		{
			name:     "Ruby with RP",
			input:    "<ruby>漢字<rp>(</rp><rt>かんじ</rt><rp>)</rp></ruby>",
			expected: "<ruby>漢字</ruby>",
		},
		{
			name:     "Multiple Ruby",
			input:    "<ruby>私<rt>わたし</rt></ruby>は<ruby>猫<rt>ねこ</rt></ruby>である",
			expected: "<ruby>私</ruby>は<ruby>猫</ruby>である",
		},
		{
			name:     "Attributes in tags",
			input:    "<ruby class='test'>漢字<rt class='reading'>かんじ</rt></ruby>",
			expected: "<ruby class='test'>漢字</ruby>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SanitizeRuby([]byte(tt.input))
			if string(result) != tt.expected {
				t.Errorf("got %q, want %q", string(result), tt.expected)
			}
		})
	}
}

func TestSplitJapaneseSentences(t *testing.T) {
	got := SplitJapaneseSentences("猫が好き。犬も好き！本当？")
	if len(got) != 3 {
		t.Fatalf("expected 3 sentences, got %d: %q", len(got), got)
	}
	if got[0] != "猫が好き。" {
		t.Errorf("unexpected first sentence %q", got[0])
	}
}

func TestJapaneseWordsDropsParticles(t *testing.T) {
	j, err := NewJapanese()
	if err != nil {
		t.Fatalf("Failed to create tokenizer: %v", err)
	}
	words := j.Words("猫は魚を食べた。")
	seen := map[string]bool{}
	for _, w := range words {
		seen[w] = true
	}
	if !seen["猫"] || !seen["魚"] {
		t.Errorf("expected nouns in %v", words)
	}
	if !seen["食べる"] {
		t.Errorf("expected base form 食べる in %v", words)
	}
	for _, particle := range []string{"は", "を", "た", "。"} {
		if seen[particle] {
			t.Errorf("particle/aux %q should be dropped: %v", particle, words)
		}
	}
}

func TestPrimaryPOSSet(t *testing.T) {
	j, err := NewJapanese()
	if err != nil {
		t.Fatalf("Failed to create tokenizer: %v", err)
	}
	tokens := j.Analyze("今日は良い天気です。")
	if len(tokens) == 0 {
		t.Fatal("no tokens")
	}
	for _, tok := range tokens {
		if len(tok.PartsOfSpeech) > 0 && tok.PrimaryPOS != tok.PartsOfSpeech[0] {
			t.Errorf("PrimaryPOS %q does not match features %v", tok.PrimaryPOS, tok.PartsOfSpeech)
		}
	}
}

func TestToHiragana(t *testing.T) {
	tests := []struct {
		in, out string
	}{
		{"ア", "あ"},
		{"カ", "か"},
		{"ガ", "が"},
		{"ン", "ん"},
		{"ー", "ー"},
		{"abc", "abc"},
		{"あいう", "あいう"},
	}
	for _, tt := range tests {
		if got := ToHiragana(tt.in); got != tt.out {
			t.Errorf("ToHiragana(%q) = %q; want %q", tt.in, got, tt.out)
		}
	}
}

func TestAnalyzeDocumentSplitsSentences(t *testing.T) {
	j, err := NewJapanese()
	if err != nil {
		t.Fatalf("Failed to create tokenizer: %v", err)
	}
	sentences := j.AnalyzeDocument("今日は良い天気です。散歩に行きましょう！")
	if len(sentences) != 2 {
		t.Fatalf("expected 2 sentences, got %d", len(sentences))
	}
	for _, s := range sentences {
		if len(s.Tokens) == 0 {
			t.Errorf("Sentence has no tokens: %q", s.Text)
		}
	}
}
