package readability

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFleschKincaidEmpty(t *testing.T) {
	assert.Equal(t, 0, FleschKincaid(""))
	assert.Equal(t, 0, FleschKincaid("   \n\t"))
	assert.Equal(t, 0, FleschKincaid("..."))
}

func TestFleschKincaidSimpleSentenceIsEasy(t *testing.T) {
	assert.Greater(t, FleschKincaid("The cat sat."), 80)
}

func TestFleschKincaidClamped(t *testing.T) {
	hard := "Institutionalization of multidimensional epistemological considerations necessitates extraordinarily comprehensive interdisciplinary collaboration."
	score := FleschKincaid(hard)
	assert.GreaterOrEqual(t, score, 0)
	assert.LessOrEqual(t, score, 100)
	assert.Less(t, score, 30)
}

func TestCountSyllables(t *testing.T) {
	tests := []struct {
		word string
		want int
	}{
		{"cat", 1},
		{"the", 1},
		{"a", 1},
		{"make", 1},
		{"jumped", 1},
		{"boxes", 1},
		{"reading", 2},
		{"yellow", 2},
		{"window", 2},
		{"happy", 2},
		{"Attention.", 3},
		{"rhythm", 1},
	}
	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			assert.Equal(t, tt.want, CountSyllables(tt.word))
		})
	}
}

func TestSMOGFallsBackForShortTexts(t *testing.T) {
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 10)
	s := Score(text)
	require.Equal(t, 10, s.Sentences)
	want := int(math.Round(float64(FleschKincaid(text)) / 10))
	assert.Equal(t, want, SMOG(text))
}

func TestSMOGRealFormulaForLongTexts(t *testing.T) {
	text := strings.Repeat("Comprehensive evaluation requires deliberate attention. ", 30)
	s := Score(text)
	require.Equal(t, 30, s.Sentences)
	require.Equal(t, 120, s.Polysyllables)
	want := int(math.Round(1.0430*math.Sqrt(120) + 3.1291))
	assert.Equal(t, want, s.SMOG)
}

func TestSentencesDropsEmpties(t *testing.T) {
	got := Sentences("One. Two!! Three?  ")
	assert.Len(t, got, 3)
}
