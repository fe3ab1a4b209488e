package difficulty

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectBeginnerScenario(t *testing.T) {
	got := DetectUnknownWords("The cat and this little book with an elaborate dog.", Beginner)
	assert.Equal(t, []string{"elaborate"}, got)
}

func TestDetectLevelsAreCumulative(t *testing.T) {
	text := "The journey was elaborate and ephemeral."
	assert.Equal(t, []string{"journey", "elaborate", "ephemeral"}, DetectUnknownWords(text, Beginner))
	assert.Equal(t, []string{"elaborate", "ephemeral"}, DetectUnknownWords(text, Intermediate))
	assert.Equal(t, []string{"ephemeral"}, DetectUnknownWords(text, Advanced))
	assert.Empty(t, DetectUnknownWords(text, Expert))
}

func TestDetectSkipsShortWordsAndDuplicates(t *testing.T) {
	got := DetectUnknownWords("Zyx zyx QUUX quux quux vex", Beginner)
	assert.Equal(t, []string{"quux"}, got)
}

func TestDetectCapsAtTen(t *testing.T) {
	words := []string{"alpha", "bravo", "charlie", "delta", "echo", "foxtrot", "golf", "hotel",
		"india", "juliet", "kilo", "lima"}
	got := DetectUnknownWords(strings.Join(words, " "), Beginner)
	require.Len(t, got, 10)
	assert.Equal(t, words[:10], got)
}

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel(" Advanced ")
	require.NoError(t, err)
	assert.Equal(t, Advanced, l)

	_, err = ParseLevel("native")
	assert.Error(t, err)
}

func TestLoadListOverridesLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "beginner.txt")
	require.NoError(t, os.WriteFile(path, []byte("# custom\nelaborate\n"), 0o644))

	d := NewDetector()
	require.NoError(t, d.LoadList(Beginner, path))
	assert.True(t, d.Known("elaborate", Beginner))
	assert.False(t, d.Known("table", Beginner))
}
