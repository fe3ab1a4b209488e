package sample

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/japaniel/readlex/pkg/srs"
	"github.com/japaniel/readlex/pkg/vocabulary"
)

var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func TestSnapshotIsConsistent(t *testing.T) {
	snap := NewSeeded(1).Snapshot(now, 12, 5)
	require.Equal(t, vocabulary.SchemaVersion, snap.Version)
	require.Len(t, snap.Words, 12)
	require.Len(t, snap.Sessions, 5)

	ids := make(map[string]bool)
	terms := make(map[string]bool)
	for _, w := range snap.Words {
		assert.False(t, ids[w.ID], "duplicate id")
		assert.False(t, terms[w.Term], "duplicate term %s", w.Term)
		ids[w.ID] = true
		terms[w.Term] = true

		assert.Contains(t, w.Tags, Tag)
		assert.GreaterOrEqual(t, w.Mastery, 0)
		assert.LessOrEqual(t, w.Mastery, srs.MaxMastery)
		assert.False(t, w.CreatedAt.After(now))
		if w.LastReviewed != nil {
			assert.Equal(t, srs.NextReview(w.Mastery, *w.LastReviewed), w.NextReview)
		} else {
			assert.Zero(t, w.ReviewCount)
		}
	}

	for _, s := range snap.Sessions {
		assert.Equal(t, len(s.Results), s.Total)
		assert.LessOrEqual(t, s.Correct, s.Total)
		assert.False(t, s.CreatedAt.After(now))
		for _, a := range s.Results {
			assert.True(t, ids[a.WordID], "session references unknown word")
		}
	}
}

func TestSeededIsRepeatable(t *testing.T) {
	a := NewSeeded(42).Words(now, 5)
	b := NewSeeded(42).Words(now, 5)
	for i := range a {
		assert.Equal(t, a[i].Term, b[i].Term)
		assert.Equal(t, a[i].Mastery, b[i].Mastery)
	}
}

func TestWordsCappedAtCatalogue(t *testing.T) {
	words := New().Words(now, 1000)
	assert.Len(t, words, len(entries))
}

func TestSessionsWithoutWords(t *testing.T) {
	assert.Nil(t, New().Sessions(now, nil, 3))
}

func TestSnapshotLoadsIntoService(t *testing.T) {
	snap := NewSeeded(7).Snapshot(now, 8, 3)
	svc := vocabulary.NewService(&staticStore{snap: snap}, nil, vocabulary.Options{Now: func() time.Time { return now }})
	require.NoError(t, svc.Load(t.Context()))
	stats := svc.Stats()
	assert.Equal(t, 8, stats.TotalWords)
	assert.Equal(t, 3, stats.Streak)
}

type staticStore struct {
	snap vocabulary.Snapshot
}

func (s *staticStore) Load(ctx context.Context) (vocabulary.Snapshot, error) { return s.snap, nil }

func (s *staticStore) Save(ctx context.Context, snap vocabulary.Snapshot) error {
	s.snap = snap
	return nil
}
