// Package sample builds demo vocabulary data. It exists for the demo command
// and tests; nothing calls it to stand in for missing or unreadable saved data.
package sample

import (
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/japaniel/readlex/pkg/srs"
	"github.com/japaniel/readlex/pkg/vocabulary"
)

// Tag marks every generated word.
const Tag = "sample"

type entry struct {
	term, pos, definition, example string
}

var entries = []entry{
	{"ephemeral", "adjective", "Lasting for a very short time.", "Fame on the internet is often ephemeral."},
	{"ubiquitous", "adjective", "Present or found everywhere.", "Phones have become ubiquitous."},
	{"meticulous", "adjective", "Showing great attention to detail.", "She kept meticulous notes."},
	{"candid", "adjective", "Truthful and straightforward.", "He gave a candid answer."},
	{"lucid", "adjective", "Expressed clearly and easy to understand.", "The essay was lucid and short."},
	{"ponder", "verb", "To think about something carefully.", "She paused to ponder the question."},
	{"alleviate", "verb", "To make suffering or a problem less severe.", "Rest will alleviate the pain."},
	{"scrutinize", "verb", "To examine closely and thoroughly.", "Editors scrutinize every claim."},
	{"resilience", "noun", "The capacity to recover quickly from difficulties.", "The team showed resilience."},
	{"nuance", "noun", "A subtle difference in meaning or expression.", "Translation loses some nuance."},
	{"paradigm", "noun", "A typical example or pattern of something.", "The discovery shifted the paradigm."},
	{"eloquent", "adjective", "Fluent and persuasive in speaking or writing.", "She gave an eloquent speech."},
	{"pragmatic", "adjective", "Dealing with things in a practical way.", "A pragmatic approach saved time."},
	{"verbose", "adjective", "Using more words than needed.", "The manual was verbose."},
	{"diligent", "adjective", "Having or showing care in one's work.", "A diligent reader reviews daily."},
	{"juxtapose", "verb", "To place close together for contrasting effect.", "The film juxtaposes two cities."},
}

// Generator produces randomized demo vocabularies.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a Generator with a fixed seed, for repeatable output.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Snapshot builds up to words vocabulary entries and the given number of
// finished sessions, all dated on or before now.
func (g *Generator) Snapshot(now time.Time, words, sessions int) vocabulary.Snapshot {
	now = now.UTC()
	snap := vocabulary.Snapshot{Version: vocabulary.SchemaVersion}
	snap.Words = g.Words(now, words)
	snap.Sessions = g.Sessions(now, snap.Words, sessions)
	return snap
}

// Words builds up to n distinct words with random review history.
func (g *Generator) Words(now time.Time, n int) []vocabulary.Word {
	if n > len(entries) {
		n = len(entries)
	}
	now = now.UTC()
	out := make([]vocabulary.Word, 0, n)
	for _, i := range g.rnd.Perm(len(entries))[:n] {
		e := entries[i]
		created := now.AddDate(0, 0, -(7 + g.rnd.Intn(60)))
		w := vocabulary.Word{
			ID:           uuid.NewString(),
			Term:         e.term,
			Definition:   e.definition,
			PartOfSpeech: e.pos,
			Examples:     []string{e.example},
			Tags:         []string{Tag},
			CreatedAt:    created,
			NextReview:   created,
		}
		if reviews := g.rnd.Intn(8); reviews > 0 {
			last := now.AddDate(0, 0, -g.rnd.Intn(7)).Add(-time.Duration(g.rnd.Intn(12)) * time.Hour)
			w.ReviewCount = reviews
			w.Mastery = srs.Clamp(g.rnd.Intn(reviews + 1))
			w.LastReviewed = &last
			w.NextReview = srs.NextReview(w.Mastery, last)
		}
		out = append(out, w)
	}
	return out
}

// Sessions builds n finished sessions over words, one per day going back from now.
func (g *Generator) Sessions(now time.Time, words []vocabulary.Word, n int) []vocabulary.Session {
	if len(words) == 0 {
		return nil
	}
	now = now.UTC()
	kinds := []vocabulary.SessionKind{vocabulary.KindReview, vocabulary.KindDiscovery, vocabulary.KindQuiz}
	// Sessions start up to six hours before now's time of day but never cross
	// midnight, so each lands on its own UTC day.
	window := now.Sub(srs.Day(now))
	if window > 6*time.Hour {
		window = 6 * time.Hour
	}
	out := make([]vocabulary.Session, 0, n)
	for day := n - 1; day >= 0; day-- {
		size := 1 + g.rnd.Intn(min(len(words), vocabulary.DefaultSessionSize))
		start := now.AddDate(0, 0, -day).Add(-time.Duration(g.rnd.Int63n(int64(window) + 1)))
		sess := vocabulary.Session{
			ID:        uuid.NewString(),
			Kind:      kinds[g.rnd.Intn(len(kinds))],
			CreatedAt: start,
		}
		at := start
		for _, i := range g.rnd.Perm(len(words))[:size] {
			at = at.Add(time.Duration(5+g.rnd.Intn(25)) * time.Second)
			correct := g.rnd.Float64() < 0.7
			sess.WordIDs = append(sess.WordIDs, words[i].ID)
			sess.Results = append(sess.Results, vocabulary.Answer{WordID: words[i].ID, Correct: correct, AnsweredAt: at})
			if correct {
				sess.Correct++
			}
		}
		sess.Total = len(sess.Results)
		sess.Duration = at.Sub(start)
		out = append(out, sess)
	}
	return out
}
