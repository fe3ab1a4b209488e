// Package vocabulary manages a learner's word list and spaced-repetition review
// sessions.
package vocabulary

import (
	"time"

	"github.com/japaniel/readlex/pkg/srs"
)

// SchemaVersion is the version of Snapshot written by this package.
const SchemaVersion = 1

// Word is a vocabulary entry and its review state. NextReview is derived from
// Mastery and LastReviewed by srs.NextReview on every answer. Added and reset
// words, which have no answer at their current mastery, are due at once.
type Word struct {
	ID            string     `json:"id"`
	Term          string     `json:"term"`
	Definition    string     `json:"definition"`
	PartOfSpeech  string     `json:"partOfSpeech"`
	Pronunciation string     `json:"pronunciation,omitempty"`
	Etymology     string     `json:"etymology,omitempty"`
	Examples      []string   `json:"examples,omitempty"`
	Synonyms      []string   `json:"synonyms,omitempty"`
	Antonyms      []string   `json:"antonyms,omitempty"`
	Context       string     `json:"context,omitempty"`
	SourceID      int64      `json:"sourceId,omitempty"`
	Tags          []string   `json:"tags,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	LastReviewed  *time.Time `json:"lastReviewed,omitempty"`
	ReviewCount   int        `json:"reviewCount"`
	Mastery       int        `json:"mastery"`
	NextReview    time.Time  `json:"nextReview"`
}

// IsDue reports whether w should be reviewed on now's UTC date.
func (w Word) IsDue(now time.Time) bool {
	return srs.IsDue(w.NextReview, w.Mastery, now)
}

type SessionKind string

const (
	KindDiscovery SessionKind = "discovery"
	KindReview    SessionKind = "review"
	KindQuiz      SessionKind = "quiz"
)

// ParseSessionKind validates a kind name. An empty name means KindReview.
func ParseSessionKind(s string) (SessionKind, bool) {
	switch SessionKind(s) {
	case "":
		return KindReview, true
	case KindDiscovery, KindReview, KindQuiz:
		return SessionKind(s), true
	}
	return "", false
}

// Answer is one reviewed word within a session.
type Answer struct {
	WordID     string    `json:"wordId"`
	Correct    bool      `json:"correct"`
	AnsweredAt time.Time `json:"answeredAt"`
}

// Session is a batch of reviewed words. Correct, Total and Duration are set
// when the session is finalized.
type Session struct {
	ID        string        `json:"id"`
	Kind      SessionKind   `json:"kind"`
	WordIDs   []string      `json:"wordIds"`
	Results   []Answer      `json:"results"`
	Correct   int           `json:"correct"`
	Total     int           `json:"total"`
	Duration  time.Duration `json:"duration"`
	CreatedAt time.Time     `json:"createdAt"`
}

// Accuracy returns the share of correct answers in [0, 1].
func (s Session) Accuracy() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Total)
}

// Stats are derived from the full word and session history.
type Stats struct {
	TotalWords     int     `json:"totalWords"`
	Learned        int     `json:"learned"`
	Reviewing      int     `json:"reviewing"`
	Mastered       int     `json:"mastered"`
	Due            int     `json:"due"`
	AverageMastery float64 `json:"averageMastery"`
	Streak         int     `json:"streak"`
	WeeklyGoal     int     `json:"weeklyGoal"`
	WeeklyProgress int     `json:"weeklyProgress"`
}

// Snapshot is the persisted state of a vocabulary.
type Snapshot struct {
	Version  int       `json:"version"`
	Words    []Word    `json:"words"`
	Sessions []Session `json:"sessions"`
}
