package vocabulary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/japaniel/readlex/pkg/dictionary"
	"github.com/japaniel/readlex/pkg/srs"
)

const (
	DefaultSessionSize = 10
	DefaultWeeklyGoal  = 50
)

// Store persists vocabulary snapshots.
type Store interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
}

// Options tune a Service. Zero values take the defaults.
type Options struct {
	Now         func() time.Time
	WeeklyGoal  int
	SessionSize int
	Logger      *slog.Logger
}

// Service owns a vocabulary and its review history. Each mutation builds new
// collections, persists them and only then makes them visible, so readers never
// observe a partial update.
type Service struct {
	store  Store
	lookup dictionary.Lookup
	now    func() time.Time
	goal   int
	size   int
	logger *slog.Logger

	mu       sync.RWMutex
	words    []Word
	sessions []Session
	current  *Session
	stats    Stats
}

// NewService creates a service with an empty vocabulary. Call Load to read the
// persisted state. A nil lookup defines every word with dictionary.Fallback.
func NewService(store Store, lookup dictionary.Lookup, opts Options) *Service {
	s := &Service{
		store:  store,
		lookup: lookup,
		now:    opts.Now,
		goal:   opts.WeeklyGoal,
		size:   opts.SessionSize,
		logger: opts.Logger,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.goal <= 0 {
		s.goal = DefaultWeeklyGoal
	}
	if s.size <= 0 {
		s.size = DefaultSessionSize
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.stats = ComputeStats(nil, nil, s.goal, s.now())
	return s
}

// Load replaces the in-memory state with the stored snapshot. Any in-progress
// session is discarded.
func (s *Service) Load(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	snap, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load vocabulary: %w", err)
	}
	if snap.Version > SchemaVersion {
		return fmt.Errorf("load vocabulary: snapshot version %d is newer than supported version %d", snap.Version, SchemaVersion)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.words = snap.Words
	s.sessions = snap.Sessions
	s.current = nil
	s.stats = ComputeStats(s.words, s.sessions, s.goal, s.now())
	s.logger.Debug("vocabulary loaded", "words", len(s.words), "sessions", len(s.sessions))
	return nil
}

// Snapshot returns a copy of the persisted state.
func (s *Service) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Version:  SchemaVersion,
		Words:    cloneWords(s.words),
		Sessions: cloneSessions(s.sessions),
	}
}

// Words returns all words in insertion order.
func (s *Service) Words() []Word {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneWords(s.words)
}

// Word returns the word with the given id.
func (s *Service) Word(id string) (Word, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOf(s.words, id); i >= 0 {
		return cloneWord(s.words[i]), true
	}
	return Word{}, false
}

// FindTerm returns the word whose term matches term, ignoring case.
func (s *Service) FindTerm(term string) (Word, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOfTerm(s.words, term); i >= 0 {
		return cloneWord(s.words[i]), true
	}
	return Word{}, false
}

// Sessions returns the finalized session history, oldest first.
func (s *Service) Sessions() []Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSessions(s.sessions)
}

// Stats returns the stats as of the last mutation or Load.
func (s *Service) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// AddWord looks up term and adds it to the vocabulary. A failed lookup falls back
// to a generic definition instead of failing the add.
func (s *Service) AddWord(ctx context.Context, term, sentence string, sourceID int64) (Word, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return Word{}, &StateError{Op: "add", Err: ErrEmptyTerm}
	}

	s.mu.RLock()
	dup := indexOfTerm(s.words, term) >= 0
	s.mu.RUnlock()
	if dup {
		return Word{}, &StateError{Op: "add", WordID: term, Err: ErrDuplicateWord}
	}

	def, err := s.define(ctx, term, sentence)
	if err != nil {
		return Word{}, err
	}

	now := s.now().UTC()
	w := Word{
		ID:            uuid.NewString(),
		Term:          term,
		Definition:    def.Definition,
		PartOfSpeech:  def.PartOfSpeech,
		Pronunciation: def.Pronunciation,
		Etymology:     def.Etymology,
		Examples:      def.Examples,
		Synonyms:      def.Synonyms,
		Antonyms:      def.Antonyms,
		Context:       strings.TrimSpace(sentence),
		SourceID:      sourceID,
		CreatedAt:     now,
		NextReview:    dueNow(now),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// The lookup ran unlocked; re-check for a concurrent add of the same term.
	if indexOfTerm(s.words, term) >= 0 {
		return Word{}, &StateError{Op: "add", WordID: term, Err: ErrDuplicateWord}
	}
	words := append(cloneWords(s.words), w)
	if err := s.commit(ctx, words, s.sessions, s.current); err != nil {
		return Word{}, err
	}
	s.logger.Debug("word added", "term", term, "id", w.ID)
	return cloneWord(w), nil
}

// AddWords adds each term in turn. Duplicates are skipped; the first other
// error stops the batch and is returned with the words added so far.
func (s *Service) AddWords(ctx context.Context, terms []string, sentence string, sourceID int64) ([]Word, error) {
	var added []Word
	for _, term := range terms {
		w, err := s.AddWord(ctx, term, sentence, sourceID)
		if errors.Is(err, ErrDuplicateWord) {
			continue
		}
		if err != nil {
			return added, err
		}
		added = append(added, w)
	}
	return added, nil
}

func (s *Service) define(ctx context.Context, term, sentence string) (dictionary.Definition, error) {
	if s.lookup == nil {
		return dictionary.Fallback(term, sentence), nil
	}
	def, err := s.lookup.LookupDefinition(ctx, term, sentence)
	if err == nil {
		return def, nil
	}
	var lerr *dictionary.LookupError
	if errors.As(err, &lerr) {
		s.logger.Warn("definition lookup failed, using fallback", "word", term, "error", err)
		return dictionary.Fallback(term, sentence), nil
	}
	return dictionary.Definition{}, fmt.Errorf("define %q: %w", term, err)
}

// RemoveWord deletes a word. It is also dropped from the in-progress session.
func (s *Service) RemoveWord(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.words, id)
	if i < 0 {
		return &StateError{Op: "remove", WordID: id, Err: ErrUnknownWord}
	}
	words := make([]Word, 0, len(s.words)-1)
	words = append(words, s.words[:i]...)
	words = append(words, s.words[i+1:]...)

	current := s.current
	if current == nil || !containsID(current.WordIDs, id) || answered(current, id) {
		return s.commit(ctx, words, s.sessions, current)
	}

	c := cloneSession(*current)
	c.WordIDs = removeID(c.WordIDs, id)
	if len(c.Results) < len(c.WordIDs) {
		return s.commit(ctx, words, s.sessions, &c)
	}
	// Nothing left to answer: record what was answered, or drop an empty session.
	if len(c.Results) == 0 {
		s.logger.Debug("session discarded", "id", c.ID)
		return s.commit(ctx, words, s.sessions, nil)
	}
	done := finalize(c, s.now().UTC())
	if err := s.commit(ctx, words, appendSession(s.sessions, done), nil); err != nil {
		return err
	}
	s.logSession(done)
	return nil
}

// ResetWord sets a word's mastery back to 0 and makes it due immediately, like a
// newly added word. LastReviewed and ReviewCount keep the word's history; the
// next answer schedules it from the interval table again.
func (s *Service) ResetWord(ctx context.Context, id string) (Word, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.words, id)
	if i < 0 {
		return Word{}, &StateError{Op: "reset", WordID: id, Err: ErrUnknownWord}
	}
	words := cloneWords(s.words)
	words[i].Mastery = 0
	words[i].NextReview = dueNow(s.now())
	if err := s.commit(ctx, words, s.sessions, s.current); err != nil {
		return Word{}, err
	}
	return cloneWord(words[i]), nil
}

// DueWords returns the words due on now's UTC date, earliest due first.
func (s *Service) DueWords(now time.Time) []Word {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return dueWords(s.words, now)
}

func dueWords(words []Word, now time.Time) []Word {
	var due []Word
	for _, w := range words {
		if w.IsDue(now) {
			due = append(due, cloneWord(w))
		}
	}
	sort.SliceStable(due, func(i, j int) bool { return due[i].NextReview.Before(due[j].NextReview) })
	return due
}

// Current returns the in-progress session and the next word to answer.
func (s *Service) Current() (Session, Word, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return Session{}, Word{}, false
	}
	sess := cloneSession(*s.current)
	for _, id := range sess.WordIDs {
		if answered(s.current, id) {
			continue
		}
		if i := indexOf(s.words, id); i >= 0 {
			return sess, cloneWord(s.words[i]), true
		}
	}
	return sess, Word{}, true
}

// StartSession opens a session over the first due words.
func (s *Service) StartSession(ctx context.Context, kind SessionKind) (Session, error) {
	if kind == "" {
		kind = KindReview
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		return Session{}, &StateError{Op: "start session", Err: ErrSessionActive}
	}

	now := s.now().UTC()
	due := dueWords(s.words, now)
	if len(due) == 0 {
		return Session{}, &StateError{Op: "start session", Err: ErrNoDueWords}
	}
	if len(due) > s.size {
		due = due[:s.size]
	}
	sess := Session{
		ID:        uuid.NewString(),
		Kind:      kind,
		CreatedAt: now,
	}
	for _, w := range due {
		sess.WordIDs = append(sess.WordIDs, w.ID)
	}
	s.current = &sess
	s.logger.Debug("session started", "id", sess.ID, "kind", kind, "words", len(sess.WordIDs))
	return cloneSession(sess), nil
}

// Answer records the result for a word of the in-progress session and applies
// the spaced-repetition transition to it. The session is finalized after its last
// word. An id outside the session returns ErrUnknownWord and leaves the session
// untouched.
func (s *Service) Answer(ctx context.Context, wordID string, correct bool) (Word, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return Word{}, &StateError{Op: "answer", WordID: wordID, Err: ErrNoSession}
	}
	i := indexOf(s.words, wordID)
	if i < 0 || !containsID(s.current.WordIDs, wordID) {
		return Word{}, &StateError{Op: "answer", WordID: wordID, Err: ErrUnknownWord}
	}
	if answered(s.current, wordID) {
		return Word{}, &StateError{Op: "answer", WordID: wordID, Err: ErrAlreadyAnswered}
	}

	now := s.now().UTC()
	words := cloneWords(s.words)
	w := &words[i]
	w.Mastery = srs.Apply(w.Mastery, correct)
	w.ReviewCount++
	reviewed := now
	w.LastReviewed = &reviewed
	w.NextReview = srs.NextReview(w.Mastery, now)

	sess := cloneSession(*s.current)
	sess.Results = append(sess.Results, Answer{WordID: wordID, Correct: correct, AnsweredAt: now})

	if len(sess.Results) < len(sess.WordIDs) {
		if err := s.commit(ctx, words, s.sessions, &sess); err != nil {
			return Word{}, err
		}
		return cloneWord(*w), nil
	}

	done := finalize(sess, now)
	if err := s.commit(ctx, words, appendSession(s.sessions, done), nil); err != nil {
		return Word{}, err
	}
	s.logSession(done)
	return cloneWord(*w), nil
}

// Finalize closes the in-progress session early and records it. Without a
// session it does nothing and reports false.
func (s *Service) Finalize(ctx context.Context) (Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return Session{}, false, nil
	}
	done := finalize(cloneSession(*s.current), s.now().UTC())
	if err := s.commit(ctx, s.words, appendSession(s.sessions, done), nil); err != nil {
		return Session{}, false, err
	}
	s.logSession(done)
	return cloneSession(done), true, nil
}

// RecomputeStats refreshes the stats for the current time, e.g. after midnight.
func (s *Service) RecomputeStats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = ComputeStats(s.words, s.sessions, s.goal, s.now())
	return s.stats
}

// dueNow is the NextReview of a word with no review at its current mastery: new
// and reset words. Every other NextReview comes from srs.NextReview in Answer.
func dueNow(now time.Time) time.Time {
	return now.UTC()
}

func finalize(sess Session, now time.Time) Session {
	sess.Total = len(sess.Results)
	sess.Correct = 0
	for _, r := range sess.Results {
		if r.Correct {
			sess.Correct++
		}
	}
	sess.Duration = now.Sub(sess.CreatedAt)
	return sess
}

func (s *Service) logSession(sess Session) {
	s.logger.Info("session finalized",
		"id", sess.ID,
		"kind", sess.Kind,
		"correct", sess.Correct,
		"total", sess.Total,
		"duration", sess.Duration)
}

// commit persists the new collections and then swaps them in. Callers hold mu.
func (s *Service) commit(ctx context.Context, words []Word, sessions []Session, current *Session) error {
	if s.store != nil {
		snap := Snapshot{Version: SchemaVersion, Words: words, Sessions: sessions}
		if err := s.store.Save(ctx, snap); err != nil {
			return fmt.Errorf("save vocabulary: %w", err)
		}
	}
	s.words = words
	s.sessions = sessions
	s.current = current
	s.stats = ComputeStats(words, sessions, s.goal, s.now())
	return nil
}

func indexOf(words []Word, id string) int {
	for i, w := range words {
		if w.ID == id {
			return i
		}
	}
	return -1
}

func indexOfTerm(words []Word, term string) int {
	for i, w := range words {
		if strings.EqualFold(w.Term, term) {
			return i
		}
	}
	return -1
}

func containsID(ids []string, id string) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

func removeID(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}

func answered(sess *Session, id string) bool {
	for _, r := range sess.Results {
		if r.WordID == id {
			return true
		}
	}
	return false
}

func appendSession(sessions []Session, sess Session) []Session {
	out := make([]Session, 0, len(sessions)+1)
	out = append(out, sessions...)
	return append(out, sess)
}

func cloneWord(w Word) Word {
	w.Examples = append([]string(nil), w.Examples...)
	w.Synonyms = append([]string(nil), w.Synonyms...)
	w.Antonyms = append([]string(nil), w.Antonyms...)
	w.Tags = append([]string(nil), w.Tags...)
	if w.LastReviewed != nil {
		t := *w.LastReviewed
		w.LastReviewed = &t
	}
	return w
}

func cloneWords(words []Word) []Word {
	if words == nil {
		return nil
	}
	out := make([]Word, len(words))
	for i, w := range words {
		out[i] = cloneWord(w)
	}
	return out
}

func cloneSession(sess Session) Session {
	sess.WordIDs = append([]string(nil), sess.WordIDs...)
	sess.Results = append([]Answer(nil), sess.Results...)
	return sess
}

func cloneSessions(sessions []Session) []Session {
	if sessions == nil {
		return nil
	}
	out := make([]Session, len(sessions))
	for i, sess := range sessions {
		out[i] = cloneSession(sess)
	}
	return out
}
