package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/japaniel/readlex/pkg/vocabulary"
)

// Store persists vocabulary snapshots in SQLite.
type Store struct {
	conn   *sql.DB
	logger *slog.Logger
}

// NewStore wraps a migrated connection.
func NewStore(conn *sql.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{conn: conn, logger: logger}
}

// DB returns the underlying connection.
func (s *Store) DB() *sql.DB { return s.conn }

// Load reads the full vocabulary.
func (s *Store) Load(ctx context.Context) (vocabulary.Snapshot, error) {
	v, ok, err := StoredVersion(s.conn)
	if err != nil {
		return vocabulary.Snapshot{}, err
	}
	if ok && v > SchemaVersion {
		return vocabulary.Snapshot{}, errors.Wrapf(ErrSchemaVersion, "database is version %d", v)
	}

	words, err := loadWords(ctx, s.conn)
	if err != nil {
		return vocabulary.Snapshot{}, err
	}
	sessions, err := loadSessions(ctx, s.conn)
	if err != nil {
		return vocabulary.Snapshot{}, err
	}
	return vocabulary.Snapshot{Version: vocabulary.SchemaVersion, Words: words, Sessions: sessions}, nil
}

// Save replaces the stored words and sessions with snap in one transaction.
func (s *Store) Save(ctx context.Context, snap vocabulary.Snapshot) (err error) {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin save")
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Error("rollback failed", "error", rbErr)
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM words`); err != nil {
		return errors.Wrap(err, "clear words")
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM sessions`); err != nil {
		return errors.Wrap(err, "clear sessions")
	}

	wordStmt, err := tx.PrepareContext(ctx, `INSERT INTO words (
		id, position, term, definition, part_of_speech, pronunciation, etymology,
		examples, synonyms, antonyms, tags, context, source_id,
		created_at, last_reviewed, review_count, mastery, next_review
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, (SELECT id FROM sources WHERE id = ?), ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "prepare word insert")
	}
	defer wordStmt.Close()

	for i, w := range snap.Words {
		var lastReviewed interface{}
		if w.LastReviewed != nil {
			lastReviewed = formatTime(*w.LastReviewed)
		}
		if _, err = wordStmt.ExecContext(ctx,
			w.ID, i, w.Term, w.Definition, w.PartOfSpeech, w.Pronunciation, w.Etymology,
			jsonList(w.Examples), jsonList(w.Synonyms), jsonList(w.Antonyms), jsonList(w.Tags),
			w.Context, w.SourceID,
			formatTime(w.CreatedAt), lastReviewed, w.ReviewCount, w.Mastery, formatTime(w.NextReview),
		); err != nil {
			return errors.Wrapf(err, "insert word %q", w.Term)
		}
	}

	sessStmt, err := tx.PrepareContext(ctx, `INSERT INTO sessions (
		id, position, kind, word_ids, results, correct, total, duration_ms, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "prepare session insert")
	}
	defer sessStmt.Close()

	for i, sess := range snap.Sessions {
		results, merr := json.Marshal(sess.Results)
		if merr != nil {
			return errors.Wrap(merr, "encode session results")
		}
		if _, err = sessStmt.ExecContext(ctx,
			sess.ID, i, string(sess.Kind), jsonList(sess.WordIDs), string(results),
			sess.Correct, sess.Total, sess.Duration.Milliseconds(), formatTime(sess.CreatedAt),
		); err != nil {
			return errors.Wrapf(err, "insert session %s", sess.ID)
		}
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM word_sources WHERE word_id NOT IN (SELECT id FROM words)`); err != nil {
		return errors.Wrap(err, "prune sightings")
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit save")
	}
	return nil
}

func loadWords(ctx context.Context, conn *sql.DB) ([]vocabulary.Word, error) {
	rows, err := conn.QueryContext(ctx, `SELECT
		id, term, definition, part_of_speech, pronunciation, etymology,
		examples, synonyms, antonyms, tags, context, source_id,
		created_at, last_reviewed, review_count, mastery, next_review
		FROM words ORDER BY position`)
	if err != nil {
		return nil, errors.Wrap(err, "query words")
	}
	defer rows.Close()

	var out []vocabulary.Word
	for rows.Next() {
		var w vocabulary.Word
		var examples, synonyms, antonyms, tags string
		var sourceID sql.NullInt64
		var created, next string
		var lastReviewed sql.NullString
		if err := rows.Scan(&w.ID, &w.Term, &w.Definition, &w.PartOfSpeech, &w.Pronunciation, &w.Etymology,
			&examples, &synonyms, &antonyms, &tags, &w.Context, &sourceID,
			&created, &lastReviewed, &w.ReviewCount, &w.Mastery, &next); err != nil {
			return nil, errors.Wrap(err, "scan word")
		}
		if sourceID.Valid {
			w.SourceID = sourceID.Int64
		}
		for _, f := range []struct {
			raw string
			dst *[]string
		}{{examples, &w.Examples}, {synonyms, &w.Synonyms}, {antonyms, &w.Antonyms}, {tags, &w.Tags}} {
			if *f.dst, err = decodeList(f.raw); err != nil {
				return nil, errors.Wrapf(err, "decode list for word %q", w.Term)
			}
		}
		if w.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		if w.NextReview, err = parseTime(next); err != nil {
			return nil, err
		}
		if lastReviewed.Valid {
			t, err := parseTime(lastReviewed.String)
			if err != nil {
				return nil, err
			}
			w.LastReviewed = &t
		}
		out = append(out, w)
	}
	return out, errors.Wrap(rows.Err(), "iterate words")
}

func loadSessions(ctx context.Context, conn *sql.DB) ([]vocabulary.Session, error) {
	rows, err := conn.QueryContext(ctx, `SELECT id, kind, word_ids, results, correct, total, duration_ms, created_at
		FROM sessions ORDER BY position`)
	if err != nil {
		return nil, errors.Wrap(err, "query sessions")
	}
	defer rows.Close()

	var out []vocabulary.Session
	for rows.Next() {
		var sess vocabulary.Session
		var kind, wordIDs, results, created string
		var durationMS int64
		if err := rows.Scan(&sess.ID, &kind, &wordIDs, &results, &sess.Correct, &sess.Total, &durationMS, &created); err != nil {
			return nil, errors.Wrap(err, "scan session")
		}
		sess.Kind = vocabulary.SessionKind(kind)
		sess.Duration = time.Duration(durationMS) * time.Millisecond
		if sess.WordIDs, err = decodeList(wordIDs); err != nil {
			return nil, errors.Wrapf(err, "decode word ids for session %s", sess.ID)
		}
		if err := json.Unmarshal([]byte(results), &sess.Results); err != nil {
			return nil, errors.Wrapf(err, "decode results for session %s", sess.ID)
		}
		if sess.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, errors.Wrap(rows.Err(), "iterate sessions")
}

func jsonList(items []string) string {
	if len(items) == 0 {
		return "[]"
	}
	b, err := json.Marshal(items)
	if err != nil {
		// A []string always marshals.
		panic(err)
	}
	return string(b)
}

func decodeList(raw string) ([]string, error) {
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "parse time %q", s)
	}
	return t.UTC(), nil
}
