package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// DBExecutor is an interface that allows methods to accept either *sql.DB or *sql.Tx
type DBExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// isUniqueConstraintErr returns true when the error indicates a unique/constraint violation
func isUniqueConstraintErr(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "unique") || strings.Contains(s, "constraint failed")
}

// CreateOrGetSource returns existing source id or inserts a new source and returns its id.
// Sources are identified by url, title and author.
func CreateOrGetSource(db DBExecutor, sourceType, title, author, website, url, meta string) (int64, error) {
	trimmedSourceType := strings.TrimSpace(sourceType)
	if trimmedSourceType == "" {
		return 0, fmt.Errorf("sourceType must be non-empty")
	}

	const maxRetries = 3

	var id int64
	for attempt := 0; attempt < maxRetries; attempt++ {
		err := db.QueryRow(
			`SELECT id FROM sources WHERE url = ? AND title = ? AND author = ?`,
			url, title, author,
		).Scan(&id)
		if err == nil {
			return id, nil
		}
		if err != sql.ErrNoRows {
			return 0, errors.Wrap(err, "find source")
		}

		res, err := db.Exec(
			`INSERT INTO sources (source_type, title, author, website, url, meta, added_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			trimmedSourceType, title, author, website, url, meta, formatTime(time.Now()),
		)
		if err != nil {
			// If another concurrent transaction inserted the same source, retry the SELECT.
			if isUniqueConstraintErr(err) {
				continue
			}
			return 0, errors.Wrap(err, "insert source")
		}
		return res.LastInsertId()
	}

	return 0, fmt.Errorf("could not create or get source after %d retries", maxRetries)
}

// GetSource returns the source with the given id.
func GetSource(db DBExecutor, id int64) (Source, error) {
	var s Source
	var added string
	err := db.QueryRow(`SELECT id, source_type, title, author, website, url, meta, added_at FROM sources WHERE id = ?`, id).
		Scan(&s.ID, &s.SourceType, &s.Title, &s.Author, &s.Website, &s.URL, &s.Meta, &added)
	if err != nil {
		return Source{}, errors.Wrapf(err, "get source %d", id)
	}
	if s.AddedAt, err = parseTime(added); err != nil {
		return Source{}, err
	}
	return s, nil
}

// ListSources returns every source, oldest first.
func ListSources(db DBExecutor) ([]Source, error) {
	rows, err := db.Query(`SELECT id, source_type, title, author, website, url, meta, added_at FROM sources ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "list sources")
	}
	defer rows.Close()
	var out []Source
	for rows.Next() {
		var s Source
		var added string
		if err := rows.Scan(&s.ID, &s.SourceType, &s.Title, &s.Author, &s.Website, &s.URL, &s.Meta, &added); err != nil {
			return nil, err
		}
		if s.AddedAt, err = parseTime(added); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// RecordSighting notes that wordID occurred in sourceID. Repeated sightings in the
// same source increase the occurrence count and keep the latest context sentence.
func RecordSighting(db DBExecutor, wordID string, sourceID int64, context string, incrementAmount int) error {
	if wordID == "" {
		return fmt.Errorf("wordID must be non-empty")
	}
	if sourceID <= 0 {
		return fmt.Errorf("sourceID must be positive")
	}
	if incrementAmount < 1 {
		return fmt.Errorf("incrementAmount must be positive, got %d", incrementAmount)
	}

	_, err := db.Exec(`INSERT INTO word_sources (word_id, source_id, context_sentence, occurrence_count, first_seen_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(word_id, source_id) DO UPDATE SET
	  occurrence_count = word_sources.occurrence_count + excluded.occurrence_count,
	  context_sentence = COALESCE(NULLIF(excluded.context_sentence, ''), word_sources.context_sentence)`,
		wordID, sourceID, strings.TrimSpace(context), incrementAmount, formatTime(time.Now()))
	return errors.Wrap(err, "record sighting")
}

// SightingsForWord returns the sources a word was seen in, earliest first.
func SightingsForWord(db DBExecutor, wordID string) ([]Sighting, error) {
	rows, err := db.Query(`SELECT word_id, source_id, context_sentence, occurrence_count, first_seen_at
		FROM word_sources WHERE word_id = ? ORDER BY first_seen_at, source_id`, wordID)
	if err != nil {
		return nil, errors.Wrap(err, "query sightings")
	}
	defer rows.Close()
	var out []Sighting
	for rows.Next() {
		var s Sighting
		var first string
		if err := rows.Scan(&s.WordID, &s.SourceID, &s.ContextSentence, &s.OccurrenceCount, &first); err != nil {
			return nil, err
		}
		if s.FirstSeenAt, err = parseTime(first); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// SightingCounts returns the total number of sightings per word id.
func SightingCounts(db DBExecutor) (map[string]int, error) {
	rows, err := db.Query(`SELECT word_id, SUM(occurrence_count) FROM word_sources GROUP BY word_id`)
	if err != nil {
		return nil, errors.Wrap(err, "count sightings")
	}
	defer rows.Close()
	out := make(map[string]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		out[id] = n
	}
	return out, rows.Err()
}
