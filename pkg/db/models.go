package db

import "time"

// Source is a provenance record for where a word was seen.
type Source struct {
	ID         int64
	SourceType string
	Title      string
	Author     string
	Website    string
	URL        string
	Meta       string
	AddedAt    time.Time
}

// Sighting records that a vocabulary word appeared in a source.
type Sighting struct {
	WordID          string
	SourceID        int64
	ContextSentence string
	OccurrenceCount int
	FirstSeenAt     time.Time
}
