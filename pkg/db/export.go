package db

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"

	"github.com/japaniel/readlex/pkg/vocabulary"
)

// ExportJSON writes snap as indented JSON.
func ExportJSON(w io.Writer, snap vocabulary.Snapshot) error {
	snap.Version = vocabulary.SchemaVersion
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(snap), "encode snapshot")
}

// ImportJSON reads a snapshot written by ExportJSON. A missing version is taken
// as version 1; a newer version fails with ErrSchemaVersion.
func ImportJSON(r io.Reader) (vocabulary.Snapshot, error) {
	var snap vocabulary.Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return vocabulary.Snapshot{}, errors.Wrap(err, "decode snapshot")
	}
	if snap.Version > vocabulary.SchemaVersion {
		return vocabulary.Snapshot{}, errors.Wrapf(ErrSchemaVersion, "snapshot is version %d", snap.Version)
	}
	snap.Version = vocabulary.SchemaVersion

	seen := make(map[string]bool, len(snap.Words))
	for i, w := range snap.Words {
		if w.ID == "" || w.Term == "" {
			return vocabulary.Snapshot{}, errors.Errorf("word %d: id and term are required", i)
		}
		if seen[w.ID] {
			return vocabulary.Snapshot{}, errors.Errorf("word %d: duplicate id %s", i, w.ID)
		}
		seen[w.ID] = true
		if w.Mastery < 0 || w.Mastery > 5 {
			return vocabulary.Snapshot{}, errors.Errorf("word %q: mastery %d out of range", w.Term, w.Mastery)
		}
	}
	return snap, nil
}
