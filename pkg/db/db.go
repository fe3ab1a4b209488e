package db

import (
	"database/sql"
	_ "embed"
	"strconv"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// SchemaVersion is the database schema version this binary writes.
const SchemaVersion = 1

// ErrSchemaVersion is returned for a database written by a newer binary.
var ErrSchemaVersion = errors.New("unsupported schema version")

//go:embed migrations.sql
var migrationsSQL string

// Open opens (creating if needed) the SQLite database at path and migrates it.
// Use ":memory:" for a throwaway database.
func Open(path string) (*sql.DB, error) {
	dsn := path
	if path != ":memory:" {
		dsn = "file:" + path + "?_foreign_keys=on&_busy_timeout=5000"
	}
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	// A single connection keeps :memory: databases shared and serialises writers.
	conn.SetMaxOpenConns(1)
	if err := InitDB(conn); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// InitDB runs migrations on the given DB connection using the embedded SQL.
// Databases with an older or missing schema version are migrated forward; a
// newer version fails with ErrSchemaVersion and leaves the database untouched.
func InitDB(db *sql.DB) error {
	v, ok, err := StoredVersion(db)
	if err != nil {
		return err
	}
	if ok && v > SchemaVersion {
		return errors.Wrapf(ErrSchemaVersion, "database is version %d, this build supports up to %d", v, SchemaVersion)
	}

	stmts := strings.Split(migrationsSQL, ";")
	for _, s := range stmts {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, err := db.Exec(s); err != nil {
			return errors.Wrapf(err, "migrate: %.40s", s)
		}
	}

	_, err = db.Exec(`INSERT INTO meta (key, value) VALUES ('schema_version', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, strconv.Itoa(SchemaVersion))
	return errors.Wrap(err, "record schema version")
}

// StoredVersion returns the schema version recorded in the database. ok is false
// for a database that has never been migrated.
func StoredVersion(db DBExecutor) (version int, ok bool, err error) {
	var name string
	err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'meta'`).Scan(&name)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, errors.Wrap(err, "inspect schema")
	}

	var raw string
	err = db.QueryRow(`SELECT value FROM meta WHERE key = 'schema_version'`).Scan(&raw)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, errors.Wrap(err, "read schema version")
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, errors.Wrapf(err, "parse schema version %q", raw)
	}
	return v, true, nil
}
