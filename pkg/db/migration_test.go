package db

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func tableColumns(t *testing.T, dbConn *sql.DB, table string) map[string]bool {
	t.Helper()
	rows, err := dbConn.Query("PRAGMA table_info(" + table + ")")
	if err != nil {
		t.Fatalf("pragmas: %v", err)
	}
	defer rows.Close()
	cols := map[string]bool{}
	for rows.Next() {
		var cid int
		var colName, ctype string
		var notnull, pk int
		var dfltVal interface{}
		if err := rows.Scan(&cid, &colName, &ctype, &notnull, &dfltVal, &pk); err != nil {
			t.Fatalf("scan col: %v", err)
		}
		cols[colName] = true
	}
	return cols
}

// TestInitDBCreatesFinalSchema verifies a fresh database gets every table and
// records the current schema version.
func TestInitDBCreatesFinalSchema(t *testing.T) {
	dbConn := setupTestDB(t)
	defer dbConn.Close()

	for _, table := range []string{"meta", "sources", "words", "sessions", "word_sources"} {
		var name string
		if err := dbConn.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name); err != nil {
			t.Fatalf("%s table missing: %v", table, err)
		}
	}

	cols := tableColumns(t, dbConn, "words")
	for _, c := range []string{"id", "term", "mastery", "next_review", "last_reviewed", "source_id", "examples"} {
		if !cols[c] {
			t.Errorf("expected column %s in words, got %v", c, cols)
		}
	}

	v, ok, err := StoredVersion(dbConn)
	if err != nil || !ok || v != SchemaVersion {
		t.Fatalf("StoredVersion = %d, %v, %v; want %d", v, ok, err, SchemaVersion)
	}

	// Migrations are idempotent.
	if err := InitDB(dbConn); err != nil {
		t.Fatalf("second InitDB: %v", err)
	}
}

func TestInitDBMigratesMissingVersion(t *testing.T) {
	dbConn, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer dbConn.Close()
	dbConn.SetMaxOpenConns(1)

	// A database from before versioning: meta table exists without a version row.
	if _, err := dbConn.Exec(`CREATE TABLE meta (key TEXT PRIMARY KEY, value TEXT NOT NULL)`); err != nil {
		t.Fatalf("create meta: %v", err)
	}
	if _, ok, err := StoredVersion(dbConn); ok || err != nil {
		t.Fatalf("expected no stored version, got ok=%v err=%v", ok, err)
	}
	if err := InitDB(dbConn); err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	if v, ok, _ := StoredVersion(dbConn); !ok || v != SchemaVersion {
		t.Fatalf("expected version %d after migration, got %d (ok=%v)", SchemaVersion, v, ok)
	}
}

func TestInitDBRejectsNewerVersion(t *testing.T) {
	dbConn := setupTestDB(t)
	defer dbConn.Close()

	if _, err := dbConn.Exec(`UPDATE meta SET value = '99' WHERE key = 'schema_version'`); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	if err := InitDB(dbConn); !errors.Is(err, ErrSchemaVersion) {
		t.Fatalf("expected ErrSchemaVersion, got %v", err)
	}
	if _, err := NewStore(dbConn, nil).Load(t.Context()); !errors.Is(err, ErrSchemaVersion) {
		t.Fatalf("expected Load to fail with ErrSchemaVersion, got %v", err)
	}
	// The version must not have been downgraded.
	if v, _, _ := StoredVersion(dbConn); v != 99 {
		t.Fatalf("expected version to stay 99, got %d", v)
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "readlex.db")
	conn, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := CreateOrGetSource(conn, "file", "a.txt", "", "", "", ""); err != nil {
		t.Fatalf("create source: %v", err)
	}
	conn.Close()

	conn, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer conn.Close()
	sources, err := ListSources(conn)
	if err != nil || len(sources) != 1 {
		t.Fatalf("expected 1 persisted source, got %d (%v)", len(sources), err)
	}
}
