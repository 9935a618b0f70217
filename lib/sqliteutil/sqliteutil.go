package sqliteutil

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

func wrapOpenDB(err error) error {
	return fmt.Errorf("open db: %w", err)
}

// OpenDB opens a sqlite database at path (":memory:" works) and applies
// the given schema. Remote libsql urls (libsql://...) are passed to the
// libsql driver instead.
func OpenDB(schema, path string) (*sql.DB, error) {
	driver := "sqlite"
	if strings.HasPrefix(path, "libsql://") {
		driver = "libsql"
	} else if path != ":memory:" {
		os.MkdirAll(filepath.Dir(path), 0777)
	}

	db, err := sql.Open(driver, path)
	if err != nil {
		return nil, wrapOpenDB(err)
	}

	// see this stackoverflow post for information on why the following
	// lines exist: https://stackoverflow.com/questions/35804884/sqlite-concurrent-writing-performance
	db.SetMaxOpenConns(1)
	if driver == "sqlite" {
		_, err = db.Exec("PRAGMA journal_mode=WAL")
		if err != nil {
			return nil, wrapOpenDB(err)
		}
	}

	// the schema only uses CREATE TABLE IF NOT EXISTS / CREATE INDEX IF
	// NOT EXISTS so applying it on every open is the migration story
	_, err = db.Exec(schema)
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		return nil, wrapOpenDB(err)
	}

	return db, nil
}
