package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure-Go driver, no CGO
)

// DefaultDir is where the default backends keep their state when no
// path is supplied.
const DefaultDir = ".perscache"

// DefaultSQLiteFile is the database file name used under DefaultDir.
const DefaultSQLiteFile = "perscache.db"

// SQLite persists entries as rows of a single table with a composite
// (tag, key) primary key and a BLOB payload column. WAL mode is
// enabled for concurrent readers; upserts make Set last-write-wins.
//
// SQLite provides only the blocking Storage contract.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) a cache database at path. An
// empty path defaults to ./.perscache/perscache.db; parent directories
// are created.
func NewSQLite(path string) (*SQLite, error) {
	if path == "" {
		path = filepath.Join(DefaultDir, DefaultSQLiteFile)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// The driver serializes writes; a single connection avoids
	// SQLITE_BUSY churn under concurrent decorated functions.
	db.SetMaxOpenConns(1)

	stmts := []string{
		`PRAGMA journal_mode = WAL`,
		`PRAGMA busy_timeout = 5000`,
		`PRAGMA synchronous = NORMAL`,
		`CREATE TABLE IF NOT EXISTS cache (
			tag   TEXT NOT NULL,
			key   BLOB NOT NULL,
			value BLOB NOT NULL,
			PRIMARY KEY (tag, key)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize sqlite database: %w", err)
		}
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Get(tag string, key []byte) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRow(
		`SELECT value FROM cache WHERE tag = ? AND key = ?`, tag, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &Error{Op: "get", Tag: tag, Err: err}
	}
	return value, true, nil
}

func (s *SQLite) Set(tag string, key, value []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO cache (tag, key, value) VALUES (?, ?, ?)
		 ON CONFLICT (tag, key) DO UPDATE SET value = excluded.value`,
		tag, key, value,
	)
	if err != nil {
		return &Error{Op: "set", Tag: tag, Err: err}
	}
	return nil
}

func (s *SQLite) DeleteTag(tag string) error {
	if _, err := s.db.Exec(`DELETE FROM cache WHERE tag = ?`, tag); err != nil {
		return &Error{Op: "delete-tag", Tag: tag, Err: err}
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
