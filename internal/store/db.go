package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/duckdb/duckdb-go/v2"
)

// MemoryPath opens a throwaway database. Used by tests.
const MemoryPath = ":memory:"

// NewDB opens the workspace database at path, creating its folder if needed.
func NewDB(path string) (*sql.DB, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating database folder: %w", err)
		}
	}

	conn, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, err
	}

	// DuckDB allows a single writer. One connection also serializes the
	// appends of the paper handler with the reads of the API.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	// keep extensions next to the database instead of ~/.duckdb
	if path != MemoryPath {
		if _, err := conn.Exec(fmt.Sprintf("SET extension_directory = '%s'", filepath.Dir(path))); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("setting extension directory: %w", err)
		}
	}

	return conn, nil
}
