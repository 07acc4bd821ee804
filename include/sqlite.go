// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package include

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS fragments (
	name    TEXT PRIMARY KEY,
	data    BLOB NOT NULL,
	updated INTEGER NOT NULL
)`

// SQLiteStore keeps fragments in a SQLite database. It lets a tool ship a
// whole effect library as a single file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path. Use ":memory:" for
// a private in-memory database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("include: open %s: %w", path, err)
	}
	// An in-memory database lives as long as its connection.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("include: create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Load implements Loader.
func (s *SQLiteStore) Load(name string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRow(`SELECT data FROM fragments WHERE name = ?`, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("include: load %q: %w", name, err)
	}
	return data, nil
}

// Save implements Store.
func (s *SQLiteStore) Save(name string, data []byte) error {
	_, err := s.db.Exec(`INSERT INTO fragments (name, data, updated) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET data = excluded.data, updated = excluded.updated`,
		name, data, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("include: save %q: %w", name, err)
	}
	return nil
}

// Remove implements Store.
func (s *SQLiteStore) Remove(name string) error {
	if _, err := s.db.Exec(`DELETE FROM fragments WHERE name = ?`, name); err != nil {
		return fmt.Errorf("include: remove %q: %w", name, err)
	}
	return nil
}

// Names returns the stored fragment names in sorted order.
func (s *SQLiteStore) Names() ([]string, error) {
	rows, err := s.db.Query(`SELECT name FROM fragments ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
