// Package kv is the local persisted state: JSON blobs under fixed keys,
// read and written as whole values (no partial updates).
package kv

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Fixed keys.
const (
	KeyConfig   = "remote_config"
	KeySnapshot = "scraped_gigs"
)

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS state (
			key      TEXT NOT NULL PRIMARY KEY,
			data     TEXT NOT NULL,
			saved_at DATETIME NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Put overwrites the whole value stored under key.
func (s *Store) Put(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kv: marshal %s: %w", key, err)
	}
	_, err = s.db.Exec(
		`INSERT INTO state (key, data, saved_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(key)
		 DO UPDATE SET data = excluded.data, saved_at = excluded.saved_at`,
		key, string(data), time.Now(),
	)
	if err != nil {
		return fmt.Errorf("kv: put %s: %w", key, err)
	}
	return nil
}

// Get reads the whole value stored under key into out. The second return is
// false when the key has never been written.
func (s *Store) Get(key string, out any) (bool, error) {
	var data string
	err := s.db.QueryRow(`SELECT data FROM state WHERE key = ?`, key).Scan(&data)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("kv: get %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(data), out); err != nil {
		return false, fmt.Errorf("kv: unmarshal %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
