/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 *
 * Package sqlitecache provides an implementation of httpcache.Cache that
 * stores entries in a local sqlite database file so that cached responses
 * survive across process runs.
 */
package sqlitecache

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS cache_entries (
	key TEXT PRIMARY KEY,
	data BLOB NOT NULL,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
)`

// Cache objects store and retrieve data using a sqlite database.
type Cache struct {
	db *sql.DB

	// logErrors controls whether errors should be logged or not
	logErrors bool
}

// Open opens (creating if necessary) the database at path.
func Open(path string, logErrors bool) (*Cache, error) {
	_, err := os.Stat(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("sqlitecache.open: stat %v: %w", path, err)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("sqlitecache.open: mkdir for %v: %w", path, err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlitecache.open: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlitecache.open: ping %v: %w", path, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlitecache.open: enabling WAL: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlitecache.open: creating schema: %w", err)
	}

	return &Cache{db: db, logErrors: logErrors}, nil
}

func (c *Cache) Get(key string) ([]byte, bool) {
	var data []byte
	err := c.db.QueryRow("SELECT data FROM cache_entries WHERE key = ?",
		key).Scan(&data)
	if err != nil {
		// no rows just indicates a cache miss
		if c.logErrors && !errors.Is(err, sql.ErrNoRows) {
			log.Printf("sqlitecache.get: failed to get %v: %v", key, err)
		}
		return nil, false
	}
	return data, true
}

// Set stores the provided data in the cache under the given key.
func (c *Cache) Set(key string, data []byte) {
	_, err := c.db.Exec(`INSERT INTO cache_entries (key, data, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET data = excluded.data,
			updated_at = CURRENT_TIMESTAMP`, key, data)
	if err != nil && c.logErrors {
		log.Printf("sqlitecache.set: put failed for %v: %v", key, err)
	}
}

func (c *Cache) Delete(key string) {
	_, err := c.db.Exec("DELETE FROM cache_entries WHERE key = ?", key)
	if err != nil && c.logErrors {
		log.Printf("sqlitecache.delete: delete failed for %v: %v", key, err)
	}
}

// Len returns the number of stored entries.
func (c *Cache) Len() (int, error) {
	var n int
	if err := c.db.QueryRow("SELECT COUNT(*) FROM cache_entries").Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlitecache.len: %w", err)
	}
	return n, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}
