package datasource

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/orthoweb/pkg/debug"
)

const responsesSchema = `
CREATE TABLE IF NOT EXISTS responses (
	path       TEXT PRIMARY KEY,
	body       BLOB NOT NULL,
	fetched_at INTEGER NOT NULL,
	expires_at INTEGER
)`

// SQLiteCache persists service responses across runs. It satisfies
// wdk.Cache.
type SQLiteCache struct {
	db   *sql.DB
	path string
	ttl  time.Duration
	now  func() time.Time
}

// OpenSQLiteCache opens or creates the cache database. A ttl <= 0 keeps
// entries forever.
func OpenSQLiteCache(path string, ttl time.Duration) (*SQLiteCache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open cache database: %w", err)
	}
	if _, err := db.Exec(responsesSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create responses table: %w", err)
	}

	return &SQLiteCache{db: db, path: path, ttl: ttl, now: time.Now}, nil
}

// Close closes the database connection
func (c *SQLiteCache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Path returns the database file.
func (c *SQLiteCache) Path() string { return c.path }

// Get returns a fresh cached body. Expired rows are removed on read.
func (c *SQLiteCache) Get(path string) ([]byte, bool) {
	var body []byte
	var expires sql.NullInt64
	err := c.db.QueryRow(`SELECT body, expires_at FROM responses WHERE path = ?`, path).Scan(&body, &expires)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			debug.Log("datasource: cache read %s: %v", path, err)
		}
		return nil, false
	}
	if expires.Valid && c.now().UnixNano() >= expires.Int64 {
		_ = c.Delete(path)
		return nil, false
	}
	return body, true
}

// Put stores or replaces a body.
func (c *SQLiteCache) Put(path string, body []byte) error {
	now := c.now()
	var expires sql.NullInt64
	if c.ttl > 0 {
		expires = sql.NullInt64{Int64: now.Add(c.ttl).UnixNano(), Valid: true}
	}
	_, err := c.db.Exec(`
		INSERT INTO responses (path, body, fetched_at, expires_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET body = excluded.body, fetched_at = excluded.fetched_at, expires_at = excluded.expires_at`,
		path, body, now.UnixNano(), expires)
	if err != nil {
		return fmt.Errorf("cache write %s: %w", path, err)
	}
	return nil
}

// Delete removes a cached body.
func (c *SQLiteCache) Delete(path string) error {
	if _, err := c.db.Exec(`DELETE FROM responses WHERE path = ?`, path); err != nil {
		return fmt.Errorf("cache delete %s: %w", path, err)
	}
	return nil
}

// Purge removes every expired row and reports how many were dropped.
func (c *SQLiteCache) Purge() (int64, error) {
	res, err := c.db.Exec(`DELETE FROM responses WHERE expires_at IS NOT NULL AND expires_at <= ?`, c.now().UnixNano())
	if err != nil {
		return 0, fmt.Errorf("cache purge: %w", err)
	}
	return res.RowsAffected()
}

// Len returns the number of stored rows, expired or not.
func (c *SQLiteCache) Len() (int, error) {
	var n int
	if err := c.db.QueryRow(`SELECT COUNT(*) FROM responses`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
