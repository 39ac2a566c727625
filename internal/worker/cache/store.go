// Package cache persists HTTP responses in named caches backed by SQLite,
// so reads keep working across worker restarts and network outages.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/storyshare/internal/common"
	"github.com/dmitrijs2005/storyshare/internal/dbx"
	wmigrations "github.com/dmitrijs2005/storyshare/internal/worker/cache/migrations"
	"github.com/pressly/goose/v3"
)

// Entry is one cached response.
type Entry struct {
	Status   int
	Header   http.Header
	Body     []byte
	StoredAt time.Time
}

type Store struct {
	db dbx.DBTX
}

func NewStore(db dbx.DBTX) *Store {
	return &Store{db: db}
}

// InitStore opens the cache database, applies migrations, and returns a
// ready store.
func InitStore(ctx context.Context, dsn string) (*Store, *sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, nil, err
	}

	goose.SetBaseFS(wmigrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		db.Close()
		return nil, nil, err
	}

	return NewStore(db), db, nil
}

// Put inserts or overwrites the cached response for (cacheName, url).
func (s *Store) Put(ctx context.Context, cacheName, url string, e *Entry) error {
	headers, err := json.Marshal(e.Header)
	if err != nil {
		return err
	}

	query := `INSERT INTO cache_entries (cache_name, request_url, status, headers, body, stored_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(cache_name, request_url) DO UPDATE SET status = excluded.status,
				headers = excluded.headers,
				body = excluded.body,
				stored_at = excluded.stored_at`
	_, err = s.db.ExecContext(ctx, query,
		cacheName, url, e.Status, string(headers), e.Body, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to cache %s: %w: %w", url, common.ErrStorageUnavailable, err)
	}
	return nil
}

// Match returns the cached response for (cacheName, url), or common.ErrNotFound.
func (s *Store) Match(ctx context.Context, cacheName, url string) (*Entry, error) {
	query := `SELECT status, headers, body, stored_at FROM cache_entries
			WHERE cache_name = ? AND request_url = ?`
	return s.scanEntry(s.db.QueryRowContext(ctx, query, cacheName, url), url)
}

// MatchAny searches every cache for the url, mirroring a lookup that is not
// pinned to one cache name.
func (s *Store) MatchAny(ctx context.Context, url string) (*Entry, error) {
	query := `SELECT status, headers, body, stored_at FROM cache_entries
			WHERE request_url = ? LIMIT 1`
	return s.scanEntry(s.db.QueryRowContext(ctx, query, url), url)
}

// Names lists the distinct cache names currently stored.
func (s *Store) Names(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT cache_name FROM cache_entries`)
	if err != nil {
		return nil, fmt.Errorf("failed to list caches: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// DeleteOthers removes every cache whose name is not in live. Used on
// activation to drop caches left behind by previous versions.
func (s *Store) DeleteOthers(ctx context.Context, live ...string) (int64, error) {
	placeholders := make([]string, len(live))
	args := make([]any, len(live))
	for i, n := range live {
		placeholders[i] = "?"
		args[i] = n
	}

	query := `DELETE FROM cache_entries`
	if len(live) > 0 {
		query += ` WHERE cache_name NOT IN (` + strings.Join(placeholders, ", ") + `)`
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale caches: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) scanEntry(row *sql.Row, url string) (*Entry, error) {
	var (
		e        Entry
		headers  string
		storedAt string
	)
	err := row.Scan(&e.Status, &headers, &e.Body, &storedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no cached response for %s: %w", url, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache: %w", err)
	}

	if err := json.Unmarshal([]byte(headers), &e.Header); err != nil {
		return nil, fmt.Errorf("corrupt cached headers for %s: %w", url, err)
	}
	if ts, err := time.Parse(time.RFC3339Nano, storedAt); err == nil {
		e.StoredAt = ts
	}
	return &e, nil
}
