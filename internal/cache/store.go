// Package cache implements an expiring key/value cache over the durable
// local store. It shields the rate-limited card-data provider from
// redundant requests; every failure inside the cache degrades to a miss,
// never to an error.
package cache

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/CALILU/cardtradr/internal/storage"
)

// namespace prefixes every cache key so Clear can't touch other
// persisted data sharing the database.
const namespace = "tcg:"

// Store is an expiring key/value cache backed by SQLite. Entries past
// their expiry are evicted lazily on read; there is no background sweep.
// Safe for concurrent use.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

// New creates a cache store over the given database.
func New(db *storage.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		db:     db.Conn(),
		logger: logger,
		now:    time.Now,
	}
}

// Get returns the cached value for key, or absent. Expired entries are
// deleted eagerly and reported as absent. Read failures are absorbed: a
// corrupt cache must never break the caller.
func (s *Store) Get(ctx context.Context, key Key) ([]byte, bool) {
	var (
		value     []byte
		expiresAt int64
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT value, expires_at FROM cache_entries WHERE key = ?",
		namespace+key.String(),
	).Scan(&value, &expiresAt)
	if err != nil {
		if err != sql.ErrNoRows {
			s.logger.Debug("cache read failed", "key", key.String(), "error", err)
		}
		return nil, false
	}

	if s.now().UnixMilli() >= expiresAt {
		if _, err := s.db.ExecContext(ctx,
			"DELETE FROM cache_entries WHERE key = ?", namespace+key.String()); err != nil {
			s.logger.Debug("cache evict failed", "key", key.String(), "error", err)
		}
		return nil, false
	}

	return value, true
}

// Set stores value under key with the given time-to-live. Best effort:
// write failures are swallowed because the cache is not a source of truth.
func (s *Store) Set(ctx context.Context, key Key, value []byte, ttl time.Duration) {
	expiresAt := s.now().Add(ttl).UnixMilli()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cache_entries (key, value, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at
	`, namespace+key.String(), value, expiresAt)
	if err != nil {
		s.logger.Debug("cache write failed", "key", key.String(), "error", err)
	}
}

// Clear removes every namespaced entry as one batch. Used for the
// user-triggered "clear cache" action.
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM cache_entries WHERE key LIKE ?", namespace+"%")
	return err
}

// Len reports the number of live namespaced entries (diagnostics only;
// expired rows not yet evicted are included).
func (s *Store) Len(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM cache_entries WHERE key LIKE ?", namespace+"%").Scan(&n)
	return n, err
}
