// Package cache stores downloaded rasters and generated assets in SQLite,
// keyed by location, radius and asset kind.
package cache

import (
	"bytes"
	"compress/gzip"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pierrre/geohash"
	_ "modernc.org/sqlite" // Register driver

	"go.ngs.io/terrain-api/internal/domain"
	"go.ngs.io/terrain-api/internal/metrics"
)

// geohashPrecision is the key precision; 12 characters resolve to a few centimeters.
const geohashPrecision = 12

// Key builds the cache key of an asset.
func Key(center domain.GeodeticPoint, radiusM float64, kind string) string {
	return fmt.Sprintf("%s:%d:%s", geohash.Encode(center.LatDeg, center.LonDeg, geohashPrecision), int(radiusM), kind)
}

// Store is an SQLite-backed asset cache.
type Store struct {
	db     *sql.DB
	maxAge time.Duration
}

// Open opens (creating when needed) the cache database at path. Entries
// older than maxAge are treated as misses; zero keeps entries forever.
func Open(path string, maxAge time.Duration) (*Store, error) {
	if path != ":memory:" {
		//nolint:gosec // G301: cache directory.
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create cache dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping cache db: %w", err)
	}
	for _, pragma := range []string{"PRAGMA journal_mode=WAL;", "PRAGMA busy_timeout=30000;"} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}
	// A single connection avoids SQLITE_BUSY on concurrent writes.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, maxAge: maxAge}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("cache migration failed: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS assets (
		key TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		data BLOB NOT NULL,
		created_at DATETIME NOT NULL
	);`)
	return err
}

// Get returns the cached asset for key. Expired entries are misses.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var (
		kind    string
		data    []byte
		created time.Time
	)
	err := s.db.QueryRowContext(ctx, "SELECT kind, data, created_at FROM assets WHERE key = ?", key).
		Scan(&kind, &data, &created)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.CacheLookups.WithLabelValues(kindOf(key), "miss").Inc()
		return nil, false, nil
	}
	if err != nil {
		metrics.CacheLookups.WithLabelValues(kindOf(key), "error").Inc()
		return nil, false, fmt.Errorf("failed to read cache entry: %w", err)
	}
	if s.maxAge > 0 && time.Since(created) > s.maxAge {
		metrics.CacheLookups.WithLabelValues(kind, "miss").Inc()
		return nil, false, nil
	}

	out, err := decompress(data)
	if err != nil {
		metrics.CacheLookups.WithLabelValues(kind, "error").Inc()
		return nil, false, fmt.Errorf("failed to decompress cache entry: %w", err)
	}
	metrics.CacheLookups.WithLabelValues(kind, "hit").Inc()
	return out, true, nil
}

// Put stores data under key, replacing any previous entry.
func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	compressed, err := compress(data)
	if err != nil {
		return fmt.Errorf("failed to compress cache entry: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO assets (key, kind, data, created_at) VALUES (?, ?, ?, ?)",
		key, kindOf(key), compressed, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Prune removes entries older than olderThan and returns how many were removed.
func (s *Store) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM assets WHERE created_at < ?", time.Now().UTC().Add(-olderThan))
	if err != nil {
		return 0, fmt.Errorf("failed to prune cache: %w", err)
	}
	n, _ := res.RowsAffected()
	slog.Debug("cache pruned", "removed", n, "older_than", olderThan)
	return n, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// kindOf returns the kind suffix of a key built by Key.
func kindOf(key string) string {
	for i := len(key) - 1; i >= 0; i-- {
		if key[i] == ':' {
			return key[i+1:]
		}
	}
	return "unknown"
}

func compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompress(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer func() { _ = zr.Close() }()
	return io.ReadAll(zr)
}
