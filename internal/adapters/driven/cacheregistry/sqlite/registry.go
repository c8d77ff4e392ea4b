// Package sqlite provides a SQLite-backed cache registry. It persists
// the (cache id, law id, content hash, expiry) association so cache
// reuse survives process restarts.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/leyrag-labs/leyrag/internal/core/domain"
	"github.com/leyrag-labs/leyrag/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.CacheRegistry = (*Registry)(nil)

const schema = `
	CREATE TABLE IF NOT EXISTS cache_sessions (
		cache_id     TEXT PRIMARY KEY,
		law_id       TEXT NOT NULL UNIQUE,
		content_hash TEXT NOT NULL,
		expires_at   DATETIME NOT NULL,
		model        TEXT NOT NULL,
		created_at   DATETIME DEFAULT CURRENT_TIMESTAMP
	)
`

// Registry is a SQLite-backed implementation of driven.CacheRegistry.
// One row per law: tracking a new cache for a law replaces the old row.
type Registry struct {
	db   *sql.DB
	path string
}

// NewRegistry creates a registry at the specified data directory.
// If dataDir is empty, defaults to ~/.leyrag/data/caches.db.
func NewRegistry(dataDir string) (*Registry, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".leyrag", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "caches.db")

	// WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache_sessions table: %w", err)
	}

	return &Registry{db: db, path: dbPath}, nil
}

// Close closes the database connection.
func (r *Registry) Close() error {
	return r.db.Close()
}

// Path returns the database file path.
func (r *Registry) Path() string {
	return r.path
}

// Put stores or replaces the tracked session for a law.
func (r *Registry) Put(ctx context.Context, session domain.CacheSession) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cache_sessions (cache_id, law_id, content_hash, expires_at, model)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(law_id) DO UPDATE SET
			cache_id = excluded.cache_id,
			content_hash = excluded.content_hash,
			expires_at = excluded.expires_at,
			model = excluded.model
	`, session.CacheID, session.LawID, session.ContentHash, session.ExpiresAt.UTC(), session.Model)

	if err != nil {
		return fmt.Errorf("saving cache session: %w", err)
	}
	return nil
}

// Find retrieves the tracked session for a law.
func (r *Registry) Find(ctx context.Context, lawID string) (*domain.CacheSession, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT cache_id, law_id, content_hash, expires_at, model
		FROM cache_sessions WHERE law_id = ?
	`, lawID)

	return scanSession(row)
}

// List returns all tracked sessions, expired ones included.
func (r *Registry) List(ctx context.Context) ([]domain.CacheSession, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT cache_id, law_id, content_hash, expires_at, model
		FROM cache_sessions ORDER BY law_id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying cache sessions: %w", err)
	}
	defer rows.Close()

	var sessions []domain.CacheSession //nolint:prealloc // size unknown from query
	for rows.Next() {
		var session domain.CacheSession
		var expiresAt sql.NullTime
		if err := rows.Scan(&session.CacheID, &session.LawID, &session.ContentHash,
			&expiresAt, &session.Model); err != nil {
			return nil, fmt.Errorf("scanning cache session: %w", err)
		}
		if expiresAt.Valid {
			session.ExpiresAt = expiresAt.Time
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating cache sessions: %w", err)
	}

	return sessions, nil
}

// Remove deletes the tracked session with the given cache id.
func (r *Registry) Remove(ctx context.Context, cacheID string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM cache_sessions WHERE cache_id = ?", cacheID)
	if err != nil {
		return fmt.Errorf("deleting cache session: %w", err)
	}
	return nil
}

// scanSession scans a single cache session row.
func scanSession(row *sql.Row) (*domain.CacheSession, error) {
	var session domain.CacheSession
	var expiresAt sql.NullTime

	if err := row.Scan(&session.CacheID, &session.LawID, &session.ContentHash,
		&expiresAt, &session.Model); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning cache session: %w", err)
	}

	if expiresAt.Valid {
		session.ExpiresAt = expiresAt.Time
	}

	return &session, nil
}
