package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mcolella14/mixtape/internal/shared"
)

const resolveCacheSchema = `
CREATE TABLE IF NOT EXISTS resolved_tracks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	track_key TEXT NOT NULL UNIQUE,
	video_id TEXT NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_resolved_tracks_key ON resolved_tracks(track_key);
`

// ResolveCache persists (title, artists) → video ID mappings in SQLite.
type ResolveCache struct {
	db *sql.DB
}

// NewResolveCache creates a ResolveCache backed by the given database.
func NewResolveCache(db *sql.DB) *ResolveCache {
	return &ResolveCache{db: db}
}

// Migrate creates the resolve cache schema if it does not exist.
func (r *ResolveCache) Migrate() error {
	if _, err := r.db.Exec(resolveCacheSchema); err != nil {
		return fmt.Errorf("failed to migrate resolve cache: %w", err)
	}
	return nil
}

// Get looks up a cached video ID for the track. The second return value
// reports whether the key was present.
func (r *ResolveCache) Get(title, artists string) (string, bool, error) {
	key := shared.NormalizeTrackKey(title, artists)

	var videoID string
	err := r.db.QueryRow(
		"SELECT video_id FROM resolved_tracks WHERE track_key = ?", key,
	).Scan(&videoID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query resolve cache: %w", err)
	}

	return videoID, true, nil
}

// Put stores a resolved video ID for the track.
// Duplicate keys are silently ignored (UNIQUE constraint violations).
func (r *ResolveCache) Put(title, artists, videoID string) error {
	key := shared.NormalizeTrackKey(title, artists)

	_, err := r.db.Exec(
		"INSERT INTO resolved_tracks (track_key, video_id) VALUES (?, ?)", key, videoID,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil
		}
		return fmt.Errorf("failed to cache resolved track: %w", err)
	}

	return nil
}

// Clear drops all cached resolutions.
func (r *ResolveCache) Clear() error {
	if _, err := r.db.Exec("DELETE FROM resolved_tracks"); err != nil {
		return fmt.Errorf("failed to clear resolve cache: %w", err)
	}
	return nil
}

// Count reports the number of cached resolutions.
func (r *ResolveCache) Count() (int, error) {
	var n int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM resolved_tracks").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count resolve cache: %w", err)
	}
	return n, nil
}
