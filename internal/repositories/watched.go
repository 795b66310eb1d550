package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/coursedeck/internal/models"
)

// WatchedRepository implements [models.Repository] for [models.WatchedVideo] persistence.
//
// Rows are keyed by the external video reference, so marking a video watched
// twice is an upsert rather than a duplicate.
type WatchedRepository struct {
	db *sql.DB
}

// NewWatchedRepository creates a new [WatchedRepository] with the given database connection
func NewWatchedRepository(db *sql.DB) *WatchedRepository {
	return &WatchedRepository{db: db}
}

// Create inserts a watched-video record with a generated sequence, replacing
// any existing record for the same video.
func (r *WatchedRepository) Create(watched *models.WatchedVideo) error {
	if err := watched.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "watched_videos")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	query := `
		INSERT OR REPLACE INTO watched_videos (video_id, topic, sequence, watched_at) VALUES (?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, watched.ID(), watched.Topic(), sequence, watched.WatchedAt())
	if err != nil {
		return fmt.Errorf("failed to insert watched video: %w", err)
	}

	return nil
}

// Get retrieves a watched-video record by video reference
func (r *WatchedRepository) Get(videoID string) (*models.WatchedVideo, error) {
	query := `
		SELECT video_id, topic, sequence, watched_at
		FROM watched_videos
		WHERE video_id = ?
	`

	watched, err := scanWatched(r.db.QueryRow(query, videoID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("watched video not found: %s", videoID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query watched video: %w", err)
	}

	return watched, nil
}

// Update refreshes the watched timestamp for an existing record
func (r *WatchedRepository) Update(watched *models.WatchedVideo) error {
	if err := watched.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	watched.SetWatchedAt(now)

	result, err := r.db.Exec("UPDATE watched_videos SET topic = ?, watched_at = ? WHERE video_id = ?", watched.Topic(), now, watched.ID())
	if err != nil {
		return fmt.Errorf("failed to update watched video: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("watched video not found: %s", watched.ID())
	}

	return nil
}

// Delete removes a watched-video record by video reference
func (r *WatchedRepository) Delete(videoID string) error {
	result, err := r.db.Exec("DELETE FROM watched_videos WHERE video_id = ?", videoID)
	if err != nil {
		return fmt.Errorf("failed to delete watched video: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("watched video not found: %s", videoID)
	}

	return nil
}

// Clear removes every watched-video record, used on sign-out so the next
// account starts without the previous user's overlay
func (r *WatchedRepository) Clear() error {
	if _, err := r.db.Exec("DELETE FROM watched_videos"); err != nil {
		return fmt.Errorf("failed to clear watched videos: %w", err)
	}
	return nil
}

// List retrieves all watched-video records matching the given criteria
func (r *WatchedRepository) List(criteria map[string]any) ([]*models.WatchedVideo, error) {
	query := `
		SELECT video_id, topic, sequence, watched_at
		FROM watched_videos
		WHERE 1 = 1
	`

	args := []any{}

	if topic, ok := criteria["topic"].(string); ok && topic != "" {
		query += " AND topic = ?"
		args = append(args, topic)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query watched videos: %w", err)
	}
	defer rows.Close()

	var records []*models.WatchedVideo
	for rows.Next() {
		watched, err := scanWatched(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan watched video: %w", err)
		}
		records = append(records, watched)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

// WatchedMap returns the video references of every watched record, keyed for
// catalog overlay lookups.
func (r *WatchedRepository) WatchedMap() (map[string]bool, error) {
	records, err := r.List(map[string]any{})
	if err != nil {
		return nil, err
	}

	watched := make(map[string]bool, len(records))
	for _, record := range records {
		watched[record.ID()] = true
	}

	return watched, nil
}

func scanWatched(row rowScanner) (*models.WatchedVideo, error) {
	var (
		videoID   string
		topic     string
		sequence  int
		watchedAt time.Time
	)

	if err := row.Scan(&videoID, &topic, &sequence, &watchedAt); err != nil {
		return nil, err
	}

	watched := models.NewWatchedVideo(sequence, topic, videoID)
	watched.SetWatchedAt(watchedAt)

	return watched, nil
}
