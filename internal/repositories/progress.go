package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/coursedeck/internal/models"
)

// ProgressRepository persists per-topic watch summaries.
//
// Rows are derived snapshots keyed by topic name, refreshed after every
// catalog load or toggle so summaries survive offline runs. The spreadsheet
// remains the source of truth.
type ProgressRepository struct {
	db *sql.DB
}

// NewProgressRepository creates a new [ProgressRepository] with the given database connection
func NewProgressRepository(db *sql.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// Save upserts the snapshot for a single topic
func (r *ProgressRepository) Save(progress models.TopicProgress) error {
	query := `
		INSERT OR REPLACE INTO topic_progress (topic, total, watched, percentage, updated_at) VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query, progress.Topic, progress.Total, progress.Watched, progress.Percentage, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save topic progress: %w", err)
	}

	return nil
}

// SaveAll replaces every stored snapshot with the given set
func (r *ProgressRepository) SaveAll(progress []models.TopicProgress) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM topic_progress"); err != nil {
		return fmt.Errorf("failed to clear topic progress: %w", err)
	}

	query := `
		INSERT INTO topic_progress (topic, total, watched, percentage, updated_at) VALUES (?, ?, ?, ?, ?)
	`

	now := time.Now()
	for _, p := range progress {
		if _, err := tx.Exec(query, p.Topic, p.Total, p.Watched, p.Percentage, now); err != nil {
			return fmt.Errorf("failed to save progress for %q: %w", p.Topic, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit topic progress: %w", err)
	}

	return nil
}

// Clear removes every stored snapshot
func (r *ProgressRepository) Clear() error {
	if _, err := r.db.Exec("DELETE FROM topic_progress"); err != nil {
		return fmt.Errorf("failed to clear topic progress: %w", err)
	}
	return nil
}

// Get retrieves the snapshot for one topic
func (r *ProgressRepository) Get(topic string) (models.TopicProgress, error) {
	query := `
		SELECT topic, total, watched, percentage
		FROM topic_progress
		WHERE topic = ?
	`

	var p models.TopicProgress
	err := r.db.QueryRow(query, topic).Scan(&p.Topic, &p.Total, &p.Watched, &p.Percentage)
	if err == sql.ErrNoRows {
		return p, fmt.Errorf("no progress recorded for topic: %s", topic)
	}
	if err != nil {
		return p, fmt.Errorf("failed to query topic progress: %w", err)
	}

	return p, nil
}

// List retrieves every stored snapshot ordered by topic name
func (r *ProgressRepository) List() ([]models.TopicProgress, error) {
	query := `
		SELECT topic, total, watched, percentage
		FROM topic_progress
		ORDER BY topic ASC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query topic progress: %w", err)
	}
	defer rows.Close()

	var progress []models.TopicProgress
	for rows.Next() {
		var p models.TopicProgress
		if err := rows.Scan(&p.Topic, &p.Total, &p.Watched, &p.Percentage); err != nil {
			return nil, fmt.Errorf("failed to scan topic progress: %w", err)
		}
		progress = append(progress, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return progress, nil
}
