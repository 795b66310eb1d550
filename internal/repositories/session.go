package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/coursedeck/internal/models"
	"github.com/desertthunder/coursedeck/internal/shared"
)

// SessionRepository implements [models.Repository] for [models.Session] persistence.
//
// Sessions are created on sign-in, replaced on re-authentication and removed on
// sign-out. Multiple accounts may coexist; Current returns the most recently
// updated one.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new [SessionRepository] with the given database connection
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a new session into the database with a generated ID.
//
// An existing session for the same email is replaced so each account holds at
// most one credential.
func (r *SessionRepository) Create(session *models.Session) error {
	id := shared.GenerateID()
	session.SetID(id)

	if err := session.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM sessions WHERE email = ?", session.User().Email); err != nil {
		return fmt.Errorf("failed to replace session: %w", err)
	}

	query := `
		INSERT INTO sessions (id, email, name, picture, access_token, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	user := session.User()
	_, err = tx.Exec(query, id, user.Email, user.Name, user.Picture, session.Token(), session.CreatedAt(), session.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit session: %w", err)
	}

	return nil
}

// Get retrieves a session by ID
func (r *SessionRepository) Get(id string) (*models.Session, error) {
	query := `
		SELECT id, email, name, picture, access_token, created_at, updated_at
		FROM sessions
		WHERE id = ?
	`

	session, err := scanSession(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	return session, nil
}

// Current retrieves the most recently updated session, or [shared.ErrNotAuthenticated]
// when no account is signed in.
func (r *SessionRepository) Current() (*models.Session, error) {
	query := `
		SELECT id, email, name, picture, access_token, created_at, updated_at
		FROM sessions
		ORDER BY updated_at DESC
		LIMIT 1
	`

	session, err := scanSession(r.db.QueryRow(query))
	if err == sql.ErrNoRows {
		return nil, shared.ErrNotAuthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	return session, nil
}

// Update modifies an existing session in the database
func (r *SessionRepository) Update(session *models.Session) error {
	if err := session.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	session.SetUpdatedAt(now)

	query := `
		UPDATE sessions
		SET email = ?, name = ?, picture = ?, access_token = ?, updated_at = ?
		WHERE id = ?
	`

	user := session.User()
	result, err := r.db.Exec(query, user.Email, user.Name, user.Picture, session.Token(), now, session.ID())
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("session not found: %s", session.ID())
	}

	return nil
}

// Delete removes a session by ID
func (r *SessionRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("session not found: %s", id)
	}

	return nil
}

// Clear removes every stored session
func (r *SessionRepository) Clear() error {
	if _, err := r.db.Exec("DELETE FROM sessions"); err != nil {
		return fmt.Errorf("failed to clear sessions: %w", err)
	}
	return nil
}

// List retrieves all sessions matching the given criteria
func (r *SessionRepository) List(criteria map[string]any) ([]*models.Session, error) {
	query := `
		SELECT id, email, name, picture, access_token, created_at, updated_at
		FROM sessions
		WHERE 1 = 1
	`

	args := []any{}

	if email, ok := criteria["email"].(string); ok && email != "" {
		query += " AND email = ?"
		args = append(args, email)
	}

	query += " ORDER BY updated_at DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return sessions, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*models.Session, error) {
	var (
		id        string
		email     string
		name      string
		picture   sql.NullString
		token     string
		createdAt time.Time
		updatedAt time.Time
	)

	if err := row.Scan(&id, &email, &name, &picture, &token, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	session := models.NewSession(models.User{Email: email, Name: name, Picture: picture.String}, token)
	session.SetID(id)
	session.SetCreatedAt(createdAt)
	session.SetUpdatedAt(updatedAt)

	return session, nil
}
