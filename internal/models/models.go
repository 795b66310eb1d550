// package models defines the data model for the course catalog client
package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Model defines the base interface for all persistent models in the catalog client.
// Implementations include Session and WatchedVideo.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// AccessStatus is the per-user tri-state value stored in a user's content-sheet column.
//
// The same cell doubles as the completion marker: "Finish" means the user both
// has access to the row and has completed all of its videos.
type AccessStatus int

const (
	AccessGiven AccessStatus = iota
	AccessNone
	AccessFinished
)

// Spreadsheet cell literals for each access status.
const (
	accessGivenCell    = "Access Given"
	accessNoneCell     = "No access"
	accessFinishedCell = "Finish"
)

// ParseAccessStatus maps a raw cell value to an AccessStatus.
//
// Blank or unrecognized cells grant access, matching the open-access default
// applied when a user has no column at all.
func ParseAccessStatus(cell string) AccessStatus {
	switch cell {
	case accessNoneCell:
		return AccessNone
	case accessFinishedCell:
		return AccessFinished
	default:
		return AccessGiven
	}
}

// Cell returns the literal value written back to the spreadsheet.
func (s AccessStatus) Cell() string {
	switch s {
	case AccessNone:
		return accessNoneCell
	case AccessFinished:
		return accessFinishedCell
	default:
		return accessGivenCell
	}
}

func (s AccessStatus) String() string {
	switch s {
	case AccessNone:
		return "no_access"
	case AccessFinished:
		return "finished"
	default:
		return "access_given"
	}
}

// MarshalJSON serializes the status as its snake_case name.
func (s AccessStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Video represents a single playable unit within a topic.
type Video struct {
	Label       string `json:"label"`       // Display label shown in listings
	VideoID     string `json:"video_id"`    // External video reference used for progress sync
	Description string `json:"description"`
	URL         string `json:"url"`         // Normalized embed URL
	Completed   bool   `json:"completed"`
}

// Topic represents a named group of videos built from one or more content rows.
type Topic struct {
	Name   string       `json:"name"`
	Access AccessStatus `json:"access"`
	Videos []Video      `json:"videos"`
}

// Progress computes the derived watch summary for this topic.
//
// Recomputed on every call, never authoritative.
func (t *Topic) Progress() TopicProgress {
	p := TopicProgress{Topic: t.Name, Total: len(t.Videos)}
	for _, v := range t.Videos {
		if v.Completed {
			p.Watched++
		}
	}
	if p.Total > 0 {
		p.Percentage = int(float64(p.Watched)/float64(p.Total)*100 + 0.5)
	}
	return p
}

// Find returns the video with the given external reference, or nil.
func (t *Topic) Find(videoID string) *Video {
	for i := range t.Videos {
		if t.Videos[i].VideoID == videoID {
			return &t.Videos[i]
		}
	}
	return nil
}

// TopicProgress is the derived per-topic watch summary.
type TopicProgress struct {
	Topic      string `json:"topic"`
	Total      int    `json:"total"`
	Watched    int    `json:"watched"`
	Percentage int    `json:"percentage"`
}

// User represents profile data returned by the identity provider.
type User struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
}

// Session is the persisted identity session: the signed-in user plus the
// bearer credential supplied to all spreadsheet calls.
type Session struct {
	id        string
	user      User
	token     string
	createdAt time.Time
	updatedAt time.Time
}

// NewSession creates a session for the given user and access credential.
func NewSession(user User, token string) *Session {
	now := time.Now()
	return &Session{
		user:      user,
		token:     token,
		createdAt: now,
		updatedAt: now,
	}
}

func (s *Session) ID() string { return s.id }
func (s *Session) User() User { return s.user }
func (s *Session) Token() string { return s.token }
func (s *Session) CreatedAt() time.Time { return s.createdAt }
func (s *Session) UpdatedAt() time.Time { return s.updatedAt }

func (s *Session) SetID(id string) { s.id = id }
func (s *Session) SetToken(token string) { s.token = token }
func (s *Session) SetCreatedAt(ts time.Time) { s.createdAt = ts }
func (s *Session) SetUpdatedAt(ts time.Time) { s.updatedAt = ts }

// Validate checks that the session carries an identity and a credential.
func (s *Session) Validate() error {
	if s.user.Email == "" {
		return fmt.Errorf("session requires a user email")
	}
	if s.token == "" {
		return fmt.Errorf("session requires an access token")
	}
	return nil
}

// WatchedVideo records a locally watched video.
type WatchedVideo struct {
	videoID   string
	topic     string
	sequence  int
	watchedAt time.Time
}

// NewWatchedVideo creates a watched-video record for the given topic and video reference.
func NewWatchedVideo(sequence int, topic, videoID string) *WatchedVideo {
	return &WatchedVideo{
		videoID:   videoID,
		topic:     topic,
		sequence:  sequence,
		watchedAt: time.Now(),
	}
}

// ID returns the external video reference; watched rows are keyed by it.
func (w *WatchedVideo) ID() string { return w.videoID }
func (w *WatchedVideo) Topic() string { return w.topic }
func (w *WatchedVideo) Sequence() int { return w.sequence }
func (w *WatchedVideo) WatchedAt() time.Time { return w.watchedAt }
func (w *WatchedVideo) CreatedAt() time.Time { return w.watchedAt }
func (w *WatchedVideo) UpdatedAt() time.Time { return w.watchedAt }
func (w *WatchedVideo) SetWatchedAt(ts time.Time) { w.watchedAt = ts }

// Validate checks that the record references a video.
func (w *WatchedVideo) Validate() error {
	if w.videoID == "" {
		return fmt.Errorf("watched video requires a video id")
	}
	if w.topic == "" {
		return fmt.Errorf("watched video requires a topic")
	}
	return nil
}
