package models

import (
	"fmt"
	"time"
)

// MediaItem is a playable library item. Rows are owned by the library
// collaborator; the engine only reads identity, duration and grouping metadata.
type MediaItem struct {
	ID          uint       `json:"id" gorm:"primaryKey;column:id"`
	Kind        MediaKind  `json:"kind" gorm:"type:text;not null;column:kind" validate:"required"`
	Path        string     `json:"path" gorm:"type:text;not null;uniqueIndex;column:path" validate:"required"`
	Title       string     `json:"title" gorm:"type:text;not null;column:title" validate:"required"`
	ShowTitle   *string    `json:"show_title,omitempty" gorm:"type:text;column:show_title"`
	Season      *int       `json:"season,omitempty" gorm:"type:integer;column:season"`
	Episode     *int       `json:"episode,omitempty" gorm:"type:integer;column:episode"`
	ReleaseDate *time.Time `json:"release_date,omitempty" gorm:"type:datetime;column:release_date"`
	Duration    int64      `json:"duration" gorm:"type:integer;not null;column:duration" validate:"required,gt=0"` // seconds
	Language    *string    `json:"language,omitempty" gorm:"type:text;column:language"`
	CreatedAt   time.Time  `json:"created_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:created_at"`
}

// NewMediaItem creates a new MediaItem with a timestamp
func NewMediaItem(kind MediaKind, path, title string, duration int64) *MediaItem {
	return &MediaItem{
		Kind:      kind,
		Path:      path,
		Title:     title,
		Duration:  duration,
		CreatedAt: time.Now().UTC(),
	}
}

// Length returns the item duration as a time.Duration
func (m *MediaItem) Length() time.Duration {
	return time.Duration(m.Duration) * time.Second
}

// DurationString returns duration in HH:MM:SS format
func (m *MediaItem) DurationString() string {
	hours := m.Duration / 3600
	minutes := (m.Duration % 3600) / 60
	seconds := m.Duration % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}
