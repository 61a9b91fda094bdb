package timeline

import (
	"time"

	"github.com/stwalsh4118/playout/internal/models"
)

// TimelinePosition describes which generated item is on air at a given moment
// and how far into it playback is.
//
//nolint:revive // Timeline prefix is intentional
type TimelinePosition struct {
	// PlayoutItemID is the generated timeline row on air
	PlayoutItemID uint `json:"playout_item_id"`

	// MediaItemID is the library item being played
	MediaItemID uint `json:"media_item_id"`

	// MediaTitle is the title of the media for display purposes
	MediaTitle string `json:"media_title"`

	FillerKind models.FillerKind `json:"filler_kind"`
	GuideGroup int               `json:"guide_group"`

	// OffsetSeconds is the playback position within the current item
	OffsetSeconds int64 `json:"offset_seconds"`

	StartedAt time.Time `json:"started_at"`
	EndsAt    time.Time `json:"ends_at"`

	// Duration is the scheduled length of the item in seconds
	Duration int64 `json:"duration"`

	// Next is the following timeline entry when it has been generated
	Next *UpcomingItem `json:"next,omitempty"`
}

// UpcomingItem is the entry after the one on air
type UpcomingItem struct {
	MediaItemID uint      `json:"media_item_id"`
	MediaTitle  string    `json:"media_title"`
	StartsAt    time.Time `json:"starts_at"`
}
