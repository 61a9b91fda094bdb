package models

import "time"

// ContentRef is the persisted form of a content-source reference. Exactly one
// field must be set; the collection package turns it into a tagged variant.
type ContentRef struct {
	CollectionID      *uint   `json:"collection_id,omitempty" gorm:"column:collection_id"`
	MultiCollectionID *uint   `json:"multi_collection_id,omitempty" gorm:"column:multi_collection_id"`
	SmartCollectionID *uint   `json:"smart_collection_id,omitempty" gorm:"column:smart_collection_id"`
	MediaItemID       *uint   `json:"media_item_id,omitempty" gorm:"column:media_item_id"`
	PlaylistID        *uint   `json:"playlist_id,omitempty" gorm:"column:playlist_id"`
	RerunCollectionID *uint   `json:"rerun_collection_id,omitempty" gorm:"column:rerun_collection_id"`
	FakeCollectionKey *string `json:"fake_collection_key,omitempty" gorm:"type:text;column:fake_collection_key"`
}

// Collection is a hand-curated set of media items
type Collection struct {
	ID    uint             `json:"id" gorm:"primaryKey;column:id"`
	Name  string           `json:"name" gorm:"type:text;not null;column:name" validate:"required,max=255"`
	Items []CollectionItem `json:"items,omitempty" gorm:"foreignKey:CollectionID"`
}

// CollectionItem links a media item into a collection
type CollectionItem struct {
	ID           uint `json:"id" gorm:"primaryKey;column:id"`
	CollectionID uint `json:"collection_id" gorm:"not null;column:collection_id"`
	MediaItemID  uint `json:"media_item_id" gorm:"not null;column:media_item_id"`
}

// MultiCollection composes several collections with its own playback order
type MultiCollection struct {
	ID    uint                  `json:"id" gorm:"primaryKey;column:id"`
	Name  string                `json:"name" gorm:"type:text;not null;column:name" validate:"required,max=255"`
	Items []MultiCollectionItem `json:"items,omitempty" gorm:"foreignKey:MultiCollectionID"`
}

// MultiCollectionItem is one child of a multi collection
type MultiCollectionItem struct {
	ID                uint          `json:"id" gorm:"primaryKey;column:id"`
	MultiCollectionID uint          `json:"multi_collection_id" gorm:"not null;column:multi_collection_id"`
	CollectionID      *uint         `json:"collection_id,omitempty" gorm:"column:collection_id"`
	SmartCollectionID *uint         `json:"smart_collection_id,omitempty" gorm:"column:smart_collection_id"`
	ScheduleAsGroup   bool          `json:"schedule_as_group" gorm:"not null;default:false;column:schedule_as_group"`
	PlaybackOrder     PlaybackOrder `json:"playback_order" gorm:"type:text;not null;default:chronological;column:playback_order"`
}

// SmartCollection resolves its membership by evaluating Query at build time
type SmartCollection struct {
	ID    uint   `json:"id" gorm:"primaryKey;column:id"`
	Name  string `json:"name" gorm:"type:text;not null;column:name" validate:"required,max=255"`
	Query string `json:"query" gorm:"type:text;not null;column:query" validate:"required"`
}

// Playlist is an ordered list that may reference the same item more than once
type Playlist struct {
	ID    uint           `json:"id" gorm:"primaryKey;column:id"`
	Name  string         `json:"name" gorm:"type:text;not null;column:name" validate:"required,max=255"`
	Items []PlaylistItem `json:"items,omitempty" gorm:"foreignKey:PlaylistID"`
}

// PlaylistItem is one entry of a playlist; it references either a single
// media item or a whole collection (expanded in chronological order when PlayAll)
type PlaylistItem struct {
	ID           uint  `json:"id" gorm:"primaryKey;column:id"`
	PlaylistID   uint  `json:"playlist_id" gorm:"not null;column:playlist_id"`
	Index        int   `json:"index" gorm:"not null;column:idx" validate:"gte=0"`
	MediaItemID  *uint `json:"media_item_id,omitempty" gorm:"column:media_item_id"`
	CollectionID *uint `json:"collection_id,omitempty" gorm:"column:collection_id"`
	PlayAll      bool  `json:"play_all" gorm:"not null;default:false;column:play_all"`
}

// RerunCollection plays its content in first-run order until everything has
// aired once, then switches to rerun order
type RerunCollection struct {
	ID                    uint          `json:"id" gorm:"primaryKey;column:id"`
	Name                  string        `json:"name" gorm:"type:text;not null;column:name" validate:"required,max=255"`
	FirstRunPlaybackOrder PlaybackOrder `json:"first_run_playback_order" gorm:"type:text;not null;default:chronological;column:first_run_playback_order"`
	RerunPlaybackOrder    PlaybackOrder `json:"rerun_playback_order" gorm:"type:text;not null;default:shuffle;column:rerun_playback_order"`
	CollectionID          *uint         `json:"collection_id,omitempty" gorm:"column:collection_id"`
	MultiCollectionID     *uint         `json:"multi_collection_id,omitempty" gorm:"column:multi_collection_id"`
	SmartCollectionID     *uint         `json:"smart_collection_id,omitempty" gorm:"column:smart_collection_id"`
}

// RerunHistory records every selection made from a rerun collection
type RerunHistory struct {
	ID                uint      `json:"id" gorm:"primaryKey;column:id"`
	PlayoutID         uint      `json:"playout_id" gorm:"not null;column:playout_id"`
	RerunCollectionID uint      `json:"rerun_collection_id" gorm:"not null;column:rerun_collection_id"`
	MediaItemID       *uint     `json:"media_item_id,omitempty" gorm:"column:media_item_id"`
	When              time.Time `json:"when" gorm:"type:datetime;not null;column:at"`
}
