package models

import (
	"time"
)

// Playout is the generated timeline of one channel and its generation settings
type Playout struct {
	ID                uint         `json:"id" gorm:"primaryKey;column:id"`
	ChannelID         uint         `json:"channel_id" gorm:"not null;uniqueIndex;column:channel_id"`
	ScheduleKind      ScheduleKind `json:"schedule_kind" gorm:"type:text;not null;default:classic;column:schedule_kind" validate:"omitempty,oneof=classic template"`
	ProgramScheduleID *uint        `json:"program_schedule_id,omitempty" gorm:"column:program_schedule_id"`
	DecoID            *uint        `json:"deco_id,omitempty" gorm:"column:deco_id"`
	Seed              int64        `json:"seed" gorm:"not null;column:seed"`
	CreatedAt         time.Time    `json:"created_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:created_at"`
}

// PlayoutAnchor is the resumable cursor of a playout
type PlayoutAnchor struct {
	ID                   uint       `json:"id" gorm:"primaryKey;column:id"`
	PlayoutID            uint       `json:"playout_id" gorm:"not null;uniqueIndex;column:playout_id"`
	NextScheduleItemID   *uint      `json:"next_schedule_item_id,omitempty" gorm:"column:next_schedule_item_id"`
	NextStart            *time.Time `json:"next_start,omitempty" gorm:"type:datetime;column:next_start"`
	MultipleRemaining    *int       `json:"multiple_remaining,omitempty" gorm:"column:multiple_remaining"`
	DurationFinish       *time.Time `json:"duration_finish,omitempty" gorm:"type:datetime;column:duration_finish"`
	InFlood              bool       `json:"in_flood" gorm:"not null;default:false;column:in_flood"`
	InDurationFiller     bool       `json:"in_duration_filler" gorm:"not null;default:false;column:in_duration_filler"`
	NextGuideGroup       int        `json:"next_guide_group" gorm:"not null;default:1;column:next_guide_group"`
	NextInstructionIndex int        `json:"next_instruction_index" gorm:"not null;default:0;column:next_instruction_index"`
}

// ScheduleItemEnumeratorState is the (seed, index) cursor of one schedule or block item
type ScheduleItemEnumeratorState struct {
	ID        uint   `json:"id" gorm:"primaryKey;column:id"`
	PlayoutID uint   `json:"playout_id" gorm:"not null;column:playout_id"`
	ItemKey   string `json:"item_key" gorm:"type:text;not null;column:item_key"`
	Seed      int64  `json:"seed" gorm:"not null;column:seed"`
	Index     int    `json:"index" gorm:"not null;column:idx"`
}

// CollectionEnumeratorState is the (seed, index) cursor shared by every use of a content source
type CollectionEnumeratorState struct {
	ID            uint   `json:"id" gorm:"primaryKey;column:id"`
	PlayoutID     uint   `json:"playout_id" gorm:"not null;column:playout_id"`
	CollectionKey string `json:"collection_key" gorm:"type:text;not null;column:collection_key"`
	Seed          int64  `json:"seed" gorm:"not null;column:seed"`
	Index         int    `json:"index" gorm:"not null;column:idx"`
}

// FillGroupEnumeratorState is the (seed, index) cursor shared by a fill group
type FillGroupEnumeratorState struct {
	ID           uint   `json:"id" gorm:"primaryKey;column:id"`
	PlayoutID    uint   `json:"playout_id" gorm:"not null;column:playout_id"`
	FillGroupKey string `json:"fill_group_key" gorm:"type:text;not null;column:fill_group_key"`
	Seed         int64  `json:"seed" gorm:"not null;column:seed"`
	Index        int    `json:"index" gorm:"not null;column:idx"`
}

// PlayoutItem is a concrete timeline entry. Rows are never edited once written.
type PlayoutItem struct {
	ID                    uint       `json:"id" gorm:"primaryKey;column:id"`
	PlayoutID             uint       `json:"playout_id" gorm:"not null;column:playout_id"`
	MediaItemID           uint       `json:"media_item_id" gorm:"not null;column:media_item_id"`
	Start                 time.Time  `json:"start" gorm:"type:datetime;not null;column:start"`
	Finish                time.Time  `json:"finish" gorm:"type:datetime;not null;column:finish"`
	GuideGroup            int        `json:"guide_group" gorm:"not null;column:guide_group"`
	FillerKind            FillerKind `json:"filler_kind" gorm:"type:text;not null;default:none;column:filler_kind"`
	CollectionKey         string     `json:"collection_key" gorm:"type:text;not null;column:collection_key"`
	CollectionEtag        string     `json:"collection_etag" gorm:"type:text;not null;column:collection_etag"`
	PreferredAudioLang    *string    `json:"preferred_audio_language,omitempty" gorm:"type:text;column:preferred_audio_language"`
	PreferredSubtitleLang *string    `json:"preferred_subtitle_language,omitempty" gorm:"type:text;column:preferred_subtitle_language"`
	WatermarkID           *uint      `json:"watermark_id,omitempty" gorm:"column:watermark_id"`
	DisableWatermarks     bool       `json:"disable_watermarks" gorm:"not null;default:false;column:disable_watermarks"`
	GraphicsElements      string     `json:"graphics_elements" gorm:"type:text;not null;default:'';column:graphics_elements"`
	ScheduleItemID        *uint      `json:"schedule_item_id,omitempty" gorm:"column:schedule_item_id"`
	BlockID               *uint      `json:"block_id,omitempty" gorm:"column:block_id"`
}

// Duration returns the scheduled length of the item
func (p *PlayoutItem) Duration() time.Duration {
	return p.Finish.Sub(p.Start)
}

// PlayoutGap is an interval of the timeline with nothing scheduled
type PlayoutGap struct {
	ID               uint      `json:"id" gorm:"primaryKey;column:id"`
	PlayoutID        uint      `json:"playout_id" gorm:"not null;column:playout_id"`
	Start            time.Time `json:"start" gorm:"type:datetime;not null;column:start"`
	Finish           time.Time `json:"finish" gorm:"type:datetime;not null;column:finish"`
	FallbackFillerID *uint     `json:"fallback_filler_id,omitempty" gorm:"column:fallback_filler_id"`
}

// PlayoutHistory is an append-only record of schedule and block activations
type PlayoutHistory struct {
	ID             uint      `json:"id" gorm:"primaryKey;column:id"`
	PlayoutID      uint      `json:"playout_id" gorm:"not null;column:playout_id"`
	BlockID        *uint     `json:"block_id,omitempty" gorm:"column:block_id"`
	ScheduleItemID *uint     `json:"schedule_item_id,omitempty" gorm:"column:schedule_item_id"`
	Key            string    `json:"key" gorm:"type:text;not null;column:key"`
	When           time.Time `json:"when" gorm:"type:datetime;not null;column:at"`
	Finish         time.Time `json:"finish" gorm:"type:datetime;not null;column:finish"`
	Details        string    `json:"details" gorm:"type:text;not null;default:'{}';column:details"`
}

// PlayoutBuildStatus is the single outcome row of the most recent build
type PlayoutBuildStatus struct {
	PlayoutID uint      `json:"playout_id" gorm:"primaryKey;autoIncrement:false;column:playout_id"`
	LastBuild time.Time `json:"last_build" gorm:"type:datetime;not null;column:last_build"`
	Success   bool      `json:"success" gorm:"not null;column:success"`
	Message   string    `json:"message" gorm:"type:text;not null;default:'';column:message"`
}
