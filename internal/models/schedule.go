package models

import "time"

// ProgramSchedule is an ordered list of schedule items used by classic playouts
type ProgramSchedule struct {
	ID    uint                  `json:"id" gorm:"primaryKey;column:id"`
	Name  string                `json:"name" gorm:"type:text;not null;column:name" validate:"required,max=255"`
	Items []ProgramScheduleItem `json:"items,omitempty" gorm:"foreignKey:ProgramScheduleID"`
}

// ProgramScheduleItem is one entry of a program schedule
type ProgramScheduleItem struct {
	ID                uint        `json:"id" gorm:"primaryKey;column:id"`
	ProgramScheduleID uint        `json:"program_schedule_id" gorm:"not null;column:program_schedule_id"`
	Index             int         `json:"index" gorm:"not null;column:idx" validate:"gte=0"`
	StartType         StartType   `json:"start_type" gorm:"type:text;not null;default:dynamic;column:start_type" validate:"omitempty,oneof=dynamic fixed"`
	StartTime         *int64      `json:"start_time,omitempty" gorm:"column:start_time"` // seconds after local midnight
	PlayoutMode       PlayoutMode `json:"playout_mode" gorm:"type:text;not null;default:one;column:playout_mode" validate:"omitempty,oneof=one multiple duration flood"`
	MultipleCount     *string     `json:"multiple_count,omitempty" gorm:"type:text;column:multiple_count"`
	PlayoutDuration   *int64      `json:"playout_duration,omitempty" gorm:"column:playout_duration"` // seconds
	TailMode          TailMode    `json:"tail_mode" gorm:"type:text;not null;default:none;column:tail_mode"`
	TailFillerID      *uint       `json:"tail_filler_id,omitempty" gorm:"column:tail_filler_id"`
	PreRollFillerID   *uint       `json:"pre_roll_filler_id,omitempty" gorm:"column:pre_roll_filler_id"`
	PostRollFillerID  *uint       `json:"post_roll_filler_id,omitempty" gorm:"column:post_roll_filler_id"`
	ContentRef
	PlaybackOrder         PlaybackOrder   `json:"playback_order" gorm:"type:text;not null;default:chronological;column:playback_order"`
	MarathonGroupBy       MarathonGroupBy `json:"marathon_group_by" gorm:"type:text;not null;default:none;column:marathon_group_by"`
	MarathonBatchSize     *int            `json:"marathon_batch_size,omitempty" gorm:"column:marathon_batch_size"`
	MarathonShuffleGroups bool            `json:"marathon_shuffle_groups" gorm:"not null;default:false;column:marathon_shuffle_groups"`
	MarathonShuffleItems  bool            `json:"marathon_shuffle_items" gorm:"not null;default:false;column:marathon_shuffle_items"`
	FillGroupKey          *string         `json:"fill_group_key,omitempty" gorm:"type:text;column:fill_group_key"`
	GuideMode             GuideMode       `json:"guide_mode" gorm:"type:text;not null;default:normal;column:guide_mode"`
	PreferredAudioLang    *string         `json:"preferred_audio_language,omitempty" gorm:"type:text;column:preferred_audio_language"`
	PreferredSubtitleLang *string         `json:"preferred_subtitle_language,omitempty" gorm:"type:text;column:preferred_subtitle_language"`
}

// FixedStart returns the item's configured time of day as a duration after midnight
func (i *ProgramScheduleItem) FixedStart() (time.Duration, bool) {
	if i.StartType != StartTypeFixed || i.StartTime == nil {
		return 0, false
	}
	return time.Duration(*i.StartTime) * time.Second, true
}
