package models

import "time"

// FillerPreset is a reusable filler specification
type FillerPreset struct {
	ID                 uint          `json:"id" gorm:"primaryKey;column:id"`
	Name               string        `json:"name" gorm:"type:text;not null;column:name" validate:"required,max=255"`
	FillerKind         FillerKind    `json:"filler_kind" gorm:"type:text;not null;column:filler_kind"`
	FillerMode         FillerMode    `json:"filler_mode" gorm:"type:text;not null;default:duration;column:filler_mode" validate:"omitempty,oneof=duration count pad"`
	Duration           *int64        `json:"duration,omitempty" gorm:"column:duration"` // seconds
	Count              *int          `json:"count,omitempty" gorm:"column:count"`
	PadToNearestMinute *int          `json:"pad_to_nearest_minute,omitempty" gorm:"column:pad_to_nearest_minute"`
	PlaybackOrder      PlaybackOrder `json:"playback_order" gorm:"type:text;not null;default:shuffle;column:playback_order"`
	ContentRef
}

// TargetDuration returns the configured duration for duration-mode presets
func (f *FillerPreset) TargetDuration() time.Duration {
	if f.Duration == nil {
		return 0
	}
	return time.Duration(*f.Duration) * time.Second
}
