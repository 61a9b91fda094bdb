package models

import "time"

// BlockGroup organises blocks by name
type BlockGroup struct {
	ID   uint   `json:"id" gorm:"primaryKey;column:id"`
	Name string `json:"name" gorm:"type:text;not null;column:name" validate:"required,max=255"`
}

// Block bundles ordered content-source items into a fixed-length unit
type Block struct {
	ID             uint           `json:"id" gorm:"primaryKey;column:id"`
	BlockGroupID   uint           `json:"block_group_id" gorm:"not null;column:block_group_id"`
	Name           string         `json:"name" gorm:"type:text;not null;column:name" validate:"required,max=255"`
	Minutes        int            `json:"minutes" gorm:"not null;column:minutes" validate:"gt=0"`
	StopScheduling StopScheduling `json:"stop_scheduling" gorm:"type:text;not null;default:before_duration_end;column:stop_scheduling"`
	Items          []BlockItem    `json:"items,omitempty" gorm:"foreignKey:BlockID"`
}

// Length returns the configured block duration
func (b *Block) Length() time.Duration {
	return time.Duration(b.Minutes) * time.Minute
}

// BlockItem is one content slot of a block
type BlockItem struct {
	ID      uint `json:"id" gorm:"primaryKey;column:id"`
	BlockID uint `json:"block_id" gorm:"not null;column:block_id"`
	Index   int  `json:"index" gorm:"not null;column:idx" validate:"gte=0"`
	ContentRef
	PlaybackOrder  PlaybackOrder `json:"playback_order" gorm:"type:text;not null;default:chronological;column:playback_order"`
	IncludeInGuide bool          `json:"include_in_guide" gorm:"not null;column:include_in_guide"`
	FillGroupKey   *string       `json:"fill_group_key,omitempty" gorm:"type:text;column:fill_group_key"`
}

// TemplateGroup organises templates by name
type TemplateGroup struct {
	ID   uint   `json:"id" gorm:"primaryKey;column:id"`
	Name string `json:"name" gorm:"type:text;not null;column:name" validate:"required,max=255"`
}

// Template places blocks at times of day
type Template struct {
	ID              uint           `json:"id" gorm:"primaryKey;column:id"`
	TemplateGroupID uint           `json:"template_group_id" gorm:"not null;column:template_group_id"`
	Name            string         `json:"name" gorm:"type:text;not null;column:name" validate:"required,max=255"`
	Items           []TemplateItem `json:"items,omitempty" gorm:"foreignKey:TemplateID"`
}

// TemplateItem starts a block at StartTime (seconds after local midnight)
type TemplateItem struct {
	ID         uint  `json:"id" gorm:"primaryKey;column:id"`
	TemplateID uint  `json:"template_id" gorm:"not null;column:template_id"`
	BlockID    uint  `json:"block_id" gorm:"not null;column:block_id"`
	StartTime  int64 `json:"start_time" gorm:"not null;column:start_time" validate:"gte=0,lt=86400"`
}

// PlayoutTemplate binds a template (and optionally a deco template) to a
// playout for the days it matches. Lower Index wins when several match.
type PlayoutTemplate struct {
	ID               uint   `json:"id" gorm:"primaryKey;column:id"`
	PlayoutID        uint   `json:"playout_id" gorm:"not null;column:playout_id"`
	TemplateID       uint   `json:"template_id" gorm:"not null;column:template_id"`
	DecoTemplateID   *uint  `json:"deco_template_id,omitempty" gorm:"column:deco_template_id"`
	Index            int    `json:"index" gorm:"not null;column:idx"`
	DaysOfWeek       string `json:"days_of_week" gorm:"type:text;not null;default:'';column:days_of_week"`
	DaysOfMonth      string `json:"days_of_month" gorm:"type:text;not null;default:'';column:days_of_month"`
	MonthsOfYear     string `json:"months_of_year" gorm:"type:text;not null;default:'';column:months_of_year"`
	LimitToDateRange bool   `json:"limit_to_date_range" gorm:"not null;default:false;column:limit_to_date_range"`
	StartMonth       int    `json:"start_month" gorm:"not null;default:1;column:start_month"`
	StartDay         int    `json:"start_day" gorm:"not null;default:1;column:start_day"`
	StartYear        *int   `json:"start_year,omitempty" gorm:"column:start_year"`
	EndMonth         int    `json:"end_month" gorm:"not null;default:12;column:end_month"`
	EndDay           int    `json:"end_day" gorm:"not null;default:31;column:end_day"`
	EndYear          *int   `json:"end_year,omitempty" gorm:"column:end_year"`
}
