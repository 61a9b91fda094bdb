package models

// DecoGroup organises decos by name
type DecoGroup struct {
	ID   uint   `json:"id" gorm:"primaryKey;column:id"`
	Name string `json:"name" gorm:"type:text;not null;column:name" validate:"required,max=255"`
}

// Deco is an overlay configuration applied to everything scheduled while it is active
type Deco struct {
	ID                   uint               `json:"id" gorm:"primaryKey;column:id"`
	DecoGroupID          uint               `json:"deco_group_id" gorm:"not null;column:deco_group_id"`
	Name                 string             `json:"name" gorm:"type:text;not null;column:name" validate:"required,max=255"`
	WatermarkMode        DecoMode           `json:"watermark_mode" gorm:"type:text;not null;default:inherit;column:watermark_mode"`
	WatermarkID          *uint              `json:"watermark_id,omitempty" gorm:"column:watermark_id"`
	GraphicsElementsMode DecoMode           `json:"graphics_elements_mode" gorm:"type:text;not null;default:inherit;column:graphics_elements_mode"`
	GraphicsElements     string             `json:"graphics_elements" gorm:"type:text;not null;default:'';column:graphics_elements"`
	DefaultFillerMode    DecoMode           `json:"default_filler_mode" gorm:"type:text;not null;default:inherit;column:default_filler_mode"`
	DefaultFillerID      *uint              `json:"default_filler_id,omitempty" gorm:"column:default_filler_id"`
	DeadAirFallbackMode  DecoMode           `json:"dead_air_fallback_mode" gorm:"type:text;not null;default:inherit;column:dead_air_fallback_mode"`
	DeadAirFallbackID    *uint              `json:"dead_air_fallback_id,omitempty" gorm:"column:dead_air_fallback_id"`
	BreakContentMode     DecoMode           `json:"break_content_mode" gorm:"type:text;not null;default:inherit;column:break_content_mode"`
	BreakContent         []DecoBreakContent `json:"break_content,omitempty" gorm:"foreignKey:DecoID"`
}

// DecoBreakContent is content played at a block edge while a deco is active
type DecoBreakContent struct {
	ID        uint           `json:"id" gorm:"primaryKey;column:id"`
	DecoID    uint           `json:"deco_id" gorm:"not null;column:deco_id"`
	Placement BreakPlacement `json:"placement" gorm:"type:text;not null;column:placement" validate:"oneof=block_start block_finish"`
	ContentRef
}

// DecoTemplateGroup organises deco templates by name
type DecoTemplateGroup struct {
	ID   uint   `json:"id" gorm:"primaryKey;column:id"`
	Name string `json:"name" gorm:"type:text;not null;column:name" validate:"required,max=255"`
}

// DecoTemplate places decos at times of day
type DecoTemplate struct {
	ID                  uint               `json:"id" gorm:"primaryKey;column:id"`
	DecoTemplateGroupID uint               `json:"deco_template_group_id" gorm:"not null;column:deco_template_group_id"`
	Name                string             `json:"name" gorm:"type:text;not null;column:name" validate:"required,max=255"`
	Items               []DecoTemplateItem `json:"items,omitempty" gorm:"foreignKey:DecoTemplateID"`
}

// DecoTemplateItem activates a deco between StartTime and EndTime (seconds
// after local midnight). EndTime <= StartTime spans midnight.
type DecoTemplateItem struct {
	ID             uint  `json:"id" gorm:"primaryKey;column:id"`
	DecoTemplateID uint  `json:"deco_template_id" gorm:"not null;column:deco_template_id"`
	DecoID         uint  `json:"deco_id" gorm:"not null;column:deco_id"`
	StartTime      int64 `json:"start_time" gorm:"not null;column:start_time" validate:"gte=0,lt=86400"`
	EndTime        int64 `json:"end_time" gorm:"not null;column:end_time" validate:"gte=0,lte=86400"`
}
