package models

import (
	"time"

	"github.com/google/uuid"
)

// Channel represents a TV channel entity
type Channel struct {
	ID               uint      `json:"id" gorm:"primaryKey;column:id"`
	UniqueID         uuid.UUID `json:"unique_id" gorm:"type:text;not null;uniqueIndex;column:unique_id"`
	Number           string    `json:"number" gorm:"type:text;not null;column:number" validate:"required"`
	Name             string    `json:"name" gorm:"type:text;not null;column:name" validate:"required,min=1,max=255"`
	Timezone         string    `json:"timezone" gorm:"type:text;not null;default:UTC;column:timezone" validate:"required"`
	FallbackFillerID *uint     `json:"fallback_filler_id,omitempty" gorm:"column:fallback_filler_id"`
	WatermarkID      *uint     `json:"watermark_id,omitempty" gorm:"column:watermark_id"`
	CreatedAt        time.Time `json:"created_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:created_at"`
	UpdatedAt        time.Time `json:"updated_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:updated_at"`
}

// NewChannel creates a new Channel with generated unique id and timestamps
func NewChannel(number, name, timezone string) *Channel {
	now := time.Now().UTC()
	if timezone == "" {
		timezone = "UTC"
	}
	return &Channel{
		UniqueID:  uuid.New(),
		Number:    number,
		Name:      name,
		Timezone:  timezone,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Location returns the channel's time zone, falling back to UTC
func (c *Channel) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Watermark is a channel overlay asset supplied by the channel configuration
type Watermark struct {
	ID        uint    `json:"id" gorm:"primaryKey;column:id"`
	Name      string  `json:"name" gorm:"type:text;not null;column:name" validate:"required"`
	ImagePath string  `json:"image_path" gorm:"type:text;not null;column:image_path" validate:"required"`
	Location  string  `json:"location" gorm:"type:text;not null;default:bottom_right;column:location"`
	Opacity   float64 `json:"opacity" gorm:"type:real;not null;default:100;column:opacity" validate:"gte=0,lte=100"`
}
