package playout

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/stwalsh4118/playout/internal/db"
	"github.com/stwalsh4118/playout/internal/models"
)

// ScheduleItemKey is the history key of a schedule item activation
func ScheduleItemKey(id uint) string {
	return fmt.Sprintf("schedule_item:%d", id)
}

// BlockKey is the history key of a template block activation
func BlockKey(id uint) string {
	return fmt.Sprintf("block:%d", id)
}

type activationDetails struct {
	PlayoutMode   string `json:"playout_mode,omitempty"`
	CollectionKey string `json:"collection_key,omitempty"`
	Items         int    `json:"items"`
	GuideGroup    int    `json:"guide_group"`
	TemplateID    uint   `json:"template_id,omitempty"`
}

func (b *buildContext) appendHistory(h models.PlayoutHistory, details activationDetails) {
	raw, err := json.Marshal(details)
	if err != nil {
		raw = []byte("{}")
	}
	h.PlayoutID = b.playout.ID
	h.When = h.When.UTC()
	h.Finish = h.Finish.UTC()
	h.Details = string(raw)
	b.history = append(b.history, h)
}

func (c *classic) recordActivation(a *activation, finish time.Time) {
	c.appendHistory(models.PlayoutHistory{
		ScheduleItemID: &a.item.ID,
		Key:            ScheduleItemKey(a.item.ID),
		When:           a.start,
		Finish:         finish,
	}, activationDetails{
		PlayoutMode:   string(a.item.PlayoutMode),
		CollectionKey: a.res.Key,
		Items:         a.count,
		GuideGroup:    c.guideGroup,
	})
}

// LastPlayed returns the most recent activation recorded under key, or nil
// when the key has never been activated
func (s *Service) LastPlayed(ctx context.Context, playoutID uint, key string) (*models.PlayoutHistory, error) {
	h, err := s.repos.Playouts.LastHistory(ctx, playoutID, key)
	if db.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last activation: %w", err)
	}
	return h, nil
}
