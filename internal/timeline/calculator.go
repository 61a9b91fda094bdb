// Package timeline answers "what is on air now" from the generated playout
// timeline.
package timeline

import (
	"slices"
	"time"

	"github.com/stwalsh4118/playout/internal/models"
)

// CalculatePosition finds the item on air at currentTime. This is a pure
// function: items must be ordered by start and non-overlapping, as a build
// writes them.
//
// Returns ErrNotGenerated when currentTime lies outside the generated range and
// ErrOffAir when it falls between two items.
func CalculatePosition(items []models.PlayoutItem, currentTime time.Time) (*TimelinePosition, error) {
	if len(items) == 0 || !currentTime.Before(items[len(items)-1].Finish) {
		return nil, ErrNotGenerated
	}

	// index of the first item starting after currentTime
	i, _ := slices.BinarySearchFunc(items, currentTime, func(it models.PlayoutItem, t time.Time) int {
		if it.Start.After(t) {
			return 1
		}
		return -1
	})
	if i == 0 {
		return nil, ErrOffAir
	}

	item := items[i-1]
	if !currentTime.Before(item.Finish) {
		return nil, ErrOffAir
	}

	pos := &TimelinePosition{
		PlayoutItemID: item.ID,
		MediaItemID:   item.MediaItemID,
		FillerKind:    item.FillerKind,
		GuideGroup:    item.GuideGroup,
		OffsetSeconds: int64(currentTime.Sub(item.Start) / time.Second),
		StartedAt:     item.Start,
		EndsAt:        item.Finish,
		Duration:      int64(item.Duration() / time.Second),
	}
	if i < len(items) {
		pos.Next = &UpcomingItem{MediaItemID: items[i].MediaItemID, StartsAt: items[i].Start}
	}
	return pos, nil
}
