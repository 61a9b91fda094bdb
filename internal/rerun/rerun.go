// Package rerun tracks first runs and reruns of a rerun collection. Items
// play in first-run order until every item has aired once for the playout,
// then the rerun order takes over.
package rerun

import (
	"fmt"
	"time"

	"github.com/stwalsh4118/playout/internal/collection"
	"github.com/stwalsh4118/playout/internal/enumerator"
	"github.com/stwalsh4118/playout/internal/models"
)

// FirstRunKey is the collection-scope cursor key of the first-run order
func FirstRunKey(id uint) string {
	return fmt.Sprintf("rerun:%d:first", id)
}

// RerunKey is the collection-scope cursor key of the rerun order
func RerunKey(id uint) string {
	return fmt.Sprintf("rerun:%d:rerun", id)
}

// Tracker selects items from a resolved rerun collection
type Tracker struct {
	playoutID uint
	rc        *models.RerunCollection
	first     *enumerator.Enumerator
	rerun     *enumerator.Enumerator
	items     []collection.Item
	played    map[uint]bool
	pending   []models.RerunHistory
}

// New creates a tracker. history holds the playout's prior selections of any
// rerun collection; only rows for this collection are considered.
func New(playoutID uint, res *collection.Resolved, history []models.RerunHistory, first, rerun enumerator.State) (*Tracker, error) {
	if res == nil || res.Rerun == nil {
		return nil, fmt.Errorf("%w: not a rerun collection", collection.ErrMissingSource)
	}
	rc := res.Rerun

	t := &Tracker{
		playoutID: playoutID,
		rc:        rc,
		first:     enumerator.New(res, enumerator.Options{Order: rc.FirstRunPlaybackOrder}, first),
		rerun:     enumerator.New(res, enumerator.Options{Order: rc.RerunPlaybackOrder}, rerun),
		items:     res.Items,
		played:    make(map[uint]bool),
	}
	for _, h := range history {
		if h.RerunCollectionID == rc.ID && h.MediaItemID != nil {
			t.played[*h.MediaItemID] = true
		}
	}
	return t, nil
}

// exhausted reports whether every current item has had its first run
func (t *Tracker) exhausted() bool {
	for _, it := range t.items {
		if !t.played[it.ID()] {
			return false
		}
	}
	return true
}

// Current returns the item the next Take will select
func (t *Tracker) Current() (collection.Item, bool) {
	if t.exhausted() {
		return t.rerun.Current()
	}
	// skip already aired items; bounded by one full pass of the first-run order
	for range t.first.Len() {
		it, ok := t.first.Current()
		if !ok {
			return it, false
		}
		if !t.played[it.ID()] {
			return it, true
		}
		t.first.MoveNext()
	}
	return t.rerun.Current()
}

// Take selects the current item, advances the matching cursor and records
// the selection at the given time
func (t *Tracker) Take(at time.Time) (collection.Item, bool) {
	it, ok := t.Current()
	if !ok {
		return it, false
	}
	if t.played[it.ID()] {
		t.rerun.MoveNext()
	} else {
		t.first.MoveNext()
	}

	id := it.ID()
	t.played[id] = true
	t.pending = append(t.pending, models.RerunHistory{
		PlayoutID:         t.playoutID,
		RerunCollectionID: t.rc.ID,
		MediaItemID:       &id,
		When:              at.UTC(),
	})
	return it, true
}

// States returns the first-run and rerun cursors to persist
func (t *Tracker) States() (first, rerun enumerator.State) {
	return t.first.State(), t.rerun.State()
}

// Pending returns selections made since the tracker was created
func (t *Tracker) Pending() []models.RerunHistory {
	return t.pending
}
