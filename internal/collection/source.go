// Package collection resolves content-source references into ordered lists
// of playable media items.
package collection

import (
	"fmt"

	"github.com/stwalsh4118/playout/internal/models"
)

// Source is a reference to exactly one kind of content. The set of
// implementations is closed; switch over them with a type switch.
type Source interface {
	// Key identifies the source; it is stable across builds
	Key() string
	isSource()
}

// CollectionSource is a hand-curated collection
type CollectionSource struct{ ID uint }

// MultiCollectionSource composes several collections
type MultiCollectionSource struct{ ID uint }

// SmartCollectionSource is resolved by evaluating a stored query
type SmartCollectionSource struct{ ID uint }

// MediaItemSource is a single media item
type MediaItemSource struct{ ID uint }

// PlaylistSource is an ordered list that may repeat items
type PlaylistSource struct{ ID uint }

// RerunCollectionSource is a source with first-run and rerun orders
type RerunCollectionSource struct{ ID uint }

// FakeCollectionSource is an ad-hoc selection such as "show:Cheers"
type FakeCollectionSource struct{ Name string }

func (s CollectionSource) Key() string      { return fmt.Sprintf("collection:%d", s.ID) }
func (s MultiCollectionSource) Key() string { return fmt.Sprintf("multi_collection:%d", s.ID) }
func (s SmartCollectionSource) Key() string { return fmt.Sprintf("smart_collection:%d", s.ID) }
func (s MediaItemSource) Key() string       { return fmt.Sprintf("media_item:%d", s.ID) }
func (s PlaylistSource) Key() string        { return fmt.Sprintf("playlist:%d", s.ID) }
func (s RerunCollectionSource) Key() string { return fmt.Sprintf("rerun_collection:%d", s.ID) }
func (s FakeCollectionSource) Key() string  { return "fake:" + s.Name }

func (CollectionSource) isSource()      {}
func (MultiCollectionSource) isSource() {}
func (SmartCollectionSource) isSource() {}
func (MediaItemSource) isSource()       {}
func (PlaylistSource) isSource()        {}
func (RerunCollectionSource) isSource() {}
func (FakeCollectionSource) isSource()  {}

// SourceOf converts the nullable-reference form stored on schedule items,
// block items, fillers and break content into a Source
func SourceOf(ref models.ContentRef) (Source, error) {
	var found []Source
	if ref.CollectionID != nil {
		found = append(found, CollectionSource{ID: *ref.CollectionID})
	}
	if ref.MultiCollectionID != nil {
		found = append(found, MultiCollectionSource{ID: *ref.MultiCollectionID})
	}
	if ref.SmartCollectionID != nil {
		found = append(found, SmartCollectionSource{ID: *ref.SmartCollectionID})
	}
	if ref.MediaItemID != nil {
		found = append(found, MediaItemSource{ID: *ref.MediaItemID})
	}
	if ref.PlaylistID != nil {
		found = append(found, PlaylistSource{ID: *ref.PlaylistID})
	}
	if ref.RerunCollectionID != nil {
		found = append(found, RerunCollectionSource{ID: *ref.RerunCollectionID})
	}
	if ref.FakeCollectionKey != nil && *ref.FakeCollectionKey != "" {
		found = append(found, FakeCollectionSource{Name: *ref.FakeCollectionKey})
	}

	switch len(found) {
	case 0:
		return nil, ErrMissingSource
	case 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("%w: %s and %s", ErrAmbiguousSource, found[0].Key(), found[1].Key())
	}
}
