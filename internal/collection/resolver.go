package collection

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/stwalsh4118/playout/internal/db"
	"github.com/stwalsh4118/playout/internal/library"
	"github.com/stwalsh4118/playout/internal/models"
)

// Item is one playable entry of a resolved source
type Item struct {
	Media *models.MediaItem
	// CollectionID is the collection the item came from, when there is one
	CollectionID uint
	// Group is set when the item must be scheduled together with the other
	// members of its group
	Group string
}

// ID returns the media item id
func (i Item) ID() uint {
	return i.Media.ID
}

// Duration returns the media item length
func (i Item) Duration() time.Duration {
	return i.Media.Length()
}

// Resolved is the ordered content of a source at one point in time
type Resolved struct {
	Source Source
	Key    string
	Etag   string
	Items  []Item
	// ShuffleInGroup lists groups whose members play in shuffled order
	ShuffleInGroup map[string]bool
	// Rerun is set for rerun collections
	Rerun *models.RerunCollection
}

// Definitions loads the engine-owned content definitions
type Definitions interface {
	GetCollection(ctx context.Context, id uint) (*models.Collection, error)
	GetMultiCollection(ctx context.Context, id uint) (*models.MultiCollection, error)
	GetSmartCollection(ctx context.Context, id uint) (*models.SmartCollection, error)
	GetPlaylist(ctx context.Context, id uint) (*models.Playlist, error)
	GetRerunCollection(ctx context.Context, id uint) (*models.RerunCollection, error)
}

// Resolver turns sources into ordered item lists
type Resolver struct {
	defs    Definitions
	library library.Provider
}

// NewResolver creates a resolver over content definitions and the media library
func NewResolver(defs Definitions, lib library.Provider) *Resolver {
	return &Resolver{defs: defs, library: lib}
}

// Resolve returns the current content of src. Smart collections and fake
// collections are evaluated against the library as of at. An empty result is
// ErrEmptySource; library failures are *ResolverError.
func (r *Resolver) Resolve(ctx context.Context, src Source, at time.Time) (*Resolved, error) {
	res := &Resolved{Source: src, Key: src.Key()}
	var err error

	switch s := src.(type) {
	case CollectionSource:
		res.Items, err = r.collectionItems(ctx, s.ID)
	case MultiCollectionSource:
		res.Items, res.ShuffleInGroup, err = r.multiCollectionItems(ctx, s.ID, at)
	case SmartCollectionSource:
		res.Items, err = r.smartItems(ctx, s.ID, at)
	case MediaItemSource:
		res.Items, err = r.mediaItem(ctx, s.ID)
	case PlaylistSource:
		res.Items, err = r.playlistItems(ctx, s.ID)
	case RerunCollectionSource:
		res.Rerun, res.Items, res.ShuffleInGroup, err = r.rerunItems(ctx, s.ID, at)
	case FakeCollectionSource:
		res.Items, err = r.fakeItems(ctx, s.Name)
	default:
		err = fmt.Errorf("%w: unsupported source %T", ErrMissingSource, src)
	}
	if err != nil {
		return nil, err
	}
	if len(res.Items) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptySource, res.Key)
	}

	res.Etag = Etag(res.Items)
	return res, nil
}

// definition maps a definition lookup failure to the resolver taxonomy
func definition(key string, err error) error {
	if db.IsNotFound(err) {
		return fmt.Errorf("%w: %s", ErrMissingSource, key)
	}
	return &ResolverError{Source: key, Err: err}
}

// fetch loads media by id keeping ids order; ids the library no longer has are dropped
func (r *Resolver) fetch(ctx context.Context, key string, ids []uint) (map[uint]*models.MediaItem, error) {
	media, err := r.library.MediaItems(ctx, ids)
	if err != nil {
		return nil, &ResolverError{Source: key, Err: err}
	}
	byID := make(map[uint]*models.MediaItem, len(media))
	for i := range media {
		if media[i].Duration > 0 {
			byID[media[i].ID] = &media[i]
		}
	}
	return byID, nil
}

func (r *Resolver) all(ctx context.Context, key string) ([]models.MediaItem, error) {
	media, err := r.library.AllMediaItems(ctx)
	if err != nil {
		return nil, &ResolverError{Source: key, Err: err}
	}
	// zero-length items can never advance the timeline
	return slices.DeleteFunc(media, func(m models.MediaItem) bool {
		return m.Duration <= 0
	}), nil
}

func (r *Resolver) collectionItems(ctx context.Context, id uint) ([]Item, error) {
	key := CollectionSource{ID: id}.Key()
	c, err := r.defs.GetCollection(ctx, id)
	if err != nil {
		return nil, definition(key, err)
	}

	ids := make([]uint, 0, len(c.Items))
	seen := make(map[uint]bool, len(c.Items))
	for _, ci := range c.Items {
		if !seen[ci.MediaItemID] {
			seen[ci.MediaItemID] = true
			ids = append(ids, ci.MediaItemID)
		}
	}

	byID, err := r.fetch(ctx, key, ids)
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(ids))
	for _, mid := range ids {
		if m, ok := byID[mid]; ok {
			items = append(items, Item{Media: m, CollectionID: id})
		}
	}
	SortChronological(items)
	return items, nil
}

func (r *Resolver) smartItems(ctx context.Context, id uint, at time.Time) ([]Item, error) {
	key := SmartCollectionSource{ID: id}.Key()
	sc, err := r.defs.GetSmartCollection(ctx, id)
	if err != nil {
		return nil, definition(key, err)
	}
	q, err := ParseQuery(sc.Query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}

	media, err := r.all(ctx, key)
	if err != nil {
		return nil, err
	}
	var items []Item
	for i := range media {
		ok, err := q.Match(&media[i], at)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		if ok {
			items = append(items, Item{Media: &media[i]})
		}
	}
	SortChronological(items)
	return items, nil
}

// multiCollectionItems concatenates children ordered by their first item.
// Children scheduled as a group stay contiguous.
func (r *Resolver) multiCollectionItems(ctx context.Context, id uint, at time.Time) ([]Item, map[string]bool, error) {
	key := MultiCollectionSource{ID: id}.Key()
	mc, err := r.defs.GetMultiCollection(ctx, id)
	if err != nil {
		return nil, nil, definition(key, err)
	}

	var units [][]Item
	shuffled := make(map[string]bool)
	seen := make(map[uint]bool)

	for _, child := range mc.Items {
		var (
			items []Item
			group string
		)
		switch {
		case child.CollectionID != nil:
			items, err = r.collectionItems(ctx, *child.CollectionID)
			group = CollectionSource{ID: *child.CollectionID}.Key()
		case child.SmartCollectionID != nil:
			items, err = r.smartItems(ctx, *child.SmartCollectionID, at)
			group = SmartCollectionSource{ID: *child.SmartCollectionID}.Key()
		default:
			continue
		}
		if IsConfiguration(err) {
			// a deleted or broken child leaves the rest of the multi collection usable
			continue
		}
		if err != nil {
			return nil, nil, err
		}

		items = slices.DeleteFunc(items, func(it Item) bool { return seen[it.ID()] })
		for _, it := range items {
			seen[it.ID()] = true
		}
		if len(items) == 0 {
			continue
		}

		if !child.ScheduleAsGroup {
			for _, it := range items {
				units = append(units, []Item{it})
			}
			continue
		}
		for i := range items {
			items[i].Group = group
		}
		if child.PlaybackOrder == models.PlaybackOrderShuffle || child.PlaybackOrder == models.PlaybackOrderRandom {
			shuffled[group] = true
		}
		units = append(units, items)
	}

	slices.SortStableFunc(units, func(a, b []Item) int {
		return CompareChronological(a[0].Media, b[0].Media)
	})

	var out []Item
	for _, u := range units {
		out = append(out, u...)
	}
	return out, shuffled, nil
}

func (r *Resolver) mediaItem(ctx context.Context, id uint) ([]Item, error) {
	key := MediaItemSource{ID: id}.Key()
	byID, err := r.fetch(ctx, key, []uint{id})
	if err != nil {
		return nil, err
	}
	m, ok := byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingSource, key)
	}
	return []Item{{Media: m}}, nil
}

// playlistItems expands entries in index order. A collection entry with
// PlayAll contributes every item; without it the entry contributes the next
// chronological item not yet taken by an earlier entry for that collection.
func (r *Resolver) playlistItems(ctx context.Context, id uint) ([]Item, error) {
	key := PlaylistSource{ID: id}.Key()
	p, err := r.defs.GetPlaylist(ctx, id)
	if err != nil {
		return nil, definition(key, err)
	}

	var mediaIDs []uint
	for _, e := range p.Items {
		if e.MediaItemID != nil {
			mediaIDs = append(mediaIDs, *e.MediaItemID)
		}
	}
	byID, err := r.fetch(ctx, key, mediaIDs)
	if err != nil {
		return nil, err
	}

	collections := make(map[uint][]Item)
	taken := make(map[uint]int)
	var items []Item
	for _, e := range p.Items {
		switch {
		case e.MediaItemID != nil:
			if m, ok := byID[*e.MediaItemID]; ok {
				items = append(items, Item{Media: m})
			}
		case e.CollectionID != nil:
			cid := *e.CollectionID
			members, ok := collections[cid]
			if !ok {
				members, err = r.collectionItems(ctx, cid)
				if err != nil && !IsConfiguration(err) {
					return nil, err
				}
				collections[cid] = members
			}
			if len(members) == 0 {
				continue
			}
			if e.PlayAll {
				items = append(items, members...)
				continue
			}
			items = append(items, members[taken[cid]%len(members)])
			taken[cid]++
		}
	}
	return items, nil
}

func (r *Resolver) rerunItems(ctx context.Context, id uint, at time.Time) (*models.RerunCollection, []Item, map[string]bool, error) {
	key := RerunCollectionSource{ID: id}.Key()
	rc, err := r.defs.GetRerunCollection(ctx, id)
	if err != nil {
		return nil, nil, nil, definition(key, err)
	}

	inner, err := SourceOf(models.ContentRef{
		CollectionID:      rc.CollectionID,
		MultiCollectionID: rc.MultiCollectionID,
		SmartCollectionID: rc.SmartCollectionID,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%s: %w", key, err)
	}

	var (
		items    []Item
		shuffled map[string]bool
	)
	switch s := inner.(type) {
	case CollectionSource:
		items, err = r.collectionItems(ctx, s.ID)
	case MultiCollectionSource:
		items, shuffled, err = r.multiCollectionItems(ctx, s.ID, at)
	case SmartCollectionSource:
		items, err = r.smartItems(ctx, s.ID, at)
	}
	if err != nil {
		return nil, nil, nil, err
	}
	return rc, items, shuffled, nil
}

// fakeItems resolves ad-hoc keys: "show:<title>", "season:<title>:<n>" and "kind:<kind>"
func (r *Resolver) fakeItems(ctx context.Context, name string) ([]Item, error) {
	key := FakeCollectionSource{Name: name}.Key()
	match, err := fakeMatcher(name)
	if err != nil {
		return nil, err
	}

	media, err := r.all(ctx, key)
	if err != nil {
		return nil, err
	}
	var items []Item
	for i := range media {
		if match(&media[i]) {
			items = append(items, Item{Media: &media[i]})
		}
	}
	SortChronological(items)
	return items, nil
}

func fakeMatcher(name string) (func(*models.MediaItem) bool, error) {
	kind, rest, ok := strings.Cut(name, ":")
	if !ok || rest == "" {
		return nil, fmt.Errorf("%w: malformed fake collection key %q", ErrInvalidQuery, name)
	}

	switch kind {
	case "show":
		return func(m *models.MediaItem) bool {
			return m.ShowTitle != nil && strings.EqualFold(*m.ShowTitle, rest)
		}, nil
	case "season":
		i := strings.LastIndex(rest, ":")
		if i <= 0 {
			return nil, fmt.Errorf("%w: malformed season key %q", ErrInvalidQuery, name)
		}
		show := rest[:i]
		season, err := strconv.Atoi(rest[i+1:])
		if err != nil {
			return nil, fmt.Errorf("%w: malformed season number in %q", ErrInvalidQuery, name)
		}
		return func(m *models.MediaItem) bool {
			return m.ShowTitle != nil && strings.EqualFold(*m.ShowTitle, show) &&
				m.Season != nil && *m.Season == season
		}, nil
	case "kind":
		return func(m *models.MediaItem) bool {
			return strings.EqualFold(string(m.Kind), rest)
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown fake collection kind %q", ErrInvalidQuery, kind)
	}
}
