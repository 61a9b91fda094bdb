package playout

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"github.com/stwalsh4118/playout/internal/collection"
	"github.com/stwalsh4118/playout/internal/db"
	"github.com/stwalsh4118/playout/internal/deco"
	"github.com/stwalsh4118/playout/internal/enumerator"
	"github.com/stwalsh4118/playout/internal/metrics"
	"github.com/stwalsh4118/playout/internal/models"
	"github.com/stwalsh4118/playout/internal/rerun"
)

// scope selects which enumerator-state table a cursor lives in
type scope int

const (
	scopeScheduleItem scope = iota
	scopeCollection
	scopeFillGroup
)

type cursorKey struct {
	scope scope
	key   string
}

type cursor struct {
	e      *enumerator.Enumerator
	source string
	opts   enumerator.Options
}

type resolution struct {
	res *collection.Resolved
	err error
}

// picker is the common face of enumerators and rerun trackers
type picker interface {
	Current() (collection.Item, bool)
	Take(at time.Time) (collection.Item, bool)
}

type enumPicker struct {
	e *enumerator.Enumerator
}

func (p enumPicker) Current() (collection.Item, bool) {
	return p.e.Current()
}

func (p enumPicker) Take(time.Time) (collection.Item, bool) {
	it, ok := p.e.Current()
	if ok {
		p.e.MoveNext()
	}
	return it, ok
}

// provenance is copied onto every item an activation emits
type provenance struct {
	scheduleItemID *uint
	blockID        *uint
	audioLang      *string
	subtitleLang   *string
}

// buildContext carries the seed, cursors and output of one build pass. All
// mutations stay in memory until the pass commits.
type buildContext struct {
	ctx     context.Context
	log     zerolog.Logger
	repos   *db.Repositories
	playout *models.Playout
	channel *models.Channel
	loc     *time.Location
	anchor  models.PlayoutAnchor
	// at is the reference instant for smart collection queries
	at time.Time

	resolver *collection.Resolver
	decos    *deco.Resolver

	resolved     map[string]resolution
	states       map[cursorKey]enumerator.State
	cursors      map[cursorKey]*cursor
	reruns       map[uint]*rerun.Tracker
	rerunHistory []models.RerunHistory
	fillers      map[uint]*models.FillerPreset
	blocks       map[uint]*models.Block
	templates    map[uint]*models.Template

	guideGroup int
	items      []models.PlayoutItem
	gaps       []models.PlayoutGap
	history    []models.PlayoutHistory
}

func newBuildContext(ctx context.Context, log zerolog.Logger, repos *db.Repositories, resolver *collection.Resolver, playout *models.Playout, channel *models.Channel, state *db.BuildState, decos *deco.Resolver, at time.Time) *buildContext {
	b := &buildContext{
		ctx:          ctx,
		log:          log,
		repos:        repos,
		playout:      playout,
		channel:      channel,
		loc:          channel.Location(),
		anchor:       state.Anchor,
		at:           at,
		resolver:     resolver,
		decos:        decos,
		resolved:     make(map[string]resolution),
		states:       make(map[cursorKey]enumerator.State),
		cursors:      make(map[cursorKey]*cursor),
		reruns:       make(map[uint]*rerun.Tracker),
		rerunHistory: state.RerunHistory,
		fillers:      make(map[uint]*models.FillerPreset),
		blocks:       make(map[uint]*models.Block),
		templates:    make(map[uint]*models.Template),
	}
	for _, s := range state.ScheduleItemStates {
		b.states[cursorKey{scopeScheduleItem, s.ItemKey}] = enumerator.State{Seed: s.Seed, Index: s.Index}
	}
	for _, s := range state.CollectionStates {
		b.states[cursorKey{scopeCollection, s.CollectionKey}] = enumerator.State{Seed: s.Seed, Index: s.Index}
	}
	for _, s := range state.FillGroupStates {
		b.states[cursorKey{scopeFillGroup, s.FillGroupKey}] = enumerator.State{Seed: s.Seed, Index: s.Index}
	}
	return b
}

// resolve resolves a source once per pass; errors are remembered too
func (b *buildContext) resolve(src collection.Source) (*collection.Resolved, error) {
	key := src.Key()
	if r, ok := b.resolved[key]; ok {
		return r.res, r.err
	}
	res, err := b.resolver.Resolve(b.ctx, src, b.at)
	b.resolved[key] = resolution{res: res, err: err}
	return res, err
}

func (b *buildContext) state(ck cursorKey) enumerator.State {
	if st, ok := b.states[ck]; ok {
		return st
	}
	return enumerator.State{Seed: enumerator.SeedFor(b.playout.Seed, ck.key)}
}

// picker returns the live selector for src under the given cursor. Sources
// sharing a cursor (fill groups) share one index.
func (b *buildContext) picker(src collection.Source, sc scope, key string, opts enumerator.Options) (picker, *collection.Resolved, error) {
	res, err := b.resolve(src)
	if err != nil {
		return nil, nil, err
	}

	if rs, ok := src.(collection.RerunCollectionSource); ok {
		tr, err := b.rerunTracker(rs.ID, res)
		if err != nil {
			return nil, nil, err
		}
		return tr, res, nil
	}

	ck := cursorKey{scope: sc, key: key}
	c, ok := b.cursors[ck]
	switch {
	case !ok:
		c = &cursor{e: enumerator.New(res, opts, b.state(ck)), source: res.Key, opts: opts}
		b.cursors[ck] = c
	case c.source != res.Key || c.opts != opts:
		c.e = enumerator.New(res, opts, c.e.State())
		c.source, c.opts = res.Key, opts
	}
	return enumPicker{e: c.e}, res, nil
}

func (b *buildContext) rerunTracker(id uint, res *collection.Resolved) (*rerun.Tracker, error) {
	if tr, ok := b.reruns[id]; ok {
		return tr, nil
	}
	first := b.state(cursorKey{scopeCollection, rerun.FirstRunKey(id)})
	again := b.state(cursorKey{scopeCollection, rerun.RerunKey(id)})
	tr, err := rerun.New(b.playout.ID, res, b.rerunHistory, first, again)
	if err != nil {
		return nil, err
	}
	b.reruns[id] = tr
	return tr, nil
}

// contentKey is the cursor key of a source under a playback order
func contentKey(src collection.Source, opts enumerator.Options) string {
	key := fmt.Sprintf("%s:%s", src.Key(), cmp.Or(opts.Order, models.PlaybackOrderChronological))
	if opts.Order == models.PlaybackOrderMarathon {
		m := opts.Marathon
		key += fmt.Sprintf(":%s:%d:%t:%t", cmp.Or(m.GroupBy, models.MarathonGroupByNone), m.BatchSize, m.ShuffleGroups, m.ShuffleItems)
	}
	return key
}

// nextGuideGroup starts a new guide group for the following emissions
func (b *buildContext) nextGuideGroup() int {
	g := max(b.anchor.NextGuideGroup, 1)
	b.anchor.NextGuideGroup = g + 1
	b.guideGroup = g
	return g
}

// emit appends one timeline item starting at start and returns its finish
func (b *buildContext) emit(it collection.Item, res *collection.Resolved, start time.Time, kind models.FillerKind, prov provenance) time.Time {
	finish := start.Add(it.Duration())
	overlay := b.decos.At(start)

	b.items = append(b.items, models.PlayoutItem{
		PlayoutID:             b.playout.ID,
		MediaItemID:           it.ID(),
		Start:                 start.UTC(),
		Finish:                finish.UTC(),
		GuideGroup:            b.guideGroup,
		FillerKind:            kind,
		CollectionKey:         res.Key,
		CollectionEtag:        res.Etag,
		PreferredAudioLang:    prov.audioLang,
		PreferredSubtitleLang: prov.subtitleLang,
		WatermarkID:           overlay.WatermarkID,
		DisableWatermarks:     overlay.DisableWatermarks,
		GraphicsElements:      overlay.GraphicsElements,
		ScheduleItemID:        prov.scheduleItemID,
		BlockID:               prov.blockID,
	})
	return finish
}

// recordGap appends an uncovered interval
func (b *buildContext) recordGap(start, end time.Time, fallback *uint) {
	if !end.After(start) {
		return
	}
	b.gaps = append(b.gaps, models.PlayoutGap{
		PlayoutID:        b.playout.ID,
		Start:            start.UTC(),
		Finish:           end.UTC(),
		FallbackFillerID: fallback,
	})
	b.log.Debug().
		Time("start", start).
		Time("finish", end).
		Msg("Recorded gap")
}

// configError logs and counts a recovered configuration error
func (b *buildContext) configError(err error, what string, id uint) {
	metrics.ConfigurationErrors.WithLabelValues(configurationReason(err)).Inc()
	b.log.Warn().
		Err(err).
		Str("entry", what).
		Uint("entry_id", id).
		Msg("Skipping schedule entry with unusable content source")
}

// commit assembles the mutations of the pass
func (b *buildContext) commit(resetFrom *time.Time) *db.BuildCommit {
	c := &db.BuildCommit{
		PlayoutID: b.playout.ID,
		ResetFrom: resetFrom,
		Anchor:    b.anchor,
		Items:     b.items,
		Gaps:      b.gaps,
		History:   b.history,
	}

	keys := slices.SortedFunc(maps.Keys(b.cursors), func(x, y cursorKey) int {
		return cmp.Or(cmp.Compare(x.scope, y.scope), cmp.Compare(x.key, y.key))
	})
	for _, ck := range keys {
		st := b.cursors[ck].e.State()
		switch ck.scope {
		case scopeScheduleItem:
			c.ScheduleItemStates = append(c.ScheduleItemStates, models.ScheduleItemEnumeratorState{ItemKey: ck.key, Seed: st.Seed, Index: st.Index})
		case scopeCollection:
			c.CollectionStates = append(c.CollectionStates, models.CollectionEnumeratorState{CollectionKey: ck.key, Seed: st.Seed, Index: st.Index})
		case scopeFillGroup:
			c.FillGroupStates = append(c.FillGroupStates, models.FillGroupEnumeratorState{FillGroupKey: ck.key, Seed: st.Seed, Index: st.Index})
		}
	}

	for _, id := range slices.Sorted(maps.Keys(b.reruns)) {
		tr := b.reruns[id]
		first, again := tr.States()
		c.CollectionStates = append(c.CollectionStates,
			models.CollectionEnumeratorState{CollectionKey: rerun.FirstRunKey(id), Seed: first.Seed, Index: first.Index},
			models.CollectionEnumeratorState{CollectionKey: rerun.RerunKey(id), Seed: again.Seed, Index: again.Index},
		)
		c.RerunHistory = append(c.RerunHistory, tr.Pending()...)
	}
	return c
}

func nextOccurrence(cur time.Time, tod time.Duration, loc *time.Location, strict bool) time.Time {
	local := cur.In(loc)
	secs := int(tod / time.Second)
	at := func(day int) time.Time {
		return time.Date(local.Year(), local.Month(), day, secs/3600, (secs%3600)/60, secs%60, 0, loc)
	}
	t := at(local.Day())
	if t.Before(cur) || (strict && t.Equal(cur)) {
		t = at(local.Day() + 1)
	}
	return t
}

func localMidnight(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
