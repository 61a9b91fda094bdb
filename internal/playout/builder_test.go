package playout

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/playout/internal/models"
)

func TestBuild_OneModeCyclesCollection(t *testing.T) {
	f := newFixture(t)
	a := f.item(t, "A", 30*time.Minute)
	b := f.item(t, "B", 30*time.Minute)
	c := f.item(t, "C", 30*time.Minute)
	col := f.collection(t, a, b, c)
	f.schedule(t, []models.ProgramScheduleItem{
		{PlayoutMode: models.PlayoutModeOne, ContentRef: models.ContentRef{CollectionID: &col.ID}},
	})

	res := f.build(t, 2*time.Hour)
	assert.Equal(t, 4, res.Items)
	assert.Equal(t, 0, res.Gaps)
	assert.True(t, res.To.Equal(at(2*time.Hour)))

	assert.Equal(t, []slot{
		{a.ID, 0, 30, models.FillerKindNone},
		{b.ID, 30, 60, models.FillerKindNone},
		{c.ID, 60, 90, models.FillerKindNone},
		{a.ID, 90, 120, models.FillerKindNone},
	}, f.slots(t, f.playout))

	items, err := f.repos.Playouts.AllItems(f.ctx, f.playout.ID)
	require.NoError(t, err)
	for i, it := range items {
		assert.Equal(t, i+1, it.GuideGroup, "each activation starts a guide group")
		assert.NotEmpty(t, it.CollectionEtag)
	}

	state, err := f.repos.Playouts.LoadBuildState(f.ctx, f.playout.ID)
	require.NoError(t, err)
	require.NotNil(t, state.Anchor.NextStart)
	assert.True(t, state.Anchor.NextStart.Equal(at(2*time.Hour)))
	assert.Equal(t, 5, state.Anchor.NextGuideGroup)
	require.Len(t, state.CollectionStates, 1)
	assert.Equal(t, 4, state.CollectionStates[0].Index)
}

func TestBuild_FloodStopsAtNextFixedStart(t *testing.T) {
	f := newFixture(t)
	a := f.item(t, "A", 30*time.Minute)
	b := f.item(t, "B", 30*time.Minute)
	c := f.item(t, "C", 30*time.Minute)
	news := f.item(t, "News", 30*time.Minute)
	flood := f.collection(t, a, b, c)
	fixed := f.collection(t, news)
	f.schedule(t, []models.ProgramScheduleItem{
		{PlayoutMode: models.PlayoutModeFlood, ContentRef: models.ContentRef{CollectionID: &flood.ID}},
		{PlayoutMode: models.PlayoutModeOne, StartType: models.StartTypeFixed, StartTime: ptr(int64(3600)), ContentRef: models.ContentRef{CollectionID: &fixed.ID}},
	})

	f.build(t, 90*time.Minute)

	assert.Equal(t, []slot{
		{a.ID, 0, 30, models.FillerKindNone},
		{b.ID, 30, 60, models.FillerKindNone},
		{news.ID, 60, 90, models.FillerKindNone},
	}, f.slots(t, f.playout))
	assert.Empty(t, f.gaps(t, f.playout))
}

func TestBuild_FloodFirstItemMayOvershoot(t *testing.T) {
	f := newFixture(t)
	long := f.item(t, "Long", 90*time.Minute)
	news := f.item(t, "News", 30*time.Minute)
	flood := f.collection(t, long)
	fixed := f.collection(t, news)
	f.schedule(t, []models.ProgramScheduleItem{
		{PlayoutMode: models.PlayoutModeFlood, ContentRef: models.ContentRef{CollectionID: &flood.ID}},
		{PlayoutMode: models.PlayoutModeOne, StartType: models.StartTypeFixed, StartTime: ptr(int64(3600)), ContentRef: models.ContentRef{CollectionID: &fixed.ID}},
	})

	f.build(t, 2*time.Hour)

	// the fixed item was due while the flood overran, so it starts late
	assert.Equal(t, []slot{
		{long.ID, 0, 90, models.FillerKindNone},
		{news.ID, 90, 120, models.FillerKindNone},
	}, f.slots(t, f.playout))
}

func TestBuild_UnboundedFloodResumes(t *testing.T) {
	f := newFixture(t)
	a := f.item(t, "A", 20*time.Minute)
	b := f.item(t, "B", 20*time.Minute)
	col := f.collection(t, a, b)
	f.schedule(t, []models.ProgramScheduleItem{
		{PlayoutMode: models.PlayoutModeFlood, ContentRef: models.ContentRef{CollectionID: &col.ID}},
	})

	f.build(t, 30*time.Minute)
	state, err := f.repos.Playouts.LoadBuildState(f.ctx, f.playout.ID)
	require.NoError(t, err)
	assert.True(t, state.Anchor.InFlood)

	f.build(t, 80*time.Minute)
	assert.Equal(t, []slot{
		{a.ID, 0, 20, models.FillerKindNone},
		{b.ID, 20, 40, models.FillerKindNone},
		{a.ID, 40, 60, models.FillerKindNone},
		{b.ID, 60, 80, models.FillerKindNone},
	}, f.slots(t, f.playout))
}

func TestBuild_FixedStartWaitsWithGap(t *testing.T) {
	f := newFixture(t)
	a := f.item(t, "A", 30*time.Minute)
	col := f.collection(t, a)
	f.schedule(t, []models.ProgramScheduleItem{
		{PlayoutMode: models.PlayoutModeOne, StartType: models.StartTypeFixed, StartTime: ptr(int64(2 * 3600)), ContentRef: models.ContentRef{CollectionID: &col.ID}},
	})

	f.build(t, time.Minute)

	assert.Equal(t, []slot{{a.ID, 120, 150, models.FillerKindNone}}, f.slots(t, f.playout))
	assert.Equal(t, [][2]int{{0, 120}}, f.gaps(t, f.playout))
}

func TestBuild_DurationTails(t *testing.T) {
	tests := []struct {
		name      string
		tail      models.TailMode
		withFill  bool
		wantKinds []models.FillerKind
		wantGaps  [][2]int
		wantEnd   int
	}{
		{
			name:      "none",
			tail:      models.TailModeNone,
			wantKinds: []models.FillerKind{models.FillerKindNone, models.FillerKindNone},
			wantEnd:   40,
		},
		{
			name:      "offline",
			tail:      models.TailModeOffline,
			wantKinds: []models.FillerKind{models.FillerKindNone, models.FillerKindNone},
			wantGaps:  [][2]int{{40, 50}},
			wantEnd:   50,
		},
		{
			name:      "filler",
			tail:      models.TailModeFiller,
			withFill:  true,
			wantKinds: []models.FillerKind{models.FillerKindNone, models.FillerKindNone, models.FillerKindTail},
			wantGaps:  [][2]int{{45, 50}},
			wantEnd:   50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			col := f.collection(t,
				f.item(t, "A", 20*time.Minute),
				f.item(t, "B", 20*time.Minute),
				f.item(t, "C", 20*time.Minute),
			)
			item := models.ProgramScheduleItem{
				PlayoutMode:     models.PlayoutModeDuration,
				PlayoutDuration: ptr(int64(50 * 60)),
				TailMode:        tt.tail,
				ContentRef:      models.ContentRef{CollectionID: &col.ID},
			}
			if tt.withFill {
				bumper := f.collection(t, f.item(t, "Bumper", 5*time.Minute))
				preset := f.filler(t, models.FillerPreset{
					FillerKind: models.FillerKindTail,
					FillerMode: models.FillerModeCount,
					Count:      ptr(1),
					ContentRef: models.ContentRef{CollectionID: &bumper.ID},
				})
				item.TailFillerID = &preset.ID
			}
			f.schedule(t, []models.ProgramScheduleItem{item})

			res := f.build(t, time.Minute)
			assert.Equal(t, tt.wantEnd, minutes(res.To))

			var kinds []models.FillerKind
			for _, s := range f.slots(t, f.playout) {
				kinds = append(kinds, s.Kind)
			}
			assert.Equal(t, tt.wantKinds, kinds)
			if tt.wantGaps == nil {
				assert.Empty(t, f.gaps(t, f.playout))
			} else {
				assert.Equal(t, tt.wantGaps, f.gaps(t, f.playout))
			}
		})
	}
}

func TestBuild_DurationFirstItemAlwaysPlays(t *testing.T) {
	f := newFixture(t)
	movie := f.item(t, "Movie", 2*time.Hour)
	col := f.collection(t, movie)
	f.schedule(t, []models.ProgramScheduleItem{
		{PlayoutMode: models.PlayoutModeDuration, PlayoutDuration: ptr(int64(3600)), TailMode: models.TailModeOffline, ContentRef: models.ContentRef{CollectionID: &col.ID}},
	})

	f.build(t, time.Minute)

	assert.Equal(t, []slot{{movie.ID, 0, 120, models.FillerKindNone}}, f.slots(t, f.playout))
	assert.Empty(t, f.gaps(t, f.playout))
}

func TestBuild_MultipleWithRolls(t *testing.T) {
	f := newFixture(t)
	a := f.item(t, "A", 10*time.Minute)
	b := f.item(t, "B", 10*time.Minute)
	ident := f.item(t, "Ident", time.Minute)
	col := f.collection(t, a, b)
	identCol := f.collection(t, ident)
	roll := f.filler(t, models.FillerPreset{
		FillerKind: models.FillerKindPreRoll,
		FillerMode: models.FillerModeCount,
		Count:      ptr(1),
		ContentRef: models.ContentRef{CollectionID: &identCol.ID},
	})
	f.schedule(t, []models.ProgramScheduleItem{
		{
			PlayoutMode:     models.PlayoutModeMultiple,
			MultipleCount:   ptr("3"),
			PreRollFillerID: &roll.ID,
			ContentRef:      models.ContentRef{CollectionID: &col.ID},
		},
	})

	f.build(t, time.Minute)

	assert.Equal(t, []slot{
		{ident.ID, 0, 1, models.FillerKindPreRoll},
		{a.ID, 1, 11, models.FillerKindNone},
		{ident.ID, 11, 12, models.FillerKindPreRoll},
		{b.ID, 12, 22, models.FillerKindNone},
		{ident.ID, 22, 23, models.FillerKindPreRoll},
		{a.ID, 23, 33, models.FillerKindNone},
	}, f.slots(t, f.playout))

	items, err := f.repos.Playouts.AllItems(f.ctx, f.playout.ID)
	require.NoError(t, err)
	for _, it := range items {
		assert.Equal(t, 1, it.GuideGroup, "one activation is one guide group")
		require.NotNil(t, it.ScheduleItemID)
	}
}

func TestBuild_ResumeMatchesSingleBuild(t *testing.T) {
	f := newFixture(t)
	var shows []*models.MediaItem
	for i, d := range []time.Duration{22, 25, 30, 44, 18, 51, 27} {
		shows = append(shows, f.item(t, string(rune('A'+i)), d*time.Minute))
	}
	col := f.collection(t, shows...)
	news := f.collection(t, f.item(t, "News", 30*time.Minute))
	bumpers := f.collection(t, f.item(t, "Bumper1", 2*time.Minute), f.item(t, "Bumper2", 3*time.Minute))
	tail := f.filler(t, models.FillerPreset{
		FillerKind: models.FillerKindTail,
		FillerMode: models.FillerModeDuration,
		Duration:   ptr(int64(600)),
		ContentRef: models.ContentRef{CollectionID: &bumpers.ID},
	})

	single := f.playout
	split := f.newPlayout(t, single.Seed)
	f.schedule(t, []models.ProgramScheduleItem{
		{PlayoutMode: models.PlayoutModeMultiple, MultipleCount: ptr("1-3"), PlaybackOrder: models.PlaybackOrderShuffle, ContentRef: models.ContentRef{CollectionID: &col.ID}},
		{PlayoutMode: models.PlayoutModeDuration, PlayoutDuration: ptr(int64(3600)), TailMode: models.TailModeFiller, TailFillerID: &tail.ID, ContentRef: models.ContentRef{CollectionID: &col.ID}},
		{PlayoutMode: models.PlayoutModeFlood, PlaybackOrder: models.PlaybackOrderRandom, ContentRef: models.ContentRef{CollectionID: &col.ID}},
		{PlayoutMode: models.PlayoutModeOne, StartType: models.StartTypeFixed, StartTime: ptr(int64(18 * 3600)), ContentRef: models.ContentRef{CollectionID: &news.ID}},
	}, single, split)

	f.buildPlayout(t, single, 48*time.Hour)
	for _, until := range []time.Duration{5 * time.Hour, 19 * time.Hour, 30 * time.Hour, 48 * time.Hour} {
		f.buildPlayout(t, split, until)
	}

	assert.Equal(t, f.slots(t, single), f.slots(t, split))
	assert.Equal(t, f.gaps(t, single), f.gaps(t, split))
	f.requireContiguous(t, single, epoch)
	f.requireContiguous(t, split, epoch)
}

func TestBuild_DecoDefaultFillerCoversWaits(t *testing.T) {
	f := newFixture(t)
	show := f.item(t, "Show", 30*time.Minute)
	loop := f.item(t, "Loop", 50*time.Minute)
	col := f.collection(t, show)
	loopCol := f.collection(t, loop)
	preset := f.filler(t, models.FillerPreset{
		FillerKind: models.FillerKindDecoDefault,
		FillerMode: models.FillerModeDuration,
		Duration:   ptr(int64(3600)),
		ContentRef: models.ContentRef{CollectionID: &loopCol.ID},
	})
	wm := &models.Watermark{Name: "Logo", ImagePath: "/logos/logo.png"}
	require.NoError(t, f.repos.Channels.CreateWatermark(f.ctx, wm))

	group := &models.DecoGroup{Name: "Default"}
	require.NoError(t, f.repos.Decos.CreateGroup(f.ctx, group))
	d := &models.Deco{
		DecoGroupID:         group.ID,
		Name:                "House",
		WatermarkMode:       models.DecoModeOverride,
		WatermarkID:         &wm.ID,
		DefaultFillerMode:   models.DecoModeOverride,
		DefaultFillerID:     &preset.ID,
		DeadAirFallbackMode: models.DecoModeOverride,
		DeadAirFallbackID:   &preset.ID,
	}
	require.NoError(t, f.repos.Decos.Create(f.ctx, d))
	f.playout.DecoID = &d.ID

	f.schedule(t, []models.ProgramScheduleItem{
		{PlayoutMode: models.PlayoutModeOne, StartType: models.StartTypeFixed, StartTime: ptr(int64(2 * 3600)), ContentRef: models.ContentRef{CollectionID: &col.ID}},
	})

	f.build(t, time.Minute)

	assert.Equal(t, []slot{
		{loop.ID, 0, 50, models.FillerKindDecoDefault},
		{loop.ID, 50, 100, models.FillerKindDecoDefault},
		{show.ID, 120, 150, models.FillerKindNone},
	}, f.slots(t, f.playout))

	gaps, err := f.repos.Playouts.Gaps(f.ctx, f.playout.ID, epoch, at(3*time.Hour))
	require.NoError(t, err)
	require.Len(t, gaps, 1)
	assert.Equal(t, 100, minutes(gaps[0].Start))
	assert.Equal(t, 120, minutes(gaps[0].Finish))
	require.NotNil(t, gaps[0].FallbackFillerID)
	assert.Equal(t, preset.ID, *gaps[0].FallbackFillerID)

	items, err := f.repos.Playouts.AllItems(f.ctx, f.playout.ID)
	require.NoError(t, err)
	for _, it := range items {
		require.NotNil(t, it.WatermarkID)
		assert.Equal(t, wm.ID, *it.WatermarkID)
	}
}

func TestBuild_ConfigurationErrorsAreSkipped(t *testing.T) {
	f := newFixture(t)
	a := f.item(t, "A", 30*time.Minute)
	col := f.collection(t, a)
	f.schedule(t, []models.ProgramScheduleItem{
		{PlayoutMode: models.PlayoutModeOne, ContentRef: models.ContentRef{FakeCollectionKey: ptr("show:Nobody")}},
		{PlayoutMode: models.PlayoutModeOne, ContentRef: models.ContentRef{CollectionID: &col.ID}},
		{PlayoutMode: models.PlayoutModeMultiple, MultipleCount: ptr("many"), ContentRef: models.ContentRef{CollectionID: &col.ID}},
	})

	f.build(t, time.Hour)

	assert.Equal(t, []slot{
		{a.ID, 0, 30, models.FillerKindNone},
		{a.ID, 30, 60, models.FillerKindNone},
	}, f.slots(t, f.playout))

	status, err := f.svc.Status(f.ctx, f.playout.ID)
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.True(t, status.Success)
}

func TestBuild_UnusableEntriesKeepTimelineContiguous(t *testing.T) {
	tests := []struct {
		name      string
		broken    models.ProgramScheduleItem
		brokenAt  int
		wantSlots [][2]int
		wantGaps  [][2]int
		wantEnd   int
	}{
		{
			name:      "fixed start with empty collection",
			broken:    models.ProgramScheduleItem{PlayoutMode: models.PlayoutModeOne, StartType: models.StartTypeFixed, StartTime: ptr(int64(2 * 3600))},
			brokenAt:  1,
			wantSlots: [][2]int{{0, 30}, {120, 150}},
			wantGaps:  [][2]int{{30, 120}, {150, 26 * 60}},
			wantEnd:   26 * 60,
		},
		{
			name:      "duration with unmatched show",
			broken:    models.ProgramScheduleItem{PlayoutMode: models.PlayoutModeDuration, PlayoutDuration: ptr(int64(3600)), ContentRef: models.ContentRef{FakeCollectionKey: ptr("show:Nobody")}},
			brokenAt:  0,
			wantSlots: [][2]int{{60, 90}, {150, 180}},
			wantGaps:  [][2]int{{0, 60}, {90, 150}},
			wantEnd:   180,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			a := f.item(t, "A", 30*time.Minute)
			col := f.collection(t, a)
			broken := tt.broken
			if broken.ContentRef == (models.ContentRef{}) {
				empty := f.collection(t)
				broken.ContentRef = models.ContentRef{CollectionID: &empty.ID}
			}
			items := []models.ProgramScheduleItem{
				{PlayoutMode: models.PlayoutModeOne, ContentRef: models.ContentRef{CollectionID: &col.ID}},
			}
			items = slices.Insert(items, tt.brokenAt, broken)
			f.schedule(t, items)

			f.build(t, 3*time.Hour)

			var got [][2]int
			for _, s := range f.slots(t, f.playout) {
				assert.Equal(t, a.ID, s.Media)
				got = append(got, [2]int{s.Start, s.Finish})
			}
			assert.Equal(t, tt.wantSlots, got)
			assert.Equal(t, tt.wantGaps, f.gaps(t, f.playout))
			assert.Equal(t, tt.wantEnd, minutes(f.requireContiguous(t, f.playout, epoch)))
		})
	}
}

func TestBuild_UnboundedFloodResumeMatchesSingleBuild(t *testing.T) {
	f := newFixture(t)
	col := f.collection(t, f.item(t, "A", 20*time.Minute), f.item(t, "B", 20*time.Minute))
	single := f.playout
	split := f.newPlayout(t, single.Seed)
	f.schedule(t, []models.ProgramScheduleItem{
		{PlayoutMode: models.PlayoutModeFlood, ContentRef: models.ContentRef{CollectionID: &col.ID}},
	}, single, split)

	f.buildPlayout(t, single, 80*time.Minute)
	f.buildPlayout(t, split, 30*time.Minute)
	f.buildPlayout(t, split, 80*time.Minute)

	assert.Equal(t, f.slots(t, single), f.slots(t, split))
	guideGroups := func(p *models.Playout) []int {
		items, err := f.repos.Playouts.AllItems(f.ctx, p.ID)
		require.NoError(t, err)
		var out []int
		for _, it := range items {
			out = append(out, it.GuideGroup)
		}
		return out
	}
	assert.Equal(t, []int{1, 1, 1, 1}, guideGroups(single))
	assert.Equal(t, guideGroups(single), guideGroups(split))

	for _, p := range []*models.Playout{single, split} {
		history, err := f.repos.Playouts.History(f.ctx, p.ID, 0)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, 0, minutes(history[0].When))
	}
}

func TestBuild_UnusableScheduleFillsHorizon(t *testing.T) {
	f := newFixture(t)
	f.schedule(t, []models.ProgramScheduleItem{
		{PlayoutMode: models.PlayoutModeOne, ContentRef: models.ContentRef{FakeCollectionKey: ptr("show:Nobody")}},
	})

	res := f.build(t, 6*time.Hour)

	assert.Equal(t, 0, res.Items)
	assert.Equal(t, [][2]int{{0, 360}}, f.gaps(t, f.playout))
}

type failingLibrary struct{}

func (failingLibrary) MediaItems(context.Context, []uint) ([]models.MediaItem, error) {
	return nil, errors.New("library offline")
}

func (failingLibrary) AllMediaItems(context.Context) ([]models.MediaItem, error) {
	return nil, errors.New("library offline")
}

func TestBuild_ResolverFailureCommitsNothing(t *testing.T) {
	f := newFixture(t)
	col := f.collection(t, f.item(t, "A", 30*time.Minute))
	f.schedule(t, []models.ProgramScheduleItem{
		{PlayoutMode: models.PlayoutModeOne, ContentRef: models.ContentRef{CollectionID: &col.ID}},
	})
	svc := NewService(f.repos, failingLibrary{}, f.locks)

	_, err := svc.Build(f.ctx, f.playout.ID, BuildOptions{Until: at(time.Hour), From: epoch})
	require.Error(t, err)
	var rerr *ResolverError
	assert.ErrorAs(t, err, &rerr)

	assert.Empty(t, f.slots(t, f.playout))
	state, err := f.repos.Playouts.LoadBuildState(f.ctx, f.playout.ID)
	require.NoError(t, err)
	assert.Nil(t, state.Anchor.NextStart)
	assert.Empty(t, state.CollectionStates)

	status, err := svc.Status(f.ctx, f.playout.ID)
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.False(t, status.Success)
	assert.Contains(t, status.Message, "library offline")
}

func TestBuild_CanceledContextCommitsNothing(t *testing.T) {
	f := newFixture(t)
	col := f.collection(t, f.item(t, "A", 30*time.Minute))
	f.schedule(t, []models.ProgramScheduleItem{
		{PlayoutMode: models.PlayoutModeOne, ContentRef: models.ContentRef{CollectionID: &col.ID}},
	})

	ctx, cancel := context.WithCancel(f.ctx)
	cancel()
	_, err := f.svc.Build(ctx, f.playout.ID, BuildOptions{Until: at(time.Hour), From: epoch})
	require.Error(t, err)

	assert.Empty(t, f.slots(t, f.playout))
	status, err := f.svc.Status(f.ctx, f.playout.ID)
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.False(t, status.Success)
}

func TestBuild_InProgress(t *testing.T) {
	f := newFixture(t)
	unlock, err := f.locks.TryLock(f.playout.ID)
	require.NoError(t, err)
	defer unlock()

	_, err = f.svc.Build(f.ctx, f.playout.ID, BuildOptions{Until: at(time.Hour)})
	assert.True(t, IsBuildInProgress(err))

	status, err := f.svc.Status(f.ctx, f.playout.ID)
	require.NoError(t, err)
	assert.Nil(t, status, "contention does not touch the build status")
}

func TestBuild_MissingPlayoutAndSchedule(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Build(f.ctx, 999, BuildOptions{Until: at(time.Hour)})
	assert.True(t, IsPlayoutNotFound(err))

	_, err = f.svc.Build(f.ctx, f.playout.ID, BuildOptions{Until: at(time.Hour)})
	assert.True(t, IsNoSchedule(err))

	status, err := f.svc.Status(f.ctx, f.playout.ID)
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.False(t, status.Success)
}

func TestBuild_ResetRegeneratesFromBoundary(t *testing.T) {
	f := newFixture(t)
	a := f.item(t, "A", 30*time.Minute)
	b := f.item(t, "B", 30*time.Minute)
	c := f.item(t, "C", 30*time.Minute)
	col := f.collection(t, a, b, c)
	f.schedule(t, []models.ProgramScheduleItem{
		{PlayoutMode: models.PlayoutModeOne, ContentRef: models.ContentRef{CollectionID: &col.ID}},
	})
	f.build(t, 2*time.Hour)

	res, err := f.svc.Build(f.ctx, f.playout.ID, BuildOptions{Until: at(2 * time.Hour), Reset: true, From: at(45 * time.Minute)})
	require.NoError(t, err)
	assert.Equal(t, 60, minutes(res.From), "reset starts after the item playing at the reset point")

	slots := f.slots(t, f.playout)
	require.Len(t, slots, 4)
	assert.Equal(t, slot{a.ID, 0, 30, models.FillerKindNone}, slots[0])
	assert.Equal(t, slot{b.ID, 30, 60, models.FillerKindNone}, slots[1])
	assert.Equal(t, 60, slots[2].Start)
	assert.Equal(t, 90, slots[3].Start)
	f.requireContiguous(t, f.playout, epoch)

	items, err := f.repos.Playouts.AllItems(f.ctx, f.playout.ID)
	require.NoError(t, err)
	assert.Greater(t, items[2].GuideGroup, 4, "guide groups keep increasing across a reset")
}

func TestLastPlayed(t *testing.T) {
	f := newFixture(t)
	col := f.collection(t, f.item(t, "A", 30*time.Minute))
	s := f.schedule(t, []models.ProgramScheduleItem{
		{PlayoutMode: models.PlayoutModeOne, ContentRef: models.ContentRef{CollectionID: &col.ID}},
	})
	key := ScheduleItemKey(s.Items[0].ID)

	h, err := f.svc.LastPlayed(f.ctx, f.playout.ID, key)
	require.NoError(t, err)
	assert.Nil(t, h)

	f.build(t, 90*time.Minute)

	h, err = f.svc.LastPlayed(f.ctx, f.playout.ID, key)
	require.NoError(t, err)
	require.NotNil(t, h)
	assert.Equal(t, 60, minutes(h.When))
	assert.Equal(t, 90, minutes(h.Finish))
	assert.Contains(t, h.Details, `"items":1`)
}
