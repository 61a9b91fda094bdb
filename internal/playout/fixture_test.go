package playout

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/playout/internal/buildlock"
	"github.com/stwalsh4118/playout/internal/db"
	"github.com/stwalsh4118/playout/internal/db/dbtest"
	"github.com/stwalsh4118/playout/internal/library"
	"github.com/stwalsh4118/playout/internal/models"
)

// epoch is a Monday at midnight UTC
var epoch = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T {
	return &v
}

func at(d time.Duration) time.Time {
	return epoch.Add(d)
}

type fixture struct {
	repos   *db.Repositories
	locks   *buildlock.Manager
	svc     *Service
	ctx     context.Context
	playout *models.Playout
	media   int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	_, repos := dbtest.Open(t)
	locks, err := buildlock.New("")
	require.NoError(t, err)

	f := &fixture{
		repos: repos,
		locks: locks,
		svc:   NewService(repos, library.NewStore(repos.Media), locks),
		ctx:   context.Background(),
	}
	f.svc.now = func() time.Time { return epoch }
	f.playout = f.newPlayout(t, 42)
	return f
}

func (f *fixture) newPlayout(t *testing.T, seed int64) *models.Playout {
	t.Helper()
	channel := models.NewChannel("1", "Test Channel", "UTC")
	p := &models.Playout{ScheduleKind: models.ScheduleKindClassic, Seed: seed}
	require.NoError(t, f.repos.Channels.CreateWithPlayout(f.ctx, channel, p))
	return p
}

func (f *fixture) item(t *testing.T, title string, length time.Duration) *models.MediaItem {
	t.Helper()
	f.media++
	m := models.NewMediaItem(models.MediaKindOtherVideo, fmt.Sprintf("/media/%03d-%s.mkv", f.media, title), title, int64(length/time.Second))
	require.NoError(t, f.repos.Media.Create(f.ctx, m))
	return m
}

func (f *fixture) collection(t *testing.T, items ...*models.MediaItem) *models.Collection {
	t.Helper()
	c := &models.Collection{Name: "Collection"}
	require.NoError(t, f.repos.Collections.CreateCollection(f.ctx, c))
	ids := make([]uint, len(items))
	for i, m := range items {
		ids[i] = m.ID
	}
	require.NoError(t, f.repos.Collections.AddItems(f.ctx, c.ID, ids...))
	return c
}

func (f *fixture) filler(t *testing.T, preset models.FillerPreset) *models.FillerPreset {
	t.Helper()
	preset.Name = "Filler"
	if preset.PlaybackOrder == "" {
		preset.PlaybackOrder = models.PlaybackOrderChronological
	}
	require.NoError(t, f.repos.Fillers.Create(f.ctx, &preset))
	return &preset
}

// schedule creates a program schedule from items (indexes assigned in
// order) and points the given playouts at it
func (f *fixture) schedule(t *testing.T, items []models.ProgramScheduleItem, playouts ...*models.Playout) *models.ProgramSchedule {
	t.Helper()
	for i := range items {
		items[i].Index = i
		if items[i].PlaybackOrder == "" {
			items[i].PlaybackOrder = models.PlaybackOrderChronological
		}
	}
	s := &models.ProgramSchedule{Name: "Schedule", Items: items}
	require.NoError(t, f.repos.Schedules.Create(f.ctx, s))

	if len(playouts) == 0 {
		playouts = []*models.Playout{f.playout}
	}
	for _, p := range playouts {
		p.ProgramScheduleID = &s.ID
		require.NoError(t, f.repos.Playouts.Update(f.ctx, p))
	}
	return s
}

func (f *fixture) build(t *testing.T, until time.Duration) *Result {
	t.Helper()
	return f.buildPlayout(t, f.playout, until)
}

func (f *fixture) buildPlayout(t *testing.T, p *models.Playout, until time.Duration) *Result {
	t.Helper()
	res, err := f.svc.Build(f.ctx, p.ID, BuildOptions{Until: at(until), From: epoch})
	require.NoError(t, err)
	return res
}

// slot is a timeline entry in minutes after epoch
type slot struct {
	Media  uint
	Start  int
	Finish int
	Kind   models.FillerKind
}

func minutes(t time.Time) int {
	return int(t.Sub(epoch) / time.Minute)
}

func (f *fixture) slots(t *testing.T, p *models.Playout) []slot {
	t.Helper()
	items, err := f.repos.Playouts.AllItems(f.ctx, p.ID)
	require.NoError(t, err)
	out := make([]slot, len(items))
	for i, it := range items {
		out[i] = slot{Media: it.MediaItemID, Start: minutes(it.Start), Finish: minutes(it.Finish), Kind: it.FillerKind}
	}
	return out
}

func (f *fixture) gaps(t *testing.T, p *models.Playout) [][2]int {
	t.Helper()
	gaps, err := f.repos.Playouts.Gaps(f.ctx, p.ID, epoch.Add(-24*time.Hour), epoch.Add(30*24*time.Hour))
	require.NoError(t, err)
	out := make([][2]int, len(gaps))
	for i, g := range gaps {
		out[i] = [2]int{minutes(g.Start), minutes(g.Finish)}
	}
	return out
}

// requireContiguous checks that items and gaps tile the timeline from start
// without overlapping
func (f *fixture) requireContiguous(t *testing.T, p *models.Playout, start time.Time) time.Time {
	t.Helper()
	type span struct{ start, finish time.Time }

	items, err := f.repos.Playouts.AllItems(f.ctx, p.ID)
	require.NoError(t, err)
	gaps, err := f.repos.Playouts.Gaps(f.ctx, p.ID, start.Add(-time.Hour), start.Add(30*24*time.Hour))
	require.NoError(t, err)

	var spans []span
	for _, it := range items {
		spans = append(spans, span{it.Start, it.Finish})
	}
	for _, g := range gaps {
		spans = append(spans, span{g.Start, g.Finish})
	}
	slices.SortFunc(spans, func(a, b span) int { return cmp.Compare(a.start.UnixNano(), b.start.UnixNano()) })

	cur := start
	for _, s := range spans {
		require.True(t, s.start.Equal(cur), "expected entry at %s, got %s", cur, s.start)
		require.True(t, s.finish.After(s.start), "empty entry at %s", s.start)
		cur = s.finish
	}
	return cur
}
