package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/playout/internal/db"
	"github.com/stwalsh4118/playout/internal/db/dbtest"
	"github.com/stwalsh4118/playout/internal/models"
)

func ptr[T any](v T) *T { return &v }

func createMedia(t *testing.T, repos *db.Repositories, title string, minutes int64) *models.MediaItem {
	t.Helper()
	item := models.NewMediaItem(models.MediaKindOtherVideo, "/media/"+title+".mkv", title, minutes*60)
	require.NoError(t, repos.Media.Create(context.Background(), item))
	return item
}

func createChannel(t *testing.T, repos *db.Repositories, name string) (*models.Channel, *models.Playout) {
	t.Helper()
	ch := models.NewChannel("1", name, "UTC")
	p := &models.Playout{ScheduleKind: models.ScheduleKindClassic, Seed: 42}
	require.NoError(t, repos.Channels.CreateWithPlayout(context.Background(), ch, p))
	return ch, p
}

func TestSchemaVersion(t *testing.T) {
	database, _ := dbtest.Open(t)
	sqlDB, err := database.GetSQLDB()
	require.NoError(t, err)

	version, dirty, err := db.SchemaVersion(sqlDB)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	// Re-running is a no-op
	require.NoError(t, db.RunMigrations(sqlDB))
}

func TestCreateWithPlayout_CreatesAnchor(t *testing.T) {
	_, repos := dbtest.Open(t)
	ctx := context.Background()

	ch, p := createChannel(t, repos, "Classic TV")
	assert.NotZero(t, ch.ID)
	assert.Equal(t, ch.ID, p.ChannelID)

	state, err := repos.Playouts.LoadBuildState(ctx, p.ID)
	require.NoError(t, err)
	assert.NotZero(t, state.Anchor.ID)
	assert.Equal(t, 1, state.Anchor.NextGuideGroup)
	assert.Nil(t, state.Anchor.NextStart)
}

func TestMediaDelete_Cascades(t *testing.T) {
	_, repos := dbtest.Open(t)
	ctx := context.Background()

	a := createMedia(t, repos, "a", 30)
	b := createMedia(t, repos, "b", 30)

	coll := &models.Collection{Name: "c", Items: []models.CollectionItem{{MediaItemID: a.ID}, {MediaItemID: b.ID}}}
	require.NoError(t, repos.Collections.CreateCollection(ctx, coll))

	rc := &models.RerunCollection{Name: "r", CollectionID: &coll.ID}
	require.NoError(t, repos.Collections.CreateRerunCollection(ctx, rc))

	filler := &models.FillerPreset{Name: "bumper", FillerKind: models.FillerKindPreRoll, ContentRef: models.ContentRef{MediaItemID: &a.ID}}
	require.NoError(t, repos.Fillers.Create(ctx, filler))

	_, p := createChannel(t, repos, "ch")
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repos.Playouts.CommitBuild(ctx, &db.BuildCommit{
		PlayoutID: p.ID,
		Anchor:    models.PlayoutAnchor{NextStart: ptr(start.Add(time.Hour)), NextGuideGroup: 3},
		Items: []models.PlayoutItem{
			{PlayoutID: p.ID, MediaItemID: a.ID, Start: start, Finish: start.Add(30 * time.Minute), GuideGroup: 1, FillerKind: models.FillerKindNone, CollectionKey: "collection:1", CollectionEtag: "x"},
			{PlayoutID: p.ID, MediaItemID: b.ID, Start: start.Add(30 * time.Minute), Finish: start.Add(time.Hour), GuideGroup: 2, FillerKind: models.FillerKindNone, CollectionKey: "collection:1", CollectionEtag: "x"},
		},
		RerunHistory: []models.RerunHistory{{PlayoutID: p.ID, RerunCollectionID: rc.ID, MediaItemID: &a.ID, When: start}},
	}))

	require.NoError(t, repos.Media.Delete(ctx, a.ID))

	items, err := repos.Playouts.AllItems(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, b.ID, items[0].MediaItemID)

	got, err := repos.Collections.GetCollection(ctx, coll.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)

	f, err := repos.Fillers.GetByID(ctx, filler.ID)
	require.NoError(t, err)
	assert.Nil(t, f.MediaItemID)

	state, err := repos.Playouts.LoadBuildState(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, state.RerunHistory, 1)
	assert.Nil(t, state.RerunHistory[0].MediaItemID)

	_, err = repos.Media.GetByID(ctx, a.ID)
	assert.True(t, db.IsNotFound(err))
}

func TestChannelDelete_RemovesPlayoutTree(t *testing.T) {
	database, repos := dbtest.Open(t)
	ctx := context.Background()

	a := createMedia(t, repos, "a", 30)
	ch, p := createChannel(t, repos, "ch")
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repos.Playouts.CommitBuild(ctx, &db.BuildCommit{
		PlayoutID:        p.ID,
		Anchor:           models.PlayoutAnchor{NextStart: ptr(start.Add(time.Hour)), NextGuideGroup: 2},
		CollectionStates: []models.CollectionEnumeratorState{{CollectionKey: "collection:1", Seed: 1, Index: 1}},
		Items: []models.PlayoutItem{
			{PlayoutID: p.ID, MediaItemID: a.ID, Start: start, Finish: start.Add(30 * time.Minute), GuideGroup: 1, FillerKind: models.FillerKindNone, CollectionKey: "k", CollectionEtag: "e"},
		},
		Gaps:    []models.PlayoutGap{{PlayoutID: p.ID, Start: start.Add(30 * time.Minute), Finish: start.Add(time.Hour)}},
		History: []models.PlayoutHistory{{PlayoutID: p.ID, Key: "schedule_item:1", When: start, Finish: start.Add(time.Hour)}},
	}))
	require.NoError(t, repos.Playouts.SaveStatus(ctx, &models.PlayoutBuildStatus{PlayoutID: p.ID, LastBuild: start, Success: true}))

	require.NoError(t, repos.Channels.Delete(ctx, ch.ID))

	for _, table := range []string{"playouts", "playout_anchors", "playout_items", "playout_gaps", "playout_history", "collection_enumerator_states", "playout_build_status"} {
		var n int64
		require.NoError(t, database.Table(table).Count(&n).Error)
		assert.Zero(t, n, table)
	}

	err := repos.Channels.Delete(ctx, ch.ID)
	assert.True(t, db.IsNotFound(err))
}

func TestCommitBuild_UpsertsCursorsAndAppends(t *testing.T) {
	_, repos := dbtest.Open(t)
	ctx := context.Background()

	a := createMedia(t, repos, "a", 30)
	_, p := createChannel(t, repos, "ch")
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	state, err := repos.Playouts.LoadBuildState(ctx, p.ID)
	require.NoError(t, err)

	commit := func(at time.Time, index int) {
		anchor := state.Anchor
		anchor.NextStart = ptr(at.Add(30 * time.Minute))
		require.NoError(t, repos.Playouts.CommitBuild(ctx, &db.BuildCommit{
			PlayoutID:          p.ID,
			Anchor:             anchor,
			ScheduleItemStates: []models.ScheduleItemEnumeratorState{{ItemKey: "block_item:1", Seed: 9, Index: index}},
			FillGroupStates:    []models.FillGroupEnumeratorState{{FillGroupKey: "group", Seed: 9, Index: index}},
			Items: []models.PlayoutItem{
				{PlayoutID: p.ID, MediaItemID: a.ID, Start: at, Finish: at.Add(30 * time.Minute), GuideGroup: index, FillerKind: models.FillerKindNone, CollectionKey: "k", CollectionEtag: "e"},
			},
		}))
	}
	commit(start, 1)
	commit(start.Add(30*time.Minute), 2)

	state, err = repos.Playouts.LoadBuildState(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, state.ScheduleItemStates, 1)
	assert.Equal(t, 2, state.ScheduleItemStates[0].Index)
	require.Len(t, state.FillGroupStates, 1)
	assert.Equal(t, 2, state.FillGroupStates[0].Index)
	require.NotNil(t, state.Anchor.NextStart)
	assert.True(t, state.Anchor.NextStart.Equal(start.Add(time.Hour)))

	items, err := repos.Playouts.Items(ctx, p.ID, start.Add(10*time.Minute), start.Add(40*time.Minute))
	require.NoError(t, err)
	assert.Len(t, items, 2)

	now, err := repos.Playouts.ItemAt(ctx, p.ID, start.Add(45*time.Minute))
	require.NoError(t, err)
	assert.True(t, now.Start.Equal(start.Add(30*time.Minute)))

	_, err = repos.Playouts.ItemAt(ctx, p.ID, start.Add(2*time.Hour))
	assert.True(t, db.IsNotFound(err))
}

func TestCommitBuild_ResetRemovesFutureRows(t *testing.T) {
	_, repos := dbtest.Open(t)
	ctx := context.Background()

	a := createMedia(t, repos, "a", 30)
	_, p := createChannel(t, repos, "ch")
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	var items []models.PlayoutItem
	for i := 0; i < 4; i++ {
		s := start.Add(time.Duration(i) * 30 * time.Minute)
		items = append(items, models.PlayoutItem{PlayoutID: p.ID, MediaItemID: a.ID, Start: s, Finish: s.Add(30 * time.Minute), GuideGroup: i + 1, FillerKind: models.FillerKindNone, CollectionKey: "k", CollectionEtag: "e"})
	}
	require.NoError(t, repos.Playouts.CommitBuild(ctx, &db.BuildCommit{
		PlayoutID: p.ID,
		Anchor:    models.PlayoutAnchor{NextStart: ptr(start.Add(2 * time.Hour)), NextGuideGroup: 5},
		Items:     items,
		Gaps:      []models.PlayoutGap{{PlayoutID: p.ID, Start: start.Add(-time.Hour), Finish: start.Add(5 * time.Hour)}},
		History:   []models.PlayoutHistory{{PlayoutID: p.ID, Key: "schedule_item:1", When: start.Add(90 * time.Minute), Finish: start.Add(2 * time.Hour), Details: "{}"}},
	}))

	resetAt := start.Add(time.Hour)
	state, err := repos.Playouts.LoadBuildState(ctx, p.ID)
	require.NoError(t, err)
	require.NoError(t, repos.Playouts.CommitBuild(ctx, &db.BuildCommit{
		PlayoutID: p.ID,
		ResetFrom: &resetAt,
		Anchor:    state.Anchor,
	}))

	all, err := repos.Playouts.AllItems(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	gaps, err := repos.Playouts.Gaps(ctx, p.ID, start.Add(-2*time.Hour), start.Add(10*time.Hour))
	require.NoError(t, err)
	require.Len(t, gaps, 1)
	assert.True(t, gaps[0].Finish.Equal(resetAt))

	history, err := repos.Playouts.History(ctx, p.ID, 0)
	require.NoError(t, err)
	assert.Len(t, history, 1, "reset keeps the activation log")
}

func TestSaveStatus_OverwritesSingleRow(t *testing.T) {
	database, repos := dbtest.Open(t)
	ctx := context.Background()
	_, p := createChannel(t, repos, "ch")

	first := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repos.Playouts.SaveStatus(ctx, &models.PlayoutBuildStatus{PlayoutID: p.ID, LastBuild: first, Success: true, Message: "ok"}))
	require.NoError(t, repos.Playouts.SaveStatus(ctx, &models.PlayoutBuildStatus{PlayoutID: p.ID, LastBuild: first.Add(time.Hour), Success: false, Message: "library unavailable"}))

	var n int64
	require.NoError(t, database.Model(&models.PlayoutBuildStatus{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)

	s, err := repos.Playouts.Status(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, s.Success)
	assert.Equal(t, "library unavailable", s.Message)
	assert.True(t, s.LastBuild.Equal(first.Add(time.Hour)))
}

func TestValidateRejectsBadModels(t *testing.T) {
	_, repos := dbtest.Open(t)
	ctx := context.Background()

	err := repos.Media.Create(ctx, &models.MediaItem{Kind: models.MediaKindMovie, Path: "/x.mkv", Title: "x", Duration: 0})
	assert.True(t, db.IsInvalidInput(err))

	err = repos.Blocks.CreateBlock(ctx, &models.Block{Name: "b", Minutes: 0})
	assert.True(t, db.IsInvalidInput(err))
}

func TestMediaCreate_DuplicatePath(t *testing.T) {
	_, repos := dbtest.Open(t)
	createMedia(t, repos, "a", 10)

	err := repos.Media.Create(context.Background(), models.NewMediaItem(models.MediaKindMovie, "/media/a.mkv", "again", 60))
	assert.True(t, db.IsDuplicate(err))
}
