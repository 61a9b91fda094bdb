package enumerator

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/playout/internal/collection"
	"github.com/stwalsh4118/playout/internal/models"
)

func ptr[T any](v T) *T { return &v }

func resolved(n int) *collection.Resolved {
	items := make([]collection.Item, n)
	for i := range items {
		items[i] = collection.Item{Media: &models.MediaItem{
			ID:       uint(i + 1),
			Title:    fmt.Sprintf("Item %d", i+1),
			Duration: 60,
		}}
	}
	return &collection.Resolved{Key: "collection:1", Items: items}
}

func take(e *Enumerator, n int) []uint {
	out := make([]uint, 0, n)
	for range n {
		it, ok := e.Current()
		if !ok {
			return out
		}
		out = append(out, it.ID())
		e.MoveNext()
	}
	return out
}

func TestChronologicalWraps(t *testing.T) {
	e := New(resolved(3), Options{Order: models.PlaybackOrderChronological}, State{Seed: 1})
	assert.Equal(t, []uint{1, 2, 3, 1, 2}, take(e, 5))
	assert.Equal(t, State{Seed: 1, Index: 5}, e.State())
}

func TestEmptySource(t *testing.T) {
	e := New(&collection.Resolved{}, Options{Order: models.PlaybackOrderShuffle}, State{})
	_, ok := e.Current()
	assert.False(t, ok)
	assert.Zero(t, e.Len())
}

func TestIndexClampedToLength(t *testing.T) {
	// a list that shrank since the state was saved
	e := New(resolved(3), Options{Order: models.PlaybackOrderChronological}, State{Index: 10})
	it, ok := e.Current()
	require.True(t, ok)
	assert.Equal(t, uint(2), it.ID())

	e = New(resolved(3), Options{}, State{Index: -4})
	assert.Equal(t, 0, e.State().Index)
}

func TestShuffleIsDeterministic(t *testing.T) {
	opts := Options{Order: models.PlaybackOrderShuffle}
	a := take(New(resolved(10), opts, State{Seed: 99}), 40)
	b := take(New(resolved(10), opts, State{Seed: 99}), 40)
	assert.Equal(t, a, b)

	c := take(New(resolved(10), opts, State{Seed: 100}), 40)
	assert.NotEqual(t, a, c)
}

func TestShuffleResumesFromState(t *testing.T) {
	opts := Options{Order: models.PlaybackOrderShuffle}
	full := take(New(resolved(7), opts, State{Seed: 5}), 30)

	first := New(resolved(7), opts, State{Seed: 5})
	head := take(first, 12)
	tail := take(New(resolved(7), opts, first.State()), 18)

	assert.Equal(t, full, append(head, tail...))
}

func TestShuffleCoversEveryItemPerCycle(t *testing.T) {
	e := New(resolved(6), Options{Order: models.PlaybackOrderShuffle}, State{Seed: 3})
	for range 5 {
		assert.ElementsMatch(t, []uint{1, 2, 3, 4, 5, 6}, take(e, 6))
	}
}

func TestShuffleNeverRepeatsAcrossCycles(t *testing.T) {
	for _, n := range []int{2, 3, 4, 9} {
		for seed := range int64(50) {
			seq := take(New(resolved(n), Options{Order: models.PlaybackOrderShuffle}, State{Seed: seed}), n*8)
			for i := 1; i < len(seq); i++ {
				require.NotEqual(t, seq[i-1], seq[i], "n=%d seed=%d position=%d", n, seed, i)
			}
		}
	}
}

func TestRandomIsDeterministicPerIndex(t *testing.T) {
	opts := Options{Order: models.PlaybackOrderRandom}
	full := take(New(resolved(5), opts, State{Seed: 8}), 20)
	resumed := take(New(resolved(5), opts, State{Seed: 8, Index: 10}), 10)
	assert.Equal(t, full[10:], resumed)
	for _, id := range full {
		assert.True(t, id >= 1 && id <= 5)
	}
}

func TestSeasonEpisodeOrder(t *testing.T) {
	res := &collection.Resolved{Items: []collection.Item{
		{Media: &models.MediaItem{ID: 1, ShowTitle: ptr("A"), Season: ptr(2), Episode: ptr(1)}},
		{Media: &models.MediaItem{ID: 2, ShowTitle: ptr("B"), Season: ptr(1), Episode: ptr(2)}},
		{Media: &models.MediaItem{ID: 3, ShowTitle: ptr("C"), Season: ptr(1), Episode: ptr(1)}},
	}}
	e := New(res, Options{Order: models.PlaybackOrderSeasonEpisode}, State{})
	assert.Equal(t, []uint{3, 2, 1}, take(e, 3))
}

func TestGroupsStayTogether(t *testing.T) {
	res := resolved(7)
	for i := range 3 {
		res.Items[i].Group = "collection:9"
	}
	res.ShuffleInGroup = map[string]bool{"collection:9": true}

	for seed := range int64(20) {
		seq := take(New(res, Options{Order: models.PlaybackOrderShuffle}, State{Seed: seed}), 21)
		for cycle := range 3 {
			pass := seq[cycle*7 : cycle*7+7]
			assert.ElementsMatch(t, []uint{1, 2, 3, 4, 5, 6, 7}, pass)

			start := -1
			for i, id := range pass {
				if id <= 3 {
					start = i
					break
				}
			}
			require.GreaterOrEqual(t, start, 0)
			require.LessOrEqual(t, start+3, len(pass))
			assert.ElementsMatch(t, []uint{1, 2, 3}, pass[start:start+3], "seed=%d", seed)
		}
	}
}

func TestChronologicalKeepsGroupMemberOrder(t *testing.T) {
	res := resolved(4)
	res.Items[1].Group = "g"
	res.Items[2].Group = "g"
	res.ShuffleInGroup = map[string]bool{"g": true}

	e := New(res, Options{Order: models.PlaybackOrderChronological}, State{Seed: 4})
	assert.Equal(t, []uint{1, 2, 3, 4}, take(e, 4))
}

func TestSeedFor(t *testing.T) {
	assert.Equal(t, SeedFor(1, "collection:1"), SeedFor(1, "collection:1"))
	assert.NotEqual(t, SeedFor(1, "collection:1"), SeedFor(1, "collection:2"))
	assert.NotEqual(t, SeedFor(1, "collection:1"), SeedFor(2, "collection:1"))
}
