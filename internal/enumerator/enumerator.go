// Package enumerator walks a resolved item list in a playback order. An
// enumerator is fully described by its (seed, index) state: rebuilding one
// from a saved state yields exactly the same sequence.
package enumerator

import (
	"math/rand/v2"
	"slices"

	"github.com/cespare/xxhash/v2"
	"github.com/stwalsh4118/playout/internal/collection"
	"github.com/stwalsh4118/playout/internal/models"
)

// State is the persisted cursor of an enumerator
type State struct {
	Seed  int64
	Index int
}

// MarathonOptions control batching for the marathon order
type MarathonOptions struct {
	GroupBy       models.MarathonGroupBy
	BatchSize     int
	ShuffleGroups bool
	ShuffleItems  bool
}

// Options selects the playback order
type Options struct {
	Order    models.PlaybackOrder
	Marathon MarathonOptions
}

// SeedFor derives the seed of a new cursor from the playout seed and the cursor key
func SeedFor(playoutSeed int64, key string) int64 {
	return playoutSeed ^ int64(xxhash.Sum64String(key))
}

// Enumerator yields items of one resolved source. It is not safe for
// concurrent use.
type Enumerator struct {
	items   []collection.Item
	units   [][]int
	shuffle map[string]bool
	opts    Options
	state   State

	cycle    int
	sequence []int
}

// New creates an enumerator positioned at state. Negative indexes are clamped to zero.
func New(res *collection.Resolved, opts Options, state State) *Enumerator {
	if state.Index < 0 {
		state.Index = 0
	}
	e := &Enumerator{
		opts:    opts,
		state:   state,
		cycle:   -1,
		shuffle: map[string]bool{},
	}
	if res != nil {
		e.items = res.Items
		if res.ShuffleInGroup != nil {
			e.shuffle = res.ShuffleInGroup
		}
	}
	e.units = buildUnits(e.items)
	return e
}

// Len returns the number of items in one cycle
func (e *Enumerator) Len() int {
	return len(e.items)
}

// Current returns the item at the cursor; false when the source is empty
func (e *Enumerator) Current() (collection.Item, bool) {
	n := len(e.items)
	if n == 0 {
		return collection.Item{}, false
	}
	if e.opts.Order == models.PlaybackOrderRandom {
		return e.items[randomPosition(e.state.Seed, e.state.Index, n)], true
	}

	cycle, pos := e.state.Index/n, e.state.Index%n
	return e.items[e.sequenceFor(cycle)[pos]], true
}

// MoveNext advances the cursor by one item
func (e *Enumerator) MoveNext() {
	e.state.Index++
}

// State returns the cursor to persist
func (e *Enumerator) State() State {
	return e.state
}

func randomPosition(seed int64, index, n int) int {
	return rand.New(rand.NewPCG(uint64(seed), uint64(index))).IntN(n)
}

// sequenceFor returns the item order of one full pass over the list
func (e *Enumerator) sequenceFor(cycle int) []int {
	if cycle == e.cycle && e.sequence != nil {
		return e.sequence
	}

	var seq []int
	switch e.opts.Order {
	case models.PlaybackOrderShuffle:
		seq = e.flatten(e.shuffled(cycle), cycle)
	case models.PlaybackOrderSeasonEpisode:
		seq = e.seasonEpisode()
	case models.PlaybackOrderMarathon:
		seq = e.marathon(cycle)
	default:
		seq = e.flatten(identity(len(e.units)), -1)
	}

	e.cycle, e.sequence = cycle, seq
	return seq
}

// buildUnits groups consecutive items that share a non-empty Group
func buildUnits(items []collection.Item) [][]int {
	var units [][]int
	for i, it := range items {
		if it.Group != "" && len(units) > 0 {
			last := units[len(units)-1]
			if items[last[0]].Group == it.Group {
				units[len(units)-1] = append(last, i)
				continue
			}
		}
		units = append(units, []int{i})
	}
	return units
}

func identity(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func cycleRand(seed int64, cycle int) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), uint64(cycle)))
}

// rawPermutation is the unit permutation of one cycle before the no-repeat fix
func (e *Enumerator) rawPermutation(cycle int) []int {
	perm := identity(len(e.units))
	rng := cycleRand(e.state.Seed, cycle)
	rng.Shuffle(len(perm), func(i, j int) { perm[i], perm[j] = perm[j], perm[i] })
	return perm
}

// shuffled returns the unit order of a shuffle cycle. A cycle never starts
// with the unit that ended the previous one.
func (e *Enumerator) shuffled(cycle int) []int {
	switch len(e.units) {
	case 0, 1:
		return identity(len(e.units))
	case 2:
		return e.rawPermutation(0)
	}

	perm := e.rawPermutation(cycle)
	if cycle > 0 {
		prev := e.rawPermutation(cycle - 1)
		if perm[0] == prev[len(prev)-1] {
			perm[0], perm[1] = perm[1], perm[0]
		}
	}
	return perm
}

// flatten expands units into item positions. Members of shuffled groups are
// permuted with the cycle's generator; cycle < 0 keeps member order.
func (e *Enumerator) flatten(order []int, cycle int) []int {
	seq := make([]int, 0, len(e.items))
	var rng *rand.Rand
	for _, u := range order {
		members := e.units[u]
		group := e.items[members[0]].Group
		if cycle >= 0 && group != "" && e.shuffle[group] && len(members) > 1 {
			if rng == nil {
				rng = rand.New(rand.NewPCG(uint64(e.state.Seed), uint64(cycle)^0x9e3779b97f4a7c15))
			}
			members = slices.Clone(members)
			rng.Shuffle(len(members), func(i, j int) { members[i], members[j] = members[j], members[i] })
		}
		seq = append(seq, members...)
	}
	return seq
}

// seasonEpisode orders units by season and episode, members likewise
func (e *Enumerator) seasonEpisode() []int {
	units := make([][]int, len(e.units))
	for i, u := range e.units {
		members := slices.Clone(u)
		slices.SortStableFunc(members, func(a, b int) int {
			return collection.CompareSeasonEpisode(e.items[a].Media, e.items[b].Media)
		})
		units[i] = members
	}
	slices.SortStableFunc(units, func(a, b []int) int {
		return collection.CompareSeasonEpisode(e.items[a[0]].Media, e.items[b[0]].Media)
	})

	seq := make([]int, 0, len(e.items))
	for _, u := range units {
		seq = append(seq, u...)
	}
	return seq
}
