package enumerator

import (
	"fmt"
	"strings"

	"github.com/stwalsh4118/playout/internal/collection"
	"github.com/stwalsh4118/playout/internal/models"
)

// marathonKey returns the batch grouping key of an item
func marathonKey(it collection.Item, by models.MarathonGroupBy) string {
	m := it.Media
	switch by {
	case models.MarathonGroupByShow:
		if m.ShowTitle != nil {
			return "show:" + strings.ToLower(*m.ShowTitle)
		}
	case models.MarathonGroupBySeason:
		if m.ShowTitle != nil {
			season := 0
			if m.Season != nil {
				season = *m.Season
			}
			return fmt.Sprintf("season:%s:%d", strings.ToLower(*m.ShowTitle), season)
		}
	case models.MarathonGroupByCollection:
		if it.CollectionID != 0 {
			return fmt.Sprintf("collection:%d", it.CollectionID)
		}
	}
	return fmt.Sprintf("item:%d", m.ID)
}

// marathon arranges one cycle: items are grouped, groups and their members
// are ordered (chronologically or shuffled for the cycle), groups are cut into
// batches and batches are interleaved round-robin across groups
func (e *Enumerator) marathon(cycle int) []int {
	opts := e.opts.Marathon

	var (
		keys   []string
		groups = map[string][]int{}
	)
	for i, it := range e.items {
		k := marathonKey(it, opts.GroupBy)
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], i)
	}

	// items arrive chronologically, so first-seen order is chronological group order
	rng := cycleRand(e.state.Seed, cycle)
	if opts.ShuffleGroups {
		rng.Shuffle(len(keys), func(i, j int) { keys[i], keys[j] = keys[j], keys[i] })
	}
	ordered := make([][]int, len(keys))
	for i, k := range keys {
		members := groups[k]
		if opts.ShuffleItems {
			rng.Shuffle(len(members), func(i, j int) { members[i], members[j] = members[j], members[i] })
		}
		ordered[i] = members
	}

	seq := make([]int, 0, len(e.items))
	for len(seq) < len(e.items) {
		for i, members := range ordered {
			if len(members) == 0 {
				continue
			}
			n := opts.BatchSize
			if n <= 0 || n > len(members) {
				n = len(members)
			}
			seq = append(seq, members[:n]...)
			ordered[i] = members[n:]
		}
	}
	return seq
}
