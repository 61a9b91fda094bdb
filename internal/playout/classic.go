package playout

import (
	"fmt"
	"slices"
	"time"

	"github.com/stwalsh4118/playout/internal/collection"
	"github.com/stwalsh4118/playout/internal/enumerator"
	"github.com/stwalsh4118/playout/internal/models"
)

// classic generates from a program schedule, one schedule item activation
// at a time. Activations are atomic except for a flood with no fixed-start
// item to stop it, which is cut at the horizon and resumed later.
type classic struct {
	*buildContext
	items []models.ProgramScheduleItem
	// lastStart is the start of the most recent activation, zero when unknown
	lastStart time.Time
}

func newClassic(b *buildContext, schedule *models.ProgramSchedule, lastStart time.Time) *classic {
	items := slices.Clone(schedule.Items)
	slices.SortStableFunc(items, func(a, b models.ProgramScheduleItem) int {
		return a.Index - b.Index
	})
	return &classic{buildContext: b, items: items, lastStart: lastStart}
}

// position returns the schedule index the anchor points at
func (c *classic) position() int {
	if c.anchor.NextScheduleItemID == nil {
		return 0
	}
	for i, item := range c.items {
		if item.ID == *c.anchor.NextScheduleItemID {
			return i
		}
	}
	// the referenced item was removed; restart the schedule
	c.anchor.InFlood = false
	return 0
}

func (c *classic) run(cur, until time.Time) (time.Time, error) {
	n := len(c.items)
	pos := c.position()
	idle := 0

	for cur.Before(until) {
		if err := c.ctx.Err(); err != nil {
			return cur, err
		}

		item := &c.items[pos]
		next, stay, err := c.activate(item, pos, cur, until)
		if err != nil {
			if !isConfiguration(err) {
				return cur, err
			}
			// next is past any wait the item already recorded
			c.configError(err, "schedule_item", item.ID)
			stay = false
		}

		if next.After(cur) {
			idle = 0
		} else {
			idle++
		}
		cur = next
		if !stay {
			pos = (pos + 1) % n
		}

		if idle >= n && cur.Before(until) {
			c.log.Warn().
				Time("at", cur).
				Msg("Schedule produced nothing for a full pass; filling to horizon")
			if err := c.fillGap(cur, until); err != nil {
				return cur, err
			}
			cur = until
		}
	}

	c.anchor.NextStart = &cur
	c.anchor.NextScheduleItemID = &c.items[pos].ID
	c.anchor.MultipleRemaining = nil
	c.anchor.DurationFinish = nil
	c.anchor.InDurationFiller = false
	return cur, nil
}

func (c *classic) options(item *models.ProgramScheduleItem) enumerator.Options {
	opts := enumerator.Options{Order: item.PlaybackOrder}
	if item.PlaybackOrder == models.PlaybackOrderMarathon {
		opts.Marathon = enumerator.MarathonOptions{
			GroupBy:       item.MarathonGroupBy,
			ShuffleGroups: item.MarathonShuffleGroups,
			ShuffleItems:  item.MarathonShuffleItems,
		}
		if item.MarathonBatchSize != nil {
			opts.Marathon.BatchSize = *item.MarathonBatchSize
		}
	}
	return opts
}

func (c *classic) mainPicker(item *models.ProgramScheduleItem) (picker, *collection.Resolved, error) {
	src, err := collection.SourceOf(item.ContentRef)
	if err != nil {
		return nil, nil, fmt.Errorf("schedule item %d: %w", item.ID, err)
	}
	opts := c.options(item)
	if item.FillGroupKey != nil && *item.FillGroupKey != "" {
		return c.picker(src, scopeFillGroup, *item.FillGroupKey, opts)
	}
	return c.picker(src, scopeCollection, contentKey(src, opts), opts)
}

// activation is the running state of one schedule item activation
type activation struct {
	item  *models.ProgramScheduleItem
	p     picker
	res   *collection.Resolved
	kind  models.FillerKind
	prov  provenance
	start time.Time
	count int
}

// play emits one main item wrapped in its pre and post rolls
func (c *classic) play(a *activation, cur time.Time) (time.Time, error) {
	cur, err := c.playRoll(a.item.PreRollFillerID, cur, models.FillerKindPreRoll, a.prov)
	if err != nil {
		return cur, err
	}
	it, ok := a.p.Take(cur)
	if !ok {
		return cur, nil
	}
	cur = c.emit(it, a.res, cur, a.kind, a.prov)
	a.count++
	return c.playRoll(a.item.PostRollFillerID, cur, models.FillerKindPostRoll, a.prov)
}

// activate runs one schedule item from cur. It returns the new current time
// and whether the schedule should stay on this item.
func (c *classic) activate(item *models.ProgramScheduleItem, pos int, cur, until time.Time) (time.Time, bool, error) {
	resumingFlood := c.anchor.InFlood && item.PlayoutMode == models.PlayoutModeFlood
	c.anchor.InFlood = false

	if tod, ok := item.FixedStart(); ok && !resumingFlood {
		at := c.fixedStart(cur, tod)
		if err := c.fillGap(cur, at); err != nil {
			return cur, false, err
		}
		cur = at
	}

	p, res, err := c.mainPicker(item)
	if err != nil {
		if item.PlayoutMode == models.PlayoutModeDuration && isConfiguration(err) && item.PlayoutDuration != nil && *item.PlayoutDuration > 0 {
			// the reserved duration stays on air as a gap
			c.configError(err, "schedule_item", item.ID)
			finish := cur.Add(time.Duration(*item.PlayoutDuration) * time.Second)
			return finish, false, c.fillGap(cur, finish)
		}
		return cur, false, err
	}

	a := &activation{
		item:  item,
		p:     p,
		res:   res,
		kind:  models.FillerKindNone,
		start: cur,
		prov: provenance{
			scheduleItemID: &item.ID,
			audioLang:      item.PreferredAudioLang,
			subtitleLang:   item.PreferredSubtitleLang,
		},
	}
	if item.GuideMode == models.GuideModeFiller {
		a.kind = models.FillerKindGuide
	}
	if resumingFlood {
		// the flood continues the activation an earlier build started
		c.guideGroup = max(c.anchor.NextGuideGroup-1, 1)
		if !c.lastStart.IsZero() {
			a.start = c.lastStart
		}
	} else {
		c.nextGuideGroup()
	}

	stay := false
	switch item.PlayoutMode {
	case models.PlayoutModeMultiple:
		cur, err = c.playMultiple(a, cur)
	case models.PlayoutModeDuration:
		cur, err = c.playDuration(a, cur)
	case models.PlayoutModeFlood:
		cur, stay, err = c.playFlood(a, pos, cur, until)
	default:
		cur, err = c.play(a, cur)
	}
	if err != nil {
		return cur, false, err
	}

	if !resumingFlood {
		c.recordActivation(a, cur)
	}
	c.lastStart = a.start
	c.log.Debug().
		Uint("schedule_item_id", item.ID).
		Str("playout_mode", string(item.PlayoutMode)).
		Str("collection_key", res.Key).
		Int("items", a.count).
		Time("start", a.start).
		Time("finish", cur).
		Msg("Schedule item activation")
	return cur, stay, nil
}

func (c *classic) playMultiple(a *activation, cur time.Time) (time.Time, error) {
	n, err := multipleCount(a.item.MultipleCount, c.playout.Seed, a.start)
	if err != nil {
		return cur, err
	}
	for range n {
		if cur, err = c.play(a, cur); err != nil {
			return cur, err
		}
	}
	return cur, nil
}

// playDuration plays items while they fit in the configured duration; the
// first item always plays. The remainder is handled by the tail mode.
func (c *classic) playDuration(a *activation, cur time.Time) (time.Time, error) {
	item := a.item
	if item.PlayoutDuration == nil || *item.PlayoutDuration <= 0 {
		return cur, fmt.Errorf("%w: schedule item %d has no playout duration", ErrInvalidPolicy, item.ID)
	}
	finish := cur.Add(time.Duration(*item.PlayoutDuration) * time.Second)

	var err error
	for {
		it, ok := a.p.Current()
		if !ok || (a.count > 0 && cur.Add(it.Duration()).After(finish)) {
			break
		}
		if cur, err = c.play(a, cur); err != nil {
			return cur, err
		}
		if !cur.Before(finish) {
			break
		}
	}

	if !cur.Before(finish) {
		return cur, nil
	}
	switch item.TailMode {
	case models.TailModeOffline:
		c.recordGap(cur, finish, c.decos.At(cur).DeadAirFallbackID)
		return finish, nil
	case models.TailModeFiller:
		if item.TailFillerID != nil {
			preset, err := c.filler(*item.TailFillerID)
			if err == nil {
				cur, err = c.playFiller(preset, cur, &finish, models.FillerKindTail, a.prov)
			}
			if err != nil {
				if !isConfiguration(err) {
					return cur, err
				}
				c.configError(err, "tail_filler", *item.TailFillerID)
			}
		}
		c.recordGap(cur, finish, c.decos.At(cur).DeadAirFallbackID)
		return finish, nil
	default:
		return cur, nil
	}
}

// fixedStart returns when a fixed-start item begins. It waits for the next
// occurrence of its time of day, unless that occurrence already passed while
// the previous activation was playing; then it starts late at cur.
func (c *classic) fixedStart(cur time.Time, tod time.Duration) time.Time {
	if !c.lastStart.IsZero() {
		if due := nextOccurrence(c.lastStart, tod, c.loc, true); !due.After(cur) {
			return cur
		}
	}
	return nextOccurrence(cur, tod, c.loc, false)
}

// floodBoundary is the next start of the first fixed-start item after pos,
// strictly after from. ok is false when the schedule has no fixed-start item.
func (c *classic) floodBoundary(pos int, from time.Time) (time.Time, bool) {
	n := len(c.items)
	for k := 1; k <= n; k++ {
		next := &c.items[(pos+k)%n]
		if tod, ok := next.FixedStart(); ok {
			return nextOccurrence(from, tod, c.loc, true), true
		}
	}
	return time.Time{}, false
}

// playFlood fills up to the next fixed start. The first item always plays;
// later items play only if they finish by the boundary. Without a boundary
// the flood runs to the horizon and resumes on the next build.
func (c *classic) playFlood(a *activation, pos int, cur, until time.Time) (time.Time, bool, error) {
	boundary, bounded := c.floodBoundary(pos, a.start)
	var err error

	if !bounded {
		for cur.Before(until) {
			if err := c.ctx.Err(); err != nil {
				return cur, false, err
			}
			start := cur
			if cur, err = c.play(a, cur); err != nil {
				return cur, false, err
			}
			if !cur.After(start) {
				break
			}
		}
		c.anchor.InFlood = true
		return cur, true, nil
	}

	for {
		it, ok := a.p.Current()
		if !ok || (a.count > 0 && cur.Add(it.Duration()).After(boundary)) {
			break
		}
		if cur, err = c.play(a, cur); err != nil {
			return cur, false, err
		}
		if !cur.Before(boundary) {
			break
		}
	}
	return cur, false, nil
}
