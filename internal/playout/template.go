package playout

import (
	"fmt"
	"time"

	"github.com/stwalsh4118/playout/internal/collection"
	"github.com/stwalsh4118/playout/internal/daterange"
	"github.com/stwalsh4118/playout/internal/db"
	"github.com/stwalsh4118/playout/internal/enumerator"
	"github.com/stwalsh4118/playout/internal/models"
)

// templated generates day by day from the playout's template bindings. Each
// template places blocks at times of day; blocks are atomic.
type templated struct {
	*buildContext
	bindings []models.PlayoutTemplate
}

func newTemplated(b *buildContext, bindings []models.PlayoutTemplate) *templated {
	return &templated{buildContext: b, bindings: bindings}
}

func (t *templated) template(id uint) (*models.Template, error) {
	if tmpl, ok := t.templates[id]; ok {
		return tmpl, nil
	}
	tmpl, err := t.repos.Blocks.GetTemplate(t.ctx, id)
	if db.IsNotFound(err) {
		return nil, fmt.Errorf("%w: template %d", collection.ErrMissingSource, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load template %d: %w", id, err)
	}
	t.templates[id] = tmpl
	return tmpl, nil
}

func (t *templated) block(id uint) (*models.Block, error) {
	if b, ok := t.blocks[id]; ok {
		return b, nil
	}
	b, err := t.repos.Blocks.GetBlock(t.ctx, id)
	if db.IsNotFound(err) {
		return nil, fmt.Errorf("%w: block %d", collection.ErrMissingSource, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load block %d: %w", id, err)
	}
	t.blocks[id] = b
	return b, nil
}

// dayTemplate returns the template active on the local day of cur, nil when none applies
func (t *templated) dayTemplate(cur time.Time) (*models.PlayoutTemplate, *models.Template, error) {
	pt, ok := daterange.Pick(t.bindings, cur.In(t.loc))
	if !ok {
		return nil, nil, nil
	}
	tmpl, err := t.template(pt.TemplateID)
	if err != nil {
		if isConfiguration(err) {
			t.configError(err, "template", pt.TemplateID)
			return nil, nil, nil
		}
		return nil, nil, err
	}
	return pt, tmpl, nil
}

func (t *templated) run(cur, until time.Time) (time.Time, error) {
	for cur.Before(until) {
		if err := t.ctx.Err(); err != nil {
			return cur, err
		}

		midnight := localMidnight(cur, t.loc)
		nextDay := time.Date(midnight.Year(), midnight.Month(), midnight.Day()+1, 0, 0, 0, 0, t.loc)

		pt, tmpl, err := t.dayTemplate(cur)
		if err != nil {
			return cur, err
		}
		if tmpl == nil {
			if err := t.fillGap(cur, nextDay); err != nil {
				return cur, err
			}
			cur = nextDay
			continue
		}

		stopped := false
		for i, placement := range tmpl.Items {
			if !cur.Before(until) {
				stopped = true
				break
			}
			block, err := t.block(placement.BlockID)
			if err != nil {
				if !isConfiguration(err) {
					return cur, err
				}
				t.configError(err, "template_item", placement.ID)
				continue
			}

			start := wallClock(midnight, placement.StartTime, t.loc)
			end := start.Add(block.Length())
			if !end.After(cur) {
				continue
			}
			if start.After(cur) {
				if err := t.fillGap(cur, start); err != nil {
					return cur, err
				}
				cur = start
			}
			if cur, err = t.playBlock(block, pt, cur, end); err != nil {
				return cur, err
			}
			t.anchor.NextInstructionIndex = i + 1
		}

		if !stopped && cur.Before(nextDay) && cur.Before(until) {
			if err := t.fillGap(cur, nextDay); err != nil {
				return cur, err
			}
			cur = nextDay
		}
		if !cur.Before(nextDay) {
			t.anchor.NextInstructionIndex = 0
		}
	}

	t.anchor.NextStart = &cur
	return cur, nil
}

// wallClock returns the instant seconds after local midnight on the same day
func wallClock(midnight time.Time, seconds int64, loc *time.Location) time.Time {
	s := int(seconds)
	return time.Date(midnight.Year(), midnight.Month(), midnight.Day(), s/3600, (s%3600)/60, s%60, 0, loc)
}

func (t *templated) blockPicker(bi *models.BlockItem) (picker, *collection.Resolved, error) {
	src, err := collection.SourceOf(bi.ContentRef)
	if err != nil {
		return nil, nil, fmt.Errorf("block item %d: %w", bi.ID, err)
	}
	opts := enumerator.Options{Order: bi.PlaybackOrder}
	if bi.FillGroupKey != nil && *bi.FillGroupKey != "" {
		return t.picker(src, scopeFillGroup, *bi.FillGroupKey, opts)
	}
	return t.picker(src, scopeScheduleItem, fmt.Sprintf("block_item:%d", bi.ID), opts)
}

// playBreaks plays one item from each break content entry
func (t *templated) playBreaks(breaks []models.DecoBreakContent, cur time.Time, prov provenance) (time.Time, error) {
	for _, bc := range breaks {
		src, err := collection.SourceOf(bc.ContentRef)
		var (
			p   picker
			res *collection.Resolved
		)
		if err == nil {
			opts := enumerator.Options{Order: models.PlaybackOrderChronological}
			p, res, err = t.picker(src, scopeCollection, contentKey(src, opts), opts)
		}
		if err != nil {
			if !isConfiguration(err) {
				return cur, err
			}
			t.configError(err, "break_content", bc.ID)
			continue
		}
		if it, ok := p.Take(cur); ok {
			cur = t.emit(it, res, cur, models.FillerKindBreak, prov)
		}
	}
	return cur, nil
}

// playBlock fills one block placement. Block items take turns in index
// order, one item each, until the block is full. The unused remainder of the
// block window is filled like any other gap.
func (t *templated) playBlock(block *models.Block, pt *models.PlayoutTemplate, cur, end time.Time) (time.Time, error) {
	start := cur
	group := t.nextGuideGroup()
	prov := provenance{blockID: &block.ID}
	overlay := t.decos.At(start)

	cur, err := t.playBreaks(overlay.Breaks(models.BreakPlacementBlockStart), cur, prov)
	if err != nil {
		return cur, err
	}

	items := block.Items
	dead := make(map[int]bool)
	count := 0
	for i := 0; len(dead) < len(items); i++ {
		slot := i % len(items)
		if dead[slot] {
			continue
		}
		bi := &items[slot]

		p, res, err := t.blockPicker(bi)
		if err != nil {
			if !isConfiguration(err) {
				return cur, err
			}
			t.configError(err, "block_item", bi.ID)
			dead[slot] = true
			continue
		}
		it, ok := p.Current()
		if !ok {
			dead[slot] = true
			continue
		}

		if block.StopScheduling == models.StopAfterDurationEnd {
			if !cur.Before(end) {
				break
			}
		} else if cur.Add(it.Duration()).After(end) {
			break
		}

		kind := models.FillerKindNone
		if !bi.IncludeInGuide {
			kind = models.FillerKindGuide
		}
		p.Take(cur)
		cur = t.emit(it, res, cur, kind, prov)
		count++
	}

	if cur, err = t.playBreaks(overlay.Breaks(models.BreakPlacementBlockFinish), cur, prov); err != nil {
		return cur, err
	}

	t.appendHistory(models.PlayoutHistory{
		BlockID: &block.ID,
		Key:     BlockKey(block.ID),
		When:    start,
		Finish:  cur,
	}, activationDetails{
		Items:      count,
		GuideGroup: group,
		TemplateID: pt.TemplateID,
	})
	t.log.Debug().
		Uint("block_id", block.ID).
		Int("items", count).
		Time("start", start).
		Time("finish", cur).
		Msg("Block activation")

	if cur.Before(end) {
		if err := t.fillGap(cur, end); err != nil {
			return cur, err
		}
		cur = end
	}
	return cur, nil
}
