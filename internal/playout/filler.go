package playout

import (
	"fmt"
	"time"

	"github.com/stwalsh4118/playout/internal/collection"
	"github.com/stwalsh4118/playout/internal/db"
	"github.com/stwalsh4118/playout/internal/enumerator"
	"github.com/stwalsh4118/playout/internal/models"
)

// filler loads a filler preset once per pass
func (b *buildContext) filler(id uint) (*models.FillerPreset, error) {
	if f, ok := b.fillers[id]; ok {
		return f, nil
	}
	f, err := b.repos.Fillers.GetByID(b.ctx, id)
	if db.IsNotFound(err) {
		return nil, fmt.Errorf("%w: filler preset %d", collection.ErrMissingSource, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load filler preset %d: %w", id, err)
	}
	b.fillers[id] = f
	return f, nil
}

func (b *buildContext) fillerPicker(preset *models.FillerPreset) (picker, *collection.Resolved, error) {
	src, err := collection.SourceOf(preset.ContentRef)
	if err != nil {
		return nil, nil, fmt.Errorf("filler preset %d: %w", preset.ID, err)
	}
	opts := enumerator.Options{Order: preset.PlaybackOrder}
	return b.picker(src, scopeCollection, contentKey(src, opts), opts)
}

// fillUntil emits items while they fit before end
func (b *buildContext) fillUntil(p picker, res *collection.Resolved, cur, end time.Time, kind models.FillerKind, prov provenance) time.Time {
	for {
		it, ok := p.Current()
		if !ok || cur.Add(it.Duration()).After(end) {
			return cur
		}
		p.Take(cur)
		cur = b.emit(it, res, cur, kind, prov)
	}
}

// playFiller plays a preset according to its mode starting at cur. A non-nil
// limit is never overrun.
func (b *buildContext) playFiller(preset *models.FillerPreset, cur time.Time, limit *time.Time, kind models.FillerKind, prov provenance) (time.Time, error) {
	p, res, err := b.fillerPicker(preset)
	if err != nil {
		return cur, err
	}

	capped := func(t time.Time) time.Time {
		if limit != nil && t.After(*limit) {
			return *limit
		}
		return t
	}

	switch preset.FillerMode {
	case models.FillerModeCount:
		n := 1
		if preset.Count != nil && *preset.Count > 0 {
			n = *preset.Count
		}
		for range n {
			it, ok := p.Current()
			if !ok || (limit != nil && cur.Add(it.Duration()).After(*limit)) {
				break
			}
			p.Take(cur)
			cur = b.emit(it, res, cur, kind, prov)
		}
		return cur, nil

	case models.FillerModePad:
		if preset.PadToNearestMinute == nil || *preset.PadToNearestMinute <= 0 {
			return cur, fmt.Errorf("%w: filler preset %d has no pad interval", ErrInvalidPolicy, preset.ID)
		}
		target := capped(padTarget(cur, *preset.PadToNearestMinute, b.loc))
		cur = b.fillUntil(p, res, cur, target, kind, prov)
		b.recordGap(cur, target, b.decos.At(cur).DeadAirFallbackID)
		return target, nil

	default:
		d := preset.TargetDuration()
		if d <= 0 {
			return cur, fmt.Errorf("%w: filler preset %d has no duration", ErrInvalidPolicy, preset.ID)
		}
		return b.fillUntil(p, res, cur, capped(cur.Add(d)), kind, prov), nil
	}
}

// padTarget is the next wall-clock multiple of minutes at or after cur
func padTarget(cur time.Time, minutes int, loc *time.Location) time.Time {
	step := time.Duration(minutes) * time.Minute
	rem := cur.Sub(localMidnight(cur, loc)) % step
	if rem == 0 {
		return cur
	}
	return cur.Add(step - rem)
}

// playRoll plays an optional pre or post roll preset. Configuration errors
// are logged and skipped.
func (b *buildContext) playRoll(id *uint, cur time.Time, kind models.FillerKind, prov provenance) (time.Time, error) {
	if id == nil {
		return cur, nil
	}
	preset, err := b.filler(*id)
	if err == nil {
		cur, err = b.playFiller(preset, cur, nil, kind, prov)
	}
	if err != nil {
		if !isConfiguration(err) {
			return cur, err
		}
		b.configError(err, "filler_preset", *id)
	}
	return cur, nil
}

// fillGap covers [start, end) with the active deco's default filler and
// records whatever is left as a gap carrying the dead-air fallback
func (b *buildContext) fillGap(start, end time.Time) error {
	if !end.After(start) {
		return nil
	}
	overlay := b.decos.At(start)
	cur := start

	if overlay.DefaultFillerID != nil {
		preset, err := b.filler(*overlay.DefaultFillerID)
		var p picker
		var res *collection.Resolved
		if err == nil {
			p, res, err = b.fillerPicker(preset)
		}
		switch {
		case err == nil:
			if it, ok := p.Current(); ok && !start.Add(it.Duration()).After(end) {
				b.nextGuideGroup()
				cur = b.fillUntil(p, res, cur, end, models.FillerKindDecoDefault, provenance{})
			}
		case isConfiguration(err):
			b.configError(err, "deco_default_filler", *overlay.DefaultFillerID)
		default:
			return err
		}
	}

	b.recordGap(cur, end, overlay.DeadAirFallbackID)
	return nil
}
