// Package deco resolves the overlay configuration active at an instant
package deco

import (
	"context"
	"fmt"
	"time"

	"github.com/stwalsh4118/playout/internal/daterange"
	"github.com/stwalsh4118/playout/internal/db"
	"github.com/stwalsh4118/playout/internal/logger"
	"github.com/stwalsh4118/playout/internal/models"
)

const secondsPerDay = 24 * 60 * 60

// Resolution is the effective overlay for items scheduled at one instant
type Resolution struct {
	// DecoID is the deco that was active, nil when none applies
	DecoID            *uint
	WatermarkID       *uint
	DisableWatermarks bool
	GraphicsElements  string
	DefaultFillerID   *uint
	DeadAirFallbackID *uint
	BreakContent      []models.DecoBreakContent
}

// Breaks returns the break content for one block edge
func (r Resolution) Breaks(placement models.BreakPlacement) []models.DecoBreakContent {
	var out []models.DecoBreakContent
	for _, b := range r.BreakContent {
		if b.Placement == placement {
			out = append(out, b)
		}
	}
	return out
}

// Store loads deco definitions
type Store interface {
	GetByID(ctx context.Context, id uint) (*models.Deco, error)
	GetTemplate(ctx context.Context, id uint) (*models.DecoTemplate, error)
}

// Resolver answers "which overlay is active at t" for one playout
type Resolver struct {
	channel       *models.Channel
	loc           *time.Location
	templates     []models.PlayoutTemplate
	decos         map[uint]*models.Deco
	decoTemplates map[uint]*models.DecoTemplate
	defaultDecoID *uint
}

// NewResolver creates a resolver from preloaded definitions. Decos and deco
// templates missing from the maps are treated as absent.
func NewResolver(channel *models.Channel, templates []models.PlayoutTemplate, decos map[uint]*models.Deco, decoTemplates map[uint]*models.DecoTemplate, defaultDecoID *uint) *Resolver {
	return &Resolver{
		channel:       channel,
		loc:           channel.Location(),
		templates:     templates,
		decos:         decos,
		decoTemplates: decoTemplates,
		defaultDecoID: defaultDecoID,
	}
}

// Load fetches every deco reachable from the playout and builds a resolver.
// References to deleted decos are logged and ignored.
func Load(ctx context.Context, store Store, channel *models.Channel, playout *models.Playout, templates []models.PlayoutTemplate) (*Resolver, error) {
	decos := make(map[uint]*models.Deco)
	decoTemplates := make(map[uint]*models.DecoTemplate)

	loadDeco := func(id uint) error {
		if _, ok := decos[id]; ok {
			return nil
		}
		d, err := store.GetByID(ctx, id)
		if db.IsNotFound(err) {
			logger.Log.Warn().Uint("deco_id", id).Uint("playout_id", playout.ID).Msg("Deco referenced by playout no longer exists")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to load deco %d: %w", id, err)
		}
		decos[id] = d
		return nil
	}

	if playout.DecoID != nil {
		if err := loadDeco(*playout.DecoID); err != nil {
			return nil, err
		}
	}
	for _, pt := range templates {
		if pt.DecoTemplateID == nil {
			continue
		}
		if _, ok := decoTemplates[*pt.DecoTemplateID]; ok {
			continue
		}
		dt, err := store.GetTemplate(ctx, *pt.DecoTemplateID)
		if db.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load deco template %d: %w", *pt.DecoTemplateID, err)
		}
		decoTemplates[dt.ID] = dt
		for _, item := range dt.Items {
			if err := loadDeco(item.DecoID); err != nil {
				return nil, err
			}
		}
	}

	return NewResolver(channel, templates, decos, decoTemplates, playout.DecoID), nil
}

// templateDeco returns the deco placed by the active deco template at t
func (r *Resolver) templateDeco(t time.Time) *models.Deco {
	local := t.In(r.loc)
	pt, ok := daterange.Pick(r.templates, local)
	if !ok || pt.DecoTemplateID == nil {
		return nil
	}
	dt, ok := r.decoTemplates[*pt.DecoTemplateID]
	if !ok {
		return nil
	}

	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, r.loc)
	tod := int64(local.Sub(midnight) / time.Second)
	for _, item := range dt.Items {
		if covers(item.StartTime, item.EndTime, tod) {
			return r.decos[item.DecoID]
		}
	}
	return nil
}

// covers reports whether a time-of-day window contains tod; windows with
// end <= start run past midnight
func covers(start, end, tod int64) bool {
	if end > start {
		return tod >= start && tod < end
	}
	return tod >= start || tod < end%secondsPerDay
}

// At returns the overlay active at t. Facets set to inherit fall through
// from the template deco to the playout default deco and then to the channel.
func (r *Resolver) At(t time.Time) Resolution {
	var chain []*models.Deco
	if d := r.templateDeco(t); d != nil {
		chain = append(chain, d)
	}
	if r.defaultDecoID != nil {
		if d, ok := r.decos[*r.defaultDecoID]; ok && (len(chain) == 0 || chain[0].ID != d.ID) {
			chain = append(chain, d)
		}
	}

	res := Resolution{
		WatermarkID:       r.channel.WatermarkID,
		DeadAirFallbackID: r.channel.FallbackFillerID,
	}
	if len(chain) == 0 {
		return res
	}
	res.DecoID = &chain[0].ID

	if d, mode := pick(chain, func(d *models.Deco) models.DecoMode { return d.WatermarkMode }); d != nil {
		switch mode {
		case models.DecoModeOverride:
			res.WatermarkID = d.WatermarkID
		case models.DecoModeDisable:
			res.WatermarkID = nil
			res.DisableWatermarks = true
		}
	}
	if d, mode := pick(chain, func(d *models.Deco) models.DecoMode { return d.GraphicsElementsMode }); d != nil && mode == models.DecoModeOverride {
		res.GraphicsElements = d.GraphicsElements
	}
	if d, mode := pick(chain, func(d *models.Deco) models.DecoMode { return d.DefaultFillerMode }); d != nil && mode == models.DecoModeOverride {
		res.DefaultFillerID = d.DefaultFillerID
	}
	if d, mode := pick(chain, func(d *models.Deco) models.DecoMode { return d.DeadAirFallbackMode }); d != nil {
		switch mode {
		case models.DecoModeOverride:
			res.DeadAirFallbackID = d.DeadAirFallbackID
		case models.DecoModeDisable:
			res.DeadAirFallbackID = nil
		}
	}
	if d, mode := pick(chain, func(d *models.Deco) models.DecoMode { return d.BreakContentMode }); d != nil && mode == models.DecoModeOverride {
		res.BreakContent = d.BreakContent
	}
	return res
}

// pick returns the first deco in the chain whose facet is not inherit
func pick(chain []*models.Deco, facet func(*models.Deco) models.DecoMode) (*models.Deco, models.DecoMode) {
	for _, d := range chain {
		switch mode := facet(d); mode {
		case models.DecoModeOverride, models.DecoModeDisable:
			return d, mode
		}
	}
	return nil, ""
}
