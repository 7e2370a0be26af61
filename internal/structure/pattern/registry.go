package pattern

import (
	"sort"

	"github.com/yourorg/signal-service/internal/model"
)

// Context carries the inputs shared by all pattern detectors
type Context struct {
	Series *model.CandleSeries
	Swings []model.SwingPoint
	ADX    *float64
	RSI    *float64
}

// DetectorFunc inspects a series and returns every formation it finds
type DetectorFunc func(ctx Context, cfg Config) []model.Pattern

// Registry runs pattern detectors in a fixed registration order so the
// same input always yields the same pattern list
type Registry struct {
	cfg       Config
	order     []model.PatternKind
	detectors map[model.PatternKind]DetectorFunc
}

// NewRegistry creates a registry with all built-in detectors registered
func NewRegistry(cfg Config) *Registry {
	r := &Registry{cfg: cfg, detectors: make(map[model.PatternKind]DetectorFunc)}
	r.Register(model.PatternDoubleBottom, DetectDoubleBottom)
	r.Register(model.PatternDoubleTop, DetectDoubleTop)
	r.Register(model.PatternAscendingTriangle, DetectAscendingTriangle)
	r.Register(model.PatternRisingWedge, DetectRisingWedge)
	r.Register(model.PatternFallingWedge, DetectFallingWedge)
	r.Register(model.PatternBullFlag, DetectBullFlag)
	r.Register(model.PatternBearFlag, DetectBearFlag)
	r.Register(model.PatternEngulfing, DetectEngulfing)
	r.Register(model.PatternHammer, DetectHammer)
	r.Register(model.PatternDoji, DetectDoji)
	return r
}

// Register adds or replaces the detector for a pattern kind
func (r *Registry) Register(kind model.PatternKind, fn DetectorFunc) {
	if _, exists := r.detectors[kind]; !exists {
		r.order = append(r.order, kind)
	}
	r.detectors[kind] = fn
}

// Detect runs every registered detector and returns all matches ranked by
// confidence, highest first. Ties keep registration order.
func (r *Registry) Detect(ctx Context) []model.Pattern {
	if ctx.Series == nil || ctx.Series.Len() == 0 {
		return nil
	}
	var found []model.Pattern
	for _, kind := range r.order {
		found = append(found, r.detectors[kind](ctx, r.cfg)...)
	}
	sort.SliceStable(found, func(i, j int) bool {
		return found[i].Confidence > found[j].Confidence
	})
	return found
}
