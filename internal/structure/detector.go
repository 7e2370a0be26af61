package structure

import (
	"errors"

	"go.uber.org/zap"

	"github.com/yourorg/signal-service/internal/model"
	"github.com/yourorg/signal-service/internal/structure/pattern"
)

// Detector extracts swings, levels, channels and patterns from a series
type Detector struct {
	cfg      Config
	registry *pattern.Registry
	logger   *zap.Logger
}

// NewDetector creates a new structure detector
func NewDetector(cfg Config, registry *pattern.Registry, logger *zap.Logger) *Detector {
	return &Detector{cfg: cfg, registry: registry, logger: logger}
}

// Detect runs the full structural analysis for a series. The indicator
// snapshot is optional; when present it feeds pattern confidence
// confirmations.
func (d *Detector) Detect(series *model.CandleSeries, snap *model.IndicatorSnapshot) (*model.Structure, error) {
	if series == nil || series.Len() == 0 {
		return nil, model.ErrEmptySeries
	}
	last, _ := series.Last()

	swings := DetectSwings(series, d.cfg.SwingWindow)

	channel, err := ComputeChannel(series, d.cfg.ChannelLookback, d.cfg.ChannelStdDev)
	if err != nil {
		var insufficient *model.InsufficientDataError
		if !errors.As(err, &insufficient) {
			return nil, err
		}
		d.logger.Debug("Channel skipped, series too short",
			zap.String("symbol", series.Symbol),
			zap.String("timeframe", series.Timeframe.String()),
			zap.Int("required", insufficient.Required),
			zap.Int("available", insufficient.Available))
	}

	var fib *model.FibLevels
	if low, high, direction, ok := CurrentLeg(swings); ok {
		fib = ComputeFib(low, high, direction)
	}

	supports, resistances := BuildLevels(swings, channel, last.Close, d.cfg.ClusterTolerance, d.cfg.MaxLevels)

	ctx := pattern.Context{Series: series, Swings: swings}
	if snap != nil {
		ctx.ADX = snap.ADX
		ctx.RSI = snap.RSI
	}
	patterns := d.registry.Detect(ctx)

	return &model.Structure{
		Swings:      swings,
		Supports:    supports,
		Resistances: resistances,
		Fib:         fib,
		Channel:     channel,
		Patterns:    patterns,
	}, nil
}
