package trend

import (
	"go.uber.org/zap"

	"github.com/yourorg/signal-service/internal/model"
)

// Config holds trend classification thresholds and the timeframe hierarchy
type Config struct {
	ADXWeak   float64           `mapstructure:"adx_weak"`
	ADXStrong float64           `mapstructure:"adx_strong"`
	Hierarchy map[string]string `mapstructure:"hierarchy"`
}

// DefaultConfig returns the standard trend thresholds and hierarchy
func DefaultConfig() Config {
	return Config{
		ADXWeak:   20,
		ADXStrong: 40,
		Hierarchy: map[string]string{
			"3m":  "15m",
			"5m":  "30m",
			"15m": "1h",
			"30m": "4h",
			"1h":  "4h",
			"4h":  "1d",
			"1d":  "1w",
		},
	}
}

// Classifier derives trend direction and strength from indicator snapshots
type Classifier struct {
	cfg    Config
	logger *zap.Logger
}

// NewClassifier creates a new trend classifier
func NewClassifier(cfg Config, logger *zap.Logger) *Classifier {
	return &Classifier{cfg: cfg, logger: logger}
}

// Higher returns the confirmation timeframe configured above the given one
func (c *Classifier) Higher(tf model.Timeframe) (model.Timeframe, bool) {
	raw, ok := c.cfg.Hierarchy[tf.String()]
	if !ok {
		return "", false
	}
	higher, err := model.ParseTimeframe(raw)
	if err != nil {
		c.logger.Warn("Invalid higher timeframe in hierarchy",
			zap.String("timeframe", tf.String()),
			zap.String("higher", raw))
		return "", false
	}
	return higher, true
}

// Classify determines the trend direction from the EMA pair and the close,
// and buckets strength by ADX. Undefined EMAs yield a sideways verdict.
func (c *Classifier) Classify(snap *model.IndicatorSnapshot, lastClose float64) model.TrendInfo {
	info := model.TrendInfo{Direction: model.TrendSideways, Strength: model.StrengthWeak, Agreement: model.AgreementNeutral}
	if snap == nil {
		return info
	}
	if snap.EMAFast != nil && snap.EMASlow != nil {
		switch {
		case *snap.EMAFast > *snap.EMASlow && lastClose > *snap.EMAFast:
			info.Direction = model.TrendUp
		case *snap.EMAFast < *snap.EMASlow && lastClose < *snap.EMAFast:
			info.Direction = model.TrendDown
		}
	}
	if snap.ADX != nil {
		info.ADX = *snap.ADX
		switch {
		case *snap.ADX > c.cfg.ADXStrong:
			info.Strength = model.StrengthStrong
		case *snap.ADX >= c.cfg.ADXWeak:
			info.Strength = model.StrengthModerate
		}
	}
	return info
}

// ClassifyWithHigher classifies the target series and folds in the higher
// timeframe verdict. A nil higher snapshot leaves the agreement neutral;
// the higher timeframe confirms, it never vetoes.
func (c *Classifier) ClassifyWithHigher(snap *model.IndicatorSnapshot, lastClose float64, higherTF model.Timeframe, higherSnap *model.IndicatorSnapshot, higherClose float64) model.TrendInfo {
	info := c.Classify(snap, lastClose)
	if higherSnap == nil {
		return info
	}
	higher := c.Classify(higherSnap, higherClose)
	info.HigherTimeframe = higherTF
	info.HigherDirection = higher.Direction
	info.Agreement = Agreement(info.Direction, higher.Direction)
	return info
}

// Agreement reports how two trend directions relate. Directional conflict
// is a disagreement; a sideways side on either end stays neutral.
func Agreement(target, higher model.TrendDirection) model.Agreement {
	if target == model.TrendSideways || higher == model.TrendSideways || higher == "" {
		return model.AgreementNeutral
	}
	if target == higher {
		return model.AgreementAgree
	}
	return model.AgreementDisagree
}
