package trend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourorg/signal-service/internal/model"
)

func snapshot(emaFast, emaSlow, adx float64) *model.IndicatorSnapshot {
	return &model.IndicatorSnapshot{
		EMAFast: model.Float64Ptr(emaFast),
		EMASlow: model.Float64Ptr(emaSlow),
		ADX:     model.Float64Ptr(adx),
	}
}

func TestClassifyUptrend(t *testing.T) {
	c := NewClassifier(DefaultConfig(), zap.NewNop())

	info := c.Classify(snapshot(105, 100, 30), 110)
	assert.Equal(t, model.TrendUp, info.Direction)
	assert.Equal(t, model.StrengthModerate, info.Strength)
	assert.InDelta(t, 30.0, info.ADX, 1e-9)
}

func TestClassifyDowntrend(t *testing.T) {
	c := NewClassifier(DefaultConfig(), zap.NewNop())

	info := c.Classify(snapshot(95, 100, 45), 90)
	assert.Equal(t, model.TrendDown, info.Direction)
	assert.Equal(t, model.StrengthStrong, info.Strength)
}

func TestClassifySidewaysWhenPriceBetween(t *testing.T) {
	c := NewClassifier(DefaultConfig(), zap.NewNop())

	// Fast above slow but price below the fast EMA.
	info := c.Classify(snapshot(105, 100, 15), 102)
	assert.Equal(t, model.TrendSideways, info.Direction)
	assert.Equal(t, model.StrengthWeak, info.Strength)
}

func TestClassifyUndefinedEMAs(t *testing.T) {
	c := NewClassifier(DefaultConfig(), zap.NewNop())

	info := c.Classify(&model.IndicatorSnapshot{}, 100)
	assert.Equal(t, model.TrendSideways, info.Direction)
	assert.Equal(t, model.AgreementNeutral, info.Agreement)
}

func TestClassifyWithHigherAgreement(t *testing.T) {
	c := NewClassifier(DefaultConfig(), zap.NewNop())

	info := c.ClassifyWithHigher(snapshot(105, 100, 30), 110, model.Timeframe4h, snapshot(210, 200, 28), 220)
	assert.Equal(t, model.TrendUp, info.Direction)
	assert.Equal(t, model.Timeframe4h, info.HigherTimeframe)
	assert.Equal(t, model.TrendUp, info.HigherDirection)
	assert.Equal(t, model.AgreementAgree, info.Agreement)
}

func TestClassifyWithHigherConflict(t *testing.T) {
	c := NewClassifier(DefaultConfig(), zap.NewNop())

	info := c.ClassifyWithHigher(snapshot(105, 100, 30), 110, model.Timeframe4h, snapshot(190, 200, 28), 180)
	assert.Equal(t, model.AgreementDisagree, info.Agreement)
}

func TestClassifyWithHigherMissing(t *testing.T) {
	c := NewClassifier(DefaultConfig(), zap.NewNop())

	info := c.ClassifyWithHigher(snapshot(105, 100, 30), 110, model.Timeframe4h, nil, 0)
	assert.Equal(t, model.AgreementNeutral, info.Agreement)
	assert.Empty(t, info.HigherDirection)
}

func TestHigherTimeframeLookup(t *testing.T) {
	c := NewClassifier(DefaultConfig(), zap.NewNop())

	higher, ok := c.Higher(model.Timeframe1h)
	require.True(t, ok)
	assert.Equal(t, model.Timeframe4h, higher)

	_, ok = c.Higher(model.Timeframe1w)
	assert.False(t, ok)
}

func TestAgreementMatrix(t *testing.T) {
	assert.Equal(t, model.AgreementAgree, Agreement(model.TrendUp, model.TrendUp))
	assert.Equal(t, model.AgreementDisagree, Agreement(model.TrendUp, model.TrendDown))
	assert.Equal(t, model.AgreementNeutral, Agreement(model.TrendSideways, model.TrendUp))
	assert.Equal(t, model.AgreementNeutral, Agreement(model.TrendUp, model.TrendSideways))
}
