package service

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"github.com/yourorg/signal-service/internal/decision"
	"github.com/yourorg/signal-service/internal/indicator"
	"github.com/yourorg/signal-service/internal/model"
	"github.com/yourorg/signal-service/internal/structure"
	"github.com/yourorg/signal-service/internal/trend"

	"go.uber.org/zap"
)

// holdRankPenalty discounts HOLD verdicts when ranking scan results so
// actionable setups surface first.
const holdRankPenalty = 0.3

// CandleSource defines methods for fetching candles from a market data feed
type CandleSource interface {
	GetSeries(ctx context.Context, symbol string, timeframe model.Timeframe, limit int) (*model.CandleSeries, error)
}

// CandleStore defines persistence methods for fetched candles
type CandleStore interface {
	UpsertCandles(ctx context.Context, series *model.CandleSeries) error
	GetLatestCandles(ctx context.Context, symbol string, timeframe model.Timeframe, limit int) (*model.CandleSeries, error)
}

// SignalPublisher defines the event sink for produced signals
type SignalPublisher interface {
	PublishSignal(ctx context.Context, sig *model.Signal) error
}

// AnalysisOptions configures watchlist scans and candle fetch sizes
type AnalysisOptions struct {
	Watchlist     []string
	ScanTimeframe model.Timeframe
	FetchLimits   map[string]int
}

func (o AnalysisOptions) fetchLimit(tf model.Timeframe) int {
	if n, ok := o.FetchLimits[tf.String()]; ok && n > 0 {
		return n
	}
	if n, ok := o.FetchLimits["default"]; ok && n > 0 {
		return n
	}
	return 250
}

// AnalysisService runs the analysis pipeline for a symbol and timeframe
type AnalysisService struct {
	source     CandleSource
	store      CandleStore
	indicators *indicator.Engine
	detector   *structure.Detector
	classifier *trend.Classifier
	decider    *decision.Engine
	publisher  SignalPublisher
	opts       AnalysisOptions
	logger     *zap.Logger
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(
	source CandleSource,
	store CandleStore,
	indicators *indicator.Engine,
	detector *structure.Detector,
	classifier *trend.Classifier,
	decider *decision.Engine,
	publisher SignalPublisher,
	opts AnalysisOptions,
	logger *zap.Logger,
) *AnalysisService {
	return &AnalysisService{
		source:     source,
		store:      store,
		indicators: indicators,
		detector:   detector,
		classifier: classifier,
		decider:    decider,
		publisher:  publisher,
		opts:       opts,
		logger:     logger,
	}
}

// Analyze produces a trading signal for the symbol on the given timeframe.
// Non-HOLD signals are published to the event stream as a side effect.
func (s *AnalysisService) Analyze(ctx context.Context, symbol string, timeframe model.Timeframe) (*model.Signal, error) {
	series, err := s.loadSeries(ctx, symbol, timeframe)
	if err != nil {
		return nil, err
	}

	snap, err := s.indicators.Snapshot(series)
	if err != nil {
		return nil, err
	}

	st, err := s.detector.Detect(series, snap)
	if err != nil {
		return nil, err
	}

	last, ok := series.Last()
	if !ok {
		return nil, model.ErrEmptySeries
	}
	info := s.classifyTrend(ctx, symbol, timeframe, snap, last.Close)

	sig, err := s.decider.Evaluate(decision.Input{
		Series:    series,
		Snapshot:  snap,
		Structure: st,
		Trend:     info,
		Now:       time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	if s.publisher != nil && sig.Direction != model.DirectionHold {
		if err := s.publisher.PublishSignal(ctx, sig); err != nil {
			s.logger.Warn("Failed to publish signal",
				zap.Error(err),
				zap.String("symbol", symbol),
				zap.String("timeframe", timeframe.String()))
		}
	}

	return sig, nil
}

// ScanWatchlist analyzes every watchlist symbol on the scan timeframe and
// returns the signals ranked strongest first
func (s *AnalysisService) ScanWatchlist(ctx context.Context) ([]*model.Signal, error) {
	if len(s.opts.Watchlist) == 0 {
		return nil, errors.New("watchlist is empty")
	}

	signals := make([]*model.Signal, 0, len(s.opts.Watchlist))
	for _, symbol := range s.opts.Watchlist {
		sig, err := s.Analyze(ctx, symbol, s.opts.ScanTimeframe)
		if err != nil {
			s.logger.Warn("Watchlist analysis failed",
				zap.Error(err),
				zap.String("symbol", symbol))
			continue
		}
		signals = append(signals, sig)
	}

	if len(signals) == 0 {
		return nil, errors.New("no watchlist symbol could be analyzed")
	}

	sort.SliceStable(signals, func(i, j int) bool {
		return rankScore(signals[i]) > rankScore(signals[j])
	})

	return signals, nil
}

// loadSeries fetches candles from the exchange and persists them for later
// replay. Stored candles serve as a fallback when the exchange is unreachable.
func (s *AnalysisService) loadSeries(ctx context.Context, symbol string, timeframe model.Timeframe) (*model.CandleSeries, error) {
	limit := s.opts.fetchLimit(timeframe)

	series, err := s.source.GetSeries(ctx, symbol, timeframe, limit)
	if err != nil {
		if s.store == nil {
			return nil, err
		}
		s.logger.Warn("Exchange fetch failed, falling back to stored candles",
			zap.Error(err),
			zap.String("symbol", symbol),
			zap.String("timeframe", timeframe.String()))
		return s.store.GetLatestCandles(ctx, symbol, timeframe, limit)
	}

	if s.store != nil {
		if err := s.store.UpsertCandles(ctx, series); err != nil {
			s.logger.Warn("Failed to persist candles",
				zap.Error(err),
				zap.String("symbol", symbol),
				zap.String("timeframe", timeframe.String()))
		}
	}

	return series, nil
}

// classifyTrend grades the local trend, confirmed by the next timeframe up
// when the hierarchy defines one and its candles are available
func (s *AnalysisService) classifyTrend(
	ctx context.Context,
	symbol string,
	timeframe model.Timeframe,
	snap *model.IndicatorSnapshot,
	lastClose float64,
) model.TrendInfo {
	higherTF, ok := s.classifier.Higher(timeframe)
	if !ok {
		return s.classifier.Classify(snap, lastClose)
	}

	higherSeries, err := s.loadSeries(ctx, symbol, higherTF)
	if err != nil {
		s.logger.Warn("Higher timeframe unavailable, classifying without confirmation",
			zap.Error(err),
			zap.String("symbol", symbol),
			zap.String("higherTimeframe", higherTF.String()))
		return s.classifier.Classify(snap, lastClose)
	}

	higherSnap, err := s.indicators.Snapshot(higherSeries)
	if err != nil {
		s.logger.Warn("Higher timeframe snapshot failed, classifying without confirmation",
			zap.Error(err),
			zap.String("symbol", symbol),
			zap.String("higherTimeframe", higherTF.String()))
		return s.classifier.Classify(snap, lastClose)
	}

	higherLast, ok := higherSeries.Last()
	if !ok {
		return s.classifier.Classify(snap, lastClose)
	}

	return s.classifier.ClassifyWithHigher(snap, lastClose, higherTF, higherSnap, higherLast.Close)
}

// rankScore orders scan results by evidence strength weighted by confidence
func rankScore(sig *model.Signal) float64 {
	rank := math.Abs(sig.Score) * sig.Confidence / 100
	if sig.Direction == model.DirectionHold {
		rank *= holdRankPenalty
	}
	return rank
}
