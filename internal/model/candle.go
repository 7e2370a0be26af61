package model

import (
	"fmt"
	"time"
)

// Candle represents a single OHLCV price candle
type Candle struct {
	OpenTime time.Time `json:"open_time" db:"open_time"`
	Open     float64   `json:"open" db:"open"`
	High     float64   `json:"high" db:"high"`
	Low      float64   `json:"low" db:"low"`
	Close    float64   `json:"close" db:"close"`
	Volume   float64   `json:"volume" db:"volume"`
}

// CandleSeries represents an ordered candle sequence for one symbol and timeframe
type CandleSeries struct {
	Symbol    string    `json:"symbol"`
	Timeframe Timeframe `json:"timeframe"`
	Candles   []Candle  `json:"candles"`
	HasGaps   bool      `json:"has_gaps"`
}

// NewCandleSeries builds a series and validates candle ordering.
// Candles must be strictly increasing by open time; a spacing larger than
// the timeframe step marks the series as gapped but is not an error.
func NewCandleSeries(symbol string, timeframe Timeframe, candles []Candle) (*CandleSeries, error) {
	if !timeframe.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTimeframe, timeframe)
	}
	s := &CandleSeries{Symbol: symbol, Timeframe: timeframe}
	for _, c := range candles {
		if err := s.Append(c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Append adds a candle to the end of the series.
// Candles at or before the last open time are rejected as duplicates.
func (s *CandleSeries) Append(c Candle) error {
	if n := len(s.Candles); n > 0 {
		last := s.Candles[n-1].OpenTime
		if !c.OpenTime.After(last) {
			return fmt.Errorf("%w: candle at %s is not after %s", ErrDuplicateTick, c.OpenTime.Format(time.RFC3339), last.Format(time.RFC3339))
		}
		if c.OpenTime.Sub(last) > s.Timeframe.Step() {
			s.HasGaps = true
		}
	}
	s.Candles = append(s.Candles, c)
	return nil
}

// Len returns the number of candles in the series
func (s *CandleSeries) Len() int {
	return len(s.Candles)
}

// Last returns the most recent candle, or false when the series is empty
func (s *CandleSeries) Last() (Candle, bool) {
	if len(s.Candles) == 0 {
		return Candle{}, false
	}
	return s.Candles[len(s.Candles)-1], true
}

// Closes returns the close prices in index order
func (s *CandleSeries) Closes() []float64 {
	out := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.Close
	}
	return out
}

// Highs returns the high prices in index order
func (s *CandleSeries) Highs() []float64 {
	out := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.High
	}
	return out
}

// Lows returns the low prices in index order
func (s *CandleSeries) Lows() []float64 {
	out := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.Low
	}
	return out
}

// Volumes returns the traded volumes in index order
func (s *CandleSeries) Volumes() []float64 {
	out := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.Volume
	}
	return out
}
