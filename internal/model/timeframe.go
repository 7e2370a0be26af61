package model

import (
	"fmt"
	"time"
)

// Timeframe represents a candle interval supported by the service
type Timeframe string

const (
	Timeframe1m  Timeframe = "1m"
	Timeframe3m  Timeframe = "3m"
	Timeframe5m  Timeframe = "5m"
	Timeframe15m Timeframe = "15m"
	Timeframe30m Timeframe = "30m"
	Timeframe1h  Timeframe = "1h"
	Timeframe4h  Timeframe = "4h"
	Timeframe1d  Timeframe = "1d"
	Timeframe1w  Timeframe = "1w"
)

var timeframeSteps = map[Timeframe]time.Duration{
	Timeframe1m:  time.Minute,
	Timeframe3m:  3 * time.Minute,
	Timeframe5m:  5 * time.Minute,
	Timeframe15m: 15 * time.Minute,
	Timeframe30m: 30 * time.Minute,
	Timeframe1h:  time.Hour,
	Timeframe4h:  4 * time.Hour,
	Timeframe1d:  24 * time.Hour,
	Timeframe1w:  7 * 24 * time.Hour,
}

// ParseTimeframe validates a raw timeframe string and returns the typed value
func ParseTimeframe(s string) (Timeframe, error) {
	tf := Timeframe(s)
	if _, ok := timeframeSteps[tf]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTimeframe, s)
	}
	return tf, nil
}

// Step returns the duration covered by one candle of this timeframe
func (tf Timeframe) Step() time.Duration {
	return timeframeSteps[tf]
}

// Valid reports whether the timeframe is one of the supported intervals
func (tf Timeframe) Valid() bool {
	_, ok := timeframeSteps[tf]
	return ok
}

func (tf Timeframe) String() string {
	return string(tf)
}
