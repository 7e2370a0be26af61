package model

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownTimeframe is returned when a request names an unsupported candle interval
	ErrUnknownTimeframe = errors.New("unknown timeframe")

	// ErrDuplicateTick is returned when a price tick is not newer than the last processed one
	ErrDuplicateTick = errors.New("duplicate tick")

	// ErrUnknownTrade is returned when a trade id is not present in the monitor registry
	ErrUnknownTrade = errors.New("unknown trade")

	// ErrEmptySeries is returned when an operation needs at least one candle
	ErrEmptySeries = errors.New("empty candle series")

	// ErrNoTradePlan is returned when a hold signal or plan-less signal is followed
	ErrNoTradePlan = errors.New("signal has no trade plan")
)

// InsufficientDataError reports that a series is too short for a calculation
type InsufficientDataError struct {
	Indicator string
	Required  int
	Available int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for %s: need %d candles, have %d", e.Indicator, e.Required, e.Available)
}

// NewInsufficientDataError creates a new InsufficientDataError
func NewInsufficientDataError(indicator string, required, available int) *InsufficientDataError {
	return &InsufficientDataError{Indicator: indicator, Required: required, Available: available}
}

// InvalidLevelError reports that no acceptable price level could be derived for a trade plan
type InvalidLevelError struct {
	Reason string
}

func (e *InvalidLevelError) Error() string {
	return fmt.Sprintf("invalid level: %s", e.Reason)
}
