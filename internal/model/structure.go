package model

import (
	"time"
)

// SwingKind represents the type of a swing point
type SwingKind string

const (
	SwingHigh SwingKind = "HIGH"
	SwingLow  SwingKind = "LOW"
)

// SwingPoint represents a confirmed local extreme in a candle series
type SwingPoint struct {
	Index int       `json:"index"`
	Time  time.Time `json:"time"`
	Price float64   `json:"price"`
	Kind  SwingKind `json:"kind"`
}

// LegDirection represents the direction of the swing leg used for Fibonacci levels
type LegDirection string

const (
	LegUp   LegDirection = "up"
	LegDown LegDirection = "down"
)

// FibLevel represents a single Fibonacci level price
type FibLevel struct {
	Ratio float64 `json:"ratio"`
	Price float64 `json:"price"`
}

// FibLevels represents the retracement and extension grid of the current swing leg
type FibLevels struct {
	Direction    LegDirection `json:"direction"`
	LegHigh      float64      `json:"leg_high"`
	LegLow       float64      `json:"leg_low"`
	Retracements []FibLevel   `json:"retracements"`
	Extensions   []FibLevel   `json:"extensions"`
}

// Level returns the price at the given retracement ratio, or false when absent
func (f *FibLevels) Level(ratio float64) (float64, bool) {
	for _, l := range f.Retracements {
		if l.Ratio == ratio {
			return l.Price, true
		}
	}
	return 0, false
}

// LevelKind represents whether a price level acts as support or resistance
type LevelKind string

const (
	LevelSupport    LevelKind = "support"
	LevelResistance LevelKind = "resistance"
)

// LevelSource represents where a price level was derived from
type LevelSource string

const (
	SourcePivot   LevelSource = "pivot"
	SourceChannel LevelSource = "channel"
	SourceFib     LevelSource = "fib"
)

// PriceLevel represents a support or resistance level with its touch strength
type PriceLevel struct {
	Price    float64     `json:"price"`
	Kind     LevelKind   `json:"kind"`
	Strength int         `json:"strength"`
	Source   LevelSource `json:"source"`
}

// Channel represents regression channel bounds evaluated at the last candle
type Channel struct {
	Upper float64 `json:"upper"`
	Lower float64 `json:"lower"`
	Slope float64 `json:"slope"`
}

// Structure represents the full structural picture extracted from a series
type Structure struct {
	Swings      []SwingPoint `json:"swings"`
	Supports    []PriceLevel `json:"supports"`
	Resistances []PriceLevel `json:"resistances"`
	Fib         *FibLevels   `json:"fib,omitempty"`
	Channel     *Channel     `json:"channel,omitempty"`
	Patterns    []Pattern    `json:"patterns,omitempty"`
}
