package pattern

// Config holds pattern detection tolerances and confirmation settings
type Config struct {
	PriceTolerance   float64 `mapstructure:"price_tolerance"`
	SearchWindow     int     `mapstructure:"search_window"`
	MinRSquared      float64 `mapstructure:"min_r_squared"`
	MinBodySize      float64 `mapstructure:"min_body_size"`
	VolumeSpikeRatio float64 `mapstructure:"volume_spike_ratio"`
	ADXThreshold     float64 `mapstructure:"adx_threshold"`
	RSIHeadroom      float64 `mapstructure:"rsi_headroom"`
}

// DefaultConfig returns the standard pattern detection settings
func DefaultConfig() Config {
	return Config{
		PriceTolerance:   0.03,
		SearchWindow:     80,
		MinRSquared:      0.6,
		MinBodySize:      0.0001,
		VolumeSpikeRatio: 1.5,
		ADXThreshold:     25,
		RSIHeadroom:      75,
	}
}
