package structure

// Config holds swing, level and channel detection settings
type Config struct {
	SwingWindow      int     `mapstructure:"swing_window"`
	ClusterTolerance float64 `mapstructure:"cluster_tolerance"`
	MaxLevels        int     `mapstructure:"max_levels"`
	ChannelLookback  int     `mapstructure:"channel_lookback"`
	ChannelStdDev    float64 `mapstructure:"channel_std_dev"`
}

// DefaultConfig returns the standard structure detection settings
func DefaultConfig() Config {
	return Config{
		SwingWindow:      5,
		ClusterTolerance: 0.01,
		MaxLevels:        5,
		ChannelLookback:  90,
		ChannelStdDev:    1.5,
	}
}
