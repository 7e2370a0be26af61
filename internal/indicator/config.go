package indicator

// Config holds the calculation periods for all indicators
type Config struct {
	RSIPeriod    int     `mapstructure:"rsi_period"`
	MACDFast     int     `mapstructure:"macd_fast"`
	MACDSlow     int     `mapstructure:"macd_slow"`
	MACDSignal   int     `mapstructure:"macd_signal"`
	StochKPeriod int     `mapstructure:"stoch_k_period"`
	StochSmooth  int     `mapstructure:"stoch_smooth"`
	StochDPeriod int     `mapstructure:"stoch_d_period"`
	ADXPeriod    int     `mapstructure:"adx_period"`
	EMAFast      int     `mapstructure:"ema_fast"`
	EMASlow      int     `mapstructure:"ema_slow"`
	BBPeriod     int     `mapstructure:"bb_period"`
	BBStdDev     float64 `mapstructure:"bb_std_dev"`
}

// DefaultConfig returns the standard indicator periods
func DefaultConfig() Config {
	return Config{
		RSIPeriod:    14,
		MACDFast:     12,
		MACDSlow:     26,
		MACDSignal:   9,
		StochKPeriod: 14,
		StochSmooth:  3,
		StochDPeriod: 3,
		ADXPeriod:    14,
		EMAFast:      20,
		EMASlow:      50,
		BBPeriod:     20,
		BBStdDev:     2.0,
	}
}
