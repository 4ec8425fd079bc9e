package clean

import "fmt"

// Strategy selects how flagged outliers are handled.
type Strategy string

const (
	// StrategyCap clamps flagged values into the IQR fence bounds.
	StrategyCap Strategy = "cap"
	// StrategyRemove deletes every row flagged in any numeric column.
	StrategyRemove Strategy = "remove"
	// StrategyTransform applies a sign-preserving logarithmic dampening
	// to flagged values.
	StrategyTransform Strategy = "transform"
)

// Config holds the parameters for one cleaning invocation. It is fully
// populated up front and passed explicitly through every stage; there are
// no hidden module-level defaults.
type Config struct {
	OutlierStrategy Strategy `json:"outlier_strategy"`
	ZScoreThreshold float64  `json:"z_score_threshold"`
	IQRMultiplier   float64  `json:"iqr_multiplier"`
	Standardize     bool     `json:"standardize"`
}

// Default returns the standard cleaning configuration: cap outliers at the
// IQR fences, z-score threshold 3.0, IQR multiplier 1.5, no standardization.
func Default() Config {
	return Config{
		OutlierStrategy: StrategyCap,
		ZScoreThreshold: 3.0,
		IQRMultiplier:   1.5,
		Standardize:     false,
	}
}

// Validate reports the first invalid parameter, if any, as a *ConfigError.
func (c Config) Validate() error {
	switch c.OutlierStrategy {
	case StrategyCap, StrategyRemove, StrategyTransform:
	default:
		return &ConfigError{Reason: fmt.Sprintf("invalid outlier strategy %q (want cap, remove or transform)", c.OutlierStrategy)}
	}
	if c.ZScoreThreshold <= 0 {
		return &ConfigError{Reason: fmt.Sprintf("z-score threshold must be positive, got %v", c.ZScoreThreshold)}
	}
	if c.IQRMultiplier <= 0 {
		return &ConfigError{Reason: fmt.Sprintf("IQR multiplier must be positive, got %v", c.IQRMultiplier)}
	}
	return nil
}
