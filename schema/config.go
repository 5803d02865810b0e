package schema

import "errors"

const (
	// DefaultIPDMillimeters is the fixed interpupillary distance.
	DefaultIPDMillimeters = 63
	// DefaultPredictionMillis is the fixed prediction interval added to every pose prediction.
	DefaultPredictionMillis = 11
)

// SessionConfig carries the process tunables a session reads once at creation.
type SessionConfig struct {
	// DynamicPrediction adds the sample age to the static prediction interval.
	DynamicPrediction bool
	// IPDMillimeters is the eye separation used when locating views.
	IPDMillimeters float64
	// PredictionMillis is the static prediction interval.
	PredictionMillis float64
	// DebugViews enables per-view diagnostics at debug level.
	DebugViews bool
}

// DefaultSessionConfig returns the tunables used when nothing is configured.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		DynamicPrediction: true,
		IPDMillimeters:    DefaultIPDMillimeters,
		PredictionMillis:  DefaultPredictionMillis,
	}
}

// NormalizeSessionConfig applies defaults and validates the config.
func NormalizeSessionConfig(cfg SessionConfig) (SessionConfig, error) {
	if cfg.IPDMillimeters == 0 {
		cfg.IPDMillimeters = DefaultIPDMillimeters
	}
	if cfg.IPDMillimeters < 0 {
		return SessionConfig{}, errors.New("ipd must not be negative")
	}
	if cfg.PredictionMillis < 0 {
		return SessionConfig{}, errors.New("prediction interval must not be negative")
	}
	return cfg, nil
}

// IPDMeters returns the eye separation in meters.
func (c SessionConfig) IPDMeters() float64 {
	return c.IPDMillimeters / 1000
}

// StaticPredictionSeconds returns the static prediction interval in seconds.
func (c SessionConfig) StaticPredictionSeconds() float64 {
	return c.PredictionMillis / 1000
}
