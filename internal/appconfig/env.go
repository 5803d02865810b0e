package appconfig

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"pkt.systems/xrsession/schema"
)

// DebugOptions are the process-wide session tunables read from the environment.
type DebugOptions struct {
	DynamicPrediction bool    `env:"OXR_DYNAMIC_PREDICTION" envDefault:"true"`
	IPDMillimeters    float64 `env:"OXR_DEBUG_IPD_MM" envDefault:"63"`
	PredictionMillis  float64 `env:"OXR_DEBUG_PREDICTION_MS" envDefault:"11"`
	DebugViews        bool    `env:"OXR_DEBUG_VIEWS" envDefault:"false"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadDebugOptions reads the session tunables once for the process.
func LoadDebugOptions() (DebugOptions, error) {
	var opts DebugOptions
	if err := ParseEnv(&opts); err != nil {
		return DebugOptions{}, err
	}
	return opts, nil
}

// SessionConfig converts the tunables for session creation.
func (o DebugOptions) SessionConfig() (schema.SessionConfig, error) {
	return schema.NormalizeSessionConfig(schema.SessionConfig{
		DynamicPrediction: o.DynamicPrediction,
		IPDMillimeters:    o.IPDMillimeters,
		PredictionMillis:  o.PredictionMillis,
		DebugViews:        o.DebugViews,
	})
}
