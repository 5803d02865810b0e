package appconfig

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"pkt.systems/xrsession/internal/xrmath"
	"pkt.systems/xrsession/schema"
)

// Config is the top-level application configuration.
type Config struct {
	ConfigVersion int              `mapstructure:"config_version" yaml:"config_version"`
	System        SystemConfig     `mapstructure:"system" yaml:"system"`
	Device        DeviceConfig     `mapstructure:"device" yaml:"device"`
	Compositor    CompositorConfig `mapstructure:"compositor" yaml:"compositor"`
	Simulation    SimulationConfig `mapstructure:"simulation" yaml:"simulation"`
}

// CurrentConfigVersion marks the supported config version.
const CurrentConfigVersion = 1

// SystemConfig describes what sessions may be created against.
type SystemConfig struct {
	ViewConfiguration string `mapstructure:"view_configuration" yaml:"view_configuration"`
	HeadlessEnabled   bool   `mapstructure:"headless_enabled" yaml:"headless_enabled"`
}

// DeviceConfig configures the simulated head device.
type DeviceConfig struct {
	BlendModes      []string     `mapstructure:"blend_modes" yaml:"blend_modes"`
	TrackingOffset  OffsetConfig `mapstructure:"tracking_offset" yaml:"tracking_offset"`
	AngularVelocity VecConfig    `mapstructure:"angular_velocity" yaml:"angular_velocity"`
	EyeHeight       float64      `mapstructure:"eye_height" yaml:"eye_height"`
	SampleLagMillis float64      `mapstructure:"sample_lag_ms" yaml:"sample_lag_ms"`
	Fov             FovConfig    `mapstructure:"fov" yaml:"fov"`
}

// OffsetConfig places the tracking origin relative to the logical origin.
type OffsetConfig struct {
	Position   VecConfig `mapstructure:"position" yaml:"position"`
	YawDegrees float64   `mapstructure:"yaw_degrees" yaml:"yaw_degrees"`
}

// VecConfig is a 3D vector.
type VecConfig struct {
	X float64 `mapstructure:"x" yaml:"x"`
	Y float64 `mapstructure:"y" yaml:"y"`
	Z float64 `mapstructure:"z" yaml:"z"`
}

// FovConfig is a symmetric-per-axis field of view in degrees.
type FovConfig struct {
	HorizontalDegrees float64 `mapstructure:"horizontal_degrees" yaml:"horizontal_degrees"`
	VerticalDegrees   float64 `mapstructure:"vertical_degrees" yaml:"vertical_degrees"`
}

// CompositorConfig configures the paced compositor backend.
type CompositorConfig struct {
	// Enabled false creates headless sessions.
	Enabled           bool    `mapstructure:"enabled" yaml:"enabled"`
	FramePeriodMillis float64 `mapstructure:"frame_period_ms" yaml:"frame_period_ms"`
	Formats           []int64 `mapstructure:"formats" yaml:"formats"`
	SwapchainImages   int     `mapstructure:"swapchain_images" yaml:"swapchain_images"`
}

// SimulationConfig controls the simulate command.
type SimulationConfig struct {
	Frames    int    `mapstructure:"frames" yaml:"frames"`
	QuadLayer bool   `mapstructure:"quad_layer" yaml:"quad_layer"`
	EventLog  string `mapstructure:"event_log" yaml:"event_log"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() (Config, error) {
	return Config{
		ConfigVersion: CurrentConfigVersion,
		System: SystemConfig{
			ViewConfiguration: schema.ViewConfigurationPrimaryStereo.String(),
			HeadlessEnabled:   true,
		},
		Device: DeviceConfig{
			BlendModes:      []string{"opaque"},
			AngularVelocity: VecConfig{Y: 0.5},
			EyeHeight:       1.6,
			SampleLagMillis: 2,
			Fov: FovConfig{
				HorizontalDegrees: 90,
				VerticalDegrees:   90,
			},
		},
		Compositor: CompositorConfig{
			Enabled:           true,
			FramePeriodMillis: 1000.0 / 90,
			// R8G8B8A8_SRGB, B8G8R8A8_SRGB, R8G8B8A8_UNORM
			Formats:         []int64{43, 50, 37},
			SwapchainImages: 3,
		},
		Simulation: SimulationConfig{
			Frames:    90,
			QuadLayer: true,
			EventLog:  "",
		},
	}, nil
}

// DefaultConfigPath returns the standard config path.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".xrsession", "config.yaml"), nil
}

// ViewConfigurationType resolves the configured primary view configuration.
func (c SystemConfig) ViewConfigurationType() (schema.ViewConfigurationType, error) {
	view, ok := schema.ParseViewConfigurationType(c.ViewConfiguration)
	if !ok {
		return 0, fmt.Errorf("unsupported system.view_configuration %q", c.ViewConfiguration)
	}
	return view, nil
}

// BlendMask resolves the configured blend modes into a compositor mask.
func (c DeviceConfig) BlendMask() (schema.BlendMode, error) {
	var mask schema.BlendMode
	for _, name := range c.BlendModes {
		mode, ok := schema.ParseBlendMode(name)
		if !ok {
			return 0, fmt.Errorf("unsupported device.blend_modes entry %q", name)
		}
		mask |= mode
	}
	if mask == 0 {
		return 0, fmt.Errorf("device.blend_modes must name at least one mode")
	}
	return mask, nil
}

// Offset returns the tracking origin offset as a pose.
func (c OffsetConfig) Offset() schema.Pose {
	return schema.Pose{
		Orientation: xrmath.QuatFromAxisAngle(schema.Vec3{Y: 1}, c.YawDegrees*math.Pi/180),
		Position:    c.Position.Vec3(),
	}
}

// Vec3 converts the config vector.
func (c VecConfig) Vec3() schema.Vec3 {
	return schema.Vec3{X: c.X, Y: c.Y, Z: c.Z}
}

// EyeFov returns the field of view of each eye in radians.
func (c FovConfig) EyeFov() schema.Fov {
	h := c.HorizontalDegrees / 2 * math.Pi / 180
	v := c.VerticalDegrees / 2 * math.Pi / 180
	return schema.Fov{AngleLeft: -h, AngleRight: h, AngleUp: v, AngleDown: -v}
}
