package appconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Load reads configuration from the provided path. If path is empty, uses DefaultConfigPath.
func Load(path string) (Config, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return Config{}, err
		}
		path = defaultPath
	}

	cfg, err := DefaultConfig()
	if err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("config_version", cfg.ConfigVersion)
	v.SetDefault("system.view_configuration", cfg.System.ViewConfiguration)
	v.SetDefault("system.headless_enabled", cfg.System.HeadlessEnabled)
	v.SetDefault("device.blend_modes", cfg.Device.BlendModes)
	v.SetDefault("device.tracking_offset.position.x", cfg.Device.TrackingOffset.Position.X)
	v.SetDefault("device.tracking_offset.position.y", cfg.Device.TrackingOffset.Position.Y)
	v.SetDefault("device.tracking_offset.position.z", cfg.Device.TrackingOffset.Position.Z)
	v.SetDefault("device.tracking_offset.yaw_degrees", cfg.Device.TrackingOffset.YawDegrees)
	v.SetDefault("device.angular_velocity.x", cfg.Device.AngularVelocity.X)
	v.SetDefault("device.angular_velocity.y", cfg.Device.AngularVelocity.Y)
	v.SetDefault("device.angular_velocity.z", cfg.Device.AngularVelocity.Z)
	v.SetDefault("device.eye_height", cfg.Device.EyeHeight)
	v.SetDefault("device.sample_lag_ms", cfg.Device.SampleLagMillis)
	v.SetDefault("device.fov.horizontal_degrees", cfg.Device.Fov.HorizontalDegrees)
	v.SetDefault("device.fov.vertical_degrees", cfg.Device.Fov.VerticalDegrees)
	v.SetDefault("compositor.enabled", cfg.Compositor.Enabled)
	v.SetDefault("compositor.frame_period_ms", cfg.Compositor.FramePeriodMillis)
	v.SetDefault("compositor.formats", cfg.Compositor.Formats)
	v.SetDefault("compositor.swapchain_images", cfg.Compositor.SwapchainImages)
	v.SetDefault("simulation.frames", cfg.Simulation.Frames)
	v.SetDefault("simulation.quad_layer", cfg.Simulation.QuadLayer)
	v.SetDefault("simulation.event_log", cfg.Simulation.EventLog)

	configLoaded := false
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return Config{}, err
		}
	} else {
		configLoaded = true
	}

	if configLoaded {
		if !v.InConfig("config_version") {
			return Config{}, fmt.Errorf("config_version is required; expected %d", CurrentConfigVersion)
		}
		if v.GetInt("config_version") != CurrentConfigVersion {
			return Config{}, fmt.Errorf("unsupported config_version %d; expected %d", v.GetInt("config_version"), CurrentConfigVersion)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	expandConfigEnv(&cfg)
	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config) error {
	if _, err := cfg.System.ViewConfigurationType(); err != nil {
		return err
	}
	if _, err := cfg.Device.BlendMask(); err != nil {
		return err
	}
	if !cfg.Compositor.Enabled && !cfg.System.HeadlessEnabled {
		return fmt.Errorf("compositor.enabled is false but system.headless_enabled does not permit headless sessions")
	}
	if cfg.Compositor.FramePeriodMillis <= 0 {
		return fmt.Errorf("compositor.frame_period_ms must be positive")
	}
	if cfg.Compositor.SwapchainImages <= 0 {
		return fmt.Errorf("compositor.swapchain_images must be positive")
	}
	if cfg.Device.SampleLagMillis < 0 {
		return fmt.Errorf("device.sample_lag_ms must not be negative")
	}
	fov := cfg.Device.Fov
	if fov.HorizontalDegrees <= 0 || fov.HorizontalDegrees >= 180 || fov.VerticalDegrees <= 0 || fov.VerticalDegrees >= 180 {
		return fmt.Errorf("device.fov angles must be within (0, 180) degrees")
	}
	if cfg.Simulation.Frames < 0 {
		return fmt.Errorf("simulation.frames must not be negative")
	}
	return nil
}

func expandConfigEnv(cfg *Config) {
	if cfg == nil {
		return
	}
	cfg.Simulation.EventLog = expandEnv(cfg.Simulation.EventLog)
}

func expandEnv(value string) string {
	if value == "" {
		return value
	}
	return os.Expand(value, func(key string) string {
		if key == "" {
			return ""
		}
		if val, ok := lookupEnv(key); ok {
			return val
		}
		return "$" + key
	})
}

func lookupEnv(key string) (string, bool) {
	if val, ok := os.LookupEnv(key); ok {
		return val, true
	}
	switch key {
	case "UID":
		return fmt.Sprintf("%d", os.Getuid()), true
	case "GID":
		return fmt.Sprintf("%d", os.Getgid()), true
	}
	return "", false
}

// WriteDefault writes the default config to the target path.
func WriteDefault(path string, overwrite bool) (string, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", err
		}
		path = defaultPath
	}

	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("config already exists at %s", path)
		}
	}

	cfg, err := DefaultConfig()
	if err != nil {
		return "", err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}
