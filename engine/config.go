package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/showcase/engine/core"
	"github.com/spaghettifunk/showcase/engine/platform"
	"github.com/spaghettifunk/showcase/engine/renderer"
)

const (
	BackendNameVulkan = "vulkan"
	BackendNameWGPU   = "wgpu"
)

type ApplicationConfig struct {
	// The application name used in windowing, if applicable.
	Name string `toml:"name"`
	// Window starting position x axis, if applicable.
	StartPosX int `toml:"start_pos_x"`
	// Window starting position y axis, if applicable.
	StartPosY int `toml:"start_pos_y"`
	// Window starting width, if applicable.
	StartWidth uint32 `toml:"start_width"`
	// Window starting height, if applicable.
	StartHeight uint32 `toml:"start_height"`
	LogLevel    string `toml:"log_level"`
	// GPU API used to drive the display, "vulkan" or "wgpu".
	Backend         string `toml:"backend"`
	PowerPreference string `toml:"power_preference"`
	// Enables the Vulkan validation layer.
	Validation bool `toml:"validation"`
}

func DefaultConfig() *ApplicationConfig {
	attrs := platform.DefaultWindowAttributes()
	return &ApplicationConfig{
		Name:            attrs.Title,
		StartPosX:       attrs.X,
		StartPosY:       attrs.Y,
		StartWidth:      attrs.Width,
		StartHeight:     attrs.Height,
		LogLevel:        "info",
		Backend:         BackendNameVulkan,
		PowerPreference: "default",
	}
}

// LoadConfig reads a TOML config on top of the defaults. An empty path
// or a missing file yields the defaults.
func LoadConfig(path string) (*ApplicationConfig, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		core.LogWarn("config file %s not found, using defaults", path)
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *ApplicationConfig) Validate() error {
	if c.StartWidth == 0 || c.StartHeight == 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.StartWidth, c.StartHeight)
	}
	switch strings.ToLower(c.Backend) {
	case BackendNameVulkan, BackendNameWGPU:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if _, err := c.Power(); err != nil {
		return err
	}
	if _, err := core.ParseLogLevel(c.LogLevel); err != nil {
		return fmt.Errorf("unknown log level %q: %w", c.LogLevel, err)
	}
	return nil
}

func (c *ApplicationConfig) Power() (renderer.PowerPreference, error) {
	switch strings.ToLower(c.PowerPreference) {
	case "", "default":
		return renderer.PowerPreferenceDefault, nil
	case "low", "low_power":
		return renderer.PowerPreferenceLowPower, nil
	case "high", "high_performance":
		return renderer.PowerPreferenceHighPerformance, nil
	}
	return renderer.PowerPreferenceDefault, fmt.Errorf("unknown power preference %q", c.PowerPreference)
}

// WindowAttributes derives the main window's attributes from the config.
func (c *ApplicationConfig) WindowAttributes() platform.WindowAttributes {
	attrs := platform.DefaultWindowAttributes()
	if c.Name != "" {
		attrs.Title = c.Name
	}
	attrs.X = c.StartPosX
	attrs.Y = c.StartPosY
	attrs.Width = c.StartWidth
	attrs.Height = c.StartHeight
	return attrs
}

func (c *ApplicationConfig) DisplayOptions() renderer.DisplayOptions {
	opts := renderer.DefaultDisplayOptions()
	opts.PowerPreference, _ = c.Power()
	return opts
}
