// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Default configuration values. Layer ids follow the conventional IVI
// numbering: one thousand apart per role, applications on top.
const (
	DefaultScreenWidth  = 1920
	DefaultScreenHeight = 1080

	DefaultBaseLayerID                = 1000
	DefaultWorkspaceBackgroundLayerID = 2000
	DefaultWorkspaceLayerID           = 3000
	DefaultApplicationLayerID         = 4000

	DefaultPanelHeight = 70
	DefaultMode        = "tiling"
)

// Config is the stratumd configuration.
// Loaded from ~/.config/stratum/stratumd.toml
type Config struct {
	Screen ScreenConfig `toml:"screen"`
	Layers LayerConfig  `toml:"layers"`
	Panel  PanelConfig  `toml:"panel"`
	Images ImageConfig  `toml:"images"`
	Shell  ShellConfig  `toml:"shell"`
}

// ScreenConfig describes the simulated output.
type ScreenConfig struct {
	Width  int32 `toml:"width"`
	Height int32 `toml:"height"`
}

// LayerConfig assigns the fixed layer ids of the shell scene graph.
type LayerConfig struct {
	Base                uint32 `toml:"base"`
	WorkspaceBackground uint32 `toml:"workspace_background"`
	Workspace           uint32 `toml:"workspace"`
	Application         uint32 `toml:"application"`
}

// PanelConfig contains panel settings.
type PanelConfig struct {
	Height int32 `toml:"height"`
}

// ImageConfig points to the background and panel image assets.
type ImageConfig struct {
	Background string `toml:"background"`
	Panel      string `toml:"panel"`
}

// ShellConfig contains shell behavior settings.
type ShellConfig struct {
	DefaultMode string `toml:"default_mode"` // tiling, side-by-side, fullscreen, random
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Screen: ScreenConfig{
			Width:  DefaultScreenWidth,
			Height: DefaultScreenHeight,
		},
		Layers: LayerConfig{
			Base:                DefaultBaseLayerID,
			WorkspaceBackground: DefaultWorkspaceBackgroundLayerID,
			Workspace:           DefaultWorkspaceLayerID,
			Application:         DefaultApplicationLayerID,
		},
		Panel: PanelConfig{
			Height: DefaultPanelHeight,
		},
		Shell: ShellConfig{
			DefaultMode: DefaultMode,
		},
	}
}

// ConfigPath returns the path to the config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "stratum", "stratumd.toml")
}

// LoadConfig loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns default config if file doesn't exist.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the specified path.
// Creates parent directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks the configuration for values the shell cannot work with.
func (c *Config) Validate() error {
	if c.Screen.Width <= 0 || c.Screen.Height <= 0 {
		return fmt.Errorf("screen dimensions must be positive, got %dx%d",
			c.Screen.Width, c.Screen.Height)
	}
	if c.Panel.Height < 0 || c.Panel.Height >= c.Screen.Height {
		return fmt.Errorf("panel height %d out of range for screen height %d",
			c.Panel.Height, c.Screen.Height)
	}

	ids := map[uint32]string{}
	for _, l := range []struct {
		id   uint32
		name string
	}{
		{c.Layers.Base, "base"},
		{c.Layers.WorkspaceBackground, "workspace_background"},
		{c.Layers.Workspace, "workspace"},
		{c.Layers.Application, "application"},
	} {
		if prev, ok := ids[l.id]; ok {
			return fmt.Errorf("layers %s and %s share id %d", prev, l.name, l.id)
		}
		ids[l.id] = l.name
	}

	switch c.Shell.DefaultMode {
	case "tiling", "side-by-side", "fullscreen", "random":
	default:
		return fmt.Errorf("unknown shell mode %q", c.Shell.DefaultMode)
	}
	return nil
}
