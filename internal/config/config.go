// Package config loads the whiteboard settings from a TOML file layered
// over built-in defaults.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"whiteboard/app"
	"whiteboard/camera"
	"whiteboard/tool"
)

// Config is the user configuration.
type Config struct {
	DeadZone        float64 `toml:"dead_zone"`
	MinZoom         float64 `toml:"min_zoom"`
	MaxZoom         float64 `toml:"max_zoom"`
	ZoomStep        float64 `toml:"zoom_step"`
	FitPadding      float64 `toml:"fit_padding"`
	BindingDistance float64 `toml:"binding_distance"`
	ToolLocked      bool    `toml:"tool_locked"`
	HistoryLimit    int     `toml:"history_limit"`

	SaveDirectory    string `toml:"save_directory"`
	AutosaveInterval string `toml:"autosave_interval"`
	Database         string `toml:"database"`

	// CellWidth and CellHeight are the document units one terminal cell
	// covers at zoom 1.
	CellWidth  float64 `toml:"cell_width"`
	CellHeight float64 `toml:"cell_height"`

	Verbose bool `toml:"verbose"`

	path string
}

// Default returns the built-in configuration.
func Default() *Config {
	eng := app.DefaultConfig()
	return &Config{
		DeadZone:         eng.Tools.DeadZone,
		MinZoom:          eng.Camera.MinZoom,
		MaxZoom:          eng.Camera.MaxZoom,
		ZoomStep:         eng.Camera.ZoomStep,
		FitPadding:       eng.Camera.FitPadding,
		BindingDistance:  eng.Tools.BindingDistance,
		HistoryLimit:     eng.HistoryLimit,
		AutosaveInterval: "2s",
		CellWidth:        10,
		CellHeight:       20,
	}
}

// Dir returns ~/.whiteboard.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".whiteboard"), nil
}

// DefaultPath returns ~/.whiteboard/config.toml.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads path, or the default path when empty, over the defaults. A
// missing file is not an error. A file that cannot be read or parsed
// yields the defaults together with the error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}
	cfg.path = path

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	loaded := *cfg
	if err := toml.Unmarshal(data, &loaded); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	loaded.SaveDirectory = expandPath(loaded.SaveDirectory)
	loaded.Database = expandPath(loaded.Database)
	return &loaded, nil
}

// expandPath resolves a leading ~ and makes the path absolute.
func expandPath(p string) string {
	if p == "" {
		return p
	}
	if strings.HasPrefix(p, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	if !filepath.IsAbs(p) {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
	}
	return p
}

// Path is the file the configuration was loaded from.
func (c *Config) Path() string { return c.path }

// Write encodes the configuration as TOML.
func (c *Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Engine returns the engine settings.
func (c *Config) Engine() app.Config {
	cfg := app.DefaultConfig()
	cfg.Tools = tool.Settings{
		DeadZone:        c.DeadZone,
		BindingDistance: c.BindingDistance,
		ToolLocked:      c.ToolLocked,
	}
	cfg.Camera = camera.Options{
		MinZoom:    c.MinZoom,
		MaxZoom:    c.MaxZoom,
		ZoomStep:   c.ZoomStep,
		FitPadding: c.FitPadding,
	}
	cfg.HistoryLimit = c.HistoryLimit
	return cfg
}

// Autosave returns the autosave interval. Zero disables autosave.
func (c *Config) Autosave() time.Duration {
	if c.AutosaveInterval == "" {
		return 0
	}
	d, err := time.ParseDuration(c.AutosaveInterval)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// DatabasePath returns the document database, ~/.whiteboard/boards.db by
// default.
func (c *Config) DatabasePath() (string, error) {
	if c.Database != "" {
		return c.Database, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "boards.db"), nil
}

// GetSavePath places filename in the save directory, creating it if
// needed. Without a save directory filename is returned unchanged.
func (c *Config) GetSavePath(filename string) string {
	if c.SaveDirectory == "" || filepath.IsAbs(filename) {
		return filename
	}
	os.MkdirAll(c.SaveDirectory, 0755)
	return filepath.Join(c.SaveDirectory, filename)
}
