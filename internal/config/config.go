package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

// ShellMode selects the shell protocol generation used for the toplevel.
type ShellMode string

const (
	ShellAuto   ShellMode = "auto"   // Modern when the window manager supports it.
	ShellModern ShellMode = "modern" // EWMH driven: state feedback, moves, size hints.
	ShellLegacy ShellMode = "legacy" // ICCCM only: states applied locally.
)

// Initial window states accepted by window.state.
const (
	StateRegular    = "regular"
	StateMaximized  = "maximized"
	StateFullscreen = "fullscreen"
)

// Size is a content size in pixels.
type Size struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// WindowConfig describes the decorated demo window.
type WindowConfig struct {
	Title    string `yaml:"title"`
	AppID    string `yaml:"app_id"`
	Width    int    `yaml:"width"`  // content width, borders excluded
	Height   int    `yaml:"height"` // content height, title bar excluded
	Decorate bool   `yaml:"decorate"`
	State    string `yaml:"state"`
	// Output names the RandR output used for fullscreen; empty lets the
	// window manager choose.
	Output  string `yaml:"output,omitempty"`
	MinSize *Size  `yaml:"min_size,omitempty"`
	MaxSize *Size  `yaml:"max_size,omitempty"`
}

// CursorConfig selects the pointer cursor theme.
type CursorConfig struct {
	Theme string `yaml:"theme"`
	Size  int    `yaml:"size"`
}

// ContentConfig styles the demo content surface.
type ContentConfig struct {
	// Background is a hex colour such as "#2e3440".
	Background string `yaml:"background"`
}

// Config is the effective configuration of the csdframe host.
type Config struct {
	Display  string        `yaml:"display,omitempty"`
	Shell    ShellMode     `yaml:"shell"`
	LogLevel string        `yaml:"log_level"`
	Window   WindowConfig  `yaml:"window"`
	Cursor   CursorConfig  `yaml:"cursor"`
	Content  ContentConfig `yaml:"content"`
}

func DefaultConfig() *Config {
	return &Config{
		Shell:    ShellAuto,
		LogLevel: "info",
		Window: WindowConfig{
			Title:    "csdframe",
			AppID:    "csdframe",
			Width:    640,
			Height:   400,
			Decorate: true,
			State:    StateRegular,
		},
		Cursor: CursorConfig{
			Size: 24,
		},
		Content: ContentConfig{
			Background: "#2e3440",
		},
	}
}

// BackgroundColor returns the parsed content background.
func (c *Config) BackgroundColor() (colorful.Color, error) {
	col, err := colorful.Hex(c.Content.Background)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("invalid colour %q: %w", c.Content.Background, err)
	}
	return col, nil
}

// Save writes the configuration to path, creating its directory. Comments
// and includes of the source files are not preserved.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	switch c.Shell {
	case ShellAuto, ShellModern, ShellLegacy:
	default:
		return &ValidationError{Path: "shell", Err: fmt.Errorf("shell must be one of: auto, modern, legacy")}
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}

	if c.Window.Width <= 0 {
		return &ValidationError{Path: "window.width", Err: fmt.Errorf("width must be > 0")}
	}
	if c.Window.Height <= 0 {
		return &ValidationError{Path: "window.height", Err: fmt.Errorf("height must be > 0")}
	}
	switch c.Window.State {
	case StateRegular, StateMaximized, StateFullscreen:
	default:
		return &ValidationError{Path: "window.state", Err: fmt.Errorf("state must be one of: regular, maximized, fullscreen")}
	}
	if err := validateSize(c.Window.MinSize); err != nil {
		return &ValidationError{Path: "window.min_size", Err: err}
	}
	if err := validateSize(c.Window.MaxSize); err != nil {
		return &ValidationError{Path: "window.max_size", Err: err}
	}
	if lo, hi := c.Window.MinSize, c.Window.MaxSize; lo != nil && hi != nil {
		if lo.Width > hi.Width || lo.Height > hi.Height {
			return &ValidationError{Path: "window.min_size", Err: fmt.Errorf("min_size %dx%d exceeds max_size %dx%d", lo.Width, lo.Height, hi.Width, hi.Height)}
		}
	}

	if c.Cursor.Size <= 0 {
		return &ValidationError{Path: "cursor.size", Err: fmt.Errorf("size must be > 0")}
	}
	if _, err := c.BackgroundColor(); err != nil {
		return &ValidationError{Path: "content.background", Err: err}
	}
	return nil
}

func validateSize(s *Size) error {
	if s == nil {
		return nil
	}
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("width and height must be > 0, got %dx%d", s.Width, s.Height)
	}
	return nil
}
