package config

import (
	"fmt"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Source.Kind == SourceEnv && e.Source.Name != "" {
		return fmt.Sprintf("$%s: %s: %v", e.Source.Name, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// BuildEffectiveConfig layers raw over the defaults. Size limits given with
// only one dimension are rejected so a partial limit cannot pass as zero.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	set(&cfg.Display, raw.Display)
	set(&cfg.Shell, raw.Shell)
	set(&cfg.LogLevel, raw.LogLevel)

	if w := raw.Window; w != nil {
		set(&cfg.Window.Title, w.Title)
		set(&cfg.Window.AppID, w.AppID)
		set(&cfg.Window.Width, w.Width)
		set(&cfg.Window.Height, w.Height)
		set(&cfg.Window.Decorate, w.Decorate)
		set(&cfg.Window.State, w.State)
		set(&cfg.Window.Output, w.Output)

		var err error
		if cfg.Window.MinSize, err = effectiveSize("window.min_size", w.MinSize); err != nil {
			return nil, err
		}
		if cfg.Window.MaxSize, err = effectiveSize("window.max_size", w.MaxSize); err != nil {
			return nil, err
		}
	}
	if c := raw.Cursor; c != nil {
		set(&cfg.Cursor.Theme, c.Theme)
		set(&cfg.Cursor.Size, c.Size)
	}
	if c := raw.Content; c != nil {
		set(&cfg.Content.Background, c.Background)
	}
	return cfg, nil
}

func effectiveSize(path string, raw *RawSize) (*Size, error) {
	if raw == nil {
		return nil, nil
	}
	if raw.Width == nil || raw.Height == nil {
		return nil, &ValidationError{Path: path, Err: fmt.Errorf("both width and height are required")}
	}
	return &Size{Width: *raw.Width, Height: *raw.Height}, nil
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
