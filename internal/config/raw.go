package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		// Not present.
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawSize struct {
	Width  *int `yaml:"width"`
	Height *int `yaml:"height"`
}

type RawWindow struct {
	Title    *string  `yaml:"title"`
	AppID    *string  `yaml:"app_id"`
	Width    *int     `yaml:"width"`
	Height   *int     `yaml:"height"`
	Decorate *bool    `yaml:"decorate"`
	State    *string  `yaml:"state"`
	Output   *string  `yaml:"output"`
	MinSize  *RawSize `yaml:"min_size"`
	MaxSize  *RawSize `yaml:"max_size"`
}

type RawCursor struct {
	Theme *string `yaml:"theme"`
	Size  *int    `yaml:"size"`
}

type RawContent struct {
	Background *string `yaml:"background"`
}

// RawConfig is one YAML file as written: unset keys stay nil so files can
// be layered with include.
type RawConfig struct {
	Include  IncludeList `yaml:"include"`
	Display  *string     `yaml:"display"`
	Shell    *ShellMode  `yaml:"shell"`
	LogLevel *string     `yaml:"log_level"`
	Window   *RawWindow  `yaml:"window"`
	Cursor   *RawCursor  `yaml:"cursor"`
	Content  *RawContent `yaml:"content"`
}

// merge returns r with every key set in overlay replaced.
func (r RawConfig) merge(overlay RawConfig) RawConfig {
	out := r
	out.Include = nil
	out.Display = pick(r.Display, overlay.Display)
	out.Shell = pick(r.Shell, overlay.Shell)
	out.LogLevel = pick(r.LogLevel, overlay.LogLevel)

	if overlay.Window != nil {
		base := RawWindow{}
		if r.Window != nil {
			base = *r.Window
		}
		w := overlay.Window
		merged := RawWindow{
			Title:    pick(base.Title, w.Title),
			AppID:    pick(base.AppID, w.AppID),
			Width:    pick(base.Width, w.Width),
			Height:   pick(base.Height, w.Height),
			Decorate: pick(base.Decorate, w.Decorate),
			State:    pick(base.State, w.State),
			Output:   pick(base.Output, w.Output),
			MinSize:  mergeRawSize(base.MinSize, w.MinSize),
			MaxSize:  mergeRawSize(base.MaxSize, w.MaxSize),
		}
		out.Window = &merged
	}
	if overlay.Cursor != nil {
		base := RawCursor{}
		if r.Cursor != nil {
			base = *r.Cursor
		}
		out.Cursor = &RawCursor{
			Theme: pick(base.Theme, overlay.Cursor.Theme),
			Size:  pick(base.Size, overlay.Cursor.Size),
		}
	}
	if overlay.Content != nil {
		base := RawContent{}
		if r.Content != nil {
			base = *r.Content
		}
		out.Content = &RawContent{Background: pick(base.Background, overlay.Content.Background)}
	}
	return out
}

func mergeRawSize(base, overlay *RawSize) *RawSize {
	if overlay == nil {
		return base
	}
	if base == nil {
		return overlay
	}
	return &RawSize{
		Width:  pick(base.Width, overlay.Width),
		Height: pick(base.Height, overlay.Height),
	}
}

func pick[T any](base, overlay *T) *T {
	if overlay != nil {
		return overlay
	}
	return base
}
