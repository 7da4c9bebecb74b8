package config

import (
	"fmt"
	"strings"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths include:
//
//	display
//	shell
//	log_level
//	window.title
//	window.width
//	window.min_size.width
//	cursor.theme
//	content.background
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}

	// Exact-path source wins, then the closest parent written as a whole.
	for p := path; p != ""; p = parentPath(p) {
		if src, ok := res.Sources[p]; ok {
			return value, src, nil
		}
	}
	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

func parentPath(path string) string {
	i := strings.LastIndex(path, ".")
	if i < 0 {
		return ""
	}
	return path[:i]
}

func lookupValue(cfg *Config, path string) (any, error) {
	parts := strings.Split(path, ".")
	leaf := func(v any) (any, error) {
		if len(parts) != 1 {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		return v, nil
	}

	switch parts[0] {
	case "display":
		return leaf(cfg.Display)
	case "shell":
		return leaf(string(cfg.Shell))
	case "log_level":
		return leaf(cfg.LogLevel)
	case "window":
		if len(parts) == 1 {
			return cfg.Window, nil
		}
		return lookupWindow(cfg.Window, parts[1:], path)
	case "cursor":
		if len(parts) == 1 {
			return cfg.Cursor, nil
		}
		switch {
		case len(parts) == 2 && parts[1] == "theme":
			return cfg.Cursor.Theme, nil
		case len(parts) == 2 && parts[1] == "size":
			return cfg.Cursor.Size, nil
		}
	case "content":
		if len(parts) == 1 {
			return cfg.Content, nil
		}
		if len(parts) == 2 && parts[1] == "background" {
			return cfg.Content.Background, nil
		}
	}
	return nil, fmt.Errorf("unknown path: %s", path)
}

func lookupWindow(w WindowConfig, parts []string, path string) (any, error) {
	if len(parts) == 1 {
		switch parts[0] {
		case "title":
			return w.Title, nil
		case "app_id":
			return w.AppID, nil
		case "width":
			return w.Width, nil
		case "height":
			return w.Height, nil
		case "decorate":
			return w.Decorate, nil
		case "state":
			return w.State, nil
		case "output":
			return w.Output, nil
		case "min_size":
			return w.MinSize, nil
		case "max_size":
			return w.MaxSize, nil
		}
		return nil, fmt.Errorf("unknown path: %s", path)
	}

	if len(parts) != 2 {
		return nil, fmt.Errorf("unknown path: %s", path)
	}
	var size *Size
	switch parts[0] {
	case "min_size":
		size = w.MinSize
	case "max_size":
		size = w.MaxSize
	default:
		return nil, fmt.Errorf("unknown path: %s", path)
	}
	if parts[1] != "width" && parts[1] != "height" {
		return nil, fmt.Errorf("unknown path: %s", path)
	}
	if size == nil {
		return nil, nil
	}
	if parts[1] == "width" {
		return size.Width, nil
	}
	return size.Height, nil
}
