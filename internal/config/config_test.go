package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{EnvConfig, EnvLogLevel, EnvShell, EnvDisplay} {
		t.Setenv(name, "")
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.Shell != ShellAuto || !cfg.Window.Decorate {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Window.Width != 640 || len(res.Files) != 0 {
		t.Fatalf("expected defaults and no files, got %+v files %v", res.Config.Window, res.Files)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, path, "# empty\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Window.Title != "csdframe" {
		t.Fatalf("expected default title, got %q", res.Config.Window.Title)
	}
}

func TestLoadFromPath_WindowSettingsAndExplain(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
shell: legacy
window:
  title: "editor"
  width: 800
  min_size:
    width: 200
    height: 100
cursor:
  theme: Adwaita
`
	writeConfig(t, path, strings.TrimSpace(data)+"\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.Shell != ShellLegacy || cfg.Window.Title != "editor" || cfg.Window.Width != 800 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Window.Height != 400 {
		t.Fatalf("unset height should keep default 400, got %d", cfg.Window.Height)
	}
	if cfg.Window.MinSize == nil || *cfg.Window.MinSize != (Size{Width: 200, Height: 100}) {
		t.Fatalf("min_size = %+v", cfg.Window.MinSize)
	}
	if cfg.Window.MaxSize != nil {
		t.Fatalf("max_size should stay unset, got %+v", cfg.Window.MaxSize)
	}

	val, src, err := Explain(res, "window.min_size.width")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if val != 200 || src.Kind != SourceFile || src.Line != 6 {
		t.Fatalf("explain = %#v %#v", val, src)
	}

	_, src, err = Explain(res, "window.height")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if src.Kind != SourceDefault {
		t.Fatalf("expected default source for window.height, got %#v", src)
	}
	// cursor is in the file, cursor.size is not.
	if _, src, _ = Explain(res, "cursor.size"); src.Kind != SourceDefault {
		t.Fatalf("expected default source for cursor.size, got %#v", src)
	}
	if _, src, _ = Explain(res, "window.min_size"); src.Kind != SourceFile || src.Line != 6 {
		t.Fatalf("expected window.min_size from line 6, got %#v", src)
	}

	if _, _, err := Explain(res, "window.bogus"); err == nil {
		t.Fatal("expected unknown path error")
	}
}

func TestLoadFromPath_StrictUnknownKeyErrors(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, path, "window:\n  colour: red\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "colour") && !strings.Contains(err.Error(), "field") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Fatalf("expected error to include file path, got %v", err)
	}
}

func TestLoadFromPath_IncludeDirectoryOrderAndMainOverrides(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	// config.d loaded first, in sorted order.
	configD := filepath.Join(dir, "config.d")
	if err := os.MkdirAll(configD, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeConfig(t, filepath.Join(configD, "10-base.yaml"), "window:\n  width: 300\n  height: 300\n")
	writeConfig(t, filepath.Join(configD, "20-override.yaml"), "window:\n  width: 310\n")

	// Main file overrides includes.
	path := filepath.Join(dir, "config.yaml")
	writeConfig(t, path, "include:\n  - config.d\nwindow:\n  width: 320\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Window.Width != 320 || res.Config.Window.Height != 300 {
		t.Fatalf("expected 320x300, got %dx%d", res.Config.Window.Width, res.Config.Window.Height)
	}
	if len(res.Files) != 3 || filepath.Base(res.Files[2]) != "config.yaml" {
		t.Fatalf("expected includes then config.yaml, got %v", res.Files)
	}
	if src := res.Sources["window.height"]; filepath.Base(src.File) != "10-base.yaml" {
		t.Fatalf("window.height source = %+v, want 10-base.yaml", src)
	}
	if src := res.Sources["window.width"]; filepath.Base(src.File) != "config.yaml" {
		t.Fatalf("window.width source = %+v, want config.yaml", src)
	}
}

func TestLoadFromPath_IncludeMissingPathHasContext(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, path, "include:\n  - missing.yaml\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "include") || !strings.Contains(err.Error(), "missing.yaml") {
		t.Fatalf("expected include error, got %v", err)
	}
}

func TestLoadFromPath_IncludeCycleDetection(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	a := filepath.Join(dir, "a.yaml")
	b := filepath.Join(dir, "b.yaml")
	writeConfig(t, a, "include: b.yaml\n")
	writeConfig(t, b, "include: a.yaml\n")

	_, err := LoadFromPath(a)
	if err == nil {
		t.Fatalf("expected cycle error")
	}
	if !strings.Contains(err.Error(), "include cycle") {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestLoadFromPath_ValidationErrorHasSource(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, path, "log_level: info\nshell: wayland\n")

	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Path != "shell" || verr.Source.Line != 2 {
		t.Fatalf("unexpected validation error %#v", verr)
	}
	if !strings.Contains(err.Error(), path+":2:") {
		t.Fatalf("expected file:line prefix, got %v", err)
	}
}

func TestLoadFromPath_PartialSizeRejected(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, path, "window:\n  max_size:\n    width: 500\n")

	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Path != "window.max_size" {
		t.Fatalf("expected window.max_size error, got %v", err)
	}
}

func TestLoadFromPath_EnvOverrides(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, path, "shell: modern\nlog_level: info\n")
	t.Setenv(EnvShell, "Legacy")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvDisplay, ":3")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Shell != ShellLegacy || res.Config.LogLevel != "debug" || res.Config.Display != ":3" {
		t.Fatalf("env not applied: %+v", res.Config)
	}
	_, src, err := Explain(res, "shell")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if src.Kind != SourceEnv || src.Name != EnvShell {
		t.Fatalf("expected env source, got %#v", src)
	}
}

func TestLoadFromPath_InvalidEnvNamesVariable(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvShell, "tiling")

	_, err := LoadFromPath(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil || !strings.Contains(err.Error(), "$"+EnvShell) {
		t.Fatalf("expected error naming $%s, got %v", EnvShell, err)
	}
}

func TestConfigPath_EnvWins(t *testing.T) {
	t.Setenv(EnvConfig, "/etc/csdframe.yaml")
	path, err := ConfigPath()
	if err != nil {
		t.Fatalf("ConfigPath: %v", err)
	}
	if path != "/etc/csdframe.yaml" {
		t.Fatalf("ConfigPath = %q", path)
	}
}

func TestLoadDotEnv_DoesNotOverrideSetVariables(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	writeConfig(t, envFile, "CSDFRAME_TEST_SET=file\nCSDFRAME_TEST_UNSET=file\n")
	t.Setenv("CSDFRAME_TEST_SET", "process")
	t.Setenv("CSDFRAME_TEST_UNSET", "")
	os.Unsetenv("CSDFRAME_TEST_UNSET")

	if err := LoadDotEnv(filepath.Join(dir, "missing.env"), envFile); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("CSDFRAME_TEST_SET"); got != "process" {
		t.Fatalf("set variable overridden: %q", got)
	}
	if got := os.Getenv("CSDFRAME_TEST_UNSET"); got != "file" {
		t.Fatalf("unset variable not loaded: %q", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"log level", func(c *Config) { c.LogLevel = "trace" }, "log_level"},
		{"width", func(c *Config) { c.Window.Width = 0 }, "window.width"},
		{"state", func(c *Config) { c.Window.State = "minimized" }, "window.state"},
		{"min size", func(c *Config) { c.Window.MinSize = &Size{Width: 0, Height: 10} }, "window.min_size"},
		{"min above max", func(c *Config) {
			c.Window.MinSize = &Size{Width: 500, Height: 10}
			c.Window.MaxSize = &Size{Width: 400, Height: 400}
		}, "window.min_size"},
		{"cursor size", func(c *Config) { c.Cursor.Size = 0 }, "cursor.size"},
		{"background", func(c *Config) { c.Content.Background = "teal" }, "content.background"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			var verr *ValidationError
			if err := cfg.Validate(); !errors.As(err, &verr) || verr.Path != tt.path {
				t.Fatalf("Validate() = %v, want error at %s", err, tt.path)
			}
		})
	}
}

func TestSave_RoundTripsThroughLoad(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Window.Title = "saved"
	cfg.Window.MaxSize = &Size{Width: 1000, Height: 800}
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Window.Title != "saved" || res.Config.Window.MaxSize == nil || res.Config.Window.MaxSize.Width != 1000 {
		t.Fatalf("saved config not loaded back: %+v", res.Config.Window)
	}
}

func TestBackgroundColor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Content.Background = "#ff0000"
	col, err := cfg.BackgroundColor()
	if err != nil {
		t.Fatalf("BackgroundColor: %v", err)
	}
	r, g, b := col.RGB255()
	if r != 255 || g != 0 || b != 0 {
		t.Fatalf("BackgroundColor = %d,%d,%d", r, g, b)
	}
}
