package runtimepath

import (
	"fmt"
	"os"
)

// Dir returns the per-user runtime directory. In order: $XDG_RUNTIME_DIR,
// /run/user/<uid> when it exists, or /tmp/csdframe-runtime-<uid>, created
// with mode 0700.
func Dir() (string, error) {
	return dir(os.Getenv, os.Getuid())
}

func dir(getenv func(string) string, uid int) (string, error) {
	if d := getenv("XDG_RUNTIME_DIR"); d != "" {
		return d, nil
	}
	if d := fmt.Sprintf("/run/user/%d", uid); isDir(d) {
		return d, nil
	}
	d := fmt.Sprintf("/tmp/csdframe-runtime-%d", uid)
	if err := os.MkdirAll(d, 0o700); err != nil {
		return "", fmt.Errorf("create runtime dir: %w", err)
	}
	return d, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// AnonymousFile creates a file in the runtime directory and unlinks it, so
// it lives only as long as open descriptors refer to it.
func AnonymousFile(pattern string) (*os.File, error) {
	d, err := Dir()
	if err != nil {
		return nil, err
	}
	f, err := os.CreateTemp(d, pattern)
	if err != nil {
		return nil, fmt.Errorf("create runtime file: %w", err)
	}
	if err := os.Remove(f.Name()); err != nil {
		f.Close()
		return nil, fmt.Errorf("unlink runtime file: %w", err)
	}
	return f, nil
}
