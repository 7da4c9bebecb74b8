package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

type SourceKind string

const (
	SourceDefault SourceKind = "default"
	SourceFile    SourceKind = "file"
	SourceEnv     SourceKind = "env"
)

// Source records where a config value came from.
type Source struct {
	Kind   SourceKind
	Name   string // defaults set or environment variable
	File   string
	Line   int
	Column int
}

type LoadResult struct {
	Config  *Config
	Sources map[string]Source // YAML path -> last writer
	Files   []string          // loaded files, includes before their includer
}

func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "csdframe", "config.yaml"), nil
}

// ConfigPath returns $CSDFRAME_CONFIG when set, the default path otherwise.
func ConfigPath() (string, error) {
	if path := strings.TrimSpace(os.Getenv(EnvConfig)); path != "" {
		return path, nil
	}
	return DefaultConfigPath()
}

// Load reads the configuration from the standard location.
func Load() (*Config, error) {
	res, err := LoadWithSources()
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

// LoadWithSources is Load plus the origin of every value.
func LoadWithSources() (*LoadResult, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads path and its includes, then applies environment
// overrides. A missing file yields the defaults.
func LoadFromPath(path string) (*LoadResult, error) {
	return loadFromPath(path, os.LookupEnv)
}

func loadFromPath(path string, lookup func(string) (string, bool)) (*LoadResult, error) {
	l := &fileLoader{
		visited: make(map[string]bool),
		sources: make(map[string]Source),
	}
	var raw RawConfig

	switch _, err := os.Stat(path); {
	case err == nil:
		if raw, err = l.load(path, nil); err != nil {
			return nil, err
		}
	case !errors.Is(err, fs.ErrNotExist):
		return nil, err
	}

	cfg, err := BuildEffectiveConfig(raw)
	if err != nil {
		return nil, withSource(err, l.sources)
	}
	for key, src := range applyEnv(cfg, lookup) {
		l.sources[key] = src
	}
	if err := cfg.Validate(); err != nil {
		return nil, withSource(err, l.sources)
	}
	return &LoadResult{Config: cfg, Sources: l.sources, Files: l.files}, nil
}

// fileLoader walks a config file and its includes depth first. Included
// files are merged first and the including file wins.
type fileLoader struct {
	visited map[string]bool
	sources map[string]Source
	files   []string
}

func (l *fileLoader) load(path string, chain []string) (RawConfig, error) {
	file, err := canonicalPath(path)
	if err != nil {
		return RawConfig{}, err
	}
	if slices.Contains(chain, file) {
		return RawConfig{}, fmt.Errorf("include cycle detected: %s -> %s", strings.Join(chain, " -> "), file)
	}
	if l.visited[file] {
		return RawConfig{}, nil
	}
	l.visited[file] = true

	data, err := os.ReadFile(file)
	if err != nil {
		return RawConfig{}, fmt.Errorf("%s: failed to read: %w", file, err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return RawConfig{}, fmt.Errorf("%s: failed to parse yaml: %w", file, err)
	}
	var own RawConfig
	if err := decodeStrict(data, &own); err != nil {
		return RawConfig{}, fmt.Errorf("%s: %w", file, err)
	}

	root := rootMapping(&doc)
	var merged RawConfig
	for _, ref := range includeRefs(root, file) {
		paths, err := expandInclude(file, ref.value)
		if err != nil {
			return RawConfig{}, fmt.Errorf("%s:%d:%d: include %q: %w", file, ref.source.Line, ref.source.Column, ref.value, err)
		}
		for _, p := range paths {
			inc, err := l.load(p, append(chain, file))
			if err != nil {
				return RawConfig{}, err
			}
			merged = merged.merge(inc)
		}
	}

	recordSources(root, file, "", l.sources)
	l.files = append(l.files, file)
	return merged.merge(own), nil
}

func decodeStrict(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func canonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real, nil
	}
	return abs, nil
}

// expandInclude resolves an include entry against the including file. A
// directory expands to its *.yaml and *.yml files in name order.
func expandInclude(from, include string) ([]string, error) {
	path, err := resolveInclude(from, include)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml", "*.YAML", "*.YML"} {
		matches, err := filepath.Glob(filepath.Join(path, pattern))
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			if fi, err := os.Stat(m); err == nil && !fi.IsDir() && !slices.Contains(files, m) {
				files = append(files, m)
			}
		}
	}
	slices.Sort(files)
	return files, nil
}

func resolveInclude(from, include string) (string, error) {
	switch {
	case include == "":
		return "", errors.New("path is empty")
	case include == "~" || strings.HasPrefix(include, "~/"):
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, strings.TrimPrefix(include[1:], "/")), nil
	case filepath.IsAbs(include):
		return include, nil
	}
	return filepath.Join(filepath.Dir(from), include), nil
}

func rootMapping(doc *yaml.Node) *yaml.Node {
	node := doc
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode {
		return nil
	}
	return node
}

func fileSource(file string, node *yaml.Node) Source {
	return Source{Kind: SourceFile, File: file, Line: node.Line, Column: node.Column}
}

// wholeValues are mappings that are only valid when given in full, so the
// file that writes them owns every field below.
var wholeValues = map[string]bool{
	"window.min_size": true,
	"window.max_size": true,
}

// recordSources stores the position of every leaf under prefix and of the
// whole-value mappings. Plain sections are not recorded: their fields may
// still come from the defaults.
func recordSources(node *yaml.Node, file, prefix string, out map[string]Source) {
	if node == nil || node.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i].Value, node.Content[i+1]
		if prefix != "" {
			key = prefix + "." + key
		}
		if val.Kind != yaml.MappingNode || wholeValues[key] {
			out[key] = fileSource(file, val)
		}
		recordSources(val, file, key, out)
	}
}

type includeRef struct {
	value  string
	source Source
}

// includeRefs reads the top-level include key, a string or a list of them.
func includeRefs(root *yaml.Node, file string) []includeRef {
	if root == nil {
		return nil
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != "include" {
			continue
		}
		val := root.Content[i+1]
		items := []*yaml.Node{val}
		if val.Kind == yaml.SequenceNode {
			items = val.Content
		}
		var refs []includeRef
		for _, item := range items {
			if item.Kind == yaml.ScalarNode {
				refs = append(refs, includeRef{value: item.Value, source: fileSource(file, item)})
			}
		}
		return refs
	}
	return nil
}

// withSource fills in the origin of a ValidationError's path.
func withSource(err error, sources map[string]Source) error {
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Path == "" {
		return err
	}
	if src, ok := sources[verr.Path]; ok {
		verr.Source = src
	}
	return err
}
