// Package config loads the optional cartforge.toml file that configures
// ambient concerns: where the repository cache lives, how long a cached
// repository goes before it's fetched again, and how many VCS operations
// may run concurrently across projects.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"

	"github.com/cartforge/cartforge"
)

// Config holds the settings the shared repository cache and VCS
// concurrency lane depend on.
type Config struct {
	// CacheRoot is the directory holding one subdirectory per cached
	// project. Defaults to "$HOME/.cartforge/cache".
	CacheRoot string

	// FetchWindow is how long a cached repository is trusted without being
	// fetched again. Zero means fetch at most once per process run.
	FetchWindow time.Duration

	// VCSConcurrency bounds how many cross-project VCS operations may run
	// at once; same-project operations are always serialized regardless of
	// this setting.
	VCSConcurrency int
}

// Default returns the configuration used when no cartforge.toml is present.
func Default() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Config{
		CacheRoot:      filepath.Join(home, ".cartforge", "cache"),
		FetchWindow:    0,
		VCSConcurrency: 4,
	}
}

// tomlMapper accumulates the first error encountered while reading keys off
// a toml.Tree, so callers can chain reads without checking an error after
// every one.
type tomlMapper struct {
	tree *toml.Tree
	err  error
}

func (m *tomlMapper) string(key, def string) string {
	if m.err != nil {
		return def
	}
	raw := m.tree.GetDefault(key, def)
	v, ok := raw.(string)
	if !ok {
		m.err = errors.Errorf("invalid type for %s, should be a string, but it is a %T", key, raw)
		return def
	}
	return v
}

func (m *tomlMapper) int(key string, def int) int {
	if m.err != nil {
		return def
	}
	raw := m.tree.GetDefault(key, int64(def))
	v, ok := raw.(int64)
	if !ok {
		m.err = errors.Errorf("invalid type for %s, should be an integer, but it is a %T", key, raw)
		return def
	}
	return int(v)
}

func (m *tomlMapper) duration(key string, def time.Duration) time.Duration {
	if m.err != nil {
		return def
	}
	raw := m.tree.GetDefault(key, "")
	s, ok := raw.(string)
	if !ok || s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		m.err = errors.Wrapf(err, "invalid duration for %s", key)
		return def
	}
	return d
}

// Load reads path as a cartforge.toml, overlaying its settings onto
// Default(). A missing file is not an error: Default() is returned as is.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, cartforge.Wrap(err, cartforge.ReadFailed, "reading %s", path)
	}

	tree, err := toml.LoadBytes(data)
	if err != nil {
		return Config{}, cartforge.Wrap(err, cartforge.ParseError, "parsing %s", path)
	}

	mapper := &tomlMapper{tree: tree}
	cacheRoot := mapper.string("cache_root", cfg.CacheRoot)
	fetchWindow := mapper.duration("fetch_window", cfg.FetchWindow)
	vcsConcurrency := mapper.int("vcs_concurrency", cfg.VCSConcurrency)
	if mapper.err != nil {
		return Config{}, cartforge.Wrap(mapper.err, cartforge.ParseError, "reading %s", path)
	}

	cfg.CacheRoot = cacheRoot
	cfg.FetchWindow = fetchWindow
	cfg.VCSConcurrency = vcsConcurrency
	return cfg, nil
}
