// Package manifest handles sol.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// FileName is the manifest file looked up in a project directory.
const FileName = "sol.toml"

// Defaults
const (
	DefaultEntryClass    = "Main"
	DefaultEntrySelector = "run"
	DefaultCachePath     = ".sol/cache.db"
	DefaultCacheMaxAge   = "720h"
)

// Manifest represents a sol.toml project configuration.
type Manifest struct {
	Program Program `toml:"program"`
	IO      IO      `toml:"io"`
	Cache   Cache   `toml:"cache"`
	Log     Log     `toml:"log"`

	// Dir is the directory containing the sol.toml file (set at load time).
	Dir string `toml:"-"`
}

// Program names the source document and its entry point.
type Program struct {
	Source        string `toml:"source"`
	EntryClass    string `toml:"entry-class"`
	EntrySelector string `toml:"entry-selector"`
}

// IO configures the program's standard input.
type IO struct {
	Input string `toml:"input"`
}

// Cache configures the program image cache.
type Cache struct {
	Enabled *bool  `toml:"enabled"`
	Path    string `toml:"path"`
	// MaxAge is a Go duration; images older than this are pruned when the
	// cache is opened. "0" keeps everything.
	MaxAge string `toml:"max-age"`
}

// Log configures logging.
type Log struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// Default returns the configuration used when no sol.toml exists.
func Default() *Manifest {
	m := &Manifest{}
	m.applyDefaults()
	if dir, err := os.Getwd(); err == nil {
		m.Dir = dir
	}
	return m
}

// Load parses a sol.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	m.applyDefaults()
	if _, err := m.CacheMaxAge(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &m, nil
}

func (m *Manifest) applyDefaults() {
	if m.Program.EntryClass == "" {
		m.Program.EntryClass = DefaultEntryClass
	}
	if m.Program.EntrySelector == "" {
		m.Program.EntrySelector = DefaultEntrySelector
	}
	if m.Cache.Enabled == nil {
		enabled := true
		m.Cache.Enabled = &enabled
	}
	if m.Cache.Path == "" {
		m.Cache.Path = DefaultCachePath
	}
	if m.Cache.MaxAge == "" {
		m.Cache.MaxAge = DefaultCacheMaxAge
	}
}

// FindAndLoad walks up from startDir to find a sol.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// CacheEnabled reports whether the image cache should be used.
func (m *Manifest) CacheEnabled() bool {
	return m.Cache.Enabled == nil || *m.Cache.Enabled
}

// CacheMaxAge returns the age after which cached images are pruned.
// Zero disables pruning.
func (m *Manifest) CacheMaxAge() (time.Duration, error) {
	if m.Cache.MaxAge == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(m.Cache.MaxAge)
	if err != nil {
		return 0, fmt.Errorf("invalid cache max-age %q: %w", m.Cache.MaxAge, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid cache max-age %q: negative", m.Cache.MaxAge)
	}
	return d, nil
}

// Resolve returns path relative to the manifest directory. Absolute and
// empty paths are returned unchanged.
func (m *Manifest) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(m.Dir, path)
}

// SourcePath returns the absolute path of the program source, or "".
func (m *Manifest) SourcePath() string {
	return m.Resolve(m.Program.Source)
}

// InputPath returns the absolute path of the input file, or "".
func (m *Manifest) InputPath() string {
	return m.Resolve(m.IO.Input)
}

// CachePath returns the absolute path of the cache database.
func (m *Manifest) CachePath() string {
	return m.Resolve(m.Cache.Path)
}

// LogPath returns the absolute path of the log file, or "" for stderr.
func (m *Manifest) LogPath() string {
	return m.Resolve(m.Log.File)
}
