// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/walteh/dropzip/pkg/archive"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// Defaults applied by Validate
const (
	DefaultCompression = "deflate"
	DefaultDebounce    = 500 * time.Millisecond
	DefaultLogMaxSize  = 10 // megabytes
)

// 📁 DestinationArgs says where archives are copied
type DestinationArgs struct {
	Dir       string `json:"dir" yaml:"dir" toml:"dir"`
	Overwrite bool   `json:"overwrite,omitempty" yaml:"overwrite,omitempty" toml:"overwrite,omitempty"`
}

// 🗜️ ArchiveArgs configures how archives are built
type ArchiveArgs struct {
	Name        string   `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`                      // Base name, derived from the items when empty
	Compression string   `json:"compression,omitempty" yaml:"compression,omitempty" toml:"compression,omitempty"` // deflate or store
	Exclude     []string `json:"exclude,omitempty" yaml:"exclude,omitempty" toml:"exclude,omitempty"`             // nil means archive.DefaultExcludes
}

// 🪝 HookArgs are shell snippets run by the action
type HookArgs struct {
	AfterTransfer string `json:"after_transfer,omitempty" yaml:"after_transfer,omitempty" toml:"after_transfer,omitempty"`
	Clicked       string `json:"clicked,omitempty" yaml:"clicked,omitempty" toml:"clicked,omitempty"`
}

// 👀 WatchArgs configures the drop folder
type WatchArgs struct {
	Inbox    string `json:"inbox,omitempty" yaml:"inbox,omitempty" toml:"inbox,omitempty"`
	Debounce string `json:"debounce,omitempty" yaml:"debounce,omitempty" toml:"debounce,omitempty"`

	// DebounceInterval is Debounce parsed by Validate
	DebounceInterval time.Duration `json:"-" yaml:"-" toml:"-"`
}

// 📝 LogArgs configures the optional log file
type LogArgs struct {
	File       string `json:"file,omitempty" yaml:"file,omitempty" toml:"file,omitempty"`
	MaxSizeMB  int    `json:"max_size_mb,omitempty" yaml:"max_size_mb,omitempty" toml:"max_size_mb,omitempty"`
	MaxBackups int    `json:"max_backups,omitempty" yaml:"max_backups,omitempty" toml:"max_backups,omitempty"`
}

// 📚 Config represents the complete configuration
type Config struct {
	Destination DestinationArgs `json:"destination" yaml:"destination" toml:"destination"`
	Archive     ArchiveArgs     `json:"archive,omitempty" yaml:"archive,omitempty" toml:"archive,omitempty"`
	Hooks       HookArgs        `json:"hooks,omitempty" yaml:"hooks,omitempty" toml:"hooks,omitempty"`
	Watch       WatchArgs       `json:"watch,omitempty" yaml:"watch,omitempty" toml:"watch,omitempty"`
	Log         LogArgs         `json:"log,omitempty" yaml:"log,omitempty" toml:"log,omitempty"`
}

// 🎯 LoadFile reads and parses a config file without validating it, so
// callers can apply overrides first
func LoadFile(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// 🎯 Load loads and validates the configuration from a file
func Load(ctx context.Context, path string) (*Config, error) {
	cfg, err := LoadFile(ctx, path)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// 🔍 Validate checks the configuration, normalizes paths and fills defaults
func (cfg *Config) Validate() error {
	var err error

	// Check required fields
	if strings.TrimSpace(cfg.Destination.Dir) == "" {
		return errors.Errorf("destination.dir is required")
	}

	// Clean up paths
	if cfg.Destination.Dir, err = ExpandPath(cfg.Destination.Dir); err != nil {
		return errors.Errorf("destination.dir: %w", err)
	}
	if cfg.Watch.Inbox != "" {
		if cfg.Watch.Inbox, err = ExpandPath(cfg.Watch.Inbox); err != nil {
			return errors.Errorf("watch.inbox: %w", err)
		}
		if cfg.Watch.Inbox == cfg.Destination.Dir {
			return errors.Errorf("watch.inbox must differ from destination.dir")
		}
	}
	if cfg.Log.File != "" {
		if cfg.Log.File, err = ExpandPath(cfg.Log.File); err != nil {
			return errors.Errorf("log.file: %w", err)
		}
	}

	if strings.ContainsAny(cfg.Archive.Name, `/\`) {
		return errors.Errorf("archive.name must not contain path separators: %q", cfg.Archive.Name)
	}

	// Set defaults
	switch cfg.Archive.Compression {
	case "":
		cfg.Archive.Compression = DefaultCompression
	case "deflate", "store":
	default:
		return errors.Errorf("archive.compression must be deflate or store, got %q", cfg.Archive.Compression)
	}

	if cfg.Archive.Exclude == nil {
		cfg.Archive.Exclude = append([]string(nil), archive.DefaultExcludes...)
	}

	cfg.Watch.DebounceInterval = DefaultDebounce
	if cfg.Watch.Debounce != "" {
		d, err := time.ParseDuration(cfg.Watch.Debounce)
		if err != nil {
			return errors.Errorf("watch.debounce: %w", err)
		}
		if d < 0 {
			return errors.Errorf("watch.debounce must not be negative")
		}
		cfg.Watch.DebounceInterval = d
	}

	if cfg.Log.MaxSizeMB <= 0 {
		cfg.Log.MaxSizeMB = DefaultLogMaxSize
	}

	return nil
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	mode := "keep"
	if cfg.Destination.Overwrite {
		mode = "overwrite"
	}
	name := cfg.Archive.Name
	if name == "" {
		name = "<derived>"
	}
	return fmt.Sprintf("%s.zip -> %s (%s)", strings.TrimSuffix(name, ".zip"), cfg.Destination.Dir, mode)
}

// 🏠 ExpandPath expands a leading ~ and returns a clean absolute path
func ExpandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Errorf("finding home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Errorf("resolving %s: %w", path, err)
	}
	return abs, nil
}
