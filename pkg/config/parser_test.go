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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 🧪 TestParserRegistration tests the parser registration system
func TestParserRegistration(t *testing.T) {
	// Save original parsers
	originalParsers := parsers
	defer func() {
		parsers = originalParsers
	}()

	// Reset parsers
	parsers = nil

	// Create mock parser
	mockParser := &struct {
		Parser
		canParse bool
	}{
		canParse: true,
	}

	// Test registration
	Register(mockParser)
	assert.Len(t, parsers, 1, "should have 1 parser registered")
	assert.Equal(t, mockParser, parsers[0], "registered parser should match")
}

// 🧪 TestParserSelection tests parser selection by file extension
func TestParserSelection(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     Parser
	}{
		{name: "yaml_file", filename: "dropzip.yaml", want: &YAMLParser{}},
		{name: "yml_file", filename: "dropzip.yml", want: &YAMLParser{}},
		{name: "hcl_file", filename: "dropzip.hcl", want: &HCLParser{}},
		{name: "json_file", filename: "dropzip.json", want: &JSONParser{}},
		{name: "toml_file", filename: "dropzip.toml", want: &TOMLParser{}},
		{name: "unknown_extension", filename: "dropzip.txt", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetParser(tt.filename)
			if tt.want == nil {
				assert.Nil(t, got, "should return nil for unknown extension")
				return
			}
			require.NotNil(t, got, "should return a parser")
			assert.IsType(t, tt.want, got, "should return correct parser type")
		})
	}
}

// 🧪 fullCheck asserts the values shared by every full_* fixture
func fullCheck(t *testing.T, cfg *Config) {
	t.Helper()
	assert.Equal(t, "/tmp/public", cfg.Destination.Dir, "destination dir should match")
	assert.True(t, cfg.Destination.Overwrite, "overwrite should be true")
	assert.Equal(t, "bundle", cfg.Archive.Name, "archive name should match")
	assert.Equal(t, "store", cfg.Archive.Compression, "compression should match")
	assert.Equal(t, []string{"*.tmp", ".DS_Store"}, cfg.Archive.Exclude, "excludes should match")
	assert.Equal(t, "echo $DROPZIP_ARCHIVE", cfg.Hooks.AfterTransfer, "after_transfer hook should match")
	assert.Equal(t, "/tmp/inbox", cfg.Watch.Inbox, "inbox should match")
	assert.Equal(t, "2s", cfg.Watch.Debounce, "debounce should match")
	assert.Equal(t, "/tmp/dropzip.log", cfg.Log.File, "log file should match")
	assert.Equal(t, 5, cfg.Log.MaxSizeMB, "log size should match")
}

// 🧪 TestParsers tests every format against equivalent fixtures
func TestParsers(t *testing.T) {
	tests := []struct {
		name        string
		parser      Parser
		config      string
		wantErr     bool
		errContains string
		check       func(t *testing.T, cfg *Config)
	}{
		{
			name:   "full_hcl",
			parser: &HCLParser{},
			config: `
destination {
  dir       = "/tmp/public"
  overwrite = true
}
archive {
  name        = "bundle"
  compression = "store"
  exclude     = ["*.tmp", ".DS_Store"]
}
hooks {
  after_transfer = "echo $DROPZIP_ARCHIVE"
}
watch {
  inbox    = "/tmp/inbox"
  debounce = "2s"
}
log {
  file        = "/tmp/dropzip.log"
  max_size_mb = 5
}
`,
			check: fullCheck,
		},
		{
			name:   "full_yaml",
			parser: &YAMLParser{},
			config: `
destination:
  dir: /tmp/public
  overwrite: true
archive:
  name: bundle
  compression: store
  exclude:
    - "*.tmp"
    - .DS_Store
hooks:
  after_transfer: echo $DROPZIP_ARCHIVE
watch:
  inbox: /tmp/inbox
  debounce: 2s
log:
  file: /tmp/dropzip.log
  max_size_mb: 5
`,
			check: fullCheck,
		},
		{
			name:   "full_json",
			parser: &JSONParser{},
			config: `{
  "destination": {"dir": "/tmp/public", "overwrite": true},
  "archive": {"name": "bundle", "compression": "store", "exclude": ["*.tmp", ".DS_Store"]},
  "hooks": {"after_transfer": "echo $DROPZIP_ARCHIVE"},
  "watch": {"inbox": "/tmp/inbox", "debounce": "2s"},
  "log": {"file": "/tmp/dropzip.log", "max_size_mb": 5}
}`,
			check: fullCheck,
		},
		{
			name:   "full_toml",
			parser: &TOMLParser{},
			config: `
[destination]
dir = "/tmp/public"
overwrite = true

[archive]
name = "bundle"
compression = "store"
exclude = ["*.tmp", ".DS_Store"]

[hooks]
after_transfer = "echo $DROPZIP_ARCHIVE"

[watch]
inbox = "/tmp/inbox"
debounce = "2s"

[log]
file = "/tmp/dropzip.log"
max_size_mb = 5
`,
			check: fullCheck,
		},
		{
			name:   "hcl_env_interpolation",
			parser: &HCLParser{},
			config: `
destination {
  dir = "${env.DROPZIP_TEST_HOME}/Public"
}
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "/home/tester/Public", cfg.Destination.Dir, "env should be interpolated")
			},
		},
		{
			name:   "hcl_minimal_keeps_nil_excludes",
			parser: &HCLParser{},
			config: `
destination {
  dir = "/tmp/public"
}
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Nil(t, cfg.Archive.Exclude, "missing excludes should stay nil")
				assert.False(t, cfg.Destination.Overwrite)
			},
		},
		{
			name:   "hcl_empty_excludes",
			parser: &HCLParser{},
			config: `
destination {
  dir = "/tmp/public"
}
archive {
  exclude = []
}
`,
			check: func(t *testing.T, cfg *Config) {
				assert.NotNil(t, cfg.Archive.Exclude, "explicit empty excludes should not be nil")
				assert.Empty(t, cfg.Archive.Exclude)
			},
		},
		{
			name:   "hcl_without_destination",
			parser: &HCLParser{},
			config: `
watch {
  inbox = "~/Drop"
}
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Empty(t, cfg.Destination.Dir, "destination can be left to flags")
				assert.Equal(t, "~/Drop", cfg.Watch.Inbox)
			},
		},
		{
			name:   "hcl_destination_without_dir",
			parser: &HCLParser{},
			config: `
destination {
  overwrite = true
}
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Empty(t, cfg.Destination.Dir)
				assert.True(t, cfg.Destination.Overwrite)
			},
		},
		{
			name:   "invalid_hcl_syntax",
			parser: &HCLParser{},
			config: `
destination {
  dir =
}`,
			wantErr:     true,
			errContains: "parsing HCL",
		},
		{
			name:   "invalid_block_type",
			parser: &HCLParser{},
			config: `
destination {
  dir = "/tmp"
}
unknown_block {
  foo = "bar"
}`,
			wantErr:     true,
			errContains: "decoding HCL",
		},
		{
			name:   "unknown_yaml_field",
			parser: &YAMLParser{},
			config: `
destination:
  dir: /tmp
  colour: blue
`,
			wantErr:     true,
			errContains: "parsing YAML",
		},
		{
			name:        "unknown_json_field",
			parser:      &JSONParser{},
			config:      `{"destination": {"dir": "/tmp"}, "provider": {}}`,
			wantErr:     true,
			errContains: "parsing JSON",
		},
		{
			name:   "unknown_toml_field",
			parser: &TOMLParser{},
			config: `
[destination]
dir = "/tmp"
speed = 11
`,
			wantErr:     true,
			errContains: "parsing TOML",
		},
	}

	t.Setenv("DROPZIP_TEST_HOME", "/home/tester")
	ctx := context.Background()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := tt.parser.Parse(ctx, []byte(tt.config))
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}

			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}
