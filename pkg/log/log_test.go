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

package log

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	// Disable color for testing
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name     string
		opts     Options
		log      func(l *Logger)
		wantLogs []string
		notLogs  []string
	}{
		{
			name: "console_info",
			opts: Options{},
			log: func(l *Logger) {
				l.Info().Str("path", "/tmp/a.zip").Msg("archive built")
				l.Debug().Msg("hidden detail")
			},
			wantLogs: []string{"INF", "archive built", "path=/tmp/a.zip"},
			notLogs:  []string{"hidden detail"},
		},
		{
			name: "console_debug",
			opts: Options{Debug: true},
			log: func(l *Logger) {
				l.Debug().Msg("visible detail")
			},
			wantLogs: []string{"DBG", "visible detail"},
		},
		{
			name: "quiet_console",
			opts: Options{Quiet: true},
			log: func(l *Logger) {
				l.Info().Msg("routine detail")
				l.Error().Msg("something broke")
			},
			wantLogs: []string{"ERR", "something broke"},
			notLogs:  []string{"routine detail"},
		},
		{
			name: "json_console",
			opts: Options{JSON: true},
			log: func(l *Logger) {
				l.Warn().Int("removed", 2).Msg("stripped entries")
			},
			wantLogs: []string{`"level":"warn"`, `"removed":2`, `"message":"stripped entries"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.opts.Console = &buf

			logger, err := New(tt.opts)
			require.NoError(t, err, "creating logger should succeed")
			defer logger.Close()

			tt.log(logger)

			got := buf.String()
			for _, want := range tt.wantLogs {
				assert.Contains(t, got, want, "output should contain %q", want)
			}
			for _, not := range tt.notLogs {
				assert.NotContains(t, got, not, "output should not contain %q", not)
			}
		})
	}
}

func TestLoggerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "dropzip.log")

	var console bytes.Buffer
	logger, err := New(Options{Console: &console, Quiet: true, File: path, MaxSizeMB: 1, MaxBackups: 2})
	require.NoError(t, err, "creating logger should succeed")

	ctx := logger.WithContext(context.Background())
	zerolog.Ctx(ctx).Info().Str("invocation", "abc").Msg("done")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err, "log file should exist")

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)
	assert.Empty(t, console.String(), "quiet console should skip info")

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "abc", entry["invocation"])
	assert.Equal(t, "done", entry["message"])
}

func TestLoggerFileErrors(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	_, err := New(Options{File: filepath.Join(blocker, "dropzip.log")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating log directory")
}

func TestLoggerWithoutOutputs(t *testing.T) {
	logger, err := New(Options{})
	require.NoError(t, err)
	logger.Info().Msg("discarded")
	assert.NoError(t, logger.Close())
}
