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
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/natefinch/lumberjack.v2"
)

// 🎨 Display configuration
const (
	timeFormat     = time.Kitchen
	fileMode       = 0o600
	defaultMaxSize = 10 // megabytes
)

// 🎯 Options configures the process logger
type Options struct {
	Console    io.Writer // Human readable output, usually stderr. Nil disables it.
	Debug      bool      // Log at debug level instead of info
	Quiet      bool      // Console only shows warnings and errors, the file is unaffected
	JSON       bool      // Write raw JSON to Console instead of the pretty console format
	File       string    // Optional rotating log file, always JSON
	MaxSizeMB  int       // Size before the log file rotates
	MaxBackups int       // Rotated files to keep, zero keeps all
}

// 🎯 Logger owns the zerolog logger and any file it writes to
type Logger struct {
	zerolog.Logger
	file *lumberjack.Logger
}

// 🏭 New creates a new logger
func New(opts Options) (*Logger, error) {
	level := zerolog.InfoLevel
	if opts.Debug {
		level = zerolog.DebugLevel
	}

	var writers []io.Writer
	if opts.Console != nil {
		var console io.Writer = opts.Console
		if !opts.JSON {
			console = zerolog.ConsoleWriter{
				Out:        opts.Console,
				NoColor:    color.NoColor,
				TimeFormat: timeFormat,
			}
		}
		if opts.Quiet {
			console = &zerolog.FilteredLevelWriter{
				Writer: zerolog.LevelWriterAdapter{Writer: console},
				Level:  zerolog.WarnLevel,
			}
		}
		writers = append(writers, console)
	}

	l := &Logger{}
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, errors.Errorf("creating log directory: %w", err)
		}
		// lumberjack opens lazily, touch the file so a bad path fails here
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, fileMode)
		if err != nil {
			return nil, errors.Errorf("opening log file: %w", err)
		}
		_ = f.Close()

		maxSize := opts.MaxSizeMB
		if maxSize <= 0 {
			maxSize = defaultMaxSize
		}
		l.file = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    maxSize,
			MaxBackups: opts.MaxBackups,
		}
		writers = append(writers, l.file)
	}

	var out io.Writer = io.Discard
	switch len(writers) {
	case 0:
	case 1:
		out = writers[0]
	default:
		out = zerolog.MultiLevelWriter(writers...)
	}

	l.Logger = zerolog.New(out).Level(level).With().Timestamp().Logger()
	return l, nil
}

// 🎯 WithContext attaches the logger to ctx so zerolog.Ctx finds it
func (l *Logger) WithContext(ctx context.Context) context.Context {
	return l.Logger.WithContext(ctx)
}

// 🧹 Close flushes and closes the log file, if any
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	if err := l.file.Close(); err != nil {
		return errors.Errorf("closing log file: %w", err)
	}
	return nil
}
