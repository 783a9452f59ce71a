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

// Package hook runs user supplied shell snippets in-process.
package hook

import (
	"bytes"
	"context"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/dropzip/pkg/errs"
	"gitlab.com/tozd/go/errors"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// 🪝 Runner executes a hook script with extra environment variables
type Runner interface {
	Run(ctx context.Context, name, script string, env map[string]string) error
}

// 🐚 Shell runs hooks with a POSIX shell interpreter, no external shell needed
type Shell struct {
	Dir    string    // Working directory, empty for the current one
	Stdout io.Writer // Defaults to os.Stdout
	Stderr io.Writer // Defaults to os.Stderr
}

var _ Runner = (*Shell)(nil)

// NewShell returns a Shell writing to the process stdio
func NewShell() *Shell {
	return &Shell{Stdout: os.Stdout, Stderr: os.Stderr}
}

// 🏃 Run parses and runs script. A non-zero exit status is reported as an
// errs.ErrHook error carrying the status; parse errors are invalid input.
func (s *Shell) Run(ctx context.Context, name, script string, env map[string]string) error {
	logger := zerolog.Ctx(ctx)

	if strings.TrimSpace(script) == "" {
		return nil
	}

	prog, err := syntax.NewParser().Parse(strings.NewReader(script), name)
	if err != nil {
		return errs.Wrap(errs.ErrInvalidInput, err, "parsing %s hook", name)
	}

	var stderr bytes.Buffer
	opts := []interp.RunnerOption{
		interp.StdIO(strings.NewReader(""), writerOr(s.Stdout, os.Stdout), io.MultiWriter(writerOr(s.Stderr, os.Stderr), &stderr)),
		interp.Env(expand.ListEnviron(environ(env)...)),
	}
	if s.Dir != "" {
		opts = append(opts, interp.Dir(s.Dir))
	}

	runner, err := interp.New(opts...)
	if err != nil {
		return errors.Errorf("creating interpreter: %w", err)
	}

	logger.Debug().Str("hook", name).Msg("running hook")

	if err := runner.Run(ctx, prog); err != nil {
		if status, ok := interp.IsExitStatus(err); ok {
			return errs.New(errs.ErrHook, "%s hook exited with status %d%s", name, uint8(status), tail(stderr.String()))
		}
		return errs.Wrap(errs.ErrHook, err, "running %s hook", name)
	}

	logger.Debug().Str("hook", name).Msg("hook finished")
	return nil
}

// environ overlays env on the process environment in a stable order
func environ(env map[string]string) []string {
	out := os.Environ()
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = append(out, k+"="+env[k])
	}
	return out
}

// tail returns the last line of stderr for the error message
func tail(stderr string) string {
	stderr = strings.TrimSpace(stderr)
	if stderr == "" {
		return ""
	}
	lines := strings.Split(stderr, "\n")
	return ": " + lines[len(lines)-1]
}

func writerOr(w, fallback io.Writer) io.Writer {
	if w == nil {
		return fallback
	}
	return w
}
