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

package opts

import (
	"bytes"
	"context"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/dropzip/pkg/action"
	"github.com/walteh/dropzip/pkg/errs"
	"github.com/walteh/dropzip/pkg/log"
	"gitlab.com/tozd/go/errors"
)

func TestReported(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	ctx := context.Background()
	o := &RootOpts{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}

	batchErr := errs.Conflict("inbox.zip already exists")
	assert.False(t, o.Reported(batchErr), "nothing reported before the reporter exists")

	rep := o.Reporter()
	rep.Begin(ctx, action.Dragged{})
	rep.Failed(ctx, batchErr)

	assert.True(t, o.Reported(batchErr), "the reported failure was shown")
	assert.True(t, o.Reported(errors.Errorf("running command: %w", batchErr)), "wrapping keeps it reported")

	// a watcher error after a failed batch still needs printing
	watchErr := errors.Errorf("fsnotify event channel closed")
	assert.False(t, o.Reported(watchErr))

	rep.Begin(ctx, action.Dragged{})
	assert.False(t, o.Reported(batchErr), "a new invocation forgets older failures")
}

func TestClose(t *testing.T) {
	o := &RootOpts{}
	require.NoError(t, o.Close(), "closing without a logger is fine")

	logger, err := log.New(log.Options{File: t.TempDir() + "/dropzip.log"})
	require.NoError(t, err)
	o.Logger = logger

	require.NoError(t, o.Close())
	assert.Nil(t, o.Logger)
	require.NoError(t, o.Close(), "closing twice is fine")
}

func TestOrchestratorNeedsDestination(t *testing.T) {
	o := &RootOpts{}
	_, err := o.Orchestrator()
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}
