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

package report

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/dropzip/pkg/action"
	"github.com/walteh/dropzip/pkg/archive"
	"github.com/walteh/dropzip/pkg/errs"
	"gitlab.com/tozd/go/errors"
)

// 🧪 drive runs a full successful invocation through rep
func drive(rep action.Reporter) {
	ctx := context.Background()
	rep.Begin(ctx, action.Dragged{Items: []archive.Item{
		archive.PathItem{Path: "/tmp/src/a.txt"},
		archive.TextItem{Text: "hello"},
	}})
	rep.Progress(ctx, 0, "archiving 2 item(s)")
	rep.Progress(ctx, 60, "archived 2 of 2")
	rep.Progress(ctx, 60, "archived 2 of 2")
	rep.Progress(ctx, 150, "done")
	rep.Succeeded(ctx, &action.Result{
		Invocation: "id-1",
		Kind:       action.KindDragged,
		Path:       "/dest/bundle.zip",
		Entries:    2,
		Removed:    1,
		Size:       2048,
		Checksum:   "abc",
	})
}

func TestConsole(t *testing.T) {
	// Disable color for testing
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name     string
		op       func(c *Console)
		wantLogs []string
		once     []string
	}{
		{
			name: "successful_bundle",
			op:   func(c *Console) { drive(c) },
			wantLogs: []string{
				"dropzip • bundling 2 item(s)",
				"    • a.txt",
				`    • text "hello"`,
				"   0% archiving 2 item(s)",
				"  60% archived 2 of 2",
				" 100% done",
				"✅ /dest/bundle.zip",
				"   2 entries, 2.0 KiB, 1 metadata entries removed",
			},
			once: []string{"archived 2 of 2"},
		},
		{
			name: "failure",
			op: func(c *Console) {
				c.Begin(context.Background(), action.Clicked{})
				c.Failed(context.Background(), errs.Conflict("/dest/bundle.zip already exists"))
			},
			wantLogs: []string{
				"dropzip • clicked",
				"❌ conflict: /dest/bundle.zip already exists",
			},
		},
		{
			name: "clicked_success",
			op: func(c *Console) {
				c.Begin(context.Background(), action.Clicked{})
				c.Succeeded(context.Background(), &action.Result{Kind: action.KindClicked, Path: "/dest"})
			},
			wantLogs: []string{
				"✅ destination ready: /dest",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			c := NewConsole(&buf, false)
			tt.op(c)

			output := buf.String()
			for _, want := range tt.wantLogs {
				assert.Contains(t, output, want, "output should contain %q", want)
			}
			for _, once := range tt.once {
				assert.Equal(t, 1, strings.Count(output, once), "%q should be printed once", once)
			}
		})
	}
}

func TestConsoleElidesLongItemLists(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	paths := make([]string, 0, maxItems+3)
	for i := 0; i < maxItems+3; i++ {
		paths = append(paths, "/src/file.txt")
	}

	var buf bytes.Buffer
	NewConsole(&buf, false).Begin(context.Background(), action.Dragged{Items: archive.Paths(paths...)})
	assert.Contains(t, buf.String(), "… and 3 more")
}

func TestJSONLines(t *testing.T) {
	var buf bytes.Buffer
	drive(NewJSONLines(&buf))
	NewJSONLines(&buf).Failed(context.Background(), errors.Errorf("transferring archive: %w", errs.Conflict("x exists")))

	var events []map[string]any
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		var ev map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &ev), "every line should be JSON")
		events = append(events, ev)
	}
	require.Len(t, events, 7)

	assert.Equal(t, "begin", events[0]["event"])
	assert.Equal(t, "dragged", events[0]["kind"])
	assert.Equal(t, []any{"/tmp/src/a.txt", `text "hello"`}, events[0]["items"])

	assert.Equal(t, "progress", events[4]["event"])
	assert.Equal(t, float64(100), events[4]["percent"], "percent should be clamped")

	assert.Equal(t, "succeeded", events[5]["event"])
	assert.Equal(t, "/dest/bundle.zip", events[5]["path"])
	assert.Equal(t, float64(2), events[5]["entries"])
	assert.Equal(t, "abc", events[5]["sha256"])

	assert.Equal(t, "failed", events[6]["event"])
	assert.Equal(t, "conflict", events[6]["error_kind"])
	assert.Equal(t, float64(5), events[6]["exit_code"])
	assert.Equal(t, "transferring archive: conflict: x exists", events[6]["error"])
}

func TestRecorderForwards(t *testing.T) {
	var buf bytes.Buffer
	rec := &Recorder{Next: NewJSONLines(&buf)}
	drive(rec)

	assert.Equal(t, []int{0, 60, 60, 150}, rec.Percents(), "recorder keeps raw values")
	require.Len(t, rec.Results(), 1)
	assert.Equal(t, "/dest/bundle.zip", rec.Results()[0].Path)
	assert.Empty(t, rec.Errors())
	assert.Equal(t, 6, strings.Count(buf.String(), "\n"), "events should be forwarded")

	rec.Reset()
	assert.Empty(t, rec.Events())
}

func TestHumanSize(t *testing.T) {
	assert.Equal(t, "512 B", humanSize(512))
	assert.Equal(t, "1.0 KiB", humanSize(1024))
	assert.Equal(t, "1.5 MiB", humanSize(1536*1024))
}

func TestTrackerKeepsOnlyLatestFailure(t *testing.T) {
	ctx := context.Background()
	rec := &Recorder{}
	tracker := &Tracker{Next: rec}

	first := errs.Conflict("a.zip already exists")
	tracker.Begin(ctx, action.Dragged{})
	tracker.Failed(ctx, first)
	assert.Equal(t, first, tracker.LastFailure())

	// a new invocation starts clean
	tracker.Begin(ctx, action.Dragged{})
	assert.Nil(t, tracker.LastFailure(), "begin should forget the previous failure")

	drive(tracker)
	assert.Nil(t, tracker.LastFailure(), "success should leave no failure")

	// every event still reaches Next
	assert.Len(t, rec.Errors(), 1)
	assert.Len(t, rec.Results(), 1)
}
