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
	"context"
	"io"
	"sync"

	"github.com/rs/zerolog"
	"github.com/walteh/dropzip/pkg/action"
	"github.com/walteh/dropzip/pkg/errs"
)

// 📜 JSONLines writes one JSON object per event, for hosts that parse output
type JSONLines struct {
	mu  sync.Mutex
	log zerolog.Logger
}

var _ action.Reporter = (*JSONLines)(nil)

// 🏭 NewJSONLines creates a reporter writing to w
func NewJSONLines(w io.Writer) *JSONLines {
	return &JSONLines{log: zerolog.New(w).With().Timestamp().Logger()}
}

func (j *JSONLines) Begin(ctx context.Context, inv action.Invocation) {
	j.mu.Lock()
	defer j.mu.Unlock()

	ev := j.log.Log().Str("event", "begin")
	switch inv := inv.(type) {
	case action.Dragged:
		items := make([]string, 0, len(inv.Items))
		for _, item := range inv.Items {
			items = append(items, item.String())
		}
		ev = ev.Str("kind", inv.Kind().String()).Strs("items", items)
	case nil:
		ev = ev.Str("kind", action.KindUnknown.String())
	default:
		ev = ev.Str("kind", inv.Kind().String())
	}
	ev.Send()
}

func (j *JSONLines) Progress(ctx context.Context, percent int, message string) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.log.Log().Str("event", "progress").Int("percent", clamp(percent)).Str("message", message).Send()
}

func (j *JSONLines) Succeeded(ctx context.Context, res *action.Result) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.log.Log().
		Str("event", "succeeded").
		Str("invocation", res.Invocation).
		Str("kind", res.Kind.String()).
		Str("path", res.Path).
		Int("entries", res.Entries).
		Int("removed", res.Removed).
		Int64("size", res.Size).
		Str("sha256", res.Checksum).
		Send()
}

func (j *JSONLines) Failed(ctx context.Context, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	kind := "error"
	if k := errs.KindOf(err); k != nil {
		kind = k.Error()
	}
	j.log.Log().
		Str("event", "failed").
		Str("error", err.Error()).
		Str("error_kind", kind).
		Int("exit_code", errs.ExitCode(err)).
		Send()
}
