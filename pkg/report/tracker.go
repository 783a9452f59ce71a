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
	"sync"

	"github.com/walteh/dropzip/pkg/action"
)

// 🎯 Tracker forwards to Next and remembers only the failure of the current
// invocation, so long running hosts do not grow with every event
type Tracker struct {
	Next action.Reporter

	mu   sync.Mutex
	last error
}

var _ action.Reporter = (*Tracker)(nil)

func (t *Tracker) Begin(ctx context.Context, inv action.Invocation) {
	t.mu.Lock()
	t.last = nil
	t.mu.Unlock()
	if t.Next != nil {
		t.Next.Begin(ctx, inv)
	}
}

func (t *Tracker) Progress(ctx context.Context, percent int, message string) {
	if t.Next != nil {
		t.Next.Progress(ctx, percent, message)
	}
}

func (t *Tracker) Succeeded(ctx context.Context, res *action.Result) {
	if t.Next != nil {
		t.Next.Succeeded(ctx, res)
	}
}

func (t *Tracker) Failed(ctx context.Context, err error) {
	t.mu.Lock()
	t.last = err
	t.mu.Unlock()
	if t.Next != nil {
		t.Next.Failed(ctx, err)
	}
}

// LastFailure returns the failure of the latest invocation, or nil
func (t *Tracker) LastFailure() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}
