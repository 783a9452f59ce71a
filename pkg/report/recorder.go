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

// EventType identifies a recorded reporter call
type EventType int

const (
	EventBegin EventType = iota
	EventProgress
	EventSucceeded
	EventFailed
)

// String returns a string representation of EventType
func (e EventType) String() string {
	switch e {
	case EventBegin:
		return "begin"
	case EventProgress:
		return "progress"
	case EventSucceeded:
		return "succeeded"
	case EventFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Event is one recorded reporter call
type Event struct {
	Type       EventType
	Invocation action.Invocation
	Percent    int
	Message    string
	Result     *action.Result
	Err        error
}

// 📼 Recorder keeps every event in memory. Wrap another reporter with Next to
// forward events as well.
type Recorder struct {
	Next action.Reporter

	mu     sync.Mutex
	events []Event
}

var _ action.Reporter = (*Recorder)(nil)

func (r *Recorder) record(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *Recorder) Begin(ctx context.Context, inv action.Invocation) {
	r.record(Event{Type: EventBegin, Invocation: inv})
	if r.Next != nil {
		r.Next.Begin(ctx, inv)
	}
}

func (r *Recorder) Progress(ctx context.Context, percent int, message string) {
	r.record(Event{Type: EventProgress, Percent: percent, Message: message})
	if r.Next != nil {
		r.Next.Progress(ctx, percent, message)
	}
}

func (r *Recorder) Succeeded(ctx context.Context, res *action.Result) {
	r.record(Event{Type: EventSucceeded, Result: res})
	if r.Next != nil {
		r.Next.Succeeded(ctx, res)
	}
}

func (r *Recorder) Failed(ctx context.Context, err error) {
	r.record(Event{Type: EventFailed, Err: err})
	if r.Next != nil {
		r.Next.Failed(ctx, err)
	}
}

// Events returns a copy of the recorded events
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Percents returns every reported progress value in order
func (r *Recorder) Percents() []int {
	var out []int
	for _, ev := range r.Events() {
		if ev.Type == EventProgress {
			out = append(out, ev.Percent)
		}
	}
	return out
}

// Results returns every successful result in order
func (r *Recorder) Results() []*action.Result {
	var out []*action.Result
	for _, ev := range r.Events() {
		if ev.Type == EventSucceeded {
			out = append(out, ev.Result)
		}
	}
	return out
}

// Errors returns every reported failure in order
func (r *Recorder) Errors() []error {
	var out []error
	for _, ev := range r.Events() {
		if ev.Type == EventFailed {
			out = append(out, ev.Err)
		}
	}
	return out
}

// Reset drops all recorded events
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
