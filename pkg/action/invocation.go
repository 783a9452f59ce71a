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

package action

import (
	"context"

	"github.com/walteh/dropzip/pkg/archive"
)

// 🏷️ Kind tells invocations apart
type Kind int

const (
	KindUnknown Kind = iota
	KindDragged      // Items were dropped on the action
	KindClicked      // The action was clicked without items
)

// String returns a string representation of Kind
func (k Kind) String() string {
	switch k {
	case KindDragged:
		return "dragged"
	case KindClicked:
		return "clicked"
	default:
		return "unknown"
	}
}

// 🎯 Invocation is one trigger of the action, each kind carries its own payload
type Invocation interface {
	Kind() Kind
	isInvocation()
}

// 📥 Dragged carries the dropped items
type Dragged struct {
	Items []archive.Item
	Name  string // Optional archive name, overrides the configured one
}

func (Dragged) Kind() Kind { return KindDragged }
func (Dragged) isInvocation() {}

// 🖱️ Clicked is an invocation without items
type Clicked struct{}

func (Clicked) Kind() Kind { return KindClicked }
func (Clicked) isInvocation() {}

// ✅ Result is what the host is told on success
type Result struct {
	Invocation string // Invocation id
	Kind       Kind
	Path       string // Final archive path, or the destination for clicks
	Entries    int    // Entries left in the archive
	Removed    int    // Entries stripped by the filter
	Size       int64
	Checksum   string // SHA-256 of the final archive
}

// 📣 Reporter is implemented by the host adapter and receives progress and
// the terminal outcome of an invocation. Exactly one of Succeeded or Failed
// is called per invocation, after Begin.
type Reporter interface {
	Begin(ctx context.Context, inv Invocation)
	Progress(ctx context.Context, percent int, message string)
	Succeeded(ctx context.Context, res *Result)
	Failed(ctx context.Context, err error)
}
