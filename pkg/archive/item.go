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

package archive

import "fmt"

// 📥 Item is one thing dropped by the host: a path or a piece of text
type Item interface {
	fmt.Stringer
	isItem()
}

// 📄 PathItem is a dropped file or directory
type PathItem struct {
	Path string
}

func (PathItem) isItem() {}

func (p PathItem) String() string { return p.Path }

// 📝 TextItem is dropped text, stored in the archive as a clipping
type TextItem struct {
	Text string
}

func (TextItem) isItem() {}

func (t TextItem) String() string {
	const max = 32
	if runes := []rune(t.Text); len(runes) > max {
		return fmt.Sprintf("text %q…", string(runes[:max]))
	}
	return fmt.Sprintf("text %q", t.Text)
}

// Paths is a helper that wraps each path in a PathItem
func Paths(paths ...string) []Item {
	items := make([]Item, 0, len(paths))
	for _, p := range paths {
		items = append(items, PathItem{Path: p})
	}
	return items
}

// 📦 Request describes one archive to build
type Request struct {
	Items []Item // Ordered inputs
	Name  string // Base name of the archive, ".zip" is appended when missing
}

// ✅ Result describes a built archive
type Result struct {
	Path     string // Absolute path of the archive
	Entries  int    // Number of file entries written
	Size     int64  // Archive size in bytes
	Checksum string // SHA-256 of the archive
	Success  bool
}
