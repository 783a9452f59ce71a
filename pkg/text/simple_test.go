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
package text

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReplace(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		rules     []ReplacementRule
		want      string
		wantCount int
	}{
		{
			name:      "single_rule",
			text:      "a-{x}-{x}",
			rules:     []ReplacementRule{{From: "{x}", To: "1"}},
			want:      "a-1-1",
			wantCount: 2,
		},
		{
			name:      "rules_chain",
			text:      "foo",
			rules:     []ReplacementRule{{From: "foo", To: "bar"}, {From: "bar", To: "baz"}},
			want:      "baz",
			wantCount: 2,
		},
		{
			name:  "empty_rule_skipped",
			text:  "foo",
			rules: []ReplacementRule{{From: "", To: "x"}},
			want:  "foo",
		},
		{
			name:  "no_match",
			text:  "foo",
			rules: []ReplacementRule{{From: "bar", To: "x"}},
			want:  "foo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Replace(tt.text, tt.rules)
			assert.Equal(t, tt.want, got.Text)
			assert.Equal(t, tt.wantCount, got.ReplacementCount)
			assert.Equal(t, tt.wantCount > 0, got.WasModified)
		})
	}
}

func TestExpandName(t *testing.T) {
	now := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	items := []string{"/tmp/drop/report.final.pdf", "/tmp/drop/b.txt"}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "no_placeholders", in: "bundle", want: "bundle"},
		{name: "date_and_time", in: "drop-{date}-{time}", want: "drop-2024-03-09-140507"},
		{name: "count", in: "{count}-files", want: "2-files"},
		{name: "first", in: "{first}+more", want: "report.final+more"},
		{name: "unknown_placeholder_kept", in: "x-{nope}", want: "x-{nope}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandName(tt.in, now, items))
		})
	}
}

func TestExpandNameWithoutItems(t *testing.T) {
	assert.Equal(t, "-0", ExpandName("{first}-{count}", time.Now(), nil))
}
