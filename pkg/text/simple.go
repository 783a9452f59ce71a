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
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// 📝 ReplacementRule replaces every occurrence of From with To
type ReplacementRule struct {
	From string
	To   string
}

// 📝 ReplacementResult is the outcome of applying rules to a string
type ReplacementResult struct {
	Text             string
	WasModified      bool
	ReplacementCount int
}

// 🔄 Replace applies rules in order, each one to the output of the last
func Replace(text string, rules []ReplacementRule) ReplacementResult {
	result := ReplacementResult{Text: text}

	for _, rule := range rules {
		// Skip empty rules
		if rule.From == "" {
			continue
		}

		n := strings.Count(result.Text, rule.From)
		if n == 0 {
			continue
		}

		result.Text = strings.ReplaceAll(result.Text, rule.From, rule.To)
		result.WasModified = true
		result.ReplacementCount += n
	}

	return result
}

// 🏷️ NameRules returns the placeholders an archive name may use:
//
//	{date}   2006-01-02
//	{time}   150405
//	{count}  number of dropped items
//	{first}  first dropped path without directory or extension
func NameRules(now time.Time, items []string) []ReplacementRule {
	first := ""
	if len(items) > 0 {
		base := filepath.Base(items[0])
		first = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return []ReplacementRule{
		{From: "{date}", To: now.Format("2006-01-02")},
		{From: "{time}", To: now.Format("150405")},
		{From: "{count}", To: strconv.Itoa(len(items))},
		{From: "{first}", To: first},
	}
}

// 🏷️ ExpandName fills the placeholders in an archive name
func ExpandName(name string, now time.Time, items []string) string {
	if !strings.Contains(name, "{") {
		return name
	}
	return Replace(name, NameRules(now, items)).Text
}
