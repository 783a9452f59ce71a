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
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/walteh/dropzip/pkg/action"
	"github.com/walteh/dropzip/pkg/archive"
)

// 🎨 Display configuration
const (
	itemIndent   = 4  // spaces to indent dropped items
	percentWidth = 4  // width of the percent column
	maxItems     = 10 // dropped items listed before eliding
)

// 🖥️ Console reports to a terminal. Interactive consoles get a live progress
// bar, others get one line per progress step.
type Console struct {
	out         io.Writer
	interactive bool

	mu   sync.Mutex
	bar  *pterm.ProgressbarPrinter
	last string
}

var _ action.Reporter = (*Console)(nil)

// 🏭 NewConsole creates a console reporter writing to out
func NewConsole(out io.Writer, interactive bool) *Console {
	return &Console{out: out, interactive: interactive}
}

// Begin prints the invocation header
func (c *Console) Begin(ctx context.Context, inv action.Invocation) {
	c.mu.Lock()
	defer c.mu.Unlock()

	name := color.New(color.Bold, color.FgCyan).Sprint("dropzip")
	switch inv := inv.(type) {
	case action.Dragged:
		fmt.Fprintf(c.out, "\n%s %s\n\n", name, color.New(color.Faint).Sprintf("• bundling %d item(s)", len(inv.Items)))
		c.printItems(inv.Items)
	default:
		kind := action.KindUnknown
		if inv != nil {
			kind = inv.Kind()
		}
		fmt.Fprintf(c.out, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+kind.String()))
	}

	c.last = ""
	if c.interactive {
		bar, err := pterm.DefaultProgressbar.
			WithTotal(100).
			WithTitle("dropzip").
			WithWriter(c.out).
			WithRemoveWhenDone(true).
			Start()
		if err != nil {
			zerolog.Ctx(ctx).Debug().Err(err).Msg("starting progress bar")
			return
		}
		c.bar = bar
	}
}

func (c *Console) printItems(items []archive.Item) {
	for i, item := range items {
		if i == maxItems {
			fmt.Fprintf(c.out, "%*s%s\n", itemIndent, "", color.New(color.Faint).Sprintf("… and %d more", len(items)-maxItems))
			break
		}
		symbol := color.New(color.FgBlue).Sprint("•")
		label := item.String()
		if p, ok := item.(archive.PathItem); ok {
			label = filepath.Base(p.Path)
		}
		fmt.Fprintf(c.out, "%*s%s %s\n", itemIndent, "", symbol, label)
	}
	if len(items) > 0 {
		fmt.Fprintln(c.out)
	}
}

// Progress advances the bar or prints a progress line
func (c *Console) Progress(ctx context.Context, percent int, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	percent = clamp(percent)

	if c.bar != nil {
		if delta := percent - c.bar.Current; delta > 0 {
			c.bar.Add(delta)
		}
		c.bar.UpdateTitle(message)
		return
	}

	if message == c.last {
		return
	}
	c.last = message
	fmt.Fprintf(c.out, "%*d%% %s\n", percentWidth, percent, color.New(color.Faint).Sprint(message))
}

// Succeeded prints the final archive path
func (c *Console) Succeeded(ctx context.Context, res *action.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopBar()

	if res.Kind == action.KindClicked {
		fmt.Fprintf(c.out, "✅ %s\n", color.New(color.FgGreen).Sprintf("destination ready: %s", res.Path))
		return
	}

	fmt.Fprintf(c.out, "✅ %s\n", color.New(color.FgGreen).Sprint(res.Path))
	detail := fmt.Sprintf("%d entries, %s", res.Entries, humanSize(res.Size))
	if res.Removed > 0 {
		detail += fmt.Sprintf(", %d metadata entries removed", res.Removed)
	}
	fmt.Fprintf(c.out, "%*s%s\n", itemIndent-1, "", color.New(color.Faint).Sprint(detail))
}

// Failed prints the error verbatim
func (c *Console) Failed(ctx context.Context, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopBar()
	fmt.Fprintf(c.out, "❌ %s\n", color.New(color.FgRed).Sprint(err.Error()))
}

func (c *Console) stopBar() {
	if c.bar == nil {
		return
	}
	c.bar.Stop()
	c.bar = nil
}

func clamp(percent int) int {
	switch {
	case percent < 0:
		return 0
	case percent > 100:
		return 100
	default:
		return percent
	}
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
