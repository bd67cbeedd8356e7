// Package display draws the plan widget on a terminal status line.
package display

import (
	"fmt"
	"io"
	"sync"

	"github.com/pablasso/plantrack/internal/plan"
	"github.com/pablasso/plantrack/internal/tui/components"
)

// Display keeps the last widget and renders it as a single terminal line.
// It implements tracker.Display and is safe for concurrent use.
type Display struct {
	mu       sync.Mutex
	writer   io.Writer
	widget   *plan.WidgetData
	lastLine string
}

// New creates a Display writing to w.
func New(w io.Writer) *Display {
	return &Display{writer: w}
}

// SetWidget replaces the widget and redraws. A nil widget clears the line.
func (d *Display) SetWidget(data *plan.WidgetData) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if data == nil {
		d.widget = nil
		d.render("")
		return
	}
	w := *data
	w.Icons = append([]string(nil), data.Icons...)
	d.widget = &w
	d.render(components.RenderWidget(w))
}

// Widget returns a copy of the current widget, or nil when hidden.
func (d *Display) Widget() *plan.WidgetData {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.widget == nil {
		return nil
	}
	w := *d.widget
	w.Icons = append([]string(nil), d.widget.Icons...)
	return &w
}

// PrintAbove prints a message above the status line and redraws the widget.
func (d *Display) PrintAbove(format string, args ...interface{}) {
	d.mu.Lock()
	defer d.mu.Unlock()

	line := d.lastLine
	d.clearLine()
	fmt.Fprintf(d.writer, format+"\n", args...)
	d.lastLine = ""
	d.render(line)
}

// Finish ends the status line with a newline so later output starts clean.
func (d *Display) Finish() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.lastLine != "" {
		fmt.Fprintln(d.writer)
		d.lastLine = ""
	}
}

// render draws line unless it is already on screen. Caller holds mu.
func (d *Display) render(line string) {
	if line == d.lastLine {
		return
	}
	d.lastLine = line
	if line == "" {
		d.clearLine()
		return
	}
	// Move to start of line, clear it, write new content
	fmt.Fprintf(d.writer, "\r\033[K%s", line)
}

func (d *Display) clearLine() {
	fmt.Fprint(d.writer, "\r\033[K")
}
