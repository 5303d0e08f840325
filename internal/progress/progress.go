// Package progress renders a single-line progress bar for batch extraction.
package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
)

const minRedraw = 100 * time.Millisecond

// Bar is a collector.Reporter that redraws one line on w
type Bar struct {
	mu        sync.Mutex
	w         io.Writer
	bar       progress.Model
	total     int
	current   int
	startTime time.Time
	lastDraw  time.Time
}

// NewBar creates a progress bar writing to w (usually stderr)
func NewBar(w io.Writer) *Bar {
	return &Bar{
		w:   w,
		bar: progress.New(progress.WithDefaultGradient(), progress.WithWidth(30)),
	}
}

// Start resets the bar for a batch of total files
func (b *Bar) Start(total int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.total = total
	b.current = 0
	b.startTime = time.Now()
	b.lastDraw = time.Time{}
	b.draw()
}

// Increment marks one more file as processed
func (b *Bar) Increment() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current++
	if b.current == b.total || time.Since(b.lastDraw) >= minRedraw {
		b.draw()
	}
}

// Done finishes the line
func (b *Bar) Done() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.draw()
	_, _ = fmt.Fprintln(b.w)
}

func (b *Bar) draw() {
	b.lastDraw = time.Now()
	percent := 0.0
	if b.total > 0 {
		percent = float64(b.current) / float64(b.total)
	}
	_, _ = fmt.Fprintf(b.w, "\r%s %d/%d | %s", b.bar.ViewAs(percent), b.current, b.total, b.eta())
}

func (b *Bar) eta() string {
	elapsed := time.Since(b.startTime)
	switch {
	case b.total == 0 || b.current == b.total:
		return fmt.Sprintf("done in %s", FormatDuration(elapsed))
	case b.current == 0:
		return "ETA: calculating..."
	default:
		perFile := elapsed / time.Duration(b.current)
		return fmt.Sprintf("ETA: %s", FormatDuration(perFile*time.Duration(b.total-b.current)))
	}
}

// FormatDuration formats a duration as 12s, 3m4s or 1h2m
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%.0fs", d.Seconds())
	case d < time.Hour:
		minutes := int(d.Minutes())
		seconds := int(d.Seconds()) - 60*minutes
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	default:
		hours := int(d.Hours())
		minutes := int(d.Minutes()) - 60*hours
		return fmt.Sprintf("%dh%dm", hours, minutes)
	}
}
