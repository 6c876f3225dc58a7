package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"igdm/pkg/table"
)

// ProgressDisplay prints a single updating line while a batch runs
type ProgressDisplay struct {
	mu        sync.Mutex
	out       io.Writer
	total     int
	done      int
	failed    int
	current   string
	startTime time.Time
	isDebug   bool
}

// NewProgressDisplay creates a new progress display
func NewProgressDisplay(out io.Writer, total int, debug bool) *ProgressDisplay {
	if out == nil {
		out = Output
	}
	return &ProgressDisplay{
		out:       out,
		total:     total,
		startTime: time.Now(),
		isDebug:   debug,
	}
}

// Observe records a finished row. Its signature matches batch.Observer.
func (p *ProgressDisplay) Observe(index, total int, row table.Row) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total = total
	p.done = index + 1
	p.current = row.Username
	if row.Failed {
		p.failed++
	}

	if p.isDebug {
		p.printDebugRow(row)
		return
	}
	p.printProgress()
}

// printProgress prints the minimal progress line
func (p *ProgressDisplay) printProgress() {
	line := fmt.Sprintf("%s [%s] %d/%d • %s",
		Magenta("[GENERATING]"),
		bar(p.done, p.total, 20),
		p.done,
		p.total,
		p.calculateETA(),
	)

	if p.current != "" {
		line += fmt.Sprintf(" • %s", Cyan(p.current))
	}

	if p.failed > 0 {
		line += fmt.Sprintf(" • %s", Red(fmt.Sprintf("%d failed", p.failed)))
	}

	// Clear line and print
	fmt.Fprintf(p.out, "\r%s\r%s", strings.Repeat(" ", 100), line)
}

// printDebugRow prints one line per row in debug mode
func (p *ProgressDisplay) printDebugRow(row table.Row) {
	mark := Green("✓")
	if row.Failed {
		mark = Red("✗")
	}

	dm := row.GeneratedDM
	if len(dm) > 50 {
		dm = dm[:47] + "..."
	}
	fmt.Fprintf(p.out, "%s %s • %s\n", mark, row.Username, Dim(strings.ReplaceAll(dm, "\n", " ")))
}

// Complete prints the run summary
func (p *ProgressDisplay) Complete() {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.out, "\n\n%s Generated %d messages in %s\n",
		Green("✓"),
		p.done-p.failed,
		formatDuration(time.Since(p.startTime)),
	)

	if p.failed > 0 {
		fmt.Fprintf(p.out, "  %s %d rows failed\n", Dim("•"), p.failed)
	}
}

// calculateETA estimates time remaining
func (p *ProgressDisplay) calculateETA() string {
	if p.done == 0 {
		return "calculating..."
	}

	remaining := p.total - p.done
	perRow := time.Since(p.startTime) / time.Duration(p.done)
	return formatDuration(perRow * time.Duration(remaining))
}

func bar(done, total, width int) string {
	filled := 0
	if total > 0 {
		filled = done * width / total
	}
	if filled > width {
		filled = width
	}
	return strings.Repeat("━", filled) + strings.Repeat("─", width-filled)
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	} else if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	} else {
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	}
}
