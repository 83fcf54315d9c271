package ui

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// ProgressBar renders row-count progress for long writes.
type ProgressBar struct {
	ui      *UI
	bar     progress.Model
	label   string
	total   int64
	current int64
	start   time.Time
	// lastPct is the last whole percentage printed in plain mode.
	lastPct int
	mu      sync.Mutex
}

// NewProgressBar creates a new progress bar.
func (u *UI) NewProgressBar(label string, total int64) *ProgressBar {
	bar := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(30),
		progress.WithoutPercentage(),
	)

	return &ProgressBar{
		ui:      u,
		bar:     bar,
		label:   label,
		total:   total,
		start:   time.Now(),
		lastPct: -1,
	}
}

// Update sets the current progress value. The total may change when the
// producer learns the real row count.
func (p *ProgressBar) Update(current, total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = current
	if total > 0 {
		p.total = total
	}
	p.render()
}

func (p *ProgressBar) fraction() float64 {
	if p.total <= 0 {
		return 0
	}
	pct := float64(p.current) / float64(p.total)
	if pct > 1 {
		pct = 1
	}
	return pct
}

// rate returns rows per second since the bar was created.
func (p *ProgressBar) rate() float64 {
	elapsed := time.Since(p.start).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(p.current) / elapsed
}

// render must be called with mu held.
func (p *ProgressBar) render() {
	pct := p.fraction()

	if !p.ui.shouldStyle() {
		// Plain mode: one line per 25% step
		step := int(pct*4) * 25
		if step > p.lastPct {
			p.lastPct = step
			fmt.Printf("%s: %d%% (%d/%d)\n", p.label, step, p.current, p.total)
		}
		return
	}

	labelStyle := lipgloss.NewStyle().Width(18)
	countStyle := lipgloss.NewStyle().Foreground(ColorMuted)

	fmt.Fprintf(os.Stdout, "\r\033[K  %s %s %s",
		labelStyle.Render(p.label),
		p.bar.ViewAs(pct),
		countStyle.Render(fmt.Sprintf("%d/%d  %.0f rows/s", p.current, p.total, p.rate())),
	)
}

// Complete finishes the progress bar with a success indicator.
func (p *ProgressBar) Complete() {
	p.mu.Lock()
	defer p.mu.Unlock()

	elapsed := time.Since(p.start).Round(time.Millisecond)
	if !p.ui.shouldStyle() {
		fmt.Printf("%s: %d rows in %s\n", p.label, p.current, elapsed)
		return
	}

	labelStyle := lipgloss.NewStyle().Width(18)

	fmt.Fprintf(os.Stdout, "\r\033[K  %s %s %s\n",
		StyleSuccess.Render(SymbolSuccess),
		labelStyle.Render(p.label),
		StyleSuccess.Render(fmt.Sprintf("%d rows in %s", p.current, elapsed)),
	)
}

// Fail finishes the progress bar with an error indicator.
func (p *ProgressBar) Fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.ui.shouldStyle() {
		fmt.Printf("%s: FAILED: %v\n", p.label, err)
		return
	}

	labelStyle := lipgloss.NewStyle().Width(18)

	fmt.Fprintf(os.Stdout, "\r\033[K  %s %s %s\n",
		StyleError.Render(SymbolError),
		labelStyle.Render(p.label),
		StyleError.Render(err.Error()),
	)
}
