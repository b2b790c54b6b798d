package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
)

// ProgressBar renders check-phase progress on a single terminal line. It is
// safe for concurrent use.
type ProgressBar struct {
	mu    sync.Mutex
	out   io.Writer
	bar   progress.Model
	total int
	done  int
}

func NewProgressBar(out io.Writer) *ProgressBar {
	return &ProgressBar{
		out: out,
		bar: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

func (p *ProgressBar) Start(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total = total
	p.done = 0
	p.render()
}

func (p *ProgressBar) Increment() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done < p.total {
		p.done++
	}
	p.render()
}

// Finish clears the bar line.
func (p *ProgressBar) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprint(p.out, "\r\033[2K")
}

func (p *ProgressBar) render() {
	percent := 1.0
	if p.total > 0 {
		percent = float64(p.done) / float64(p.total)
	}
	fmt.Fprintf(p.out, "\r%s %d/%d", p.bar.ViewAs(percent), p.done, p.total)
}
