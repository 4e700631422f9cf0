package output

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
)

const barWidth = 40

// ProgressBar draws a byte counter on one terminal line.
//
// Carving a disk image reports progress once per segment, so the bar only
// redraws when the whole-percent value changes.
type ProgressBar struct {
	mu    sync.Mutex
	w     io.Writer
	label string
	done  int64
	total int64
	drawn int // last whole percent drawn, -1 before the first draw
}

// NewProgressBar returns a bar that writes to w under label.
func NewProgressBar(w io.Writer, label string) *ProgressBar {
	return &ProgressBar{w: w, label: label, drawn: -1}
}

// Update records done of total bytes. It fits the progress callbacks of the
// artifact writer and the fragment merger.
func (p *ProgressBar) Update(done, total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done, p.total = max(done, 0), total
	if pct := p.percent(); pct != p.drawn || total <= 0 {
		p.draw(pct)
	}
}

// Finish fills the bar and ends the line.
func (p *ProgressBar) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.total > 0 {
		p.done = p.total
	}
	p.draw(p.percent())
	io.WriteString(p.w, "\n")
}

func (p *ProgressBar) percent() int {
	if p.total <= 0 {
		return 0
	}
	return int(min(p.done*100/p.total, 100))
}

func (p *ProgressBar) draw(pct int) {
	p.drawn = pct
	if p.total <= 0 {
		fmt.Fprintf(p.w, "\r%s %s", p.label, humanize.IBytes(uint64(p.done)))
		return
	}
	fill := barWidth * pct / 100
	fmt.Fprintf(p.w, "\r%s [%s%s] %3d%% (%s/%s)",
		p.label,
		strings.Repeat("█", fill), strings.Repeat("░", barWidth-fill),
		pct,
		humanize.IBytes(uint64(p.done)), humanize.IBytes(uint64(p.total)),
	)
}
