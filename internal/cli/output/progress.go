// Package output provides output formatting for the bil CLI.
package output

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// ProgressBar displays the progress of an attachment upload.
// It redraws only when the shown percentage changes.
type ProgressBar struct {
	w        io.Writer
	title    string
	total    int64
	current  int64
	width    int
	lastDraw int
	mu       sync.Mutex
}

// NewProgressBar creates a new progress bar.
func NewProgressBar(w io.Writer, title string) *ProgressBar {
	return &ProgressBar{
		w:        w,
		title:    title,
		width:    30,
		lastDraw: -1,
	}
}

// SetTotal sets the total size. Zero or less means unknown.
func (p *ProgressBar) SetTotal(total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total = total
}

// Increment adds to current progress.
func (p *ProgressBar) Increment(n int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current += n
	p.render(false)
}

// Finish completes the progress bar and ends the line.
func (p *ProgressBar) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.total > 0 {
		p.current = p.total
	}
	p.render(true)
	fmt.Fprintln(p.w)
}

func (p *ProgressBar) render(force bool) {
	if p.total <= 0 {
		fmt.Fprintf(p.w, "\r%s %s", p.title, formatBytes(p.current))
		return
	}

	percent := int(p.current * 100 / p.total)
	if percent > 100 {
		percent = 100
	}
	if percent == p.lastDraw && !force {
		return
	}
	p.lastDraw = percent

	filled := p.width * percent / 100
	bar := strings.Repeat("=", filled) + strings.Repeat(" ", p.width-filled)

	fmt.Fprintf(p.w, "\r%s [%s] %3d%% (%s/%s)",
		p.title,
		bar,
		percent,
		formatBytes(p.current),
		formatBytes(p.total),
	)
}

// ProgressReader reports bytes read through a ProgressBar.
type ProgressReader struct {
	r   io.Reader
	bar *ProgressBar
}

// NewProgressReader wraps r so every read advances bar.
func NewProgressReader(r io.Reader, bar *ProgressBar) *ProgressReader {
	return &ProgressReader{r: r, bar: bar}
}

// Read implements io.Reader.
func (p *ProgressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.bar.Increment(int64(n))
	}
	return n, err
}

// formatBytes formats bytes to human readable string.
func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
