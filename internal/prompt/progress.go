package prompt

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"asset-organizer/internal/organizer"
)

const defaultWidth = 80

// BarProgress draws a single-line progress bar. Output that is not a
// terminal gets one plain line per step instead.
type BarProgress struct {
	out         io.Writer
	interactive bool
	width       int
	drawn       bool
}

// NewBarProgress creates a progress bar on stderr.
func NewBarProgress() *BarProgress {
	fd := int(os.Stderr.Fd())
	return newBarProgress(os.Stderr, term.IsTerminal(fd), terminalWidth(fd))
}

func newBarProgress(out io.Writer, interactive bool, width int) *BarProgress {
	if width <= 0 {
		width = defaultWidth
	}
	return &BarProgress{out: out, interactive: interactive, width: width}
}

func terminalWidth(fd int) int {
	w, _, err := term.GetSize(fd)
	if err != nil {
		return defaultWidth
	}
	return w
}

func (p *BarProgress) Step(label string, index, total int) {
	if !p.interactive {
		fmt.Fprintf(p.out, "[%d/%d] %s\n", index+1, total, label)
		return
	}

	counter := fmt.Sprintf(" %d/%d ", index+1, total)
	barWidth := p.width / 3
	filled := 0
	if total > 0 {
		filled = barWidth * (index + 1) / total
	}
	bar := "[" + strings.Repeat("#", filled) + strings.Repeat(".", barWidth-filled) + "]"

	room := p.width - len(bar) - len(counter) - 1
	if room < 0 {
		room = 0
	}
	if len(label) > room {
		label = label[:room]
	}
	fmt.Fprintf(p.out, "\r%s%s%-*s", bar, counter, room, label)
	p.drawn = true
}

func (p *BarProgress) Done() {
	if p.interactive && p.drawn {
		fmt.Fprintln(p.out)
	}
	p.drawn = false
}

var _ organizer.Progress = (*BarProgress)(nil)
