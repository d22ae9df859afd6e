// Package prompt implements the interactive collaborators used by the
// CLI: yes/no confirmation and batch progress on the terminal.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"asset-organizer/internal/organizer"
)

// TerminalConfirmer asks yes/no questions on a terminal.
// When input is not a terminal every question is declined, unless
// AssumeYes is set.
type TerminalConfirmer struct {
	in         *bufio.Reader
	out        io.Writer
	fd         int
	assumeYes  bool
	isTerminal func(fd int) bool
}

// NewTerminalConfirmer creates a confirmer reading answers from stdin.
func NewTerminalConfirmer(assumeYes bool) *TerminalConfirmer {
	return NewConfirmer(os.Stdin, os.Stderr, int(os.Stdin.Fd()), assumeYes)
}

// NewConfirmer creates a confirmer over arbitrary streams. fd is checked
// with term.IsTerminal before any question is asked.
func NewConfirmer(in io.Reader, out io.Writer, fd int, assumeYes bool) *TerminalConfirmer {
	return &TerminalConfirmer{
		in:         bufio.NewReader(in),
		out:        out,
		fd:         fd,
		assumeYes:  assumeYes,
		isTerminal: term.IsTerminal,
	}
}

func (c *TerminalConfirmer) Confirm(title, message string) bool {
	fmt.Fprintf(c.out, "%s\n\n%s\n", title, message)
	if c.assumeYes {
		fmt.Fprintln(c.out, "[y/N]: y (assumed)")
		return true
	}
	if !c.isTerminal(c.fd) {
		fmt.Fprintln(c.out, "[y/N]: n (not a terminal, use --yes to confirm)")
		return false
	}

	fmt.Fprint(c.out, "[y/N]: ")
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// StaticConfirmer answers every question with the same value.
type StaticConfirmer bool

func (c StaticConfirmer) Confirm(string, string) bool { return bool(c) }

var (
	_ organizer.Confirmer = (*TerminalConfirmer)(nil)
	_ organizer.Confirmer = StaticConfirmer(false)
)
