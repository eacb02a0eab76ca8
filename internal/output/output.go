// Package output provides terminal output utilities for brewfile.
//
// This package includes:
//   - Prefixed status messages (say, warn, success, error)
//   - Spinners for long-running brew calls
//   - Renderers for package status, sync plans, snapshots and history
//
// Colors come from fatih/color, which disables itself when stdout is not a
// terminal or NO_COLOR is set.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

var (
	blue   = color.New(color.FgBlue).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()
)

// IsColorEnabled reports whether color escape codes are being emitted.
func IsColorEnabled() bool {
	return !color.NoColor
}

// Printer writes prefixed user-facing messages. Errors go to the error
// writer, everything else to the output writer.
type Printer struct {
	out io.Writer
	err io.Writer
}

// NewPrinter creates a Printer. Nil writers default to stdout and stderr.
func NewPrinter(out, err io.Writer) *Printer {
	if out == nil {
		out = os.Stdout
	}
	if err == nil {
		err = os.Stderr
	}
	return &Printer{out: out, err: err}
}

// Out returns the writer used for regular output.
func (p *Printer) Out() io.Writer {
	return p.out
}

// Say prints a progress message.
func (p *Printer) Say(format string, args ...any) {
	fmt.Fprintf(p.out, "%s %s\n", blue("===>"), fmt.Sprintf(format, args...))
}

// Warn prints a non-fatal problem.
func (p *Printer) Warn(format string, args ...any) {
	fmt.Fprintf(p.out, "%s %s\n", yellow("[warn]"), fmt.Sprintf(format, args...))
}

// Success prints a completed step.
func (p *Printer) Success(format string, args ...any) {
	fmt.Fprintf(p.out, "%s %s\n", green("[success]"), fmt.Sprintf(format, args...))
}

// Error prints a failure to the error writer.
func (p *Printer) Error(format string, args ...any) {
	fmt.Fprintf(p.err, "%s %s\n", red("[error]"), fmt.Sprintf(format, args...))
}

// Println writes a plain line.
func (p *Printer) Println(args ...any) {
	fmt.Fprintln(p.out, args...)
}

// Printf writes formatted text without a prefix.
func (p *Printer) Printf(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
}
