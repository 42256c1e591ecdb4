// Package output prints user-facing progress lines.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

const (
	headerPrefix = "\n==> "
	indentPrefix = "    "
)

// Printer writes header and indented lines to an io.Writer.
type Printer struct {
	w      io.Writer
	header *color.Color
	errs   *color.Color
}

// NewPrinter returns a Printer writing to w. Headers are coloured unless noColor.
func NewPrinter(w io.Writer, noColor bool) *Printer {
	p := &Printer{
		w:      w,
		header: color.New(color.FgCyan, color.Bold),
		errs:   color.New(color.FgRed, color.Bold),
	}
	if noColor {
		p.header.DisableColor()
		p.errs.DisableColor()
	}
	return p
}

// Header prints each line after the "==>" marker.
func (p *Printer) Header(lines ...string) {
	p.print(headerPrefix, p.header, lines)
}

// Item prints each line indented.
func (p *Printer) Item(lines ...string) {
	p.print(indentPrefix, nil, lines)
}

// Error prints msg as a header flagged as an error. The caller is expected to
// terminate with a non-zero status afterwards.
func (p *Printer) Error(msg string) {
	p.print(headerPrefix, p.errs, []string{msg})
	fmt.Fprintln(p.w, " ")
}

func (p *Printer) print(prefix string, c *color.Color, lines []string) {
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		if c != nil {
			b.WriteString(prefix + c.Sprint(line))
		} else {
			b.WriteString(prefix + line)
		}
	}
	fmt.Fprintln(p.w, b.String())
}
