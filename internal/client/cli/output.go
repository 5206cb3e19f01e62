package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
)

var (
	headingColor = color.New(color.Bold)
	errorColor   = color.New(color.FgRed)
	dimColor     = color.New(color.Faint)
)

// Printer writes console output.
type Printer struct {
	W io.Writer
}

func (p Printer) Heading(s string) {
	_, _ = headingColor.Fprintln(p.W, s)
}

func (p Printer) Line(a ...any) {
	_, _ = fmt.Fprintln(p.W, a...)
}

func (p Printer) Linef(format string, a ...any) {
	_, _ = fmt.Fprintf(p.W, format+"\n", a...)
}

func (p Printer) Hint(s string) {
	_, _ = dimColor.Fprintln(p.W, s)
}

func (p Printer) Error(err error) {
	_, _ = errorColor.Fprintln(p.W, "error:", err)
}

// Table prints rows under headers in aligned columns.
func (p Printer) Table(headers []string, rows [][]string) {
	tw := tabwriter.NewWriter(p.W, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for _, r := range rows {
		fmt.Fprintln(tw, strings.Join(r, "\t"))
	}
	_ = tw.Flush()
}

// Fields prints label/value pairs, one per line, with aligned values.
func (p Printer) Fields(pairs ...string) {
	tw := tabwriter.NewWriter(p.W, 0, 0, 2, ' ', 0)
	for i := 0; i+1 < len(pairs); i += 2 {
		fmt.Fprintf(tw, "%s:\t%s\n", pairs[i], pairs[i+1])
	}
	_ = tw.Flush()
}
