package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/randalmurphal/summarize/prompt"
	"github.com/randalmurphal/summarize/summarize"
)

// Printer writes styled output. Results go to out; progress and errors go
// to errOut so that stdout can be piped.
type Printer struct {
	out    io.Writer
	errOut io.Writer
	o      styles
	e      styles
}

// NewPrinter creates a Printer. Color support is detected per writer, so
// redirected output is plain text.
func NewPrinter(out, errOut io.Writer) *Printer {
	return &Printer{
		out:    out,
		errOut: errOut,
		o:      newStyles(lipgloss.NewRenderer(out)),
		e:      newStyles(lipgloss.NewRenderer(errOut)),
	}
}

// StyleList prints the style catalog in display order.
func (p *Printer) StyleList(list []prompt.Style) {
	width := 0
	for _, s := range list {
		if n := len(s.String()); n > width {
			width = n
		}
	}

	var sb strings.Builder
	sb.WriteString(p.o.header.Render("Available styles:"))
	sb.WriteString("\n")
	for _, s := range list {
		key := fmt.Sprintf("%-*s", width, s.String())
		fmt.Fprintf(&sb, "  %s  %s\n", p.o.key.Render(key), p.o.desc.Render(s.Instruction()))
	}
	fmt.Fprint(p.out, sb.String())
}

// Progress prints the "generating" line.
func (p *Printer) Progress(model string) {
	fmt.Fprintln(p.errOut, p.e.progress.Render(fmt.Sprintf("Generating summary using %s...", model)))
}

// Summary prints the summary header, text and any truncation note.
func (p *Printer) Summary(res *summarize.Result) {
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, p.o.header.Render("Summary:"))
	fmt.Fprintln(p.out, renderLines(p.o.summary, res.Text))

	if note := TruncationNote(res); note != "" {
		fmt.Fprintln(p.errOut, p.e.note.Render(note))
	}
}

// Error prints a user-facing error message.
func (p *Printer) Error(msg string) {
	fmt.Fprintln(p.errOut, p.e.err.Render(msg))
}

// Info prints a muted status line, e.g. while watching a file.
func (p *Printer) Info(msg string) {
	fmt.Fprintln(p.errOut, p.e.note.Render(msg))
}

// TruncationNote describes which sides of a run were truncated.
// Returns "" when nothing was cut.
func TruncationNote(res *summarize.Result) string {
	switch {
	case res.InputTruncated && res.OutputTruncated:
		return "(input and summary were truncated)"
	case res.InputTruncated:
		return "(input was truncated before summarizing)"
	case res.OutputTruncated:
		return "(summary was truncated)"
	default:
		return ""
	}
}

// renderLines styles each line on its own. Rendering a multi-line block
// pads every line to the widest one.
func renderLines(style lipgloss.Style, text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = style.Render(line)
	}
	return strings.Join(lines, "\n")
}
