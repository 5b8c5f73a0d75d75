// Package output renders command results as styled text, markdown, or JSON.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/term"
)

// Mode selects the output format.
type Mode string

const (
	// ModeAuto picks text on terminals and markdown when piped.
	ModeAuto Mode = "auto"
	// ModeText is styled terminal output.
	ModeText Mode = "text"
	// ModeMarkdown is plain markdown, friendly to scripts and agents.
	ModeMarkdown Mode = "markdown"
	// ModeJSON is machine-readable JSON.
	ModeJSON Mode = "json"
)

// ValidModes lists the accepted --output values.
func ValidModes() []string {
	return []string{string(ModeAuto), string(ModeText), string(ModeMarkdown), string(ModeJSON)}
}

// IsValidMode reports whether s names a known output mode.
func IsValidMode(s string) bool {
	switch Mode(s) {
	case ModeAuto, ModeText, ModeMarkdown, ModeJSON:
		return true
	}
	return false
}

// Renderer writes command output in the selected mode.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	mode   Mode
	isTTY  bool
	styles Styles
}

// NewRenderer creates a renderer, detecting TTY state from the output writer.
func NewRenderer(out, errOut io.Writer, mode Mode) *Renderer {
	isTTY := false
	if f, ok := out.(*os.File); ok {
		isTTY = term.IsTerminal(int(f.Fd()))
	}
	return NewRendererWithTTY(out, errOut, isTTY, mode)
}

// NewRendererWithTTY creates a renderer with an explicit TTY state.
// Tests use this to pin down mode resolution.
func NewRendererWithTTY(out, errOut io.Writer, isTTY bool, mode Mode) *Renderer {
	if mode == "" {
		mode = ModeAuto
	}
	return &Renderer{
		out:    out,
		errOut: errOut,
		mode:   mode,
		isTTY:  isTTY,
		styles: newStyles(isTTY),
	}
}

// EffectiveMode resolves ModeAuto against the TTY state.
func (r *Renderer) EffectiveMode() Mode {
	if r.mode != ModeAuto {
		return r.mode
	}
	if r.isTTY {
		return ModeText
	}
	return ModeMarkdown
}

// Writer returns the underlying output writer.
func (r *Renderer) Writer() io.Writer {
	return r.out
}

// ErrWriter returns the underlying error writer.
func (r *Renderer) ErrWriter() io.Writer {
	return r.errOut
}

// IsTTY reports whether output goes to a terminal.
func (r *Renderer) IsTTY() bool {
	return r.isTTY
}

// Styles returns the style set for text-mode output. On non-TTY writers
// the styles are plain pass-throughs, so output stays free of ANSI codes.
func (r *Renderer) Styles() Styles {
	return r.styles
}

// Println writes a line to the output writer.
func (r *Renderer) Println(a ...any) {
	_, _ = fmt.Fprintln(r.out, a...)
}

// Printf writes formatted output to the output writer.
func (r *Renderer) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.out, format, a...)
}

// Header prints a section header for the effective mode.
func (r *Renderer) Header(level int, text string) {
	if r.EffectiveMode() == ModeMarkdown {
		r.Println(FormatHeader(level, text))
		r.Println("")
		return
	}
	if level <= 1 {
		r.Println(r.styles.Header1.Render(text))
	} else {
		r.Println(r.styles.Header2.Render(text))
	}
}

// Success prints a success line with a check mark.
func (r *Renderer) Success(text string) {
	r.Println(r.styles.Success.Render("✓ " + text))
}

// Warning prints a warning line to the error writer.
func (r *Renderer) Warning(text string) {
	_, _ = fmt.Fprintln(r.errOut, r.styles.Warning.Render("⚠ "+text))
}

// Muted prints a line in muted style.
func (r *Renderer) Muted(text string) {
	r.Println(r.styles.Muted.Render(text))
}

// StatusLine prints one per-item result line. Status is one of
// "success", "warning", or "error"; detail is appended when non-empty.
func (r *Renderer) StatusLine(text, status, detail string) {
	if r.EffectiveMode() == ModeMarkdown {
		line := "- " + text
		if detail != "" {
			line += ": " + detail
		}
		r.Println(line)
		return
	}

	var line string
	switch status {
	case "success":
		line = r.styles.Success.Render("  ✓ ") + text
	case "warning":
		line = r.styles.Warning.Render("  ⚠ ") + text
	case "error":
		line = r.styles.Error.Render("  ✗ ") + text
	default:
		line = "  - " + text
	}
	if detail != "" {
		line += " " + r.styles.Muted.Render(detail)
	}
	r.Println(line)
}

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Table renders a table: go-pretty styled in text mode, a pipe table in
// markdown mode.
func (r *Renderer) Table(header []string, rows [][]string) {
	if r.EffectiveMode() == ModeMarkdown {
		r.markdownTable(header, rows)
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)

	headerRow := make(table.Row, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	t.AppendHeader(headerRow)

	for _, row := range rows {
		tableRow := make(table.Row, len(row))
		for i, cell := range row {
			tableRow[i] = cell
		}
		t.AppendRow(tableRow)
	}

	t.Render()
}

func (r *Renderer) markdownTable(header []string, rows [][]string) {
	r.Printf("| %s |\n", strings.Join(header, " | "))

	seps := make([]string, len(header))
	for i := range seps {
		seps[i] = "---"
	}
	r.Printf("| %s |\n", strings.Join(seps, " | "))

	for _, row := range rows {
		r.Printf("| %s |\n", strings.Join(row, " | "))
	}
}
