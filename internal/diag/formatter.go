package diag

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Formatter renders diagnostics in a Rust-style format with source code
// snippets. Source files are cached across calls.
type Formatter struct {
	out         io.Writer
	sourceCache map[string]string
}

// NewFormatter creates a formatter writing to stderr.
func NewFormatter() *Formatter {
	return NewFormatterTo(os.Stderr)
}

// NewFormatterTo creates a formatter writing to w.
func NewFormatterTo(w io.Writer) *Formatter {
	return &Formatter{
		out:         w,
		sourceCache: make(map[string]string),
	}
}

// LoadSource loads source code for a file (cached).
func (f *Formatter) LoadSource(filename string) (string, error) {
	if filename == "" {
		return "", nil
	}
	if src, ok := f.sourceCache[filename]; ok {
		return src, nil
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", err
	}
	src := string(data)
	f.sourceCache[filename] = src
	return src, nil
}

// AddSource registers in-memory source text for a filename, bypassing
// the filesystem. Useful for tests and for suites compiled from strings.
func (f *Formatter) AddSource(filename, src string) {
	f.sourceCache[filename] = src
}

// Format formats and prints a diagnostic.
func (f *Formatter) Format(d Diagnostic) {
	f.printHeader(d)

	if d.Span.IsValid() && d.Span.Filename != "" {
		if src, err := f.LoadSource(d.Span.Filename); err == nil {
			f.printSnippet(src, d.Span)
			f.printFooter(d)
			return
		}
	}
	if d.Span.IsValid() {
		fmt.Fprintf(f.out, "  --> %s\n", d.Span.String())
	}
	f.printFooter(d)
}

// printHeader prints the error header (error[CODE]: message).
func (f *Formatter) printHeader(d Diagnostic) {
	severity := string(d.Severity)
	if severity == "" {
		severity = "error"
	}

	if d.Code != "" {
		fmt.Fprintf(f.out, "%s[%s]: %s\n", severity, d.Code, d.Message)
	} else {
		fmt.Fprintf(f.out, "%s: %s\n", severity, d.Message)
	}
}

// printSnippet prints the offending source line with context and an
// underline beneath the span.
func (f *Formatter) printSnippet(src string, span Span) {
	lines := strings.Split(src, "\n")
	if span.Line < 1 || span.Line > len(lines) {
		fmt.Fprintf(f.out, "  --> %s\n", span.String())
		return
	}

	contextStart := max(1, span.Line-2)
	contextEnd := min(len(lines), span.Line+2)
	lineNumWidth := len(fmt.Sprintf("%d", contextEnd))

	fmt.Fprintf(f.out, "  --> %s\n", span.String())
	fmt.Fprintf(f.out, "   %s |\n", strings.Repeat(" ", lineNumWidth))

	for lineNum := contextStart; lineNum <= contextEnd; lineNum++ {
		lineContent := lines[lineNum-1]
		fmt.Fprintf(f.out, " %*d | %s\n", lineNumWidth, lineNum, lineContent)
		if lineNum == span.Line {
			f.printUnderline(lineNumWidth, lineContent, span)
		}
	}

	fmt.Fprintf(f.out, "   %s |\n", strings.Repeat(" ", lineNumWidth))
}

// printUnderline prints carets beneath the spanned columns.
func (f *Formatter) printUnderline(lineNumWidth int, lineContent string, span Span) {
	start := max(0, span.Column-1)
	width := max(1, span.End-span.Start)
	if start > len(lineContent) {
		start = len(lineContent)
	}
	if start+width > len(lineContent)+1 {
		width = max(1, len(lineContent)+1-start)
	}

	fmt.Fprintf(f.out, "   %s | %s%s\n",
		strings.Repeat(" ", lineNumWidth),
		strings.Repeat(" ", start),
		strings.Repeat("^", width))
}

// printFooter prints notes and help text.
func (f *Formatter) printFooter(d Diagnostic) {
	for _, note := range d.Notes {
		fmt.Fprintf(f.out, "\n  = note: %s\n", note)
	}
	if d.Help != "" {
		fmt.Fprintf(f.out, "\nhelp: %s\n", d.Help)
	}
}
