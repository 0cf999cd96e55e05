package compiler

import (
	"fmt"
	"strings"
)

// luaWriter manages indented plain-dialect source output for the emitter.
// It encapsulates the output buffer, indentation level, and the --LINE:n
// markers used to map interpreter errors back to original source lines.
type luaWriter struct {
	sb     strings.Builder
	indent int
}

// Line writes an indented, formatted line (with trailing newline).
func (w *luaWriter) Line(format string, args ...interface{}) {
	line := fmt.Sprintf(format, args...)
	if strings.HasSuffix(strings.TrimRight(line, "\n"), "\n") || line == "\n" {
		w.sb.WriteString(line)
		return
	}
	w.sb.WriteString(strings.Repeat("  ", w.indent) + line)
}

// Linef writes an indented, formatted line with a trailing newline appended.
func (w *luaWriter) Linef(format string, args ...interface{}) {
	w.Line(format+"\n", args...)
}

// Raw writes unindented text directly to the buffer.
func (w *luaWriter) Raw(s string) {
	w.sb.WriteString(s)
}

// LineMarker emits a `--LINE:<n>` comment recording the original source
// line that the next statement came from. It is a no-op when line markers
// are currently suppressed (inside a call's argument list, where the
// line-info flag is cleared for the duration of argument emission).
func (w *luaWriter) LineMarker(line int, enabled bool) {
	if enabled && line > 0 {
		w.Linef("--LINE:%d", line)
	}
}

// Indent increases the indentation level.
func (w *luaWriter) Indent() { w.indent++ }

// Dedent decreases the indentation level.
func (w *luaWriter) Dedent() { w.indent-- }

// String returns the accumulated output.
func (w *luaWriter) String() string { return w.sb.String() }

// Capture runs fn while writing to a temporary buffer, then restores the
// original buffer and returns the captured output.
func (w *luaWriter) Capture(fn func() error) (string, error) {
	saved := w.sb
	w.sb = strings.Builder{}
	err := fn()
	result := w.sb.String()
	w.sb = saved
	return result, err
}
