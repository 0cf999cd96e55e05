package compiler

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// FatalError is a single-diagnostic-line compile error: all compile-time
// errors are fatal and terminate the process with a single diagnostic
// line. No custom error hierarchy, just one concrete type whose Error()
// is already the full diagnostic line.
type FatalError struct {
	File string
	Line int
	Msg  string
}

func (e *FatalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("complua: %s:%d: %s", e.File, e.Line, e.Msg)
	}
	return fmt.Sprintf("complua: %s: %s", e.File, e.Msg)
}

// Fatal builds a FatalError for file/line/msg.
func Fatal(file string, line int, msg string) *FatalError {
	return &FatalError{File: file, Line: line, Msg: msg}
}

var interpreterErrorRe = regexp.MustCompile(`^luajit:\s*([^:]+):(\d+):\s*(.*)$`)

// ParseInterpreterError parses the first line of stderr matching
// `luajit: <path>:<line>: <message>`. ok is false if no line matches, in
// which case callers fall back to the raw output.
func ParseInterpreterError(stderr string) (line int, msg string, ok bool) {
	for _, l := range strings.Split(stderr, "\n") {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		m := interpreterErrorRe.FindStringSubmatch(l)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		return n, m[3], true
	}
	return 0, "", false
}

// lineMarkerRe matches the --LINE:n comment the emitter inserts before
// each statement (compiler/writer.go's LineMarker).
var lineMarkerRe = regexp.MustCompile(`^--LINE:(\d+)\s*$`)

// Locate walks the generated program backward from reportedLine (1-based,
// as the interpreter counts it) looking for the nearest `--LINE:<n>`
// marker, returning the original source line n. ok is false if no marker
// precedes reportedLine.
func Locate(generated string, reportedLine int) (n int, ok bool) {
	lines := strings.Split(generated, "\n")
	if reportedLine < 1 || reportedLine > len(lines) {
		reportedLine = len(lines)
	}
	for i := reportedLine - 1; i >= 0; i-- {
		m := lineMarkerRe.FindStringSubmatch(strings.TrimSpace(lines[i]))
		if m != nil {
			n, err := strconv.Atoi(m[1])
			if err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

// diagnoseInterpreterFailure turns a nonempty interpreter stderr plus the
// generated program text into the fatal diagnostic, falling back to the
// raw interpreter output when no marker can be found.
func diagnoseInterpreterFailure(inputFile, generated, stderr string) error {
	reportedLine, msg, ok := ParseInterpreterError(stderr)
	if !ok {
		return Fatal(inputFile, 0, strings.TrimSpace(stderr))
	}
	n, ok := Locate(generated, reportedLine)
	if !ok {
		return Fatal(inputFile, 0, strings.TrimSpace(stderr))
	}
	return Fatal(inputFile, n, msg)
}
