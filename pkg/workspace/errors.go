package workspace

import (
	"fmt"
	"strings"
)

// LoadError is a workspace file that could not be read or decoded. Line and
// Column are 1-indexed and zero when unknown.
type LoadError struct {
	Path    string
	Line    int
	Column  int
	Message string

	// Context is the source around Line, see GenerateErrorContext.
	Context string

	Err error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Path)
	if e.Line > 0 {
		fmt.Fprintf(&sb, ":%d", e.Line)
		if e.Column > 0 {
			fmt.Fprintf(&sb, ":%d", e.Column)
		}
	}
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	if e.Context != "" {
		sb.WriteString("\n")
		sb.WriteString(e.Context)
	}
	return sb.String()
}

// Unwrap returns the underlying cause, if any.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// GenerateErrorContext renders two lines either side of line with line
// numbers, marking the failing line with ">" and, when column is known, the
// column with "^".
//
//	  2 |   <block type="text">
//	> 3 |     <field name="TEXT">hi</feild>
//	    |                            ^
//	  4 |   </block>
func GenerateErrorContext(source string, line, column int) string {
	if source == "" || line <= 0 {
		return ""
	}
	lines := strings.Split(source, "\n")
	if line > len(lines) {
		return ""
	}

	start := max(line-3, 0)
	end := min(line+2, len(lines))
	width := len(fmt.Sprint(end))

	var buf strings.Builder
	for i := start; i < end; i++ {
		n := i + 1
		text := strings.TrimRight(lines[i], "\r")
		if n != line {
			fmt.Fprintf(&buf, "  %*d | %s\n", width, n, text)
			continue
		}
		fmt.Fprintf(&buf, "> %*d | %s\n", width, n, text)
		if column > 0 {
			fmt.Fprintf(&buf, "  %s | %s^\n", strings.Repeat(" ", width), strings.Repeat(" ", column-1))
		}
	}
	return buf.String()
}
