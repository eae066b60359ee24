package exercise

import (
	"fmt"
	"io"
	"strings"
)

func FormatInfo(e *Exercise) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Exercise: %s\n", e.Name))
	builder.WriteString(fmt.Sprintf("Path: %q\n", e.Path))
	builder.WriteString(fmt.Sprintf("Mode: %s\n", e.Mode))
	builder.WriteString(fmt.Sprintf("Hint: %s\n", e.Hint))
	return builder.String()
}

// FormatState renders state with the important context line flagged by '*'.
func FormatState(e *Exercise, state State) string {
	var builder strings.Builder
	if state.IsDone() {
		builder.WriteString(fmt.Sprintf("Exercise '%s' is marked as DONE.\n", e.Name))
		return builder.String()
	}
	builder.WriteString(fmt.Sprintf("Exercise '%s' is NOT DONE. Context:\n", e.Name))
	for _, line := range state.Context {
		marker := ""
		if line.Important {
			marker = "*"
		}
		builder.WriteString(fmt.Sprintf("%s %d: %s\n", marker, line.Number, line.Line))
	}
	return builder.String()
}

func DisplayInfo(w io.Writer, e *Exercise) {
	io.WriteString(w, FormatInfo(e))
}

func DisplayState(w io.Writer, e *Exercise, state State) {
	io.WriteString(w, FormatState(e, state))
}
