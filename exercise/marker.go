package exercise

import (
	"bufio"
	"strings"
	"unicode"
	"unicode/utf8"
)

// markerWords is the phrase that flags an exercise as unfinished. Words are
// compared case-insensitively and must be separated by whitespace.
var markerWords = []string{"i", "am", "not", "done"}

// maxLeader bounds the run of '/' that opens a marker comment.
const maxLeader = 3

// markerEnd returns the byte offset just past the marker phrase when line
// starts with a marker comment, or -1. The span [0, end) covers leading
// whitespace, the comment leader and the phrase.
func markerEnd(line string) int {
	pos := skipSpace(line, 0)

	slashes := 0
	for pos < len(line) && line[pos] == '/' {
		slashes++
		pos++
	}
	if slashes == 0 || slashes > maxLeader {
		return -1
	}
	pos = skipSpace(line, pos)

	for i, word := range markerWords {
		if i > 0 {
			next := skipSpace(line, pos)
			if next == pos {
				return -1
			}
			pos = next
		}
		end := pos + len(word)
		if end > len(line) || !strings.EqualFold(line[pos:end], word) {
			return -1
		}
		pos = end
	}
	return pos
}

func skipSpace(s string, pos int) int {
	for pos < len(s) {
		r, size := utf8.DecodeRuneInString(s[pos:])
		if !unicode.IsSpace(r) {
			break
		}
		pos += size
	}
	return pos
}

// IsMarker reports whether line is an incomplete marker line.
func IsMarker(line string) bool {
	return markerEnd(line) >= 0
}

// FindMarker returns the 0-based index of the first marker line.
func FindMarker(lines []string) (int, bool) {
	for i, line := range lines {
		if IsMarker(line) {
			return i, true
		}
	}
	return 0, false
}

// RemoveMarkers strips the marker spans from every marker line of source and
// reports how many were removed. A line is stripped until what is left no
// longer starts with a marker. Bytes outside the spans, line terminators
// included, are kept as they are.
func RemoveMarkers(source string) (string, int) {
	var builder strings.Builder
	builder.Grow(len(source))
	removed := 0
	for _, segment := range strings.SplitAfter(source, "\n") {
		for {
			end := markerEnd(strings.TrimSuffix(segment, "\n"))
			if end < 0 {
				break
			}
			segment = segment[end:]
			removed++
		}
		builder.WriteString(segment)
	}
	return builder.String(), removed
}

// SplitLines splits source into lines without their terminators. A trailing
// newline does not produce an empty last line and "\r\n" endings are trimmed.
func SplitLines(source string) []string {
	scanner := bufio.NewScanner(strings.NewReader(source))
	scanner.Buffer(make([]byte, 0, 4096), max(len(source)+1, bufio.MaxScanTokenSize))
	lines := []string{}
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines
}
