package service

import (
	"fmt"
	"sort"
	"strings"
)

// ViewLines renders the requested 1-indexed [start, end] ranges of lines as
// "number|text". Malformed ranges are dropped and overlapping ones merged. An
// empty range list renders every line.
func ViewLines(lines []string, ranges [][]int) string {
	var builder strings.Builder

	validLines := [][]int{}
	for _, r := range ranges {
		if len(r) == 2 && r[0] >= 1 && r[0] <= r[1] {
			validLines = append(validLines, []int{r[0], r[1]})
		}
	}
	if len(ranges) == 0 {
		validLines = append(validLines, []int{1, len(lines)})
	}
	sort.Slice(validLines, func(i, j int) bool {
		return validLines[i][0] < validLines[j][0]
	})

	mergeLines := [][]int{}
	for _, r := range validLines {
		last := len(mergeLines) - 1
		if last >= 0 && r[0] <= mergeLines[last][1]+1 {
			mergeLines[last][1] = max(mergeLines[last][1], r[1])
			continue
		}
		mergeLines = append(mergeLines, r)
	}

	for _, r := range mergeLines {
		for number := r[0]; number <= r[1] && number <= len(lines); number++ {
			builder.WriteString(fmt.Sprintf("%d|%s\n", number, lines[number-1]))
		}
	}
	return builder.String()
}
