package exercise

// contextRadius is the number of lines shown on each side of the pivot.
const contextRadius = 2

// ContextLine is one line of source shown around an incomplete marker.
type ContextLine struct {
	Line      string `json:"line"`
	Number    int    `json:"number"`
	Important bool   `json:"important"`
}

// extractContext returns lines [pivot-contextRadius, pivot+contextRadius] that
// exist in lines, numbered from 1.
func extractContext(lines []string, pivot int) []ContextLine {
	first := max(0, pivot-contextRadius)
	last := min(len(lines)-1, pivot+contextRadius)

	context := make([]ContextLine, 0, last-first+1)
	for i := first; i <= last; i++ {
		context = append(context, ContextLine{
			Line:      lines[i],
			Number:    i + 1,
			Important: i == pivot,
		})
	}
	return context
}
