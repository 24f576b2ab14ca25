package journal

import "strings"

// UnpackSlots decomposes a comma-delimited text cell into exactly n
// ordered slots. Each piece is trimmed; fewer pieces than n pad with nil;
// pieces beyond n are silently dropped. A nil or non-text cell yields n
// empty slots. Order is preserved and nothing is deduplicated.
func UnpackSlots(value any, n int) []any {
	out := make([]any, n)
	s, ok := value.(string)
	if !ok || s == "" {
		return out
	}
	for i, piece := range strings.Split(s, ",") {
		if i >= n {
			break
		}
		out[i] = strings.TrimSpace(piece)
	}
	return out
}
