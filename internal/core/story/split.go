package story

import "strings"

// Split turns raw narrative text into the ordered list of cards shown to the
// user. Each line becomes one card after trimming; blank lines are dropped.
// Order is preserved and duplicates are kept.
func Split(raw string) []string {
	paragraphs := []string{}
	for _, line := range strings.Split(raw, "\n") {
		// \r\n line endings leave a trailing \r, which TrimSpace removes
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		paragraphs = append(paragraphs, line)
	}
	return paragraphs
}

// Join is the inverse used when printing a story back out as text.
func Join(paragraphs []string) string {
	return strings.Join(paragraphs, "\n\n")
}
