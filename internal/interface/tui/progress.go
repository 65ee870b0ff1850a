package tui

import (
	"fmt"
	"strings"
)

// renderProgressBar shows how far through the deck the reader is
func renderProgressBar(current, total int, width int) string {
	if total == 0 {
		return ""
	}

	// Use available width, max 40
	barWidth := width - 20 // Leave space for the caption
	if barWidth > 40 {
		barWidth = 40
	}
	if barWidth < 10 {
		barWidth = 10
	}

	filled := int(float64(barWidth) * float64(current) / float64(total))
	if filled > barWidth {
		filled = barWidth
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	return fmt.Sprintf("%s  %d of %d", bar, current, total)
}
