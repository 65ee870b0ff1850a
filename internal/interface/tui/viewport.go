package tui

import (
	"regexp"

	"github.com/muesli/reflow/wordwrap"
)

const (
	maxCardWidth = 100
	// Title, caption, status and footer lines around the card
	reservedLines = 10
	// Card border plus horizontal padding
	cardChrome = 6
)

var emphasisPattern = regexp.MustCompile(`\*\*(.+?)\*\*`)

// cardWidth is the text width inside the card border
func (m Model) cardWidth() int {
	w := m.width - cardChrome
	if w > maxCardWidth {
		w = maxCardWidth
	}
	if w < 20 {
		w = 20
	}
	return w
}

func (m Model) resizeViewport() Model {
	m.viewport.Width = m.cardWidth()
	h := m.height - reservedLines
	if h < 3 {
		h = 3
	}
	m.viewport.Height = h
	return m.refreshCard()
}

// refreshCard loads the current paragraph into the viewport and scrolls to the top
func (m Model) refreshCard() Model {
	text, ok := m.ctrl.Current()
	if !ok {
		m.viewport.SetContent("")
		return m
	}
	m.viewport.SetContent(renderCard(text, m.cardWidth()))
	m.viewport.GotoTop()
	return m
}

// renderCard highlights **marked** words and wraps to width. Highlighting
// runs first since wordwrap measures printable width only.
func renderCard(text string, width int) string {
	highlighted := emphasisPattern.ReplaceAllStringFunc(text, func(s string) string {
		return emphasisStyle.Render(s[2 : len(s)-2])
	})
	return wordwrap.String(highlighted, width)
}
