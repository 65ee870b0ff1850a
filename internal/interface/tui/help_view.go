package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) updateHelp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "?":
		m.mode = m.lastMode
		return m, nil
	}

	return m, nil
}

func (m Model) viewHelp() string {
	help := `
storycards - Help
═════════════════

CHOOSE DOCUMENT
───────────────
  Type         Path to a PDF
  Enter        Upload and generate story
  esc          Back to cards (or quit when there are none)

CARDS
─────
  →/l/n/space  Next card
  ←/h/p        Previous card
  g/G          First/last card
  j/k          Scroll a long card
  e            Export deck (` + "flashcards.pptx" + `)
  c            Copy card to clipboard
  v            Open the last exported deck
  u            Upload the same document again
  o            Choose another document
  r            Reset (deletes the uploaded file on the server)
  ?            Show this help
  q            Quit

Press esc to return
`

	return helpStyle.Render(help)
}
