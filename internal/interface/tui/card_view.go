package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/neilberkman/storycards/internal/core/session"
)

const resetMessage = "File reset and deleted successfully"

func (m Model) updateCards(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "right", "l", "n", " ":
		if m.ctrl.Next() {
			m = m.refreshCard()
		}
		return m, nil

	case "left", "h", "p":
		if m.ctrl.Prev() {
			m = m.refreshCard()
		}
		return m, nil

	case "g", "home":
		if m.ctrl.First() {
			m = m.refreshCard()
		}
		return m, nil

	case "G", "end":
		if m.ctrl.Last() {
			m = m.refreshCard()
		}
		return m, nil

	case "e":
		return m.export()

	case "r":
		return m.reset()

	case "c":
		if text, ok := m.ctrl.Current(); ok {
			return m, copyCardCmd(text)
		}
		return m, nil

	case "u":
		return m.submit()

	case "v":
		if m.lastDeck != "" {
			return m, openDeckCmd(m.cfg, m.lastDeck)
		}
		return m, nil

	case "o":
		m.mode = pickView
		m.status = ""
		cmd := m.input.Focus()
		return m, cmd
	}

	// Scroll long cards
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) export() (tea.Model, tea.Cmd) {
	req := m.ctrl.RequestExport()
	if req == nil {
		return m, nil
	}

	m.status = ""
	return m, tea.Batch(m.startSpinner(), exportCmd(m.gw, m.cfg, *req))
}

func (m Model) handleExport(msg exportDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		err := m.ctrl.ExportFailed(failureReason(msg.err))
		if errors.Is(err, session.ErrStaleOutcome) {
			return m, nil
		}
		m.notice = &notice{title: "Export failed", message: err.Error(), isError: true}
		return m, nil
	}

	d, err := m.ctrl.ExportSucceeded(msg.data)
	if err != nil {
		return m, nil
	}
	return m, saveDeckCmd(m.cfg, m.db, d, m.storyPrompt)
}

// reset clears the cards right away and deletes the server artifact in the background
func (m Model) reset() (tea.Model, tea.Cmd) {
	if !m.ctrl.CanReset() {
		return m, nil
	}

	req := m.ctrl.Reset()
	m = m.refreshCard()
	m.mode = pickView
	m.input.SetValue("")
	m.status = ""
	m.storyPrompt = ""
	focus := m.input.Focus()

	if req == nil {
		return m, focus
	}
	return m, tea.Batch(focus, deleteCmd(m.gw, m.cfg, req.FilePath))
}

func (m Model) handleDelete(msg deleteDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		err := m.ctrl.DeleteFailed(msg.ref, failureReason(msg.err))
		if errors.Is(err, session.ErrStaleOutcome) {
			return m, nil
		}
		m.notice = &notice{title: "Reset incomplete", message: err.Error(), isError: true}
		return m, nil
	}

	if err := m.ctrl.DeleteSucceeded(msg.ref); err != nil {
		return m, nil
	}
	m.notice = &notice{title: "Reset", message: resetMessage}
	return m, nil
}

func (m Model) viewCards() string {
	var b strings.Builder

	s := m.ctrl.Session()
	title := "storycards"
	if s.Input != nil {
		title += " · " + s.Input.Name
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	b.WriteString(cardStyle.Width(m.cardWidth() + 4).Render(m.viewport.View()))
	b.WriteString("\n")

	current, total := m.ctrl.Position()
	b.WriteString(captionStyle.Render(renderProgressBar(current, total, m.cardWidth())))
	if m.viewport.TotalLineCount() > m.viewport.Height {
		b.WriteString(captionStyle.Render(fmt.Sprintf("  %3.0f%%", m.viewport.ScrollPercent()*100)))
	}
	b.WriteString("\n")

	switch m.ctrl.Status() {
	case session.StatusExporting:
		b.WriteString(m.spinner.View() + " Building slide deck…")
	case session.StatusUploading:
		b.WriteString(m.spinner.View() + " Generating story…")
	default:
		if m.status != "" {
			b.WriteString(statusStyle.Render(m.status))
		}
	}
	b.WriteString("\n")

	footer := "\n←/→: card • e: export • c: copy • u: regenerate • o: open • r: reset • ?: help • q: quit"
	b.WriteString(helpStyle.Render(footer))

	return b.String()
}

func (m Model) viewNotice() string {
	style := noticeStyle
	title := statusStyle.Bold(true).Render(m.notice.title)
	if m.notice.isError {
		style = errorNoticeStyle
		title = errorTitleStyle.Render(m.notice.title)
	}

	width := m.width - 10
	if width > 70 {
		width = 70
	}
	if width < 20 {
		width = 20
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		lipgloss.NewStyle().Width(width).Render(m.notice.message),
		"",
		helpStyle.Render("Press any key to continue"),
	)
	return style.Render(body)
}
