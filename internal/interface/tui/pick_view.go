package tui

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/neilberkman/storycards/internal/core/config"
	"github.com/neilberkman/storycards/internal/core/session"
)

func (m Model) updatePick(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		path := strings.TrimSpace(m.input.Value())
		if path == "" || m.ctrl.Busy() {
			return m, nil
		}
		return m.selectAndSubmit(path)

	case "esc":
		// Back to the cards when there is a story, otherwise leave
		if _, ok := m.ctrl.Current(); ok {
			m.mode = cardView
			m.input.Blur()
			return m, nil
		}
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// selectAndSubmit validates path, selects it and starts the upload
func (m Model) selectAndSubmit(path string) (tea.Model, tea.Cmd) {
	in, err := session.NewInput(config.ExpandHome(path), m.cfg.Accept, m.cfg.MaxUploadBytes)
	if err != nil {
		m.notice = &notice{title: "Cannot use this file", message: err.Error(), isError: true}
		return m, nil
	}

	m.ctrl.SelectInput(in)
	return m.submit()
}

// submit uploads the selected input. Nothing happens while another request
// is in flight.
func (m Model) submit() (tea.Model, tea.Cmd) {
	req := m.ctrl.Submit()
	if req == nil {
		return m, nil
	}

	m.uploadPrompt = req.Prompt
	m.status = ""
	return m, tea.Batch(m.startSpinner(), uploadCmd(m.gw, m.cfg, *req))
}

func (m Model) handleUpload(msg uploadDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		err := m.ctrl.UploadFailed(failureReason(msg.err))
		if errors.Is(err, session.ErrStaleOutcome) {
			return m, nil
		}
		m.notice = &notice{title: "Upload failed", message: err.Error(), isError: true}
		return m, nil
	}

	if err := m.ctrl.UploadSucceeded(msg.result); err != nil {
		return m, nil
	}
	m.storyPrompt = m.uploadPrompt

	if _, ok := m.ctrl.Current(); !ok {
		m.notice = &notice{title: "Nothing to show", message: "The server returned an empty story.", isError: true}
		return m, nil
	}

	m.input.SetValue("")
	m.input.Blur()
	m.mode = cardView
	m = m.refreshCard()
	return m, nil
}

func (m Model) viewPick() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("storycards"))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render("Turn a document into a story and flashcards"))
	b.WriteString("\n\n")

	b.WriteString("Document path:\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	s := m.ctrl.Session()
	if s.Input != nil {
		b.WriteString(captionStyle.Render("Selected: " + s.Input.Name + " (" + humanize.Bytes(uint64(s.Input.Size)) + ")"))
		b.WriteString("\n")
	}

	if m.ctrl.Status() == session.StatusUploading {
		b.WriteString(m.spinner.View() + " Generating story…")
		b.WriteString("\n")
	} else if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}

	footer := "\nenter: upload • esc: back • ctrl+c: quit"
	b.WriteString(helpStyle.Render(footer))

	return b.String()
}
