package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/neilberkman/storycards/internal/core/config"
	"github.com/neilberkman/storycards/internal/core/db"
	"github.com/neilberkman/storycards/internal/core/gateway"
	"github.com/neilberkman/storycards/internal/core/session"
)

type viewMode int

const (
	pickView viewMode = iota
	cardView
	helpView
)

// Options wires a Model to its collaborators
type Options struct {
	Config  *config.Config
	Gateway gateway.Gateway
	DB      *db.DB // Export history, nil to skip recording
	Path    string // Document to upload on start, optional
}

type Model struct {
	ctrl *session.Controller
	gw   gateway.Gateway
	cfg  *config.Config
	db   *db.DB

	mode     viewMode
	lastMode viewMode // Where help returns to
	input    textinput.Model
	spinner  spinner.Model
	viewport viewport.Model
	width    int
	height   int

	initialPath  string
	uploadPrompt string // Instruction sent with the upload in flight
	storyPrompt  string // Instruction that produced the current story
	lastDeck     string // Path of the deck saved most recently

	// Blocking notification, dismissed by any key
	notice *notice
	// One-line status under the card, replaced by the next action
	status string
}

type notice struct {
	title   string
	message string
	isError bool
}

func New(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	ti := textinput.New()
	ti.Placeholder = "path/to/document.pdf"
	ti.Prompt = "› "
	ti.CharLimit = 4096
	ti.Width = 60
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	m := Model{
		gw:          opts.Gateway,
		cfg:         cfg,
		db:          opts.DB,
		mode:        pickView,
		input:       ti,
		spinner:     sp,
		viewport:    viewport.New(80, 20),
		width:       80,
		height:      24,
		initialPath: opts.Path,
	}
	m.ctrl = session.NewController(session.WithPrompt(promptFunc(cfg)))
	return m
}

// ServerRef returns the artifact handle still held by the session, if any.
// The CLI uses it to clean up after the TUI exits.
func (m Model) ServerRef() string {
	return m.ctrl.Session().ServerRef
}

func promptFunc(cfg *config.Config) session.PromptFunc {
	return func(in session.Input) string {
		p, err := cfg.RenderPrompt(in.Name, in.Size)
		if err != nil {
			log().Warn("prompt template failed, sending none", "error", err)
			return ""
		}
		return p
	}
}

func (m Model) Init() tea.Cmd {
	if m.initialPath == "" {
		return textinput.Blink
	}
	path := m.initialPath
	return func() tea.Msg {
		return pathChosenMsg{path: path}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(20, msg.Width-8)
		m = m.resizeViewport()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		// Any key dismisses a notification
		if m.notice != nil {
			m.notice = nil
			return m, nil
		}

		// The path input takes "?" as text, so help is reachable from the cards
		if msg.String() == "?" && m.mode == cardView {
			m.lastMode = m.mode
			m.mode = helpView
			return m, nil
		}

		switch m.mode {
		case pickView:
			return m.updatePick(msg)
		case cardView:
			return m.updateCards(msg)
		case helpView:
			return m.updateHelp(msg)
		}

	case spinner.TickMsg:
		if !m.ctrl.Busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case pathChosenMsg:
		return m.selectAndSubmit(msg.path)

	case uploadDoneMsg:
		return m.handleUpload(msg)

	case exportDoneMsg:
		return m.handleExport(msg)

	case deleteDoneMsg:
		return m.handleDelete(msg)

	case deckSavedMsg:
		if msg.err != nil {
			m.notice = &notice{title: "Export failed", message: msg.err.Error(), isError: true}
			return m, nil
		}
		m.lastDeck = msg.path
		m.status = "Saved " + msg.path + " (" + msg.size + ") · v: open"
		return m, nil

	case deckOpenedMsg:
		if msg.err != nil {
			m.notice = &notice{title: "Cannot open deck", message: msg.err.Error(), isError: true}
		}
		return m, nil

	case clipboardMsg:
		if msg.err != nil {
			m.status = "Clipboard unavailable: " + msg.err.Error()
		} else {
			m.status = "Card copied to clipboard"
		}
		return m, nil
	}

	// Let the text input handle blink and other internal messages
	if m.mode == pickView {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) View() string {
	if m.notice != nil {
		return m.viewNotice()
	}

	switch m.mode {
	case pickView:
		return m.viewPick()
	case cardView:
		return m.viewCards()
	case helpView:
		return m.viewHelp()
	}

	return ""
}

// startSpinner returns the tick that keeps the spinner moving while busy
func (m Model) startSpinner() tea.Cmd {
	return m.spinner.Tick
}
