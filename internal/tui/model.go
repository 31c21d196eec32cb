// Package tui provides the terminal chat window.
package tui

import (
	"context"
	"strings"

	"partselect-chat/internal/conversation"
	"partselect-chat/internal/domain"
	"partselect-chat/internal/render"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
)

const (
	defaultWidth  = 80
	defaultHeight = 20

	// footerHeight covers the suggestions line, the input and the help line.
	footerHeight = 5
)

// suggestionKeys maps function keys to suggested questions.
var suggestionKeys = map[tea.KeyType]int{
	tea.KeyF1: 0,
	tea.KeyF2: 1,
	tea.KeyF3: 2,
}

// replyMsg reports that a send finished.
type replyMsg struct {
	err error
}

// Model is the bubbletea model for one conversation.
type Model struct {
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	renderer *render.TerminalRenderer
	style    string

	conv    conversation.Service
	ctx     context.Context
	logger  logrus.FieldLogger
	sending bool
	width   int
}

// New creates the model. style is a glamour standard style name, empty picks one from the terminal.
func New(ctx context.Context, conv conversation.Service, style string, logger logrus.FieldLogger) (Model, error) {
	renderer, err := render.NewTerminalRenderer(defaultWidth-4, style)
	if err != nil {
		return Model{}, err
	}

	ti := textinput.New()
	ti.Placeholder = "Type a message..."
	ti.Focus()
	ti.Width = defaultWidth - 4

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	m := Model{
		input:    ti,
		viewport: viewport.New(defaultWidth, defaultHeight),
		spinner:  sp,
		renderer: renderer,
		style:    style,
		conv:     conv,
		ctx:      ctx,
		logger:   logger,
		width:    defaultWidth,
	}
	m.refresh()
	return m, nil
}

// Init starts the cursor blinking.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyEnter:
			if m.sending {
				return m, nil
			}
			return m.submit()

		case tea.KeyF1, tea.KeyF2, tea.KeyF3:
			if m.sending {
				return m, nil
			}
			return m.suggest(suggestionKeys[msg.Type])

		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.conv.SetDraft(m.input.Value())
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-footerHeight, 1)
		m.input.Width = max(msg.Width-4, 1)
		if r, err := render.NewTerminalRenderer(max(msg.Width-4, 20), m.style); err == nil {
			m.renderer = r
		}
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.sending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		// The user turn lands once the queued send starts.
		m.refresh()
		return m, cmd

	case replyMsg:
		m.sending = false
		if msg.err != nil {
			m.logger.WithError(msg.err).Warn("send abandoned")
		}
		m.refresh()
		return m, nil
	}

	return m, nil
}

// submit sends the typed text. Blank input only clears the field.
func (m Model) submit() (tea.Model, tea.Cmd) {
	text := m.input.Value()
	m.input.Reset()
	if strings.TrimSpace(text) == "" {
		m.conv.SetDraft("")
		return m, nil
	}

	m.sending = true
	conv, ctx := m.conv, m.ctx
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		_, err := conv.Send(ctx, text)
		return replyMsg{err: err}
	})
}

// suggest sends the suggested question at index i.
func (m Model) suggest(i int) (tea.Model, tea.Cmd) {
	if i < 0 || i >= len(domain.SuggestedQuestions) {
		return m, nil
	}
	question := domain.SuggestedQuestions[i]

	m.input.Reset()
	m.sending = true
	conv, ctx := m.conv, m.ctx
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		_, err := conv.SelectSuggestion(ctx, question)
		return replyMsg{err: err}
	})
}

// refresh rebuilds the transcript and scrolls to the newest turn.
func (m *Model) refresh() {
	m.viewport.SetContent(m.transcript())
	m.viewport.GotoBottom()
}
