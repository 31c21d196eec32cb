package tui

import (
	"context"
	"strings"
	"testing"

	"partselect-chat/internal/conversation"
	"partselect-chat/internal/domain"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus/hooks/test"
)

func setupModel(t *testing.T) (Model, conversation.Service) {
	t.Helper()
	conv := conversation.NewService(conversation.NewStubMessageClient())
	t.Cleanup(conv.Close)

	logger, _ := test.NewNullLogger()
	m, err := New(context.Background(), conv, "notty", logger)
	if err != nil {
		t.Fatalf("New() returned unexpected error: %v", err)
	}
	return m, conv
}

// collect runs cmd and any batched commands, returning their messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// deliverReply runs cmd and feeds the reply back into the model.
func deliverReply(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for _, msg := range collect(cmd) {
		if reply, ok := msg.(replyMsg); ok {
			m, _ = update(t, m, reply)
			return m
		}
	}
	t.Fatal("no reply message produced")
	return m
}

func TestModel_ShowsGreetingAndSuggestions(t *testing.T) {
	m, _ := setupModel(t)

	view := m.View()
	if !strings.Contains(view, "Hi, how can I help you today?") {
		t.Error("Expected the greeting in the view")
	}
	for _, q := range domain.SuggestedQuestions {
		if !strings.Contains(view, q) {
			t.Errorf("Expected suggested question %q in the view", q)
		}
	}
}

func TestModel_TypeAndSend(t *testing.T) {
	m, conv := setupModel(t)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("hello")})
	if conv.Draft() != "hello" {
		t.Errorf("want draft %q, got %q", "hello", conv.Draft())
	}

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("Expected a send command")
	}
	if !m.sending {
		t.Error("Expected the model to be sending")
	}

	// A second submit while the first is in flight is ignored.
	if _, again := update(t, m, tea.KeyMsg{Type: tea.KeyEnter}); again != nil {
		t.Error("Expected submit to be ignored while sending")
	}

	m = deliverReply(t, m, cmd)
	if m.sending {
		t.Error("Expected sending to end after the reply")
	}

	turns := conv.Turns()
	if len(turns) != 3 {
		t.Fatalf("want 3 turns, got %d", len(turns))
	}
	if turns[1] != (domain.Turn{Role: domain.RoleUser, Content: "hello"}) {
		t.Errorf("unexpected user turn: %+v", turns[1])
	}
	if m.input.Value() != "" || conv.Draft() != "" {
		t.Errorf("want input and draft cleared, got %q and %q", m.input.Value(), conv.Draft())
	}
	if !strings.Contains(m.View(), "Connect your backend here") {
		t.Error("Expected the reply in the view")
	}
}

func TestModel_BlankSubmitIsIgnored(t *testing.T) {
	m, conv := setupModel(t)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")})
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("Expected no command for blank input")
	}
	if m.sending {
		t.Error("Expected the model to stay idle")
	}
	if len(conv.Turns()) != 1 {
		t.Errorf("want only the greeting, got %d turns", len(conv.Turns()))
	}
}

func TestModel_FunctionKeySendsSuggestion(t *testing.T) {
	m, conv := setupModel(t)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyF2})
	deliverReply(t, m, cmd)

	turns := conv.Turns()
	if len(turns) != 3 || turns[1].Content != domain.SuggestedQuestions[1] {
		t.Errorf("unexpected turns after F2: %+v", turns)
	}
}

func TestModel_Quit(t *testing.T) {
	m, _ := setupModel(t)

	for _, key := range []tea.KeyType{tea.KeyCtrlC, tea.KeyEsc} {
		_, cmd := update(t, m, tea.KeyMsg{Type: key})
		if cmd == nil {
			t.Fatalf("%v: expected a quit command", key)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%v: expected tea.QuitMsg", key)
		}
	}
}

func TestModel_WindowResize(t *testing.T) {
	m, _ := setupModel(t)

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	if m.viewport.Width != 120 || m.viewport.Height != 40-footerHeight {
		t.Errorf("unexpected viewport size %dx%d", m.viewport.Width, m.viewport.Height)
	}
}
