package assistant

import (
	"sync"

	"partselect-chat/internal/domain"
)

// memory keeps the recent turns of every conversation.
type memory struct {
	mu    sync.Mutex
	turns map[string][]domain.Turn
	limit int
}

func newMemory(limit int) *memory {
	return &memory{
		turns: make(map[string][]domain.Turn),
		limit: limit,
	}
}

// Recent returns a copy of the last n turns of the conversation. The window never opens
// on an assistant turn.
func (m *memory) Recent(conversationID string, n int) []domain.Turn {
	m.mu.Lock()
	defer m.mu.Unlock()

	turns := m.turns[conversationID]
	if len(turns) > n {
		turns = turns[len(turns)-n:]
	}
	for len(turns) > 0 && turns[0].Role == domain.RoleAssistant {
		turns = turns[1:]
	}
	out := make([]domain.Turn, len(turns))
	copy(out, turns)
	return out
}

// Append adds turns and forgets the oldest beyond the limit.
func (m *memory) Append(conversationID string, turns ...domain.Turn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	all := append(m.turns[conversationID], turns...)
	if len(all) > m.limit {
		all = append([]domain.Turn(nil), all[len(all)-m.limit:]...)
	}
	m.turns[conversationID] = all
}

func (m *memory) Clear(conversationID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.turns, conversationID)
}
