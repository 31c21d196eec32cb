package conversation

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type registryEntry struct {
	conv     Service
	lastUsed time.Time
}

// Registry keeps the live conversations of a multi-session surface in memory.
type Registry struct {
	client MessageClient
	now    func() time.Time

	mu            sync.RWMutex
	conversations map[uuid.UUID]*registryEntry
}

// NewRegistry creates an empty registry whose conversations all share client.
func NewRegistry(client MessageClient) *Registry {
	return &Registry{
		client:        client,
		now:           time.Now,
		conversations: make(map[uuid.UUID]*registryEntry),
	}
}

// Create starts a new conversation and registers it under its ID.
func (r *Registry) Create() Service {
	conv := NewService(r.client)

	r.mu.Lock()
	r.conversations[conv.ID()] = &registryEntry{conv: conv, lastUsed: r.now()}
	r.mu.Unlock()

	return conv
}

// Get looks up a conversation by ID and marks it as used.
func (r *Registry) Get(id uuid.UUID) (Service, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.conversations[id]
	if !ok {
		return nil, false
	}
	entry.lastUsed = r.now()
	return entry.conv, true
}

// Remove closes and forgets a conversation. Unknown IDs are ignored.
func (r *Registry) Remove(id uuid.UUID) {
	r.mu.Lock()
	entry, ok := r.conversations[id]
	delete(r.conversations, id)
	r.mu.Unlock()

	if ok {
		entry.conv.Close()
	}
}

// EvictIdle removes every conversation not used for longer than maxIdle
// and returns how many were removed.
func (r *Registry) EvictIdle(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)

	r.mu.Lock()
	var idle []Service
	for id, entry := range r.conversations {
		if entry.lastUsed.Before(cutoff) {
			idle = append(idle, entry.conv)
			delete(r.conversations, id)
		}
	}
	r.mu.Unlock()

	for _, conv := range idle {
		conv.Close()
	}
	return len(idle)
}

// RunJanitor calls EvictIdle every interval until ctx is done. A non-positive interval
// disables it.
func (r *Registry) RunJanitor(ctx context.Context, interval, maxIdle time.Duration, onEvict func(n int)) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.EvictIdle(maxIdle); n > 0 && onEvict != nil {
				onEvict(n)
			}
		}
	}
}

// Len reports how many conversations are live.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conversations)
}

// Close closes every conversation.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, entry := range r.conversations {
		entry.conv.Close()
		delete(r.conversations, id)
	}
}
