package conversation

import "sync"

// Store is the conversation-window repository. Implementations must be safe
// for concurrent use, but concurrent appends to the same conversation are
// last-write-wins: the long-term memory service, not the window, is the
// durability tier.
type Store interface {
	// Get returns the current window for a conversation, empty if unknown.
	Get(conversationID string) Window
	// Append adds turns to a conversation window, trims it to WindowLimit,
	// and returns the updated window.
	Append(conversationID string, turns ...Turn) Window
	// Count returns the number of conversations with a non-empty window.
	Count() int
}

// MemoryStore keeps windows in process memory for the process lifetime.
type MemoryStore struct {
	mu      sync.RWMutex
	windows map[string]Window
}

// NewMemoryStore creates an empty in-process window store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{windows: make(map[string]Window)}
}

func (s *MemoryStore) Get(conversationID string) Window {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneWindow(s.windows[conversationID])
}

func (s *MemoryStore) Append(conversationID string, turns ...Turn) Window {
	s.mu.Lock()
	defer s.mu.Unlock()
	updated := AppendAndTrim(s.windows[conversationID], turns...)
	s.windows[conversationID] = updated
	return cloneWindow(updated)
}

func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.windows)
}

// cloneWindow copies a window so callers never alias store-owned slices.
func cloneWindow(w Window) Window {
	if len(w) == 0 {
		return Window{}
	}
	out := make(Window, len(w))
	copy(out, w)
	return out
}
