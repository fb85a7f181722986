// Package conversation defines the short-term conversation window and its store.
package conversation

import "time"

// Turn role constants.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// WindowLimit is the maximum number of turns retained per conversation.
// Older turns are evicted first.
const WindowLimit = 10

// Turn is one message in a conversation window.
type Turn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Window is the ordered sequence of recent turns for one conversation.
// Insertion order is chronological and is preserved verbatim when the
// window is replayed to a provider.
type Window []Turn

// AppendAndTrim returns a new window with turns appended and the oldest
// entries dropped so that at most WindowLimit remain.
func AppendAndTrim(w Window, turns ...Turn) Window {
	merged := make(Window, 0, len(w)+len(turns))
	merged = append(merged, w...)
	merged = append(merged, turns...)
	if len(merged) > WindowLimit {
		merged = merged[len(merged)-WindowLimit:]
	}
	return merged
}
