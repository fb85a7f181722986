package memory

import "time"

// Record is one durable fact pushed to the long-term store.
type Record struct {
	ConversationID string
	UserID         string
	Text           string
	Timestamp      time.Time
	// VisualSummary carries the media description when the message had
	// resolvable images. Empty when analysis was skipped or failed.
	VisualSummary string
}

type storeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type storeRequest struct {
	Messages []storeMessage    `json:"messages"`
	AgentID  string            `json:"agent_id"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type searchRequest struct {
	Query   string `json:"query"`
	AgentID string `json:"agent_id"`
	Limit   int    `json:"limit,omitempty"`
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	Memory string `json:"memory"`
}
