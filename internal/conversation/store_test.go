package conversation

import (
	"fmt"
	"testing"
	"time"
)

func TestAppendAndTrim(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		appends    int
		wantLen    int
		wantOldest string
	}{
		{name: "under limit", appends: 3, wantLen: 3, wantOldest: "message 1"},
		{name: "at limit", appends: 10, wantLen: 10, wantOldest: "message 1"},
		{name: "over limit", appends: 12, wantLen: 10, wantOldest: "message 3"},
		{name: "far over limit", appends: 40, wantLen: 10, wantOldest: "message 31"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var w Window
			for i := 1; i <= tt.appends; i++ {
				w = AppendAndTrim(w, Turn{
					Role:      RoleUser,
					Content:   fmt.Sprintf("message %d", i),
					Timestamp: time.Now(),
				})
			}
			if len(w) != tt.wantLen {
				t.Fatalf("expected %d turns, got %d", tt.wantLen, len(w))
			}
			if w[0].Content != tt.wantOldest {
				t.Errorf("expected oldest %q, got %q", tt.wantOldest, w[0].Content)
			}
			// Remaining turns must be the most recent ones, in insertion order.
			for i := 1; i < len(w); i++ {
				var prev, cur int
				fmt.Sscanf(w[i-1].Content, "message %d", &prev)
				fmt.Sscanf(w[i].Content, "message %d", &cur)
				if cur != prev+1 {
					t.Errorf("order broken at %d: %q then %q", i, w[i-1].Content, w[i].Content)
				}
			}
		})
	}
}

func TestMemoryStoreAppendTwelveMessages(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	for i := 1; i <= 12; i++ {
		store.Append("C123_171", Turn{Role: RoleUser, Content: fmt.Sprintf("message %d", i)})
	}

	w := store.Get("C123_171")
	if len(w) != 10 {
		t.Fatalf("expected window of 10, got %d", len(w))
	}
	if w[0].Content != "message 3" {
		t.Errorf("expected first retained message 3, got %q", w[0].Content)
	}
	if w[9].Content != "message 12" {
		t.Errorf("expected last retained message 12, got %q", w[9].Content)
	}
}

func TestMemoryStoreIsolation(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	store.Append("a", Turn{Role: RoleUser, Content: "hello"})

	w := store.Get("a")
	w[0].Content = "mutated"

	if got := store.Get("a")[0].Content; got != "hello" {
		t.Errorf("store window aliased by caller mutation: %q", got)
	}
	if store.Get("unknown") == nil {
		t.Error("expected non-nil empty window for unknown conversation")
	}
	if store.Count() != 1 {
		t.Errorf("expected 1 active conversation, got %d", store.Count())
	}
}
