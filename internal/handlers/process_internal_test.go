package handlers

import (
	"testing"
	"time"
)

func TestParseTimestamp(t *testing.T) {
	t.Parallel()
	got := parseTimestamp("1718031600.000200")
	want := time.Unix(1718031600, 200000).UTC()
	if !got.Equal(want) {
		t.Errorf("parseTimestamp = %v, want %v", got, want)
	}
	if !parseTimestamp("").IsZero() {
		t.Error("empty timestamp should map to zero time")
	}
	if !parseTimestamp("not-a-number").IsZero() {
		t.Error("garbage timestamp should map to zero time")
	}
}
