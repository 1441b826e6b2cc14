package ui

import (
	"strings"
	"testing"

	"slotwise/internal/query"
)

func TestProgressModelCountsFinalEvents(t *testing.T) {
	events := make(chan query.Event)
	m := NewProgressModel("check", []string{"a.toml: q1", "a.toml: q2"}, events).(*progressModel)

	m.Update(eventMsg{Label: "a.toml: q1", Status: query.StatusRunning})
	m.Update(eventMsg{Label: "a.toml: q1", Status: query.StatusPassed, Detail: "B.M"})
	m.Update(eventMsg{Label: "a.toml: q1", Status: query.StatusPassed, Detail: "B.M"})
	m.Update(eventMsg{Label: "a.toml: q2", Status: query.StatusFailed, Detail: "none"})
	m.Update(eventMsg{Label: "other", Status: query.StatusPassed})

	if m.finished != 2 || m.failed != 1 {
		t.Fatalf("finished=%d failed=%d", m.finished, m.failed)
	}
	m.Update(doneMsg{})
	view := m.View()
	for _, want := range []string{"done: check (2/2), 1 failing", "a.toml: q1 → B.M", "failed"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view lacks %q:\n%s", want, view)
		}
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"abcdefghij", 6, "abc..."},
		{"abcdef", 2, "ab"},
		{"日本語テキスト", 7, "日本..."},
	}
	for _, tc := range cases {
		if got := truncate(tc.in, tc.width); got != tc.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tc.in, tc.width, got, tc.want)
		}
	}
}
