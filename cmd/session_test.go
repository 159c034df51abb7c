package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/iksnae/ragchat/internal"
)

func TestSessionCommands(t *testing.T) {
	env := newCLIEnv(t)

	if _, err := env.run(t, "session", "new", "Alpha"); err != nil {
		t.Fatalf("session new error = %v", err)
	}
	if _, err := env.run(t, "session", "new"); err != nil {
		t.Fatalf("session new error = %v", err)
	}

	sessions := env.sessions(t)
	if len(sessions) != 2 {
		t.Fatalf("got %d sessions, want 2", len(sessions))
	}
	if sessions[0].Name != "New Chat" || sessions[1].Name != "Alpha" {
		t.Errorf("names = %q, %q", sessions[0].Name, sessions[1].Name)
	}

	out, err := env.run(t, "session", "list")
	if err != nil {
		t.Fatalf("session list error = %v", err)
	}
	for _, want := range []string{"Found 2 session(s)", "Alpha", "New Chat", shortID(sessions[1].ID)} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q:\n%s", want, out)
		}
	}

	alpha := sessions[1].ID
	if _, err := env.run(t, "session", "rename", alpha[:8], "Gamma", "Ray"); err != nil {
		t.Fatalf("session rename error = %v", err)
	}
	if _, err := env.run(t, "session", "delete", sessions[0].ID); err != nil {
		t.Fatalf("session delete error = %v", err)
	}

	sessions = env.sessions(t)
	if len(sessions) != 1 || sessions[0].Name != "Gamma Ray" {
		t.Fatalf("after rename and delete got %+v", sessions)
	}

	out, err = env.run(t, "session", "show")
	if err != nil {
		t.Fatalf("session show error = %v", err)
	}
	if !strings.Contains(out, "Gamma Ray") || !strings.Contains(out, alpha) {
		t.Errorf("show output does not describe the active session:\n%s", out)
	}

	if _, err := env.run(t, "session", "use", "does-not-exist"); err == nil {
		t.Error("expected error selecting an unknown session")
	}
}

func TestSessionStatsCommand(t *testing.T) {
	env := newCLIEnv(t)
	if _, err := env.run(t, "session", "new", "one"); err != nil {
		t.Fatal(err)
	}

	out, err := env.run(t, "session", "stats")
	if err != nil {
		t.Fatalf("session stats error = %v", err)
	}
	if !strings.Contains(out, "Session statistics") || !strings.Contains(out, "Sessions:") {
		t.Errorf("unexpected stats output:\n%s", out)
	}
}

func TestDisplaySessions(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.Local)

	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		displaySessions(&buf, nil, "", now)
		if !strings.Contains(buf.String(), "No sessions found") {
			t.Errorf("unexpected output:\n%s", buf.String())
		}
	})

	t.Run("with sessions", func(t *testing.T) {
		sessions := []internal.ChatSession{
			{
				ID:        "aaaaaaaa-1111",
				Name:      "Refund policy",
				CreatedAt: now.Add(-time.Hour),
				UpdatedAt: now.Add(-time.Hour),
				Messages: []internal.ChatMessage{
					{ID: "m1", Role: internal.RoleUser, Content: "What is the refund policy?"},
				},
			},
			{
				ID:        "bbbbbbbb-2222",
				CreatedAt: now.Add(-48 * time.Hour),
				UpdatedAt: now.Add(-48 * time.Hour),
				Messages:  []internal.ChatMessage{},
			},
		}

		var buf bytes.Buffer
		displaySessions(&buf, sessions, "aaaaaaaa-1111", now)
		out := buf.String()

		for _, want := range []string{"Found 2 session(s)", "aaaaaaaa", "Refund policy", "Untitled", "What is the refund policy?", "*"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
		if strings.Contains(out, "aaaaaaaa-1111") {
			t.Error("ids should be shortened")
		}
	})
}

func TestFormatRelative(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.Local)

	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{name: "zero", t: time.Time{}, want: "—"},
		{name: "today", t: now.Add(-time.Hour), want: "Today 11:00"},
		{name: "this week", t: now.Add(-72 * time.Hour), want: "Tue 12:00"},
		{name: "this year", t: now.Add(-30 * 24 * time.Hour), want: "Apr 10 12:00"},
		{name: "older", t: now.Add(-400 * 24 * time.Hour), want: "2023-04-06"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatRelative(tt.t, now); got != tt.want {
				t.Errorf("formatRelative() = %q, want %q", got, tt.want)
			}
		})
	}
}
