package internal

import (
	"testing"
	"time"
)

func TestSearchTypeValid(t *testing.T) {
	for _, st := range SearchTypes {
		if !st.Valid() {
			t.Errorf("%q should be valid", st)
		}
	}
	for _, st := range []SearchType{"", "HYBRID", "vector"} {
		if st.Valid() {
			t.Errorf("%q should be invalid", st)
		}
	}
}

func TestSettingsPatch(t *testing.T) {
	base := SessionSettings{Model: "a", Temperature: 0.1, SearchType: SearchHybrid}

	var empty SettingsPatch
	if !empty.IsEmpty() {
		t.Error("zero patch should be empty")
	}
	if empty.Apply(base) != base {
		t.Error("empty patch should not change settings")
	}

	model := "b"
	st := SearchKeyword
	patch := SettingsPatch{Model: &model, SearchType: &st}
	got := patch.Apply(base)
	want := SessionSettings{Model: "b", Temperature: 0.1, SearchType: SearchKeyword}
	if got != want {
		t.Errorf("Apply() = %+v, want %+v", got, want)
	}
}

func TestChatSessionClone(t *testing.T) {
	orig := ChatSession{
		ID: "s",
		Messages: []ChatMessage{
			{ID: "m", Content: "x", Metadata: &MessageMetadata{DocumentsRetrieved: 1}},
		},
	}

	clone := orig.Clone()
	clone.Messages[0].Content = "changed"
	clone.Messages[0].Metadata.DocumentsRetrieved = 9

	if orig.Messages[0].Content != "x" || orig.Messages[0].Metadata.DocumentsRetrieved != 1 {
		t.Error("Clone() should not share message storage")
	}
}

func TestChatSessionPreview(t *testing.T) {
	s := ChatSession{Messages: []ChatMessage{
		{Role: RoleAssistant, Content: "welcome"},
		{Role: RoleUser, Content: "what is the refund policy for damaged goods"},
	}}
	if got := s.Preview(12); got != "what is t..." {
		t.Errorf("Preview() = %q", got)
	}
	if got := (ChatSession{}).Preview(10); got != "" {
		t.Errorf("Preview() of empty session = %q, want empty", got)
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{in: "short", max: 10, want: "short"},
		{in: "exactly10!", max: 10, want: "exactly10!"},
		{in: "héllo wörld", max: 8, want: "héllo..."},
		{in: "abcdef", max: 2, want: "ab"},
		{in: "abc", max: 0, want: ""},
	}
	for _, tt := range tests {
		if got := TruncateRunes(tt.in, tt.max); got != tt.want {
			t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestLastMessage(t *testing.T) {
	if _, ok := (ChatSession{}).LastMessage(); ok {
		t.Error("LastMessage() on empty session should report false")
	}
	s := ChatSession{Messages: []ChatMessage{{ID: "1"}, {ID: "2"}}}
	if msg, ok := s.LastMessage(); !ok || msg.ID != "2" {
		t.Errorf("LastMessage() = %+v, %v", msg, ok)
	}
}

func TestChatSessionTouch(t *testing.T) {
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	s := ChatSession{CreatedAt: created, UpdatedAt: created}
	s.Touch(created.Add(time.Minute))
	if !s.UpdatedAt.Equal(created.Add(time.Minute)) {
		t.Errorf("UpdatedAt = %v, want %v", s.UpdatedAt, created.Add(time.Minute))
	}

	s.Touch(created.Add(-time.Hour))
	if !s.UpdatedAt.Equal(created) {
		t.Errorf("UpdatedAt = %v, want clamp to CreatedAt %v", s.UpdatedAt, created)
	}
}
