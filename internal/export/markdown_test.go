package export

import (
	"bytes"
	"strings"
	"testing"
)

func TestMarkdownExporter_Export(t *testing.T) {
	var buf bytes.Buffer
	if err := (&MarkdownExporter{}).Export(sampleSessions(), &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	out := buf.String()

	wants := []string{
		"# Chat sessions",
		"**Sessions:** 2",
		"## Refund policy",
		"## Untitled",
		"**ID:** session-1",
		"**Model:** gpt-4o-mini",
		"**Search:** keyword",
		"**User**",
		"**Assistant**",
		"_2 document(s) retrieved in 0.80s via hybrid search_",
	}
	for _, want := range wants {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestEscapeMarkdown(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "bold", in: "a **b**", want: `a \*\*b\*\*`},
		{name: "underscore", in: "__init__", want: `\_\_init\_\_`},
		{name: "code block untouched", in: "```\nx **y**\n```", want: "```\nx **y**\n```"},
		{name: "plain", in: "nothing here", want: "nothing here"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := escapeMarkdown(tt.in); got != tt.want {
				t.Errorf("escapeMarkdown() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMarkdownExporter_Extension(t *testing.T) {
	if got := (&MarkdownExporter{}).Extension(); got != "md" {
		t.Errorf("Extension() = %q, want md", got)
	}
}
