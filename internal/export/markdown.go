package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/ragchat/internal"
)

// MarkdownExporter renders sessions as readable transcripts
type MarkdownExporter struct{}

// Export writes one section per session
func (e *MarkdownExporter) Export(sessions []internal.ChatSession, w io.Writer) error {
	_, _ = fmt.Fprintf(w, "# Chat sessions\n\n")
	_, _ = fmt.Fprintf(w, "**Sessions:** %d\n\n", len(sessions))

	for _, session := range sessions {
		_, _ = fmt.Fprintf(w, "---\n\n")
		_, _ = fmt.Fprintf(w, "## %s\n\n", sessionTitle(session))
		_, _ = fmt.Fprintf(w, "**ID:** %s  \n", session.ID)
		_, _ = fmt.Fprintf(w, "**Created:** %s  \n", session.CreatedAt.Format("2006-01-02 15:04:05"))
		_, _ = fmt.Fprintf(w, "**Model:** %s  \n", session.Settings.Model)
		_, _ = fmt.Fprintf(w, "**Temperature:** %.2f  \n", session.Settings.Temperature)
		_, _ = fmt.Fprintf(w, "**Search:** %s\n\n", session.Settings.SearchType)

		for _, msg := range session.Messages {
			_, _ = fmt.Fprintf(w, "**%s** (%s):\n\n%s\n\n", roleLabel(msg.Role), msg.Timestamp.Format("15:04"), escapeMarkdown(msg.Content))
			if md := msg.Metadata; md != nil && md.DocumentsRetrieved > 0 {
				_, _ = fmt.Fprintf(w, "_%d document(s) retrieved in %.2fs via %s search_\n\n", md.DocumentsRetrieved, md.ProcessingTime, md.SearchType)
			}
		}
	}

	return nil
}

func sessionTitle(s internal.ChatSession) string {
	if s.Name == "" {
		return "Untitled"
	}
	return s.Name
}

func roleLabel(r internal.Role) string {
	if r == internal.RoleAssistant {
		return "Assistant"
	}
	return "User"
}

// escapeMarkdown escapes emphasis markers outside fenced code blocks
func escapeMarkdown(text string) string {
	lines := strings.Split(text, "\n")
	var result []string
	inCodeBlock := false

	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			inCodeBlock = !inCodeBlock
			result = append(result, line)
		} else if inCodeBlock {
			result = append(result, line)
		} else {
			line = strings.ReplaceAll(line, "**", "\\*\\*")
			line = strings.ReplaceAll(line, "__", "\\_\\_")
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n")
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
