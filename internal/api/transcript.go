package api

import "github.com/iksnae/ragchat/internal"

// BuildTranscript converts a session history to the backend transcript
// format. Assistant turns are sent with the "agent" role.
func BuildTranscript(messages []internal.ChatMessage) []TranscriptEntry {
	out := make([]TranscriptEntry, 0, len(messages))
	for _, msg := range messages {
		role := RoleUser
		if msg.Role == internal.RoleAssistant {
			role = RoleAgent
		}
		out = append(out, TranscriptEntry{Role: role, Content: msg.Content})
	}
	return out
}

// NewQueryRequest builds a query for the session's transcript and settings
func NewQueryRequest(session internal.ChatSession, selectedDocuments []string) *QueryRequest {
	temperature := session.Settings.Temperature
	return &QueryRequest{
		Transcript:        BuildTranscript(session.Messages),
		SearchType:        string(session.Settings.SearchType),
		Temperature:       &temperature,
		Model:             session.Settings.Model,
		SelectedDocuments: selectedDocuments,
	}
}

// Metadata converts the retrieval statistics of a reply to message metadata
func (r *QueryResponse) Metadata() *internal.MessageMetadata {
	return &internal.MessageMetadata{
		DocumentsRetrieved: r.DocumentsRetrieved,
		ProcessingTime:     r.ProcessingTime,
		SearchType:         internal.SearchType(r.SearchType),
	}
}
