package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/iksnae/ragchat/internal"
)

// JSONLExporter writes one message per line, tagged with its session
type JSONLExporter struct{}

type jsonlRecord struct {
	SessionID   string                    `json:"session_id"`
	SessionName string                    `json:"session_name"`
	Role        internal.Role             `json:"role"`
	Content     string                    `json:"content"`
	Timestamp   string                    `json:"timestamp"`
	Metadata    *internal.MessageMetadata `json:"metadata,omitempty"`
}

// Export writes every message of every session as a JSON line
func (e *JSONLExporter) Export(sessions []internal.ChatSession, w io.Writer) error {
	enc := json.NewEncoder(w)

	for _, session := range sessions {
		for _, msg := range session.Messages {
			rec := jsonlRecord{
				SessionID:   session.ID,
				SessionName: session.Name,
				Role:        msg.Role,
				Content:     msg.Content,
				Timestamp:   msg.Timestamp.Format("2006-01-02T15:04:05.000Z07:00"),
				Metadata:    msg.Metadata,
			}
			if err := enc.Encode(rec); err != nil {
				return fmt.Errorf("failed to encode message: %w", err)
			}
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
