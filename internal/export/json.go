package export

import (
	"io"

	"github.com/iksnae/ragchat/internal"
)

// JSONExporter writes the import-compatible JSON array
type JSONExporter struct{}

// Export writes sessions as an indented JSON array
func (e *JSONExporter) Export(sessions []internal.ChatSession, w io.Writer) error {
	data, err := internal.EncodeSessions(sessions)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}

// Extension returns the file extension for this format
func (e *JSONExporter) Extension() string {
	return "json"
}
