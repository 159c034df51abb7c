package export

import (
	"io"

	"github.com/iksnae/ragchat/internal"
	"gopkg.in/yaml.v3"
)

// YAMLExporter exports sessions in YAML format
type YAMLExporter struct{}

// Export writes sessions as a YAML sequence
func (e *YAMLExporter) Export(sessions []internal.ChatSession, w io.Writer) error {
	if sessions == nil {
		sessions = []internal.ChatSession{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer func() { _ = enc.Close() }()

	return enc.Encode(sessions)
}

// Extension returns the file extension for this format
func (e *YAMLExporter) Extension() string {
	return "yaml"
}
