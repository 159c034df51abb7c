package export

import (
	"fmt"
	"io"
	"time"

	"github.com/iksnae/ragchat/internal"
)

// Exporter defines the interface for all export formats
type Exporter interface {
	Export(sessions []internal.ChatSession, w io.Writer) error
	Extension() string
}

// Formats lists the accepted format names
var Formats = []string{"json", "jsonl", "yaml", "md"}

// NewExporter creates a new exporter based on format. Only "json" output can
// be read back by import.
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "", "json":
		return &JSONExporter{}, nil
	case "jsonl":
		return &JSONLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "yaml", "yml":
		return &YAMLExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: json, jsonl, yaml, md)", format)
	}
}

// FileName returns the timestamped output file name for an exporter
func FileName(e Exporter, t time.Time) string {
	return internal.ExportFileNameWithExt(t, e.Extension())
}
