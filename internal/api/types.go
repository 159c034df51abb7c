package api

// Transcript roles understood by the backend
const (
	RoleUser   = "user"
	RoleAgent  = "agent"
	RoleSystem = "system"
)

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// TranscriptEntry is one turn of the conversation sent with a query
type TranscriptEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// QueryRequest is the body of POST /api/rag/query
type QueryRequest struct {
	Transcript        []TranscriptEntry `json:"transcript"`
	SearchType        string            `json:"search_type,omitempty"`
	Temperature       *float64          `json:"temperature,omitempty"`
	Model             string            `json:"model,omitempty"`
	SelectedDocuments []string          `json:"selected_documents,omitempty"`
}

// QueryResponse is the generated answer plus retrieval metadata
type QueryResponse struct {
	Response           string   `json:"response"`
	ContextUsed        []string `json:"context_used,omitempty"`
	DocumentsRetrieved int      `json:"documents_retrieved,omitempty"`
	ProcessingTime     float64  `json:"processing_time,omitempty"`
	SearchType         string   `json:"search_type,omitempty"`
	Error              string   `json:"error,omitempty"`
}

// DocumentFile describes one ingested file
type DocumentFile struct {
	FileName    string   `json:"file_name"`
	UploadedAt  string   `json:"uploaded_at"`
	ContentType string   `json:"content_type"`
	TotalChunks int      `json:"total_chunks"`
	Sessions    []string `json:"sessions"`
}

// DocumentList is returned by GET /api/documents/all
type DocumentList struct {
	TotalDocuments int            `json:"total_documents"`
	UniqueFiles    int            `json:"unique_files"`
	Files          []DocumentFile `json:"files"`
	Timestamp      string         `json:"timestamp"`
}

// FilesForSession returns the files linked to sessionID
func (l *DocumentList) FilesForSession(sessionID string) []DocumentFile {
	var out []DocumentFile
	for _, f := range l.Files {
		for _, s := range f.Sessions {
			if s == sessionID {
				out = append(out, f)
				break
			}
		}
	}
	return out
}

// UploadResponse summarizes the processing of an uploaded document
type UploadResponse struct {
	Message            string `json:"message"`
	DocumentsProcessed int    `json:"documents_processed"`
	Status             string `json:"status"`
	SessionID          string `json:"session_id"`
}

// DeleteResponse is returned by both document delete endpoints. The session
// endpoint reports its count as either deleted_count or documents_deleted.
type DeleteResponse struct {
	Message          string `json:"message"`
	DeletedCount     *int   `json:"deleted_count,omitempty"`
	DocumentsDeleted *int   `json:"documents_deleted,omitempty"`
	FileName         string `json:"file_name,omitempty"`
	Timestamp        string `json:"timestamp"`
}

// Count returns the number of deleted documents whichever field carried it
func (r *DeleteResponse) Count() int {
	switch {
	case r.DeletedCount != nil:
		return *r.DeletedCount
	case r.DocumentsDeleted != nil:
		return *r.DocumentsDeleted
	default:
		return 0
	}
}
