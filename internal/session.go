package internal

import (
	"time"
)

// Role identifies the author of a chat message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// SearchType selects how the backend retrieves supporting passages
type SearchType string

const (
	SearchHybrid   SearchType = "hybrid"
	SearchSemantic SearchType = "semantic"
	SearchKeyword  SearchType = "keyword"
)

// SearchTypes lists the accepted search strategies in display order
var SearchTypes = []SearchType{SearchHybrid, SearchSemantic, SearchKeyword}

// Valid reports whether st is one of the known search strategies
func (st SearchType) Valid() bool {
	switch st {
	case SearchHybrid, SearchSemantic, SearchKeyword:
		return true
	}
	return false
}

// SessionSettings holds the per-session model and retrieval configuration
type SessionSettings struct {
	Model       string     `json:"model" yaml:"model"`
	Temperature float64    `json:"temperature" yaml:"temperature"`
	SearchType  SearchType `json:"search_type" yaml:"search_type"`
}

// SettingsPatch is a partial settings update. Nil fields are left untouched.
type SettingsPatch struct {
	Model       *string
	Temperature *float64
	SearchType  *SearchType
}

// IsEmpty reports whether the patch changes nothing
func (p SettingsPatch) IsEmpty() bool {
	return p.Model == nil && p.Temperature == nil && p.SearchType == nil
}

// Apply merges the non-nil fields of p into s
func (p SettingsPatch) Apply(s SessionSettings) SessionSettings {
	if p.Model != nil {
		s.Model = *p.Model
	}
	if p.Temperature != nil {
		s.Temperature = *p.Temperature
	}
	if p.SearchType != nil {
		s.SearchType = *p.SearchType
	}
	return s
}

// MessageMetadata carries retrieval statistics for assistant replies
type MessageMetadata struct {
	DocumentsRetrieved int        `json:"documents_retrieved,omitempty" yaml:"documents_retrieved,omitempty"`
	ProcessingTime     float64    `json:"processing_time,omitempty" yaml:"processing_time,omitempty"`
	SearchType         SearchType `json:"search_type,omitempty" yaml:"search_type,omitempty"`
}

// ChatMessage is a single entry in a session transcript
type ChatMessage struct {
	ID        string           `json:"id" yaml:"id"`
	Role      Role             `json:"role" yaml:"role"`
	Content   string           `json:"content" yaml:"content"`
	Timestamp time.Time        `json:"timestamp" yaml:"timestamp"`
	Metadata  *MessageMetadata `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// MessageInput is a message before the store assigns its id and timestamp
type MessageInput struct {
	Role     Role
	Content  string
	Metadata *MessageMetadata
}

// ChatSession is a named conversation thread with its own settings
type ChatSession struct {
	ID        string          `json:"id" yaml:"id"`
	Name      string          `json:"name" yaml:"name"`
	Messages  []ChatMessage   `json:"messages" yaml:"messages"`
	CreatedAt time.Time       `json:"createdAt" yaml:"created_at"`
	UpdatedAt time.Time       `json:"updatedAt" yaml:"updated_at"`
	Settings  SessionSettings `json:"settings" yaml:"settings"`
}

// Clone returns a copy that shares no message storage with s
func (s ChatSession) Clone() ChatSession {
	out := s
	out.Messages = make([]ChatMessage, len(s.Messages))
	for i, msg := range s.Messages {
		if msg.Metadata != nil {
			md := *msg.Metadata
			msg.Metadata = &md
		}
		out.Messages[i] = msg
	}
	return out
}

// Touch sets UpdatedAt to t, never earlier than CreatedAt
func (s *ChatSession) Touch(t time.Time) {
	if t.Before(s.CreatedAt) {
		t = s.CreatedAt
	}
	s.UpdatedAt = t
}

// LastMessage returns the most recently appended message, if any
func (s ChatSession) LastMessage() (ChatMessage, bool) {
	if len(s.Messages) == 0 {
		return ChatMessage{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// Preview returns the first user message truncated to max runes
func (s ChatSession) Preview(max int) string {
	for _, msg := range s.Messages {
		if msg.Role == RoleUser && msg.Content != "" {
			return TruncateRunes(msg.Content, max)
		}
	}
	return ""
}

// TruncateRunes shortens s to at most max runes, marking the cut with "..."
func TruncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
