package internal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ValidateSessionRecord checks that a decoded JSON value has the ChatSession
// shape: string id and name, a messages array, and settings with a string
// model, a numeric temperature and a known search_type. It returns the first
// violated field.
func ValidateSessionRecord(index int, record interface{}) error {
	obj, ok := record.(map[string]interface{})
	if !ok {
		return &ValidationError{Index: index, Reason: "record is not an object"}
	}

	id, ok := obj["id"].(string)
	if !ok {
		return &ValidationError{Index: index, Field: "id", Reason: "must be a string"}
	}
	if strings.TrimSpace(id) == "" {
		return &ValidationError{Index: index, Field: "id", Reason: "must not be empty"}
	}
	if _, ok := obj["name"].(string); !ok {
		return &ValidationError{Index: index, Field: "name", Reason: "must be a string"}
	}
	if _, ok := obj["messages"].([]interface{}); !ok {
		return &ValidationError{Index: index, Field: "messages", Reason: "must be an array"}
	}

	settings, ok := obj["settings"].(map[string]interface{})
	if !ok {
		return &ValidationError{Index: index, Field: "settings", Reason: "must be an object"}
	}
	if _, ok := settings["model"].(string); !ok {
		return &ValidationError{Index: index, Field: "settings.model", Reason: "must be a string"}
	}
	if _, ok := settings["temperature"].(float64); !ok {
		return &ValidationError{Index: index, Field: "settings.temperature", Reason: "must be a number"}
	}
	st, ok := settings["search_type"].(string)
	if !ok || !SearchType(st).Valid() {
		return &ValidationError{Index: index, Field: "settings.search_type", Reason: "must be one of hybrid, semantic, keyword"}
	}

	return nil
}

// DecodeSessionPayload parses and validates a serialized session collection.
// Nothing is returned unless every record is valid.
func DecodeSessionPayload(data []byte) ([]ChatSession, error) {
	var root interface{}
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, NewValidationError("", fmt.Sprintf("payload is not valid JSON: %v", err))
	}

	records, ok := root.([]interface{})
	if !ok {
		return nil, NewValidationError("", "payload is not an array of sessions")
	}

	seen := make(map[string]bool, len(records))
	for i, record := range records {
		if err := ValidateSessionRecord(i, record); err != nil {
			return nil, err
		}
		id := record.(map[string]interface{})["id"].(string)
		if seen[id] {
			return nil, &ValidationError{Index: i, Field: "id", Reason: fmt.Sprintf("duplicate session id %q", id)}
		}
		seen[id] = true
	}

	// The shape is known good; a strict decode now catches wrongly typed
	// nested values such as a numeric message content or a bad timestamp.
	var sessions []ChatSession
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&sessions); err != nil {
		return nil, NewValidationError("", fmt.Sprintf("malformed session data: %v", err))
	}

	now := time.Now()
	for i := range sessions {
		normalizeSession(&sessions[i], now)
	}

	return sessions, nil
}

// normalizeSession fills zero timestamps and restores UpdatedAt >= CreatedAt
func normalizeSession(s *ChatSession, now time.Time) {
	if s.Messages == nil {
		s.Messages = []ChatMessage{}
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if s.UpdatedAt.Before(s.CreatedAt) {
		s.UpdatedAt = s.CreatedAt
	}
}
