package internal

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultMaxSessions is the number of sessions kept when no cap is configured
const DefaultMaxSessions = 50

// maxImportSize bounds how much an import reads before giving up
const maxImportSize = 64 << 20

// SessionStore owns the persisted session collection. The collection is kept
// as one JSON array under SessionsKey, newest session first.
//
// Reads never fail: unreadable or corrupt data is logged and treated as an
// empty collection. Writes are best-effort: a failed write is logged and the
// mutated value is still returned, so callers cannot assume it was persisted.
type SessionStore struct {
	mu          sync.Mutex
	kv          KVStore
	maxSessions int
	now         func() time.Time
	newID       func() string
}

// StoreOption configures a SessionStore
type StoreOption func(*SessionStore)

// WithMaxSessions sets the retention cap. Values below one keep the default.
func WithMaxSessions(n int) StoreOption {
	return func(s *SessionStore) {
		if n > 0 {
			s.maxSessions = n
		}
	}
}

// WithClock replaces the time source, mainly for tests
func WithClock(now func() time.Time) StoreOption {
	return func(s *SessionStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator replaces the id source, mainly for tests
func WithIDGenerator(newID func() string) StoreOption {
	return func(s *SessionStore) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// NewSessionStore creates a store over kv
func NewSessionStore(kv KVStore, opts ...StoreOption) *SessionStore {
	s := &SessionStore{
		kv:          kv,
		maxSessions: DefaultMaxSessions,
		now:         func() time.Time { return time.Now().UTC().Round(0) },
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MaxSessions returns the retention cap
func (s *SessionStore) MaxSessions() int {
	return s.maxSessions
}

// load reads the collection, degrading to empty on any failure
func (s *SessionStore) load() []ChatSession {
	raw, ok, err := s.kv.Get(SessionsKey)
	if err != nil {
		LogWarn("Failed to read sessions: %v", err)
		return []ChatSession{}
	}
	if !ok || raw == "" {
		return []ChatSession{}
	}

	var sessions []ChatSession
	if err := json.Unmarshal([]byte(raw), &sessions); err != nil {
		LogWarn("%v", &ParseError{Source: "storage", Key: SessionsKey, Err: err})
		return []ChatSession{}
	}
	if sessions == nil {
		return []ChatSession{}
	}
	return sessions
}

// persist writes the collection and reports whether it reached storage
func (s *SessionStore) persist(sessions []ChatSession) bool {
	data, err := json.Marshal(sessions)
	if err != nil {
		LogError("Failed to encode sessions: %v", err)
		return false
	}
	if err := s.kv.Set(SessionsKey, string(data)); err != nil {
		LogWarn("Failed to save sessions: %v", err)
		return false
	}
	return true
}

func (s *SessionStore) touch(session *ChatSession) {
	session.Touch(s.now())
}

func indexOf(sessions []ChatSession, id string) int {
	for i := range sessions {
		if sessions[i].ID == id {
			return i
		}
	}
	return -1
}

// ListSessions returns every stored session, most recently created first
func (s *SessionStore) ListSessions() []ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// GetSession returns the session with the given id or ErrSessionNotFound
func (s *SessionStore) GetSession(id string) (ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := s.load()
	i := indexOf(sessions, id)
	if i < 0 {
		return ChatSession{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sessions[i], nil
}

// CreateSession stores a new empty session at the head of the collection.
// When the collection grows past the cap the oldest-created sessions are
// dropped from the tail.
func (s *SessionStore) CreateSession(name string, settings SessionSettings) ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	session := ChatSession{
		ID:        s.newID(),
		Name:      name,
		Messages:  []ChatMessage{},
		CreatedAt: now,
		UpdatedAt: now,
		Settings:  settings,
	}

	sessions := append([]ChatSession{session}, s.load()...)
	if len(sessions) > s.maxSessions {
		LogDebug("Evicting %d session(s) beyond cap of %d", len(sessions)-s.maxSessions, s.maxSessions)
		sessions = sessions[:s.maxSessions]
	}

	s.persist(sessions)
	return session
}

// UpdateSessionName renames a session and returns the updated record
func (s *SessionStore) UpdateSessionName(id, name string) (ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := s.load()
	i := indexOf(sessions, id)
	if i < 0 {
		return ChatSession{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	sessions[i].Name = name
	s.touch(&sessions[i])
	s.persist(sessions)
	return sessions[i], nil
}

// AddMessage assigns an id and timestamp to in and appends it to the session.
// An unknown id leaves storage untouched.
func (s *SessionStore) AddMessage(id string, in MessageInput) (ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := s.load()
	i := indexOf(sessions, id)
	if i < 0 {
		return ChatMessage{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	session := &sessions[i]
	ts := s.now()
	if last, ok := session.LastMessage(); ok && ts.Before(last.Timestamp) {
		ts = last.Timestamp
	}

	msg := ChatMessage{
		ID:        s.newID(),
		Role:      in.Role,
		Content:   in.Content,
		Timestamp: ts,
	}
	if in.Metadata != nil {
		md := *in.Metadata
		msg.Metadata = &md
	}

	session.Messages = append(session.Messages, msg)
	session.Touch(ts)
	s.persist(sessions)
	return msg, nil
}

// UpdateSessionSettings merges the non-nil fields of patch into the session
// settings and returns the updated record
func (s *SessionStore) UpdateSessionSettings(id string, patch SettingsPatch) (ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := s.load()
	i := indexOf(sessions, id)
	if i < 0 {
		return ChatSession{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	sessions[i].Settings = patch.Apply(sessions[i].Settings)
	s.touch(&sessions[i])
	s.persist(sessions)
	return sessions[i], nil
}

// DeleteSession removes a session
func (s *SessionStore) DeleteSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := s.load()
	i := indexOf(sessions, id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	sessions = append(sessions[:i], sessions[i+1:]...)
	s.persist(sessions)
	return nil
}

// ExportSessions encodes the whole collection as an indented JSON array and
// returns it with a timestamped file name.
func (s *SessionStore) ExportSessions() ([]byte, string, error) {
	sessions := s.ListSessions()

	data, err := EncodeSessions(sessions)
	if err != nil {
		return nil, "", err
	}
	return data, ExportFileName(s.now()), nil
}

// ImportSessions replaces the stored collection with the sessions read from
// r. The payload must be a JSON array whose every record passes
// ValidateSessionRecord; otherwise a *ValidationError is returned and storage
// is left unchanged. The replacement is a single write.
func (s *SessionStore) ImportSessions(r io.Reader) error {
	data, err := io.ReadAll(io.LimitReader(r, maxImportSize))
	if err != nil {
		return &ParseError{Source: "import", Key: "payload", Err: err}
	}

	sessions, err := DecodeSessionPayload(data)
	if err != nil {
		return err
	}

	encoded, err := json.Marshal(sessions)
	if err != nil {
		return fmt.Errorf("failed to encode sessions: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Set(SessionsKey, string(encoded)); err != nil {
		LogWarn("Failed to save imported sessions: %v", err)
		return err
	}
	LogInfo("Imported %d session(s)", len(sessions))
	return nil
}

// EncodeSessions renders sessions in the export/import JSON format
func EncodeSessions(sessions []ChatSession) ([]byte, error) {
	if sessions == nil {
		sessions = []ChatSession{}
	}
	data, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode sessions: %w", err)
	}
	return data, nil
}

// ExportFileName returns the export file name for the given instant
func ExportFileName(t time.Time) string {
	return ExportFileNameWithExt(t, "json")
}

// ExportFileNameWithExt is ExportFileName with a custom extension
func ExportFileNameWithExt(t time.Time, ext string) string {
	return fmt.Sprintf("ragchat-sessions-%s.%s", t.Local().Format("20060102-150405"), ext)
}
