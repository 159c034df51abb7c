// Package app coordinates the session store, license gate and backend
// client for the command line.
//
// Shell keeps an in-memory mirror of the session list and the active
// session. Every mutation goes to the store first and the value the store
// returns is then folded into the mirror, so the two never diverge even when
// a best-effort write did not reach disk.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/iksnae/ragchat/internal"
	"github.com/iksnae/ragchat/internal/api"
	"github.com/iksnae/ragchat/internal/export"
)

// DefaultSessionName is given to sessions created without a name. Such
// sessions are renamed after their first message.
const DefaultSessionName = "New Chat"

const autoNameLength = 50

var (
	// ErrLicenseRequired is returned when a backend call is attempted without a credential
	ErrLicenseRequired = errors.New("license key required")

	// ErrNoActiveSession is returned when an operation needs an active session and there is none
	ErrNoActiveSession = errors.New("no active session")

	// ErrEmptyResponse is returned when the backend answers without a response or reports an error
	ErrEmptyResponse = errors.New("backend returned no answer")
)

// Backend is the part of the API client the shell depends on
type Backend interface {
	Health(ctx context.Context) (*api.HealthResponse, error)
	Query(ctx context.Context, req *api.QueryRequest) (*api.QueryResponse, error)
	ListDocuments(ctx context.Context) (*api.DocumentList, error)
	UploadDocument(ctx context.Context, fileName string, content io.Reader, sessionID string) (*api.UploadResponse, error)
	DeleteSessionDocuments(ctx context.Context, sessionID string) (*api.DeleteResponse, error)
	DeleteFileDocuments(ctx context.Context, fileName string) (*api.DeleteResponse, error)
}

// Options wires a Shell
type Options struct {
	Store    *internal.SessionStore
	Gate     *internal.LicenseGate
	Backend  Backend
	KV       internal.KVStore // holds the active session pointer
	Notifier Notifier
	Defaults internal.SessionSettings
	APIURL   string // used in hints only
}

// Shell is the application layer behind every command
type Shell struct {
	store    *internal.SessionStore
	gate     *internal.LicenseGate
	backend  Backend
	kv       internal.KVStore
	notifier Notifier
	defaults internal.SessionSettings
	apiURL   string

	sessions  []internal.ChatSession
	currentID string

	unsubscribe func()
}

// New creates a Shell and subscribes it to license events
func New(opts Options) *Shell {
	s := &Shell{
		store:    opts.Store,
		gate:     opts.Gate,
		backend:  opts.Backend,
		kv:       opts.KV,
		notifier: opts.Notifier,
		defaults: opts.Defaults,
		apiURL:   opts.APIURL,
	}
	if s.notifier == nil {
		s.notifier = NopNotifier{}
	}
	if s.gate != nil {
		s.unsubscribe = s.gate.Subscribe(s.onLicenseEvent)
	}
	return s
}

// Close drops the license subscription
func (s *Shell) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

func (s *Shell) onLicenseEvent(ev internal.LicenseEvent) {
	switch ev.Kind {
	case internal.LicenseUpdated:
		s.notifier.Notify(LevelSuccess, "License key saved")
	case internal.LicenseCleared:
		s.notifier.Notify(LevelWarning, "License key cleared. Run `ragchat license set <key>` to enter it again.")
	}
}

// Load fills the mirror from the store and restores the active session,
// falling back to the newest session.
func (s *Shell) Load() {
	s.sessions = s.store.ListSessions()
	s.currentID = ""

	if s.kv != nil {
		if id, ok, err := s.kv.Get(internal.ActiveSessionKey); err != nil {
			internal.LogWarn("Failed to read active session: %v", err)
		} else if ok && s.find(id) >= 0 {
			s.currentID = id
		}
	}
	if s.currentID == "" && len(s.sessions) > 0 {
		s.currentID = s.sessions[0].ID
	}
}

// Sessions returns the mirrored session list, newest first
func (s *Shell) Sessions() []internal.ChatSession {
	out := make([]internal.ChatSession, len(s.sessions))
	copy(out, s.sessions)
	return out
}

// Current returns the active session, or nil
func (s *Shell) Current() *internal.ChatSession {
	i := s.find(s.currentID)
	if i < 0 {
		return nil
	}
	c := s.sessions[i].Clone()
	return &c
}

// Session returns a session by id from the mirror
func (s *Shell) Session(id string) (internal.ChatSession, error) {
	i := s.find(id)
	if i < 0 {
		return internal.ChatSession{}, fmt.Errorf("%w: %s", internal.ErrSessionNotFound, id)
	}
	return s.sessions[i].Clone(), nil
}

// ResolveSession accepts a full id or a unique id prefix. An empty ref means
// the active session.
func (s *Shell) ResolveSession(ref string) (internal.ChatSession, error) {
	if ref == "" {
		if cur := s.Current(); cur != nil {
			return *cur, nil
		}
		return internal.ChatSession{}, ErrNoActiveSession
	}
	if i := s.find(ref); i >= 0 {
		return s.sessions[i].Clone(), nil
	}

	match := -1
	for i, session := range s.sessions {
		if strings.HasPrefix(session.ID, ref) {
			if match >= 0 {
				return internal.ChatSession{}, internal.NewValidationError("session", fmt.Sprintf("id prefix %q is ambiguous", ref))
			}
			match = i
		}
	}
	if match < 0 {
		return internal.ChatSession{}, fmt.Errorf("%w: %s", internal.ErrSessionNotFound, ref)
	}
	return s.sessions[match].Clone(), nil
}

func (s *Shell) find(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.sessions {
		if s.sessions[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Shell) setCurrent(id string) {
	s.currentID = id
	if s.kv == nil {
		return
	}
	var err error
	if id == "" {
		err = s.kv.Delete(internal.ActiveSessionKey)
	} else {
		err = s.kv.Set(internal.ActiveSessionKey, id)
	}
	if err != nil {
		internal.LogWarn("Failed to save active session: %v", err)
	}
}

// replace swaps the mirrored copy of an updated session
func (s *Shell) replace(session internal.ChatSession) {
	if i := s.find(session.ID); i >= 0 {
		s.sessions[i] = session
	}
}

// NewSession creates a session with the default settings and makes it active
func (s *Shell) NewSession(name string) internal.ChatSession {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultSessionName
	}

	created := s.store.CreateSession(name, s.defaults)

	s.sessions = append([]internal.ChatSession{created}, s.sessions...)
	if max := s.store.MaxSessions(); len(s.sessions) > max {
		evicted := len(s.sessions) - max
		s.sessions = s.sessions[:max]
		s.notifier.Notify(LevelInfo, fmt.Sprintf("Removed %d oldest session(s) to stay within the limit of %d", evicted, max))
	}
	s.setCurrent(created.ID)
	return created
}

// SelectSession makes id the active session
func (s *Shell) SelectSession(ref string) (internal.ChatSession, error) {
	if ref == "" {
		return internal.ChatSession{}, internal.NewValidationError("session", "id must not be empty")
	}
	session, err := s.ResolveSession(ref)
	if err != nil {
		return internal.ChatSession{}, err
	}
	s.setCurrent(session.ID)
	return session, nil
}

// RenameSession changes a session's display name
func (s *Shell) RenameSession(id, name string) (internal.ChatSession, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return internal.ChatSession{}, internal.NewValidationError("name", "must not be empty")
	}

	updated, err := s.store.UpdateSessionName(id, name)
	if err != nil {
		return internal.ChatSession{}, err
	}
	s.replace(updated)
	return updated, nil
}

// UpdateSettings validates and merges a partial settings change
func (s *Shell) UpdateSettings(id string, patch internal.SettingsPatch) (internal.ChatSession, error) {
	if patch.IsEmpty() {
		return internal.ChatSession{}, internal.NewValidationError("settings", "nothing to update")
	}
	if patch.Model != nil && strings.TrimSpace(*patch.Model) == "" {
		return internal.ChatSession{}, internal.NewValidationError("model", "must not be empty")
	}
	if patch.Temperature != nil {
		if err := internal.ValidateTemperature(*patch.Temperature); err != nil {
			return internal.ChatSession{}, internal.NewValidationError("temperature", err.Error())
		}
	}
	if patch.SearchType != nil && !patch.SearchType.Valid() {
		return internal.ChatSession{}, internal.NewValidationError("search_type", "must be one of hybrid, semantic, keyword")
	}

	updated, err := s.store.UpdateSessionSettings(id, patch)
	if err != nil {
		return internal.ChatSession{}, err
	}
	s.replace(updated)
	return updated, nil
}

// DeleteSession removes a session locally. With purgeDocuments the backend
// documents linked to the session are deleted first; if that fails the
// local session is kept.
func (s *Shell) DeleteSession(ctx context.Context, id string, purgeDocuments bool) error {
	if s.find(id) < 0 {
		if _, err := s.store.GetSession(id); err != nil {
			return err
		}
	}

	if purgeDocuments {
		if _, err := s.DeleteSessionDocuments(ctx, id); err != nil {
			return fmt.Errorf("failed to delete documents of session %s: %w", id, err)
		}
	}

	if err := s.store.DeleteSession(id); err != nil {
		return err
	}

	if i := s.find(id); i >= 0 {
		s.sessions = append(s.sessions[:i], s.sessions[i+1:]...)
	}
	if s.currentID == id {
		next := ""
		if len(s.sessions) > 0 {
			next = s.sessions[0].ID
		}
		s.setCurrent(next)
	}
	return nil
}

type sendOptions struct {
	newSession bool
	sessionRef string
}

// SendOption changes where SendMessage puts the question
type SendOption func(*sendOptions)

// InNewSession starts a fresh session for the question
func InNewSession() SendOption {
	return func(o *sendOptions) { o.newSession = true }
}

// InSession makes ref (an id or unique prefix) the active session first
func InSession(ref string) SendOption {
	return func(o *sendOptions) { o.sessionRef = ref }
}

// SendMessage appends content to the active session, asks the backend and
// appends the answer. A session is created when none is active. Options that
// create or switch sessions only take effect once content and license have
// been checked, so a rejected question changes nothing.
//
// The answer is appended to the session the question was asked in, even if
// the active session changed while the request was in flight. There is no
// guard against such late replies.
func (s *Shell) SendMessage(ctx context.Context, content string, selectedDocuments []string, opts ...SendOption) (internal.ChatMessage, error) {
	var o sendOptions
	for _, opt := range opts {
		opt(&o)
	}

	if strings.TrimSpace(content) == "" {
		return internal.ChatMessage{}, internal.NewValidationError("message", "must not be empty")
	}
	if s.gate != nil && !s.gate.IsPresent() {
		return internal.ChatMessage{}, ErrLicenseRequired
	}

	switch {
	case o.newSession:
		s.NewSession("")
	case o.sessionRef != "":
		if _, err := s.SelectSession(o.sessionRef); err != nil {
			return internal.ChatMessage{}, err
		}
	case s.Current() == nil:
		created := s.NewSession("")
		s.notifier.Notify(LevelInfo, fmt.Sprintf("Started new session %s", shortID(created.ID)))
	}
	sessionID := s.currentID

	if _, err := s.appendMessage(sessionID, internal.MessageInput{Role: internal.RoleUser, Content: content}); err != nil {
		return internal.ChatMessage{}, err
	}
	s.autoName(sessionID, content)

	session, err := s.Session(sessionID)
	if err != nil {
		return internal.ChatMessage{}, err
	}

	resp, err := s.backend.Query(ctx, api.NewQueryRequest(session, selectedDocuments))
	if err != nil {
		return internal.ChatMessage{}, err
	}
	if resp.Response == "" {
		if resp.Error != "" {
			return internal.ChatMessage{}, fmt.Errorf("%w: %s", ErrEmptyResponse, resp.Error)
		}
		return internal.ChatMessage{}, ErrEmptyResponse
	}

	md := resp.Metadata()
	if md.SearchType == "" {
		md.SearchType = session.Settings.SearchType
	}
	return s.appendMessage(sessionID, internal.MessageInput{
		Role:     internal.RoleAssistant,
		Content:  resp.Response,
		Metadata: md,
	})
}

func (s *Shell) appendMessage(sessionID string, in internal.MessageInput) (internal.ChatMessage, error) {
	msg, err := s.store.AddMessage(sessionID, in)
	if err != nil {
		return internal.ChatMessage{}, err
	}
	if i := s.find(sessionID); i >= 0 {
		s.sessions[i].Messages = append(s.sessions[i].Messages, msg)
		s.sessions[i].Touch(msg.Timestamp)
	}
	return msg, nil
}

// autoName renames a default-named session after its first question
func (s *Shell) autoName(sessionID, content string) {
	i := s.find(sessionID)
	if i < 0 || s.sessions[i].Name != DefaultSessionName || len(s.sessions[i].Messages) != 1 {
		return
	}
	line := strings.TrimSpace(strings.SplitN(strings.TrimSpace(content), "\n", 2)[0])
	if line == "" {
		return
	}
	if _, err := s.RenameSession(sessionID, internal.TruncateRunes(line, autoNameLength)); err != nil {
		internal.LogWarn("Failed to name session %s: %v", sessionID, err)
	}
}

// Health checks the backend
func (s *Shell) Health(ctx context.Context) (*api.HealthResponse, error) {
	return s.backend.Health(ctx)
}

// ListDocuments returns every document ingested by the backend
func (s *Shell) ListDocuments(ctx context.Context) (*api.DocumentList, error) {
	if err := s.requireLicense(); err != nil {
		return nil, err
	}
	return s.backend.ListDocuments(ctx)
}

// UploadDocument sends the file at path to the backend, linked to the
// active session when there is one.
func (s *Shell) UploadDocument(ctx context.Context, path string) (*api.UploadResponse, error) {
	if err := s.requireLicense(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, internal.NewValidationError("file", fmt.Sprintf("%s is a directory", path))
	}

	return s.backend.UploadDocument(ctx, filepath.Base(path), f, s.currentID)
}

// DeleteSessionDocuments removes every backend document linked to sessionID
func (s *Shell) DeleteSessionDocuments(ctx context.Context, sessionID string) (*api.DeleteResponse, error) {
	if err := s.requireLicense(); err != nil {
		return nil, err
	}
	if sessionID == "" {
		return nil, ErrNoActiveSession
	}
	return s.backend.DeleteSessionDocuments(ctx, sessionID)
}

// DeleteFileDocuments removes every backend document with the given file name
func (s *Shell) DeleteFileDocuments(ctx context.Context, fileName string) (*api.DeleteResponse, error) {
	if err := s.requireLicense(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(fileName) == "" {
		return nil, internal.NewValidationError("file", "name must not be empty")
	}
	return s.backend.DeleteFileDocuments(ctx, fileName)
}

func (s *Shell) requireLicense() error {
	if s.gate != nil && !s.gate.IsPresent() {
		return ErrLicenseRequired
	}
	return nil
}

// SetLicense validates and stores a credential
func (s *Shell) SetLicense(raw string) error {
	key, err := internal.NormalizeLicenseKey(raw)
	if err != nil {
		return err
	}
	s.gate.SetKey(key)
	return nil
}

// ClearLicense removes the credential
func (s *Shell) ClearLicense() {
	s.gate.Clear()
}

// LicensePresent reports whether a credential is held
func (s *Shell) LicensePresent() bool {
	return s.gate != nil && s.gate.IsPresent()
}

// Stats aggregates the stored sessions
func (s *Shell) Stats() internal.SessionStats {
	return s.store.GetSessionStats()
}

// ExportSessions writes the collection to dir in the given format and
// returns the file path. The json format is the store's export document and
// can be imported again.
func (s *Shell) ExportSessions(dir, format string) (string, error) {
	exporter, err := export.NewExporter(format)
	if err != nil {
		return "", internal.NewValidationError("format", err.Error())
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", &internal.ExportError{Format: format, Path: dir, Err: err}
	}

	if _, ok := exporter.(*export.JSONExporter); ok {
		data, name, err := s.store.ExportSessions()
		if err != nil {
			return "", &internal.ExportError{Format: "json", Path: dir, Err: err}
		}
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, data, 0644); err != nil {
			return "", &internal.ExportError{Format: "json", Path: path, Err: err}
		}
		return path, nil
	}

	path := filepath.Join(dir, export.FileName(exporter, time.Now()))
	f, err := os.Create(path)
	if err != nil {
		return "", &internal.ExportError{Format: format, Path: path, Err: err}
	}
	if err := exporter.Export(s.store.ListSessions(), f); err != nil {
		_ = f.Close()
		return "", &internal.ExportError{Format: format, Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return "", &internal.ExportError{Format: format, Path: path, Err: err}
	}
	return path, nil
}

// ImportSessions replaces the stored collection with the JSON export at
// path and reloads the mirror.
func (s *Shell) ImportSessions(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	if err := s.store.ImportSessions(f); err != nil {
		return 0, err
	}

	s.Load()
	return len(s.sessions), nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
