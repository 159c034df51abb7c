package internal

import (
	"database/sql"
	"errors"
	"sort"
	"sync"
)

// Storage keys used by ragchat
const (
	SessionsKey      = "ragchat.sessions"
	LicenseKeyKey    = "ragchat.license_key"
	ActiveSessionKey = "ragchat.active_session"
)

// KVStore is the persistent string store sessions and the license key live in
type KVStore interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// SQLiteKV is a KVStore backed by the kv table of a SQLite database
type SQLiteKV struct {
	db   *sql.DB
	path string
}

// NewSQLiteKV wraps an already opened database
func NewSQLiteKV(db *sql.DB) *SQLiteKV {
	return &SQLiteKV{db: db}
}

// OpenSQLiteKV opens the database at path and wraps it
func OpenSQLiteKV(path string) (*SQLiteKV, error) {
	db, err := OpenDatabase(path)
	if err != nil {
		return nil, &StorageError{Op: "open", Key: path, Err: err}
	}
	return &SQLiteKV{db: db, path: path}, nil
}

// Path returns the database file path, empty when the caller supplied the handle
func (s *SQLiteKV) Path() string {
	return s.path
}

// Get implements KVStore
func (s *SQLiteKV) Get(key string) (string, bool, error) {
	value, ok, err := QueryKV(s.db, key)
	if err != nil {
		return "", false, &StorageError{Op: "get", Key: key, Err: err}
	}
	return value, ok, nil
}

// Set implements KVStore
func (s *SQLiteKV) Set(key, value string) error {
	if err := UpsertKV(s.db, key, value); err != nil {
		return &StorageError{Op: "set", Key: key, Err: err}
	}
	return nil
}

// Delete implements KVStore
func (s *SQLiteKV) Delete(key string) error {
	if err := DeleteKV(s.db, key); err != nil {
		return &StorageError{Op: "delete", Key: key, Err: err}
	}
	return nil
}

// Keys lists every stored key
func (s *SQLiteKV) Keys() ([]string, error) {
	keys, err := ListKVKeys(s.db)
	if err != nil {
		return nil, &StorageError{Op: "list", Err: err}
	}
	return keys, nil
}

// Close closes the underlying database
func (s *SQLiteKV) Close() error {
	return s.db.Close()
}

// ErrWriteFailed is returned by MemoryKV writes while failure injection is on
var ErrWriteFailed = errors.New("write failed")

// MemoryKV is an in-process KVStore, used in tests and as a fallback
type MemoryKV struct {
	mu         sync.RWMutex
	data       map[string]string
	failWrites bool
}

// NewMemoryKV creates an empty MemoryKV
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]string)}
}

// FailWrites makes every subsequent Set and Delete fail while on is true
func (m *MemoryKV) FailWrites(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWrites = on
}

// Get implements KVStore
func (m *MemoryKV) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.data[key]
	return value, ok, nil
}

// Set implements KVStore
func (m *MemoryKV) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites {
		return &StorageError{Op: "set", Key: key, Err: ErrWriteFailed}
	}
	m.data[key] = value
	return nil
}

// Delete implements KVStore
func (m *MemoryKV) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites {
		return &StorageError{Op: "delete", Key: key, Err: ErrWriteFailed}
	}
	delete(m.data, key)
	return nil
}

// Keys lists every stored key in lexical order
func (m *MemoryKV) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
