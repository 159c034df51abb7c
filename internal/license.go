package internal

import (
	"strings"
	"sync"
)

// LicenseEventKind tells subscribers how the credential changed
type LicenseEventKind int

const (
	LicenseUpdated LicenseEventKind = iota
	LicenseCleared
)

func (k LicenseEventKind) String() string {
	switch k {
	case LicenseUpdated:
		return "updated"
	case LicenseCleared:
		return "cleared"
	default:
		return "unknown"
	}
}

// LicenseEvent is broadcast to subscribers on every credential change
type LicenseEvent struct {
	Kind LicenseEventKind
}

// LicenseGate holds the single license credential sent with every backend
// request. It is Gated while a non-empty credential is stored and Ungated
// otherwise; a rejected request or an explicit clear moves it back to Ungated.
type LicenseGate struct {
	mu     sync.RWMutex
	kv     KVStore
	key    string
	nextID int
	subs   map[int]func(LicenseEvent)
}

// NewLicenseGate loads any stored credential from kv
func NewLicenseGate(kv KVStore) *LicenseGate {
	g := &LicenseGate{
		kv:   kv,
		subs: make(map[int]func(LicenseEvent)),
	}

	value, ok, err := kv.Get(LicenseKeyKey)
	if err != nil {
		LogWarn("Failed to read license key: %v", err)
	} else if ok {
		g.key = strings.TrimSpace(value)
	}

	return g
}

// NormalizeLicenseKey trims raw input and rejects empty credentials. Callers
// must run user input through it before SetKey.
func NormalizeLicenseKey(raw string) (string, error) {
	key := strings.TrimSpace(raw)
	if key == "" {
		return "", NewValidationError("license_key", "must not be empty")
	}
	return key, nil
}

// Seed sets key in memory when no credential is held. Nothing is persisted
// or broadcast; it is used for keys supplied through configuration.
func (g *LicenseGate) Seed(key string) bool {
	key = strings.TrimSpace(key)
	if key == "" {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.key != "" {
		return false
	}
	g.key = key
	return true
}

// Key returns the current credential
func (g *LicenseGate) Key() (string, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.key, g.key != ""
}

// IsPresent reports whether a credential is currently held
func (g *LicenseGate) IsPresent() bool {
	_, ok := g.Key()
	return ok
}

// SetKey stores key and broadcasts LicenseUpdated. key must already be
// trimmed and non-empty. A failed write is logged; the gate still holds key.
func (g *LicenseGate) SetKey(key string) {
	g.mu.Lock()
	g.key = key
	g.mu.Unlock()

	if err := g.kv.Set(LicenseKeyKey, key); err != nil {
		LogWarn("Failed to save license key: %v", err)
	}
	g.publish(LicenseEvent{Kind: LicenseUpdated})
}

// Clear drops the credential and broadcasts LicenseCleared
func (g *LicenseGate) Clear() {
	g.mu.Lock()
	g.key = ""
	g.mu.Unlock()

	if err := g.kv.Delete(LicenseKeyKey); err != nil {
		LogWarn("Failed to remove license key: %v", err)
	}
	g.publish(LicenseEvent{Kind: LicenseCleared})
}

// Subscribe registers fn for license events and returns a function that
// removes the subscription.
func (g *LicenseGate) Subscribe(fn func(LicenseEvent)) func() {
	g.mu.Lock()
	id := g.nextID
	g.nextID++
	g.subs[id] = fn
	g.mu.Unlock()

	return func() {
		g.mu.Lock()
		delete(g.subs, id)
		g.mu.Unlock()
	}
}

func (g *LicenseGate) publish(ev LicenseEvent) {
	g.mu.RLock()
	subs := make([]func(LicenseEvent), 0, len(g.subs))
	for _, fn := range g.subs {
		subs = append(subs, fn)
	}
	g.mu.RUnlock()

	LogDebug("License %s, notifying %d subscriber(s)", ev.Kind, len(subs))
	for _, fn := range subs {
		fn(ev)
	}
}
