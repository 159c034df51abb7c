package app

import "sync"

// Level classifies a notification
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Notifier shows user-facing messages
type Notifier interface {
	Notify(level Level, message string)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(level Level, message string)

// Notify calls f
func (f NotifierFunc) Notify(level Level, message string) {
	f(level, message)
}

// NopNotifier discards notifications
type NopNotifier struct{}

// Notify does nothing
func (NopNotifier) Notify(Level, string) {}

// Notification is one recorded message
type Notification struct {
	Level   Level
	Message string
}

// RecordingNotifier keeps every notification it receives
type RecordingNotifier struct {
	mu    sync.Mutex
	items []Notification
}

// Notify records the message
func (r *RecordingNotifier) Notify(level Level, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, Notification{Level: level, Message: message})
}

// Notifications returns a copy of the recorded messages
func (r *RecordingNotifier) Notifications() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.items))
	copy(out, r.items)
	return out
}
