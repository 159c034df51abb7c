package app

import (
	"errors"
	"fmt"
	"testing"

	"github.com/iksnae/ragchat/internal"
	"github.com/iksnae/ragchat/internal/api"
	"github.com/stretchr/testify/assert"
)

func TestHintFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "unauthorized", err: &api.UnauthorizedError{StatusCode: 401}, want: "license set"},
		{name: "license required", err: ErrLicenseRequired, want: "RAGCHAT_LICENSE_KEY"},
		{name: "network", err: &api.NetworkError{Op: "GET", URL: "u", Err: errors.New("refused")}, want: "http://rag.test"},
		{name: "not found", err: fmt.Errorf("%w: x", internal.ErrSessionNotFound), want: "session list"},
		{name: "no active session", err: ErrNoActiveSession, want: "session new"},
		{name: "validation", err: internal.NewValidationError("name", "empty"), want: "Check the input"},
		{name: "server error", err: &api.HTTPError{StatusCode: 503, Detail: "down"}, want: "internal error"},
		{name: "client error", err: &api.HTTPError{StatusCode: 404, Detail: "missing"}, want: ""},
		{name: "other", err: errors.New("boom"), want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HintFor(tt.err, "http://rag.test")
			if tt.want == "" {
				assert.Empty(t, got)
				return
			}
			assert.Contains(t, got, tt.want)
		})
	}
}

func TestHintFor_NetworkWithoutURL(t *testing.T) {
	got := HintFor(&api.NetworkError{Op: "GET", URL: "u", Err: errors.New("x")}, "")
	assert.Contains(t, got, "api_url")
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "info", LevelInfo.String())
	assert.Equal(t, "success", LevelSuccess.String())
	assert.Equal(t, "warning", LevelWarning.String())
	assert.Equal(t, "error", LevelError.String())
	assert.Equal(t, "unknown", Level(9).String())
}

func TestNotifierFunc(t *testing.T) {
	var got Notification
	n := NotifierFunc(func(level Level, message string) {
		got = Notification{Level: level, Message: message}
	})
	n.Notify(LevelWarning, "careful")
	assert.Equal(t, Notification{Level: LevelWarning, Message: "careful"}, got)

	NopNotifier{}.Notify(LevelError, "ignored")
}
