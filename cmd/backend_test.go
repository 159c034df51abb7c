package cmd

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// fakeRAGServer serves the backend endpoints used by the commands and
// records the license header of every request
type fakeRAGServer struct {
	*httptest.Server

	mu       sync.Mutex
	licenses []string
	queries  int
}

func newFakeRAGServer(t *testing.T) *fakeRAGServer {
	t.Helper()
	f := &fakeRAGServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		writeJSON(w, map[string]string{"status": "healthy", "message": "all good", "timestamp": "2024-05-01T10:00:00"})
	})
	mux.HandleFunc("/api/rag/query", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		f.mu.Lock()
		f.queries++
		f.mu.Unlock()
		if r.Header.Get("X-License-Key") == "revoked" {
			w.WriteHeader(http.StatusUnauthorized)
			writeJSON(w, map[string]string{"detail": "invalid license"})
			return
		}
		writeJSON(w, map[string]interface{}{
			"response":            "Refunds are accepted within 30 days.",
			"documents_retrieved": 2,
			"processing_time":     0.5,
			"search_type":         "hybrid",
		})
	})
	mux.HandleFunc("/api/documents/all", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		writeJSON(w, map[string]interface{}{
			"total_documents": 7,
			"unique_files":    1,
			"files": []map[string]interface{}{
				{"file_name": "policy.pdf", "uploaded_at": "2024-05-01", "content_type": "application/pdf", "total_chunks": 7, "sessions": []string{"abcdef123456"}},
			},
		})
	})
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func (f *fakeRAGServer) record(r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.licenses = append(f.licenses, r.Header.Get("X-License-Key"))
}

func (f *fakeRAGServer) queryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestHealthCommand(t *testing.T) {
	env := newCLIEnv(t)
	server := newFakeRAGServer(t)
	env.apiURL = server.URL
	t.Setenv("RAGCHAT_LICENSE_KEY", "env-key")

	out, err := env.run(t, "health", "--details")
	if err != nil {
		t.Fatalf("health error = %v\n%s", err, out)
	}
	for _, want := range []string{"Backend status: healthy", "Message: all good", "Health check passed!", server.URL} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestHealthCommand_Unreachable(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "health")
	if err == nil {
		t.Fatal("expected error for unreachable backend")
	}
	if !strings.Contains(out, "Backend unreachable") {
		t.Errorf("output missing failure notice:\n%s", out)
	}
}

func TestAskCommand(t *testing.T) {
	env := newCLIEnv(t)
	server := newFakeRAGServer(t)
	env.apiURL = server.URL
	t.Setenv("RAGCHAT_LICENSE_KEY", "env-key")

	out, err := env.run(t, "ask", "What is the refund policy?")
	if err != nil {
		t.Fatalf("ask error = %v", err)
	}
	if !strings.Contains(out, "Refunds are accepted within 30 days.") {
		t.Errorf("answer not printed:\n%s", out)
	}

	sessions := env.sessions(t)
	if len(sessions) != 1 {
		t.Fatalf("got %d sessions, want 1", len(sessions))
	}
	if sessions[0].Name != "What is the refund policy?" {
		t.Errorf("session name = %q", sessions[0].Name)
	}
	if len(sessions[0].Messages) != 2 {
		t.Errorf("got %d messages, want 2", len(sessions[0].Messages))
	}

	server.mu.Lock()
	defer server.mu.Unlock()
	for _, got := range server.licenses {
		if got != "env-key" {
			t.Errorf("license header = %q, want env-key", got)
		}
	}
}

func TestAskCommand_WithoutLicense(t *testing.T) {
	env := newCLIEnv(t)
	server := newFakeRAGServer(t)
	env.apiURL = server.URL

	if _, err := env.run(t, "ask", "hello"); err == nil {
		t.Fatal("expected error without a license key")
	}
	if n := server.queryCount(); n != 0 {
		t.Errorf("backend received %d queries without a license", n)
	}
}

func TestLicenseCommands(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "license", "status")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "No license key configured") {
		t.Errorf("unexpected status:\n%s", out)
	}

	if _, err := env.run(t, "license", "set", "stored-key"); err != nil {
		t.Fatalf("license set error = %v", err)
	}
	out, err = env.run(t, "license", "status")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "License key configured") {
		t.Errorf("key not reported after set:\n%s", out)
	}

	if _, err := env.run(t, "license", "clear"); err != nil {
		t.Fatalf("license clear error = %v", err)
	}
	out, _ = env.run(t, "license", "status")
	if !strings.Contains(out, "No license key configured") {
		t.Errorf("key still reported after clear:\n%s", out)
	}
}

func TestDocsListCommand(t *testing.T) {
	env := newCLIEnv(t)
	server := newFakeRAGServer(t)
	env.apiURL = server.URL
	t.Setenv("RAGCHAT_LICENSE_KEY", "env-key")

	out, err := env.run(t, "docs", "list")
	if err != nil {
		t.Fatalf("docs list error = %v", err)
	}
	for _, want := range []string{"1 file(s), 7 chunk(s)", "policy.pdf", "abcdef12"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestDocsDeleteCommand_RequiresOneTarget(t *testing.T) {
	env := newCLIEnv(t)
	if _, err := env.run(t, "docs", "delete"); err == nil {
		t.Error("expected error without --file or --session")
	}
}

func TestAskCommand_NewSessionRejectedKeepsSessions(t *testing.T) {
	tests := []struct {
		name     string
		license  string
		question string
	}{
		{name: "without license", license: "", question: "hello"},
		{name: "empty question", license: "env-key", question: "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newCLIEnv(t)
			server := newFakeRAGServer(t)
			env.apiURL = server.URL
			t.Setenv("RAGCHAT_MAX_SESSIONS", "2")
			t.Cleanup(func() { askNew = false })

			for _, name := range []string{"oldest", "newer"} {
				if _, err := env.run(t, "session", "new", name); err != nil {
					t.Fatal(err)
				}
			}

			t.Setenv("RAGCHAT_LICENSE_KEY", tt.license)
			if _, err := env.run(t, "ask", "--new", tt.question); err == nil {
				t.Fatal("expected ask to be rejected")
			}

			var names []string
			for _, s := range env.sessions(t) {
				names = append(names, s.Name)
			}
			if strings.Join(names, ",") != "newer,oldest" {
				t.Errorf("sessions after rejected ask = %v, want [newer oldest]", names)
			}
			if n := server.queryCount(); n != 0 {
				t.Errorf("backend received %d queries", n)
			}
		})
	}
}
