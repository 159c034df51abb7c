package testutil

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

// Storage keys as written by ragchat. Duplicated here because testutil must
// not import the packages it is used to test.
const (
	SessionsKey      = "ragchat.sessions"
	LicenseKeyKey    = "ragchat.license_key"
	ActiveSessionKey = "ragchat.active_session"
)

// SampleSessionsJSON is a valid two-session export, newest first
const SampleSessionsJSON = `[
  {
    "id": "7d0c2f8e-2b7a-4c4f-9d55-0a4b1c9e2f10",
    "name": "Quarterly report",
    "messages": [
      {
        "id": "m-1",
        "role": "user",
        "content": "Summarize the Q3 report",
        "timestamp": "2024-05-02T10:00:00Z"
      },
      {
        "id": "m-2",
        "role": "assistant",
        "content": "Revenue grew 12% quarter over quarter.",
        "timestamp": "2024-05-02T10:00:05Z",
        "metadata": {
          "documents_retrieved": 3,
          "processing_time": 1.25,
          "search_type": "hybrid"
        }
      }
    ],
    "createdAt": "2024-05-02T09:59:00Z",
    "updatedAt": "2024-05-02T10:00:05Z",
    "settings": {
      "model": "gpt-4o-mini",
      "temperature": 0.7,
      "search_type": "hybrid"
    }
  },
  {
    "id": "1f9a6b33-5e1d-4d7e-8a2b-6c3d4e5f6a7b",
    "name": "New Chat",
    "messages": [],
    "createdAt": "2024-05-01T08:00:00Z",
    "updatedAt": "2024-05-01T08:00:00Z",
    "settings": {
      "model": "gpt-4o",
      "temperature": 0.2,
      "search_type": "semantic"
    }
  }
]`

// SampleSessionIDs are the ids in SampleSessionsJSON, in order
var SampleSessionIDs = []string{
	"7d0c2f8e-2b7a-4c4f-9d55-0a4b1c9e2f10",
	"1f9a6b33-5e1d-4d7e-8a2b-6c3d4e5f6a7b",
}

// InvalidSessionPayloads maps a description to an import payload that must be rejected
var InvalidSessionPayloads = map[string]string{
	"not json":            `{not json`,
	"object not array":    `{"id":"x"}`,
	"record not object":   `["x"]`,
	"missing id":          `[{"name":"a","messages":[],"settings":{"model":"m","temperature":0.5,"search_type":"hybrid"}}]`,
	"empty id":            `[{"id":"","name":"a","messages":[],"settings":{"model":"m","temperature":0.5,"search_type":"hybrid"}}]`,
	"name not string":     `[{"id":"a","name":5,"messages":[],"settings":{"model":"m","temperature":0.5,"search_type":"hybrid"}}]`,
	"messages not array":  `[{"id":"a","name":"a","messages":{},"settings":{"model":"m","temperature":0.5,"search_type":"hybrid"}}]`,
	"missing settings":    `[{"id":"a","name":"a","messages":[]}]`,
	"temperature string":  `[{"id":"a","name":"a","messages":[],"settings":{"model":"m","temperature":"hot","search_type":"hybrid"}}]`,
	"unknown search type": `[{"id":"a","name":"a","messages":[],"settings":{"model":"m","temperature":0.5,"search_type":"fuzzy"}}]`,
}

// CreateSQLiteFixture creates a ragchat database at dbPath holding the
// sample sessions and, when licenseKey is not empty, a license key
func CreateSQLiteFixture(t *testing.T, dbPath, licenseKey string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		t.Fatalf("Failed to create fixture directory: %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	createKVTable(t, db)
	InsertKV(t, db, SessionsKey, SampleSessionsJSON)
	if licenseKey != "" {
		InsertKV(t, db, LicenseKeyKey, licenseKey)
	}
}
