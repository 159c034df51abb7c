package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iksnae/ragchat/internal"
	"github.com/iksnae/ragchat/testutil"
)

// cliEnv is an isolated home and data directory for running commands
type cliEnv struct {
	dir    string
	apiURL string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	dir := testutil.CreateTempDir(t)
	t.Setenv("HOME", dir)
	t.Setenv("RAGCHAT_LICENSE_KEY", "")
	return &cliEnv{dir: dir, apiURL: "http://127.0.0.1:1"}
}

// run executes the root command with the environment's persistent flags
// appended and returns everything written to the command output.
func (e *cliEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	full := append([]string{}, args...)
	full = append(full,
		"--data-dir", e.dir,
		"--config", filepath.Join(e.dir, "config.toml"),
		"--api-url", e.apiURL,
	)
	return runRoot(full, "")
}

func runRoot(args []string, stdin string) (string, error) {
	var out bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

// sessions reads the stored collection directly from the environment's database
func (e *cliEnv) sessions(t *testing.T) []internal.ChatSession {
	t.Helper()
	kv, err := internal.OpenSQLiteKV(filepath.Join(e.dir, "ragchat.db"))
	if err != nil {
		t.Fatalf("OpenSQLiteKV() error = %v", err)
	}
	defer kv.Close()
	return internal.NewSessionStore(kv).ListSessions()
}
