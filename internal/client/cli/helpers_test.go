package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

// runCLI executes one command against dataDir and returns its stdout.
func runCLI(t *testing.T, dataDir, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetArgs(append([]string{"--data-dir", dataDir, "--log-level", "error"}, args...))
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, dataDir string, args ...string) string {
	t.Helper()
	out, err := runCLI(t, dataDir, "", args...)
	require.NoError(t, err, "clipnote %s", strings.Join(args, " "))
	return out
}

// addNote creates a note and returns its id.
func addNote(t *testing.T, dataDir string, args ...string) string {
	t.Helper()
	id := strings.TrimSpace(mustRun(t, dataDir, append([]string{"add"}, args...)...))
	require.NotEmpty(t, id)
	return id
}

func listJSON(t *testing.T, dataDir string, args ...string) []noteView {
	t.Helper()
	out := mustRun(t, dataDir, append([]string{"list", "-o", "json"}, args...)...)
	var views []noteView
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	return views
}

func showJSON(t *testing.T, dataDir, id string, args ...string) noteView {
	t.Helper()
	out := mustRun(t, dataDir, append([]string{"show", id, "-o", "json"}, args...)...)
	var v noteView
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	return v
}

func writeTemp(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func viewIDs(views []noteView) []string {
	out := make([]string, 0, len(views))
	for _, v := range views {
		out = append(out, v.ID)
	}
	return out
}

func mediaOf(v noteView, kind string) []mediaView {
	var out []mediaView
	for _, m := range v.Media {
		if string(m.Kind) == kind {
			out = append(out, m)
		}
	}
	return out
}
