package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trxr/internal/cli"
	"trxr/internal/config"
)

const events = `{"event":"scope begin","scope":{"id":"s1","title":"Login","tests":[{"id":"t1","scope":"s1","title":"works","file":"login.spec.js"},{"id":"t2","scope":"s1","title":"fails","file":"login.spec.js"}]}}
{"event":"test begin","test":{"id":"t1","scope":"s1","title":"works","file":"login.spec.js"}}
{"event":"test end","test":{"id":"t1","scope":"s1","title":"works","state":"passed","duration":12}}
{"event":"test begin","test":{"id":"t2","scope":"s1","title":"fails","file":"login.spec.js"}}
{"event":"failure","kind":"test","test":{"id":"t2","title":"fails"},"error":{"message":"expected true"}}
{"event":"test end","test":{"id":"t2","scope":"s1","title":"fails","state":"failed","duration":30}}
{"event":"scope end","scope":{"id":"s1"}}
`

func newRoot(t *testing.T) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})

	cfg := config.New()
	var flags cli.Flags

	root := &cobra.Command{Use: "trxr", SilenceUsage: true, SilenceErrors: true}
	NewCommands(cfg, log).Register(root, &flags, cfg, log)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	return root, &out
}

func reports(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "test-results", "*.trx"))
	require.NoError(t, err)
	return matches
}

func TestConvert_FromStdin(t *testing.T) {
	dir := t.TempDir()
	shot := filepath.Join(dir, "screenshots", "Login fails (failed).png")
	require.NoError(t, os.MkdirAll(filepath.Dir(shot), 0755))
	require.NoError(t, os.WriteFile(shot, []byte("png"), 0644))

	root, out := newRoot(t)
	root.SetIn(strings.NewReader(events + `{"event":"run end"}` + "\n"))
	root.SetArgs([]string{"convert", "--work-dir", dir})

	require.NoError(t, root.Execute())

	found := reports(t, dir)
	require.Len(t, found, 1)
	data, err := os.ReadFile(found[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), `testName="Login fails"`)
	assert.Contains(t, string(data), `Login fails (failed).png`)

	assert.Contains(t, out.String(), "Test Run Statistics")
	assert.Contains(t, out.String(), "Login fails")

	_, err = os.Stat(filepath.Join(dir, "test-results", "last-run.json"))
	assert.NoError(t, err)
}

func TestConvert_MissingRunEndStillEmits(t *testing.T) {
	dir := t.TempDir()

	root, _ := newRoot(t)
	root.SetIn(strings.NewReader(events + "garbage\n" + `{"event":"test retry"}` + "\n"))
	root.SetArgs([]string{"convert", "--work-dir", dir})

	require.NoError(t, root.Execute())
	assert.Len(t, reports(t, dir), 1)
}

func TestConvert_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "events.ndjson")
	require.NoError(t, os.WriteFile(path, []byte(events+`{"event":"run end"}`+"\n"+`{"event":"run end"}`+"\n"), 0644))

	root, _ := newRoot(t)
	root.SetArgs([]string{"convert", "--work-dir", dir, "--events", path, "--output", "out"})

	require.NoError(t, root.Execute())
	matches, err := filepath.Glob(filepath.Join(dir, "out", "*.trx"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestConvert_MissingFile(t *testing.T) {
	root, _ := newRoot(t)
	root.SetArgs([]string{"convert", "--work-dir", t.TempDir(), "--events", "nope.ndjson"})

	assert.ErrorContains(t, root.Execute(), "open event stream")
}

func TestSummary_AfterConvert(t *testing.T) {
	dir := t.TempDir()

	root, _ := newRoot(t)
	root.SetIn(strings.NewReader(events + `{"event":"run end"}` + "\n"))
	root.SetArgs([]string{"convert", "--work-dir", dir})
	require.NoError(t, root.Execute())

	root, out := newRoot(t)
	root.SetArgs([]string{"summary", "--work-dir", dir, "--filter", "*fails*"})
	require.NoError(t, root.Execute())

	assert.Contains(t, out.String(), "login.spec.js")
	assert.Contains(t, out.String(), "Login fails")
}

func TestSummary_NoPreviousRun(t *testing.T) {
	root, _ := newRoot(t)
	root.SetArgs([]string{"summary", "--work-dir", t.TempDir()})

	assert.ErrorContains(t, root.Execute(), "read summary file")
}

func TestInvalidConfig(t *testing.T) {
	root, _ := newRoot(t)
	root.SetArgs([]string{"summary", "--work-dir", t.TempDir(), "--log-level", "loud"})

	assert.ErrorContains(t, root.Execute(), "invalid log level")
}
