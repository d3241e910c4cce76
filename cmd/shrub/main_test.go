package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/denizsokullu/redux-shrub/internal/config"
	"github.com/denizsokullu/redux-shrub/pkg/adapters/file"
	"github.com/denizsokullu/redux-shrub/pkg/adapters/memory"
	"github.com/denizsokullu/redux-shrub/pkg/domain"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		reduceCmd.Flags().Set("trace", "false")
		reduceCmd.Flags().Set("state", "")
		inspectCmd.Flags().Set("format", formatTable)
	})
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestInspect(t *testing.T) {
	out, _, err := execute(t, "inspect", "testdata/todos.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "TODOS_ADD")
	assert.Contains(t, out, "todos.*.done")
	assert.Contains(t, out, "SELECTORS")
	assert.Contains(t, out, "visits")
}

func TestInspect_JSON(t *testing.T) {
	out, _, err := execute(t, "inspect", "--format", "json", "testdata/todos.yaml")
	require.NoError(t, err)

	var doc inspection
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, []string{"done", "title", "todo", "todos", "visits"}, doc.Selectors)
}

func TestInspect_Markdown(t *testing.T) {
	out, _, err := execute(t, "inspect", "-f", "markdown", "testdata/todos.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "| `DONE_TOGGLE` | `todos.*.done` | - |")
	assert.Contains(t, out, "- `visits`")
}

func TestInspect_Mermaid(t *testing.T) {
	out, _, err := execute(t, "inspect", "-f", "mermaid", "testdata/todos.yaml")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "graph TD\n"))
	assert.Contains(t, out, `todos -. "id" .-> todos_member`)
}

func TestInspect_UnknownFormat(t *testing.T) {
	_, _, err := execute(t, "inspect", "-f", "xml", "testdata/todos.yaml")
	assert.ErrorContains(t, err, `unknown format "xml"`)
}

func TestReduce(t *testing.T) {
	out, stderr, err := execute(t, "reduce", "--trace", "testdata/todos.yaml", "testdata/actions.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"todos": {"a": {"title": "milk", "done": true}},
		"visits": 2
	}`, out)
	assert.Contains(t, stderr, "NOT_HANDLED: unknown type, ignored")
	assert.Contains(t, stderr, "DONE_TOGGLE: [todos.a.done]")
}

func TestReduce_Stdin(t *testing.T) {
	rootCmd.SetIn(strings.NewReader(`[{"type":"VISITS_SET","payload":{"value":5}}]`))
	t.Cleanup(func() { rootCmd.SetIn(nil) })

	out, _, err := execute(t, "reduce", "testdata/todos.yaml", "-")
	require.NoError(t, err)
	assert.JSONEq(t, `{"todos": {}, "visits": 5}`, out)
}

func TestReduce_StopsAtFirstError(t *testing.T) {
	rootCmd.SetIn(strings.NewReader(`[{"type":"TODOS_REMOVE","payload":{"id":"ghost"}}]`))
	t.Cleanup(func() { rootCmd.SetIn(nil) })

	_, _, err := execute(t, "reduce", "testdata/todos.yaml", "-")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnknownKey)
	assert.Contains(t, err.Error(), "action 0")
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "shrub version "))
}

func TestOpenStore(t *testing.T) {
	store, locker, closeStore, err := openStore(config.Serve{Store: config.StoreMemory})
	require.NoError(t, err)
	defer closeStore()
	assert.IsType(t, &memory.Store{}, store)
	assert.Nil(t, locker)

	store, _, _, err = openStore(config.Serve{Store: config.StoreFile, Dir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &file.Store{}, store)

	_, _, _, err = openStore(config.Serve{Store: "etcd"})
	assert.Error(t, err)
}

func TestOpenStore_Encrypted(t *testing.T) {
	key := base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))
	cfg := config.Serve{Store: config.StoreFile, Dir: t.TempDir(), EncryptionKey: key, MaskKeys: []string{"title"}}

	store, _, closeStore, err := openStore(cfg)
	require.NoError(t, err)
	defer closeStore()

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "s1", []byte(`{"title":"milk"}`)))

	raw, err := file.New(cfg.Dir).Load(ctx, "s1")
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "title")

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"***"}`, string(loaded))
}

func TestApplyServeFlags(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.Flags().AddFlagSet(serveCmd.Flags())
	cmd.Flags().String("log-level", "warn", "")
	require.NoError(t, cmd.Flags().Parse([]string{"--store", "file", "--dir", "/tmp/x", "--log-level", "debug"}))

	cfg := config.Serve{Addr: ":9000", Store: config.StoreMemory, LogLevel: "info"}
	applyServeFlags(cmd, &cfg)
	assert.Equal(t, ":9000", cfg.Addr, "unset flags keep the environment value")
	assert.Equal(t, config.StoreFile, cfg.Store)
	assert.Equal(t, "/tmp/x", cfg.Dir)
	assert.Equal(t, "debug", cfg.LogLevel)

}

func TestValidate(t *testing.T) {
	out, _, err := execute(t, "validate", "testdata/todos.yaml")
	require.NoError(t, err)
	assert.Equal(t, "Manifest is valid\n", out)

	_, _, err = execute(t, "validate", "testdata/broken.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "found 2 errors")
}

func TestRun_Persisted(t *testing.T) {
	dir := t.TempDir()
	t.Cleanup(func() {
		runCmd.Flags().Set("dir", "")
		runCmd.Flags().Set("session", "default")
		runCmd.Flags().Set("json", "false")
	})

	rootCmd.SetIn(strings.NewReader("VISITS_INCREMENT\nVISITS_INCREMENT\n"))
	out, _, err := execute(t, "run", "--dir", dir, "--session", "s1", "testdata/todos.yaml")
	require.NoError(t, err)
	assert.Equal(t, "VISITS_INCREMENT: visits\nVISITS_INCREMENT: visits\n", out)

	rootCmd.SetIn(strings.NewReader(`{"command":"select","selector":"visits"}` + "\n"))
	t.Cleanup(func() { rootCmd.SetIn(nil) })
	out, _, err = execute(t, "run", "--json", "--dir", dir, "--session", "s1", "testdata/todos.yaml")
	require.NoError(t, err)
	assert.JSONEq(t, `{"command":"select","value":2}`, out)
}
