package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer accepts every sale and records the offline ids it received.
type fakeServer struct {
	mu       sync.Mutex
	received []string
}

func (f *fakeServer) ids() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.received...)
}

func newFakeServer(t *testing.T) (*fakeServer, *httptest.Server) {
	t.Helper()
	f := &fakeServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /sales/create", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.received = append(f.received, body["offlineId"].(string))
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return f, srv
}

// execute runs posclient with args in a scratch directory so no .env leaks in.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return filepath.Join(dir, "queue.db")
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "posclient", cmd.Use)

	for _, name := range []string{"record", "count", "sync", "run"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}

	for _, flag := range []string{"format", "db", "server"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
	}
}

func TestInvalidFormat(t *testing.T) {
	db := setup(t)
	_, err := execute(t, "", "--db", db, "--format", "xml", "count")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestRecord_JSONFileThenCount(t *testing.T) {
	db := setup(t)
	file := filepath.Join(filepath.Dir(db), "sale.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"items":[{"name":"Milk","price":1.5,"quantity":2,"barcode":"779"}],"total":3}`), 0o600))

	out, err := execute(t, "", "--db", db, "record", file)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "queued "), out)

	out, err = execute(t, "", "--db", db, "count")
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)
}

func TestRecord_YAMLFromStdin(t *testing.T) {
	db := setup(t)
	sale := "items:\n  - name: Bread\n    price: 2\n    quantity: 1\n    barcode: \"123\"\ntotal: 2\n"

	out, err := execute(t, sale, "--db", db, "--format", "json", "record", "-")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	data := resp.Data.(map[string]any)
	assert.Regexp(t, `^\d+-[0-9a-f]{9}$`, data["offlineId"])
}

func TestRecord_RejectsNonObject(t *testing.T) {
	db := setup(t)
	_, err := execute(t, "42", "--db", db, "record", "-")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	out, err := execute(t, "", "--db", db, "count")
	require.NoError(t, err)
	assert.Equal(t, "0\n", out)
}

func TestRecord_MissingFile(t *testing.T) {
	db := setup(t)
	_, err := execute(t, "", "--db", db, "record", "does-not-exist.json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestSync_DrainsQueueInOrder(t *testing.T) {
	db := setup(t)
	fake, srv := newFakeServer(t)

	var ids []string
	for i := 0; i < 3; i++ {
		out, err := execute(t, `{"items":[],"total":0}`, "--db", db, "--format", "json", "record", "-")
		require.NoError(t, err)
		var resp CLIResponse
		require.NoError(t, json.Unmarshal([]byte(out), &resp))
		ids = append(ids, resp.Data.(map[string]any)["offlineId"].(string))
	}

	out, err := execute(t, "", "--db", db, "--server", srv.URL, "sync")
	require.NoError(t, err)
	assert.Equal(t, "synced 3, 0 remaining\n", out)
	assert.Equal(t, ids, fake.ids())
}

func TestSync_UnreachableKeepsQueue(t *testing.T) {
	db := setup(t)
	_, err := execute(t, `{"total":1}`, "--db", db, "record", "-")
	require.NoError(t, err)

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	out, err := execute(t, "", "--db", db, "--server", url, "sync")
	require.NoError(t, err)
	assert.Equal(t, "synced 0, 1 remaining\n", out)
}

func TestRun_SyncsUntilCancelled(t *testing.T) {
	db := setup(t)
	fake, srv := newFakeServer(t)
	_, err := execute(t, `{"total":5}`, "--db", db, "record", "-")
	require.NoError(t, err)

	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--db", db, "--server", srv.URL, "run", "--interval", "50ms"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	require.Eventually(t, func() bool { return len(fake.ids()) == 1 }, 2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("run did not stop after cancel")
	}
}
