package http

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/denizsokullu/redux-shrub/internal/logging"
	"github.com/denizsokullu/redux-shrub/internal/testutils"
	"github.com/denizsokullu/redux-shrub/pkg/adapters/memory"
	"github.com/denizsokullu/redux-shrub/pkg/session"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	provider := testutils.NewTodoProvider(t)

	logger := logging.NewNop()
	streams := NewStreamManager(logger)
	manager := session.NewManager(provider, memory.NewStore(), session.WithLifecycleHooks(streams.Hooks()))

	srv := httptest.NewServer(NewHandler(manager, provider,
		WithStreams(streams),
		WithLogger(logger),
		WithMetricsHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, "metrics")
		})),
	))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string) (int, string) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(data)
}

func TestServer_Catalog(t *testing.T) {
	srv := newTestServer(t)

	code, body := do(t, "GET", srv.URL+"/actions", "")
	require.Equal(t, http.StatusOK, code)
	var actions []ActionInfo
	require.NoError(t, json.Unmarshal([]byte(body), &actions))

	byType := map[string]ActionInfo{}
	for _, a := range actions {
		byType[a.Type] = a
	}
	assert.Contains(t, byType, "TODOS_ADD")
	assert.Equal(t, "todos.*", byType["TITLE_SET"].Path)
	assert.Equal(t, map[string]string{"value": "string"}, byType["TITLE_SET"].Payload)

	code, body = do(t, "GET", srv.URL+"/selectors", "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `["count","title","todos"]`, body)

	code, body = do(t, "GET", srv.URL+"/metrics", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "metrics", body)
}

func TestServer_DispatchAndSelect(t *testing.T) {
	srv := newTestServer(t)
	base := srv.URL + "/sessions/s1"

	code, body := do(t, "POST", base+"/dispatch", `{"type":"TODOS_ADD","payload":{"id":"a"}}`)
	require.Equal(t, http.StatusOK, code, body)
	assert.JSONEq(t, `{"count":0,"todos":{"a":""}}`, body)

	code, body = do(t, "POST", base+"/dispatch", `{"type":"TITLE_SET","payload":{"id":"a","value":"milk"}}`)
	require.Equal(t, http.StatusOK, code, body)

	code, body = do(t, "POST", base+"/select/title", `{"id":"a"}`)
	require.Equal(t, http.StatusOK, code, body)
	assert.JSONEq(t, `{"value":"milk"}`, body)

	code, body = do(t, "GET", srv.URL+"/sessions", "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `["s1"]`, body)

	code, _ = do(t, "DELETE", base, "")
	assert.Equal(t, http.StatusNoContent, code)
}

func TestServer_Errors(t *testing.T) {
	srv := newTestServer(t)
	base := srv.URL + "/sessions/s1"

	code, _ := do(t, "POST", base+"/dispatch", `not json`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, "POST", base+"/dispatch", `{"payload":{}}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, body := do(t, "POST", base+"/dispatch", `{"type":"TODOS_REMOVE","payload":{"id":"zzz"}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, body, `"type":"TODOS_REMOVE"`)

	code, _ = do(t, "POST", base+"/dispatch", `{"type":"COUNT_SET","payload":{"value":"three"}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, _ = do(t, "POST", base+"/select/nope", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, "POST", base+"/select/title", `{"id":"missing"}`)
	assert.Equal(t, http.StatusNotFound, code)

	code, body = do(t, "POST", base+"/dispatch", `{"type":"NOT_A_TYPE"}`)
	assert.Equal(t, http.StatusOK, code, "unknown types are a no-op")
	assert.JSONEq(t, `{"count":0,"todos":{}}`, body)
}

func TestServer_SubscribeEvents(t *testing.T) {
	srv := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, "GET", srv.URL+"/sessions/s1/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewScanner(resp.Body)
	require.True(t, lines.Scan())
	assert.Equal(t, "event: ping", lines.Text())

	code, _ := do(t, "POST", srv.URL+"/sessions/s1/dispatch", `{"type":"COUNT_INCREMENT"}`)
	require.Equal(t, http.StatusOK, code)

	for lines.Scan() {
		if strings.HasPrefix(lines.Text(), "data: {") {
			assert.JSONEq(t, `{"type":"COUNT_INCREMENT","changed":["count"]}`, strings.TrimPrefix(lines.Text(), "data: "))
			return
		}
	}
	t.Fatal("no dispatch event received")
}
