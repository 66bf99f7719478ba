package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/hsn"
	"github.com/aretw0/hsn/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleTable = map[string]string{
	"01":   "Live animals",
	"0101": "Live horses, asses, mules and hinnies",
	"84":   "Machinery",
}

func newTestHandler(t *testing.T, opts ...Option) (http.Handler, *hsn.Assistant) {
	t.Helper()
	a, err := hsn.New("", hsn.WithTable(domain.NewTable("test", sampleTable)))
	require.NoError(t, err)
	return NewHandler(a, opts...), a
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestValidate(t *testing.T) {
	h, a := newTestHandler(t)

	w := do(t, h, http.MethodPost, "/validate", `{"hsn_inputs":["0101"," 010199 ",7,"x1"],"session_id":"web-1"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp hsn.ToolResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 4)
	assert.Equal(t, domain.ReasonValid, resp.Results[0].Reason)
	assert.Equal(t, domain.ReasonNotFoundButParentExists, resp.Results[1].Reason)
	assert.Equal(t, domain.ReasonInvalidItemType, resp.Results[2].Reason)
	assert.Equal(t, domain.ReasonInvalidFormat, resp.Results[3].Reason)

	sess, err := a.Sessions().Load(context.Background(), "web-1")
	require.NoError(t, err)
	assert.Contains(t, sess.State, domain.KeyLastResult)
}

func TestValidate_ScalarAndBadBody(t *testing.T) {
	h, _ := newTestHandler(t)

	w := do(t, h, http.MethodPost, "/validate", `{"hsn_inputs":"0101"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"reason_code":"INVALID_INPUT_TYPE"`)

	w = do(t, h, http.MethodPost, "/validate", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestValidate_Guardrail(t *testing.T) {
	h, _ := newTestHandler(t)

	w := do(t, h, http.MethodPost, "/validate", `{"hsn_inputs":["12345","84"]}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp hsn.ToolResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Guardrail)
	assert.Equal(t, []string{"12345"}, resp.Guardrail.BlockedCodes)
	assert.Empty(t, resp.Results)
}

func TestGetCode(t *testing.T) {
	h, _ := newTestHandler(t)

	w := do(t, h, http.MethodGet, "/codes/84713000", "")
	require.Equal(t, http.StatusOK, w.Code)

	var res domain.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "84", res.ParentCode)
	assert.Equal(t, domain.ReasonNotFoundButParentExists, res.Reason)
}

func TestScreen(t *testing.T) {
	h, _ := newTestHandler(t)

	w := do(t, h, http.MethodPost, "/screen", `{"message":"check 0101","session_id":"s"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"blocked":false`)

	w = do(t, h, http.MethodPost, "/screen", `{"message":"you IDIOT"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"blocked":true`)

	big, _ := json.Marshal(map[string]string{"message": strings.Repeat("a", 5000)})
	w = do(t, h, http.MethodPost, "/screen", string(big))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestSessions(t *testing.T) {
	h, _ := newTestHandler(t)

	w := do(t, h, http.MethodGet, "/sessions/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	do(t, h, http.MethodPost, "/validate", `{"hsn_inputs":["01"],"session_id":"s1"}`)

	w = do(t, h, http.MethodGet, "/sessions/s1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var sess domain.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sess))
	assert.Equal(t, "s1", sess.ID)
	results, err := sess.LastResults()
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Valid)

	w = do(t, h, http.MethodDelete, "/sessions/s1", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, http.MethodGet, "/sessions/s1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthAndInfo(t *testing.T) {
	h, _ := newTestHandler(t)

	w := do(t, h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","codes":3}`, w.Body.String())

	w = do(t, h, http.MethodGet, "/info", "")
	require.Equal(t, http.StatusOK, w.Code)
	var info map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, "hsn-http", info["app"])
	assert.Equal(t, "1.0.0", info["api_version"])
}

func TestHealth_Degraded(t *testing.T) {
	a, err := hsn.New(filepath.Join(t.TempDir(), "missing.csv"))
	require.NoError(t, err)

	w := do(t, NewHandler(a), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestOpenAPIAndSwagger(t *testing.T) {
	h, _ := newTestHandler(t)

	w := do(t, h, http.MethodGet, "/openapi.yaml", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "openapi: 3.0.3")

	w = do(t, h, http.MethodGet, "/swagger", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "swagger-ui")

	doc, err := GetSwagger()
	require.NoError(t, err)
	require.NoError(t, doc.Validate(context.Background()))
	for _, p := range []string{"/validate", "/codes/{code}", "/screen", "/sessions/{session_id}", "/events", "/health", "/info"} {
		assert.NotNil(t, doc.Paths.Find(p), "path %s documented", p)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h, _ := newTestHandler(t, WithMetricsHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("hsn_table_codes 3\n"))
	})))

	w := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "hsn_table_codes")

	h2, _ := newTestHandler(t)
	assert.Equal(t, http.StatusNotFound, do(t, h2, http.MethodGet, "/metrics", "").Code)
}

func TestCORSPreflight(t *testing.T) {
	h, _ := newTestHandler(t)
	w := do(t, h, http.MethodOptions, "/validate", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func readEvent(t *testing.T, r *bufio.Reader) string {
	t.Helper()
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "data: ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "data: "))
		}
	}
}

func TestSubscribeEvents(t *testing.T) {
	streams := NewStreamManager()
	path := filepath.Join(t.TempDir(), "hsn.csv")
	require.NoError(t, os.WriteFile(path, []byte("HSNCode,Description\n01,Live animals\n"), 0o644))

	a, err := hsn.New(path, hsn.WithLifecycleHooks(streams.Hooks()))
	require.NoError(t, err)
	srv := httptest.NewServer(NewHandler(a, WithStreams(streams)))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Session stream
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events?session_id=sess-1", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body := bufio.NewReader(resp.Body)
	assert.Equal(t, "connected", readEvent(t, body))

	// Global stream
	greq, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	gresp, err := http.DefaultClient.Do(greq)
	require.NoError(t, err)
	defer gresp.Body.Close()
	gbody := bufio.NewReader(gresp.Body)
	assert.Equal(t, "connected", readEvent(t, gbody))

	post, err := http.Post(srv.URL+"/validate", "application/json",
		bytes.NewReader([]byte(`{"hsn_inputs":["01"],"session_id":"sess-1"}`)))
	require.NoError(t, err)
	post.Body.Close()

	msg := readEvent(t, body)
	assert.Contains(t, msg, `"type":"validate"`)
	assert.Contains(t, msg, `"input_hsn":"01"`)

	require.NoError(t, a.Reload(ctx))
	msg = readEvent(t, gbody)
	assert.Contains(t, msg, `"type":"table_load"`)
	assert.Contains(t, msg, `"codes":1`)
}

func TestStreamManager_Unsubscribe(t *testing.T) {
	sm := NewStreamManager()
	ch, cancel := sm.Subscribe("a")
	assert.Equal(t, 1, sm.Subscribers("a"))

	sm.Broadcast("a", "hello")
	assert.Equal(t, "hello", <-ch)

	cancel()
	assert.Equal(t, 0, sm.Subscribers("a"))
	_, open := <-ch
	assert.False(t, open)
}
