// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/advisor-engine/internal/engine"
	"github.com/pdiddy/advisor-engine/pkg/types"
)

// cannedClient gives the engine a deterministic backend.
type cannedClient struct{}

func (cannedClient) Generate(_ context.Context, _ string) (string, error) {
	return "Leader-based consensus keeps the fast path simple under partial failures [1].", nil
}

type erroringAnalyzer struct{}

func (erroringAnalyzer) Analyze(context.Context, string) (*types.AnalysisResult, error) {
	return nil, errors.New("engine wiring broken")
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	eng := engine.New(types.EngineConfig{}, nil, nil, cannedClient{})
	ts := httptest.NewServer(New(types.ServerConfig{}, eng, nil).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestAnalyzeEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/analyze", `{"question": "Compare Raft vs PBFT consensus for trading systems"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")

	var got struct {
		RequestID  string          `json:"request_id"`
		Question   string          `json:"question"`
		Analysis   string          `json:"analysis"`
		Insights   []types.Insight `json:"insights"`
		Confidence float64         `json:"confidence"`
		Metrics    string          `json:"metrics"`
		Log        []string        `json:"log"`
	}
	decodeBody(t, resp, &got)

	assert.NotEmpty(t, got.RequestID)
	assert.Equal(t, "Compare Raft vs PBFT consensus for trading systems", got.Question)
	assert.True(t, strings.HasSuffix(got.Analysis, "DONE"), "analysis should end with DONE: %q", got.Analysis)
	assert.NotEmpty(t, got.Insights)
	assert.Greater(t, got.Confidence, 0.0)
	assert.Contains(t, got.Metrics, "Duration: ")
	assert.Contains(t, got.Metrics, "| Errors: 0")
	assert.NotEmpty(t, got.Log)
	assert.Contains(t, got.Log[0], "OBSERVE")
}

func TestAnalyzeEndpoint_RequestIDsAreUnique(t *testing.T) {
	ts := newTestServer(t)

	ids := make(map[string]bool)
	for i := 0; i < 3; i++ {
		resp := postJSON(t, ts.URL+"/api/analyze", `{"question": "What dominates consensus latency?"}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var got struct {
			RequestID string `json:"request_id"`
		}
		decodeBody(t, resp, &got)
		require.NotEmpty(t, got.RequestID)
		ids[got.RequestID] = true
	}
	assert.Len(t, ids, 3)
}

func TestAnalyzeEndpoint_EmptyQuestion(t *testing.T) {
	ts := newTestServer(t)

	for _, body := range []string{`{}`, `{"question": ""}`, `{"question": "   "}`} {
		resp := postJSON(t, ts.URL+"/api/analyze", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "body %s", body)

		var got map[string]string
		decodeBody(t, resp, &got)
		assert.Equal(t, "No question provided", got["error"])
	}
}

func TestAnalyzeEndpoint_InvalidJSON(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/analyze", `{"question": `)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var got map[string]string
	decodeBody(t, resp, &got)
	assert.Equal(t, "invalid JSON", got["error"])
}

func TestAnalyzeEndpoint_MethodNotAllowed(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/analyze")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, http.MethodPost, resp.Header.Get("Allow"))
}

func TestAnalyzeEndpoint_InternalFailure(t *testing.T) {
	ts := httptest.NewServer(New(types.ServerConfig{}, erroringAnalyzer{}, nil).Handler())
	t.Cleanup(ts.Close)

	resp := postJSON(t, ts.URL+"/api/analyze", `{"question": "anything"}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	post, err := http.Post(ts.URL+"/healthz", "text/plain", nil)
	require.NoError(t, err)
	defer post.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, post.StatusCode)
}

func TestStartShutdown(t *testing.T) {
	eng := engine.New(types.EngineConfig{}, nil, nil, cannedClient{})
	srv := New(types.ServerConfig{Addr: "127.0.0.1:0"}, eng, nil)

	require.NoError(t, srv.Start())
	addr := srv.Addr()
	require.NotEmpty(t, addr)

	require.Error(t, srv.Start(), "second Start should refuse")

	resp, err := http.Get(fmt.Sprintf("http://%s/healthz", addr))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, srv.Shutdown(context.Background()))
	assert.Empty(t, srv.Addr())

	// Shutdown after shutdown is a no-op.
	require.NoError(t, srv.Shutdown(context.Background()))
}
