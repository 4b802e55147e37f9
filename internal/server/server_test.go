package server

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/mockup-tools-mcp/internal/config"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := New(config.Default(), zerolog.Nop(), "test")
	require.NoError(t, err)
	return s
}

func TestNew(t *testing.T) {
	s := newTestServer(t)
	assert.NotNil(t, s.models)
	assert.NotNil(t, s.files)
	assert.Greater(t, s.registry.Len(), 0)

	cfg := config.Default()
	cfg.Patterns = []string{"/nonexistent/extra.pat"}
	_, err := New(cfg, zerolog.Nop(), "test")
	assert.Error(t, err)
}

func TestMCPRequest_Unmarshal(t *testing.T) {
	tests := []struct {
		name       string
		json       string
		wantID     interface{}
		wantMethod string
	}{
		{"string id", `{"jsonrpc":"2.0","id":"test-1","method":"tools/list"}`, "test-1", "tools/list"},
		{"number id", `{"jsonrpc":"2.0","id":42,"method":"ping"}`, float64(42), "ping"},
		{"null id", `{"jsonrpc":"2.0","id":null,"method":"initialize"}`, nil, "initialize"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req MCPRequest
			require.NoError(t, json.Unmarshal([]byte(tt.json), &req))
			assert.Equal(t, tt.wantID, req.ID)
			assert.Equal(t, tt.wantMethod, req.Method)
			assert.Equal(t, "2.0", req.JSONRPC)
		})
	}
}

func TestHandleRequest_Initialize(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleRequest(context.Background(), &MCPRequest{JSONRPC: "2.0", ID: 1, Method: "initialize"})
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)
	assert.Equal(t, 1, resp.ID)

	result, ok := resp.Result.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "2024-11-05", result["protocolVersion"])
	info := result["serverInfo"].(map[string]interface{})
	assert.Equal(t, "mockup-tools-mcp", info["name"])
	assert.Equal(t, "test", info["version"])
}

func TestHandleRequest_Ping(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleRequest(context.Background(), &MCPRequest{JSONRPC: "2.0", ID: "ping-1", Method: "ping"})
	require.NotNil(t, resp)
	assert.Nil(t, resp.Error)
	assert.Equal(t, "ping-1", resp.ID)
}

func TestHandleRequest_Initialized(t *testing.T) {
	s := newTestServer(t)
	assert.Nil(t, s.handleRequest(context.Background(), &MCPRequest{JSONRPC: "2.0", Method: "notifications/initialized"}))
}

func TestHandleRequest_ToolsList(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleRequest(context.Background(), &MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/list"})
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)
	result := resp.Result.(map[string]interface{})
	tools, ok := result["tools"].([]Tool)
	require.True(t, ok)
	assert.Len(t, tools, len(GetToolDefinitions()))
}

func TestHandleRequest_UnknownMethod(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleRequest(context.Background(), &MCPRequest{JSONRPC: "2.0", ID: 7, Method: "resources/list"})
	require.NotNil(t, resp)
	require.NotNil(t, resp.Error)
	assert.Equal(t, -32601, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "resources/list")
}

func TestServe(t *testing.T) {
	s := newTestServer(t)
	in := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize"}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		``,
		`not json`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"mockup_parse","arguments":{"text":"[Yes] [No]"}}}`,
	}, "\n")
	var out bytes.Buffer
	require.NoError(t, s.Serve(context.Background(), strings.NewReader(in), &out))

	dec := json.NewDecoder(&out)
	var responses []MCPResponse
	for dec.More() {
		var r MCPResponse
		require.NoError(t, dec.Decode(&r))
		responses = append(responses, r)
	}
	require.Len(t, responses, 3)
	assert.Equal(t, float64(1), responses[0].ID)
	require.NotNil(t, responses[1].Error)
	assert.Equal(t, -32700, responses[1].Error.Code)
	assert.Equal(t, float64(2), responses[2].ID)
	assert.Nil(t, responses[2].Error)
}

func TestServe_Cancelled(t *testing.T) {
	s := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	err := s.Serve(ctx, strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`), &out)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, out.Len())
}
