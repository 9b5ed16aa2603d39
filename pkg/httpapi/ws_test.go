package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harun/rentdesk/pkg/aitools"
)

func dialWS(t *testing.T, s *Server, header http.Header) *websocket.Conn {
	t.Helper()

	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

func staffHeader() http.Header {
	header := http.Header{}
	header.Set(HeaderUserID, "usr_1")
	header.Set(HeaderCompanyID, "cmp_1")
	header.Set(HeaderRole, "agent")
	return header
}

func call(t *testing.T, conn *websocket.Conn, req map[string]any) RPCResponse {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, conn.WriteJSON(req))
	var resp RPCResponse
	require.NoError(t, conn.ReadJSON(&resp))
	return resp
}

func TestWebSocket_ToolsList(t *testing.T) {
	conn := dialWS(t, newTestServer(t, aitools.ModeReadOnly, nil), staffHeader())

	resp := call(t, conn, map[string]any{"id": "1", "method": "tools.list"})
	require.Nil(t, resp.Error)
	assert.Equal(t, "1", resp.ID)

	result := resp.Result.(map[string]any)
	assert.Equal(t, "READONLY", result["mode"])
	assert.Len(t, result["tools"], 4)
}

func TestWebSocket_ToolsExecute(t *testing.T) {
	conn := dialWS(t, newTestServer(t, aitools.ModeFull, nil), staffHeader())

	t.Run("string arguments", func(t *testing.T) {
		resp := call(t, conn, map[string]any{
			"id":     "2",
			"method": "tools.execute",
			"params": map[string]any{"name": "create_property", "arguments": `{"name": "Casa Azul",}`},
		})
		require.Nil(t, resp.Error)
		result := resp.Result.(map[string]any)
		assert.Equal(t, "create_property", result["tool"])
		assert.Equal(t, map[string]any{"name": "Casa Azul"}, result["result"])
	})

	t.Run("object arguments", func(t *testing.T) {
		resp := call(t, conn, map[string]any{
			"id":     "3",
			"method": "tools.execute",
			"params": map[string]any{"name": "create_property", "arguments": map[string]any{"name": ""}},
		})
		require.NotNil(t, resp.Error)
		assert.Equal(t, InvalidParams, resp.Error.Code)
	})

	t.Run("unknown tool", func(t *testing.T) {
		resp := call(t, conn, map[string]any{
			"id":     "4",
			"method": "tools.execute",
			"params": map[string]any{"name": "nope"},
		})
		require.NotNil(t, resp.Error)
		assert.Equal(t, ToolNotFound, resp.Error.Code)
	})

	t.Run("missing name", func(t *testing.T) {
		resp := call(t, conn, map[string]any{"id": "5", "method": "tools.execute", "params": map[string]any{}})
		require.NotNil(t, resp.Error)
		assert.Equal(t, InvalidParams, resp.Error.Code)
	})
}

func TestWebSocket_ToolsManifest(t *testing.T) {
	conn := dialWS(t, newTestServer(t, aitools.ModeFull, nil), staffHeader())

	resp := call(t, conn, map[string]any{
		"id":     "m",
		"method": "tools.manifest",
		"params": map[string]any{"provider": "openai"},
	})
	require.Nil(t, resp.Error)

	raw, err := json.Marshal(resp.Result)
	require.NoError(t, err)
	var manifest struct {
		Provider string `json:"provider"`
		Tools    []struct {
			Type string `json:"type"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(raw, &manifest))
	assert.Equal(t, ProviderOpenAI, manifest.Provider)
	require.Len(t, manifest.Tools, 4)
	assert.Equal(t, "function", manifest.Tools[0].Type)
}

func TestWebSocket_ProtocolErrors(t *testing.T) {
	conn := dialWS(t, newTestServer(t, aitools.ModeFull, nil), staffHeader())

	resp := call(t, conn, map[string]any{"id": "1", "method": "tools.delete"})
	require.NotNil(t, resp.Error)
	assert.Equal(t, MethodNotFound, resp.Error.Code)

	resp = call(t, conn, map[string]any{"method": "tools.list"})
	require.NotNil(t, resp.Error)
	assert.Equal(t, InvalidRequest, resp.Error.Code)
}

func TestWebSocket_RequiresAuthentication(t *testing.T) {
	s := newTestServer(t, aitools.ModeFull, HeaderAuthenticator{SharedSecret: "s3cret"})
	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, staffHeader())
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServer_StartStop(t *testing.T) {
	s := newTestServer(t, aitools.ModeFull, nil)
	s.cfg.Host = "127.0.0.1"

	require.NoError(t, s.Start())
	addr := s.Addr()
	require.NotEmpty(t, addr)

	resp, err := http.Get("http://" + addr + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	assert.True(t, s.shuttingDown())
}
