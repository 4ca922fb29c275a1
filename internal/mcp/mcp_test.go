package mcp

import (
	"context"
	"encoding/json"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragcore-ai/engine/internal/config"
	"github.com/ragcore-ai/engine/internal/ragerr"
)

var emptySchema = json.RawMessage(`{"type":"object"}`)

// startInMemoryServer spins up an in-memory MCP server exposing tools and
// returns the client-side transport half of the pair, the way tarsy's
// client_test.go does it — avoids spawning a real subprocess for unit tests.
func startInMemoryServer(t *testing.T, tools map[string]mcpsdk.ToolHandler) *mcpsdk.InMemoryTransport {
	t.Helper()

	server := mcpsdk.NewServer(&mcpsdk.Implementation{Name: "test-server", Version: "test"}, nil)
	for name, handler := range tools {
		server.AddTool(&mcpsdk.Tool{Name: name, Description: "test tool", InputSchema: emptySchema}, handler)
	}

	clientTransport, serverTransport := mcpsdk.NewInMemoryTransports()
	go func() { _ = server.Run(context.Background(), serverTransport) }()
	return clientTransport
}

// withConnectedServer builds a Client whose "test" server session is wired
// directly to an in-memory transport, bypassing the stdio spawn path.
func withConnectedServer(t *testing.T, cfg config.MCPServerConfig, tools map[string]mcpsdk.ToolHandler) *Client {
	t.Helper()
	ctx := context.Background()

	transport := startInMemoryServer(t, tools)

	c := New(map[string]config.MCPServerConfig{"test": cfg})

	sdkClient := mcpsdk.NewClient(&mcpsdk.Implementation{Name: appName, Version: appVersion}, nil)
	session, err := sdkClient.Connect(ctx, transport, nil)
	require.NoError(t, err)

	c.mu.Lock()
	c.sessions["test"] = session
	c.clients["test"] = sdkClient
	c.mu.Unlock()

	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestClient_ListTools(t *testing.T) {
	c := withConnectedServer(t, config.MCPServerConfig{}, map[string]mcpsdk.ToolHandler{
		"search_files": func(_ context.Context, _ *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
			return &mcpsdk.CallToolResult{Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: "ok"}}}, nil
		},
	})

	tools, err := c.ListTools(context.Background(), "test")
	require.NoError(t, err)
	require.Len(t, tools, 1)
	assert.Equal(t, "search_files", tools[0].Name)

	// Second call should hit the cache rather than re-listing.
	tools2, err := c.ListTools(context.Background(), "test")
	require.NoError(t, err)
	assert.Equal(t, tools, tools2)
}

func TestClient_CallTool_Success(t *testing.T) {
	c := withConnectedServer(t, config.MCPServerConfig{}, map[string]mcpsdk.ToolHandler{
		"search_files": func(_ context.Context, _ *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
			return &mcpsdk.CallToolResult{Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: "found 3 files"}}}, nil
		},
	})

	result, err := c.CallTool(context.Background(), "test", "search_files", map[string]any{"query": "foo"})
	require.NoError(t, err)
	assert.Equal(t, "found 3 files", result["text"])
	assert.Equal(t, false, result["is_error"])
}

func TestClient_CallTool_UnknownServer(t *testing.T) {
	c := New(map[string]config.MCPServerConfig{})
	_, err := c.CallTool(context.Background(), "nope", "tool", nil)
	require.Error(t, err)
	assert.True(t, ragerr.NotFound.Matches(err))
}

func TestClient_CallTool_UnknownTool(t *testing.T) {
	c := withConnectedServer(t, config.MCPServerConfig{}, map[string]mcpsdk.ToolHandler{
		"search_files": func(_ context.Context, _ *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
			return &mcpsdk.CallToolResult{}, nil
		},
	})

	_, err := c.CallTool(context.Background(), "test", "does_not_exist", nil)
	require.Error(t, err)
	assert.True(t, ragerr.NotFound.Matches(err))
}

func TestClient_CallTool_RejectsPathOutsideAllowedRoots(t *testing.T) {
	c := withConnectedServer(t, config.MCPServerConfig{AllowedRoots: []string{"/data/knowledgebase"}}, map[string]mcpsdk.ToolHandler{
		"read_file": func(_ context.Context, _ *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
			return &mcpsdk.CallToolResult{Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: "should not run"}}}, nil
		},
	})

	_, err := c.CallTool(context.Background(), "test", "read_file", map[string]any{"path": "/etc/passwd"})
	require.Error(t, err)
	assert.True(t, ragerr.InvalidArgument.Matches(err))
}

func TestClient_CallTool_AllowsPathInsideAllowedRoots(t *testing.T) {
	c := withConnectedServer(t, config.MCPServerConfig{AllowedRoots: []string{"/data/knowledgebase"}}, map[string]mcpsdk.ToolHandler{
		"read_file": func(_ context.Context, _ *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
			return &mcpsdk.CallToolResult{Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: "file contents"}}}, nil
		},
	})

	result, err := c.CallTool(context.Background(), "test", "read_file", map[string]any{"path": "/data/knowledgebase/doc.txt"})
	require.NoError(t, err)
	assert.Equal(t, "file contents", result["text"])
}

func TestCheckAllowedPaths(t *testing.T) {
	roots := []string{"/data/kb"}

	require.NoError(t, checkAllowedPaths(map[string]any{"note": "relative/path/is/fine"}, roots))
	require.NoError(t, checkAllowedPaths(map[string]any{"path": "/data/kb/a.txt"}, roots))
	require.NoError(t, checkAllowedPaths(map[string]any{"paths": []any{"/data/kb/a.txt", "/data/kb/b.txt"}}, roots))

	err := checkAllowedPaths(map[string]any{"path": "/data/other/a.txt"}, roots)
	require.Error(t, err)
	assert.True(t, ragerr.InvalidArgument.Matches(err))

	err = checkAllowedPaths(map[string]any{"paths": []any{"/data/kb/a.txt", "/etc/shadow"}}, roots)
	require.Error(t, err)
}

func TestClassifyError_ContextDeadline(t *testing.T) {
	kind, action := classifyError(context.DeadlineExceeded)
	assert.Equal(t, ragerr.Timeout, kind)
	assert.Equal(t, noRetry, action)
}

func TestClassifyError_ContextCancelled(t *testing.T) {
	kind, action := classifyError(context.Canceled)
	assert.Equal(t, ragerr.Cancelled, kind)
	assert.Equal(t, noRetry, action)
}

func TestClient_FailedServers_TracksConnectFailures(t *testing.T) {
	c := New(map[string]config.MCPServerConfig{
		"broken": {Command: ""}, // empty command fails transport construction
	})
	c.Connect(context.Background(), []string{"broken"})

	failed := c.FailedServers()
	assert.Contains(t, failed, "broken")
}

func TestClient_HasSession(t *testing.T) {
	c := withConnectedServer(t, config.MCPServerConfig{}, map[string]mcpsdk.ToolHandler{
		"noop": func(_ context.Context, _ *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
			return &mcpsdk.CallToolResult{}, nil
		},
	})
	assert.True(t, c.HasSession("test"))
	assert.False(t, c.HasSession("other"))
}
