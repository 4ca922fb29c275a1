// Package mcp implements the MCP Subprocess Multiplexer (spec.md §4.5): it
// spawns and supervises the child processes that expose retrieval tools
// (local filesystem search, SQL, web fetch helpers) over MCP's stdio
// protocol, and gives the rest of the engine a single CallTool entry point
// satisfying internal/retrieval.ToolCaller.
//
// Grounded on codeready-toolchain-tarsy's pkg/mcp: the per-server session
// map, per-server reinit mutex, tool cache, and the "classify, then retry
// once after recreating the session" recovery policy are all ported
// directly, generalized from tarsy's per-alert-session Client to a
// process-scoped multiplexer that lives for the lifetime of the engine.
package mcp

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ragcore-ai/engine/internal/config"
	"github.com/ragcore-ai/engine/internal/ragerr"
	"github.com/ragcore-ai/engine/internal/retrieval"
	"github.com/ragcore-ai/engine/pkg/random"
	concurrency "github.com/ragcore-ai/engine/pkg/sync"
)

// maxConcurrentConnects bounds how many child processes Connect spawns at
// once; a deployment with a dozen MCP servers configured shouldn't fork a
// dozen processes in the same instant.
const maxConcurrentConnects = 4

// appName/appVersion identify this engine to MCP servers during the
// initialize handshake.
const (
	appName    = "ragcore-engine"
	appVersion = "dev"
)

// Client is the process-wide multiplexer. One instance is shared by every
// retriever that needs MCP tools; it outlives any single request.
//
// Safe for concurrent use: sessions/clients/failedServers are guarded by mu,
// the tool cache by its own mutex (never acquired while holding mu), and
// reinitMu serializes concurrent (re)connection attempts per server so a
// thundering herd of callers hitting a broken session doesn't spawn N
// child processes for the same server name.
type Client struct {
	configs map[string]config.MCPServerConfig

	mu            sync.RWMutex
	sessions      map[string]*mcpsdk.ClientSession
	clients       map[string]*mcpsdk.Client
	failedServers map[string]string

	toolCacheMu sync.RWMutex
	toolCache   map[string][]*mcpsdk.Tool

	reinitMu sync.Map // server name → *sync.Mutex

	logger *slog.Logger
}

var _ retrieval.ToolCaller = (*Client)(nil)

// New constructs a Client for the given server configs. No connections are
// made until Connect or CallTool is called for a given server.
func New(servers map[string]config.MCPServerConfig) *Client {
	return &Client{
		configs:       servers,
		sessions:      make(map[string]*mcpsdk.ClientSession),
		clients:       make(map[string]*mcpsdk.Client),
		failedServers: make(map[string]string),
		toolCache:     make(map[string][]*mcpsdk.Tool),
		logger:        slog.Default(),
	}
}

// Connect initializes every named server concurrently, bounded by
// maxConcurrentConnects, and records failures rather than aborting: a
// deployment with three MCP servers configured and one misbehaving one
// should still serve requests against the other two. FailedServers reports
// what didn't come up. A panic spawning one server's transport is contained
// and reported as a failure for that server rather than taking the process
// down with it.
func (c *Client) Connect(ctx context.Context, serverNames []string) {
	limiter := concurrency.NewLimiter(maxConcurrentConnects)
	var wg sync.WaitGroup
	for _, name := range serverNames {
		name := name
		wg.Add(1)
		limiter.Acquire()
		concurrency.Go(func() {
			defer wg.Done()
			defer limiter.Release()
			if err := c.connectServer(ctx, name); err != nil {
				c.recordFailure(name, err)
			}
		}, func(err error) {
			c.recordFailure(name, err)
		})
	}
	wg.Wait()
}

func (c *Client) recordFailure(name string, err error) {
	c.mu.Lock()
	c.failedServers[name] = err.Error()
	c.mu.Unlock()
	c.logger.Warn("mcp server failed to connect", "server", name, "error", err)
}

// connectServer performs the spawn+handshake+cache lifecycle for one
// server, serialized per server name so concurrent callers racing into a
// cold server don't spawn duplicate child processes.
func (c *Client) connectServer(ctx context.Context, name string) error {
	muI, _ := c.reinitMu.LoadOrStore(name, &sync.Mutex{})
	mu := muI.(*sync.Mutex)
	mu.Lock()
	defer mu.Unlock()
	return c.connectServerLocked(ctx, name)
}

func (c *Client) connectServerLocked(ctx context.Context, name string) error {
	c.mu.RLock()
	_, connected := c.sessions[name]
	c.mu.RUnlock()
	if connected {
		return nil
	}

	cfg, ok := c.configs[name]
	if !ok {
		return ragerr.New(ragerr.NotFound, "mcp: unknown server "+name)
	}

	transport, err := newStdioTransport(cfg)
	if err != nil {
		return ragerr.Wrap(ragerr.InvalidArgument, "mcp: build transport for "+name, err)
	}

	initCtx, cancel := context.WithTimeout(ctx, initTimeout)
	defer cancel()

	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: appName, Version: appVersion}, nil)
	session, err := client.Connect(initCtx, transport, nil)
	if err != nil {
		return ragerr.Wrap(ragerr.Transport, "mcp: connect to "+name, err)
	}

	c.mu.Lock()
	c.sessions[name] = session
	c.clients[name] = client
	delete(c.failedServers, name)
	c.mu.Unlock()

	c.logger.Info("mcp server connected", "server", name)
	return nil
}

// ListTools returns the cached tool set for a server, populating the cache
// on first call.
func (c *Client) ListTools(ctx context.Context, server string) ([]*mcpsdk.Tool, error) {
	c.toolCacheMu.RLock()
	if cached, ok := c.toolCache[server]; ok {
		c.toolCacheMu.RUnlock()
		return cached, nil
	}
	c.toolCacheMu.RUnlock()

	c.mu.RLock()
	session, exists := c.sessions[server]
	c.mu.RUnlock()
	if !exists {
		return nil, ragerr.New(ragerr.NotFound, "mcp: not connected to "+server)
	}

	opCtx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()

	result, err := session.ListTools(opCtx, nil)
	if err != nil {
		return nil, ragerr.Wrap(ragerr.Transport, "mcp: list tools on "+server, err)
	}

	tools := result.Tools
	if tools == nil {
		tools = []*mcpsdk.Tool{}
	}
	c.toolCacheMu.Lock()
	c.toolCache[server] = tools
	c.toolCacheMu.Unlock()
	return tools, nil
}

// CallTool implements retrieval.ToolCaller. It enforces the filesystem
// allow-list (when the server's config declares one), then runs the call
// with the reconnect-once-on-transport-error policy spec.md §4.5 describes.
// The deadline on ctx governs both the connect-time check and the call
// itself; a caller that needs per-call cancellation passes a context with
// its own deadline, and cancelling it detaches the pending response without
// tearing down the session for other callers.
func (c *Client) CallTool(ctx context.Context, server, tool string, args map[string]any) (map[string]any, error) {
	cfg, ok := c.configs[server]
	if !ok {
		return nil, ragerr.New(ragerr.NotFound, "mcp: unknown server "+server)
	}
	if len(cfg.AllowedRoots) > 0 {
		if err := checkAllowedPaths(args, cfg.AllowedRoots); err != nil {
			return nil, err
		}
	}

	c.mu.RLock()
	_, exists := c.sessions[server]
	c.mu.RUnlock()
	if !exists {
		if err := c.connectServer(ctx, server); err != nil {
			return nil, ragerr.Wrap(ragerr.NotFound, "mcp: not connected to "+server, err)
		}
	}

	if _, err := c.toolExists(ctx, server, tool); err != nil {
		return nil, err
	}

	params := &mcpsdk.CallToolParams{Name: tool, Arguments: args}

	result, err := c.callToolOnce(ctx, server, params)
	if err == nil {
		return toolResultToMap(result), nil
	}

	kind, action := classifyError(err)
	if action == noRetry {
		return nil, ragerr.Wrap(kind, "mcp: call "+server+"."+tool, err)
	}

	backoff := retryBackoffMin + time.Duration(random.IntRange(0, int(retryBackoffMax-retryBackoffMin)))
	select {
	case <-time.After(backoff):
	case <-ctx.Done():
		return nil, ragerr.Wrap(ragerr.Timeout, "mcp: call "+server+"."+tool, ctx.Err())
	}

	if err := c.recreateSession(ctx, server); err != nil {
		return nil, ragerr.Wrap(ragerr.Transport, "mcp: recreate session for "+server, err)
	}

	result, err = c.callToolOnce(ctx, server, params)
	if err != nil {
		kind, _ := classifyError(err)
		return nil, ragerr.Wrap(kind, "mcp: retry call "+server+"."+tool, err)
	}
	return toolResultToMap(result), nil
}

func (c *Client) toolExists(ctx context.Context, server, tool string) (bool, error) {
	tools, err := c.ListTools(ctx, server)
	if err != nil {
		return false, err
	}
	for _, t := range tools {
		if t.Name == tool {
			return true, nil
		}
	}
	return false, ragerr.New(ragerr.NotFound, "mcp: unknown tool "+server+"."+tool)
}

func (c *Client) callToolOnce(ctx context.Context, server string, params *mcpsdk.CallToolParams) (*mcpsdk.CallToolResult, error) {
	c.mu.RLock()
	session, exists := c.sessions[server]
	c.mu.RUnlock()
	if !exists {
		return nil, ragerr.New(ragerr.NotFound, "mcp: not connected to "+server)
	}

	opCtx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()
	return session.CallTool(opCtx, params)
}

// recreateSession tears down and reconnects one server's session. Two
// callers racing in here both pay for a fresh reconnect rather than one
// reusing the other's work — acceptable since it happens only on transport
// failure, not on the hot path.
func (c *Client) recreateSession(ctx context.Context, server string) error {
	muI, _ := c.reinitMu.LoadOrStore(server, &sync.Mutex{})
	mu := muI.(*sync.Mutex)
	mu.Lock()
	defer mu.Unlock()

	c.mu.Lock()
	if session, exists := c.sessions[server]; exists {
		_ = session.Close()
		delete(c.sessions, server)
		delete(c.clients, server)
	}
	c.mu.Unlock()

	c.toolCacheMu.Lock()
	delete(c.toolCache, server)
	c.toolCacheMu.Unlock()

	reinitCtx, cancel := context.WithTimeout(ctx, reinitTimeout)
	defer cancel()
	return c.connectServerLocked(reinitCtx, server)
}

// Close disconnects every session, closing stdio pipes and reaping the
// child processes.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var firstErr error
	for name, session := range c.sessions {
		if err := session.Close(); err != nil && firstErr == nil {
			firstErr = ragerr.Wrap(ragerr.Transport, "mcp: close session "+name, err)
		}
	}
	c.sessions = make(map[string]*mcpsdk.ClientSession)
	c.clients = make(map[string]*mcpsdk.Client)
	c.failedServers = make(map[string]string)

	c.toolCacheMu.Lock()
	c.toolCache = make(map[string][]*mcpsdk.Tool)
	c.toolCacheMu.Unlock()

	return firstErr
}

// FailedServers reports servers that failed to connect during Connect,
// keyed by name with the connection error as the value.
func (c *Client) FailedServers() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]string, len(c.failedServers))
	for k, v := range c.failedServers {
		out[k] = v
	}
	return out
}

// HasSession reports whether a server currently has a live session.
func (c *Client) HasSession(server string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.sessions[server]
	return ok
}

// toolResultToMap flattens an MCP CallToolResult down to the loosely-typed
// shape internal/retrieval.ToolCaller promises its callers: text content
// joined under "text", plus IsError so a tool-level failure (as opposed to a
// transport failure) is visible to the retriever that issued the call.
func toolResultToMap(result *mcpsdk.CallToolResult) map[string]any {
	var parts []string
	for _, c := range result.Content {
		if tc, ok := c.(*mcpsdk.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return map[string]any{
		"text":     strings.Join(parts, "\n"),
		"is_error": result.IsError,
	}
}

// checkAllowedPaths rejects a tool call whose arguments reference an
// absolute path outside allowedRoots, as defense in depth on top of the
// child process's own enforcement (spec.md §4.5). It walks the argument map
// one level deep (values and string-slice elements), since local-data tool
// schemas pass paths as flat string or []string fields, not nested objects.
func checkAllowedPaths(args map[string]any, allowedRoots []string) error {
	for key, v := range args {
		switch val := v.(type) {
		case string:
			if err := checkOnePath(key, val, allowedRoots); err != nil {
				return err
			}
		case []any:
			for _, item := range val {
				if s, ok := item.(string); ok {
					if err := checkOnePath(key, s, allowedRoots); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

func checkOnePath(key, value string, allowedRoots []string) error {
	if !filepath.IsAbs(value) {
		return nil
	}
	clean := filepath.Clean(value)
	for _, root := range allowedRoots {
		if clean == root || strings.HasPrefix(clean, root+string(filepath.Separator)) {
			return nil
		}
	}
	return ragerr.New(ragerr.InvalidArgument, "mcp: argument "+key+" references a path outside the allowed roots")
}

var _ io.Closer = (*Client)(nil)
