package mcp

import (
	"fmt"
	"os"
	"os/exec"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ragcore-ai/engine/internal/config"
)

// newStdioTransport builds the child process transport for one MCP server.
// spec.md §4.5 scopes the multiplexer to "a line-delimited stdio protocol"
// only; tarsy's pkg/mcp also supports HTTP/SSE transports for remote
// servers, which this engine has no use for since every retrieval tool here
// is a local subprocess.
func newStdioTransport(cfg config.MCPServerConfig) (*mcpsdk.CommandTransport, error) {
	if cfg.Command == "" {
		return nil, fmt.Errorf("mcp server: command is required")
	}

	cmd := exec.Command(cfg.Command, cfg.Args...)

	env := os.Environ()
	for k, v := range cfg.Env {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}
	cmd.Env = env

	return &mcpsdk.CommandTransport{Command: cmd}, nil
}
