package retrieval

import (
	"context"

	"github.com/spf13/cast"

	"github.com/ragcore-ai/engine/internal/document"
	"github.com/ragcore-ai/engine/internal/ragerr"
)

var _ Retriever = (*LocalRetriever)(nil)

// LocalRetrieverConfig configures a LocalRetriever.
type LocalRetrieverConfig struct {
	// Caller dispatches the local-data tool call through the MCP multiplexer. Required.
	Caller ToolCaller

	// Server is the MCP server name exposing local file/DB access. Required.
	// Allow-list enforcement for filesystem roots and the SELECT-only
	// restriction on DB queries happen inside that child process (§4.5), not here.
	Server string

	// Tool is the tool name to invoke. Optional, defaults to "local_search".
	Tool string
}

// LocalRetriever reads files or queries a local database through the MCP
// multiplexer, returning text blocks with provenance (§4.4).
type LocalRetriever struct {
	caller ToolCaller
	server string
	tool   string
}

func NewLocalRetriever(cfg LocalRetrieverConfig) (*LocalRetriever, error) {
	if cfg.Caller == nil {
		return nil, ragerr.New(ragerr.InvalidArgument, "local retriever: caller is required")
	}
	if cfg.Server == "" {
		return nil, ragerr.New(ragerr.InvalidArgument, "local retriever: server is required")
	}
	tool := cfg.Tool
	if tool == "" {
		tool = "local_search"
	}
	return &LocalRetriever{caller: cfg.Caller, server: cfg.Server, tool: tool}, nil
}

func (l *LocalRetriever) Name() string { return "local" }

func (l *LocalRetriever) Healthy(ctx context.Context) bool {
	_, err := l.caller.CallTool(ctx, l.server, l.tool, map[string]any{"query": "", "max_results": 0})
	return err == nil
}

func (l *LocalRetriever) Search(ctx context.Context, query string, topK int, _ string) ([]document.SearchResult, error) {
	result, err := l.caller.CallTool(ctx, l.server, l.tool, map[string]any{
		"query":       query,
		"max_results": topK,
	})
	if err != nil {
		return nil, ragerr.Wrap(ragerr.ToolExecution, "local search", err)
	}

	raw, _ := result["results"].([]any)
	out := make([]document.SearchResult, 0, len(raw))
	for i, item := range raw {
		if i >= topK {
			break
		}
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, document.SearchResult{
			ID:           cast.ToString(m["path"]),
			Text:         cast.ToString(m["text"]),
			Score:        float32(cast.ToFloat64(m["score"])),
			DocumentName: cast.ToString(m["path"]),
			Metadata: map[string]any{
				"provenance": cast.ToString(m["provenance"]),
				"source":     "local",
			},
		})
	}
	return out, nil
}
