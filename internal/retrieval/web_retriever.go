package retrieval

import (
	"context"

	"github.com/spf13/cast"

	"github.com/ragcore-ai/engine/internal/document"
	"github.com/ragcore-ai/engine/internal/ragerr"
)

var _ Retriever = (*WebRetriever)(nil)

// WebRetrieverConfig configures a WebRetriever.
type WebRetrieverConfig struct {
	// Caller dispatches the search tool call through the MCP multiplexer. Required.
	Caller ToolCaller

	// Server is the MCP server name exposing the web-search tool. Required.
	Server string

	// Tool is the tool name to invoke. Optional, defaults to "web_search".
	Tool string
}

// WebRetriever calls an external search tool through the MCP multiplexer
// and returns at most topK results of {title, url, snippet, score} (§4.4).
// Tool arguments and results are loosely typed JSON-like maps, coerced at
// this boundary with spf13/cast per the ambient stack's MCP convention.
type WebRetriever struct {
	caller ToolCaller
	server string
	tool   string
}

func NewWebRetriever(cfg WebRetrieverConfig) (*WebRetriever, error) {
	if cfg.Caller == nil {
		return nil, ragerr.New(ragerr.InvalidArgument, "web retriever: caller is required")
	}
	if cfg.Server == "" {
		return nil, ragerr.New(ragerr.InvalidArgument, "web retriever: server is required")
	}
	tool := cfg.Tool
	if tool == "" {
		tool = "web_search"
	}
	return &WebRetriever{caller: cfg.Caller, server: cfg.Server, tool: tool}, nil
}

func (w *WebRetriever) Name() string { return "web" }

func (w *WebRetriever) Healthy(ctx context.Context) bool {
	_, err := w.caller.CallTool(ctx, w.server, w.tool, map[string]any{"query": "", "max_results": 0})
	return err == nil
}

func (w *WebRetriever) Search(ctx context.Context, query string, topK int, _ string) ([]document.SearchResult, error) {
	result, err := w.caller.CallTool(ctx, w.server, w.tool, map[string]any{
		"query":       query,
		"max_results": topK,
	})
	if err != nil {
		return nil, ragerr.Wrap(ragerr.ToolExecution, "web search", err)
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
			ID:           cast.ToString(m["url"]),
			Text:         cast.ToString(m["snippet"]),
			Score:        float32(cast.ToFloat64(m["score"])),
			DocumentName: cast.ToString(m["title"]),
			Metadata: map[string]any{
				"url":    cast.ToString(m["url"]),
				"source": "web",
			},
		})
	}
	return out, nil
}
