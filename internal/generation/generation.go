// Package generation provides the thin LLM client the agentic engine,
// evaluators, and query transformers call to produce text, wrapping the
// official OpenAI and Anthropic SDKs behind one small interface instead of
// the teacher's full chat-model abstraction (out of scope: this engine does
// not train or host models, only calls out to one).
package generation

import (
	"context"
	"errors"

	"github.com/ragcore-ai/engine/internal/ragerr"
)

// Request is one generation call: a system instruction, the user content,
// and sampling parameters.
type Request struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Response is the model's answer plus basic usage accounting used by
// QueryAnalysis.EstimatedTokens-style budget checks.
type Response struct {
	Text         string
	PromptTokens int
	OutputTokens int
}

// Model is the uniform generation surface; OpenAI and Anthropic backends
// both implement it so the agentic engine and evaluators are provider
// agnostic.
type Model interface {
	Generate(ctx context.Context, req Request) (Response, error)
	Name() string
}

// Embedder produces the embedding vectors the vector store and episode
// store index on.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dim() int
}

var errEmptyPrompt = errors.New("generation: prompt must not be empty")

// validate centralizes the boundary check shared by every backend's
// Generate so each one doesn't repeat it.
func validate(req Request) error {
	if req.Prompt == "" {
		return ragerr.Wrap(ragerr.InvalidArgument, "generate", errEmptyPrompt)
	}
	return nil
}
