package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/ragcore-ai/engine/internal/generation"
	"github.com/ragcore-ai/engine/internal/ragerr"
)

var _ QueryExpander = (*MultiQueryExpander)(nil)

// MultiQueryExpanderConfig configures a MultiQueryExpander.
type MultiQueryExpanderConfig struct {
	// Model generates the query variants. Required.
	Model generation.Model

	// IncludeOriginal also returns the unmodified query. Optional, defaults to false.
	IncludeOriginal bool

	// NumberOfQueries caps how many variants are generated. Optional, defaults to 3.
	NumberOfQueries int
}

// MultiQueryExpander asks a generation.Model for semantically diverse
// rephrasings of a query to widen retrieval recall, grounded on the
// teacher's MultiQueryExpander with the prompt-template machinery collapsed
// into a single static prompt (single-shot generation, no chat templating).
type MultiQueryExpander struct {
	model           generation.Model
	includeOriginal bool
	numberOfQueries int
}

func NewMultiQueryExpander(cfg MultiQueryExpanderConfig) (*MultiQueryExpander, error) {
	if cfg.Model == nil {
		return nil, ragerr.New(ragerr.InvalidArgument, "multi query expander: model is required")
	}
	n := cfg.NumberOfQueries
	if n == 0 {
		n = 3
	}
	return &MultiQueryExpander{model: cfg.Model, includeOriginal: cfg.IncludeOriginal, numberOfQueries: n}, nil
}

func (m *MultiQueryExpander) Expand(ctx context.Context, query Query) ([]Query, error) {
	prompt := fmt.Sprintf(`You are an expert at information retrieval and search optimization.
Generate %d different versions of the given query, each covering a different
perspective or aspect of the topic while preserving the original intent.
Do not explain your choices. Provide one variant per line.

Original query: %s

Query variants:`, m.numberOfQueries, query.Text)

	resp, err := m.model.Generate(ctx, generation.Request{Prompt: prompt, Temperature: 0.7})
	if err != nil {
		return nil, ragerr.Wrap(ragerr.GenerationFailure, "expand query", err)
	}
	if resp.Text == "" {
		return []Query{query}, nil
	}

	lines := lo.Filter(strings.Split(resp.Text, "\n"), func(line string, _ int) bool {
		return strings.TrimSpace(line) != ""
	})

	queries := make([]Query, 0, len(lines)+1)
	if m.includeOriginal {
		queries = append(queries, query)
	}
	for i, line := range lines {
		if i >= m.numberOfQueries {
			break
		}
		queries = append(queries, query.WithText(strings.TrimSpace(line)))
	}
	if len(queries) == 0 {
		queries = append(queries, query)
	}
	return queries, nil
}
