// Package assess implements the self-reflective evaluators the agentic
// engine calls after retrieval and after generation (spec.md §4.2), ported
// from original_source's self_rag.py which used two separate
// RelevanceScore/SupportScore/UsefulnessScore enums — spec.md collapses
// both into one Quality/RecommendedAction shape, which this package
// implements directly rather than carrying the Python's two-enum split.
package assess

import (
	"context"
	"strconv"
	"strings"

	"github.com/ragcore-ai/engine/internal/generation"
	"github.com/ragcore-ai/engine/internal/ragerr"
	"github.com/ragcore-ai/engine/internal/retrieval"
)

// Quality is the four-point relevance/support rating spec.md §3 defines
// for both retrieval and generation assessments.
type Quality string

const (
	Excellent Quality = "excellent"
	Good      Quality = "good"
	Ambiguous Quality = "ambiguous"
	Poor      Quality = "poor"
)

// Action is the corrective action a poor or ambiguous assessment may
// recommend.
type Action string

const (
	ActionUse         Action = "use"
	ActionRefineQuery Action = "refine_query"
	ActionWebSearch   Action = "web_search"
	ActionCombine     Action = "combine"
	ActionRegenerate  Action = "regenerate"
)

// Assessment is the shared shape spec.md §3 gives to both
// RetrievalAssessment and GenerationAssessment.
type Assessment struct {
	Quality           Quality
	Confidence        float64
	RecommendedAction Action
	Reasoning         string
}

// NeedsCorrection reports whether the retrieval-side assessment is poor
// enough to trigger a corrective action (spec.md §4.2: "If class is poor
// or ambiguous and the budget permits, one corrective action is taken").
func (a Assessment) NeedsCorrection() bool {
	return a.Quality == Poor || a.Quality == Ambiguous
}

// NeedsRegeneration reports whether a generation-side assessment calls for
// regenerating the answer (spec.md §4.2: support=not_supported or
// usefulness=not_useful maps onto Quality Poor here).
func (a Assessment) NeedsRegeneration() bool {
	return a.RecommendedAction == ActionRegenerate || a.Quality == Poor
}

// Evaluator produces assessments for the agentic engine's two reflection
// points.
type Evaluator interface {
	AssessRetrieval(ctx context.Context, query retrieval.Query, results []retrieval.AugmentedQuery) (Assessment, error)
	AssessGeneration(ctx context.Context, query retrieval.Query, answer string, sources []retrieval.AugmentedQuery) (Assessment, error)
}

var _ Evaluator = (*ModelEvaluator)(nil)

// ModelEvaluator is the single concrete Evaluator: one generation.Model
// call per assessment, parsed the same line-prefix way self_rag.py parses
// its LLM's structured-text response (QUALITY:/CONFIDENCE:/ACTION:/
// REASONING:), rather than requiring JSON-mode support from every backend.
type ModelEvaluator struct {
	model generation.Model
}

func NewModelEvaluator(model generation.Model) (*ModelEvaluator, error) {
	if model == nil {
		return nil, ragerr.New(ragerr.InvalidArgument, "model evaluator: model is required")
	}
	return &ModelEvaluator{model: model}, nil
}

func (m *ModelEvaluator) AssessRetrieval(ctx context.Context, query retrieval.Query, results []retrieval.AugmentedQuery) (Assessment, error) {
	if len(results) == 0 {
		return Assessment{
			Quality:           Poor,
			Confidence:        1.0,
			RecommendedAction: ActionRefineQuery,
			Reasoning:         "no documents retrieved",
		}, nil
	}

	var sb strings.Builder
	for i, r := range results {
		if i >= 3 {
			break
		}
		for _, doc := range r.Documents {
			sb.WriteString(doc.Text)
			sb.WriteString("\n")
		}
	}

	prompt := `Assess the relevance of the retrieved documents to the query.

Query: ` + query.Text + `

Retrieved documents:
` + sb.String() + `
Rate the overall relevance using exactly this format, one field per line:
QUALITY: [excellent|good|ambiguous|poor]
CONFIDENCE: [0.0-1.0]
ACTION: [use|refine_query|web_search|combine]
REASONING: [one sentence]`

	resp, err := m.model.Generate(ctx, generation.Request{Prompt: prompt, Temperature: 0.1, MaxTokens: 200})
	if err != nil {
		return Assessment{}, ragerr.Wrap(ragerr.GenerationFailure, "assess retrieval", err)
	}
	return parseAssessment(resp.Text, Good, ActionUse), nil
}

func (m *ModelEvaluator) AssessGeneration(ctx context.Context, query retrieval.Query, answer string, sources []retrieval.AugmentedQuery) (Assessment, error) {
	var sb strings.Builder
	for i, r := range sources {
		if i >= 3 {
			break
		}
		for _, doc := range r.Documents {
			sb.WriteString(doc.Text)
			sb.WriteString("\n")
		}
	}

	prompt := `Assess the quality of the generated response against its source documents.

Query: ` + query.Text + `

Response: ` + answer + `

Source documents:
` + sb.String() + `
Evaluate whether the response is supported by the documents and whether it
usefully answers the query. Reply using exactly this format:
QUALITY: [excellent|good|ambiguous|poor]
CONFIDENCE: [0.0-1.0]
ACTION: [use|regenerate]
REASONING: [one sentence]`

	resp, err := m.model.Generate(ctx, generation.Request{Prompt: prompt, Temperature: 0.1, MaxTokens: 200})
	if err != nil {
		return Assessment{}, ragerr.Wrap(ragerr.GenerationFailure, "assess generation", err)
	}
	return parseAssessment(resp.Text, Good, ActionUse), nil
}

// parseAssessment extracts QUALITY:/CONFIDENCE:/ACTION:/REASONING: lines
// from a structured-text model reply, falling back to the supplied
// defaults for any field that is missing or malformed — mirroring
// self_rag.py's tolerant line-by-line parse rather than failing the whole
// assessment on one bad field.
func parseAssessment(text string, defaultQuality Quality, defaultAction Action) Assessment {
	a := Assessment{Quality: defaultQuality, Confidence: 0.7, RecommendedAction: defaultAction, Reasoning: "assessment completed"}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(strings.ToUpper(line), "QUALITY:"):
			if q := parseQuality(valueAfterColon(line)); q != "" {
				a.Quality = q
			}
		case strings.HasPrefix(strings.ToUpper(line), "CONFIDENCE:"):
			if v, err := strconv.ParseFloat(valueAfterColon(line), 64); err == nil {
				a.Confidence = v
			}
		case strings.HasPrefix(strings.ToUpper(line), "ACTION:"):
			if act := parseAction(valueAfterColon(line)); act != "" {
				a.RecommendedAction = act
			}
		case strings.HasPrefix(strings.ToUpper(line), "REASONING:"):
			a.Reasoning = valueAfterColon(line)
		}
	}
	return a
}

func valueAfterColon(line string) string {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(strings.Trim(line[idx+1:], "[] "))
}

func parseQuality(s string) Quality {
	switch strings.ToLower(s) {
	case string(Excellent):
		return Excellent
	case string(Good):
		return Good
	case string(Ambiguous):
		return Ambiguous
	case string(Poor):
		return Poor
	default:
		return ""
	}
}

func parseAction(s string) Action {
	switch strings.ToLower(s) {
	case string(ActionUse):
		return ActionUse
	case string(ActionRefineQuery):
		return ActionRefineQuery
	case string(ActionWebSearch):
		return ActionWebSearch
	case string(ActionCombine):
		return ActionCombine
	case string(ActionRegenerate):
		return ActionRegenerate
	default:
		return ""
	}
}
