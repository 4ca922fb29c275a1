package retrieval

import (
	"regexp"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

var (
	factualPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(what is|who is|when|where|which|define|explain)\b`),
		regexp.MustCompile(`(?i)\b(how many|how much|how long)\b`),
	}
	analyticalPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(why|how|analyze|compare|evaluate|assess)\b`),
		regexp.MustCompile(`(?i)\b(difference|similarity|relationship|impact|effect)\b`),
		regexp.MustCompile(`(?i)\b(pros and cons|advantages|disadvantages)\b`),
	}
	multiStepPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(first|then|next|finally|step by step)\b`),
		regexp.MustCompile(`(?i)\b(and then|after that|following)\b`),
		regexp.MustCompile(`(?i)\b(multiple|several|various)\b`),
	}
	highComplexityPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(comprehensive|detailed|in-depth|thorough)\b`),
		regexp.MustCompile(`(?i)\b(all|every|complete|entire)\b`),
		regexp.MustCompile(`(?i)\b(analyze|synthesize|evaluate|critique)\b`),
	}
	mediumComplexityPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(explain|describe|discuss|compare)\b`),
		regexp.MustCompile(`(?i)\b(some|few|several)\b`),
	}
	lowComplexityPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(what|who|when|where|list)\b`),
		regexp.MustCompile(`(?i)\b(simple|quick|brief)\b`),
	}
	conjunctionPattern = regexp.MustCompile(`(?i)\b(and|or|but|also|additionally)\b`)
	wordPattern        = regexp.MustCompile(`\b\w+\b`)
	entityPattern      = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*\b`)

	reasoningKeywords    = []string{"why", "how", "explain", "reason", "cause", "analyze", "evaluate", "compare", "contrast"}
	multiSourceKeywords  = []string{"compare", "contrast", "different", "various", "multiple", "all", "comprehensive", "complete"}
	stopWords            = map[string]struct{}{
		"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {}, "on": {}, "at": {},
		"to": {}, "for": {}, "of": {}, "with": {}, "by": {}, "from": {}, "is": {}, "are": {},
		"was": {}, "were": {}, "be": {}, "been": {}, "being": {}, "have": {}, "has": {}, "had": {},
	}
)

// Analyzer computes an Analysis for a query's text, ported from
// backend/services/query_analyzer.py's regex-class heuristics per
// SPEC_FULL.md §3.
type Analyzer struct {
	tokenizer *tiktoken.Tiktoken
}

// NewAnalyzer builds an Analyzer using the given tiktoken encoding (e.g.
// "cl100k_base") for EstimatedTokens. A nil tokenizer falls back to a
// word-count heuristic.
func NewAnalyzer(encoding string) (*Analyzer, error) {
	if encoding == "" {
		return &Analyzer{}, nil
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, err
	}
	return &Analyzer{tokenizer: enc}, nil
}

func (a *Analyzer) Analyze(text string) Analysis {
	lower := strings.ToLower(text)

	analysis := Analysis{
		Complexity:              a.complexity(lower),
		Type:                    queryType(lower),
		RequiresReasoning:       containsAny(lower, reasoningKeywords),
		RequiresMultipleSources: containsAny(lower, multiSourceKeywords),
		EstimatedTokens:         a.estimateTokens(text),
		Keywords:                keywords(lower),
		Entities:                entities(text),
	}
	analysis.RecommendedMode = recommendMode(analysis)
	return analysis
}

func (a *Analyzer) complexity(lower string) float64 {
	score := 0.3

	wordCount := len(strings.Fields(lower))
	switch {
	case wordCount > 20:
		score += 0.2
	case wordCount > 10:
		score += 0.1
	}

	for _, p := range highComplexityPatterns {
		if p.MatchString(lower) {
			score += 0.15
		}
	}
	for _, p := range mediumComplexityPatterns {
		if p.MatchString(lower) {
			score += 0.08
		}
	}
	for _, p := range lowComplexityPatterns {
		if p.MatchString(lower) {
			score -= 0.05
		}
	}

	if q := strings.Count(lower, "?"); q > 1 {
		score += 0.1 * float64(q-1)
	}
	score += 0.05 * float64(len(conjunctionPattern.FindAllString(lower, -1)))

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

func queryType(lower string) QueryType {
	for _, p := range multiStepPatterns {
		if p.MatchString(lower) {
			return TypeMultiStep
		}
	}
	for _, p := range analyticalPatterns {
		if p.MatchString(lower) {
			return TypeAnalytical
		}
	}
	for _, p := range factualPatterns {
		if p.MatchString(lower) {
			return TypeFactual
		}
	}
	return TypeConversational
}

func containsAny(lower string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

func (a *Analyzer) estimateTokens(text string) int {
	const overhead = 500
	if a.tokenizer != nil {
		return len(a.tokenizer.Encode(text, nil, nil)) + overhead
	}
	wordCount := len(strings.Fields(text))
	return int(float64(wordCount)/0.75) + overhead
}

func keywords(lower string) []string {
	words := wordPattern.FindAllString(lower, -1)
	out := make([]string, 0, 10)
	for _, w := range words {
		if len(out) >= 10 {
			break
		}
		if _, stop := stopWords[w]; stop || len(w) <= 2 {
			continue
		}
		out = append(out, w)
	}
	return out
}

func entities(text string) []string {
	matches := entityPattern.FindAllString(text, -1)
	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, 5)
	for _, m := range matches {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
		if len(out) >= 5 {
			break
		}
	}
	return out
}

func recommendMode(a Analysis) Mode {
	switch {
	case a.Complexity > 0.7:
		return ModeDeep
	case a.Type == TypeMultiStep:
		return ModeDeep
	case a.RequiresReasoning && a.RequiresMultipleSources:
		return ModeDeep
	case a.Complexity < 0.35:
		return ModeFast
	case a.Type == TypeFactual && !a.RequiresReasoning:
		return ModeFast
	default:
		return ModeBalanced
	}
}
