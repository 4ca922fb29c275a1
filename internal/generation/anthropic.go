package generation

import (
	"context"
	"errors"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/ragcore-ai/engine/internal/ragerr"
)

var _ Model = (*AnthropicModel)(nil)

// AnthropicConfig mirrors OpenAIConfig's shape for the Anthropic backend,
// used when the evaluator or generation step is configured to call Claude
// instead of (or alongside) OpenAI.
type AnthropicConfig struct {
	APIKey         string
	Model          string
	RequestOptions []option.RequestOption
}

func (c *AnthropicConfig) validate() error {
	if c == nil {
		return errors.New("anthropic config is nil")
	}
	if c.APIKey == "" {
		return errors.New("anthropic config: api key is required")
	}
	return nil
}

// AnthropicModel generates completions through anthropic-sdk-go.
type AnthropicModel struct {
	client *anthropic.Client
	model  anthropic.Model
}

func NewAnthropicModel(cfg *AnthropicConfig) (*AnthropicModel, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	opts := append([]option.RequestOption{option.WithAPIKey(cfg.APIKey)}, cfg.RequestOptions...)
	client := anthropic.NewClient(opts...)

	model := anthropic.ModelClaude3_5HaikuLatest
	if cfg.Model != "" {
		model = anthropic.Model(cfg.Model)
	}
	return &AnthropicModel{client: &client, model: model}, nil
}

func (m *AnthropicModel) Name() string { return "anthropic:" + string(m.model) }

func (m *AnthropicModel) Generate(ctx context.Context, req Request) (Response, error) {
	if err := validate(req); err != nil {
		return Response{}, err
	}

	maxTokens := int64(req.MaxTokens)
	if maxTokens == 0 {
		maxTokens = 1024
	}

	params := anthropic.MessageNewParams{
		Model:     m.model,
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}

	msg, err := m.client.Messages.New(ctx, params)
	if err != nil {
		return Response{}, ragerr.Wrap(ragerr.GenerationFailure, "anthropic message", err)
	}
	if len(msg.Content) == 0 {
		return Response{}, ragerr.New(ragerr.GenerationFailure, "anthropic returned no content")
	}

	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	return Response{
		Text:         text,
		PromptTokens: int(msg.Usage.InputTokens),
		OutputTokens: int(msg.Usage.OutputTokens),
	}, nil
}
