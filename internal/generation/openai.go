package generation

import (
	"context"
	"errors"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/ragcore-ai/engine/internal/ragerr"
)

var _ Model = (*OpenAIModel)(nil)
var _ Embedder = (*OpenAIEmbedder)(nil)

// OpenAIConfig holds the credentials and model name for an OpenAI-backed
// Model/Embedder, following the teacher's ApiConfig/validate idiom.
type OpenAIConfig struct {
	APIKey         string
	Model          string
	EmbeddingModel string
	EmbeddingDim   int
	RequestOptions []option.RequestOption
}

func (c *OpenAIConfig) validate() error {
	if c == nil {
		return errors.New("openai config is nil")
	}
	if c.APIKey == "" {
		return errors.New("openai config: api key is required")
	}
	return nil
}

// OpenAIModel generates chat completions through openai-go.
type OpenAIModel struct {
	client *openai.Client
	model  string
}

func NewOpenAIModel(cfg *OpenAIConfig) (*OpenAIModel, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	opts := append([]option.RequestOption{option.WithAPIKey(cfg.APIKey)}, cfg.RequestOptions...)
	client := openai.NewClient(opts...)
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIModel{client: &client, model: model}, nil
}

func (m *OpenAIModel) Name() string { return "openai:" + m.model }

func (m *OpenAIModel) Generate(ctx context.Context, req Request) (Response, error) {
	if err := validate(req); err != nil {
		return Response{}, err
	}

	messages := []openai.ChatCompletionMessageParamUnion{}
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:    m.model,
		Messages: messages,
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	completion, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return Response{}, ragerr.Wrap(ragerr.GenerationFailure, "openai chat completion", err)
	}
	if len(completion.Choices) == 0 {
		return Response{}, ragerr.New(ragerr.GenerationFailure, "openai returned no choices")
	}

	return Response{
		Text:         completion.Choices[0].Message.Content,
		PromptTokens: int(completion.Usage.PromptTokens),
		OutputTokens: int(completion.Usage.CompletionTokens),
	}, nil
}

// OpenAIEmbedder produces embedding vectors through openai-go.
type OpenAIEmbedder struct {
	client *openai.Client
	model  string
	dim    int
}

func NewOpenAIEmbedder(cfg *OpenAIConfig) (*OpenAIEmbedder, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	opts := append([]option.RequestOption{option.WithAPIKey(cfg.APIKey)}, cfg.RequestOptions...)
	client := openai.NewClient(opts...)
	model := cfg.EmbeddingModel
	if model == "" {
		model = "text-embedding-3-small"
	}
	dim := cfg.EmbeddingDim
	if dim == 0 {
		dim = 768
	}
	return &OpenAIEmbedder{client: &client, model: model, dim: dim}, nil
}

func (e *OpenAIEmbedder) Dim() int { return e.dim }

func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	inputs := make(openai.EmbeddingNewParamsInputArrayOfStrings, len(texts))
	copy(inputs, texts)

	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model:          e.model,
		Input:          openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: inputs},
		Dimensions:     openai.Int(int64(e.dim)),
		EncodingFormat: openai.EmbeddingNewParamsEncodingFormatFloat,
	})
	if err != nil {
		return nil, ragerr.Wrap(ragerr.EmbeddingFailure, "openai embeddings", err)
	}

	out := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vec := make([]float32, len(d.Embedding))
		for j, v := range d.Embedding {
			vec[j] = float32(v)
		}
		out[i] = vec
	}
	return out, nil
}
