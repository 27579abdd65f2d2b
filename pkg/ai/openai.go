package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"

	"github.com/meetingledger/ledger/pkg/config"
)

// OpenAIGenerator implements Generator using the OpenAI chat completions API.
type OpenAIGenerator struct {
	client oai.Client
	model  string
}

var _ Generator = (*OpenAIGenerator)(nil)

// NewOpenAIGenerator constructs a chat client from configuration.
func NewOpenAIGenerator(cfg config.OpenAIConfig) (*OpenAIGenerator, error) {
	client, err := newOpenAIClient(cfg)
	if err != nil {
		return nil, err
	}
	return &OpenAIGenerator{client: client, model: cfg.ChatModel}, nil
}

// Generate returns a single deterministic completion. Temperature is pinned
// to zero because callers parse the output.
func (g *OpenAIGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	params := oai.ChatCompletionNewParams{
		Model:       shared.ChatModel(g.model),
		Messages:    buildMessages(system, prompt),
		Temperature: param.NewOpt(0.0),
	}

	resp, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: empty choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}

// Stream returns completion fragments as they arrive.
func (g *OpenAIGenerator) Stream(ctx context.Context, system, prompt string) (<-chan StreamChunk, error) {
	params := oai.ChatCompletionNewParams{
		Model:       shared.ChatModel(g.model),
		Messages:    buildMessages(system, prompt),
		Temperature: param.NewOpt(0.0),
	}

	stream := g.client.Chat.Completions.NewStreaming(ctx, params)
	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("openai: start stream: %w", err)
	}

	ch := make(chan StreamChunk, 32)
	go func() {
		defer close(ch)
		defer stream.Close()

		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) == 0 {
				continue
			}
			delta := chunk.Choices[0].Delta
			if delta.Content == "" {
				continue
			}
			select {
			case ch <- StreamChunk{Content: delta.Content}:
			case <-ctx.Done():
				return
			}
		}
		if err := stream.Err(); err != nil {
			select {
			case ch <- StreamChunk{Err: fmt.Errorf("openai: stream: %w", err)}:
			case <-ctx.Done():
			}
		}
	}()
	return ch, nil
}

func (g *OpenAIGenerator) Model() string {
	return g.model
}

func buildMessages(system, prompt string) []oai.ChatCompletionMessageParamUnion {
	var messages []oai.ChatCompletionMessageParamUnion
	if system != "" {
		messages = append(messages, oai.SystemMessage(system))
	}
	messages = append(messages, oai.UserMessage(prompt))
	return messages
}

// OpenAIEmbedder implements Embedder using the OpenAI embeddings API.
type OpenAIEmbedder struct {
	client oai.Client
	model  string
}

var _ Embedder = (*OpenAIEmbedder)(nil)

// NewOpenAIEmbedder constructs an embeddings client from configuration.
func NewOpenAIEmbedder(cfg config.OpenAIConfig) (*OpenAIEmbedder, error) {
	client, err := newOpenAIClient(cfg)
	if err != nil {
		return nil, err
	}
	model := cfg.EmbedModel
	if model == "" {
		model = oai.EmbeddingModelTextEmbedding3Small
	}
	return &OpenAIEmbedder{client: client, model: model}, nil
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.Embeddings.New(ctx, oai.EmbeddingNewParams{
		Model: e.model,
		Input: oai.EmbeddingNewParamsInputUnion{
			OfString: param.NewOpt(text),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: embed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("openai embeddings: empty response")
	}
	return float64ToFloat32(resp.Data[0].Embedding), nil
}

func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := e.client.Embeddings.New(ctx, oai.EmbeddingNewParams{
		Model: e.model,
		Input: oai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: embed batch: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai embeddings: expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	result := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if int(d.Index) >= len(texts) {
			return nil, fmt.Errorf("openai embeddings: unexpected index %d", d.Index)
		}
		result[d.Index] = float64ToFloat32(d.Embedding)
	}
	return result, nil
}

func (e *OpenAIEmbedder) Dimensions() int {
	lower := strings.ToLower(e.model)
	switch {
	case strings.Contains(lower, "text-embedding-3-large"):
		return 3072
	default:
		return 1536
	}
}

func (e *OpenAIEmbedder) Model() string {
	return e.model
}

func newOpenAIClient(cfg config.OpenAIConfig) (oai.Client, error) {
	if cfg.APIKey == "" {
		return oai.Client{}, fmt.Errorf("openai: api key must not be empty")
	}
	reqOpts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(&http.Client{Timeout: 120 * time.Second}),
	}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	return oai.NewClient(reqOpts...), nil
}

// float64ToFloat32 converts a []float64 slice to []float32.
func float64ToFloat32(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}
