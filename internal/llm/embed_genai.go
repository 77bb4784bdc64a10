package llm

import (
	"context"
	"fmt"

	"codegraph/internal/logging"

	"google.golang.org/genai"
)

// genaiMaxBatch is the GenAI API's hard limit of requests in one batch call.
const genaiMaxBatch = 100

// GenAIEmbedder embeds text via Google's Gemini embedding API, grounded on
// the teacher's internal/embedding/genai.go.
type GenAIEmbedder struct {
	client     *genai.Client
	model      string
	taskType   string
	dimensions int32
}

// NewGenAIEmbedder constructs a GenAIEmbedder. dimensions selects
// OutputDimensionality; callers should pass the index's configured
// VectorDimension so every stored vector shares one dimensionality.
func NewGenAIEmbedder(ctx context.Context, apiKey, model, taskType string, dimensions int) (*GenAIEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("llm: genai api key is required")
	}
	if model == "" {
		model = "gemini-embedding-001"
	}
	if taskType == "" {
		taskType = "SEMANTIC_SIMILARITY"
	}
	if dimensions <= 0 {
		dimensions = 768
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("llm: create genai client: %w", err)
	}

	logging.Get(logging.CategoryLLM).Info("genai embedder ready: model=%s dims=%d", model, dimensions)

	return &GenAIEmbedder{
		client:     client,
		model:      model,
		taskType:   taskType,
		dimensions: int32(dimensions),
	}, nil
}

func (e *GenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	out, err := e.embedChunk(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("llm: genai returned no embeddings")
	}
	return out[0], nil
}

func (e *GenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if len(texts) <= genaiMaxBatch {
		return e.embedChunk(ctx, texts)
	}

	all := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += genaiMaxBatch {
		end := start + genaiMaxBatch
		if end > len(texts) {
			end = len(texts)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		chunk, err := e.embedChunk(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("llm: genai batch [%d:%d]: %w", start, end, err)
		}
		all = append(all, chunk...)
	}
	return all, nil
}

func (e *GenAIEmbedder) embedChunk(ctx context.Context, texts []string) ([][]float32, error) {
	contents := make([]*genai.Content, len(texts))
	for i, t := range texts {
		contents[i] = genai.NewContentFromText(t, genai.RoleUser)
	}

	dims := e.dimensions
	result, err := e.client.Models.EmbedContent(ctx, e.model, contents, &genai.EmbedContentConfig{
		OutputDimensionality: &dims,
	})
	if err != nil {
		return nil, fmt.Errorf("llm: genai embed content: %w", err)
	}

	out := make([][]float32, len(result.Embeddings))
	for i, emb := range result.Embeddings {
		out[i] = emb.Values
	}
	return out, nil
}

func (e *GenAIEmbedder) Dimensions() int { return int(e.dimensions) }
func (e *GenAIEmbedder) Name() string    { return fmt.Sprintf("genai:%s", e.model) }

// HealthCheck performs a minimal embed call to confirm the API key and
// network path are usable.
func (e *GenAIEmbedder) HealthCheck(ctx context.Context) error {
	_, err := e.Embed(ctx, "healthcheck")
	return err
}
