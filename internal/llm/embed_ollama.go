package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"codegraph/internal/logging"
)

// OllamaEmbedder embeds text via a local Ollama server's /api/embeddings
// endpoint, grounded on the teacher's internal/embedding/ollama.go.
type OllamaEmbedder struct {
	endpoint   string
	model      string
	client     *http.Client
	dimensions int
}

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// NewOllamaEmbedder constructs an OllamaEmbedder. dimensions is the expected
// output width (for Dimensions() bookkeeping); Ollama itself reports no
// fixed dimensionality, so this must come from the configured index.
func NewOllamaEmbedder(endpoint, model string, dimensions int) *OllamaEmbedder {
	if endpoint == "" {
		endpoint = "http://localhost:11434"
	}
	if model == "" {
		model = "embeddinggemma"
	}
	if dimensions <= 0 {
		dimensions = 768
	}
	return &OllamaEmbedder{
		endpoint:   endpoint,
		model:      model,
		dimensions: dimensions,
		client:     &http.Client{Timeout: 30 * time.Second},
	}
}

func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(ollamaEmbedRequest{Model: e.model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("llm: marshal ollama request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("llm: build ollama request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("llm: ollama request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("llm: ollama returned status %d: %s", resp.StatusCode, string(msg))
	}

	var out ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("llm: decode ollama response: %w", err)
	}
	return out.Embedding, nil
}

// EmbedBatch calls Embed sequentially: the Ollama HTTP API has no native
// batch endpoint.
func (e *OllamaEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("llm: ollama batch item %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

func (e *OllamaEmbedder) Dimensions() int { return e.dimensions }
func (e *OllamaEmbedder) Name() string    { return fmt.Sprintf("ollama:%s", e.model) }

// HealthCheck confirms the Ollama server is reachable and serving the
// configured model.
func (e *OllamaEmbedder) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.endpoint+"/api/tags", nil)
	if err != nil {
		return err
	}
	resp, err := e.client.Do(req)
	if err != nil {
		logging.Get(logging.CategoryLLM).Warn("ollama healthcheck failed: %v", err)
		return fmt.Errorf("llm: ollama unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("llm: ollama healthcheck status %d", resp.StatusCode)
	}
	return nil
}
