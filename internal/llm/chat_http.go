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

// HTTPChatProvider talks to any OpenAI-compatible chat completions endpoint
// over plain HTTP, grounded on the teacher's internal/perception.ZAIClient
// (no vendor SDK, just a JSON POST with Bearer auth). This is the adapter
// CodeGraph's agent orchestrator uses for §6's chat() contract; swapping
// providers is a base URL and model change, not a code change.
type HTTPChatProvider struct {
	name       string
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewHTTPChatProvider constructs a provider against baseURL (an
// OpenAI-compatible /chat/completions root, no trailing slash). An empty
// apiKey is accepted here and reported by Chat, so construction never
// depends on credentials.
func NewHTTPChatProvider(name, baseURL, apiKey, model string, timeout time.Duration) (*HTTPChatProvider, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("llm: base url is required for %s", name)
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &HTTPChatProvider{
		name:       name,
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Stop        []string      `json:"stop,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

func (p *HTTPChatProvider) Chat(ctx context.Context, messages []Message, opts ChatOptions) (ChatResult, error) {
	if p.apiKey == "" {
		return ChatResult{}, fmt.Errorf("llm: api key is required for %s", p.name)
	}
	wire := make([]chatMessage, len(messages))
	for i, m := range messages {
		wire[i] = chatMessage{Role: string(m.Role), Content: m.Content}
	}

	body, err := json.Marshal(chatRequest{
		Model:       p.model,
		Messages:    wire,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
		Stop:        opts.Stop,
	})
	if err != nil {
		return ChatResult{}, fmt.Errorf("llm: marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return ChatResult{}, fmt.Errorf("llm: build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	start := time.Now()
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return ChatResult{}, fmt.Errorf("llm: %s request failed: %w", p.name, err)
	}
	defer resp.Body.Close()
	latency := time.Since(start)

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		logging.Get(logging.CategoryLLM).Warn("%s returned status %d after %s: %s", p.name, resp.StatusCode, latency, string(msg))
		return ChatResult{}, fmt.Errorf("llm: %s returned status %d: %s", p.name, resp.StatusCode, string(msg))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return ChatResult{}, fmt.Errorf("llm: decode %s response: %w", p.name, err)
	}
	if len(out.Choices) == 0 {
		return ChatResult{}, fmt.Errorf("llm: %s returned no choices", p.name)
	}

	logging.Get(logging.CategoryLLM).Debug("%s chat completed in %s, tokens=%d", p.name, latency, out.Usage.TotalTokens)

	return ChatResult{
		Text:       out.Choices[0].Message.Content,
		TokensUsed: out.Usage.TotalTokens,
	}, nil
}

func (p *HTTPChatProvider) Name() string { return p.name }
