// Package llm defines the opaque provider contracts CodeGraph consumes
// (§6 External interfaces): a chat/completion interface driving the ReAct
// orchestrator, and an embedding interface feeding the vector store and the
// parser pipeline's similarity-resolution pass. Neither the LLM nor the
// embedding model is implemented here — only the adapters this project
// wires them through, grounded on the teacher's internal/embedding package.
package llm

import "context"

// Role is a chat message's author.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a chat conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatOptions parameterizes a single chat() call.
type ChatOptions struct {
	Temperature float64
	MaxTokens   int
	Stop        []string
}

// ChatResult is what the provider returns for one chat() call.
type ChatResult struct {
	Text       string
	TokensUsed int
}

// ChatProvider is the single async operation CodeGraph imposes on an LLM
// provider (§6). Tool-call support is not required: the orchestrator parses
// the provider's text output itself.
type ChatProvider interface {
	Chat(ctx context.Context, messages []Message, opts ChatOptions) (ChatResult, error)
	Name() string
}

// Embedder is the opaque text -> vector<f32> function §6 describes. D is
// fixed at index-creation time; callers must not mix embedders of different
// dimensionality into one vector store instance.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Name() string
}
