package tools

import (
	"context"

	"codegraph/internal/llm"
	"codegraph/internal/vectorstore"
)

// RegisterVectorTools registers the semantic_search tool, which embeds a
// free-text query via embedder and searches store for nearest nodes.
func RegisterVectorTools(reg *Registry, store *vectorstore.Store, embedder llm.Embedder) error {
	return reg.Register(semanticSearchTool(store, embedder))
}

func semanticSearchTool(store *vectorstore.Store, embedder llm.Embedder) *Tool {
	return &Tool{
		Name:        "semantic_search",
		Description: "Embeds a free-text query and returns the nearest code entities by cosine similarity.",
		Category:    CategoryVectorSearch,
		Schema: ToolSchema{
			Required: []string{"query"},
			Properties: map[string]Property{
				"query": {Type: "string", Description: "Free-text description of the code to find"},
				"limit": {Type: "integer", Description: "Maximum results to return", Default: 10, Minimum: minPtr(1), Maximum: maxPtr(100)},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			query, err := argString(args, "query")
			if err != nil {
				return "", err
			}
			limit := argIntDefault(args, "limit", 10)

			vec, err := embedder.Embed(ctx, query)
			if err != nil {
				return "", err
			}

			matches, err := store.Search(vec, limit, nil)
			if err != nil {
				return "", err
			}
			return marshalResult(matches)
		},
	}
}
