package tools

import (
	"context"
	"strings"

	"codegraph/internal/graphstore"
	"codegraph/internal/types"
)

// RegisterNodeTools registers tools for raw node/edge reads outside the
// analysis surface (§4.4 names "raw node read" as its own cache kind,
// distinct from graph-analysis and agentic results).
func RegisterNodeTools(reg *Registry, store *graphstore.Store) error {
	for _, tool := range []*Tool{getNodeTool(store), findByNameTool(store), neighborsTool(store)} {
		if err := reg.Register(tool); err != nil {
			return err
		}
	}
	return nil
}

func getNodeTool(store *graphstore.Store) *Tool {
	return &Tool{
		Name:        "get_node",
		Description: "Reads a single node by NodeId.",
		Category:    CategoryNodeAccess,
		Schema: ToolSchema{
			Required:   []string{"node"},
			Properties: map[string]Property{"node": {Type: "string", Description: "NodeId to read"}},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			id, err := argNodeID(args, "node")
			if err != nil {
				return "", err
			}
			n, err := store.GetNode(id)
			if err != nil {
				return "", err
			}
			return marshalResult(n)
		},
	}
}

func findByNameTool(store *graphstore.Store) *Tool {
	return &Tool{
		Name:        "find_by_name",
		Description: "Resolves NodeIds by (language, name) symbol lookup.",
		Category:    CategoryNodeAccess,
		Schema: ToolSchema{
			Required: []string{"language", "name"},
			Properties: map[string]Property{
				"language": {Type: "string", Description: "Source language"},
				"name":     {Type: "string", Description: "Symbol name"},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			language, err := argString(args, "language")
			if err != nil {
				return "", err
			}
			name, err := argString(args, "name")
			if err != nil {
				return "", err
			}
			ids, err := store.FindByName(language, name)
			if err != nil {
				return "", err
			}
			return marshalResult(ids)
		},
	}
}

func neighborsTool(store *graphstore.Store) *Tool {
	return &Tool{
		Name:        "node_neighbors",
		Description: "Returns the edges directly touching a node, optionally filtered to one edge kind and direction.",
		Category:    CategoryNodeAccess,
		Schema: ToolSchema{
			Required: []string{"node"},
			Properties: map[string]Property{
				"node":      {Type: "string", Description: "NodeId to inspect"},
				"edge_kind": {Type: "string", Description: "Edge kind filter (omit for all kinds)"},
				"direction": {Type: "string", Description: "out | in | both", Default: "both", Enum: []any{"out", "in", "both"}},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			id, err := argNodeID(args, "node")
			if err != nil {
				return "", err
			}
			kindFilter := types.EdgeKind(strings.ToLower(argStringDefault(args, "edge_kind", "")))
			direction := graphstore.Direction(argStringDefault(args, "direction", string(graphstore.DirBoth)))

			edges, err := store.Neighbors(id, kindFilter, direction)
			if err != nil {
				return "", err
			}
			return marshalResult(edges)
		},
	}
}
