package tools

import (
	"strings"

	"codegraph/internal/types"
)

// Argument parsing helpers. Tool arguments arrive as map[string]any decoded
// from JSON (MCP request bodies or the agentic orchestrator's structured
// tool-call output), so numbers surface as float64 regardless of the
// schema's declared type.

func argString(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", types.Newf(types.KindInvalidArgument, "missing argument %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", types.Newf(types.KindInvalidArgument, "argument %q must be a string, got %T", key, v)
	}
	return s, nil
}

func argStringDefault(args map[string]any, key, def string) string {
	if v, ok := args[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

func argInt(args map[string]any, key string) (int, error) {
	v, ok := args[key]
	if !ok {
		return 0, types.Newf(types.KindInvalidArgument, "missing argument %q", key)
	}
	return coerceInt(key, v)
}

func argIntDefault(args map[string]any, key string, def int) int {
	v, ok := args[key]
	if !ok {
		return def
	}
	n, err := coerceInt(key, v)
	if err != nil {
		return def
	}
	return n
}

func coerceInt(key string, v any) (int, error) {
	switch n := v.(type) {
	case float64:
		return int(n), nil
	case int:
		return n, nil
	case int64:
		return int(n), nil
	default:
		return 0, types.Newf(types.KindInvalidArgument, "argument %q must be a number, got %T", key, v)
	}
}

func argBoolDefault(args map[string]any, key string, def bool) bool {
	if v, ok := args[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

func argNodeID(args map[string]any, key string) (types.NodeID, error) {
	s, err := argString(args, key)
	if err != nil {
		return types.NodeID{}, err
	}
	id, err := types.ParseNodeID(s)
	if err != nil {
		return types.NodeID{}, types.Newf(types.KindInvalidArgument, "argument %q is not a valid node id: %v", key, err)
	}
	return id, nil
}

func argEdgeKind(args map[string]any, key string) (types.EdgeKind, error) {
	s, err := argString(args, key)
	if err != nil {
		return "", err
	}
	return types.EdgeKind(strings.ToLower(s)), nil
}

func minPtr(v float64) *float64 { return &v }
func maxPtr(v float64) *float64 { return &v }
