// Package parser implements the parsing pipeline (§4.1): bucketing source
// files by language, running a worker pool of per-language extractors that
// each emit a normalized []types.Node/[]types.Edge shape, and a resolution
// pass that turns pending cross-file references (a call naming a symbol
// this file never defines) into edges once every file has been walked.
//
// Grounded on the teacher's internal/world package: LanguageParser mirrors
// world.CodeParser's Parse/SupportedExtensions/Language contract, stripped
// of the Mangle fact emission (EmitLanguageFacts) that made every teacher
// parser language-specific at the storage layer too.
package parser

import "codegraph/internal/types"

// LanguageParser extracts a normalized entity graph from one source file.
// Implementations are per-language (lang_go.go for Go via go/ast,
// lang_treesitter.go for Python/Rust/TypeScript/JavaScript via tree-sitter
// grammars) but all emit the same types.Node/types.Edge shape.
type LanguageParser interface {
	// Parse extracts nodes, resolved edges, and pending edges from content.
	// path is repository-relative; it seeds NodeID derivation (§3.1) and
	// Node.Location.File.
	Parse(path string, content []byte) (ParseResult, error)

	// SupportedExtensions lists the file extensions (with leading dot) this
	// parser claims. The pipeline buckets files by extension before
	// dispatch.
	SupportedExtensions() []string

	// Language is the identifier stamped onto every Node this parser emits.
	Language() string
}

// ParseResult is one file's contribution to the graph.
type ParseResult struct {
	Nodes   []types.Node
	Edges   []types.Edge
	Pending []PendingEdge
	Errors  []ParseError
}

// PendingEdge names a reference this file could not resolve to a NodeID by
// itself — most commonly a call to a symbol defined in another file. The
// pipeline's resolution pass (pipeline.go) matches TargetName against every
// node's (Language, Name) collected across the whole run and emits a
// lower-confidence Edge (§3 Invariants: similarity-resolved edges carry
// Confidence < 1.0) for anything it can match, dropping the rest.
type PendingEdge struct {
	From       types.NodeID
	Kind       types.EdgeKind
	TargetName string
	Language   string
}

// ParseError is a non-fatal issue surfaced alongside a partial ParseResult;
// the pipeline logs it and keeps whatever the extractor did manage to emit
// rather than failing the whole file.
type ParseError struct {
	Line    int
	Column  int
	Message string
}
