package parser

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"codegraph/internal/logging"
	"codegraph/internal/types"
)

// grammarSpec tells TreeSitterParser which grammar to load and how to read
// that grammar's function/class/import node types into a types.Node/Edge
// shape. Every supported language shares the walk in extract(); only the
// node-type vocabulary and name-field lookups differ (§4.1 grounding: the
// teacher's ast_treesitter.go walks each grammar's parse tree the same way,
// branching on n.Type() strings).
type grammarSpec struct {
	language      string
	extensions    []string
	sitterLang    func() *sitter.Language
	functionTypes map[string]bool
	classTypes    map[string]bool
	importTypes   map[string]bool
	callTypes     map[string]bool
	nameField     string // field name holding the declared identifier
}

var grammarSpecs = []grammarSpec{
	{
		language:      "python",
		extensions:    []string{".py"},
		sitterLang:    python.GetLanguage,
		functionTypes: map[string]bool{"function_definition": true},
		classTypes:    map[string]bool{"class_definition": true},
		importTypes:   map[string]bool{"import_statement": true, "import_from_statement": true},
		callTypes:     map[string]bool{"call": true},
		nameField:     "name",
	},
	{
		language:      "rust",
		extensions:    []string{".rs"},
		sitterLang:    rust.GetLanguage,
		functionTypes: map[string]bool{"function_item": true},
		classTypes:    map[string]bool{"struct_item": true, "trait_item": true, "enum_item": true},
		importTypes:   map[string]bool{"use_declaration": true},
		callTypes:     map[string]bool{"call_expression": true},
		nameField:     "name",
	},
	{
		language:      "typescript",
		extensions:    []string{".ts", ".tsx"},
		sitterLang:    typescript.GetLanguage,
		functionTypes: map[string]bool{"function_declaration": true, "method_definition": true},
		classTypes:    map[string]bool{"class_declaration": true, "interface_declaration": true},
		importTypes:   map[string]bool{"import_statement": true},
		callTypes:     map[string]bool{"call_expression": true},
		nameField:     "name",
	},
	{
		language:      "javascript",
		extensions:    []string{".js", ".jsx", ".mjs"},
		sitterLang:    javascript.GetLanguage,
		functionTypes: map[string]bool{"function_declaration": true, "method_definition": true},
		classTypes:    map[string]bool{"class_declaration": true},
		importTypes:   map[string]bool{"import_statement": true},
		callTypes:     map[string]bool{"call_expression": true},
		nameField:     "name",
	},
}

// TreeSitterParser handles the grammars in grammarSpecs behind a single
// LanguageParser implementation, one instance per language.
type TreeSitterParser struct {
	spec   grammarSpec
	parser *sitter.Parser
}

func newTreeSitterParsers() []LanguageParser {
	out := make([]LanguageParser, 0, len(grammarSpecs))
	for _, spec := range grammarSpecs {
		p := sitter.NewParser()
		p.SetLanguage(spec.sitterLang())
		out = append(out, &TreeSitterParser{spec: spec, parser: p})
	}
	return out
}

func (p *TreeSitterParser) SupportedExtensions() []string { return p.spec.extensions }
func (p *TreeSitterParser) Language() string              { return p.spec.language }

func (p *TreeSitterParser) Parse(path string, content []byte) (ParseResult, error) {
	tree, err := p.parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return ParseResult{}, types.Wrap(types.KindInvalidArgument, p.spec.language+" parse "+path, err)
	}
	defer tree.Close()

	var result ParseResult
	moduleID := types.NewNodeID(path, types.KindModule, 0, len(content))
	result.Nodes = append(result.Nodes, types.Node{
		ID: moduleID, Kind: types.KindModule, Name: path, Language: p.spec.language,
		Location: types.Location{File: path},
	})

	byName := make(map[string]types.NodeID)
	var currentFunc types.NodeID
	var haveCurrentFunc bool

	getText := func(n *sitter.Node) string { return n.Content(content) }

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		typ := n.Type()
		switch {
		case p.spec.functionTypes[typ]:
			nameNode := n.ChildByFieldName(p.spec.nameField)
			if nameNode != nil {
				name := getText(nameNode)
				id := types.NewNodeID(path, types.KindFunction, int(n.StartByte()), int(n.EndByte()))
				result.Nodes = append(result.Nodes, types.Node{
					ID: id, Kind: types.KindFunction, Name: name, Language: p.spec.language, Parent: &moduleID,
					Location: types.Location{
						File: path, StartByte: int(n.StartByte()), EndByte: int(n.EndByte()),
						StartLine: int(n.StartPoint().Row) + 1, EndLine: int(n.EndPoint().Row) + 1,
					},
				})
				result.Edges = append(result.Edges, types.Edge{Source: moduleID, Target: id, Kind: types.EdgeContains, Confidence: 1.0})
				byName[name] = id
				prevFunc, prevHave := currentFunc, haveCurrentFunc
				currentFunc, haveCurrentFunc = id, true
				for i := 0; i < int(n.NamedChildCount()); i++ {
					walk(n.NamedChild(i))
				}
				currentFunc, haveCurrentFunc = prevFunc, prevHave
				return
			}

		case p.spec.classTypes[typ]:
			nameNode := n.ChildByFieldName(p.spec.nameField)
			if nameNode != nil {
				name := getText(nameNode)
				id := types.NewNodeID(path, types.KindClass, int(n.StartByte()), int(n.EndByte()))
				result.Nodes = append(result.Nodes, types.Node{
					ID: id, Kind: types.KindClass, Name: name, Language: p.spec.language, Parent: &moduleID,
					Location: types.Location{
						File: path, StartByte: int(n.StartByte()), EndByte: int(n.EndByte()),
						StartLine: int(n.StartPoint().Row) + 1, EndLine: int(n.EndPoint().Row) + 1,
					},
				})
				result.Edges = append(result.Edges, types.Edge{Source: moduleID, Target: id, Kind: types.EdgeContains, Confidence: 1.0})
				byName[name] = id
			}

		case p.spec.importTypes[typ]:
			text := strings.TrimSpace(getText(n))
			id := types.NewNodeID(path, types.KindImport, int(n.StartByte()), int(n.EndByte()))
			result.Nodes = append(result.Nodes, types.Node{
				ID: id, Kind: types.KindImport, Name: text, Language: p.spec.language, Parent: &moduleID,
				Location: types.Location{
					File: path, StartByte: int(n.StartByte()), EndByte: int(n.EndByte()),
					StartLine: int(n.StartPoint().Row) + 1, EndLine: int(n.EndPoint().Row) + 1,
				},
			})
			result.Edges = append(result.Edges, types.Edge{Source: moduleID, Target: id, Kind: types.EdgeImports, Confidence: 1.0})
			return

		case p.spec.callTypes[typ] && haveCurrentFunc:
			calleeNode := n.ChildByFieldName("function")
			if calleeNode == nil {
				calleeNode = n.Child(0)
			}
			if calleeNode != nil {
				callee := lastIdentSegment(getText(calleeNode))
				if callee != "" {
					if targetID, ok := byName[callee]; ok {
						result.Edges = append(result.Edges, types.Edge{Source: currentFunc, Target: targetID, Kind: types.EdgeCalls, Confidence: 1.0})
					} else {
						result.Pending = append(result.Pending, PendingEdge{From: currentFunc, Kind: types.EdgeCalls, TargetName: callee, Language: p.spec.language})
					}
				}
			}
		}

		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(tree.RootNode())

	logging.ParserDebug("%s: parsed %s - %d nodes, %d edges, %d pending", p.spec.language, path, len(result.Nodes), len(result.Edges), len(result.Pending))
	return result, nil
}

// lastIdentSegment reduces "pkg.Sub.Method"- or "Type::method"-shaped callee
// text to its final identifier, matching the simplified callee resolution lang_go.go
// applies to selector expressions.
func lastIdentSegment(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.LastIndexAny(text, ".:"); i >= 0 {
		return text[i+1:]
	}
	return text
}
