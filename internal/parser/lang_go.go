package parser

import (
	"fmt"
	"go/ast"
	gotoken "go/parser"
	"go/token"
	"strings"

	"codegraph/internal/logging"
	"codegraph/internal/types"
)

// GoParser extracts Nodes/Edges from Go source via go/ast (§4.1 grounding:
// the teacher's Cartographer.mapGoFile, re-targeted from Mangle facts
// -symbol_graph/code_defines/code_calls/dependency_link- to types.Node and
// types.Edge).
type GoParser struct{}

func NewGoParser() *GoParser { return &GoParser{} }

func (p *GoParser) SupportedExtensions() []string { return []string{".go"} }
func (p *GoParser) Language() string              { return "go" }

func (p *GoParser) Parse(path string, content []byte) (ParseResult, error) {
	fset := token.NewFileSet()
	file, err := gotoken.ParseFile(fset, path, content, gotoken.ParseComments)
	if err != nil {
		return ParseResult{}, types.Wrap(types.KindInvalidArgument, "go parse "+path, err)
	}

	var result ParseResult
	pkgName := file.Name.Name

	moduleID := types.NewNodeID(path, types.KindModule, 0, len(content))
	result.Nodes = append(result.Nodes, types.Node{
		ID:       moduleID,
		Kind:     types.KindModule,
		Name:     pkgName,
		Language: "go",
		Location: types.Location{File: path},
	})

	for _, imp := range file.Imports {
		importPath := strings.Trim(imp.Path.Value, `"`)
		start, end := fset.Position(imp.Pos()).Offset, fset.Position(imp.End()).Offset
		id := types.NewNodeID(path, types.KindImport, start, end)
		result.Nodes = append(result.Nodes, types.Node{
			ID:       id,
			Kind:     types.KindImport,
			Name:     importPath,
			Language: "go",
			Parent:   &moduleID,
			Location: types.Location{
				File:      path,
				StartByte: start,
				EndByte:   end,
				StartLine: fset.Position(imp.Pos()).Line,
				EndLine:   fset.Position(imp.End()).Line,
			},
		})
		result.Edges = append(result.Edges, types.Edge{Source: moduleID, Target: id, Kind: types.EdgeImports, Confidence: 1.0})
	}

	byName := make(map[string]types.NodeID)
	var currentFunc types.NodeID
	var haveCurrentFunc bool

	ast.Inspect(file, func(n ast.Node) bool {
		switch x := n.(type) {
		case *ast.FuncDecl:
			name := x.Name.Name
			recv := receiverType(x)
			kind := types.KindFunction
			qualified := fmt.Sprintf("%s.%s", pkgName, name)
			if recv != "" {
				kind = types.KindMethod
				qualified = fmt.Sprintf("%s.%s.%s", pkgName, recv, name)
			}

			start, end := fset.Position(x.Pos()).Offset, fset.Position(x.End()).Offset
			id := types.NewNodeID(path, kind, start, end)
			meta := map[string]string{"visibility": visibility(name)}
			if recv != "" {
				meta["receiver"] = recv
			}
			result.Nodes = append(result.Nodes, types.Node{
				ID:       id,
				Kind:     kind,
				Name:     qualified,
				Language: "go",
				Parent:   &moduleID,
				Metadata: meta,
				Location: types.Location{
					File: path, StartByte: start, EndByte: end,
					StartLine: fset.Position(x.Pos()).Line, EndLine: fset.Position(x.End()).Line,
				},
			})
			result.Edges = append(result.Edges, types.Edge{Source: moduleID, Target: id, Kind: types.EdgeContains, Confidence: 1.0})
			byName[qualified] = id
			currentFunc, haveCurrentFunc = id, true

		case *ast.TypeSpec:
			name := x.Name.Name
			qualified := fmt.Sprintf("%s.%s", pkgName, name)
			kind := types.KindOther
			switch x.Type.(type) {
			case *ast.StructType:
				kind = types.KindStruct
			case *ast.InterfaceType:
				kind = types.KindClass
			}
			start, end := fset.Position(x.Pos()).Offset, fset.Position(x.End()).Offset
			id := types.NewNodeID(path, kind, start, end)
			result.Nodes = append(result.Nodes, types.Node{
				ID:       id,
				Kind:     kind,
				Name:     qualified,
				Language: "go",
				Parent:   &moduleID,
				Metadata: map[string]string{"visibility": visibility(name)},
				Location: types.Location{
					File: path, StartByte: start, EndByte: end,
					StartLine: fset.Position(x.Pos()).Line, EndLine: fset.Position(x.End()).Line,
				},
			})
			result.Edges = append(result.Edges, types.Edge{Source: moduleID, Target: id, Kind: types.EdgeContains, Confidence: 1.0})
			byName[qualified] = id

		case *ast.CallExpr:
			if !haveCurrentFunc {
				return true
			}
			callee := calleeName(x)
			if callee == "" {
				return true
			}
			qualifiedCallee := fmt.Sprintf("%s.%s", pkgName, callee)
			if targetID, ok := byName[qualifiedCallee]; ok {
				result.Edges = append(result.Edges, types.Edge{Source: currentFunc, Target: targetID, Kind: types.EdgeCalls, Confidence: 1.0})
			} else {
				result.Pending = append(result.Pending, PendingEdge{From: currentFunc, Kind: types.EdgeCalls, TargetName: qualifiedCallee, Language: "go"})
			}
		}
		return true
	})

	logging.ParserDebug("go: parsed %s - %d nodes, %d edges, %d pending", path, len(result.Nodes), len(result.Edges), len(result.Pending))
	return result, nil
}

func receiverType(fn *ast.FuncDecl) string {
	if fn.Recv == nil || len(fn.Recv.List) == 0 {
		return ""
	}
	switch t := fn.Recv.List[0].Type.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		if id, ok := t.X.(*ast.Ident); ok {
			return id.Name
		}
	}
	return ""
}

func visibility(name string) string {
	if ast.IsExported(name) {
		return "public"
	}
	return "private"
}

func calleeName(call *ast.CallExpr) string {
	switch fn := call.Fun.(type) {
	case *ast.Ident:
		return fn.Name
	case *ast.SelectorExpr:
		if _, ok := fn.X.(*ast.Ident); ok {
			return fn.Sel.Name
		}
	}
	return ""
}
