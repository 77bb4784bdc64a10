package parser

import (
	"testing"

	"codegraph/internal/types"
)

const goSample = `package widgets

import "fmt"

func Helper() {
	fmt.Println("hi")
}

type Gadget struct{}

func (g *Gadget) Run() {
	Helper()
}
`

func TestGoParserExtractsModuleAndImport(t *testing.T) {
	p := NewGoParser()
	result, err := p.Parse("widgets.go", []byte(goSample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	var sawModule, sawImport bool
	for _, n := range result.Nodes {
		switch n.Kind {
		case types.KindModule:
			sawModule = true
			if n.Name != "widgets" {
				t.Fatalf("expected module name widgets, got %q", n.Name)
			}
		case types.KindImport:
			sawImport = true
			if n.Name != "fmt" {
				t.Fatalf("expected import fmt, got %q", n.Name)
			}
		}
	}
	if !sawModule {
		t.Fatal("expected a module node")
	}
	if !sawImport {
		t.Fatal("expected an import node")
	}
}

func TestGoParserQualifiesMethodsByReceiver(t *testing.T) {
	p := NewGoParser()
	result, err := p.Parse("widgets.go", []byte(goSample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	var found bool
	for _, n := range result.Nodes {
		if n.Kind == types.KindMethod {
			found = true
			if n.Name != "widgets.Gadget.Run" {
				t.Fatalf("expected qualified method name, got %q", n.Name)
			}
			if n.Metadata["receiver"] != "Gadget" {
				t.Fatalf("expected receiver metadata Gadget, got %q", n.Metadata["receiver"])
			}
		}
	}
	if !found {
		t.Fatal("expected a method node for Gadget.Run")
	}
}

func TestGoParserResolvesSameFileCall(t *testing.T) {
	p := NewGoParser()
	result, err := p.Parse("widgets.go", []byte(goSample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	var sawCallEdge bool
	for _, e := range result.Edges {
		if e.Kind == types.EdgeCalls {
			sawCallEdge = true
			if e.Confidence != 1.0 {
				t.Fatalf("expected direct call edge confidence 1.0, got %f", e.Confidence)
			}
		}
	}
	if !sawCallEdge {
		t.Fatal("expected Run's call to Helper to resolve within the same file")
	}
	if len(result.Pending) != 1 || result.Pending[0].TargetName != "widgets.Println" {
		t.Fatalf("expected only the fmt.Println call to stay pending, got %+v", result.Pending)
	}
}

func TestGoParserEmitsPendingForUnresolvedCall(t *testing.T) {
	p := NewGoParser()
	src := `package widgets

func UseFarAway() {
	DefinedElsewhere()
}
`
	result, err := p.Parse("widgets.go", []byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(result.Pending) != 1 {
		t.Fatalf("expected 1 pending edge, got %d", len(result.Pending))
	}
	if result.Pending[0].TargetName != "widgets.DefinedElsewhere" {
		t.Fatalf("unexpected pending target: %q", result.Pending[0].TargetName)
	}
	if result.Pending[0].Language != "go" {
		t.Fatalf("expected pending language go, got %q", result.Pending[0].Language)
	}
}

func TestGoParserRejectsInvalidSyntax(t *testing.T) {
	p := NewGoParser()
	_, err := p.Parse("broken.go", []byte("package widgets\nfunc ( {"))
	if err == nil {
		t.Fatal("expected a parse error for invalid Go syntax")
	}
	if !types.Is(err, types.KindInvalidArgument) {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}

func TestGoParserSupportedExtensions(t *testing.T) {
	p := NewGoParser()
	exts := p.SupportedExtensions()
	if len(exts) != 1 || exts[0] != ".go" {
		t.Fatalf("expected [.go], got %v", exts)
	}
	if p.Language() != "go" {
		t.Fatalf("expected language go, got %q", p.Language())
	}
}
