package parser

import (
	"testing"

	"codegraph/internal/types"
)

func pythonParser(t *testing.T) LanguageParser {
	t.Helper()
	for _, p := range newTreeSitterParsers() {
		if p.Language() == "python" {
			return p
		}
	}
	t.Fatal("expected a python parser among newTreeSitterParsers")
	return nil
}

const pythonSample = `import os

def helper():
    return 1

class Widget:
    def run(self):
        helper()
`

func TestTreeSitterParserExtractsPythonDefs(t *testing.T) {
	p := pythonParser(t)
	result, err := p.Parse("widget.py", []byte(pythonSample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	var sawFunc, sawClass, sawImport bool
	for _, n := range result.Nodes {
		switch n.Kind {
		case types.KindFunction:
			if n.Name == "helper" {
				sawFunc = true
			}
		case types.KindClass:
			if n.Name == "Widget" {
				sawClass = true
			}
		case types.KindImport:
			sawImport = true
		}
	}
	if !sawFunc {
		t.Fatal("expected a function node for helper")
	}
	if !sawClass {
		t.Fatal("expected a class node for Widget")
	}
	if !sawImport {
		t.Fatal("expected an import node for os")
	}
}

func TestTreeSitterParserResolvesCallWithinFile(t *testing.T) {
	p := pythonParser(t)
	result, err := p.Parse("widget.py", []byte(pythonSample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	var sawCall bool
	for _, e := range result.Edges {
		if e.Kind == types.EdgeCalls {
			sawCall = true
		}
	}
	if !sawCall {
		t.Fatal("expected run() calling helper() to resolve as a same-file edge")
	}
}

func TestLastIdentSegment(t *testing.T) {
	cases := map[string]string{
		"helper":          "helper",
		"self.helper":     "helper",
		"pkg.Sub.Method":  "Method",
		"  spaced.call  ": "call",
	}
	for input, want := range cases {
		if got := lastIdentSegment(input); got != want {
			t.Fatalf("lastIdentSegment(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestTreeSitterParserSupportedExtensions(t *testing.T) {
	p := pythonParser(t)
	exts := p.SupportedExtensions()
	if len(exts) != 1 || exts[0] != ".py" {
		t.Fatalf("expected [.py], got %v", exts)
	}
}
