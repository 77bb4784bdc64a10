package parser

import (
	"context"
	"path/filepath"
	"testing"

	"codegraph/internal/graphstore"
)

func openPipelineStore(t *testing.T) *graphstore.Store {
	t.Helper()
	s, err := graphstore.Open(filepath.Join(t.TempDir(), "graph.db"))
	if err != nil {
		t.Fatalf("graphstore.Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPipelineRunResolvesCrossFileCall(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "caller.go", `package demo

func UseHelper() {
	Helper()
}
`)
	writeFile(t, root, "helper.go", `package demo

func Helper() {}
`)

	store := openPipelineStore(t)
	opts := DefaultScanOptions()
	opts.MaxConcurrency = 2
	pipeline := NewPipeline(store, nil, opts)

	stats, err := pipeline.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.FilesParsed != 2 {
		t.Fatalf("expected 2 files parsed, got %d", stats.FilesParsed)
	}
	if stats.EdgesResolved != 1 {
		t.Fatalf("expected 1 cross-file edge resolved, got %d (dropped=%d)", stats.EdgesResolved, stats.EdgesDropped)
	}
}

func TestPipelineRunDropsUnresolvableCall(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "lonely.go", `package demo

func CallsNothingReal() {
	TotallyUndefinedSymbol()
}
`)

	store := openPipelineStore(t)
	pipeline := NewPipeline(store, nil, DefaultScanOptions())

	stats, err := pipeline.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.EdgesResolved != 0 {
		t.Fatalf("expected no edges resolved, got %d", stats.EdgesResolved)
	}
	if stats.EdgesDropped != 1 {
		t.Fatalf("expected 1 dropped pending edge, got %d", stats.EdgesDropped)
	}
}

func TestPipelineRunSkipsOversizedFiles(t *testing.T) {
	root := t.TempDir()
	big := make([]byte, 128)
	for i := range big {
		big[i] = 'x'
	}
	writeFile(t, root, "big.go", "package demo\n\n// "+string(big)+"\nfunc F() {}\n")

	store := openPipelineStore(t)
	opts := DefaultScanOptions()
	opts.MaxFileBytes = 32
	pipeline := NewPipeline(store, nil, opts)

	stats, err := pipeline.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.FilesSkipped != 1 {
		t.Fatalf("expected the oversized file to be skipped, got skipped=%d parsed=%d", stats.FilesSkipped, stats.FilesParsed)
	}
}

func TestPipelineRunHonorsFileCacheOnSecondPass(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "once.go", "package demo\n\nfunc F() {}\n")

	stateDir := t.TempDir()
	store := openPipelineStore(t)
	cache := NewFileCache(stateDir)
	pipeline := NewPipeline(store, cache, DefaultScanOptions())

	first, err := pipeline.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if first.FilesParsed != 1 {
		t.Fatalf("expected 1 file parsed on first pass, got %d", first.FilesParsed)
	}

	second, err := pipeline.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if second.FilesSkipped != 1 || second.FilesParsed != 0 {
		t.Fatalf("expected the unchanged file to be skipped on the second pass, got %+v", second)
	}
}
