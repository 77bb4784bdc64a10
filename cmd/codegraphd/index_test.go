package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"codegraph/internal/logging"
)

func withStateDir(t *testing.T) {
	t.Helper()
	logging.Initialize(t.TempDir(), false)
	t.Cleanup(logging.CloseAll)

	prevConfig, prevState := configPath, stateDir
	configPath = ""
	stateDir = t.TempDir()
	t.Cleanup(func() { configPath, stateDir = prevConfig, prevState })
}

func TestBuildDependenciesAssemblesOffline(t *testing.T) {
	withStateDir(t)

	d, err := buildDependencies(context.Background())
	if err != nil {
		t.Fatalf("buildDependencies: %v", err)
	}
	defer d.Close()

	if d.registry.Get("get_node") == nil {
		t.Fatal("expected get_node to be registered")
	}
	if d.agent == nil {
		t.Fatal("expected an assembled agent")
	}
}

func TestRunIndexPopulatesGraphStore(t *testing.T) {
	withStateDir(t)

	workspace := t.TempDir()
	if err := os.WriteFile(filepath.Join(workspace, "main.go"), []byte("package demo\n\nfunc F() {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cmd := &cobra.Command{}
	if err := runIndex(cmd, []string{workspace}); err != nil {
		t.Fatalf("runIndex: %v", err)
	}

	graphDB := filepath.Join(stateDir, "graph", "graph.db")
	if _, err := os.Stat(graphDB); err != nil {
		t.Fatalf("expected graph.db to be created: %v", err)
	}
}
