package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.VectorDimension != Default().VectorDimension {
		t.Fatalf("expected default vector dimension, got %d", cfg.VectorDimension)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"vector_dimension": 1536}`), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.VectorDimension != 1536 {
		t.Fatalf("expected 1536, got %d", cfg.VectorDimension)
	}
}

func TestEnvOverridesTakePrecedence(t *testing.T) {
	t.Setenv("CODEGRAPH_VECTOR_DIMENSION", "256")
	t.Setenv("CODEGRAPH_AGENT_ARCHITECTURE", "lats")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.VectorDimension != 256 {
		t.Fatalf("expected env override 256, got %d", cfg.VectorDimension)
	}
	if cfg.AgentArchitecture != "lats" {
		t.Fatalf("expected lats, got %s", cfg.AgentArchitecture)
	}
}

func TestInvalidAgentArchitectureRejected(t *testing.T) {
	cfg := Default()
	cfg.AgentArchitecture = "tree-of-thought"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for unknown agent architecture")
	}
}

func TestTierOf(t *testing.T) {
	cases := map[int]Tier{
		1000:    TierSmall,
		32000:   TierMedium,
		128000:  TierLarge,
		200000:  TierLarge,
		400000:  TierMassive,
	}
	for tokens, want := range cases {
		if got := TierOf(tokens); got != want {
			t.Errorf("TierOf(%d) = %s, want %s", tokens, got, want)
		}
	}
}
