package parser

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileCacheUnchangedRoundTrip(t *testing.T) {
	stateDir := t.TempDir()
	srcDir := t.TempDir()
	full := filepath.Join(srcDir, "a.go")
	if err := os.WriteFile(full, []byte("package a"), 0o644); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(full)
	if err != nil {
		t.Fatal(err)
	}

	cache := NewFileCache(stateDir)
	if cache.Unchanged("a.go", info) {
		t.Fatal("expected a never-seen file to report changed")
	}

	cache.Touch("a.go", info)
	if !cache.Unchanged("a.go", info) {
		t.Fatal("expected a just-touched file to report unchanged")
	}
}

func TestFileCacheDetectsModification(t *testing.T) {
	stateDir := t.TempDir()
	srcDir := t.TempDir()
	full := filepath.Join(srcDir, "a.go")
	if err := os.WriteFile(full, []byte("package a"), 0o644); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(full)
	if err != nil {
		t.Fatal(err)
	}

	cache := NewFileCache(stateDir)
	cache.Touch("a.go", info)

	if err := os.WriteFile(full, []byte("package a\n\nfunc More() {}"), 0o644); err != nil {
		t.Fatal(err)
	}
	newInfo, err := os.Stat(full)
	if err != nil {
		t.Fatal(err)
	}
	if cache.Unchanged("a.go", newInfo) {
		t.Fatal("expected size change to be detected")
	}
}

func TestFileCachePersistsAcrossLoad(t *testing.T) {
	stateDir := t.TempDir()
	entry := fileCacheEntry{ModTime: time.Now().Unix(), Size: 42}

	first := NewFileCache(stateDir)
	first.mu.Lock()
	first.entries["a.go"] = entry
	first.dirty = true
	first.mu.Unlock()
	if err := first.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	second := NewFileCache(stateDir)
	second.mu.RLock()
	got, ok := second.entries["a.go"]
	second.mu.RUnlock()
	if !ok {
		t.Fatal("expected manifest entry to survive a reload")
	}
	if got != entry {
		t.Fatalf("expected %+v, got %+v", entry, got)
	}
}

func TestFileCacheSaveNoopWhenClean(t *testing.T) {
	stateDir := t.TempDir()
	cache := NewFileCache(stateDir)
	if err := cache.Save(); err != nil {
		t.Fatalf("Save on a clean cache should not error: %v", err)
	}
	manifestPath := filepath.Join(stateDir, "cache", "parse_manifest.json")
	if _, err := os.Stat(manifestPath); !os.IsNotExist(err) {
		t.Fatal("expected no manifest file to be written when nothing changed")
	}
}
