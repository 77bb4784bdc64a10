package logging

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInitializeDisabledIsNoop(t *testing.T) {
	dir := t.TempDir()
	if err := Initialize(dir, false); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if IsDebugMode() {
		t.Fatal("expected debug mode disabled")
	}
	// Logging with debug disabled must not create the logs directory.
	Get(CategoryParser).Info("should be a no-op")
	if _, err := os.Stat(filepath.Join(dir, "logs")); !os.IsNotExist(err) {
		t.Fatalf("expected no logs directory, stat err=%v", err)
	}
}

func TestInitializeEnabledWritesFile(t *testing.T) {
	dir := t.TempDir()
	if err := Initialize(dir, true); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer func() {
		mu.Lock()
		loggers = make(map[Category]*Logger)
		debugMode = false
		mu.Unlock()
	}()

	Get(CategoryGraphStore).Info("hello %s", "world")

	entries, err := os.ReadDir(filepath.Join(dir, "logs"))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("expected at least one log file to be created")
	}
}

func TestCloseAllClosesOpenFilesAndResetsState(t *testing.T) {
	dir := t.TempDir()
	if err := Initialize(dir, true); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	Get(CategoryCache).Info("before close")

	CloseAll()

	mu.RLock()
	n := len(loggers)
	mu.RUnlock()
	if n != 0 {
		t.Fatalf("expected CloseAll to clear the logger registry, got %d entries", n)
	}
	if IsDebugMode() {
		t.Fatal("expected debug mode cleared after CloseAll")
	}
}

func TestTimerStop(t *testing.T) {
	timer := StartTimer(CategoryAnalysis, "test-op")
	d := timer.Stop()
	if d < 0 {
		t.Fatalf("expected non-negative duration, got %v", d)
	}
}
