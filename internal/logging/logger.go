// Package logging provides categorized file-based logging for CodeGraph.
// Logs are written to <state-dir>/logs/ with one file per category. Logging
// is controlled by the debug flag passed to Initialize (codegraphd passes its
// --verbose flag) — when false, no logs are written and all calls are cheap
// no-ops.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category identifies the subsystem a log line belongs to.
type Category string

const (
	CategoryBoot        Category = "boot"
	CategoryParser      Category = "parser"
	CategoryGraphStore  Category = "graphstore"
	CategoryVectorStore Category = "vectorstore"
	CategoryCache       Category = "cache"
	CategoryAnalysis    Category = "analysis"
	CategoryAgent       Category = "agent"
	CategoryTools       Category = "tools"
	CategoryMCP         Category = "mcp"
	CategoryLLM         Category = "llm"
)

var (
	mu          sync.RWMutex
	loggers     = make(map[Category]*Logger)
	logsDir     string
	debugMode   bool
	initialized bool
)

// Initialize sets up the logging directory under stateDir/logs and enables
// file output when debug is true. Safe to call once at process startup.
func Initialize(stateDir string, debug bool) error {
	mu.Lock()
	defer mu.Unlock()

	debugMode = debug
	initialized = true
	if !debug {
		return nil
	}
	logsDir = filepath.Join(stateDir, "logs")
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return fmt.Errorf("create logs directory: %w", err)
	}
	return nil
}

// IsDebugMode reports whether file logging is currently enabled.
func IsDebugMode() bool {
	mu.RLock()
	defer mu.RUnlock()
	return debugMode
}

// CloseAll flushes and closes every category's open log file and resets
// initialization state, so a later Initialize in the same process (as in
// tests that call it once per test case) starts from a clean slate.
func CloseAll() {
	mu.Lock()
	defer mu.Unlock()
	for category, l := range loggers {
		if l.sugar != nil {
			_ = l.sugar.Sync()
		}
		if l.file != nil {
			_ = l.file.Close()
		}
		delete(loggers, category)
	}
	initialized = false
	debugMode = false
}

// Logger wraps a zap.SugaredLogger scoped to one Category. The zero value
// (no backing core) is a safe no-op, matching the pre-Initialize state.
type Logger struct {
	category Category
	sugar    *zap.SugaredLogger
	file     *os.File
}

// Get returns (or lazily creates) the logger for category. Returns a no-op
// logger when debug mode is disabled.
func Get(category Category) *Logger {
	mu.RLock()
	if !debugMode {
		mu.RUnlock()
		return &Logger{category: category}
	}
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}

	date := time.Now().Format("2006-01-02")
	logPath := filepath.Join(logsDir, fmt.Sprintf("%s_%s.log", date, category))
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] warning: could not open log file %s: %v\n", logPath, err)
		return &Logger{category: category}
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(file), zapcore.DebugLevel)
	base := zap.New(core).With(zap.String("category", string(category)))

	l := &Logger{category: category, sugar: base.Sugar(), file: file}
	loggers[category] = l
	return l
}

func (l *Logger) Debug(format string, args ...interface{}) {
	if l.sugar == nil {
		return
	}
	l.sugar.Debugf(format, args...)
}

func (l *Logger) Info(format string, args ...interface{}) {
	if l.sugar == nil {
		return
	}
	l.sugar.Infof(format, args...)
}

func (l *Logger) Warn(format string, args ...interface{}) {
	if l.sugar == nil {
		return
	}
	l.sugar.Warnf(format, args...)
}

func (l *Logger) Error(format string, args ...interface{}) {
	if l.sugar == nil {
		return
	}
	l.sugar.Errorf(format, args...)
}

// Timer measures the wall-clock duration of an operation and logs it at
// Stop, grounded on the teacher's StartTimer/Stop slow-operation idiom.
type Timer struct {
	logger    *Logger
	operation string
	start     time.Time
}

// StartTimer begins timing operation under category.
func StartTimer(category Category, operation string) *Timer {
	return &Timer{logger: Get(category), operation: operation, start: time.Now()}
}

// Stop logs the elapsed duration at Debug level and returns it.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	t.logger.Debug("%s completed in %s", t.operation, elapsed)
	return elapsed
}

// StopWithThreshold logs at Warn level instead of Debug when elapsed exceeds
// threshold, used to flag slow graph traversals and parser batches.
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if elapsed > threshold {
		t.logger.Warn("%s took %s (threshold %s)", t.operation, elapsed, threshold)
	} else {
		t.logger.Debug("%s completed in %s", t.operation, elapsed)
	}
	return elapsed
}
