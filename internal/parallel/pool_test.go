package parallel

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func TestRunAllItemsProcessed(t *testing.T) {
	pool := NewPool(4)
	items := []int{1, 2, 3, 4, 5, 6, 7, 8}
	var sum int64
	err := Run(context.Background(), pool, items, func(_ context.Context, n int) error {
		atomic.AddInt64(&sum, int64(n))
		return nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum != 36 {
		t.Fatalf("expected sum 36, got %d", sum)
	}
}

func TestRunPropagatesFirstError(t *testing.T) {
	pool := NewPool(2)
	items := []int{1, 2, 3}
	boom := errors.New("boom")
	err := Run(context.Background(), pool, items, func(_ context.Context, n int) error {
		if n == 2 {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom error, got %v", err)
	}
}

func TestRunCollectKeepsPartialResultsOnError(t *testing.T) {
	pool := NewPool(4)
	items := []string{"a", "bad", "c"}
	results := RunCollect(context.Background(), pool, items, func(_ context.Context, s string) (string, error) {
		if s == "bad" {
			return "", errors.New("parse error")
		}
		return s + "!", nil
	})
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Err != nil || results[0].Value != "a!" {
		t.Fatalf("unexpected result[0]: %+v", results[0])
	}
	if results[1].Err == nil {
		t.Fatalf("expected result[1] to carry an error")
	}
	if results[2].Err != nil || results[2].Value != "c!" {
		t.Fatalf("unexpected result[2]: %+v", results[2])
	}
}
