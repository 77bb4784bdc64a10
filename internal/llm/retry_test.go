package llm

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeProvider struct {
	failures int
	calls    int
}

func (f *fakeProvider) Chat(_ context.Context, _ []Message, _ ChatOptions) (ChatResult, error) {
	f.calls++
	if f.calls <= f.failures {
		return ChatResult{}, errors.New("transient")
	}
	return ChatResult{Text: "ok", TokensUsed: 10}, nil
}

func (f *fakeProvider) Name() string { return "fake" }

func TestRetryingChatProviderSucceedsAfterTransientFailures(t *testing.T) {
	fp := &fakeProvider{failures: 2}
	p := NewRetryingChatProvider(fp, 2, time.Millisecond, 5*time.Millisecond)

	result, err := p.Chat(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, ChatOptions{})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if result.Text != "ok" {
		t.Fatalf("expected ok, got %q", result.Text)
	}
	if fp.calls != 3 {
		t.Fatalf("expected 3 calls, got %d", fp.calls)
	}
}

func TestRetryingChatProviderExhaustsRetries(t *testing.T) {
	fp := &fakeProvider{failures: 10}
	p := NewRetryingChatProvider(fp, 2, time.Millisecond, 5*time.Millisecond)

	_, err := p.Chat(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, ChatOptions{})
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if fp.calls != 3 {
		t.Fatalf("expected 3 calls (1 + 2 retries), got %d", fp.calls)
	}
}

func TestRetryingChatProviderRespectsCancellation(t *testing.T) {
	fp := &fakeProvider{failures: 10}
	p := NewRetryingChatProvider(fp, 5, 50*time.Millisecond, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Chat(ctx, []Message{{Role: RoleUser, Content: "hi"}}, ChatOptions{})
	if err == nil {
		t.Fatal("expected cancellation to surface as an error")
	}
}
