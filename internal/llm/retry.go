package llm

import (
	"context"
	"time"

	"codegraph/internal/logging"
)

// RetryingChatProvider wraps a ChatProvider with the exponential backoff
// retry loop §4.6 mandates (up to MaxLLMRetries additional attempts),
// grounded on the teacher's internal/perception client retry loop
// ("Exponential backoff: 1s, 2s, 4s").
type RetryingChatProvider struct {
	inner      ChatProvider
	maxRetries int
	base       time.Duration
	max        time.Duration
}

// NewRetryingChatProvider wraps inner with retry policy (base, max, maxRetries).
func NewRetryingChatProvider(inner ChatProvider, maxRetries int, base, max time.Duration) *RetryingChatProvider {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &RetryingChatProvider{inner: inner, maxRetries: maxRetries, base: base, max: max}
}

func (p *RetryingChatProvider) Chat(ctx context.Context, messages []Message, opts ChatOptions) (ChatResult, error) {
	var lastErr error
	backoff := p.base

	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ChatResult{}, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > p.max {
				backoff = p.max
			}
		}

		result, err := p.inner.Chat(ctx, messages, opts)
		if err == nil {
			return result, nil
		}
		lastErr = err
		logging.Get(logging.CategoryLLM).Warn("%s chat attempt %d/%d failed: %v", p.inner.Name(), attempt+1, p.maxRetries+1, err)
	}
	return ChatResult{}, lastErr
}

func (p *RetryingChatProvider) Name() string { return p.inner.Name() }
