package llm

import (
	"context"
	"strings"
	"time"

	"github.com/jonathan/resume-tailor/internal/prompts"
)

const (
	// DefaultMaxAttempts bounds retries for transient provider failures.
	DefaultMaxAttempts = 3
	// DefaultBaseDelay is the initial backoff delay, doubled per attempt.
	DefaultBaseDelay = 500 * time.Millisecond
)

// Caller is the minimal generation capability the Invoker retries over.
// Client satisfies it; tests substitute fakes.
type Caller interface {
	GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error)
}

// Invoker fills a prompt template with variables, calls the completion
// capability, and retries transient failures with exponential backoff.
// It holds no mutable state, so one Invoker is safe to share across
// concurrent section workers.
type Invoker struct {
	caller      Caller
	maxAttempts int
	baseDelay   time.Duration
}

// NewInvoker creates an Invoker with the default retry policy.
func NewInvoker(caller Caller) *Invoker {
	return NewInvokerWithRetry(caller, DefaultMaxAttempts, DefaultBaseDelay)
}

// NewInvokerWithRetry creates an Invoker with an explicit retry policy.
func NewInvokerWithRetry(caller Caller, maxAttempts int, baseDelay time.Duration) *Invoker {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Invoker{
		caller:      caller,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
	}
}

// Invoke fills template with vars and calls the provider. Transient
// failures are retried up to the configured attempt count; fatal failures
// and context cancellation return immediately. Exhausting retries returns
// the last transient error.
func (inv *Invoker) Invoke(ctx context.Context, template string, vars map[string]string, tier ModelTier) (string, error) {
	prompt := prompts.Format(template, vars)

	var lastErr *ProviderError
	delay := inv.baseDelay
	for attempt := 1; attempt <= inv.maxAttempts; attempt++ {
		text, err := inv.caller.GenerateContent(ctx, prompt, tier)
		if err == nil {
			return strings.TrimSpace(text), nil
		}

		provErr := Classify(err)
		if provErr.Fatal {
			return "", provErr
		}
		lastErr = provErr

		if attempt == inv.maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	return "", lastErr
}
