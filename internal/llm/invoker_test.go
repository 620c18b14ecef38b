package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedCaller returns pre-programmed responses in sequence.
type scriptedCaller struct {
	responses []string
	errs      []error
	calls     int
	prompts   []string
}

func (c *scriptedCaller) GenerateContent(_ context.Context, prompt string, _ ModelTier) (string, error) {
	i := c.calls
	c.calls++
	c.prompts = append(c.prompts, prompt)
	if i < len(c.errs) && c.errs[i] != nil {
		return "", c.errs[i]
	}
	if i < len(c.responses) {
		return c.responses[i], nil
	}
	return "", errors.New("scripted caller exhausted")
}

func TestInvoke_FillsTemplate(t *testing.T) {
	caller := &scriptedCaller{responses: []string{"ok"}}
	inv := NewInvoker(caller)

	out, err := inv.Invoke(context.Background(), "Job: {{.Role}} at {{.Company}}", map[string]string{
		"Role":    "Engineer",
		"Company": "Initech",
	}, TierLite)
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	require.Len(t, caller.prompts, 1)
	assert.Equal(t, "Job: Engineer at Initech", caller.prompts[0])
}

func TestInvoke_RetriesTransientThenSucceeds(t *testing.T) {
	transient := &ProviderError{Message: "rate limited"}
	caller := &scriptedCaller{
		errs:      []error{transient, transient, nil},
		responses: []string{"", "", "third time lucky"},
	}
	inv := NewInvokerWithRetry(caller, 3, time.Millisecond)

	out, err := inv.Invoke(context.Background(), "prompt", nil, TierStandard)
	require.NoError(t, err)
	assert.Equal(t, "third time lucky", out)
	assert.Equal(t, 3, caller.calls)
}

func TestInvoke_FatalErrorNotRetried(t *testing.T) {
	fatal := &ProviderError{Message: "bad api key", Fatal: true}
	caller := &scriptedCaller{errs: []error{fatal, nil}, responses: []string{"", "should not reach"}}
	inv := NewInvokerWithRetry(caller, 3, time.Millisecond)

	_, err := inv.Invoke(context.Background(), "prompt", nil, TierStandard)
	require.Error(t, err)
	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.True(t, provErr.Fatal)
	assert.Equal(t, 1, caller.calls)
}

func TestInvoke_ExhaustedRetriesReturnsLastError(t *testing.T) {
	transient := &ProviderError{Message: "still down"}
	caller := &scriptedCaller{errs: []error{transient, transient, transient}}
	inv := NewInvokerWithRetry(caller, 3, time.Millisecond)

	_, err := inv.Invoke(context.Background(), "prompt", nil, TierLite)
	require.Error(t, err)
	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.False(t, provErr.Fatal)
	assert.Equal(t, 3, caller.calls)
}

func TestInvoke_ContextCancelledDuringBackoff(t *testing.T) {
	transient := &ProviderError{Message: "flaky"}
	caller := &scriptedCaller{errs: []error{transient, transient, transient}}
	inv := NewInvokerWithRetry(caller, 3, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := inv.Invoke(ctx, "prompt", nil, TierLite)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, caller.calls)
}

func TestInvoke_TrimsWhitespace(t *testing.T) {
	caller := &scriptedCaller{responses: []string{"  padded response \n"}}
	inv := NewInvoker(caller)

	out, err := inv.Invoke(context.Background(), "prompt", nil, TierLite)
	require.NoError(t, err)
	assert.Equal(t, "padded response", out)
}
