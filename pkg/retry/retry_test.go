package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	errs "igdm/pkg/errors"
)

func fastConfig(attempts int) *Config {
	return &Config{
		MaxAttempts: attempts,
		Backoff:     &ConstantBackoff{Delay: time.Millisecond},
	}
}

func TestExponentialBackoff(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:  100 * time.Millisecond,
		MaxDelay:   1 * time.Second,
		Multiplier: 2.0,
	}

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 0},
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{4, 800 * time.Millisecond},
		{5, 1 * time.Second},
		{6, 1 * time.Second},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, backoff.NextDelay(tt.attempt), "attempt %d", tt.attempt)
	}
}

func TestExponentialBackoffJitterBounds(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:    100 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.5,
	}

	for i := 0; i < 20; i++ {
		d := backoff.NextDelay(2)
		assert.GreaterOrEqual(t, d, 100*time.Millisecond)
		assert.LessOrEqual(t, d, 300*time.Millisecond)
	}
}

func TestDefaultRetryIf(t *testing.T) {
	assert.False(t, DefaultRetryIf(nil))
	assert.False(t, DefaultRetryIf(errors.New("plain")))
	assert.False(t, DefaultRetryIf(context.Canceled))
	assert.True(t, DefaultRetryIf(&errs.Error{Type: errs.ErrorTypeRateLimit}))
	assert.True(t, DefaultRetryIf(&errs.Error{Type: errs.ErrorTypeServerError}))
	assert.False(t, DefaultRetryIf(&errs.Error{Type: errs.ErrorTypeAuth}))
}

func TestDoSucceedsAfterRetry(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return &errs.Error{Type: errs.ErrorTypeNetwork, Message: "reset"}
		}
		return nil
	}, fastConfig(5))

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDoSingleAttemptByDefault(t *testing.T) {
	attempts := 0
	want := &errs.Error{Type: errs.ErrorTypeServerError, Code: 503}

	err := Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return want
	}, nil)

	assert.Equal(t, 1, attempts)
	assert.Same(t, want, err)
}

func TestDoExhaustsAttempts(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return &errs.Error{Type: errs.ErrorTypeRateLimit, Code: 429}
	}, fastConfig(3))

	var apiErr *errs.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, errs.ErrorTypeRateLimit, apiErr.Type)
	assert.Equal(t, 3, attempts)
}

func TestDoStopsOnNonRetryable(t *testing.T) {
	attempts := 0
	authErr := &errs.Error{Type: errs.ErrorTypeAuth, Code: 401}

	err := Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return authErr
	}, fastConfig(5))

	assert.Same(t, authErr, err)
	assert.Equal(t, 1, attempts)
}

func TestDoContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0

	err := Do(ctx, func(ctx context.Context) error {
		attempts++
		cancel()
		return &errs.Error{Type: errs.ErrorTypeNetwork}
	}, &Config{MaxAttempts: 5, Backoff: &ConstantBackoff{Delay: time.Second}})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestDoWithResult(t *testing.T) {
	attempts := 0
	result, err := DoWithResult(context.Background(), func(ctx context.Context) (string, error) {
		attempts++
		if attempts < 2 {
			return "", &errs.Error{Type: errs.ErrorTypeNetwork}
		}
		return "hello", nil
	}, fastConfig(3))

	require.NoError(t, err)
	assert.Equal(t, "hello", result)
}
