// Package retry re-runs operations that fail with transient errors.
//
// Retryability is decided from the tagged error types in pkg/errors: network,
// rate limit and server errors are retried, everything else is returned at
// once. A MaxAttempts of 1 makes a single attempt, which is the default for
// message generation.
//
//	text, err := retry.DoWithResult(ctx, func(ctx context.Context) (string, error) {
//		return client.Complete(ctx, prompt)
//	}, &retry.Config{MaxAttempts: 3, Backoff: retry.DefaultExponentialBackoff()})
package retry
