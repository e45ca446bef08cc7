// Package retry provides backoff and retry logic for transient failures,
// chiefly headless browser launches that fail before a page is ever loaded.
//
// Basic usage:
//
//	handle, err := retry.DoWithResult(func() (*Handle, error) {
//		return m.launch(ctx)
//	}, &retry.Config{
//		MaxAttempts: 3,
//		Backoff:     retry.DefaultExponentialBackoff(),
//		Context:     ctx,
//		Logger:      log,
//	})
//
// Only typed errors whose kind is retryable (browser_launch) and untyped
// errors are retried. Context cancellation stops the loop immediately.
package retry
