package firestore

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/firestore"
)

// Transactions back order placement and the counter increments, so the
// defaults stay short: a stock conflict should surface quickly rather than
// hold the request open.
const (
	defaultTxAttempts = 5
	defaultTxTimeout  = 10 * time.Second
)

// TxFunc is executed within a Firestore transaction. All reads must happen
// before the first write; the Firestore client rejects interleaved access.
type TxFunc func(ctx context.Context, tx *firestore.Transaction) error

type txSettings struct {
	maxAttempts int
	timeout     time.Duration
}

// TxOption customises transaction behaviour.
type TxOption func(*txSettings)

// WithTxAttempts overrides how many times the transaction is retried on
// contention.
func WithTxAttempts(attempts int) TxOption {
	return func(s *txSettings) {
		if attempts > 0 {
			s.maxAttempts = attempts
		}
	}
}

// WithTxTimeout bounds the total transaction duration, retries included.
func WithTxTimeout(timeout time.Duration) TxOption {
	return func(s *txSettings) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// RunTransaction executes fn within a Firestore transaction, applying the
// default attempt and timeout bounds unless overridden. Errors are wrapped
// into the repository error taxonomy.
func RunTransaction(ctx context.Context, client *firestore.Client, fn TxFunc, opts ...TxOption) error {
	if client == nil {
		return WrapError("transaction", errors.New("firestore: client is nil"))
	}
	if fn == nil {
		return WrapError("transaction", errors.New("firestore: transaction function is nil"))
	}

	settings := txSettings{maxAttempts: defaultTxAttempts, timeout: defaultTxTimeout}
	for _, opt := range opts {
		if opt != nil {
			opt(&settings)
		}
	}

	txCtx, cancel := boundedContext(ctx, settings.timeout)
	defer cancel()

	err := client.RunTransaction(txCtx, func(ctx context.Context, tx *firestore.Transaction) error {
		return fn(ctx, tx)
	}, firestore.MaxAttempts(settings.maxAttempts))

	return WrapError("transaction", err)
}

// boundedContext applies the timeout only when it would tighten the caller's
// existing deadline.
func boundedContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) <= timeout {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
