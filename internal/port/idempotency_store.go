package port

import "context"

type IdempotencyStore interface {
	// Reserve claims key for a new request, returns false if already claimed
	Reserve(ctx context.Context, key string) (bool, error)

	// Complete records the id of the order created under key
	Complete(ctx context.Context, key, orderID string) error

	// Lookup returns the order id recorded under key, "" while still in flight
	Lookup(ctx context.Context, key string) (string, error)

	// Release frees a key whose request failed, so it can be resubmitted.
	// Completed keys are left untouched.
	Release(ctx context.Context, key string) error
}
