package shared

import "context"

// TransactionManager runs a unit of work inside one database transaction.
// Repositories called with the ctx handed to fn take part in that transaction;
// returning an error from fn rolls every write back.
type TransactionManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	// WithinReadSnapshot runs fn against a single consistent read-only snapshot.
	WithinReadSnapshot(ctx context.Context, fn func(ctx context.Context) error) error
}
