package repositories

import (
	"context"
)

// TransactionManager runs a unit of work atomically. Repository calls made with the
// ctx passed to fn join the same database transaction; nested calls reuse it.
type TransactionManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
