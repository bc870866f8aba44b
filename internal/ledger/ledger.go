// Package ledger owns the ordered collection of expense records and its
// durable snapshot. Records are newest-first by insertion; every mutation
// persists the full ledger before returning.
package ledger

import (
	"context"

	"finsmart/internal/core"
)

// Store is the ledger contract. List returns a snapshot newest-first by
// insertion. Remove of an absent id is a no-op, not an error.
type Store interface {
	List(ctx context.Context) ([]core.Expense, error)
	Append(ctx context.Context, e core.Expense) error
	Remove(ctx context.Context, id string) error
}
