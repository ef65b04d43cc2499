// Package sale implements the atomic sale-processing core: validating
// available inventory, recording an order with its line item and payment,
// and decrementing stock, all inside one transaction boundary.
package sale

import (
	"context"

	"github.com/vendra/salescore/internal/domain/catalog"
	"github.com/vendra/salescore/internal/domain/ledger"
)

// Tx exposes transaction-bound views of the catalog store and order ledger.
// Everything reached through a Tx commits or rolls back as one unit.
type Tx interface {
	Catalog() catalog.Store
	Ledger() ledger.Ledger
}

// Storage runs functions inside a single transaction boundary.
type Storage interface {
	// InTx begins a transaction, runs fn with a Tx bound to it, and commits
	// when fn returns nil. Any error from fn (or the commit) rolls the
	// transaction back: no partial effects are ever observable, and any row
	// locks taken inside fn are released.
	InTx(ctx context.Context, fn func(tx Tx) error) error
}
