package builder

import (
	"context"

	"github.com/marshallshelly/agroexport/pkg/runtime"
)

// InTx runs fn with a DB bound to a single transaction. Every builder created
// from the DB passed to fn runs inside that transaction, which commits when fn
// returns nil and rolls back otherwise. Calling InTx on a DB that is already
// transactional reuses the open transaction.
func (d *DB) InTx(ctx context.Context, fn func(tx *DB) error) error {
	if d.inTx {
		return fn(d)
	}
	if d.rt == nil {
		return runtime.ErrNoConnection
	}
	return d.rt.WithTx(ctx, func(tx *runtime.Tx) error {
		return fn(&DB{q: tx, rt: d.rt, inTx: true})
	})
}
