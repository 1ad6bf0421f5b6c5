package builder

import (
	"github.com/marshallshelly/agroexport/pkg/registry"
	"github.com/marshallshelly/agroexport/pkg/runtime"
)

// DB binds query builders to a statement target: the connection pool, or an
// open transaction when obtained through InTx.
type DB struct {
	q    runtime.Querier
	rt   *runtime.DB
	inTx bool
}

// New creates a new query builder DB from a runtime DB.
// A nil runtime DB is allowed for SQL generation; executing queries then
// fails with runtime.ErrNoConnection.
func New(db *runtime.DB) *DB {
	d := &DB{rt: db}
	if db != nil {
		d.q = db
	}
	return d
}

// Runtime returns the underlying runtime.DB.
func (d *DB) Runtime() *runtime.DB {
	return d.rt
}

// InTransaction reports whether d is bound to an open transaction.
func (d *DB) InTransaction() bool {
	return d.inTx
}

func (d *DB) querier() (runtime.Querier, error) {
	if d == nil || d.q == nil {
		return nil, runtime.ErrNoConnection
	}
	return d.q, nil
}

// Select creates a new type-safe SELECT query.
// Usage: builder.Select[catalog.Product](db).Where(...).All(ctx)
func Select[T any](d *DB) *SelectQuery[T] {
	var model T
	table, err := registry.GetOrRegister(model)
	return &SelectQuery[T]{
		db:      d,
		table:   table,
		err:     err,
		columns: []string{"*"},
	}
}

// Insert creates a new type-safe INSERT query.
// Usage: builder.Insert[catalog.Product](db).Values(p).ExecReturning(ctx)
func Insert[T any](d *DB) *InsertQuery[T] {
	var model T
	table, err := registry.GetOrRegister(model)
	return &InsertQuery[T]{
		db:    d,
		table: table,
		err:   err,
	}
}

// Update creates a new type-safe UPDATE query.
// Usage: builder.Update[catalog.QuoteRequest](db).Set("status", s).Where(...).Exec(ctx)
func Update[T any](d *DB) *UpdateQuery[T] {
	var model T
	table, err := registry.GetOrRegister(model)
	return &UpdateQuery[T]{
		db:    d,
		table: table,
		err:   err,
	}
}

// Delete creates a new type-safe DELETE query.
// Usage: builder.Delete[catalog.ContactMessage](db).Where(...).Exec(ctx)
func Delete[T any](d *DB) *DeleteQuery[T] {
	var model T
	table, err := registry.GetOrRegister(model)
	return &DeleteQuery[T]{
		db:    d,
		table: table,
		err:   err,
	}
}
