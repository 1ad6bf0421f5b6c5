package builder

import (
	"context"
	"fmt"
	"strings"

	"github.com/marshallshelly/agroexport/pkg/runtime"
)

// Set sets a column value for the UPDATE. Setting the same column twice keeps
// the last value.
func (q *UpdateQuery[T]) Set(column string, value any) *UpdateQuery[T] {
	return q.set(setClause{Column: column, Value: value})
}

// SetExpr assigns a raw SQL expression, e.g. SetExpr("updated_at", "NOW()").
func (q *UpdateQuery[T]) SetExpr(column, expr string) *UpdateQuery[T] {
	return q.set(setClause{Column: column, Value: expr, Raw: true})
}

func (q *UpdateQuery[T]) set(c setClause) *UpdateQuery[T] {
	for i := range q.sets {
		if q.sets[i].Column == c.Column {
			q.sets[i] = c
			return q
		}
	}
	q.sets = append(q.sets, c)
	return q
}

// HasSets reports whether any assignment has been added.
func (q *UpdateQuery[T]) HasSets() bool {
	for _, s := range q.sets {
		if !s.Raw {
			return true
		}
	}
	return false
}

// Where adds a WHERE condition.
func (q *UpdateQuery[T]) Where(condition Condition) *UpdateQuery[T] {
	q.where = append(q.where, condition)
	return q
}

// And adds an AND condition.
func (q *UpdateQuery[T]) And(condition Condition) *UpdateQuery[T] {
	condition.Logic = LogicAnd
	return q.Where(condition)
}

// Returning specifies columns to return after update.
func (q *UpdateQuery[T]) Returning(columns ...string) *UpdateQuery[T] {
	q.returning = columns
	return q
}

// ToSQL generates the UPDATE SQL and arguments.
func (q *UpdateQuery[T]) ToSQL() (string, []any, error) {
	if q.err != nil {
		return "", nil, q.err
	}
	if q.table == nil {
		return "", nil, fmt.Errorf("table metadata not available")
	}
	if len(q.sets) == 0 {
		return "", nil, fmt.Errorf("no columns to update")
	}
	if len(q.where) == 0 {
		return "", nil, fmt.Errorf("refusing UPDATE of %s without WHERE", q.table.Name)
	}

	var sql strings.Builder
	var args []any
	paramNum := 1

	sql.WriteString("UPDATE ")
	sql.WriteString(q.table.Name)
	sql.WriteString(" SET ")

	setClauses := make([]string, 0, len(q.sets))
	for _, s := range q.sets {
		if s.Raw {
			setClauses = append(setClauses, fmt.Sprintf("%s = %s", s.Column, s.Value))
			continue
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", s.Column, paramNum))
		args = append(args, s.Value)
		paramNum++
	}
	sql.WriteString(strings.Join(setClauses, ", "))

	whereSQL, whereArgs, err := buildWhere(q.where, paramNum)
	if err != nil {
		return "", nil, err
	}
	sql.WriteString(" ")
	sql.WriteString(whereSQL)
	args = append(args, whereArgs...)

	if len(q.returning) > 0 {
		sql.WriteString(" RETURNING ")
		sql.WriteString(strings.Join(q.returning, ", "))
	}

	return sql.String(), args, nil
}

// Exec executes the UPDATE query and returns the number of affected rows.
func (q *UpdateQuery[T]) Exec(ctx context.Context) (int64, error) {
	q.returning = nil
	sql, args, err := q.ToSQL()
	if err != nil {
		return 0, err
	}
	db, err := q.db.querier()
	if err != nil {
		return 0, err
	}
	return db.Exec(ctx, sql, args...)
}

// ExecReturning executes the UPDATE and returns the updated rows.
func (q *UpdateQuery[T]) ExecReturning(ctx context.Context) ([]T, error) {
	if len(q.returning) == 0 {
		q.Returning("*")
	}

	sql, args, err := q.ToSQL()
	if err != nil {
		return nil, err
	}
	db, err := q.db.querier()
	if err != nil {
		return nil, err
	}
	return collect[T](ctx, db, q.table, sql, args)
}

// One executes the UPDATE and returns the single updated row, or
// runtime.ErrNotFound when the WHERE clause matched nothing.
func (q *UpdateQuery[T]) One(ctx context.Context) (*T, error) {
	rows, err := q.ExecReturning(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: %w", q.table.Name, runtime.ErrNotFound)
	}
	return &rows[0], nil
}
