package builder

import (
	"context"
	"fmt"
	"strings"
)

// Values sets the values to insert (single or multiple rows).
// Every row must leave the same set of defaulted columns empty.
func (q *InsertQuery[T]) Values(values ...T) *InsertQuery[T] {
	q.values = append(q.values, values...)
	return q
}

// Returning specifies columns to return after insert.
func (q *InsertQuery[T]) Returning(columns ...string) *InsertQuery[T] {
	q.returning = columns
	return q
}

// OnConflictDoNothing adds ON CONFLICT DO NOTHING clause.
func (q *InsertQuery[T]) OnConflictDoNothing(columns ...string) *InsertQuery[T] {
	q.onConflict = &OnConflict{
		Columns: columns,
		Action:  DoNothing,
	}
	return q
}

// OnConflictDoUpdate adds ON CONFLICT (columns) DO UPDATE SET col = EXCLUDED.col
// for each of updates.
func (q *InsertQuery[T]) OnConflictDoUpdate(columns []string, updates ...string) *InsertQuery[T] {
	q.onConflict = &OnConflict{
		Columns: columns,
		Action:  DoUpdate,
		Updates: updates,
	}
	return q
}

// ToSQL generates the INSERT SQL and arguments.
func (q *InsertQuery[T]) ToSQL() (string, []any, error) {
	if q.err != nil {
		return "", nil, q.err
	}
	if q.table == nil {
		return "", nil, fmt.Errorf("table metadata not available")
	}
	if len(q.values) == 0 {
		return "", nil, fmt.Errorf("no values to insert")
	}

	var sql strings.Builder
	var args []any
	paramNum := 1

	sql.WriteString("INSERT INTO ")
	sql.WriteString(q.table.Name)

	columns, firstRowValues, err := structToValues(q.values[0], q.table)
	if err != nil {
		return "", nil, fmt.Errorf("failed to extract values: %w", err)
	}

	if len(columns) == 0 {
		sql.WriteString(" DEFAULT VALUES")
	} else {
		sql.WriteString(" (")
		sql.WriteString(strings.Join(columns, ", "))
		sql.WriteString(") VALUES ")

		valueClauses := make([]string, len(q.values))
		for i, val := range q.values {
			rowValues := firstRowValues
			if i > 0 {
				var rowColumns []string
				rowColumns, rowValues, err = structToValues(val, q.table)
				if err != nil {
					return "", nil, fmt.Errorf("failed to extract values from row %d: %w", i, err)
				}
				if len(rowColumns) != len(columns) {
					return "", nil, fmt.Errorf("row %d sets %d columns, first row sets %d", i, len(rowColumns), len(columns))
				}
			}

			placeholders := make([]string, len(rowValues))
			for j := range rowValues {
				placeholders[j] = fmt.Sprintf("$%d", paramNum)
				paramNum++
				args = append(args, rowValues[j])
			}
			valueClauses[i] = "(" + strings.Join(placeholders, ", ") + ")"
		}
		sql.WriteString(strings.Join(valueClauses, ", "))
	}

	if q.onConflict != nil {
		sql.WriteString(" ON CONFLICT")
		if len(q.onConflict.Columns) > 0 {
			sql.WriteString(" (")
			sql.WriteString(strings.Join(q.onConflict.Columns, ", "))
			sql.WriteString(")")
		}

		switch {
		case q.onConflict.Action == DoUpdate && len(q.onConflict.Updates) > 0:
			updates := make([]string, len(q.onConflict.Updates))
			for i, col := range q.onConflict.Updates {
				updates[i] = fmt.Sprintf("%s = EXCLUDED.%s", col, col)
			}
			sql.WriteString(" ")
			sql.WriteString(string(DoUpdate))
			sql.WriteString(" ")
			sql.WriteString(strings.Join(updates, ", "))
		default:
			sql.WriteString(" DO NOTHING")
		}
	}

	if len(q.returning) > 0 {
		sql.WriteString(" RETURNING ")
		sql.WriteString(strings.Join(q.returning, ", "))
	}

	return sql.String(), args, nil
}

// Exec executes the INSERT query and returns the number of inserted rows.
func (q *InsertQuery[T]) Exec(ctx context.Context) (int64, error) {
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

// ExecReturning executes the INSERT and returns the inserted rows.
func (q *InsertQuery[T]) ExecReturning(ctx context.Context) ([]T, error) {
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

// One inserts a single row and returns it as stored.
func (q *InsertQuery[T]) One(ctx context.Context, value T) (*T, error) {
	q.values = []T{value}
	rows, err := q.ExecReturning(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		// ON CONFLICT DO NOTHING swallowed the row.
		return nil, fmt.Errorf("insert into %s returned no row", q.table.Name)
	}
	return &rows[0], nil
}
