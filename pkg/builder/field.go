package builder

import "github.com/marshallshelly/agroexport/pkg/registry"

// Col returns the database column name for a given Go field name.
// This provides a single source of truth through the registry.
//
// Usage:
//
//	builder.Eq(builder.Col[catalog.Product]("CategoryID"), id)
//
// The model is registered on first use. Unknown fields are returned as-is.
func Col[T any](goFieldName string) string {
	var zero T
	table, err := registry.GetOrRegister(zero)
	if err != nil {
		return goFieldName
	}
	column := table.GetColumnByField(goFieldName)
	if column == nil {
		return goFieldName
	}

	return column.Name
}
