package schema

import (
	"reflect"
	"time"
)

var timeType = reflect.TypeFor[time.Time]()

// SQLTypeOf returns the PostgreSQL column type inferred for a Go field type,
// or "" when the tag must name one. Pointers map to their element type.
func SQLTypeOf(t reflect.Type) string {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == timeType {
		return "timestamptz"
	}

	switch t.Kind() {
	case reflect.Bool:
		return "boolean"
	case reflect.Int16:
		return "smallint"
	case reflect.Int32, reflect.Int:
		return "integer"
	case reflect.Int64:
		return "bigint"
	case reflect.Float32:
		return "real"
	case reflect.Float64:
		return "double precision"
	case reflect.String:
		return "text"
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return "bytea"
		}
		if elem := SQLTypeOf(t.Elem()); elem != "" {
			return elem + "[]"
		}
	}
	return ""
}
