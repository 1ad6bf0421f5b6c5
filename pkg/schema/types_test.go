package schema

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSQLTypeOf(t *testing.T) {
	type Availability string

	tests := []struct {
		name   string
		goType reflect.Type
		want   string
	}{
		{"bool", reflect.TypeFor[bool](), "boolean"},
		{"int", reflect.TypeFor[int](), "integer"},
		{"int64", reflect.TypeFor[int64](), "bigint"},
		{"float64", reflect.TypeFor[float64](), "double precision"},
		{"string", reflect.TypeFor[string](), "text"},
		{"named string", reflect.TypeFor[Availability](), "text"},
		{"*string", reflect.TypeFor[*string](), "text"},
		{"time.Time", reflect.TypeFor[time.Time](), "timestamptz"},
		{"*time.Time", reflect.TypeFor[*time.Time](), "timestamptz"},
		{"[]byte", reflect.TypeFor[[]byte](), "bytea"},
		{"[]string", reflect.TypeFor[[]string](), "text[]"},
		{"map", reflect.TypeFor[map[string]any](), ""},
		{"unsupported", reflect.TypeFor[chan int](), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SQLTypeOf(tt.goType))
		})
	}
}
