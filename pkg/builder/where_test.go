package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWhereBuilder_Build(t *testing.T) {
	tests := []struct {
		name        string
		start       int
		conditions  []Condition
		expectedSQL string
		expectedLen int
	}{
		{
			name:        "empty conditions",
			conditions:  []Condition{},
			expectedSQL: "",
		},
		{
			name:        "single equality condition",
			conditions:  []Condition{Eq("published", true)},
			expectedSQL: "WHERE published = $1",
			expectedLen: 1,
		},
		{
			name:        "grouped OR",
			conditions:  []Condition{Eq("published", true), AnyOf(Eq("status", "pending"), Eq("status", "reviewed"))},
			expectedSQL: "WHERE published = $1 AND (status = $2 OR status = $3)",
			expectedLen: 3,
		},
		{
			name:        "ANY binds one parameter",
			conditions:  []Condition{Any("id", []string{"a", "b", "c"})},
			expectedSQL: "WHERE id = ANY($1)",
			expectedLen: 1,
		},
		{
			name:        "numbering continues after SET params",
			start:       3,
			conditions:  []Condition{Eq("id", "x"), NotEq("display_order", 0), Contains("name", "rice")},
			expectedSQL: "WHERE id = $3 AND display_order != $4 AND name ILIKE $5",
			expectedLen: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := tt.start
			if start == 0 {
				start = 1
			}
			wb := NewWhereBuilderWithStart(start)
			for _, c := range tt.conditions {
				wb.Add(c)
			}
			sql, args, err := wb.Build()
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			if sql != tt.expectedSQL {
				t.Errorf("Build() sql = %q, want %q", sql, tt.expectedSQL)
			}
			if len(args) != tt.expectedLen {
				t.Errorf("Build() args length = %d, want %d", len(args), tt.expectedLen)
			}
		})
	}
}

func TestWhereBuilder_Errors(t *testing.T) {
	bad := []Condition{
		{Column: "x", Operator: "~~~", Value: 1},
		{Column: "x", Operator: "BETWEEN", Value: []any{1}},
	}
	for _, c := range bad {
		wb := NewWhereBuilder()
		wb.Add(c)
		if _, _, err := wb.Build(); err == nil {
			t.Errorf("expected error for operator %q with value %v", c.Operator, c.Value)
		}
	}
}

func TestContains_EscapesWildcards(t *testing.T) {
	c := Contains("name", "50%_off")
	assert.Equal(t, OpILike, c.Operator)
	assert.Equal(t, `%50\%\_off%`, c.Value)
	assert.Equal(t, `a\\b`, EscapeLike(`a\b`))
}
