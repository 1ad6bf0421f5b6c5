package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpdateQuery_ToSQL(t *testing.T) {
	db := New(nil)

	tests := []struct {
		name     string
		query    func() *UpdateQuery[testProduct]
		wantSQL  string
		wantArgs int
		wantErr  bool
	}{
		{
			name: "sets keep insertion order",
			query: func() *UpdateQuery[testProduct] {
				return Update[testProduct](db).
					Set("name", "Rice").
					Set("base_price", 9.5).
					SetExpr("updated_at", "NOW()").
					Where(Eq("id", "p1"))
			},
			wantSQL:  "UPDATE products SET name = $1, base_price = $2, updated_at = NOW() WHERE id = $3",
			wantArgs: 3,
		},
		{
			name: "setting a column twice keeps the last value",
			query: func() *UpdateQuery[testProduct] {
				return Update[testProduct](db).
					Set("name", "A").
					Set("slug", "a").
					Set("name", "B").
					Where(Eq("id", "p1")).
					Returning("*")
			},
			wantSQL:  "UPDATE products SET name = $1, slug = $2 WHERE id = $3 RETURNING *",
			wantArgs: 3,
		},
		{
			name: "no sets",
			query: func() *UpdateQuery[testProduct] {
				return Update[testProduct](db).Where(Eq("id", "p1"))
			},
			wantErr: true,
		},
		{
			name: "no where",
			query: func() *UpdateQuery[testProduct] {
				return Update[testProduct](db).Set("name", "x")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := tt.query().ToSQL()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ToSQL() error = %v", err)
			}
			assert.Equal(t, tt.wantSQL, sql)
			assert.Len(t, args, tt.wantArgs)
		})
	}
}

func TestUpdateQuery_HasSets(t *testing.T) {
	q := Update[testProduct](New(nil)).SetExpr("updated_at", "NOW()")
	assert.False(t, q.HasSets(), "a raw timestamp bump alone is not a change")
	q.Set("name", "x")
	assert.True(t, q.HasSets())
}
