package builder

import (
	"testing"
)

func TestDeleteQuery_ToSQL(t *testing.T) {
	db := New(nil)

	tests := []struct {
		name     string
		query    func() *DeleteQuery[testProduct]
		wantSQL  string
		wantArgs int
		wantErr  bool
	}{
		{
			name: "by id",
			query: func() *DeleteQuery[testProduct] {
				return Delete[testProduct](db).Where(Eq("id", "p1"))
			},
			wantSQL:  "DELETE FROM products WHERE id = $1",
			wantArgs: 1,
		},
		{
			name: "and with returning",
			query: func() *DeleteQuery[testProduct] {
				return Delete[testProduct](db).Where(Eq("category_id", "c1")).And(NotEq("id", "p1")).Returning("id")
			},
			wantSQL:  "DELETE FROM products WHERE category_id = $1 AND id != $2 RETURNING id",
			wantArgs: 2,
		},
		{
			name: "without where",
			query: func() *DeleteQuery[testProduct] {
				return Delete[testProduct](db)
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
			if sql != tt.wantSQL {
				t.Errorf("ToSQL() sql = %q, want %q", sql, tt.wantSQL)
			}
			if len(args) != tt.wantArgs {
				t.Errorf("ToSQL() args length = %d, want %d", len(args), tt.wantArgs)
			}
		})
	}
}
