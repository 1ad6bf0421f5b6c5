package builder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/marshallshelly/agroexport/pkg/runtime"
)

type testProduct struct {
	ID           string    `po:"id,primaryKey,uuid,default(gen_random_uuid())"`
	Name         string    `po:"name,text,notNull"`
	Slug         string    `po:"slug,text,unique,notNull"`
	CategoryID   *string   `po:"category_id,uuid"`
	BasePrice    float64   `po:"base_price,numeric(10,2),notNull"`
	Availability string    `po:"availability,text,notNull,default('in-stock')"`
	CreatedAt    time.Time `po:"created_at,timestamptz,notNull,default(NOW())"`
}

func (testProduct) TableName() string { return "products" }

func TestSelectQuery_ToSQL(t *testing.T) {
	db := New(nil) // Nil runtime DB for SQL generation tests

	tests := []struct {
		name       string
		setupQuery func() *SelectQuery[testProduct]
		wantSQL    string
		wantArgLen int
	}{
		{
			name: "simple select all",
			setupQuery: func() *SelectQuery[testProduct] {
				return Select[testProduct](db)
			},
			wantSQL: "SELECT * FROM products",
		},
		{
			name: "select specific columns",
			setupQuery: func() *SelectQuery[testProduct] {
				return Select[testProduct](db).Columns("id", "name")
			},
			wantSQL: "SELECT id, name FROM products",
		},
		{
			name: "category fallback shape",
			setupQuery: func() *SelectQuery[testProduct] {
				return Select[testProduct](db).
					Where(Eq("category_id", "c1")).
					And(NotEq("id", "p1")).
					OrderByDesc("created_at").
					Limit(4)
			},
			wantSQL:    "SELECT * FROM products WHERE category_id = $1 AND id != $2 ORDER BY created_at DESC LIMIT 4",
			wantArgLen: 2,
		},
		{
			name: "search over two columns",
			setupQuery: func() *SelectQuery[testProduct] {
				return Select[testProduct](db).
					Where(Eq("availability", "limited")).
					Where(AnyOf(Contains("name", "rice"), Contains("description", "rice"))).
					OrderByAsc("name")
			},
			wantSQL:    "SELECT * FROM products WHERE availability = $1 AND (name ILIKE $2 OR description ILIKE $3) ORDER BY name ASC",
			wantArgLen: 3,
		},
		{
			name: "ids by ANY",
			setupQuery: func() *SelectQuery[testProduct] {
				return Select[testProduct](db).Where(Any("id", []string{"a", "b"}))
			},
			wantSQL:    "SELECT * FROM products WHERE id = ANY($1)",
			wantArgLen: 1,
		},
		{
			name: "limit and offset",
			setupQuery: func() *SelectQuery[testProduct] {
				return Select[testProduct](db).
					OrderByDesc("created_at").
					Limit(10).
					Offset(20)
			},
			wantSQL: "SELECT * FROM products ORDER BY created_at DESC LIMIT 10 OFFSET 20",
		},
		{
			name: "for update",
			setupQuery: func() *SelectQuery[testProduct] {
				return Select[testProduct](db).Columns("slug").Where(Eq("id", "x")).ForUpdate()
			},
			wantSQL:    "SELECT slug FROM products WHERE id = $1 FOR UPDATE",
			wantArgLen: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := tt.setupQuery().ToSQL()
			if err != nil {
				t.Fatalf("ToSQL() error = %v", err)
			}
			if sql != tt.wantSQL {
				t.Errorf("ToSQL() sql =\n%s\nwant\n%s", sql, tt.wantSQL)
			}
			if len(args) != tt.wantArgLen {
				t.Errorf("ToSQL() args length = %d, want %d", len(args), tt.wantArgLen)
			}
		})
	}
}

func TestSelectQuery_RegistrationError(t *testing.T) {
	type broken struct {
		Data map[int]int `po:"data"`
	}

	_, _, err := Select[broken](New(nil)).ToSQL()
	if err == nil {
		t.Fatal("expected the registration error to surface from ToSQL")
	}
}

func TestSelectQuery_NoConnection(t *testing.T) {
	ctx := context.Background()
	db := New(nil)

	if _, err := Select[testProduct](db).All(ctx); !errors.Is(err, runtime.ErrNoConnection) {
		t.Errorf("All() error = %v, want ErrNoConnection", err)
	}
	if _, err := Select[testProduct](db).Count(ctx); !errors.Is(err, runtime.ErrNoConnection) {
		t.Errorf("Count() error = %v, want ErrNoConnection", err)
	}
	if err := db.InTx(ctx, func(*DB) error { return nil }); !errors.Is(err, runtime.ErrNoConnection) {
		t.Errorf("InTx() error = %v, want ErrNoConnection", err)
	}
}

func TestDB_InTxReusesOpenTransaction(t *testing.T) {
	tx := &DB{inTx: true}

	called := false
	err := tx.InTx(context.Background(), func(inner *DB) error {
		called = true
		if inner != tx {
			t.Error("expected the nested call to reuse the transactional DB")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("InTx() error = %v", err)
	}
	if !called || !tx.InTransaction() {
		t.Error("expected fn to run inside the open transaction")
	}
}
