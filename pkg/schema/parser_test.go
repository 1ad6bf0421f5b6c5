package schema

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCategory struct {
	ID   string `po:"id,primaryKey,uuid,default(gen_random_uuid())"`
	Name string `po:"name,text,notNull"`
	Slug string `po:"slug,text,unique,notNull"`
}

func (testCategory) TableName() string { return "categories" }

type testItem struct {
	ID           string    `po:"id,primaryKey,uuid,default(gen_random_uuid())"`
	CategoryID   *string   `po:"category_id,uuid,fk(categories.id),onDelete(SET NULL),index"`
	Availability string    `po:"availability,text,notNull,default('in-stock'),check(availability IN ('in-stock','limited'))"`
	Price        float64   `po:"price,numeric(10,2),notNull"`
	Features     []string  `po:"features,text[],default('{}')"`
	CreatedAt    time.Time `po:"created_at,timestamptz,notNull,default(NOW())"`
	Category     *testCategory
	internal     int
}

type testLink struct {
	ID        string `po:"id,primaryKey,uuid"`
	SourceID  string `po:"source_id,uuid,notNull,fk(test_item.id),onDelete(CASCADE),unique(triple)"`
	TargetID  string `po:"target_id,uuid,notNull,fk(test_item.id),onDelete(CASCADE),unique(triple)"`
	Kind      string `po:"kind,text,notNull,unique(triple)"`
	SortOrder int    `po:"sort_order,integer,notNull,default(0)"`
}

func TestParser_Columns(t *testing.T) {
	p := NewParser()
	table, err := p.Parse(reflect.TypeFor[testItem]())
	require.NoError(t, err)

	assert.Equal(t, "test_item", table.Name)
	require.Len(t, table.Columns, 6, "untagged and unexported fields are not columns")

	tests := []struct {
		column   string
		sqlType  string
		nullable bool
		def      string
	}{
		{"id", "uuid", false, "gen_random_uuid()"},
		{"category_id", "uuid", true, ""},
		{"availability", "text", false, "'in-stock'"},
		{"price", "numeric(10,2)", false, ""},
		{"features", "text[]", true, "'{}'"},
		{"created_at", "timestamptz", false, "NOW()"},
	}
	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			col := table.GetColumnByName(tt.column)
			if col == nil {
				t.Fatalf("column %s not found", tt.column)
			}
			if col.SQLType != tt.sqlType {
				t.Errorf("SQLType = %q, want %q", col.SQLType, tt.sqlType)
			}
			if col.Nullable != tt.nullable {
				t.Errorf("Nullable = %v, want %v", col.Nullable, tt.nullable)
			}
			got := ""
			if col.Default != nil {
				got = *col.Default
			}
			if got != tt.def {
				t.Errorf("Default = %q, want %q", got, tt.def)
			}
		})
	}

	require.NotNil(t, table.PrimaryKey)
	assert.Equal(t, []string{"id"}, table.PrimaryKey.Columns)
	assert.True(t, table.IsPrimaryKey("id"))
	assert.Equal(t, "CategoryID", table.GetColumnByName("category_id").GoField)
	assert.Equal(t, "price", table.GetColumnByField("Price").Name)
}

func TestParser_ForeignKeysIndexesChecks(t *testing.T) {
	p := NewParser()
	table, err := p.Parse(reflect.TypeFor[*testItem]())
	require.NoError(t, err)

	require.Len(t, table.ForeignKeys, 1)
	fk := table.ForeignKeys[0]
	assert.Equal(t, "fk_test_item_category_id", fk.Name)
	assert.Equal(t, "categories", fk.ReferencedTable)
	assert.Equal(t, []string{"id"}, fk.ReferencedColumns)
	assert.Equal(t, SetNull, fk.OnDelete)
	assert.Equal(t, NoAction, fk.OnUpdate)

	require.Len(t, table.Indexes, 1)
	assert.Equal(t, "idx_test_item_category_id", table.Indexes[0].Name)
	assert.Equal(t, "btree", table.Indexes[0].Type)

	require.Len(t, table.Constraints, 1)
	assert.Equal(t, CheckConstraint, table.Constraints[0].Type)
	assert.Equal(t, "availability IN ('in-stock','limited')", table.Constraints[0].Expression)

	assert.Equal(t, []string{"categories"}, table.References())
}

func TestParser_CompositeUnique(t *testing.T) {
	table, err := NewParser().Parse(reflect.TypeFor[testLink]())
	require.NoError(t, err)

	require.Len(t, table.Constraints, 1)
	c := table.Constraints[0]
	assert.Equal(t, UniqueConstraint, c.Type)
	assert.Equal(t, "test_link_triple_key", c.Name)
	assert.Equal(t, []string{"source_id", "target_id", "kind"}, c.Columns)

	for _, name := range c.Columns {
		if table.GetColumnByName(name).Unique {
			t.Errorf("column %s should not carry a single-column UNIQUE", name)
		}
	}
	assert.Len(t, table.ForeignKeys, 2)
	assert.Empty(t, table.References(), "self references are not dependencies")
}

func TestParser_TableName(t *testing.T) {
	type PlainModel struct {
		ID string `po:"id,primaryKey,uuid"`
	}
	type RegisteredModel struct {
		ID string `po:"id,primaryKey,uuid"`
	}
	RegisterTableName("RegisteredModel", "registered_things")

	assert.Equal(t, "categories", TableNameOf(reflect.TypeFor[testCategory]()))
	assert.Equal(t, "plain_model", TableNameOf(reflect.TypeFor[PlainModel]()))
	assert.Equal(t, "registered_things", TableNameOf(reflect.TypeFor[RegisteredModel]()))
}

func TestParser_Errors(t *testing.T) {
	type badDefault struct {
		ID string `po:"id,primaryKey,uuid,default(gen random uuid)"`
	}
	type untyped struct {
		Data map[int]int `po:"data"`
	}

	p := NewParser()
	if _, err := p.Parse(reflect.TypeFor[badDefault]()); err == nil {
		t.Error("expected an error for a malformed default")
	}
	if _, err := p.Parse(reflect.TypeFor[untyped]()); err == nil {
		t.Error("expected an error for a field with no PostgreSQL type")
	}
	if _, err := p.Parse(reflect.TypeFor[string]()); err == nil {
		t.Error("expected an error for a non-struct")
	}
}

func TestParser_Cache(t *testing.T) {
	p := NewParser()
	a, err := p.Parse(reflect.TypeFor[testCategory]())
	require.NoError(t, err)
	b, err := p.Parse(reflect.TypeFor[*testCategory]())
	require.NoError(t, err)
	if a != b {
		t.Error("expected the cached metadata to be reused")
	}
}

func TestSplitTag(t *testing.T) {
	got := splitTag("status,text,check(status IN ('a','b')),default('a')")
	want := []string{"status", "text", "check(status IN ('a','b'))", "default('a')"}
	assert.Equal(t, want, got)
}
