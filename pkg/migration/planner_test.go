package migration

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marshallshelly/agroexport/pkg/schema"
)

func strPtr(s string) *string { return &s }

func categoriesTable() *schema.TableMetadata {
	return &schema.TableMetadata{
		Name: "categories",
		Columns: []schema.ColumnMetadata{
			{Name: "id", SQLType: "uuid", Default: strPtr("gen_random_uuid()")},
			{Name: "name", SQLType: "text"},
			{Name: "slug", SQLType: "text", Unique: true},
		},
		PrimaryKey: &schema.PrimaryKeyMetadata{Name: "categories_pkey", Columns: []string{"id"}},
	}
}

func productsTable() *schema.TableMetadata {
	return &schema.TableMetadata{
		Name: "products",
		Columns: []schema.ColumnMetadata{
			{Name: "id", SQLType: "uuid", Default: strPtr("gen_random_uuid()")},
			{Name: "category_id", SQLType: "uuid", Nullable: true},
			{Name: "availability", SQLType: "text", Default: strPtr("'in-stock'")},
		},
		PrimaryKey: &schema.PrimaryKeyMetadata{Name: "products_pkey", Columns: []string{"id"}},
		ForeignKeys: []schema.ForeignKeyMetadata{{
			Name:              "fk_products_category_id",
			Columns:           []string{"category_id"},
			ReferencedTable:   "categories",
			ReferencedColumns: []string{"id"},
			OnDelete:          schema.SetNull,
		}},
		Indexes: []schema.IndexMetadata{{
			Name: "idx_products_category_id", Table: "products", Columns: []string{"category_id"}, Type: "btree",
		}},
		Constraints: []schema.ConstraintMetadata{{
			Name:       "products_availability_check",
			Type:       schema.CheckConstraint,
			Columns:    []string{"availability"},
			Expression: "availability IN ('in-stock','limited')",
		}},
	}
}

func relationsTable() *schema.TableMetadata {
	return &schema.TableMetadata{
		Name: "product_relations",
		Columns: []schema.ColumnMetadata{
			{Name: "id", SQLType: "uuid"},
			{Name: "product_id", SQLType: "uuid"},
			{Name: "related_product_id", SQLType: "uuid"},
		},
		PrimaryKey: &schema.PrimaryKeyMetadata{Name: "product_relations_pkey", Columns: []string{"id"}},
		ForeignKeys: []schema.ForeignKeyMetadata{
			{Name: "fk_product_relations_product_id", Columns: []string{"product_id"}, ReferencedTable: "products", ReferencedColumns: []string{"id"}, OnDelete: schema.Cascade},
			{Name: "fk_product_relations_related_product_id", Columns: []string{"related_product_id"}, ReferencedTable: "products", ReferencedColumns: []string{"id"}, OnDelete: schema.Cascade},
		},
		Constraints: []schema.ConstraintMetadata{{
			Name:    "product_relations_pair_key",
			Type:    schema.UniqueConstraint,
			Columns: []string{"product_id", "related_product_id"},
		}},
	}
}

func tableNames(tables []*schema.TableMetadata) []string {
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.Name
	}
	return names
}

func TestSortByDependency(t *testing.T) {
	tests := []struct {
		name  string
		input []*schema.TableMetadata
		want  []string
	}{
		{
			name:  "already ordered",
			input: []*schema.TableMetadata{categoriesTable(), productsTable(), relationsTable()},
			want:  []string{"categories", "products", "product_relations"},
		},
		{
			name:  "reversed",
			input: []*schema.TableMetadata{relationsTable(), productsTable(), categoriesTable()},
			want:  []string{"categories", "products", "product_relations"},
		},
		{
			name:  "missing referenced table is ignored",
			input: []*schema.TableMetadata{relationsTable()},
			want:  []string{"product_relations"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SortByDependency(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, tableNames(got))
		})
	}
}

func TestSortByDependency_Cycle(t *testing.T) {
	a := &schema.TableMetadata{Name: "a", ForeignKeys: []schema.ForeignKeyMetadata{{ReferencedTable: "b"}}}
	b := &schema.TableMetadata{Name: "b", ForeignKeys: []schema.ForeignKeyMetadata{{ReferencedTable: "a"}}}

	_, err := SortByDependency([]*schema.TableMetadata{a, b})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestPlanner_CreateSchema(t *testing.T) {
	up, down, err := NewPlanner().CreateSchema([]*schema.TableMetadata{productsTable(), categoriesTable()})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(up, "CREATE EXTENSION IF NOT EXISTS pgcrypto;"))
	categoriesAt := strings.Index(up, "CREATE TABLE IF NOT EXISTS categories")
	productsAt := strings.Index(up, "CREATE TABLE IF NOT EXISTS products")
	require.NotEqual(t, -1, categoriesAt)
	require.NotEqual(t, -1, productsAt)
	assert.Less(t, categoriesAt, productsAt, "referenced table is created first")

	assert.Contains(t, up, "    id uuid NOT NULL DEFAULT gen_random_uuid() PRIMARY KEY")
	assert.Contains(t, up, "    slug text NOT NULL UNIQUE")
	assert.Contains(t, up, "    category_id uuid,")
	assert.Contains(t, up, "CONSTRAINT fk_products_category_id FOREIGN KEY (category_id) REFERENCES categories (id) ON DELETE SET NULL")
	assert.Contains(t, up, "CONSTRAINT products_availability_check CHECK (availability IN ('in-stock','limited'))")
	assert.Contains(t, up, "CREATE INDEX IF NOT EXISTS idx_products_category_id ON products (category_id);")

	assert.Equal(t, "DROP TABLE IF EXISTS products CASCADE;\nDROP TABLE IF EXISTS categories CASCADE;\n", down)
}

func TestPlanner_CompositeUnique(t *testing.T) {
	p := NewPlannerWithOptions(PlannerOptions{IfNotExists: false})
	sql := p.generateCreateTable(relationsTable())

	assert.True(t, strings.HasPrefix(sql, "CREATE TABLE product_relations ("))
	assert.Contains(t, sql, "CONSTRAINT product_relations_pair_key UNIQUE (product_id, related_product_id)")
	assert.Contains(t, sql, "REFERENCES products (id) ON DELETE CASCADE")
}

func TestPlanner_CreateIndex(t *testing.T) {
	tests := []struct {
		name string
		opts PlannerOptions
		idx  schema.IndexMetadata
		want string
	}{
		{
			name: "btree",
			opts: PlannerOptions{},
			idx:  schema.IndexMetadata{Name: "idx_a", Columns: []string{"a"}, Type: "btree"},
			want: "CREATE INDEX idx_a ON t (a);",
		},
		{
			name: "unique gin if not exists",
			opts: PlannerOptions{IfNotExists: true},
			idx:  schema.IndexMetadata{Name: "idx_b", Columns: []string{"b", "c"}, Unique: true, Type: "gin"},
			want: "CREATE UNIQUE INDEX IF NOT EXISTS idx_b ON t USING gin (b, c);",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewPlannerWithOptions(tt.opts).generateCreateIndex("t", tt.idx)
			assert.Equal(t, tt.want, got)
		})
	}
}
