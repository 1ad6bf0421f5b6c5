package catalog

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marshallshelly/agroexport/pkg/migration"
	"github.com/marshallshelly/agroexport/pkg/runtime"
	"github.com/marshallshelly/agroexport/pkg/schema"
)

func parseModels(t *testing.T) []*schema.TableMetadata {
	t.Helper()
	p := schema.NewParser()
	var tables []*schema.TableMetadata
	for _, m := range Models() {
		table, err := p.Parse(reflect.TypeOf(m))
		require.NoError(t, err, "%T", m)
		tables = append(tables, table)
	}
	return tables
}

func TestModels_Parse(t *testing.T) {
	tables := parseModels(t)
	require.Len(t, tables, 13)

	byName := make(map[string]*schema.TableMetadata)
	for _, tbl := range tables {
		byName[tbl.Name] = tbl
		require.NotNil(t, tbl.PrimaryKey, tbl.Name)
		assert.Equal(t, []string{"id"}, tbl.PrimaryKey.Columns, tbl.Name)
	}

	rel := byName["product_relations"]
	require.NotNil(t, rel)
	var unique *schema.ConstraintMetadata
	for i, c := range rel.Constraints {
		if c.Type == schema.UniqueConstraint {
			unique = &rel.Constraints[i]
		}
	}
	require.NotNil(t, unique, "relation triple must be unique")
	assert.Equal(t, "product_relations_triple_key", unique.Name)
	assert.Equal(t, []string{"product_id", "related_product_id", "relation_type"}, unique.Columns)
	assert.Equal(t, []string{"products"}, rel.References())

	products := byName["products"]
	assert.Nil(t, products.GetColumnByField("Category"), "embedded relations are not columns")
	assert.Equal(t, "text[]", products.GetColumnByName("features").SQLType)
}

func TestModels_AreInDependencyOrder(t *testing.T) {
	tables := parseModels(t)
	sorted, err := migration.SortByDependency(tables)
	require.NoError(t, err)

	for i := range tables {
		assert.Equal(t, tables[i].Name, sorted[i].Name, "Models() must list referenced tables first")
	}
}

func TestVisibility(t *testing.T) {
	assert.True(t, ProductVisible(Product{}))
	assert.True(t, PostVisible(BlogPost{Published: true}))
	assert.False(t, PostVisible(BlogPost{Published: false}))

	cond := PublishedCondition()
	assert.Equal(t, "published", cond.Column)
	assert.Equal(t, true, cond.Value)
}

func TestParse(t *testing.T) {
	status, err := Parse[QuoteStatus]("reviewed")
	require.NoError(t, err)
	assert.Equal(t, QuoteReviewed, status)

	_, err = Parse[QuoteStatus]("archived")
	assert.Error(t, err)

	rt, err := Parse[PostRelationType]("follow_up")
	require.NoError(t, err)
	assert.Equal(t, PostFollowUp, rt)

	_, err = Parse[ProductRelationType]("follow_up")
	assert.Error(t, err, "follow_up is a post-only relation type")

	_, err = Parse[Availability]("in-stock")
	assert.NoError(t, err)
	_, err = Parse[MessageStatus]("")
	assert.Error(t, err)
}

func TestQuoteInput_Validate(t *testing.T) {
	valid := QuoteInput{CustomerName: "Ada", CustomerEmail: "ada@example.com", Quantity: 10, PackageSize: "25kg"}

	tests := []struct {
		name  string
		edit  func(*QuoteInput)
		field string
	}{
		{"valid", func(*QuoteInput) {}, ""},
		{"missing name", func(in *QuoteInput) { in.CustomerName = "  " }, "customer_name"},
		{"bad email", func(in *QuoteInput) { in.CustomerEmail = "ada" }, "customer_email"},
		{"display-name email", func(in *QuoteInput) { in.CustomerEmail = "Ada <ada@example.com>" }, "customer_email"},
		{"zero quantity", func(in *QuoteInput) { in.Quantity = 0 }, "quantity"},
		{"missing package", func(in *QuoteInput) { in.PackageSize = "" }, "package_size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.edit(&in)
			err := in.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var verr *runtime.ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	req := valid.QuoteRequest()
	assert.Equal(t, QuotePending, req.Status)
	assert.Equal(t, 10, req.Quantity)
}

func TestContactInput_Validate(t *testing.T) {
	in := ContactInput{Name: "Bo", Email: "bo@example.com", Subject: "Prices", Message: "Hello"}
	require.NoError(t, in.Validate())
	assert.Equal(t, MessageUnread, in.ContactMessage().Status)

	in.Message = ""
	var verr *runtime.ValidationError
	require.ErrorAs(t, in.Validate(), &verr)
	assert.Equal(t, "message", verr.Field)
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Market News":     "market-news",
		"  Farming  Tips ": "farming-tips",
		"legumes":         "legumes",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestValidateProduct(t *testing.T) {
	assert.NoError(t, ValidateProduct(Product{Name: "Rice", Slug: "rice"}))
	assert.Error(t, ValidateProduct(Product{Name: "Rice"}))
	assert.Error(t, ValidateProduct(Product{Name: "Rice", Slug: "rice", BasePrice: -1}))
	assert.Error(t, ValidateProduct(Product{Name: "Rice", Slug: "rice", Availability: "sold"}))
}
