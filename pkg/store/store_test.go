package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marshallshelly/agroexport/pkg/builder"
	"github.com/marshallshelly/agroexport/pkg/catalog"
	"github.com/marshallshelly/agroexport/pkg/runtime"
)

const (
	idA = "8f14e45f-ceea-467f-a0e6-1b2c3d4e5f60"
	idB = "c9f0f895-fb98-4b91-9f43-2b3c4d5e6f70"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(builder.New(nil), nil)
	require.NoError(t, err)
	return s
}

func boolPtr(b bool) *bool { return &b }

func intPtr(i int) *int { return &i }

func strPtr(s string) *string { return &s }

func TestProductListQuery(t *testing.T) {
	db := builder.New(nil)
	require.NoError(t, RegisterModels())

	tests := []struct {
		name       string
		filter     ProductFilter
		categoryID string
		wantSQL    string
		wantArgs   []any
	}{
		{
			name:    "default sorts by name",
			wantSQL: "SELECT * FROM products ORDER BY name ASC",
		},
		{
			name:       "all filters",
			filter:     ProductFilter{Availability: "limited", Search: "50%", Sort: SortByPriceHigh},
			categoryID: idA,
			wantSQL:    "SELECT * FROM products WHERE category_id = $1 AND availability = $2 AND (name ILIKE $3 OR description ILIKE $4) ORDER BY base_price DESC",
			wantArgs:   []any{idA, "limited", `%50\%%`, `%50\%%`},
		},
		{
			name:    "availability all is ignored",
			filter:  ProductFilter{Availability: "all", Sort: SortByPriceLow},
			wantSQL: "SELECT * FROM products ORDER BY base_price ASC",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := productListQuery(db, tt.filter, tt.categoryID).ToSQL()
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			if tt.wantArgs != nil {
				assert.Equal(t, tt.wantArgs, args)
			} else {
				assert.Empty(t, args)
			}
		})
	}
}

func TestPostListQuery(t *testing.T) {
	db := builder.New(nil)
	require.NoError(t, RegisterModels())

	tests := []struct {
		name       string
		filter     PostFilter
		categoryID string
		wantSQL    string
		wantArgs   int
	}{
		{
			name:     "public default",
			wantSQL:  "SELECT * FROM blog_posts WHERE published = $1 ORDER BY published_at DESC",
			wantArgs: 1,
		},
		{
			name:       "category search and page",
			filter:     PostFilter{Search: "soy", Limit: 5, Offset: 10},
			categoryID: idA,
			wantSQL:    "SELECT * FROM blog_posts WHERE category_id = $1 AND published = $2 AND (title ILIKE $3 OR excerpt ILIKE $4) ORDER BY published_at DESC LIMIT 5 OFFSET 10",
			wantArgs:   4,
		},
		{
			name:     "offset without limit uses page size",
			filter:   PostFilter{Offset: 3, Published: boolPtr(false)},
			wantSQL:  "SELECT * FROM blog_posts WHERE published = $1 ORDER BY published_at DESC LIMIT 10 OFFSET 3",
			wantArgs: 1,
		},
		{
			name:     "any state",
			filter:   PostFilter{AnyState: true},
			wantSQL:  "SELECT * FROM blog_posts ORDER BY published_at DESC",
			wantArgs: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := postListQuery(db, tt.filter, tt.categoryID).ToSQL()
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Len(t, args, tt.wantArgs)
		})
	}
}

func TestRelationQueries(t *testing.T) {
	db := builder.New(nil)
	require.NoError(t, RegisterModels())

	sql, args, err := productRelationQuery(db, idA).Limit(4).Offset(8).ToSQL()
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM product_relations WHERE product_id = $1 ORDER BY display_order ASC, created_at ASC, id ASC LIMIT 4 OFFSET 8", sql)
	assert.Equal(t, []any{idA}, args)

	sql, _, err = postRelationQuery(db, idA).ToSQL()
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM blog_post_relations WHERE blog_post_id = $1 ORDER BY display_order ASC, created_at ASC, id ASC", sql)
}

func TestRefCondition(t *testing.T) {
	assert.Equal(t, "id", refCondition(idA).Column)
	assert.Equal(t, "slug", refCondition("red-lentils").Column)
}

func TestRelations_Validation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		call  func() error
		field string
	}{
		{"self product relation", func() error {
			_, err := s.Relations.AddProductRelation(ctx, idA, idA, "", 0)
			return err
		}, "related_product_id"},
		{"self post relation", func() error {
			_, err := s.Relations.AddPostRelation(ctx, idB, idB, "related", 0)
			return err
		}, "related_blog_post_id"},
		{"unknown product relation type", func() error {
			_, err := s.Relations.AddProductRelation(ctx, idA, idB, "follow_up", 0)
			return err
		}, "relation_type"},
		{"unknown post relation type", func() error {
			_, err := s.Relations.AddPostRelation(ctx, idA, idB, "complementary", 0)
			return err
		}, "relation_type"},
		{"malformed id", func() error {
			_, err := s.Relations.AddProductRelation(ctx, "abc", idB, "", 0)
			return err
		}, "product_id"},
		{"empty patch", func() error {
			_, err := s.Relations.UpdateProductRelation(ctx, idA, RelationPatch{})
			return err
		}, "patch"},
		{"empty relation type in patch", func() error {
			_, err := s.Relations.UpdatePostRelation(ctx, idA, RelationPatch{RelationType: strPtr("")})
			return err
		}, "relation_type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var verr *runtime.ValidationError
			require.ErrorAs(t, tt.call(), &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestHomepage_Validation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var verr *runtime.ValidationError
	_, err := s.Homepage.UpdateProduct(ctx, idA, HomepagePatch{})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "patch", verr.Field)

	err = s.Homepage.SwapProducts(ctx, idA, idA)
	require.ErrorAs(t, err, &verr)

	err = s.Homepage.SwapPosts(ctx, idA, "nope")
	require.ErrorAs(t, err, &verr)
}

func TestHomepage_SwapNeedsConnection(t *testing.T) {
	s := newTestStore(t)
	err := s.Homepage.SwapPosts(context.Background(), idA, idB)
	assert.ErrorIs(t, err, runtime.ErrNoConnection)
}

func TestApplyHomepagePatch(t *testing.T) {
	require.NoError(t, RegisterModels())
	q := builder.Update[catalog.HomepageProduct](builder.New(nil))
	require.NoError(t, applyHomepagePatch(q, HomepagePatch{DisplayOrder: intPtr(2), IsActive: boolPtr(false)}))

	sql, args, err := q.Where(builder.Eq("id", idA)).ToSQL()
	require.NoError(t, err)
	assert.Equal(t, "UPDATE homepage_products SET display_order = $1, is_active = $2, updated_at = NOW() WHERE id = $3", sql)
	assert.Equal(t, []any{2, false, idA}, args)
}

func TestSubmit_Validation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Quotes.Submit(ctx, catalog.QuoteInput{CustomerName: "Ada", CustomerEmail: "ada@example.com", PackageSize: "1kg"})
	var verr *runtime.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "quantity", verr.Field)

	_, err = s.Contact.Submit(ctx, catalog.ContactInput{Name: "Bo"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "email", verr.Field)

	_, err = s.Quotes.List(ctx, "archived")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "status", verr.Field)

	_, err = s.Contact.UpdateStatus(ctx, idA, "deleted")
	require.ErrorAs(t, err, &verr)
}

func TestStore_NoConnection(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Products.Categories(context.Background())
	assert.True(t, errors.Is(err, runtime.ErrNoConnection), "got %v", err)
}

func TestRelatedAdapters_MalformedIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rows, err := s.ProductRelated().ListRelations(ctx, "not-an-id", 0, 4)
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, err = s.PostRelated().GetItem(ctx, "not-an-id")
	assert.ErrorIs(t, err, runtime.ErrNotFound)

	posts, err := s.PostRelated().ListByCategory(ctx, "legumes", idA, 3)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestCountStatuses(t *testing.T) {
	stats := countStatuses(catalog.MessageStatuses, []catalog.MessageStatus{
		catalog.MessageUnread, catalog.MessageUnread, catalog.MessageResponded,
	})
	assert.Equal(t, Stats{"total": 3, "unread": 2, "read": 0, "responded": 1}, stats)

	empty := countStatuses(catalog.QuoteStatuses, nil)
	assert.Equal(t, Stats{"total": 0, "pending": 0, "reviewed": 0, "responded": 0, "closed": 0}, empty)
}
