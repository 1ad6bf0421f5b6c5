package store

import (
	"context"
	"fmt"

	"github.com/marshallshelly/agroexport/pkg/builder"
	"github.com/marshallshelly/agroexport/pkg/catalog"
	"github.com/marshallshelly/agroexport/pkg/related"
	"github.com/marshallshelly/agroexport/pkg/runtime"
)

// ProductRelated serves the related-item resolver for products.
type ProductRelated struct {
	products *Products
}

// ProductRelated returns the resolver store for products.
func (s *Store) ProductRelated() *ProductRelated {
	return &ProductRelated{products: s.Products}
}

// ListRelations returns curated rows of sourceID in display order. A row whose
// product is gone has a nil Item.
func (pr *ProductRelated) ListRelations(ctx context.Context, sourceID string, offset, limit int) ([]related.Curated[catalog.Product], error) {
	if !isID(sourceID) {
		return nil, nil
	}
	rows, err := productRelationQuery(pr.products.db, sourceID).Limit(limit).Offset(offset).All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list product relations: %w", err)
	}
	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.RelatedProductID
	}
	products, err := pr.products.byIDs(ctx, ids, false)
	if err != nil {
		return nil, err
	}
	out := make([]related.Curated[catalog.Product], len(rows))
	for i, row := range rows {
		out[i] = related.Curated[catalog.Product]{
			RelationID:   row.ID,
			DisplayOrder: row.DisplayOrder,
			Item:         products[row.RelatedProductID],
		}
	}
	return out, nil
}

// ListByCategory returns the newest products of categoryID other than excludeID.
func (pr *ProductRelated) ListByCategory(ctx context.Context, categoryID, excludeID string, limit int) ([]catalog.Product, error) {
	if !isID(categoryID) {
		return nil, nil
	}
	q := builder.Select[catalog.Product](pr.products.db).Where(builder.Eq("category_id", categoryID))
	if isID(excludeID) {
		q.And(builder.NotEq("id", excludeID))
	}
	products, err := q.OrderByDesc("created_at").Limit(limit).All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products by category: %w", err)
	}
	if err := pr.products.attach(ctx, products, false); err != nil {
		return nil, err
	}
	return products, nil
}

// GetItem returns the product id.
func (pr *ProductRelated) GetItem(ctx context.Context, id string) (catalog.Product, error) {
	if !isID(id) {
		return catalog.Product{}, fmt.Errorf("product %q: %w", id, runtime.ErrNotFound)
	}
	p, err := builder.Select[catalog.Product](pr.products.db).Where(builder.Eq("id", id)).First(ctx)
	if err != nil {
		return catalog.Product{}, fmt.Errorf("get product %s: %w", id, err)
	}
	return *p, nil
}

// PostRelated serves the related-item resolver for blog posts.
type PostRelated struct {
	blog *Blog
}

// PostRelated returns the resolver store for blog posts.
func (s *Store) PostRelated() *PostRelated {
	return &PostRelated{blog: s.Blog}
}

// ListRelations returns curated rows of sourceID in display order. Curated
// targets are returned whatever their published state; a row whose post is
// gone has a nil Item.
func (pr *PostRelated) ListRelations(ctx context.Context, sourceID string, offset, limit int) ([]related.Curated[catalog.BlogPost], error) {
	if !isID(sourceID) {
		return nil, nil
	}
	rows, err := postRelationQuery(pr.blog.db, sourceID).Limit(limit).Offset(offset).All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list post relations: %w", err)
	}
	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.RelatedBlogPostID
	}
	posts, err := pr.blog.byIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]related.Curated[catalog.BlogPost], len(rows))
	for i, row := range rows {
		out[i] = related.Curated[catalog.BlogPost]{
			RelationID:   row.ID,
			DisplayOrder: row.DisplayOrder,
			Item:         posts[row.RelatedBlogPostID],
		}
	}
	return out, nil
}

// ListByCategory returns the newest published posts of categoryID other than
// excludeID.
func (pr *PostRelated) ListByCategory(ctx context.Context, categoryID, excludeID string, limit int) ([]catalog.BlogPost, error) {
	if !isID(categoryID) {
		return nil, nil
	}
	q := builder.Select[catalog.BlogPost](pr.blog.db).
		Where(builder.Eq("category_id", categoryID)).
		And(catalog.PublishedCondition())
	if isID(excludeID) {
		q.And(builder.NotEq("id", excludeID))
	}
	posts, err := q.OrderByDesc("published_at").Limit(limit).All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list posts by category: %w", err)
	}
	if err := pr.blog.attach(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetItem returns the post id whatever its state.
func (pr *PostRelated) GetItem(ctx context.Context, id string) (catalog.BlogPost, error) {
	if !isID(id) {
		return catalog.BlogPost{}, fmt.Errorf("post %q: %w", id, runtime.ErrNotFound)
	}
	p, err := builder.Select[catalog.BlogPost](pr.blog.db).Where(builder.Eq("id", id)).First(ctx)
	if err != nil {
		return catalog.BlogPost{}, fmt.Errorf("get post %s: %w", id, err)
	}
	return *p, nil
}

var (
	_ related.Store[catalog.Product]  = (*ProductRelated)(nil)
	_ related.Store[catalog.BlogPost] = (*PostRelated)(nil)
)
