package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/marshallshelly/agroexport/pkg/builder"
	"github.com/marshallshelly/agroexport/pkg/catalog"
	"github.com/marshallshelly/agroexport/pkg/runtime"
)

// RelationPatch changes a curated relation. Nil fields are left alone.
type RelationPatch struct {
	RelationType *string `json:"relation_type,omitempty"`
	DisplayOrder *int    `json:"display_order,omitempty"`
}

// Relations manages curated product and blog post relations.
type Relations struct {
	db       *builder.DB
	products *Products
	blog     *Blog
	log      *zap.Logger
}

// ProductRelations returns the curated relations of productID in display
// order, each with the related product when it still exists.
func (r *Relations) ProductRelations(ctx context.Context, productID string) ([]catalog.ProductRelation, error) {
	if err := requireID("product_id", productID); err != nil {
		return nil, err
	}
	rows, err := productRelationQuery(r.db, productID).All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list product relations: %w", err)
	}
	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.RelatedProductID
	}
	products, err := r.products.byIDs(ctx, ids, false)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].RelatedProduct = products[rows[i].RelatedProductID]
	}
	return nonNil(rows), nil
}

// productRelationQuery orders by id last so pages are stable.
func productRelationQuery(db *builder.DB, productID string) *builder.SelectQuery[catalog.ProductRelation] {
	return builder.Select[catalog.ProductRelation](db).
		Where(builder.Eq("product_id", productID)).
		OrderByAsc("display_order").
		OrderByAsc("created_at").
		OrderByAsc("id")
}

// AddProductRelation links productID to relatedID. An empty relation type
// means "related". Linking a product to itself is rejected, as is a repeated
// (source, target, type) triple, which surfaces as runtime.ErrDuplicateKey.
func (r *Relations) AddProductRelation(ctx context.Context, productID, relatedID, relationType string, order int) (*catalog.ProductRelation, error) {
	if err := requireIDs("product_id", productID, relatedID); err != nil {
		return nil, err
	}
	if productID == relatedID {
		return nil, runtime.Invalid("related_product_id", "a product cannot be related to itself")
	}
	rt, err := parseRelationType[catalog.ProductRelationType](relationType, catalog.ProductRelated)
	if err != nil {
		return nil, err
	}
	row, err := builder.Insert[catalog.ProductRelation](r.db).One(ctx, catalog.ProductRelation{
		ProductID:        productID,
		RelatedProductID: relatedID,
		RelationType:     rt,
		DisplayOrder:     order,
	})
	if err != nil {
		return nil, fmt.Errorf("add product relation: %w", err)
	}
	r.log.Info("product relation added",
		zap.String("product_id", productID),
		zap.String("related_product_id", relatedID),
		zap.String("type", string(rt)))
	return row, nil
}

// UpdateProductRelation applies patch to the relation id.
func (r *Relations) UpdateProductRelation(ctx context.Context, id string, patch RelationPatch) (*catalog.ProductRelation, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	q := builder.Update[catalog.ProductRelation](r.db)
	if err := applyRelationPatch[catalog.ProductRelationType](q, patch); err != nil {
		return nil, err
	}
	row, err := q.Where(builder.Eq("id", id)).One(ctx)
	if err != nil {
		return nil, fmt.Errorf("update product relation %s: %w", id, err)
	}
	return row, nil
}

// RemoveProductRelation deletes the relation id.
func (r *Relations) RemoveProductRelation(ctx context.Context, id string) error {
	if err := requireID("id", id); err != nil {
		return err
	}
	if err := builder.Delete[catalog.ProductRelation](r.db).Where(builder.Eq("id", id)).One(ctx); err != nil {
		return fmt.Errorf("remove product relation %s: %w", id, err)
	}
	return nil
}

// PostRelations returns the curated relations of postID in display order,
// each with the related post when it still exists.
func (r *Relations) PostRelations(ctx context.Context, postID string) ([]catalog.BlogPostRelation, error) {
	if err := requireID("blog_post_id", postID); err != nil {
		return nil, err
	}
	rows, err := postRelationQuery(r.db, postID).All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list post relations: %w", err)
	}
	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.RelatedBlogPostID
	}
	posts, err := r.blog.byIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].RelatedBlogPost = posts[rows[i].RelatedBlogPostID]
	}
	return nonNil(rows), nil
}

func postRelationQuery(db *builder.DB, postID string) *builder.SelectQuery[catalog.BlogPostRelation] {
	return builder.Select[catalog.BlogPostRelation](db).
		Where(builder.Eq("blog_post_id", postID)).
		OrderByAsc("display_order").
		OrderByAsc("created_at").
		OrderByAsc("id")
}

// AddPostRelation links postID to relatedID, see AddProductRelation.
func (r *Relations) AddPostRelation(ctx context.Context, postID, relatedID, relationType string, order int) (*catalog.BlogPostRelation, error) {
	if err := requireIDs("blog_post_id", postID, relatedID); err != nil {
		return nil, err
	}
	if postID == relatedID {
		return nil, runtime.Invalid("related_blog_post_id", "a post cannot be related to itself")
	}
	rt, err := parseRelationType[catalog.PostRelationType](relationType, catalog.PostRelated)
	if err != nil {
		return nil, err
	}
	row, err := builder.Insert[catalog.BlogPostRelation](r.db).One(ctx, catalog.BlogPostRelation{
		BlogPostID:        postID,
		RelatedBlogPostID: relatedID,
		RelationType:      rt,
		DisplayOrder:      order,
	})
	if err != nil {
		return nil, fmt.Errorf("add post relation: %w", err)
	}
	r.log.Info("post relation added",
		zap.String("blog_post_id", postID),
		zap.String("related_blog_post_id", relatedID),
		zap.String("type", string(rt)))
	return row, nil
}

// UpdatePostRelation applies patch to the relation id.
func (r *Relations) UpdatePostRelation(ctx context.Context, id string, patch RelationPatch) (*catalog.BlogPostRelation, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	q := builder.Update[catalog.BlogPostRelation](r.db)
	if err := applyRelationPatch[catalog.PostRelationType](q, patch); err != nil {
		return nil, err
	}
	row, err := q.Where(builder.Eq("id", id)).One(ctx)
	if err != nil {
		return nil, fmt.Errorf("update post relation %s: %w", id, err)
	}
	return row, nil
}

// RemovePostRelation deletes the relation id.
func (r *Relations) RemovePostRelation(ctx context.Context, id string) error {
	if err := requireID("id", id); err != nil {
		return err
	}
	if err := builder.Delete[catalog.BlogPostRelation](r.db).Where(builder.Eq("id", id)).One(ctx); err != nil {
		return fmt.Errorf("remove post relation %s: %w", id, err)
	}
	return nil
}

type relationType interface {
	~string
	Valid() bool
}

func parseRelationType[E relationType](s string, fallback E) (E, error) {
	if s == "" {
		return fallback, nil
	}
	rt, err := catalog.Parse[E](s)
	if err != nil {
		return rt, runtime.Invalid("relation_type", "%v", err)
	}
	return rt, nil
}

func applyRelationPatch[E relationType, T any](q *builder.UpdateQuery[T], patch RelationPatch) error {
	if patch.RelationType != nil {
		var zero E
		rt, err := parseRelationType(*patch.RelationType, zero)
		if err != nil {
			return err
		}
		if rt == zero {
			return runtime.Invalid("relation_type", "must not be empty")
		}
		q.Set("relation_type", rt)
	}
	if patch.DisplayOrder != nil {
		q.Set("display_order", *patch.DisplayOrder)
	}
	if !q.HasSets() {
		return runtime.Invalid("patch", "nothing to update")
	}
	return nil
}
