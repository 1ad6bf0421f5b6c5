package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/marshallshelly/agroexport/pkg/builder"
	"github.com/marshallshelly/agroexport/pkg/catalog"
	"github.com/marshallshelly/agroexport/pkg/runtime"
)

// HomepagePatch changes a homepage row. Nil fields are left alone.
type HomepagePatch struct {
	DisplayOrder *int  `json:"display_order,omitempty"`
	IsActive     *bool `json:"is_active,omitempty"`
}

// Homepage curates the products and posts shown on the homepage.
type Homepage struct {
	db       *builder.DB
	products *Products
	blog     *Blog
	log      *zap.Logger
}

// Products returns the active homepage products in display order, each with
// its category, images and packages. Rows whose product is gone are dropped.
func (h *Homepage) Products(ctx context.Context) ([]catalog.HomepageProduct, error) {
	rows, err := builder.Select[catalog.HomepageProduct](h.db).
		Where(builder.Eq("is_active", true)).
		OrderByAsc("display_order").
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list homepage products: %w", err)
	}
	return h.joinProducts(ctx, rows, true)
}

// AllProducts returns every homepage product row for the admin screen.
func (h *Homepage) AllProducts(ctx context.Context) ([]catalog.HomepageProduct, error) {
	rows, err := builder.Select[catalog.HomepageProduct](h.db).OrderByAsc("display_order").All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list homepage products: %w", err)
	}
	return h.joinProducts(ctx, rows, false)
}

func (h *Homepage) joinProducts(ctx context.Context, rows []catalog.HomepageProduct, public bool) ([]catalog.HomepageProduct, error) {
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ProductID
	}
	products, err := h.products.byIDs(ctx, ids, public)
	if err != nil {
		return nil, err
	}
	out := make([]catalog.HomepageProduct, 0, len(rows))
	for _, r := range rows {
		r.Product = products[r.ProductID]
		if r.Product == nil && public {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// AddProduct puts a product on the homepage as an active row.
func (h *Homepage) AddProduct(ctx context.Context, productID string, order int) (*catalog.HomepageProduct, error) {
	if err := requireID("product_id", productID); err != nil {
		return nil, err
	}
	row, err := builder.Insert[catalog.HomepageProduct](h.db).One(ctx, catalog.HomepageProduct{
		ProductID:    productID,
		DisplayOrder: order,
		IsActive:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("add homepage product: %w", err)
	}
	return row, nil
}

// RemoveProduct takes a product off the homepage.
func (h *Homepage) RemoveProduct(ctx context.Context, productID string) error {
	if err := requireID("product_id", productID); err != nil {
		return err
	}
	err := builder.Delete[catalog.HomepageProduct](h.db).Where(builder.Eq("product_id", productID)).One(ctx)
	if err != nil {
		return fmt.Errorf("remove homepage product %s: %w", productID, err)
	}
	return nil
}

// UpdateProduct applies patch to the homepage product row id.
func (h *Homepage) UpdateProduct(ctx context.Context, id string, patch HomepagePatch) (*catalog.HomepageProduct, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	q := builder.Update[catalog.HomepageProduct](h.db)
	if err := applyHomepagePatch(q, patch); err != nil {
		return nil, err
	}
	row, err := q.Where(builder.Eq("id", id)).One(ctx)
	if err != nil {
		return nil, fmt.Errorf("update homepage product %s: %w", id, err)
	}
	return row, nil
}

// SwapProducts exchanges the display order of two homepage product rows.
func (h *Homepage) SwapProducts(ctx context.Context, idA, idB string) error {
	return swapOrder(ctx, h.db, idA, idB, func(r catalog.HomepageProduct) (string, int) {
		return r.ID, r.DisplayOrder
	})
}

// Posts returns the active homepage posts in display order with their
// categories. Rows whose post is gone or unpublished are dropped.
func (h *Homepage) Posts(ctx context.Context) ([]catalog.HomepageBlogPost, error) {
	rows, err := builder.Select[catalog.HomepageBlogPost](h.db).
		Where(builder.Eq("is_active", true)).
		OrderByAsc("display_order").
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list homepage posts: %w", err)
	}
	return h.joinPosts(ctx, rows, true)
}

// AllPosts returns every homepage post row for the admin screen.
func (h *Homepage) AllPosts(ctx context.Context) ([]catalog.HomepageBlogPost, error) {
	rows, err := builder.Select[catalog.HomepageBlogPost](h.db).OrderByAsc("display_order").All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list homepage posts: %w", err)
	}
	return h.joinPosts(ctx, rows, false)
}

func (h *Homepage) joinPosts(ctx context.Context, rows []catalog.HomepageBlogPost, public bool) ([]catalog.HomepageBlogPost, error) {
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.BlogPostID
	}
	posts, err := h.blog.byIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]catalog.HomepageBlogPost, 0, len(rows))
	for _, r := range rows {
		r.BlogPost = posts[r.BlogPostID]
		if public && (r.BlogPost == nil || !catalog.PostVisible(*r.BlogPost)) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// AddPost puts a blog post on the homepage as an active row.
func (h *Homepage) AddPost(ctx context.Context, postID string, order int) (*catalog.HomepageBlogPost, error) {
	if err := requireID("blog_post_id", postID); err != nil {
		return nil, err
	}
	row, err := builder.Insert[catalog.HomepageBlogPost](h.db).One(ctx, catalog.HomepageBlogPost{
		BlogPostID:   postID,
		DisplayOrder: order,
		IsActive:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("add homepage post: %w", err)
	}
	return row, nil
}

// RemovePost takes a blog post off the homepage.
func (h *Homepage) RemovePost(ctx context.Context, postID string) error {
	if err := requireID("blog_post_id", postID); err != nil {
		return err
	}
	err := builder.Delete[catalog.HomepageBlogPost](h.db).Where(builder.Eq("blog_post_id", postID)).One(ctx)
	if err != nil {
		return fmt.Errorf("remove homepage post %s: %w", postID, err)
	}
	return nil
}

// UpdatePost applies patch to the homepage post row id.
func (h *Homepage) UpdatePost(ctx context.Context, id string, patch HomepagePatch) (*catalog.HomepageBlogPost, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	q := builder.Update[catalog.HomepageBlogPost](h.db)
	if err := applyHomepagePatch(q, patch); err != nil {
		return nil, err
	}
	row, err := q.Where(builder.Eq("id", id)).One(ctx)
	if err != nil {
		return nil, fmt.Errorf("update homepage post %s: %w", id, err)
	}
	return row, nil
}

// SwapPosts exchanges the display order of two homepage post rows.
func (h *Homepage) SwapPosts(ctx context.Context, idA, idB string) error {
	return swapOrder(ctx, h.db, idA, idB, func(r catalog.HomepageBlogPost) (string, int) {
		return r.ID, r.DisplayOrder
	})
}

func applyHomepagePatch[T any](q *builder.UpdateQuery[T], patch HomepagePatch) error {
	if patch.DisplayOrder != nil {
		q.Set("display_order", *patch.DisplayOrder)
	}
	if patch.IsActive != nil {
		q.Set("is_active", *patch.IsActive)
	}
	if !q.HasSets() {
		return runtime.Invalid("patch", "nothing to update")
	}
	q.SetExpr("updated_at", "NOW()")
	return nil
}

// swapOrder exchanges the display_order of rows a and b of T inside one
// transaction, locking both rows first.
func swapOrder[T any](ctx context.Context, db *builder.DB, a, b string, key func(T) (string, int)) error {
	if err := requireIDs("id", a, b); err != nil {
		return err
	}
	if a == b {
		return runtime.Invalid("id", "cannot swap a row with itself")
	}
	return db.InTx(ctx, func(tx *builder.DB) error {
		rows, err := builder.Select[T](tx).Where(builder.Any("id", []string{a, b})).ForUpdate().All(ctx)
		if err != nil {
			return fmt.Errorf("lock rows: %w", err)
		}
		if len(rows) != 2 {
			return fmt.Errorf("swap %s and %s: %w", a, b, runtime.ErrNotFound)
		}
		order := make(map[string]int, 2)
		for _, r := range rows {
			id, o := key(r)
			order[id] = o
		}
		for id, other := range map[string]string{a: b, b: a} {
			_, err := builder.Update[T](tx).
				Set("display_order", order[other]).
				SetExpr("updated_at", "NOW()").
				Where(builder.Eq("id", id)).
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("reorder %s: %w", id, err)
			}
		}
		return nil
	})
}
