package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/marshallshelly/agroexport/pkg/builder"
	"github.com/marshallshelly/agroexport/pkg/catalog"
	"github.com/marshallshelly/agroexport/pkg/runtime"
)

// Product sort orders accepted by ProductFilter.Sort.
const (
	SortByName      = "name"
	SortByPriceLow  = "price-low"
	SortByPriceHigh = "price-high"
)

// ProductFilter narrows a product listing. Empty fields and "all" do not filter.
type ProductFilter struct {
	CategorySlug string
	Availability string
	Search       string
	Sort         string
}

// Products reads and writes products, their images, packages and categories.
type Products struct {
	db  *builder.DB
	log *zap.Logger
}

// Categories returns every product category ordered by name.
func (p *Products) Categories(ctx context.Context) ([]catalog.Category, error) {
	cats, err := builder.Select[catalog.Category](p.db).OrderByAsc("name").All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return nonNil(cats), nil
}

// List returns the products matching f with images and packages attached.
// An unknown category slug leaves the listing unfiltered.
func (p *Products) List(ctx context.Context, f ProductFilter) ([]catalog.Product, error) {
	var categoryID string
	if f.CategorySlug != "" && f.CategorySlug != "all" {
		cat, err := builder.Select[catalog.Category](p.db).Where(builder.Eq("slug", f.CategorySlug)).First(ctx)
		switch {
		case err == nil:
			categoryID = cat.ID
		case errors.Is(err, runtime.ErrNotFound):
			p.log.Debug("unknown category slug ignored", zap.String("slug", f.CategorySlug))
		default:
			return nil, fmt.Errorf("resolve category %q: %w", f.CategorySlug, err)
		}
	}

	products, err := productListQuery(p.db, f, categoryID).All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if err := p.attach(ctx, products, true); err != nil {
		return nil, err
	}
	return nonNil(products), nil
}

// productListQuery builds the listing query for f. categoryID is the id the
// slug resolved to, empty for no category filter.
func productListQuery(db *builder.DB, f ProductFilter, categoryID string) *builder.SelectQuery[catalog.Product] {
	q := builder.Select[catalog.Product](db)
	if categoryID != "" {
		q.And(builder.Eq("category_id", categoryID))
	}
	if f.Availability != "" && f.Availability != "all" {
		q.And(builder.Eq("availability", f.Availability))
	}
	if f.Search != "" {
		q.And(builder.AnyOf(
			builder.Contains("name", f.Search),
			builder.Contains("description", f.Search),
		))
	}
	switch f.Sort {
	case SortByPriceLow:
		q.OrderByAsc("base_price")
	case SortByPriceHigh:
		q.OrderByDesc("base_price")
	default:
		q.OrderByAsc("name")
	}
	return q
}

// Get returns a product by id or slug with its details attached.
func (p *Products) Get(ctx context.Context, ref string) (*catalog.Product, error) {
	product, err := builder.Select[catalog.Product](p.db).Where(refCondition(ref)).First(ctx)
	if err != nil {
		return nil, fmt.Errorf("get product %q: %w", ref, err)
	}
	products := []catalog.Product{*product}
	if err := p.attach(ctx, products, true); err != nil {
		return nil, err
	}
	return &products[0], nil
}

// refCondition matches an id when ref parses as one, a slug otherwise.
func refCondition(ref string) builder.Condition {
	if isID(ref) {
		return builder.Eq("id", ref)
	}
	return builder.Eq("slug", ref)
}

// byIDs loads products by id with images and category attached. The map is
// keyed by id; missing ids are absent.
func (p *Products) byIDs(ctx context.Context, ids []string, packages bool) (map[string]*catalog.Product, error) {
	out := make(map[string]*catalog.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	products, err := builder.Select[catalog.Product](p.db).Where(builder.Any("id", ids)).All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	if err := p.attach(ctx, products, packages); err != nil {
		return nil, err
	}
	for i := range products {
		out[products[i].ID] = &products[i]
	}
	return out, nil
}

// attach fills category, images (by sort order) and, when asked, packages
// (default first) on every product in place.
func (p *Products) attach(ctx context.Context, products []catalog.Product, packages bool) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]string, len(products))
	var categoryIDs []string
	for i, prod := range products {
		ids[i] = prod.ID
		if prod.CategoryID != nil {
			categoryIDs = append(categoryIDs, *prod.CategoryID)
		}
	}

	images, err := builder.Select[catalog.ProductImage](p.db).
		Where(builder.Any("product_id", ids)).
		OrderByAsc("sort_order").
		All(ctx)
	if err != nil {
		return fmt.Errorf("load product images: %w", err)
	}
	imagesBy := groupBy(images, func(img catalog.ProductImage) string { return img.ProductID })

	var packagesBy map[string][]catalog.ProductPackage
	if packages {
		pkgs, err := builder.Select[catalog.ProductPackage](p.db).
			Where(builder.Any("product_id", ids)).
			OrderByDesc("is_default").
			OrderByAsc("created_at").
			All(ctx)
		if err != nil {
			return fmt.Errorf("load product packages: %w", err)
		}
		packagesBy = groupBy(pkgs, func(pkg catalog.ProductPackage) string { return pkg.ProductID })
	}

	categories := map[string]*catalog.Category{}
	if len(categoryIDs) > 0 {
		cats, err := builder.Select[catalog.Category](p.db).Where(builder.Any("id", categoryIDs)).All(ctx)
		if err != nil {
			return fmt.Errorf("load categories: %w", err)
		}
		for i := range cats {
			categories[cats[i].ID] = &cats[i]
		}
	}

	for i := range products {
		prod := &products[i]
		prod.Images = nonNil(imagesBy[prod.ID])
		if packages {
			prod.Packages = nonNil(packagesBy[prod.ID])
		}
		if prod.CategoryID != nil {
			prod.Category = categories[*prod.CategoryID]
		}
	}
	return nil
}

// Create inserts a product and returns it as stored.
func (p *Products) Create(ctx context.Context, product catalog.Product) (*catalog.Product, error) {
	if err := catalog.ValidateProduct(product); err != nil {
		return nil, err
	}
	if err := optionalID("category_id", product.CategoryID); err != nil {
		return nil, err
	}
	product.ID = ""
	created, err := builder.Insert[catalog.Product](p.db).One(ctx, product)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	p.log.Info("product created", zap.String("id", created.ID), zap.String("slug", created.Slug))
	return created, nil
}

// Update replaces the editable fields of a product.
func (p *Products) Update(ctx context.Context, id string, product catalog.Product) (*catalog.Product, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	if err := catalog.ValidateProduct(product); err != nil {
		return nil, err
	}
	if err := optionalID("category_id", product.CategoryID); err != nil {
		return nil, err
	}
	if product.Availability == "" {
		product.Availability = catalog.InStock
	}
	if product.Features == nil {
		product.Features = []string{}
	}

	updated, err := builder.Update[catalog.Product](p.db).
		Set("name", product.Name).
		Set("slug", product.Slug).
		Set("description", product.Description).
		Set("category_id", product.CategoryID).
		Set("base_price", product.BasePrice).
		Set("availability", product.Availability).
		Set("features", product.Features).
		SetExpr("updated_at", "NOW()").
		Where(builder.Eq("id", id)).
		One(ctx)
	if err != nil {
		return nil, fmt.Errorf("update product %s: %w", id, err)
	}
	return updated, nil
}

// Delete removes a product. Images, packages, relations and homepage rows go
// with it through the schema's cascades.
func (p *Products) Delete(ctx context.Context, id string) error {
	if err := requireID("id", id); err != nil {
		return err
	}
	if err := builder.Delete[catalog.Product](p.db).Where(builder.Eq("id", id)).One(ctx); err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	p.log.Info("product deleted", zap.String("id", id))
	return nil
}

// AddImage attaches an image to a product.
func (p *Products) AddImage(ctx context.Context, productID string, img catalog.ProductImage) (*catalog.ProductImage, error) {
	if err := requireID("product_id", productID); err != nil {
		return nil, err
	}
	if img.ImageURL == "" {
		return nil, runtime.Invalid("image_url", "is required")
	}
	img.ID = ""
	img.ProductID = productID
	created, err := builder.Insert[catalog.ProductImage](p.db).One(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("add product image: %w", err)
	}
	return created, nil
}

// AddPackage attaches a package size to a product.
func (p *Products) AddPackage(ctx context.Context, productID string, pkg catalog.ProductPackage) (*catalog.ProductPackage, error) {
	if err := requireID("product_id", productID); err != nil {
		return nil, err
	}
	if pkg.Weight == "" {
		return nil, runtime.Invalid("weight", "is required")
	}
	if pkg.Price < 0 {
		return nil, runtime.Invalid("price", "must not be negative")
	}
	pkg.ID = ""
	pkg.ProductID = productID
	created, err := builder.Insert[catalog.ProductPackage](p.db).One(ctx, pkg)
	if err != nil {
		return nil, fmt.Errorf("add product package: %w", err)
	}
	return created, nil
}

// CreateCategory inserts a product category.
func (p *Products) CreateCategory(ctx context.Context, c catalog.Category) (*catalog.Category, error) {
	if err := catalog.ValidateCategory(c.Name, c.Slug); err != nil {
		return nil, err
	}
	c.ID = ""
	created, err := builder.Insert[catalog.Category](p.db).One(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return created, nil
}

// UpdateCategory replaces the name, slug and description of a category.
func (p *Products) UpdateCategory(ctx context.Context, id string, c catalog.Category) (*catalog.Category, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	if err := catalog.ValidateCategory(c.Name, c.Slug); err != nil {
		return nil, err
	}
	updated, err := builder.Update[catalog.Category](p.db).
		Set("name", c.Name).
		Set("slug", c.Slug).
		Set("description", c.Description).
		SetExpr("updated_at", "NOW()").
		Where(builder.Eq("id", id)).
		One(ctx)
	if err != nil {
		return nil, fmt.Errorf("update category %s: %w", id, err)
	}
	return updated, nil
}

// DeleteCategory removes a category; its products become uncategorised.
func (p *Products) DeleteCategory(ctx context.Context, id string) error {
	if err := requireID("id", id); err != nil {
		return err
	}
	if err := builder.Delete[catalog.Category](p.db).Where(builder.Eq("id", id)).One(ctx); err != nil {
		return fmt.Errorf("delete category %s: %w", id, err)
	}
	return nil
}

// Count returns the number of products.
func (p *Products) Count(ctx context.Context) (int64, error) {
	n, err := builder.Select[catalog.Product](p.db).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

func optionalID(field string, id *string) error {
	if id == nil {
		return nil
	}
	return requireID(field, *id)
}

// groupBy buckets items by key, preserving their order.
func groupBy[T any](items []T, key func(T) string) map[string][]T {
	out := make(map[string][]T)
	for _, item := range items {
		k := key(item)
		out[k] = append(out[k], item)
	}
	return out
}

// nonNil turns a nil slice into an empty one so it renders as [].
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
