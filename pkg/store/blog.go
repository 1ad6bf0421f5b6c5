package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/marshallshelly/agroexport/pkg/builder"
	"github.com/marshallshelly/agroexport/pkg/catalog"
	"github.com/marshallshelly/agroexport/pkg/runtime"
)

// DefaultRecentPosts is the number of posts Recent returns for a
// non-positive limit.
const DefaultRecentPosts = 3

// defaultPageSize applies when an offset is given without a limit.
const defaultPageSize = 10

// PostFilter narrows a blog listing.
type PostFilter struct {
	// Category matches a category by name or by the slug of that name.
	// Empty and "all" do not filter.
	Category string
	// Published selects by state. Nil means published posts only, unless
	// AnyState is set.
	Published *bool
	AnyState  bool
	Search    string
	Limit     int
	Offset    int
}

// Blog reads and writes blog posts, their images and categories.
type Blog struct {
	db  *builder.DB
	log *zap.Logger
}

// Categories returns every blog category ordered by name.
func (b *Blog) Categories(ctx context.Context) ([]catalog.BlogCategory, error) {
	cats, err := builder.Select[catalog.BlogCategory](b.db).OrderByAsc("name").All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list blog categories: %w", err)
	}
	return nonNil(cats), nil
}

// List returns posts matching f, newest first, with images attached.
func (b *Blog) List(ctx context.Context, f PostFilter) ([]catalog.BlogPost, error) {
	var categoryID string
	if f.Category != "" && !strings.EqualFold(f.Category, "all") {
		cat, err := builder.Select[catalog.BlogCategory](b.db).
			Where(builder.AnyOf(
				builder.Eq("name", f.Category),
				builder.Eq("slug", catalog.Slugify(f.Category)),
			)).
			First(ctx)
		switch {
		case err == nil:
			categoryID = cat.ID
		case errors.Is(err, runtime.ErrNotFound):
			b.log.Debug("unknown blog category ignored", zap.String("category", f.Category))
		default:
			return nil, fmt.Errorf("resolve blog category %q: %w", f.Category, err)
		}
	}

	posts, err := postListQuery(b.db, f, categoryID).All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	if err := b.attach(ctx, posts); err != nil {
		return nil, err
	}
	return nonNil(posts), nil
}

// postListQuery builds the listing query for f with the category already
// resolved to categoryID.
func postListQuery(db *builder.DB, f PostFilter, categoryID string) *builder.SelectQuery[catalog.BlogPost] {
	q := builder.Select[catalog.BlogPost](db)
	if categoryID != "" {
		q.And(builder.Eq("category_id", categoryID))
	}
	switch {
	case f.Published != nil:
		q.And(builder.Eq("published", *f.Published))
	case !f.AnyState:
		q.And(catalog.PublishedCondition())
	}
	if f.Search != "" {
		q.And(builder.AnyOf(
			builder.Contains("title", f.Search),
			builder.Contains("excerpt", f.Search),
		))
	}
	q.OrderByDesc("published_at")

	limit := f.Limit
	if f.Offset > 0 {
		if limit <= 0 {
			limit = defaultPageSize
		}
		q.Offset(f.Offset)
	}
	if limit > 0 {
		q.Limit(limit)
	}
	return q
}

// Get returns a published post by id or slug.
func (b *Blog) Get(ctx context.Context, ref string) (*catalog.BlogPost, error) {
	return b.get(ctx, ref, true)
}

// GetAny returns a post by id or slug whatever its state.
func (b *Blog) GetAny(ctx context.Context, ref string) (*catalog.BlogPost, error) {
	return b.get(ctx, ref, false)
}

func (b *Blog) get(ctx context.Context, ref string, publicOnly bool) (*catalog.BlogPost, error) {
	q := builder.Select[catalog.BlogPost](b.db).Where(refCondition(ref))
	if publicOnly {
		q.And(catalog.PublishedCondition())
	}
	post, err := q.First(ctx)
	if err != nil {
		return nil, fmt.Errorf("get post %q: %w", ref, err)
	}
	posts := []catalog.BlogPost{*post}
	if err := b.attach(ctx, posts); err != nil {
		return nil, err
	}
	return &posts[0], nil
}

// Recent returns the newest published posts.
func (b *Blog) Recent(ctx context.Context, limit int) ([]catalog.BlogPost, error) {
	if limit <= 0 {
		limit = DefaultRecentPosts
	}
	return b.List(ctx, PostFilter{Limit: limit})
}

// byIDs loads posts by id with category and images attached, keyed by id.
func (b *Blog) byIDs(ctx context.Context, ids []string) (map[string]*catalog.BlogPost, error) {
	out := make(map[string]*catalog.BlogPost, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	posts, err := builder.Select[catalog.BlogPost](b.db).Where(builder.Any("id", ids)).All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load posts: %w", err)
	}
	if err := b.attach(ctx, posts); err != nil {
		return nil, err
	}
	for i := range posts {
		out[posts[i].ID] = &posts[i]
	}
	return out, nil
}

// attach fills category and images (by sort order) on every post in place.
func (b *Blog) attach(ctx context.Context, posts []catalog.BlogPost) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]string, len(posts))
	var categoryIDs []string
	for i, p := range posts {
		ids[i] = p.ID
		if p.CategoryID != nil {
			categoryIDs = append(categoryIDs, *p.CategoryID)
		}
	}

	images, err := builder.Select[catalog.BlogImage](b.db).
		Where(builder.Any("blog_post_id", ids)).
		OrderByAsc("sort_order").
		All(ctx)
	if err != nil {
		return fmt.Errorf("load blog images: %w", err)
	}
	imagesBy := groupBy(images, func(img catalog.BlogImage) string { return img.BlogPostID })

	categories := map[string]*catalog.BlogCategory{}
	if len(categoryIDs) > 0 {
		cats, err := builder.Select[catalog.BlogCategory](b.db).Where(builder.Any("id", categoryIDs)).All(ctx)
		if err != nil {
			return fmt.Errorf("load blog categories: %w", err)
		}
		for i := range cats {
			categories[cats[i].ID] = &cats[i]
		}
	}

	for i := range posts {
		p := &posts[i]
		p.Images = nonNil(imagesBy[p.ID])
		if p.CategoryID != nil {
			p.Category = categories[*p.CategoryID]
		}
	}
	return nil
}

// Create inserts a post.
func (b *Blog) Create(ctx context.Context, post catalog.BlogPost) (*catalog.BlogPost, error) {
	if err := catalog.ValidatePost(post); err != nil {
		return nil, err
	}
	if err := optionalID("category_id", post.CategoryID); err != nil {
		return nil, err
	}
	post.ID = ""
	created, err := builder.Insert[catalog.BlogPost](b.db).One(ctx, post)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	b.log.Info("post created", zap.String("id", created.ID), zap.Bool("published", created.Published))
	return created, nil
}

// Update replaces the editable fields of a post. A zero PublishedAt keeps the
// stored one.
func (b *Blog) Update(ctx context.Context, id string, post catalog.BlogPost) (*catalog.BlogPost, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	if err := catalog.ValidatePost(post); err != nil {
		return nil, err
	}
	if err := optionalID("category_id", post.CategoryID); err != nil {
		return nil, err
	}

	q := builder.Update[catalog.BlogPost](b.db).
		Set("title", post.Title).
		Set("slug", post.Slug).
		Set("excerpt", post.Excerpt).
		Set("content", post.Content).
		Set("category_id", post.CategoryID).
		Set("author", post.Author).
		Set("read_time", post.ReadTime).
		Set("featured_image", post.FeaturedImage).
		Set("published", post.Published).
		SetExpr("updated_at", "NOW()")
	if !post.PublishedAt.IsZero() {
		q.Set("published_at", post.PublishedAt)
	}
	updated, err := q.Where(builder.Eq("id", id)).One(ctx)
	if err != nil {
		return nil, fmt.Errorf("update post %s: %w", id, err)
	}
	return updated, nil
}

// Delete removes a post.
func (b *Blog) Delete(ctx context.Context, id string) error {
	if err := requireID("id", id); err != nil {
		return err
	}
	if err := builder.Delete[catalog.BlogPost](b.db).Where(builder.Eq("id", id)).One(ctx); err != nil {
		return fmt.Errorf("delete post %s: %w", id, err)
	}
	b.log.Info("post deleted", zap.String("id", id))
	return nil
}

// AddImage attaches an image to a post.
func (b *Blog) AddImage(ctx context.Context, postID string, img catalog.BlogImage) (*catalog.BlogImage, error) {
	if err := requireID("blog_post_id", postID); err != nil {
		return nil, err
	}
	if img.ImageURL == "" {
		return nil, runtime.Invalid("image_url", "is required")
	}
	img.ID = ""
	img.BlogPostID = postID
	created, err := builder.Insert[catalog.BlogImage](b.db).One(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("add blog image: %w", err)
	}
	return created, nil
}

// Count returns the number of posts, drafts included.
func (b *Blog) Count(ctx context.Context) (int64, error) {
	n, err := builder.Select[catalog.BlogPost](b.db).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return n, nil
}
