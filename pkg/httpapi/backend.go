package httpapi

import (
	"context"

	"github.com/marshallshelly/agroexport/pkg/catalog"
	"github.com/marshallshelly/agroexport/pkg/related"
	"github.com/marshallshelly/agroexport/pkg/store"
)

// ProductStore is the product surface the handlers use.
type ProductStore interface {
	Categories(ctx context.Context) ([]catalog.Category, error)
	List(ctx context.Context, f store.ProductFilter) ([]catalog.Product, error)
	Get(ctx context.Context, ref string) (*catalog.Product, error)
	Create(ctx context.Context, p catalog.Product) (*catalog.Product, error)
	Update(ctx context.Context, id string, p catalog.Product) (*catalog.Product, error)
	Delete(ctx context.Context, id string) error
	AddImage(ctx context.Context, productID string, img catalog.ProductImage) (*catalog.ProductImage, error)
	AddPackage(ctx context.Context, productID string, pkg catalog.ProductPackage) (*catalog.ProductPackage, error)
	CreateCategory(ctx context.Context, c catalog.Category) (*catalog.Category, error)
	UpdateCategory(ctx context.Context, id string, c catalog.Category) (*catalog.Category, error)
	DeleteCategory(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// BlogStore is the blog surface the handlers use.
type BlogStore interface {
	Categories(ctx context.Context) ([]catalog.BlogCategory, error)
	List(ctx context.Context, f store.PostFilter) ([]catalog.BlogPost, error)
	Get(ctx context.Context, ref string) (*catalog.BlogPost, error)
	GetAny(ctx context.Context, ref string) (*catalog.BlogPost, error)
	Recent(ctx context.Context, limit int) ([]catalog.BlogPost, error)
	Create(ctx context.Context, p catalog.BlogPost) (*catalog.BlogPost, error)
	Update(ctx context.Context, id string, p catalog.BlogPost) (*catalog.BlogPost, error)
	Delete(ctx context.Context, id string) error
	AddImage(ctx context.Context, postID string, img catalog.BlogImage) (*catalog.BlogImage, error)
	Count(ctx context.Context) (int64, error)
}

// QuoteStore is the quote surface the handlers use.
type QuoteStore interface {
	Submit(ctx context.Context, in catalog.QuoteInput) (*catalog.QuoteRequest, error)
	List(ctx context.Context, status string) ([]catalog.QuoteRequest, error)
	Get(ctx context.Context, id string) (*catalog.QuoteRequest, error)
	UpdateStatus(ctx context.Context, id, status string) (*catalog.QuoteRequest, error)
	Delete(ctx context.Context, id string) error
	Statistics(ctx context.Context) (store.Stats, error)
	Recent(ctx context.Context, n int) ([]catalog.QuoteRequest, error)
}

// ContactStore is the contact-message surface the handlers use.
type ContactStore interface {
	Submit(ctx context.Context, in catalog.ContactInput) (*catalog.ContactMessage, error)
	List(ctx context.Context, status string) ([]catalog.ContactMessage, error)
	Get(ctx context.Context, id string) (*catalog.ContactMessage, error)
	UpdateStatus(ctx context.Context, id, status string) (*catalog.ContactMessage, error)
	Delete(ctx context.Context, id string) error
	Statistics(ctx context.Context) (store.Stats, error)
	Recent(ctx context.Context, n int) ([]catalog.ContactMessage, error)
}

// HomepageStore is the homepage curation surface the handlers use.
type HomepageStore interface {
	Products(ctx context.Context) ([]catalog.HomepageProduct, error)
	AllProducts(ctx context.Context) ([]catalog.HomepageProduct, error)
	AddProduct(ctx context.Context, productID string, order int) (*catalog.HomepageProduct, error)
	RemoveProduct(ctx context.Context, productID string) error
	UpdateProduct(ctx context.Context, id string, patch store.HomepagePatch) (*catalog.HomepageProduct, error)
	SwapProducts(ctx context.Context, idA, idB string) error
	Posts(ctx context.Context) ([]catalog.HomepageBlogPost, error)
	AllPosts(ctx context.Context) ([]catalog.HomepageBlogPost, error)
	AddPost(ctx context.Context, postID string, order int) (*catalog.HomepageBlogPost, error)
	RemovePost(ctx context.Context, postID string) error
	UpdatePost(ctx context.Context, id string, patch store.HomepagePatch) (*catalog.HomepageBlogPost, error)
	SwapPosts(ctx context.Context, idA, idB string) error
}

// RelationStore is the curated-relation surface the handlers use.
type RelationStore interface {
	ProductRelations(ctx context.Context, productID string) ([]catalog.ProductRelation, error)
	AddProductRelation(ctx context.Context, productID, relatedID, relationType string, order int) (*catalog.ProductRelation, error)
	UpdateProductRelation(ctx context.Context, id string, patch store.RelationPatch) (*catalog.ProductRelation, error)
	RemoveProductRelation(ctx context.Context, id string) error
	PostRelations(ctx context.Context, postID string) ([]catalog.BlogPostRelation, error)
	AddPostRelation(ctx context.Context, postID, relatedID, relationType string, order int) (*catalog.BlogPostRelation, error)
	UpdatePostRelation(ctx context.Context, id string, patch store.RelationPatch) (*catalog.BlogPostRelation, error)
	RemovePostRelation(ctx context.Context, id string) error
}

// Relater answers related-item questions for one kind of item.
// *related.Resolver satisfies it.
type Relater[T any] interface {
	ResolveFor(ctx context.Context, sourceID string, limit int) ([]T, error)
	DefaultLimit() int
}

var (
	_ Relater[catalog.Product]  = (*related.Resolver[catalog.Product])(nil)
	_ Relater[catalog.BlogPost] = (*related.Resolver[catalog.BlogPost])(nil)
	_ ProductStore              = (*store.Products)(nil)
	_ BlogStore                 = (*store.Blog)(nil)
	_ QuoteStore                = (*store.Quotes)(nil)
	_ ContactStore              = (*store.Contact)(nil)
	_ HomepageStore             = (*store.Homepage)(nil)
	_ RelationStore             = (*store.Relations)(nil)
)

// Backend bundles everything the server reads from and writes to.
type Backend struct {
	Products        ProductStore
	Blog            BlogStore
	Quotes          QuoteStore
	Contact         ContactStore
	Homepage        HomepageStore
	Relations       RelationStore
	RelatedProducts Relater[catalog.Product]
	RelatedPosts    Relater[catalog.BlogPost]

	// Ping checks the database for /healthz. Nil reports healthy.
	Ping func(ctx context.Context) error
}

// NewBackend builds a Backend over s with the given resolvers.
func NewBackend(s *store.Store, products Relater[catalog.Product], posts Relater[catalog.BlogPost]) Backend {
	b := Backend{
		Products:        s.Products,
		Blog:            s.Blog,
		Quotes:          s.Quotes,
		Contact:         s.Contact,
		Homepage:        s.Homepage,
		Relations:       s.Relations,
		RelatedProducts: products,
		RelatedPosts:    posts,
	}
	if rt := s.DB().Runtime(); rt != nil {
		b.Ping = rt.Ping
	}
	return b
}
