package httpapi

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"

	"github.com/marshallshelly/agroexport/pkg/catalog"
	"github.com/marshallshelly/agroexport/pkg/store"
)

// dashboardRecent is how many quotes and messages the dashboard shows.
const dashboardRecent = 5

// Dashboard is the admin overview.
type Dashboard struct {
	Products       int64                    `json:"products"`
	Posts          int64                    `json:"posts"`
	Quotes         store.Stats              `json:"quotes"`
	Messages       store.Stats              `json:"messages"`
	RecentQuotes   []catalog.QuoteRequest   `json:"recent_quotes"`
	RecentMessages []catalog.ContactMessage `json:"recent_messages"`
}

// Dashboard fetches the admin overview. The parts load concurrently; the
// first failure cancels the rest.
func (b Backend) Dashboard(ctx context.Context) (Dashboard, error) {
	var d Dashboard
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.Products, err = b.Products.Count(ctx)
		return
	})
	g.Go(func() (err error) {
		d.Posts, err = b.Blog.Count(ctx)
		return
	})
	g.Go(func() (err error) {
		d.Quotes, err = b.Quotes.Statistics(ctx)
		return
	})
	g.Go(func() (err error) {
		d.Messages, err = b.Contact.Statistics(ctx)
		return
	})
	g.Go(func() (err error) {
		d.RecentQuotes, err = b.Quotes.Recent(ctx, dashboardRecent)
		return
	})
	g.Go(func() (err error) {
		d.RecentMessages, err = b.Contact.Recent(ctx, dashboardRecent)
		return
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}
	return d, nil
}

func (s *Server) dashboard(c *fiber.Ctx) error {
	d, err := s.backend.Dashboard(c.UserContext())
	return respond(c, fiber.StatusOK, d, err)
}

// categoryBody is the payload for creating or renaming a category.
type categoryBody struct {
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description,omitempty"`
}

func (b categoryBody) category() catalog.Category {
	return catalog.Category{Name: b.Name, Slug: b.Slug, Description: b.Description}
}

func (s *Server) createCategory(c *fiber.Ctx) error {
	var body categoryBody
	if err := decode(c, &body); err != nil {
		return err
	}
	cat, err := s.backend.Products.CreateCategory(c.UserContext(), body.category())
	return respond(c, fiber.StatusCreated, cat, err)
}

func (s *Server) updateCategory(c *fiber.Ctx) error {
	var body categoryBody
	if err := decode(c, &body); err != nil {
		return err
	}
	cat, err := s.backend.Products.UpdateCategory(c.UserContext(), c.Params("id"), body.category())
	return respond(c, fiber.StatusOK, cat, err)
}

func (s *Server) deleteCategory(c *fiber.Ctx) error {
	return noContent(c, s.backend.Products.DeleteCategory(c.UserContext(), c.Params("id")))
}

func (s *Server) createProduct(c *fiber.Ctx) error {
	var p catalog.Product
	if err := decode(c, &p); err != nil {
		return err
	}
	created, err := s.backend.Products.Create(c.UserContext(), p)
	return respond(c, fiber.StatusCreated, created, err)
}

func (s *Server) updateProduct(c *fiber.Ctx) error {
	var p catalog.Product
	if err := decode(c, &p); err != nil {
		return err
	}
	updated, err := s.backend.Products.Update(c.UserContext(), c.Params("id"), p)
	return respond(c, fiber.StatusOK, updated, err)
}

func (s *Server) deleteProduct(c *fiber.Ctx) error {
	return noContent(c, s.backend.Products.Delete(c.UserContext(), c.Params("id")))
}

func (s *Server) addProductImage(c *fiber.Ctx) error {
	var img catalog.ProductImage
	if err := decode(c, &img); err != nil {
		return err
	}
	created, err := s.backend.Products.AddImage(c.UserContext(), c.Params("id"), img)
	return respond(c, fiber.StatusCreated, created, err)
}

func (s *Server) addProductPackage(c *fiber.Ctx) error {
	var pkg catalog.ProductPackage
	if err := decode(c, &pkg); err != nil {
		return err
	}
	created, err := s.backend.Products.AddPackage(c.UserContext(), c.Params("id"), pkg)
	return respond(c, fiber.StatusCreated, created, err)
}

// adminListPosts lists posts in every state unless ?published= narrows it.
func (s *Server) adminListPosts(c *fiber.Ctx) error {
	f, err := postFilter(c)
	if err != nil {
		return err
	}
	if f.Published, err = boolParam(c, "published"); err != nil {
		return err
	}
	f.AnyState = f.Published == nil
	posts, err := s.backend.Blog.List(c.UserContext(), f)
	return respond(c, fiber.StatusOK, posts, err)
}

func (s *Server) adminGetPost(c *fiber.Ctx) error {
	post, err := s.backend.Blog.GetAny(c.UserContext(), c.Params("ref"))
	return respond(c, fiber.StatusOK, post, err)
}

func (s *Server) createPost(c *fiber.Ctx) error {
	var p catalog.BlogPost
	if err := decode(c, &p); err != nil {
		return err
	}
	created, err := s.backend.Blog.Create(c.UserContext(), p)
	return respond(c, fiber.StatusCreated, created, err)
}

func (s *Server) updatePost(c *fiber.Ctx) error {
	var p catalog.BlogPost
	if err := decode(c, &p); err != nil {
		return err
	}
	updated, err := s.backend.Blog.Update(c.UserContext(), c.Params("id"), p)
	return respond(c, fiber.StatusOK, updated, err)
}

func (s *Server) deletePost(c *fiber.Ctx) error {
	return noContent(c, s.backend.Blog.Delete(c.UserContext(), c.Params("id")))
}

func (s *Server) addPostImage(c *fiber.Ctx) error {
	var img catalog.BlogImage
	if err := decode(c, &img); err != nil {
		return err
	}
	created, err := s.backend.Blog.AddImage(c.UserContext(), c.Params("id"), img)
	return respond(c, fiber.StatusCreated, created, err)
}

// statusBody changes the workflow status of a quote or message.
type statusBody struct {
	Status string `json:"status"`
}

func (s *Server) listQuotes(c *fiber.Ctx) error {
	quotes, err := s.backend.Quotes.List(c.UserContext(), c.Query("status"))
	return respond(c, fiber.StatusOK, quotes, err)
}

func (s *Server) quoteStats(c *fiber.Ctx) error {
	stats, err := s.backend.Quotes.Statistics(c.UserContext())
	return respond(c, fiber.StatusOK, stats, err)
}

func (s *Server) getQuote(c *fiber.Ctx) error {
	quote, err := s.backend.Quotes.Get(c.UserContext(), c.Params("id"))
	return respond(c, fiber.StatusOK, quote, err)
}

func (s *Server) updateQuoteStatus(c *fiber.Ctx) error {
	var body statusBody
	if err := decode(c, &body); err != nil {
		return err
	}
	quote, err := s.backend.Quotes.UpdateStatus(c.UserContext(), c.Params("id"), body.Status)
	return respond(c, fiber.StatusOK, quote, err)
}

func (s *Server) deleteQuote(c *fiber.Ctx) error {
	return noContent(c, s.backend.Quotes.Delete(c.UserContext(), c.Params("id")))
}

func (s *Server) listMessages(c *fiber.Ctx) error {
	msgs, err := s.backend.Contact.List(c.UserContext(), c.Query("status"))
	return respond(c, fiber.StatusOK, msgs, err)
}

func (s *Server) messageStats(c *fiber.Ctx) error {
	stats, err := s.backend.Contact.Statistics(c.UserContext())
	return respond(c, fiber.StatusOK, stats, err)
}

func (s *Server) getMessage(c *fiber.Ctx) error {
	msg, err := s.backend.Contact.Get(c.UserContext(), c.Params("id"))
	return respond(c, fiber.StatusOK, msg, err)
}

func (s *Server) updateMessageStatus(c *fiber.Ctx) error {
	var body statusBody
	if err := decode(c, &body); err != nil {
		return err
	}
	msg, err := s.backend.Contact.UpdateStatus(c.UserContext(), c.Params("id"), body.Status)
	return respond(c, fiber.StatusOK, msg, err)
}

func (s *Server) deleteMessage(c *fiber.Ctx) error {
	return noContent(c, s.backend.Contact.Delete(c.UserContext(), c.Params("id")))
}

// placementBody puts an item on the homepage.
type placementBody struct {
	ID           string `json:"id"`
	DisplayOrder int    `json:"display_order"`
}

// swapBody names two homepage rows whose order is exchanged.
type swapBody struct {
	A string `json:"a"`
	B string `json:"b"`
}

func (s *Server) homepageProducts(c *fiber.Ctx) error {
	rows, err := s.backend.Homepage.AllProducts(c.UserContext())
	return respond(c, fiber.StatusOK, rows, err)
}

func (s *Server) addHomepageProduct(c *fiber.Ctx) error {
	var body placementBody
	if err := decode(c, &body); err != nil {
		return err
	}
	row, err := s.backend.Homepage.AddProduct(c.UserContext(), body.ID, body.DisplayOrder)
	return respond(c, fiber.StatusCreated, row, err)
}

func (s *Server) swapHomepageProducts(c *fiber.Ctx) error {
	var body swapBody
	if err := decode(c, &body); err != nil {
		return err
	}
	return noContent(c, s.backend.Homepage.SwapProducts(c.UserContext(), body.A, body.B))
}

func (s *Server) updateHomepageProduct(c *fiber.Ctx) error {
	var patch store.HomepagePatch
	if err := decode(c, &patch); err != nil {
		return err
	}
	row, err := s.backend.Homepage.UpdateProduct(c.UserContext(), c.Params("id"), patch)
	return respond(c, fiber.StatusOK, row, err)
}

func (s *Server) removeHomepageProduct(c *fiber.Ctx) error {
	return noContent(c, s.backend.Homepage.RemoveProduct(c.UserContext(), c.Params("productID")))
}

func (s *Server) homepagePosts(c *fiber.Ctx) error {
	rows, err := s.backend.Homepage.AllPosts(c.UserContext())
	return respond(c, fiber.StatusOK, rows, err)
}

func (s *Server) addHomepagePost(c *fiber.Ctx) error {
	var body placementBody
	if err := decode(c, &body); err != nil {
		return err
	}
	row, err := s.backend.Homepage.AddPost(c.UserContext(), body.ID, body.DisplayOrder)
	return respond(c, fiber.StatusCreated, row, err)
}

func (s *Server) swapHomepagePosts(c *fiber.Ctx) error {
	var body swapBody
	if err := decode(c, &body); err != nil {
		return err
	}
	return noContent(c, s.backend.Homepage.SwapPosts(c.UserContext(), body.A, body.B))
}

func (s *Server) updateHomepagePost(c *fiber.Ctx) error {
	var patch store.HomepagePatch
	if err := decode(c, &patch); err != nil {
		return err
	}
	row, err := s.backend.Homepage.UpdatePost(c.UserContext(), c.Params("id"), patch)
	return respond(c, fiber.StatusOK, row, err)
}

func (s *Server) removeHomepagePost(c *fiber.Ctx) error {
	return noContent(c, s.backend.Homepage.RemovePost(c.UserContext(), c.Params("postID")))
}

// relationBody adds a curated relation from the item in the path.
type relationBody struct {
	RelatedID    string `json:"related_id"`
	RelationType string `json:"relation_type"`
	DisplayOrder int    `json:"display_order"`
}

func (s *Server) productRelations(c *fiber.Ctx) error {
	rels, err := s.backend.Relations.ProductRelations(c.UserContext(), c.Params("id"))
	return respond(c, fiber.StatusOK, rels, err)
}

func (s *Server) addProductRelation(c *fiber.Ctx) error {
	var body relationBody
	if err := decode(c, &body); err != nil {
		return err
	}
	rel, err := s.backend.Relations.AddProductRelation(c.UserContext(), c.Params("id"), body.RelatedID, body.RelationType, body.DisplayOrder)
	return respond(c, fiber.StatusCreated, rel, err)
}

func (s *Server) updateProductRelation(c *fiber.Ctx) error {
	var patch store.RelationPatch
	if err := decode(c, &patch); err != nil {
		return err
	}
	rel, err := s.backend.Relations.UpdateProductRelation(c.UserContext(), c.Params("id"), patch)
	return respond(c, fiber.StatusOK, rel, err)
}

func (s *Server) removeProductRelation(c *fiber.Ctx) error {
	return noContent(c, s.backend.Relations.RemoveProductRelation(c.UserContext(), c.Params("id")))
}

func (s *Server) postRelations(c *fiber.Ctx) error {
	rels, err := s.backend.Relations.PostRelations(c.UserContext(), c.Params("id"))
	return respond(c, fiber.StatusOK, rels, err)
}

func (s *Server) addPostRelation(c *fiber.Ctx) error {
	var body relationBody
	if err := decode(c, &body); err != nil {
		return err
	}
	rel, err := s.backend.Relations.AddPostRelation(c.UserContext(), c.Params("id"), body.RelatedID, body.RelationType, body.DisplayOrder)
	return respond(c, fiber.StatusCreated, rel, err)
}

func (s *Server) updatePostRelation(c *fiber.Ctx) error {
	var patch store.RelationPatch
	if err := decode(c, &patch); err != nil {
		return err
	}
	rel, err := s.backend.Relations.UpdatePostRelation(c.UserContext(), c.Params("id"), patch)
	return respond(c, fiber.StatusOK, rel, err)
}

func (s *Server) removePostRelation(c *fiber.Ctx) error {
	return noContent(c, s.backend.Relations.RemovePostRelation(c.UserContext(), c.Params("id")))
}
