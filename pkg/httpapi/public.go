package httpapi

import (
	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"

	"github.com/marshallshelly/agroexport/pkg/catalog"
	"github.com/marshallshelly/agroexport/pkg/store"
)

func (s *Server) listCategories(c *fiber.Ctx) error {
	cats, err := s.backend.Products.Categories(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(cats)
}

func (s *Server) listProducts(c *fiber.Ctx) error {
	products, err := s.backend.Products.List(c.UserContext(), store.ProductFilter{
		CategorySlug: c.Query("category"),
		Availability: c.Query("availability"),
		Search:       c.Query("search"),
		Sort:         c.Query("sort"),
	})
	if err != nil {
		return err
	}
	return c.JSON(products)
}

func (s *Server) getProduct(c *fiber.Ctx) error {
	product, err := s.backend.Products.Get(c.UserContext(), c.Params("ref"))
	if err != nil {
		return err
	}
	return c.JSON(product)
}

func (s *Server) relatedProducts(c *fiber.Ctx) error {
	rel := s.backend.RelatedProducts
	items, err := rel.ResolveFor(c.UserContext(), c.Params("id"), limitParam(c, rel.DefaultLimit()))
	if err != nil {
		return err
	}
	return c.JSON(itemsBody[catalog.Product]{Items: nonNil(items)})
}

func (s *Server) listBlogCategories(c *fiber.Ctx) error {
	cats, err := s.backend.Blog.Categories(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(cats)
}

// postFilter reads the listing parameters shared by the public and admin
// post listings.
func postFilter(c *fiber.Ctx) (store.PostFilter, error) {
	limit, err := intParam(c, "limit")
	if err != nil {
		return store.PostFilter{}, err
	}
	offset, err := intParam(c, "offset")
	if err != nil {
		return store.PostFilter{}, err
	}
	return store.PostFilter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Limit:    limit,
		Offset:   offset,
	}, nil
}

func (s *Server) listPosts(c *fiber.Ctx) error {
	f, err := postFilter(c)
	if err != nil {
		return err
	}
	posts, err := s.backend.Blog.List(c.UserContext(), f)
	if err != nil {
		return err
	}
	return c.JSON(posts)
}

func (s *Server) getPost(c *fiber.Ctx) error {
	post, err := s.backend.Blog.Get(c.UserContext(), c.Params("ref"))
	if err != nil {
		return err
	}
	return c.JSON(post)
}

func (s *Server) relatedPosts(c *fiber.Ctx) error {
	rel := s.backend.RelatedPosts
	items, err := rel.ResolveFor(c.UserContext(), c.Params("id"), limitParam(c, rel.DefaultLimit()))
	if err != nil {
		return err
	}
	return c.JSON(itemsBody[catalog.BlogPost]{Items: nonNil(items)})
}

func (s *Server) recentPosts(c *fiber.Ctx) error {
	posts, err := s.backend.Blog.Recent(c.UserContext(), limitParam(c, store.DefaultRecentPosts))
	if err != nil {
		return err
	}
	return c.JSON(posts)
}

// homepageBody is the curated homepage.
type homepageBody struct {
	Products []catalog.HomepageProduct  `json:"products"`
	Posts    []catalog.HomepageBlogPost `json:"posts"`
}

func (s *Server) homepage(c *fiber.Ctx) error {
	var body homepageBody
	g, ctx := errgroup.WithContext(c.UserContext())
	g.Go(func() error {
		var err error
		body.Products, err = s.backend.Homepage.Products(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		body.Posts, err = s.backend.Homepage.Posts(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	return c.JSON(body)
}

func (s *Server) submitQuote(c *fiber.Ctx) error {
	var in catalog.QuoteInput
	if err := decode(c, &in); err != nil {
		return err
	}
	quote, err := s.backend.Quotes.Submit(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(quote)
}

func (s *Server) submitContact(c *fiber.Ctx) error {
	var in catalog.ContactInput
	if err := decode(c, &in); err != nil {
		return err
	}
	msg, err := s.backend.Contact.Submit(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}
