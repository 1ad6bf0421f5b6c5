// Package httpapi serves the public catalog API and the admin API over HTTP.
package httpapi

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
)

// Options configures a Server.
type Options struct {
	// AdminToken guards /api/admin. Empty disables the admin API.
	AdminToken string
	Logger     *zap.Logger
}

// Server wires HTTP endpoints to the catalog store and resolvers.
type Server struct {
	backend    Backend
	adminToken string
	log        *zap.Logger
}

// New creates a server over backend.
func New(backend Backend, opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		backend:    backend,
		adminToken: opts.AdminToken,
		log:        log.Named("http"),
	}
}

// ServeConfig configures the fiber app and ListenAndServe.
type ServeConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// App builds the routed fiber app with request ids, logging and panic
// recovery.
func (s *Server) App(cfg ServeConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "agroexport",
		Immutable:             true,
		ErrorHandler:          s.handleError,
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		IdleTimeout:           60 * time.Second,
		BodyLimit:             maxBodyBytes,
		JSONDecoder:           strictUnmarshal,
		DisableStartupMessage: true,
	})

	app.Use(requestid.New())
	app.Use(s.logRequests)
	app.Use(recover.New())

	s.routes(app)
	return app
}

func (s *Server) routes(app *fiber.App) {
	app.Get("/healthz", s.health)

	api := app.Group("/api")
	api.Get("/categories", s.listCategories)
	api.Get("/products", s.listProducts)
	api.Get("/products/:ref", s.getProduct)
	api.Get("/products/:id/related", s.relatedProducts)
	api.Get("/blog/categories", s.listBlogCategories)
	api.Get("/blog/posts", s.listPosts)
	api.Get("/blog/posts/:ref", s.getPost)
	api.Get("/blog/posts/:id/related", s.relatedPosts)
	api.Get("/blog/recent", s.recentPosts)
	api.Get("/homepage", s.homepage)
	api.Post("/quotes", s.submitQuote)
	api.Post("/contact", s.submitContact)

	admin := api.Group("/admin", s.requireAdmin)
	admin.Get("/dashboard", s.dashboard)

	admin.Post("/categories", s.createCategory)
	admin.Put("/categories/:id", s.updateCategory)
	admin.Delete("/categories/:id", s.deleteCategory)

	admin.Get("/products", s.listProducts)
	admin.Post("/products", s.createProduct)
	admin.Get("/products/:id/relations", s.productRelations)
	admin.Post("/products/:id/relations", s.addProductRelation)
	admin.Post("/products/:id/images", s.addProductImage)
	admin.Post("/products/:id/packages", s.addProductPackage)
	admin.Get("/products/:ref", s.getProduct)
	admin.Put("/products/:id", s.updateProduct)
	admin.Delete("/products/:id", s.deleteProduct)

	admin.Get("/blog/posts", s.adminListPosts)
	admin.Post("/blog/posts", s.createPost)
	admin.Get("/blog/posts/:id/relations", s.postRelations)
	admin.Post("/blog/posts/:id/relations", s.addPostRelation)
	admin.Post("/blog/posts/:id/images", s.addPostImage)
	admin.Get("/blog/posts/:ref", s.adminGetPost)
	admin.Put("/blog/posts/:id", s.updatePost)
	admin.Delete("/blog/posts/:id", s.deletePost)

	admin.Get("/quotes", s.listQuotes)
	admin.Get("/quotes/stats", s.quoteStats)
	admin.Get("/quotes/:id", s.getQuote)
	admin.Patch("/quotes/:id", s.updateQuoteStatus)
	admin.Delete("/quotes/:id", s.deleteQuote)

	admin.Get("/contact", s.listMessages)
	admin.Get("/contact/stats", s.messageStats)
	admin.Get("/contact/:id", s.getMessage)
	admin.Patch("/contact/:id", s.updateMessageStatus)
	admin.Delete("/contact/:id", s.deleteMessage)

	admin.Get("/homepage/products", s.homepageProducts)
	admin.Post("/homepage/products", s.addHomepageProduct)
	admin.Post("/homepage/products/swap", s.swapHomepageProducts)
	admin.Patch("/homepage/products/:id", s.updateHomepageProduct)
	admin.Delete("/homepage/products/:productID", s.removeHomepageProduct)
	admin.Get("/homepage/posts", s.homepagePosts)
	admin.Post("/homepage/posts", s.addHomepagePost)
	admin.Post("/homepage/posts/swap", s.swapHomepagePosts)
	admin.Patch("/homepage/posts/:id", s.updateHomepagePost)
	admin.Delete("/homepage/posts/:postID", s.removeHomepagePost)

	admin.Patch("/product-relations/:id", s.updateProductRelation)
	admin.Delete("/product-relations/:id", s.removeProductRelation)
	admin.Patch("/post-relations/:id", s.updatePostRelation)
	admin.Delete("/post-relations/:id", s.removePostRelation)
}

func (s *Server) health(c *fiber.Ctx) error {
	if s.backend.Ping != nil {
		if err := s.backend.Ping(c.UserContext()); err != nil {
			return err
		}
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, cfg ServeConfig) error {
	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Addr, err)
	}
	return s.Serve(ctx, ln, cfg)
}

// Serve is ListenAndServe over an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener, cfg ServeConfig) error {
	app := s.App(cfg)

	shutdownTimeout := cfg.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}

	stopped := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		select {
		case <-ctx.Done():
			done <- app.ShutdownWithTimeout(shutdownTimeout)
		case <-stopped:
			done <- nil
		}
	}()

	s.log.Info("listening", zap.String("addr", ln.Addr().String()), zap.Bool("admin", s.adminToken != ""))
	err := app.Listener(ln)
	close(stopped)
	if err != nil {
		return fmt.Errorf("server stopped unexpectedly: %w", err)
	}
	if err := <-done; err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.log.Info("server stopped")
	return nil
}
