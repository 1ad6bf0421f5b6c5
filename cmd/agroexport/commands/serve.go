package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/marshallshelly/agroexport/pkg/catalog"
	"github.com/marshallshelly/agroexport/pkg/httpapi"
	"github.com/marshallshelly/agroexport/pkg/related"
	"github.com/marshallshelly/agroexport/pkg/store"
)

var serveAddr string

// serveCmd runs the HTTP API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the public catalog API and, when an admin token is configured, the
admin API. The server stops gracefully on SIGINT or SIGTERM.

Examples:
  agroexport serve                        # Listen on the configured address
  agroexport serve --addr :9090           # Override the listen address
  AGROEXPORT_ADMIN_TOKEN=secret agroexport serve`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runServe(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides the configuration)")
}

// resolvers builds the related-item resolvers from the configuration.
func resolvers(s *store.Store) (*related.Resolver[catalog.Product], *related.Resolver[catalog.BlogPost]) {
	products := related.New(s.ProductRelated(), catalog.ProductVisible, related.Options{
		Timeout:      cfg.RelatedTimeout(),
		DefaultLimit: cfg.Related.ProductLimit,
		Logger:       logger.Named("related.products"),
	})
	posts := related.New(s.PostRelated(), catalog.PostVisible, related.Options{
		Timeout:      cfg.RelatedTimeout(),
		DefaultLimit: cfg.Related.BlogLimit,
		Logger:       logger.Named("related.posts"),
	})
	return products, posts
}

func runServe(ctx context.Context) error {
	s, closeDB, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	products, posts := resolvers(s)
	server := httpapi.New(httpapi.NewBackend(s, products, posts), httpapi.Options{
		AdminToken: cfg.Admin.Token,
		Logger:     logger,
	})

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}
	if cfg.Admin.Token == "" {
		logger.Warn("no admin token configured; admin API disabled")
	}
	return server.ListenAndServe(ctx, httpapi.ServeConfig{
		Addr:            addr,
		ReadTimeout:     cfg.ReadTimeout(),
		WriteTimeout:    cfg.WriteTimeout(),
		ShutdownTimeout: cfg.ShutdownTimeout(),
	})
}
