// Package store is the data-access layer of the catalog. Every public read
// applies the catalog visibility rules here, so handlers never see drafts.
package store

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/marshallshelly/agroexport/pkg/builder"
	"github.com/marshallshelly/agroexport/pkg/catalog"
	"github.com/marshallshelly/agroexport/pkg/registry"
	"github.com/marshallshelly/agroexport/pkg/runtime"
)

// Store groups the data-access modules over one database.
type Store struct {
	Products  *Products
	Blog      *Blog
	Quotes    *Quotes
	Contact   *Contact
	Homepage  *Homepage
	Relations *Relations

	db *builder.DB
}

// New wires every module to db. It registers the catalog models so their
// metadata is parsed once, up front.
func New(db *builder.DB, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := RegisterModels(); err != nil {
		return nil, err
	}

	products := &Products{db: db, log: log.Named("products")}
	blog := &Blog{db: db, log: log.Named("blog")}
	return &Store{
		Products:  products,
		Blog:      blog,
		Quotes:    &Quotes{db: db, products: products, log: log.Named("quotes")},
		Contact:   &Contact{db: db, log: log.Named("contact")},
		Homepage:  &Homepage{db: db, products: products, blog: blog, log: log.Named("homepage")},
		Relations: &Relations{db: db, products: products, blog: blog, log: log.Named("relations")},
		db:        db,
	}, nil
}

// DB returns the builder the store runs on.
func (s *Store) DB() *builder.DB { return s.db }

// RegisterModels adds every catalog model to the global registry. Calling it
// again is a no-op.
func RegisterModels() error {
	for _, m := range catalog.Models() {
		if _, err := registry.GetOrRegister(m); err != nil {
			return err
		}
	}
	return nil
}

// isID reports whether s looks like a database id.
func isID(s string) bool {
	return uuid.Validate(s) == nil
}

// requireID rejects identifiers the database could not parse.
func requireID(field, id string) error {
	if !isID(id) {
		return runtime.Invalid(field, "%q is not a valid id", id)
	}
	return nil
}

// requireIDs checks every id, see requireID.
func requireIDs(field string, ids ...string) error {
	for _, id := range ids {
		if err := requireID(field, id); err != nil {
			return err
		}
	}
	return nil
}

// Stats counts rows per status. Total counts every row.
type Stats map[string]int

// countStatuses tallies statuses, seeding every known status with zero.
func countStatuses[S ~string](known []S, rows []S) Stats {
	stats := Stats{"total": len(rows)}
	for _, s := range known {
		stats[string(s)] = 0
	}
	for _, s := range rows {
		stats[string(s)]++
	}
	return stats
}
