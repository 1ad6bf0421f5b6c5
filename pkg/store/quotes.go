package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/marshallshelly/agroexport/pkg/builder"
	"github.com/marshallshelly/agroexport/pkg/catalog"
	"github.com/marshallshelly/agroexport/pkg/runtime"
)

// Quotes manages quote requests.
type Quotes struct {
	db       *builder.DB
	products *Products
	log      *zap.Logger
}

// Submit validates and stores a new pending quote request.
func (q *Quotes) Submit(ctx context.Context, in catalog.QuoteInput) (*catalog.QuoteRequest, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := optionalID("product_id", in.ProductID); err != nil {
		return nil, err
	}
	created, err := builder.Insert[catalog.QuoteRequest](q.db).One(ctx, in.QuoteRequest())
	if err != nil {
		return nil, fmt.Errorf("submit quote: %w", err)
	}
	if err := q.attach(ctx, []*catalog.QuoteRequest{created}); err != nil {
		return nil, err
	}
	q.log.Info("quote submitted", zap.String("id", created.ID), zap.Int("quantity", created.Quantity))
	return created, nil
}

// List returns quote requests newest first. An empty status or "all" lists
// every request.
func (q *Quotes) List(ctx context.Context, status string) ([]catalog.QuoteRequest, error) {
	query := builder.Select[catalog.QuoteRequest](q.db).OrderByDesc("created_at")
	if status != "" && status != "all" {
		s, err := catalog.Parse[catalog.QuoteStatus](status)
		if err != nil {
			return nil, runtime.Invalid("status", "%v", err)
		}
		query.Where(builder.Eq("status", s))
	}
	quotes, err := query.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	if err := q.attach(ctx, pointers(quotes)); err != nil {
		return nil, err
	}
	return nonNil(quotes), nil
}

// Get returns one quote request with its product.
func (q *Quotes) Get(ctx context.Context, id string) (*catalog.QuoteRequest, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	quote, err := builder.Select[catalog.QuoteRequest](q.db).Where(builder.Eq("id", id)).First(ctx)
	if err != nil {
		return nil, fmt.Errorf("get quote %s: %w", id, err)
	}
	if err := q.attach(ctx, []*catalog.QuoteRequest{quote}); err != nil {
		return nil, err
	}
	return quote, nil
}

// UpdateStatus moves a quote request to status.
func (q *Quotes) UpdateStatus(ctx context.Context, id, status string) (*catalog.QuoteRequest, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	s, err := catalog.Parse[catalog.QuoteStatus](status)
	if err != nil {
		return nil, runtime.Invalid("status", "%v", err)
	}
	updated, err := builder.Update[catalog.QuoteRequest](q.db).
		Set("status", s).
		Where(builder.Eq("id", id)).
		One(ctx)
	if err != nil {
		return nil, fmt.Errorf("update quote %s: %w", id, err)
	}
	if err := q.attach(ctx, []*catalog.QuoteRequest{updated}); err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a quote request.
func (q *Quotes) Delete(ctx context.Context, id string) error {
	if err := requireID("id", id); err != nil {
		return err
	}
	if err := builder.Delete[catalog.QuoteRequest](q.db).Where(builder.Eq("id", id)).One(ctx); err != nil {
		return fmt.Errorf("delete quote %s: %w", id, err)
	}
	return nil
}

// Statistics counts quote requests in total and per status.
func (q *Quotes) Statistics(ctx context.Context) (Stats, error) {
	rows, err := builder.Select[catalog.QuoteRequest](q.db).Columns("status").All(ctx)
	if err != nil {
		return nil, fmt.Errorf("quote statistics: %w", err)
	}
	statuses := make([]catalog.QuoteStatus, len(rows))
	for i, r := range rows {
		statuses[i] = r.Status
	}
	return countStatuses(catalog.QuoteStatuses, statuses), nil
}

// Recent returns the n newest quote requests with their products.
func (q *Quotes) Recent(ctx context.Context, n int) ([]catalog.QuoteRequest, error) {
	quotes, err := builder.Select[catalog.QuoteRequest](q.db).OrderByDesc("created_at").Limit(n).All(ctx)
	if err != nil {
		return nil, fmt.Errorf("recent quotes: %w", err)
	}
	if err := q.attach(ctx, pointers(quotes)); err != nil {
		return nil, err
	}
	return nonNil(quotes), nil
}

// attach sets the product of every quote that names one.
func (q *Quotes) attach(ctx context.Context, quotes []*catalog.QuoteRequest) error {
	var ids []string
	for _, quote := range quotes {
		if quote.ProductID != nil {
			ids = append(ids, *quote.ProductID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	products, err := builder.Select[catalog.Product](q.db).Where(builder.Any("id", ids)).All(ctx)
	if err != nil {
		return fmt.Errorf("load quoted products: %w", err)
	}
	byID := make(map[string]*catalog.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	for _, quote := range quotes {
		if quote.ProductID != nil {
			quote.Product = byID[*quote.ProductID]
		}
	}
	return nil
}

func pointers[T any](s []T) []*T {
	out := make([]*T, len(s))
	for i := range s {
		out[i] = &s[i]
	}
	return out
}
