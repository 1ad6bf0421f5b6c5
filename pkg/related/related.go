// Package related decides which items to show next to a product or post.
//
// Curated relations win outright: when an editor has linked anything to the
// source, exactly those links are shown in display order. Only when nothing is
// curated does the resolver fall back to the newest visible items of the same
// category.
package related

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/marshallshelly/agroexport/pkg/runtime"
)

// DefaultTimeout bounds a single resolution.
const DefaultTimeout = 8 * time.Second

// MaxLimit caps how many items a single resolution returns.
const MaxLimit = 50

// Item is anything that can be related: it has an id and an optional category.
type Item interface {
	ItemID() string
	ItemCategory() *string
}

// Curated is one curated relation row joined with its target. Item is nil
// when the target no longer exists.
type Curated[T any] struct {
	RelationID   string
	DisplayOrder int
	Item         *T
}

// Store is the read surface the resolver needs.
type Store[T Item] interface {
	// ListRelations returns up to limit curated rows for sourceID ordered by
	// display order ascending, skipping the first offset rows.
	ListRelations(ctx context.Context, sourceID string, offset, limit int) ([]Curated[T], error)
	// ListByCategory returns up to limit visible items in categoryID other than
	// excludeID, most recent first.
	ListByCategory(ctx context.Context, categoryID, excludeID string, limit int) ([]T, error)
	// GetItem returns the item with id or an error wrapping runtime.ErrNotFound.
	GetItem(ctx context.Context, id string) (T, error)
}

// Predicate reports whether an item may be shown publicly.
type Predicate[T any] func(T) bool

// Options tunes a Resolver.
type Options struct {
	// Timeout bounds each resolution. Zero means DefaultTimeout.
	Timeout time.Duration
	// DefaultLimit is reported by Resolver.DefaultLimit for callers that
	// did not ask for a specific number of items.
	DefaultLimit int
	Logger       *zap.Logger
}

// ResolveError reports a failed resolution. It always wraps
// runtime.ErrStoreUnavailable.
type ResolveError struct {
	Op       string // "curated", "fallback" or "source"
	SourceID string
	Err      error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("resolve related %s for %s: %v", e.Op, e.SourceID, e.Err)
}

func (e *ResolveError) Unwrap() error { return e.Err }

// Resolver applies the curated-then-category policy to one kind of item.
type Resolver[T Item] struct {
	store        Store[T]
	visible      Predicate[T]
	timeout      time.Duration
	defaultLimit int
	log          *zap.Logger
}

// New creates a resolver over store. visible filters fallback results; nil
// accepts every item.
func New[T Item](store Store[T], visible Predicate[T], opts Options) *Resolver[T] {
	if visible == nil {
		visible = func(T) bool { return true }
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Resolver[T]{
		store:        store,
		visible:      visible,
		timeout:      opts.Timeout,
		defaultLimit: opts.DefaultLimit,
		log:          opts.Logger,
	}
}

// DefaultLimit returns the limit configured for this kind of item.
func (r *Resolver[T]) DefaultLimit() int { return r.defaultLimit }

// Resolve returns at most limit items related to sourceID. categoryID is the
// source's category and drives the fallback; nil disables it. The result
// never contains sourceID or duplicates. A non-positive limit returns an empty
// slice without touching the store; limits above MaxLimit are clamped.
func (r *Resolver[T]) Resolve(ctx context.Context, sourceID string, categoryID *string, limit int) ([]T, error) {
	if limit <= 0 {
		return []T{}, nil
	}
	limit = min(limit, MaxLimit)
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.resolve(ctx, sourceID, categoryID, limit)
}

// ResolveFor looks the source up to learn its category, then resolves. An
// unknown source yields an empty slice.
func (r *Resolver[T]) ResolveFor(ctx context.Context, sourceID string, limit int) ([]T, error) {
	if limit <= 0 {
		return []T{}, nil
	}
	limit = min(limit, MaxLimit)
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	source, err := r.store.GetItem(ctx, sourceID)
	if err != nil {
		if errors.Is(err, runtime.ErrNotFound) {
			return []T{}, nil
		}
		return nil, r.fail("source", sourceID, err)
	}
	return r.resolve(ctx, sourceID, source.ItemCategory(), limit)
}

func (r *Resolver[T]) resolve(ctx context.Context, sourceID string, categoryID *string, limit int) ([]T, error) {
	out := newCollector[T](sourceID, limit)

	// Rows pointing at the source, at an item already taken or at a deleted
	// item do not count toward limit, so keep paging until it is met or the
	// curated rows run out.
	for offset := 0; out.len() < limit; offset += limit {
		rows, err := r.store.ListRelations(ctx, sourceID, offset, limit)
		if err != nil {
			return nil, r.fail("curated", sourceID, err)
		}
		for _, row := range rows {
			if row.Item == nil {
				r.log.Debug("skipping dangling relation",
					zap.String("source_id", sourceID),
					zap.String("relation_id", row.RelationID))
				continue
			}
			out.add(*row.Item)
		}
		if len(rows) < limit {
			break
		}
	}
	if out.len() > 0 {
		return out.items, nil
	}

	if categoryID == nil || *categoryID == "" {
		return []T{}, nil
	}
	items, err := r.store.ListByCategory(ctx, *categoryID, sourceID, limit)
	if err != nil {
		return nil, r.fail("fallback", sourceID, err)
	}
	for _, item := range items {
		if r.visible(item) {
			out.add(item)
		}
	}
	return out.items, nil
}

// fail wraps a store error so it always reads as unavailable.
func (r *Resolver[T]) fail(op, sourceID string, err error) error {
	if !errors.Is(err, runtime.ErrStoreUnavailable) {
		err = fmt.Errorf("%w: %w", runtime.ErrStoreUnavailable, err)
	}
	r.log.Warn("related resolution failed",
		zap.String("op", op),
		zap.String("source_id", sourceID),
		zap.Error(err))
	return &ResolveError{Op: op, SourceID: sourceID, Err: err}
}

// collector accumulates distinct items other than the source, up to a limit.
type collector[T Item] struct {
	exclude string
	limit   int
	seen    map[string]struct{}
	items   []T
}

// newCollector sizes nothing up front; limit comes from the caller.
func newCollector[T Item](exclude string, limit int) *collector[T] {
	return &collector[T]{
		exclude: exclude,
		limit:   limit,
		seen:    make(map[string]struct{}),
		items:   []T{},
	}
}

func (c *collector[T]) add(item T) {
	id := item.ItemID()
	if len(c.items) >= c.limit || id == c.exclude {
		return
	}
	if _, dup := c.seen[id]; dup {
		return
	}
	c.seen[id] = struct{}{}
	c.items = append(c.items, item)
}

func (c *collector[T]) len() int { return len(c.items) }
