package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/marshallshelly/agroexport/pkg/builder"
	"github.com/marshallshelly/agroexport/pkg/catalog"
	"github.com/marshallshelly/agroexport/pkg/runtime"
)

// Contact manages contact form messages.
type Contact struct {
	db  *builder.DB
	log *zap.Logger
}

// Submit validates and stores a new unread message.
func (c *Contact) Submit(ctx context.Context, in catalog.ContactInput) (*catalog.ContactMessage, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	created, err := builder.Insert[catalog.ContactMessage](c.db).One(ctx, in.ContactMessage())
	if err != nil {
		return nil, fmt.Errorf("submit message: %w", err)
	}
	c.log.Info("message received", zap.String("id", created.ID))
	return created, nil
}

// List returns messages newest first. An empty status or "all" lists every
// message.
func (c *Contact) List(ctx context.Context, status string) ([]catalog.ContactMessage, error) {
	q := builder.Select[catalog.ContactMessage](c.db).OrderByDesc("created_at")
	if status != "" && status != "all" {
		s, err := catalog.Parse[catalog.MessageStatus](status)
		if err != nil {
			return nil, runtime.Invalid("status", "%v", err)
		}
		q.Where(builder.Eq("status", s))
	}
	msgs, err := q.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return nonNil(msgs), nil
}

// Get returns one message.
func (c *Contact) Get(ctx context.Context, id string) (*catalog.ContactMessage, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	msg, err := builder.Select[catalog.ContactMessage](c.db).Where(builder.Eq("id", id)).First(ctx)
	if err != nil {
		return nil, fmt.Errorf("get message %s: %w", id, err)
	}
	return msg, nil
}

// UpdateStatus moves a message to status.
func (c *Contact) UpdateStatus(ctx context.Context, id, status string) (*catalog.ContactMessage, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	s, err := catalog.Parse[catalog.MessageStatus](status)
	if err != nil {
		return nil, runtime.Invalid("status", "%v", err)
	}
	updated, err := builder.Update[catalog.ContactMessage](c.db).
		Set("status", s).
		Where(builder.Eq("id", id)).
		One(ctx)
	if err != nil {
		return nil, fmt.Errorf("update message %s: %w", id, err)
	}
	return updated, nil
}

// Delete removes a message.
func (c *Contact) Delete(ctx context.Context, id string) error {
	if err := requireID("id", id); err != nil {
		return err
	}
	if err := builder.Delete[catalog.ContactMessage](c.db).Where(builder.Eq("id", id)).One(ctx); err != nil {
		return fmt.Errorf("delete message %s: %w", id, err)
	}
	return nil
}

// Statistics counts messages in total and per status.
func (c *Contact) Statistics(ctx context.Context) (Stats, error) {
	rows, err := builder.Select[catalog.ContactMessage](c.db).Columns("status").All(ctx)
	if err != nil {
		return nil, fmt.Errorf("message statistics: %w", err)
	}
	statuses := make([]catalog.MessageStatus, len(rows))
	for i, r := range rows {
		statuses[i] = r.Status
	}
	return countStatuses(catalog.MessageStatuses, statuses), nil
}

// Recent returns the n newest messages.
func (c *Contact) Recent(ctx context.Context, n int) ([]catalog.ContactMessage, error) {
	msgs, err := builder.Select[catalog.ContactMessage](c.db).OrderByDesc("created_at").Limit(n).All(ctx)
	if err != nil {
		return nil, fmt.Errorf("recent messages: %w", err)
	}
	return nonNil(msgs), nil
}
