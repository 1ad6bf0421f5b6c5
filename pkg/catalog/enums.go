package catalog

import (
	"fmt"
	"slices"
)

// Availability is the stock state of a product.
type Availability string

const (
	InStock    Availability = "in-stock"
	OutOfStock Availability = "out-of-stock"
	Limited    Availability = "limited"
)

// Availabilities lists every availability value.
var Availabilities = []Availability{InStock, OutOfStock, Limited}

// Valid reports whether a is a known availability.
func (a Availability) Valid() bool { return slices.Contains(Availabilities, a) }

// ProductRelationType labels a curated product relation.
type ProductRelationType string

const (
	ProductRelated       ProductRelationType = "related"
	ProductSimilar       ProductRelationType = "similar"
	ProductComplementary ProductRelationType = "complementary"
)

// ProductRelationTypes lists every product relation type.
var ProductRelationTypes = []ProductRelationType{ProductRelated, ProductSimilar, ProductComplementary}

// Valid reports whether t is a known product relation type.
func (t ProductRelationType) Valid() bool { return slices.Contains(ProductRelationTypes, t) }

// PostRelationType labels a curated blog post relation.
type PostRelationType string

const (
	PostRelated  PostRelationType = "related"
	PostSimilar  PostRelationType = "similar"
	PostFollowUp PostRelationType = "follow_up"
)

// PostRelationTypes lists every post relation type.
var PostRelationTypes = []PostRelationType{PostRelated, PostSimilar, PostFollowUp}

// Valid reports whether t is a known post relation type.
func (t PostRelationType) Valid() bool { return slices.Contains(PostRelationTypes, t) }

// QuoteStatus tracks a quote request through review.
type QuoteStatus string

const (
	QuotePending   QuoteStatus = "pending"
	QuoteReviewed  QuoteStatus = "reviewed"
	QuoteResponded QuoteStatus = "responded"
	QuoteClosed    QuoteStatus = "closed"
)

// QuoteStatuses lists every quote status in workflow order.
var QuoteStatuses = []QuoteStatus{QuotePending, QuoteReviewed, QuoteResponded, QuoteClosed}

// Valid reports whether s is a known quote status.
func (s QuoteStatus) Valid() bool { return slices.Contains(QuoteStatuses, s) }

// MessageStatus tracks a contact message through the inbox.
type MessageStatus string

const (
	MessageUnread    MessageStatus = "unread"
	MessageRead      MessageStatus = "read"
	MessageResponded MessageStatus = "responded"
)

// MessageStatuses lists every message status in workflow order.
var MessageStatuses = []MessageStatus{MessageUnread, MessageRead, MessageResponded}

// Valid reports whether s is a known message status.
func (s MessageStatus) Valid() bool { return slices.Contains(MessageStatuses, s) }

// enum is satisfied by every closed enumeration in this package.
type enum interface {
	~string
	Valid() bool
}

// Parse converts s to the enumeration E, rejecting unknown values.
func Parse[E enum](s string) (E, error) {
	e := E(s)
	if !e.Valid() {
		var zero E
		return zero, fmt.Errorf("unknown %T %q", zero, s)
	}
	return e, nil
}
