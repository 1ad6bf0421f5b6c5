package catalog

import "github.com/marshallshelly/agroexport/pkg/builder"

// ProductVisible reports whether a product may be shown publicly. Every
// product is.
func ProductVisible(Product) bool { return true }

// PostVisible reports whether a blog post may be shown publicly.
func PostVisible(p BlogPost) bool { return p.Published }

// PublishedCondition is the query form of PostVisible.
func PublishedCondition() builder.Condition {
	return builder.Eq("published", true)
}
