package catalog

import (
	"net/mail"
	"regexp"
	"strings"

	"github.com/marshallshelly/agroexport/pkg/runtime"
)

// QuoteInput is a quote request as submitted by a customer.
type QuoteInput struct {
	ProductID     *string `json:"product_id,omitempty"`
	CustomerName  string  `json:"customer_name"`
	CustomerEmail string  `json:"customer_email"`
	CustomerPhone *string `json:"customer_phone,omitempty"`
	CompanyName   *string `json:"company_name,omitempty"`
	Quantity      int     `json:"quantity"`
	PackageSize   string  `json:"package_size"`
	Message       *string `json:"message,omitempty"`
}

// Validate checks the fields a quote cannot be processed without.
func (in QuoteInput) Validate() error {
	if strings.TrimSpace(in.CustomerName) == "" {
		return runtime.Invalid("customer_name", "is required")
	}
	if err := validateEmail("customer_email", in.CustomerEmail); err != nil {
		return err
	}
	if in.Quantity <= 0 {
		return runtime.Invalid("quantity", "must be positive, got %d", in.Quantity)
	}
	if strings.TrimSpace(in.PackageSize) == "" {
		return runtime.Invalid("package_size", "is required")
	}
	return nil
}

// QuoteRequest builds the pending quote request for a valid input.
func (in QuoteInput) QuoteRequest() QuoteRequest {
	return QuoteRequest{
		ProductID:     in.ProductID,
		CustomerName:  strings.TrimSpace(in.CustomerName),
		CustomerEmail: strings.TrimSpace(in.CustomerEmail),
		CustomerPhone: in.CustomerPhone,
		CompanyName:   in.CompanyName,
		Quantity:      in.Quantity,
		PackageSize:   in.PackageSize,
		Message:       in.Message,
		Status:        QuotePending,
	}
}

// ContactInput is a contact form submission.
type ContactInput struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   *string `json:"phone,omitempty"`
	Subject string  `json:"subject"`
	Message string  `json:"message"`
}

// Validate checks that every required field is present.
func (in ContactInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return runtime.Invalid("name", "is required")
	}
	if err := validateEmail("email", in.Email); err != nil {
		return err
	}
	if strings.TrimSpace(in.Subject) == "" {
		return runtime.Invalid("subject", "is required")
	}
	if strings.TrimSpace(in.Message) == "" {
		return runtime.Invalid("message", "is required")
	}
	return nil
}

// ContactMessage builds the unread contact message for a valid input.
func (in ContactInput) ContactMessage() ContactMessage {
	return ContactMessage{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Phone:   in.Phone,
		Subject: strings.TrimSpace(in.Subject),
		Message: in.Message,
		Status:  MessageUnread,
	}
}

func validateEmail(field, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return runtime.Invalid(field, "is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return runtime.Invalid(field, "%q is not an email address", email)
	}
	return nil
}

var whitespace = regexp.MustCompile(`\s+`)

// Slugify lowercases s and joins its words with hyphens.
func Slugify(s string) string {
	return whitespace.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-")
}

// ValidateProduct checks a product before it is written.
func ValidateProduct(p Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return runtime.Invalid("name", "is required")
	}
	if strings.TrimSpace(p.Slug) == "" {
		return runtime.Invalid("slug", "is required")
	}
	if p.BasePrice < 0 {
		return runtime.Invalid("base_price", "must not be negative")
	}
	if p.Availability != "" && !p.Availability.Valid() {
		return runtime.Invalid("availability", "unknown value %q", p.Availability)
	}
	return nil
}

// ValidatePost checks a blog post before it is written.
func ValidatePost(p BlogPost) error {
	if strings.TrimSpace(p.Title) == "" {
		return runtime.Invalid("title", "is required")
	}
	if strings.TrimSpace(p.Slug) == "" {
		return runtime.Invalid("slug", "is required")
	}
	return nil
}

// ValidateCategory checks the name and slug of a category.
func ValidateCategory(name, slug string) error {
	if strings.TrimSpace(name) == "" {
		return runtime.Invalid("name", "is required")
	}
	if strings.TrimSpace(slug) == "" {
		return runtime.Invalid("slug", "is required")
	}
	return nil
}
