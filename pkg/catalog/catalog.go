// Package catalog defines the entities of the export catalog, their closed
// enumerations and the public visibility rules.
package catalog

import "time"

// Category groups products.
type Category struct {
	ID          string    `po:"id,primaryKey,uuid,default(gen_random_uuid())" json:"id"`
	Name        string    `po:"name,text,notNull" json:"name"`
	Slug        string    `po:"slug,text,unique,notNull" json:"slug"`
	Description *string   `po:"description,text" json:"description,omitempty"`
	CreatedAt   time.Time `po:"created_at,timestamptz,notNull,default(NOW())" json:"created_at"`
	UpdatedAt   time.Time `po:"updated_at,timestamptz,notNull,default(NOW())" json:"updated_at"`
}

func (Category) TableName() string { return "categories" }

// Product is a sellable catalog item. Products are always publicly visible.
type Product struct {
	ID           string       `po:"id,primaryKey,uuid,default(gen_random_uuid())" json:"id"`
	Name         string       `po:"name,text,notNull" json:"name"`
	Slug         string       `po:"slug,text,unique,notNull" json:"slug"`
	Description  string       `po:"description,text,notNull,default('')" json:"description"`
	CategoryID   *string      `po:"category_id,uuid,fk(categories.id),onDelete(SET NULL),index" json:"category_id,omitempty"`
	BasePrice    float64      `po:"base_price,numeric(10,2),notNull,default(0)" json:"base_price"`
	Availability Availability `po:"availability,text,notNull,default('in-stock'),check(availability IN ('in-stock','out-of-stock','limited'))" json:"availability"`
	Features     []string     `po:"features,text[],notNull,default('{}')" json:"features"`
	CreatedAt    time.Time    `po:"created_at,timestamptz,notNull,default(NOW()),index" json:"created_at"`
	UpdatedAt    time.Time    `po:"updated_at,timestamptz,notNull,default(NOW())" json:"updated_at"`

	Category *Category       `json:"category,omitempty"`
	Images   []ProductImage   `json:"images,omitempty"`
	Packages []ProductPackage `json:"packages,omitempty"`
}

func (Product) TableName() string { return "products" }

// ItemID returns the product id.
func (p Product) ItemID() string { return p.ID }

// ItemCategory returns the product's category id, nil when uncategorised.
func (p Product) ItemCategory() *string { return p.CategoryID }

// ProductImage is one picture of a product.
type ProductImage struct {
	ID        string    `po:"id,primaryKey,uuid,default(gen_random_uuid())" json:"id"`
	ProductID string    `po:"product_id,uuid,notNull,fk(products.id),onDelete(CASCADE),index" json:"product_id"`
	ImageURL  string    `po:"image_url,text,notNull" json:"image_url"`
	AltText   *string   `po:"alt_text,text" json:"alt_text,omitempty"`
	SortOrder int       `po:"sort_order,integer,notNull,default(0)" json:"sort_order"`
	CreatedAt time.Time `po:"created_at,timestamptz,notNull,default(NOW())" json:"created_at"`
}

func (ProductImage) TableName() string { return "product_images" }

// ProductPackage is a purchasable package size of a product.
type ProductPackage struct {
	ID        string    `po:"id,primaryKey,uuid,default(gen_random_uuid())" json:"id"`
	ProductID string    `po:"product_id,uuid,notNull,fk(products.id),onDelete(CASCADE),index" json:"product_id"`
	Weight    string    `po:"weight,text,notNull" json:"weight"`
	Price     float64   `po:"price,numeric(10,2),notNull" json:"price"`
	IsDefault bool      `po:"is_default,boolean,notNull,default(false)" json:"is_default"`
	CreatedAt time.Time `po:"created_at,timestamptz,notNull,default(NOW())" json:"created_at"`
}

func (ProductPackage) TableName() string { return "product_packages" }

// BlogCategory groups blog posts.
type BlogCategory struct {
	ID        string    `po:"id,primaryKey,uuid,default(gen_random_uuid())" json:"id"`
	Name      string    `po:"name,text,notNull" json:"name"`
	Slug      string    `po:"slug,text,unique,notNull" json:"slug"`
	CreatedAt time.Time `po:"created_at,timestamptz,notNull,default(NOW())" json:"created_at"`
}

func (BlogCategory) TableName() string { return "blog_categories" }

// BlogPost is an article. Only published posts are publicly visible.
type BlogPost struct {
	ID            string    `po:"id,primaryKey,uuid,default(gen_random_uuid())" json:"id"`
	Title         string    `po:"title,text,notNull" json:"title"`
	Slug          string    `po:"slug,text,unique,notNull" json:"slug"`
	Excerpt       string    `po:"excerpt,text,notNull,default('')" json:"excerpt"`
	Content       string    `po:"content,text,notNull,default('')" json:"content"`
	CategoryID    *string   `po:"category_id,uuid,fk(blog_categories.id),onDelete(SET NULL),index" json:"category_id,omitempty"`
	Author        string    `po:"author,text,notNull,default('')" json:"author"`
	ReadTime      string    `po:"read_time,text,notNull,default('')" json:"read_time"`
	FeaturedImage *string   `po:"featured_image,text" json:"featured_image,omitempty"`
	Published     bool      `po:"published,boolean,notNull,default(false),index" json:"published"`
	PublishedAt   time.Time `po:"published_at,timestamptz,notNull,default(NOW())" json:"published_at"`
	CreatedAt     time.Time `po:"created_at,timestamptz,notNull,default(NOW())" json:"created_at"`
	UpdatedAt     time.Time `po:"updated_at,timestamptz,notNull,default(NOW())" json:"updated_at"`

	Category *BlogCategory `json:"category,omitempty"`
	Images   []BlogImage   `json:"images,omitempty"`
}

func (BlogPost) TableName() string { return "blog_posts" }

// ItemID returns the post id.
func (p BlogPost) ItemID() string { return p.ID }

// ItemCategory returns the post's category id, nil when uncategorised.
func (p BlogPost) ItemCategory() *string { return p.CategoryID }

// BlogImage is one picture attached to a post.
type BlogImage struct {
	ID         string    `po:"id,primaryKey,uuid,default(gen_random_uuid())" json:"id"`
	BlogPostID string    `po:"blog_post_id,uuid,notNull,fk(blog_posts.id),onDelete(CASCADE),index" json:"blog_post_id"`
	ImageURL   string    `po:"image_url,text,notNull" json:"image_url"`
	AltText    *string   `po:"alt_text,text" json:"alt_text,omitempty"`
	SortOrder  int       `po:"sort_order,integer,notNull,default(0)" json:"sort_order"`
	CreatedAt  time.Time `po:"created_at,timestamptz,notNull,default(NOW())" json:"created_at"`
}

func (BlogImage) TableName() string { return "blog_images" }

// ProductRelation is a curated, directed link between two products.
type ProductRelation struct {
	ID               string              `po:"id,primaryKey,uuid,default(gen_random_uuid())" json:"id"`
	ProductID        string              `po:"product_id,uuid,notNull,fk(products.id),onDelete(CASCADE),index,unique(triple)" json:"product_id"`
	RelatedProductID string              `po:"related_product_id,uuid,notNull,fk(products.id),onDelete(CASCADE),unique(triple)" json:"related_product_id"`
	RelationType     ProductRelationType `po:"relation_type,text,notNull,default('related'),unique(triple),check(relation_type IN ('related','similar','complementary'))" json:"relation_type"`
	DisplayOrder     int                 `po:"display_order,integer,notNull,default(0)" json:"display_order"`
	CreatedAt        time.Time           `po:"created_at,timestamptz,notNull,default(NOW())" json:"created_at"`

	RelatedProduct *Product `json:"related_product,omitempty"`
}

func (ProductRelation) TableName() string { return "product_relations" }

// BlogPostRelation is a curated, directed link between two posts.
type BlogPostRelation struct {
	ID                string           `po:"id,primaryKey,uuid,default(gen_random_uuid())" json:"id"`
	BlogPostID        string           `po:"blog_post_id,uuid,notNull,fk(blog_posts.id),onDelete(CASCADE),index,unique(triple)" json:"blog_post_id"`
	RelatedBlogPostID string           `po:"related_blog_post_id,uuid,notNull,fk(blog_posts.id),onDelete(CASCADE),unique(triple)" json:"related_blog_post_id"`
	RelationType      PostRelationType `po:"relation_type,text,notNull,default('related'),unique(triple),check(relation_type IN ('related','similar','follow_up'))" json:"relation_type"`
	DisplayOrder      int              `po:"display_order,integer,notNull,default(0)" json:"display_order"`
	CreatedAt         time.Time        `po:"created_at,timestamptz,notNull,default(NOW())" json:"created_at"`

	RelatedBlogPost *BlogPost `json:"related_blog_post,omitempty"`
}

func (BlogPostRelation) TableName() string { return "blog_post_relations" }

// QuoteRequest is a customer's request for a price.
type QuoteRequest struct {
	ID            string      `po:"id,primaryKey,uuid,default(gen_random_uuid())" json:"id"`
	ProductID     *string     `po:"product_id,uuid,fk(products.id),onDelete(SET NULL)" json:"product_id,omitempty"`
	CustomerName  string      `po:"customer_name,text,notNull" json:"customer_name"`
	CustomerEmail string      `po:"customer_email,text,notNull" json:"customer_email"`
	CustomerPhone *string     `po:"customer_phone,text" json:"customer_phone,omitempty"`
	CompanyName   *string     `po:"company_name,text" json:"company_name,omitempty"`
	Quantity      int         `po:"quantity,integer,notNull,check(quantity > 0)" json:"quantity"`
	PackageSize   string      `po:"package_size,text,notNull" json:"package_size"`
	Message       *string     `po:"message,text" json:"message,omitempty"`
	Status        QuoteStatus `po:"status,text,notNull,default('pending'),index,check(status IN ('pending','reviewed','responded','closed'))" json:"status"`
	CreatedAt     time.Time   `po:"created_at,timestamptz,notNull,default(NOW())" json:"created_at"`

	Product *Product `json:"product,omitempty"`
}

func (QuoteRequest) TableName() string { return "quote_requests" }

// ContactMessage is a message sent through the contact form.
type ContactMessage struct {
	ID        string        `po:"id,primaryKey,uuid,default(gen_random_uuid())" json:"id"`
	Name      string        `po:"name,text,notNull" json:"name"`
	Email     string        `po:"email,text,notNull" json:"email"`
	Phone     *string       `po:"phone,text" json:"phone,omitempty"`
	Subject   string        `po:"subject,text,notNull" json:"subject"`
	Message   string        `po:"message,text,notNull" json:"message"`
	Status    MessageStatus `po:"status,text,notNull,default('unread'),index,check(status IN ('unread','read','responded'))" json:"status"`
	CreatedAt time.Time     `po:"created_at,timestamptz,notNull,default(NOW())" json:"created_at"`
}

func (ContactMessage) TableName() string { return "contact_messages" }

// HomepageProduct places a product on the homepage.
type HomepageProduct struct {
	ID           string    `po:"id,primaryKey,uuid,default(gen_random_uuid())" json:"id"`
	ProductID    string    `po:"product_id,uuid,notNull,unique,fk(products.id),onDelete(CASCADE)" json:"product_id"`
	DisplayOrder int       `po:"display_order,integer,notNull,default(0)" json:"display_order"`
	IsActive     bool      `po:"is_active,boolean,notNull,default(true)" json:"is_active"`
	CreatedAt    time.Time `po:"created_at,timestamptz,notNull,default(NOW())" json:"created_at"`
	UpdatedAt    time.Time `po:"updated_at,timestamptz,notNull,default(NOW())" json:"updated_at"`

	Product *Product `json:"product,omitempty"`
}

func (HomepageProduct) TableName() string { return "homepage_products" }

// HomepageBlogPost places a blog post on the homepage.
type HomepageBlogPost struct {
	ID           string    `po:"id,primaryKey,uuid,default(gen_random_uuid())" json:"id"`
	BlogPostID   string    `po:"blog_post_id,uuid,notNull,unique,fk(blog_posts.id),onDelete(CASCADE)" json:"blog_post_id"`
	DisplayOrder int       `po:"display_order,integer,notNull,default(0)" json:"display_order"`
	IsActive     bool      `po:"is_active,boolean,notNull,default(true)" json:"is_active"`
	CreatedAt    time.Time `po:"created_at,timestamptz,notNull,default(NOW())" json:"created_at"`
	UpdatedAt    time.Time `po:"updated_at,timestamptz,notNull,default(NOW())" json:"updated_at"`

	BlogPost *BlogPost `json:"blog_post,omitempty"`
}

func (HomepageBlogPost) TableName() string { return "homepage_blog_posts" }

// Models lists every catalog table model, referenced tables first.
func Models() []any {
	return []any{
		Category{},
		Product{},
		ProductImage{},
		ProductPackage{},
		BlogCategory{},
		BlogPost{},
		BlogImage{},
		ProductRelation{},
		BlogPostRelation{},
		QuoteRequest{},
		ContactMessage{},
		HomepageProduct{},
		HomepageBlogPost{},
	}
}
