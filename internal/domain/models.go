package domain

import "github.com/shopspring/decimal"

type Category struct {
	ID        string `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	CreatedAt string `db:"created_at" json:"createdAt"`
	UpdatedAt string `db:"updated_at" json:"updatedAt"`
}

type Product struct {
	ID             string          `db:"id" json:"id"`
	CategoryID     string          `db:"category_id" json:"categoryId"`
	Name           string          `db:"name" json:"name"`
	Slug           string          `db:"slug" json:"slug"`
	Description    string          `db:"description" json:"description"`
	Price          decimal.Decimal `db:"price" json:"price"`
	Stock          int             `db:"stock" json:"stock"`
	BlockedQty     int             `db:"blocked_qty" json:"blockedQuantity"`
	ImagesJSON     string          `db:"images_json" json:"-"`
	IsFeatured     bool            `db:"is_featured" json:"isFeatured"`
	Banner         string          `db:"banner" json:"banner,omitempty"`
	CodeIdentifier string          `db:"code_identifier" json:"codeIdentifier,omitempty"`
	IsPublished    bool            `db:"is_published" json:"isPublished"`
	CreatedAt      string          `db:"created_at" json:"createdAt"`
	UpdatedAt      string          `db:"updated_at" json:"updatedAt"`
}

// Drum is the category-specific specification for drum products.
// A product carries at most one of Drum or Other, never both.
type Drum struct {
	ProductID  string `db:"product_id" json:"productId"`
	SkinTypeID string `db:"skin_type_id" json:"skinTypeId"`
	DiameterID string `db:"diameter_id" json:"diameterId"`
}

type Other struct {
	ProductID string `db:"product_id" json:"productId"`
	Color     string `db:"color" json:"color,omitempty"`
	Material  string `db:"material" json:"material,omitempty"`
	Size      string `db:"size" json:"size,omitempty"`
}

type SkinType struct {
	ID       string `db:"id" json:"id"`
	Material string `db:"material" json:"material"`
}

type DrumDiameter struct {
	ID   string `db:"id" json:"id"`
	Size int    `db:"size" json:"size"`
}

// CartItem is one cart line; Price is the snapshot taken at add time,
// not a live reference to the product price.
type CartItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Slug      string          `json:"slug"`
	Image     string          `json:"image,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Qty       int             `json:"qty"`
}

type Cart struct {
	ID            string          `db:"id" json:"id"`
	SessionCartID string          `db:"session_cart_id" json:"sessionCartId"`
	UserID        string          `db:"user_id" json:"userId,omitempty"`
	ItemsJSON     string          `db:"items_json" json:"-"`
	Items         []CartItem      `db:"-" json:"items"`
	ItemsPrice    decimal.Decimal `db:"items_price" json:"itemsPrice"`
	TaxPrice      decimal.Decimal `db:"tax_price" json:"taxPrice"`
	ShippingPrice decimal.Decimal `db:"shipping_price" json:"shippingPrice"`
	TotalPrice    decimal.Decimal `db:"total_price" json:"totalPrice"`
	CreatedAt     string          `db:"created_at" json:"createdAt"`
	UpdatedAt     string          `db:"updated_at" json:"updatedAt"`
}

type ShippingAddress struct {
	FullName      string `json:"fullName"`
	StreetAddress string `json:"streetAddress"`
	City          string `json:"city"`
	PostalCode    string `json:"postalCode"`
	Country       string `json:"country"`
}

type PaymentResult struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	EmailAddress string `json:"emailAddress"`
	PricePaid    string `json:"pricePaid"`
}

// Order is an immutable checkout snapshot. Prices are copied from the
// cart at placement time and never recomputed afterwards.
type Order struct {
	ID            string          `db:"id" json:"id"`
	UserID        string          `db:"user_id" json:"userId"`
	AddressJSON   string          `db:"address_json" json:"-"`
	PaymentMethod string          `db:"payment_method" json:"paymentMethod"`
	ItemsPrice    decimal.Decimal `db:"items_price" json:"itemsPrice"`
	TaxPrice      decimal.Decimal `db:"tax_price" json:"taxPrice"`
	ShippingPrice decimal.Decimal `db:"shipping_price" json:"shippingPrice"`
	TotalPrice    decimal.Decimal `db:"total_price" json:"totalPrice"`
	IsPaid        bool            `db:"is_paid" json:"isPaid"`
	PaidAt        string          `db:"paid_at" json:"paidAt,omitempty"`
	IsDelivered   bool            `db:"is_delivered" json:"isDelivered"`
	DeliveredAt   string          `db:"delivered_at" json:"deliveredAt,omitempty"`
	ResultJSON    string          `db:"payment_result_json" json:"-"`
	CreatedAt     string          `db:"created_at" json:"createdAt"`
}

type OrderItem struct {
	OrderID   string          `db:"order_id" json:"-"`
	ProductID string          `db:"product_id" json:"productId"`
	Name      string          `db:"name" json:"name"`
	Slug      string          `db:"slug" json:"slug"`
	Image     string          `db:"image" json:"image,omitempty"`
	Price     decimal.Decimal `db:"price" json:"price"`
	Qty       int             `db:"qty" json:"qty"`
}

type Article struct {
	ID          string `db:"id" json:"id"`
	Title       string `db:"title" json:"title"`
	Slug        string `db:"slug" json:"slug"`
	Thumbnail   string `db:"thumbnail" json:"thumbnail,omitempty"`
	CategoryID  string `db:"category_id" json:"categoryId,omitempty"`
	IsPublished bool   `db:"is_published" json:"isPublished"`
	IsFeatured  bool   `db:"is_featured" json:"isFeatured"`
	Banner      string `db:"banner" json:"banner,omitempty"`
	CreatedAt   string `db:"created_at" json:"createdAt"`
	UpdatedAt   string `db:"updated_at" json:"updatedAt"`
}

type ArticleSection struct {
	ID         string `db:"id" json:"sectionId"`
	ArticleID  string `db:"article_id" json:"articleId"`
	Title      string `db:"title" json:"title"`
	Position   int    `db:"position" json:"position"`
	Body       string `db:"body" json:"body,omitempty"`
	Image      string `db:"image" json:"image,omitempty"`
	YouTubeURL string `db:"youtube_url" json:"youTubeUrl,omitempty"`
}

type ArticleComment struct {
	ID        string `db:"id" json:"id"`
	ArticleID string `db:"article_id" json:"articleId"`
	UserID    string `db:"user_id" json:"userId"`
	Title     string `db:"title" json:"title"`
	Body      string `db:"body" json:"body"`
	CreatedAt string `db:"created_at" json:"createdAt"`
}
