package storefront

import (
	"net/url"
	"strconv"
	"time"
)

// Product is a catalog entry as the backend serves it. Amounts are integer cents.
type Product struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	SKU         string `json:"sku"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Price       int64  `json:"priceCents"`
	Currency    string `json:"currency"`
	InStock     bool   `json:"inStock"`
}

// ListQuery narrows catalog listings.
type ListQuery struct {
	// Search is a free-text filter.
	Search string
	// Category filters by category slug.
	Category string
	// Page is 1-based; zero means the first page.
	Page int
	// PerPage caps the page size; zero lets the backend decide.
	PerPage int
}

// values encodes the query for the wire.
func (q ListQuery) values() url.Values {
	vals := url.Values{}

	if q.Search != "" {
		vals.Set("q", q.Search)
	}

	if q.Category != "" {
		vals.Set("category", q.Category)
	}

	if q.Page > 0 {
		vals.Set("page", strconv.Itoa(q.Page))
	}

	if q.PerPage > 0 {
		vals.Set("perPage", strconv.Itoa(q.PerPage))
	}

	return vals
}

// AddItemParams describes a product being added to the cart.
type AddItemParams struct {
	SKU      string `json:"sku"`
	Name     string `json:"name"`
	Price    int64  `json:"priceCents"`
	Quantity int    `json:"quantity"`
}

// OrderSummary is one row of the order history list.
type OrderSummary struct {
	Number    string    `json:"number"`
	Status    string    `json:"status"`
	Total     int64     `json:"totalCents"`
	Currency  string    `json:"currency"`
	PlacedAt  time.Time `json:"placedAt"`
	ItemCount int       `json:"itemCount"`
}

// OrderLine is a purchased line item.
type OrderLine struct {
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unitPriceCents"`
}

// Order is a full order record.
type Order struct {
	Number   string      `json:"number"`
	Status   string      `json:"status"`
	Lines    []OrderLine `json:"lines"`
	Subtotal int64       `json:"subtotalCents"`
	Discount int64       `json:"discountCents"`
	Total    int64       `json:"totalCents"`
	Currency string      `json:"currency"`
	PlacedAt time.Time   `json:"placedAt"`
}

// PaymentIntent is the unified payment-initialization result. The legacy
// per-provider initialization path is deprecated and not modelled.
type PaymentIntent struct {
	ID          string `json:"id"`
	OrderNumber string `json:"orderNumber"`
	Method      string `json:"method"`
	Status      string `json:"status"`
	RedirectURL string `json:"redirectUrl,omitempty"`
	ClientToken string `json:"clientToken,omitempty"`
}
