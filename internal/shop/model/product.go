package model

import (
	"github.com/shopspring/decimal"
)

// Product is a snapshot of one catalog entry as last reported by the remote catalog service.
type Product struct {
	ID          int64           `json:"id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    *int            `json:"quantity"` // nil when the service omitted stock data
	Threshold   int             `json:"threshold"`
	Description string          `json:"description"`
	Categories  []string        `json:"categories"`
	Image       string          `json:"image,omitempty"` // data URI, empty when absent
}

// Available returns the authoritative stock level and whether it is usable.
func (p Product) Available() (int, bool) {
	if p.Quantity == nil || *p.Quantity < 0 {
		return 0, false
	}
	return *p.Quantity, true
}

// NeedsRestock reports whether stock is at or below the restock threshold.
func (p Product) NeedsRestock() bool {
	q, ok := p.Available()
	return ok && q <= p.Threshold
}

// HasCategory reports whether the product is tagged with the named category.
func (p Product) HasCategory(name string) bool {
	for _, c := range p.Categories {
		if c == name {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no mutable state with p.
func (p Product) Clone() Product {
	out := p
	if p.Quantity != nil {
		q := *p.Quantity
		out.Quantity = &q
	}
	if p.Categories != nil {
		out.Categories = append([]string(nil), p.Categories...)
	}
	return out
}

// ProductInput is the payload for creating or updating a product.
// Nil fields are left out of PATCH bodies.
type ProductInput struct {
	SKU         *string          `json:"sku,omitempty"`
	Name        *string          `json:"name,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Quantity    *int             `json:"quantity,omitempty"`
	Threshold   *int             `json:"threshold,omitempty"`
	Description *string          `json:"description,omitempty"`
	CategoryIDs []int64          `json:"category_id,omitempty"`
}

// ImageUpload carries a product image file for multipart upload.
type ImageUpload struct {
	Filename string
	Content  []byte
}

// Credentials are the admin login fields.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
