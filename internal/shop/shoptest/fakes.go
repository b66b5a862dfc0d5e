// Package shoptest provides in-memory collaborators for exercising the shop packages.
package shoptest

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"sync"

	"github.com/shopspring/decimal"

	errx "github.com/shopfront-core/server/internal/core/error"
	"github.com/shopfront-core/server/internal/shop/model"
)

var ErrUnavailable = errors.New("catalog service unavailable")

// Product builds a snapshot with a numeric stock level.
func Product(id int64, price string, quantity int, categories ...string) model.Product {
	q := quantity
	return model.Product{
		ID:         id,
		SKU:        "SKU-" + strconv.FormatInt(id, 10),
		Name:       "Product " + strconv.FormatInt(id, 10),
		Price:      decimal.RequireFromString(price),
		Quantity:   &q,
		Threshold:  5,
		Categories: categories,
	}
}

// Catalog is a scriptable model.CatalogService.
//
// ListFunc, when set, replaces the default ListProducts behaviour, which serves
// Products unfiltered. Err makes every call fail.
type Catalog struct {
	mu       sync.Mutex
	Products []model.Product
	ListFunc func(ctx context.Context, categoryIDs []int64) ([]model.Product, error)
	Err      error
	Restocks map[int64]int
	calls    []string
	nextID   int64
}

func NewCatalog(products ...model.Product) *Catalog {
	return &Catalog{Products: products, Restocks: map[int64]int{}, nextID: 1000}
}

func (c *Catalog) record(op string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, op)
	return c.Err
}

// Calls lists the operations received so far.
func (c *Catalog) Calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.calls)
}

// SetProducts replaces what ListProducts serves.
func (c *Catalog) SetProducts(products ...model.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Products = products
}

func (c *Catalog) ListProducts(ctx context.Context, categoryIDs []int64) ([]model.Product, error) {
	if err := c.record("list"); err != nil {
		return nil, err
	}
	if c.ListFunc != nil {
		return c.ListFunc(ctx, categoryIDs)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Product, len(c.Products))
	for i, p := range c.Products {
		out[i] = p.Clone()
	}
	return out, nil
}

func (c *Catalog) find(id int64) (int, error) {
	i := slices.IndexFunc(c.Products, func(p model.Product) bool { return p.ID == id })
	if i < 0 {
		return -1, errx.FromStatus(404, "product not found")
	}
	return i, nil
}

func apply(p *model.Product, in model.ProductInput) {
	if in.SKU != nil {
		p.SKU = *in.SKU
	}
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Quantity != nil {
		q := *in.Quantity
		p.Quantity = &q
	}
	if in.Threshold != nil {
		p.Threshold = *in.Threshold
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
}

func (c *Catalog) CreateProduct(ctx context.Context, in model.ProductInput) (model.Product, error) {
	if err := c.record("create"); err != nil {
		return model.Product{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	p := model.Product{ID: c.nextID}
	apply(&p, in)
	c.Products = append(c.Products, p)
	return p.Clone(), nil
}

func (c *Catalog) UpdateProduct(ctx context.Context, id int64, in model.ProductInput) (model.Product, error) {
	if err := c.record("update"); err != nil {
		return model.Product{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	i, err := c.find(id)
	if err != nil {
		return model.Product{}, err
	}
	apply(&c.Products[i], in)
	return c.Products[i].Clone(), nil
}

func (c *Catalog) UploadImage(ctx context.Context, id int64, img model.ImageUpload) (model.Product, error) {
	if err := c.record("image"); err != nil {
		return model.Product{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	i, err := c.find(id)
	if err != nil {
		return model.Product{}, err
	}
	c.Products[i].Image = "data:image/png;base64," + string(img.Content)
	return c.Products[i].Clone(), nil
}

func (c *Catalog) DeleteProduct(ctx context.Context, id int64) error {
	if err := c.record("delete"); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	i, err := c.find(id)
	if err != nil {
		return err
	}
	c.Products = slices.Delete(c.Products, i, i+1)
	return nil
}

// RestockProduct records the delta without changing served stock, so tests can
// observe the drift between the optimistic cache and the server.
func (c *Catalog) RestockProduct(ctx context.Context, id int64, delta int) error {
	if err := c.record("restock"); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Restocks[id] += delta
	return nil
}

var _ model.CatalogService = (*Catalog)(nil)
